package discernment

import "math"

// AxisScorer turns normalized features into the three axis scores. It is
// stateless apart from its weights and safe for concurrent use.
type AxisScorer struct {
	weights AxisWeights
}

// NewAxisScorer builds a scorer. Weights are checked by Config.Validate; a
// zero-sum group here falls back to equal weighting.
func NewAxisScorer(w AxisWeights) *AxisScorer {
	return &AxisScorer{weights: w}
}

// Score computes F, C and P. riskGlobal must already be aggregated: C reads
// risk, never the other way round.
func (s *AxisScorer) Score(f Features, riskGlobal float64) AxisScores {
	fw, cw, pw := s.weights.Fundamento, s.weights.Contexto, s.weights.Principio
	return AxisScores{
		Fundamento: Round3(weightedMean(
			[]float64{indicator(f.Verifiable), f.EvidenceSignal, indicator(f.NoContradiction)},
			[]float64{fw.Verifiable, fw.Evidence, fw.NoContradiction},
		)),
		Contexto: Round3(weightedMean(
			[]float64{f.SituationalFit, 1 - riskGlobal, f.ResourceAvailability},
			[]float64{cw.SituationalFit, cw.InverseRisk, cw.Resources},
		)),
		Principio: Round3(weightedMean(
			[]float64{indicator(f.ValuesAligned), indicator(f.LongTermCoherent)},
			[]float64{pw.ValuesAligned, pw.LongTermCoherent},
		)),
	}
}

// Round3 rounds to three decimals, the precision of every emitted score.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func weightedMean(values, weights []float64) float64 {
	var sum, total float64
	for i, v := range values {
		sum += v * weights[i]
		total += weights[i]
	}
	if total <= 0 {
		sum, total = 0, 0
		for _, v := range values {
			sum += v
			total++
		}
	}
	return clamp01(sum / total)
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
