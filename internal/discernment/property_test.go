//go:build property

package discernment

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func unit() gopter.Gen {
	return gen.Float64Range(0, 1)
}

// thresholdsFrom builds a valid threshold set from five unit draws.
func thresholdsFrom(fMin, pMin, a, b, cCaution float64) Thresholds {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return Thresholds{FMin: fMin, PMin: pMin, RiskMedium: lo, RiskHigh: hi, CCaution: cCaution}
}

func mustClassifier(t Thresholds) *DecisionClassifier {
	c, err := NewDecisionClassifier(t)
	if err != nil {
		panic(err)
	}
	return c
}

// TestClassifierTotality verifies every point of [0,1]^4 maps to one of the
// four states under any valid threshold set.
func TestClassifierTotality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("classification is total", prop.ForAll(
		func(f, c, p, r, fMin, pMin, a, b, cc float64) bool {
			d := mustClassifier(thresholdsFrom(fMin, pMin, a, b, cc)).Classify(AxisScores{Fundamento: f, Contexto: c, Principio: p}, r)
			return d.State.Rank() >= 0 && d.Reason != ""
		},
		unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(),
	))

	properties.TestingRun(t)
}

// TestClassifierMonotonicity verifies that raising F or P, or lowering risk,
// never yields a stricter state.
func TestClassifierMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("higher F is never stricter", prop.ForAll(
		func(f1, f2, c, p, r, fMin, pMin, a, b, cc float64) bool {
			lo, hi := f1, f2
			if lo > hi {
				lo, hi = hi, lo
			}
			cl := mustClassifier(thresholdsFrom(fMin, pMin, a, b, cc))
			low := cl.Classify(AxisScores{Fundamento: lo, Contexto: c, Principio: p}, r)
			high := cl.Classify(AxisScores{Fundamento: hi, Contexto: c, Principio: p}, r)
			return high.State.Rank() >= low.State.Rank()
		},
		unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(),
	))

	properties.Property("higher P is never stricter", prop.ForAll(
		func(p1, p2, f, c, r, fMin, pMin, a, b, cc float64) bool {
			lo, hi := p1, p2
			if lo > hi {
				lo, hi = hi, lo
			}
			cl := mustClassifier(thresholdsFrom(fMin, pMin, a, b, cc))
			low := cl.Classify(AxisScores{Fundamento: f, Contexto: c, Principio: lo}, r)
			high := cl.Classify(AxisScores{Fundamento: f, Contexto: c, Principio: hi}, r)
			return high.State.Rank() >= low.State.Rank()
		},
		unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(),
	))

	properties.Property("lower risk is never stricter", prop.ForAll(
		func(r1, r2, f, c, p, fMin, pMin, a, b, cc float64) bool {
			lo, hi := r1, r2
			if lo > hi {
				lo, hi = hi, lo
			}
			cl := mustClassifier(thresholdsFrom(fMin, pMin, a, b, cc))
			safer := cl.Classify(AxisScores{Fundamento: f, Contexto: c, Principio: p}, lo)
			riskier := cl.Classify(AxisScores{Fundamento: f, Contexto: c, Principio: p}, hi)
			return safer.State.Rank() >= riskier.State.Rank()
		},
		unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(), unit(),
	))

	properties.TestingRun(t)
}

// TestEngineRangesAndDeterminism verifies that any valid declaration yields
// scores inside [0,1] and a byte-identical canonical form on repeat.
func TestEngineRangesAndDeterminism(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("scores stay in range and output is stable", prop.ForAll(
		func(ev, fit, res, rt, rm, rh, rp float64, verifiable, aligned, coherent bool) bool {
			raw := RawInput{
				Affirmation:             "Tomar la decisión",
				Verifiable:              &verifiable,
				EvidenceSignal:          &ev,
				SituationalFit:          &fit,
				ResourceAvailability:    &res,
				ValuesAligned:           &aligned,
				LongTermCoherent:        &coherent,
				RiskTime:                &rt,
				RiskMoney:               &rm,
				RiskHealthRelationships: &rh,
				RiskPeace:               &rp,
			}
			first, err := engine.Evaluate(raw)
			if err != nil {
				return false
			}
			second, err := engine.Evaluate(raw)
			if err != nil {
				return false
			}
			for _, v := range []float64{first.Scores().Fundamento, first.Scores().Contexto, first.Scores().Principio, first.Risk().Global} {
				if v < 0 || v > 1 {
					return false
				}
			}
			a, errA := first.Canonical()
			b, errB := second.Canonical()
			return errA == nil && errB == nil && bytes.Equal(a, b)
		},
		unit(), unit(), unit(), unit(), unit(), unit(), unit(),
		gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}
