package signals

import (
	"slices"

	"axioma/internal/discernment"
)

// Result is everything detected in one text.
type Result struct {
	Markers
	RiskPatterns       []PatternHit        `json:"risk_patterns"`
	RiskDelta          float64             `json:"risk_delta"`
	SoftContradictions []SoftContradiction `json:"soft_contradictions"`
}

// Detect runs every detector over an affirmation alone.
func Detect(text string) Result {
	return DetectEvidence(Evidence{Statement: text})
}

// DetectEvidence runs marker and risk pattern detection over the statement
// and soft contradiction rules over all of ev.
func DetectEvidence(ev Evidence) Result {
	hits, delta := DetectRiskPatterns(ev.Statement)
	return Result{
		Markers:            DetectMarkers(ev.Statement),
		RiskPatterns:       hits,
		RiskDelta:          delta,
		SoftContradictions: DetectSoftContradictions(ev),
	}
}

// Apply merges detected flags and keywords into raw. Declared values win:
// nothing already present is removed or reordered. A detected
// purpose_contradiction is skipped when raw declares alignment.
func (r Result) Apply(raw *discernment.RawInput) {
	declaresAlignment := raw.ValuesAligned != nil && *raw.ValuesAligned ||
		raw.LongTermCoherent != nil && *raw.LongTermCoherent
	for _, f := range r.Flags {
		if f == discernment.FlagPurposeContradiction && declaresAlignment {
			continue
		}
		if !slices.Contains(raw.Flags, f) {
			raw.Flags = append(raw.Flags, f)
		}
	}
	for _, k := range r.Keywords {
		if !slices.Contains(raw.Keywords, k) {
			raw.Keywords = append(raw.Keywords, k)
		}
	}
}
