package discernment

import (
	"math"
	"slices"
	"unicode/utf8"

	axstrings "axioma/pkg/platform/strings"
)

// Neutral defaults for undeclared signals.
const (
	NeutralSignal = 0.5
	NeutralFlag   = false
)

// Input size limits.
const (
	MaxAffirmationRunes = 2000
	MaxKeywords         = 32
	MaxKeywordRunes     = 64
)

// Normalize validates a RawInput and fills undeclared signals with their
// neutral defaults. Declared values are never clamped: out of range is an
// error.
func Normalize(raw RawInput) (Features, error) {
	var f Features

	affirmation := axstrings.CollapseSpace(raw.Affirmation)
	if affirmation == "" {
		return f, &InvalidInputError{Field: "affirmation", Reason: "is required"}
	}
	if utf8.RuneCountInString(affirmation) > MaxAffirmationRunes {
		return f, &InvalidInputError{Field: "affirmation", Reason: "must be at most 2000 characters"}
	}
	f.Affirmation = affirmation

	flags, err := normalizeFlags(raw.Flags)
	if err != nil {
		return f, err
	}
	f.Flags = flags

	keywords, err := normalizeKeywords(raw.Keywords)
	if err != nil {
		return f, err
	}
	f.Keywords = keywords

	signals := []struct {
		field string
		in    *float64
		out   *float64
	}{
		{"evidence_signal", raw.EvidenceSignal, &f.EvidenceSignal},
		{"situational_fit", raw.SituationalFit, &f.SituationalFit},
		{"resource_availability", raw.ResourceAvailability, &f.ResourceAvailability},
		{"risk_time", raw.RiskTime, &f.Risk.Time},
		{"risk_money", raw.RiskMoney, &f.Risk.Money},
		{"risk_health_relationships", raw.RiskHealthRelationships, &f.Risk.HealthRelationships},
		{"risk_peace", raw.RiskPeace, &f.Risk.Peace},
	}
	for _, s := range signals {
		v, err := unitSignal(s.field, s.in)
		if err != nil {
			return f, err
		}
		*s.out = v
	}

	f.Verifiable = boolSignal(raw.Verifiable)
	f.NoContradiction = boolSignal(raw.NoContradiction)
	f.ValuesAligned = boolSignal(raw.ValuesAligned)
	f.LongTermCoherent = boolSignal(raw.LongTermCoherent)

	// A declared purpose contradiction overrides both principle signals.
	if f.HasFlag(FlagPurposeContradiction) {
		if raw.ValuesAligned != nil && *raw.ValuesAligned {
			return f, &InvalidInputError{Field: "values_aligned", Value: true, Reason: "conflicts with purpose_contradiction"}
		}
		if raw.LongTermCoherent != nil && *raw.LongTermCoherent {
			return f, &InvalidInputError{Field: "long_term_coherent", Value: true, Reason: "conflicts with purpose_contradiction"}
		}
		f.ValuesAligned = false
		f.LongTermCoherent = false
	}

	return f, nil
}

func unitSignal(field string, v *float64) (float64, error) {
	if v == nil {
		return NeutralSignal, nil
	}
	if math.IsNaN(*v) || *v < 0 || *v > 1 {
		return 0, &InvalidInputError{Field: field, Value: *v, Reason: "must be within [0,1]"}
	}
	return *v, nil
}

func boolSignal(v *bool) bool {
	if v == nil {
		return NeutralFlag
	}
	return *v
}

func normalizeFlags(in []ContextFlag) ([]ContextFlag, error) {
	out := make([]ContextFlag, 0, len(in))
	for _, raw := range in {
		flag, ok := ParseContextFlag(axstrings.Fold(string(raw)))
		if !ok {
			return nil, &InvalidInputError{Field: "context_flags", Value: string(raw), Reason: "unknown flag"}
		}
		if !slices.Contains(out, flag) {
			out = append(out, flag)
		}
	}
	return out, nil
}

func normalizeKeywords(in []string) ([]string, error) {
	out := axstrings.DedupeAndFold(in)
	if len(out) > MaxKeywords {
		return nil, &InvalidInputError{Field: "keywords", Value: len(out), Reason: "at most 32 keywords"}
	}
	for _, k := range out {
		if utf8.RuneCountInString(k) > MaxKeywordRunes {
			return nil, &InvalidInputError{Field: "keywords", Value: k, Reason: "keyword longer than 64 characters"}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
