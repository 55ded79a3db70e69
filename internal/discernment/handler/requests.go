package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"axioma/internal/discernment"
	dErrors "axioma/pkg/domain-errors"
	axstrings "axioma/pkg/platform/strings"
)

const (
	maxAffirmationRunes = 2000
	maxAgentNotesRunes  = 4000
	maxBatchItems       = 50
)

// EvaluateRequest is the HTTP request body for POST /discernment/evaluate.
// Risk fields accept a number in [0,1] or a level word (bajo, medio, alto).
type EvaluateRequest struct {
	Affirmation string `json:"affirmation"`

	Verifiable      *bool    `json:"verifiable"`
	EvidenceSignal  *float64 `json:"evidence_signal"`
	NoContradiction *bool    `json:"no_contradiction"`

	SituationalFit       *float64 `json:"situational_fit"`
	ResourceAvailability *float64 `json:"resource_availability"`

	ValuesAligned    *bool `json:"values_aligned"`
	LongTermCoherent *bool `json:"long_term_coherent"`

	RiskTime                json.RawMessage `json:"risk_time"`
	RiskMoney               json.RawMessage `json:"risk_money"`
	RiskHealthRelationships json.RawMessage `json:"risk_health_relationships"`
	RiskPeace               json.RawMessage `json:"risk_peace"`

	ContextFlags []string `json:"context_flags"`
	Keywords     []string `json:"keywords"`
	AgentNotes   string   `json:"agent_notes"`

	// Free text read only by signal detection.
	FoundationNotes string `json:"foundation_notes"`
	ContextNotes    string `json:"context_notes"`
	DeclaredPurpose string `json:"declared_purpose"`

	DetectSignals bool `json:"detect_signals"`
	Narrate       bool `json:"narrate"`

	// Parsed values (populated by Validate)
	parsed discernment.RawInput
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if utf8.RuneCountInString(r.Affirmation) > maxAffirmationRunes {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("affirmation must be at most %d characters", maxAffirmationRunes))
	}
	for _, text := range []struct{ field, value string }{
		{"agent_notes", r.AgentNotes},
		{"foundation_notes", r.FoundationNotes},
		{"context_notes", r.ContextNotes},
		{"declared_purpose", r.DeclaredPurpose},
	} {
		if utf8.RuneCountInString(text.value) > maxAgentNotesRunes {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be at most %d characters", text.field, maxAgentNotesRunes))
		}
	}
	// Counted after folding, as the engine counts them.
	r.Keywords = axstrings.DedupeAndFold(r.Keywords)
	if len(r.Keywords) > discernment.MaxKeywords {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("keywords must have at most %d distinct entries", discernment.MaxKeywords))
	}

	r.Affirmation = strings.TrimSpace(r.Affirmation)
	if r.Affirmation == "" {
		return dErrors.New(dErrors.CodeValidation, "affirmation is required")
	}
	r.AgentNotes = strings.TrimSpace(r.AgentNotes)

	raw := discernment.RawInput{
		Affirmation:          r.Affirmation,
		Verifiable:           r.Verifiable,
		EvidenceSignal:       r.EvidenceSignal,
		NoContradiction:      r.NoContradiction,
		SituationalFit:       r.SituationalFit,
		ResourceAvailability: r.ResourceAvailability,
		ValuesAligned:        r.ValuesAligned,
		LongTermCoherent:     r.LongTermCoherent,
		Keywords:             r.Keywords,
	}

	risks := []struct {
		field string
		value json.RawMessage
		dst   **float64
	}{
		{"risk_time", r.RiskTime, &raw.RiskTime},
		{"risk_money", r.RiskMoney, &raw.RiskMoney},
		{"risk_health_relationships", r.RiskHealthRelationships, &raw.RiskHealthRelationships},
		{"risk_peace", r.RiskPeace, &raw.RiskPeace},
	}
	for _, risk := range risks {
		v, err := parseRisk(risk.field, risk.value)
		if err != nil {
			return err
		}
		*risk.dst = v
	}

	for _, name := range r.ContextFlags {
		flag, ok := discernment.ParseContextFlag(strings.TrimSpace(name))
		if !ok {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("context_flags: unknown flag %q", name))
		}
		raw.Flags = append(raw.Flags, flag)
	}

	r.parsed = raw
	return nil
}

// RawInput returns the validated engine input.
func (r *EvaluateRequest) RawInput() discernment.RawInput {
	return r.parsed
}

// parseRisk accepts null, a JSON number or a level word. Range checks on
// numbers are left to the normalizer so they report the same error shape as
// every other field.
func parseRisk(field string, value json.RawMessage) (*float64, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return nil, nil
	}
	var n float64
	if err := json.Unmarshal(value, &n); err == nil {
		return &n, nil
	}
	var word string
	if err := json.Unmarshal(value, &word); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, field+" must be a number or a level word")
	}
	v, err := discernment.ParseLevel(word)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, field+" must be bajo, medio, alto or a number in [0,1]")
	}
	return &v, nil
}

// EvaluateBatchRequest is the HTTP request body for
// POST /discernment/evaluate/batch.
type EvaluateBatchRequest struct {
	Items []EvaluateRequest `json:"items"`
}

// Validate validates every item.
func (r *EvaluateBatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Items) == 0 {
		return dErrors.New(dErrors.CodeValidation, "items is required")
	}
	if len(r.Items) > maxBatchItems {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("items must have at most %d entries", maxBatchItems))
	}
	for i := range r.Items {
		if err := r.Items[i].Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("items[%d]: %s", i, describe(err)))
		}
	}
	return nil
}

func describe(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
