package handler

import (
	"time"

	"axioma/internal/discernment"
	"axioma/internal/signals"
)

// EvaluateResponse is the HTTP response for POST /discernment/evaluate.
type EvaluateResponse struct {
	EvaluationID   string                         `json:"evaluation_id"`
	Fingerprint    string                         `json:"fingerprint"`
	DecisionReason string                         `json:"decision_reason"`
	Result         *discernment.DiscernmentObject `json:"result"`
	Narrative      string                         `json:"narrative,omitempty"`
	NarrativeError string                         `json:"narrative_error,omitempty"`
	Signals        *signals.Result                `json:"signals,omitempty"`
	EvaluatedAt    time.Time                      `json:"evaluated_at"`
}

// EvaluateBatchResponse is the HTTP response for
// POST /discernment/evaluate/batch.
type EvaluateBatchResponse struct {
	Items []*EvaluateResponse `json:"items"`
}

// FromResult converts a domain EvaluateResult to an HTTP response.
func FromResult(result *discernment.EvaluateResult, detected *signals.Result) *EvaluateResponse {
	return &EvaluateResponse{
		EvaluationID:   result.ID.String(),
		Fingerprint:    result.Fingerprint,
		DecisionReason: string(result.Object.Reason()),
		Result:         result.Object,
		Narrative:      result.Narrative,
		NarrativeError: result.NarrativeError,
		Signals:        detected,
		EvaluatedAt:    result.EvaluatedAt,
	}
}
