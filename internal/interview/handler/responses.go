package handler

import (
	"time"

	"axioma/internal/discernment"
	"axioma/internal/interview"
	"axioma/internal/interview/models"
	"axioma/internal/signals"
)

// SessionResponse is the HTTP view of an interview session.
type SessionResponse struct {
	ID                 string             `json:"id"`
	Affirmation        string             `json:"affirmation"`
	State              string             `json:"state"`
	StopReason         string             `json:"stop_reason,omitempty"`
	Question           *QuestionResponse  `json:"question,omitempty"`
	Turns              []models.Turn      `json:"turns"`
	Completeness       map[string]float64 `json:"completeness"`
	GlobalCompleteness float64            `json:"global_completeness"`
	CompletenessLevel  string             `json:"completeness_level"`
	Exhausted          bool               `json:"exhausted"`
	Signals            *signals.Result    `json:"signals,omitempty"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// QuestionResponse is the question awaiting an answer.
type QuestionResponse struct {
	ID   string `json:"id"`
	Axis string `json:"axis"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// FinishResponse is the HTTP response for POST /interviews/{id}/finish.
type FinishResponse struct {
	Session    *SessionResponse    `json:"session"`
	AgentNotes string              `json:"agent_notes"`
	Unparsed   []string            `json:"unparsed"`
	Overridden []string            `json:"overridden"`
	Evaluation *EvaluationResponse `json:"evaluation"`
}

// EvaluationResponse is the evaluation of a folded interview.
type EvaluationResponse struct {
	EvaluationID   string                         `json:"evaluation_id"`
	Fingerprint    string                         `json:"fingerprint"`
	DecisionReason string                         `json:"decision_reason"`
	Result         *discernment.DiscernmentObject `json:"result"`
	Narrative      string                         `json:"narrative,omitempty"`
	NarrativeError string                         `json:"narrative_error,omitempty"`
	EvaluatedAt    time.Time                      `json:"evaluated_at"`
}

// FromSession converts a session to its HTTP view.
func FromSession(s *models.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:                 s.ID.String(),
		Affirmation:        s.Affirmation,
		State:              string(s.State),
		StopReason:         string(s.StopReason),
		Turns:              s.Turns,
		Completeness:       make(map[string]float64, len(discernment.Axes)),
		GlobalCompleteness: s.GlobalCompleteness(),
		CompletenessLevel:  string(s.Level()),
		Exhausted:          s.Exhausted() != nil,
		UpdatedAt:          s.UpdatedAt,
	}
	if resp.Turns == nil {
		resp.Turns = []models.Turn{}
	}
	for axis, c := range s.AxisCompleteness() {
		resp.Completeness[string(axis)] = c
	}
	if q := s.Pending; q != nil && s.Active() {
		resp.Question = &QuestionResponse{
			ID:   q.ID,
			Axis: string(q.Axis),
			Kind: string(q.Kind),
			Text: q.Text,
		}
	}
	return resp
}

// FromFinish converts a finished interview to its HTTP response.
func FromFinish(res *interview.FinishResult) *FinishResponse {
	eval := res.Evaluation
	return &FinishResponse{
		Session:    FromSession(res.Session),
		AgentNotes: res.Fold.AgentNotes,
		Unparsed:   res.Fold.Unparsed,
		Overridden: res.Fold.Overridden,
		Evaluation: &EvaluationResponse{
			EvaluationID:   eval.ID.String(),
			Fingerprint:    eval.Fingerprint,
			DecisionReason: string(eval.Object.Reason()),
			Result:         eval.Object,
			Narrative:      eval.Narrative,
			NarrativeError: eval.NarrativeError,
			EvaluatedAt:    eval.EvaluatedAt,
		},
	}
}
