// Package models holds the interview session state shared by the controller,
// the session stores and the HTTP layer. Sessions round-trip through JSON so
// any store can persist them.
package models

import (
	"maps"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"axioma/internal/discernment"
)

// State is the controller position of a session.
type State string

const (
	StateActive  State = "ACTIVE"
	StateStopped State = "STOPPED"
)

// StopReason records why a session stopped.
type StopReason string

const (
	StopMinimumCompleteness StopReason = "minimum_completeness_reached"
	StopMaxTurns            StopReason = "max_turns_reached"
	StopNoNewInformation    StopReason = "no_new_information"
	// StopCallerFinished marks a session folded while still active.
	StopCallerFinished StopReason = "caller_finished"
)

// CompletenessLevel summarizes per-axis completeness.
type CompletenessLevel string

const (
	LevelComplete     CompletenessLevel = "complete"
	LevelPartial      CompletenessLevel = "partial"
	LevelInsufficient CompletenessLevel = "insufficient"
)

// QuestionKind decides how an answer folds back into RawInput.
type QuestionKind string

const (
	// KindYesNo folds into a boolean signal.
	KindYesNo QuestionKind = "yes_no"
	// KindLevel folds into a [0,1] signal through discernment.ParseLevel.
	KindLevel QuestionKind = "level"
	// KindFlag adds a context flag on an affirmative answer.
	KindFlag QuestionKind = "flag"
)

// Target names the RawInput feature a question informs.
type Target string

const (
	TargetVerifiable              Target = "verifiable"
	TargetEvidenceSignal          Target = "evidence_signal"
	TargetNoContradiction         Target = "no_contradiction"
	TargetSituationalFit          Target = "situational_fit"
	TargetResourceAvailability    Target = "resource_availability"
	TargetRiskTime                Target = "risk_time"
	TargetRiskMoney               Target = "risk_money"
	TargetRiskHealthRelationships Target = "risk_health_relationships"
	TargetRiskPeace               Target = "risk_peace"
	TargetValuesAligned           Target = "values_aligned"
	TargetLongTermCoherent        Target = "long_term_coherent"
	TargetContextFlag             Target = "context_flag"
)

// Question is one axis-targeted probe from a question bank.
type Question struct {
	ID     string                  `json:"id"`
	Axis   discernment.Axis        `json:"axis"`
	Kind   QuestionKind            `json:"kind"`
	Target Target                  `json:"target"`
	Flag   discernment.ContextFlag `json:"flag,omitempty"`
	Text   string                  `json:"text"`
}

// Turn is one answered question. Answer is stored verbatim.
type Turn struct {
	Number       int              `json:"number"`
	QuestionID   string           `json:"question_id"`
	Axis         discernment.Axis `json:"axis"`
	Question     string           `json:"question"`
	Answer       string           `json:"answer"`
	Gain         float64          `json:"gain"`
	Completeness float64          `json:"completeness"`
	AnsweredAt   time.Time        `json:"answered_at"`
}

// Session is the transcript of one guided interview.
type Session struct {
	ID          uuid.UUID                   `json:"id"`
	Affirmation string                      `json:"affirmation"`
	Seed        discernment.RawInput        `json:"seed"`
	Params      discernment.InterviewParams `json:"params"`
	State       State                       `json:"state"`
	StopReason  StopReason                  `json:"stop_reason,omitempty"`
	Turns       []Turn                      `json:"turns"`
	Credits     map[discernment.Axis]int    `json:"credits"`
	Consumed    []string                    `json:"consumed"`
	Preconsumed []string                    `json:"preconsumed,omitempty"`
	Pending     *Question                   `json:"pending,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// Active reports whether the session still accepts answers.
func (s *Session) Active() bool {
	return s.State == StateActive
}

// TurnCount returns the number of answered turns.
func (s *Session) TurnCount() int {
	return len(s.Turns)
}

// Completeness returns one axis' completeness in [0,1].
func (s *Session) Completeness(axis discernment.Axis) float64 {
	probes := s.Params.MinProbesPerAxis
	if probes <= 0 {
		return 0
	}
	return math.Min(1, float64(s.Credits[axis])/float64(probes))
}

// GlobalCompleteness is the mean of the three axis completenesses.
func (s *Session) GlobalCompleteness() float64 {
	var sum float64
	for _, axis := range discernment.Axes {
		sum += s.Completeness(axis)
	}
	return sum / float64(len(discernment.Axes))
}

// AxisCompleteness returns completeness keyed by axis.
func (s *Session) AxisCompleteness() map[discernment.Axis]float64 {
	out := make(map[discernment.Axis]float64, len(discernment.Axes))
	for _, axis := range discernment.Axes {
		out[axis] = s.Completeness(axis)
	}
	return out
}

// Level classifies the session's completeness.
func (s *Session) Level() CompletenessLevel {
	complete, partial := true, false
	for _, axis := range discernment.Axes {
		c := s.Completeness(axis)
		if c < 1 {
			complete = false
		}
		if c > 0 {
			partial = true
		}
	}
	switch {
	case complete:
		return LevelComplete
	case partial:
		return LevelPartial
	default:
		return LevelInsufficient
	}
}

// Exhausted returns *discernment.InterviewExhaustedError when the session
// stopped on max_turns short of full completeness, nil otherwise.
func (s *Session) Exhausted() error {
	if s.StopReason != StopMaxTurns {
		return nil
	}
	global := s.GlobalCompleteness()
	if global >= 1 {
		return nil
	}
	return &discernment.InterviewExhaustedError{Turns: s.TurnCount(), Completeness: global}
}

// IsConsumed reports whether the question was asked or pre-consumed.
func (s *Session) IsConsumed(questionID string) bool {
	return slices.Contains(s.Consumed, questionID)
}

// Clone returns a deep copy so stores never share state with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Seed = cloneRawInput(s.Seed)
	out.Turns = append([]Turn(nil), s.Turns...)
	out.Consumed = append([]string(nil), s.Consumed...)
	out.Preconsumed = append([]string(nil), s.Preconsumed...)
	out.Credits = maps.Clone(s.Credits)
	if s.Pending != nil {
		q := *s.Pending
		out.Pending = &q
	}
	return &out
}

func cloneRawInput(r discernment.RawInput) discernment.RawInput {
	out := r
	out.Verifiable = clonePtr(r.Verifiable)
	out.EvidenceSignal = clonePtr(r.EvidenceSignal)
	out.NoContradiction = clonePtr(r.NoContradiction)
	out.SituationalFit = clonePtr(r.SituationalFit)
	out.ResourceAvailability = clonePtr(r.ResourceAvailability)
	out.ValuesAligned = clonePtr(r.ValuesAligned)
	out.LongTermCoherent = clonePtr(r.LongTermCoherent)
	out.RiskTime = clonePtr(r.RiskTime)
	out.RiskMoney = clonePtr(r.RiskMoney)
	out.RiskHealthRelationships = clonePtr(r.RiskHealthRelationships)
	out.RiskPeace = clonePtr(r.RiskPeace)
	out.Flags = append([]discernment.ContextFlag(nil), r.Flags...)
	out.Keywords = append([]string(nil), r.Keywords...)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
