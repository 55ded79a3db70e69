// Package interview runs guided interviews that enrich an incomplete
// declaration before evaluation. The controller is a turn-based state
// machine over models.Session; it owns no session state itself, so one
// controller serves any number of concurrent sessions.
package interview

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"axioma/internal/discernment"
	"axioma/internal/interview/models"
	"axioma/pkg/platform/sentinel"
)

// ErrSessionStopped is returned when answering a session that already stopped.
var ErrSessionStopped = fmt.Errorf("interview stopped: %w", sentinel.ErrInvalidState)

// Controller drives sessions through the question/answer loop.
type Controller struct {
	params discernment.InterviewParams
	bank   *Bank
	now    func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithBank replaces the built-in question bank.
func WithBank(b *Bank) Option {
	return func(c *Controller) {
		if b != nil {
			c.bank = b
		}
	}
}

// WithClock overrides time.Now for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController validates params and builds a controller.
func NewController(params discernment.InterviewParams, opts ...Option) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		params: params,
		bank:   DefaultBank(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Params returns the interview bounds.
func (c *Controller) Params() discernment.InterviewParams {
	return c.params
}

// Bank returns the question bank.
func (c *Controller) Bank() *Bank {
	return c.bank
}

// Start opens a session for affirmation. Questions whose target is already
// declared in seed are consumed up front and credit their axis. The returned
// session is either active with a pending question or already stopped.
func (c *Controller) Start(affirmation string, seed discernment.RawInput) (*models.Session, error) {
	seed.Affirmation = strings.TrimSpace(affirmation)
	if _, err := discernment.Normalize(seed); err != nil {
		return nil, err
	}

	now := c.now()
	s := &models.Session{
		ID:          uuid.New(),
		Affirmation: seed.Affirmation,
		Seed:        seed,
		Params:      c.params,
		State:       models.StateActive,
		Turns:       []models.Turn{},
		Credits:     make(map[discernment.Axis]int, len(discernment.Axes)),
		Consumed:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, axis := range discernment.Axes {
		for _, q := range c.bank.Pool(axis) {
			if declared(seed, q) {
				s.Consumed = append(s.Consumed, q.ID)
				s.Preconsumed = append(s.Preconsumed, q.ID)
				s.Credits[axis]++
			}
		}
	}

	if s.GlobalCompleteness() >= c.params.MinCompleteness {
		stop(s, models.StopMinimumCompleteness)
		return s, nil
	}
	c.advance(s)
	return s, nil
}

// Next returns the pending question, or false once the session stopped.
func (c *Controller) Next(s *models.Session) (models.Question, bool) {
	if !s.Active() || s.Pending == nil {
		return models.Question{}, false
	}
	return *s.Pending, true
}

// Answer records answer verbatim against the pending question, credits the
// question's axis unless the answer is blank, then applies the stop rules.
func (c *Controller) Answer(s *models.Session, answer string) error {
	if !s.Active() || s.Pending == nil {
		return ErrSessionStopped
	}
	q := *s.Pending
	before := s.GlobalCompleteness()
	if strings.TrimSpace(answer) != "" {
		s.Credits[q.Axis]++
	}
	after := s.GlobalCompleteness()

	now := c.now()
	s.Turns = append(s.Turns, models.Turn{
		Number:       len(s.Turns) + 1,
		QuestionID:   q.ID,
		Axis:         q.Axis,
		Question:     q.Text,
		Answer:       answer,
		Gain:         after - before,
		Completeness: after,
		AnsweredAt:   now,
	})
	s.Consumed = append(s.Consumed, q.ID)
	s.Pending = nil
	s.UpdatedAt = now

	// Stop rules, first true wins
	switch {
	case after >= c.params.MinCompleteness:
		stop(s, models.StopMinimumCompleteness)
	case len(s.Turns) >= c.params.MaxTurns:
		stop(s, models.StopMaxTurns)
	case c.stalled(s):
		stop(s, models.StopNoNewInformation)
	default:
		c.advance(s)
	}
	return nil
}

// Finish stops an active session on the caller's behalf. Stopped sessions
// keep their original reason.
func (c *Controller) Finish(s *models.Session) {
	if s.Active() {
		stop(s, models.StopCallerFinished)
		s.UpdatedAt = c.now()
	}
}

// stalled reports whether the last NoGainWindow turns added nothing.
func (c *Controller) stalled(s *models.Session) bool {
	k := c.params.NoGainWindow
	if len(s.Turns) < k {
		return false
	}
	for _, t := range s.Turns[len(s.Turns)-k:] {
		if t.Gain > 0 {
			return false
		}
	}
	return true
}

// advance sets the next pending question or stops the session when every
// pool is exhausted.
func (c *Controller) advance(s *models.Session) {
	q, ok := c.nextQuestion(s)
	if !ok {
		stop(s, models.StopNoNewInformation)
		return
	}
	s.Pending = &q
}

// nextQuestion picks the least complete axis (ties in F, C, P order) that
// still has an unused question.
func (c *Controller) nextQuestion(s *models.Session) (models.Question, bool) {
	axes := slices.Clone(discernment.Axes)
	slices.SortStableFunc(axes, func(a, b discernment.Axis) int {
		ca, cb := s.Completeness(a), s.Completeness(b)
		switch {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		}
		return 0
	})
	for _, axis := range axes {
		for _, q := range c.bank.Pool(axis) {
			if !s.IsConsumed(q.ID) {
				return q, true
			}
		}
	}
	return models.Question{}, false
}

func stop(s *models.Session, reason models.StopReason) {
	s.State = models.StateStopped
	s.StopReason = reason
	s.Pending = nil
}

// declared reports whether seed already carries the feature q targets.
func declared(seed discernment.RawInput, q models.Question) bool {
	switch q.Target {
	case models.TargetVerifiable:
		return seed.Verifiable != nil
	case models.TargetEvidenceSignal:
		return seed.EvidenceSignal != nil
	case models.TargetNoContradiction:
		return seed.NoContradiction != nil
	case models.TargetSituationalFit:
		return seed.SituationalFit != nil
	case models.TargetResourceAvailability:
		return seed.ResourceAvailability != nil
	case models.TargetRiskTime:
		return seed.RiskTime != nil
	case models.TargetRiskMoney:
		return seed.RiskMoney != nil
	case models.TargetRiskHealthRelationships:
		return seed.RiskHealthRelationships != nil
	case models.TargetRiskPeace:
		return seed.RiskPeace != nil
	case models.TargetValuesAligned:
		return seed.ValuesAligned != nil
	case models.TargetLongTermCoherent:
		return seed.LongTermCoherent != nil
	case models.TargetContextFlag:
		return seed.HasFlag(q.Flag)
	}
	return false
}
