package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"axioma/internal/discernment"
	"axioma/internal/interview/metrics"
	"axioma/internal/interview/models"
	"axioma/internal/interview/ports"
	dErrors "axioma/pkg/domain-errors"
	"axioma/pkg/platform/sentinel"
	"axioma/pkg/requestcontext"
)

// FinishResult is a folded session and the evaluation of its folded input.
type FinishResult struct {
	Session    *models.Session
	Fold       FoldResult
	Evaluation *discernment.EvaluateResult
}

// Service exposes turn-per-call interviews over a session store.
type Service struct {
	controller *Controller
	store      ports.Store
	evaluator  ports.Evaluator
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires a controller to a store and an evaluator.
func NewService(controller *Controller, store ports.Store, evaluator ports.Evaluator, opts ...ServiceOption) (*Service, error) {
	if controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	s := &Service{
		controller: controller,
		store:      store,
		evaluator:  evaluator,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start opens and stores a session.
func (s *Service) Start(ctx context.Context, affirmation string, seed discernment.RawInput) (*models.Session, error) {
	sess, err := s.controller.Start(affirmation, seed)
	if err != nil {
		var inv *discernment.InvalidInputError
		if errors.As(err, &inv) {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, inv.Error())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start interview")
	}
	if err := s.store.Create(ctx, sess); err != nil {
		s.metrics.IncrementStoreError("create")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save interview")
	}

	s.metrics.IncrementStarted(!sess.Active())
	if !sess.Active() {
		s.metrics.IncrementStop(string(sess.StopReason))
	}
	s.logger.InfoContext(ctx, "interview started",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sess.ID,
		"preconsumed", len(sess.Preconsumed),
		"state", sess.State,
	)
	return sess, nil
}

// Get returns a stored session.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "get")
	}
	return sess, nil
}

// Answer records one answer and advances the session.
func (s *Service) Answer(ctx context.Context, id uuid.UUID, answer string) (*models.Session, error) {
	var turn models.Turn
	sess, err := s.store.Update(ctx, id, func(sess *models.Session) error {
		if err := s.controller.Answer(sess, answer); err != nil {
			return err
		}
		turn = sess.Turns[len(sess.Turns)-1]
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionStopped) {
			return nil, dErrors.New(dErrors.CodeInvalidState, "interview already stopped")
		}
		return nil, s.storeError(err, "update")
	}

	s.metrics.IncrementTurn(string(turn.Axis))
	if !sess.Active() {
		s.metrics.IncrementStop(string(sess.StopReason))
	}
	s.logger.InfoContext(ctx, "interview turn recorded",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sess.ID,
		"turn", turn.Number,
		"axis", turn.Axis,
		"completeness", turn.Completeness,
		"state", sess.State,
		"stop_reason", sess.StopReason,
	)
	return sess, nil
}

// Finish folds the session, evaluates the folded input and deletes the
// session. Active sessions are stopped with the caller_finished reason.
func (s *Service) Finish(ctx context.Context, id uuid.UUID, narrate bool) (*FinishResult, error) {
	start := time.Now()
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "get")
	}
	wasActive := sess.Active()

	fold := s.controller.Fold(sess)
	eval, err := s.evaluator.Evaluate(ctx, discernment.EvaluateRequest{
		Input:      fold.Input,
		AgentNotes: fold.AgentNotes,
		Narrate:    narrate,
	})
	if err != nil {
		var inv *discernment.InvalidInputError
		if errors.As(err, &inv) {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, inv.Error())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to evaluate interview")
	}

	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncrementStoreError("delete")
		s.logger.WarnContext(ctx, "failed to delete finished interview",
			"session_id", id,
			"error", err,
		)
	}

	if wasActive {
		s.metrics.IncrementStop(string(sess.StopReason))
	}
	s.metrics.ObserveCompleteness(sess.GlobalCompleteness())
	s.logger.InfoContext(ctx, "interview finished",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sess.ID,
		"evaluation_id", eval.ID,
		"turns", sess.TurnCount(),
		"stop_reason", sess.StopReason,
		"completeness_level", fold.Level,
		"unparsed", len(fold.Unparsed),
		"exhausted", fold.Exhausted != nil,
		"decision_state", eval.Object.State(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &FinishResult{Session: sess, Fold: fold, Evaluation: eval}, nil
}

func (s *Service) storeError(err error, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "interview not found")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeNotFound, "interview expired")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "interview was updated concurrently")
	}
	s.metrics.IncrementStoreError(op)
	return dErrors.Wrap(err, dErrors.CodeInternal, "session store failure")
}
