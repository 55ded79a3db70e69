package discernment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"axioma/internal/discernment/metrics"
	"axioma/internal/discernment/ports"
	"axioma/pkg/requestcontext"
)

const (
	defaultNarrationTimeout = 30 * time.Second
	defaultBatchConcurrency = 8
)

// EvaluateRequest is one evaluation call.
type EvaluateRequest struct {
	Input      RawInput
	AgentNotes string
	Narrate    bool
}

// EvaluateResult carries the immutable object plus request-level metadata.
// Narrative is advisory text from the narrator and never feeds back into
// Object.
type EvaluateResult struct {
	ID             uuid.UUID
	Object         *DiscernmentObject
	Fingerprint    string
	Narrative      string
	// NarrativeError is the failure cause: circuit_open, timeout or error.
	NarrativeError string
	EvaluatedAt    time.Time
}

// BatchItemError identifies which batch item failed.
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("batch item %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error {
	return e.Err
}

// Service runs evaluations against the current Engine and optionally asks a
// narrator for prose.
type Service struct {
	engine           atomic.Pointer[Engine]
	narrator         ports.Narrator
	metrics          *metrics.Metrics
	logger           *slog.Logger
	tracer           trace.Tracer
	narrationTimeout time.Duration
	batchConcurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithNarrator enables narration.
func WithNarrator(n ports.Narrator) Option {
	return func(s *Service) {
		s.narrator = n
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer overrides the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithNarrationTimeout bounds each narrator call.
func WithNarrationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.narrationTimeout = d
		}
	}
}

// WithBatchConcurrency bounds how many batch items evaluate at once.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// NewService creates a discernment service around an engine.
func NewService(engine *Engine, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	s := &Service{
		logger:           slog.Default(),
		tracer:           otel.Tracer("axioma/discernment"),
		narrationTimeout: defaultNarrationTimeout,
		batchConcurrency: defaultBatchConcurrency,
	}
	s.engine.Store(engine)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Engine returns the engine currently serving evaluations.
func (s *Service) Engine() *Engine {
	return s.engine.Load()
}

// Reload builds a new engine from cfg and swaps it in. On error the current
// engine keeps serving.
func (s *Service) Reload(ctx context.Context, cfg Config) error {
	engine, err := NewEngine(cfg)
	if err != nil {
		s.metrics.IncrementEngineReload("rejected")
		s.logger.ErrorContext(ctx, "engine reload rejected", "error", err)
		return err
	}
	s.engine.Store(engine)
	s.metrics.IncrementEngineReload("applied")
	s.logger.InfoContext(ctx, "engine reloaded",
		"f_min", cfg.Thresholds.FMin,
		"p_min", cfg.Thresholds.PMin,
		"risk_high", cfg.Thresholds.RiskHigh,
		"risk_medium", cfg.Thresholds.RiskMedium,
		"c_caution", cfg.Thresholds.CCaution,
		"theme_rules", len(cfg.ThemeRules),
	)
	return nil
}

// Evaluate runs one evaluation. Only invalid input fails; narration problems
// are reported in the result.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResult, error) {
	ctx, span := s.tracer.Start(ctx, "discernment.evaluate")
	defer span.End()

	start := time.Now()
	var opts []EvaluateOption
	if req.AgentNotes != "" {
		opts = append(opts, WithAgentNotes(req.AgentNotes))
	}
	obj, err := s.Engine().Evaluate(req.Input, opts...)
	if err != nil {
		var inv *InvalidInputError
		if errors.As(err, &inv) {
			s.metrics.IncrementInvalidInput(inv.Field)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "normalization failed")
		return nil, err
	}
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	s.metrics.IncrementOutcome(string(obj.State()), string(obj.DominantTheme()))

	fingerprint, err := obj.Fingerprint()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := &EvaluateResult{
		ID:          uuid.New(),
		Object:      obj,
		Fingerprint: fingerprint,
		EvaluatedAt: requestcontext.Now(ctx),
	}
	span.SetAttributes(
		attribute.String("evaluation.id", result.ID.String()),
		attribute.String("decision.state", string(obj.State())),
		attribute.String("theme.dominant", string(obj.DominantTheme())),
	)

	if req.Narrate && s.narrator != nil {
		result.Narrative, result.NarrativeError = s.narrate(ctx, obj)
	}

	s.logger.InfoContext(ctx, "discernment evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"evaluation_id", result.ID,
		"decision_state", obj.State(),
		"decision_reason", obj.Reason(),
		"theme", obj.DominantTheme(),
		"riesgo_global", obj.Risk().Global,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// EvaluateBatch evaluates independent requests concurrently. Results keep
// request order. The first invalid item cancels the rest and is returned as
// *BatchItemError.
func (s *Service) EvaluateBatch(ctx context.Context, reqs []EvaluateRequest) ([]*EvaluateResult, error) {
	results := make([]*EvaluateResult, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.Evaluate(ctx, req)
			if err != nil {
				return &BatchItemError{Index: i, Err: err}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) narrate(ctx context.Context, obj *DiscernmentObject) (string, string) {
	ctx, span := s.tracer.Start(ctx, "discernment.narrate")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.narrationTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.narrator.Narrate(ctx, obj.Snapshot())
	if err != nil {
		cause := "error"
		switch {
		case errors.Is(err, ports.ErrNarratorUnavailable):
			cause = "circuit_open"
		case errors.Is(err, context.DeadlineExceeded):
			cause = "timeout"
		}
		s.metrics.IncrementNarrationFailure(cause)
		span.RecordError(err)
		span.SetStatus(codes.Error, cause)
		s.logger.WarnContext(ctx, "narration failed",
			"request_id", requestcontext.RequestID(ctx),
			"cause", cause,
			"error", err,
		)
		return "", cause
	}
	s.metrics.ObserveNarrationLatency(time.Since(start))
	return text, ""
}
