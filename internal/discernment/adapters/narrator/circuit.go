package narrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"axioma/internal/discernment/ports"
	"axioma/pkg/platform/circuit"
)

// CircuitNarrator skips the wrapped narrator while it keeps failing:
// - Open after N consecutive failures; calls fail fast with ErrNarratorUnavailable.
// - While open, one probe per cooldown reaches the backend.
// - Close after M consecutive successful probes.
type CircuitNarrator struct {
	next    ports.Narrator
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewCircuit wraps next with breaker.
func NewCircuit(next ports.Narrator, breaker *circuit.Breaker, logger *slog.Logger) *CircuitNarrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CircuitNarrator{next: next, breaker: breaker, logger: logger}
}

// Narrate implements ports.Narrator.
func (c *CircuitNarrator) Narrate(ctx context.Context, req ports.NarrationRequest) (string, error) {
	if !c.breaker.Allow() {
		return "", fmt.Errorf("%s circuit open: %w", c.breaker.Name(), ports.ErrNarratorUnavailable)
	}

	text, err := c.next.Narrate(ctx, req)
	if err != nil {
		// Caller cancellation is not a backend failure
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "narrator circuit opened",
				"breaker", c.breaker.Name(),
				"error", err,
			)
		}
		return "", err
	}

	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "narrator circuit closed", "breaker", c.breaker.Name())
	}
	return text, nil
}
