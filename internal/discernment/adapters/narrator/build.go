package narrator

import (
	"fmt"
	"log/slog"
	"net/http"

	"axioma/internal/discernment/ports"
	"axioma/internal/platform/config"
	"axioma/pkg/platform/circuit"
)

// FromConfig builds the configured backend and stacks the cache over the
// circuit breaker over it, so cache hits never touch the breaker. A nil
// narrator with a nil error means narration is disabled.
func FromConfig(cfg config.NarratorConfig, logger *slog.Logger) (ports.Narrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	var backend ports.Narrator
	switch cfg.Backend {
	case config.NarratorNone, "":
		return nil, nil
	case config.NarratorOllama:
		backend = NewOllama(cfg.BaseURL, cfg.Model, WithOllamaHTTPClient(httpClient))
	case config.NarratorOpenAI:
		o, err := NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model, WithOpenAIHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("build openai narrator: %w", err)
		}
		backend = o
	default:
		return nil, fmt.Errorf("unknown narrator backend %q", cfg.Backend)
	}

	breaker := circuit.New("narrator-"+cfg.Backend,
		circuit.WithFailureThreshold(cfg.FailureThreshold),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(cfg.Cooldown),
	)
	var n ports.Narrator = NewCircuit(backend, breaker, logger)
	if cfg.CacheSize > 0 {
		cached, err := NewCached(n, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		n = cached
	}
	logger.Info("narrator enabled", "backend", cfg.Backend, "cache_size", cfg.CacheSize)
	return n, nil
}
