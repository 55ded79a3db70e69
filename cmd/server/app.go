package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"axioma/internal/discernment"
	"axioma/internal/discernment/adapters/narrator"
	discernmenthandler "axioma/internal/discernment/handler"
	discernmentmetrics "axioma/internal/discernment/metrics"
	"axioma/internal/interview"
	interviewhandler "axioma/internal/interview/handler"
	interviewmetrics "axioma/internal/interview/metrics"
	interviewports "axioma/internal/interview/ports"
	"axioma/internal/interview/store"
	"axioma/internal/platform/config"
	platformmetrics "axioma/internal/platform/metrics"
	"axioma/internal/platform/middleware"
	"axioma/internal/platform/observability"
	"axioma/internal/platform/ratelimit"
	platformredis "axioma/internal/platform/redis"
	"axioma/internal/platform/reload"
	"axioma/pkg/platform/httputil"
	"axioma/pkg/platform/middleware/requestid"
	"axioma/pkg/platform/middleware/requesttime"
)

const housekeepingInterval = time.Minute

// app owns every long-lived dependency of the server process.
type app struct {
	cfg         config.Server
	logger      *slog.Logger
	httpMetrics *platformmetrics.Metrics
	discernment *discernment.Service
	interviews  *interview.Service
	memStore    *store.InMemoryStore
	redis       *platformredis.Client
	limiter     *ratelimit.Limiter
}

func newApp(ctx context.Context, cfg config.Server, logger *slog.Logger) (*app, error) {
	engineCfg := discernment.DefaultConfig()
	if cfg.EngineConfigPath != "" {
		loaded, err := discernment.LoadConfig(cfg.EngineConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load engine config: %w", err)
		}
		engineCfg = loaded
	}
	engine, err := discernment.NewEngine(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	httpMetrics, reg := platformmetrics.New()
	a := &app{cfg: cfg, logger: logger, httpMetrics: httpMetrics}

	opts := []discernment.Option{
		discernment.WithLogger(logger),
		discernment.WithMetrics(discernmentmetrics.NewWithRegistry(reg)),
		discernment.WithNarrationTimeout(cfg.Narrator.Timeout),
	}
	n, err := narrator.FromConfig(cfg.Narrator, logger)
	if err != nil {
		return nil, err
	}
	if n != nil {
		opts = append(opts, discernment.WithNarrator(n))
	}
	a.discernment, err = discernment.NewService(engine, opts...)
	if err != nil {
		return nil, err
	}

	sessions, err := a.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	controller, err := interview.NewController(engineCfg.Interview)
	if err != nil {
		return nil, fmt.Errorf("build interview controller: %w", err)
	}
	a.interviews, err = interview.NewService(controller, sessions, a.discernment,
		interview.WithLogger(logger),
		interview.WithMetrics(interviewmetrics.NewWithRegistry(reg)),
	)
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit.RequestsPerMinute > 0 {
		a.limiter = ratelimit.New(cfg.RateLimit.RequestsPerMinute, time.Minute)
	}
	return a, nil
}

func (a *app) sessionStore(ctx context.Context) (interviewports.Store, error) {
	client, err := platformredis.New(ctx, a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client != nil {
		a.redis = client
		a.logger.Info("interview sessions stored in redis")
		return store.NewRedis(client.Client, a.cfg.SessionTTL), nil
	}
	a.memStore = store.NewInMemory(a.cfg.SessionTTL)
	a.logger.Info("interview sessions stored in memory")
	return a.memStore, nil
}

// Router mounts every endpoint behind the shared middleware stack.
func (a *app) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recover(a.logger))
	r.Use(a.httpMetrics.Middleware)
	r.Use(middleware.AccessLog(a.logger))

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", a.httpMetrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(a.limiter, a.logger))
		discernmenthandler.New(a.discernment, a.logger).Register(r)
		interviewhandler.New(a.interviews, a.logger).Register(r)
	})
	return r
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "sessions": "memory"}
	if a.redis != nil {
		status["sessions"] = "redis"
		if err := a.redis.Health(r.Context()); err != nil {
			status["status"] = "degraded"
			httputil.WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// ReloadEngine rebuilds the engine from the config file. A rejected file
// leaves the running engine in place.
func (a *app) ReloadEngine(ctx context.Context) error {
	cfg, err := discernment.LoadConfig(a.cfg.EngineConfigPath)
	if err == nil {
		err = a.discernment.Reload(ctx, cfg)
	}
	if err != nil {
		observability.LogAudit(ctx, a.logger, "engine_config_reloaded",
			"outcome", "rejected",
			"path", a.cfg.EngineConfigPath,
			"error", err.Error(),
		)
		return err
	}
	observability.LogAudit(ctx, a.logger, "engine_config_reloaded",
		"outcome", "applied",
		"path", a.cfg.EngineConfigPath,
	)
	return nil
}

// RunBackground runs the config watcher and housekeeping until ctx is done.
func (a *app) RunBackground(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.EngineConfigPath != "" && a.cfg.WatchEngine {
		w, err := reload.New(a.cfg.EngineConfigPath, a.ReloadEngine, reload.WithLogger(a.logger))
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(ctx) })
	}
	g.Go(func() error {
		ticker := time.NewTicker(housekeepingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				a.housekeep(ctx)
			}
		}
	})
	return g.Wait()
}

func (a *app) housekeep(ctx context.Context) {
	var sessions, clients int
	if a.memStore != nil {
		sessions = a.memStore.Sweep()
	}
	if a.limiter != nil {
		clients = a.limiter.Prune()
	}
	if sessions > 0 || clients > 0 {
		a.logger.DebugContext(ctx, "housekeeping",
			"expired_sessions", sessions,
			"idle_rate_limit_clients", clients,
		)
	}
}

// Close releases external connections.
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", "error", err)
		}
	}
}
