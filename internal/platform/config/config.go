package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Narrator backends.
const (
	NarratorNone   = "none"
	NarratorOllama = "ollama"
	NarratorOpenAI = "openai"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr             string
	LogLevel         string
	LogFormat        string
	EngineConfigPath string
	WatchEngine      bool
	SessionTTL       time.Duration
	ShutdownTimeout  time.Duration
	RateLimit        RateLimitConfig
	Redis            RedisConfig
	Narrator         NarratorConfig
}

// RedisConfig configures the interview session store. An empty URL keeps
// sessions in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NarratorConfig selects and tunes the narration backend.
type NarratorConfig struct {
	Backend          string
	BaseURL          string
	Model            string
	APIKey           string
	Timeout          time.Duration
	CacheSize        int
	FailureThreshold int
	Cooldown         time.Duration
}

// RateLimitConfig bounds requests per client IP. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// FromEnv builds a Server config from AXIOMA_* environment variables so main
// stays lean.
func FromEnv() (Server, error) {
	var p parser
	cfg := Server{
		Addr:             p.str("AXIOMA_ADDR", ":8080"),
		LogLevel:         p.str("AXIOMA_LOG_LEVEL", "info"),
		LogFormat:        p.str("AXIOMA_LOG_FORMAT", "json"),
		EngineConfigPath: p.str("AXIOMA_ENGINE_CONFIG", ""),
		WatchEngine:      p.boolean("AXIOMA_ENGINE_WATCH", true),
		SessionTTL:       p.duration("AXIOMA_SESSION_TTL", 30*time.Minute),
		ShutdownTimeout:  p.duration("AXIOMA_SHUTDOWN_TIMEOUT", 10*time.Second),
		RateLimit: RateLimitConfig{
			RequestsPerMinute: p.integer("AXIOMA_RATE_LIMIT_PER_MINUTE", 0),
		},
		Redis: RedisConfig{
			URL:          p.str("AXIOMA_REDIS_URL", ""),
			PoolSize:     p.integer("AXIOMA_REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("AXIOMA_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("AXIOMA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("AXIOMA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("AXIOMA_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Narrator: NarratorConfig{
			Backend:          strings.ToLower(p.str("AXIOMA_NARRATOR", NarratorNone)),
			BaseURL:          p.str("AXIOMA_NARRATOR_URL", ""),
			Model:            p.str("AXIOMA_NARRATOR_MODEL", ""),
			APIKey:           p.str("AXIOMA_NARRATOR_API_KEY", ""),
			Timeout:          p.duration("AXIOMA_NARRATOR_TIMEOUT", 30*time.Second),
			CacheSize:        p.integer("AXIOMA_NARRATOR_CACHE_SIZE", 256),
			FailureThreshold: p.integer("AXIOMA_NARRATOR_FAILURE_THRESHOLD", 3),
			Cooldown:         p.duration("AXIOMA_NARRATOR_COOLDOWN", 30*time.Second),
		},
	}
	if p.err != nil {
		return Server{}, p.err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (s Server) Validate() error {
	switch s.Narrator.Backend {
	case NarratorNone, NarratorOllama:
	case NarratorOpenAI:
		if s.Narrator.APIKey == "" {
			return fmt.Errorf("AXIOMA_NARRATOR_API_KEY is required for the openai narrator")
		}
	default:
		return fmt.Errorf("AXIOMA_NARRATOR must be one of none, ollama, openai (got %q)", s.Narrator.Backend)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("AXIOMA_SESSION_TTL must be positive")
	}
	if s.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("AXIOMA_RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

// parser records the first malformed variable and keeps defaults after it.
type parser struct {
	err error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) boolean(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("parse %s=%q: %w", key, raw, err)
	}
}
