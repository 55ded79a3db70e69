// Package redis connects the interview session store to Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"axioma/internal/platform/config"
)

// healthTimeout bounds /healthz pings so a hung Redis cannot stall probes.
const healthTimeout = 2 * time.Second

// Client is the shared go-redis client plus health checks.
type Client struct {
	*redis.Client
}

// New connects and pings Redis. It returns a nil client and no error when
// no URL is configured, which selects the in-memory session store.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// options parses the URL and lets explicit settings override what it
// carries. Zero values keep the go-redis defaults.
func options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	for _, d := range []struct {
		src time.Duration
		dst *time.Duration
	}{
		{cfg.DialTimeout, &opts.DialTimeout},
		{cfg.ReadTimeout, &opts.ReadTimeout},
		{cfg.WriteTimeout, &opts.WriteTimeout},
	} {
		if d.src > 0 {
			*d.dst = d.src
		}
	}
	return opts, nil
}

// Health pings Redis within healthTimeout.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return c.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
