//go:build integration

// Package containers starts throwaway backing services for integration
// tests. Tests using it need Docker and the integration build tag.
package containers

import (
	"context"
	"testing"

	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"axioma/internal/platform/config"
	platformredis "axioma/internal/platform/redis"
)

const redisImage = "redis:7-alpine"

// Redis is a container reached through the same client constructor the
// server uses for AXIOMA_REDIS_URL.
type Redis struct {
	URL    string
	Client *platformredis.Client
}

// StartRedis runs a Redis container for the calling test and tears it down
// when the test finishes.
func StartRedis(t *testing.T) *Redis {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	client, err := platformredis.New(ctx, config.RedisConfig{URL: url, PoolSize: 4})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return &Redis{URL: url, Client: client}
}

// Flush drops every key so suite tests start from an empty database.
func (r *Redis) Flush(ctx context.Context) error {
	return r.Client.FlushDB(ctx).Err()
}
