package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"axioma/internal/discernment"
	"axioma/internal/interview/models"
	"axioma/pkg/platform/sentinel"
)

var (
	redisOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "axioma_interview_redis_op_duration_ms",
		Help:    "Latency of interview session store operations in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	}, []string{"op"})
)

const (
	// Redis key prefix for interview sessions
	sessionKeyPrefix = "axioma:interview:"

	// WATCH retries before an update gives up with sentinel.ErrConflict
	maxUpdateRetries = 3
)

// RedisStore keeps sessions as JSON values with a sliding TTL. It is the
// store to use when several server instances share interviews.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the key prefix, for sharing one Redis database.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedis constructs a Redis-backed session store. Every write resets the
// session TTL; a zero ttl stores sessions without expiry.
func NewRedis(client *redis.Client, ttl time.Duration, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: sessionKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) key(id uuid.UUID) string {
	return s.prefix + id.String()
}

// Create stores a new session. Uses SET NX so an existing ID is never
// overwritten.
func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	defer observe("create", time.Now())

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(sess.ID), data, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

// Get loads a session. Redis expires keys itself, so an expired session
// reads as sentinel.ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	defer observe("get", time.Now())

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// Update applies fn under WATCH so concurrent answers to one session cannot
// both land. A lost race is retried; fn may therefore run more than once.
func (s *RedisStore) Update(ctx context.Context, id uuid.UUID, fn func(*models.Session) error) (*models.Session, error) {
	defer observe("update", time.Now())

	key := s.key(id)
	var updated *models.Session
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return err
		}
		sess, err := decode(data)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		encoded, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err == nil {
			updated = sess
		}
		return err
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update session %s: %w", id, sentinel.ErrConflict)
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	defer observe("delete", time.Now())

	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func decode(data []byte) (*models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Credits == nil {
		sess.Credits = make(map[discernment.Axis]int)
	}
	return &sess, nil
}

func observe(op string, start time.Time) {
	redisOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
