//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"axioma/internal/discernment"
	"axioma/internal/interview"
	"axioma/internal/interview/models"
	"axioma/internal/interview/store"
	"axioma/pkg/platform/sentinel"
	"axioma/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.Redis
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.StartRedis(s.T())
	s.store = store.NewRedis(s.redis.Client.Client, time.Minute)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
}

func (s *RedisStoreSuite) startSession() *models.Session {
	c, err := interview.NewController(discernment.DefaultInterviewParams())
	s.Require().NoError(err)
	yes := true
	sess, err := c.Start("Mudarme a otra ciudad", discernment.RawInput{Verifiable: &yes})
	s.Require().NoError(err)
	return sess
}

// TestRoundTrip verifies a session survives JSON encoding through Redis with
// its pending question, credits and seed intact.
func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	sess := s.startSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, got.ID)
	s.Equal(sess.Pending, got.Pending)
	s.Equal(sess.Credits, got.Credits)
	s.Equal(sess.Preconsumed, got.Preconsumed)
	s.Require().NotNil(got.Seed.Verifiable)
	s.True(*got.Seed.Verifiable)
	s.True(sess.CreatedAt.Equal(got.CreatedAt))

	ttl, err := s.redis.Client.TTL(ctx, "axioma:interview:"+sess.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisStoreSuite) TestCreate_DuplicateConflicts() {
	ctx := context.Background()
	sess := s.startSession()
	s.Require().NoError(s.store.Create(ctx, sess))
	s.ErrorIs(s.store.Create(ctx, sess), sentinel.ErrConflict)
}

func (s *RedisStoreSuite) TestMissingSession() {
	ctx := context.Background()
	_, err := s.store.Get(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Update(ctx, uuid.New(), func(*models.Session) error { return nil })
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, uuid.New()), sentinel.ErrNotFound)
}

// TestConcurrentAnswers verifies WATCH keeps every concurrent answer: each
// goroutine either lands its turn or gives up with ErrConflict, and the
// stored transcript has exactly the landed turns.
func (s *RedisStoreSuite) TestConcurrentAnswers() {
	ctx := context.Background()
	c, err := interview.NewController(discernment.InterviewParams{
		MinProbesPerAxis: 5, MinCompleteness: 1, MaxTurns: 16, NoGainWindow: 2,
	})
	s.Require().NoError(err)
	sess, err := c.Start("Mudarme a otra ciudad", discernment.RawInput{})
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, sess))

	const goroutines = 8
	var wg sync.WaitGroup
	var landed, conflicts, other atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(ctx, sess.ID, func(m *models.Session) error {
				return c.Answer(m, "si")
			})
			switch {
			case err == nil:
				landed.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(0), other.Load())
	s.Equal(int32(goroutines), landed.Load()+conflicts.Load())

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(int(landed.Load()), got.TurnCount())
}
