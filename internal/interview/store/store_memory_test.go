package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"axioma/internal/discernment"
	"axioma/internal/interview/models"
	"axioma/pkg/platform/sentinel"
)

// Justification: TTL expiry and copy-on-read semantics are store properties
// the service relies on but never exercises directly.
type MemoryStoreSuite struct {
	suite.Suite
	now   time.Time
	store *InMemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemory(30*time.Minute, WithClock(func() time.Time { return s.now }))
}

func newSession() *models.Session {
	return &models.Session{
		ID:          uuid.New(),
		Affirmation: "Mudarme a otra ciudad",
		Params:      discernment.DefaultInterviewParams(),
		State:       models.StateActive,
		Turns:       []models.Turn{},
		Credits:     map[discernment.Axis]int{discernment.AxisFundamento: 1},
		Consumed:    []string{"f_verifiable"},
	}
}

func (s *MemoryStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	sess := newSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess, got)

	s.Run("returns a copy", func() {
		got.Credits[discernment.AxisFundamento] = 9
		again, err := s.store.Get(ctx, sess.ID)
		s.Require().NoError(err)
		s.Equal(1, again.Credits[discernment.AxisFundamento])
	})

	s.Run("duplicate id conflicts", func() {
		s.ErrorIs(s.store.Create(ctx, sess), sentinel.ErrConflict)
	})
}

func (s *MemoryStoreSuite) TestGet_Unknown() {
	_, err := s.store.Get(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestExpiry() {
	ctx := context.Background()
	sess := newSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	s.now = s.now.Add(20 * time.Minute)
	_, err := s.store.Update(ctx, sess.ID, func(*models.Session) error { return nil })
	s.Require().NoError(err, "update slides the TTL")

	s.now = s.now.Add(20 * time.Minute)
	_, err = s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)

	s.now = s.now.Add(11 * time.Minute)
	_, err = s.store.Get(ctx, sess.ID)
	s.ErrorIs(err, sentinel.ErrExpired)

	_, err = s.store.Get(ctx, sess.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "expired sessions are evicted")
}

func (s *MemoryStoreSuite) TestSweep() {
	ctx := context.Background()
	old, fresh := newSession(), newSession()
	s.Require().NoError(s.store.Create(ctx, old))
	s.now = s.now.Add(20 * time.Minute)
	s.Require().NoError(s.store.Create(ctx, fresh))

	s.Zero(s.store.Sweep())
	s.now = s.now.Add(15 * time.Minute)
	s.Equal(1, s.store.Sweep())

	_, err := s.store.Get(ctx, old.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.Get(ctx, fresh.ID)
	s.NoError(err)
}

func (s *MemoryStoreSuite) TestUpdate() {
	ctx := context.Background()
	sess := newSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	s.Run("saves the mutation", func() {
		updated, err := s.store.Update(ctx, sess.ID, func(m *models.Session) error {
			m.Credits[discernment.AxisContexto]++
			return nil
		})
		s.Require().NoError(err)
		s.Equal(1, updated.Credits[discernment.AxisContexto])
	})

	s.Run("failed fn leaves the session untouched", func() {
		boom := errors.New("boom")
		_, err := s.store.Update(ctx, sess.ID, func(m *models.Session) error {
			m.State = models.StateStopped
			return boom
		})
		s.ErrorIs(err, boom)

		got, err := s.store.Get(ctx, sess.ID)
		s.Require().NoError(err)
		s.Equal(models.StateActive, got.State)
	})
}

func (s *MemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	sess := newSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	s.Require().NoError(s.store.Delete(ctx, sess.ID))
	s.ErrorIs(s.store.Delete(ctx, sess.ID), sentinel.ErrNotFound)
}
