// Package store persists interview sessions between turns.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"axioma/internal/interview/models"
	"axioma/pkg/platform/sentinel"
)

type memoryEntry struct {
	session   *models.Session
	expiresAt time.Time
}

// InMemoryStore keeps sessions in process memory. Every read and write
// copies the session so callers never share state with the store.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemory creates a store whose sessions expire ttl after their last
// write. A zero ttl disables expiry.
func NewInMemory(ttl time.Duration, opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		sessions: make(map[uuid.UUID]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Create(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[sess.ID]; ok && !s.expired(e) {
		return sentinel.ErrConflict
	}
	s.sessions[sess.ID] = s.entry(sess)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.session.Clone(), nil
}

// Update runs fn on a copy under the store lock and saves it only when fn
// succeeds.
func (s *InMemoryStore) Update(_ context.Context, id uuid.UUID, fn func(*models.Session) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess := e.session.Clone()
	if err := fn(sess); err != nil {
		return nil, err
	}
	s.sessions[id] = s.entry(sess)
	return sess.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

// Sweep evicts every expired session and reports how many were removed.
func (s *InMemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// lookup must be called with mu held. Expired sessions are evicted.
func (s *InMemoryStore) lookup(id uuid.UUID) (memoryEntry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return memoryEntry{}, sentinel.ErrNotFound
	}
	if s.expired(e) {
		delete(s.sessions, id)
		return memoryEntry{}, sentinel.ErrExpired
	}
	return e, nil
}

func (s *InMemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

func (s *InMemoryStore) entry(sess *models.Session) memoryEntry {
	e := memoryEntry{session: sess.Clone()}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return e
}
