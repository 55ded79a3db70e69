package ports

import (
	"context"

	"github.com/google/uuid"

	"axioma/internal/discernment"
	"axioma/internal/interview/models"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// Answerer supplies answers to emitted questions. It is the interview's only
// suspension point; implementations block until the answer is available.
type Answerer interface {
	Answer(ctx context.Context, q models.Question) (string, error)
}

// Store persists sessions between turns.
// Implementations return sentinel.ErrNotFound for unknown IDs and
// sentinel.ErrExpired when a session outlived its TTL.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	// Update applies fn to the stored session and saves the result atomically.
	Update(ctx context.Context, id uuid.UUID, fn func(*models.Session) error) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Evaluator runs the folded input through the discernment engine.
type Evaluator interface {
	Evaluate(ctx context.Context, req discernment.EvaluateRequest) (*discernment.EvaluateResult, error)
}
