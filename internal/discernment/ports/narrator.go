package ports

import (
	"context"
	"errors"
)

//go:generate mockgen -source=narrator.go -destination=mocks/narrator_mock.go -package=mocks

// Narrator turns a finished evaluation into free-form prose. Implementations
// are external and non-deterministic; the engine never reads the text back.
type Narrator interface {
	Narrate(ctx context.Context, req NarrationRequest) (string, error)
}

// NarrationRequest is a read-only copy of one evaluation (port model).
// Mutating it has no effect on the record it was taken from.
type NarrationRequest struct {
	Fingerprint     string
	Affirmation     string
	Fundamento      float64
	Contexto        float64
	Principio       float64
	RiskTime        float64
	RiskMoney       float64
	RiskHealth      float64
	RiskPeace       float64
	RiskGlobal      float64
	DecisionState   string
	DecisionReason  string
	DominantTheme   string
	SecondaryThemes []string
	AgentNotes      string
}

// ErrNarratorUnavailable is returned by decorators that skip the narrator,
// for example while its circuit breaker is open.
var ErrNarratorUnavailable = errors.New("narrator unavailable")
