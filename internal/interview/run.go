package interview

import (
	"context"
	"fmt"

	"axioma/internal/interview/models"
	"axioma/internal/interview/ports"
)

// Run drives s to a stop against answerer, one blocking turn at a time.
// Cancelling ctx leaves s active with its progress so far; Fold still works
// on it and records the caller_finished reason.
func (c *Controller) Run(ctx context.Context, s *models.Session, answerer ports.Answerer) error {
	for {
		q, ok := c.Next(s)
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		answer, err := answerer.Answer(ctx, q)
		if err != nil {
			return fmt.Errorf("answer %s: %w", q.ID, err)
		}
		if err := c.Answer(s, answer); err != nil {
			return err
		}
	}
}
