package service

import (
	"context"

	"FinSignal/internal/domain/models"
)

// Narrator answers a natural-language question about an evaluated snapshot.
type Narrator interface {
	Ask(ctx context.Context, question string, s *models.Snapshot) (string, error)
}
