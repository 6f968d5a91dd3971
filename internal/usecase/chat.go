package usecase

import (
	"context"
	"strings"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/domain/service"
)

// ChatUseCase answers questions about a stock from its fresh evaluation.
type ChatUseCase struct {
	eval     *EvaluationService
	narrator service.Narrator
}

func NewChatUseCase(eval *EvaluationService, narrator service.Narrator) *ChatUseCase {
	return &ChatUseCase{eval: eval, narrator: narrator}
}

func (c *ChatUseCase) Ask(ctx context.Context, userID string, req models.ChatRequest) (string, error) {
	snap, err := c.eval.Evaluate(ctx, userID, models.EvaluateRequest{Ticker: req.Ticker, Preset: req.Preset})
	if err != nil {
		return "", err
	}
	return c.narrator.Ask(ctx, strings.TrimSpace(req.Message), snap)
}
