// Package gemini answers questions about an evaluated stock with a Gemini model,
// falling back to canned answers when the model is unavailable.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/domain/service"
	pmetrics "FinSignal/internal/service/metrics"
	"FinSignal/pkg/logger"

	"google.golang.org/genai"
)

// Config holds the model settings. An empty APIKey disables the model and
// every answer comes from the fallback.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

type generateFunc func(ctx context.Context, prompt string) (string, error)

// Narrator implements service.Narrator.
type Narrator struct {
	generate generateFunc
	timeout  time.Duration
	logger   *logger.Logger
}

var _ service.Narrator = (*Narrator)(nil)

// New creates a narrator. The genai client is only built when an API key is set.
func New(ctx context.Context, cfg Config, l *logger.Logger) (*Narrator, error) {
	if l == nil {
		l = logger.Nop()
	}
	n := &Narrator{timeout: cfg.Timeout, logger: l}
	if cfg.APIKey == "" {
		l.Warn("gemini api key not set, chat answers use fallback only")
		return n, nil
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(cfg.Temperature)}
	n.generate = func(ctx context.Context, prompt string) (string, error) {
		contents := []*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(prompt)},
		}}
		resp, err := client.Models.GenerateContent(ctx, cfg.Model, contents, genCfg)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return n, nil
}

func (n *Narrator) Ask(ctx context.Context, question string, s *models.Snapshot) (string, error) {
	if s == nil {
		return "", errors.New("narrator: nil snapshot")
	}
	if n.generate != nil {
		if n.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, n.timeout)
			defer cancel()
		}
		text, err := n.generate(ctx, Prompt(question, s))
		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			pmetrics.NarrationOutcomes.WithLabelValues("model").Inc()
			return text, nil
		}
		if err != nil {
			n.logger.Warn("gemini generate failed",
				logger.String("ticker", s.Security.Ticker),
				logger.Error(err),
			)
		}
	}
	pmetrics.NarrationOutcomes.WithLabelValues("fallback").Inc()
	return Fallback(question, s), nil
}
