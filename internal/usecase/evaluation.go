package usecase

import (
	"context"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	applogger "FinSignal/pkg/logger"

	"github.com/google/uuid"
)

// EvaluationService is the entry point used by the HTTP, WebSocket and CLI
// surfaces. It resolves the preset, runs the aggregator and publishes the
// result in the background.
type EvaluationService struct {
	agg       *Aggregator
	presets   *PresetService
	publisher domrepo.EvaluationPublisher
	logger    *applogger.Logger

	publishTimeout time.Duration
	inflight       sync.WaitGroup
	newID          func() string
}

func NewEvaluationService(agg *Aggregator, presets *PresetService, pub domrepo.EvaluationPublisher, l *applogger.Logger) *EvaluationService {
	return &EvaluationService{
		agg:            agg,
		presets:        presets,
		publisher:      pub,
		logger:         l,
		publishTimeout: 5 * time.Second,
		newID:          uuid.NewString,
	}
}

// Evaluate runs one evaluation for userID. An unknown preset name fails with
// models.ErrPresetNotFound before any upstream call.
func (s *EvaluationService) Evaluate(ctx context.Context, userID string, req models.EvaluateRequest) (*models.Snapshot, error) {
	preset, err := s.presets.Resolve(ctx, userID, req.Preset)
	if err != nil {
		return nil, err
	}

	snap, err := s.agg.Evaluate(ctx, EvaluateParams{Ticker: req.Ticker, Preset: preset, AsOfYear: req.Year})
	if err != nil {
		return nil, err
	}
	snap.RequestID = s.newID()

	s.publish(models.NewEvaluationRecord(snap, userID))
	return snap, nil
}

func (s *EvaluationService) publish(rec models.EvaluationRecord) {
	if s.publisher == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, rec); err != nil {
			s.logger.Warn("publish evaluation failed",
				applogger.String("request_id", rec.RequestID),
				applogger.String("ticker", rec.Ticker),
				applogger.Error(err),
			)
		}
	}()
}

// Wait blocks until background publishes have finished.
func (s *EvaluationService) Wait() {
	s.inflight.Wait()
}
