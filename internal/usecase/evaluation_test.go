package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/repository"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	records []models.EvaluationRecord
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, r models.EvaluationRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type memoryEvaluationStore struct {
	records []models.EvaluationRecord
}

func (s *memoryEvaluationStore) Store(_ context.Context, r models.EvaluationRecord) error {
	s.records = append(s.records, r)
	return nil
}

func (s *memoryEvaluationStore) Query(_ context.Context, ticker string, limit int) ([]models.EvaluationRecord, error) {
	var out []models.EvaluationRecord
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if s.records[i].Ticker == ticker {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *memoryEvaluationStore) Health(context.Context) error { return nil }

func newTestEvaluationService(pub *recordingPublisher) *EvaluationService {
	agg := newTestAggregator(fakeTable{rows: []models.SecurityIdentity{samsung}}, okQuotes(), fullDisclosure())
	svc := NewEvaluationService(agg, NewPresetService(repository.NewMemoryPresetStore()), pub, applogger.Nop())
	svc.newID = func() string { return "req-1" }
	return svc
}

func TestEvaluationServicePublishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestEvaluationService(pub)

	snap, err := svc.Evaluate(context.Background(), "u1", models.EvaluateRequest{Ticker: "005930"})
	require.NoError(t, err)
	assert.Equal(t, "req-1", snap.RequestID)
	assert.Equal(t, models.SystemPresetName, snap.PresetName)
	require.Len(t, snap.Signals, 6)

	svc.Wait()
	require.Len(t, pub.records, 1)
	rec := pub.records[0]
	assert.Equal(t, "req-1", rec.RequestID)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "005930", rec.Ticker)
	assert.Equal(t, string(models.GrowthOrdinary), rec.GrowthKind)
	require.NotNil(t, rec.GrowthPercent)
	assert.Equal(t, 25.0, *rec.GrowthPercent)
}

func TestEvaluationServicePublishFailureIsSilent(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestEvaluationService(pub)

	_, err := svc.Evaluate(context.Background(), "u1", models.EvaluateRequest{Ticker: "005930"})
	require.NoError(t, err)
	svc.Wait()
}

func TestEvaluationServiceUnknownPreset(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestEvaluationService(pub)

	_, err := svc.Evaluate(context.Background(), "u1", models.EvaluateRequest{Ticker: "005930", Preset: "nope"})
	assert.ErrorIs(t, err, models.ErrPresetNotFound)
	svc.Wait()
	assert.Empty(t, pub.records)
}

func TestEvaluationSinkRoundTrip(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestEvaluationService(pub)
	_, err := svc.Evaluate(context.Background(), "u1", models.EvaluateRequest{Ticker: "005930"})
	require.NoError(t, err)
	svc.Wait()

	store := &memoryEvaluationStore{}
	sink := NewEvaluationSink("finsignal.evaluations", store, metrics.Noop{})
	payload, err := json.Marshal(pub.records[0])
	require.NoError(t, err)
	require.NoError(t, sink.Handle(context.Background(), payload))

	got, err := sink.History(context.Background(), " 005930 ", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "req-1", got[0].RequestID)

	assert.Error(t, sink.Handle(context.Background(), []byte("{")))
	assert.Error(t, sink.Handle(context.Background(), []byte(`{"ticker":"X"}`)))

	var disabled *EvaluationSink
	_, err = disabled.History(context.Background(), "005930", 10)
	assert.ErrorIs(t, err, models.ErrHistoryDisabled)
}
