package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	pkgkafka "FinSignal/pkg/kafka"
)

// EvaluationSink consumes evaluation records and keeps them as history.
type EvaluationSink struct {
	topic   string
	store   domrepo.EvaluationStore
	metrics domrepo.Metrics
}

func NewEvaluationSink(topic string, store domrepo.EvaluationStore, metrics domrepo.Metrics) *EvaluationSink {
	return &EvaluationSink{topic: topic, store: store, metrics: metrics}
}

func (h *EvaluationSink) Topic() string { return h.topic }

func (h *EvaluationSink) Handle(ctx context.Context, b []byte) error {
	var rec models.EvaluationRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordUpstreamError("kafka", "unmarshal")
		return fmt.Errorf("decode evaluation: %w", err)
	}
	if rec.Ticker == "" || rec.RequestID == "" {
		h.metrics.RecordUpstreamError("kafka", "invalid")
		return fmt.Errorf("decode evaluation: missing ticker or request id")
	}

	start := time.Now()
	err := h.store.Store(ctx, rec)
	h.metrics.RecordLatency("history_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordUpstreamError("clickhouse", "insert")
		return err
	}
	return nil
}

// History returns the latest records for a ticker, newest first.
func (h *EvaluationSink) History(ctx context.Context, ticker string, limit int) ([]models.EvaluationRecord, error) {
	if h == nil || h.store == nil {
		return nil, models.ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = 30
	}
	return h.store.Query(ctx, strings.ToUpper(strings.TrimSpace(ticker)), limit)
}

var _ pkgkafka.MessageHandler = (*EvaluationSink)(nil)
