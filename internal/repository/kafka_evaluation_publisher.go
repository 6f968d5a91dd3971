package repository

import (
	"context"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	pkgkafka "FinSignal/pkg/kafka"
)

type messageProducer interface {
	Publish(ctx context.Context, topic string, m pkgkafka.Message) error
	Close() error
}

// KafkaEvaluationPublisher writes evaluation records keyed by ticker so one
// ticker's history stays ordered on a partition.
type KafkaEvaluationPublisher struct {
	producer messageProducer
	topic    string
}

func NewKafkaEvaluationPublisher(p *pkgkafka.Producer, topic string) *KafkaEvaluationPublisher {
	return &KafkaEvaluationPublisher{producer: p, topic: topic}
}

func (p *KafkaEvaluationPublisher) Publish(ctx context.Context, r models.EvaluationRecord) error {
	return p.producer.Publish(ctx, p.topic, pkgkafka.Message{
		Key:     []byte(r.Ticker),
		Value:   r,
		Headers: map[string]string{"request_id": r.RequestID},
	})
}

func (p *KafkaEvaluationPublisher) Close() error {
	return p.producer.Close()
}

// NoopEvaluationPublisher drops records. Used when no brokers are configured.
type NoopEvaluationPublisher struct{}

func (NoopEvaluationPublisher) Publish(context.Context, models.EvaluationRecord) error { return nil }

func (NoopEvaluationPublisher) Close() error { return nil }

var (
	_ domrepo.EvaluationPublisher = (*KafkaEvaluationPublisher)(nil)
	_ domrepo.EvaluationPublisher = NoopEvaluationPublisher{}
)
