package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

// Message is one record to publish. Non-byte values are JSON encoded.
type Message struct {
	Key     []byte
	Value   any
	Headers map[string]string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer wraps a kafka-go writer.
type Producer struct {
	writer messageWriter
	comp   string
}

// NewProducer creates a producer. Brokers are required.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: -1,
		Compression:  "gzip",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1 << 20,
		BatchTimeout: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka producer: brokers are required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}
	registerProducerMetrics()
	return &Producer{writer: w, comp: cfg.Compression}, nil
}

// Publish writes one message to topic. Keys hash to partitions so records of
// one key stay ordered.
func (p *Producer) Publish(ctx context.Context, topic string, m Message) error {
	start := time.Now()

	value, err := encodeValue(m.Value)
	if err != nil {
		return err
	}
	km := kafka.Message{Topic: topic, Key: m.Key, Value: value, Time: start}
	for k, v := range m.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	err = p.writer.WriteMessages(ctx, km)
	observePublish(topic, p.comp, len(value), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encodeValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return b, nil
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	}
	return kafka.Gzip
}

var (
	producerMetricsOnce sync.Once

	producerMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsignal",
			Subsystem: "kafka_producer",
			Name:      "messages_total",
			Help:      "Messages published to Kafka",
		},
		[]string{"topic", "compression", "result"},
	)
	producerBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsignal",
			Subsystem: "kafka_producer",
			Name:      "bytes_total",
			Help:      "Payload bytes published",
		},
		[]string{"topic"},
	)
	producerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finsignal",
			Subsystem: "kafka_producer",
			Name:      "publish_seconds",
			Help:      "Publish latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)

func registerProducerMetrics() {
	producerMetricsOnce.Do(func() {
		prometheus.MustRegister(producerMessages, producerBytes, producerLatency)
	})
}

func observePublish(topic, comp string, size int, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	producerMessages.WithLabelValues(topic, comp, result).Inc()
	producerBytes.WithLabelValues(topic).Add(float64(size))
	producerLatency.WithLabelValues(topic).Observe(dur.Seconds())
}
