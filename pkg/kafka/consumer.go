package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"FinSignal/pkg/logger"
)

// MessageHandler processes messages of one topic.
type MessageHandler interface {
	Topic() string
	Handle(ctx context.Context, value []byte) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type dlqWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic with a worker pool. A message that still fails
// after RetryMax attempts goes to the DLQ (when set) and is committed.
type Consumer struct {
	cfg     ConsumerConfig
	handler MessageHandler
	reader  messageReader
	dlq     dlqWriter
	log     *logger.Logger

	queue  chan kafka.Message
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumer builds a consumer for h.Topic().
func NewConsumer(h MessageHandler, l *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := ConsumerConfig{
		WorkerCount: 4,
		BufferSize:  256,
		RetryMax:    3,
		BackoffMin:  100 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.Brokers) == 0 || cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer: brokers and group id are required")
	}
	if h == nil || h.Topic() == "" {
		return nil, fmt.Errorf("kafka consumer: handler with topic is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          h.Topic(),
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: 0,
	})
	var dlq dlqWriter
	if cfg.DLQTopic != "" {
		dlq = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.DLQTopic,
			RequiredAcks: kafka.RequireAll,
		}
	}
	registerConsumerMetrics()
	return newConsumer(cfg, h, reader, dlq, l), nil
}

func newConsumer(cfg ConsumerConfig, h MessageHandler, r messageReader, dlq dlqWriter, l *logger.Logger) *Consumer {
	if l == nil {
		l = logger.Nop()
	}
	return &Consumer{
		cfg:     cfg,
		handler: h,
		reader:  r,
		dlq:     dlq,
		log:     l.With(logger.String("topic", h.Topic())),
		queue:   make(chan kafka.Message, cfg.BufferSize),
	}
}

// Start launches the fetch loop and workers. It returns immediately.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for m := range c.queue {
				c.process(ctx, m)
			}
		}()
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.queue)
		for {
			m, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				c.log.Warn("kafka fetch failed", logger.Error(err))
				if !sleepCtx(ctx, c.cfg.BackoffMin) {
					return
				}
				continue
			}
			select {
			case c.queue <- m:
			case <-ctx.Done():
				return
			}
		}
	}()
	c.log.Info("kafka consumer started", logger.Int("workers", c.cfg.WorkerCount))
}

// Stop cancels the loop, waits for workers and closes the reader.
func (c *Consumer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var errs []error
	if err := c.reader.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.dlq != nil {
		if err := c.dlq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Consumer) process(ctx context.Context, m kafka.Message) {
	start := time.Now()
	topic := c.handler.Topic()

	var err error
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		if attempt > 0 {
			consumerRetries.WithLabelValues(topic).Inc()
			if !sleepCtx(ctx, backoffWithJitter(attempt, c.cfg.BackoffMin, c.cfg.BackoffMax)) {
				return
			}
		}
		if err = c.handler.Handle(ctx, m.Value); err == nil {
			break
		}
	}
	consumerLatency.WithLabelValues(topic).Observe(time.Since(start).Seconds())

	if err != nil {
		consumerMessages.WithLabelValues(topic, "failed").Inc()
		c.log.Error("kafka message failed",
			logger.Int64("offset", m.Offset),
			logger.Int("partition", m.Partition),
			logger.String("request_id", header(m, "request_id")),
			logger.Error(err),
		)
		if c.dlq != nil {
			dead := kafka.Message{
				Key:   m.Key,
				Value: m.Value,
				Headers: append(m.Headers,
					kafka.Header{Key: "error", Value: []byte(err.Error())},
					kafka.Header{Key: "source_topic", Value: []byte(topic)},
				),
			}
			if derr := c.dlq.WriteMessages(ctx, dead); derr != nil {
				c.log.Error("kafka dlq write failed", logger.Error(derr))
				return
			}
			consumerMessages.WithLabelValues(topic, "dlq").Inc()
		}
	} else {
		consumerMessages.WithLabelValues(topic, "ok").Inc()
	}

	if cerr := c.commit(ctx, m); cerr != nil {
		c.log.Error("kafka commit failed", logger.Int64("offset", m.Offset), logger.Error(cerr))
	}
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if err = c.reader.CommitMessages(ctx, m); err == nil {
			return nil
		}
		if !sleepCtx(ctx, backoffWithJitter(attempt+1, c.cfg.BackoffMin, c.cfg.BackoffMax)) {
			return ctx.Err()
		}
	}
	return err
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// backoffWithJitter doubles min per attempt, caps at max and adds up to 20%
// jitter.
func backoffWithJitter(attempt int, min, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := min
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	if d <= 0 {
		return 0
	}
	return d + time.Duration(rand.Int63n(int64(d)/5+1))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

var (
	consumerMetricsOnce sync.Once

	consumerMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsignal",
			Subsystem: "kafka_consumer",
			Name:      "messages_total",
			Help:      "Consumed messages by outcome",
		},
		[]string{"topic", "result"},
	)
	consumerRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsignal",
			Subsystem: "kafka_consumer",
			Name:      "retries_total",
			Help:      "Handler retries",
		},
		[]string{"topic"},
	)
	consumerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finsignal",
			Subsystem: "kafka_consumer",
			Name:      "handle_seconds",
			Help:      "Time to handle one message including retries",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)

func registerConsumerMetrics() {
	consumerMetricsOnce.Do(func() {
		prometheus.MustRegister(consumerMessages, consumerRetries, consumerLatency)
	})
}
