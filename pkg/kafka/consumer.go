package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

// maxHandlerAttempts bounds how often one message is handed to the Handler
// before it is committed and skipped.
const maxHandlerAttempts = 3

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// MessageReader is the subset of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

// ConsumerMetrics counts consumed messages by topic and outcome.
type ConsumerMetrics struct {
	messages *prometheus.CounterVec
}

// NewConsumerMetrics registers the consumer counters with reg.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	m := &ConsumerMetrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_total",
			Help: "Kafka messages consumed, by outcome (ok, malformed, failed).",
		}, []string{"topic", "outcome"}),
	}
	reg.MustRegister(m.messages)
	return m
}

func (m *ConsumerMetrics) observe(topic, outcome string) {
	if m != nil {
		m.messages.WithLabelValues(topic, outcome).Inc()
	}
}

// Consumer reads events from a consumer group and hands them to a Handler.
// Messages are committed after handling, including poison messages that
// exhausted their attempts, so one bad event never blocks a partition.
type Consumer struct {
	reader    MessageReader
	handler   Handler
	logger    *slog.Logger
	metrics   *ConsumerMetrics
	backoff   time.Duration
	closeOnce sync.Once
}

// NewConsumer creates a consumer-group reader over cfg.Topics.
func NewConsumer(cfg ConsumerConfig, handler Handler, metrics *ConsumerMetrics, logger *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})
	return NewConsumerWithReader(reader, handler, metrics, logger)
}

// NewConsumerWithReader wires a consumer around an existing reader.
func NewConsumerWithReader(reader MessageReader, handler Handler, metrics *ConsumerMetrics, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  logger,
		metrics: metrics,
		backoff: 100 * time.Millisecond,
	}
}

// Run consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.ErrorContext(ctx, "fetch message failed", slog.String("error", err.Error()))
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}

		c.metrics.observe(msg.Topic, c.process(ctx, msg))

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "commit message failed",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process handles one message and returns its outcome label.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) string {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.WarnContext(ctx, "skipping malformed message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return "malformed"
	}

	for attempt := 1; attempt <= maxHandlerAttempts; attempt++ {
		err = c.handler(ctx, event)
		if err == nil {
			return "ok"
		}
		c.logger.WarnContext(ctx, "event handler failed",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.String("topic", msg.Topic),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if attempt < maxHandlerAttempts && !sleep(ctx, time.Duration(attempt)*c.backoff) {
			return "failed"
		}
	}

	c.logger.ErrorContext(ctx, "giving up on event",
		slog.String("event_type", event.EventType),
		slog.String("event_id", event.EventID),
		slog.String("topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)
	return "failed"
}

// Close closes the reader once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
