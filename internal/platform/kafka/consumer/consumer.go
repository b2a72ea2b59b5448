package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Message represents a received queue message.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
	// Attempt is 1 on first delivery and increments on each local requeue.
	Attempt int
}

// Handler processes consumed messages.
//
// A nil return acknowledges the message (business rejections and approvals
// are both successful completions). A non-nil return requeues the message
// until the consumer's attempt cap is reached, after which the message is
// acknowledged anyway and counted as poison.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Config holds consumer configuration.
type Config struct {
	Brokers     string
	GroupID     string
	Topics      []string
	MaxAttempts int
	// RetryBackoff is the pause before redelivering a failed message.
	RetryBackoff time.Duration
}

// Consumer wraps the confluent-kafka-go consumer with manual commits for
// at-least-once delivery and a bounded local requeue loop.
type Consumer struct {
	consumer    *kafka.Consumer
	handler     Handler
	logger      *slog.Logger
	topics      []string
	maxAttempts int
	backoff     time.Duration

	// attempts tracks in-flight delivery counts keyed by topic/partition/offset.
	attempts map[string]int

	onPoison func()
}

// New creates a new queue consumer.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer group ID not configured")
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("no topics configured")
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  cfg.Brokers,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false, // manual commits for at-least-once delivery
	}

	consumer, err := kafka.NewConsumer(configMap)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	return &Consumer{
		consumer:    consumer,
		handler:     handler,
		logger:      logger,
		topics:      cfg.Topics,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		attempts:    make(map[string]int),
	}, nil
}

// OnPoison registers a callback invoked when a message exhausts its
// attempts and is dropped. Used for metrics.
func (c *Consumer) OnPoison(fn func()) {
	c.onPoison = fn
}

// Run subscribes and consumes until ctx is cancelled. It blocks, so the
// owning process should run it under its supervisor (e.g. an errgroup)
// rather than as a detached goroutine.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.consumer.SubscribeTopics(c.topics, nil); err != nil {
		return fmt.Errorf("subscribe to topics: %w", err)
	}

	defer c.consumer.Close() //nolint:errcheck // shutting down

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			c.poll(ctx)
		}
	}
}

// poll reads and processes a single event.
func (c *Consumer) poll(ctx context.Context) {
	ev := c.consumer.Poll(100) // 100ms timeout
	if ev == nil {
		return
	}

	switch e := ev.(type) {
	case *kafka.Message:
		c.handleMessage(ctx, e)

	case kafka.Error:
		if e.Code() != kafka.ErrTimedOut {
			c.logger.Error("kafka consumer error",
				"code", e.Code(),
				"error", e.Error(),
			)
		}
	}
}

// handleMessage drives one message through the handler and then makes the
// explicit ack/requeue decision.
func (c *Consumer) handleMessage(ctx context.Context, km *kafka.Message) {
	key := deliveryKey(km)
	c.attempts[key]++
	attempt := c.attempts[key]

	msg := &Message{
		Topic:     *km.TopicPartition.Topic,
		Partition: km.TopicPartition.Partition,
		Offset:    int64(km.TopicPartition.Offset),
		Key:       km.Key,
		Value:     km.Value,
		Timestamp: km.Timestamp,
		Attempt:   attempt,
	}

	err := c.handler.Handle(ctx, msg)
	if err == nil {
		delete(c.attempts, key)
		c.commit(km)
		return
	}

	c.logger.Error("failed to handle message",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"attempt", attempt,
		"error", err,
	)

	if attempt >= c.maxAttempts {
		// Poison message: acknowledge and move on rather than blocking the
		// partition forever.
		c.logger.Error("dropping message after exhausting attempts",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"attempts", attempt,
		)
		delete(c.attempts, key)
		if c.onPoison != nil {
			c.onPoison()
		}
		c.commit(km)
		return
	}

	// Requeue: rewind to the failed offset so the next poll redelivers it.
	if err := c.consumer.Seek(km.TopicPartition, 0); err != nil {
		c.logger.Error("failed to seek back to failed message",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
	}

	select {
	case <-ctx.Done():
	case <-time.After(c.backoff):
	}
}

func (c *Consumer) commit(km *kafka.Message) {
	if _, err := c.consumer.CommitMessage(km); err != nil {
		c.logger.Error("failed to commit offset",
			"topic", *km.TopicPartition.Topic,
			"partition", km.TopicPartition.Partition,
			"offset", int64(km.TopicPartition.Offset),
			"error", err,
		)
	}
}

func deliveryKey(km *kafka.Message) string {
	return fmt.Sprintf("%s/%d/%d", *km.TopicPartition.Topic, km.TopicPartition.Partition, km.TopicPartition.Offset)
}
