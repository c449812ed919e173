package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrSkipMessage marks a message that can never be handled. The consumer
// logs it, commits it and moves on.
var ErrSkipMessage = errors.New("skip message")

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader MessageReader
	log    *logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logger.Logger) *Consumer {
	return NewConsumerWithReader(kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          1,
		MaxBytes:          1 << 20,
		MaxWait:           time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}), log)
}

func NewConsumerWithReader(reader MessageReader, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Consumer{reader: reader, log: log}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume handles messages one at a time and commits each after its handler
// returns. A handler error other than ErrSkipMessage stops the loop without a
// commit, so the message is delivered again. Cancellation returns nil.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := handler(ctx, msg); err != nil {
			if !errors.Is(err, ErrSkipMessage) {
				return fmt.Errorf("handle message at offset %d: %w", msg.Offset, err)
			}
			c.log.WarnContext(ctx, "skipping message",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

// BookingEventHandler adapts a typed handler to raw kafka messages. Payloads
// that do not decode are skipped.
func BookingEventHandler(handle func(context.Context, BookingEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		event, err := DecodeBookingEvent(msg.Value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSkipMessage, err)
		}
		return handle(ctx, event)
	}
}
