package kafka

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/outbox"
	applog "github.com/cmlabs-hris/hris-payroll-go/internal/pkg/logger"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafkago.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Publisher relays pending outbox events to kafka.
type Publisher struct {
	repo      outbox.Repository
	writer    MessageWriter
	batchSize int
	topics    map[string]string
	logger    *zap.Logger
}

// NewPublisher builds an outbox relay. topics maps an event type to the
// topic it is written to; unmapped types use the topic stored on the event.
func NewPublisher(repo outbox.Repository, writer MessageWriter, batchSize int, topics map[string]string, logger ...*zap.Logger) *Publisher {
	if batchSize <= 0 {
		batchSize = 50
	}
	l := applog.Named("kafka.producer.outbox", logger...)
	return &Publisher{
		repo:      repo,
		writer:    writer,
		batchSize: batchSize,
		topics:    topics,
		logger:    l,
	}
}

// PublishPending sends one batch of due events. A failed event is
// rescheduled and does not stop the batch.
func (p *Publisher) PublishPending(ctx context.Context) error {
	events, err := p.repo.ListPending(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	p.logger.Info("processing pending outbox events", zap.Int("count", len(events)))

	for _, event := range events {
		topic := p.topicFor(event)
		if err := p.publish(ctx, topic, event); err != nil {
			p.logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", topic),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			if markErr := p.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				p.logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := p.repo.MarkSent(ctx, event.ID); err != nil {
			p.logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		p.logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", topic),
		)
	}
	return nil
}

func (p *Publisher) topicFor(event outbox.Event) string {
	if topic, ok := p.topics[event.EventType]; ok && topic != "" {
		return topic
	}
	return event.Topic
}

func (p *Publisher) publish(ctx context.Context, topic string, event outbox.Event) error {
	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: HeaderEventID, Value: []byte(event.ID)},
			{Key: HeaderEventType, Value: []byte(event.EventType)},
			{Key: HeaderAggregateType, Value: []byte(event.AggregateType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

const (
	HeaderEventID       = "event_id"
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
)

// NewWriter returns a writer that routes by the message's own topic.
func NewWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
}
