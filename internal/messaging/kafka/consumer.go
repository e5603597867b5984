package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/salary"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Handler processes one message. Returning an error wrapping ErrPoison
// commits the message without retry.
type Handler func(ctx context.Context, msg kafkago.Message) error

// ErrPoison marks a message that can never be processed.
var ErrPoison = errors.New("poison message")

// Consume fetches messages until ctx is done. Handled and poison messages
// are committed; other failures stay uncommitted and are redelivered after
// a rebalance or restart.
func Consume(ctx context.Context, reader MessageReader, name string, handle Handler, logger *zap.Logger) {
	log := logger.Named("kafka.consumer." + name)
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		if err := handle(ctx, msg); err != nil {
			if !errors.Is(err, ErrPoison) {
				log.Error("handle message failed",
					zap.Int("partition", msg.Partition),
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
				continue
			}
			log.Warn("dropping poison message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.Error(err))
		}
	}
}

// SalaryPaidHandler notifies the employee whose salary was paid.
func SalaryPaidHandler(notifier salary.Notifier) Handler {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event salary.PaidEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode salary.paid: %v", ErrPoison, err)
		}
		if event.UserID == "" {
			return fmt.Errorf("%w: salary.paid without user_id", ErrPoison)
		}

		return notifier.Notify(ctx, event.UserID, string(notification.TypeSalaryPaid), map[string]string{
			"record_id":    event.RecordID,
			"period":       fmt.Sprintf("%02d/%d", event.Month, event.Year),
			"net_salary":   event.NetSalary,
			"payment_mode": event.PaymentMode,
			"payment_ref":  event.PaymentRef,
		})
	}
}

// LeaveApprovedHandler notifies the employee whose leave was approved.
func LeaveApprovedHandler(notifier salary.Notifier) Handler {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event leave.ApprovedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode leave.approved: %v", ErrPoison, err)
		}
		if event.UserID == "" {
			return fmt.Errorf("%w: leave.approved without user_id", ErrPoison)
		}

		return notifier.Notify(ctx, event.UserID, string(notification.TypeLeaveApproved), map[string]string{
			"request_id":     event.RequestID,
			"start_date":     event.StartDate,
			"end_date":       event.EndDate,
			"number_of_days": strconv.Itoa(event.NumberOfDays),
			"remaining_days": strconv.Itoa(event.RemainingDays),
		})
	}
}

// NewReader returns a group reader with manual commits.
func NewReader(brokers []string, topic, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}
