package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Event types. Each doubles as the default kafka topic.
const (
	EventSalaryGenerated = "salary.generated"
	EventSalaryPaid      = "salary.paid"
	EventLeaveApproved   = "leave.approved"
)

const (
	AggregateSalaryRecord = "salary_record"
	AggregateLeaveRequest = "leave_request"
)

type Event struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   time.Time
	ErrorMessage  *string
	CreatedAt     time.Time
}

// NewEvent marshals payload into a pending event routed to the topic named
// after its type.
func NewEvent(aggregateType, aggregateID, eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return Event{
		ID:            uuid.NewString(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         eventType,
		Payload:       data,
		Status:        StatusPending,
	}, nil
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("outbox id is required")
	}
	if e.Topic == "" {
		return fmt.Errorf("outbox topic is required")
	}
	if len(e.Payload) == 0 {
		return fmt.Errorf("outbox payload is required")
	}
	switch e.Status {
	case StatusPending, StatusSent, StatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", e.Status)
	}
}
