package outbox

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent(AggregateSalaryRecord, "rec-1", EventSalaryGenerated, map[string]int{"month": 9})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(ev.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, EventSalaryGenerated, ev.Topic)
	assert.Equal(t, StatusPending, ev.Status)
	assert.JSONEq(t, `{"month":9}`, string(ev.Payload))
	assert.NoError(t, ev.Validate())
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent(AggregateSalaryRecord, "rec-1", EventSalaryGenerated, make(chan int))
	assert.Error(t, err)
}

func TestEvent_Validate(t *testing.T) {
	ev := Event{ID: "x", Topic: "t", Payload: []byte("{}"), Status: StatusPending}
	assert.NoError(t, ev.Validate())

	noTopic := ev
	noTopic.Topic = ""
	assert.Error(t, noTopic.Validate())

	badStatus := ev
	badStatus.Status = "queued"
	assert.Error(t, badStatus.Validate())

	empty := ev
	empty.Payload = nil
	assert.Error(t, empty.Validate())
}
