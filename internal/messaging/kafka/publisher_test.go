package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/outbox"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOutbox struct {
	pending []outbox.Event
	limit   int
	sent    []string
	failed  map[string]string
	listErr error
}

func (f *fakeOutbox) Create(ctx context.Context, e outbox.Event) error { return nil }

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]outbox.Event, error) {
	f.limit = limit
	return f.pending, f.listErr
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = reason
	return nil
}

type fakeWriter struct {
	written []kafkago.Message
	failOn  string
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if string(m.Key) == w.failOn {
			return errors.New("broker unavailable")
		}
		w.written = append(w.written, m)
	}
	return nil
}

func mustEvent(t *testing.T, aggregateID, eventType string) outbox.Event {
	t.Helper()
	e, err := outbox.NewEvent(outbox.AggregateSalaryRecord, aggregateID, eventType, map[string]string{"record_id": aggregateID})
	require.NoError(t, err)
	return e
}

func header(m kafkago.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishPending(t *testing.T) {
	ok := mustEvent(t, "rec-1", outbox.EventSalaryGenerated)
	bad := mustEvent(t, "rec-2", outbox.EventSalaryPaid)
	repo := &fakeOutbox{pending: []outbox.Event{bad, ok}}
	writer := &fakeWriter{failOn: "rec-2"}

	p := NewPublisher(repo, writer, 10, map[string]string{outbox.EventSalaryGenerated: "hris.salary.generated"}, zap.NewNop())
	require.NoError(t, p.PublishPending(context.Background()))

	assert.Equal(t, 10, repo.limit)
	assert.Equal(t, []string{ok.ID}, repo.sent)
	assert.Contains(t, repo.failed, bad.ID)

	require.Len(t, writer.written, 1)
	msg := writer.written[0]
	assert.Equal(t, "hris.salary.generated", msg.Topic)
	assert.Equal(t, "rec-1", string(msg.Key))
	assert.Equal(t, outbox.EventSalaryGenerated, header(msg, HeaderEventType))
	assert.Equal(t, ok.ID, header(msg, HeaderEventID))
}

func TestPublishPending_DefaultTopicAndListError(t *testing.T) {
	e := mustEvent(t, "rec-1", outbox.EventSalaryPaid)
	repo := &fakeOutbox{pending: []outbox.Event{e}}
	writer := &fakeWriter{}

	p := NewPublisher(repo, writer, 0, nil, zap.NewNop())
	require.NoError(t, p.PublishPending(context.Background()))
	assert.Equal(t, 50, repo.limit)
	assert.Equal(t, outbox.EventSalaryPaid, writer.written[0].Topic)

	repo.listErr = errors.New("db down")
	assert.Error(t, p.PublishPending(context.Background()))
}
