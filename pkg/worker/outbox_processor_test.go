package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("booking", "worker_test")

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	var out []*model.OutboxEvent
	for _, event := range f.events {
		if event.Status == string(model.OutboxStatusPending) {
			out = append(out, event)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, errorMessage *string) error {
	for _, event := range f.events {
		if event.ID == id {
			event.Status = status
			event.ErrorMessage = errorMessage
			return nil
		}
	}
	return errors.New("event not found")
}

type fakeBroker struct {
	published []string
	failures  int
}

func (f *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, channel)
	return nil
}

func (f *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }

func (f *fakeBroker) Close() error { return nil }

func pendingEvent(eventType string) *model.OutboxEvent {
	payload, _ := json.Marshal(map[string]string{"id": uuid.NewString()})
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
	}
}

func newTestProcessor(repo *fakeOutboxRepo, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, nil, testMetrics)
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	repo := &fakeOutboxRepo{events: []*model.OutboxEvent{
		pendingEvent("appointment.created"),
		pendingEvent("appointment.created"),
	}}
	broker := &fakeBroker{}

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processEvents(context.Background()))

	assert.Len(t, broker.published, 2)
	for _, event := range repo.events {
		assert.Equal(t, string(model.OutboxStatusProcessed), event.Status)
	}
}

func TestProcessEventsRetriesTransientPublishFailures(t *testing.T) {
	repo := &fakeOutboxRepo{events: []*model.OutboxEvent{pendingEvent("appointment.created")}}
	broker := &fakeBroker{failures: 2}

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processEvents(context.Background()))

	assert.Len(t, broker.published, 1)
	assert.Equal(t, string(model.OutboxStatusProcessed), repo.events[0].Status)
}

func TestProcessEventsMarksFailedAfterRetriesExhausted(t *testing.T) {
	repo := &fakeOutboxRepo{events: []*model.OutboxEvent{pendingEvent("appointment.created")}}
	broker := &fakeBroker{failures: 10}

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processEvents(context.Background()))

	assert.Empty(t, broker.published)
	assert.Equal(t, string(model.OutboxStatusFailed), repo.events[0].Status)
	require.NotNil(t, repo.events[0].ErrorMessage)
}

func TestProcessorConfigValidation(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(&fakeOutboxRepo{}, &fakeBroker{}, OutboxProcessorConfig{}, nil, testMetrics)
	})
}
