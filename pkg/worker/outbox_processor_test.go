package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/logger"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/metrics"
)

type fakeOutboxRepo struct {
	events   []*model.OutboxEvent
	statuses map[uuid.UUID]string
	errMsgs  map[uuid.UUID]*string
	retries  map[uuid.UUID]int
}

func newFakeOutboxRepo(events ...*model.OutboxEvent) *fakeOutboxRepo {
	return &fakeOutboxRepo{
		events:   events,
		statuses: make(map[uuid.UUID]string),
		errMsgs:  make(map[uuid.UUID]*string),
		retries:  make(map[uuid.UUID]int),
	}
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	var out []*model.OutboxEvent
	for _, e := range f.events {
		if f.statuses[e.ID] == "" && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error {
	f.statuses[id] = status
	f.errMsgs[id] = errMsg
	// Mirrors the SQL repository: only failed deliveries bump retry_count.
	if status == string(model.OutboxStatusFailed) {
		f.retries[id]++
	}
	return nil
}

type fakeBroker struct {
	published map[string]int
	failures  int
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	if f.published == nil {
		f.published = make(map[string]int)
	}
	f.published[channel]++
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBroker) Close() error { return nil }

var testMetrics = metrics.NewMetrics("agendamento", "worker_test")

func newTestProcessor(repo *fakeOutboxRepo, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.NewLogger(nil), testMetrics)
}

func bookedEvent() *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: "appointment.booked",
		Payload:   []byte(`{"id":"x"}`),
	}
}

func TestProcessEvents_MarksProcessed(t *testing.T) {
	event := bookedEvent()
	repo := newFakeOutboxRepo(event)
	broker := &fakeBroker{}

	err := newTestProcessor(repo, broker).ProcessEvents(context.Background())

	require.NoError(t, err)
	assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[event.ID])
	assert.Equal(t, 1, broker.published["appointment.booked"])
	assert.Zero(t, repo.retries[event.ID])
}

func TestProcessEvents_RetriesThenSucceeds(t *testing.T) {
	event := bookedEvent()
	repo := newFakeOutboxRepo(event)
	broker := &fakeBroker{failures: 1}

	err := newTestProcessor(repo, broker).ProcessEvents(context.Background())

	require.NoError(t, err)
	assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[event.ID])
}

func TestProcessEvents_MarksFailedAfterExhaustedRetries(t *testing.T) {
	event := bookedEvent()
	repo := newFakeOutboxRepo(event)
	broker := &fakeBroker{failures: 10}

	err := newTestProcessor(repo, broker).ProcessEvents(context.Background())

	require.NoError(t, err, "a failed event must not abort the batch")
	assert.Equal(t, string(model.OutboxStatusFailed), repo.statuses[event.ID])
	require.NotNil(t, repo.errMsgs[event.ID])
	assert.Contains(t, *repo.errMsgs[event.ID], "broker unavailable")
	assert.Equal(t, 1, repo.retries[event.ID])
}

func TestProcessEvents_ContinuesPastFailures(t *testing.T) {
	bad := bookedEvent()
	good := bookedEvent()
	repo := newFakeOutboxRepo(bad, good)
	broker := &fakeBroker{failures: 2} // both attempts for the first event fail

	err := newTestProcessor(repo, broker).ProcessEvents(context.Background())

	require.NoError(t, err)
	assert.Equal(t, string(model.OutboxStatusFailed), repo.statuses[bad.ID])
	assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[good.ID])
}

func TestNewOutboxProcessor_ValidatesConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(newFakeOutboxRepo(), &fakeBroker{}, OutboxProcessorConfig{}, logger.NewLogger(nil), testMetrics)
	})
}
