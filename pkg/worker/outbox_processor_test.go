package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/pkg/logger"
	"github.com/wanbao-hr/agency-api/pkg/metrics"
)

// Shared across tests: promauto registers globally, so a second NewMetrics
// call would panic on duplicate collectors.
var testMetrics = metrics.NewMetrics("test", "outbox_processor")

// fakeOutboxRepo mimics the claim semantics of the postgres repository: a
// batch handed to one caller is marked PROCESSING and never handed out again.
type fakeOutboxRepo struct {
	mu            sync.Mutex
	pending       []*model.OutboxEvent
	statuses      map[uuid.UUID]model.OutboxStatus
	deleteCutoffs []time.Time
}

func newFakeOutboxRepo(events ...*model.OutboxEvent) *fakeOutboxRepo {
	return &fakeOutboxRepo{
		pending:  events,
		statuses: make(map[uuid.UUID]model.OutboxStatus),
	}
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEventsWithLock(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := limit
	if n > len(r.pending) {
		n = len(r.pending)
	}
	claimed := r.pending[:n]
	r.pending = r.pending[n:]
	for _, event := range claimed {
		event.Status = string(model.OutboxStatusProcessing)
		r.statuses[event.ID] = model.OutboxStatusProcessing
	}
	return claimed, nil
}

func (r *fakeOutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, _ *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCutoffs = append(r.deleteCutoffs, before)
	return 0, nil
}

type fakeBroker struct {
	mu        sync.Mutex
	published map[string]int
	fail      bool
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string]int)}
}

func (b *fakeBroker) Publish(_ context.Context, _ string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return fmt.Errorf("broker unavailable")
	}
	payload := message.(json.RawMessage)
	b.published[string(payload)]++
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func seedEvents(n int) []*model.OutboxEvent {
	events := make([]*model.OutboxEvent, n)
	for i := range events {
		id := uuid.New()
		events[i] = &model.OutboxEvent{
			ID:        id,
			EventType: model.EventEntryFilingUpsert,
			Payload:   json.RawMessage(fmt.Sprintf(`{"id":%q}`, id)),
			Status:    string(model.OutboxStatusPending),
			CreatedAt: time.Now(),
		}
	}
	return events
}

func newTestProcessor(repo *fakeOutboxRepo, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:  100,
		RetryDelay: time.Millisecond,
	}, logger.NewLogger(nil), testMetrics)
}

func TestConcurrentProcessorsPublishEachEventOnce(t *testing.T) {
	events := seedEvents(10)
	repo := newFakeOutboxRepo(events...)
	broker := newFakeBroker()

	p1 := newTestProcessor(repo, broker)
	p2 := newTestProcessor(repo, broker)

	var wg sync.WaitGroup
	for _, p := range []*OutboxProcessor{p1, p2} {
		wg.Add(1)
		go func(p *OutboxProcessor) {
			defer wg.Done()
			require.NoError(t, p.processEvents(context.Background()))
		}(p)
	}
	wg.Wait()

	// Every seeded event published exactly once, whichever replica claimed it.
	assert.Len(t, broker.published, len(events))
	for payload, count := range broker.published {
		assert.Equal(t, 1, count, "event published more than once: %s", payload)
	}
	for _, event := range events {
		assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[event.ID])
	}
	assert.Empty(t, repo.pending)
}

func TestProcessEventsMarksFailedOnPublishError(t *testing.T) {
	events := seedEvents(3)
	repo := newFakeOutboxRepo(events...)
	broker := newFakeBroker()
	broker.fail = true

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processEvents(context.Background()))

	assert.Empty(t, broker.published)
	for _, event := range events {
		assert.Equal(t, model.OutboxStatusFailed, repo.statuses[event.ID])
	}
}

func TestCleanupDeletesPastRetentionWindow(t *testing.T) {
	repo := newFakeOutboxRepo()
	broker := newFakeBroker()

	retention := 48 * time.Hour
	p := NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		RetentionPeriod: retention,
	}, logger.NewLogger(nil), testMetrics)

	before := time.Now().Add(-retention)
	require.NoError(t, p.cleanupProcessedEvents(context.Background()))

	require.Len(t, repo.deleteCutoffs, 1)
	cutoff := repo.deleteCutoffs[0]
	assert.WithinDuration(t, before, cutoff, time.Minute)
}
