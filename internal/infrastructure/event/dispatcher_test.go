package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storeops/backend/internal/domain/shared"
)

// mockOutboxRepository is a mock implementation for testing
type mockOutboxRepository struct {
	mu              sync.Mutex
	entries         map[uuid.UUID]*shared.OutboxEntry
	findRetryableFn func(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error)
	deleteFn        func(ctx context.Context, before time.Time) (int64, error)
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{
		entries: make(map[uuid.UUID]*shared.OutboxEntry),
	}
}

func (r *mockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *mockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *mockOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	if r.findRetryableFn != nil {
		return r.findRetryableFn(ctx, before, limit)
	}
	return nil, nil
}

func (r *mockOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			e.Status = shared.OutboxStatusProcessing
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *mockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *mockOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	if r.deleteFn != nil {
		return r.deleteFn(ctx, before)
	}
	return 0, nil
}

func (r *mockOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}

func (r *mockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, nil
}

func (r *mockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *mockOutboxRepository) entryStatus(id uuid.UUID) shared.OutboxStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id].Status
}

func TestOutboxDispatcher_DispatchesPendingEntries(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})

	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)

	handler := newTestHandler("TestEvent")
	eventBus.Subscribe(handler, "TestEvent")

	tenantID := uuid.New()
	event := newTestEvent("TestEvent", tenantID)
	payload, _ := serializer.Serialize(event)
	entry := shared.NewOutboxEntry(tenantID, event, payload)
	require.NoError(t, repo.Save(context.Background(), entry))

	config := OutboxDispatcherConfig{
		BatchSize:    100,
		PollInterval: 50 * time.Millisecond,
	}
	dispatcher := NewOutboxDispatcher(repo, eventBus, serializer, config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, dispatcher.Start(ctx))

	time.Sleep(200 * time.Millisecond)

	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, dispatcher.Stop(stopCtx))

	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, shared.OutboxStatusSent, repo.entryStatus(entry.ID))
}

func TestOutboxDispatcher_HandlerFailureLeavesEntryForRetry(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})

	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)

	handler := newTestHandler("TestEvent")
	handler.setError(errors.New("consumer offline"))
	eventBus.Subscribe(handler, "TestEvent")

	tenantID := uuid.New()
	event := newTestEvent("TestEvent", tenantID)
	payload, _ := serializer.Serialize(event)
	entry := shared.NewOutboxEntry(tenantID, event, payload)
	require.NoError(t, repo.Save(context.Background(), entry))

	dispatcher := NewOutboxDispatcher(repo, eventBus, serializer, DefaultOutboxDispatcherConfig(), logger)

	ctx := context.Background()
	dispatcher.dispatchBatch(ctx)

	// The sole subscriber failed: the entry must not be marked sent
	assert.Equal(t, shared.OutboxStatusFailed, repo.entryStatus(entry.ID))
	repo.mu.Lock()
	assert.Equal(t, 1, repo.entries[entry.ID].RetryCount)
	assert.Contains(t, repo.entries[entry.ID].LastError, "consumer offline")
	assert.Nil(t, repo.entries[entry.ID].SentAt)
	repo.mu.Unlock()

	// Consumer recovers; the failed entry is redelivered on a later tick
	handler.setError(nil)
	repo.findRetryableFn = func(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		var result []*shared.OutboxEntry
		for _, e := range repo.entries {
			if e.Status == shared.OutboxStatusFailed {
				result = append(result, e)
			}
		}
		return result, nil
	}

	dispatcher.dispatchBatch(ctx)

	assert.Equal(t, shared.OutboxStatusSent, repo.entryStatus(entry.ID))
	assert.Len(t, handler.getHandled(), 2)
}

func TestOutboxDispatcher_StopGracefully(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)

	dispatcher := NewOutboxDispatcher(repo, eventBus, serializer, DefaultOutboxDispatcherConfig(), logger)

	require.NoError(t, dispatcher.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, dispatcher.Stop(stopCtx))
}

func TestOutboxDispatcher_DeserializationFailure(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	// The event type is deliberately not registered

	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)

	tenantID := uuid.New()
	event := newTestEvent("UnregisteredEvent", tenantID)
	entry := shared.NewOutboxEntry(tenantID, event, []byte(`{"type": "UnregisteredEvent"}`))
	require.NoError(t, repo.Save(context.Background(), entry))

	config := OutboxDispatcherConfig{
		BatchSize:    100,
		PollInterval: 50 * time.Millisecond,
	}
	dispatcher := NewOutboxDispatcher(repo, eventBus, serializer, config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, dispatcher.Start(ctx))

	time.Sleep(200 * time.Millisecond)

	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	_ = dispatcher.Stop(stopCtx)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, shared.OutboxStatusFailed, repo.entries[entry.ID].Status)
	assert.Contains(t, repo.entries[entry.ID].LastError, "unknown event type")
}

func TestOutboxDispatcher_DeadLetterAfterMaxRetries(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()

	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)

	tenantID := uuid.New()
	event := newTestEvent("UnregisteredEvent", tenantID)
	entry := shared.NewOutboxEntry(tenantID, event, []byte(`{}`))
	// Already at the last allowed attempt
	entry.RetryCount = entry.MaxRetries - 1
	require.NoError(t, repo.Save(context.Background(), entry))

	config := OutboxDispatcherConfig{
		BatchSize:    100,
		PollInterval: 50 * time.Millisecond,
	}
	dispatcher := NewOutboxDispatcher(repo, eventBus, serializer, config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, dispatcher.Start(ctx))

	time.Sleep(200 * time.Millisecond)

	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	_ = dispatcher.Stop(stopCtx)

	assert.Equal(t, shared.OutboxStatusDead, repo.entryStatus(entry.ID))
}

func TestDefaultOutboxDispatcherConfig(t *testing.T) {
	config := DefaultOutboxDispatcherConfig()

	assert.Equal(t, 100, config.BatchSize)
	assert.Equal(t, 500*time.Millisecond, config.PollInterval)
	assert.True(t, config.CleanupEnabled)
	assert.Equal(t, 7*24*time.Hour, config.CleanupRetention)
	assert.Equal(t, 1*time.Hour, config.CleanupInterval)
}
