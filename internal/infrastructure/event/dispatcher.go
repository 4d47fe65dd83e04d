package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/storeops/backend/internal/domain/shared"
	"github.com/storeops/backend/internal/infrastructure/telemetry"
)

// OutboxDispatcherConfig holds configuration for the outbox dispatcher
type OutboxDispatcherConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultOutboxDispatcherConfig returns default configuration
func DefaultOutboxDispatcherConfig() OutboxDispatcherConfig {
	return OutboxDispatcherConfig{
		BatchSize:        100,
		PollInterval:     500 * time.Millisecond,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  1 * time.Hour,
	}
}

// OutboxDispatcher polls the outbox in the background and delivers
// committed events to the event bus. Delivery failures back off
// exponentially per entry until the entry goes dead.
type OutboxDispatcher struct {
	repo       shared.OutboxRepository
	eventBus   shared.EventBus
	serializer *EventSerializer
	config     OutboxDispatcherConfig
	logger     *zap.Logger
	metrics    *telemetry.SyncMetrics

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxDispatcher creates a new outbox dispatcher
func NewOutboxDispatcher(
	repo shared.OutboxRepository,
	eventBus shared.EventBus,
	serializer *EventSerializer,
	config OutboxDispatcherConfig,
	logger *zap.Logger,
) *OutboxDispatcher {
	return &OutboxDispatcher{
		repo:       repo,
		eventBus:   eventBus,
		serializer: serializer,
		config:     config,
		logger:     logger,
	}
}

// SetMetrics attaches dispatch instruments. Must be called before Start.
func (d *OutboxDispatcher) SetMetrics(metrics *telemetry.SyncMetrics) {
	d.metrics = metrics
}

// Start starts the background polling loops
func (d *OutboxDispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.pollLoop(ctx)

	if d.config.CleanupEnabled {
		d.wg.Add(1)
		go d.cleanupLoop(ctx)
	}

	d.logger.Info("outbox dispatcher started",
		zap.Int("batch_size", d.config.BatchSize),
		zap.Duration("poll_interval", d.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the dispatcher
func (d *OutboxDispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("outbox dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *OutboxDispatcher) pollLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatchBatch(ctx)
		}
	}
}

// dispatchBatch delivers one batch of pending entries plus any failed
// entries whose backoff has elapsed.
func (d *OutboxDispatcher) dispatchBatch(ctx context.Context) {
	pending, err := d.repo.FindPending(ctx, d.config.BatchSize)
	if err != nil {
		d.logger.Error("failed to find pending entries", zap.Error(err))
		return
	}
	if len(pending) > 0 {
		d.dispatchEntries(ctx, pending)
	}

	retryable, err := d.repo.FindRetryable(ctx, time.Now(), d.config.BatchSize)
	if err != nil {
		d.logger.Error("failed to find retryable entries", zap.Error(err))
		return
	}
	if len(retryable) > 0 {
		d.dispatchEntries(ctx, retryable)
	}
}

func (d *OutboxDispatcher) dispatchEntries(ctx context.Context, entries []*shared.OutboxEntry) {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	// Claim before delivering so concurrent dispatchers skip these rows
	claimed, err := d.repo.MarkProcessing(ctx, ids)
	if err != nil {
		d.logger.Error("failed to claim outbox entries", zap.Error(err))
		return
	}

	for _, entry := range claimed {
		d.dispatchEntry(ctx, entry)
	}
}

func (d *OutboxDispatcher) dispatchEntry(ctx context.Context, entry *shared.OutboxEntry) {
	event, err := d.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		d.recordFailure(ctx, entry, err)
		return
	}

	if err := d.eventBus.Publish(ctx, event); err != nil {
		d.recordFailure(ctx, entry, err)
		return
	}

	entry.MarkSent()
	if err := d.repo.Update(ctx, entry); err != nil {
		d.logger.Error("failed to mark entry as sent",
			zap.String("event_id", entry.EventID.String()),
			zap.Error(err),
		)
		return
	}
	if d.metrics != nil {
		d.metrics.OutboxDispatched.Add(ctx, 1,
			metric.WithAttributes(telemetry.AttrEventType.String(entry.EventType)))
	}
	d.logger.Debug("event dispatched",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
	)
}

// recordFailure bumps the retry state of an entry and persists it
func (d *OutboxDispatcher) recordFailure(ctx context.Context, entry *shared.OutboxEntry, cause error) {
	d.logger.Error("failed to dispatch event",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.Error(cause),
	)

	entry.MarkFailed(cause.Error())
	if d.metrics != nil {
		attrs := metric.WithAttributes(telemetry.AttrEventType.String(entry.EventType))
		d.metrics.OutboxRetried.Add(ctx, 1, attrs)
		if entry.IsDead() {
			d.metrics.OutboxDead.Add(ctx, 1, attrs)
		}
	}
	if entry.IsDead() {
		d.logger.Warn("event moved to dead letter queue",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
			zap.String("aggregate_type", entry.AggregateType),
			zap.String("aggregate_id", entry.AggregateID.String()),
			zap.Int("retry_count", entry.RetryCount),
			zap.String("last_error", entry.LastError),
		)
	}
	if err := d.repo.Update(ctx, entry); err != nil {
		d.logger.Error("failed to update entry", zap.Error(err))
	}
}

func (d *OutboxDispatcher) cleanupLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.cleanup(ctx)
		}
	}
}

// cleanup removes sent entries older than the retention window
func (d *OutboxDispatcher) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-d.config.CleanupRetention)
	deleted, err := d.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		d.logger.Error("failed to cleanup old entries", zap.Error(err))
		return
	}
	if deleted > 0 {
		d.logger.Info("cleaned up old outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
