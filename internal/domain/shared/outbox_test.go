package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEntry(t *testing.T) {
	tenantID := uuid.New()
	event := &BaseDomainEvent{
		ID:            uuid.New(),
		Type:          "cashier.session_opened",
		Timestamp:     time.Now(),
		AggID:         uuid.New(),
		AggType:       "CashSession",
		TenantIDValue: tenantID,
		Version:       1,
	}

	entry := NewOutboxEntry(tenantID, event, []byte(`{"float":"10"}`))

	require.NotNil(t, entry)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, event.EventID(), entry.EventID)
	assert.Equal(t, "cashier.session_opened", entry.EventType)
	assert.Equal(t, 1, entry.EventVersion)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
	assert.Nil(t, entry.SentAt)
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing}

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.SentAt)
	assert.WithinDuration(t, time.Now(), *entry.SentAt, time.Second)
}

func TestOutboxEntry_MarkFailed_ExponentialBackoff(t *testing.T) {
	entry := &OutboxEntry{
		ID:         uuid.New(),
		Status:     OutboxStatusProcessing,
		RetryCount: 0,
		MaxRetries: 5,
	}

	entry.MarkFailed("bus unavailable")
	assert.Equal(t, OutboxStatusFailed, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	require.NotNil(t, entry.NextRetryAt)
	firstBackoff := time.Until(*entry.NextRetryAt)
	assert.True(t, firstBackoff > 0 && firstBackoff <= 2*time.Second)

	entry.Status = OutboxStatusProcessing
	entry.MarkFailed("bus unavailable")
	assert.Equal(t, 2, entry.RetryCount)
	secondBackoff := time.Until(*entry.NextRetryAt)
	assert.True(t, secondBackoff > time.Second && secondBackoff <= 3*time.Second)
}

func TestOutboxEntry_MarkFailed_MovesToDeadAfterMaxRetries(t *testing.T) {
	entry := &OutboxEntry{
		ID:         uuid.New(),
		Status:     OutboxStatusProcessing,
		RetryCount: 4,
		MaxRetries: 5,
	}

	entry.MarkFailed("final error")

	assert.Equal(t, OutboxStatusDead, entry.Status)
	assert.Equal(t, 5, entry.RetryCount)
	assert.Equal(t, "final error", entry.LastError)
	assert.True(t, entry.IsDead())
	assert.False(t, entry.CanRetry())
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("resets dead letter entry", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			Status:     OutboxStatusDead,
			RetryCount: 5,
			MaxRetries: 5,
			LastError:  "some error",
		}

		err := entry.ResetForRetry()
		assert.NoError(t, err)
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
	})

	t.Run("fails for non-dead entries", func(t *testing.T) {
		for _, status := range []OutboxStatus{
			OutboxStatusPending,
			OutboxStatusProcessing,
			OutboxStatusSent,
			OutboxStatusFailed,
		} {
			entry := &OutboxEntry{Status: status}
			assert.Error(t, entry.ResetForRetry())
		}
	})
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	t.Run("allows pending and failed", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusFailed} {
			entry := &OutboxEntry{Status: status}
			require.NoError(t, entry.MarkProcessing())
			assert.Equal(t, OutboxStatusProcessing, entry.Status)
		}
	})

	t.Run("rejects sent and dead", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusSent, OutboxStatusDead} {
			entry := &OutboxEntry{Status: status}
			assert.Error(t, entry.MarkProcessing())
		}
	})
}
