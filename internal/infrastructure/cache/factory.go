package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/storeops/backend/internal/domain/shared"
	"github.com/storeops/backend/internal/infrastructure/config"
)

// NewIdempotencyStore creates the idempotency store from configuration.
// With Redis enabled it requires a reachable server unless fallback is
// allowed; without Redis it always returns the in-memory store.
func NewIdempotencyStore(cfg config.RedisConfig, allowFallback bool, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if !cfg.Enabled {
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(cfg)
	if err == nil {
		logger.Info("using Redis idempotency store", zap.String("addr", cfg.RedisAddr()))
		return store, nil
	}

	if !allowFallback {
		return nil, fmt.Errorf("Redis required for idempotency but unavailable: %w", err)
	}

	// In-memory state is process-local; with more than one instance
	// this can let a duplicate event slip through.
	logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
