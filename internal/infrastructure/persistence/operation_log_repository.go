package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	appsync "github.com/storeops/backend/internal/application/sync"
	syncdomain "github.com/storeops/backend/internal/domain/sync"
	"github.com/storeops/backend/internal/infrastructure/persistence/models"
)

// OperationLogRepository persists processed operation records using GORM
type OperationLogRepository struct{}

// NewOperationLogRepository creates a new operation log repository
func NewOperationLogRepository() *OperationLogRepository {
	return &OperationLogRepository{}
}

// FindByClientOpID looks up the record for a client operation id within
// a tenant. Returns (nil, nil) when no record exists.
func (r *OperationLogRepository) FindByClientOpID(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, clientOpID string) (*syncdomain.OperationLogEntry, error) {
	var model models.OperationLogModel
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND client_op_id = ?", tenantID, clientOpID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new operation log entry. A violation of the
// (tenant_id, client_op_id) unique index surfaces through
// IsDuplicateKeyError on the returned error.
func (r *OperationLogRepository) Create(ctx context.Context, tx *gorm.DB, entry *syncdomain.OperationLogEntry) error {
	var model models.OperationLogModel
	model.FromDomain(entry)
	return tx.WithContext(ctx).Create(&model).Error
}

// IsDuplicateKeyError reports whether err is a unique constraint violation
func (r *OperationLogRepository) IsDuplicateKeyError(err error) bool {
	return IsDuplicateKeyError(err)
}

// IsDuplicateKeyError reports whether err is a unique constraint
// violation from postgres or the sqlite driver used in tests.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

var _ appsync.OperationLogStore = (*OperationLogRepository)(nil)
