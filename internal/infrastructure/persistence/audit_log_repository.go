package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appsync "github.com/storeops/backend/internal/application/sync"
	"github.com/storeops/backend/internal/domain/audit"
	"github.com/storeops/backend/internal/infrastructure/persistence/models"
)

// AuditLogRepository persists audit trail entries using GORM.
// Entries are append-only.
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Write inserts an audit entry within the given transaction
func (r *AuditLogRepository) Write(ctx context.Context, tx *gorm.DB, entry *audit.Entry) error {
	var model models.AuditLogModel
	model.FromDomain(entry)
	return tx.WithContext(ctx).Create(&model).Error
}

// FindByTenant lists audit entries for a tenant, newest first
func (r *AuditLogRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, since time.Time, limit int) ([]*audit.Entry, error) {
	var rows []models.AuditLogModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND recorded_at >= ?", tenantID, since).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]*audit.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

var _ appsync.AuditWriter = (*AuditLogRepository)(nil)
