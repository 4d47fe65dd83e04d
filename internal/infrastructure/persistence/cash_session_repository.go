package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appcashier "github.com/storeops/backend/internal/application/cashier"
	"github.com/storeops/backend/internal/domain/cashier"
	"github.com/storeops/backend/internal/infrastructure/persistence/models"
)

// CashSessionRepository persists cash sessions using GORM
type CashSessionRepository struct{}

// NewCashSessionRepository creates a new cash session repository
func NewCashSessionRepository() *CashSessionRepository {
	return &CashSessionRepository{}
}

// FindOpen returns the open session for a branch and employee,
// (nil, nil) when there is none
func (r *CashSessionRepository) FindOpen(ctx context.Context, tx *gorm.DB, tenantID, branchID, employeeID uuid.UUID) (*cashier.CashSession, error) {
	var model models.CashSessionModel
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND employee_id = ? AND status = ?",
			tenantID, branchID, employeeID, cashier.SessionStatusOpen).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID returns a session by ID within a tenant, (nil, nil) when absent
func (r *CashSessionRepository) FindByID(ctx context.Context, tx *gorm.DB, tenantID, sessionID uuid.UUID) (*cashier.CashSession, error) {
	var model models.CashSessionModel
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, sessionID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts a new cash session
func (r *CashSessionRepository) Save(ctx context.Context, tx *gorm.DB, session *cashier.CashSession) error {
	var model models.CashSessionModel
	model.FromDomain(session)
	return tx.WithContext(ctx).Create(&model).Error
}

// Update persists changes to an existing cash session
func (r *CashSessionRepository) Update(ctx context.Context, tx *gorm.DB, session *cashier.CashSession) error {
	var model models.CashSessionModel
	model.FromDomain(session)
	return tx.WithContext(ctx).Save(&model).Error
}

var _ appcashier.SessionStore = (*CashSessionRepository)(nil)
