package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appsales "github.com/storeops/backend/internal/application/sales"
	"github.com/storeops/backend/internal/domain/sales"
	"github.com/storeops/backend/internal/domain/shared"
	"github.com/storeops/backend/internal/infrastructure/persistence/models"
)

// SaleRepository persists finalized sales using GORM
type SaleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Save inserts a finalized sale with its lines within the given transaction
func (r *SaleRepository) Save(ctx context.Context, tx *gorm.DB, sale *sales.Sale) error {
	var model models.SaleModel
	model.FromDomain(sale)
	return tx.WithContext(ctx).Create(&model).Error
}

// FindByID returns a sale with its lines
func (r *SaleRepository) FindByID(ctx context.Context, tenantID, saleID uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, saleID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code, "sale not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySession lists sales recorded against a cash session
func (r *SaleRepository) FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*sales.Sale, error) {
	var rows []models.SaleModel
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("finalized_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]*sales.Sale, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

var _ appsales.SaleStore = (*SaleRepository)(nil)
