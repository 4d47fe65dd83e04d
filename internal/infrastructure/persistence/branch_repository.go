package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appsync "github.com/storeops/backend/internal/application/sync"
	"github.com/storeops/backend/internal/domain/branch"
	"github.com/storeops/backend/internal/domain/shared"
	"github.com/storeops/backend/internal/infrastructure/persistence/models"
)

// BranchRepository persists branches using GORM and doubles as the sync
// pipeline's branch guard.
type BranchRepository struct {
	db *gorm.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *gorm.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// FindByID finds a branch by ID within a tenant
func (r *BranchRepository) FindByID(ctx context.Context, tenantID, branchID uuid.UUID) (*branch.Branch, error) {
	return r.findByID(ctx, r.db, tenantID, branchID)
}

func (r *BranchRepository) findByID(ctx context.Context, tx *gorm.DB, tenantID, branchID uuid.UUID) (*branch.Branch, error) {
	var model models.BranchModel
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, branchID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code, "branch not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a branch
func (r *BranchRepository) Save(ctx context.Context, b *branch.Branch) error {
	var model models.BranchModel
	model.FromDomain(b)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindAllForTenant lists all branches of a tenant
func (r *BranchRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*branch.Branch, error) {
	var rows []models.BranchModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	branches := make([]*branch.Branch, len(rows))
	for i := range rows {
		branches[i] = rows[i].ToDomain()
	}
	return branches, nil
}

// AssertBranchActive reads the branch within tx and rejects frozen or
// missing branches. Reading inside the mutation transaction makes a
// concurrent freeze visible to in-flight applies.
func (r *BranchRepository) AssertBranchActive(ctx context.Context, tx *gorm.DB, tenantID, branchID uuid.UUID) error {
	b, err := r.findByID(ctx, tx, tenantID, branchID)
	if err != nil {
		return err
	}
	if !b.IsActive() {
		return branch.ErrBranchFrozen
	}
	return nil
}

var _ appsync.BranchGuard = (*BranchRepository)(nil)
