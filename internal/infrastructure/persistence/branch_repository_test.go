package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/backend/internal/domain/branch"
	"github.com/storeops/backend/internal/domain/shared"
)

func TestBranchRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBranchRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	b, err := branch.NewBranch(tenantID, "Main Street")
	require.NoError(t, err)
	b.Timezone = "Europe/Berlin"
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindByID(ctx, tenantID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main Street", found.Name)
	assert.Equal(t, "Europe/Berlin", found.Timezone)
	assert.True(t, found.IsActive())
}

func TestBranchRepository_FindByID_WrongTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBranchRepository(db)
	ctx := context.Background()

	b, err := branch.NewBranch(uuid.New(), "Main Street")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, b))

	_, err = repo.FindByID(ctx, uuid.New(), b.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrNotFound.Code, domainErr.Code)
}

func TestBranchRepository_FindAllForTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBranchRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	for _, name := range []string{"Harbor Road", "Main Street"} {
		b, err := branch.NewBranch(tenantID, name)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, b))
	}
	other, err := branch.NewBranch(uuid.New(), "Other Tenant")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	branches, err := repo.FindAllForTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "Harbor Road", branches[0].Name)
	assert.Equal(t, "Main Street", branches[1].Name)
}

func TestBranchRepository_AssertBranchActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBranchRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	b, err := branch.NewBranch(tenantID, "Main Street")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, b))

	assert.NoError(t, repo.AssertBranchActive(ctx, db, tenantID, b.ID))

	b.Freeze()
	require.NoError(t, repo.Save(ctx, b))
	err = repo.AssertBranchActive(ctx, db, tenantID, b.ID)
	assert.True(t, errors.Is(err, branch.ErrBranchFrozen))

	b.Unfreeze()
	require.NoError(t, repo.Save(ctx, b))
	assert.NoError(t, repo.AssertBranchActive(ctx, db, tenantID, b.ID))
}

func TestBranchRepository_AssertBranchActive_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBranchRepository(db)

	err := repo.AssertBranchActive(context.Background(), db, uuid.New(), uuid.New())

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrNotFound.Code, domainErr.Code)
}
