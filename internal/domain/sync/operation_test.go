package sync

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/backend/internal/domain/shared"
)

func TestOperationType_IsValid(t *testing.T) {
	assert.True(t, OpTypeSaleFinalized.IsValid())
	assert.True(t, OpTypeCashSessionOpened.IsValid())
	assert.True(t, OpTypeCashSessionClosed.IsValid())
	assert.False(t, OperationType("MENU_UPDATED").IsValid())
	assert.False(t, OperationType("").IsValid())
}

func TestClientOperation_Validate(t *testing.T) {
	t.Run("valid operation", func(t *testing.T) {
		op := ClientOperation{
			ClientOpID: "dev1-0001",
			Type:       OpTypeCashSessionOpened,
			OccurredAt: time.Now(),
		}
		assert.NoError(t, op.Validate())
	})

	t.Run("missing client op id", func(t *testing.T) {
		op := ClientOperation{Type: OpTypeCashSessionOpened}
		err := op.Validate()
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeInvalidPayload, domainErr.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		op := ClientOperation{ClientOpID: "dev1-0002", Type: "REFUND_ISSUED"}
		err := op.Validate()
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeUnknownOperationType, domainErr.Code)
	})
}

func TestSessionContext_EffectiveBranch(t *testing.T) {
	sessionBranch := uuid.New()
	opBranch := uuid.New()
	sctx := SessionContext{TenantID: uuid.New(), BranchID: sessionBranch}

	t.Run("defaults to session branch", func(t *testing.T) {
		op := ClientOperation{ClientOpID: "a", Type: OpTypeSaleFinalized}
		assert.Equal(t, sessionBranch, sctx.EffectiveBranch(op))
	})

	t.Run("operation branch overrides", func(t *testing.T) {
		op := ClientOperation{ClientOpID: "a", Type: OpTypeSaleFinalized, BranchID: &opBranch}
		assert.Equal(t, opBranch, sctx.EffectiveBranch(op))
	})
}

func TestOperationLogEntry_Constructors(t *testing.T) {
	sctx := SessionContext{
		TenantID:   uuid.New(),
		BranchID:   uuid.New(),
		EmployeeID: uuid.New(),
		ActorRole:  "cashier",
	}
	occurred := time.Now().Add(-2 * time.Hour)
	op := ClientOperation{
		ClientOpID: "dev1-0042",
		Type:       OpTypeSaleFinalized,
		OccurredAt: occurred,
	}

	t.Run("applied entry", func(t *testing.T) {
		entry := NewAppliedEntry(sctx, op, sctx.BranchID, []byte(`{"sale_id":"x"}`))
		assert.Equal(t, LogStatusApplied, entry.Status)
		assert.True(t, entry.Applied())
		assert.Equal(t, occurred, entry.OccurredAt)
		assert.Equal(t, "dev1-0042", entry.ClientOpID)
		assert.Empty(t, entry.ErrorCode)
	})

	t.Run("failed entry", func(t *testing.T) {
		entry := NewFailedEntry(sctx, op, sctx.BranchID, ErrCodeBranchFrozen, "branch is frozen")
		assert.Equal(t, LogStatusFailed, entry.Status)
		assert.False(t, entry.Applied())
		assert.Equal(t, ErrCodeBranchFrozen, entry.ErrorCode)
		assert.Nil(t, entry.Result)
	})
}
