package sync

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storeops/backend/internal/domain/audit"
	"github.com/storeops/backend/internal/domain/shared"
	syncdomain "github.com/storeops/backend/internal/domain/sync"
)

// BranchGuard checks branch state before any mutation is applied.
// It must read within the same transaction as the mutation so that a
// concurrent freeze is observed consistently.
type BranchGuard interface {
	// AssertBranchActive returns branch.ErrBranchFrozen when the branch
	// is frozen, shared.ErrNotFound when it does not exist.
	AssertBranchActive(ctx context.Context, tx *gorm.DB, tenantID, branchID uuid.UUID) error
}

// AuditWriter persists audit trail entries
type AuditWriter interface {
	Write(ctx context.Context, tx *gorm.DB, entry *audit.Entry) error
}

// OperationLogStore persists and looks up operation log entries.
// The (tenant_id, client_op_id) pair is unique; Create surfaces a
// violation of that constraint through IsDuplicateKeyError.
type OperationLogStore interface {
	// FindByClientOpID returns (nil, nil) when no entry exists
	FindByClientOpID(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, clientOpID string) (*syncdomain.OperationLogEntry, error)
	Create(ctx context.Context, tx *gorm.DB, entry *syncdomain.OperationLogEntry) error
	IsDuplicateKeyError(err error) bool
}

// Mutator applies one operation type against domain state within tx.
// On success it returns the client-visible result document plus any
// domain events to be staged into the outbox. Business rejections must
// be returned as *shared.DomainError so the pipeline can record the
// code; any other error is treated as internal.
type Mutator interface {
	OperationType() syncdomain.OperationType
	Apply(ctx context.Context, tx *gorm.DB, sctx syncdomain.SessionContext, op syncdomain.ClientOperation, branchID uuid.UUID) (json.RawMessage, []shared.DomainEvent, error)
}

// MutatorRegistry resolves the mutator for an operation type
type MutatorRegistry interface {
	Resolve(opType syncdomain.OperationType) (Mutator, bool)
}
