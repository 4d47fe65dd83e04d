package sync

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/storeops/backend/internal/domain/shared"
)

// OperationType identifies the kind of mutation a device queued offline.
// The set is closed: unknown types are rejected before any mutator runs.
type OperationType string

const (
	OpTypeSaleFinalized     OperationType = "SALE_FINALIZED"
	OpTypeCashSessionOpened OperationType = "CASH_SESSION_OPENED"
	OpTypeCashSessionClosed OperationType = "CASH_SESSION_CLOSED"
)

// IsValid reports whether t is a member of the closed operation type set
func (t OperationType) IsValid() bool {
	switch t {
	case OpTypeSaleFinalized, OpTypeCashSessionOpened, OpTypeCashSessionClosed:
		return true
	}
	return false
}

// MaxBatchSize caps the number of operations accepted per submission
const MaxBatchSize = 100

// ClientOperation is one mutating action queued by a branch device while
// disconnected. ClientOpID is the client-generated idempotency key, unique
// per tenant. BranchID optionally overrides the session branch for this
// operation only.
type ClientOperation struct {
	ClientOpID string
	Type       OperationType
	Payload    json.RawMessage
	OccurredAt time.Time
	BranchID   *uuid.UUID
}

// SessionContext carries the authenticated submission context. It comes from
// the caller's credentials, never from the operations themselves.
type SessionContext struct {
	TenantID   uuid.UUID
	BranchID   uuid.UUID
	EmployeeID uuid.UUID
	ActorRole  string
}

// EffectiveBranch resolves the branch an operation targets: the operation's
// own branch when set, otherwise the session default.
func (c SessionContext) EffectiveBranch(op ClientOperation) uuid.UUID {
	if op.BranchID != nil {
		return *op.BranchID
	}
	return c.BranchID
}

// Validate checks an operation is submittable
func (op ClientOperation) Validate() error {
	if op.ClientOpID == "" {
		return shared.NewDomainError(ErrCodeInvalidPayload, "client operation id is required")
	}
	if !op.Type.IsValid() {
		return shared.NewDomainError(ErrCodeUnknownOperationType, "unknown operation type: "+string(op.Type))
	}
	return nil
}

// Sync-specific error codes returned in per-operation results
const (
	ErrCodeBranchFrozen         = "BRANCH_FROZEN"
	ErrCodeInvalidPayload       = "INVALID_PAYLOAD"
	ErrCodeUnknownOperationType = "UNKNOWN_OPERATION_TYPE"
	ErrCodeSessionAlreadyOpen   = "SESSION_ALREADY_OPEN"
	ErrCodeSessionNotOpen       = "SESSION_NOT_OPEN"
	ErrCodeInternal             = "INTERNAL"
)
