package sync

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogStatus is the terminal outcome of a processed operation.
// There is no pending state: an entry is written only when the outcome is known.
type LogStatus string

const (
	LogStatusApplied LogStatus = "APPLIED"
	LogStatusFailed  LogStatus = "FAILED"
)

// OperationLogEntry is the server-side record of a processed client
// operation, 1:1 with the ClientOperation that produced it. The
// (TenantID, ClientOpID) pair is unique; once written, status, result and
// error code never change on replay. The entry is the source of idempotency:
// replays of the same ClientOpID return this record verbatim.
type OperationLogEntry struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	ClientOpID   string
	Type         OperationType
	Status       LogStatus
	Result       json.RawMessage
	ErrorCode    string
	ErrorMessage string
	OccurredAt   time.Time
	BranchID     uuid.UUID
	EmployeeID   uuid.UUID
	ActorRole    string
	AppliedAt    time.Time
	CreatedAt    time.Time
}

// NewAppliedEntry records a successful first apply of an operation
func NewAppliedEntry(sctx SessionContext, op ClientOperation, branchID uuid.UUID, result json.RawMessage) *OperationLogEntry {
	now := time.Now()
	return &OperationLogEntry{
		ID:         uuid.New(),
		TenantID:   sctx.TenantID,
		ClientOpID: op.ClientOpID,
		Type:       op.Type,
		Status:     LogStatusApplied,
		Result:     result,
		OccurredAt: op.OccurredAt,
		BranchID:   branchID,
		EmployeeID: sctx.EmployeeID,
		ActorRole:  sctx.ActorRole,
		AppliedAt:  now,
		CreatedAt:  now,
	}
}

// NewFailedEntry records a terminal failure so identical retries dedup to
// the same outcome instead of re-attempting the mutation.
func NewFailedEntry(sctx SessionContext, op ClientOperation, branchID uuid.UUID, errorCode, errorMessage string) *OperationLogEntry {
	now := time.Now()
	return &OperationLogEntry{
		ID:           uuid.New(),
		TenantID:     sctx.TenantID,
		ClientOpID:   op.ClientOpID,
		Type:         op.Type,
		Status:       LogStatusFailed,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		OccurredAt:   op.OccurredAt,
		BranchID:     branchID,
		EmployeeID:   sctx.EmployeeID,
		ActorRole:    sctx.ActorRole,
		AppliedAt:    now,
		CreatedAt:    now,
	}
}

// Applied reports whether the entry recorded a successful apply
func (e *OperationLogEntry) Applied() bool {
	return e.Status == LogStatusApplied
}
