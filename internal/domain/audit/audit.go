package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outcome classifies the result of an audited action
type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeRejected Outcome = "REJECTED"
)

// Denial reasons for rejected actions
const (
	DenialSyncBranchFrozen = "SYNC_REJECTED_BRANCH_FROZEN"
	DenialSyncApplyFailed  = "SYNC_APPLY_FAILED"
)

// Action types recorded by the sync pipeline
const (
	ActionSyncApply = "SYNC_APPLY"
)

// Entry is one immutable audit record. Entries are written in the same
// transaction as the action they document whenever one is open.
type Entry struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	BranchID     uuid.UUID
	EmployeeID   uuid.UUID
	ActorRole    string
	ActionType   string
	ResourceType string
	ResourceID   string
	Outcome      Outcome
	DenialReason string
	Details      json.RawMessage
	RecordedAt   time.Time
}

// NewEntry creates an audit entry stamped with the current time
func NewEntry(tenantID, branchID, employeeID uuid.UUID, actorRole, actionType, resourceType, resourceID string, outcome Outcome) *Entry {
	return &Entry{
		ID:           uuid.New(),
		TenantID:     tenantID,
		BranchID:     branchID,
		EmployeeID:   employeeID,
		ActorRole:    actorRole,
		ActionType:   actionType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Outcome:      outcome,
		RecordedAt:   time.Now(),
	}
}

// WithDenial marks the entry rejected with a reason
func (e *Entry) WithDenial(reason string) *Entry {
	e.Outcome = OutcomeRejected
	e.DenialReason = reason
	return e
}

// WithDetails attaches structured detail to the entry
func (e *Entry) WithDetails(details json.RawMessage) *Entry {
	e.Details = details
	return e
}
