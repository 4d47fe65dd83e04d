package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/storeops/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for audit trail entries.
// Audit rows are append-only; nothing in the codebase updates them.
type AuditLogModel struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_audit_logs_tenant_recorded,priority:1"`
	BranchID     uuid.UUID     `gorm:"type:uuid;not null;index"`
	EmployeeID   uuid.UUID     `gorm:"type:uuid;not null"`
	ActorRole    string        `gorm:"type:varchar(64)"`
	ActionType   string        `gorm:"type:varchar(64);not null;index"`
	ResourceType string        `gorm:"type:varchar(64);not null"`
	ResourceID   string        `gorm:"type:varchar(128)"`
	Outcome      audit.Outcome `gorm:"type:varchar(20);not null"`
	DenialReason string        `gorm:"type:varchar(64)"`
	Details      []byte        `gorm:"type:jsonb"`
	RecordedAt   time.Time     `gorm:"not null;index:idx_audit_logs_tenant_recorded,priority:2"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Entry
func (m *AuditLogModel) ToDomain() *audit.Entry {
	return &audit.Entry{
		ID:           m.ID,
		TenantID:     m.TenantID,
		BranchID:     m.BranchID,
		EmployeeID:   m.EmployeeID,
		ActorRole:    m.ActorRole,
		ActionType:   m.ActionType,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		Outcome:      m.Outcome,
		DenialReason: m.DenialReason,
		Details:      m.Details,
		RecordedAt:   m.RecordedAt,
	}
}

// FromDomain populates the persistence model from a domain audit Entry
func (m *AuditLogModel) FromDomain(e *audit.Entry) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.BranchID = e.BranchID
	m.EmployeeID = e.EmployeeID
	m.ActorRole = e.ActorRole
	m.ActionType = e.ActionType
	m.ResourceType = e.ResourceType
	m.ResourceID = e.ResourceID
	m.Outcome = e.Outcome
	m.DenialReason = e.DenialReason
	m.Details = e.Details
	m.RecordedAt = e.RecordedAt
}
