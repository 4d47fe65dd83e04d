package models

import (
	"time"

	"github.com/google/uuid"

	syncdomain "github.com/storeops/backend/internal/domain/sync"
)

// OperationLogModel is the persistence model for processed client
// operations. The unique index over (tenant_id, client_op_id) is the
// idempotency anchor of the sync pipeline.
type OperationLogModel struct {
	ID           uuid.UUID                `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_operation_logs_tenant_client_op,priority:1"`
	ClientOpID   string                   `gorm:"type:varchar(128);not null;uniqueIndex:idx_operation_logs_tenant_client_op,priority:2"`
	Type         syncdomain.OperationType `gorm:"type:varchar(64);not null"`
	Status       syncdomain.LogStatus     `gorm:"type:varchar(20);not null"`
	Result       []byte                   `gorm:"type:jsonb"`
	ErrorCode    string                   `gorm:"type:varchar(64)"`
	ErrorMessage string                   `gorm:"type:text"`
	OccurredAt   time.Time                `gorm:"not null"`
	BranchID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	EmployeeID   uuid.UUID                `gorm:"type:uuid;not null"`
	ActorRole    string                   `gorm:"type:varchar(64)"`
	AppliedAt    time.Time                `gorm:"not null"`
	CreatedAt    time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OperationLogModel) TableName() string {
	return "operation_logs"
}

// ToDomain converts the persistence model to a domain OperationLogEntry
func (m *OperationLogModel) ToDomain() *syncdomain.OperationLogEntry {
	return &syncdomain.OperationLogEntry{
		ID:           m.ID,
		TenantID:     m.TenantID,
		ClientOpID:   m.ClientOpID,
		Type:         m.Type,
		Status:       m.Status,
		Result:       m.Result,
		ErrorCode:    m.ErrorCode,
		ErrorMessage: m.ErrorMessage,
		OccurredAt:   m.OccurredAt,
		BranchID:     m.BranchID,
		EmployeeID:   m.EmployeeID,
		ActorRole:    m.ActorRole,
		AppliedAt:    m.AppliedAt,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain OperationLogEntry
func (m *OperationLogModel) FromDomain(e *syncdomain.OperationLogEntry) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.ClientOpID = e.ClientOpID
	m.Type = e.Type
	m.Status = e.Status
	m.Result = e.Result
	m.ErrorCode = e.ErrorCode
	m.ErrorMessage = e.ErrorMessage
	m.OccurredAt = e.OccurredAt
	m.BranchID = e.BranchID
	m.EmployeeID = e.EmployeeID
	m.ActorRole = e.ActorRole
	m.AppliedAt = e.AppliedAt
	m.CreatedAt = e.CreatedAt
}
