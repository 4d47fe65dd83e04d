package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storeops/backend/internal/domain/cashier"
)

// CashSessionModel is the persistence model for cash sessions.
// The partial unique index enforcing one open session per branch and
// employee lives in the SQL migrations; sqlite tests enforce it through
// the repository's FindOpen check only.
type CashSessionModel struct {
	TenantAggregateModel
	BranchID      uuid.UUID             `gorm:"type:uuid;not null;index:idx_cash_sessions_branch_employee,priority:1"`
	EmployeeID    uuid.UUID             `gorm:"type:uuid;not null;index:idx_cash_sessions_branch_employee,priority:2"`
	Status        cashier.SessionStatus `gorm:"type:varchar(20);not null;index"`
	FloatAmount   decimal.Decimal       `gorm:"type:decimal(20,4);not null"`
	CountedAmount decimal.Decimal       `gorm:"type:decimal(20,4);not null"`
	SalesTotal    decimal.Decimal       `gorm:"type:decimal(20,4);not null"`
	Variance      decimal.Decimal       `gorm:"type:decimal(20,4);not null"`
	OpenedAt      time.Time             `gorm:"not null"`
	ClosedAt      *time.Time
}

// TableName returns the table name for GORM
func (CashSessionModel) TableName() string {
	return "cash_sessions"
}

// ToDomain converts the persistence model to a domain CashSession
func (m *CashSessionModel) ToDomain() *cashier.CashSession {
	s := &cashier.CashSession{
		BranchID:      m.BranchID,
		EmployeeID:    m.EmployeeID,
		Status:        m.Status,
		FloatAmount:   m.FloatAmount,
		CountedAmount: m.CountedAmount,
		SalesTotal:    m.SalesTotal,
		Variance:      m.Variance,
		OpenedAt:      m.OpenedAt,
		ClosedAt:      m.ClosedAt,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain CashSession
func (m *CashSessionModel) FromDomain(s *cashier.CashSession) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.BranchID = s.BranchID
	m.EmployeeID = s.EmployeeID
	m.Status = s.Status
	m.FloatAmount = s.FloatAmount
	m.CountedAmount = s.CountedAmount
	m.SalesTotal = s.SalesTotal
	m.Variance = s.Variance
	m.OpenedAt = s.OpenedAt
	m.ClosedAt = s.ClosedAt
}
