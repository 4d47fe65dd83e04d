package cashier

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storeops/backend/internal/domain/shared"
	"github.com/storeops/backend/internal/domain/sync"
)

// SessionStatus is the lifecycle state of a cash session
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// CashSession tracks the cash drawer of one employee at one branch between
// opening and closing counts. At most one session may be open per
// (branch, employee) pair.
type CashSession struct {
	shared.TenantAggregateRoot
	BranchID      uuid.UUID
	EmployeeID    uuid.UUID
	Status        SessionStatus
	FloatAmount   decimal.Decimal
	CountedAmount decimal.Decimal
	SalesTotal    decimal.Decimal
	Variance      decimal.Decimal
	OpenedAt      time.Time
	ClosedAt      *time.Time
}

// OpenSession opens a cash session with a starting float
func OpenSession(tenantID, branchID, employeeID uuid.UUID, floatAmount decimal.Decimal, openedAt time.Time) (*CashSession, error) {
	if floatAmount.IsNegative() {
		return nil, shared.NewDomainError(sync.ErrCodeInvalidPayload, "float amount cannot be negative")
	}
	s := &CashSession{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		EmployeeID:          employeeID,
		Status:              SessionStatusOpen,
		FloatAmount:         floatAmount,
		SalesTotal:          decimal.Zero,
		OpenedAt:            openedAt,
	}
	s.AddDomainEvent(NewCashSessionOpenedEvent(s))
	return s, nil
}

// RecordSale adds a finalized sale's total to the session's running total
func (s *CashSession) RecordSale(amount decimal.Decimal) error {
	if s.Status != SessionStatusOpen {
		return shared.NewDomainError(sync.ErrCodeSessionNotOpen, "cash session is not open")
	}
	s.SalesTotal = s.SalesTotal.Add(amount)
	s.UpdatedAt = time.Now()
	return nil
}

// Close closes the session with the counted drawer amount. Variance is the
// difference between counted cash and the expected float plus sales total.
func (s *CashSession) Close(countedAmount decimal.Decimal, closedAt time.Time) error {
	if s.Status != SessionStatusOpen {
		return shared.NewDomainError(sync.ErrCodeSessionNotOpen, "cash session is not open")
	}
	if countedAmount.IsNegative() {
		return shared.NewDomainError(sync.ErrCodeInvalidPayload, "counted amount cannot be negative")
	}
	expected := s.FloatAmount.Add(s.SalesTotal)
	s.CountedAmount = countedAmount
	s.Variance = countedAmount.Sub(expected)
	s.Status = SessionStatusClosed
	s.ClosedAt = &closedAt
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewCashSessionClosedEvent(s))
	return nil
}

// IsOpen reports whether the session accepts sales
func (s *CashSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}
