package cashier

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storeops/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCashSession = "CashSession"

// Event type constants
const (
	EventTypeCashSessionOpened = "CashSessionOpened"
	EventTypeCashSessionClosed = "CashSessionClosed"
)

// CashSessionOpenedEvent is raised when a cash session is opened
type CashSessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID   uuid.UUID       `json:"session_id"`
	BranchID    uuid.UUID       `json:"branch_id"`
	EmployeeID  uuid.UUID       `json:"employee_id"`
	FloatAmount decimal.Decimal `json:"float_amount"`
	OpenedAt    time.Time       `json:"opened_at"`
}

// NewCashSessionOpenedEvent creates a new CashSessionOpenedEvent
func NewCashSessionOpenedEvent(s *CashSession) *CashSessionOpenedEvent {
	return &CashSessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashSessionOpened, AggregateTypeCashSession, s.ID, s.TenantID),
		SessionID:       s.ID,
		BranchID:        s.BranchID,
		EmployeeID:      s.EmployeeID,
		FloatAmount:     s.FloatAmount,
		OpenedAt:        s.OpenedAt,
	}
}

// EventType returns the event type name
func (e *CashSessionOpenedEvent) EventType() string {
	return EventTypeCashSessionOpened
}

// CashSessionClosedEvent is raised when a cash session is closed
type CashSessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID     uuid.UUID       `json:"session_id"`
	BranchID      uuid.UUID       `json:"branch_id"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	SalesTotal    decimal.Decimal `json:"sales_total"`
	CountedAmount decimal.Decimal `json:"counted_amount"`
	Variance      decimal.Decimal `json:"variance"`
	ClosedAt      time.Time       `json:"closed_at"`
}

// NewCashSessionClosedEvent creates a new CashSessionClosedEvent
func NewCashSessionClosedEvent(s *CashSession) *CashSessionClosedEvent {
	closedAt := time.Now()
	if s.ClosedAt != nil {
		closedAt = *s.ClosedAt
	}
	return &CashSessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashSessionClosed, AggregateTypeCashSession, s.ID, s.TenantID),
		SessionID:       s.ID,
		BranchID:        s.BranchID,
		EmployeeID:      s.EmployeeID,
		SalesTotal:      s.SalesTotal,
		CountedAmount:   s.CountedAmount,
		Variance:        s.Variance,
		ClosedAt:        closedAt,
	}
}

// EventType returns the event type name
func (e *CashSessionClosedEvent) EventType() string {
	return EventTypeCashSessionClosed
}
