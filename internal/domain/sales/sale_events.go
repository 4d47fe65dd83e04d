package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storeops/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleFinalized = "SaleFinalized"
)

// SaleLineInfo represents line information for events
type SaleLineInfo struct {
	LineID    uuid.UUID       `json:"line_id"`
	ItemName  string          `json:"item_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// SaleFinalizedEvent is raised when a sale is finalized.
// Downstream consumers (inventory depletion, reporting) subscribe to it.
type SaleFinalizedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	BranchID      uuid.UUID       `json:"branch_id"`
	SessionID     uuid.UUID       `json:"session_id"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	Lines         []SaleLineInfo  `json:"lines"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	FinalizedAt   time.Time       `json:"finalized_at"`
}

// NewSaleFinalizedEvent creates a new SaleFinalizedEvent
func NewSaleFinalizedEvent(s *Sale) *SaleFinalizedEvent {
	lines := make([]SaleLineInfo, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = SaleLineInfo{
			LineID:    l.ID,
			ItemName:  l.ItemName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
		}
	}
	return &SaleFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleFinalized, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:          s.ID,
		BranchID:        s.BranchID,
		SessionID:       s.SessionID,
		EmployeeID:      s.EmployeeID,
		Lines:           lines,
		TotalAmount:     s.TotalAmount,
		PaymentMethod:   s.PaymentMethod,
		FinalizedAt:     s.FinalizedAt,
	}
}

// EventType returns the event type name
func (e *SaleFinalizedEvent) EventType() string {
	return EventTypeSaleFinalized
}
