package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storeops/backend/internal/domain/shared"
	"github.com/storeops/backend/internal/domain/sync"
)

// PaymentMethod is how a sale was settled at the register
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
)

// SaleLine is one item position on a finalized sale
type SaleLine struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	ItemName  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// Sale is a finalized register transaction. Sales arrive already closed from
// the device; there is no draft state on the server side.
type Sale struct {
	shared.TenantAggregateRoot
	BranchID      uuid.UUID
	SessionID     uuid.UUID
	EmployeeID    uuid.UUID
	Lines         []SaleLine
	TotalAmount   decimal.Decimal
	PaymentMethod PaymentMethod
	FinalizedAt   time.Time
}

// LineInput describes one line of a sale to finalize
type LineInput struct {
	ItemName  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// FinalizeSale creates a finalized sale from device-reported lines. Totals
// are recomputed server-side from quantity and unit price.
func FinalizeSale(tenantID, branchID, sessionID, employeeID uuid.UUID, method PaymentMethod, lines []LineInput, finalizedAt time.Time) (*Sale, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError(sync.ErrCodeInvalidPayload, "a sale requires at least one line")
	}
	if method != PaymentCash && method != PaymentCard {
		return nil, shared.NewDomainError(sync.ErrCodeInvalidPayload, "unknown payment method: "+string(method))
	}

	s := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		SessionID:           sessionID,
		EmployeeID:          employeeID,
		PaymentMethod:       method,
		TotalAmount:         decimal.Zero,
		FinalizedAt:         finalizedAt,
	}

	for _, in := range lines {
		if in.ItemName == "" {
			return nil, shared.NewDomainError(sync.ErrCodeInvalidPayload, "sale line item name is required")
		}
		if !in.Quantity.IsPositive() {
			return nil, shared.NewDomainError(sync.ErrCodeInvalidPayload, "sale line quantity must be positive")
		}
		if in.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError(sync.ErrCodeInvalidPayload, "sale line unit price cannot be negative")
		}
		amount := in.Quantity.Mul(in.UnitPrice)
		s.Lines = append(s.Lines, SaleLine{
			ID:        uuid.New(),
			SaleID:    s.ID,
			ItemName:  in.ItemName,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Amount:    amount,
		})
		s.TotalAmount = s.TotalAmount.Add(amount)
	}

	s.AddDomainEvent(NewSaleFinalizedEvent(s))
	return s, nil
}
