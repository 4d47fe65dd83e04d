package sales

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	appcashier "github.com/storeops/backend/internal/application/cashier"
	"github.com/storeops/backend/internal/domain/cashier"
	"github.com/storeops/backend/internal/domain/sales"
	"github.com/storeops/backend/internal/domain/shared"
	syncdomain "github.com/storeops/backend/internal/domain/sync"
)

// SaleStore persists finalized sales within a caller-owned transaction
type SaleStore interface {
	Save(ctx context.Context, tx *gorm.DB, sale *sales.Sale) error
}

type saleLinePayload struct {
	ItemName  string          `json:"item_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type finalizeSalePayload struct {
	SessionID     *uuid.UUID          `json:"session_id,omitempty"`
	PaymentMethod sales.PaymentMethod `json:"payment_method"`
	Lines         []saleLinePayload   `json:"lines"`
}

type finalizeSaleResult struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	SessionID   uuid.UUID       `json:"session_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// FinalizeSaleMutator applies SALE_FINALIZED operations. A sale always
// lands on an open cash session; its total is added to the session's
// running sales total in the same transaction.
type FinalizeSaleMutator struct {
	sales    SaleStore
	sessions appcashier.SessionStore
}

// NewFinalizeSaleMutator creates the mutator for finalizing sales
func NewFinalizeSaleMutator(saleStore SaleStore, sessions appcashier.SessionStore) *FinalizeSaleMutator {
	return &FinalizeSaleMutator{sales: saleStore, sessions: sessions}
}

// OperationType returns the operation type this mutator handles
func (m *FinalizeSaleMutator) OperationType() syncdomain.OperationType {
	return syncdomain.OpTypeSaleFinalized
}

// Apply records a finalized sale against the open session
func (m *FinalizeSaleMutator) Apply(ctx context.Context, tx *gorm.DB, sctx syncdomain.SessionContext, op syncdomain.ClientOperation, branchID uuid.UUID) (json.RawMessage, []shared.DomainEvent, error) {
	var payload finalizeSalePayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return nil, nil, shared.NewDomainError(syncdomain.ErrCodeInvalidPayload, "malformed sale payload: "+err.Error())
	}

	var session *cashier.CashSession
	var err error
	if payload.SessionID != nil {
		session, err = m.sessions.FindByID(ctx, tx, sctx.TenantID, *payload.SessionID)
	} else {
		session, err = m.sessions.FindOpen(ctx, tx, sctx.TenantID, branchID, sctx.EmployeeID)
	}
	if err != nil {
		return nil, nil, err
	}
	if session == nil || !session.IsOpen() {
		return nil, nil, shared.NewDomainError(syncdomain.ErrCodeSessionNotOpen, "sale requires an open cash session")
	}

	lines := make([]sales.LineInput, len(payload.Lines))
	for i, l := range payload.Lines {
		lines[i] = sales.LineInput{ItemName: l.ItemName, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}

	sale, err := sales.FinalizeSale(sctx.TenantID, branchID, session.ID, sctx.EmployeeID, payload.PaymentMethod, lines, op.OccurredAt)
	if err != nil {
		return nil, nil, err
	}

	if err := session.RecordSale(sale.TotalAmount); err != nil {
		return nil, nil, err
	}

	if err := m.sales.Save(ctx, tx, sale); err != nil {
		return nil, nil, err
	}
	if err := m.sessions.Update(ctx, tx, session); err != nil {
		return nil, nil, err
	}

	result, err := json.Marshal(finalizeSaleResult{
		SaleID:      sale.ID,
		SessionID:   session.ID,
		TotalAmount: sale.TotalAmount,
	})
	if err != nil {
		return nil, nil, err
	}
	return result, sale.GetDomainEvents(), nil
}
