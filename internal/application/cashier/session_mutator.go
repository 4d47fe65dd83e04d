package cashier

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storeops/backend/internal/domain/cashier"
	"github.com/storeops/backend/internal/domain/shared"
	syncdomain "github.com/storeops/backend/internal/domain/sync"
)

// SessionStore persists cash sessions within a caller-owned transaction
type SessionStore interface {
	// FindOpen returns the open session for a branch and employee,
	// (nil, nil) when there is none
	FindOpen(ctx context.Context, tx *gorm.DB, tenantID, branchID, employeeID uuid.UUID) (*cashier.CashSession, error)
	FindByID(ctx context.Context, tx *gorm.DB, tenantID, sessionID uuid.UUID) (*cashier.CashSession, error)
	Save(ctx context.Context, tx *gorm.DB, session *cashier.CashSession) error
	Update(ctx context.Context, tx *gorm.DB, session *cashier.CashSession) error
}

type openSessionPayload struct {
	FloatAmount decimal.Decimal `json:"float_amount"`
}

type closeSessionPayload struct {
	SessionID     *uuid.UUID      `json:"session_id,omitempty"`
	CountedAmount decimal.Decimal `json:"counted_amount"`
}

type openSessionResult struct {
	SessionID   uuid.UUID             `json:"session_id"`
	Status      cashier.SessionStatus `json:"status"`
	FloatAmount decimal.Decimal       `json:"float_amount"`
}

type closeSessionResult struct {
	SessionID     uuid.UUID             `json:"session_id"`
	Status        cashier.SessionStatus `json:"status"`
	SalesTotal    decimal.Decimal       `json:"sales_total"`
	CountedAmount decimal.Decimal       `json:"counted_amount"`
	Variance      decimal.Decimal       `json:"variance"`
}

// OpenSessionMutator applies CASH_SESSION_OPENED operations. At most one
// session may be open per branch and employee at a time.
type OpenSessionMutator struct {
	sessions SessionStore
}

// NewOpenSessionMutator creates the mutator for opening cash sessions
func NewOpenSessionMutator(sessions SessionStore) *OpenSessionMutator {
	return &OpenSessionMutator{sessions: sessions}
}

// OperationType returns the operation type this mutator handles
func (m *OpenSessionMutator) OperationType() syncdomain.OperationType {
	return syncdomain.OpTypeCashSessionOpened
}

// Apply opens a cash session with the device-reported opening float
func (m *OpenSessionMutator) Apply(ctx context.Context, tx *gorm.DB, sctx syncdomain.SessionContext, op syncdomain.ClientOperation, branchID uuid.UUID) (json.RawMessage, []shared.DomainEvent, error) {
	var payload openSessionPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return nil, nil, shared.NewDomainError(syncdomain.ErrCodeInvalidPayload, "malformed open session payload: "+err.Error())
	}

	existing, err := m.sessions.FindOpen(ctx, tx, sctx.TenantID, branchID, sctx.EmployeeID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, shared.NewDomainError(syncdomain.ErrCodeSessionAlreadyOpen, "an open cash session already exists for this branch and employee")
	}

	session, err := cashier.OpenSession(sctx.TenantID, branchID, sctx.EmployeeID, payload.FloatAmount, op.OccurredAt)
	if err != nil {
		return nil, nil, err
	}
	if err := m.sessions.Save(ctx, tx, session); err != nil {
		return nil, nil, err
	}

	result, err := json.Marshal(openSessionResult{
		SessionID:   session.ID,
		Status:      session.Status,
		FloatAmount: session.FloatAmount,
	})
	if err != nil {
		return nil, nil, err
	}
	return result, session.GetDomainEvents(), nil
}

// CloseSessionMutator applies CASH_SESSION_CLOSED operations
type CloseSessionMutator struct {
	sessions SessionStore
}

// NewCloseSessionMutator creates the mutator for closing cash sessions
func NewCloseSessionMutator(sessions SessionStore) *CloseSessionMutator {
	return &CloseSessionMutator{sessions: sessions}
}

// OperationType returns the operation type this mutator handles
func (m *CloseSessionMutator) OperationType() syncdomain.OperationType {
	return syncdomain.OpTypeCashSessionClosed
}

// Apply closes the open session for the branch and employee, or the
// session named in the payload when one is given.
func (m *CloseSessionMutator) Apply(ctx context.Context, tx *gorm.DB, sctx syncdomain.SessionContext, op syncdomain.ClientOperation, branchID uuid.UUID) (json.RawMessage, []shared.DomainEvent, error) {
	var payload closeSessionPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return nil, nil, shared.NewDomainError(syncdomain.ErrCodeInvalidPayload, "malformed close session payload: "+err.Error())
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
	if session == nil {
		return nil, nil, shared.NewDomainError(syncdomain.ErrCodeSessionNotOpen, "no open cash session for this branch and employee")
	}

	if err := session.Close(payload.CountedAmount, op.OccurredAt); err != nil {
		return nil, nil, err
	}
	if err := m.sessions.Update(ctx, tx, session); err != nil {
		return nil, nil, err
	}

	result, err := json.Marshal(closeSessionResult{
		SessionID:     session.ID,
		Status:        session.Status,
		SalesTotal:    session.SalesTotal,
		CountedAmount: session.CountedAmount,
		Variance:      session.Variance,
	})
	if err != nil {
		return nil, nil, err
	}
	return result, session.GetDomainEvents(), nil
}
