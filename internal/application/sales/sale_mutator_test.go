package sales

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storeops/backend/internal/domain/cashier"
	"github.com/storeops/backend/internal/domain/sales"
	"github.com/storeops/backend/internal/domain/shared"
	syncdomain "github.com/storeops/backend/internal/domain/sync"
)

// fakeSaleStore collects saved sales for mutator tests
type fakeSaleStore struct {
	saved []*sales.Sale
}

func (s *fakeSaleStore) Save(ctx context.Context, tx *gorm.DB, sale *sales.Sale) error {
	s.saved = append(s.saved, sale)
	return nil
}

// fakeSessionStore keeps cash sessions in memory
type fakeSessionStore struct {
	sessions map[uuid.UUID]*cashier.CashSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*cashier.CashSession)}
}

func (s *fakeSessionStore) FindOpen(ctx context.Context, tx *gorm.DB, tenantID, branchID, employeeID uuid.UUID) (*cashier.CashSession, error) {
	for _, sess := range s.sessions {
		if sess.TenantID == tenantID && sess.BranchID == branchID &&
			sess.EmployeeID == employeeID && sess.Status == cashier.SessionStatusOpen {
			return sess, nil
		}
	}
	return nil, nil
}

func (s *fakeSessionStore) FindByID(ctx context.Context, tx *gorm.DB, tenantID, sessionID uuid.UUID) (*cashier.CashSession, error) {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.TenantID != tenantID {
		return nil, nil
	}
	return sess, nil
}

func (s *fakeSessionStore) Save(ctx context.Context, tx *gorm.DB, session *cashier.CashSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeSessionStore) Update(ctx context.Context, tx *gorm.DB, session *cashier.CashSession) error {
	s.sessions[session.ID] = session
	return nil
}

func saleTestFixture(t *testing.T) (syncdomain.SessionContext, *fakeSessionStore, *cashier.CashSession) {
	t.Helper()
	sctx := syncdomain.SessionContext{
		TenantID:   uuid.New(),
		BranchID:   uuid.New(),
		EmployeeID: uuid.New(),
		ActorRole:  "cashier",
	}
	store := newFakeSessionStore()
	session, err := cashier.OpenSession(sctx.TenantID, sctx.BranchID, sctx.EmployeeID,
		decimal.RequireFromString("100.00"), time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	store.sessions[session.ID] = session
	return sctx, store, session
}

func saleOperation(payload string) syncdomain.ClientOperation {
	return syncdomain.ClientOperation{
		ClientOpID: "op-1",
		Type:       syncdomain.OpTypeSaleFinalized,
		Payload:    json.RawMessage(payload),
		OccurredAt: time.Now().Add(-time.Hour),
	}
}

func saleDomainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	return domainErr.Code
}

func TestFinalizeSaleMutator_Apply(t *testing.T) {
	sctx, sessions, session := saleTestFixture(t)
	saleStore := &fakeSaleStore{}
	mutator := NewFinalizeSaleMutator(saleStore, sessions)

	op := saleOperation(`{
		"payment_method": "CASH",
		"lines": [
			{"item_name": "Espresso", "quantity": "2", "unit_price": "3.50"},
			{"item_name": "Croissant", "quantity": "1", "unit_price": "2.25"}
		]
	}`)
	result, events, err := mutator.Apply(context.Background(), nil, sctx, op, sctx.BranchID)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, sales.EventTypeSaleFinalized, events[0].EventType())

	var res finalizeSaleResult
	require.NoError(t, json.Unmarshal(result, &res))
	assert.Equal(t, session.ID, res.SessionID)
	assert.True(t, decimal.RequireFromString("9.25").Equal(res.TotalAmount))

	// Totals are recomputed server-side and rolled into the session
	require.Len(t, saleStore.saved, 1)
	sale := saleStore.saved[0]
	assert.True(t, decimal.RequireFromString("9.25").Equal(sale.TotalAmount))
	require.Len(t, sale.Lines, 2)
	assert.True(t, decimal.RequireFromString("7.00").Equal(sale.Lines[0].Amount))
	assert.True(t, decimal.RequireFromString("9.25").Equal(session.SalesTotal))
}

func TestFinalizeSaleMutator_Apply_ExplicitSession(t *testing.T) {
	sctx, sessions, session := saleTestFixture(t)
	saleStore := &fakeSaleStore{}
	mutator := NewFinalizeSaleMutator(saleStore, sessions)

	op := saleOperation(`{
		"session_id": "` + session.ID.String() + `",
		"payment_method": "CARD",
		"lines": [{"item_name": "Latte", "quantity": "1", "unit_price": "4.00"}]
	}`)
	result, _, err := mutator.Apply(context.Background(), nil, sctx, op, sctx.BranchID)

	require.NoError(t, err)

	var res finalizeSaleResult
	require.NoError(t, json.Unmarshal(result, &res))
	assert.Equal(t, session.ID, res.SessionID)
	assert.Equal(t, sales.PaymentCard, saleStore.saved[0].PaymentMethod)
}

func TestFinalizeSaleMutator_Apply_NoOpenSession(t *testing.T) {
	sctx := syncdomain.SessionContext{
		TenantID:   uuid.New(),
		BranchID:   uuid.New(),
		EmployeeID: uuid.New(),
	}
	mutator := NewFinalizeSaleMutator(&fakeSaleStore{}, newFakeSessionStore())

	op := saleOperation(`{
		"payment_method": "CASH",
		"lines": [{"item_name": "Espresso", "quantity": "1", "unit_price": "3.50"}]
	}`)
	_, _, err := mutator.Apply(context.Background(), nil, sctx, op, sctx.BranchID)

	require.Error(t, err)
	assert.Equal(t, syncdomain.ErrCodeSessionNotOpen, saleDomainCode(t, err))
}

func TestFinalizeSaleMutator_Apply_ClosedSession(t *testing.T) {
	sctx, sessions, session := saleTestFixture(t)
	require.NoError(t, session.Close(decimal.RequireFromString("100.00"), time.Now()))

	mutator := NewFinalizeSaleMutator(&fakeSaleStore{}, sessions)
	op := saleOperation(`{
		"session_id": "` + session.ID.String() + `",
		"payment_method": "CASH",
		"lines": [{"item_name": "Espresso", "quantity": "1", "unit_price": "3.50"}]
	}`)
	_, _, err := mutator.Apply(context.Background(), nil, sctx, op, sctx.BranchID)

	require.Error(t, err)
	assert.Equal(t, syncdomain.ErrCodeSessionNotOpen, saleDomainCode(t, err))
}

func TestFinalizeSaleMutator_Apply_EmptyLines(t *testing.T) {
	sctx, sessions, _ := saleTestFixture(t)
	mutator := NewFinalizeSaleMutator(&fakeSaleStore{}, sessions)

	op := saleOperation(`{"payment_method": "CASH", "lines": []}`)
	_, _, err := mutator.Apply(context.Background(), nil, sctx, op, sctx.BranchID)

	require.Error(t, err)
	assert.Equal(t, syncdomain.ErrCodeInvalidPayload, saleDomainCode(t, err))
}

func TestFinalizeSaleMutator_Apply_UnknownPaymentMethod(t *testing.T) {
	sctx, sessions, _ := saleTestFixture(t)
	mutator := NewFinalizeSaleMutator(&fakeSaleStore{}, sessions)

	op := saleOperation(`{
		"payment_method": "CHECK",
		"lines": [{"item_name": "Espresso", "quantity": "1", "unit_price": "3.50"}]
	}`)
	_, _, err := mutator.Apply(context.Background(), nil, sctx, op, sctx.BranchID)

	require.Error(t, err)
	assert.Equal(t, syncdomain.ErrCodeInvalidPayload, saleDomainCode(t, err))
}

func TestFinalizeSaleMutator_Apply_MalformedPayload(t *testing.T) {
	sctx, sessions, _ := saleTestFixture(t)
	mutator := NewFinalizeSaleMutator(&fakeSaleStore{}, sessions)

	op := saleOperation(`{"payment_method":`)
	_, _, err := mutator.Apply(context.Background(), nil, sctx, op, sctx.BranchID)

	require.Error(t, err)
	assert.Equal(t, syncdomain.ErrCodeInvalidPayload, saleDomainCode(t, err))
}
