package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/backend/internal/domain/shared"
	"github.com/storeops/backend/internal/domain/sync"
)

func TestFinalizeSale(t *testing.T) {
	tenantID := uuid.New()
	branchID := uuid.New()
	sessionID := uuid.New()
	employeeID := uuid.New()

	t.Run("computes totals from lines", func(t *testing.T) {
		finalizedAt := time.Now().Add(-30 * time.Minute)
		s, err := FinalizeSale(tenantID, branchID, sessionID, employeeID, PaymentCash, []LineInput{
			{ItemName: "Espresso", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(3.50)},
			{ItemName: "Croissant", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(2.25)},
		}, finalizedAt)
		require.NoError(t, err)

		assert.Len(t, s.Lines, 2)
		assert.True(t, s.TotalAmount.Equal(decimal.NewFromFloat(9.25)), "got %s", s.TotalAmount)
		assert.Equal(t, finalizedAt, s.FinalizedAt)

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		finalized, ok := events[0].(*SaleFinalizedEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeSaleFinalized, finalized.EventType())
		assert.Equal(t, s.ID, finalized.SaleID)
		assert.Len(t, finalized.Lines, 2)
		assert.True(t, finalized.TotalAmount.Equal(s.TotalAmount))
	})

	t.Run("requires at least one line", func(t *testing.T) {
		_, err := FinalizeSale(tenantID, branchID, sessionID, employeeID, PaymentCash, nil, time.Now())
		requireInvalidPayload(t, err)
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		_, err := FinalizeSale(tenantID, branchID, sessionID, employeeID, "BARTER", []LineInput{
			{ItemName: "Espresso", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(3)},
		}, time.Now())
		requireInvalidPayload(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := FinalizeSale(tenantID, branchID, sessionID, employeeID, PaymentCard, []LineInput{
			{ItemName: "Espresso", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(3)},
		}, time.Now())
		requireInvalidPayload(t, err)
	})

	t.Run("rejects negative unit price", func(t *testing.T) {
		_, err := FinalizeSale(tenantID, branchID, sessionID, employeeID, PaymentCard, []LineInput{
			{ItemName: "Espresso", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-3)},
		}, time.Now())
		requireInvalidPayload(t, err)
	})
}

func requireInvalidPayload(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, sync.ErrCodeInvalidPayload, domainErr.Code)
}
