package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/storeops/backend/internal/domain/cashier"
	"github.com/storeops/backend/internal/domain/sales"
	"github.com/storeops/backend/internal/domain/shared"
)

// DeliveryLogHandler records every event delivered through the bus to
// the structured log. It gives operators a trace of what actually left
// the outbox, independent of any downstream consumer.
type DeliveryLogHandler struct {
	logger *zap.Logger
}

// NewDeliveryLogHandler creates a new delivery log handler
func NewDeliveryLogHandler(logger *zap.Logger) *DeliveryLogHandler {
	return &DeliveryLogHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *DeliveryLogHandler) EventTypes() []string {
	return []string{
		sales.EventTypeSaleFinalized,
		cashier.EventTypeCashSessionOpened,
		cashier.EventTypeCashSessionClosed,
	}
}

// Handle logs the delivered event
func (h *DeliveryLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("event delivered",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

var _ shared.EventHandler = (*DeliveryLogHandler)(nil)
