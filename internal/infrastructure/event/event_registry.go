package event

import (
	"github.com/storeops/backend/internal/domain/cashier"
	"github.com/storeops/backend/internal/domain/sales"
)

// RegisterAllEvents registers every domain event type with the
// serializer. The dispatcher needs this to rebuild events from outbox
// rows; an unregistered type dead-letters after max retries.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(sales.EventTypeSaleFinalized, &sales.SaleFinalizedEvent{})

	serializer.Register(cashier.EventTypeCashSessionOpened, &cashier.CashSessionOpenedEvent{})
	serializer.Register(cashier.EventTypeCashSessionClosed, &cashier.CashSessionClosedEvent{})
}
