package port

import (
	"context"

	"github.com/rzaw/delivery-proof/internal/core/domain"
)

// DeliveryLog is the durable audit trail of applied deliveries. It is
// append-only: a failed write is logged by the caller, never rolled
// back into stock, because the key-value store is the stock authority.
type DeliveryLog interface {
	// RecordDelivery persists one applied line item.
	RecordDelivery(ctx context.Context, rec domain.DeliveryRecord) error
}
