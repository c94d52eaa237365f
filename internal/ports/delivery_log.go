package ports

import (
	"context"

	"delivery-log-service/internal/domain"
)

// Port: a boundary for persisting confirmed delivery records. An append is
// all-or-nothing; implementations never store a partial row.
type DeliveryLog interface {
	Append(ctx context.Context, rec *domain.DeliveryRecord) error
}

// Optional extension implemented by the database-backed logs that can read
// their rows back for the listing endpoint.
type DeliveryRepository interface {
	DeliveryLog
	// Return all logged deliveries in append order.
	ListDeliveries(ctx context.Context) ([]*domain.DeliveryRecord, error)
}
