package ports

import (
	"context"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
)

// OrderGateway creates orders on the authoritative backend. Implementations return
// *domain.StockConflictError for stock rejections and *domain.TransportError for
// everything else, and never retry on their own.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.OrderConfirmation, error)
}
