package ports

import (
	"context"
	"errors"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

// SearchQuery is the lookup contract shared by product and customer searches.
type SearchQuery struct {
	Query      string
	Limit      int
	ActiveOnly bool
}

// SnapshotProvider returns point-in-time catalog records.
type SnapshotProvider interface {
	SearchProducts(ctx context.Context, q SearchQuery) ([]domain.ProductSnapshot, error)
	GetProduct(ctx context.Context, id int64) (*domain.ProductSnapshot, error)
	SearchCustomers(ctx context.Context, q SearchQuery) ([]domain.CustomerSnapshot, error)
	GetCustomer(ctx context.Context, id int64) (*domain.CustomerSnapshot, error)
}

// SnapshotInvalidator drops cached snapshots after a stock change is announced.
type SnapshotInvalidator interface {
	InvalidateProduct(ctx context.Context, id int64) error
}
