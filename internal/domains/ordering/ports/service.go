package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/order-console/internal/domains/ordering/application/types"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
)

// Service exposes draft order use cases to adapters.
type Service interface {
	CreateDraft(ctx context.Context) (*types.DraftView, error)
	GetDraft(ctx context.Context, draftID string) (*types.DraftView, error)
	DiscardDraft(ctx context.Context, draftID string) error
	SelectCustomer(ctx context.Context, draftID string, customerID int64) (*types.DraftView, error)
	AddItem(ctx context.Context, draftID string, productID int64, quantity int) (*types.DraftView, error)
	SetItemQuantity(ctx context.Context, draftID string, productID int64, quantity int) (*types.DraftView, error)
	SetItemPrice(ctx context.Context, draftID string, productID int64, price decimal.Decimal) (*types.DraftView, error)
	RemoveItem(ctx context.Context, draftID string, productID int64) (*types.DraftView, error)
	UpdatePricing(ctx context.Context, draftID string, inputs domain.PricingInputs) (*types.DraftView, error)
	CheckStock(ctx context.Context, draftID string) (*types.StockCheck, error)
	Submit(ctx context.Context, draftID string) (*types.SubmissionResult, error)
	LookupProducts(ctx context.Context, draftID, query string) (uint64, error)
	LookupCustomers(ctx context.Context, draftID, query string) (uint64, error)
	ProductLookup(ctx context.Context, draftID string) (*types.LookupView[domain.ProductSnapshot], error)
	CustomerLookup(ctx context.Context, draftID string) (*types.LookupView[domain.CustomerSnapshot], error)
}
