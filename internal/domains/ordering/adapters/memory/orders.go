package memory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

var _ ports.OrderGateway = (*OrderBackend)(nil)

// Order is a stored order as the backend recorded it.
type Order struct {
	Confirmation   domain.OrderConfirmation
	Request        domain.OrderRequest
	IdempotencyKey string
	CreatedAt      time.Time
}

// OrderBackend is an in-memory authoritative order service. It checks stock for
// every line under one lock, so an order either reserves all of its stock or
// none of it.
type OrderBackend struct {
	catalog     *Catalog
	invalidator ports.SnapshotInvalidator
	now         func() time.Time

	mu      sync.Mutex
	orders  map[int64]*Order
	byKey   map[string]int64
	nextID  int64
	daySeqs map[string]int
}

type BackendOption func(*OrderBackend)

// WithInvalidator notifies inv of every product whose stock an order consumed.
func WithInvalidator(inv ports.SnapshotInvalidator) BackendOption {
	return func(b *OrderBackend) { b.invalidator = inv }
}

func WithBackendClock(now func() time.Time) BackendOption {
	return func(b *OrderBackend) {
		if now != nil {
			b.now = now
		}
	}
}

func NewOrderBackend(catalog *Catalog, opts ...BackendOption) *OrderBackend {
	b := &OrderBackend{
		catalog: catalog,
		now:     time.Now,
		orders:  map[int64]*Order{},
		byKey:   map[string]int64{},
		daySeqs: map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// CreateOrder replays the stored confirmation for a known idempotency key.
func (b *OrderBackend) CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.OrderConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Message: err.Error(), Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if idempotencyKey != "" {
		if id, ok := b.byKey[idempotencyKey]; ok {
			conf := b.orders[id].Confirmation
			return &conf, nil
		}
	}

	if err := b.checkRequest(ctx, req); err != nil {
		return nil, err
	}

	touched, shortages, err := b.catalog.reserve(req.Items)
	if err != nil {
		return nil, &domain.TransportError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: err.Error(), Err: err}
	}
	if len(shortages) > 0 {
		return nil, &domain.StockConflictError{
			Message:   fmt.Sprintf("insufficient stock for %d product(s)", len(shortages)),
			Shortages: shortages,
		}
	}

	now := b.now()
	b.nextID++
	lines := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, domain.LineItem{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	totals := domain.Price(lines, domain.PricingInputs{
		TaxPercentage:  req.TaxPercentage,
		ShippingCost:   req.ShippingCost,
		DiscountAmount: req.DiscountAmount,
	})
	conf := domain.OrderConfirmation{
		ID:          b.nextID,
		OrderNumber: b.nextOrderNumber(now),
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Total:       totals.Total,
		ItemsCount:  len(req.Items),
	}
	conf.Message = conf.DefaultMessage()
	b.orders[conf.ID] = &Order{Confirmation: conf, Request: req, IdempotencyKey: idempotencyKey, CreatedAt: now}
	if idempotencyKey != "" {
		b.byKey[idempotencyKey] = conf.ID
	}

	if b.invalidator != nil {
		for _, p := range touched {
			// Cache invalidation failures only cost freshness.
			_ = b.invalidator.InvalidateProduct(ctx, p.ID)
		}
	}
	return &conf, nil
}

// Order returns a stored order by id.
func (b *OrderBackend) Order(id int64) (*Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return nil, false
	}
	clone := *o
	return &clone, true
}

// Count returns the number of orders created.
func (b *OrderBackend) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}

func (b *OrderBackend) checkRequest(ctx context.Context, req domain.OrderRequest) error {
	customer, err := b.catalog.GetCustomer(ctx, req.CustomerID)
	if errors.Is(err, ports.ErrCustomerNotFound) {
		return &domain.TransportError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "customer not found", Err: err}
	}
	if err != nil {
		return &domain.TransportError{Status: http.StatusInternalServerError, Code: "SERVER_ERROR", Message: err.Error(), Err: err}
	}
	if !customer.Active {
		return &domain.TransportError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "customer is not active"}
	}
	if len(req.Items) == 0 {
		return &domain.TransportError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "order must contain at least one item"}
	}
	for _, item := range req.Items {
		if item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return &domain.TransportError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: fmt.Sprintf("invalid line for product %d", item.ProductID)}
		}
	}
	return nil
}

// nextOrderNumber issues ORD-YYYYMMDD-NNNN, restarting the sequence every day.
func (b *OrderBackend) nextOrderNumber(now time.Time) string {
	day := now.Format("20060102")
	b.daySeqs[day]++
	return fmt.Sprintf("ORD-%s-%04d", day, b.daySeqs[day])
}
