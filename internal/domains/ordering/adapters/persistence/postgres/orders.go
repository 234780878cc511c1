package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

var _ ports.OrderGateway = (*Orders)(nil)

// DefaultStockChannel is the NOTIFY channel announcing stock changes. The payload
// is the product id.
const DefaultStockChannel = "stock_changed"

// orderNumberLock serializes order numbering across writers.
const orderNumberLock int64 = 0x4f52445f4e554d

// Orders is the authoritative order store. Each order is created in one
// transaction that locks the products it touches, checks every line, decrements
// stock and announces each change on the stock channel.
type Orders struct {
	db      *gorm.DB
	channel string
	now     func() time.Time
}

type OrdersOption func(*Orders)

func WithStockChannel(channel string) OrdersOption {
	return func(o *Orders) {
		if strings.TrimSpace(channel) != "" {
			o.channel = channel
		}
	}
}

func WithOrdersClock(now func() time.Time) OrdersOption {
	return func(o *Orders) {
		if now != nil {
			o.now = now
		}
	}
}

func NewOrders(db *gorm.DB, opts ...OrdersOption) *Orders {
	o := &Orders{db: db, channel: DefaultStockChannel, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *Orders) CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.OrderConfirmation, error) {
	if o == nil || o.db == nil {
		err := errors.New("postgres order store not configured")
		return nil, &domain.TransportError{Message: err.Error(), Err: err}
	}
	var conf *domain.OrderConfirmation
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if idempotencyKey != "" {
			existing, err := findByKey(tx, idempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				conf = existing.toConfirmation()
				return nil
			}
		}
		created, err := o.create(tx, req, idempotencyKey)
		if err != nil {
			return err
		}
		conf = created.toConfirmation()
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) && idempotencyKey != "" {
		// A concurrent request with the same key won the insert.
		if existing, findErr := findByKey(o.db.WithContext(ctx), idempotencyKey); findErr == nil && existing != nil {
			return existing.toConfirmation(), nil
		}
	}
	if err != nil {
		var conflict *domain.StockConflictError
		var transport *domain.TransportError
		if errors.As(err, &conflict) || errors.As(err, &transport) {
			return nil, err
		}
		return nil, &domain.TransportError{Status: http.StatusInternalServerError, Code: "SERVER_ERROR", Message: "error creating order", Err: err}
	}
	return conf, nil
}

func (o *Orders) create(tx *gorm.DB, req domain.OrderRequest, idempotencyKey string) (*orderRecord, error) {
	if len(req.Items) == 0 {
		return nil, validationError("order must contain at least one item")
	}
	var customer customerRecord
	if err := tx.First(&customer, "id = ?", req.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("customer not found")
		}
		return nil, err
	}
	if !customer.IsActive {
		return nil, validationError("customer is not active")
	}

	requested := map[int64]int{}
	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return nil, validationError(fmt.Sprintf("invalid line for product %d", item.ProductID))
		}
		if _, ok := requested[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	var products []productRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]*productRecord, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var shortages []domain.StockShortage
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, validationError(fmt.Sprintf("product %d not found", id))
		}
		if p.StockQuantity < requested[id] {
			shortages = append(shortages, domain.StockShortage{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.StockQuantity,
				Requested:   requested[id],
			})
		}
	}
	if len(shortages) > 0 {
		return nil, &domain.StockConflictError{
			Message:   fmt.Sprintf("insufficient stock for %d product(s)", len(shortages)),
			Shortages: shortages,
		}
	}

	now := o.now().UTC()
	number, err := nextOrderNumber(tx, now)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.LineItem, 0, len(req.Items))
	items := make([]orderItemRecord, 0, len(req.Items))
	for _, item := range req.Items {
		p := byID[item.ProductID]
		line := domain.LineItem{ProductID: p.ID, ProductName: p.Name, ProductSKU: p.SKU, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
		lines = append(lines, line)
		items = append(items, orderItemRecord{
			ProductID:   p.ID,
			ProductName: p.Name,
			ProductSKU:  p.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    line.Subtotal(),
		})
	}
	totals := domain.Price(lines, domain.PricingInputs{
		TaxPercentage:  req.TaxPercentage,
		ShippingCost:   req.ShippingCost,
		DiscountAmount: req.DiscountAmount,
	})

	record := orderRecord{
		OrderNumber:           number,
		CustomerID:            req.CustomerID,
		Subtotal:              totals.Subtotal,
		TaxPercentage:         req.TaxPercentage,
		TaxAmount:             totals.TaxAmount,
		ShippingCost:          req.ShippingCost,
		DiscountAmount:        req.DiscountAmount,
		DiscountJustification: req.DiscountJustification,
		Total:                 totals.Total,
		Notes:                 req.Notes,
		Items:                 items,
		CreatedAt:             now,
	}
	if idempotencyKey != "" {
		record.IdempotencyKey = &idempotencyKey
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		if err := tx.Model(&productRecord{}).Where("id = ?", id).Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", requested[id]),
			"updated_at":     now,
		}).Error; err != nil {
			return nil, err
		}
		if err := tx.Exec("SELECT pg_notify(?, ?)", o.channel, strconv.FormatInt(id, 10)).Error; err != nil {
			return nil, err
		}
	}
	return &record, nil
}

// Order loads a stored order with its items.
func (o *Orders) Order(ctx context.Context, id int64) (*domain.OrderConfirmation, error) {
	if o == nil || o.db == nil {
		return nil, errors.New("postgres order store not configured")
	}
	var record orderRecord
	if err := o.db.WithContext(ctx).Preload("Items").First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return record.toConfirmation(), nil
}

func findByKey(tx *gorm.DB, key string) (*orderRecord, error) {
	var record orderRecord
	err := tx.Preload("Items").Where("idempotency_key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// nextOrderNumber issues ORD-YYYYMMDD-NNNN, restarting the sequence every day.
func nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", orderNumberLock).Error; err != nil {
		return "", err
	}
	prefix := "ORD-" + now.Format("20060102") + "-"
	var numbers []string
	err := tx.Model(&orderRecord{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &numbers).Error
	if err != nil {
		return "", err
	}
	seq := 1
	if len(numbers) > 0 {
		last := numbers[0]
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("parse order number %q: %w", last, err)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func validationError(msg string) error {
	return &domain.TransportError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: msg}
}
