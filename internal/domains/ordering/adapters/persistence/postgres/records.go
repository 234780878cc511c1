package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
)

// productRecord maps catalog products. Stock changes are the only writes this
// module performs on it.
type productRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	Name          string          `gorm:"column:name;index"`
	SKU           string          `gorm:"column:sku;uniqueIndex"`
	SalePrice     decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2)"`
	StockQuantity int             `gorm:"column:stock_quantity"`
	IsActive      bool            `gorm:"column:is_active;index"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type customerRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	FullName  string    `gorm:"column:full_name;index"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	Phone     string    `gorm:"column:phone"`
	IsActive  bool      `gorm:"column:is_active;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

type orderRecord struct {
	ID                    int64             `gorm:"primaryKey;column:id"`
	OrderNumber           string            `gorm:"column:order_number;uniqueIndex"`
	IdempotencyKey        *string           `gorm:"column:idempotency_key;uniqueIndex"`
	CustomerID            int64             `gorm:"column:customer_id;index"`
	Subtotal              decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2)"`
	TaxPercentage         decimal.Decimal   `gorm:"column:tax_percentage;type:numeric(5,2)"`
	TaxAmount             decimal.Decimal   `gorm:"column:tax_amount;type:numeric(12,2)"`
	ShippingCost          decimal.Decimal   `gorm:"column:shipping_cost;type:numeric(12,2)"`
	DiscountAmount        decimal.Decimal   `gorm:"column:discount_amount;type:numeric(12,2)"`
	DiscountJustification *string           `gorm:"column:discount_justification"`
	Total                 decimal.Decimal   `gorm:"column:total;type:numeric(12,2)"`
	Notes                 *string           `gorm:"column:notes;size:500"`
	Items                 []orderItemRecord `gorm:"foreignKey:OrderID"`
	CreatedAt             time.Time         `gorm:"column:created_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	OrderID     int64           `gorm:"column:order_id;index"`
	ProductID   int64           `gorm:"column:product_id;index"`
	ProductName string          `gorm:"column:product_name"`
	ProductSKU  string          `gorm:"column:product_sku"`
	Quantity    int             `gorm:"column:quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2)"`
}

func (orderItemRecord) TableName() string { return "order_items" }

func (r productRecord) toDomain() domain.ProductSnapshot {
	return domain.ProductSnapshot{
		ID:             r.ID,
		Name:           r.Name,
		SKU:            r.SKU,
		UnitPrice:      r.SalePrice,
		AvailableStock: r.StockQuantity,
		Active:         r.IsActive,
	}
}

func toProductRecord(p domain.ProductSnapshot) productRecord {
	return productRecord{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		SalePrice:     p.UnitPrice,
		StockQuantity: p.AvailableStock,
		IsActive:      p.Active,
	}
}

func (r customerRecord) toDomain() domain.CustomerSnapshot {
	return domain.CustomerSnapshot{
		ID:     r.ID,
		Name:   r.FullName,
		Email:  r.Email,
		Phone:  r.Phone,
		Active: r.IsActive,
	}
}

func toCustomerRecord(c domain.CustomerSnapshot) customerRecord {
	return customerRecord{
		ID:       c.ID,
		FullName: c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		IsActive: c.Active,
	}
}

func (r orderRecord) toConfirmation() *domain.OrderConfirmation {
	conf := &domain.OrderConfirmation{
		ID:          r.ID,
		OrderNumber: r.OrderNumber,
		Subtotal:    r.Subtotal,
		TaxAmount:   r.TaxAmount,
		Total:       r.Total,
		ItemsCount:  len(r.Items),
	}
	conf.Message = conf.DefaultMessage()
	return conf
}
