package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the ordering context. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&customerRecord{},
		&orderRecord{},
		&orderItemRecord{},
	)
}

// Product schema mirrors the ordering Postgres catalog.
type productRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	Name          string          `gorm:"column:name;index"`
	SKU           string          `gorm:"column:sku;uniqueIndex"`
	SalePrice     decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2)"`
	StockQuantity int             `gorm:"column:stock_quantity;check:stock_quantity >= 0"`
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

// Order schema mirrors the ordering Postgres order store.
type orderRecord struct {
	ID                    int64           `gorm:"primaryKey;column:id"`
	OrderNumber           string          `gorm:"column:order_number;uniqueIndex"`
	IdempotencyKey        *string         `gorm:"column:idempotency_key;uniqueIndex"`
	CustomerID            int64           `gorm:"column:customer_id;index"`
	Subtotal              decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2)"`
	TaxPercentage         decimal.Decimal `gorm:"column:tax_percentage;type:numeric(5,2)"`
	TaxAmount             decimal.Decimal `gorm:"column:tax_amount;type:numeric(12,2)"`
	ShippingCost          decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2)"`
	DiscountAmount        decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2)"`
	DiscountJustification *string         `gorm:"column:discount_justification"`
	Total                 decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	Notes                 *string         `gorm:"column:notes;size:500"`
	CreatedAt             time.Time       `gorm:"column:created_at;index"`
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
