package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
)

// SeedDemo loads a small catalog for local runs without a database.
func SeedDemo(ctx context.Context, c *Catalog) error {
	products := []domain.ProductSnapshot{
		{ID: 1, Name: "Ergonomic Chair", SKU: "FUR-CHR-001", UnitPrice: decimal.RequireFromString("249.90"), AvailableStock: 12, Active: true},
		{ID: 2, Name: "Standing Desk", SKU: "FUR-DSK-002", UnitPrice: decimal.RequireFromString("599.00"), AvailableStock: 4, Active: true},
		{ID: 3, Name: "Monitor Arm", SKU: "ACC-ARM-003", UnitPrice: decimal.RequireFromString("89.50"), AvailableStock: 30, Active: true},
		{ID: 4, Name: "Desk Lamp", SKU: "ACC-LMP-004", UnitPrice: decimal.RequireFromString("34.99"), AvailableStock: 0, Active: true},
		{ID: 5, Name: "Filing Cabinet", SKU: "FUR-CAB-005", UnitPrice: decimal.RequireFromString("159.00"), AvailableStock: 7, Active: false},
	}
	for _, p := range products {
		if err := c.SaveProduct(ctx, p); err != nil {
			return err
		}
	}
	customers := []domain.CustomerSnapshot{
		{ID: 1, Name: "Acme Corporation", Email: "purchasing@acme.test", Phone: "+1 555 0100", Active: true},
		{ID: 2, Name: "Globex Ltd", Email: "orders@globex.test", Phone: "+1 555 0101", Active: true},
		{ID: 3, Name: "Initech", Email: "office@initech.test", Active: false},
	}
	for _, cu := range customers {
		if err := c.SaveCustomer(ctx, cu); err != nil {
			return err
		}
	}
	return nil
}
