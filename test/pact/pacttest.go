//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// The console UI consumes the order console API.
const (
	ProviderName = "order-console-api"
	ConsumerName = "console-ui"

	StateDraftsBaseline = "drafts baseline"
	StateDraftExists    = "draft d-101 exists"
	StateDraftMissing   = "no draft d-404"
)

// The order console consumes the order backend API.
const (
	OrderAPIProviderName = "order-api"
	OrderAPIConsumerName = "order-console"

	StateProductsInStock   = "products 1 and 2 are in stock"
	StateProductOutOfStock = "product 2 is out of stock"
	StateProductMissing    = "no product with id 404"
)

const (
	ExistingDraftID = "d-101"
	MissingDraftID  = "d-404"

	ExistingProductID int64 = 1
	ScarceProductID   int64 = 2
	MissingProductID  int64 = 404
	ExistingCustomer  int64 = 1

	IdempotencyKey = "01JBZ6Q2W9T3N8K5Y7R4M1P0XA"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the console UI consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest is the order payload the console sends for products in stock.
func ExampleOrderRequest() map[string]any {
	return map[string]any{
		"customer_id": ExistingCustomer,
		"items": []map[string]any{
			{"product_id": ExistingProductID, "quantity": 2, "unit_price": 25},
		},
		"tax_percentage":  10,
		"shipping_cost":   5,
		"discount_amount": 0,
	}
}

// ExampleScarceOrderRequest asks for more of product 2 than is in stock.
func ExampleScarceOrderRequest() map[string]any {
	return map[string]any{
		"customer_id": ExistingCustomer,
		"items": []map[string]any{
			{"product_id": ScarceProductID, "quantity": 3, "unit_price": 40},
		},
		"tax_percentage":  0,
		"shipping_cost":   0,
		"discount_amount": 0,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
