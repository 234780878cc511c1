//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	backendclient "github.com/Apurer/order-console/internal/clients/http/backend"
	pacttest "github.com/Apurer/order-console/test/pact"
)

func TestOrderAPIContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.OrderAPIConsumerName,
		Provider: pacttest.OrderAPIProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateProductsInStock).
		UponReceiving("a request to create an order").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Idempotency-Key", matchers.Like(pacttest.IdempotencyKey))
			b.JSONBody(pacttest.ExampleOrderRequest())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(true),
				"message": matchers.Like("Order ORD-20250314-0001 created successfully"),
				"data": matchers.Map{
					"id":           matchers.Like(301),
					"order_number": matchers.Term("ORD-20250314-0001", `^ORD-\d{8}-\d{4}$`),
					"subtotal":     matchers.Like(50),
					"tax_amount":   matchers.Like(5),
					"total":        matchers.Like(60),
					"items_count":  matchers.Like(1),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProductOutOfStock).
		UponReceiving("a request to create an order exceeding stock").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleScarceOrderRequest())
		}).
		WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(false),
				"error": matchers.Map{
					"code":    matchers.S("INSUFFICIENT_STOCK"),
					"message": matchers.Like("insufficient stock for 1 product(s)"),
					"details": matchers.EachLike(matchers.Map{
						"product_id":   matchers.Like(pacttest.ScarceProductID),
						"product_name": matchers.Like("Standing Desk"),
						"requested":    matchers.Like(3),
						"available":    matchers.Like(1),
					}, 1),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProductsInStock).
		UponReceiving("a request to fetch a product").
		WithRequest("GET", fmt.Sprintf("/api/products/%d", pacttest.ExistingProductID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(true),
				"data": matchers.Map{
					"id":             matchers.Like(pacttest.ExistingProductID),
					"name":           matchers.Like("Ergonomic Chair"),
					"sku":            matchers.Like("FUR-CHR-001"),
					"sale_price":     matchers.Like(25),
					"stock_quantity": matchers.Like(12),
					"is_active":      matchers.Like(true),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProductMissing).
		UponReceiving("a request for a missing product").
		WithRequest("GET", fmt.Sprintf("/api/products/%d", pacttest.MissingProductID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(false),
				"error": matchers.Map{
					"code":    matchers.S("NOT_FOUND"),
					"message": matchers.Like("product not found"),
				},
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client, err := newBackendClient(config)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreateOrder(ctx, backendclient.CreateOrderRequest{
			CustomerID:     pacttest.ExistingCustomer,
			Items:          []backendclient.OrderItem{{ProductID: pacttest.ExistingProductID, Quantity: 2, UnitPrice: json.Number("25")}},
			TaxPercentage:  json.Number("10"),
			ShippingCost:   json.Number("5"),
			DiscountAmount: json.Number("0"),
		}, backendclient.WithIdempotencyKey(pacttest.IdempotencyKey))
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if created.Data.ID == 0 || created.Data.OrderNumber == "" {
			return fmt.Errorf("expected created order, got %+v", created.Data)
		}

		_, err = client.CreateOrder(ctx, backendclient.CreateOrderRequest{
			CustomerID:     pacttest.ExistingCustomer,
			Items:          []backendclient.OrderItem{{ProductID: pacttest.ScarceProductID, Quantity: 3, UnitPrice: json.Number("40")}},
			TaxPercentage:  json.Number("0"),
			ShippingCost:   json.Number("0"),
			DiscountAmount: json.Number("0"),
		})
		var apiErr *backendclient.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
			return fmt.Errorf("expected 409 stock conflict, got %v", err)
		}
		if shortages := apiErr.Shortages(); len(shortages) != 1 || shortages[0].ProductID != pacttest.ScarceProductID {
			return fmt.Errorf("expected one shortage for product %d, got %+v", pacttest.ScarceProductID, shortages)
		}

		product, err := client.GetProduct(ctx, pacttest.ExistingProductID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product.ID != pacttest.ExistingProductID {
			return fmt.Errorf("expected product %d, got %+v", pacttest.ExistingProductID, product)
		}

		_, err = client.GetProduct(ctx, pacttest.MissingProductID)
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			return fmt.Errorf("expected 404 for product %d, got %v", pacttest.MissingProductID, err)
		}
		return nil
	})
	require.NoError(t, err)
}

func newBackendClient(config pactconsumer.MockServerConfig) (*backendclient.Client, error) {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return backendclient.NewClient(
		fmt.Sprintf("http://%s:%d", host, config.Port),
		&http.Client{Transport: transport, Timeout: 10 * time.Second},
	)
}
