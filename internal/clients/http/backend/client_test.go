package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ", nil)
	assert.Error(t, err)
}

func TestCreateOrder_SendsIdempotencyKeyAndDecodesEnvelope(t *testing.T) {
	var got CreateOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":12,"order_number":"ORD-20250314-0003","subtotal":20.0,"tax_amount":2.0,"total":22.0,"items_count":1},"message":"Order ORD-20250314-0003 created"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", srv.Client())
	require.NoError(t, err)
	resp, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		CustomerID:     7,
		Items:          []OrderItem{{ProductID: 1, Quantity: 2, UnitPrice: "10"}},
		TaxPercentage:  "10",
		ShippingCost:   "0",
		DiscountAmount: "0",
	}, WithIdempotencyKey(" key-1 "))
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.CustomerID)
	assert.Nil(t, got.Notes)
	assert.True(t, resp.Success)
	assert.Equal(t, "ORD-20250314-0003", resp.Data.OrderNumber)
	assert.Equal(t, json.Number("22.0"), resp.Data.Total)
	assert.Equal(t, "Order ORD-20250314-0003 created", resp.Message)
}

func TestCreateOrder_ReturnsAPIErrorWithShortages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"INSUFFICIENT_STOCK","message":"insufficient stock for 1 product(s)","details":[{"product_id":1,"product_name":"Widget","requested":5,"available":2}]}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	_, err = client.CreateOrder(context.Background(), CreateOrderRequest{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", apiErr.Code())
	assert.Equal(t, []StockShortage{{ProductID: 1, ProductName: "Widget", Requested: 5, Available: 2}}, apiErr.Shortages())
}

func TestAPIError_NonListDetailsYieldNoShortages(t *testing.T) {
	apiErr := &APIError{StatusCode: 400, Body: &Error{Code: "VALIDATION_ERROR", Message: "bad", Details: json.RawMessage(`{"items":["required"]}`)}}
	assert.Nil(t, apiErr.Shortages())
	assert.Equal(t, "backend API error (400): bad", apiErr.Error())
}

func TestListProducts_EncodesQueryParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "wid get", r.URL.Query().Get("search"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "true", r.URL.Query().Get("is_active"))
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":1,"name":"Widget","sku":"W-1","sale_price":9.5,"stock_quantity":4,"is_active":true}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	search, limit, active := "wid get", 10, true
	products, err := client.ListProducts(context.Background(), ListParams{Search: &search, Limit: &limit, IsActive: &active})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, json.Number("9.5"), products[0].SalePrice)
}

func TestGetCustomer_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customers/42", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"customer not found"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	_, err = client.GetCustomer(context.Background(), 42)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "customer not found", apiErr.Message())
}
