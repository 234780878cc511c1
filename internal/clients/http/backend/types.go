package backend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the response wrapper used by every backend endpoint.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is the error body of a failed call. Details depend on Code.
type Error struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// StockShortage is one entry of an INSUFFICIENT_STOCK error's details.
type StockShortage struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

type OrderItem struct {
	ProductID int64       `json:"product_id"`
	Quantity  int         `json:"quantity"`
	UnitPrice json.Number `json:"unit_price"`
}

type CreateOrderRequest struct {
	CustomerID            int64       `json:"customer_id"`
	Items                 []OrderItem `json:"items"`
	TaxPercentage         json.Number `json:"tax_percentage"`
	ShippingCost          json.Number `json:"shipping_cost"`
	DiscountAmount        json.Number `json:"discount_amount"`
	DiscountJustification *string     `json:"discount_justification,omitempty"`
	Notes                 *string     `json:"notes,omitempty"`
}

type Order struct {
	ID          int64       `json:"id"`
	OrderNumber string      `json:"order_number"`
	Subtotal    json.Number `json:"subtotal"`
	TaxAmount   json.Number `json:"tax_amount"`
	Total       json.Number `json:"total"`
	ItemsCount  int         `json:"items_count"`
}

type Product struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	SKU           string      `json:"sku"`
	SalePrice     json.Number `json:"sale_price"`
	StockQuantity int         `json:"stock_quantity"`
	IsActive      bool        `json:"is_active"`
}

type Customer struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`
}

// APIError is returned for any response with a 4xx or 5xx status.
type APIError struct {
	StatusCode int
	Status     string
	Body       *Error
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("backend API error (%d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("backend API error: %s", e.Status)
}

// Message is the error message the backend sent, or empty.
func (e *APIError) Message() string {
	if e == nil || e.Body == nil {
		return ""
	}
	return strings.TrimSpace(e.Body.Message)
}

// Code is the backend error code, or empty.
func (e *APIError) Code() string {
	if e == nil || e.Body == nil {
		return ""
	}
	return e.Body.Code
}

// Shortages decodes the details of an INSUFFICIENT_STOCK error. Details of any
// other shape yield nil.
func (e *APIError) Shortages() []StockShortage {
	if e == nil || e.Body == nil || len(e.Body.Details) == 0 {
		return nil
	}
	var list []StockShortage
	if err := json.Unmarshal(e.Body.Details, &list); err != nil {
		return nil
	}
	return list
}
