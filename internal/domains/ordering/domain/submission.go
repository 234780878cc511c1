package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InsufficientStockCode is the backend error code for authoritative stock conflicts.
const InsufficientStockCode = "INSUFFICIENT_STOCK"

var (
	ErrStockConflict    = errors.New("order rejected: insufficient stock")
	ErrTransportFailure = errors.New("order creation failed")
)

// OrderLine is one item of an order creation request.
type OrderLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderRequest is the payload sent to the order backend.
type OrderRequest struct {
	CustomerID            int64
	Items                 []OrderLine
	TaxPercentage         decimal.Decimal
	ShippingCost          decimal.Decimal
	DiscountAmount        decimal.Decimal
	DiscountJustification *string
	Notes                 *string
}

// BuildOrderRequest maps draft state to the wire request. Blank justification and
// notes are sent as absent.
func BuildOrderRequest(customerID int64, items []LineItem, in PricingInputs) OrderRequest {
	req := OrderRequest{
		CustomerID:     customerID,
		Items:          make([]OrderLine, 0, len(items)),
		TaxPercentage:  in.TaxPercentage,
		ShippingCost:   in.ShippingCost,
		DiscountAmount: in.DiscountAmount,
	}
	for _, item := range items {
		req.Items = append(req.Items, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	if v := strings.TrimSpace(in.DiscountJustification); v != "" {
		req.DiscountJustification = &v
	}
	if v := strings.TrimSpace(in.Notes); v != "" {
		req.Notes = &v
	}
	return req
}

// OrderConfirmation summarizes an order created by the backend.
type OrderConfirmation struct {
	ID          int64
	OrderNumber string
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	Total       decimal.Decimal
	ItemsCount  int
	Message     string
}

// DefaultMessage fills Message when the backend did not send one.
func (c *OrderConfirmation) DefaultMessage() string {
	if c == nil {
		return ""
	}
	if strings.TrimSpace(c.Message) != "" {
		return c.Message
	}
	return fmt.Sprintf("Order %s created successfully", c.OrderNumber)
}

// StockShortage is one per-item shortfall reported by the backend.
type StockShortage struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

// StockConflictError is returned when the backend rejects an order because its
// authoritative stock cannot cover one or more lines.
type StockConflictError struct {
	Message   string
	Shortages []StockShortage
}

func (e *StockConflictError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return ErrStockConflict.Error()
}

func (e *StockConflictError) Unwrap() error { return ErrStockConflict }

// Summary consolidates all shortages into one line.
func (e *StockConflictError) Summary() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: available %d, requested %d", s.ProductName, s.Available, s.Requested))
	}
	return strings.Join(parts, ". ")
}

// TransportError carries any non-stock backend or network failure. Message is
// surfaced to the user verbatim.
type TransportError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrTransportFailure.Error()
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransportFailure, e.Err}
	}
	return []error{ErrTransportFailure}
}

// OutcomeKind enumerates the terminal results of one submission attempt.
type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeInvalid          OutcomeKind = "invalid"
	OutcomeStockConflict    OutcomeKind = "stock_conflict"
	OutcomeTransportFailure OutcomeKind = "transport_failure"
)

// SubmissionOutcome is what a submission attempt reports back to its caller.
type SubmissionOutcome struct {
	Kind         OutcomeKind
	Confirmation *OrderConfirmation
	Errors       ValidationErrorSet
	Shortages    []StockShortage
	Message      string
}

// SubmissionState tracks where a draft is in the submission lifecycle.
type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateValidating SubmissionState = "validating"
	StateSubmitting SubmissionState = "submitting"
	StateSubmitted  SubmissionState = "submitted"
)
