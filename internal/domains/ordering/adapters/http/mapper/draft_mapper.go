package mapper

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/order-console/internal/domains/ordering/application/types"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
)

// SelectCustomerRequest is the body of PUT /customer.
type SelectCustomerRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required,gt=0"`
}

// AddItemRequest is the body of POST /items. A missing quantity means one unit.
type AddItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  *int  `json:"quantity"`
}

// UpdateItemRequest is the body of PATCH /items/:productId.
type UpdateItemRequest struct {
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// LookupRequest is the body of POST /lookups/:kind.
type LookupRequest struct {
	Query string `json:"query"`
}

type PricingInputs struct {
	TaxPercentage         decimal.Decimal `json:"tax_percentage"`
	ShippingCost          decimal.Decimal `json:"shipping_cost"`
	DiscountAmount        decimal.Decimal `json:"discount_amount"`
	DiscountJustification string          `json:"discount_justification"`
	Notes                 string          `json:"notes"`
}

type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Product struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	AvailableStock int             `json:"available_stock"`
}

type LineItem struct {
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductSKU     string          `json:"product_sku"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	StockAvailable int             `json:"stock_available"`
}

type Pricing struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Total              decimal.Decimal `json:"total"`
}

type Confirmation struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	ItemsCount  int             `json:"items_count"`
	Message     string          `json:"message"`
}

type Shortage struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

// Draft is the transport view of a draft order.
type Draft struct {
	ID           string            `json:"id"`
	State        string            `json:"state"`
	Customer     *Customer         `json:"customer,omitempty"`
	Items        []LineItem        `json:"items"`
	Inputs       PricingInputs     `json:"inputs"`
	Pricing      Pricing           `json:"pricing"`
	StockNotices map[string]string `json:"stock_notices,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	SubmitError  string            `json:"submit_error,omitempty"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Submission is the response of POST /submit.
type Submission struct {
	Outcome      string            `json:"outcome"`
	Message      string            `json:"message,omitempty"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	Shortages    []Shortage        `json:"shortages,omitempty"`
	Draft        *Draft            `json:"draft"`
}

type StockCheckItem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
	Sufficient  bool   `json:"sufficient"`
}

type StockCheck struct {
	Available bool             `json:"available"`
	Items     []StockCheckItem `json:"items"`
}

// Lookup is the latest resolved search of one lookup field.
type Lookup[T any] struct {
	Sequence uint64 `json:"sequence"`
	Query    string `json:"query"`
	Pending  bool   `json:"pending"`
	Items    []T    `json:"items"`
	Error    string `json:"error,omitempty"`
}

func ToPricingInputs(in PricingInputs) domain.PricingInputs {
	return domain.PricingInputs(in)
}

// FromDraftView converts a draft view to its transport representation.
func FromDraftView(v *types.DraftView) *Draft {
	if v == nil {
		return nil
	}
	out := &Draft{
		ID:           v.ID,
		State:        string(v.State),
		Items:        make([]LineItem, 0, len(v.Items)),
		Inputs:       PricingInputs(v.Inputs),
		Pricing:      Pricing(v.Pricing),
		SubmitError:  v.SubmitError,
		Confirmation: FromConfirmation(v.Confirmation),
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	if v.Customer != nil {
		c := FromCustomer(*v.Customer)
		out.Customer = &c
	}
	for _, item := range v.Items {
		out.Items = append(out.Items, LineItem{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ProductSKU:     item.ProductSKU,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Subtotal:       item.Subtotal(),
			StockAvailable: item.StockAvailable,
		})
	}
	if len(v.StockNotices) > 0 {
		out.StockNotices = make(map[string]string, len(v.StockNotices))
		for id, msg := range v.StockNotices {
			out.StockNotices[strconv.FormatInt(id, 10)] = msg
		}
	}
	if !v.Errors.Empty() {
		out.Errors = map[string]string(v.Errors.Clone())
	}
	return out
}

func FromConfirmation(c *domain.OrderConfirmation) *Confirmation {
	if c == nil {
		return nil
	}
	return &Confirmation{
		ID:          c.ID,
		OrderNumber: c.OrderNumber,
		Subtotal:    c.Subtotal,
		TaxAmount:   c.TaxAmount,
		Total:       c.Total,
		ItemsCount:  c.ItemsCount,
		Message:     c.DefaultMessage(),
	}
}

// FromSubmission converts a submission result.
func FromSubmission(r *types.SubmissionResult) Submission {
	out := Submission{
		Outcome:      string(r.Outcome.Kind),
		Message:      r.Outcome.Message,
		Confirmation: FromConfirmation(r.Outcome.Confirmation),
		Draft:        FromDraftView(r.Draft),
	}
	if !r.Outcome.Errors.Empty() {
		out.Errors = map[string]string(r.Outcome.Errors.Clone())
	}
	for _, s := range r.Outcome.Shortages {
		out.Shortages = append(out.Shortages, Shortage(s))
	}
	return out
}

func FromStockCheck(r *types.StockCheck) StockCheck {
	out := StockCheck{Available: r.Available, Items: make([]StockCheckItem, 0, len(r.Items))}
	for _, item := range r.Items {
		out.Items = append(out.Items, StockCheckItem(item))
	}
	return out
}

func FromCustomer(c domain.CustomerSnapshot) Customer {
	return Customer{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func FromProduct(p domain.ProductSnapshot) Product {
	return Product{ID: p.ID, Name: p.Name, SKU: p.SKU, UnitPrice: p.UnitPrice, AvailableStock: p.AvailableStock}
}

// FromLookup converts a lookup view with convert applied to every item.
func FromLookup[S, T any](v *types.LookupView[S], convert func(S) T) Lookup[T] {
	out := Lookup[T]{Sequence: v.Sequence, Query: v.Query, Pending: v.Pending, Error: v.Error, Items: make([]T, 0, len(v.Items))}
	for _, item := range v.Items {
		out.Items = append(out.Items, convert(item))
	}
	return out
}
