package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	backendclient "github.com/Apurer/order-console/internal/clients/http/backend"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
)

// ToCreateOrderRequest maps a domain order request to the wire payload.
func ToCreateOrderRequest(req domain.OrderRequest) backendclient.CreateOrderRequest {
	items := make([]backendclient.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, backendclient.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: number(item.UnitPrice),
		})
	}
	return backendclient.CreateOrderRequest{
		CustomerID:            req.CustomerID,
		Items:                 items,
		TaxPercentage:         number(req.TaxPercentage),
		ShippingCost:          number(req.ShippingCost),
		DiscountAmount:        number(req.DiscountAmount),
		DiscountJustification: req.DiscountJustification,
		Notes:                 req.Notes,
	}
}

// ToConfirmation maps a created order envelope to a confirmation.
func ToConfirmation(resp *backendclient.Envelope[backendclient.Order]) *domain.OrderConfirmation {
	if resp == nil {
		return nil
	}
	conf := &domain.OrderConfirmation{
		ID:          resp.Data.ID,
		OrderNumber: resp.Data.OrderNumber,
		Subtotal:    toDecimal(resp.Data.Subtotal),
		TaxAmount:   toDecimal(resp.Data.TaxAmount),
		Total:       toDecimal(resp.Data.Total),
		ItemsCount:  resp.Data.ItemsCount,
		Message:     strings.TrimSpace(resp.Message),
	}
	conf.Message = conf.DefaultMessage()
	return conf
}

// ToSubmissionError classifies a failed create call. A 409 INSUFFICIENT_STOCK
// becomes a stock conflict; anything else is a transport failure carrying the
// backend's message verbatim when it sent one.
func ToSubmissionError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *backendclient.APIError
	if !errors.As(err, &apiErr) {
		return &domain.TransportError{Message: err.Error(), Err: err}
	}
	if apiErr.StatusCode == http.StatusConflict && apiErr.Code() == domain.InsufficientStockCode {
		wire := apiErr.Shortages()
		shortages := make([]domain.StockShortage, 0, len(wire))
		for _, s := range wire {
			shortages = append(shortages, domain.StockShortage{
				ProductID:   s.ProductID,
				ProductName: s.ProductName,
				Available:   s.Available,
				Requested:   s.Requested,
			})
		}
		return &domain.StockConflictError{Message: apiErr.Message(), Shortages: shortages}
	}
	return &domain.TransportError{
		Status:  apiErr.StatusCode,
		Code:    apiErr.Code(),
		Message: apiErr.Message(),
		Err:     err,
	}
}

func ToProductSnapshot(p backendclient.Product) domain.ProductSnapshot {
	return domain.ProductSnapshot{
		ID:             p.ID,
		Name:           p.Name,
		SKU:            p.SKU,
		UnitPrice:      toDecimal(p.SalePrice),
		AvailableStock: p.StockQuantity,
		Active:         p.IsActive,
	}
}

func ToCustomerSnapshot(c backendclient.Customer) domain.CustomerSnapshot {
	return domain.CustomerSnapshot{
		ID:     c.ID,
		Name:   c.FullName,
		Email:  c.Email,
		Phone:  c.Phone,
		Active: c.IsActive,
	}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func toDecimal(n json.Number) decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
