package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PricingInputs are the order-level adjustments entered next to the cart.
type PricingInputs struct {
	TaxPercentage         decimal.Decimal
	ShippingCost          decimal.Decimal
	DiscountAmount        decimal.Decimal
	DiscountJustification string
	Notes                 string
}

// PricingResult holds candidate totals. The order backend stays authoritative.
type PricingResult struct {
	Subtotal           decimal.Decimal
	TaxAmount          decimal.Decimal
	DiscountPercentage decimal.Decimal
	Total              decimal.Decimal
}

// Price computes totals for items and inputs. It keeps full precision and does not
// clamp negative inputs.
func Price(items []LineItem, in PricingInputs) PricingResult {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
	}
	taxAmount := subtotal.Mul(in.TaxPercentage).Shift(-2)
	discountPercentage := decimal.Zero
	if subtotal.IsPositive() {
		discountPercentage = in.DiscountAmount.Mul(hundred).Div(subtotal)
	}
	total := subtotal.Add(taxAmount).Add(in.ShippingCost).Sub(in.DiscountAmount)
	return PricingResult{
		Subtotal:           subtotal,
		TaxAmount:          taxAmount,
		DiscountPercentage: discountPercentage,
		Total:              total,
	}
}
