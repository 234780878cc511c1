package domain

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	MaxNotesLength = 500
	// DiscountJustificationThreshold is the discount percentage above which a
	// justification is mandatory. Exactly the threshold does not require one.
	DiscountJustificationThreshold = 20
)

// Field keys used in a ValidationErrorSet.
const (
	FieldCustomer              = "customer"
	FieldItems                 = "items"
	FieldTax                   = "tax"
	FieldShipping              = "shipping"
	FieldDiscount              = "discount"
	FieldDiscountJustification = "discount_justification"
	FieldNotes                 = "notes"
	FieldTotal                 = "total"
	FieldStock                 = "stock"
)

const (
	MsgCustomerRequired      = "a customer must be selected"
	MsgItemsRequired         = "must add at least one product to the order"
	MsgItemsQuantity         = "all quantities must be at least 1"
	MsgItemsPrice            = "all prices must be greater than 0"
	MsgTaxNegative           = "tax cannot be negative"
	MsgShippingNegative      = "shipping cost cannot be negative"
	MsgDiscountNegative      = "discount cannot be negative"
	MsgJustificationRequired = "a justification is required for discounts above 20%"
	MsgNotesTooLong          = "notes cannot exceed 500 characters"
	MsgTotalNegative         = "total cannot be negative"
)

var ErrValidationFailed = errors.New("order validation failed")

// ValidationErrorSet maps a field or scope to its message. It is rebuilt on every
// validation pass and never patched.
type ValidationErrorSet map[string]string

func (s ValidationErrorSet) Empty() bool { return len(s) == 0 }

func (s ValidationErrorSet) Error() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+s[k])
	}
	return strings.Join(parts, "; ")
}

func (s ValidationErrorSet) Unwrap() error { return ErrValidationFailed }

// Clone copies the set.
func (s ValidationErrorSet) Clone() ValidationErrorSet {
	if s == nil {
		return nil
	}
	out := make(ValidationErrorSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

type guardedOrder struct {
	Customer       *CustomerSnapshot `validate:"required"`
	Items          []guardedLine     `validate:"min=1,dive"`
	TaxPercentage  decimal.Decimal   `validate:"gte=0"`
	ShippingCost   decimal.Decimal   `validate:"gte=0"`
	DiscountAmount decimal.Decimal   `validate:"gte=0"`
	Notes          string            `validate:"max=500"`
}

type guardedLine struct {
	Quantity  int             `validate:"gte=1"`
	UnitPrice decimal.Decimal `validate:"gt=0"`
}

var fieldMessages = map[string]struct{ key, msg string }{
	"Customer":       {FieldCustomer, MsgCustomerRequired},
	"Items":          {FieldItems, MsgItemsRequired},
	"Quantity":       {FieldItems, MsgItemsQuantity},
	"UnitPrice":      {FieldItems, MsgItemsPrice},
	"TaxPercentage":  {FieldTax, MsgTaxNegative},
	"ShippingCost":   {FieldShipping, MsgShippingNegative},
	"DiscountAmount": {FieldDiscount, MsgDiscountNegative},
	"Notes":          {FieldNotes, MsgNotesTooLong},
}

// Guard collects every business-rule violation of an order about to be submitted.
type Guard struct {
	validate *validator.Validate
}

func NewGuard() *Guard {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalSign, decimal.Decimal{})
	return &Guard{validate: v}
}

// Validate runs all rules without short-circuiting. Item rules report the first
// offending line only, quantity before price.
func (g *Guard) Validate(customer *CustomerSnapshot, items []LineItem, in PricingInputs) ValidationErrorSet {
	set := ValidationErrorSet{}
	subject := guardedOrder{
		Customer:       customer,
		Items:          make([]guardedLine, 0, len(items)),
		TaxPercentage:  in.TaxPercentage,
		ShippingCost:   in.ShippingCost,
		DiscountAmount: in.DiscountAmount,
		Notes:          in.Notes,
	}
	for _, item := range items {
		subject.Items = append(subject.Items, guardedLine{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	if err := g.validate.Struct(subject); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				m, ok := fieldMessages[fe.StructField()]
				if !ok {
					continue
				}
				if _, taken := set[m.key]; !taken {
					set[m.key] = m.msg
				}
			}
		}
	}

	result := Price(items, in)
	if requiresJustification(result.Subtotal, in.DiscountAmount) && strings.TrimSpace(in.DiscountJustification) == "" {
		set[FieldDiscountJustification] = MsgJustificationRequired
	}
	if result.Total.IsNegative() {
		set[FieldTotal] = MsgTotalNegative
	}
	return set
}

// requiresJustification compares discount*100 against threshold*subtotal so the
// boundary is decided without division.
func requiresJustification(subtotal, discount decimal.Decimal) bool {
	if !subtotal.IsPositive() {
		return false
	}
	return discount.Mul(hundred).GreaterThan(subtotal.Mul(decimal.NewFromInt(DiscountJustificationThreshold)))
}

// decimalSign exposes a decimal to the validator as its sign (-1, 0 or 1), so
// gte=0 and gt=0 hold exactly for any magnitude.
func decimalSign(v reflect.Value) interface{} {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return d.Sign()
}
