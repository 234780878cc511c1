package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCustomer = &CustomerSnapshot{ID: 9, Name: "ACME", Active: true}

func TestGuard_ValidOrder(t *testing.T) {
	errs := NewGuard().Validate(testCustomer, lines("100"), PricingInputs{TaxPercentage: dec("19")})

	assert.True(t, errs.Empty(), errs.Error())
}

func TestGuard_EmptyCartAndNoCustomer(t *testing.T) {
	errs := NewGuard().Validate(nil, nil, PricingInputs{})

	assert.Equal(t, MsgCustomerRequired, errs[FieldCustomer])
	assert.Contains(t, errs[FieldItems], "must add at least one product")
	assert.ErrorIs(t, errs, ErrValidationFailed)
}

func TestGuard_CollectsEveryViolation(t *testing.T) {
	in := PricingInputs{
		TaxPercentage:  dec("-1"),
		ShippingCost:   dec("-2"),
		DiscountAmount: dec("-3"),
		Notes:          strings.Repeat("n", MaxNotesLength+1),
	}
	items := []LineItem{{ProductID: 1, Quantity: 1, UnitPrice: dec("0")}}

	errs := NewGuard().Validate(nil, items, in)

	assert.Equal(t, MsgCustomerRequired, errs[FieldCustomer])
	assert.Equal(t, MsgItemsPrice, errs[FieldItems])
	assert.Equal(t, MsgTaxNegative, errs[FieldTax])
	assert.Equal(t, MsgShippingNegative, errs[FieldShipping])
	assert.Equal(t, MsgDiscountNegative, errs[FieldDiscount])
	assert.Equal(t, MsgNotesTooLong, errs[FieldNotes])
}

func TestGuard_FirstOffendingItemWins(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, Quantity: 1, UnitPrice: dec("0")},
		{ProductID: 2, Quantity: 0, UnitPrice: dec("5")},
	}

	errs := NewGuard().Validate(testCustomer, items, PricingInputs{})
	assert.Equal(t, MsgItemsPrice, errs[FieldItems])

	items[0], items[1] = items[1], items[0]
	errs = NewGuard().Validate(testCustomer, items, PricingInputs{})
	assert.Equal(t, MsgItemsQuantity, errs[FieldItems])
}

func TestGuard_NotesCountCharactersNotBytes(t *testing.T) {
	notes := strings.Repeat("ñ", MaxNotesLength)

	errs := NewGuard().Validate(testCustomer, lines("10"), PricingInputs{Notes: notes})
	assert.NotContains(t, errs, FieldNotes)
}

func TestGuard_DiscountThresholdBoundary(t *testing.T) {
	guard := NewGuard()

	atThreshold := guard.Validate(testCustomer, lines("100"), PricingInputs{DiscountAmount: dec("20")})
	assert.NotContains(t, atThreshold, FieldDiscountJustification)

	above := guard.Validate(testCustomer, lines("100"), PricingInputs{DiscountAmount: dec("20.01")})
	assert.Equal(t, MsgJustificationRequired, above[FieldDiscountJustification])

	blank := guard.Validate(testCustomer, lines("100"), PricingInputs{DiscountAmount: dec("20.01"), DiscountJustification: "   "})
	assert.Contains(t, blank, FieldDiscountJustification)

	justified := guard.Validate(testCustomer, lines("100"), PricingInputs{DiscountAmount: dec("20.01"), DiscountJustification: "loyal customer"})
	assert.True(t, justified.Empty(), justified.Error())
}

func TestGuard_ScenarioLargeDiscountNeedsJustification(t *testing.T) {
	guard := NewGuard()
	in := PricingInputs{DiscountAmount: dec("25000")}

	errs := guard.Validate(testCustomer, lines("100000"), in)
	require.Contains(t, errs, FieldDiscountJustification)

	in.DiscountJustification = "volume agreement"
	errs = guard.Validate(testCustomer, lines("100000"), in)
	assert.True(t, errs.Empty())
}

func TestGuard_NegativeTotal(t *testing.T) {
	errs := NewGuard().Validate(testCustomer, lines("10"), PricingInputs{DiscountAmount: dec("15"), DiscountJustification: "promo"})

	assert.Equal(t, MsgTotalNegative, errs[FieldTotal])
}

func TestGuard_RebuiltOnEveryPass(t *testing.T) {
	guard := NewGuard()

	first := guard.Validate(nil, lines("10"), PricingInputs{})
	require.Contains(t, first, FieldCustomer)

	second := guard.Validate(testCustomer, lines("10"), PricingInputs{})
	assert.NotContains(t, second, FieldCustomer)
	assert.Contains(t, first, FieldCustomer, "earlier sets are not patched")
}

func TestGuard_DecimalBoundsAreExact(t *testing.T) {
	guard := NewGuard()
	tiny := dec("1e-400")
	negTiny := dec("-1e-400")

	errs := guard.Validate(testCustomer, lines("1000"), PricingInputs{
		TaxPercentage:  negTiny,
		ShippingCost:   negTiny,
		DiscountAmount: negTiny,
	})
	assert.Equal(t, MsgTaxNegative, errs[FieldTax])
	assert.Equal(t, MsgShippingNegative, errs[FieldShipping])
	assert.Equal(t, MsgDiscountNegative, errs[FieldDiscount])

	items := []LineItem{{ProductID: 1, ProductName: "P1", Quantity: 1, UnitPrice: tiny, StockAvailable: 1}}
	errs = guard.Validate(testCustomer, items, PricingInputs{})
	assert.NotContains(t, errs, FieldItems)
	assert.True(t, errs.Empty(), errs.Error())
}
