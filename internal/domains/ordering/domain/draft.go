package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrDraftBusy       = errors.New("draft has a submission in flight")
	ErrDraftClosed     = errors.New("draft was already submitted")
	ErrInvalidCustomer = errors.New("customer id must be greater than zero")
)

const fallbackSubmitMessage = "error creating order"

// Draft is one order-creation workflow instance: the cart, the attached customer,
// the pricing inputs and the submission lifecycle. It is not safe for concurrent
// use; callers serialize access.
type Draft struct {
	ID             string
	Customer       *CustomerSnapshot
	Cart           *Cart
	Inputs         PricingInputs
	State          SubmissionState
	StockNotices   map[int64]string
	Errors         ValidationErrorSet
	SubmitError    string
	Confirmation   *OrderConfirmation
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewDraft(id string, now time.Time) *Draft {
	return &Draft{
		ID:           id,
		Cart:         NewCart(),
		State:        StateIdle,
		StockNotices: map[int64]string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Editable reports whether the draft accepts mutations.
func (d *Draft) Editable() error {
	switch d.State {
	case StateValidating, StateSubmitting:
		return ErrDraftBusy
	case StateSubmitted:
		return ErrDraftClosed
	}
	return nil
}

// touch records a content change. A new idempotency key is issued on the next
// submission because the payload differs.
func (d *Draft) touch(now time.Time) {
	d.UpdatedAt = now
	d.IdempotencyKey = ""
}

// AddProduct adds or merges a product. Stock rejections are also kept as a notice
// scoped to the product.
func (d *Draft) AddProduct(snapshot ProductSnapshot, quantity int, now time.Time) (LineItem, error) {
	if err := d.Editable(); err != nil {
		return LineItem{}, err
	}
	item, err := d.Cart.AddOrIncrement(snapshot, quantity)
	if err != nil {
		d.recordStockNotice(snapshot.ID, err)
		return item, err
	}
	delete(d.StockNotices, snapshot.ID)
	d.touch(now)
	return item, nil
}

func (d *Draft) SetQuantity(productID int64, quantity int, now time.Time) (LineItem, error) {
	if err := d.Editable(); err != nil {
		return LineItem{}, err
	}
	before, _ := d.Cart.Get(productID)
	item, err := d.Cart.SetQuantity(productID, quantity)
	if err != nil {
		d.recordStockNotice(productID, err)
		return item, err
	}
	if quantity < 1 {
		return item, nil
	}
	delete(d.StockNotices, productID)
	if item.Quantity != before.Quantity {
		d.touch(now)
	}
	return item, nil
}

func (d *Draft) SetUnitPrice(productID int64, price decimal.Decimal, now time.Time) (LineItem, error) {
	if err := d.Editable(); err != nil {
		return LineItem{}, err
	}
	item, err := d.Cart.SetUnitPrice(productID, price)
	if err != nil {
		return item, err
	}
	d.touch(now)
	return item, nil
}

func (d *Draft) RemoveItem(productID int64, now time.Time) (bool, error) {
	if err := d.Editable(); err != nil {
		return false, err
	}
	removed := d.Cart.Remove(productID)
	delete(d.StockNotices, productID)
	if removed {
		d.touch(now)
	}
	return removed, nil
}

func (d *Draft) SelectCustomer(customer CustomerSnapshot, now time.Time) error {
	if err := d.Editable(); err != nil {
		return err
	}
	if customer.ID <= 0 {
		return ErrInvalidCustomer
	}
	c := customer
	d.Customer = &c
	d.touch(now)
	return nil
}

func (d *Draft) SetInputs(in PricingInputs, now time.Time) error {
	if err := d.Editable(); err != nil {
		return err
	}
	d.Inputs = in
	d.touch(now)
	return nil
}

// Pricing returns the candidate totals for the current cart.
func (d *Draft) Pricing() PricingResult {
	return Price(d.Cart.Items(), d.Inputs)
}

// BeginSubmission runs the guard. When the draft is valid it moves to Submitting
// and returns the request and idempotency key to send; otherwise it returns to
// Idle with the violations.
func (d *Draft) BeginSubmission(g *Guard, newKey func() string) (OrderRequest, string, ValidationErrorSet, error) {
	if err := d.Editable(); err != nil {
		return OrderRequest{}, "", nil, err
	}
	d.State = StateValidating
	items := d.Cart.Items()
	errs := g.Validate(d.Customer, items, d.Inputs)
	d.Errors = errs
	if !errs.Empty() {
		d.State = StateIdle
		return OrderRequest{}, "", errs, nil
	}
	if d.IdempotencyKey == "" {
		d.IdempotencyKey = newKey()
	}
	d.State = StateSubmitting
	d.SubmitError = ""
	return BuildOrderRequest(d.Customer.ID, items, d.Inputs), d.IdempotencyKey, errs, nil
}

// CompleteSubmission records the backend's answer. The cart is never modified
// here; a conflict or failure leaves it intact for the user to fix and retry.
func (d *Draft) CompleteSubmission(conf *OrderConfirmation, err error, now time.Time) SubmissionOutcome {
	d.UpdatedAt = now
	if err == nil {
		d.State = StateSubmitted
		d.Confirmation = conf
		return SubmissionOutcome{Kind: OutcomeSuccess, Confirmation: conf, Message: conf.DefaultMessage()}
	}
	d.State = StateIdle
	var conflict *StockConflictError
	if errors.As(err, &conflict) {
		d.SubmitError = conflict.Error()
		errs := d.Errors.Clone()
		if errs == nil {
			errs = ValidationErrorSet{}
		}
		if summary := conflict.Summary(); summary != "" {
			errs[FieldStock] = summary
		}
		d.Errors = errs
		return SubmissionOutcome{
			Kind:      OutcomeStockConflict,
			Errors:    errs.Clone(),
			Shortages: append([]StockShortage(nil), conflict.Shortages...),
			Message:   conflict.Error(),
		}
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = fallbackSubmitMessage
	}
	d.SubmitError = msg
	return SubmissionOutcome{Kind: OutcomeTransportFailure, Message: msg}
}

func (d *Draft) recordStockNotice(productID int64, err error) {
	var stockErr *StockError
	if errors.As(err, &stockErr) {
		d.StockNotices[productID] = stockErr.Error()
	}
}
