package types

import (
	"time"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
)

// DraftView is a read-only copy of a draft plus its derived totals.
type DraftView struct {
	ID           string
	State        domain.SubmissionState
	Customer     *domain.CustomerSnapshot
	Items        []domain.LineItem
	Inputs       domain.PricingInputs
	Pricing      domain.PricingResult
	StockNotices map[int64]string
	Errors       domain.ValidationErrorSet
	SubmitError  string
	Confirmation *domain.OrderConfirmation
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewDraftView copies d so the view stays valid after the draft moves on.
func NewDraftView(d *domain.Draft) *DraftView {
	if d == nil {
		return nil
	}
	view := &DraftView{
		ID:           d.ID,
		State:        d.State,
		Items:        d.Cart.Items(),
		Inputs:       d.Inputs,
		Pricing:      d.Pricing(),
		StockNotices: make(map[int64]string, len(d.StockNotices)),
		Errors:       d.Errors.Clone(),
		SubmitError:  d.SubmitError,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Customer != nil {
		c := *d.Customer
		view.Customer = &c
	}
	if d.Confirmation != nil {
		c := *d.Confirmation
		view.Confirmation = &c
	}
	for k, v := range d.StockNotices {
		view.StockNotices[k] = v
	}
	return view
}

// SubmissionResult pairs the outcome of one submit with the draft state after it.
type SubmissionResult struct {
	Outcome domain.SubmissionOutcome
	Draft   *DraftView
}

// StockCheckItem compares one cart line with fresh availability.
type StockCheckItem struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
	Sufficient  bool
}

// StockCheck is an advisory pre-submit availability check; the cart is not changed.
type StockCheck struct {
	Available bool
	Items     []StockCheckItem
}

// LookupView is the latest resolved search for one lookup field.
type LookupView[T any] struct {
	Sequence uint64
	Query    string
	Pending  bool
	Items    []T
	Error    string
}
