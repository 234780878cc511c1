package domain

import "github.com/shopspring/decimal"

// ProductSnapshot is a point-in-time copy of a catalog product. It may be stale by
// the time it is used and is only good for optimistic local checks.
type ProductSnapshot struct {
	ID             int64
	Name           string
	SKU            string
	UnitPrice      decimal.Decimal
	AvailableStock int
	Active         bool
}

// CustomerSnapshot is the customer reference attached to a draft.
type CustomerSnapshot struct {
	ID     int64
	Name   string
	Email  string
	Phone  string
	Active bool
}
