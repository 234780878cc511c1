package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// OutOfStockCode is the machine-readable code attached to local stock rejections.
const OutOfStockCode = "OUT_OF_STOCK"

var (
	ErrInvalidProduct    = errors.New("product id must be greater than zero")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrNegativeUnitPrice = errors.New("unit price cannot be negative")
	ErrItemNotFound      = errors.New("line item not found")
	ErrOutOfStock        = errors.New("out of stock")
)

// StockError reports a local bound-check failure against a snapshot's stock.
type StockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	if e.Available < 1 {
		return fmt.Sprintf("%s has no stock available (available: %d)", e.ProductName, e.Available)
	}
	return fmt.Sprintf("insufficient stock for %s (available: %d)", e.ProductName, e.Available)
}

func (e *StockError) Unwrap() error { return ErrOutOfStock }

// LineItem is one product row in a cart.
type LineItem struct {
	ProductID      int64
	ProductName    string
	ProductSKU     string
	Quantity       int
	UnitPrice      decimal.Decimal
	StockAvailable int
}

// Subtotal is always derived, never stored.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps line items in insertion order with at most one item per product.
type Cart struct {
	items []LineItem
	index map[int64]int
}

func NewCart() *Cart {
	return &Cart{index: map[int64]int{}}
}

// AddOrIncrement merges requestedQty into an existing line or appends a new one
// built from the snapshot. A rejected call leaves the cart unchanged.
func (c *Cart) AddOrIncrement(snapshot ProductSnapshot, requestedQty int) (LineItem, error) {
	if snapshot.ID <= 0 {
		return LineItem{}, ErrInvalidProduct
	}
	if requestedQty < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	if i, ok := c.index[snapshot.ID]; ok {
		existing := c.items[i]
		newQty := existing.Quantity + requestedQty
		if newQty > existing.StockAvailable {
			return existing, &StockError{
				ProductID:   existing.ProductID,
				ProductName: existing.ProductName,
				Available:   existing.StockAvailable,
				Requested:   newQty,
			}
		}
		c.items[i].Quantity = newQty
		return c.items[i], nil
	}
	if snapshot.AvailableStock < 1 || requestedQty > snapshot.AvailableStock {
		return LineItem{}, &StockError{
			ProductID:   snapshot.ID,
			ProductName: snapshot.Name,
			Available:   snapshot.AvailableStock,
			Requested:   requestedQty,
		}
	}
	item := LineItem{
		ProductID:      snapshot.ID,
		ProductName:    snapshot.Name,
		ProductSKU:     snapshot.SKU,
		Quantity:       requestedQty,
		UnitPrice:      snapshot.UnitPrice,
		StockAvailable: snapshot.AvailableStock,
	}
	c.index[snapshot.ID] = len(c.items)
	c.items = append(c.items, item)
	return item, nil
}

// SetQuantity updates an item's quantity. Values below 1 are ignored and the
// previous quantity is kept; values above the item's stock are rejected.
func (c *Cart) SetQuantity(productID int64, quantity int) (LineItem, error) {
	i, ok := c.index[productID]
	if !ok {
		return LineItem{}, ErrItemNotFound
	}
	item := c.items[i]
	if quantity < 1 {
		return item, nil
	}
	if quantity > item.StockAvailable {
		return item, &StockError{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Available:   item.StockAvailable,
			Requested:   quantity,
		}
	}
	c.items[i].Quantity = quantity
	return c.items[i], nil
}

// SetUnitPrice overrides the snapshot price. Only negative prices are refused.
func (c *Cart) SetUnitPrice(productID int64, price decimal.Decimal) (LineItem, error) {
	i, ok := c.index[productID]
	if !ok {
		return LineItem{}, ErrItemNotFound
	}
	if price.IsNegative() {
		return c.items[i], ErrNegativeUnitPrice
	}
	c.items[i].UnitPrice = price
	return c.items[i], nil
}

// Remove deletes the item if present and reports whether anything was removed.
func (c *Cart) Remove(productID int64) bool {
	i, ok := c.index[productID]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].ProductID] = j
	}
	return true
}

// Get returns the line for productID.
func (c *Cart) Get(productID int64) (LineItem, bool) {
	i, ok := c.index[productID]
	if !ok {
		return LineItem{}, false
	}
	return c.items[i], true
}

// Items returns a copy of the lines in display order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	clone := &Cart{items: c.Items(), index: make(map[int64]int, len(c.index))}
	for k, v := range c.index {
		clone.index[k] = v
	}
	return clone
}
