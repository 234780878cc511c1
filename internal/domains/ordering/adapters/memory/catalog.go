package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

var _ ports.SnapshotProvider = (*Catalog)(nil)

// Catalog is an in-memory product and customer directory.
type Catalog struct {
	mu        sync.RWMutex
	products  map[int64]*domain.ProductSnapshot
	customers map[int64]*domain.CustomerSnapshot
}

func NewCatalog() *Catalog {
	return &Catalog{
		products:  map[int64]*domain.ProductSnapshot{},
		customers: map[int64]*domain.CustomerSnapshot{},
	}
}

func (c *Catalog) SaveProduct(_ context.Context, p domain.ProductSnapshot) error {
	if p.ID <= 0 {
		return errors.New("product id must be greater than zero")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = &p
	return nil
}

func (c *Catalog) SaveCustomer(_ context.Context, cu domain.CustomerSnapshot) error {
	if cu.ID <= 0 {
		return errors.New("customer id must be greater than zero")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers[cu.ID] = &cu
	return nil
}

func (c *Catalog) GetProduct(_ context.Context, id int64) (*domain.ProductSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (c *Catalog) GetCustomer(_ context.Context, id int64) (*domain.CustomerSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cu, ok := c.customers[id]
	if !ok {
		return nil, ports.ErrCustomerNotFound
	}
	clone := *cu
	return &clone, nil
}

// SearchProducts matches the query against name and SKU, case-insensitively.
func (c *Catalog) SearchProducts(_ context.Context, q ports.SearchQuery) ([]domain.ProductSnapshot, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	c.mu.RLock()
	list := make([]domain.ProductSnapshot, 0)
	for _, p := range c.products {
		if q.ActiveOnly && !p.Active {
			continue
		}
		if contains(needle, p.Name, p.SKU) {
			list = append(list, *p)
		}
	}
	c.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return truncate(list, q.Limit), nil
}

// SearchCustomers matches the query against name and email.
func (c *Catalog) SearchCustomers(_ context.Context, q ports.SearchQuery) ([]domain.CustomerSnapshot, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	c.mu.RLock()
	list := make([]domain.CustomerSnapshot, 0)
	for _, cu := range c.customers {
		if q.ActiveOnly && !cu.Active {
			continue
		}
		if contains(needle, cu.Name, cu.Email) {
			list = append(list, *cu)
		}
	}
	c.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return truncate(list, q.Limit), nil
}

// reserve decrements stock for every line or for none. It reports every
// shortfall, not just the first.
func (c *Catalog) reserve(lines []domain.OrderLine) ([]domain.ProductSnapshot, []domain.StockShortage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	requested := map[int64]int{}
	for _, line := range lines {
		if _, ok := c.products[line.ProductID]; !ok {
			return nil, nil, &missingProductError{id: line.ProductID}
		}
		requested[line.ProductID] += line.Quantity
	}

	var shortages []domain.StockShortage
	seen := map[int64]bool{}
	for _, line := range lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true
		p := c.products[line.ProductID]
		if p.AvailableStock < requested[line.ProductID] {
			shortages = append(shortages, domain.StockShortage{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.AvailableStock,
				Requested:   requested[line.ProductID],
			})
		}
	}
	if len(shortages) > 0 {
		return nil, shortages, nil
	}

	touched := make([]domain.ProductSnapshot, 0, len(requested))
	for _, line := range lines {
		p := c.products[line.ProductID]
		p.AvailableStock -= line.Quantity
	}
	for id := range requested {
		touched = append(touched, *c.products[id])
	}
	sort.Slice(touched, func(i, j int) bool { return touched[i].ID < touched[j].ID })
	return touched, nil, nil
}

type missingProductError struct{ id int64 }

func (e *missingProductError) Error() string { return fmt.Sprintf("product %d not found", e.id) }

func (e *missingProductError) Unwrap() error { return ports.ErrProductNotFound }

func contains(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func truncate[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
