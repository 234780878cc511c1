package backend

import (
	"context"
	"errors"
	"net/http"

	backendclient "github.com/Apurer/order-console/internal/clients/http/backend"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

// Snapshots reads catalog snapshots from the backend API.
type Snapshots struct {
	client *backendclient.Client
}

func NewSnapshots(client *backendclient.Client) *Snapshots {
	return &Snapshots{client: client}
}

func (s *Snapshots) SearchProducts(ctx context.Context, q ports.SearchQuery) ([]domain.ProductSnapshot, error) {
	list, err := s.client.ListProducts(ctx, listParams(q))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProductSnapshot, 0, len(list))
	for _, p := range list {
		if q.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, ToProductSnapshot(p))
	}
	return out, nil
}

func (s *Snapshots) GetProduct(ctx context.Context, id int64) (*domain.ProductSnapshot, error) {
	p, err := s.client.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, ports.ErrProductNotFound)
	}
	snapshot := ToProductSnapshot(*p)
	return &snapshot, nil
}

func (s *Snapshots) SearchCustomers(ctx context.Context, q ports.SearchQuery) ([]domain.CustomerSnapshot, error) {
	list, err := s.client.ListCustomers(ctx, listParams(q))
	if err != nil {
		return nil, err
	}
	out := make([]domain.CustomerSnapshot, 0, len(list))
	for _, c := range list {
		if q.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, ToCustomerSnapshot(c))
	}
	return out, nil
}

func (s *Snapshots) GetCustomer(ctx context.Context, id int64) (*domain.CustomerSnapshot, error) {
	c, err := s.client.GetCustomer(ctx, id)
	if err != nil {
		return nil, notFound(err, ports.ErrCustomerNotFound)
	}
	snapshot := ToCustomerSnapshot(*c)
	return &snapshot, nil
}

func listParams(q ports.SearchQuery) backendclient.ListParams {
	params := backendclient.ListParams{Search: &q.Query}
	if q.Limit > 0 {
		params.Limit = &q.Limit
	}
	if q.ActiveOnly {
		active := true
		params.IsActive = &active
	}
	return params
}

// notFound maps a 404 to sentinel and everything else to a transport failure.
func notFound(err, sentinel error) error {
	var apiErr *backendclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return sentinel
	}
	return ToSubmissionError(err)
}

var _ ports.SnapshotProvider = (*Snapshots)(nil)
