package backend

import (
	"context"
	"errors"

	backendclient "github.com/Apurer/order-console/internal/clients/http/backend"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

// Gateway implements the order gateway port against the backend API.
type Gateway struct {
	client *backendclient.Client
}

func NewGateway(client *backendclient.Client) *Gateway {
	return &Gateway{client: client}
}

// CreateOrder makes exactly one call; retries belong to the caller.
func (g *Gateway) CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.OrderConfirmation, error) {
	if g == nil || g.client == nil {
		err := errors.New("order gateway not configured")
		return nil, &domain.TransportError{Message: err.Error(), Err: err}
	}
	resp, err := g.client.CreateOrder(ctx, ToCreateOrderRequest(req), backendclient.WithIdempotencyKey(idempotencyKey))
	if err != nil {
		return nil, ToSubmissionError(err)
	}
	return ToConfirmation(resp), nil
}

var _ ports.OrderGateway = (*Gateway)(nil)
