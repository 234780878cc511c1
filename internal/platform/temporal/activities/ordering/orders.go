package ordering

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

const (
	// CreateOrderActivityName creates one order on the authoritative backend.
	CreateOrderActivityName = "ordering.activities.CreateOrder"

	// TransportFailureErrorType tags non-stock failures crossing the workflow boundary.
	TransportFailureErrorType = "TRANSPORT_FAILURE"
)

// CreateOrderInput is the activity payload.
type CreateOrderInput struct {
	Request        domain.OrderRequest
	IdempotencyKey string
}

// TransportDetails carries a transport failure across the workflow boundary.
type TransportDetails struct {
	Status  int
	Code    string
	Message string
}

// Activities groups activities that operate on the ordering bounded context.
type Activities struct {
	gateway ports.OrderGateway
}

func NewActivities(gateway ports.OrderGateway) *Activities {
	return &Activities{gateway: gateway}
}

// CreateOrder calls the gateway once. Stock conflicts and transport failures are
// returned as non-retryable application errors whose details preserve the
// shortages or the backend message.
func (a *Activities) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.OrderConfirmation, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.gateway == nil {
		logger.Error("create order activity not initialized", "customerId", input.Request.CustomerID)
		return nil, errors.New("create order activity not initialized")
	}
	logger.Info("CreateOrder activity started", "customerId", input.Request.CustomerID, "items", len(input.Request.Items))
	conf, err := a.gateway.CreateOrder(ctx, input.Request, input.IdempotencyKey)
	if err != nil {
		logger.Error("CreateOrder activity failed", "customerId", input.Request.CustomerID, "error", err)
		return nil, toApplicationError(err)
	}
	logger.Info("CreateOrder activity completed", "orderNumber", conf.OrderNumber)
	return conf, nil
}

func toApplicationError(err error) error {
	var conflict *domain.StockConflictError
	if errors.As(err, &conflict) {
		return temporal.NewNonRetryableApplicationError(conflict.Error(), domain.InsufficientStockCode, err, conflict.Shortages)
	}
	var transport *domain.TransportError
	if errors.As(err, &transport) {
		return temporal.NewNonRetryableApplicationError(transport.Error(), TransportFailureErrorType, err,
			TransportDetails{Status: transport.Status, Code: transport.Code, Message: transport.Message})
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), TransportFailureErrorType, err, TransportDetails{Message: err.Error()})
}
