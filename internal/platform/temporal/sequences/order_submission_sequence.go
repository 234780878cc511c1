package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	orderactivities "github.com/Apurer/order-console/internal/platform/temporal/activities/ordering"
)

// RunOrderSubmissionSequence creates the order in a single attempt. Retrying is
// the operator's decision, never the workflow's.
func RunOrderSubmissionSequence(ctx workflow.Context, input orderactivities.CreateOrderInput) (*domain.OrderConfirmation, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order submission sequence started", "customerId", input.Request.CustomerID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	var conf domain.OrderConfirmation
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.CreateOrderActivityName, input).Get(ctx, &conf)
	if err != nil {
		logger.Error("order submission sequence failed", "customerId", input.Request.CustomerID, "error", err)
		return nil, err
	}
	logger.Info("order submission sequence completed", "orderNumber", conf.OrderNumber)
	return &conf, nil
}
