package ordering

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	orderactivities "github.com/Apurer/order-console/internal/platform/temporal/activities/ordering"
	"github.com/Apurer/order-console/internal/platform/temporal/sequences"
)

const (
	// OrderSubmissionWorkflowName is the public identifier for registering the workflow.
	OrderSubmissionWorkflowName = "ordering.workflows.OrderSubmission"
	// OrderSubmissionTaskQueue is the queue consumed by the worker processing order workflows.
	OrderSubmissionTaskQueue = "ORDER_SUBMISSION"
)

// OrderSubmissionWorkflowInput captures one submission attempt.
type OrderSubmissionWorkflowInput struct {
	Command orderactivities.CreateOrderInput
	TraceID string
}

// OrderSubmissionWorkflow creates an order for a validated draft.
func OrderSubmissionWorkflow(ctx workflow.Context, input OrderSubmissionWorkflowInput) (*domain.OrderConfirmation, error) {
	logger := workflow.GetLogger(ctx)
	customerID := input.Command.Request.CustomerID
	logger.Info("OrderSubmissionWorkflow started", withTraceID(input.TraceID, "customerId", customerID)...)
	conf, err := sequences.RunOrderSubmissionSequence(ctx, input.Command)
	if err != nil {
		logger.Error("OrderSubmissionWorkflow failed", withTraceID(input.TraceID, "customerId", customerID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderSubmissionWorkflow completed", withTraceID(input.TraceID, "orderNumber", conf.OrderNumber)...)
	return conf, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
