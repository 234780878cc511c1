package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
	orderactivities "github.com/Apurer/order-console/internal/platform/temporal/activities/ordering"
	orderworkflows "github.com/Apurer/order-console/internal/platform/temporal/workflows/ordering"
)

var _ ports.OrderGateway = (*TemporalOrderGateway)(nil)

// TemporalOrderGateway creates orders through a workflow on a Temporal cluster.
type TemporalOrderGateway struct {
	client    client.Client
	taskQueue string
}

func NewTemporalOrderGateway(c client.Client) *TemporalOrderGateway {
	return &TemporalOrderGateway{client: c, taskQueue: orderworkflows.OrderSubmissionTaskQueue}
}

// CreateOrder starts the submission workflow and waits for its result. Workflow
// failures are mapped back to stock conflicts or transport failures.
func (g *TemporalOrderGateway) CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.OrderConfirmation, error) {
	if g == nil || g.client == nil {
		err := errors.New("temporal order gateway not configured")
		return nil, &domain.TransportError{Message: err.Error(), Err: err}
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildOrderSubmissionWorkflowID(idempotencyKey, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: g.taskQueue,
	}
	input := orderworkflows.OrderSubmissionWorkflowInput{
		Command: orderactivities.CreateOrderInput{Request: req, IdempotencyKey: idempotencyKey},
		TraceID: traceComponent,
	}
	run, err := g.client.ExecuteWorkflow(ctx, options, orderworkflows.OrderSubmissionWorkflow, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) || strings.TrimSpace(idempotencyKey) == "" {
			return nil, &domain.TransportError{Message: err.Error(), Err: err}
		}
		run = g.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var conf domain.OrderConfirmation
	if err := run.Get(ctx, &conf); err != nil {
		return nil, FromWorkflowError(err)
	}
	return &conf, nil
}

// FromWorkflowError rebuilds the domain error carried by a failed submission
// workflow.
func FromWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case domain.InsufficientStockCode:
			var shortages []domain.StockShortage
			if appErr.HasDetails() {
				_ = appErr.Details(&shortages)
			}
			return &domain.StockConflictError{Message: appErr.Message(), Shortages: shortages}
		case orderactivities.TransportFailureErrorType:
			var details orderactivities.TransportDetails
			if appErr.HasDetails() {
				_ = appErr.Details(&details)
			}
			msg := details.Message
			if msg == "" {
				msg = appErr.Message()
			}
			return &domain.TransportError{Status: details.Status, Code: details.Code, Message: msg, Err: err}
		}
	}
	return &domain.TransportError{Message: err.Error(), Err: err}
}

func buildOrderSubmissionWorkflowID(idempotencyKey, traceComponent string) string {
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		return fmt.Sprintf("order-submission-idem-%s", hashIdempotencyKey(key))
	}
	return fmt.Sprintf("order-submission-%d-%s", time.Now().UnixNano(), traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
