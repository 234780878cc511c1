package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/order-console/internal/domains/ordering/adapters/memory"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	orderactivities "github.com/Apurer/order-console/internal/platform/temporal/activities/ordering"
)

func newEnv(t *testing.T) (*testsuite.TestWorkflowEnvironment, *memory.OrderBackend) {
	t.Helper()
	ctx := context.Background()
	catalog := memory.NewCatalog()
	require.NoError(t, catalog.SaveProduct(ctx, domain.ProductSnapshot{ID: 1, Name: "Widget", UnitPrice: decimal.NewFromInt(10), AvailableStock: 2, Active: true}))
	require.NoError(t, catalog.SaveCustomer(ctx, domain.CustomerSnapshot{ID: 7, Name: "Ada", Active: true}))
	backend := memory.NewOrderBackend(catalog)

	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := orderactivities.NewActivities(backend)
	env.RegisterActivityWithOptions(acts.CreateOrder, activity.RegisterOptions{Name: orderactivities.CreateOrderActivityName})
	env.RegisterWorkflowWithOptions(OrderSubmissionWorkflow, workflow.RegisterOptions{Name: OrderSubmissionWorkflowName})
	return env, backend
}

func input(qty int) OrderSubmissionWorkflowInput {
	return OrderSubmissionWorkflowInput{
		Command: orderactivities.CreateOrderInput{
			Request: domain.OrderRequest{
				CustomerID: 7,
				Items:      []domain.OrderLine{{ProductID: 1, Quantity: qty, UnitPrice: decimal.NewFromInt(10)}},
			},
			IdempotencyKey: "key-1",
		},
		TraceID: "trace",
	}
}

func TestOrderSubmissionWorkflow_Success(t *testing.T) {
	env, backend := newEnv(t)
	env.ExecuteWorkflow(OrderSubmissionWorkflow, input(2))

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var conf domain.OrderConfirmation
	require.NoError(t, env.GetWorkflowResult(&conf))
	assert.NotEmpty(t, conf.OrderNumber)
	assert.True(t, decimal.NewFromInt(20).Equal(conf.Total))
	assert.Equal(t, 1, backend.Count())
}

func TestOrderSubmissionWorkflow_StockConflictIsNotRetried(t *testing.T) {
	env, backend := newEnv(t)
	attempts := 0
	env.SetOnActivityStartedListener(func(*activity.Info, context.Context, converter.EncodedValues) { attempts++ })
	env.ExecuteWorkflow(OrderSubmissionWorkflow, input(5))

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domain.InsufficientStockCode, appErr.Type())
	var shortages []domain.StockShortage
	require.NoError(t, appErr.Details(&shortages))
	assert.Equal(t, []domain.StockShortage{{ProductID: 1, ProductName: "Widget", Available: 2, Requested: 5}}, shortages)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 0, backend.Count())
}

func TestOrderSubmissionWorkflow_TransportFailureCarriesMessage(t *testing.T) {
	env, _ := newEnv(t)
	in := input(1)
	in.Command.Request.CustomerID = 99
	env.ExecuteWorkflow(OrderSubmissionWorkflow, in)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(env.GetWorkflowError(), &appErr))
	assert.Equal(t, orderactivities.TransportFailureErrorType, appErr.Type())
	var details orderactivities.TransportDetails
	require.NoError(t, appErr.Details(&details))
	assert.Equal(t, "customer not found", details.Message)
	assert.Equal(t, "VALIDATION_ERROR", details.Code)
}
