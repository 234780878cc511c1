package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	orderactivities "github.com/Apurer/order-console/internal/platform/temporal/activities/ordering"
	platformobservability "github.com/Apurer/order-console/internal/platform/observability"
	orderworkflows "github.com/Apurer/order-console/internal/platform/temporal/workflows/ordering"
)

// RunWorker hosts the order submission workflow. Its activity calls the order API
// or PostgreSQL store directly; the in-memory backend is refused because the API
// process would not share its state.
func RunWorker(ctx context.Context) error {
	const serviceName = "order-console-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()
	if backends.Kind == BackendMemory {
		return errors.New("worker requires ORDER_API_BASE_URL or POSTGRES_DSN")
	}

	// The worker always dials, TEMPORAL_DISABLED only applies to the API.
	cfg.TemporalDisabled = false
	temporalClient, err := connectTemporalClient(cfg, instruments)
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	activities := orderactivities.NewActivities(backends.Gateway)
	w := worker.New(temporalClient, orderworkflows.OrderSubmissionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderSubmissionWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderSubmissionWorkflowName})
	w.RegisterActivityWithOptions(activities.CreateOrder, activity.RegisterOptions{Name: orderactivities.CreateOrderActivityName})

	logger.Info("worker listening",
		slog.String("taskQueue", orderworkflows.OrderSubmissionTaskQueue),
		slog.String("namespace", cfg.TemporalNamespace),
		slog.String("backend", string(backends.Kind)))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
