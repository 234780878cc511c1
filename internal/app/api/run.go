package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	consoleserver "github.com/Apurer/order-console/go"

	orderingobs "github.com/Apurer/order-console/internal/domains/ordering/adapters/observability"
	orderingworkflows "github.com/Apurer/order-console/internal/domains/ordering/adapters/workflows"
	orderingapp "github.com/Apurer/order-console/internal/domains/ordering/application"
	orderingports "github.com/Apurer/order-console/internal/domains/ordering/ports"
	platformobservability "github.com/Apurer/order-console/internal/platform/observability"
)

const janitorInterval = time.Minute

// Run boots the order console HTTP API with observability, backends, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "order-console-api"
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
	if backends.StockFeed != nil {
		go func() {
			if err := backends.StockFeed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("stock feed stopped", slog.String("error", err.Error()))
			}
		}()
	}

	var gateway orderingports.OrderGateway = backends.Gateway
	if backends.Kind == BackendMemory {
		logger.Info("Temporal workflows skipped for the in-memory backend")
	} else if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, submitting orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		gateway = orderingworkflows.NewTemporalOrderGateway(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	core := orderingapp.NewService(
		backends.Snapshots,
		gateway,
		orderingapp.WithIdleTTL(cfg.DraftIdleTTL),
		orderingapp.WithSubmitTimeout(cfg.SubmitTimeout),
		orderingapp.WithLookupConfig(orderingapp.LookupConfig{
			Debounce: cfg.LookupDebounce,
			MinChars: cfg.LookupMinChars,
			Limit:    cfg.LookupLimit,
			Timeout:  orderingapp.DefaultLookupConfig().Timeout,
		}),
	)
	go core.RunJanitor(ctx, janitorInterval, logger)
	service := orderingobs.New(
		core,
		orderingobs.WithLogger(logger),
		orderingobs.WithTracer(instruments.Tracer("internal.ordering.application")),
		orderingobs.WithMeter(instruments.Meter("internal.ordering.application")),
	)

	handlers := consoleserver.ApiHandleFunctions{
		DraftAPI:  consoleserver.NewDraftAPI(service),
		LookupAPI: consoleserver.NewLookupAPI(service),
	}
	engine := gin.Default()
	engine.Use(otelgin.Middleware(serviceName))
	router := consoleserver.NewRouterWithGinEngine(engine, handlers)
	addr := ":" + cfg.Port
	logger.Info("order console API listening", slog.String("addr", addr), slog.String("backend", string(backends.Kind)))
	if err := router.Run(addr); err != nil {
		logger.Error("order console API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
