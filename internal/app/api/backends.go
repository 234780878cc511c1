package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	backendclient "github.com/Apurer/order-console/internal/clients/http/backend"
	rediscache "github.com/Apurer/order-console/internal/domains/ordering/adapters/cache/redis"
	orderingbackend "github.com/Apurer/order-console/internal/domains/ordering/adapters/external/backend"
	orderingmemory "github.com/Apurer/order-console/internal/domains/ordering/adapters/memory"
	orderingpostgres "github.com/Apurer/order-console/internal/domains/ordering/adapters/persistence/postgres"
	orderingports "github.com/Apurer/order-console/internal/domains/ordering/ports"
	"github.com/Apurer/order-console/internal/platform/migrations"
	platformpostgres "github.com/Apurer/order-console/internal/platform/postgres"
	"github.com/Apurer/order-console/internal/platform/stockfeed"
)

// BackendKind names where catalog snapshots come from and where orders are created.
type BackendKind string

const (
	BackendOrderAPI BackendKind = "order-api"
	BackendPostgres BackendKind = "postgres"
	BackendMemory   BackendKind = "memory"
)

// Backends bundles the snapshot provider and the direct order gateway chosen
// from configuration.
type Backends struct {
	Kind      BackendKind
	Snapshots orderingports.SnapshotProvider
	Gateway   orderingports.OrderGateway
	// StockFeed is set when stock changes can be pushed into the snapshot cache.
	StockFeed *stockfeed.Feed

	cleanups []func()
}

// Close releases every connection opened by OpenBackends.
func (b *Backends) Close() {
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		b.cleanups[i]()
	}
}

// OpenBackends selects the order API when ORDER_API_BASE_URL is set, PostgreSQL
// when POSTGRES_DSN connects, and a seeded in-memory backend otherwise. A Redis
// snapshot cache is layered on top when REDIS_ADDR is reachable.
func OpenBackends(ctx context.Context, cfg Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{}
	var (
		catalog orderingports.SnapshotProvider
		cache   *rediscache.Snapshots
	)
	switch {
	case cfg.OrderAPIBaseURL != "":
		httpClient := &http.Client{Timeout: cfg.SubmitTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
		orderClient, err := backendclient.NewClient(cfg.OrderAPIBaseURL, httpClient)
		if err != nil {
			return nil, fmt.Errorf("configure order API client: %w", err)
		}
		catalogClient, err := backendclient.NewClient(cfg.CatalogAPIBaseURL, httpClient)
		if err != nil {
			return nil, fmt.Errorf("configure catalog API client: %w", err)
		}
		b.Kind = BackendOrderAPI
		b.Gateway = orderingbackend.NewGateway(orderClient)
		catalog = orderingbackend.NewSnapshots(catalogClient)
		logger.Info("order backend configured", slog.String("kind", string(b.Kind)), slog.String("baseURL", cfg.OrderAPIBaseURL))
	default:
		if db, cleanup := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger); db != nil {
			b.cleanups = append(b.cleanups, cleanup)
			if err := migrations.Run(db); err != nil {
				b.Close()
				return nil, fmt.Errorf("migrate postgres schema: %w", err)
			}
			b.Kind = BackendPostgres
			b.Gateway = orderingpostgres.NewOrders(db, orderingpostgres.WithStockChannel(cfg.StockFeedChannel))
			catalog = orderingpostgres.NewCatalog(db)
			logger.Info("order backend configured", slog.String("kind", string(b.Kind)))
		}
	}

	var memCatalog *orderingmemory.Catalog
	if b.Kind == "" {
		b.Kind = BackendMemory
		memCatalog = orderingmemory.NewCatalog()
		if err := orderingmemory.SeedDemo(ctx, memCatalog); err != nil {
			b.Close()
			return nil, fmt.Errorf("seed demo catalog: %w", err)
		}
		catalog = memCatalog
	}

	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, snapshot cache disabled", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
			_ = client.Close()
		} else {
			b.cleanups = append(b.cleanups, func() { _ = client.Close() })
			cache = rediscache.New(catalog, client, rediscache.WithTTL(cfg.SnapshotCacheTTL))
			logger.Info("snapshot cache enabled", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.SnapshotCacheTTL))
		}
	}

	if b.Kind == BackendMemory {
		var opts []orderingmemory.BackendOption
		if cache != nil {
			opts = append(opts, orderingmemory.WithInvalidator(cache))
		}
		b.Gateway = orderingmemory.NewOrderBackend(memCatalog, opts...)
		logger.Warn("order backend configured with in-memory demo data", slog.String("kind", string(b.Kind)))
	}

	b.Snapshots = catalog
	if cache != nil {
		b.Snapshots = cache
		if b.Kind == BackendPostgres {
			feed, err := stockfeed.New(cfg.PostgresDSN, cfg.StockFeedChannel, cache, logger)
			if err != nil {
				b.Close()
				return nil, fmt.Errorf("configure stock feed: %w", err)
			}
			b.StockFeed = feed
		}
	}
	return b, nil
}
