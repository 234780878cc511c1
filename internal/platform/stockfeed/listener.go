package stockfeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Invalidator drops cached state for a product whose stock changed.
type Invalidator interface {
	InvalidateProduct(ctx context.Context, id int64) error
}

// Feed consumes stock change notifications from PostgreSQL and forwards them to
// an invalidator. It only ever refreshes snapshots; carts are never touched.
type Feed struct {
	dsn         string
	channel     string
	invalidator Invalidator
	logger      *slog.Logger
	ping        time.Duration
}

func New(dsn, channel string, invalidator Invalidator, logger *slog.Logger) (*Feed, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("stock feed DSN is empty")
	}
	if strings.TrimSpace(channel) == "" {
		return nil, errors.New("stock feed channel is empty")
	}
	if invalidator == nil {
		return nil, errors.New("stock feed invalidator is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{dsn: dsn, channel: channel, invalidator: invalidator, logger: logger, ping: 90 * time.Second}, nil
}

// Run listens until ctx is done. Reconnects are handled by the pq listener.
func (f *Feed) Run(ctx context.Context) error {
	listener := pq.NewListener(f.dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			f.logger.Warn("stock feed connection event", slog.Int("event", int(ev)), slog.String("error", err.Error()))
		}
	})
	defer listener.Close()

	if err := listener.Listen(f.channel); err != nil {
		return fmt.Errorf("listen on %s: %w", f.channel, err)
	}
	f.logger.Info("stock feed listening", slog.String("channel", f.channel))

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; anything missed meanwhile ages out of the cache.
			if n == nil {
				continue
			}
			f.Handle(ctx, n.Extra)
		case <-time.After(f.ping):
			if err := listener.Ping(); err != nil {
				f.logger.Warn("stock feed ping failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Handle processes one notification payload, the decimal product id.
func (f *Feed) Handle(ctx context.Context, payload string) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil || id <= 0 {
		f.logger.Warn("ignoring malformed stock notification", slog.String("payload", payload))
		return
	}
	if err := f.invalidator.InvalidateProduct(ctx, id); err != nil {
		f.logger.Warn("failed to invalidate product snapshot", slog.Int64("product.id", id), slog.String("error", err.Error()))
	}
}
