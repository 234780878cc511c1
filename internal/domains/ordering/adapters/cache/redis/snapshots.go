package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

const (
	defaultTTL    = 30 * time.Second
	defaultPrefix = "order-console:snapshot:"
)

// Snapshots caches single-record product and customer reads in Redis. Searches
// always go to the inner provider. Concurrent misses for one key share a fetch.
type Snapshots struct {
	inner  ports.SnapshotProvider
	client goredis.UniversalClient
	ttl    time.Duration
	prefix string
	group  singleflight.Group
}

type Option func(*Snapshots)

func WithTTL(ttl time.Duration) Option {
	return func(s *Snapshots) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithKeyPrefix(prefix string) Option {
	return func(s *Snapshots) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func New(inner ports.SnapshotProvider, client goredis.UniversalClient, opts ...Option) *Snapshots {
	s := &Snapshots{inner: inner, client: client, ttl: defaultTTL, prefix: defaultPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type productRecord struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	AvailableStock int             `json:"available_stock"`
	Active         bool            `json:"active"`
}

type customerRecord struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Active bool   `json:"active"`
}

func (s *Snapshots) SearchProducts(ctx context.Context, q ports.SearchQuery) ([]domain.ProductSnapshot, error) {
	return s.inner.SearchProducts(ctx, q)
}

func (s *Snapshots) SearchCustomers(ctx context.Context, q ports.SearchQuery) ([]domain.CustomerSnapshot, error) {
	return s.inner.SearchCustomers(ctx, q)
}

func (s *Snapshots) GetProduct(ctx context.Context, id int64) (*domain.ProductSnapshot, error) {
	rec, err := cached(ctx, s, s.productKey(id), func(ctx context.Context) (productRecord, error) {
		p, err := s.inner.GetProduct(ctx, id)
		if err != nil {
			return productRecord{}, err
		}
		return productRecord(*p), nil
	})
	if err != nil {
		return nil, err
	}
	p := domain.ProductSnapshot(rec)
	return &p, nil
}

func (s *Snapshots) GetCustomer(ctx context.Context, id int64) (*domain.CustomerSnapshot, error) {
	rec, err := cached(ctx, s, s.customerKey(id), func(ctx context.Context) (customerRecord, error) {
		c, err := s.inner.GetCustomer(ctx, id)
		if err != nil {
			return customerRecord{}, err
		}
		return customerRecord(*c), nil
	})
	if err != nil {
		return nil, err
	}
	c := domain.CustomerSnapshot(rec)
	return &c, nil
}

// InvalidateProduct drops the cached product so the next read refetches it.
func (s *Snapshots) InvalidateProduct(ctx context.Context, id int64) error {
	if err := s.client.Del(ctx, s.productKey(id)).Err(); err != nil {
		return fmt.Errorf("invalidate product %d: %w", id, err)
	}
	return nil
}

// cached reads key or loads and stores it. Redis failures degrade to a direct
// load; load errors are never cached.
func cached[T any](ctx context.Context, s *Snapshots, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var rec T
		if json.Unmarshal(raw, &rec) == nil {
			return rec, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		return load(ctx)
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		rec, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if buf, err := json.Marshal(rec); err == nil {
			_ = s.client.Set(ctx, key, buf, s.ttl).Err()
		}
		return rec, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (s *Snapshots) productKey(id int64) string {
	return s.prefix + "product:" + strconv.FormatInt(id, 10)
}

func (s *Snapshots) customerKey(id int64) string {
	return s.prefix + "customer:" + strconv.FormatInt(id, 10)
}

var (
	_ ports.SnapshotProvider    = (*Snapshots)(nil)
	_ ports.SnapshotInvalidator = (*Snapshots)(nil)
)
