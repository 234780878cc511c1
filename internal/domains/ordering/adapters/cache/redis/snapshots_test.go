package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

type countingProvider struct {
	productCalls  atomic.Int32
	customerCalls atomic.Int32
	stock         atomic.Int32
}

func (p *countingProvider) SearchProducts(context.Context, ports.SearchQuery) ([]domain.ProductSnapshot, error) {
	return []domain.ProductSnapshot{{ID: 1, Name: "Widget"}}, nil
}

func (p *countingProvider) GetProduct(_ context.Context, id int64) (*domain.ProductSnapshot, error) {
	p.productCalls.Add(1)
	if id != 1 {
		return nil, ports.ErrProductNotFound
	}
	return &domain.ProductSnapshot{ID: 1, Name: "Widget", UnitPrice: decimal.RequireFromString("9.99"), AvailableStock: int(p.stock.Load()), Active: true}, nil
}

func (p *countingProvider) SearchCustomers(context.Context, ports.SearchQuery) ([]domain.CustomerSnapshot, error) {
	return nil, nil
}

func (p *countingProvider) GetCustomer(_ context.Context, id int64) (*domain.CustomerSnapshot, error) {
	p.customerCalls.Add(1)
	return &domain.CustomerSnapshot{ID: id, Name: "Ada", Active: true}, nil
}

func newCache(t *testing.T) (*miniredis.Miniredis, *countingProvider, *Snapshots) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	inner := &countingProvider{}
	inner.stock.Store(5)
	return mr, inner, New(inner, client, WithTTL(time.Minute))
}

func TestSnapshots_CachesProductReads(t *testing.T) {
	_, inner, cache := newCache(t)
	ctx := context.Background()

	first, err := cache.GetProduct(ctx, 1)
	require.NoError(t, err)
	second, err := cache.GetProduct(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, int32(1), inner.productCalls.Load())
	assert.Equal(t, first, second)
	assert.True(t, decimal.RequireFromString("9.99").Equal(second.UnitPrice))
}

func TestSnapshots_InvalidateForcesRefetch(t *testing.T) {
	_, inner, cache := newCache(t)
	ctx := context.Background()

	_, err := cache.GetProduct(ctx, 1)
	require.NoError(t, err)
	inner.stock.Store(2)
	require.NoError(t, cache.InvalidateProduct(ctx, 1))

	p, err := cache.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.AvailableStock)
	assert.Equal(t, int32(2), inner.productCalls.Load())
}

func TestSnapshots_EntriesExpire(t *testing.T) {
	mr, inner, cache := newCache(t)
	ctx := context.Background()

	_, err := cache.GetCustomer(ctx, 7)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = cache.GetCustomer(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.customerCalls.Load())
}

func TestSnapshots_NotFoundIsNotCached(t *testing.T) {
	mr, inner, cache := newCache(t)
	ctx := context.Background()

	_, err := cache.GetProduct(ctx, 9)
	assert.ErrorIs(t, err, ports.ErrProductNotFound)
	_, err = cache.GetProduct(ctx, 9)
	assert.ErrorIs(t, err, ports.ErrProductNotFound)
	assert.Equal(t, int32(2), inner.productCalls.Load())
	assert.False(t, mr.Exists(defaultPrefix+"product:9"))
}

func TestSnapshots_FallsBackWhenRedisIsDown(t *testing.T) {
	mr, inner, cache := newCache(t)
	mr.Close()

	p, err := cache.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, int32(1), inner.productCalls.Load())
}

func TestSnapshots_ConcurrentMissesStayConsistent(t *testing.T) {
	_, _, cache := newCache(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := cache.GetProduct(context.Background(), 1)
			assert.NoError(t, err)
			assert.Equal(t, int64(1), p.ID)
		}()
	}
	wg.Wait()
}
