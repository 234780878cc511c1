package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

func fastLookupConfig() LookupConfig {
	return LookupConfig{Debounce: 10 * time.Millisecond, MinChars: 2, Limit: 10, Timeout: time.Second}
}

func waitResolved[T any](t *testing.T, l *Lookup[T], seq uint64) {
	t.Helper()
	require.Eventually(t, func() bool {
		v := l.Latest()
		return v.Sequence == seq && !v.Pending
	}, time.Second, 5*time.Millisecond)
}

func TestLookup_ShortQueryResolvesEmpty(t *testing.T) {
	var calls atomic.Int32
	l := NewLookup(func(context.Context, ports.SearchQuery) ([]string, error) {
		calls.Add(1)
		return []string{"x"}, nil
	}, fastLookupConfig())
	defer l.Close()

	seq := l.Query("a")
	view := l.Latest()
	assert.Equal(t, seq, view.Sequence)
	assert.False(t, view.Pending)
	assert.Empty(t, view.Items)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestLookup_DebounceCollapsesBurst(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []ports.SearchQuery
	)
	l := NewLookup(func(_ context.Context, q ports.SearchQuery) ([]string, error) {
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		return []string{q.Query}, nil
	}, LookupConfig{Debounce: 40 * time.Millisecond, MinChars: 2, Limit: 10, Timeout: time.Second})
	defer l.Close()

	l.Query("wi")
	l.Query("wid")
	seq := l.Query("widget")
	waitResolved(t, l, seq)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, queries, 1)
	assert.Equal(t, ports.SearchQuery{Query: "widget", Limit: 10, ActiveOnly: true}, queries[0])
	assert.Equal(t, []string{"widget"}, l.Latest().Items)
}

func TestLookup_DiscardsSupersededResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	l := NewLookup(func(ctx context.Context, q ports.SearchQuery) ([]string, error) {
		if q.Query == "old" {
			started <- struct{}{}
			<-release
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	}, fastLookupConfig())
	defer l.Close()

	l.Query("old")
	<-started
	seq := l.Query("new")
	waitResolved(t, l, seq)
	close(release)

	time.Sleep(20 * time.Millisecond)
	view := l.Latest()
	assert.Equal(t, seq, view.Sequence)
	assert.Equal(t, []string{"fresh"}, view.Items)
}

func TestLookup_RecordsSearchError(t *testing.T) {
	l := NewLookup(func(context.Context, ports.SearchQuery) ([]string, error) {
		return nil, errors.New("catalog down")
	}, fastLookupConfig())
	defer l.Close()

	seq := l.Query("abc")
	waitResolved(t, l, seq)
	view := l.Latest()
	assert.Equal(t, "catalog down", view.Error)
	assert.Empty(t, view.Items)
}

func TestLookup_FindUsesLatestResult(t *testing.T) {
	l := NewLookup(func(context.Context, ports.SearchQuery) ([]int, error) {
		return []int{1, 2, 3}, nil
	}, fastLookupConfig())
	defer l.Close()

	waitResolved(t, l, l.Query("nums"))
	got, ok := l.Find(func(v int) bool { return v == 2 })
	require.True(t, ok)
	assert.Equal(t, 2, got)
	_, ok = l.Find(func(v int) bool { return v == 9 })
	assert.False(t, ok)
}

func TestLookup_CloseStopsPendingQuery(t *testing.T) {
	var calls atomic.Int32
	l := NewLookup(func(context.Context, ports.SearchQuery) ([]string, error) {
		calls.Add(1)
		return nil, nil
	}, fastLookupConfig())

	l.Query("pending")
	l.Close()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
