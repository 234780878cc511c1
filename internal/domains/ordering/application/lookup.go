package application

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Apurer/order-console/internal/domains/ordering/application/types"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

// LookupConfig tunes a debounced search field.
type LookupConfig struct {
	Debounce time.Duration
	MinChars int
	Limit    int
	Timeout  time.Duration
}

func DefaultLookupConfig() LookupConfig {
	return LookupConfig{
		Debounce: 300 * time.Millisecond,
		MinChars: 2,
		Limit:    10,
		Timeout:  5 * time.Second,
	}
}

type searchFunc[T any] func(ctx context.Context, q ports.SearchQuery) ([]T, error)

// Lookup debounces queries for one search field. Every query takes the next
// sequence number and a result is only kept if its sequence is still the newest
// when the search returns.
type Lookup[T any] struct {
	search searchFunc[T]
	cfg    LookupConfig

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	latest types.LookupView[T]
	closed bool
}

func NewLookup[T any](search searchFunc[T], cfg LookupConfig) *Lookup[T] {
	return &Lookup[T]{search: search, cfg: cfg}
}

// Query schedules a search for query and returns its sequence number. Queries
// shorter than the minimum length resolve immediately to an empty result.
func (l *Lookup[T]) Query(query string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	seq := l.seq
	l.stopLocked()
	if l.closed {
		return seq
	}
	if utf8.RuneCountInString(strings.TrimSpace(query)) < l.cfg.MinChars {
		l.latest = types.LookupView[T]{Sequence: seq, Query: query}
		return seq
	}
	l.latest = types.LookupView[T]{Sequence: seq, Query: query, Pending: true}
	l.timer = time.AfterFunc(l.cfg.Debounce, func() { l.resolve(seq, query) })
	return seq
}

// Latest returns the most recent view.
func (l *Lookup[T]) Latest() types.LookupView[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	view := l.latest
	view.Items = append([]T(nil), l.latest.Items...)
	return view
}

// Find returns the first item of the latest resolved result matching match.
func (l *Lookup[T]) Find(match func(T) bool) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.latest.Items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Close stops pending and in-flight searches. Later queries never resolve.
func (l *Lookup[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.stopLocked()
}

func (l *Lookup[T]) resolve(seq uint64, query string) {
	l.mu.Lock()
	if seq != l.seq || l.closed {
		l.mu.Unlock()
		return
	}
	timeout := l.cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultLookupConfig().Timeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	l.cancel = cancel
	l.mu.Unlock()

	items, err := l.search(ctx, ports.SearchQuery{Query: strings.TrimSpace(query), Limit: l.cfg.Limit, ActiveOnly: true})
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return
	}
	l.cancel = nil
	view := types.LookupView[T]{Sequence: seq, Query: query}
	if err != nil {
		view.Error = err.Error()
	} else {
		view.Items = items
	}
	l.latest = view
}

func (l *Lookup[T]) stopLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
