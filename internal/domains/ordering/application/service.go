package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Apurer/order-console/internal/domains/ordering/application/types"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

const (
	defaultIdleTTL       = 30 * time.Minute
	stockCheckConcurrency = 4
)

// session is one live draft plus its search fields. mu serializes every draft
// mutation.
type session struct {
	mu        sync.Mutex
	draft     *domain.Draft
	products  *Lookup[domain.ProductSnapshot]
	customers *Lookup[domain.CustomerSnapshot]
	lastSeen  time.Time
}

func (s *session) close() {
	s.products.Close()
	s.customers.Close()
}

// Service hosts in-memory drafts and orchestrates their use cases.
type Service struct {
	snapshots   ports.SnapshotProvider
	coordinator *Coordinator
	lookupCfg   LookupConfig
	idleTTL     time.Duration
	now         func() time.Time
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*session
}

type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
			s.coordinator.now = now
		}
	}
}

func WithLookupConfig(cfg LookupConfig) Option {
	return func(s *Service) { s.lookupCfg = cfg }
}

// WithIdleTTL sets how long an untouched draft survives before PurgeIdle drops it.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

func WithSubmitTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.coordinator.timeout = timeout
		}
	}
}

// WithIDGenerator overrides draft and idempotency key generation.
func WithIDGenerator(draftID, idempotencyKey func() string) Option {
	return func(s *Service) {
		if draftID != nil {
			s.newID = draftID
		}
		if idempotencyKey != nil {
			s.coordinator.newKey = idempotencyKey
		}
	}
}

// NewService wires the ordering service with its collaborators.
func NewService(snapshots ports.SnapshotProvider, gateway ports.OrderGateway, opts ...Option) *Service {
	s := &Service{
		snapshots:   snapshots,
		coordinator: NewCoordinator(gateway),
		lookupCfg:   DefaultLookupConfig(),
		idleTTL:     defaultIdleTTL,
		now:         time.Now,
		newID:       uuid.NewString,
		sessions:    map[string]*session{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateDraft(_ context.Context) (*types.DraftView, error) {
	now := s.now()
	sess := &session{
		draft:     domain.NewDraft(s.newID(), now),
		products:  NewLookup(s.snapshots.SearchProducts, s.lookupCfg),
		customers: NewLookup(s.snapshots.SearchCustomers, s.lookupCfg),
		lastSeen:  now,
	}
	s.mu.Lock()
	s.sessions[sess.draft.ID] = sess
	s.mu.Unlock()
	return types.NewDraftView(sess.draft), nil
}

func (s *Service) GetDraft(_ context.Context, draftID string) (*types.DraftView, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, func(*domain.Draft) error { return nil })
}

// DiscardDraft releases the draft unconditionally.
func (s *Service) DiscardDraft(_ context.Context, draftID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[draftID]
	delete(s.sessions, draftID)
	s.mu.Unlock()
	if !ok {
		return ErrDraftNotFound
	}
	sess.close()
	return nil
}

func (s *Service) SelectCustomer(ctx context.Context, draftID string, customerID int64) (*types.DraftView, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	if customerID <= 0 {
		return nil, mapError(domain.ErrInvalidCustomer)
	}
	customer, ok := sess.customers.Find(func(c domain.CustomerSnapshot) bool { return c.ID == customerID })
	if !ok {
		fetched, err := s.snapshots.GetCustomer(ctx, customerID)
		if err != nil {
			return nil, err
		}
		customer = *fetched
	}
	return s.view(sess, func(d *domain.Draft) error {
		return d.SelectCustomer(customer, s.now())
	})
}

// AddItem adds a product using the snapshot captured by the latest product lookup
// when it contains the product, or a freshly fetched one otherwise. A zero
// quantity means one unit.
func (s *Service) AddItem(ctx context.Context, draftID string, productID int64, quantity int) (*types.DraftView, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		quantity = 1
	}
	if productID <= 0 {
		return nil, mapError(domain.ErrInvalidProduct)
	}
	snapshot, ok := sess.products.Find(func(p domain.ProductSnapshot) bool { return p.ID == productID })
	if !ok {
		fetched, err := s.snapshots.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		snapshot = *fetched
	}
	return s.view(sess, func(d *domain.Draft) error {
		_, err := d.AddProduct(snapshot, quantity, s.now())
		return err
	})
}

func (s *Service) SetItemQuantity(_ context.Context, draftID string, productID int64, quantity int) (*types.DraftView, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, func(d *domain.Draft) error {
		_, err := d.SetQuantity(productID, quantity, s.now())
		return err
	})
}

func (s *Service) SetItemPrice(_ context.Context, draftID string, productID int64, price decimal.Decimal) (*types.DraftView, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, func(d *domain.Draft) error {
		_, err := d.SetUnitPrice(productID, price, s.now())
		return err
	})
}

func (s *Service) RemoveItem(_ context.Context, draftID string, productID int64) (*types.DraftView, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, func(d *domain.Draft) error {
		_, err := d.RemoveItem(productID, s.now())
		return err
	})
}

func (s *Service) UpdatePricing(_ context.Context, draftID string, inputs domain.PricingInputs) (*types.DraftView, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, func(d *domain.Draft) error {
		return d.SetInputs(inputs, s.now())
	})
}

// CheckStock compares each cart line with fresh availability. It never changes
// the cart; the order backend still performs the authoritative check.
func (s *Service) CheckStock(ctx context.Context, draftID string) (*types.StockCheck, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	items := sess.draft.Cart.Items()
	sess.lastSeen = s.now()
	sess.mu.Unlock()

	result := &types.StockCheck{Available: true, Items: make([]types.StockCheckItem, len(items))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stockCheckConcurrency)
	for i, item := range items {
		g.Go(func() error {
			fresh, err := s.snapshots.GetProduct(gctx, item.ProductID)
			if err != nil && !errors.Is(err, ports.ErrProductNotFound) {
				return fmt.Errorf("check stock for product %d: %w", item.ProductID, err)
			}
			available := 0
			if fresh != nil {
				available = fresh.AvailableStock
			}
			result.Items[i] = types.StockCheckItem{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Requested:   item.Quantity,
				Available:   available,
				Sufficient:  available >= item.Quantity,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, item := range result.Items {
		if !item.Sufficient {
			result.Available = false
		}
	}
	return result, nil
}

// Submit runs one submission attempt. A successful submission consumes the draft.
func (s *Service) Submit(ctx context.Context, draftID string) (*types.SubmissionResult, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	outcome, err := s.coordinator.Submit(ctx, &sess.mu, sess.draft)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	view := types.NewDraftView(sess.draft)
	sess.lastSeen = s.now()
	sess.mu.Unlock()
	if outcome.Kind == domain.OutcomeSuccess {
		s.mu.Lock()
		delete(s.sessions, draftID)
		s.mu.Unlock()
		sess.close()
	}
	return &types.SubmissionResult{Outcome: outcome, Draft: view}, nil
}

func (s *Service) LookupProducts(_ context.Context, draftID, query string) (uint64, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return 0, err
	}
	return sess.products.Query(query), nil
}

func (s *Service) LookupCustomers(_ context.Context, draftID, query string) (uint64, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return 0, err
	}
	return sess.customers.Query(query), nil
}

func (s *Service) ProductLookup(_ context.Context, draftID string) (*types.LookupView[domain.ProductSnapshot], error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	view := sess.products.Latest()
	return &view, nil
}

func (s *Service) CustomerLookup(_ context.Context, draftID string) (*types.LookupView[domain.CustomerSnapshot], error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	view := sess.customers.Latest()
	return &view, nil
}

// PurgeIdle drops drafts untouched for longer than the idle TTL, skipping any
// with a submission in flight. It returns how many were dropped.
func (s *Service) PurgeIdle(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)
	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff) && sess.draft.State != domain.StateSubmitting
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			expired = append(expired, sess)
		}
	}
	s.mu.Unlock()
	for _, sess := range expired {
		sess.close()
	}
	return len(expired)
}

// RunJanitor calls PurgeIdle every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.PurgeIdle(s.now()); n > 0 && logger != nil {
				logger.Info("purged idle drafts", slog.Int("count", n))
			}
		}
	}
}

func (s *Service) session(draftID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[draftID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrDraftNotFound
	}
	return sess, nil
}

// view applies mutate under the session lock and returns the resulting view. A
// rejected mutation still returns the view so callers can render scoped notices.
func (s *Service) view(sess *session, mutate func(*domain.Draft) error) (*types.DraftView, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = s.now()
	err := mutate(sess.draft)
	return types.NewDraftView(sess.draft), mapError(err)
}

var _ ports.Service = (*Service)(nil)
