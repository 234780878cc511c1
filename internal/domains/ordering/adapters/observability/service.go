package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/order-console/internal/domains/ordering/application/types"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

const tracerName = "github.com/Apurer/order-console/internal/domains/ordering/adapters/observability/service"

// Service decorates the ordering service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core ordering service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateDraft(ctx context.Context) (*types.DraftView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.CreateDraft")
	defer span.End()

	result, err := s.inner.CreateDraft(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create draft")
	}
	span.SetAttributes(attribute.String("draft.id", result.ID))
	s.logInfo(ctx, "draft created", slog.String("draft.id", result.ID))
	return result, nil
}

func (s *Service) GetDraft(ctx context.Context, draftID string) (*types.DraftView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.GetDraft", trace.WithAttributes(attribute.String("draft.id", draftID)))
	defer span.End()

	result, err := s.inner.GetDraft(ctx, draftID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load draft", slog.String("draft.id", draftID))
	}
	return result, nil
}

func (s *Service) DiscardDraft(ctx context.Context, draftID string) error {
	ctx, span := s.tracer.Start(ctx, "OrderingService.DiscardDraft", trace.WithAttributes(attribute.String("draft.id", draftID)))
	defer span.End()

	if err := s.inner.DiscardDraft(ctx, draftID); err != nil {
		return s.handleError(ctx, span, err, "failed to discard draft", slog.String("draft.id", draftID))
	}
	s.metrics.recordDiscarded(ctx)
	s.logInfo(ctx, "draft discarded", slog.String("draft.id", draftID))
	return nil
}

func (s *Service) SelectCustomer(ctx context.Context, draftID string, customerID int64) (*types.DraftView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.SelectCustomer",
		trace.WithAttributes(attribute.String("draft.id", draftID), attribute.Int64("customer.id", customerID)))
	defer span.End()

	result, err := s.inner.SelectCustomer(ctx, draftID, customerID)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to select customer",
			slog.String("draft.id", draftID), slog.Int64("customer.id", customerID))
	}
	s.logInfo(ctx, "customer selected", slog.String("draft.id", draftID), slog.Int64("customer.id", customerID))
	return result, nil
}

func (s *Service) AddItem(ctx context.Context, draftID string, productID int64, quantity int) (*types.DraftView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.AddItem",
		trace.WithAttributes(attribute.String("draft.id", draftID), attribute.Int64("product.id", productID), attribute.Int("item.quantity", quantity)))
	defer span.End()

	result, err := s.inner.AddItem(ctx, draftID, productID, quantity)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to add item",
			slog.String("draft.id", draftID), slog.Int64("product.id", productID))
	}
	s.metrics.recordItemAdded(ctx)
	s.logInfo(ctx, "item added", slog.String("draft.id", draftID), slog.Int64("product.id", productID), slog.Int("items", len(result.Items)))
	return result, nil
}

func (s *Service) SetItemQuantity(ctx context.Context, draftID string, productID int64, quantity int) (*types.DraftView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.SetItemQuantity",
		trace.WithAttributes(attribute.String("draft.id", draftID), attribute.Int64("product.id", productID), attribute.Int("item.quantity", quantity)))
	defer span.End()

	result, err := s.inner.SetItemQuantity(ctx, draftID, productID, quantity)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to set item quantity",
			slog.String("draft.id", draftID), slog.Int64("product.id", productID))
	}
	return result, nil
}

func (s *Service) SetItemPrice(ctx context.Context, draftID string, productID int64, price decimal.Decimal) (*types.DraftView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.SetItemPrice",
		trace.WithAttributes(attribute.String("draft.id", draftID), attribute.Int64("product.id", productID), attribute.String("item.unit_price", price.String())))
	defer span.End()

	result, err := s.inner.SetItemPrice(ctx, draftID, productID, price)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to set item price",
			slog.String("draft.id", draftID), slog.Int64("product.id", productID))
	}
	return result, nil
}

func (s *Service) RemoveItem(ctx context.Context, draftID string, productID int64) (*types.DraftView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.RemoveItem",
		trace.WithAttributes(attribute.String("draft.id", draftID), attribute.Int64("product.id", productID)))
	defer span.End()

	result, err := s.inner.RemoveItem(ctx, draftID, productID)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to remove item",
			slog.String("draft.id", draftID), slog.Int64("product.id", productID))
	}
	s.logInfo(ctx, "item removed", slog.String("draft.id", draftID), slog.Int64("product.id", productID))
	return result, nil
}

func (s *Service) UpdatePricing(ctx context.Context, draftID string, inputs domain.PricingInputs) (*types.DraftView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.UpdatePricing", trace.WithAttributes(attribute.String("draft.id", draftID)))
	defer span.End()

	result, err := s.inner.UpdatePricing(ctx, draftID, inputs)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to update pricing", slog.String("draft.id", draftID))
	}
	span.SetAttributes(attribute.String("draft.total", result.Pricing.Total.String()))
	return result, nil
}

func (s *Service) CheckStock(ctx context.Context, draftID string) (*types.StockCheck, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.CheckStock", trace.WithAttributes(attribute.String("draft.id", draftID)))
	defer span.End()

	result, err := s.inner.CheckStock(ctx, draftID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to check stock", slog.String("draft.id", draftID))
	}
	span.SetAttributes(attribute.Bool("stock.available", result.Available))
	s.logInfo(ctx, "stock checked", slog.String("draft.id", draftID), slog.Bool("available", result.Available))
	return result, nil
}

func (s *Service) Submit(ctx context.Context, draftID string) (*types.SubmissionResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.Submit", trace.WithAttributes(attribute.String("draft.id", draftID)))
	defer span.End()

	s.logInfo(ctx, "submitting draft", slog.String("draft.id", draftID))
	result, err := s.inner.Submit(ctx, draftID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "submission refused", slog.String("draft.id", draftID))
	}
	outcome := result.Outcome
	s.metrics.recordSubmission(ctx, outcome.Kind)
	span.SetAttributes(attribute.String("submission.outcome", string(outcome.Kind)))
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		s.logInfo(ctx, "order created", slog.String("draft.id", draftID),
			slog.String("order.number", outcome.Confirmation.OrderNumber), slog.Int64("order.id", outcome.Confirmation.ID))
	case domain.OutcomeInvalid:
		s.logInfo(ctx, "draft failed validation", slog.String("draft.id", draftID), slog.Int("errors", len(outcome.Errors)))
	default:
		span.SetStatus(codes.Error, outcome.Message)
		s.logError(ctx, "order creation failed", nil, slog.String("draft.id", draftID),
			slog.String("outcome", string(outcome.Kind)), slog.String("message", outcome.Message))
	}
	return result, nil
}

func (s *Service) LookupProducts(ctx context.Context, draftID, query string) (uint64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.LookupProducts", trace.WithAttributes(attribute.String("draft.id", draftID)))
	defer span.End()

	seq, err := s.inner.LookupProducts(ctx, draftID, query)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to schedule product lookup", slog.String("draft.id", draftID))
	}
	span.SetAttributes(attribute.Int64("lookup.sequence", int64(seq)))
	return seq, nil
}

func (s *Service) LookupCustomers(ctx context.Context, draftID, query string) (uint64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.LookupCustomers", trace.WithAttributes(attribute.String("draft.id", draftID)))
	defer span.End()

	seq, err := s.inner.LookupCustomers(ctx, draftID, query)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to schedule customer lookup", slog.String("draft.id", draftID))
	}
	span.SetAttributes(attribute.Int64("lookup.sequence", int64(seq)))
	return seq, nil
}

func (s *Service) ProductLookup(ctx context.Context, draftID string) (*types.LookupView[domain.ProductSnapshot], error) {
	return s.inner.ProductLookup(ctx, draftID)
}

func (s *Service) CustomerLookup(ctx context.Context, draftID string) (*types.LookupView[domain.CustomerSnapshot], error) {
	return s.inner.CustomerLookup(ctx, draftID)
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	submissions     metric.Int64Counter
	itemsAdded      metric.Int64Counter
	draftsDiscarded metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	submissions, _ := m.Int64Counter("ordering.service.submissions", metric.WithDescription("Number of submission attempts by outcome"))
	itemsAdded, _ := m.Int64Counter("ordering.service.items_added", metric.WithDescription("Number of products added to drafts"))
	draftsDiscarded, _ := m.Int64Counter("ordering.service.drafts_discarded", metric.WithDescription("Number of drafts discarded"))
	return serviceMetrics{submissions: submissions, itemsAdded: itemsAdded, draftsDiscarded: draftsDiscarded}
}

func (m serviceMetrics) recordSubmission(ctx context.Context, kind domain.OutcomeKind) {
	if m.submissions != nil {
		m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(kind))))
	}
}

func (m serviceMetrics) recordItemAdded(ctx context.Context) {
	if m.itemsAdded != nil {
		m.itemsAdded.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDiscarded(ctx context.Context) {
	if m.draftsDiscarded != nil {
		m.draftsDiscarded.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
