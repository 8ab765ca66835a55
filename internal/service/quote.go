package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/landclear/quote-planner/internal/cache"
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/events"
	"github.com/landclear/quote-planner/internal/geocoding"
	"github.com/landclear/quote-planner/internal/service/report"
	csvrenderer "github.com/landclear/quote-planner/internal/service/report/csv"
	"github.com/landclear/quote-planner/internal/service/report/types"
	xlsxrenderer "github.com/landclear/quote-planner/internal/service/report/xlsx"
	"github.com/landclear/quote-planner/internal/store"
	"github.com/landclear/quote-planner/internal/store/model"
	"github.com/landclear/quote-planner/pkg/log"
	"github.com/landclear/quote-planner/pkg/metrics"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// LocationResolver turns what the customer typed or pinned into a location.
type LocationResolver interface {
	ResolveLocation(ctx context.Context, q geocoding.LocationQuery) (estimation.PropertyLocation, error)
}

// EventWriter queues an event without waiting for its delivery.
type EventWriter interface {
	Write(ctx context.Context, kind string, body io.Reader) error
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

type QuoteRequest struct {
	Contact    Contact
	Location   geocoding.LocationQuery
	Parameters estimation.ProjectParameters
}

type QuoteFilter struct {
	Email  string
	Zone   string
	Limit  int
	Offset int
}

// QuoteService prices requests and keeps the resulting quotes.
type QuoteService struct {
	store     store.Store
	resolver  LocationResolver
	assembler *estimation.Assembler
	cache     cache.EstimateCache
	events    EventWriter
	renderers map[types.ReportFormat]types.ReportRenderer
	processor types.QuoteProcessor
	logger    *log.StructuredLogger
}

type QuoteServiceOption func(*QuoteService)

func WithEstimateCache(c cache.EstimateCache) QuoteServiceOption {
	return func(s *QuoteService) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithEventWriter(w EventWriter) QuoteServiceOption {
	return func(s *QuoteService) {
		s.events = w
	}
}

func NewQuoteService(st store.Store, resolver LocationResolver, assembler *estimation.Assembler, opts ...QuoteServiceOption) *QuoteService {
	s := &QuoteService{
		store:     st,
		resolver:  resolver,
		assembler: assembler,
		cache:     cache.NoopCache{},
		renderers: map[types.ReportFormat]types.ReportRenderer{},
		processor: report.NewStandardQuoteProcessor(),
		logger:    log.NewDebugLogger("quote_service"),
	}

	for _, r := range []types.ReportRenderer{csvrenderer.NewRenderer(), xlsxrenderer.NewRenderer()} {
		s.renderers[r.SupportedFormat()] = r
	}

	for _, o := range opts {
		o(s)
	}
	return s
}

// Tables returns the pricing tables the service quotes with.
func (s *QuoteService) Tables() *estimation.Tables {
	return s.assembler.Tables()
}

// PreviewEstimate prices the request without storing anything.
func (s *QuoteService) PreviewEstimate(ctx context.Context, req QuoteRequest) (*estimation.Estimate, *estimation.PropertyLocation, error) {
	tracer := s.logger.WithContext(ctx).
		Operation("preview_estimate").
		WithString("package", string(req.Parameters.Package)).
		WithFloat("acreage", req.Parameters.Acreage).
		Build()

	loc, est, err := s.estimate(ctx, req)
	if err != nil {
		tracer.Error(err).Log()
		return nil, nil, err
	}

	tracer.Success().
		WithString("zone", est.Zone).
		WithString("total", est.TotalPrice.String()).
		Log()

	return est, loc, nil
}

// CreateQuote prices the request, stores the quote and announces it.
// A failure to queue the announcement is logged and does not fail the call.
func (s *QuoteService) CreateQuote(ctx context.Context, req QuoteRequest) (*model.Quote, error) {
	tracer := s.logger.WithContext(ctx).
		Operation("create_quote").
		WithString("package", string(req.Parameters.Package)).
		WithFloat("acreage", req.Parameters.Acreage).
		WithString("email", req.Contact.Email).
		Build()

	loc, est, err := s.estimate(ctx, req)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	q := model.NewQuote(uuid.New(), *loc, *est)
	q.ContactName = req.Contact.Name
	q.ContactEmail = req.Contact.Email
	q.ContactPhone = req.Contact.Phone

	ctx, err = s.store.NewTransactionContext(ctx)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	created, err := s.store.Quote().Create(ctx, q)
	if err != nil {
		_, _ = store.Rollback(ctx)
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to store quote: %w", err)
	}

	ctx, err = store.Commit(ctx)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	tracer.Step("quote_stored").WithUUID("quote_id", created.ID).Log()

	metrics.UniqueLeadsPerWeek.Observe(created.ContactEmail)
	s.publishCreated(ctx, created)

	tracer.Success().
		WithUUID("quote_id", created.ID).
		WithString("total", created.TotalPrice.String()).
		Log()

	return created, nil
}

func (s *QuoteService) GetQuote(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	q, err := s.store.Quote().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrQuoteNotFound(id)
		}
		return nil, fmt.Errorf("failed to get quote %s: %w", id, err)
	}
	return q, nil
}

// ListQuotes returns quotes newest first. A zero limit means DefaultListLimit
// and larger limits are capped at MaxListLimit.
func (s *QuoteService) ListQuotes(ctx context.Context, filter QuoteFilter) (model.QuoteList, error) {
	return s.store.Quote().List(ctx, s.queryFilter(filter), s.queryOptions(filter))
}

func (s *QuoteService) CountQuotes(ctx context.Context, filter QuoteFilter) (int64, error) {
	return s.store.Quote().Count(ctx, s.queryFilter(filter))
}

func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	tracer := s.logger.WithContext(ctx).
		Operation("delete_quote").
		WithUUID("quote_id", id).
		Build()

	if err := s.store.Quote().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrQuoteNotFound(id)
		}
		tracer.Error(err).Log()
		return fmt.Errorf("failed to delete quote %s: %w", id, err)
	}

	s.publish(ctx, events.QuoteDeletedMessageKind, events.QuoteDeletedEvent{QuoteID: id.String()})

	tracer.Success().Log()
	return nil
}

// ExportContentType returns the media type of an export format.
func (s *QuoteService) ExportContentType(format string) (string, error) {
	r, ok := s.renderers[types.ReportFormat(format)]
	if !ok {
		return "", NewErrUnsupportedExportFormat(format)
	}
	return r.ContentType(), nil
}

// ExportQuotes writes the quotes matching filter to w in the given format.
func (s *QuoteService) ExportQuotes(ctx context.Context, filter QuoteFilter, w io.Writer, format string) error {
	renderer, ok := s.renderers[types.ReportFormat(format)]
	if !ok {
		return NewErrUnsupportedExportFormat(format)
	}

	tracer := s.logger.WithContext(ctx).
		Operation("export_quotes").
		WithString("format", format).
		Build()

	quotes, err := s.store.Quote().List(ctx, s.queryFilter(filter), s.queryOptions(filter))
	if err != nil {
		tracer.Error(err).Log()
		return fmt.Errorf("failed to list quotes: %w", err)
	}

	if err := renderer.Render(s.processor.ProcessQuotes(quotes), w); err != nil {
		tracer.Error(err).Log()
		return err
	}

	tracer.Success().WithInt("quotes", len(quotes)).Log()
	return nil
}

// estimate resolves the location and computes the estimate, reading and
// filling the cache.
func (s *QuoteService) estimate(ctx context.Context, req QuoteRequest) (*estimation.PropertyLocation, *estimation.Estimate, error) {
	logger := s.logger.WithContext(ctx).Operation("estimate").Build()

	loc, err := s.resolver.ResolveLocation(ctx, req.Location)
	if err != nil {
		if errors.Is(err, estimation.ErrInvalidInput) {
			return nil, nil, NewErrInvalidQuoteRequest(err)
		}
		return nil, nil, fmt.Errorf("failed to resolve location: %w", err)
	}

	key := cache.Key(loc, req.Parameters)
	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.IncreaseEstimateCacheMetric(true)
		logger.Step("cache_hit").WithString("key", key).Log()
		return &loc, cached, nil
	case errors.Is(err, cache.ErrMiss):
		metrics.IncreaseEstimateCacheMetric(false)
	default:
		// a broken cache only costs a recomputation
		logger.Step("cache_read_failed").WithString("error", err.Error()).Log()
	}

	est, err := s.assembler.ComputeEstimate(loc, req.Parameters)
	if err != nil {
		if errors.Is(err, estimation.ErrInvalidInput) {
			return nil, nil, NewErrInvalidQuoteRequest(err)
		}
		return nil, nil, err
	}

	metrics.IncreaseEstimatesTotalMetric(string(est.Package), est.Zone)
	metrics.ObserveEstimateTotalPrice(string(est.Package), est.TotalPrice.InexactFloat64())

	if err := s.cache.Set(ctx, key, &est); err != nil {
		logger.Step("cache_write_failed").WithString("error", err.Error()).Log()
	}

	return &loc, &est, nil
}

func (s *QuoteService) publishCreated(ctx context.Context, q *model.Quote) {
	s.publish(ctx, events.QuoteCreatedMessageKind, events.QuoteCreatedEvent{
		QuoteID:       q.ID.String(),
		CreatedAt:     q.CreatedAt,
		ContactName:   q.ContactName,
		ContactEmail:  q.ContactEmail,
		Address:       q.Address,
		Zone:          q.Zone,
		Package:       q.Package,
		Urgency:       q.Urgency,
		Acreage:       q.Acreage,
		TotalPrice:    q.TotalPrice,
		EstimatedDays: q.EstimatedDays,
		Confidence:    q.Confidence,
	})
}

func (s *QuoteService) publish(ctx context.Context, kind string, event any) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.WithContext(ctx).Operation("publish").Build().Error(err).WithString("event_kind", kind).Log()
		return
	}

	if err := s.events.Write(ctx, kind, bytes.NewBuffer(data)); err != nil {
		s.logger.WithContext(ctx).Operation("publish").Build().Error(err).WithString("event_kind", kind).Log()
	}
}

func (s *QuoteService) queryFilter(filter QuoteFilter) *store.QuoteQueryFilter {
	qf := store.NewQuoteQueryFilter()
	if filter.Email != "" {
		qf = qf.ByContactEmail(filter.Email)
	}
	if filter.Zone != "" {
		qf = qf.ByZone(filter.Zone)
	}
	return qf
}

func (s *QuoteService) queryOptions(filter QuoteFilter) *store.QuoteQueryOptions {
	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	opts := store.NewQuoteQueryOptions().WithLimit(limit)
	if filter.Offset > 0 {
		opts = opts.WithOffset(filter.Offset)
	}
	return opts
}
