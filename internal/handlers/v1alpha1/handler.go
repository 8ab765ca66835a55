package v1alpha1

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/landclear/quote-planner/api/v1alpha1"
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/handlers/validator"
	"github.com/landclear/quote-planner/internal/service"
	"github.com/landclear/quote-planner/internal/store/model"
	"github.com/landclear/quote-planner/pkg/requestid"
)

// QuoteService is the part of service.QuoteService the handlers call.
type QuoteService interface {
	Tables() *estimation.Tables
	PreviewEstimate(ctx context.Context, req service.QuoteRequest) (*estimation.Estimate, *estimation.PropertyLocation, error)
	CreateQuote(ctx context.Context, req service.QuoteRequest) (*model.Quote, error)
	GetQuote(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	ListQuotes(ctx context.Context, filter service.QuoteFilter) (model.QuoteList, error)
	CountQuotes(ctx context.Context, filter service.QuoteFilter) (int64, error)
	DeleteQuote(ctx context.Context, id uuid.UUID) error
	ExportContentType(format string) (string, error)
	ExportQuotes(ctx context.Context, filter service.QuoteFilter, w io.Writer, format string) error
}

type ServiceHandler struct {
	quoteSrv  QuoteService
	validator *validator.Validator
}

func NewServiceHandler(quoteSrv QuoteService) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewQuoteValidationRules()...)
	return &ServiceHandler{
		quoteSrv:  quoteSrv,
		validator: v,
	}
}

// Routes mounts the public API on r.
func (h *ServiceHandler) Routes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalog)
		r.Post("/estimates", h.PreviewEstimate)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", h.ListQuotes)
			r.Post("/", h.CreateQuote)
			r.Get("/export", h.ExportQuotes)
			r.Get("/{id}", h.GetQuote)
			r.Delete("/{id}", h.DeleteQuote)
		})
	})
}

// (GET /health)
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, v1alpha1.Status{Status: "ok"})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, v1alpha1.Error{Message: message, RequestId: requestid.FromContextPtr(r.Context())})
}

// statusFor maps service errors to their HTTP status.
func statusFor(err error) int {
	var invalid *service.ErrInvalidQuoteRequest
	var notFound *service.ErrResourceNotFound
	var format *service.ErrUnsupportedExportFormat
	switch {
	case errors.As(err, &invalid), errors.As(err, &format):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
