package v1alpha1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/landclear/quote-planner/api/v1alpha1"
	"github.com/landclear/quote-planner/internal/handlers/v1alpha1/mappers"
	"github.com/landclear/quote-planner/internal/service"
	"github.com/landclear/quote-planner/pkg/log"
)

// (POST /api/v1/estimates)
func (h *ServiceHandler) PreviewEstimate(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("quote_handler").
		WithContext(r.Context()).
		Operation("preview_estimate").
		Build()

	var body v1alpha1.EstimateRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		logger.Error(err).WithString("step", "decode").Log()
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := h.validator.Struct(body); err != nil {
		logger.Error(err).WithString("step", "validation").Log()
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	est, loc, err := h.quoteSrv.PreviewEstimate(r.Context(), mappers.EstimateRequestFromApi(body))
	if err != nil {
		logger.Error(err).Log()
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	logger.Success().
		WithString("zone", est.Zone).
		WithString("total_price", est.TotalPrice.StringFixed(2)).
		WithInt("confidence", est.Confidence).
		Log()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, mappers.EstimateResponseToApi(*est, *loc))
}

// (POST /api/v1/quotes)
func (h *ServiceHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("quote_handler").
		WithContext(r.Context()).
		Operation("create_quote").
		Build()

	var body v1alpha1.QuoteCreate
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		logger.Error(err).WithString("step", "decode").Log()
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := h.validator.Struct(body); err != nil {
		logger.Error(err).WithString("step", "validation").Log()
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.quoteSrv.CreateQuote(r.Context(), mappers.QuoteRequestFromApi(body))
	if err != nil {
		logger.Error(err).Log()
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	logger.Success().WithUUID("quote_id", quote.ID).Log()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, mappers.QuoteToApi(*quote))
}

// (GET /api/v1/quotes)
func (h *ServiceHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("quote_handler").
		WithContext(r.Context()).
		Operation("list_quotes").
		Build()

	filter, err := filterFromQuery(r)
	if err != nil {
		logger.Error(err).WithString("step", "parse_query").Log()
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	quotes, err := h.quoteSrv.ListQuotes(r.Context(), filter)
	if err != nil {
		logger.Error(err).Log()
		writeError(w, r, statusFor(err), fmt.Sprintf("failed to list quotes: %v", err))
		return
	}

	total, err := h.quoteSrv.CountQuotes(r.Context(), filter)
	if err != nil {
		logger.Error(err).WithString("step", "count").Log()
		writeError(w, r, statusFor(err), fmt.Sprintf("failed to count quotes: %v", err))
		return
	}

	logger.Success().WithInt("count", len(quotes)).Log()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, mappers.QuoteListToApi(quotes, total))
}

// (GET /api/v1/quotes/{id})
func (h *ServiceHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("quote_handler").
		WithContext(r.Context()).
		Operation("get_quote").
		WithString("id", chi.URLParam(r, "id")).
		Build()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error(err).WithString("step", "parse_id").Log()
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid quote id: %v", err))
		return
	}

	quote, err := h.quoteSrv.GetQuote(r.Context(), id)
	if err != nil {
		logger.Error(err).Log()
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	logger.Success().Log()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, mappers.QuoteToApi(*quote))
}

// (DELETE /api/v1/quotes/{id})
func (h *ServiceHandler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("quote_handler").
		WithContext(r.Context()).
		Operation("delete_quote").
		WithString("id", chi.URLParam(r, "id")).
		Build()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error(err).WithString("step", "parse_id").Log()
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid quote id: %v", err))
		return
	}

	if err := h.quoteSrv.DeleteQuote(r.Context(), id); err != nil {
		logger.Error(err).Log()
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	logger.Success().Log()
	w.WriteHeader(http.StatusNoContent)
}

// (GET /api/v1/quotes/export)
func (h *ServiceHandler) ExportQuotes(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	logger := log.NewDebugLogger("quote_handler").
		WithContext(r.Context()).
		Operation("export_quotes").
		WithString("format", format).
		Build()

	filter, err := filterFromQuery(r)
	if err != nil {
		logger.Error(err).WithString("step", "parse_query").Log()
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	contentType, err := h.quoteSrv.ExportContentType(format)
	if err != nil {
		logger.Error(err).Log()
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=quotes.%s", format))
	// headers are committed by the first write; a render failure after that
	// can only be logged
	if err := h.quoteSrv.ExportQuotes(r.Context(), filter, w, format); err != nil {
		logger.Error(err).Log()
		return
	}

	logger.Success().Log()
}

func filterFromQuery(r *http.Request) (service.QuoteFilter, error) {
	q := r.URL.Query()
	filter := service.QuoteFilter{
		Email: q.Get("email"),
		Zone:  q.Get("zone"),
	}

	var err error
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit < 0 {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
	}
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil || filter.Offset < 0 {
			return filter, fmt.Errorf("invalid offset %q", v)
		}
	}
	return filter, nil
}
