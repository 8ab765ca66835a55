package v1alpha1

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/landclear/quote-planner/internal/handlers/v1alpha1/mappers"
)

// (GET /api/v1/catalog)
func (h *ServiceHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, mappers.CatalogToApi(h.quoteSrv.Tables()))
}
