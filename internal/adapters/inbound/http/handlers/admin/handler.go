package admin

import (
	"net/http"

	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/storefront-gateway/internal/usecases"
	"github.com/architeacher/storefront-gateway/internal/usecases/queries"
)

// AdminHandler exposes the gateway's route table and breaker registry on the
// internal admin port.
type AdminHandler struct {
	app *usecases.WebApplication
}

func NewAdminHandler(app *usecases.WebApplication) *AdminHandler {
	return &AdminHandler{app: app}
}

func (h *AdminHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.app.Queries.FetchRoutes.Execute(r.Context(), queries.FetchRoutesQuery{})
	if err != nil {
		shared.WriteError(w, r, http.StatusInternalServerError, shared.CodeInternalError, err.Error())

		return
	}

	shared.WriteJSON(w, http.StatusOK, shared.NewRoutesView(routes))
}

func (h *AdminHandler) ListCircuitBreakers(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.app.Queries.FetchCircuitBreakers.Execute(r.Context(), queries.FetchCircuitBreakersQuery{})
	if err != nil {
		shared.WriteError(w, r, http.StatusInternalServerError, shared.CodeInternalError, err.Error())

		return
	}

	shared.WriteJSON(w, http.StatusOK, shared.NewCircuitBreakersView(snapshots))
}
