package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all stock routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stocks", func(r chi.Router) {
		r.Get("/", h.HandleListStocks)
		r.Post("/", h.HandleCreateStock)

		r.Route("/{symbol}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetStock(w, r, chi.URLParam(r, "symbol"))
			})
			r.Post("/sync", func(w http.ResponseWriter, r *http.Request) {
				h.HandleSyncStock(w, r, chi.URLParam(r, "symbol"))
			})
			r.Get("/prices/{interval}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetPrices(w, r, chi.URLParam(r, "symbol"), chi.URLParam(r, "interval"))
			})
		})
	})
}
