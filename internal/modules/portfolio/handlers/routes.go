package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/activity", h.HandleAllActivity)

	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleListPortfolios)
		r.Post("/", h.HandleCreatePortfolio)

		r.Route("/{id}", func(r chi.Router) {
			id := func(r *http.Request) string { return chi.URLParam(r, "id") }

			r.Get("/", func(w http.ResponseWriter, r *http.Request) { h.HandleGetPortfolio(w, r, id(r)) })
			r.Delete("/", func(w http.ResponseWriter, r *http.Request) { h.HandleDeletePortfolio(w, r, id(r)) })

			// Holdings
			r.Post("/holdings", func(w http.ResponseWriter, r *http.Request) { h.HandleAddHolding(w, r, id(r)) })
			r.Get("/holdings/combined", func(w http.ResponseWriter, r *http.Request) { h.HandleCombinedHoldings(w, r, id(r)) })
			r.Delete("/holdings/{holdingID}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleRemoveHolding(w, r, id(r), chi.URLParam(r, "holdingID"))
			})

			r.Get("/activity", func(w http.ResponseWriter, r *http.Request) { h.HandleActivity(w, r, id(r)) })

			// Analytics
			r.Get("/capital", func(w http.ResponseWriter, r *http.Request) { h.HandleCapital(w, r, id(r)) })
			r.Get("/rebalance", func(w http.ResponseWriter, r *http.Request) { h.HandleRebalance(w, r, id(r)) })
			r.Post("/refresh", func(w http.ResponseWriter, r *http.Request) { h.HandleRefresh(w, r, id(r)) })
			r.Get("/prices/{interval}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetPrices(w, r, id(r), chi.URLParam(r, "interval"), false)
			})
			r.Get("/prices/{interval}/change", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetPrices(w, r, id(r), chi.URLParam(r, "interval"), true)
			})
		})
	})
}
