package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	addressParam = "address"
	idParam      = "id"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)
	router.Use(middleware.Compress(5, "application/json"))
	router.Use(h.withIdentity)

	router.Get("/api/version", h.getServerVersion)

	// read-only routes, identity is optional
	router.Group(func(r chi.Router) {
		r.Get("/api/vaults/{address}", h.fetchVault)
		r.Get("/api/vaults/{address}/transactions", h.listTransactions)
		r.Get("/api/vaults/{address}/transactions/{id}", h.getTransaction)
		r.Get("/api/vaults/{address}/authorized", h.isAuthorized)
	})

	// mutating routes act on behalf of the caller
	router.Group(func(r chi.Router) {
		r.Use(h.requireIdentity)

		r.Post("/api/vaults/{address}/transactions", h.proposeTransaction)
		r.Post("/api/vaults/{address}/transactions/{id}/sign", h.signTransaction)
		r.Post("/api/vaults/{address}/transactions/{id}/execute", h.executeTransaction)
		r.Post("/api/vaults/{address}/transactions/{id}/fail", h.failTransaction)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
