/**
 * @description
 * This file wires the chi router: standard middleware (request logging, panic
 * recovery, request timeout) and the route table for the ledger API.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP route table.
func NewRouter(service *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", service.handleHealth)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", service.handleCreateAccount)
		r.Get("/", service.handleListAccounts)
		r.Route("/{number}", func(r chi.Router) {
			r.Get("/", service.handleGetAccount)
			r.Delete("/", service.handleDeleteAccount)
			r.Put("/customer", service.handleUpdateCustomer)
			r.Post("/deposit", service.handleDeposit)
			r.Post("/withdraw", service.handleWithdraw)
			r.Get("/transactions", service.handleListTransactions)
			r.Get("/statement", service.handleStatement)
		})
	})
	r.Post("/transfers", service.handleTransfer)
	r.Get("/transactions", service.handleAllTransactions)
	r.Post("/simulate", service.handleSimulate)

	return r
}
