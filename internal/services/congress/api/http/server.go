// Package http exposes the congress service as a JSON API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/statecraft/congress/internal/services/congress/auth"
	"github.com/statecraft/congress/internal/services/congress/service"
)

// VerifyFunc validates a bearer token and returns its claims.
type VerifyFunc func(token string) (auth.Claims, error)

// Handler serves the congress JSON API.
type Handler struct {
	svc    *service.Service
	verify VerifyFunc
}

// New builds the API router. verify authenticates bearer tokens on every
// /v1 route; the health endpoint stays open.
func New(svc *service.Service, verify VerifyFunc) http.Handler {
	h := &Handler{svc: svc, verify: verify}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(h.requireCredential)

		r.Post("/members", h.handleRegisterMember)
		r.Get("/members", h.handleListMembers)
		r.Get("/members/{principal}", h.handleGetMember)

		r.Post("/bills", h.handleProposeBill)
		r.Get("/bills", h.handleListBills)
		r.Get("/bills/{index}", h.handleGetBill)
		r.Post("/bills/{index}/votes", h.handleCastVote)

		r.Post("/nominations", h.handleNominateMember)
		r.Post("/nominations/{candidate}/ratifications", h.handleRatifyMember)

		r.Get("/journal", h.handleJournal)
	})

	return r
}

// NewWithConfig builds the API router using a verifier bound to cfg.
func NewWithConfig(svc *service.Service, cfg auth.Config) http.Handler {
	return New(svc, func(token string) (auth.Claims, error) {
		return auth.VerifyCredential(token, cfg)
	})
}
