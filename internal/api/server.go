// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Authorization gates are composed HERE, not inside domain handlers, so
    the protection of every route group is visible in one place.
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/giftme/giftme/internal/auth"
	"github.com/giftme/giftme/internal/giftlist"
	"github.com/giftme/giftme/internal/identity"
	"github.com/giftme/giftme/internal/platform/config"
	"github.com/giftme/giftme/internal/platform/constants"
	"github.com/giftme/giftme/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles sign-up, sign-in, sign-out, and credential changes.
	Auth *auth.Handler

	// Account handles the caller's own account record.
	Account *identity.Handler

	// Admin handles the access-request queue.
	Admin *identity.AdminHandler

	// GiftList handles gift lists and their ideas.
	GiftList *giftlist.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups behind their authorization gates.
func NewServer(
	context context.Context,
	cfg *config.Config,
	log *slog.Logger,
	sessions middleware.SessionRefresher,
	directory middleware.AccountDirectory,
	h Handlers,
) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Authorization Gates
	sessionGate := middleware.RefreshSession(cfg.FirebaseTrustedIssuer, sessions)
	memberGate := middleware.RequireRole(directory,
		identity.RoleUser, identity.RoleMember, identity.RoleAdmin, identity.RoleOwner)
	adminGate := middleware.RequireRole(directory,
		identity.RoleAdmin, identity.RoleOwner)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		// Sign-up/sign-in stay public; the auth handler mounts the session
		// gate on its private sign-out route itself.
		api.Mount("/auth", h.Auth.Routes(sessionGate))

		api.Group(func(private chi.Router) {
			private.Use(sessionGate)
			private.Mount("/account", h.Account.Routes())
		})

		api.Group(func(member chi.Router) {
			member.Use(sessionGate, memberGate)
			member.Mount("/lists", h.GiftList.Routes())
		})

		api.Group(func(admin chi.Router) {
			admin.Use(sessionGate, adminGate)
			admin.Mount("/admin", h.Admin.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
