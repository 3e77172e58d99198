// Package httptransport assembles the HTTP surface: middleware chain, public
// routes, and the session- and coach-gated route groups.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	auditpkg "rinkside/internal/audit"
	authhandler "rinkside/internal/auth/handler"
	"rinkside/internal/platform/health"
	"rinkside/internal/platform/middleware"
	rosterhandler "rinkside/internal/roster/handler"
	teamhandler "rinkside/internal/team/handler"
	keyhandler "rinkside/internal/teamkey/handler"
)

// Handlers collects the route owners the router mounts.
type Handlers struct {
	Auth   *authhandler.Handler
	Team   *teamhandler.Handler
	Keys   *keyhandler.Handler
	Audit  *auditpkg.Handler
	Roster *rosterhandler.Handler
	Health *health.Handler
}

// Guards collects the auth building blocks the router needs.
type Guards struct {
	Sessions middleware.CapabilityValidator
	Keys     middleware.KeyChecker
}

// NewRouter wires all endpoints with the middleware chain. Ordering matters:
// recovery outermost, then request id so every later log line carries it.
func NewRouter(h Handlers, g Guards, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.SecurityHeaders)

	h.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public surface: team picker, registration, login.
	h.Team.RegisterPublic(r)

	// Login gets its own transport-level throttle; scrypt verification is
	// expensive and the per-team lockout only triggers on counted failures.
	loginThrottle := middleware.NewThrottle(rate.Limit(2), 5, logger)
	r.Group(func(r chi.Router) {
		r.Use(loginThrottle.Handler)
		h.Auth.Register(r)
	})

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(g.Sessions, g.Keys, logger))

		h.Team.RegisterSession(r)
		h.Roster.RegisterSession(r)

		// Coach-only surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCoach(logger))

			h.Team.RegisterCoach(r)
			h.Keys.RegisterCoach(r)
			h.Audit.RegisterCoach(r)
			h.Roster.RegisterCoach(r)
		})
	})

	return r
}
