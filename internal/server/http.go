// Package server assembles the HTTP routes of the API service.
package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/catalog"
	"github.com/cyberguardian/platform/internal/contact"
	"github.com/cyberguardian/platform/internal/dashboard"
	"github.com/cyberguardian/platform/internal/feedback"
	"github.com/cyberguardian/platform/internal/logging"
	"github.com/cyberguardian/platform/internal/metrics"
	"github.com/cyberguardian/platform/internal/play"
	"github.com/cyberguardian/platform/internal/tutor"
	"github.com/cyberguardian/platform/internal/users"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// Handlers groups the per-domain HTTP handlers.
type Handlers struct {
	Auth      *auth.HTTPHandlers
	Catalog   *catalog.HTTPHandlers
	Play      *play.HTTPHandlers
	Tutor     *tutor.HTTPHandlers
	Feedback  *feedback.HTTPHandlers
	Dashboard *dashboard.HTTPHandlers
	Users     *users.HTTPHandlers
	Contact   *contact.HTTPHandlers
}

// Options carries the cross-cutting pieces of the server.
type Options struct {
	Addr       string
	Tokens     auth.TokenValidator
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Dependency map[string]Pinger
}

// NewHTTPServer wires every route behind the auth and metrics middleware.
func NewHTTPServer(opts Options, h Handlers, logger zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:    opts.Addr,
		Handler: NewHandler(opts, h, logger),
	}
}

// NewHandler builds the routed handler without binding an address.
func NewHandler(opts Options, h Handlers, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, opts.Dependency); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	authed := func(fn http.HandlerFunc) http.Handler { return auth.RequireAuth(fn) }
	admin := func(fn http.HandlerFunc) http.Handler { return auth.RequireAdmin(fn) }

	// Accounts
	mux.HandleFunc("POST /v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /v1/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /v1/auth/refresh", h.Auth.RefreshToken)
	mux.HandleFunc("POST /v1/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /v1/oauth/{provider}/start", h.Auth.OAuthStart)
	mux.HandleFunc("GET /v1/oauth/{provider}/callback", h.Auth.OAuthCallback)
	mux.Handle("GET /v1/users/me", authed(h.Auth.GetMe))

	// Catalog and play
	mux.Handle("GET /v1/quizzes", authed(h.Catalog.List))
	mux.Handle("POST /v1/quizzes/{id}/sessions", authed(h.Play.Start))
	mux.Handle("POST /v1/quizzes/{id}/feedback", authed(h.Feedback.Submit))
	mux.Handle("POST /v1/reviews", authed(h.Play.StartReview))
	mux.Handle("GET /v1/sessions/{id}", authed(h.Play.Get))
	mux.Handle("POST /v1/sessions/{id}/answer", authed(h.Play.Answer))
	mux.Handle("POST /v1/sessions/{id}/next", authed(h.Play.Next))

	// Tutor
	mux.Handle("POST /v1/tutor/ask", authed(h.Tutor.Ask))
	mux.Handle("GET /v1/tutor/history", authed(h.Tutor.History))
	mux.Handle("POST /v1/tutor/quiz-feedback", authed(h.Tutor.QuizFeedback))
	mux.Handle("GET /ws/tutor", authed(h.Tutor.ServeWS))

	mux.Handle("GET /v1/dashboard", authed(h.Dashboard.Mine))
	mux.HandleFunc("POST /v1/contact", h.Contact.Submit)

	// Administration
	mux.Handle("POST /v1/admin/quizzes", admin(h.Catalog.Create))
	mux.Handle("GET /v1/admin/quizzes/{id}", admin(h.Catalog.Get))
	mux.Handle("PUT /v1/admin/quizzes/{id}", admin(h.Catalog.Replace))
	mux.Handle("DELETE /v1/admin/quizzes/{id}", admin(h.Catalog.Delete))
	mux.Handle("GET /v1/admin/feedback", admin(h.Feedback.List))
	mux.Handle("GET /v1/admin/dashboard", admin(h.Dashboard.Admin))
	mux.Handle("GET /v1/admin/users", admin(h.Users.List))
	mux.Handle("PUT /v1/admin/users/{id}", admin(h.Users.Update))
	mux.Handle("DELETE /v1/admin/users/{id}", admin(h.Users.Delete))
	mux.Handle("GET /v1/admin/users/{id}/progress", admin(h.Users.Progress))

	// instrument must see the same *http.Request the mux annotates with its pattern.
	var handler http.Handler = instrument(mux, opts.Metrics, logger)
	handler = auth.AuthMiddleware(opts.Tokens, logger)(handler)
	return handler
}

func pingDependencies(ctx context.Context, deps map[string]Pinger) error {
	log := logging.FromContext(ctx)
	for name, ping := range deps {
		if err := ping(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("dependency unavailable")
			return err
		}
	}
	return nil
}
