// Package app assembles the HTTP API from the feature modules.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subreminder/handler"
	"github.com/dmitrymomot/subreminder/modules/auth"
	"github.com/dmitrymomot/subreminder/modules/subscriptions"
	"github.com/dmitrymomot/subreminder/modules/users"
	"github.com/dmitrymomot/subreminder/modules/workflows"
	"github.com/dmitrymomot/subreminder/pkg/clientip"
	"github.com/dmitrymomot/subreminder/pkg/httpserver"
	"github.com/dmitrymomot/subreminder/pkg/jwt"
	"github.com/dmitrymomot/subreminder/pkg/ratelimiter"
	"github.com/dmitrymomot/subreminder/pkg/requestid"
	"github.com/dmitrymomot/subreminder/svc/account"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

// Deps are the services the API is built from. The limiters, WorkflowSecret
// and HealthChecks are optional.
type Deps struct {
	Accounts       account.Service
	Subscriptions  subscription.Service
	Reminders      workflows.Trigger
	Tokens         *jwt.Service
	APILimiter     ratelimiter.RateLimiter
	AuthLimiter    ratelimiter.RateLimiter
	WorkflowSecret string
	HealthChecks   map[string]httpserver.Check
	Logger         *slog.Logger
}

// NewRouter mounts every module under /api/v1.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	authOpts := []auth.Option{}
	if d.AuthLimiter != nil {
		authOpts = append(authOpts, auth.WithRateLimiter(d.AuthLimiter))
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.DefaultErrorHandler(handler.NewContext(w, r), handler.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.DefaultErrorHandler(handler.NewContext(w, r),
			handler.NewHTTPError(http.StatusMethodNotAllowed, "method_not_allowed"))
	})

	r.Get("/health", httpserver.HealthCheckHandler(d.Logger, d.HealthChecks))

	r.Route("/api/v1", func(r chi.Router) {
		if d.APILimiter != nil {
			r.Use(ratelimiter.Middleware(d.APILimiter, ratelimiter.ByClientIP, auth.LimitExceeded))
		}
		r.Mount("/auth", auth.New(d.Accounts, authOpts...).Handle())
		r.Mount("/workflows", workflows.New(d.Reminders, workflows.WithSecret(d.WorkflowSecret)).Handle())

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(d.Tokens))
			r.Mount("/users", users.New(d.Accounts).Handle())
			r.Mount("/subscriptions", subscriptions.New(d.Subscriptions).Handle())
		})
	})

	return r
}
