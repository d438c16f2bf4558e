// Package auth serves sign-up, sign-in and sign-out, and provides the bearer
// token middleware the other modules mount behind.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subreminder/handler"
	"github.com/dmitrymomot/subreminder/pkg/binder"
	"github.com/dmitrymomot/subreminder/pkg/ratelimiter"
	"github.com/dmitrymomot/subreminder/svc/account"
)

var errorMappings = []handler.ErrorMapping{
	{Target: account.ErrUserNotFound, HTTP: handler.ErrNotFound},
	{Target: account.ErrEmailTaken, HTTP: handler.ErrConflict},
	{Target: account.ErrInvalidCredentials, HTTP: handler.ErrUnauthorized},
	{Target: account.ErrForbidden, HTTP: handler.ErrForbidden},
}

type Module struct {
	accounts account.Service
	limiter  ratelimiter.RateLimiter
}

type Option func(*Module)

// WithRateLimiter limits sign-up and sign-in attempts per client IP.
func WithRateLimiter(l ratelimiter.RateLimiter) Option {
	return func(m *Module) {
		m.limiter = l
	}
}

func New(accounts account.Service, opts ...Option) *Module {
	if accounts == nil {
		panic("auth: account service is required")
	}
	m := &Module{accounts: accounts}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle returns the routes to mount under /auth.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if m.limiter != nil {
			r.Use(ratelimiter.Middleware(m.limiter, ratelimiter.ByClientIP, LimitExceeded))
		}
		r.Post("/sign-up", handler.Wrap(m.signUp,
			handler.WithBinders[handler.Context, account.SignUpParams](binder.JSON()),
		))
		r.Post("/sign-in", handler.Wrap(m.signIn,
			handler.WithBinders[handler.Context, account.SignInParams](binder.JSON()),
		))
	})
	r.Post("/sign-out", handler.Wrap(m.signOut))

	return r
}

type session struct {
	Token string       `json:"token"`
	User  account.User `json:"user"`
}

func (m *Module) signUp(ctx handler.Context, req account.SignUpParams) handler.Response {
	user, token, err := m.accounts.SignUp(ctx, req)
	if err != nil {
		return handler.JSONError(handler.MapError(err, errorMappings...))
	}
	return handler.JSON(session{Token: token, User: user},
		handler.WithJSONStatus(http.StatusCreated),
		handler.WithMessage("User created successfully"),
	)
}

func (m *Module) signIn(ctx handler.Context, req account.SignInParams) handler.Response {
	user, token, err := m.accounts.SignIn(ctx, req)
	if err != nil {
		return handler.JSONError(handler.MapError(err, errorMappings...))
	}
	return handler.JSON(session{Token: token, User: user}, handler.WithMessage("User signed in successfully"))
}

// signOut is a no-op: tokens are stateless and expire on their own.
func (m *Module) signOut(handler.Context, struct{}) handler.Response {
	return handler.JSON(nil, handler.WithMessage("User signed out successfully"))
}
