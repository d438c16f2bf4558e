// Package users exposes read access to accounts.
package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/subreminder/handler"
	"github.com/dmitrymomot/subreminder/modules/auth"
	"github.com/dmitrymomot/subreminder/pkg/binder"
	"github.com/dmitrymomot/subreminder/svc/account"
)

var errorMappings = []handler.ErrorMapping{
	{Target: account.ErrUserNotFound, HTTP: handler.ErrNotFound},
	{Target: account.ErrForbidden, HTTP: handler.ErrForbidden},
}

type Module struct {
	accounts account.Service
}

func New(accounts account.Service) *Module {
	if accounts == nil {
		panic("users: account service is required")
	}
	return &Module{accounts: accounts}
}

// Handle returns the routes to mount under /users. They expect
// auth.Authenticate to run first.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", handler.Wrap(m.list))
	r.Get("/{id}", handler.Wrap(m.get,
		handler.WithBinders[handler.Context, getRequest](binder.Path(chi.URLParam)),
	))
	return r
}

func (m *Module) list(ctx handler.Context, _ struct{}) handler.Response {
	if !auth.RequesterFrom(ctx).IsAdmin() {
		return handler.JSONError(handler.MapError(account.ErrForbidden, errorMappings...))
	}
	users, err := m.accounts.ListUsers(ctx)
	if err != nil {
		return handler.JSONError(handler.MapError(err, errorMappings...))
	}
	return handler.JSON(users)
}

type getRequest struct {
	ID uuid.UUID `path:"id"`
}

func (m *Module) get(ctx handler.Context, req getRequest) handler.Response {
	who := auth.RequesterFrom(ctx)
	if !who.IsAdmin() && who.UserID != req.ID {
		return handler.JSONError(handler.MapError(account.ErrForbidden, errorMappings...))
	}
	user, err := m.accounts.GetUser(ctx, req.ID)
	if err != nil {
		return handler.JSONError(handler.MapError(err, errorMappings...))
	}
	return handler.JSON(user)
}
