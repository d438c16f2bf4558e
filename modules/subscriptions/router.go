// Package subscriptions serves the subscription CRUD and cancel routes.
package subscriptions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subreminder/handler"
	"github.com/dmitrymomot/subreminder/modules/auth"
	"github.com/dmitrymomot/subreminder/pkg/binder"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

var errorMappings = []handler.ErrorMapping{
	{Target: subscription.ErrNotFound, HTTP: handler.ErrNotFound},
	{Target: subscription.ErrOwnerNotFound, HTTP: handler.ErrNotFound},
	{Target: subscription.ErrUnauthorized, HTTP: handler.ErrUnauthorized},
	{Target: subscription.ErrForbidden, HTTP: handler.ErrForbidden},
	{Target: subscription.ErrConflict, HTTP: handler.ErrConflict},
	{Target: subscription.ErrInvalidStatus, HTTP: handler.ErrConflict},
	{Target: subscription.ErrInvalidPayload, HTTP: handler.ErrBadRequest},
}

func failure(err error) handler.Response {
	return handler.JSONError(handler.MapError(err, errorMappings...))
}

type Module struct {
	subs subscription.Service
}

func New(subs subscription.Service) *Module {
	if subs == nil {
		panic("subscriptions: subscription service is required")
	}
	return &Module{subs: subs}
}

// Handle returns the routes to mount under /subscriptions. They expect
// auth.Authenticate to run first.
func (m *Module) Handle() http.Handler {
	path := binder.Path(chi.URLParam)
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(m.listAll))
	r.Post("/", handler.Wrap(m.create,
		handler.WithBinders[handler.Context, createRequest](binder.JSON()),
	))
	r.Get("/user/{id}", handler.Wrap(m.listForUser,
		handler.WithBinders[handler.Context, idRequest](path),
	))
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Wrap(m.get,
			handler.WithBinders[handler.Context, idRequest](path),
		))
		r.Put("/", handler.Wrap(m.update,
			handler.WithBinders[handler.Context, updateRequest](path, binder.JSON()),
		))
		r.Delete("/", handler.Wrap(m.delete,
			handler.WithBinders[handler.Context, idRequest](path),
		))
		r.Put("/cancel", handler.Wrap(m.cancel,
			handler.WithBinders[handler.Context, idRequest](path),
		))
	})

	return r
}

func (m *Module) listAll(ctx handler.Context, _ struct{}) handler.Response {
	subs, err := m.subs.ListAll(ctx, auth.RequesterFrom(ctx))
	if err != nil {
		return failure(err)
	}
	return handler.JSON(subs)
}

func (m *Module) listForUser(ctx handler.Context, req idRequest) handler.Response {
	subs, err := m.subs.ListForUser(ctx, req.ID, auth.RequesterFrom(ctx))
	if err != nil {
		return failure(err)
	}
	return handler.JSON(subs)
}

func (m *Module) get(ctx handler.Context, req idRequest) handler.Response {
	sub, err := m.subs.Get(ctx, req.ID, auth.RequesterFrom(ctx))
	if err != nil {
		return failure(err)
	}
	return handler.JSON(sub)
}

func (m *Module) create(ctx handler.Context, req createRequest) handler.Response {
	sub, err := m.subs.Create(ctx, req.params(), auth.RequesterFrom(ctx))
	if err != nil {
		return failure(err)
	}
	return handler.JSON(sub,
		handler.WithJSONStatus(http.StatusCreated),
		handler.WithMessage("Subscription created successfully"),
	)
}

func (m *Module) update(ctx handler.Context, req updateRequest) handler.Response {
	sub, err := m.subs.Update(ctx, req.ID, req.params(), auth.RequesterFrom(ctx))
	if err != nil {
		return failure(err)
	}
	return handler.JSON(sub, handler.WithMessage("Subscription updated successfully"))
}

func (m *Module) cancel(ctx handler.Context, req idRequest) handler.Response {
	sub, err := m.subs.Cancel(ctx, req.ID, auth.RequesterFrom(ctx))
	if err != nil {
		return failure(err)
	}
	return handler.JSON(sub, handler.WithMessage("Subscription cancelled successfully"))
}

func (m *Module) delete(ctx handler.Context, req idRequest) handler.Response {
	if err := m.subs.Delete(ctx, req.ID, auth.RequesterFrom(ctx)); err != nil {
		return failure(err)
	}
	return handler.JSON(nil, handler.WithMessage("Subscription deleted successfully"))
}
