// Package binder fills request structs from JSON bodies, query strings and
// path parameters.
//
// Each binder is a func(*http.Request, any) error and is meant to be passed to
// handler.Wrap through handler.WithBinders. Binders read only their own struct
// tags (`json`, `query`, `path`), so several can be applied to one request type:
//
//	type UpdateRequest struct {
//		ID   uuid.UUID `path:"id" json:"-"`
//		Name *string   `json:"name"`
//	}
//
//	r.Put("/{id}", handler.Wrap(update,
//		handler.WithBinders[handler.Context, UpdateRequest](binder.Path(chi.URLParam), binder.JSON()),
//	))
//
// Fields implementing encoding.TextUnmarshaler (uuid.UUID, time.Time,
// decimal.Decimal) are parsed through it.
package binder
