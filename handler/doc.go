// Package handler provides typed HTTP handlers that bind a request value,
// return a Response and render failures as the JSON error envelope.
//
//	type CreateRequest struct {
//		Name string `json:"name"`
//	}
//
//	create := func(ctx handler.Context, req CreateRequest) handler.Response {
//		sub, err := svc.Create(ctx, ...)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(sub, handler.WithJSONStatus(http.StatusCreated))
//	}
//
//	r.Post("/", handler.Wrap(create,
//		handler.WithBinders[handler.Context, CreateRequest](binder.JSON()),
//	))
package handler
