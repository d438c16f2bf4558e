package handler

import (
	"log/slog"

	"github.com/dmitrymomot/subreminder/pkg/logger"
)

// DefaultErrorHandler writes err as a JSON failure envelope. Server errors
// are logged with the request context.
func DefaultErrorHandler(ctx Context, err error) {
	resp := JSONError(err).(*jsonResponse)
	if resp.status >= 500 {
		slog.Default().ErrorContext(ctx, "request failed",
			logger.Component("http"),
			slog.String("method", ctx.Request().Method),
			slog.String("path", ctx.Request().URL.Path),
			logger.Error(err),
		)
	}
	if rerr := resp.Render(ctx.ResponseWriter(), ctx.Request()); rerr != nil {
		slog.Default().ErrorContext(ctx, "failed to write error response", logger.Error(rerr))
	}
}
