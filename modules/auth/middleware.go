package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subreminder/handler"
	"github.com/dmitrymomot/subreminder/pkg/jwt"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

// Authenticate rejects requests without a valid bearer token.
func Authenticate(tokens *jwt.Service) func(http.Handler) http.Handler {
	return jwt.Middleware(jwt.MiddlewareConfig{
		Service: tokens,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			handler.DefaultErrorHandler(handler.NewContext(w, r), errors.Join(handler.ErrUnauthorized, err))
		},
	})
}

// RequesterFrom returns the caller stored by Authenticate, or the zero
// Requester for anonymous requests.
func RequesterFrom(ctx context.Context) subscription.Requester {
	claims, ok := jwt.ClaimsFromContext(ctx)
	if !ok {
		return subscription.Requester{}
	}
	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return subscription.Requester{}
	}
	return subscription.Requester{UserID: id, Role: claims.Role}
}

// LimitExceeded renders rate limiter rejections as JSON envelopes.
func LimitExceeded(w http.ResponseWriter, r *http.Request, _ time.Duration, err error) {
	if err == nil {
		err = handler.ErrTooManyRequests
	}
	handler.DefaultErrorHandler(handler.NewContext(w, r), err)
}
