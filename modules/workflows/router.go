// Package workflows exposes the reminder trigger used by external schedulers.
package workflows

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/subreminder/handler"
	"github.com/dmitrymomot/subreminder/pkg/binder"
	"github.com/dmitrymomot/subreminder/pkg/validator"
	"github.com/dmitrymomot/subreminder/svc/reminder"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

// SecretHeader carries the shared secret when one is configured.
const SecretHeader = "X-Workflow-Secret"

// Trigger finds or creates the run for a subscription and advances it.
// *reminder.Engine satisfies it.
type Trigger interface {
	Trigger(ctx context.Context, subscriptionID uuid.UUID) (uuid.UUID, reminder.Outcome, error)
}

type Module struct {
	engine Trigger
	secret string
}

type Option func(*Module)

// WithSecret requires callers to send secret in SecretHeader.
func WithSecret(secret string) Option {
	return func(m *Module) {
		m.secret = secret
	}
}

func New(engine Trigger, opts ...Option) *Module {
	if engine == nil {
		panic("workflows: reminder engine is required")
	}
	m := &Module{engine: engine}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle returns the routes to mount under /workflows.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(m.requireSecret)
	r.Post("/subscription/reminder", handler.Wrap(m.reminder,
		handler.WithBinders[handler.Context, reminderRequest](binder.JSON()),
	))
	return r
}

func (m *Module) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(m.secret)) != 1 {
			handler.DefaultErrorHandler(handler.NewContext(w, r), handler.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type reminderRequest struct {
	SubscriptionID uuid.UUID `json:"subscriptionId"`
}

type reminderResult struct {
	RunID *uuid.UUID `json:"run_id,omitempty"`
	reminder.Outcome
}

// reminder reports success whenever the request is well formed: a missing or
// inactive subscription simply ends the run without side effects.
func (m *Module) reminder(ctx handler.Context, req reminderRequest) handler.Response {
	if err := validator.Apply(validator.RequiredUUID("subscriptionId", req.SubscriptionID)); err != nil {
		return handler.JSONError(err)
	}

	runID, out, err := m.engine.Trigger(ctx, req.SubscriptionID)
	switch {
	case errors.Is(err, subscription.ErrNotFound):
		return handler.JSON(reminderResult{Outcome: reminder.Outcome{Done: true}},
			handler.WithMessage("Subscription not found, nothing to do"))
	case err != nil:
		return handler.JSONError(err)
	}

	return handler.JSON(reminderResult{RunID: &runID, Outcome: out}, handler.WithMessage("Reminder workflow advanced"))
}
