package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/pkg/sanitizer"
	"github.com/dmitrymomot/subreminder/pkg/validator"
)

// Service is the subscription lifecycle manager.
type Service interface {
	Create(ctx context.Context, params CreateParams, req Requester) (Subscription, error)
	Get(ctx context.Context, id uuid.UUID, req Requester) (Subscription, error)
	ListForUser(ctx context.Context, userID uuid.UUID, req Requester) ([]Subscription, error)
	ListAll(ctx context.Context, req Requester) ([]Subscription, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams, req Requester) (Subscription, error)
	Cancel(ctx context.Context, id uuid.UUID, req Requester) (Subscription, error)
	Delete(ctx context.Context, id uuid.UUID, req Requester) error

	// Snapshot returns the subscription with its owner's contact details.
	// It performs no authorization and is meant for internal callers.
	Snapshot(ctx context.Context, id uuid.UUID) (Snapshot, error)
	// ActiveIDs lists subscriptions whose derived status is active.
	ActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type service struct {
	store    Store
	contacts ContactDirectory
	runs     RunScheduler
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a Service. Panics if store or contacts is nil.
func NewService(store Store, contacts ContactDirectory, opts ...ServiceOption) Service {
	if store == nil {
		panic("subscription: Store is required")
	}
	if contacts == nil {
		panic("subscription: ContactDirectory is required")
	}

	s := &service{
		store:    store,
		contacts: contacts,
		runs:     noopScheduler{},
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, params CreateParams, req Requester) (Subscription, error) {
	if !req.authenticated() {
		return Subscription{}, ErrUnauthorized
	}

	now := s.now()
	sub := Subscription{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Name:          sanitizer.Name(params.Name),
		Currency:      lo.CoalesceOrEmpty(params.Currency, DefaultCurrency),
		Frequency:     lo.CoalesceOrEmpty(params.Frequency, DefaultFrequency),
		Category:      lo.CoalesceOrEmpty(params.Category, DefaultCategory),
		PaymentMethod: lo.CoalesceOrEmpty(params.PaymentMethod, DefaultPaymentMethod),
		Status:        StatusActive,
		StartDate:     params.StartDate.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if params.Price != nil {
		sub.Price = *params.Price
	}
	if params.RenewalDate != nil {
		sub.RenewalDate = params.RenewalDate.UTC()
	} else if !sub.StartDate.IsZero() {
		sub.RenewalDate = DeriveRenewalDate(sub.StartDate, sub.Frequency)
	}

	if err := validator.Merge(
		validator.Apply(priceRequired(params.Price)),
		validateRecord(sub, now, true),
	); err != nil {
		return Subscription{}, err
	}
	evaluate(ctx, &sub, now)

	if err := s.store.Create(ctx, sub); err != nil {
		return Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	s.log.InfoContext(ctx, "subscription created",
		logger.Component("subscription"),
		logger.SubscriptionID(sub.ID),
		logger.UserID(sub.UserID),
		slog.String("status", string(sub.Status)),
	)

	s.scheduleRun(ctx, sub.ID)
	return sub, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, req Requester) (Subscription, error) {
	if !req.authenticated() {
		return Subscription{}, ErrUnauthorized
	}

	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return Subscription{}, err
	}
	if err := authorize(sub, req); err != nil {
		return Subscription{}, err
	}
	evaluate(ctx, &sub, s.now())
	return sub, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, req Requester) ([]Subscription, error) {
	if !req.authenticated() {
		return nil, ErrUnauthorized
	}
	if req.UserID != userID {
		return nil, ErrForbidden
	}

	subs, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.evaluateAll(ctx, subs), nil
}

func (s *service) ListAll(ctx context.Context, req Requester) ([]Subscription, error) {
	if !req.authenticated() {
		return nil, ErrUnauthorized
	}
	if !req.IsAdmin() {
		return nil, ErrForbidden
	}

	subs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.evaluateAll(ctx, subs), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams, req Requester) (Subscription, error) {
	if !req.authenticated() {
		return Subscription{}, ErrUnauthorized
	}

	var before Subscription
	updated, err := s.store.Update(ctx, id, func(sub *Subscription) error {
		if err := authorize(*sub, req); err != nil {
			return err
		}
		now := s.now()
		before = *sub

		next := applyUpdate(*sub, params)
		if err := validateRecord(next, now, params.StartDate != nil); err != nil {
			return err
		}
		evaluate(ctx, &next, now)
		next.UpdatedAt = now

		*sub = next
		return nil
	})
	if err != nil {
		return Subscription{}, err
	}

	if !updated.RenewalDate.Equal(before.RenewalDate) || updated.Status != before.Status {
		s.scheduleRun(ctx, updated.ID)
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, req Requester) (Subscription, error) {
	if !req.authenticated() {
		return Subscription{}, ErrUnauthorized
	}

	updated, err := s.store.Update(ctx, id, func(sub *Subscription) error {
		if err := authorize(*sub, req); err != nil {
			return err
		}
		status, err := cancelStatus(ctx, sub.Status)
		if err != nil {
			return err
		}
		if status != sub.Status {
			sub.Status = status
			sub.UpdatedAt = s.now()
		}
		return nil
	})
	if err != nil {
		return Subscription{}, err
	}

	s.log.InfoContext(ctx, "subscription cancelled",
		logger.Component("subscription"),
		logger.SubscriptionID(updated.ID),
		logger.UserID(req.UserID),
	)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, req Requester) error {
	if !req.authenticated() {
		return ErrUnauthorized
	}

	if err := s.store.Delete(ctx, id, func(sub Subscription) error {
		return authorize(sub, req)
	}); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription deleted",
		logger.Component("subscription"),
		logger.SubscriptionID(id),
		logger.UserID(req.UserID),
	)
	return nil
}

func (s *service) Snapshot(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	evaluate(ctx, &sub, s.now())

	contact, err := s.contacts.Contact(ctx, sub.UserID)
	if err != nil {
		if errors.Is(err, ErrOwnerNotFound) {
			return Snapshot{}, errors.Join(ErrNotFound, err)
		}
		return Snapshot{}, fmt.Errorf("resolve subscription owner: %w", err)
	}

	return Snapshot{
		Subscription: sub,
		OwnerName:    contact.Name,
		OwnerEmail:   contact.Email,
	}, nil
}

func (s *service) ActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	subs, err := s.store.ListByStatus(ctx, StatusActive)
	if err != nil {
		return nil, err
	}
	active := lo.Filter(s.evaluateAll(ctx, subs), func(sub Subscription, _ int) bool {
		return sub.IsActive()
	})
	return lo.Map(active, func(sub Subscription, _ int) uuid.UUID { return sub.ID }), nil
}

func (s *service) evaluateAll(ctx context.Context, subs []Subscription) []Subscription {
	now := s.now()
	return lo.Map(subs, func(sub Subscription, _ int) Subscription {
		evaluate(ctx, &sub, now)
		return sub
	})
}

// scheduleRun asks for a reminder run. Failures are logged: the periodic
// reconciler creates missing runs later.
func (s *service) scheduleRun(ctx context.Context, id uuid.UUID) {
	runID, err := s.runs.ScheduleRun(ctx, id)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to schedule reminder run",
			logger.Component("subscription"),
			logger.SubscriptionID(id),
			logger.Error(err),
		)
		return
	}
	if runID != uuid.Nil {
		s.log.DebugContext(ctx, "reminder run scheduled",
			logger.Component("subscription"),
			logger.SubscriptionID(id),
			logger.RunID(runID),
		)
	}
}

func authorize(sub Subscription, req Requester) error {
	if req.IsAdmin() || sub.OwnedBy(req.UserID) {
		return nil
	}
	return ErrForbidden
}

// applyUpdate merges params into sub. A change of start date or frequency
// without an explicit renewal date re-derives the renewal date.
func applyUpdate(sub Subscription, p UpdateParams) Subscription {
	if p.Name != nil {
		sub.Name = sanitizer.Name(*p.Name)
	}
	if p.Price != nil {
		sub.Price = *p.Price
	}
	if p.Currency != nil {
		sub.Currency = *p.Currency
	}
	if p.Category != nil {
		sub.Category = *p.Category
	}
	if p.PaymentMethod != nil {
		sub.PaymentMethod = *p.PaymentMethod
	}

	rederive := false
	if p.Frequency != nil && *p.Frequency != sub.Frequency {
		sub.Frequency = *p.Frequency
		rederive = true
	}
	if p.StartDate != nil && !p.StartDate.Equal(sub.StartDate) {
		sub.StartDate = p.StartDate.UTC()
		rederive = true
	}

	switch {
	case p.RenewalDate != nil:
		sub.RenewalDate = p.RenewalDate.UTC()
	case rederive:
		sub.RenewalDate = DeriveRenewalDate(sub.StartDate, sub.Frequency)
	}
	return sub
}

// Prices are stored as NUMERIC(12,2).
const (
	pricePrecision = 12
	priceScale     = 2
)

// validateRecord checks every field invariant and reports all failures.
// The future start date check applies only when checkStart is set, so records
// created in the past remain editable.
func validateRecord(sub Subscription, now time.Time, checkStart bool) error {
	rules := []validator.Rule{
		validator.LengthBetween("name", sub.Name, 3, 100),
		validator.NonNegativeDecimal("price", sub.Price),
		validator.DecimalFits("price", sub.Price, pricePrecision, priceScale),
		validator.InList("currency", sub.Currency, Currencies),
		validator.InList("frequency", sub.Frequency, Frequencies),
		validator.InList("category", sub.Category, Categories),
		validator.InList("payment_method", sub.PaymentMethod, PaymentMethods),
		validator.RequiredTime("start_date", sub.StartDate),
	}
	if checkStart {
		rules = append(rules, validator.NotFutureDate("start_date", sub.StartDate, now))
	}
	if !sub.StartDate.IsZero() {
		rules = append(rules, validator.DateAfter("renewal_date", sub.RenewalDate, sub.StartDate))
	}
	return validator.Apply(rules...)
}

func priceRequired(price *decimal.Decimal) validator.Rule {
	return validator.Rule{
		Check: func() bool { return price != nil },
		Error: validator.ValidationError{
			Field:          "price",
			Message:        "field is required",
			TranslationKey: "validation.required",
		},
	}
}
