package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/pkg/sanitizer"
	"github.com/dmitrymomot/subreminder/pkg/validator"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

// Service handles sign up, sign in and user lookups.
type Service interface {
	SignUp(ctx context.Context, params SignUpParams) (User, string, error)
	SignIn(ctx context.Context, params SignInParams) (User, string, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	Contact(ctx context.Context, id uuid.UUID) (subscription.Contact, error)
}

type service struct {
	store      Store
	tokens     TokenIssuer
	bcryptCost int
	admins     []string
	log        *slog.Logger
	now        func() time.Time
}

type Option func(*service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *service) {
		s.bcryptCost = cost
	}
}

// WithAdministrators grants the Administrator role to accounts signing up
// with one of the given emails.
func WithAdministrators(emails ...string) Option {
	return func(s *service) {
		s.admins = append(s.admins, lo.Map(emails, func(e string, _ int) string {
			return sanitizer.NormalizeEmail(e)
		})...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an account Service. Panics if store or tokens is nil.
func NewService(store Store, tokens TokenIssuer, opts ...Option) Service {
	if store == nil {
		panic("account: Store is required")
	}
	if tokens == nil {
		panic("account: TokenIssuer is required")
	}

	s := &service{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		log:        slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) SignUp(ctx context.Context, params SignUpParams) (User, string, error) {
	name := sanitizer.Name(params.Name)
	email := sanitizer.NormalizeEmail(params.Email)

	if err := validator.Apply(
		validator.RequiredString("name", name),
		validator.LengthBetween("name", name, 3, 20),
		validator.RequiredString("email", email),
		validator.ValidEmail("email", email),
		validator.RequiredString("password", params.Password),
		validator.MinLenString("password", params.Password, 6),
	); err != nil {
		return User{}, "", err
	}

	_, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return User{}, "", ErrEmailTaken
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, "", fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if slices.Contains(s.admins, email) {
		user.Role = RoleAdministrator
	}

	// The unique index is the source of truth when two sign ups race.
	if err := s.store.Create(ctx, user); err != nil {
		return User{}, "", err
	}

	token, err := s.issue(user)
	if err != nil {
		return User{}, "", err
	}

	s.log.InfoContext(ctx, "user signed up",
		logger.Component("account"),
		logger.UserID(user.ID),
		logger.Role(user.Role),
	)
	return user.withoutSecret(), token, nil
}

func (s *service) SignIn(ctx context.Context, params SignInParams) (User, string, error) {
	email := sanitizer.NormalizeEmail(params.Email)
	if err := validator.Apply(
		validator.RequiredString("email", email),
		validator.RequiredString("password", params.Password),
	); err != nil {
		return User{}, "", err
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(params.Password)); err != nil {
		s.log.WarnContext(ctx, "sign in rejected",
			logger.Component("account"),
			logger.UserID(user.ID),
			slog.String("email", sanitizer.MaskEmail(email)),
		)
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return User{}, "", err
	}
	return user.withoutSecret(), token, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return user.withoutSecret(), nil
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u User, _ int) User { return u.withoutSecret() }), nil
}

// Contact implements subscription.ContactDirectory.
func (s *service) Contact(ctx context.Context, id uuid.UUID) (subscription.Contact, error) {
	user, err := s.store.GetByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return subscription.Contact{}, errors.Join(subscription.ErrOwnerNotFound, err)
	}
	if err != nil {
		return subscription.Contact{}, err
	}
	return subscription.Contact{Name: user.Name, Email: user.Email}, nil
}

func (s *service) issue(u User) (string, error) {
	token, err := s.tokens.Issue(u.ID.String(), u.Role)
	if err != nil {
		return "", errors.Join(ErrFailedToIssueToken, err)
	}
	return token, nil
}
