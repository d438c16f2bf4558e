package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/subreminder/pkg/jwt"
	"github.com/dmitrymomot/subreminder/pkg/validator"
	"github.com/dmitrymomot/subreminder/svc/account"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

func newService(t *testing.T, opts ...account.Option) (account.Service, *account.MemoryStore, *jwt.Service) {
	t.Helper()

	now := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	tokens, err := jwt.New(jwt.Config{Secret: "test-secret", TTL: time.Hour, Issuer: "test"},
		jwt.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	store := account.NewMemoryStore()
	opts = append([]account.Option{
		account.WithBcryptCost(bcrypt.MinCost),
		account.WithClock(func() time.Time { return now }),
	}, opts...)
	return account.NewService(store, tokens, opts...), store, tokens
}

func TestService_SignUp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		t.Parallel()
		svc, store, tokens := newService(t)

		user, token, err := svc.SignUp(ctx, account.SignUpParams{
			Name:     "  Jane Doe ",
			Email:    " Jane@Example.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", user.Name)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Equal(t, account.RoleUser, user.Role)
		assert.Nil(t, user.PasswordHash)

		claims, err := tokens.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID())
		assert.Equal(t, account.RoleUser, claims.Role)

		stored, err := store.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("secret1")))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t)

		params := account.SignUpParams{Name: "Jane", Email: "jane@example.com", Password: "secret1"}
		_, _, err := svc.SignUp(ctx, params)
		require.NoError(t, err)

		params.Email = "JANE@example.com"
		_, _, err = svc.SignUp(ctx, params)
		assert.ErrorIs(t, err, account.ErrEmailTaken)
	})

	t.Run("collects every validation failure", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t)

		_, _, err := svc.SignUp(ctx, account.SignUpParams{
			Name:     "Jo",
			Email:    "not-an-email",
			Password: "123",
		})
		require.Error(t, err)
		assert.Equal(t, []string{"name", "email", "password"}, validator.ExtractValidationErrors(err).Fields())
	})

	t.Run("configured administrators get the admin role", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, account.WithAdministrators("Root@Example.com"))

		user, _, err := svc.SignUp(ctx, account.SignUpParams{
			Name: "Root", Email: "root@example.com", Password: "secret1",
		})
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
	})
}

func TestService_SignIn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, tokens := newService(t)
	created, _, err := svc.SignUp(ctx, account.SignUpParams{
		Name: "Jane", Email: "jane@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, token, err := svc.SignIn(ctx, account.SignInParams{Email: "JANE@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.Nil(t, user.PasswordHash)

		claims, err := tokens.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, created.ID.String(), claims.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.SignIn(ctx, account.SignInParams{Email: "jane@example.com", Password: "nope!!"})
		assert.ErrorIs(t, err, account.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.SignIn(ctx, account.SignInParams{Email: "who@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, account.ErrUserNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := svc.SignIn(ctx, account.SignInParams{})
		assert.True(t, validator.IsValidationError(err))
	})
}

func TestService_Users(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)
	jane, _, err := svc.SignUp(ctx, account.SignUpParams{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, _, err = svc.SignUp(ctx, account.SignUpParams{Name: "John", Email: "john@example.com", Password: "secret1"})
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, jane, got)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, account.ErrUserNotFound)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Nil(t, u.PasswordHash)
	}
}

func TestService_Contact(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)
	jane, _, err := svc.SignUp(ctx, account.SignUpParams{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	var dir subscription.ContactDirectory = svc
	contact, err := dir.Contact(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.Contact{Name: "Jane", Email: "jane@example.com"}, contact)

	_, err = dir.Contact(ctx, uuid.New())
	assert.ErrorIs(t, err, subscription.ErrOwnerNotFound)
	assert.ErrorIs(t, err, account.ErrUserNotFound)
}
