package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/jwt"
)

func TestService_IssueAndParse(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	svc, err := jwt.New(jwt.Config{Secret: "test-secret", TTL: time.Hour, Issuer: "tests"}, jwt.WithClock(clock))
	require.NoError(t, err)

	token, err := svc.Issue("user-1", "Administrator")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "Administrator", claims.Role)
	assert.Equal(t, "tests", claims.Issuer)

	t.Run("expired", func(t *testing.T) {
		late, err := jwt.New(jwt.Config{Secret: "test-secret"}, jwt.WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
		require.NoError(t, err)
		_, err = late.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := jwt.New(jwt.Config{Secret: "other"}, jwt.WithClock(clock))
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Parse("a.b.c")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
		_, err = svc.Parse("")
		assert.ErrorIs(t, err, jwt.ErrMissingToken)
	})
}

func TestNew_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(jwt.Config{})
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New(jwt.Config{Secret: "s"})
	require.NoError(t, err)
	token, err := svc.Issue("u-9", "User")
	require.NoError(t, err)

	var seen *jwt.Claims
	h := jwt.Middleware(jwt.MiddlewareConfig{Service: svc})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = jwt.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + token, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"tampered", "Bearer " + token + "x", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, "u-9", seen.UserID())
			}
		})
	}
}
