package binder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/binder"
)

type createRequest struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

func jsonRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestJSON(t *testing.T) {
	t.Parallel()

	bind := binder.JSON()

	t.Run("decodes body", func(t *testing.T) {
		t.Parallel()
		var req createRequest
		require.NoError(t, bind(jsonRequest(`{"name":"Netflix","price":9.5}`, "application/json; charset=utf-8"), &req))
		assert.Equal(t, "Netflix", req.Name)
		require.NotNil(t, req.Price)
		assert.InEpsilon(t, 9.5, *req.Price, 0.001)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		err         error
	}{
		{"missing content type", `{}`, "", binder.ErrMissingContentType},
		{"wrong content type", `name=x`, "application/x-www-form-urlencoded", binder.ErrUnsupportedMediaType},
		{"unknown field", `{"nope":1}`, "application/json", binder.ErrFailedToParseJSON},
		{"empty body", ``, "application/json", binder.ErrFailedToParseJSON},
		{"trailing data", `{"name":"a"}{"name":"b"}`, "application/json", binder.ErrFailedToParseJSON},
		{"type mismatch", `{"price":"cheap"}`, "application/json", binder.ErrFailedToParseJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req createRequest
			assert.ErrorIs(t, bind(jsonRequest(tt.body, tt.contentType), &req), tt.err)
		})
	}

	t.Run("cancelled request", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var req createRequest
		r := jsonRequest(`{}`, "application/json").WithContext(ctx)
		assert.ErrorIs(t, bind(r, &req), binder.ErrFailedToParseJSON)
	})
}

type listRequest struct {
	Status []string `query:"status"`
	Limit  int      `query:"limit"`
	Active *bool    `query:"active"`
	Skip   string   `query:"-"`
}

func TestQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?status=active,expired&status=cancelled&limit=20&active=yes&Skip=x", nil)
	var req listRequest
	require.NoError(t, binder.Query()(r, &req))
	assert.Equal(t, []string{"active", "expired", "cancelled"}, req.Status)
	assert.Equal(t, 20, req.Limit)
	require.NotNil(t, req.Active)
	assert.True(t, *req.Active)
	assert.Empty(t, req.Skip)

	r = httptest.NewRequest(http.MethodGet, "/?limit=ten", nil)
	assert.ErrorIs(t, binder.Query()(r, &listRequest{}), binder.ErrFailedToParseQuery)
}

type pathRequest struct {
	ID   uuid.UUID `path:"id"`
	Name string
}

func TestPath(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	params := map[string]string{"id": id.String(), "name": "ignored"}
	extract := func(_ *http.Request, name string) string { return params[name] }

	var req pathRequest
	require.NoError(t, binder.Path(extract)(httptest.NewRequest(http.MethodGet, "/", nil), &req))
	assert.Equal(t, id, req.ID)
	assert.Empty(t, req.Name)

	bad := func(*http.Request, string) string { return "not-a-uuid" }
	assert.ErrorIs(t, binder.Path(bad)(httptest.NewRequest(http.MethodGet, "/", nil), &pathRequest{}), binder.ErrFailedToParsePath)
	assert.ErrorIs(t, binder.Path(nil)(httptest.NewRequest(http.MethodGet, "/", nil), &pathRequest{}), binder.ErrFailedToParsePath)

	var notStruct string
	assert.ErrorIs(t, binder.Path(extract)(httptest.NewRequest(http.MethodGet, "/", nil), &notStruct), binder.ErrFailedToParsePath)
}
