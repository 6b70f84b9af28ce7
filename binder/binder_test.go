package binder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/binder"
)

type codeRequest struct {
	Code string `json:"code"`
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

	tests := []struct {
		name        string
		body        string
		contentType string
		wantErr     error
		want        string
	}{
		{name: "valid", body: `{"code":"123456"}`, contentType: "application/json", want: "123456"},
		{name: "charset parameter", body: `{"code":"000001"}`, contentType: "application/json; charset=utf-8", want: "000001"},
		{name: "empty body skipped", body: "", contentType: "application/json", wantErr: binder.ErrBinderNotApplicable},
		{name: "missing content type", body: `{"code":"1"}`, wantErr: binder.ErrMissingContentType},
		{name: "wrong content type", body: `code=1`, contentType: "application/x-www-form-urlencoded", wantErr: binder.ErrUnsupportedMediaType},
		{name: "unknown field", body: `{"code":"1","admin":true}`, contentType: "application/json", wantErr: binder.ErrInvalidJSON},
		{name: "malformed", body: `{"code":`, contentType: "application/json", wantErr: binder.ErrInvalidJSON},
		{name: "trailing data", body: `{"code":"1"}{"code":"2"}`, contentType: "application/json", wantErr: binder.ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req codeRequest
			err := bind(jsonRequest(tt.body, tt.contentType), &req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Code)
		})
	}
}

type pathRequest struct {
	ID      string `path:"id"`
	Page    int    `path:"page"`
	Verbose bool   `path:"verbose"`
	Skipped string `path:"-"`
	Body    string `json:"body"`
}

func withParams(params map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPath(t *testing.T) {
	t.Parallel()

	t.Run("binds tagged fields", func(t *testing.T) {
		t.Parallel()
		var req pathRequest
		err := binder.Path(chi.URLParam)(withParams(map[string]string{"id": "enr_1", "page": "3", "verbose": "true", "-": "x"}), &req)
		require.NoError(t, err)
		assert.Equal(t, pathRequest{ID: "enr_1", Page: 3, Verbose: true}, req)
	})

	t.Run("invalid integer", func(t *testing.T) {
		t.Parallel()
		var req pathRequest
		err := binder.Path(chi.URLParam)(withParams(map[string]string{"page": "x"}), &req)
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})

	t.Run("rejects non-struct target", func(t *testing.T) {
		t.Parallel()
		var s string
		err := binder.Path(chi.URLParam)(withParams(nil), &s)
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})

	t.Run("nil extractor", func(t *testing.T) {
		t.Parallel()
		var req pathRequest
		assert.ErrorIs(t, binder.Path(nil)(withParams(nil), &req), binder.ErrInvalidPath)
	})
}
