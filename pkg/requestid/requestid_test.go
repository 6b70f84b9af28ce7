package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/requestid"
)

func serve(t *testing.T, inbound string) (ctxID, headerID string) {
	t.Helper()
	handler := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = requestid.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(requestid.Header, inbound)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	return ctxID, rec.Header().Get(requestid.Header)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates id when absent", func(t *testing.T) {
		t.Parallel()
		ctxID, headerID := serve(t, "")
		assert.Equal(t, ctxID, headerID)
		_, err := uuid.Parse(headerID)
		assert.NoError(t, err)
	})

	t.Run("reuses valid inbound id", func(t *testing.T) {
		t.Parallel()
		ctxID, headerID := serve(t, "edge-req_42")
		assert.Equal(t, "edge-req_42", ctxID)
		assert.Equal(t, "edge-req_42", headerID)
	})

	t.Run("replaces invalid inbound id", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"has space", "<script>", strings.Repeat("a", 129)} {
			ctxID, _ := serve(t, bad)
			assert.NotEqual(t, bad, ctxID)
			assert.NotEmpty(t, ctxID)
		}
	})
}

func TestContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(context.Background()))
	assert.Empty(t, requestid.FromContext(nil)) //nolint:staticcheck

	ctx := requestid.WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", requestid.FromContext(ctx))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LoggerExtractor()
	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(requestid.WithContext(context.Background(), "abc"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}
