package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, log)
	})

	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, log)
	})
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		withID := WithRequestID(ctx, "req-123")
		assert.Equal(t, "req-123", RequestIDFrom(withID))
	})

	t.Run("Missing", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFrom(ctx))
	})
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	originalLog := log
	log = zap.New(core)
	defer func() { log = originalLog }()

	ctx := WithRequestID(context.Background(), "req-observed")
	FromCtx(ctx).Info("checkout started")

	entries := observed.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "checkout started", entries[0].Message)
	assert.Equal(t, "req-observed", entries[0].ContextMap()["request_id"])
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("GeneratesID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("PropagatesHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
		req.Header.Set("X-Request-ID", "client-supplied")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "client-supplied", seen)
	})
}
