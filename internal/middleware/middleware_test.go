package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-insight/internal/config"
	"sales-insight/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	given := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", given)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, given, seen)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "not\na-uuid")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.NotEqual(t, "not\na-uuid", seen)
}

func TestCORS(t *testing.T) {
	cfg := config.Default().Security
	h := CORS(cfg)(okHandler)

	r := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	r.Header.Set("Origin", "http://localhost:8084")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "http://localhost:8084", w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMaxBodySize(t *testing.T) {
	var readErr error
	h := MaxBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))

	var maxErr *http.MaxBytesError
	require.ErrorAs(t, readErr, &maxErr)
	assert.Equal(t, int64(4), maxErr.Limit)
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default().Security
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 2
	h := RateLimit(NewRateLimiter(cfg), discardLogger())(okHandler)

	codes := make([]int, 3)
	for i := range codes {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes[i] = w.Code
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_Disabled(t *testing.T) {
	cfg := config.Default().Security
	cfg.EnableRateLimit = false
	rl := NewRateLimiter(cfg)

	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("10.0.0.1"))
	}
	assert.Empty(t, rl.limiters)
}

func TestRateLimiter_Prune(t *testing.T) {
	rl := NewRateLimiter(config.Default().Security)
	now := time.Now()
	rl.getLimiter("10.0.0.1", now.Add(-2*visitorTTL))
	rl.getLimiter("10.0.0.2", now)

	assert.Equal(t, 1, rl.Prune(now))
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "10.0.0.2")
}

func TestTrustedProxy_WithRealIP(t *testing.T) {
	cfg := config.Default().Security
	var remote string
	h := TrustedProxy(cfg)(chimw.RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remote = r.RemoteAddr
	})))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "203.0.113.9", remote)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.7:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "198.51.100.7:5000", remote)
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders()(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "https://cdn.jsdelivr.net")
}

func TestTracing_RecordsStatus(t *testing.T) {
	var span *observability.Span
	h := Tracing(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span = observability.GetSpan(r.Context())
		w.WriteHeader(http.StatusBadRequest)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/analyze", nil))

	require.NotNil(t, span)
	assert.Equal(t, "POST /api/analyze", span.Operation)
	assert.Equal(t, observability.SpanStatusError, span.Status)
	assert.Equal(t, "400", span.Tags["http.status_code"])
}
