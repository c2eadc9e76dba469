package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-dev/shareit-backend/internal/auth"
	"github.com/shareit-dev/shareit-backend/internal/booking"
	"github.com/shareit-dev/shareit-backend/internal/metrics"
	"github.com/shareit-dev/shareit-backend/internal/ratelimit"
)

// stubBookings answers listings with an empty page. Other methods are not reached.
type stubBookings struct {
	booking.Service
}

func (stubBookings) ListByBooker(context.Context, int64, string, int, int) ([]*booking.Booking, error) {
	return []*booking.Booking{}, nil
}

func newTestRouter(t *testing.T, mutate func(*Config)) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	cfg := Config{
		Logger:         zerolog.Nop(),
		BookingService: stubBookings{},
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(cfg), reg
}

func do(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthzAndRequestID(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	w = do(r, http.MethodGet, "/healthz", map[string]string{HeaderRequestID: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
}

func TestBookingRoutes(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/v1/bookings", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/v1/bookings", map[string]string{auth.HeaderUserID: "2"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	do(r, http.MethodGet, "/v1/bookings", map[string]string{auth.HeaderUserID: "2"})

	w := do(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `shareit_http_requests_total{method="GET",route="/v1/bookings",status="200"} 1`)
}

func TestRateLimit(t *testing.T) {
	r, _ := newTestRouter(t, func(cfg *Config) {
		cfg.Limiter = ratelimit.NewLocalLimiter(1, time.Hour)
	})
	header := map[string]string{auth.HeaderUserID: "2"}

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/bookings", header).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/v1/bookings", header).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", nil).Code, "health is not limited")
}

func TestCORS_Production(t *testing.T) {
	r, _ := newTestRouter(t, func(cfg *Config) {
		cfg.IsProduction = true
		cfg.ProdOrigins = "https://shareit.example, https://admin.shareit.example"
	})

	w := do(r, http.MethodGet, "/healthz", map[string]string{"Origin": "https://admin.shareit.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://admin.shareit.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/healthz", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS_ProductionWithoutOrigins(t *testing.T) {
	r, _ := newTestRouter(t, func(cfg *Config) {
		cfg.IsProduction = true
	})

	w := do(r, http.MethodGet, "/healthz", map[string]string{"Origin": "https://shareit.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"https://a", "https://b"}, splitOrigins(" https://a ,,https://b"))
	assert.Nil(t, splitOrigins(""))
}

func TestRequestLogger_IncludesUserID(t *testing.T) {
	var buf bytes.Buffer
	r, _ := newTestRouter(t, func(cfg *Config) {
		cfg.Logger = zerolog.New(&buf)
	})

	do(r, http.MethodGet, "/v1/bookings", map[string]string{auth.HeaderUserID: "2", HeaderRequestID: "req-9"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "request completed", line["message"])
	assert.Equal(t, "req-9", line["request_id"])
	assert.EqualValues(t, 2, line["user_id"])
	assert.EqualValues(t, 200, line["status"])
}
