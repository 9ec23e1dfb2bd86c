package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountsByOutcome(t *testing.T) {
	r := New()
	r.Observe("orders", "list", "success", 120*time.Millisecond)
	r.Observe("orders", "list", "stale", 300*time.Millisecond)
	r.Observe("orders", "list", "success", 80*time.Millisecond)
	r.Observe("users", "delete", "failure", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.total.WithLabelValues("orders", "list", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.total.WithLabelValues("orders", "list", "stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.total.WithLabelValues("users", "delete", "failure")))
	assert.Equal(t, 3, testutil.CollectAndCount(r.total))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.Observe("dashboard", "active_orders", "success", 50*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `nixtrack_store_operations_total{entity="dashboard",operation="active_orders",outcome="success"} 1`), text)
	assert.Contains(t, text, "nixtrack_store_operation_duration_seconds_bucket")
	assert.Contains(t, text, "go_goroutines")
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	New().Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	r := New()
	r.Observe("auth", "login", "failure", time.Millisecond)

	rec := httptest.NewRecorder()
	r.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `operation="login",outcome="failure"`)
}
