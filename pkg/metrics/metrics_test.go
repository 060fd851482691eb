package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusHandler_ServesRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", prometheusHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// The default registry always carries the Go runtime collectors.
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestComputeApproximateRequestSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://api.example.com/api/v1/orders/purchase_service", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")

	got := computeApproximateRequestSize(req)

	want := len(req.URL.Path) + len(req.Method) + len(req.Proto) + len(req.Host) + int(req.ContentLength)
	for name, values := range req.Header {
		want += len(name)
		for _, value := range values {
			want += len(value)
		}
	}
	assert.Equal(t, want, got)
	assert.Greater(t, got, 0)
}

func TestComputeApproximateRequestSize_UnknownContentLength(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/healthz", nil)
	req.ContentLength = -1

	// Unknown body length must not subtract from the estimate.
	assert.Greater(t, computeApproximateRequestSize(req), 0)
}

func TestMillisecondsSince(t *testing.T) {
	start := time.Now().Add(-250 * time.Millisecond)
	got := MillisecondsSince(start)
	assert.GreaterOrEqual(t, got, 250.0)
	assert.Less(t, got, 5000.0)
}
