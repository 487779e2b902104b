package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/qiniu/seqmcp/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(token string, collector *observability.MetricsCollector) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(collector))
	r.GET("/open", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/secure", Authentication(token), func(c *gin.Context) { c.String(http.StatusOK, "secret") })
	return r
}

func do(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthentication(t *testing.T) {
	r := newRouter("s3cret", nil)

	assert.Equal(t, http.StatusOK, do(r, "/open", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/secure", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/secure", "Bearer wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/secure", "s3cret").Code)

	w := do(r, "/secure", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret", w.Body.String())
}

func TestAuthentication_Disabled(t *testing.T) {
	r := newRouter("", nil)
	assert.Equal(t, http.StatusOK, do(r, "/secure", "").Code)
}

func TestRequestLogger_RecordsLatency(t *testing.T) {
	collector := observability.NewMetricsCollector()
	r := newRouter("token", collector)

	do(r, "/open", "")
	do(r, "/secure", "")
	do(r, "/nowhere", "")

	count, err := testutil.GatherAndCount(collector.GetRegistry(), "seqmcp_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRequestLogger_UnmatchedPathsShareOneLabel(t *testing.T) {
	collector := observability.NewMetricsCollector()
	r := newRouter("", collector)

	do(r, "/open", "")
	for _, path := range []string{"/nowhere", "/wp-admin", "/a/b/c?x=1"} {
		do(r, path, "")
	}

	count, err := testutil.GatherAndCount(collector.GetRegistry(), "seqmcp_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := collector.GetRegistry().Gather()
	require.NoError(t, err)
	var paths []string
	for _, mf := range families {
		if mf.GetName() != "seqmcp_http_request_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "path" {
					paths = append(paths, lp.GetValue())
				}
			}
		}
	}
	assert.ElementsMatch(t, []string{"/open", unmatchedRoute}, paths)
}
