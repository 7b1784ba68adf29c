package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resumeanalyzer/config"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	for _, key := range []string{"GOOGLE_API_KEY", "DATABASE_URL", "DB_NAME", "CACHE_DB_PATH", "AWS_ACCESS_KEY_ID", "AWS_S3_BUCKET"} {
		t.Setenv(key, "")
	}
	t.Setenv("EXPORT_DIR", t.TempDir())

	a, err := newApp(context.Background(), config.GetAppConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		a.Shutdown(context.Background())
		a.Close()
	})
	return a
}

func serve(a *app, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestApp_HealthWithoutModel(t *testing.T) {
	a := newTestApp(t)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := serve(a, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), "inactive - check API key")
	assert.NotEmpty(t, w.Header().Get("X-Process-Time"))
}

func TestApp_PrioritiesAreCached(t *testing.T) {
	a := newTestApp(t)

	req, _ := http.NewRequest("GET", "/priorities", nil)
	first := serve(a, req)
	req, _ = http.NewRequest("GET", "/priorities", nil)
	second := serve(a, req)

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestApp_AnalyzeRequiresMultipart(t *testing.T) {
	a := newTestApp(t)

	req, _ := http.NewRequest("POST", "/analyze_resume", strings.NewReader(`{"file": "resume.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(a, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid content type, expected multipart/form-data")
}

func TestApp_CORSPreflight(t *testing.T) {
	a := newTestApp(t)

	req, _ := http.NewRequest("OPTIONS", "/analyze_resume", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := serve(a, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestApp_UnknownJob(t *testing.T) {
	a := newTestApp(t)

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("GET", "/bulk_job_status/does-not-exist", nil)
		w := serve(a, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"), "errors are not cached")
	}
}
