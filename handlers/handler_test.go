package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resumeanalyzer/models"
	"resumeanalyzer/services"
	"resumeanalyzer/utils"
)

type fakeAnalyzer struct {
	mu     sync.Mutex
	result *models.AnalysisResult
	text   string
	err    error
	paths  []string
	prios  [][]string
}

func (f *fakeAnalyzer) AnalyzeFile(_ context.Context, path string, priorities []string) (*models.AnalysisResult, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	f.prios = append(f.prios, priorities)
	if f.err != nil {
		return nil, "", f.err
	}
	return f.result, f.text, nil
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.paths)
}

type fakeArchive struct {
	mu       sync.Mutex
	uploaded []string
	err      error
}

func (a *fakeArchive) UploadFile(_ context.Context, _, key, _ string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.uploaded = append(a.uploaded, key)
	return "https://archive.example/" + key, nil
}

func (a *fakeArchive) GeneratePresignedURL(key string) (string, error) {
	return "https://archive.example/" + key + "?X-Amz-Signature=abc", nil
}

func sampleAnalysis() *models.AnalysisResult {
	analysis := &models.AIAnalysis{OverallScore: 78}
	analysis.BasicInfo.Content = map[string]interface{}{"name": "Jane Smith"}
	analysis.Skills.Content = map[string]interface{}{"technical_skills": []interface{}{"Go", "PostgreSQL"}}
	analysis.Skills.QualityScore = 82
	return &models.AnalysisResult{
		Analysis:          analysis,
		RuleBasedFindings: &models.RuleFindings{CompletenessScore: 72.5},
		FactSheet:         models.FactSheet{Summary: "✅ CGPA: 1 found", CompletenessScore: 72, PromptWasCustomized: true},
		PriorityAnalysis: &models.PriorityAnalysis{
			SelectedPriorities: []string{"Technical Skills"},
			PriorityScores:     map[string]int{"Technical Skills": 82},
			TotalPriorities:    1,
		},
		Metadata: models.ProcessingMetadata{ProcessingTime: 1.25, TextQuality: "good"},
	}
}

type testEnv struct {
	handler  *Handler
	router   *gin.Engine
	analyzer *fakeAnalyzer
	bulk     *services.BulkProcessor
}

func newTestEnv(t *testing.T, configure ...func(*Options)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	analyzer := &fakeAnalyzer{result: sampleAnalysis(), text: strings.Repeat("a", 600)}
	bulk := services.NewBulkProcessor(analyzer, nil, zap.NewNop())
	opts := Options{
		Analyzer:      analyzer,
		ModelReady:    true,
		Bulk:          bulk,
		Tokens:        services.NewDownloadTokens("test-secret"),
		ExportDir:     t.TempDir(),
		PublicBaseURL: "http://api.test/",
		Logger:        zap.NewNop(),
	}
	for _, fn := range configure {
		fn(&opts)
	}

	h := New(opts)
	t.Cleanup(func() { h.Shutdown(context.Background()) })

	r := gin.New()
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Metrics)
	r.GET("/rate-limit-status", h.RateLimitStatus)
	r.GET("/performance", h.Performance)
	r.GET("/priorities", h.Priorities)
	r.POST("/analyze_resume", h.AnalyzeResume)
	r.POST("/bulk_analyze_resumes", h.BulkAnalyzeResumes)
	r.GET("/bulk_job_status/:job_id", h.BulkJobStatus)
	r.GET("/bulk_jobs", h.ListBulkJobs)
	r.POST("/export_results/:job_id", h.ExportResults)
	r.GET("/export_link/:job_id", h.ExportLink)
	r.GET("/download/:token", h.Download)

	return &testEnv{handler: h, router: r, analyzer: analyzer, bulk: bulk}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", target, nil)
	return e.do(req)
}

type uploadFile struct {
	field   string
	name    string
	content []byte
}

func pdfContent() []byte {
	return append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("0"), 2048)...)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...uploadFile) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.APIError {
	t.Helper()
	var apiErr utils.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
