package rules

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resumeanalyzer/config"
	"resumeanalyzer/models"
)

func TestExtractLinks(t *testing.T) {
	text := "john.doe@email.com | linkedin.com/in/john-doe | github.com/johndoe | https://johndoe.dev/ | main.py"
	links := ExtractLinks(text)

	require.Len(t, links, 3)
	assert.Equal(t, models.LinkLinkedIn, links[0].Type)
	assert.Equal(t, "https://www.linkedin.com/in/john-doe", links[0].ReconstructedURL)
	assert.Equal(t, models.LinkGitHub, links[1].Type)
	assert.Equal(t, "https://www.github.com/johndoe", links[1].ReconstructedURL)
	assert.Equal(t, models.LinkPortfolio, links[2].Type)
	assert.Equal(t, "https://johndoe.dev", links[2].ReconstructedURL)
}

func TestExtractLinks_LabelledUsernames(t *testing.T) {
	links := ExtractLinks("LinkedIn: janedoe\nGitHub: jane-codes\n")

	require.Len(t, links, 2)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", links[0].ReconstructedURL)
	assert.Equal(t, "https://www.github.com/jane-codes", links[1].ReconstructedURL)
}

func TestExtractLinks_Deduplicates(t *testing.T) {
	links := ExtractLinks("https://linkedin.com/in/jane-doe and again https://linkedin.com/in/jane-doe/")
	assert.Len(t, links, 1)
}

func TestReconstructURL(t *testing.T) {
	tests := []struct {
		raw  string
		kind models.LinkType
		want string
	}{
		{"LinkedIn: jdoe", models.LinkLinkedIn, "https://www.linkedin.com/in/jdoe"},
		{"linkedin.com/in/jdoe/", models.LinkLinkedIn, "https://www.linkedin.com/in/jdoe"},
		{"www.github.com/jdoe/repo", models.LinkGitHub, "https://www.github.com/jdoe/repo"},
		{"GitHub: jdoe", models.LinkGitHub, "https://www.github.com/jdoe"},
		{"http://example.org", models.LinkPortfolio, "http://example.org"},
		{"Website: jdoe.io", models.LinkPortfolio, "https://jdoe.io"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReconstructURL(tt.raw, tt.kind), tt.raw)
	}
}

type fakeChecker struct {
	valid map[string]bool
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeChecker) Check(ctx context.Context, url string) models.LinkValidationResult {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return models.LinkValidationResult{URL: url, IsValid: boolPtr(false), ErrorType: "TIMEOUT"}
		case <-time.After(f.delay):
		}
	}
	return models.LinkValidationResult{URL: url, IsValid: boolPtr(f.valid[url]), Platform: "Other/Portfolio"}
}

func linkConfig(maxLinks int, budget time.Duration) config.LinkValidationConfig {
	return config.LinkValidationConfig{
		Enabled:     true,
		Timeout:     time.Second,
		MaxLinks:    maxLinks,
		MaxParallel: 3,
		TotalBudget: budget,
	}
}

func TestValidateLinks_RespectsLimit(t *testing.T) {
	checker := &fakeChecker{valid: map[string]bool{"https://a.dev": true, "https://b.dev": false}}
	v := NewValidator(linkConfig(2, time.Second), checker, zap.NewNop())

	links := v.ValidateLinks(context.Background(), []models.ExtractedLink{
		{ReconstructedURL: "https://a.dev"},
		{ReconstructedURL: "https://b.dev"},
		{ReconstructedURL: "https://c.dev"},
	})

	require.Len(t, links, 3)
	assert.True(t, *links[0].Valid)
	assert.False(t, *links[1].Valid)
	assert.Nil(t, links[2].Valid)
	assert.Equal(t, "LIMIT_REACHED", links[2].ValidationDetails.ErrorType)
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestValidateLinks_BudgetExhausted(t *testing.T) {
	checker := &fakeChecker{delay: time.Second}
	v := NewValidator(linkConfig(5, 50*time.Millisecond), checker, zap.NewNop())

	links := v.ValidateLinks(context.Background(), []models.ExtractedLink{{ReconstructedURL: "https://slow.dev"}})

	assert.Nil(t, links[0].Valid)
	assert.Equal(t, "VALIDATION_TIMEOUT", links[0].ValidationDetails.ErrorType)
}

func TestValidateLinks_Disabled(t *testing.T) {
	cfg := linkConfig(5, time.Second)
	cfg.Enabled = false
	checker := &fakeChecker{}
	v := NewValidator(cfg, checker, nil)

	links := v.ValidateLinks(context.Background(), []models.ExtractedLink{{ReconstructedURL: "https://a.dev"}})
	assert.Nil(t, links[0].Valid)
	assert.Nil(t, links[0].ValidationDetails)
	assert.Zero(t, checker.calls.Load())
}

func TestAnalyzeLinks_Partitions(t *testing.T) {
	checker := &fakeChecker{valid: map[string]bool{"https://www.github.com/octocat": true}}
	v := NewValidator(linkConfig(5, time.Second), checker, zap.NewNop())

	got := v.AnalyzeLinks(context.Background(), "github.com/octocat and https://gone.example")
	assert.Len(t, got.LinksFound, 2)
	assert.Len(t, got.ValidLinks, 1)
	assert.Len(t, got.BrokenLinks, 1)
}

func newTestChecker() *HTTPLinkChecker {
	c := NewHTTPLinkChecker(time.Second, zap.NewNop())
	c.retryDelay = time.Millisecond
	return c
}

func TestHTTPLinkChecker(t *testing.T) {
	var flaky atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/get-only", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		if flaky.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestChecker()
	ctx := context.Background()

	res := c.Check(ctx, server.URL+"/ok")
	assert.True(t, *res.IsValid)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Other/Portfolio", res.Platform)
	assert.NotEmpty(t, res.ValidationTimestamp)

	res = c.Check(ctx, server.URL+"/get-only")
	assert.True(t, *res.IsValid)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = c.Check(ctx, server.URL+"/missing")
	assert.False(t, *res.IsValid)
	assert.Equal(t, "HTTP_404", res.ErrorType)
	assert.NotEmpty(t, res.ValidationTimestamp)

	res = c.Check(ctx, server.URL+"/flaky")
	assert.True(t, *res.IsValid)
	assert.Equal(t, int32(2), flaky.Load())

	res = c.Check(ctx, server.URL+"/old")
	assert.True(t, *res.IsValid)
	assert.Equal(t, 1, res.RedirectCount)
	assert.Equal(t, server.URL+"/ok", res.FinalURL)
}

func TestHTTPLinkChecker_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	c := NewHTTPLinkChecker(50*time.Millisecond, zap.NewNop())
	res := c.Check(context.Background(), server.URL)

	assert.False(t, *res.IsValid)
	assert.Equal(t, "TIMEOUT", res.ErrorType)
	assert.Equal(t, "Request timed out", res.ErrorMessage)
	_, err := time.Parse(time.RFC3339, res.ValidationTimestamp)
	assert.NoError(t, err)
}

func TestJudgeResponse(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		status    int
		valid     bool
		errorType string
		platform  string
	}{
		{"linkedin bot wall on profile", "https://www.linkedin.com/in/jdoe", 999, true, "", "LinkedIn"},
		{"linkedin bot wall elsewhere", "https://www.linkedin.com/company", 999, false, "LINKEDIN_INVALID_FORMAT", "LinkedIn"},
		{"linkedin not found", "https://www.linkedin.com/in/jdoe", 404, false, "HTTP_404", "LinkedIn"},
		{"github private profile", "https://github.com/jdoe", 404, true, "", "GitHub"},
		{"github missing repo", "https://github.com/jdoe/repo", 404, false, "GITHUB_NOT_FOUND", "GitHub"},
		{"github error", "https://github.com/jdoe", 500, false, "HTTP_500", "GitHub"},
		{"site blocks head", "https://jdoe.dev", 403, true, "", "Other/Portfolio"},
		{"site down", "https://jdoe.dev", 502, false, "HTTP_502", "Other/Portfolio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := models.LinkValidationResult{FinalURL: tt.url, StatusCode: tt.status}
			judgeResponse(&r)
			require.NotNil(t, r.IsValid)
			assert.Equal(t, tt.valid, *r.IsValid)
			assert.Equal(t, tt.errorType, r.ErrorType)
			assert.Equal(t, tt.platform, r.Platform)
		})
	}
}

func TestRunAllChecks(t *testing.T) {
	v := NewValidator(config.LinkValidationConfig{}, nil, zap.NewNop())

	_, err := v.RunAllChecks(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyText)

	f, err := v.RunAllChecks(context.Background(), projectsText+"\nCGPA: 3.6/4.0", []string{"Project Experience"})
	require.NoError(t, err)
	assert.True(t, f.CGPAAnalysis.CGPAPresent)
	assert.True(t, f.EducationAnalysis.BachelorPresent)
	assert.Equal(t, []string{"Project Experience"}, f.PriorityAreas)
	assert.Greater(t, f.CompletenessScore, 0.0)
	assert.NotNil(t, f.LinkValidationAnalysis.LinksFound)
}

func TestSafelyRecoversPanics(t *testing.T) {
	v := NewValidator(config.LinkValidationConfig{}, nil, zap.NewNop())
	got := safely(v, "boom", 7, func() int { panic("boom") })
	assert.Equal(t, 7, got)
}
