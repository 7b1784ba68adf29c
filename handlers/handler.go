// Package handlers serves the resume analysis HTTP API.
package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeanalyzer/middleware"
	"resumeanalyzer/models"
	"resumeanalyzer/services"
	"resumeanalyzer/utils"
	"resumeanalyzer/validators"
)

const (
	APIVersion     = "1.2.0"
	previewLength  = 500
	exportLinkTTL  = time.Hour
	uploadTempGlob = "resume-*.pdf"
)

// ResumeAnalyzer runs one uploaded file through the analysis pipeline.
type ResumeAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string, priorities []string) (*models.AnalysisResult, string, error)
}

// ExportArchive stores exports remotely and signs links to them.
type ExportArchive interface {
	UploadFile(ctx context.Context, filePath, key, contentType string) (string, error)
	GeneratePresignedURL(key string) (string, error)
}

// Options wires a Handler. Cache, Archive, Limiter and RequestStats are optional.
type Options struct {
	Analyzer      ResumeAnalyzer
	ModelReady    bool
	Cache         *services.AnalysisCache
	Bulk          *services.BulkProcessor
	Tokens        *services.DownloadTokens
	Archive       ExportArchive
	Limiter       *middleware.RateLimiter
	RequestStats  *middleware.RequestStats
	ExportDir     string
	PublicBaseURL string
	Logger        *zap.Logger
}

type Handler struct {
	analyzer      ResumeAnalyzer
	modelReady    bool
	cache         *services.AnalysisCache
	bulk          *services.BulkProcessor
	tokens        *services.DownloadTokens
	archive       ExportArchive
	limiter       *middleware.RateLimiter
	requestStats  *middleware.RequestStats
	exportDir     string
	publicBaseURL string
	logger        *zap.Logger
	startTime     time.Time

	jobs      sync.WaitGroup
	jobCtx    context.Context
	cancelJob context.CancelFunc
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		analyzer:      opts.Analyzer,
		modelReady:    opts.ModelReady,
		cache:         opts.Cache,
		bulk:          opts.Bulk,
		tokens:        opts.Tokens,
		archive:       opts.Archive,
		limiter:       opts.Limiter,
		requestStats:  opts.RequestStats,
		exportDir:     opts.ExportDir,
		publicBaseURL: opts.PublicBaseURL,
		logger:        logger,
		startTime:     time.Now(),
		jobCtx:        ctx,
		cancelJob:     cancel,
	}
}

// Shutdown waits for running bulk jobs until ctx is done, then cancels them.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.cancelJob()
		return nil
	case <-ctx.Done():
		h.cancelJob()
		<-done
		return ctx.Err()
	}
}

// abortWithValidation maps a validators.Error onto its status.
func abortWithValidation(c *gin.Context, err error) {
	var verr *validators.Error
	if errors.As(err, &verr) {
		utils.AbortWithError(c, verr.Status, verr.Detail)
		return
	}
	utils.BadRequestError(c, err.Error())
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
