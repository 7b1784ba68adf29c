package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeanalyzer/config"
	"resumeanalyzer/database"
	"resumeanalyzer/handlers"
	"resumeanalyzer/middleware"
	"resumeanalyzer/models"
	"resumeanalyzer/parsers"
	"resumeanalyzer/rules"
	"resumeanalyzer/services"
)

const (
	prioritiesCacheTTL = 5 * time.Minute
	jobStatusCacheTTL  = 2 * time.Second

	cacheCleanupInterval = 5 * time.Minute
)

// app owns the long-lived components behind the router.
type app struct {
	router        *gin.Engine
	handler       *handlers.Handler
	limiter       *middleware.RateLimiter
	caches        []*middleware.ResponseCache
	analysisCache *services.AnalysisCache
	stopCleanup   context.CancelFunc
	db            *sql.DB
	logger        *zap.Logger
}

func newApp(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*app, error) {
	a := &app{logger: logger}

	var generator services.Generator
	client, err := services.NewGeminiClient(ctx, cfg.Gemini)
	switch {
	case err == nil:
		generator = client
		logger.Info("Gemini model configured", zap.String("model", cfg.Gemini.Model))
	case errors.Is(err, services.ErrModelNotConfigured):
		logger.Warn("GOOGLE_API_KEY not set, AI analysis disabled")
	default:
		logger.Error("failed to create Gemini client, AI analysis disabled", zap.Error(err))
	}
	analyzer := services.NewAnalyzer(generator, logger)

	cache, err := services.NewAnalysisCache(cfg.Cache, logger)
	if err != nil {
		logger.Warn("persistent cache unavailable, using memory only", zap.Error(err))
		memOnly := cfg.Cache
		memOnly.DBPath = ""
		if cache, err = services.NewAnalysisCache(memOnly, logger); err != nil {
			return nil, err
		}
	}
	a.analysisCache = cache
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	a.stopCleanup = stopCleanup
	go cache.RunCleanup(cleanupCtx, cacheCleanupInterval)

	validator := rules.NewValidator(cfg.Links, rules.NewHTTPLinkChecker(cfg.Links.Timeout, logger), logger)
	pipeline := services.NewPipeline(parsers.NewPDFExtractor(), validator, analyzer, cache, logger)

	store, err := a.jobStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	bulk := services.NewBulkProcessor(pipeline, store, logger)

	var archive handlers.ExportArchive
	if cfg.S3.Enabled() {
		s3, err := services.NewS3Service(cfg.S3, logger)
		if err != nil {
			logger.Warn("S3 export archive disabled", zap.Error(err))
		} else {
			archive = s3
			logger.Info("S3 export archive enabled", zap.String("bucket", cfg.S3.Bucket))
		}
	}

	a.limiter = middleware.NewRateLimiter(logger)
	requestStats := middleware.NewRequestStats()

	a.handler = handlers.New(handlers.Options{
		Analyzer:      pipeline,
		ModelReady:    analyzer.Configured(),
		Cache:         cache,
		Bulk:          bulk,
		Tokens:        services.NewDownloadTokens(cfg.JWTSecret),
		Archive:       archive,
		Limiter:       a.limiter,
		RequestStats:  requestStats,
		ExportDir:     cfg.ExportDir,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logger,
	})

	a.router = a.setupRouter(cfg, requestStats)
	return a, nil
}

// jobStore uses Postgres when a database is configured.
func (a *app) jobStore(ctx context.Context, cfg config.AppConfig) (services.JobStore, error) {
	dsn := database.ResolveDSN(cfg.DatabaseURL, cfg.Database)
	if dsn == "" {
		a.logger.Info("no database configured, bulk jobs kept in memory")
		return services.NewMemoryJobStore(), nil
	}

	db, err := database.Connect(dsn)
	if err != nil {
		return nil, err
	}
	a.db = db

	model := models.NewBulkJobModel(db)
	if err := model.CreateTable(ctx); err != nil {
		return nil, err
	}
	a.logger.Info("bulk jobs stored in Postgres")
	return services.NewPostgresJobStore(model), nil
}

func (a *app) setupRouter(cfg config.AppConfig, requestStats *middleware.RequestStats) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestLogger(a.logger, requestStats))
	r.Use(middleware.CORS(middleware.NewCORSConfig(cfg.AllowedOrigins, cfg.IsProduction())))
	r.Use(a.limiter.Limit())
	r.Use(middleware.SanitizeInput())

	prioritiesCache := middleware.NewResponseCache(prioritiesCacheTTL)
	statusCache := middleware.NewResponseCache(jobStatusCacheTTL)
	a.caches = append(a.caches, prioritiesCache, statusCache)

	h := a.handler
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Metrics)
	r.GET("/rate-limit-status", h.RateLimitStatus)
	r.GET("/performance", h.Performance)
	r.GET("/priorities", prioritiesCache.Cache(), h.Priorities)

	multipartOnly := middleware.RequireMultipartForm()
	r.POST("/analyze_resume", middleware.UploadLimit(1), multipartOnly, h.AnalyzeResume)
	r.POST("/bulk_analyze_resumes", middleware.UploadLimit(services.MaxFilesPerBulkJob), multipartOnly, h.BulkAnalyzeResumes)

	r.GET("/bulk_jobs", h.ListBulkJobs)
	r.GET("/bulk_job_status/:job_id", statusCache.Cache(), h.BulkJobStatus)
	exportOptions := middleware.ValidateExportOptions()
	r.POST("/export_results/:job_id", exportOptions, h.ExportResults)
	r.GET("/export_link/:job_id", exportOptions, h.ExportLink)
	r.GET("/download/:token", h.Download)

	return r
}

// Shutdown waits for background bulk jobs.
func (a *app) Shutdown(ctx context.Context) error {
	return a.handler.Shutdown(ctx)
}

func (a *app) Close() {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	for _, c := range a.caches {
		c.Stop()
	}
	if a.analysisCache != nil {
		if err := a.analysisCache.Close(); err != nil {
			a.logger.Warn("failed to close analysis cache", zap.Error(err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
