package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"resumeanalyzer/models"
	"resumeanalyzer/parsers"
	"resumeanalyzer/rules"
)

var (
	ErrJobNotFound = models.ErrJobNotFound
	ErrJobNotReady = errors.New("job is not ready for export")
	ErrNoResults   = errors.New("job has no results to export")
)

const (
	BulkBatchSize      = 10
	BulkConcurrency    = 5
	BulkMaxAttempts    = 3
	BulkRetryDelay     = 2 * time.Second
	BulkFileTimeout    = 300 * time.Second
	MaxFilesPerBulkJob = 100
)

// FileAnalyzer analyses one resume file.
type FileAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string, priorities []string) (*models.AnalysisResult, string, error)
}

// BulkFile is an uploaded file saved to disk for processing.
type BulkFile struct {
	Path     string
	Filename string
}

// BulkProcessor runs bulk jobs in batches with bounded concurrency.
type BulkProcessor struct {
	analyzer    FileAnalyzer
	store       JobStore
	logger      *zap.Logger
	batchSize   int
	concurrency int
	maxAttempts int
	retryDelay  time.Duration
	fileTimeout time.Duration
	now         func() time.Time
}

// NewBulkProcessor creates a processor. A nil store keeps jobs in memory.
func NewBulkProcessor(analyzer FileAnalyzer, store JobStore, logger *zap.Logger) *BulkProcessor {
	if store == nil {
		store = NewMemoryJobStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkProcessor{
		analyzer:    analyzer,
		store:       store,
		logger:      logger,
		batchSize:   BulkBatchSize,
		concurrency: BulkConcurrency,
		maxAttempts: BulkMaxAttempts,
		retryDelay:  BulkRetryDelay,
		fileTimeout: BulkFileTimeout,
		now:         time.Now,
	}
}

// CreateJob registers a pending job for total files.
func (b *BulkProcessor) CreateJob(ctx context.Context, total int, priorities []string, jobName string) (*models.BulkJob, error) {
	job := &models.BulkJob{
		JobID:      uuid.New().String(),
		JobName:    jobName,
		Priorities: priorities,
		Status:     models.JobPending,
		TotalFiles: total,
		CreatedAt:  b.now(),
		Results:    []models.CandidateResult{},
	}
	if err := b.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save bulk job: %w", err)
	}
	b.logger.Info("bulk job created", zap.String("job_id", job.JobID), zap.Int("total_files", total))
	return job, nil
}

// Job returns a snapshot of the job.
func (b *BulkProcessor) Job(ctx context.Context, jobID string) (*models.BulkJob, error) {
	return b.store.Load(ctx, jobID)
}

// Jobs lists known jobs, newest first.
func (b *BulkProcessor) Jobs(ctx context.Context) ([]*models.BulkJob, error) {
	return b.store.List(ctx)
}

// ExportableJob returns the job when it has finished with results.
// ErrJobNotReady comes back together with the job so callers can report
// its status.
func (b *BulkProcessor) ExportableJob(ctx context.Context, jobID string) (*models.BulkJob, error) {
	job, err := b.store.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.Finished() {
		return job, ErrJobNotReady
	}
	if len(job.Results) == 0 {
		return job, ErrNoResults
	}
	return job, nil
}

// Process analyses files for the job, saving progress after every batch.
func (b *BulkProcessor) Process(ctx context.Context, jobID string, files []BulkFile) (*models.BulkJob, error) {
	job, err := b.store.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	start := b.now()
	job.Status = models.JobProcessing
	b.save(ctx, job)

	for i := 0; i < len(files); i += b.batchSize {
		if err := ctx.Err(); err != nil {
			b.fail(job, err)
			return job, err
		}

		end := i + b.batchSize
		if end > len(files) {
			end = len(files)
		}
		results := b.processBatch(ctx, files[i:end], job.Priorities)

		job.Results = append(job.Results, results...)
		job.ProcessedFiles += len(results)
		for _, r := range results {
			if r.Succeeded() {
				job.SuccessfulAnalyses++
			} else {
				job.FailedAnalyses++
			}
		}
		b.save(ctx, job)

		b.logger.Info("bulk batch processed",
			zap.String("job_id", jobID),
			zap.Int("batch", i/b.batchSize+1),
			zap.Int("processed", job.ProcessedFiles),
			zap.Int("total", job.TotalFiles))
	}

	completed := b.now()
	job.CompletedAt = &completed
	job.ProcessingTimeSeconds = completed.Sub(start).Seconds()
	if job.FailedAnalyses == 0 {
		job.Status = models.JobCompleted
	} else {
		job.Status = models.JobPartial
	}
	b.save(ctx, job)

	b.logger.Info("bulk job completed",
		zap.String("job_id", jobID),
		zap.Int("successful", job.SuccessfulAnalyses),
		zap.Int("failed", job.FailedAnalyses))
	return job, nil
}

func (b *BulkProcessor) fail(job *models.BulkJob, err error) {
	completed := b.now()
	job.Status = models.JobFailed
	job.ErrorSummary = err.Error()
	job.CompletedAt = &completed
	b.save(context.Background(), job)
	b.logger.Error("bulk job failed", zap.String("job_id", job.JobID), zap.Error(err))
}

func (b *BulkProcessor) save(ctx context.Context, job *models.BulkJob) {
	if err := b.store.Save(ctx, job); err != nil {
		b.logger.Error("failed to save bulk job", zap.String("job_id", job.JobID), zap.Error(err))
	}
}

func (b *BulkProcessor) processBatch(ctx context.Context, files []BulkFile, priorities []string) []models.CandidateResult {
	results := make([]models.CandidateResult, len(files))

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, f := range files {
		g.Go(func() error {
			results[i] = b.processFile(ctx, f, priorities)
			return nil
		})
	}
	g.Wait()
	return results
}

// processFile retries a file up to maxAttempts times, each attempt bounded
// by fileTimeout.
func (b *BulkProcessor) processFile(ctx context.Context, f BulkFile, priorities []string) models.CandidateResult {
	var lastError string

	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		fileCtx, cancel := context.WithTimeout(ctx, b.fileTimeout)
		result, _, err := b.analyzer.AnalyzeFile(fileCtx, f.Path, priorities)
		timedOut := errors.Is(fileCtx.Err(), context.DeadlineExceeded)
		cancel()

		if err == nil {
			return b.candidateFromResult(f.Filename, result)
		}

		lastError = b.describeFailure(err, timedOut)
		b.logger.Warn("bulk file attempt failed",
			zap.String("filename", f.Filename),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", b.maxAttempts),
			zap.String("error", lastError))

		if attempt == b.maxAttempts || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(b.retryDelay):
		}
	}

	return models.CandidateResult{
		Filename:       f.Filename,
		KeySkills:      []string{},
		AnalysisStatus: "error",
		ErrorMessage:   lastError,
		ProcessedAt:    b.now(),
	}
}

func (b *BulkProcessor) describeFailure(err error, timedOut bool) string {
	switch {
	case timedOut:
		return fmt.Sprintf("Processing timed out after %d seconds", int(b.fileTimeout.Seconds()))
	case errors.Is(err, parsers.ErrNoText), errors.Is(err, parsers.ErrNotResume),
		errors.Is(err, rules.ErrEmptyText), errors.Is(err, ErrEmptyText):
		return "Data validation error: " + err.Error()
	case errors.Is(err, ErrAnalysisFailed):
		return err.Error()
	case errors.Is(err, ErrModelNotConfigured):
		return fmt.Sprintf("%s: %s", ErrAnalysisFailed, err)
	default:
		return "Unexpected error: " + err.Error()
	}
}

func (b *BulkProcessor) candidateFromResult(filename string, r *models.AnalysisResult) models.CandidateResult {
	a := r.Analysis
	f := r.RuleBasedFindings
	if a == nil {
		a = &models.AIAnalysis{}
	}
	if f == nil {
		f = &models.RuleFindings{}
	}

	c := models.CandidateResult{
		Filename:          filename,
		CandidateName:     CandidateName(a),
		OverallScore:      int(a.OverallScore),
		CompletenessScore: int(f.CompletenessScore),
		FormattingScore:   f.FormattingAnalysis.OverallFormattingScore,
		KeySkills:         KeySkills(a),
		ExperienceLevel:   ExperienceLevel(a),
		EducationLevel:    EducationLevel(a),
		CGPAFound:         f.CGPAAnalysis.CGPAPresent,
		ValidLinksCount:   len(f.LinkValidationAnalysis.ValidLinks),
		BrokenLinksCount:  len(f.LinkValidationAnalysis.BrokenLinks),
		AnalysisStatus:    "success",
		ProcessedAt:       b.now(),
		FullAnalysis:      a,
		RuleBasedFindings: f,
		FactSheet:         &r.FactSheet,
		PriorityAnalysis:  r.PriorityAnalysis,
	}
	if len(f.CGPAAnalysis.CGPAValues) > 0 {
		c.CGPAValue = f.CGPAAnalysis.CGPAValues[0]
	}
	switch {
	case c.ValidLinksCount > 0:
		c.LinksStatus = "valid"
	case c.BrokenLinksCount > 0:
		c.LinksStatus = "broken"
	default:
		c.LinksStatus = "none"
	}
	if r.PriorityAnalysis != nil {
		c.PriorityScores = r.PriorityAnalysis.PriorityScores
	}
	return c
}

var candidateNameKeys = []string{"name", "full_name", "candidate_name", "Name", "Full Name", "candidate", "full name"}

// CandidateName reads the candidate's name from the basic info content.
func CandidateName(a *models.AIAnalysis) string {
	for _, key := range candidateNameKeys {
		if name := strings.TrimSpace(a.BasicInfo.Text(key)); name != "" {
			return name
		}
	}
	return ""
}

const maxKeySkills = 10

// KeySkills returns up to ten skills, preferring the resume's own listing
// over the categorised breakdown.
func KeySkills(a *models.AIAnalysis) []string {
	skills := []string{}
	seen := map[string]bool{}
	for _, key := range []string{"original_format", "technical_skills", "hard_skills", "soft_skills", "languages"} {
		for _, s := range a.Skills.Strings(key) {
			lower := strings.ToLower(s)
			if seen[lower] {
				continue
			}
			seen[lower] = true
			skills = append(skills, s)
			if len(skills) == maxKeySkills {
				return skills
			}
		}
	}
	return skills
}

var (
	experienceWords = []string{"year", "experience", "worked", "developer", "engineer"}
	seniorityDigits = regexp.MustCompile(`[2-5]`)
)

// ExperienceLevel buckets work experience into fresher, entry_level or experienced.
func ExperienceLevel(a *models.AIAnalysis) string {
	text := strings.ToLower(sectionText(&a.WorkExperience))
	if text == "" {
		return "fresher"
	}
	for _, w := range experienceWords {
		if strings.Contains(text, w) {
			if seniorityDigits.MatchString(text) {
				return "experienced"
			}
			return "entry_level"
		}
	}
	return "entry_level"
}

var educationLevelPatterns = []struct {
	level   string
	pattern *regexp.Regexp
}{
	{"phd", regexp.MustCompile(`(?i)\b(ph\.?d|doctorate|doctor)\b`)},
	{"masters", regexp.MustCompile(`\b(?i:master|masters|mtech|m\.tech|mba|m\.sc|msc)\b|\bMS\b`)},
	{"bachelors", regexp.MustCompile(`\b(?i:bachelor|bachelors|btech|b\.tech|bsc|b\.sc|b\.e)\b|\bBE\b`)},
	{"diploma", regexp.MustCompile(`(?i)\bdiploma\b`)},
}

// EducationLevel names the highest degree mentioned in the education content.
func EducationLevel(a *models.AIAnalysis) string {
	text := sectionText(&a.Education)
	for _, p := range educationLevelPatterns {
		if p.pattern.MatchString(text) {
			return p.level
		}
	}
	return "unknown"
}

func sectionText(s *models.SectionAnalysis) string {
	var parts []string
	for key := range s.Content {
		parts = append(parts, s.Strings(key)...)
	}
	return strings.Join(parts, " ")
}
