package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"resumeanalyzer/models"
	"resumeanalyzer/parsers"
	"resumeanalyzer/rules"
	"resumeanalyzer/scoring"
)

// TextExtractor pulls plain text out of an uploaded file.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Pipeline runs one resume through rules, the model and reconciliation.
type Pipeline struct {
	extractor TextExtractor
	processor *parsers.TextProcessor
	validator *rules.Validator
	analyzer  *Analyzer
	enforcer  *scoring.Enforcer
	cache     *AnalysisCache
	logger    *zap.Logger
}

// NewPipeline wires the analysis stages. cache may be nil.
func NewPipeline(extractor TextExtractor, validator *rules.Validator, analyzer *Analyzer, cache *AnalysisCache, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		extractor: extractor,
		processor: parsers.NewTextProcessor(),
		validator: validator,
		analyzer:  analyzer,
		enforcer:  scoring.NewEnforcer(logger),
		cache:     cache,
		logger:    logger,
	}
}

// Analyzer exposes the model-backed analyzer for health reporting.
func (p *Pipeline) Analyzer() *Analyzer {
	return p.analyzer
}

// Cache returns the analysis cache, or nil.
func (p *Pipeline) Cache() *AnalysisCache {
	return p.cache
}

// AnalyzeFile extracts, validates and preprocesses a PDF before analysing
// it. The preprocessed text is returned alongside the result.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string, priorities []string) (*models.AnalysisResult, string, error) {
	raw, err := p.extractor.ExtractText(ctx, path)
	if err != nil {
		return nil, "", err
	}
	if !p.processor.ValidateExtractedText(raw) {
		return nil, "", parsers.ErrNotResume
	}

	text := p.processor.PreprocessText(raw)
	result, err := p.Analyze(ctx, text, priorities)
	if err != nil {
		return nil, text, err
	}
	return result, text, nil
}

// Analyze produces the reconciled analysis for already extracted text.
func (p *Pipeline) Analyze(ctx context.Context, text string, priorities []string) (*models.AnalysisResult, error) {
	start := time.Now()

	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, text, priorities); ok {
			cached.Metadata.CacheUsed = true
			cached.Metadata.ProcessingTime = elapsedSeconds(start)
			p.logger.Info("analysis served from cache", zap.String("key", CacheKey(text, priorities)))
			return cached, nil
		}
	}

	findings, err := p.validator.RunAllChecks(ctx, text, priorities)
	if err != nil {
		return nil, err
	}

	analysis, err := p.analyzer.Analyze(ctx, text, priorities, findings)
	if err != nil {
		return nil, err
	}

	p.enforcer.Enforce(analysis, findings, priorities)
	scoring.EnforceHeadshotRule(analysis)

	result := &models.AnalysisResult{
		Analysis:          analysis,
		RuleBasedFindings: findings,
		FactSheet:         scoring.BuildFactSheet(findings),
		PriorityAnalysis:  scoring.PriorityAnalysis(analysis, priorities, findings),
		Metadata: models.ProcessingMetadata{
			TextQuality: p.processor.AssessTextQuality(text),
			Statistics:  p.processor.Statistics(text),
		},
	}
	result.Metadata.ProcessingTime = elapsedSeconds(start)

	if p.cache != nil {
		p.cache.Set(ctx, text, priorities, result)
	}

	p.logger.Info("resume analysed",
		zap.Int("overall_score", int(analysis.OverallScore)),
		zap.Float64("completeness", findings.CompletenessScore),
		zap.Int("corrections", len(analysis.EnforcementCorrections)),
		zap.Float64("seconds", result.Metadata.ProcessingTime))
	return result, nil
}

func elapsedSeconds(start time.Time) float64 {
	return math.Round(time.Since(start).Seconds()*1000) / 1000
}
