package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"resumeanalyzer/config"
	"resumeanalyzer/models"
)

var ErrEmptyText = errors.New("Empty resume text provided")

// Validator runs the rule-based checks over resume text.
type Validator struct {
	cfg     config.LinkValidationConfig
	checker LinkChecker
	logger  *zap.Logger
}

// NewValidator creates a validator. A nil checker disables link validation.
func NewValidator(cfg config.LinkValidationConfig, checker LinkChecker, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{cfg: cfg, checker: checker, logger: logger}
}

// RunAllChecks runs every check. A check that panics is logged and
// replaced by its empty result.
func (v *Validator) RunAllChecks(ctx context.Context, text string, priorities []string) (*models.RuleFindings, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	f := &models.RuleFindings{
		CGPAAnalysis: safely(v, "cgpa", models.CGPAAnalysis{Scale: "unknown"}, func() models.CGPAAnalysis {
			return DetectCGPA(text)
		}),
		ProjectDatesAnalysis: safely(v, "project_dates", models.ProjectDatesAnalysis{}, func() models.ProjectDatesAnalysis {
			return DetectProjectDates(text)
		}),
		EducationAnalysis: safely(v, "education", models.EducationAnalysis{}, func() models.EducationAnalysis {
			return DetectEducationLevels(text)
		}),
		LinkValidationAnalysis: safely(v, "links", models.LinkAnalysis{}, func() models.LinkAnalysis {
			return v.AnalyzeLinks(ctx, text)
		}),
		FormattingAnalysis: safely(v, "formatting", models.FormattingAnalysis{}, func() models.FormattingAnalysis {
			return AnalyzeFormatting(text)
		}),
		ContentQualityAnalysis: safely(v, "content_quality", models.ContentQualityAnalysis{}, func() models.ContentQualityAnalysis {
			return AnalyzeContentQuality(text)
		}),
		PriorityAreas: append([]string{}, priorities...),
	}

	f.CompletenessScore, f.CompletenessBreakdown = CompletenessScore(f, priorities)
	return f, nil
}

func safely[T any](v *Validator, check string, fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("rule check failed", zap.String("check", check), zap.String("panic", fmt.Sprint(r)))
			out = fallback
		}
	}()
	return fn()
}
