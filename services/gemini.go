package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"resumeanalyzer/config"
	"resumeanalyzer/models"
	"resumeanalyzer/scoring"
)

var (
	ErrEmptyText          = errors.New("Empty resume text")
	ErrModelNotConfigured = errors.New("AI model not configured. Please check GOOGLE_API_KEY.")
	ErrAnalysisFailed     = errors.New("AI analysis failed")
)

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient creates a Gemini client. It fails when no API key is set.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrModelNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("Gemini returned an empty response")
	}
	return text, nil
}

// Analyzer turns resume text into a section-by-section AI analysis.
type Analyzer struct {
	generator Generator
	logger    *zap.Logger
}

// NewAnalyzer creates an analyzer. A nil generator makes every call fail
// with ErrModelNotConfigured.
func NewAnalyzer(generator Generator, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{generator: generator, logger: logger}
}

// Configured reports whether a model is available.
func (a *Analyzer) Configured() bool {
	return a.generator != nil
}

// Analyze asks the model for an analysis steered by the rule findings,
// retrying once with the plain fallback prompt.
func (a *Analyzer) Analyze(ctx context.Context, text string, priorities []string, findings *models.RuleFindings) (*models.AIAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if a.generator == nil {
		return nil, ErrModelNotConfigured
	}

	analysis, err := a.generate(ctx, BuildPrompt(text, priorities, findings))
	if err != nil {
		a.logger.Warn("dynamic prompt failed, retrying with fallback prompt", zap.Error(err))
		analysis, err = a.generate(ctx, FallbackPrompt(text))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
		}
	}

	analysis.ApplyDefaults()
	if analysis.OverallScore == 0 {
		var weights map[string]int
		if len(priorities) > 0 {
			weights = scoring.SectionWeights(scoring.PriorityWeights(priorities))
		}
		analysis.OverallScore = scoring.OverallScore(analysis, weights)
	}
	return analysis, nil
}

func (a *Analyzer) generate(ctx context.Context, prompt string) (*models.AIAnalysis, error) {
	raw, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var analysis models.AIAnalysis
	if err := CleanJSON(raw, &analysis); err != nil {
		a.logger.Error("failed to parse model response", zap.Error(err), zap.String("raw_response", truncate(raw, 500)))
		return nil, err
	}
	return &analysis, nil
}

var (
	codeFenceRegex     = regexp.MustCompile("```(?:json)?")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
)

// CleanJSON strips markdown fences and surrounding prose from a model
// reply and decodes the outermost JSON object into v. Trailing commas are
// removed on a second attempt.
func CleanJSON(raw string, v interface{}) error {
	cleaned := strings.TrimSpace(codeFenceRegex.ReplaceAllString(raw, ""))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return errors.New("no JSON object found in model response")
	}
	body := cleaned[start : end+1]

	err := json.Unmarshal([]byte(body), v)
	if err == nil {
		return nil
	}
	if retryErr := json.Unmarshal([]byte(trailingCommaRegex.ReplaceAllString(body, "$1")), v); retryErr == nil {
		return nil
	}
	return fmt.Errorf("Failed to parse JSON: %w", err)
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
