package models

type PriorityStatus string

const (
	StatusExcellent        PriorityStatus = "excellent"
	StatusGood             PriorityStatus = "good"
	StatusNeedsImprovement PriorityStatus = "needs_improvement"
	StatusCritical         PriorityStatus = "critical"
)

// StatusForScore buckets a priority score.
func StatusForScore(score float64) PriorityStatus {
	switch {
	case score >= 85:
		return StatusExcellent
	case score >= 70:
		return StatusGood
	case score >= 50:
		return StatusNeedsImprovement
	default:
		return StatusCritical
	}
}

type PriorityFeedback struct {
	Score    int            `json:"score"`
	Feedback []string       `json:"feedback"`
	Icon     string         `json:"icon"`
	Status   PriorityStatus `json:"status"`
}

type PriorityAnalysis struct {
	SelectedPriorities   []string                    `json:"selected_priorities"`
	PriorityScores       map[string]int              `json:"priority_scores"`
	PriorityFeedback     map[string]PriorityFeedback `json:"priority_feedback"`
	OverallPriorityScore int                         `json:"overall_priority_score"`
	TotalPriorities      int                         `json:"total_priorities"`
}

type FactSheet struct {
	Summary             string  `json:"summary"`
	CompletenessScore   int     `json:"completeness_score"`
	FormattingScore     float64 `json:"formatting_score"`
	PromptWasCustomized bool    `json:"prompt_was_customized"`
}

type TextStatistics struct {
	CharacterCount   int     `json:"character_count"`
	WordCount        int     `json:"word_count"`
	LineCount        int     `json:"line_count"`
	SectionCount     int     `json:"section_count"`
	EstimatedPages   int     `json:"estimated_pages"`
	ReadabilityScore float64 `json:"readability_score"`
}

type ProcessingMetadata struct {
	ProcessingTime float64        `json:"processing_time"`
	CacheUsed      bool           `json:"cache_used"`
	TextQuality    string         `json:"text_quality"`
	Statistics     TextStatistics `json:"statistics"`
}

// AnalysisResult is the full outcome of analysing one resume.
type AnalysisResult struct {
	Analysis          *AIAnalysis        `json:"analysis"`
	RuleBasedFindings *RuleFindings      `json:"rule_based_findings"`
	FactSheet         FactSheet          `json:"fact_sheet"`
	PriorityAnalysis  *PriorityAnalysis  `json:"priority_analysis"`
	Metadata          ProcessingMetadata `json:"processing_metadata"`
}

// AnalysisResponse is the body of a successful single-resume analysis.
type AnalysisResponse struct {
	Status               string             `json:"status"`
	Analysis             *AIAnalysis        `json:"analysis"`
	RuleBasedFindings    *RuleFindings      `json:"rule_based_findings"`
	FactSheet            FactSheet          `json:"fact_sheet"`
	PriorityAnalysis     *PriorityAnalysis  `json:"priority_analysis"`
	ExtractedTextPreview string             `json:"extracted_text_preview"`
	ProcessingMetadata   ProcessingMetadata `json:"processing_metadata"`
}
