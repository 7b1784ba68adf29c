package scoring

import (
	"fmt"
	"strings"

	"resumeanalyzer/models"
)

const noPreAnalysis = "No pre-analysis data available."

// BuildFactSheet summarises the rule findings in one line for the prompt and the response.
func BuildFactSheet(f *models.RuleFindings) models.FactSheet {
	if f == nil {
		return models.FactSheet{Summary: noPreAnalysis}
	}

	var parts []string
	if f.CGPAAnalysis.CGPAPresent {
		parts = append(parts, fmt.Sprintf("✅ CGPA: %d found", f.CGPAAnalysis.CGPACount))
	} else {
		parts = append(parts, "❌ CGPA: Missing")
	}

	if f.ProjectDatesAnalysis.DatesPresent {
		parts = append(parts, fmt.Sprintf("✅ Project Dates: %d%% coverage", int(f.ProjectDatesAnalysis.ProjectDateCoverage*100)))
	} else {
		parts = append(parts, "❌ Project Dates: Missing")
	}

	format := f.FormattingAnalysis.OverallFormattingScore
	parts = append(parts, fmt.Sprintf("%s Formatting: %.0f/100", statusMark(format, 85, 70), format))

	links := f.LinkValidationAnalysis
	switch {
	case len(links.BrokenLinks) > 0:
		parts = append(parts, fmt.Sprintf("❌ Links: %d broken", len(links.BrokenLinks)))
	case len(links.ValidLinks) > 0:
		parts = append(parts, fmt.Sprintf("✅ Links: %d valid", len(links.ValidLinks)))
	default:
		parts = append(parts, "⚠️ Links: None found")
	}

	completeness := int(f.CompletenessScore)
	parts = append(parts, fmt.Sprintf("%s Completeness: %d/100", statusMark(f.CompletenessScore, 75, 50), completeness))

	return models.FactSheet{
		Summary:             strings.Join(parts, " | "),
		CompletenessScore:   completeness,
		FormattingScore:     format,
		PromptWasCustomized: true,
	}
}

// ScoringGuidance returns prompt lines pointing the model at detected gaps.
func ScoringGuidance(f *models.RuleFindings) []string {
	guidance := []string{"DYNAMIC SCORING GUIDANCE:"}
	if f == nil {
		f = &models.RuleFindings{}
	}

	if f.CGPAAnalysis.CGPAPresent {
		guidance = append(guidance, "- Education section: Award full points - CGPA information detected")
	} else {
		guidance = append(guidance, "- Education section: Reduce score significantly - CGPA/GPA missing (detected gap)")
	}

	if f.ProjectDatesAnalysis.ProjectDateCoverage >= 0.8 {
		guidance = append(guidance, "- Projects section: Award full points - good date coverage detected")
	} else {
		guidance = append(guidance, "- Projects section: Reduce score due to missing/incomplete project dates (detected gap)")
	}

	guidance = append(guidance,
		fmt.Sprintf("- Overall formatting: Base assessment on detected formatting score of %.0f/100", f.FormattingAnalysis.OverallFormattingScore),
		"",
		"ADAPTIVE SUGGESTIONS - Address the specific gaps detected above. Avoid generic advice when specific issues are identified.",
		"",
	)
	return guidance
}

func statusMark(score, good, fair float64) string {
	switch {
	case score >= good:
		return "✅"
	case score >= fair:
		return "⚠️"
	default:
		return "❌"
	}
}
