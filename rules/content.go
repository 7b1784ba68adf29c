package rules

import (
	"regexp"
	"strings"

	"resumeanalyzer/models"
)

var (
	actionVerbs = regexp.MustCompile(`(?i)\b(?:developed|designed|implemented|managed|led|created|built|improved|optimized|increased|reduced|transformed|spearheaded|coordinated|organized)\b`)

	quantifiedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:increased|reduced|improved|decreased|saved)\s+(?:by\s+)?\d+%`),
		regexp.MustCompile(`(?i)\b\d+\s*(?:times|fold)\s+(?:increase|decrease|improvement)`),
		regexp.MustCompile(`(?i)\$(?:\d+[,.]?)+\s+(?:saved|reduced|increased)`),
		regexp.MustCompile(`(?i)\b\d+\s*(?:people|members|clients|users)`),
	}

	buzzwords = []string{
		"synergy",
		"think outside the box",
		"go-getter",
		"hard worker",
		"results-driven",
		"team player",
		"detail-oriented",
		"self-starter",
	}
	buzzwordPattern = regexp.MustCompile(`(?i)\b(?:` + quoteAll(buzzwords) + `)\b`)
)

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// AnalyzeContentQuality counts action verbs, quantified achievements and
// buzzwords. The score starts at 100 with a floor of 50.
func AnalyzeContentQuality(text string) models.ContentQualityAnalysis {
	result := models.ContentQualityAnalysis{Issues: []string{}, Score: 100}

	result.ActionVerbCount = len(actionVerbs.FindAllStringIndex(text, -1))
	for _, re := range quantifiedPatterns {
		result.QuantifiableAchievements += len(re.FindAllStringIndex(text, -1))
	}
	result.BuzzwordCount = len(buzzwordPattern.FindAllStringIndex(text, -1))

	if result.ActionVerbCount < 5 {
		result.Issues = append(result.Issues, "Limited use of action verbs in experience descriptions")
		result.Score -= 15
	}
	if result.QuantifiableAchievements < 2 {
		result.Issues = append(result.Issues, "Few quantifiable achievements found")
		result.Score -= 20
	}
	if result.BuzzwordCount > 3 {
		result.Issues = append(result.Issues, "Overuse of clichéd buzzwords")
		result.Score -= 10
	}
	result.Score = max(result.Score, 50)
	return result
}
