package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumeanalyzer/models"
)

const (
	minEmptyRatio        = 0.05
	maxEmptyRatio        = 0.15
	maxConsecutiveEmpty  = 2
	spacingPenalty       = 5
	maxLineChars         = 120
	optimalLineMin       = 50
	optimalLineMax       = 100
	lineLengthPenalty    = 2
	maxLineViolations    = 5
	wordsPerPage         = 400
	minPages             = 1.0
	maxPages             = 2.0
	extraPagePenalty     = 20
	maxBulletIndentDrift = 4
)

var (
	bulletLine   = regexp.MustCompile(`^\s*(?:[•·●\-*]|\d+\.)\s`)
	dotBullet    = regexp.MustCompile(`^\s*[•·●]\s`)
	starBullet   = regexp.MustCompile(`^\s*\*\s`)
	numBullet    = regexp.MustCompile(`^\s*\d+\.\s`)
	dashBullet   = regexp.MustCompile(`^\s*-\s`)
	symbolBullet = regexp.MustCompile(`^\s*[•●\-*]\s`)
	titleCase    = regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*$`)

	dateFormats = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b` + shortMonths + `[a-z]* \d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{1,2}\b`),
		regexp.MustCompile(`(?i)\b` + longMonths + ` \d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`),
	}
)

// AnalyzeFormatting scores spacing, bullets, line length, resume length
// and consistency, weighting each a fifth.
func AnalyzeFormatting(text string) models.FormattingAnalysis {
	lines := strings.Split(text, "\n")

	spacingScore, spacingIssues := analyzeSpacing(lines)
	bulletScore, bulletIssues := analyzeBullets(lines)
	lineScore, lineIssues := analyzeLineLengths(lines)
	lengthScore, pages, lengthIssues := analyzeResumeLength(text)
	consistencyScore, consistencyIssues := analyzeConsistency(text)

	return models.FormattingAnalysis{
		SpacingAnalysis: models.SpacingAnalysis{
			SpacingScore:  spacingScore,
			SpacingIssues: spacingIssues,
		},
		BulletPointAnalysis: models.BulletPointAnalysis{
			BulletConsistencyScore: bulletScore,
			ConsistencyPercentage:  bulletScore,
			BulletIssues:           bulletIssues,
		},
		LineLengthAnalysis: models.LineLengthAnalysis{
			LineLengthScore:  lineScore,
			LineLengthIssues: lineIssues,
		},
		ResumeLengthAnalysis: models.ResumeLengthAnalysis{
			LengthScore:         lengthScore,
			IsAppropriateLength: lengthScore > 80,
			EstimatedPages:      pages,
			LengthIssues:        lengthIssues,
		},
		ConsistencyAnalysis: models.ConsistencyAnalysis{
			ConsistencyScore:  consistencyScore,
			ConsistencyIssues: consistencyIssues,
		},
		OverallFormattingScore: 0.2 * (spacingScore + bulletScore + lineScore + lengthScore + consistencyScore),
	}
}

func analyzeSpacing(lines []string) (float64, []string) {
	issues := []string{}
	if len(lines) == 0 {
		return 100, issues
	}

	empty, run, longestRun := 0, 0, 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			empty++
			run++
			longestRun = max(longestRun, run)
		} else {
			run = 0
		}
	}

	violations := 0
	ratio := float64(empty) / float64(len(lines))
	if ratio < minEmptyRatio {
		issues = append(issues, fmt.Sprintf("Insufficient spacing: %.1f%% (minimum %.1f%%)", ratio*100, minEmptyRatio*100))
		violations++
	} else if ratio > maxEmptyRatio {
		issues = append(issues, fmt.Sprintf("Excessive spacing: %.1f%% (maximum %.1f%%)", ratio*100, maxEmptyRatio*100))
		violations++
	}
	if longestRun > maxConsecutiveEmpty {
		issues = append(issues, fmt.Sprintf("Too many consecutive empty lines: %d (maximum %d)", longestRun, maxConsecutiveEmpty))
		violations++
	}

	if violations == 0 {
		return 100, issues
	}
	return max(100-float64(violations*spacingPenalty), 40), issues
}

func analyzeBullets(lines []string) (float64, []string) {
	issues := []string{}
	var bullets []string
	for _, line := range lines {
		if bulletLine.MatchString(line) {
			bullets = append(bullets, line)
		}
	}
	if len(bullets) < 3 {
		return 100, issues
	}

	styles := map[string]bool{}
	minIndent, maxIndent := -1, 0
	for _, line := range bullets {
		switch {
		case dotBullet.MatchString(line):
			styles["dot"] = true
		case starBullet.MatchString(line):
			styles["star"] = true
		case numBullet.MatchString(line):
			styles["number"] = true
		case dashBullet.MatchString(line):
			styles["dash"] = true
		}

		indent := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
		maxIndent = max(maxIndent, indent)
	}

	if len(styles) > 1 {
		issues = append(issues, "Inconsistent bullet point styles used")
	}
	if maxIndent-minIndent > maxBulletIndentDrift {
		issues = append(issues, "Inconsistent bullet point indentation")
	}
	return max(100-float64(len(issues)*15), 50), issues
}

func analyzeLineLengths(lines []string) (float64, []string) {
	issues := []string{}
	var lengths []int
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			lengths = append(lengths, utf8.RuneCountInString(line))
		}
	}
	if len(lengths) == 0 {
		return 100, issues
	}

	violations, total := 0, 0
	for _, n := range lengths {
		total += n
		if n > maxLineChars {
			violations++
		}
	}
	if violations > 0 {
		issues = append(issues, fmt.Sprintf("%d lines exceed %d-character limit", violations, maxLineChars))
	}

	switch {
	case violations == 0:
		avg := float64(total) / float64(len(lengths))
		if avg >= optimalLineMin && avg <= optimalLineMax {
			return 100, issues
		}
		return 90, issues
	case violations <= maxLineViolations:
		return max(100-float64(violations*lineLengthPenalty), 60), issues
	default:
		return 50, append(issues, "Excessive line length violations detected")
	}
}

func analyzeResumeLength(text string) (float64, float64, []string) {
	issues := []string{}
	pages := float64(len(strings.Fields(text))) / wordsPerPage

	switch {
	case pages < minPages:
		issues = append(issues, fmt.Sprintf("Resume too short: %.1f pages (minimum %.1f)", pages, minPages))
		return 60, pages, issues
	case pages > maxPages:
		issues = append(issues, fmt.Sprintf("Resume too long: %.1f pages (maximum %.1f)", pages, maxPages))
		return max(100-(pages-maxPages)*extraPagePenalty, 30), pages, issues
	default:
		return 100, pages, issues
	}
}

func analyzeConsistency(text string) (float64, []string) {
	issues := []string{}

	formats := 0
	for _, re := range dateFormats {
		if re.MatchString(text) {
			formats++
		}
	}
	if formats > 1 {
		issues = append(issues, fmt.Sprintf("Inconsistent date formats: %d different formats found", formats))
	}
	issues = append(issues, headingIssues(text)...)
	issues = append(issues, punctuationIssues(text)...)

	switch n := len(issues); {
	case n == 0:
		return 100, issues
	case n <= 2:
		return 85, issues
	case n <= 4:
		return 70, issues
	default:
		return 50, issues
	}
}

func headingIssues(text string) []string {
	allCaps, titled := 0, 0
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if len(s) <= 2 || len(s) >= 50 {
			continue
		}
		if isUpper(s) {
			allCaps++
		} else if titleCase.MatchString(s) {
			titled++
		}
	}
	if allCaps > 0 && titled > 0 {
		return []string{"Inconsistent heading capitalization styles"}
	}
	return nil
}

func punctuationIssues(text string) []string {
	endings := map[byte]bool{}
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if !symbolBullet.MatchString(line) {
			continue
		}
		count++
		s := strings.TrimSpace(line)
		switch last := s[len(s)-1]; last {
		case '.', ',', ';':
			endings[last] = true
		default:
			endings[0] = true
		}
	}
	if len(endings) > 1 && count > 3 {
		return []string{"Inconsistent punctuation in bullet points"}
	}
	return nil
}

// isUpper reports whether s has a cased letter and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
