package rules

import (
	"regexp"

	"resumeanalyzer/models"
)

const gradeValue = `(\d{1,2}(?:\.\d{1,2})?)\b`

var cgpaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:CGPA|GPA|Grade Point Average)[\s:]*` + gradeValue + `\s*/\s*` + gradeValue),
	regexp.MustCompile(`(?i)\b(?:CGPA|GPA|Grade Point Average)[\s:]*` + gradeValue),
	regexp.MustCompile(`(?i)\b` + gradeValue + `\s*/\s*` + gradeValue + `\s*(?:CGPA|GPA)\b`),
	regexp.MustCompile(`(?i)\b` + gradeValue + `\s*(?:CGPA|GPA)\b`),
	regexp.MustCompile(`(?i)\b(?:CGPA|GPA)\s*of\s*` + gradeValue),
}

// DetectCGPA finds grade point averages. The first capture of each match
// is the value and the second, when present, the scale.
func DetectCGPA(text string) models.CGPAAnalysis {
	result := models.CGPAAnalysis{
		CGPAValues:   []string{},
		CGPAContexts: []string{},
		Scale:        "unknown",
	}
	seen := map[string]bool{}
	var spans [][2]int

	for _, re := range cgpaPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if overlaps(spans, m[0], m[1]) {
				continue
			}
			spans = append(spans, [2]int{m[0], m[1]})

			value := text[m[2]:m[3]]
			if result.Scale == "unknown" && len(m) >= 6 && m[4] >= 0 {
				result.Scale = text[m[4]:m[5]]
			}
			if seen[value] {
				continue
			}
			seen[value] = true
			result.CGPAValues = append(result.CGPAValues, value)
			result.CGPAContexts = append(result.CGPAContexts, snippet(text, m[0], m[1], 20))
		}
	}

	result.CGPACount = len(result.CGPAValues)
	result.CGPAPresent = result.CGPACount > 0
	return result
}
