package rules

import (
	"regexp"

	"resumeanalyzer/models"
)

const (
	shortMonths = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`
	longMonths  = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b` + shortMonths + `[a-z]*\s+\d{4}`),
	regexp.MustCompile(`\b\d{1,2}/\d{4}`),
	regexp.MustCompile(`\b\d{4}-\d{1,2}\b`),
	regexp.MustCompile(`(?i)\b` + longMonths + `\s+\d{4}`),
	regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b(?:Present|Current|Now|Ongoing)\b`),
}

var (
	projectKeywords = regexp.MustCompile(`(?i)\b(?:project|developed|built|created|implemented|designed|engineered|led|managed|spearheaded)\b`)
	projectHeading  = regexp.MustCompile(`(?im)^[ \t]*(?:PROJECTS|PROJECT EXPERIENCE|PROJECT WORK|PERSONAL PROJECTS|ACADEMIC PROJECTS)[ \t]*:?[ \t]*$`)
	sectionStop     = regexp.MustCompile(`(?im)^[ \t]*[A-Za-z &/]{0,30}(?:EDUCATION|EXPERIENCE|SKILLS)[ \t]*:?[ \t]*$`)

	dateToken = `(?:` + shortMonths + `[a-z]*\.?\s+\d{4}|\d{1,2}/\d{4}|\d{4})`
	dateRange = regexp.MustCompile(`(?i)\b` + dateToken + `\s*(?:-|–|—|to)\s*(?:` + dateToken + `|Present|Current|Now|Ongoing)\b`)
)

// DetectProjectDates counts dates and estimates how many projects carry
// one, assuming two dates per project.
func DetectProjectDates(text string) models.ProjectDatesAnalysis {
	result := models.ProjectDatesAnalysis{DateContexts: []models.DateContext{}}

	for _, re := range datePatterns {
		for _, m := range re.FindAllStringIndex(text, -1) {
			result.TotalDatesFound++
			result.DateContexts = append(result.DateContexts, models.DateContext{
				Date:    text[m[0]:m[1]],
				Context: snippet(text, m[0], m[1], 30),
			})
		}
	}

	projects := 0
	for _, section := range projectSections(text) {
		projects += len(projectKeywords.FindAllStringIndex(section, -1))
	}
	if projects == 0 {
		projects = len(projectKeywords.FindAllStringIndex(text, -1))
	}

	result.DatesPresent = result.TotalDatesFound > 0
	result.TotalProjectsIdentified = projects
	result.ProjectsWithDates = min(result.TotalDatesFound/2, projects)
	result.ProjectsWithDateRanges = len(dateRange.FindAllStringIndex(text, -1))
	if projects > 0 {
		result.ProjectDateCoverage = float64(result.ProjectsWithDates) / float64(projects)
	}
	return result
}

// projectSections returns the bodies under project headings, each running
// to the next education, experience or skills heading.
func projectSections(text string) []string {
	var sections []string
	for _, m := range projectHeading.FindAllStringIndex(text, -1) {
		body := text[m[1]:]
		if stop := sectionStop.FindStringIndex(body); stop != nil {
			body = body[:stop[0]]
		}
		sections = append(sections, body)
	}
	return sections
}
