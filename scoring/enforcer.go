package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"resumeanalyzer/models"
)

const (
	cgpaSuggestion         = "Include CGPA/GPA information to demonstrate academic performance."
	cgpaSuggestionSuffix   = " Also include CGPA/GPA information to demonstrate academic performance."
	datesSuggestion        = "Add start and end dates for all projects to establish timeline and credibility."
	datesSuggestionSuffix  = " Add start and end dates for all projects."
	minorRefinements       = "Consider minor refinements to further enhance this section."
	genericSectionAdvice   = "Consider adding more relevant content to strengthen this section."
	strongOverallAdvice    = "Your resume shows strong potential. Focus on the specific suggestions above to optimize each section."
	weakOverallAdvice      = "Strengthen your resume by addressing the key areas highlighted in each section above."
	noOverallSuggestions   = "No overall suggestions."
	headshotRemove         = "Remove the headshot; photos are not recommended in professional resumes."
	headshotNone           = "No suggestions regarding headshots."
	criticalGapsSuggestion = "Address critical gaps: %s. Consider adding more comprehensive information to improve resume completeness."
)

// neutralOverallScore is used when the analysis has no sections at all.
const neutralOverallScore models.Score = 50

// sectionRule describes what counts as empty or thin content for a section.
type sectionRule struct {
	section        string
	requiredFields []string
	textKey        string
	minLength      int
	listKeys       []string
	minItems       int
	fewCap         models.Score
	suggestion     string
}

var sectionRules = []sectionRule{
	{
		section:        models.SectionBasicInfo,
		requiredFields: []string{"name", "email"},
		suggestion:     "Include complete contact information with name, email, phone, and location.",
	},
	{
		section:    models.SectionProfessionalSummary,
		textKey:    "summary_text",
		minLength:  20,
		suggestion: "Add a professional summary that highlights your key qualifications and career objectives.",
	},
	{
		section:    models.SectionWorkExperience,
		listKeys:   []string{"companies", "positions"},
		minItems:   1,
		suggestion: "Include work experience with company names, positions, dates, and quantified achievements.",
	},
	{
		section:    models.SectionProjects,
		listKeys:   []string{"project_names"},
		minItems:   1,
		suggestion: "Add technical projects with names, descriptions, technologies used, and dates.",
	},
	{
		section:    models.SectionSkills,
		listKeys:   []string{"technical_skills"},
		minItems:   3,
		fewCap:     30,
		suggestion: "Include relevant technical skills, soft skills, and programming languages organized by category.",
	},
	{
		section:    models.SectionCertifications,
		listKeys:   []string{"certification_names"},
		suggestion: "Consider adding relevant certifications with issuing organizations and dates.",
	},
	{
		section:    models.SectionExtracurriculars,
		listKeys:   []string{"activities"},
		suggestion: "Include extracurricular activities, leadership roles, and volunteer work with dates and impact descriptions.",
	},
}

// defaultSuggestions are used when a low-scoring section has no usable advice.
var defaultSuggestions = map[string]string{
	models.SectionBasicInfo:           "Include complete contact information with name, email, phone, and location.",
	models.SectionProfessionalSummary: "Add a professional summary that highlights your key qualifications and career objectives.",
	models.SectionEducation:           "Include educational background with institution names, degrees, and graduation dates.",
	models.SectionWorkExperience:      "Add work experience with company names, positions, dates, and quantified achievements.",
	models.SectionProjects:            "Include technical projects with names, descriptions, technologies used, and dates.",
	models.SectionSkills:              "Add relevant technical skills, soft skills, and programming languages organized by category.",
	models.SectionCertifications:      "Consider adding relevant certifications with issuing organizations and dates.",
	models.SectionExtracurriculars:    "Include extracurricular activities, leadership roles, and volunteer work with dates and impact descriptions.",
}

const defaultMinimalCap models.Score = 60

// Enforcer reconciles model scores with rule-based findings.
type Enforcer struct {
	logger *zap.Logger
}

// NewEnforcer creates an enforcer. A nil logger disables logging.
func NewEnforcer(logger *zap.Logger) *Enforcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enforcer{logger: logger}
}

// Enforce corrects analysis in place so its scores agree with findings and
// returns the corrections made. With nil findings only the basic
// consistency pass runs.
func (e *Enforcer) Enforce(analysis *models.AIAnalysis, findings *models.RuleFindings, priorities []string) []string {
	if analysis == nil {
		return nil
	}
	if findings == nil {
		e.enforceBasicConsistency(analysis)
		return nil
	}

	var corrections []string
	corrections = append(corrections, enforceEducation(analysis, findings.CGPAAnalysis.CGPAPresent)...)
	corrections = append(corrections, enforceProjects(analysis, findings.ProjectDatesAnalysis)...)
	corrections = append(corrections, enforceOverall(analysis, findings.CompletenessScore)...)
	corrections = append(corrections, enforceFormatting(analysis, findings.FormattingAnalysis)...)
	corrections = append(corrections, validateAllSections(analysis)...)
	corrections = append(corrections, validateConsistency(analysis, findings)...)
	e.enforceBasicConsistency(analysis)

	if len(corrections) > 0 {
		e.logger.Info("score enforcement corrections",
			zap.Strings("corrections", corrections),
			zap.Strings("priorities", priorities))
		analysis.EnforcementCorrections = corrections
	}
	return corrections
}

// EnforceHeadshotRule rewrites the headshot suggestion from the has_headshot flag.
func EnforceHeadshotRule(analysis *models.AIAnalysis) {
	if analysis == nil {
		return
	}
	if analysis.FormattingIssues.HasHeadshot {
		analysis.FormattingIssues.HeadshotSuggestion = headshotRemove
	} else {
		analysis.FormattingIssues.HeadshotSuggestion = headshotNone
	}
}

func enforceEducation(a *models.AIAnalysis, cgpaPresent bool) []string {
	edu := &a.Education
	if cgpaPresent || edu.QualityScore <= 85 {
		return nil
	}

	original := edu.QualityScore
	edu.QualityScore = minScore(75, original)
	corrections := []string{
		fmt.Sprintf("Education score reduced from %d to %d due to missing CGPA", original, edu.QualityScore),
	}

	suggestions := strings.TrimSpace(edu.Suggestions.String())
	if !strings.Contains(strings.ToLower(suggestions), "gpa") {
		if isEmptySuggestion(suggestions) {
			edu.Suggestions = cgpaSuggestion
		} else {
			edu.Suggestions = models.FlexString(suggestions + cgpaSuggestionSuffix)
		}
		corrections = append(corrections, "Added CGPA suggestion to education section")
	}
	return corrections
}

func enforceProjects(a *models.AIAnalysis, dates models.ProjectDatesAnalysis) []string {
	proj := &a.Projects
	original := proj.QualityScore
	suggestions := strings.TrimSpace(proj.Suggestions.String())

	switch {
	case !dates.DatesPresent && original > 80:
		proj.QualityScore = minScore(65, original)
		corrections := []string{
			fmt.Sprintf("Projects score reduced from %d to %d due to missing project dates", original, proj.QualityScore),
		}
		if !strings.Contains(strings.ToLower(suggestions), "date") {
			if isEmptySuggestion(suggestions) {
				proj.Suggestions = datesSuggestion
			} else {
				proj.Suggestions = models.FlexString(suggestions + datesSuggestionSuffix)
			}
			corrections = append(corrections, "Added date suggestion to projects section")
		}
		return corrections

	case dates.ProjectDateCoverage < 0.7 && original > 85:
		penalty := int((1 - dates.ProjectDateCoverage) * 20)
		proj.QualityScore = maxScore(70, original-models.Score(penalty))
		return []string{fmt.Sprintf("Projects score adjusted from %d to %d due to incomplete date coverage (%d%%)",
			original, proj.QualityScore, int(dates.ProjectDateCoverage*100))}
	}
	return nil
}

func enforceOverall(a *models.AIAnalysis, completeness float64) []string {
	if completeness >= 50 || a.OverallScore <= 70 {
		return nil
	}
	original := a.OverallScore
	a.OverallScore = minScore(60, original)
	return []string{fmt.Sprintf("Overall score reduced from %d to %d due to low completeness (%s/100)",
		original, a.OverallScore, strconv.FormatFloat(completeness, 'f', -1, 64))}
}

func enforceFormatting(a *models.AIAnalysis, f models.FormattingAnalysis) []string {
	if f.OverallFormattingScore >= 70 {
		return nil
	}
	if other := strings.TrimSpace(a.FormattingIssues.OtherFormattingIssues.String()); !isEmptySuggestion(other) {
		return nil
	}

	var issues []string
	issues = append(issues, f.SpacingAnalysis.SpacingIssues...)
	if c := f.BulletPointAnalysis.ConsistencyPercentage; c < 80 {
		issues = append(issues, fmt.Sprintf("Inconsistent bullet points (%.0f%% consistency)", c))
	}
	if len(issues) == 0 {
		return nil
	}
	a.FormattingIssues.OtherFormattingIssues = models.FlexString(strings.Join(issues, "; "))
	return []string{"Added detected formatting issues that AI missed"}
}

func validateAllSections(a *models.AIAnalysis) []string {
	var corrections []string
	for _, rule := range sectionRules {
		section := a.Section(rule.section)
		score := section.QualityScore
		suggestions := strings.TrimSpace(section.Suggestions.String())

		if rule.isEmpty(section) {
			if score > 0 {
				section.QualityScore = 0
				corrections = append(corrections, fmt.Sprintf("%s score reduced from %d to 0 due to completely empty content", rule.section, score))
			}
			if isEmptySuggestion(suggestions) || strings.Contains(suggestions, "LinkedIn") {
				section.Suggestions = models.FlexString(rule.suggestion)
				corrections = append(corrections, fmt.Sprintf("Improved %s suggestions for empty content", rule.section))
			}
		} else if rule.isMinimal(section) {
			limit := rule.fewCap
			if limit == 0 {
				limit = defaultMinimalCap
			}
			if score > limit {
				section.QualityScore = limit
				corrections = append(corrections, fmt.Sprintf("%s score reduced from %d to %d due to minimal content", rule.section, score, limit))
			}
		}

		if isEmptySuggestion(suggestions) && score < 85 {
			section.Suggestions = models.FlexString(rule.suggestion)
			corrections = append(corrections, fmt.Sprintf("Added meaningful suggestions to %s", rule.section))
		}
		if mentionsPhoto(suggestions) {
			section.Suggestions = models.FlexString(rule.suggestion)
			corrections = append(corrections, fmt.Sprintf("Replaced inappropriate suggestion in %s", rule.section))
		}
	}
	return corrections
}

func (r sectionRule) isEmpty(s *models.SectionAnalysis) bool {
	if len(s.Content) == 0 {
		return true
	}
	switch {
	case len(r.requiredFields) > 0:
		for _, field := range r.requiredFields {
			if strings.TrimSpace(s.Text(field)) != "" {
				return false
			}
		}
		return true
	case r.textKey != "":
		return len(strings.TrimSpace(s.Text(r.textKey))) < r.minLength
	case len(r.listKeys) > 0:
		for _, key := range r.listKeys {
			if n, _ := s.ItemCount(key); n > 0 {
				return false
			}
		}
		return true
	}
	return false
}

func (r sectionRule) isMinimal(s *models.SectionAnalysis) bool {
	if len(r.listKeys) == 0 || r.isEmpty(s) {
		return false
	}
	total := 0
	for _, key := range r.listKeys {
		n, _ := s.ItemCount(key)
		total += n
	}
	return total < r.minItems
}

var criticalSections = []string{models.SectionEducation, models.SectionProjects, models.SectionWorkExperience}

func validateConsistency(a *models.AIAnalysis, findings *models.RuleFindings) []string {
	var corrections []string

	sum := 0
	for _, name := range criticalSections {
		sum += int(a.Section(name).QualityScore)
	}
	avg := float64(sum) / float64(len(criticalSections))
	if float64(a.OverallScore) > avg+20 {
		original := a.OverallScore
		a.OverallScore = models.Score(int(math.Min(float64(original), avg+15)))
		corrections = append(corrections, fmt.Sprintf("Overall score adjusted from %d to %d (too high compared to section average %.1f)", original, a.OverallScore, avg))
	}

	cgpaMissing := !findings.CGPAAnalysis.CGPAPresent
	datesMissing := !findings.ProjectDatesAnalysis.DatesPresent

	if findings.CompletenessScore < 60 {
		overall := strings.TrimSpace(a.OverallSuggestions.String())
		if overall == "" || overall == noOverallSuggestions {
			var gaps []string
			if cgpaMissing {
				gaps = append(gaps, "missing academic performance metrics")
			}
			if datesMissing {
				gaps = append(gaps, "missing project dates")
			}
			if len(gaps) > 0 {
				a.OverallSuggestions = models.FlexString(fmt.Sprintf(criticalGapsSuggestion, strings.Join(gaps, ", ")))
				corrections = append(corrections, "Added overall suggestions due to detected completeness issues")
			}
		}
	}

	major := 0
	for _, issue := range []bool{cgpaMissing, datesMissing, findings.FormattingAnalysis.OverallFormattingScore < 70} {
		if issue {
			major++
		}
	}
	if major >= 2 && a.OverallScore > 75 {
		original := a.OverallScore
		penalty := models.Score(min(20, major*8))
		a.OverallScore = maxScore(55, original-penalty)
		corrections = append(corrections, fmt.Sprintf("Overall score reduced from %d to %d due to %d major detected issues", original, a.OverallScore, major))
	}
	return corrections
}

func (e *Enforcer) enforceBasicConsistency(a *models.AIAnalysis) {
	present := false
	total := 0
	for _, name := range models.ScoredSections {
		section := a.Section(name)
		suggestions := strings.TrimSpace(section.Suggestions.String())

		switch {
		case isEmptySuggestion(suggestions) || mentionsPhoto(suggestions):
			if section.QualityScore >= 85 {
				section.Suggestions = minorRefinements
			} else if d, ok := defaultSuggestions[name]; ok {
				section.Suggestions = models.FlexString(d)
			} else {
				section.Suggestions = genericSectionAdvice
			}
		case section.QualityScore == 100 && len(suggestions) > 20:
			e.logger.Warn("perfect score with detailed suggestions", zap.String("section", name))
			section.QualityScore = 95
		}

		if section.QualityScore > 0 || len(section.Content) > 0 {
			present = true
		}
		total += int(section.QualityScore)
	}

	if a.OverallScore == 0 {
		if present {
			a.OverallScore = models.ClampScore(int(math.Round(float64(total) / float64(len(models.ScoredSections)))))
		} else {
			a.OverallScore = neutralOverallScore
		}
	}

	if strings.TrimSpace(a.OverallSuggestions.String()) == "" {
		if a.OverallScore >= 80 {
			a.OverallSuggestions = strongOverallAdvice
		} else {
			a.OverallSuggestions = weakOverallAdvice
		}
	}
}

func isEmptySuggestion(s string) bool {
	return s == "" || s == models.NoSuggestions
}

func mentionsPhoto(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "profile picture") || strings.Contains(lower, "headshot")
}

func minScore(a, b models.Score) models.Score {
	if a < b {
		return a
	}
	return b
}

func maxScore(a, b models.Score) models.Score {
	if a > b {
		return a
	}
	return b
}
