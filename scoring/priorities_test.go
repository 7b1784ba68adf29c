package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeanalyzer/models"
)

func TestPriorityWeights(t *testing.T) {
	tests := []struct {
		priorities []string
		want       map[string]int
	}{
		{nil, map[string]int{}},
		{[]string{"A"}, map[string]int{"A": 100}},
		{[]string{"A", "B"}, map[string]int{"A": 67, "B": 33}},
		{[]string{"A", "B", "C"}, map[string]int{"A": 50, "B": 33, "C": 17}},
		{[]string{"A", "B", "C", "D", "E"}, map[string]int{"A": 33, "B": 27, "C": 20, "D": 13, "E": 7}},
	}
	for _, tt := range tests {
		got := PriorityWeights(tt.priorities)
		assert.Equal(t, tt.want, got, "%v", tt.priorities)
	}
}

func TestSectionWeights(t *testing.T) {
	got := SectionWeights(map[string]int{"Technical Skills": 50, "Project Experience": 33, "Resume Formatting": 17})
	assert.Equal(t, map[string]int{
		models.SectionSkills:              50,
		models.SectionProjects:            33,
		models.SectionBasicInfo:           3,
		models.SectionProfessionalSummary: 3,
		models.SectionEducation:           3,
		models.SectionWorkExperience:      3,
		models.SectionCertifications:      3,
		models.SectionExtracurriculars:    2,
	}, got)

	both := SectionWeights(map[string]int{"GitHub Profile": 60, "LinkedIn Profile": 40})
	assert.Equal(t, 100, both[models.SectionBasicInfo])
	assert.Equal(t, 0, both[models.SectionSkills])
}

func TestOverallScore(t *testing.T) {
	a := &models.AIAnalysis{}
	a.BasicInfo.QualityScore = 80
	a.Education.QualityScore = 70
	a.WorkExperience.QualityScore = 90
	a.Projects.QualityScore = 60

	assert.Equal(t, models.Score(76), OverallScore(a, nil))
	assert.Equal(t, models.Score(90), OverallScore(a, map[string]int{models.SectionWorkExperience: 100}))
	assert.Equal(t, models.Score(0), OverallScore(&models.AIAnalysis{}, nil))
	assert.Equal(t, models.Score(0), OverallScore(nil, nil))
}

func TestSectionTitle(t *testing.T) {
	assert.Equal(t, "Work Experience", SectionTitle("work_experience"))
	assert.Equal(t, "Skills", SectionTitle("skills"))
}

func priorityFixture() (*models.AIAnalysis, *models.RuleFindings) {
	a := &models.AIAnalysis{}
	a.Projects = models.SectionAnalysis{QualityScore: 80, Suggestions: "Add links to repos."}
	a.Education = models.SectionAnalysis{QualityScore: 90, Suggestions: models.NoSuggestions}
	a.Skills = models.SectionAnalysis{QualityScore: 70}
	a.ProfessionalSummary = models.SectionAnalysis{QualityScore: 60}
	a.WorkExperience = models.SectionAnalysis{QualityScore: 90, Suggestions: "Quantify impact."}
	a.LinksFound.GitHubPresent = true

	f := &models.RuleFindings{}
	f.ProjectDatesAnalysis = models.ProjectDatesAnalysis{DatesPresent: true, ProjectDateCoverage: 0.5}
	f.CGPAAnalysis = models.CGPAAnalysis{CGPAPresent: true, CGPACount: 2}
	f.LinkValidationAnalysis.ValidLinks = []models.ExtractedLink{{
		Type:              models.LinkGitHub,
		ValidationDetails: &models.LinkValidationResult{Platform: "GitHub"},
	}}
	f.FormattingAnalysis.OverallFormattingScore = 72.4
	f.ContentQualityAnalysis = models.ContentQualityAnalysis{Score: 70, Issues: []string{"Few quantified achievements"}}
	return a, f
}

func TestPriorityAnalysis(t *testing.T) {
	a, f := priorityFixture()
	priorities := []string{"Project Experience", "Academic Performance", "GitHub Profile", "LinkedIn Profile"}

	pa := PriorityAnalysis(a, priorities, f)
	require.NotNil(t, pa)

	assert.Equal(t, priorities, pa.SelectedPriorities)
	assert.Equal(t, 4, pa.TotalPriorities)
	assert.Equal(t, map[string]int{
		"Project Experience":   65,
		"Academic Performance": 90,
		"GitHub Profile":       90,
		"LinkedIn Profile":     0,
	}, pa.PriorityScores)
	assert.Equal(t, 61, pa.OverallPriorityScore)

	projects := pa.PriorityFeedback["Project Experience"]
	assert.Equal(t, []string{"⚠️ Only 50% of projects have dates", "Projects: Add links to repos."}, projects.Feedback)
	assert.Equal(t, models.StatusNeedsImprovement, projects.Status)
	assert.Equal(t, "🚀", projects.Icon)

	academic := pa.PriorityFeedback["Academic Performance"]
	assert.Equal(t, []string{"✅ 2 academic score(s) found"}, academic.Feedback)
	assert.Equal(t, models.StatusExcellent, academic.Status)

	assert.Equal(t, []string{"✅ Valid GitHub profile found"}, pa.PriorityFeedback["GitHub Profile"].Feedback)
	linkedin := pa.PriorityFeedback["LinkedIn Profile"]
	assert.Equal(t, []string{"⚠️ No LinkedIn profile found"}, linkedin.Feedback)
	assert.Equal(t, models.StatusCritical, linkedin.Status)
}

func TestPriorityAnalysis_ContentAndFormatting(t *testing.T) {
	a, f := priorityFixture()

	pa := PriorityAnalysis(a, []string{"Content Quality", "Resume Formatting", "Technical Skills", "Unknown"}, f)
	require.NotNil(t, pa)

	assert.Equal(t, 75, pa.PriorityScores["Content Quality"])
	assert.Equal(t, []string{
		"⚠️ Few quantified achievements",
		"Work Experience: Quantify impact.",
		"Projects: Add links to repos.",
	}, pa.PriorityFeedback["Content Quality"].Feedback)

	assert.Equal(t, 72, pa.PriorityScores["Resume Formatting"])
	assert.Equal(t, []string{"⚠️ Minor formatting issues (score: 72/100)"}, pa.PriorityFeedback["Resume Formatting"].Feedback)

	assert.Equal(t, []string{"No specific issues found."}, pa.PriorityFeedback["Technical Skills"].Feedback)
	assert.Equal(t, models.StatusGood, pa.PriorityFeedback["Technical Skills"].Status)

	_, known := pa.PriorityScores["Unknown"]
	assert.False(t, known)
	assert.Equal(t, 4, pa.TotalPriorities)
}

func TestPriorityAnalysis_NoDatesOrCGPA(t *testing.T) {
	a, f := priorityFixture()
	f.ProjectDatesAnalysis = models.ProjectDatesAnalysis{}
	f.CGPAAnalysis = models.CGPAAnalysis{}
	f.LinkValidationAnalysis.BrokenLinks = f.LinkValidationAnalysis.ValidLinks
	f.LinkValidationAnalysis.ValidLinks = nil

	pa := PriorityAnalysis(a, []string{"Project Experience", "Academic Performance", "GitHub Profile"}, f)
	assert.Equal(t, 55, pa.PriorityScores["Project Experience"])
	assert.Equal(t, "❌ Missing project dates - significantly impacts credibility", pa.PriorityFeedback["Project Experience"].Feedback[0])
	assert.Equal(t, 70, pa.PriorityScores["Academic Performance"])
	assert.Equal(t, 50, pa.PriorityScores["GitHub Profile"])
	assert.Equal(t, []string{"❌ Broken GitHub link found"}, pa.PriorityFeedback["GitHub Profile"].Feedback)
}

func TestPriorityAnalysis_NoPriorities(t *testing.T) {
	a, f := priorityFixture()
	assert.Nil(t, PriorityAnalysis(a, nil, f))
}
