package scoring

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"resumeanalyzer/models"
)

// PriorityMapping ties a user-facing priority to the analysis sections it averages.
type PriorityMapping struct {
	Sections []string
	Icon     string
}

var Priorities = map[string]PriorityMapping{
	"Technical Skills":           {Sections: []string{models.SectionSkills}, Icon: "💻"},
	"Project Experience":         {Sections: []string{models.SectionProjects}, Icon: "🚀"},
	"Academic Performance":       {Sections: []string{models.SectionEducation}, Icon: "🎓"},
	"Work Experience":            {Sections: []string{models.SectionWorkExperience}, Icon: "💼"},
	"GitHub Profile":             {Sections: []string{models.SectionLinksFound}, Icon: "🔗"},
	"LinkedIn Profile":           {Sections: []string{models.SectionLinksFound}, Icon: "🔗"},
	"Certifications":             {Sections: []string{models.SectionCertifications}, Icon: "📜"},
	"Resume Formatting":          {Sections: []string{models.SectionFormattingIssues}, Icon: "📝"},
	"Extracurricular Activities": {Sections: []string{models.SectionExtracurriculars}, Icon: "🏆"},
	"Communication Skills":       {Sections: []string{models.SectionProfessionalSummary, models.SectionSkills}, Icon: "💬"},
	"Content Quality":            {Sections: []string{models.SectionProfessionalSummary, models.SectionWorkExperience, models.SectionProjects}, Icon: "📊"},
	"Skill Diversity":            {Sections: []string{models.SectionSkills, models.SectionProjects, models.SectionWorkExperience}, Icon: "🎯"},
}

// DefaultSectionWeights are used when no priorities are selected.
var DefaultSectionWeights = map[string]int{
	models.SectionBasicInfo:           10,
	models.SectionProfessionalSummary: 10,
	models.SectionEducation:           15,
	models.SectionWorkExperience:      20,
	models.SectionProjects:            15,
	models.SectionSkills:              15,
	models.SectionCertifications:      10,
	models.SectionExtracurriculars:    5,
}

// prioritySections maps priorities onto the section their weight lands on.
// Resume Formatting has no scored section and its weight is dropped.
var prioritySections = map[string]string{
	"Technical Skills":           models.SectionSkills,
	"Work Experience":            models.SectionWorkExperience,
	"Academic Performance":       models.SectionEducation,
	"Project Experience":         models.SectionProjects,
	"Certifications":             models.SectionCertifications,
	"Extracurricular Activities": models.SectionExtracurriculars,
	"Communication Skills":       models.SectionProfessionalSummary,
	"Content Quality":            models.SectionProfessionalSummary,
	"Skill Diversity":            models.SectionSkills,
	"GitHub Profile":             models.SectionBasicInfo,
	"LinkedIn Profile":           models.SectionBasicInfo,
	"CGPA Scores":                models.SectionEducation,
}

const noSpecificIssues = "No specific issues found."

// SectionTitle turns a key such as work_experience into "Work Experience".
// Casers keep state, so each call gets its own.
func SectionTitle(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// PriorityWeights assigns descending weights summing to 100, with any
// rounding remainder going to the first priority.
func PriorityWeights(priorities []string) map[string]int {
	n := len(priorities)
	if n == 0 {
		return map[string]int{}
	}

	sum := n * (n + 1) / 2
	weights := make(map[string]int, n)
	total := 0
	for i, p := range priorities {
		w := int(math.Round(float64(n-i) / float64(sum) * 100))
		weights[p] = w
		total += w
	}
	if total != 100 {
		weights[priorities[0]] += 100 - total
	}
	return weights
}

// SectionWeights folds priority weights onto the scored sections and spreads
// whatever is left evenly across sections no priority reached.
func SectionWeights(priorityWeights map[string]int) map[string]int {
	weights := make(map[string]int, len(models.ScoredSections))
	for _, s := range models.ScoredSections {
		weights[s] = 0
	}
	for p, w := range priorityWeights {
		if s, ok := prioritySections[p]; ok {
			weights[s] += w
		}
	}

	mapped := 0
	var unmapped []string
	for _, s := range models.ScoredSections {
		mapped += weights[s]
		if weights[s] == 0 {
			unmapped = append(unmapped, s)
		}
	}
	if mapped < 100 && len(unmapped) > 0 {
		remaining := 100 - mapped
		each, extra := remaining/len(unmapped), remaining%len(unmapped)
		for i, s := range unmapped {
			weights[s] = each
			if i < extra {
				weights[s]++
			}
		}
	}
	return weights
}

// OverallScore is the weighted mean of positive section scores. Nil
// weights fall back to DefaultSectionWeights.
func OverallScore(a *models.AIAnalysis, weights map[string]int) models.Score {
	if a == nil {
		return 0
	}
	if weights == nil {
		weights = DefaultSectionWeights
	}

	weighted, total := 0, 0
	for _, name := range models.ScoredSections {
		w := weights[name]
		score := int(a.Section(name).QualityScore)
		if score > 0 && w > 0 {
			weighted += score * w
			total += w
		}
	}
	if total == 0 {
		return 0
	}
	return models.ClampScore(int(math.Round(float64(weighted) / float64(total))))
}

// PriorityAnalysis scores each selected priority from the analysis and
// adjusts it with rule findings. It returns nil with no priorities.
func PriorityAnalysis(a *models.AIAnalysis, priorities []string, findings *models.RuleFindings) *models.PriorityAnalysis {
	if len(priorities) == 0 || a == nil {
		return nil
	}
	if findings == nil {
		findings = &models.RuleFindings{}
	}

	result := &models.PriorityAnalysis{
		SelectedPriorities: priorities,
		PriorityScores:     map[string]int{},
		PriorityFeedback:   map[string]models.PriorityFeedback{},
		TotalPriorities:    len(priorities),
	}

	total := 0
	for _, priority := range priorities {
		mapping, ok := Priorities[priority]
		if !ok {
			continue
		}

		var scores []int
		var feedback []string
		for _, name := range mapping.Sections {
			section := a.Section(name)
			if section == nil {
				continue
			}
			scores = append(scores, int(section.QualityScore))
			if s := strings.TrimSpace(section.Suggestions.String()); s != "" && s != models.NoSuggestions {
				feedback = append(feedback, SectionTitle(name)+": "+s)
			}
		}

		scores, feedback = adjustForFindings(priority, scores, feedback, a, findings)

		score := 0.0
		if len(scores) > 0 {
			sum := 0
			for _, s := range scores {
				sum += s
			}
			score = float64(sum) / float64(len(scores))
		}
		if len(feedback) == 0 {
			feedback = []string{noSpecificIssues}
		}

		rounded := int(math.Round(score))
		result.PriorityScores[priority] = rounded
		result.PriorityFeedback[priority] = models.PriorityFeedback{
			Score:    rounded,
			Feedback: feedback,
			Icon:     mapping.Icon,
			Status:   models.StatusForScore(score),
		}
		total += rounded
	}

	if len(result.PriorityScores) > 0 {
		result.OverallPriorityScore = int(math.Round(float64(total) / float64(len(result.PriorityScores))))
	}
	return result
}

func adjustForFindings(priority string, scores []int, feedback []string, a *models.AIAnalysis, f *models.RuleFindings) ([]int, []string) {
	switch priority {
	case "Project Experience":
		dates := f.ProjectDatesAnalysis
		switch {
		case !dates.DatesPresent:
			return shift(scores, -25), prepend(feedback, "❌ Missing project dates - significantly impacts credibility")
		case dates.ProjectDateCoverage < 0.7:
			return shift(scores, -15), prepend(feedback, fmt.Sprintf("⚠️ Only %.0f%% of projects have dates", dates.ProjectDateCoverage*100))
		default:
			return scores, prepend(feedback, "✅ Good project date coverage")
		}

	case "Academic Performance":
		if !f.CGPAAnalysis.CGPAPresent {
			return shift(scores, -20), prepend(feedback, "❌ No CGPA/GPA found - academic performance unclear")
		}
		return scores, prepend(feedback, fmt.Sprintf("✅ %d academic score(s) found", f.CGPAAnalysis.CGPACount))

	case "Resume Formatting":
		fs := f.FormattingAnalysis.OverallFormattingScore
		var msg string
		switch {
		case fs < 70:
			msg = fmt.Sprintf("❌ Poor formatting detected (score: %.0f/100)", fs)
		case fs < 85:
			msg = fmt.Sprintf("⚠️ Minor formatting issues (score: %.0f/100)", fs)
		default:
			msg = fmt.Sprintf("✅ Good formatting (score: %.0f/100)", fs)
		}
		return []int{int(math.Round(fs))}, prepend(feedback, msg)

	case "GitHub Profile", "LinkedIn Profile":
		platform, present := "GitHub", a.LinksFound.GitHubPresent
		if priority == "LinkedIn Profile" {
			platform, present = "LinkedIn", a.LinksFound.LinkedInPresent
		}
		base := 0
		if present {
			base = 80
		}
		scores = []int{base}
		links := f.LinkValidationAnalysis
		switch {
		case hasPlatform(links.BrokenLinks, platform):
			return shift(scores, -30), prepend(feedback, fmt.Sprintf("❌ Broken %s link found", platform))
		case hasPlatform(links.ValidLinks, platform):
			return shift(scores, 10), prepend(feedback, fmt.Sprintf("✅ Valid %s profile found", platform))
		default:
			return shift(scores, -10), prepend(feedback, fmt.Sprintf("⚠️ No %s profile found", platform))
		}

	case "Content Quality":
		cq := f.ContentQualityAnalysis
		scores = append([]int{int(math.Round(cq.Score))}, scores...)
		issues := make([]string, 0, len(cq.Issues))
		for _, issue := range cq.Issues {
			issues = append(issues, "⚠️ "+issue)
		}
		return scores, append(issues, feedback...)
	}
	return scores, feedback
}

func hasPlatform(links []models.ExtractedLink, platform string) bool {
	want := strings.ToLower(platform)
	for _, l := range links {
		if strings.Contains(strings.ToLower(l.Platform()), want) {
			return true
		}
	}
	return false
}

// shift moves every score by delta, clamped to 0..100.
func shift(scores []int, delta int) []int {
	out := make([]int, len(scores))
	for i, s := range scores {
		out[i] = int(models.ClampScore(s + delta))
	}
	return out
}

func prepend(list []string, item string) []string {
	return append([]string{item}, list...)
}
