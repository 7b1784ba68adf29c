package rules

import "resumeanalyzer/models"

type completenessWeights struct {
	CGPA              int
	ProjectDates      int
	Class10           int
	Class12           int
	Diploma           int
	Bachelor          int
	Master            int
	PhD               int
	ProfessionalLinks int
	ContentQuality    int
}

var baseCompletenessWeights = completenessWeights{
	CGPA:              15,
	ProjectDates:      20,
	Class10:           8,
	Class12:           12,
	Diploma:           10,
	Bachelor:          15,
	Master:            10,
	PhD:               10,
	ProfessionalLinks: 20,
	ContentQuality:    20,
}

func (w completenessWeights) total() int {
	return w.CGPA + w.ProjectDates + w.Class10 + w.Class12 + w.Diploma + w.Bachelor +
		w.Master + w.PhD + w.ProfessionalLinks + w.ContentQuality
}

func (w *completenessWeights) fields() []*int {
	return []*int{&w.CGPA, &w.ProjectDates, &w.Class10, &w.Class12, &w.Diploma, &w.Bachelor,
		&w.Master, &w.PhD, &w.ProfessionalLinks, &w.ContentQuality}
}

// priorityBoostTargets maps recruiter priorities to the completeness
// component they emphasise.
var priorityBoostTargets = map[string]func(*completenessWeights) *int{
	"Academic Performance": func(w *completenessWeights) *int { return &w.CGPA },
	"Project Experience":   func(w *completenessWeights) *int { return &w.ProjectDates },
	"GitHub Profile":       func(w *completenessWeights) *int { return &w.ProfessionalLinks },
	"LinkedIn Profile":     func(w *completenessWeights) *int { return &w.ProfessionalLinks },
	"Content Quality":      func(w *completenessWeights) *int { return &w.ContentQuality },
}

// weightsFor boosts each prioritised component by half and scales all
// weights back down when the total grows past the base total.
func weightsFor(priorities []string) completenessWeights {
	w := baseCompletenessWeights
	boosted := map[*int]bool{}
	for _, p := range priorities {
		target, ok := priorityBoostTargets[p]
		if !ok {
			continue
		}
		field := target(&w)
		if boosted[field] {
			continue
		}
		boosted[field] = true
		*field = int(float64(*field) * 1.5)
	}

	base, total := baseCompletenessWeights.total(), w.total()
	if total > base {
		scale := float64(base) / float64(total)
		for _, f := range w.fields() {
			*f = int(float64(*f) * scale)
		}
	}
	return w
}

// CompletenessScore combines the findings into a 0..100 score.
func CompletenessScore(f *models.RuleFindings, priorities []string) (float64, models.CompletenessBreakdown) {
	w := weightsFor(priorities)
	var b models.CompletenessBreakdown

	if f.CGPAAnalysis.CGPAPresent {
		b.CGPAScore = w.CGPA
	}
	b.ProjectDatesScore = int(float64(w.ProjectDates) * f.ProjectDatesAnalysis.ProjectDateCoverage)

	edu := f.EducationAnalysis
	for _, level := range []struct {
		present bool
		weight  int
	}{
		{edu.Class10Present, w.Class10},
		{edu.Class12Present, w.Class12},
		{edu.DiplomaPresent, w.Diploma},
		{edu.BachelorPresent, w.Bachelor},
		{edu.MasterPresent, w.Master},
		{edu.PhDPresent, w.PhD},
	} {
		if level.present {
			b.EducationScore += level.weight
		}
	}

	links := float64(w.ProfessionalLinks)
	b.LinksScore = min(links, float64(len(f.LinkValidationAnalysis.ValidLinks))*links/5)
	b.ContentQualityScore = f.ContentQualityAnalysis.Score * float64(w.ContentQuality) / 100

	score := float64(b.CGPAScore+b.ProjectDatesScore+b.EducationScore) + b.LinksScore + b.ContentQualityScore
	return min(score, 100), b
}
