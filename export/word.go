package export

import (
	"fmt"
	"strings"

	"baliance.com/gooxml/color"
	"baliance.com/gooxml/document"
	"baliance.com/gooxml/measurement"
	"baliance.com/gooxml/schema/soo/wml"

	"resumeanalyzer/models"
	"resumeanalyzer/scoring"
)

// WriteWordReport writes a report with one section per candidate: scores,
// the fact sheet and each section's suggestions.
func WriteWordReport(job *models.BulkJob, path string) error {
	doc := document.New()

	heading(doc, "Title", "Resume Analysis Report")
	if job.JobName != "" {
		text(doc, "Job: "+job.JobName)
	}
	text(doc, fmt.Sprintf("Job ID: %s", job.JobID))
	text(doc, fmt.Sprintf("Resumes: %d total, %d analysed, %d failed", job.TotalFiles, job.SuccessfulAnalyses, job.FailedAnalyses))
	if len(job.Priorities) > 0 {
		text(doc, "Priorities: "+strings.Join(job.Priorities, ", "))
	}

	for _, r := range job.Results {
		heading(doc, "Heading1", fmt.Sprintf("%s (%s)", orDefault(r.CandidateName, "Not Found"), r.Filename))

		if !r.Succeeded() {
			labelled(doc, "Analysis failed", r.ErrorMessage)
			continue
		}

		labelled(doc, "Overall Score", fmt.Sprintf("%d", r.OverallScore))
		labelled(doc, "Completeness Score", fmt.Sprintf("%d", r.CompletenessScore))
		labelled(doc, "Formatting Score", fmt.Sprintf("%.1f", r.FormattingScore))
		labelled(doc, "Experience Level", scoring.SectionTitle(r.ExperienceLevel))
		labelled(doc, "Education Level", scoring.SectionTitle(r.EducationLevel))
		labelled(doc, "Key Skills", orDefault(strings.Join(r.KeySkills, ", "), "None"))
		if r.FactSheet != nil {
			labelled(doc, "Fact Sheet", r.FactSheet.Summary)
		}
		for _, p := range priorityColumns(job) {
			if score, ok := r.PriorityScores[p]; ok {
				labelled(doc, p, fmt.Sprintf("%d", score))
			}
		}

		if r.FullAnalysis != nil {
			heading(doc, "Heading2", "Section Feedback")
			sectionTable(doc, r.FullAnalysis)
			if s := r.FullAnalysis.OverallSuggestions.String(); s != "" {
				labelled(doc, "Overall Suggestions", s)
			}
		}
	}

	if err := doc.SaveToFile(path); err != nil {
		return fmt.Errorf("failed to save Word report: %w", err)
	}
	return nil
}

func heading(doc *document.Document, style, s string) {
	para := doc.AddParagraph()
	para.SetStyle(style)
	para.AddRun().AddText(s)
}

func text(doc *document.Document, s string) {
	doc.AddParagraph().AddRun().AddText(s)
}

func labelled(doc *document.Document, label, value string) {
	para := doc.AddParagraph()
	run := para.AddRun()
	run.Properties().SetBold(true)
	run.AddText(label + ": ")
	para.AddRun().AddText(value)
}

func sectionTable(doc *document.Document, a *models.AIAnalysis) {
	table := doc.AddTable()
	table.Properties().SetWidthPercent(100)
	table.Properties().Borders().SetAll(wml.ST_BorderSingle, color.Auto, 1*measurement.Point)

	header := table.AddRow()
	for _, h := range []string{"Section", "Score", "Suggestions"} {
		run := header.AddCell().AddParagraph().AddRun()
		run.Properties().SetBold(true)
		run.AddText(h)
	}

	for _, name := range models.ScoredSections {
		s := a.Section(name)
		row := table.AddRow()
		row.AddCell().AddParagraph().AddRun().AddText(scoring.SectionTitle(name))
		row.AddCell().AddParagraph().AddRun().AddText(fmt.Sprintf("%d", s.QualityScore))
		row.AddCell().AddParagraph().AddRun().AddText(s.Suggestions.String())
	}
}
