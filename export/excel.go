package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"resumeanalyzer/models"
	"resumeanalyzer/scoring"
)

const (
	ResultsSheet  = "Resume Analysis Results"
	SummarySheet  = "Summary"
	DetailedSheet = "Detailed Analysis"
)

var resultHeaders = []string{
	"Filename", "Candidate Name", "Overall Score", "Completeness Score", "Formatting Score",
	"Key Skills", "Experience Level", "Education Level", "CGPA Found", "CGPA Value",
	"Links Status", "Valid Links", "Broken Links", "Analysis Status", "Error Message", "Processed At",
}

// WriteExcel writes the results and summary sheets, plus a per-section
// sheet when includeDetailed is set.
func WriteExcel(job *models.BulkJob, path string, includeDetailed bool) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", ResultsSheet)
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := writeResultsSheet(f, job, headerStyle); err != nil {
		return fmt.Errorf("failed to create results sheet: %w", err)
	}
	if err := writeSummarySheet(f, job, headerStyle); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if includeDetailed {
		if _, err := f.NewSheet(DetailedSheet); err != nil {
			return err
		}
		if err := writeDetailedSheet(f, job, headerStyle); err != nil {
			return fmt.Errorf("failed to create detailed analysis sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func writeResultsSheet(f *excelize.File, job *models.BulkJob, headerStyle int) error {
	priorities := priorityColumns(job)

	headers := make([]interface{}, 0, len(resultHeaders)+len(priorities))
	for _, h := range resultHeaders {
		headers = append(headers, h)
	}
	for _, p := range priorities {
		headers = append(headers, p+" Score")
	}
	if err := f.SetSheetRow(ResultsSheet, "A1", &headers); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(ResultsSheet, "A1", lastCol+"1", headerStyle)
	f.SetColWidth(ResultsSheet, "A", "B", 28)
	f.SetColWidth(ResultsSheet, "F", "F", 50)

	for i, r := range job.Results {
		row := []interface{}{
			r.Filename,
			orDefault(r.CandidateName, "Not Found"),
			r.OverallScore,
			r.CompletenessScore,
			fmt.Sprintf("%.1f", r.FormattingScore),
			orDefault(strings.Join(r.KeySkills, ", "), "None"),
			scoring.SectionTitle(r.ExperienceLevel),
			scoring.SectionTitle(r.EducationLevel),
			yesNo(r.CGPAFound),
			orDefault(r.CGPAValue, "N/A"),
			scoring.SectionTitle(r.LinksStatus),
			r.ValidLinksCount,
			r.BrokenLinksCount,
			scoring.SectionTitle(r.AnalysisStatus),
			r.ErrorMessage,
			r.ProcessedAt.Format(time.RFC3339),
		}
		for _, p := range priorities {
			if score, ok := r.PriorityScores[p]; ok {
				row = append(row, score)
			} else {
				row = append(row, "")
			}
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ResultsSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetPanes(ResultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, job *models.BulkJob, headerStyle int) error {
	var overall, completeness, formatting float64
	cgpa, validLinks := 0, 0
	for _, r := range job.Results {
		overall += float64(r.OverallScore)
		completeness += float64(r.CompletenessScore)
		formatting += r.FormattingScore
		if r.CGPAFound {
			cgpa++
		}
		if r.ValidLinksCount > 0 {
			validLinks++
		}
	}

	average := func(total float64) string {
		if len(job.Results) == 0 {
			return "0"
		}
		return fmt.Sprintf("%.1f", total/float64(len(job.Results)))
	}
	processingTime := "N/A"
	if job.ProcessingTimeSeconds > 0 {
		processingTime = fmt.Sprintf("%.2f", job.ProcessingTimeSeconds)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Resumes", job.TotalFiles},
		{"Successfully Processed", job.SuccessfulAnalyses},
		{"Failed Processing", job.FailedAnalyses},
		{"Average Overall Score", average(overall)},
		{"Average Completeness Score", average(completeness)},
		{"Average Formatting Score", average(formatting)},
		{"Resumes with CGPA", cgpa},
		{"Resumes with Valid Links", validLinks},
		{"Processing Time (seconds)", processingTime},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle)
	f.SetColWidth(SummarySheet, "A", "A", 30)
	f.SetColWidth(SummarySheet, "B", "B", 15)
	return nil
}

func writeDetailedSheet(f *excelize.File, job *models.BulkJob, headerStyle int) error {
	header := []interface{}{"Filename", "Candidate Name", "Section", "Score", "Suggestions"}
	if err := f.SetSheetRow(DetailedSheet, "A1", &header); err != nil {
		return err
	}
	f.SetCellStyle(DetailedSheet, "A1", "E1", headerStyle)
	f.SetColWidth(DetailedSheet, "A", "C", 25)
	f.SetColWidth(DetailedSheet, "E", "E", 80)

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	line := 2
	for _, r := range job.Results {
		if r.FullAnalysis == nil {
			continue
		}
		for _, name := range models.ScoredSections {
			s := r.FullAnalysis.Section(name)
			row := []interface{}{r.Filename, orDefault(r.CandidateName, "Not Found"), scoring.SectionTitle(name), int(s.QualityScore), s.Suggestions.String()}
			cell, _ := excelize.CoordinatesToCellName(1, line)
			if err := f.SetSheetRow(DetailedSheet, cell, &row); err != nil {
				return err
			}
			f.SetCellStyle(DetailedSheet, fmt.Sprintf("E%d", line), fmt.Sprintf("E%d", line), wrapStyle)
			line++
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
