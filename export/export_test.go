package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"baliance.com/gooxml/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"resumeanalyzer/models"
)

func sampleJob() *models.BulkJob {
	processed := time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC)
	analysis := &models.AIAnalysis{OverallSuggestions: "Add measurable outcomes."}
	analysis.Skills.QualityScore = 85
	analysis.Skills.Suggestions = "Group skills by category."

	return &models.BulkJob{
		JobID:                 "1234abcd-5678-90ef-aaaa-bbbbccccdddd",
		JobName:               "Campus hiring",
		Priorities:            []string{"Technical Skills", "Project Experience"},
		Status:                models.JobPartial,
		TotalFiles:            2,
		ProcessedFiles:        2,
		SuccessfulAnalyses:    1,
		FailedAnalyses:        1,
		ProcessingTimeSeconds: 12.5,
		Results: []models.CandidateResult{
			{
				Filename:          "asha.pdf",
				CandidateName:     "Asha Rao",
				OverallScore:      78,
				CompletenessScore: 80,
				FormattingScore:   72.5,
				KeySkills:         []string{"Go", "SQL"},
				ExperienceLevel:   "entry_level",
				EducationLevel:    "bachelors",
				CGPAFound:         true,
				CGPAValue:         "8.9/10",
				LinksStatus:       "valid",
				ValidLinksCount:   2,
				PriorityScores:    map[string]int{"Technical Skills": 85, "Project Experience": 60},
				AnalysisStatus:    "success",
				ProcessedAt:       processed,
				FullAnalysis:      analysis,
				FactSheet:         &models.FactSheet{Summary: "CGPA: ✅ 8.9/10 | Links: ✅"},
			},
			{
				Filename:       "scan.pdf",
				KeySkills:      []string{},
				LinksStatus:    "none",
				AnalysisStatus: "error",
				ErrorMessage:   "Data validation error: Failed to extract text from PDF",
				ProcessedAt:    processed,
			},
		},
	}
}

func TestNormalizeFormat(t *testing.T) {
	for _, in := range []string{"excel", "CSV", " docx "} {
		_, err := NormalizeFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := NormalizeFormat("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, "resume_analysis_results_1234abcd.xlsx", Filename("1234abcd-5678", FormatExcel))
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
}

func TestWriteRejectsEmptyJob(t *testing.T) {
	_, err := Write(&models.BulkJob{JobID: "empty"}, FormatCSV, t.TempDir(), false)
	assert.EqualError(t, err, "Job empty has no results to export")
}

func TestWriteExcel(t *testing.T) {
	path, err := Write(sampleJob(), FormatExcel, t.TempDir(), true)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ResultsSheet, SummarySheet, DetailedSheet}, f.GetSheetList())

	rows, err := f.GetRows(ResultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 18)
	assert.Equal(t, "Technical Skills Score", rows[0][16])
	assert.Equal(t, "Project Experience Score", rows[0][17])

	first := rows[1]
	assert.Equal(t, "Asha Rao", first[1])
	assert.Equal(t, "72.5", first[4])
	assert.Equal(t, "Go, SQL", first[5])
	assert.Equal(t, "Entry Level", first[6])
	assert.Equal(t, "Yes", first[8])
	assert.Equal(t, "85", first[16])

	failed := rows[2]
	assert.Equal(t, "Not Found", failed[1])
	assert.Equal(t, "None", failed[5])
	assert.Equal(t, "N/A", failed[9])
	assert.Equal(t, "Error", failed[13])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 10)
	assert.Equal(t, []string{"Average Overall Score", "39.0"}, summary[4])
	assert.Equal(t, []string{"Resumes with CGPA", "1"}, summary[7])
	assert.Equal(t, []string{"Processing Time (seconds)", "12.50"}, summary[9])

	detailed, err := f.GetRows(DetailedSheet)
	require.NoError(t, err)
	assert.Len(t, detailed, 1+len(models.ScoredSections))
}

func TestWriteCSV(t *testing.T) {
	path, err := Write(sampleJob(), FormatCSV, t.TempDir(), false)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "filename", header[0])
	assert.Equal(t, "technical_skills_score", header[16])
	assert.Equal(t, "project_experience_score", header[17])

	assert.Equal(t, "entry_level", records[1][6])
	assert.Equal(t, "true", records[1][8])
	assert.Equal(t, "60", records[1][17])
	assert.Equal(t, "2024-06-03T10:30:00Z", records[1][15])
	assert.Equal(t, "", records[2][16])
}

func TestWriteWordReport(t *testing.T) {
	path, err := Write(sampleJob(), FormatDocx, t.TempDir(), false)
	require.NoError(t, err)

	doc, err := document.Open(path)
	require.NoError(t, err)

	var text []string
	for _, p := range doc.Paragraphs() {
		var line strings.Builder
		for _, r := range p.Runs() {
			line.WriteString(r.Text())
		}
		text = append(text, line.String())
	}
	body := strings.Join(text, "\n")

	assert.Contains(t, body, "Resume Analysis Report")
	assert.Contains(t, body, "Asha Rao (asha.pdf)")
	assert.Contains(t, body, "Overall Score: 78")
	assert.Contains(t, body, "Fact Sheet: CGPA: ✅ 8.9/10 | Links: ✅")
	assert.Contains(t, body, "Technical Skills: 85")
	assert.Contains(t, body, "Analysis failed: Data validation error: Failed to extract text from PDF")
	assert.Len(t, doc.Tables(), 1)
}
