package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"resumeanalyzer/models"
)

var csvHeaders = []string{
	"filename", "candidate_name", "overall_score", "completeness_score", "formatting_score",
	"key_skills", "experience_level", "education_level", "cgpa_found", "cgpa_value",
	"links_status", "valid_links_count", "broken_links_count", "analysis_status", "error_message", "processed_at",
}

// WriteCSV writes one row per result with snake_case columns.
func WriteCSV(job *models.BulkJob, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	priorities := priorityColumns(job)
	header := append([]string{}, csvHeaders...)
	for _, p := range priorities {
		header = append(header, snakeCase(p)+"_score")
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range job.Results {
		row := []string{
			r.Filename,
			r.CandidateName,
			strconv.Itoa(r.OverallScore),
			strconv.Itoa(r.CompletenessScore),
			strconv.FormatFloat(r.FormattingScore, 'f', -1, 64),
			strings.Join(r.KeySkills, ", "),
			r.ExperienceLevel,
			r.EducationLevel,
			strconv.FormatBool(r.CGPAFound),
			r.CGPAValue,
			r.LinksStatus,
			strconv.Itoa(r.ValidLinksCount),
			strconv.Itoa(r.BrokenLinksCount),
			r.AnalysisStatus,
			r.ErrorMessage,
			r.ProcessedAt.Format(time.RFC3339),
		}
		for _, p := range priorities {
			if score, ok := r.PriorityScores[p]; ok {
				row = append(row, strconv.Itoa(score))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

func snakeCase(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
