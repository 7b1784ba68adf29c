// Package export writes bulk job results as Excel, CSV and Word files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"resumeanalyzer/models"
)

const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatDocx  = "docx"
)

var ErrUnsupportedFormat = errors.New("Format must be 'excel', 'csv' or 'docx'")

var (
	extensions = map[string]string{
		FormatExcel: ".xlsx",
		FormatCSV:   ".csv",
		FormatDocx:  ".docx",
	}
	contentTypes = map[string]string{
		FormatExcel: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		FormatCSV:   "text/csv",
		FormatDocx:  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
)

// NormalizeFormat lower-cases format and checks it is supported.
func NormalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if _, ok := extensions[f]; !ok {
		return "", ErrUnsupportedFormat
	}
	return f, nil
}

// Filename is the download name for a job export.
func Filename(jobID, format string) string {
	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	return "resume_analysis_results_" + short + extensions[format]
}

func ContentType(format string) string {
	return contentTypes[format]
}

// Write exports job into dir and returns the file path.
func Write(job *models.BulkJob, format, dir string, includeDetailed bool) (string, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return "", err
	}
	if len(job.Results) == 0 {
		return "", fmt.Errorf("Job %s has no results to export", job.JobID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, Filename(job.JobID, format))
	switch format {
	case FormatExcel:
		err = WriteExcel(job, path, includeDetailed)
	case FormatCSV:
		err = WriteCSV(job, path)
	case FormatDocx:
		err = WriteWordReport(job, path)
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// priorityColumns lists priorities with scores, job priorities first.
func priorityColumns(job *models.BulkJob) []string {
	seen := map[string]bool{}
	var cols []string
	for _, p := range job.Priorities {
		if !seen[p] {
			seen[p] = true
			cols = append(cols, p)
		}
	}

	var extra []string
	for _, r := range job.Results {
		for p := range r.PriorityScores {
			if !seen[p] {
				seen[p] = true
				extra = append(extra, p)
			}
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
