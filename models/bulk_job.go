package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobPartial    JobStatus = "partial"
)

// Finished reports whether results can be exported.
func (s JobStatus) Finished() bool {
	return s == JobCompleted || s == JobPartial
}

// CandidateResult is one file's outcome inside a bulk job.
type CandidateResult struct {
	Filename          string            `json:"filename"`
	CandidateName     string            `json:"candidate_name,omitempty"`
	OverallScore      int               `json:"overall_score"`
	CompletenessScore int               `json:"completeness_score"`
	FormattingScore   float64           `json:"formatting_score"`
	KeySkills         []string          `json:"key_skills"`
	ExperienceLevel   string            `json:"experience_level"`
	EducationLevel    string            `json:"education_level"`
	CGPAFound         bool              `json:"cgpa_found"`
	CGPAValue         string            `json:"cgpa_value,omitempty"`
	LinksStatus       string            `json:"links_status"`
	ValidLinksCount   int               `json:"valid_links_count"`
	BrokenLinksCount  int               `json:"broken_links_count"`
	PriorityScores    map[string]int    `json:"priority_scores,omitempty"`
	AnalysisStatus    string            `json:"analysis_status"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	ProcessedAt       time.Time         `json:"processed_at"`
	FullAnalysis      *AIAnalysis       `json:"full_analysis,omitempty"`
	RuleBasedFindings *RuleFindings     `json:"rule_based_findings,omitempty"`
	FactSheet         *FactSheet        `json:"fact_sheet,omitempty"`
	PriorityAnalysis  *PriorityAnalysis `json:"priority_analysis,omitempty"`
}

// Succeeded reports whether the file was analysed.
func (r CandidateResult) Succeeded() bool {
	return r.AnalysisStatus == "success"
}

type BulkJob struct {
	JobID                 string            `json:"job_id"`
	JobName               string            `json:"job_name,omitempty"`
	Priorities            []string          `json:"priorities,omitempty"`
	Status                JobStatus         `json:"status"`
	TotalFiles            int               `json:"total_files"`
	ProcessedFiles        int               `json:"processed_files"`
	SuccessfulAnalyses    int               `json:"successful_analyses"`
	FailedAnalyses        int               `json:"failed_analyses"`
	CreatedAt             time.Time         `json:"created_at"`
	CompletedAt           *time.Time        `json:"completed_at,omitempty"`
	Results               []CandidateResult `json:"results"`
	ErrorSummary          string            `json:"error_summary,omitempty"`
	ProcessingTimeSeconds float64           `json:"processing_time_seconds,omitempty"`
}

// Clone copies the job and its result slice.
func (j *BulkJob) Clone() *BulkJob {
	cp := *j
	cp.Results = append([]CandidateResult(nil), j.Results...)
	cp.Priorities = append([]string(nil), j.Priorities...)
	return &cp
}

type BulkAnalysisResponse struct {
	JobID          string            `json:"job_id"`
	Status         JobStatus         `json:"status"`
	Message        string            `json:"message"`
	TotalFiles     int               `json:"total_files"`
	ResultsPreview []CandidateResult `json:"results_preview"`
	DownloadLinks  map[string]string `json:"download_links"`
}

var ErrJobNotFound = errors.New("job not found")

// BulkJobModel persists bulk jobs in Postgres as JSON documents.
type BulkJobModel struct {
	DB *sql.DB
}

func NewBulkJobModel(db *sql.DB) *BulkJobModel {
	return &BulkJobModel{DB: db}
}

// CreateTable creates the bulk_jobs table if needed.
func (m *BulkJobModel) CreateTable(ctx context.Context) error {
	_, err := m.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bulk_jobs (
			job_id     TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			payload    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// Save upserts the job.
func (m *BulkJobModel) Save(ctx context.Context, job *BulkJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = m.DB.ExecContext(ctx, `
		INSERT INTO bulk_jobs (job_id, status, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (job_id) DO UPDATE
		SET status = EXCLUDED.status, payload = EXCLUDED.payload, updated_at = NOW()
	`, job.JobID, string(job.Status), payload, job.CreatedAt)
	return err
}

// GetByID loads a job; ErrJobNotFound when absent.
func (m *BulkJobModel) GetByID(ctx context.Context, jobID string) (*BulkJob, error) {
	var payload []byte
	err := m.DB.QueryRowContext(ctx, "SELECT payload FROM bulk_jobs WHERE job_id = $1", jobID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	var job BulkJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns the most recent jobs first.
func (m *BulkJobModel) List(ctx context.Context, limit int) ([]*BulkJob, error) {
	rows, err := m.DB.QueryContext(ctx, "SELECT payload FROM bulk_jobs ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*BulkJob{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var job BulkJob
		if err := json.Unmarshal(payload, &job); err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}
