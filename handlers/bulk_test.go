package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeanalyzer/models"
	"resumeanalyzer/services"
)

func startBulkJob(t *testing.T, env *testEnv, fields map[string]string, n int) models.BulkAnalysisResponse {
	t.Helper()
	files := make([]uploadFile, n)
	for i := range files {
		files[i] = uploadFile{field: "files", name: fmt.Sprintf("candidate_%d.pdf", i+1), content: pdfContent()}
	}

	w := env.do(multipartRequest(t, "/bulk_analyze_resumes", fields, files...))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.BulkAnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func waitForJob(t *testing.T, env *testEnv, jobID string) *models.BulkJob {
	t.Helper()
	var job *models.BulkJob
	require.Eventually(t, func() bool {
		j, err := env.bulk.Job(context.Background(), jobID)
		if err != nil {
			return false
		}
		job = j
		return j.Status.Finished() || j.Status == models.JobFailed
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestBulkAnalyzeResumes(t *testing.T) {
	env := newTestEnv(t)

	resp := startBulkJob(t, env, map[string]string{
		"priorities": "Technical Skills",
		"job_name":   "Campus  Hiring 2024",
	}, 3)

	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, models.JobProcessing, resp.Status)
	assert.Equal(t, "Bulk analysis started for 3 files", resp.Message)
	assert.Equal(t, 3, resp.TotalFiles)
	assert.Empty(t, resp.ResultsPreview)
	assert.Equal(t, "/bulk_job_status/"+resp.JobID, resp.DownloadLinks["status"])
	assert.Equal(t, "/export_results/"+resp.JobID+"?format=csv", resp.DownloadLinks["csv"])

	job := waitForJob(t, env, resp.JobID)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, "Campus Hiring 2024", job.JobName)
	assert.Equal(t, []string{"Technical Skills"}, job.Priorities)
	assert.Equal(t, 3, job.SuccessfulAnalyses)
	require.Len(t, job.Results, 3)
	assert.Equal(t, "Jane Smith", job.Results[0].CandidateName)
	assert.Equal(t, 3, env.analyzer.calls())

	w := env.get("/bulk_job_status/" + resp.JobID)
	require.Equal(t, http.StatusOK, w.Code)
	var status models.BulkJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.JobCompleted, status.Status)
	assert.Equal(t, 3, status.ProcessedFiles)

	w = env.get("/bulk_jobs")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, float64(1), body["total"])
	jobs := body["jobs"].([]interface{})
	assert.Equal(t, resp.JobID, jobs[0].(map[string]interface{})["job_id"])
	assert.NotContains(t, jobs[0], "results")
}

func TestBulkAnalyzeResumes_MissingFiles(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(multipartRequest(t, "/bulk_analyze_resumes", map[string]string{"job_name": "Backend hiring"}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, "Request validation failed", apiErr.Message)
	assert.Equal(t, []string{"files: field required"}, apiErr.Details)

	jobs, err := env.bulk.Jobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestBulkAnalyzeResumes_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		fields      map[string]string
		files       []uploadFile
		expectedMsg string
	}{
		{
			name:        "invalid file in batch",
			files:       []uploadFile{{field: "files", name: "a.pdf", content: pdfContent()}, {field: "files", name: "notes.txt", content: pdfContent()}},
			expectedMsg: "File 2 (notes.txt): File validation failed: Invalid file type. Only .pdf allowed",
		},
		{
			name:        "bad content in batch",
			files:       []uploadFile{{field: "files", name: "a.pdf", content: append([]byte("PK"), pdfContent()...)}},
			expectedMsg: "File 1 (a.pdf): File content does not appear to be a valid PDF",
		},
		{
			name:        "invalid job name",
			fields:      map[string]string{"job_name": "hiring; DROP TABLE"},
			files:       []uploadFile{{field: "files", name: "a.pdf", content: pdfContent()}},
			expectedMsg: "Job name contains invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(multipartRequest(t, "/bulk_analyze_resumes", tt.fields, tt.files...))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w).Message, tt.expectedMsg)

			jobs, err := env.bulk.Jobs(context.Background())
			require.NoError(t, err)
			assert.Empty(t, jobs)
		})
	}
}

func TestBulkAnalyzeResumes_TooManyFiles(t *testing.T) {
	env := newTestEnv(t)

	files := make([]uploadFile, services.MaxFilesPerBulkJob+1)
	for i := range files {
		files[i] = uploadFile{field: "files", name: fmt.Sprintf("r%d.pdf", i), content: []byte("%PDF")}
	}
	w := env.do(multipartRequest(t, "/bulk_analyze_resumes", nil, files...))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Maximum 100 files allowed per batch", decodeError(t, w).Message)
}

func TestBulkJobStatus_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/bulk_job_status/missing-job")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t,
		"Bulk job with ID 'missing-job' not found. It may have expired or the server was restarted.",
		decodeError(t, w).Message)
}
