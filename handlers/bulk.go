package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeanalyzer/export"
	"resumeanalyzer/models"
	"resumeanalyzer/services"
	"resumeanalyzer/utils"
	"resumeanalyzer/validators"
)

// BulkAnalyzeResumes handles POST /bulk_analyze_resumes. Files are validated
// and saved up front; analysis continues after the response is sent.
func (h *Handler) BulkAnalyzeResumes(c *gin.Context) {
	jobName, err := validators.ValidateJobName(c.PostForm("job_name"))
	if err != nil {
		abortWithValidation(c, err)
		return
	}
	priorities, err := validators.ValidatePriorities(c.PostForm("priorities"))
	if err != nil {
		abortWithValidation(c, err)
		return
	}

	var headers []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		headers = form.File["files"]
	}
	if len(headers) == 0 {
		utils.ValidationError(c, []string{"files: field required"})
		return
	}
	if len(headers) > services.MaxFilesPerBulkJob {
		utils.BadRequestError(c, fmt.Sprintf("Maximum %d files allowed per batch", services.MaxFilesPerBulkJob))
		return
	}

	uploads := make([]*savedUpload, 0, len(headers))
	for i, fh := range headers {
		upload, err := saveUpload(fh)
		if err != nil {
			removeUploads(uploads)
			name := fh.Filename
			if name == "" {
				name = "unnamed"
			}
			detail := err.Error()
			var verr *validators.Error
			if errors.As(err, &verr) {
				detail = verr.Detail
			}
			utils.BadRequestError(c, fmt.Sprintf("File %d (%s): %s", i+1, name, detail))
			return
		}
		uploads = append(uploads, upload)
	}

	job, err := h.bulk.CreateJob(c.Request.Context(), len(uploads), priorities, jobName)
	if err != nil {
		removeUploads(uploads)
		utils.InternalServerError(c, "Failed to start bulk analysis: "+err.Error())
		return
	}

	files := make([]services.BulkFile, len(uploads))
	for i, u := range uploads {
		files[i] = services.BulkFile{Path: u.Path, Filename: u.Info.Filename}
	}

	h.jobs.Add(1)
	go h.runBulkJob(job.JobID, files, uploads)

	c.JSON(http.StatusOK, models.BulkAnalysisResponse{
		JobID:          job.JobID,
		Status:         models.JobProcessing,
		Message:        fmt.Sprintf("Bulk analysis started for %d files", len(uploads)),
		TotalFiles:     len(uploads),
		ResultsPreview: []models.CandidateResult{},
		DownloadLinks:  downloadLinks(job.JobID),
	})
}

func (h *Handler) runBulkJob(jobID string, files []services.BulkFile, uploads []*savedUpload) {
	defer h.jobs.Done()
	defer removeUploads(uploads)

	if _, err := h.bulk.Process(h.jobCtx, jobID, files); err != nil {
		h.logger.Error("background bulk processing failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func downloadLinks(jobID string) map[string]string {
	return map[string]string{
		"status":           "/bulk_job_status/" + jobID,
		export.FormatExcel: "/export_results/" + jobID + "?format=" + export.FormatExcel,
		export.FormatCSV:   "/export_results/" + jobID + "?format=" + export.FormatCSV,
		export.FormatDocx:  "/export_results/" + jobID + "?format=" + export.FormatDocx,
	}
}

// BulkJobStatus handles GET /bulk_job_status/:job_id.
func (h *Handler) BulkJobStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	job, err := h.bulk.Job(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			h.logger.Warn("bulk job not found", zap.String("job_id", jobID))
			utils.NotFoundError(c, fmt.Sprintf("Bulk job with ID '%s' not found. It may have expired or the server was restarted.", jobID))
			return
		}
		utils.InternalServerError(c, "Failed to load bulk job: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, job)
}

type jobSummary struct {
	JobID              string           `json:"job_id"`
	JobName            string           `json:"job_name,omitempty"`
	Status             models.JobStatus `json:"status"`
	TotalFiles         int              `json:"total_files"`
	ProcessedFiles     int              `json:"processed_files"`
	SuccessfulAnalyses int              `json:"successful_analyses"`
	FailedAnalyses     int              `json:"failed_analyses"`
	CreatedAt          string           `json:"created_at"`
}

// ListBulkJobs handles GET /bulk_jobs, newest first and without results.
func (h *Handler) ListBulkJobs(c *gin.Context) {
	jobs, err := h.bulk.Jobs(c.Request.Context())
	if err != nil {
		utils.InternalServerError(c, "Failed to list bulk jobs: "+err.Error())
		return
	}

	summaries := make([]jobSummary, len(jobs))
	for i, j := range jobs {
		summaries[i] = jobSummary{
			JobID:              j.JobID,
			JobName:            j.JobName,
			Status:             j.Status,
			TotalFiles:         j.TotalFiles,
			ProcessedFiles:     j.ProcessedFiles,
			SuccessfulAnalyses: j.SuccessfulAnalyses,
			FailedAnalyses:     j.FailedAnalyses,
			CreatedAt:          j.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": summaries, "total": len(summaries)})
}
