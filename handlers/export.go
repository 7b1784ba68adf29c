package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeanalyzer/export"
	"resumeanalyzer/models"
	"resumeanalyzer/services"
	"resumeanalyzer/utils"
)

// exportParam reads a form field, falling back to the query string.
func exportParam(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return v
	}
	return c.Query(key)
}

// loadExportable fetches a finished job or writes the matching error.
func (h *Handler) loadExportable(c *gin.Context, jobID string) (*models.BulkJob, bool) {
	job, err := h.bulk.ExportableJob(c.Request.Context(), jobID)
	switch {
	case err == nil:
		return job, true
	case errors.Is(err, services.ErrJobNotFound):
		utils.NotFoundError(c, fmt.Sprintf("Job %s not found", jobID))
	case errors.Is(err, services.ErrJobNotReady):
		utils.BadRequestError(c, fmt.Sprintf("Job %s is not ready for export. Status: %s", jobID, job.Status))
	case errors.Is(err, services.ErrNoResults):
		utils.BadRequestError(c, fmt.Sprintf("Job %s has no results to export", jobID))
	default:
		utils.InternalServerError(c, "Failed to load bulk job: "+err.Error())
	}
	return nil, false
}

// writeExport renders job into a fresh directory. The caller removes dir.
func (h *Handler) writeExport(job *models.BulkJob, format string, includeDetailed bool) (path, dir string, err error) {
	base := h.exportDir
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", "", err
	}
	dir, err = os.MkdirTemp(base, "export-*")
	if err != nil {
		return "", "", err
	}
	path, err = export.Write(job, format, dir, includeDetailed)
	if err != nil {
		os.RemoveAll(dir)
		return "", "", err
	}
	return path, dir, nil
}

func (h *Handler) serveExport(c *gin.Context, job *models.BulkJob, format, path string) {
	filename := export.Filename(job.JobID, format)
	c.Header("Content-Type", export.ContentType(format))
	c.FileAttachment(path, filename)
}

// ExportResults handles POST /export_results/:job_id. format is excel, csv
// or docx; include_detailed_analysis adds per-section detail to Excel.
func (h *Handler) ExportResults(c *gin.Context) {
	jobID := c.Param("job_id")
	format, err := export.NormalizeFormat(exportParam(c, "format"))
	if err != nil {
		utils.BadRequestError(c, err.Error())
		return
	}
	includeDetailed, _ := strconv.ParseBool(exportParam(c, "include_detailed_analysis"))

	job, ok := h.loadExportable(c, jobID)
	if !ok {
		return
	}

	path, dir, err := h.writeExport(job, format, includeDetailed)
	if err != nil {
		h.logger.Error("export failed", zap.String("job_id", jobID), zap.Error(err))
		utils.InternalServerError(c, "Export failed: "+err.Error())
		return
	}
	defer os.RemoveAll(dir)

	if h.archive != nil {
		key := services.ExportKey(jobID, filepath.Base(path))
		if url, err := h.archive.UploadFile(c.Request.Context(), path, key, export.ContentType(format)); err != nil {
			h.logger.Warn("export archive failed", zap.String("job_id", jobID), zap.Error(err))
		} else {
			c.Header("X-Archive-URL", url)
		}
	}

	h.logger.Info("export served", zap.String("job_id", jobID), zap.String("format", format))
	h.serveExport(c, job, format, path)
}

// ExportLink handles GET /export_link/:job_id. With an archive configured
// the link is a presigned S3 URL; otherwise it is a signed /download URL.
func (h *Handler) ExportLink(c *gin.Context) {
	jobID := c.Param("job_id")
	format, err := export.NormalizeFormat(c.DefaultQuery("format", export.FormatExcel))
	if err != nil {
		utils.BadRequestError(c, err.Error())
		return
	}

	job, ok := h.loadExportable(c, jobID)
	if !ok {
		return
	}

	if h.archive != nil {
		url, err := h.archiveLink(c, job, format)
		if err != nil {
			h.logger.Error("failed to create archive link", zap.String("job_id", jobID), zap.Error(err))
			utils.InternalServerError(c, "Failed to create download link: "+err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"job_id":     jobID,
			"format":     format,
			"url":        url,
			"storage":    "s3",
			"expires_in": int(exportLinkTTL.Seconds()),
		})
		return
	}

	token, err := h.tokens.Issue(jobID, format)
	if err != nil {
		utils.InternalServerError(c, "Failed to create download link: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job_id":     jobID,
		"format":     format,
		"url":        strings.TrimRight(h.publicBaseURL, "/") + "/download/" + token,
		"storage":    "local",
		"expires_in": int(exportLinkTTL.Seconds()),
	})
}

func (h *Handler) archiveLink(c *gin.Context, job *models.BulkJob, format string) (string, error) {
	path, dir, err := h.writeExport(job, format, false)
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	key := services.ExportKey(job.JobID, filepath.Base(path))
	if _, err := h.archive.UploadFile(c.Request.Context(), path, key, export.ContentType(format)); err != nil {
		return "", err
	}
	return h.archive.GeneratePresignedURL(key)
}

// Download handles GET /download/:token issued by ExportLink.
func (h *Handler) Download(c *gin.Context) {
	claims, err := h.tokens.Parse(c.Param("token"))
	if err != nil {
		utils.UnauthorizedError(c, services.ErrInvalidDownloadToken.Error())
		return
	}

	job, ok := h.loadExportable(c, claims.JobID)
	if !ok {
		return
	}

	path, dir, err := h.writeExport(job, claims.Format, false)
	if err != nil {
		utils.InternalServerError(c, "Export failed: "+err.Error())
		return
	}
	defer os.RemoveAll(dir)

	h.serveExport(c, job, claims.Format, path)
}
