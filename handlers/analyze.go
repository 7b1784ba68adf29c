package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeanalyzer/models"
	"resumeanalyzer/parsers"
	"resumeanalyzer/services"
	"resumeanalyzer/utils"
	"resumeanalyzer/validators"
)

// AnalyzeResume handles POST /analyze_resume with a multipart "file" and
// optional comma-separated "priorities".
func (h *Handler) AnalyzeResume(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.ValidationError(c, []string{"file: field required"})
		return
	}

	priorities, err := validators.ValidatePriorities(c.PostForm("priorities"))
	if err != nil {
		abortWithValidation(c, err)
		return
	}

	upload, err := saveUpload(fh)
	if err != nil {
		abortWithValidation(c, err)
		return
	}
	defer os.Remove(upload.Path)

	h.logger.Info("analysing resume",
		zap.String("filename", upload.Info.Filename),
		zap.Strings("priorities", priorities))

	result, text, err := h.analyzer.AnalyzeFile(c.Request.Context(), upload.Path, priorities)
	if err != nil {
		h.logger.Error("analysis failed", zap.String("filename", upload.Info.Filename), zap.Error(err))
		switch {
		case errors.Is(err, parsers.ErrNoText):
			utils.InternalServerError(c, err.Error())
		case errors.Is(err, parsers.ErrNotResume):
			utils.BadRequestError(c, err.Error())
		case errors.Is(err, services.ErrModelNotConfigured):
			utils.AbortWithError(c, http.StatusServiceUnavailable, err.Error())
		default:
			utils.InternalServerError(c, "Analysis failed: "+err.Error())
		}
		return
	}

	factSheet := result.FactSheet
	factSheet.PromptWasCustomized = len(priorities) > 0

	c.JSON(http.StatusOK, models.AnalysisResponse{
		Status:               "success",
		Analysis:             result.Analysis,
		RuleBasedFindings:    result.RuleBasedFindings,
		FactSheet:            factSheet,
		PriorityAnalysis:     result.PriorityAnalysis,
		ExtractedTextPreview: preview(text, previewLength),
		ProcessingMetadata:   result.Metadata,
	})
}
