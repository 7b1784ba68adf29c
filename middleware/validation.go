package middleware

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"resumeanalyzer/export"
	"resumeanalyzer/utils"
	"resumeanalyzer/validators"
)

const (
	// formOverheadBytes covers multipart headers and the text fields.
	formOverheadBytes    = 1 << 20
	maxQueryValueLength  = 512
	multipartContentType = "multipart/form-data"
)

// UploadLimit caps an upload of up to maxFiles resumes. Requests that declare
// a larger body are refused before anything is read.
func UploadLimit(maxFiles int) gin.HandlerFunc {
	limit := int64(maxFiles)*validators.MaxFileSize + formOverheadBytes
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			utils.AbortWithError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload too large. Maximum is %d file(s) of %d MB each", maxFiles, validators.MaxFileSize/(1024*1024)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// RequireMultipartForm accepts only multipart/form-data bodies that carry a
// boundary.
func RequireMultipartForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		mediaType, params, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if err != nil || mediaType != multipartContentType {
			utils.BadRequestError(c, "Invalid content type, expected "+multipartContentType)
			return
		}
		if params["boundary"] == "" {
			utils.BadRequestError(c, "Multipart boundary missing from Content-Type")
			return
		}
		c.Next()
	}
}

// ValidateExportOptions rejects an unknown export format or a malformed
// include_detailed_analysis flag, from either the query or the form.
func ValidateExportOptions() gin.HandlerFunc {
	return func(c *gin.Context) {
		if format := exportOption(c, "format"); format != "" {
			if _, err := export.NormalizeFormat(format); err != nil {
				utils.BadRequestError(c, err.Error())
				return
			}
		}
		if detailed := exportOption(c, "include_detailed_analysis"); detailed != "" {
			if _, err := strconv.ParseBool(detailed); err != nil {
				utils.BadRequestError(c, "include_detailed_analysis must be true or false")
				return
			}
		}
		c.Next()
	}
}

func exportOption(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return strings.TrimSpace(v)
	}
	return c.Query(key)
}

// SanitizeInput cleans every query value before handlers see it
func SanitizeInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		queryParams := c.Request.URL.Query()
		for key, values := range queryParams {
			for i, value := range values {
				queryParams[key][i] = sanitizeString(value)
			}
		}
		c.Request.URL.RawQuery = queryParams.Encode()

		c.Next()
	}
}

// sanitizeString drops control characters, trims and truncates to
// maxQueryValueLength runes.
func sanitizeString(input string) string {
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
	input = strings.TrimSpace(input)

	if runes := []rune(input); len(runes) > maxQueryValueLength {
		input = string(runes[:maxQueryValueLength])
	}
	return input
}
