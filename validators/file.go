package validators

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	MaxFileSize       = 10 * 1024 * 1024
	MinFileSize       = 1024
	MaxFilenameLength = 255
	pdfMIMEType       = "application/pdf"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\w\s.-]`)
	repeatedDots        = regexp.MustCompile(`\.{2,}`)
	repeatedSpaces      = regexp.MustCompile(`\s{2,}`)
	pdfMagic            = []byte("%PDF")
)

// FileInfo describes an accepted upload.
type FileInfo struct {
	Filename         string   `json:"filename"`
	OriginalFilename string   `json:"original_filename"`
	Warnings         []string `json:"warnings"`
	Size             int64    `json:"file_size"`
	ContentType      string   `json:"content_type"`
}

// ValidateFileHeader checks the name, extension and size of an upload
// before its content is read. A size below zero means unknown.
func ValidateFileHeader(filename string, size int64, contentType string) (*FileInfo, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, badRequest("No file provided")
	}

	var errs, warnings []string
	clean := SanitizeFilename(filename)
	if len(clean) > MaxFilenameLength {
		errs = append(errs, fmt.Sprintf("Filename too long (max %d characters)", MaxFilenameLength))
	}
	if clean == "" || clean == ".pdf" {
		errs = append(errs, "Invalid filename")
	}
	if strings.ToLower(filepath.Ext(clean)) != ".pdf" {
		errs = append(errs, "Invalid file type. Only .pdf allowed")
	}
	if contentType != "" && contentType != pdfMIMEType {
		warnings = append(warnings, "Suspicious MIME type: "+contentType)
	}
	if size >= 0 {
		if size > MaxFileSize {
			errs = append(errs, fmt.Sprintf("File too large (max %dMB)", MaxFileSize/(1024*1024)))
		}
		if size < MinFileSize {
			errs = append(errs, fmt.Sprintf("File too small (min %d bytes)", MinFileSize))
		}
	}

	if len(errs) > 0 {
		return nil, badRequest("File validation failed: " + strings.Join(errs, "; "))
	}
	return &FileInfo{
		Filename:         clean,
		OriginalFilename: filename,
		Warnings:         warnings,
		Size:             size,
		ContentType:      contentType,
	}, nil
}

// ValidateFileContent checks the PDF magic number.
func ValidateFileContent(content []byte) error {
	if len(content) == 0 {
		return badRequest("Empty file content")
	}
	if !bytes.HasPrefix(content, pdfMagic) {
		return badRequest("File content does not appear to be a valid PDF")
	}
	return nil
}

// SanitizeFilename strips path components and unsafe characters and
// appends .pdf when no extension is left.
func SanitizeFilename(filename string) string {
	if filename == "" {
		return ""
	}
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")
	filename = repeatedDots.ReplaceAllString(filename, ".")
	filename = repeatedSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)
	if filepath.Ext(filename) == "" {
		filename += ".pdf"
	}
	return filename
}
