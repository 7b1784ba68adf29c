package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"resumeanalyzer/validators"
)

// savedUpload is a validated PDF copied to a temp file.
type savedUpload struct {
	Path string
	Info *validators.FileInfo
}

// saveUpload validates the upload's header and content and writes it to a
// temp file. The caller removes Path.
func saveUpload(fh *multipart.FileHeader) (*savedUpload, error) {
	info, err := validators.ValidateFileHeader(fh.Filename, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, validators.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := validators.ValidateFileContent(content); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", uploadTempGlob)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	return &savedUpload{Path: tmp.Name(), Info: info}, nil
}

func removeUploads(uploads []*savedUpload) {
	for _, u := range uploads {
		os.Remove(u.Path)
	}
}
