package parsers

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"code.sajari.com/docconv"
)

// ErrNoText is returned when no extraction method produced any text.
var ErrNoText = errors.New("Failed to extract text from PDF")

// PDFExtractor handles extracting text from PDF files
type PDFExtractor struct {
	// convert and pdftotext are swappable for tests.
	convert   func(path string) (string, error)
	pdftotext func(ctx context.Context, path string) (string, error)
}

// NewPDFExtractor creates a new PDF text extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{
		convert:   convertWithDocconv,
		pdftotext: extractWithPdfToText,
	}
}

// ExtractText extracts text from a PDF file using docconv first and the
// pdftotext binary as a fallback.
func (e *PDFExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	var errs []error

	text, err := e.convert(filePath)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("docconv: %w", err))
	}

	text, err = e.pdftotext(ctx, filePath)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("pdftotext: %w", err))
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %v", ErrNoText, errors.Join(errs...))
	}
	return "", ErrNoText
}

func convertWithDocconv(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// extractWithPdfToText uses the poppler pdftotext command, writing to stdout
func extractWithPdfToText(ctx context.Context, filePath string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not available: %w", err)
	}

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", filePath, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}
