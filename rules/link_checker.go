package rules

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"resumeanalyzer/models"
)

// LinkChecker reports whether a URL is reachable.
type LinkChecker interface {
	Check(ctx context.Context, url string) models.LinkValidationResult
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
}

// HTTPLinkChecker validates links with HEAD requests, falling back to GET
// when HEAD is not allowed.
type HTTPLinkChecker struct {
	client     *http.Client
	insecure   *http.Client
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewHTTPLinkChecker creates a checker whose requests time out after timeout.
func NewHTTPLinkChecker(timeout time.Duration, logger *zap.Logger) *HTTPLinkChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	insecureTransport := http.DefaultTransport.(*http.Transport).Clone()
	insecureTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &HTTPLinkChecker{
		client:     &http.Client{Timeout: timeout},
		insecure:   &http.Client{Timeout: timeout, Transport: insecureTransport},
		retryDelay: 500 * time.Millisecond,
		logger:     logger,
	}
}

// Check performs the request and applies platform rules to the response.
func (c *HTTPLinkChecker) Check(ctx context.Context, rawURL string) (result models.LinkValidationResult) {
	result = models.LinkValidationResult{URL: rawURL, IsValid: boolPtr(false)}
	defer func() { result.ValidationTimestamp = time.Now().Format(time.RFC3339) }()

	target := rawURL
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	result.FinalURL = target

	start := time.Now()
	resp, err := c.fetch(ctx, c.client, http.MethodHead, target)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp, err = c.fetch(ctx, c.client, http.MethodGet, target)
	}
	if err != nil && isCertificateError(err) {
		c.logger.Warn("certificate verification failed, retrying without verification", zap.String("url", target))
		result.SSLWarning = true
		resp, err = c.fetch(ctx, c.insecure, http.MethodHead, target)
	}
	if err != nil {
		result.ErrorType, result.ErrorMessage = classifyError(err)
		return result
	}

	result.ResponseTimeMS = time.Since(start).Milliseconds()
	result.StatusCode = resp.StatusCode
	result.FinalURL = resp.Request.URL.String()
	result.RedirectCount = redirectCount(resp)
	judgeResponse(&result)
	return result
}

// fetch sends one request and retries once on 429 or a server error.
func (c *HTTPLinkChecker) fetch(ctx context.Context, client *http.Client, method, url string) (*http.Response, error) {
	var resp *http.Response
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		for k, v := range browserHeaders {
			req.Header.Set(k, v)
		}

		resp, err = client.Do(req)
		if err != nil {
			return nil, err
		}
		resp.Body.Close()

		if !retryable(resp.StatusCode) || attempt == 1 {
			break
		}
		select {
		case <-ctx.Done():
			return resp, nil
		case <-time.After(c.retryDelay):
		}
	}
	return resp, nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func redirectCount(resp *http.Response) int {
	n := 0
	for r := resp.Request; r != nil && r.Response != nil; r = r.Response.Request {
		n++
	}
	return n
}

// judgeResponse sets validity from the status code and final URL.
func judgeResponse(r *models.LinkValidationResult) {
	final := strings.ToLower(r.FinalURL)
	status := r.StatusCode
	ok := status >= 200 && status < 400

	switch {
	case strings.Contains(final, "linkedin.com"):
		r.Platform = "LinkedIn"
		switch {
		case status == 999:
			parts := strings.SplitN(final, "/in/", 2)
			if len(parts) == 2 && len(parts[1]) > 2 {
				r.IsValid = boolPtr(true)
				r.ErrorMessage = "LinkedIn bot protection (999) - URL structure valid"
			} else {
				r.IsValid = boolPtr(false)
				r.ErrorType = "LINKEDIN_INVALID_FORMAT"
				r.ErrorMessage = "Invalid LinkedIn profile URL format"
			}
		case ok:
			r.IsValid = boolPtr(true)
		default:
			r.IsValid = boolPtr(false)
			r.ErrorType = fmt.Sprintf("HTTP_%d", status)
			r.ErrorMessage = fmt.Sprintf("LinkedIn returned HTTP %d", status)
		}

	case strings.Contains(final, "github.com"):
		r.Platform = "GitHub"
		switch {
		case ok:
			r.IsValid = boolPtr(true)
		case status == http.StatusNotFound:
			path := ""
			if i := strings.Index(final, "github.com/"); i >= 0 {
				path = strings.Trim(final[i+len("github.com/"):], "/")
			}
			if path != "" && !strings.Contains(path, "/") {
				r.IsValid = boolPtr(true)
				r.ErrorMessage = "GitHub profile exists but may be private/restricted"
			} else {
				r.IsValid = boolPtr(false)
				r.ErrorType = "GITHUB_NOT_FOUND"
				r.ErrorMessage = "GitHub profile or repository not found"
			}
		default:
			r.IsValid = boolPtr(false)
			r.ErrorType = fmt.Sprintf("HTTP_%d", status)
			r.ErrorMessage = fmt.Sprintf("GitHub returned HTTP %d", status)
		}

	default:
		r.Platform = "Other/Portfolio"
		switch {
		case ok:
			r.IsValid = boolPtr(true)
		case status == http.StatusForbidden || status == http.StatusMethodNotAllowed:
			r.IsValid = boolPtr(true)
			r.ErrorMessage = fmt.Sprintf("Site accessible but returned %d (likely blocking HEAD requests)", status)
		default:
			r.IsValid = boolPtr(false)
			r.ErrorType = fmt.Sprintf("HTTP_%d", status)
			r.ErrorMessage = fmt.Sprintf("Received HTTP %d status code", status)
		}
	}
}

func isCertificateError(err error) bool {
	var (
		verifyErr   *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidCert x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) || errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) || errors.As(err, &invalidCert)
}

func classifyError(err error) (string, string) {
	var (
		netErr net.Error
		dnsErr *net.DNSError
		opErr  *net.OpError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.As(err, &netErr) && netErr.Timeout():
		return "TIMEOUT", "Request timed out"
	case errors.As(err, &dnsErr):
		return "CONNECTION_ERROR", "Domain name could not be resolved (DNS error)"
	case errors.As(err, &opErr):
		return "CONNECTION_ERROR", "Connection failed: " + truncateRunes(err.Error(), 100)
	default:
		return "UNKNOWN_ERROR", truncateRunes(err.Error(), 100)
	}
}
