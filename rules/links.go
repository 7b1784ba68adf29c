package rules

import (
	"context"
	"path"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"resumeanalyzer/models"
)

type linkPattern struct {
	kind    models.LinkType
	pattern *regexp.Regexp
}

var linkPatterns = []linkPattern{
	{models.LinkLinkedIn, regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[a-zA-Z0-9-]{3,}/?`)},
	{models.LinkLinkedIn, regexp.MustCompile(`(?i)LinkedIn:[ \t]*[a-zA-Z0-9-]{3,}(?:\s|$)`)},
	{models.LinkGitHub, regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[a-zA-Z0-9._-]{1,39}(?:/[a-zA-Z0-9._-]+)?/?`)},
	{models.LinkGitHub, regexp.MustCompile(`(?i)GitHub:[ \t]*[a-zA-Z0-9._-]{1,39}(?:\s|$)`)},
	{models.LinkPortfolio, regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?[a-zA-Z0-9-]{2,}\.[a-zA-Z]{2,}(?:/\S*)?`)},
}

var (
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	labelPrefix   = regexp.MustCompile(`(?i)^(?:LinkedIn|GitHub|Portfolio|Website):\s*`)
	fileSuffixes  = map[string]bool{"js": true, "ts": true, "py": true, "jsx": true, "tsx": true, "md": true, "txt": true, "pdf": true, "doc": true, "docx": true}
	trailingPunct = ".,;:)]}'\""
)

// ExtractLinks finds LinkedIn, GitHub and portfolio links, de-duplicated by
// reconstructed URL. Portfolio matches inside e-mail addresses, on top of a
// platform link, or ending in a file suffix are skipped.
func ExtractLinks(text string) []models.ExtractedLink {
	var (
		links         []models.ExtractedLink
		seen          = map[string]bool{}
		platformSpans [][2]int
		emailSpans    [][2]int
	)
	for _, m := range emailPattern.FindAllStringIndex(text, -1) {
		emailSpans = append(emailSpans, [2]int{m[0], m[1]})
	}

	for _, lp := range linkPatterns {
		for _, m := range lp.pattern.FindAllStringIndex(text, -1) {
			raw := strings.TrimSpace(text[m[0]:m[1]])

			if lp.kind == models.LinkPortfolio {
				raw = strings.TrimRight(raw, trailingPunct)
				if overlaps(emailSpans, m[0], m[1]) || overlaps(platformSpans, m[0], m[1]) || hasFileSuffix(raw) {
					continue
				}
			} else {
				platformSpans = append(platformSpans, [2]int{m[0], m[1]})
			}

			url := ReconstructURL(raw, lp.kind)
			if seen[url] {
				continue
			}
			seen[url] = true
			links = append(links, models.ExtractedLink{
				Type:             lp.kind,
				RawText:          raw,
				ReconstructedURL: url,
			})
		}
	}
	return links
}

func hasFileSuffix(raw string) bool {
	host := raw
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.Index(host, "/"); i >= 0 {
		host = host[:i]
	}
	ext := strings.TrimPrefix(path.Ext(host), ".")
	return fileSuffixes[strings.ToLower(ext)]
}

// ReconstructURL turns raw link text into an absolute https URL.
func ReconstructURL(raw string, kind models.LinkType) string {
	url := labelPrefix.ReplaceAllString(strings.TrimSpace(raw), "")
	url = strings.TrimRight(url, "/")
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}

	switch kind {
	case models.LinkLinkedIn:
		if !strings.Contains(strings.ToLower(url), "linkedin.com") {
			url = "linkedin.com/in/" + url
		}
		if !strings.HasPrefix(url, "www.") {
			url = "www." + url
		}
	case models.LinkGitHub:
		if !strings.Contains(strings.ToLower(url), "github.com") {
			url = "github.com/" + url
		}
		if !strings.HasPrefix(url, "www.") {
			url = "www." + url
		}
	}
	return "https://" + url
}

// ValidateLinks checks up to MaxLinks links, MaxParallel at a time, within
// TotalBudget. Links still running when the budget ends and links past the
// limit keep a nil Valid.
func (v *Validator) ValidateLinks(ctx context.Context, links []models.ExtractedLink) []models.ExtractedLink {
	if !v.cfg.Enabled || v.checker == nil || len(links) == 0 {
		return links
	}

	limit := min(v.cfg.MaxLinks, len(links))
	checked := links[:limit]
	v.logger.Info("validating links", zap.Int("count", len(checked)))

	budget, cancel := context.WithTimeout(ctx, v.cfg.TotalBudget)
	defer cancel()

	type outcome struct {
		index  int
		result models.LinkValidationResult
	}
	outcomes := make(chan outcome, len(checked))

	var g errgroup.Group
	g.SetLimit(max(v.cfg.MaxParallel, 1))
	go func() {
		for i := range checked {
			url := checked[i].ReconstructedURL
			g.Go(func() error {
				if budget.Err() != nil {
					return nil
				}
				outcomes <- outcome{index: i, result: v.checker.Check(budget, url)}
				return nil
			})
		}
		_ = g.Wait()
		close(outcomes)
	}()

	done := make([]*models.LinkValidationResult, len(checked))
collect:
	for {
		select {
		case o, ok := <-outcomes:
			if !ok {
				break collect
			}
			if budget.Err() != nil {
				break collect
			}
			done[o.index] = &o.result
		case <-budget.Done():
			v.logger.Warn("link validation budget exhausted", zap.Duration("budget", v.cfg.TotalBudget))
			break collect
		}
	}

	now := time.Now().Format(time.RFC3339)
	for i := range checked {
		if done[i] == nil {
			links[i].Valid = nil
			links[i].ValidationDetails = &models.LinkValidationResult{
				URL:                 links[i].ReconstructedURL,
				ErrorType:           "VALIDATION_TIMEOUT",
				ErrorMessage:        "Validation did not finish within the time budget",
				ValidationTimestamp: now,
			}
			continue
		}
		links[i].Valid = done[i].IsValid
		links[i].ValidationDetails = done[i]
	}
	for i := limit; i < len(links); i++ {
		links[i].Valid = nil
		links[i].ValidationDetails = &models.LinkValidationResult{
			URL:                 links[i].ReconstructedURL,
			ErrorType:           "LIMIT_REACHED",
			ErrorMessage:        "Validation skipped due to link limit",
			ValidationTimestamp: now,
		}
	}
	return links
}

// AnalyzeLinks extracts, validates and partitions the links in text.
func (v *Validator) AnalyzeLinks(ctx context.Context, text string) models.LinkAnalysis {
	links := v.ValidateLinks(ctx, ExtractLinks(text))

	result := models.LinkAnalysis{
		LinksFound:  []models.ExtractedLink{},
		ValidLinks:  []models.ExtractedLink{},
		BrokenLinks: []models.ExtractedLink{},
	}
	for _, l := range links {
		result.LinksFound = append(result.LinksFound, l)
		if l.Valid == nil {
			continue
		}
		if *l.Valid {
			result.ValidLinks = append(result.ValidLinks, l)
		} else {
			result.BrokenLinks = append(result.BrokenLinks, l)
		}
	}
	return result
}
