package validators

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

const (
	MaxTextLength = 50000
	MinTextLength = 10
)

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)\\x[0-9a-f]{2}`),
	regexp.MustCompile(`(?i)%[0-9a-f]{2}`),
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ValidateText rejects oversized, empty or script-like input and returns
// the text with tags stripped, entities decoded and whitespace collapsed.
func ValidateText(text, field string) (string, error) {
	if len(text) > MaxTextLength {
		return "", badRequest(fmt.Sprintf("%s too long (max %d characters)", field, MaxTextLength))
	}
	if len(strings.TrimSpace(text)) < MinTextLength {
		return "", badRequest(fmt.Sprintf("%s too short (min %d characters)", field, MinTextLength))
	}
	for _, re := range suspiciousPatterns {
		if re.MatchString(text) {
			return "", badRequest("Suspicious content detected in " + field)
		}
	}

	cleaned := tagPattern.ReplaceAllString(text, "")
	cleaned = html.UnescapeString(cleaned)
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned), nil
}
