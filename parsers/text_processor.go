package parsers

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"resumeanalyzer/models"
)

// ErrNotResume is returned when extracted text does not look like a resume.
var ErrNotResume = errors.New("Extracted text does not appear to be a valid resume")

const (
	MinResumeLength   = 200
	minIndicatorScore = 5
	wordsPerPage      = 400
)

var resumeIndicators = map[string]int{
	"experience":    2,
	"education":     2,
	"skills":        2,
	"work":          1,
	"employment":    1,
	"university":    1,
	"college":       1,
	"degree":        1,
	"project":       1,
	"email":         1,
	"phone":         1,
	"contact":       1,
	"profile":       1,
	"summary":       1,
	"objective":     1,
	"certification": 1,
	"language":      1,
	"reference":     1,
}

// sectionOrder keeps header detection deterministic.
var sectionOrder = []string{"experience", "education", "skills", "projects", "certifications", "awards", "languages", "interests"}

var sectionKeywords = map[string][]string{
	"experience":     {"experience", "work history", "employment"},
	"education":      {"education", "academic", "qualifications"},
	"skills":         {"skills", "technical skills", "competencies"},
	"projects":       {"projects", "personal projects", "academic projects"},
	"certifications": {"certifications", "certificates", "licenses"},
	"awards":         {"awards", "honors", "achievements"},
	"languages":      {"languages", "language skills"},
	"interests":      {"interests", "hobbies", "activities"},
}

// Contact holds the contact details found near the top of a resume.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// TextProcessor validates, cleans and measures extracted resume text
type TextProcessor struct {
	artefactRegexes []*regexp.Regexp
	blankRunRegex   *regexp.Regexp
	sentenceRegex   *regexp.Regexp
	emailRegex      *regexp.Regexp
	phoneRegex      *regexp.Regexp
	nameWordRegex   *regexp.Regexp
}

// NewTextProcessor creates a text processor with compiled regexes
func NewTextProcessor() *TextProcessor {
	return &TextProcessor{
		artefactRegexes: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*page\s+\d+\s+of\s+\d+\s*$`),
			regexp.MustCompile(`(?i)\bpage\s+\d+\s+of\s+\d+\b`),
			regexp.MustCompile(`(?im)^\s*page\s+\d+\s*$`),
			regexp.MustCompile(`(?m)^\s*\d+\s*/\s*\d+\s*$`),
			regexp.MustCompile(`(?im)^\s*(confidential|resume|cv|curriculum vitae)\s*$`),
			regexp.MustCompile(`(?i)\bconfidential\b`),
			regexp.MustCompile(`(?im)^.*(©|\bcopyright\b).*$`),
		},
		blankRunRegex: regexp.MustCompile(`\n\s*\n`),
		sentenceRegex: regexp.MustCompile(`[.!?]+`),
		emailRegex:    regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phoneRegex:    regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		nameWordRegex: regexp.MustCompile(`^[A-Za-z'.-]+$`),
	}
}

// ValidateExtractedText reports whether text is long enough and carries
// enough weighted resume vocabulary.
func (p *TextProcessor) ValidateExtractedText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinResumeLength {
		return false
	}
	return IndicatorScore(trimmed) >= minIndicatorScore
}

// IndicatorScore sums the weights of resume keywords present in text.
func IndicatorScore(text string) int {
	lower := strings.ToLower(text)
	score := 0
	for indicator, weight := range resumeIndicators {
		if strings.Contains(lower, indicator) {
			score += weight
		}
	}
	return score
}

// PreprocessText strips page artefacts, normalises whitespace and
// upper-cases recognised section headers.
func (p *TextProcessor) PreprocessText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, re := range p.artefactRegexes {
		text = re.ReplaceAllString(text, "")
	}

	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--- Page") || strings.HasPrefix(line, "--- Table") {
			continue
		}

		line = strings.Join(strings.Fields(line), " ")
		if p.DetectSectionHeader(line) != "" {
			cleaned = append(cleaned, "\n"+strings.ToUpper(line)+"\n")
			continue
		}
		cleaned = append(cleaned, line)
	}

	processed := strings.Join(cleaned, "\n")
	processed = p.blankRunRegex.ReplaceAllString(processed, "\n\n")
	return strings.TrimSpace(processed)
}

// DetectSectionHeader returns the section a short heading line names, or "".
// Lines longer than four words are treated as body text.
func (p *TextProcessor) DetectSectionHeader(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(strings.Fields(trimmed)) > 4 {
		return ""
	}
	lower := strings.ToLower(strings.TrimRight(trimmed, ":"))
	for _, section := range sectionOrder {
		for _, kw := range sectionKeywords[section] {
			if strings.Contains(lower, kw) {
				return section
			}
		}
	}
	return ""
}

// Statistics measures the text.
func (p *TextProcessor) Statistics(text string) models.TextStatistics {
	if text == "" {
		return models.TextStatistics{}
	}

	lines := strings.Split(text, "\n")
	words := strings.Fields(text)

	sections := 0
	for _, line := range lines {
		if p.DetectSectionHeader(line) != "" {
			sections++
		}
	}

	pages := len(words) / wordsPerPage
	if pages < 1 {
		pages = 1
	}

	readability := 0.0
	if sentences := len(p.sentenceRegex.FindAllString(text, -1)); sentences > 0 {
		readability = math.Round(float64(len(words))/float64(sentences)*10) / 10
	}

	return models.TextStatistics{
		CharacterCount:   len([]rune(text)),
		WordCount:        len(words),
		LineCount:        len(lines),
		SectionCount:     sections,
		EstimatedPages:   pages,
		ReadabilityScore: readability,
	}
}

// AssessTextQuality grades extraction quality.
func (p *TextProcessor) AssessTextQuality(text string) string {
	if text == "" {
		return "poor"
	}

	words := len(strings.Fields(text))
	lines := len(strings.Split(text, "\n"))
	nonASCII := 0
	for _, r := range text {
		if r > 127 {
			nonASCII++
		}
	}

	switch {
	case words < 100:
		return "very_poor"
	case float64(nonASCII) > float64(words)*0.1:
		return "poor"
	case lines < 10:
		return "fair"
	default:
		return "good"
	}
}

// ExtractContact pulls name, email and phone from the text. The name is
// the first line in the top six made of two to four plain words.
func (p *TextProcessor) ExtractContact(text string) Contact {
	var c Contact
	c.Email = p.emailRegex.FindString(text)
	c.Phone = strings.TrimSpace(p.phoneRegex.FindString(text))

	for i, line := range strings.Split(text, "\n") {
		if i > 5 {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "@") || p.phoneRegex.MatchString(line) || p.DetectSectionHeader(line) != "" {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		isName := true
		for _, w := range words {
			if len(w) < 2 || !p.nameWordRegex.MatchString(w) {
				isName = false
				break
			}
		}
		if isName {
			c.Name = line
			break
		}
	}
	return c
}
