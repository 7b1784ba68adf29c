package parsers

import (
	"strings"
	"testing"
)

const sampleResume = `John Doe
john.doe@email.com
(555) 123-4567
Page 1 of 2

Summary
Experienced software engineer with 5+ years developing web applications.

Work Experience
Software Engineer at Google, June 2020 - Present
• Developed scalable web applications using Go and React
• Led team of 4 developers on critical projects
• Improved system performance by 40%

Education
Bachelor of Science in Computer Science, Stanford University, 2014 - 2018
CGPA: 3.8/4.0

Skills
Go, Python, JavaScript, React, Docker, Kubernetes
Confidential
`

func TestTextProcessor_ValidateExtractedText(t *testing.T) {
	p := NewTextProcessor()

	if !p.ValidateExtractedText(sampleResume) {
		t.Errorf("expected sample resume to validate, indicator score %d", IndicatorScore(sampleResume))
	}
	if p.ValidateExtractedText("Experience Education Skills") {
		t.Errorf("short text should not validate")
	}

	recipe := strings.Repeat("Mix the flour and sugar, then bake for twenty minutes. ", 10)
	if p.ValidateExtractedText(recipe) {
		t.Errorf("non-resume text should not validate")
	}
}

func TestTextProcessor_PreprocessText(t *testing.T) {
	p := NewTextProcessor()
	out := p.PreprocessText(sampleResume)

	if strings.Contains(out, "Page 1 of 2") {
		t.Errorf("page marker not removed:\n%s", out)
	}
	if strings.Contains(strings.ToLower(out), "confidential") {
		t.Errorf("confidential marker not removed:\n%s", out)
	}
	if !strings.Contains(out, "\nWORK EXPERIENCE\n") {
		t.Errorf("expected upper-cased section header:\n%s", out)
	}
	if !strings.Contains(out, "CGPA: 3.8/4.0") {
		t.Errorf("grade ratio should survive preprocessing:\n%s", out)
	}
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("blank runs should be collapsed:\n%s", out)
	}
	if !strings.HasPrefix(out, "John Doe") {
		t.Errorf("expected output to start with the name, got %q", out[:20])
	}
}

func TestTextProcessor_DetectSectionHeader(t *testing.T) {
	p := NewTextProcessor()
	tests := []struct {
		line string
		want string
	}{
		{"EXPERIENCE", "experience"},
		{"Technical Skills:", "skills"},
		{"Personal Projects", "projects"},
		{"Hobbies", "interests"},
		{"Developed a project management tool with great experience", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := p.DetectSectionHeader(tt.line); got != tt.want {
			t.Errorf("DetectSectionHeader(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestTextProcessor_Statistics(t *testing.T) {
	p := NewTextProcessor()

	empty := p.Statistics("")
	if empty.WordCount != 0 || empty.EstimatedPages != 0 {
		t.Errorf("expected zero stats for empty text, got %+v", empty)
	}

	stats := p.Statistics("Education\nI build things. I ship them!")
	if stats.WordCount != 7 {
		t.Errorf("word count = %d, want 7", stats.WordCount)
	}
	if stats.SectionCount != 1 {
		t.Errorf("section count = %d, want 1", stats.SectionCount)
	}
	if stats.EstimatedPages != 1 {
		t.Errorf("estimated pages = %d, want 1", stats.EstimatedPages)
	}
	if stats.ReadabilityScore != 3.5 {
		t.Errorf("readability = %v, want 3.5", stats.ReadabilityScore)
	}
}

func TestTextProcessor_AssessTextQuality(t *testing.T) {
	p := NewTextProcessor()

	if got := p.AssessTextQuality("too few words"); got != "very_poor" {
		t.Errorf("got %q, want very_poor", got)
	}
	oneLine := strings.Repeat("word ", 120)
	if got := p.AssessTextQuality(oneLine); got != "fair" {
		t.Errorf("got %q, want fair", got)
	}
	manyLines := strings.Repeat("word word word word word word word word word word word word\n", 12)
	if got := p.AssessTextQuality(manyLines); got != "good" {
		t.Errorf("got %q, want good", got)
	}
}

func TestTextProcessor_ExtractContact(t *testing.T) {
	p := NewTextProcessor()
	c := p.ExtractContact(sampleResume)

	if c.Name != "John Doe" {
		t.Errorf("name = %q, want John Doe", c.Name)
	}
	if c.Email != "john.doe@email.com" {
		t.Errorf("email = %q", c.Email)
	}
	if c.Phone == "" {
		t.Errorf("expected a phone number")
	}
}
