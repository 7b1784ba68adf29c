package services

import (
	"context"
	"errors"
	"sync"

	"resumeanalyzer/models"
)

const sampleResumeText = `Jane Smith
Email: jane.smith@example.com | Phone: 555-123-4567

SUMMARY
Backend engineer with 3 years of experience building distributed services in Go and Python.

EXPERIENCE
Software Engineer, Acme Corp (Jan 2021 - Present)
- Developed payment APIs serving 2 million requests per day
- Reduced deployment time by 40% by automating CI pipelines

EDUCATION
B.Tech in Computer Science, State University, 2020. CGPA: 8.7/10

PROJECTS
Inventory Tracker (Mar 2020 - Jun 2020)
- Developed a stock tracking service with PostgreSQL

SKILLS
Go, Python, PostgreSQL, Docker, Kubernetes
`

const sampleReply = `{
  "basic_info": {"content": {"name": "Jane Smith", "email": "jane.smith@example.com"}, "quality_score": 80, "suggestions": "Add a location."},
  "professional_summary": {"content": {"summary_text": "Backend engineer with 3 years of experience building distributed services."}, "quality_score": 80, "suggestions": "Mention a headline achievement."},
  "education": {"content": {"degree": "B.Tech in Computer Science"}, "quality_score": 80, "suggestions": "List relevant coursework."},
  "work_experience": {"content": {"companies": ["Acme Corp"], "positions": ["Software Engineer"], "descriptions": ["3 years building payment APIs"]}, "quality_score": 80, "suggestions": "Quantify team impact."},
  "projects": {"content": {"project_names": ["Inventory Tracker"]}, "quality_score": 80, "suggestions": "Add a repository link."},
  "skills": {"content": {"technical_skills": ["Go", "Python", "PostgreSQL", "Docker"], "soft_skills": ["Mentoring"]}, "quality_score": 80, "suggestions": "Group skills by category."},
  "certifications": {"content": {"certification_names": ["CKA"]}, "quality_score": 80, "suggestions": "Add issue dates."},
  "extracurriculars": {"content": {"activities": ["Hackathon mentor"]}, "quality_score": 80, "suggestions": "Describe your role."},
  "links_found": {"linkedin_present": false, "github_present": false, "all_links_list": []},
  "formatting_issues": {"has_headshot": false},
  "overall_score": 0,
  "overall_suggestions": "Add links to your professional profiles."
}`

// fakeGenerator replays replies in order, repeating the last one.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)

	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if len(g.replies) == 0 {
		return "", errors.New("no reply configured")
	}
	if i >= len(g.replies) {
		i = len(g.replies) - 1
	}
	return g.replies[i], nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type fakeExtractor struct {
	text string
	err  error
}

func (e fakeExtractor) ExtractText(context.Context, string) (string, error) {
	return e.text, e.err
}

func sampleResult(score models.Score) *models.AnalysisResult {
	analysis := &models.AIAnalysis{OverallScore: score}
	analysis.BasicInfo.Content = map[string]interface{}{"name": "Jane Smith"}
	return &models.AnalysisResult{
		Analysis:          analysis,
		RuleBasedFindings: &models.RuleFindings{CompletenessScore: 72.5},
		FactSheet:         models.FactSheet{Summary: "CGPA: ✅", PromptWasCustomized: true},
	}
}
