package services

import (
	"strings"

	"resumeanalyzer/models"
	"resumeanalyzer/scoring"
)

const promptIntro = "You are an expert resume evaluator. Analyze the resume text and provide comprehensive feedback in valid JSON format."

var priorityModeLines = []string{
	"ANALYSIS REQUIREMENTS:",
	"- MANDATORY: Analyze ALL sections (basic_info, professional_summary, education, work_experience, projects, skills, certifications, extracurriculars) regardless of priorities",
	"- MANDATORY: Provide complete content extraction and quality scores for every section",
	"- MANDATORY: Include specific suggestions for every section, even non-priority ones",
	"PRIORITY WEIGHTING: After completing full analysis:",
	"- Apply 50% higher importance to priority areas in overall scoring calculation",
	"- Provide more detailed and actionable suggestions for priority areas",
	"- When multiple areas are equally strong, highlight priority area achievements first",
	"- Overall score should reflect priority area performance more heavily in final calculation",
	"",
}

var generalModeLines = []string{
	"GENERAL ANALYSIS MODE:",
	"Provide a comprehensive, balanced evaluation across all resume aspects including technical skills, experience, education, formatting, and content quality.",
	"Give equal weight to all sections and provide holistic feedback for overall improvement.",
	"Apply balanced scoring across all areas without specific emphasis.",
	"",
}

var ruleLines = []string{
	"SCORING AND FEEDBACK RULES:",
	"- Extract only actual resume content into content fields - do not invent details",
	"- Provide realistic quality scores (0-100) based on content presence and quality",
	"- ALWAYS provide specific, actionable suggestions - never use generic placeholders",
	"- Return ONLY valid JSON in the exact schema below",
	"- Output MUST start with '{' and end with '}'",
	"- Never recommend headshots or profile pictures",
	"",
	"CONTENT-BASED SCORING GUIDELINES:",
	"- Completely empty sections: 0 points + suggestions for what to include",
	"- Minimal content (1-2 items): 30-50 points + suggestions for improvement",
	"- Good content (3-4 items): 60-80 points + suggestions for enhancement",
	"- Excellent content (5+ items): 85-100 points + minor improvement suggestions",
	"",
	"SUGGESTION QUALITY REQUIREMENTS:",
	"- Be specific to the section being analyzed",
	"- Mention exactly what is missing or could be improved",
	"- Provide actionable advice relevant to the section",
	"- Use professional, encouraging tone",
	"",
	"SKILLS CATEGORIZATION REQUIREMENTS:",
	"- TECHNICAL SKILLS: Programming languages, frameworks, databases, tools, operating systems",
	"- HARD SKILLS: Domain-specific skills, certifications, methodologies, quantifiable competencies",
	"- SOFT SKILLS: Communication, leadership, problem-solving, interpersonal, adaptability",
	"- Properly categorize each skill into the correct category based on its nature",
	"- Do not mix categories - keep technical and hard skills separate from soft skills",
	"- Focus on clear skill categorization and organization",
	"",
	"COMPREHENSIVE ANALYSIS REQUIREMENT:",
	"You MUST analyze and provide data for ALL sections in the JSON schema below.",
	"Even if priorities are specified, you must still analyze ALL sections completely.",
	"No section should be omitted or have empty content if information exists in the resume.",
	"",
	"MANDATORY CONTENT EXTRACTION RULES:",
	"- ALWAYS extract actual content from the resume into the 'content' field of each section",
	"- If a section exists in the resume, populate ALL relevant fields in the content object",
	"- For skills: Extract skills exactly as they appear in the resume, preserving original formatting and organization",
	"- For work_experience: Extract ALL companies, positions, durations, and specific achievements",
	"- For education: Extract ALL institutions, degrees, dates, and any academic details",
	"- For projects: Extract ALL project names, descriptions, technologies, and outcomes",
	"- Never leave content fields empty if corresponding information exists in the resume",
	"",
}

const fallbackFocus = `Since automated pre-analysis was unavailable, pay extra attention to:
- Completeness of all sections
- Presence of dates in projects and experience
- Academic performance metrics (CGPA/GPA)
- Formatting consistency
- Professional presentation`

// BuildPrompt assembles the analysis prompt: fact sheet, priority or
// general mode, scoring guidance from findings, rules, schema and text.
func BuildPrompt(text string, priorities []string, findings *models.RuleFindings) string {
	lines := []string{promptIntro, ""}

	if findings != nil {
		lines = append(lines,
			"FACT SHEET - PRE-ANALYSIS FINDINGS:",
			scoring.BuildFactSheet(findings).Summary,
			"",
			"IMPORTANT: Use the fact sheet above to inform your analysis. Address gaps indicated by ❌ and ⚠️ symbols.",
			"",
		)
	}

	if len(priorities) > 0 {
		lines = append(lines, "RECRUITER PRIORITIES: "+strings.Join(priorities, ", "))
		lines = append(lines, priorityModeLines...)
	} else {
		lines = append(lines, generalModeLines...)
	}

	if findings != nil {
		lines = append(lines, scoring.ScoringGuidance(findings)...)
	}

	lines = append(lines, ruleLines...)
	lines = append(lines, jsonSchema, "", "INPUT RESUME TEXT:\n"+text)
	return strings.Join(lines, "\n")
}

// FallbackPrompt is used when the steered prompt fails.
func FallbackPrompt(text string) string {
	return strings.Join([]string{promptIntro, "", fallbackFocus, "", jsonSchema, "", "INPUT RESUME TEXT:\n" + text}, "\n")
}

const jsonSchema = `REQUIRED JSON STRUCTURE:
{
  "basic_info": {
    "content": {"name": "extracted_name", "email": "email@example.com", "phone": "phone_number", "location": "city_state"},
    "quality_score": [15-100 based on completeness],
    "suggestions": "specific advice for improving contact information"
  },
  "professional_summary": {
    "content": {"summary_text": "extracted_summary_content"},
    "quality_score": [15-100 based on quality and presence],
    "suggestions": "specific advice about summary content, length, and focus"
  },
  "education": {
    "content": {"institutions": ["school_names"], "degrees": ["degree_types"], "dates": ["graduation_dates"]},
    "quality_score": [15-100 based on completeness],
    "suggestions": "specific advice about missing CGPA, dates, or institution details"
  },
  "work_experience": {
    "content": {"companies": ["company_names"], "positions": ["job_titles"], "durations": ["time_periods"], "achievements": ["accomplishments"]},
    "quality_score": [15-100 based on depth and relevance],
    "suggestions": "specific advice about quantifying achievements, adding responsibilities, or formatting"
  },
  "projects": {
    "content": {"project_names": ["project_titles"], "descriptions": ["project_details"]},
    "quality_score": [15-100 based on technical depth and dates],
    "suggestions": "specific advice about adding dates, technologies used, or project outcomes"
  },
  "skills": {
    "content": {
      "original_format": "skills exactly as written in the resume, preserving original structure and formatting",
      "is_properly_categorized": "boolean - true if skills are already organized into technical/hard/soft categories",
      "technical_skills": {
        "programming_languages": ["only if already categorized in resume, otherwise empty"],
        "frameworks_libraries": ["only if already categorized in resume, otherwise empty"],
        "databases": ["only if already categorized in resume, otherwise empty"],
        "tools_software": ["only if already categorized in resume, otherwise empty"],
        "operating_systems": ["only if already categorized in resume, otherwise empty"]
      },
      "hard_skills": {
        "domain_specific": ["only if already categorized in resume, otherwise empty"],
        "certifications": ["only if already categorized in resume, otherwise empty"],
        "methodologies": ["only if already categorized in resume, otherwise empty"],
        "quantifiable_skills": ["only if already categorized in resume, otherwise empty"]
      },
      "soft_skills": {
        "communication": ["only if already categorized in resume, otherwise empty"],
        "leadership": ["only if already categorized in resume, otherwise empty"],
        "problem_solving": ["only if already categorized in resume, otherwise empty"],
        "interpersonal": ["only if already categorized in resume, otherwise empty"],
        "adaptability": ["only if already categorized in resume, otherwise empty"]
      },
      "languages": ["spoken languages mentioned in resume"]
    },
    "quality_score": [15-100 based on relevance, organization, and skill depth],
    "suggestions": "if is_properly_categorized is false, suggest organizing skills into technical/hard/soft categories. Otherwise provide suggestions for missing relevant skills or better organization"
  },
  "certifications": {
    "content": {"certification_names": ["cert_names"], "issuing_organizations": ["cert_providers"], "dates": ["cert_dates"]},
    "quality_score": [15-100 based on relevance and completeness],
    "suggestions": "specific advice about adding relevant certifications, dates, or certification providers"
  },
  "extracurriculars": {
    "content": {"activities": ["activity_names"], "roles": ["leadership_positions"], "durations": ["time_periods"]},
    "quality_score": [15-100 based on leadership and relevance],
    "suggestions": "specific advice about highlighting leadership, adding dates, or describing impact"
  },
  "links_found": {
    "linkedin_present": false,
    "github_present": false,
    "portfolio_website_present": false,
    "other_links_present": false,
    "all_links_list": [],
    "link_suggestions": "Include relevant professional links."
  },
  "formatting_issues": {
    "has_headshot": false,
    "headshot_suggestion": "Remove headshot if present.",
    "other_formatting_issues": "No suggestions."
  },
  "overall_score": [0-100 based on weighted average of all section scores],
  "overall_suggestions": "Comprehensive suggestions based on all section analysis"
}`
