package rules

import (
	"regexp"

	"resumeanalyzer/models"
)

const maxEducationContext = 200

type educationLevel struct {
	name    string
	pattern *regexp.Regexp
	stop    *regexp.Regexp
}

// Degree abbreviations are matched case-sensitively so that words such as
// "be" or "ma" in prose do not count.
var educationLevels = []educationLevel{
	{
		name:    "class_10",
		pattern: regexp.MustCompile(`(?i)\b(?:Class 10|10th Class|Class X|SSC|Secondary School Certificate|Matriculation|High School|Secondary Education)\b`),
		stop:    regexp.MustCompile(`(?i)\b(?:Class 12|HSC|Diploma|Degree)\b`),
	},
	{
		name:    "class_12",
		pattern: regexp.MustCompile(`(?i)\b(?:Class 12|12th Class|Class XII|HSC|Higher Secondary Certificate|Intermediate|Senior Secondary|Higher Secondary)\b`),
		stop:    regexp.MustCompile(`(?i)\b(?:Degree|Diploma|College|University)\b`),
	},
	{
		name:    "diploma",
		pattern: regexp.MustCompile(`(?i)\b(?:Diploma|Polytechnic)\b`),
		stop:    regexp.MustCompile(`(?i:\b(?:Degree|Bachelor))|\bB\.?(?:Tech|E)\b`),
	},
	{
		name:    "bachelor",
		pattern: regexp.MustCompile(`(?i:\b(?:Bachelor|Undergraduate|UG Degree))|\bB\.?(?:Tech|E|Com|Sc|S|A)\b`),
		stop:    regexp.MustCompile(`(?i:\bMaster)|\bM\.?(?:Tech|S)\b|\bMBA\b`),
	},
	{
		name:    "master",
		pattern: regexp.MustCompile(`(?i:\b(?:Master|Postgraduate|PG Degree))|\bM\.?(?:Tech|S|Com|Sc|A)\b|\bMBA\b`),
		stop:    regexp.MustCompile(`(?i)\b(?:Ph\.?\s?D|Doctorate)\b`),
	},
	{
		name:    "phd",
		pattern: regexp.MustCompile(`(?i)\b(?:Ph\.?\s?D|Doctorate|Doctoral)\b`),
		stop:    regexp.MustCompile(`(?i)\b(?:Experience|Skills)\b`),
	},
}

// DetectEducationLevels flags each education level mentioned in the text
// and records a context for its first mention.
func DetectEducationLevels(text string) models.EducationAnalysis {
	result := models.EducationAnalysis{EducationContexts: []models.EducationContext{}}

	for _, level := range educationLevels {
		m := level.pattern.FindStringIndex(text)
		if m == nil {
			continue
		}

		switch level.name {
		case "class_10":
			result.Class10Present = true
		case "class_12":
			result.Class12Present = true
		case "diploma":
			result.DiplomaPresent = true
		case "bachelor":
			result.BachelorPresent = true
		case "master":
			result.MasterPresent = true
		case "phd":
			result.PhDPresent = true
		}

		end := len(text)
		if stop := level.stop.FindStringIndex(text[m[1]:]); stop != nil {
			end = m[1] + stop[0]
		}
		result.EducationContexts = append(result.EducationContexts, models.EducationContext{
			Level:   level.name,
			Context: truncateRunes(flatten(text[m[0]:end]), maxEducationContext),
		})
	}
	return result
}
