package validators

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	MaxPriorities    = 5
	MaxJobNameLength = 100
)

// ValidPriorities is the set of recruiter priorities the analyzer understands.
var ValidPriorities = map[string]bool{
	"Technical Skills":           true,
	"Project Experience":         true,
	"Academic Performance":       true,
	"Work Experience":            true,
	"GitHub Profile":             true,
	"LinkedIn Profile":           true,
	"Certifications":             true,
	"Resume Formatting":          true,
	"Extracurricular Activities": true,
	"Communication Skills":       true,
	"Content Quality":            true,
	"Skill Diversity":            true,
}

var jobNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.]+$`)

// PriorityNames returns the valid priorities sorted by name.
func PriorityNames() []string {
	names := make([]string, 0, len(ValidPriorities))
	for name := range ValidPriorities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidatePriorities parses a comma-separated priority list. Blank input
// yields nil.
func ValidatePriorities(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	cleaned, err := ValidateText(raw, "priorities")
	if err != nil {
		return nil, err
	}

	var priorities []string
	for _, part := range strings.Split(cleaned, ",") {
		if p := strings.TrimSpace(part); p != "" {
			priorities = append(priorities, p)
		}
	}
	if len(priorities) > MaxPriorities {
		return nil, badRequest(fmt.Sprintf("Too many priorities (max %d)", MaxPriorities))
	}

	var invalid []string
	for _, p := range priorities {
		if !ValidPriorities[p] {
			invalid = append(invalid, p)
		}
	}
	if len(invalid) > 0 {
		return nil, badRequest(fmt.Sprintf("Invalid priorities: %s. Valid options: %s",
			strings.Join(invalid, ", "), strings.Join(PriorityNames(), ", ")))
	}
	return priorities, nil
}

// ValidateJobName trims and checks an optional bulk job name.
func ValidateJobName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", nil
	}
	if len(name) > MaxJobNameLength {
		return "", badRequest(fmt.Sprintf("Job name too long (max %d characters)", MaxJobNameLength))
	}
	if !jobNamePattern.MatchString(name) {
		return "", badRequest("Job name contains invalid characters. Only letters, numbers, spaces, hyphens, underscores, and dots allowed")
	}
	return whitespacePattern.ReplaceAllString(name, " "), nil
}
