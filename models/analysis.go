package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Section names used by the AI analysis JSON.
const (
	SectionBasicInfo           = "basic_info"
	SectionProfessionalSummary = "professional_summary"
	SectionEducation           = "education"
	SectionWorkExperience      = "work_experience"
	SectionProjects            = "projects"
	SectionSkills              = "skills"
	SectionCertifications      = "certifications"
	SectionExtracurriculars    = "extracurriculars"
	SectionLinksFound          = "links_found"
	SectionFormattingIssues    = "formatting_issues"
)

// ScoredSections lists the sections that carry a quality score, in report order.
var ScoredSections = []string{
	SectionBasicInfo,
	SectionProfessionalSummary,
	SectionEducation,
	SectionWorkExperience,
	SectionProjects,
	SectionSkills,
	SectionCertifications,
	SectionExtracurriculars,
}

const NoSuggestions = "No suggestions."

// Score is a 0..100 integer that tolerates floats and numeric strings in
// model output. Anything else decodes as 0.
type Score int

func (s *Score) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*s = ClampScore(int(math.Round(x)))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			*s = 0
			return nil
		}
		*s = ClampScore(int(math.Round(f)))
	default:
		*s = 0
	}
	return nil
}

// ClampScore bounds n to 0..100.
func ClampScore(n int) Score {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return Score(n)
}

// FlexString accepts a JSON string, a list of strings (joined by spaces) or null.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = FlexString(x)
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, fmt.Sprint(item))
		}
		*f = FlexString(strings.Join(parts, " "))
	default:
		*f = FlexString(fmt.Sprint(x))
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// SectionAnalysis is one scored resume section.
type SectionAnalysis struct {
	Content      map[string]interface{} `json:"content"`
	QualityScore Score                  `json:"quality_score"`
	Suggestions  FlexString             `json:"suggestions"`
}

// Text returns a string content field, or "" when missing or not a string.
func (s *SectionAnalysis) Text(key string) string {
	if v, ok := s.Content[key].(string); ok {
		return v
	}
	return ""
}

// ItemCount counts the items under a content key. Lists count their
// elements; maps of lists (categorised skills) count across categories.
// ok is false when the key holds neither.
func (s *SectionAnalysis) ItemCount(key string) (n int, ok bool) {
	switch v := s.Content[key].(type) {
	case []interface{}:
		return len(v), true
	case []string:
		return len(v), true
	case map[string]interface{}:
		for _, inner := range v {
			if list, isList := inner.([]interface{}); isList {
				n += len(list)
			}
		}
		return n, true
	}
	return 0, false
}

// Strings flattens a content field into strings. Strings are split on commas.
func (s *SectionAnalysis) Strings(key string) []string {
	return flattenStrings(s.Content[key])
}

func flattenStrings(v interface{}) []string {
	var out []string
	switch x := v.(type) {
	case string:
		for _, part := range strings.Split(x, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	case []interface{}:
		for _, item := range x {
			out = append(out, flattenStrings(item)...)
		}
	case []string:
		for _, item := range x {
			out = append(out, flattenStrings(item)...)
		}
	case map[string]interface{}:
		for _, k := range sortedKeys(x) {
			out = append(out, flattenStrings(x[k])...)
		}
	}
	return out
}

// LinksFound is the model's own view of links in the resume.
type LinksFound struct {
	LinkedInPresent         bool       `json:"linkedin_present"`
	GitHubPresent           bool       `json:"github_present"`
	PortfolioWebsitePresent bool       `json:"portfolio_website_present"`
	OtherLinksPresent       bool       `json:"other_links_present"`
	AllLinksList            []string   `json:"all_links_list"`
	LinkSuggestions         FlexString `json:"link_suggestions"`
}

type FormattingIssues struct {
	HasHeadshot           bool       `json:"has_headshot"`
	HeadshotSuggestion    FlexString `json:"headshot_suggestion"`
	OtherFormattingIssues FlexString `json:"other_formatting_issues"`
}

// AIAnalysis is the reconciled, section-by-section analysis.
type AIAnalysis struct {
	BasicInfo              SectionAnalysis  `json:"basic_info"`
	ProfessionalSummary    SectionAnalysis  `json:"professional_summary"`
	Education              SectionAnalysis  `json:"education"`
	WorkExperience         SectionAnalysis  `json:"work_experience"`
	Projects               SectionAnalysis  `json:"projects"`
	Skills                 SectionAnalysis  `json:"skills"`
	Certifications         SectionAnalysis  `json:"certifications"`
	Extracurriculars       SectionAnalysis  `json:"extracurriculars"`
	LinksFound             LinksFound       `json:"links_found"`
	FormattingIssues       FormattingIssues `json:"formatting_issues"`
	OverallScore           Score            `json:"overall_score"`
	OverallSuggestions     FlexString       `json:"overall_suggestions"`
	EnforcementCorrections []string         `json:"_enforcement_corrections,omitempty"`
}

// Section returns the scored section with the given name, or nil.
func (a *AIAnalysis) Section(name string) *SectionAnalysis {
	switch name {
	case SectionBasicInfo:
		return &a.BasicInfo
	case SectionProfessionalSummary:
		return &a.ProfessionalSummary
	case SectionEducation:
		return &a.Education
	case SectionWorkExperience:
		return &a.WorkExperience
	case SectionProjects:
		return &a.Projects
	case SectionSkills:
		return &a.Skills
	case SectionCertifications:
		return &a.Certifications
	case SectionExtracurriculars:
		return &a.Extracurriculars
	}
	return nil
}

// ApplyDefaults fills the placeholder texts the model is allowed to omit.
func (a *AIAnalysis) ApplyDefaults() {
	for _, name := range ScoredSections {
		if s := a.Section(name); s.Content == nil {
			s.Content = map[string]interface{}{}
		}
	}
	if strings.TrimSpace(string(a.LinksFound.LinkSuggestions)) == "" {
		a.LinksFound.LinkSuggestions = "Include relevant professional links."
	}
	if a.LinksFound.AllLinksList == nil {
		a.LinksFound.AllLinksList = []string{}
	}
	if strings.TrimSpace(string(a.FormattingIssues.HeadshotSuggestion)) == "" {
		a.FormattingIssues.HeadshotSuggestion = "Remove headshot if present."
	}
	if strings.TrimSpace(string(a.FormattingIssues.OtherFormattingIssues)) == "" {
		a.FormattingIssues.OtherFormattingIssues = NoSuggestions
	}
}

// Clone returns a deep copy so cached analyses are never mutated in place.
func (a *AIAnalysis) Clone() *AIAnalysis {
	if a == nil {
		return nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		cp := *a
		return &cp
	}
	var out AIAnalysis
	if err := json.Unmarshal(b, &out); err != nil {
		cp := *a
		return &cp
	}
	return &out
}
