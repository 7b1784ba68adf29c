package models

// CGPAAnalysis reports grade point averages found in the text.
type CGPAAnalysis struct {
	CGPAPresent  bool     `json:"cgpa_present"`
	CGPAValues   []string `json:"cgpa_values"`
	CGPACount    int      `json:"cgpa_count"`
	CGPAContexts []string `json:"cgpa_contexts"`
	Scale        string   `json:"scale"`
}

type DateContext struct {
	Date    string `json:"date"`
	Context string `json:"context"`
}

type ProjectDatesAnalysis struct {
	DatesPresent            bool          `json:"dates_present"`
	TotalDatesFound         int           `json:"total_dates_found"`
	ProjectsWithDates       int           `json:"projects_with_dates"`
	ProjectsWithDateRanges  int           `json:"projects_with_date_ranges"`
	TotalProjectsIdentified int           `json:"total_projects_identified"`
	ProjectDateCoverage     float64       `json:"project_date_coverage"`
	DateContexts            []DateContext `json:"date_contexts"`
}

type EducationContext struct {
	Level   string `json:"level"`
	Context string `json:"context"`
}

type EducationAnalysis struct {
	Class10Present    bool               `json:"class_10_present"`
	Class12Present    bool               `json:"class_12_present"`
	DiplomaPresent    bool               `json:"diploma_present"`
	BachelorPresent   bool               `json:"bachelor_present"`
	MasterPresent     bool               `json:"master_present"`
	PhDPresent        bool               `json:"phd_present"`
	EducationContexts []EducationContext `json:"education_contexts"`
}

type LinkType string

const (
	LinkLinkedIn  LinkType = "LINKEDIN"
	LinkGitHub    LinkType = "GITHUB"
	LinkPortfolio LinkType = "PORTFOLIO"
	LinkOther     LinkType = "OTHER"
)

// LinkValidationResult is the outcome of one HTTP reachability check.
// IsValid is nil when the link was not (or not fully) checked.
type LinkValidationResult struct {
	URL                 string `json:"url"`
	IsValid             *bool  `json:"is_valid"`
	StatusCode          int    `json:"status_code,omitempty"`
	FinalURL            string `json:"final_url,omitempty"`
	RedirectCount       int    `json:"redirect_count"`
	ResponseTimeMS      int64  `json:"response_time_ms,omitempty"`
	ErrorType           string `json:"error_type,omitempty"`
	ErrorMessage        string `json:"error_message,omitempty"`
	Platform            string `json:"platform,omitempty"`
	SSLWarning          bool   `json:"ssl_warning"`
	ValidationTimestamp string `json:"validation_timestamp,omitempty"`
}

type ExtractedLink struct {
	Type              LinkType              `json:"type"`
	RawText           string                `json:"raw_text"`
	ReconstructedURL  string                `json:"reconstructed_url"`
	Valid             *bool                 `json:"valid"`
	ValidationDetails *LinkValidationResult `json:"validation_details,omitempty"`
}

// Platform returns the platform recorded by validation, if any.
func (l ExtractedLink) Platform() string {
	if l.ValidationDetails == nil {
		return ""
	}
	return l.ValidationDetails.Platform
}

type LinkAnalysis struct {
	LinksFound  []ExtractedLink `json:"links_found"`
	ValidLinks  []ExtractedLink `json:"valid_links"`
	BrokenLinks []ExtractedLink `json:"broken_links"`
}

type SpacingAnalysis struct {
	SpacingScore  float64  `json:"spacing_score"`
	SpacingIssues []string `json:"spacing_issues"`
}

type BulletPointAnalysis struct {
	BulletConsistencyScore float64  `json:"bullet_consistency_score"`
	ConsistencyPercentage  float64  `json:"consistency_percentage"`
	BulletIssues           []string `json:"bullet_issues"`
}

type LineLengthAnalysis struct {
	LineLengthScore  float64  `json:"line_length_score"`
	LineLengthIssues []string `json:"line_length_issues"`
}

type ResumeLengthAnalysis struct {
	LengthScore         float64  `json:"length_score"`
	IsAppropriateLength bool     `json:"is_appropriate_length"`
	EstimatedPages      float64  `json:"estimated_pages"`
	LengthIssues        []string `json:"length_issues"`
}

type ConsistencyAnalysis struct {
	ConsistencyScore  float64  `json:"consistency_score"`
	ConsistencyIssues []string `json:"consistency_issues"`
}

type FormattingAnalysis struct {
	SpacingAnalysis        SpacingAnalysis      `json:"spacing_analysis"`
	BulletPointAnalysis    BulletPointAnalysis  `json:"bullet_point_analysis"`
	LineLengthAnalysis     LineLengthAnalysis   `json:"line_length_analysis"`
	ResumeLengthAnalysis   ResumeLengthAnalysis `json:"resume_length_analysis"`
	ConsistencyAnalysis    ConsistencyAnalysis  `json:"consistency_analysis"`
	OverallFormattingScore float64              `json:"overall_formatting_score"`
}

// Issues returns every formatting issue in component order.
func (f FormattingAnalysis) Issues() []string {
	var out []string
	out = append(out, f.SpacingAnalysis.SpacingIssues...)
	out = append(out, f.BulletPointAnalysis.BulletIssues...)
	out = append(out, f.LineLengthAnalysis.LineLengthIssues...)
	out = append(out, f.ResumeLengthAnalysis.LengthIssues...)
	out = append(out, f.ConsistencyAnalysis.ConsistencyIssues...)
	return out
}

type ContentQualityAnalysis struct {
	Score                    float64  `json:"score"`
	Issues                   []string `json:"issues"`
	ActionVerbCount          int      `json:"action_verb_count"`
	QuantifiableAchievements int      `json:"quantifiable_achievements"`
	BuzzwordCount            int      `json:"buzzword_count"`
}

type CompletenessBreakdown struct {
	CGPAScore           int     `json:"cgpa_score"`
	ProjectDatesScore   int     `json:"project_dates_score"`
	EducationScore      int     `json:"education_score"`
	LinksScore          float64 `json:"links_score"`
	ContentQualityScore float64 `json:"content_quality_score"`
}

// RuleFindings aggregates every rule-based check for one resume.
type RuleFindings struct {
	CGPAAnalysis           CGPAAnalysis           `json:"cgpa_analysis"`
	ProjectDatesAnalysis   ProjectDatesAnalysis   `json:"project_dates_analysis"`
	EducationAnalysis      EducationAnalysis      `json:"education_analysis"`
	LinkValidationAnalysis LinkAnalysis           `json:"link_validation_analysis"`
	FormattingAnalysis     FormattingAnalysis     `json:"formatting_analysis"`
	ContentQualityAnalysis ContentQualityAnalysis `json:"content_quality_analysis"`
	CompletenessScore      float64                `json:"completeness_score"`
	CompletenessBreakdown  CompletenessBreakdown  `json:"completeness_breakdown"`
	PriorityAreas          []string               `json:"priority_areas"`
}
