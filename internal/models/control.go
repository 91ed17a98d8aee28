package models

// Severity is the Security Hub severity rating of a control.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// NotAvailable is written wherever the catalog omits an optional value.
const NotAvailable = "N/A"

// Standard is a compliance framework published in the Security Hub catalog.
type Standard struct {
	ARN              string `json:"arn"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	EnabledByDefault bool   `json:"enabled_by_default"`
}

// ControlSummary is the list-level view of a control returned by the
// paginated catalog enumerations.
type ControlSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ControlDetail is the authoritative definition of a single control as
// returned by GetSecurityControlDefinition. Immutable once fetched.
type ControlDetail struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Severity           Severity              `json:"severity"`
	RegionAvailability string                `json:"region_availability"`
	RemediationURL     string                `json:"remediation_url,omitempty"`
	Parameters         []ParameterDefinition `json:"parameters,omitempty"`
}

// ParameterDefinition describes one customizable control parameter.
type ParameterDefinition struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Options     []ParameterOption `json:"options,omitempty"`
}

// ParameterOption is one configuration type of a parameter. Values the
// catalog does not provide hold NotAvailable.
type ParameterOption struct {
	Type    string `json:"type"`
	Default string `json:"default"`
	Min     string `json:"min"`
	Max     string `json:"max"`
}

// CrawlFields are the five values scraped from a control's documentation
// section. Every field is optional.
type CrawlFields struct {
	Category     string `json:"category,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	ConfigRule   string `json:"config_rule,omitempty"`
	ScheduleType string `json:"schedule_type,omitempty"`
	Remediation  string `json:"remediation,omitempty"`
}

// Empty reports whether no field was extracted.
func (f CrawlFields) Empty() bool {
	return f == CrawlFields{}
}

// ControlRecord is the unit of output: one flat row per control.
//
// It is created by the detail stage, its CrawlURL and Crawl fields are filled
// in place by the crawl stage, and it is read-only after aggregation.
type ControlRecord struct {
	Detail ControlDetail `json:"detail"`

	// ParametersText is the rendered parameter blob.
	ParametersText string `json:"parameters_text"`

	StandardsCount int    `json:"standards_count"`
	StandardsList  string `json:"standards_list"`

	// ImplementedIn has exactly one entry per known standard name.
	ImplementedIn map[string]bool `json:"implemented_in"`

	CrawlURL string      `json:"crawl_url,omitempty"`
	Crawl    CrawlFields `json:"crawl"`
}

// ID returns the control identifier of the record.
func (r *ControlRecord) ID() string {
	return r.Detail.ID
}

// CrawlTask binds one documentation URL to the arena slot of the record it
// populates.
type CrawlTask struct {
	Slot      int
	ControlID string
	URL       string
}
