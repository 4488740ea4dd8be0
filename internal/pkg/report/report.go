package report

import (
	"strings"
	"time"
)

// Report types.
const (
	TypeExecutive  = "executive"
	TypeFlightPlan = "flightplan"
	TypeDonor      = "donor"
	TypeAnalytics  = "analytics"
	TypeCustom     = "custom"
)

// Section kinds.
const (
	KindText        = "text"
	KindMetric      = "metric"
	KindTable       = "table"
	KindPlaceholder = "chart-placeholder"
)

type Metric struct {
	Label      string
	Value      interface{}
	Format     string
	Trend      string
	TrendValue string
}

type Table struct {
	Headers []string
	Rows    [][]string
}

type Section struct {
	Key     string
	Title   string
	Kind    string
	Text    string
	Metrics []Metric
	Table   *Table
}

type Report struct {
	Type        string
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Sections    []Section
	Footer      string
}

// Options select optional content. Nil flags mean the default (included).
type Options struct {
	IncludeCharts  *bool
	IncludeTables  *bool
	CustomSections []string
}

type typeInfo struct {
	Label       string
	Description string
}

var typeConfig = map[string]typeInfo{
	TypeExecutive:  {"Executive Summary", "High-level overview of key metrics and KPIs"},
	TypeFlightPlan: {"Flight Plan 2030", "Progress toward the 1 million lives goal"},
	TypeDonor:      {"Donor Impact", "Donation activity and impact metrics"},
	TypeAnalytics:  {"Full Analytics", "Comprehensive analytics snapshot"},
	TypeCustom:     {"Custom Report", "Customized report with selected sections"},
}

// Label returns the display label of a report type.
func Label(reportType string) string {
	if info, ok := typeConfig[reportType]; ok {
		return info.Label
	}
	return reportType
}

func Description(reportType string) string {
	return typeConfig[reportType].Description
}

// ValidType reports whether reportType names a known report.
func ValidType(reportType string) bool {
	_, ok := typeConfig[reportType]
	return ok
}

// NormalizeType maps empty and unknown types to executive.
func NormalizeType(reportType string) string {
	t := strings.ToLower(strings.TrimSpace(reportType))
	if !ValidType(t) {
		return TypeExecutive
	}
	return t
}

// Build assembles a report of the given type from d.
func Build(reportType string, d *Data, opts Options, now time.Time) Report {
	all := sections(d)
	r := Report{Type: NormalizeType(reportType), GeneratedAt: now}

	var keys []string
	switch r.Type {
	case TypeFlightPlan:
		r.Title = "Flight Plan 2030 Report"
		r.Subtitle = "Progress Toward Impacting One Million Lives"
		keys = []string{"overall-progress", "milestones"}
	case TypeDonor:
		r.Title = "Donor Impact Report"
		r.Subtitle = "Thank You for Your Support"
		keys = []string{"your-impact", "funding"}
	case TypeAnalytics:
		r.Title = "Full Analytics Report"
		r.Subtitle = "Comprehensive Network Analytics Snapshot"
		keys = []string{"key-metrics", "flightplan-progress", "program-performance", "overall-progress", "milestones", "funding", "growth-chart"}
	case TypeCustom:
		r.Title = "Custom Report"
		r.Subtitle = "Hidden Treasures Network"
		keys = opts.CustomSections
		if len(keys) == 0 {
			keys = []string{"key-metrics"}
		}
	default:
		r.Title = "Executive Summary Report"
		r.Subtitle = "Hidden Treasures Network Performance Overview"
		keys = []string{"key-metrics", "flightplan-progress", "program-performance"}
	}

	for _, key := range keys {
		s, ok := all[key]
		if !ok {
			continue
		}
		if s.Kind == KindTable && opts.IncludeTables != nil && !*opts.IncludeTables {
			continue
		}
		if s.Kind == KindPlaceholder && opts.IncludeCharts != nil && !*opts.IncludeCharts {
			continue
		}
		r.Sections = append(r.Sections, s)
	}
	if opts.IncludeCharts != nil && *opts.IncludeCharts && r.Type != TypeAnalytics && r.Type != TypeCustom {
		r.Sections = append(r.Sections, all["growth-chart"])
	}
	return r
}

// SectionKeys lists the sections a custom report may select.
func SectionKeys() []string {
	return []string{"key-metrics", "flightplan-progress", "program-performance", "overall-progress", "milestones", "your-impact", "funding", "growth-chart"}
}

func sections(d *Data) map[string]Section {
	rows := make([][]string, 0, len(d.Milestones))
	for _, m := range d.Milestones {
		rows = append(rows, []string{
			itoa(int64(m.Year)),
			groupDigits(m.Target),
			groupDigits(m.Actual),
			m.Status,
		})
	}

	return map[string]Section{
		"key-metrics": {Key: "key-metrics", Title: "Key Metrics", Kind: KindMetric, Metrics: []Metric{
			{Label: "Total Students", Value: d.TotalStudents, Format: "number", Trend: d.StudentTrend},
			{Label: "Active Mentors", Value: d.ActiveMentors, Format: "number", Trend: d.MentorTrend},
			{Label: "Partner Organizations", Value: d.TotalOrganizations, Format: "number"},
			{Label: "Lives Impacted", Value: d.LivesImpacted, Format: "number", Trend: "up"},
		}},
		"flightplan-progress": {Key: "flightplan-progress", Title: "Flight Plan 2030 Progress", Kind: KindMetric, Metrics: []Metric{
			{Label: "Progress to Goal", Value: d.ProgressToGoal, Format: "percent"},
			{Label: "Target: 1 Million Lives", Value: "1,000,000", Format: "number"},
		}},
		"program-performance": {Key: "program-performance", Title: "Program Performance", Kind: KindMetric, Metrics: []Metric{
			{Label: "Total Programs", Value: d.TotalPrograms, Format: "number"},
			{Label: "Completion Rate", Value: d.CompletionRate, Format: "percent"},
			{Label: "Enrollments", Value: d.ProgramEnrollments, Format: "number"},
		}},
		"overall-progress": {Key: "overall-progress", Title: "Overall Progress", Kind: KindMetric, Metrics: []Metric{
			{Label: "Lives Impacted", Value: d.LivesImpacted, Format: "number"},
			{Label: "Progress", Value: d.ProgressToGoal, Format: "percent"},
			{Label: "Days Remaining", Value: int64(d.DaysRemaining), Format: "number"},
		}},
		"milestones": {Key: "milestones", Title: "Yearly Milestones", Kind: KindTable, Table: &Table{
			Headers: []string{"Year", "Target", "Actual", "Status"},
			Rows:    rows,
		}},
		"your-impact": {Key: "your-impact", Title: "Your Impact", Kind: KindText,
			Text: "Your generous contributions have helped us reach " + groupDigits(d.LivesImpacted) +
				" young people through aviation and STEM education programs.",
		},
		"funding": {Key: "funding", Title: "Funding Overview", Kind: KindMetric, Metrics: []Metric{
			{Label: "Total Raised", Value: d.TotalRaised, Format: "currency"},
			{Label: "Scholarships Awarded", Value: d.ScholarshipsAwarded, Format: "number"},
			{Label: "Programs Funded", Value: d.ProgramsFunded, Format: "number"},
		}},
		"growth-chart": {Key: "growth-chart", Title: "Growth Over Time", Kind: KindPlaceholder},
	}
}
