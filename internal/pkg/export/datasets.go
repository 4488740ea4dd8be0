package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dataset names.
const (
	Students      = "students"
	Mentors       = "mentors"
	Organizations = "organizations"
	Donations     = "donations"
	Waitlist      = "waitlist"
	Analytics     = "analytics"
)

// datasetOrder is the order used in error messages.
var datasetOrder = []string{Students, Mentors, Organizations, Donations, Waitlist, Analytics}

var datasets = map[string][]Column{
	Students: {
		{Key: "displayName", Header: "Name"},
		{Key: "email", Header: "Email"},
		{Key: "school", Header: "School"},
		{Key: "gradeLevel", Header: "Grade Level"},
		{Key: "program", Header: "Program"},
		{Key: "createdAt", Header: "Enrollment Date", Format: FormatDate},
		{Key: "status", Header: "Status"},
	},
	Mentors: {
		{Key: "displayName", Header: "Name"},
		{Key: "email", Header: "Email"},
		{Key: "organization", Header: "Organization"},
		{Key: "expertise", Header: "Expertise"},
		{Key: "createdAt", Header: "Join Date", Format: FormatDate},
		{Key: "status", Header: "Status"},
	},
	Organizations: {
		{Key: "name", Header: "Organization Name"},
		{Key: "type", Header: "Type"},
		{Key: "city", Header: "City"},
		{Key: "state", Header: "State"},
		{Key: "country", Header: "Country"},
		{Key: "contactEmail", Header: "Contact Email"},
		{Key: "createdAt", Header: "Join Date", Format: FormatDate},
		{Key: "status", Header: "Status"},
	},
	Donations: {
		{Key: "donorName", Header: "Donor Name"},
		{Key: "email", Header: "Email"},
		{Key: "amount", Header: "Amount", Format: FormatCurrency},
		{Key: "type", Header: "Type"},
		{Key: "sponsorTier", Header: "Sponsor Tier"},
		{Key: "createdAt", Header: "Date", Format: FormatDate},
		{Key: "status", Header: "Status"},
	},
	Waitlist: {
		{Key: "email", Header: "Email"},
		{Key: "name", Header: "Name"},
		{Key: "role", Header: "Role/Interest"},
		{Key: "organization", Header: "Organization"},
		{Key: "createdAt", Header: "Signup Date", Format: FormatDate},
		{Key: "source", Header: "Source"},
	},
	Analytics: {
		{Key: "createdAt", Header: "Date", Format: FormatDate},
		{Key: "metrics.totalStudents", Header: "Total Students", Format: FormatCount},
		{Key: "metrics.activeStudents", Header: "Active Students", Format: FormatCount},
		{Key: "metrics.totalMentors", Header: "Total Mentors", Format: FormatCount},
		{Key: "metrics.totalOrganizations", Header: "Organizations", Format: FormatCount},
		{Key: "metrics.livesImpacted", Header: "Lives Impacted", Format: FormatCount},
		{Key: "metrics.progressToGoal", Header: "Progress to Goal", Format: FormatPercent},
	},
}

// Columns returns the column set of a dataset.
func Columns(dataset string) ([]Column, bool) {
	cols, ok := datasets[dataset]
	if !ok {
		return nil, false
	}
	out := make([]Column, len(cols))
	copy(out, cols)
	return out, true
}

// SupportedDatasets lists dataset names, comma separated.
func SupportedDatasets() string {
	return strings.Join(datasetOrder, ", ")
}

// Title renders "Students Export" for students.
func Title(dataset string) string {
	if dataset == "" {
		return "Export"
	}
	return strings.ToUpper(dataset[:1]) + dataset[1:] + " Export"
}

// FormatDate renders dates as M/D/YYYY. Zero and unparsable values are empty.
func FormatDate(v interface{}) string {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case *time.Time:
		if d == nil {
			return ""
		}
		t = *d
	case string:
		parsed, err := time.Parse(time.RFC3339, d)
		if err != nil {
			return ""
		}
		t = parsed
	case int64:
		if d == 0 {
			return ""
		}
		t = time.UnixMilli(d)
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("1/2/2006")
}

// FormatCurrency renders an amount in cents as dollars.
func FormatCurrency(v interface{}) string {
	amount, ok := toFloat(v)
	if !ok || amount == 0 {
		return "$0.00"
	}
	return fmt.Sprintf("$%.2f", amount/100)
}

// FormatCount renders a count, defaulting to 0.
func FormatCount(v interface{}) string {
	n, ok := toFloat(v)
	if !ok {
		return "0"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(v interface{}) string {
	n, _ := toFloat(v)
	return fmt.Sprintf("%.2f%%", n)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
