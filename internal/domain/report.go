package domain

import (
	"time"
)

// ============================================================
// Report selectors
// ============================================================

// ReportSelector identifies one of the analytics reports the dashboard can display.
type ReportSelector string

const (
	ReportOverview         ReportSelector = "overview"
	ReportClaimsByType     ReportSelector = "claims-by-type"
	ReportFraudAnalysis    ReportSelector = "fraud-analysis"
	ReportFinancial        ReportSelector = "financial"
	ReportPerformance      ReportSelector = "performance"
	ReportCustomerAnalysis ReportSelector = "customer-analysis"
)

// ReportSelectors lists every known report in dashboard order.
var ReportSelectors = []ReportSelector{
	ReportOverview,
	ReportClaimsByType,
	ReportFraudAnalysis,
	ReportFinancial,
	ReportPerformance,
	ReportCustomerAnalysis,
}

var reportTitles = map[ReportSelector]string{
	ReportOverview:         "Overview Report",
	ReportClaimsByType:     "Claims By Type Report",
	ReportFraudAnalysis:    "Fraud Analysis Report",
	ReportFinancial:        "Financial Report",
	ReportPerformance:      "Performance Report",
	ReportCustomerAnalysis: "Customer Analysis Report",
}

// Valid reports whether s is one of the known selectors.
func (s ReportSelector) Valid() bool {
	_, ok := reportTitles[s]
	return ok
}

// Title returns the display title. Unknown selectors get a generic title.
func (s ReportSelector) Title() string {
	if t, ok := reportTitles[s]; ok {
		return t
	}
	return "Analytics Report"
}

// ReportInfo describes a selectable report for GET /v1/reports.
type ReportInfo struct {
	ID    ReportSelector `json:"id"`
	Title string         `json:"title"`
}

// ============================================================
// Filters
// ============================================================

// FilterAll is the sentinel meaning "no filter" for enum filters.
const FilterAll = "all"

// DateLayout is the wire format for filter dates.
const DateLayout = "2006-01-02"

var insuranceTypes = map[string]bool{
	FilterAll: true, "motor": true, "health": true, "home": true, "travel": true, "life": true,
}

var claimStatuses = map[string]bool{
	FilterAll: true, "pending": true, "approved": true, "rejected": true, "under_review": true,
}

// FilterState is the dashboard filter bar.
type FilterState struct {
	DateFrom      string `json:"date_from"`
	DateTo        string `json:"date_to"`
	InsuranceType string `json:"insurance_type"`
	Status        string `json:"status"`
}

// DefaultFilters returns the filter bar as first shown to the user.
func DefaultFilters() FilterState {
	return FilterState{InsuranceType: FilterAll, Status: FilterAll}
}

// Normalize fills empty enum filters with the "all" sentinel.
func (f FilterState) Normalize() FilterState {
	if f.InsuranceType == "" {
		f.InsuranceType = FilterAll
	}
	if f.Status == "" {
		f.Status = FilterAll
	}
	return f
}

// Validate checks enum membership and date formats.
func (f FilterState) Validate() error {
	n := f.Normalize()
	if !insuranceTypes[n.InsuranceType] {
		return &ErrValidation{Field: "insurance_type", Message: "unknown insurance type " + n.InsuranceType}
	}
	if !claimStatuses[n.Status] {
		return &ErrValidation{Field: "status", Message: "unknown status " + n.Status}
	}
	from, err := parseFilterDate("date_from", f.DateFrom)
	if err != nil {
		return err
	}
	to, err := parseFilterDate("date_to", f.DateTo)
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return &ErrValidation{Field: "date_to", Message: "must not be before date_from"}
	}
	return nil
}

func parseFilterDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, &ErrValidation{Field: field, Message: "expected YYYY-MM-DD"}
	}
	return t, nil
}

// HasDateRange reports whether either bound of the date range is set.
func (f FilterState) HasDateRange() bool {
	return f.DateFrom != "" || f.DateTo != ""
}
