package service

import "github.com/prime-insurance/claims-portal-bfa/internal/domain"

// ComposeQuery turns the filter bar into the query for GET /reports/{selector}.
// Keys keep a fixed order and "all"/empty values are dropped, so the same
// filters always produce the same string. The selector travels in the path.
func ComposeQuery(f domain.FilterState, _ domain.ReportSelector) domain.Query {
	var q domain.Query
	add := func(key, value string) {
		if value == "" || value == domain.FilterAll {
			return
		}
		q = append(q, domain.QueryParam{Key: key, Value: value})
	}
	add("date_from", f.DateFrom)
	add("date_to", f.DateTo)
	add("insurance_type", f.InsuranceType)
	add("status", f.Status)
	return q
}

// ComposeExportQuery is ComposeQuery prefixed with report_type for GET /reports/export.
func ComposeExportQuery(f domain.FilterState, selector domain.ReportSelector) domain.Query {
	q := domain.Query{{Key: "report_type", Value: string(selector)}}
	return append(q, ComposeQuery(f, selector)...)
}
