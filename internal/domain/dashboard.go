package domain

import "time"

// FetchStatus is the state of the report fetch controller.
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusLoading FetchStatus = "loading"
	StatusReady   FetchStatus = "ready"
	StatusFailed  FetchStatus = "failed"
)

// DashboardSnapshot is what the browser renders for one dashboard session.
type DashboardSnapshot struct {
	SessionID string             `json:"session_id,omitempty"`
	Report    ReportSelector     `json:"report"`
	Title     string             `json:"title"`
	Filters   FilterState        `json:"filters"`
	Status    FetchStatus        `json:"status"`
	Payload   ReportPayload      `json:"payload,omitempty"`
	Tables    []TableDescription `json:"tables"`
	NoData    bool               `json:"no_data"`
	Error     string             `json:"error,omitempty"`
	Retryable bool               `json:"retryable"`
	FetchedAt *time.Time         `json:"fetched_at,omitempty"`
}

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportResult is a file ready to be downloaded.
type ExportResult struct {
	Filename       string
	ContentType    string
	Body           []byte
	Fallback       bool
	FallbackReason string
}

// ExportStats is a read-back of export counters for GET /v1/metrics/exports.
type ExportStats struct {
	CSVSuccess       int64   `json:"csv_success"`
	CSVFailure       int64   `json:"csv_failure"`
	PDFSuccess       int64   `json:"pdf_success"`
	PDFPrintFallback int64   `json:"pdf_print_fallback"`
	BrandPlaceholder int64   `json:"brand_placeholder"`
	FallbackRate     float64 `json:"fallback_rate"`
}
