package domain

// ============================================================
// Health & Operational API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual upstream, derived
// from its circuit breaker.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Breaker     string `json:"breaker,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// BrandPreview is returned by GET /v1/brand.
type BrandPreview struct {
	MIMEType    string `json:"mime_type"`
	Source      string `json:"source"`
	Placeholder bool   `json:"placeholder"`
	DataURI     string `json:"data_uri"`
}
