// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
)

// ReportFetcher retrieves raw report bodies from the analytics API.
// The body is returned undecoded; shape validation belongs to the caller.
type ReportFetcher interface {
	FetchReport(ctx context.Context, selector domain.ReportSelector, query domain.Query) ([]byte, error)
}

// CSVExporter requests the server-side CSV export of a report.
type CSVExporter interface {
	ExportCSV(ctx context.Context, query domain.Query) ([]byte, error)
}

// AssetFetcher performs a same-origin static fetch and returns body and content type.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, path string) (body []byte, contentType string, err error)
}

// BrandResolver always produces an embeddable brand image.
type BrandResolver interface {
	Resolve(ctx context.Context) domain.BrandAsset
}

// DocumentEngine lays out a document tree into a file. Load is lazy and one-time.
type DocumentEngine interface {
	Load() error
	Render(ctx context.Context, tree domain.DocumentTree) ([]byte, error)
}

// PrintFallback produces a printable view of a document when the engine is unavailable.
type PrintFallback interface {
	PrintView(tree domain.DocumentTree) ([]byte, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
