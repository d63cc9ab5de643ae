package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"mime"
	"strings"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"
	"github.com/prime-insurance/claims-portal-bfa/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var brandTracer = otel.Tracer("service/brand")

// brandStep is one stage of the fallback chain.
type brandStep struct {
	source string
	run    func(ctx context.Context) (domain.BrandAsset, error)
}

// BrandAssetResolver tries the bundled logo, then the public one, then draws a
// placeholder. Results are never cached: every export resolves afresh.
type BrandAssetResolver struct {
	steps       []brandStep
	placeholder domain.BrandAsset
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewBrandAssetResolver builds the chain. Empty paths skip their step.
func NewBrandAssetResolver(
	assets port.AssetFetcher,
	bundledPath, publicPath string,
	company domain.CompanyIdentity,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BrandAssetResolver {
	r := &BrandAssetResolver{
		placeholder: PlaceholderBrand(company),
		metrics:     metrics,
		logger:      logger,
	}
	if assets != nil && bundledPath != "" {
		r.steps = append(r.steps, fetchStep(assets, domain.BrandSourceBundled, bundledPath))
	}
	if assets != nil && publicPath != "" {
		r.steps = append(r.steps, fetchStep(assets, domain.BrandSourcePublic, publicPath))
	}
	return r
}

func fetchStep(assets port.AssetFetcher, source, path string) brandStep {
	return brandStep{
		source: source,
		run: func(ctx context.Context) (domain.BrandAsset, error) {
			body, contentType, err := assets.FetchAsset(ctx, path)
			if err != nil {
				return domain.BrandAsset{}, err
			}
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || !strings.HasPrefix(mediaType, "image/") {
				return domain.BrandAsset{}, fmt.Errorf("%s: content type %q is not an image", path, contentType)
			}
			if len(body) == 0 {
				return domain.BrandAsset{}, fmt.Errorf("%s: empty body", path)
			}
			return domain.BrandAsset{MIMEType: mediaType, Data: body, Source: source}, nil
		},
	}
}

// Resolve always returns a valid asset. Failed steps are logged and counted, never returned.
func (r *BrandAssetResolver) Resolve(ctx context.Context) domain.BrandAsset {
	ctx, span := brandTracer.Start(ctx, "BrandAssetResolver.Resolve")
	defer span.End()

	for _, step := range r.steps {
		asset, err := step.run(ctx)
		if err == nil && asset.Valid() {
			span.SetAttributes(attribute.String("brand.source", step.source))
			r.metrics.IncrBrandResolved(step.source)
			return asset
		}
		if err == nil {
			err = errors.New("invalid asset")
		}
		r.metrics.IncrBrandMiss(step.source)
		r.logger.Debug("brand asset step failed",
			zap.String("source", step.source),
			zap.Error(err),
		)
	}

	span.SetAttributes(attribute.String("brand.source", domain.BrandSourcePlaceholder))
	r.metrics.IncrBrandResolved(domain.BrandSourcePlaceholder)
	return r.placeholder
}

// PlaceholderBrand draws the fallback logo: a gradient rectangle, a two-line
// wordmark and two circles. Output is byte-identical for the same company.
func PlaceholderBrand(company domain.CompanyIdentity) domain.BrandAsset {
	top, bottom := company.Wordmark()
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="240" height="80" viewBox="0 0 240 80">`+
		`<defs><linearGradient id="g" x1="0" y1="0" x2="1" y2="0">`+
		`<stop offset="0" stop-color="#003366"/><stop offset="1" stop-color="#0099cc"/>`+
		`</linearGradient></defs>`+
		`<rect width="240" height="80" rx="8" fill="url(#g)"/>`+
		`<circle cx="34" cy="40" r="18" fill="#ffffff" fill-opacity="0.85"/>`+
		`<circle cx="50" cy="40" r="12" fill="#ffcc00" fill-opacity="0.9"/>`+
		`<text x="78" y="36" font-family="Helvetica,Arial,sans-serif" font-size="22" font-weight="bold" fill="#ffffff">%s</text>`+
		`<text x="78" y="58" font-family="Helvetica,Arial,sans-serif" font-size="13" letter-spacing="3" fill="#e6f2ff">%s</text>`+
		`</svg>`,
		html.EscapeString(top), html.EscapeString(bottom))

	return domain.BrandAsset{
		MIMEType:    "image/svg+xml",
		Data:        []byte(svg),
		Source:      domain.BrandSourcePlaceholder,
		Placeholder: true,
	}
}
