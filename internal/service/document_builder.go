package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var docTracer = otel.Tracer("service/document")

// NoDataText is the body of a document whose report produced no sections.
const NoDataText = "No data available for this report."

// captionLayout is the timestamp format of table provenance captions and the header panel.
const captionLayout = "02 Jan 2006 15:04"

// DocumentInput is everything the builder needs for one export.
type DocumentInput struct {
	Selector domain.ReportSelector
	Filters  domain.FilterState
	Payload  domain.ReportPayload
	// Brand, when set, skips resolution. The export path resolves it
	// concurrently with the payload fetch.
	Brand *domain.BrandAsset
}

// DocumentBuilder assembles the engine-agnostic document tree of an export.
type DocumentBuilder struct {
	renderers *Renderers
	brand     port.BrandResolver
	company   domain.CompanyIdentity
	generator string
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
}

// BuilderOption customizes a DocumentBuilder.
type BuilderOption func(*DocumentBuilder)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *DocumentBuilder) { b.now = now }
}

// WithReportIDs replaces the uuid report id generator.
func WithReportIDs(newID func() string) BuilderOption {
	return func(b *DocumentBuilder) { b.newID = newID }
}

// NewDocumentBuilder creates a builder. generator names the system in table captions.
func NewDocumentBuilder(
	renderers *Renderers,
	brand port.BrandResolver,
	company domain.CompanyIdentity,
	generator string,
	logger *zap.Logger,
	opts ...BuilderOption,
) *DocumentBuilder {
	b := &DocumentBuilder{
		renderers: renderers,
		brand:     brand,
		company:   company,
		generator: generator,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		logger:    logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Now is the builder's clock, shared with the export file name.
func (b *DocumentBuilder) Now() time.Time { return b.now() }

// Build never fails: a broken header degrades to text and an empty report to a placeholder.
func (b *DocumentBuilder) Build(ctx context.Context, in DocumentInput) domain.DocumentTree {
	ctx, span := docTracer.Start(ctx, "DocumentBuilder.Build")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", string(in.Selector)))

	generatedAt := b.now()
	reportID := b.newID()

	var sections []domain.TableDescription
	if in.Selector.Valid() && in.Payload != nil && in.Payload.Selector() == in.Selector {
		sections = b.renderers.RenderPayload(in.Payload)
	}

	nodes := make([]domain.Node, 0, len(sections)+8)
	nodes = append(nodes,
		b.header(ctx, in.Brand, generatedAt, reportID, len(sections) > 0),
		domain.SeparatorNode{},
		domain.TitleNode{Text: in.Selector.Title()},
	)
	nodes = append(nodes, filterBullets(in.Filters)...)

	if len(sections) == 0 {
		nodes = append(nodes, domain.PlaceholderNode{Text: NoDataText})
	}
	caption := fmt.Sprintf("Generated by %s on %s", b.generator, generatedAt.Format(captionLayout))
	for _, t := range sections {
		nodes = append(nodes, domain.TableNode{Table: t, Caption: caption})
	}

	nodes = append(nodes, domain.FooterNode{
		Text: fmt.Sprintf("%s | Report %s | Confidential", b.company.Name, reportID),
	})

	span.SetAttributes(attribute.Int("document.sections", len(sections)))
	return domain.NewDocumentTree(in.Selector.Title(), domain.Landscape, nodes)
}

// header builds the branded header, or the text-only one if anything goes wrong.
func (b *DocumentBuilder) header(ctx context.Context, preset *domain.BrandAsset, at time.Time, reportID string, hasData bool) (node domain.Node) {
	fallback := domain.TextHeaderNode{Company: b.company, GeneratedAt: at}

	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Warn("document header failed, using text header", zap.Any("panic", rec))
			node = fallback
		}
	}()

	if err := ctx.Err(); err != nil {
		b.logger.Warn("document header skipped", zap.Error(err))
		return fallback
	}

	var asset domain.BrandAsset
	switch {
	case preset != nil:
		asset = *preset
	case b.brand != nil:
		asset = b.brand.Resolve(ctx)
	}
	if !asset.Valid() {
		b.logger.Warn("document header has no usable brand asset, using text header",
			zap.String("mime_type", asset.MIMEType),
		)
		return fallback
	}

	mark := "FINAL"
	if !hasData {
		mark = "NO DATA"
	}
	return domain.HeaderNode{
		Brand:       asset,
		Company:     b.company,
		GeneratedAt: at,
		ReportID:    reportID,
		StatusMark:  mark,
	}
}

// filterBullets lists the active filters. Defaults produce no bullets.
func filterBullets(f domain.FilterState) []domain.Node {
	var out []domain.Node
	switch {
	case f.DateFrom != "" && f.DateTo != "":
		out = append(out, domain.BulletNode{Label: "Date Range", Value: FormatDate(f.DateFrom) + " to " + FormatDate(f.DateTo)})
	case f.DateFrom != "":
		out = append(out, domain.BulletNode{Label: "Date Range", Value: "From " + FormatDate(f.DateFrom)})
	case f.DateTo != "":
		out = append(out, domain.BulletNode{Label: "Date Range", Value: "Until " + FormatDate(f.DateTo)})
	}
	if f.InsuranceType != "" && f.InsuranceType != domain.FilterAll {
		out = append(out, domain.BulletNode{Label: "Insurance Type", Value: TitleCase(f.InsuranceType)})
	}
	if f.Status != "" && f.Status != domain.FilterAll {
		out = append(out, domain.BulletNode{Label: "Status", Value: StatusLabel(f.Status)})
	}
	return out
}
