package main

import (
	"net/http"

	"github.com/prime-insurance/claims-portal-bfa/internal/config"
	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/cache"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/client"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/pdf"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/printview"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/resilience"
	"github.com/prime-insurance/claims-portal-bfa/internal/service"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// app is the wired object graph shared by serve and export.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *observability.Metrics
	sessions *cache.InMemory[*service.ReportController]
	breakers []*gobreaker.CircuitBreaker

	reports *service.ReportService
	store   *service.SessionStore
	exports *service.ExportService
	brand   *service.BrandAssetResolver
}

// loadEnv reads the .env file for local development. Existing variables win.
func loadEnv() {
	_ = config.LoadDotEnv(envFile)
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	analyticsCB := resilience.NewCircuitBreaker("analytics", logger)
	assetsCB := resilience.NewCircuitBreaker("assets", logger)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	analytics := client.NewAnalyticsClient(httpClient, cfg.AnalyticsAPIURL, analyticsCB, resilienceCfg, logger)
	assets := client.NewAssetClient(httpClient, cfg.AssetBaseURL, assetsCB, logger)

	// --- Formatting ---
	formatter, err := service.NewFormatter(cfg.ReportLocale, cfg.ReportCurrency)
	if err != nil {
		return nil, err
	}
	renderers := service.NewRenderers(formatter)

	company := domain.CompanyIdentity{
		Name:    cfg.CompanyName,
		Tagline: cfg.CompanyTagline,
		Address: cfg.CompanyAddress,
	}

	// --- Services ---
	brand := service.NewBrandAssetResolver(assets, cfg.BrandBundledPath, cfg.BrandPublicPath, company, metrics, logger)
	reports := service.NewReportService(analytics, renderers, metrics, logger)
	sessions := cache.New[*service.ReportController](cfg.SessionTTL)
	store := service.NewSessionStore(sessions, analytics, renderers, metrics, logger)
	sessions.OnEvict(func(id string, _ *service.ReportController) { store.Expired(id) })
	builder := service.NewDocumentBuilder(renderers, brand, company, cfg.GeneratorName, logger)
	exports := service.NewExportService(
		reports,
		analytics,
		builder,
		brand,
		pdf.NewEngine(cfg.PDFFontDir, logger),
		printview.New(),
		resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics,
		logger,
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		sessions: sessions,
		breakers: []*gobreaker.CircuitBreaker{analyticsCB, assetsCB},
		reports:  reports,
		store:    store,
		exports:  exports,
		brand:    brand,
	}, nil
}

func (a *app) close() {
	a.sessions.Close()
}
