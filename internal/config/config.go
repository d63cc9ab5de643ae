package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Values come from environment variables (and .env) with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// External services
	AnalyticsAPIURL string
	AssetBaseURL    string

	// Brand assets, relative to AssetBaseURL, in fallback order
	BrandBundledPath string
	BrandPublicPath  string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Dashboard sessions
	SessionTTL time.Duration

	// Observability
	OTLPEndpoint   string
	TracingEnabled bool

	// Documents
	CompanyName    string
	CompanyTagline string
	CompanyAddress string
	GeneratorName  string
	ReportLocale   string
	ReportCurrency string
	PDFFontDir     string
}

var defaults = map[string]any{
	"PORT":      8080,
	"LOG_LEVEL": "info",

	"ANALYTICS_API_URL": "http://localhost:5000/api",
	"ASSET_BASE_URL":    "http://localhost:3000",

	"BRAND_BUNDLED_PATH": "/assets/prime-logo.png",
	"BRAND_PUBLIC_PATH":  "/prime-logo.png",

	"HTTP_TIMEOUT": 10 * time.Second,

	"MAX_RETRIES":     3,
	"INITIAL_BACKOFF": 100 * time.Millisecond,
	"MAX_CONCURRENCY": 8,

	"SESSION_TTL": 30 * time.Minute,

	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
	"TRACING_ENABLED":             false,

	"COMPANY_NAME":    "PRIME Insurance",
	"COMPANY_TAGLINE": "Claims Analytics",
	"COMPANY_ADDRESS": "",
	"GENERATOR_NAME":  "PRIME Insurance Claims Portal",
	"REPORT_LOCALE":   "en-IN",
	"REPORT_CURRENCY": "INR",
	"PDF_FONT_DIR":    "",
}

// Load reads configuration from the environment with defaults.
func Load() (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port:     v.GetInt("PORT"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),

		AnalyticsAPIURL: v.GetString("ANALYTICS_API_URL"),
		AssetBaseURL:    v.GetString("ASSET_BASE_URL"),

		BrandBundledPath: v.GetString("BRAND_BUNDLED_PATH"),
		BrandPublicPath:  v.GetString("BRAND_PUBLIC_PATH"),

		HTTPTimeout: v.GetDuration("HTTP_TIMEOUT"),

		MaxRetries:     v.GetInt("MAX_RETRIES"),
		InitialBackoff: v.GetDuration("INITIAL_BACKOFF"),
		MaxConcurrency: v.GetInt("MAX_CONCURRENCY"),

		SessionTTL: v.GetDuration("SESSION_TTL"),

		OTLPEndpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TracingEnabled: v.GetBool("TRACING_ENABLED"),

		CompanyName:    v.GetString("COMPANY_NAME"),
		CompanyTagline: v.GetString("COMPANY_TAGLINE"),
		CompanyAddress: v.GetString("COMPANY_ADDRESS"),
		GeneratorName:  v.GetString("GENERATOR_NAME"),
		ReportLocale:   v.GetString("REPORT_LOCALE"),
		ReportCurrency: v.GetString("REPORT_CURRENCY"),
		PDFFontDir:     v.GetString("PDF_FONT_DIR"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	case c.AnalyticsAPIURL == "":
		return fmt.Errorf("config: ANALYTICS_API_URL is required")
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("config: HTTP_TIMEOUT must be positive")
	case c.MaxRetries < 0:
		return fmt.Errorf("config: MAX_RETRIES must not be negative")
	case c.SessionTTL <= 0:
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	return nil
}
