package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prime-insurance/claims-portal-bfa/internal/config"
	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type exportOptions struct {
	report string
	format string
	out    string
	filter domain.FilterState
}

func exportCmd() *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one report to a CSV or PDF file",
		Example: `  portal export --report fraud-analysis --format pdf
  portal export --report financial --format csv --date-from 2024-01-01 --out ./out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.report, "report", string(domain.ReportOverview), "Report to export")
	f.StringVar(&opts.format, "format", domain.FormatPDF, "Export format: csv or pdf")
	f.StringVarP(&opts.out, "out", "o", ".", "Output directory")
	f.StringVar(&opts.filter.DateFrom, "date-from", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&opts.filter.DateTo, "date-to", "", "End date (YYYY-MM-DD)")
	f.StringVar(&opts.filter.InsuranceType, "insurance-type", domain.FilterAll, "Insurance type filter")
	f.StringVar(&opts.filter.Status, "status", domain.FilterAll, "Claim status filter")
	return cmd
}

func runExport(ctx context.Context, opts *exportOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	selector := domain.ReportSelector(opts.report)
	var res *domain.ExportResult
	switch opts.format {
	case domain.FormatCSV:
		res, err = a.exports.ExportCSV(ctx, selector, opts.filter)
	case domain.FormatPDF:
		res, err = a.exports.ExportPDF(ctx, selector, opts.filter)
	default:
		return fmt.Errorf("unknown format %q (want csv or pdf)", opts.format)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(opts.out, res.Filename)
	if err := os.WriteFile(path, res.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info("report exported",
		zap.String("report", opts.report),
		zap.String("path", path),
		zap.Int("bytes", len(res.Body)),
		zap.Bool("print_fallback", res.Fallback),
	)
	if res.Fallback {
		fmt.Fprintf(os.Stderr, "pdf engine unavailable, wrote printable view instead: %s\n", res.FallbackReason)
	}
	fmt.Println(path)
	return nil
}
