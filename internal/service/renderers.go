package service

import (
	"strings"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
)

// Renderers map typed report payloads to table descriptions. The dashboard and
// the document builder share them, so screen and export never drift apart.
//
// A nested collection that is missing or empty produces no table; it is never an error.
type Renderers struct {
	fmt *Formatter
}

// NewRenderers creates the schema renderers. A nil formatter uses DefaultFormatter.
func NewRenderers(f *Formatter) *Renderers {
	if f == nil {
		f = DefaultFormatter()
	}
	return &Renderers{fmt: f}
}

// RenderPayload dispatches on the payload variant. Nil or unknown payloads yield no tables.
func (r *Renderers) RenderPayload(p domain.ReportPayload) []domain.TableDescription {
	switch v := p.(type) {
	case domain.OverviewPayload:
		return r.RenderOverview(v)
	case domain.ClaimsByTypePayload:
		return r.RenderClaimsByType(v)
	case domain.FraudAnalysisPayload:
		return r.RenderFraudAnalysis(v)
	case domain.FinancialPayload:
		return r.RenderFinancial(v)
	case domain.PerformancePayload:
		return r.RenderPerformance(v)
	case domain.CustomerAnalysisPayload:
		return r.RenderCustomerAnalysis(v)
	default:
		return nil
	}
}

func col(key, label string, align domain.Align) domain.Column {
	return domain.Column{Key: key, Label: label, Align: align}
}

func (r *Renderers) share(n, total domain.Count) string {
	return FormatPercent(Ratio(n.Decimal(), total.Decimal()))
}

// ============================================================
// overview
// ============================================================

// RenderOverview yields the status breakdown and the financial summary.
func (r *Renderers) RenderOverview(p domain.OverviewPayload) []domain.TableDescription {
	total := p.TotalClaims
	status := domain.TableDescription{
		ID:    "overview-claims",
		Title: "Claims by Status",
		Columns: []domain.Column{
			col("status", "Status", domain.AlignLeft),
			col("claims", "Claims", domain.AlignRight),
			col("share", "Share of Total", domain.AlignRight),
		},
	}
	for _, s := range []struct {
		label string
		n     domain.Count
	}{
		{"Total", total},
		{StatusLabel("pending"), p.PendingClaims},
		{StatusLabel("approved"), p.ApprovedClaims},
		{StatusLabel("rejected"), p.RejectedClaims},
		{StatusLabel("under_review"), p.UnderReviewClaims},
	} {
		status.Rows = append(status.Rows, domain.Row{s.label, r.fmt.FormatCount(s.n.Int64()), r.share(s.n, total)})
	}

	financial := domain.TableDescription{
		ID:    "overview-financial",
		Title: "Financial Summary",
		Columns: []domain.Column{
			col("metric", "Metric", domain.AlignLeft),
			col("value", "Value", domain.AlignRight),
		},
		Rows: []domain.Row{
			{"Total Claimed", r.fmt.FormatCurrency(p.TotalClaimedAmount)},
			{"Total Approved", r.fmt.FormatCurrency(p.TotalApprovedAmount)},
			{"Average Claim", r.fmt.FormatCurrency(p.AvgClaimAmount)},
			{"Payout Ratio", FormatPercent(Ratio(p.TotalApprovedAmount, p.TotalClaimedAmount))},
			{"Approval Rate", r.share(p.ApprovedClaims, total)},
			{"High Risk Claims", r.fmt.FormatCount(p.HighRiskClaims.Int64())},
			{"Urgent Claims", r.fmt.FormatCount(p.UrgentClaims.Int64())},
			{"Unique Customers", r.fmt.FormatCount(p.UniqueCustomers.Int64())},
			{"Avg Fraud Score", FormatScore(p.AvgFraudScore)},
		},
	}
	return []domain.TableDescription{status, financial}
}

// ============================================================
// claims-by-type
// ============================================================

// RenderClaimsByType yields one table per insurance type, in API order.
func (r *Renderers) RenderClaimsByType(p domain.ClaimsByTypePayload) []domain.TableDescription {
	var out []domain.TableDescription
	for _, g := range p.Types {
		if len(g.Categories) == 0 {
			continue
		}
		var total domain.Count
		for _, c := range g.Categories {
			total += c.Count
		}
		t := domain.TableDescription{
			ID:    "claims-by-type-" + slug(g.InsuranceType),
			Title: TitleCase(g.InsuranceType) + " Insurance",
			Columns: []domain.Column{
				col("category", "Category", domain.AlignLeft),
				col("count", "Claims", domain.AlignRight),
				col("share", "Share", domain.AlignRight),
				col("total_amount", "Total Amount", domain.AlignRight),
				col("avg_amount", "Avg Amount", domain.AlignRight),
				col("avg_fraud_score", "Avg Fraud Score", domain.AlignRight),
			},
		}
		for _, c := range g.Categories {
			t.Rows = append(t.Rows, domain.Row{
				TitleCase(c.Category),
				r.fmt.FormatCount(c.Count.Int64()),
				r.share(c.Count, total),
				r.fmt.FormatCurrency(c.TotalAmount),
				r.fmt.FormatCurrency(c.AvgAmount),
				FormatScore(c.AvgFraudScore),
			})
		}
		out = append(out, t)
	}
	return out
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, s)
}

// ============================================================
// fraud-analysis
// ============================================================

// RenderFraudAnalysis yields the risk matrix and the score histogram.
func (r *Renderers) RenderFraudAnalysis(p domain.FraudAnalysisPayload) []domain.TableDescription {
	var out []domain.TableDescription

	if len(p.RiskAnalysis) > 0 {
		t := domain.TableDescription{
			ID:    "fraud-risk",
			Title: "Risk Analysis",
			Columns: []domain.Column{
				col("risk_level", "Risk Level", domain.AlignLeft),
				col("insurance_type", "Insurance Type", domain.AlignLeft),
				col("claim_count", "Claims", domain.AlignRight),
				col("total_amount", "Total Amount", domain.AlignRight),
				col("avg_fraud_score", "Avg Fraud Score", domain.AlignRight),
			},
		}
		for _, row := range p.RiskAnalysis {
			t.Rows = append(t.Rows, domain.Row{
				TitleCase(row.RiskLevel),
				TitleCase(row.InsuranceType),
				r.fmt.FormatCount(row.ClaimCount.Int64()),
				r.fmt.FormatCurrency(row.TotalAmount),
				FormatScore(row.AvgFraudScore),
			})
		}
		out = append(out, t)
	}

	if len(p.ScoreDistribution) > 0 {
		var total domain.Count
		for _, row := range p.ScoreDistribution {
			total += row.Count
		}
		t := domain.TableDescription{
			ID:    "fraud-score-distribution",
			Title: "Fraud Score Distribution",
			Columns: []domain.Column{
				col("score_range", "Score Range", domain.AlignLeft),
				col("count", "Claims", domain.AlignRight),
				col("share", "Share", domain.AlignRight),
				col("avg_amount", "Avg Amount", domain.AlignRight),
			},
		}
		for _, row := range p.ScoreDistribution {
			t.Rows = append(t.Rows, domain.Row{
				row.ScoreRange,
				r.fmt.FormatCount(row.Count.Int64()),
				r.share(row.Count, total),
				r.fmt.FormatCurrency(row.AvgAmount),
			})
		}
		out = append(out, t)
	}
	return out
}

// ============================================================
// financial
// ============================================================

// RenderFinancial yields per-type financials and the monthly breakdown.
func (r *Renderers) RenderFinancial(p domain.FinancialPayload) []domain.TableDescription {
	var out []domain.TableDescription

	if len(p.ByInsuranceType) > 0 {
		t := domain.TableDescription{
			ID:    "financial-by-type",
			Title: "Financials by Insurance Type",
			Columns: []domain.Column{
				col("insurance_type", "Insurance Type", domain.AlignLeft),
				col("total_claims", "Claims", domain.AlignRight),
				col("total_claimed", "Total Claimed", domain.AlignRight),
				col("total_paid", "Total Paid", domain.AlignRight),
				col("payout_ratio", "Payout Ratio", domain.AlignRight),
				col("avg_claim_amount", "Avg Claim", domain.AlignRight),
			},
		}
		for _, row := range p.ByInsuranceType {
			t.Rows = append(t.Rows, domain.Row{
				TitleCase(row.InsuranceType),
				r.fmt.FormatCount(row.TotalClaims.Int64()),
				r.fmt.FormatCurrency(row.TotalClaimed),
				r.fmt.FormatCurrency(row.TotalPaid),
				FormatPercent(Ratio(row.TotalPaid, row.TotalClaimed)),
				r.fmt.FormatCurrency(row.AvgClaimAmount),
			})
		}
		out = append(out, t)
	}

	if len(p.MonthlyBreakdown) > 0 {
		t := domain.TableDescription{
			ID:    "financial-monthly",
			Title: "Monthly Breakdown",
			Columns: []domain.Column{
				col("month", "Month", domain.AlignLeft),
				col("claims_count", "Claims", domain.AlignRight),
				col("monthly_claimed", "Claimed", domain.AlignRight),
				col("monthly_payout", "Payout", domain.AlignRight),
				col("payout_ratio", "Payout Ratio", domain.AlignRight),
			},
		}
		for _, row := range p.MonthlyBreakdown {
			t.Rows = append(t.Rows, domain.Row{
				MonthLabel(int(row.Year), int(row.Month)),
				r.fmt.FormatCount(row.ClaimsCount.Int64()),
				r.fmt.FormatCurrency(row.MonthlyClaimed),
				r.fmt.FormatCurrency(row.MonthlyPayout),
				FormatPercent(Ratio(row.MonthlyPayout, row.MonthlyClaimed)),
			})
		}
		out = append(out, t)
	}
	return out
}

// ============================================================
// performance
// ============================================================

// RenderPerformance yields processing time stats and admin workload.
func (r *Renderers) RenderPerformance(p domain.PerformancePayload) []domain.TableDescription {
	var out []domain.TableDescription

	if len(p.ProcessingTimes) > 0 {
		t := domain.TableDescription{
			ID:    "performance-processing",
			Title: "Processing Times",
			Columns: []domain.Column{
				col("priority", "Priority", domain.AlignLeft),
				col("status", "Status", domain.AlignLeft),
				col("claim_count", "Claims", domain.AlignRight),
				col("avg_processing_hours", "Avg Time", domain.AlignRight),
				col("min_processing_hours", "Min Time", domain.AlignRight),
				col("max_processing_hours", "Max Time", domain.AlignRight),
			},
		}
		for _, row := range p.ProcessingTimes {
			t.Rows = append(t.Rows, domain.Row{
				TitleCase(row.Priority),
				StatusLabel(row.Status),
				r.fmt.FormatCount(row.ClaimCount.Int64()),
				FormatHours(row.AvgProcessingHours),
				FormatHours(row.MinProcessingHours),
				FormatHours(row.MaxProcessingHours),
			})
		}
		out = append(out, t)
	}

	if len(p.AdminWorkload) > 0 {
		t := domain.TableDescription{
			ID:    "performance-workload",
			Title: "Admin Workload",
			Columns: []domain.Column{
				col("admin_name", "Admin", domain.AlignLeft),
				col("assigned_claims", "Assigned", domain.AlignRight),
				col("approved_claims", "Approved", domain.AlignRight),
				col("rejected_claims", "Rejected", domain.AlignRight),
				col("approval_rate", "Approval Rate", domain.AlignRight),
				col("avg_processing_hours", "Avg Time", domain.AlignRight),
			},
		}
		for _, row := range p.AdminWorkload {
			t.Rows = append(t.Rows, domain.Row{
				nonEmpty(row.AdminName),
				r.fmt.FormatCount(row.AssignedClaims.Int64()),
				r.fmt.FormatCount(row.ApprovedClaims.Int64()),
				r.fmt.FormatCount(row.RejectedClaims.Int64()),
				r.share(row.ApprovedClaims, row.AssignedClaims),
				FormatHours(row.AvgProcessingHours),
			})
		}
		out = append(out, t)
	}
	return out
}

// ============================================================
// customer-analysis
// ============================================================

// RenderCustomerAnalysis yields top customers and claim frequency groups.
func (r *Renderers) RenderCustomerAnalysis(p domain.CustomerAnalysisPayload) []domain.TableDescription {
	var out []domain.TableDescription

	if len(p.TopCustomers) > 0 {
		t := domain.TableDescription{
			ID:    "customer-top",
			Title: "Top Customers",
			Columns: []domain.Column{
				col("customer_name", "Customer", domain.AlignLeft),
				col("customer_email", "Email", domain.AlignLeft),
				col("claim_count", "Claims", domain.AlignRight),
				col("total_claimed", "Total Claimed", domain.AlignRight),
				col("avg_fraud_score", "Avg Fraud Score", domain.AlignRight),
				col("last_claim_date", "Last Claim", domain.AlignCenter),
			},
		}
		for _, row := range p.TopCustomers {
			t.Rows = append(t.Rows, domain.Row{
				nonEmpty(row.CustomerName),
				nonEmpty(row.CustomerEmail),
				r.fmt.FormatCount(row.ClaimCount.Int64()),
				r.fmt.FormatCurrency(row.TotalClaimed),
				FormatScore(row.AvgFraudScore),
				FormatDate(row.LastClaimDate),
			})
		}
		out = append(out, t)
	}

	if len(p.FrequencyAnalysis) > 0 {
		var total domain.Count
		for _, row := range p.FrequencyAnalysis {
			total += row.CustomerCount
		}
		t := domain.TableDescription{
			ID:    "customer-frequency",
			Title: "Claim Frequency",
			Columns: []domain.Column{
				col("frequency_group", "Frequency Group", domain.AlignLeft),
				col("customer_count", "Customers", domain.AlignRight),
				col("share", "Share", domain.AlignRight),
				col("group_avg_fraud_score", "Avg Fraud Score", domain.AlignRight),
			},
		}
		for _, row := range p.FrequencyAnalysis {
			t.Rows = append(t.Rows, domain.Row{
				TitleCase(row.FrequencyGroup),
				r.fmt.FormatCount(row.CustomerCount.Int64()),
				r.share(row.CustomerCount, total),
				FormatScore(row.GroupAvgFraudScore),
			})
		}
		out = append(out, t)
	}
	return out
}

func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptyCell
	}
	return s
}

