package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ReportPayload is the typed body of GET /reports/{selector}.
// Exactly one concrete type exists per ReportSelector.
type ReportPayload interface {
	Selector() ReportSelector
}

// ============================================================
// overview
// ============================================================

// OverviewPayload is the single summary record of the overview report.
type OverviewPayload struct {
	TotalClaims         Count           `json:"total_claims"`
	PendingClaims       Count           `json:"pending_claims"`
	ApprovedClaims      Count           `json:"approved_claims"`
	RejectedClaims      Count           `json:"rejected_claims"`
	UnderReviewClaims   Count           `json:"under_review_claims"`
	TotalClaimedAmount  decimal.Decimal `json:"total_claimed_amount"`
	TotalApprovedAmount decimal.Decimal `json:"total_approved_amount"`
	AvgClaimAmount      decimal.Decimal `json:"avg_claim_amount"`
	ApprovalRate        decimal.Decimal `json:"approval_rate"`
	HighRiskClaims      Count           `json:"high_risk_claims"`
	UrgentClaims        Count           `json:"urgent_claims"`
	UniqueCustomers     Count           `json:"unique_customers"`
	AvgFraudScore       decimal.Decimal `json:"avg_fraud_score"`
}

func (OverviewPayload) Selector() ReportSelector { return ReportOverview }

// ============================================================
// claims-by-type
// ============================================================

// ClaimsByTypePayload is the ordered list of insurance types with their per-status categories.
type ClaimsByTypePayload struct {
	Types []ClaimTypeGroup `json:"types"`
}

func (ClaimsByTypePayload) Selector() ReportSelector { return ReportClaimsByType }

// ClaimTypeGroup groups the categories of one insurance type.
type ClaimTypeGroup struct {
	InsuranceType string          `json:"insurance_type"`
	Categories    []ClaimCategory `json:"categories"`
}

// ClaimCategory is one per-category record inside an insurance type.
type ClaimCategory struct {
	Category      string          `json:"category"`
	Count         Count           `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AvgAmount     decimal.Decimal `json:"avg_amount"`
	AvgFraudScore decimal.Decimal `json:"avg_fraud_score"`
}

// ============================================================
// fraud-analysis
// ============================================================

// FraudAnalysisPayload holds the risk matrix and fraud score histogram.
type FraudAnalysisPayload struct {
	RiskAnalysis      []RiskAnalysisRow      `json:"risk_analysis"`
	ScoreDistribution []ScoreDistributionRow `json:"score_distribution"`
}

func (FraudAnalysisPayload) Selector() ReportSelector { return ReportFraudAnalysis }

// RiskAnalysisRow is one risk level × insurance type cell.
type RiskAnalysisRow struct {
	RiskLevel     string          `json:"risk_level"`
	InsuranceType string          `json:"insurance_type"`
	ClaimCount    Count           `json:"claim_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AvgFraudScore decimal.Decimal `json:"avg_fraud_score"`
}

// ScoreDistributionRow is one fraud score bucket.
type ScoreDistributionRow struct {
	ScoreRange string          `json:"score_range"`
	Count      Count           `json:"count"`
	AvgAmount  decimal.Decimal `json:"avg_amount"`
}

// ============================================================
// financial
// ============================================================

// FinancialPayload holds per-type financials and the monthly breakdown.
type FinancialPayload struct {
	ByInsuranceType  []FinancialTypeRow  `json:"by_insurance_type"`
	MonthlyBreakdown []MonthlyFinanceRow `json:"monthly_breakdown"`
}

func (FinancialPayload) Selector() ReportSelector { return ReportFinancial }

// FinancialTypeRow is the financial summary of one insurance type.
type FinancialTypeRow struct {
	InsuranceType  string          `json:"insurance_type"`
	TotalClaims    Count           `json:"total_claims"`
	TotalClaimed   decimal.Decimal `json:"total_claimed"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	AvgClaimAmount decimal.Decimal `json:"avg_claim_amount"`
}

// MonthlyFinanceRow is one calendar month of claim money flow.
type MonthlyFinanceRow struct {
	Year           Count           `json:"year"`
	Month          Count           `json:"month"`
	ClaimsCount    Count           `json:"claims_count"`
	MonthlyClaimed decimal.Decimal `json:"monthly_claimed"`
	MonthlyPayout  decimal.Decimal `json:"monthly_payout"`
}

// ============================================================
// performance
// ============================================================

// PerformancePayload holds processing time stats and admin workload.
type PerformancePayload struct {
	ProcessingTimes []ProcessingTimeRow `json:"processing_times"`
	AdminWorkload   []AdminWorkloadRow  `json:"admin_workload"`
}

func (PerformancePayload) Selector() ReportSelector { return ReportPerformance }

// ProcessingTimeRow is the duration stats for one priority × status pair.
type ProcessingTimeRow struct {
	Priority           string          `json:"priority"`
	Status             string          `json:"status"`
	ClaimCount         Count           `json:"claim_count"`
	AvgProcessingHours decimal.Decimal `json:"avg_processing_hours"`
	MinProcessingHours decimal.Decimal `json:"min_processing_hours"`
	MaxProcessingHours decimal.Decimal `json:"max_processing_hours"`
}

// AdminWorkloadRow is the assignment/approval stats of one admin.
type AdminWorkloadRow struct {
	AdminName          string          `json:"admin_name"`
	AssignedClaims     Count           `json:"assigned_claims"`
	ApprovedClaims     Count           `json:"approved_claims"`
	RejectedClaims     Count           `json:"rejected_claims"`
	AvgProcessingHours decimal.Decimal `json:"avg_processing_hours"`
}

// ============================================================
// customer-analysis
// ============================================================

// CustomerAnalysisPayload holds top customers and claim frequency groups.
type CustomerAnalysisPayload struct {
	TopCustomers      []TopCustomerRow    `json:"top_customers"`
	FrequencyAnalysis []FrequencyGroupRow `json:"frequency_analysis"`
}

func (CustomerAnalysisPayload) Selector() ReportSelector { return ReportCustomerAnalysis }

// TopCustomerRow aggregates one customer's claims.
type TopCustomerRow struct {
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	ClaimCount    Count           `json:"claim_count"`
	TotalClaimed  decimal.Decimal `json:"total_claimed"`
	AvgFraudScore decimal.Decimal `json:"avg_fraud_score"`
	LastClaimDate string          `json:"last_claim_date"`
}

// FrequencyGroupRow buckets customers by how often they file claims.
type FrequencyGroupRow struct {
	FrequencyGroup     string          `json:"frequency_group"`
	CustomerCount      Count           `json:"customer_count"`
	GroupAvgFraudScore decimal.Decimal `json:"group_avg_fraud_score"`
}

// ============================================================
// Decoding
// ============================================================

// variantKeys lists the top-level keys of object-shaped variants. At least one
// must be present for the body to count as data for that selector.
var variantKeys = map[ReportSelector][]string{
	ReportOverview:         {"total_claims"},
	ReportFraudAnalysis:    {"risk_analysis", "score_distribution"},
	ReportFinancial:        {"by_insurance_type", "monthly_breakdown"},
	ReportPerformance:      {"processing_times", "admin_workload"},
	ReportCustomerAnalysis: {"top_customers", "frequency_analysis"},
}

// DecodePayload decodes raw into the variant for selector. It returns false when
// the body is malformed, has the wrong shape, or lacks the variant's top-level
// keys; callers treat that as "no data" rather than a fetch error.
func DecodePayload(selector ReportSelector, raw []byte) (ReportPayload, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}

	if selector == ReportClaimsByType {
		if raw[0] != '[' {
			return nil, false
		}
		var groups []ClaimTypeGroup
		if err := json.Unmarshal(raw, &groups); err != nil {
			return nil, false
		}
		return ClaimsByTypePayload{Types: groups}, true
	}

	keys, ok := variantKeys[selector]
	if !ok || raw[0] != '{' {
		return nil, false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}
	present := false
	for _, k := range keys {
		if _, ok := probe[k]; ok {
			present = true
			break
		}
	}
	if !present {
		return nil, false
	}

	switch selector {
	case ReportOverview:
		var p OverviewPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, false
		}
		return p, true
	case ReportFraudAnalysis:
		var p FraudAnalysisPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, false
		}
		return p, true
	case ReportFinancial:
		var p FinancialPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, false
		}
		return p, true
	case ReportPerformance:
		var p PerformancePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, false
		}
		return p, true
	case ReportCustomerAnalysis:
		var p CustomerAnalysisPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, false
		}
		return p, true
	}
	return nil, false
}
