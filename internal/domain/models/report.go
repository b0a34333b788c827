package models

import "github.com/turtacn/riskscore360/pkg/constants"

// Severity is a named risk tier of one component.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from none (0) to critical (4).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// RiskLevel is the composite classification of a report.
type RiskLevel string

const (
	RiskLevelLow        RiskLevel = "Low"
	RiskLevelLowMedium  RiskLevel = "Low-Medium"
	RiskLevelMedium     RiskLevel = "Medium"
	RiskLevelMediumHigh RiskLevel = "Medium-High"
	RiskLevelHigh       RiskLevel = "High"
	RiskLevelCritical   RiskLevel = "Critical"
)

// ComponentResult is the bounded output of one component risk calculator.
// ComponentResult 是单个分项风险计算器的有界输出。
type ComponentResult struct {
	Score    int      `json:"score"`
	Severity Severity `json:"severity"`
	Details  string   `json:"details"`
}

// NamedResult pairs a component name with its result.
type NamedResult struct {
	Component string
	ComponentResult
}

// ComponentDetails holds the five component results. Its field order is the
// canonical component order.
type ComponentDetails struct {
	Policy     ComponentResult `json:"policy"`
	IAM        ComponentResult `json:"iam"`
	Defender   ComponentResult `json:"defender"`
	Network    ComponentResult `json:"network"`
	Encryption ComponentResult `json:"encryption"`
}

// Ordered returns the results in canonical order.
func (d ComponentDetails) Ordered() []NamedResult {
	return []NamedResult{
		{Component: constants.ComponentPolicy, ComponentResult: d.Policy},
		{Component: constants.ComponentIAM, ComponentResult: d.IAM},
		{Component: constants.ComponentDefender, ComponentResult: d.Defender},
		{Component: constants.ComponentNetwork, ComponentResult: d.Network},
		{Component: constants.ComponentEncryption, ComponentResult: d.Encryption},
	}
}

// Scores projects the results onto the component_scores table.
func (d ComponentDetails) Scores() ComponentScores {
	return ComponentScores{
		PolicyRisk:     d.Policy.Score,
		IAMRisk:        d.IAM.Score,
		DefenderRisk:   d.Defender.Score,
		NetworkRisk:    d.Network.Score,
		EncryptionRisk: d.Encryption.Score,
	}
}

// ComponentScores is the flat per-component score table of a report.
type ComponentScores struct {
	PolicyRisk     int `json:"policy_risk"`
	IAMRisk        int `json:"iam_risk"`
	DefenderRisk   int `json:"defender_risk"`
	NetworkRisk    int `json:"network_risk"`
	EncryptionRisk int `json:"encryption_risk"`
}

// DistributionEntry is one component's share of the total raw score.
type DistributionEntry struct {
	Score      int      `json:"score"`
	Percentage float64  `json:"percentage"`
	Severity   Severity `json:"severity"`
}

// RiskDriver is one of the top contributors to the composite score.
type RiskDriver struct {
	Component string   `json:"component"`
	Score     int      `json:"score"`
	Severity  Severity `json:"severity"`
}

// RiskAnalysis holds the aggregate figures and driver analysis of a report.
type RiskAnalysis struct {
	TotalRawScore    int                          `json:"total_raw_score"`
	MaxPossibleScore int                          `json:"max_possible_score"`
	NormalizedScore  int                          `json:"normalized_score"`
	RiskDistribution map[string]DistributionEntry `json:"risk_distribution"`
	TopRiskDrivers   []RiskDriver                 `json:"top_risk_drivers"`
}

// PolicyInputs echoes the policy signal.
type PolicyInputs struct {
	UniqueNoncompliantPolicies int               `json:"unique_noncompliant_policies"`
	TopNoncompliantPolicies    []PolicyViolation `json:"top_noncompliant_policies"`
}

// IAMInputs echoes the identity signal.
type IAMInputs struct {
	Drift                       DriftLevel     `json:"drift"`
	Counts                      IAMCounts      `json:"counts"`
	OwnerPrincipalsSample       []PrincipalRef `json:"owner_principals_sample"`
	ContributorPrincipalsSample []PrincipalRef `json:"contributor_principals_sample"`
	PrincipalTypeBreakdown      map[string]int `json:"principal_type_breakdown,omitempty"`
}

// DefenderInputs echoes the finding counts.
type DefenderInputs struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// RawInputs is the pass-through section of a report. Counts are echoed as
// supplied, before any clamping. Network, encryption and compliance are only
// present when the document carried them.
type RawInputs struct {
	Policy     PolicyInputs       `json:"policy"`
	IAM        IAMInputs          `json:"iam"`
	Defender   DefenderInputs     `json:"defender"`
	Network    *NetworkSignal     `json:"network,omitempty"`
	Encryption *EncryptionSignal  `json:"encryption,omitempty"`
	Compliance *ComplianceSummary `json:"compliance,omitempty"`
}

// CompositeRiskReport is the output of the scoring engine. It carries no
// identifiers or timestamps, so identical documents yield identical reports.
// CompositeRiskReport 是评分引擎的输出。报告不含标识符或时间戳，
// 因此相同的输入文档产生相同的报告。
type CompositeRiskReport struct {
	SchemaVersion    string           `json:"schema_version"`
	SubscriptionID   string           `json:"subscription_id"`
	ResourceGroup    string           `json:"resource_group"`
	RiskScore        int              `json:"risk_score"`
	RiskLevel        RiskLevel        `json:"risk_level"`
	ComponentScores  ComponentScores  `json:"component_scores"`
	ComponentDetails ComponentDetails `json:"component_details"`
	RiskAnalysis     RiskAnalysis     `json:"risk_analysis"`
	RawInputs        RawInputs        `json:"raw_inputs"`
}

// HasCritical reports whether any component is rated critical.
func (r *CompositeRiskReport) HasCritical() bool {
	for _, c := range r.ComponentDetails.Ordered() {
		if c.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
