// Package models defines the domain models for the RiskScore-360 scoring engine.
// This file contains the Raw Signal Document produced by the signal collector.
package models

// RawSignalDocument is the immutable input to the scoring engine. Every section
// is optional; a nil section is scored as if all of its counts were zero.
// RawSignalDocument 是评分引擎的不可变输入。所有分段均为可选；
// 缺失的分段按全零计数评分。
type RawSignalDocument struct {
	// SubscriptionID identifies the scanned cloud subscription.
	// SubscriptionID 标识被扫描的云订阅。
	SubscriptionID string `json:"subscription_id,omitempty"`

	// ResourceGroup identifies the scanned resource group.
	// ResourceGroup 标识被扫描的资源组。
	ResourceGroup string `json:"resource_group,omitempty"`

	Policy *PolicySignal `json:"policy,omitempty"`

	// IAMDrift is the collector's drift classification: none, contributor or owner.
	// IAMDrift 是采集器给出的权限漂移分类：none、contributor 或 owner。
	IAMDrift DriftLevel `json:"iam_drift,omitempty"`

	IAMCounts *IAMCounts `json:"iam_counts,omitempty"`

	OwnerPrincipalsSample       []PrincipalRef `json:"owner_principals_sample,omitempty"`
	ContributorPrincipalsSample []PrincipalRef `json:"contributor_principals_sample,omitempty"`
	PrincipalTypeBreakdown      map[string]int `json:"principal_type_breakdown,omitempty"`

	Defender   *DefenderSignal    `json:"defender,omitempty"`
	Network    *NetworkSignal     `json:"network,omitempty"`
	Encryption *EncryptionSignal  `json:"encryption,omitempty"`
	Compliance *ComplianceSummary `json:"compliance,omitempty"`
}

// DriftLevel classifies identity-privilege deviation from baseline.
type DriftLevel string

const (
	DriftNone        DriftLevel = "none"
	DriftContributor DriftLevel = "contributor"
	DriftOwner       DriftLevel = "owner"
)

// PolicySignal summarizes non-compliant policy state records.
type PolicySignal struct {
	UniqueNoncompliantPolicies int               `json:"unique_noncompliant_policies"`
	NoncompliantStateRecords   int               `json:"noncompliant_state_records"`
	TopNoncompliantPolicies    []PolicyViolation `json:"top_noncompliant_policies"`
}

// PolicyViolation is one entry of the collector's most-violated policy list,
// ordered by NoncompliantRecords descending.
type PolicyViolation struct {
	PolicyDefinitionID  string `json:"policyDefinitionId"`
	PolicyName          string `json:"policyName,omitempty"`
	NoncompliantRecords int    `json:"noncompliant_records"`
}

// IAMCounts holds role assignment counts per built-in role.
type IAMCounts struct {
	Owners       int `json:"owners"`
	Contributors int `json:"contributors"`
	Readers      int `json:"readers"`
	CustomRoles  int `json:"custom_roles"`
}

// PrincipalRef identifies one principal holding a privileged role.
type PrincipalRef struct {
	PrincipalID   string `json:"principalId"`
	PrincipalType string `json:"principalType"`
	Scope         string `json:"scope,omitempty"`
}

// DefenderSignal counts unhealthy security assessments by severity.
type DefenderSignal struct {
	High           int            `json:"high"`
	Medium         int            `json:"medium"`
	Low            int            `json:"low"`
	Categories     map[string]int `json:"categories,omitempty"`
	TotalUnhealthy int            `json:"total_unhealthy,omitempty"`
}

// NetworkSignal describes network exposure of the resource group.
type NetworkSignal struct {
	OpenHighRiskPorts int `json:"open_high_risk_ports"`
	PublicIPCount     int `json:"public_ip_count"`
	MissingNSGCount   int `json:"missing_nsg_count"`
	TotalNSGs         int `json:"total_nsgs"`
	TotalNICs         int `json:"total_nics"`
}

// EncryptionSignal describes storage encryption posture.
type EncryptionSignal struct {
	UnencryptedStorageAccounts int `json:"unencrypted_storage_accounts"`
	WeakTLSConfigs             int `json:"weak_tls_configs"`
	NoCustomerManagedKeys      int `json:"no_customer_managed_keys"`
	HTTPSOnlyViolations        int `json:"https_only_violations"`
	TotalStorageAccounts       int `json:"total_storage_accounts"`
}

// ComplianceSummary is the regulatory compliance standards summary. It is
// passed through to the report and does not contribute to the score.
type ComplianceSummary struct {
	StandardsTracked int                        `json:"standards_tracked"`
	ComplianceScores map[string]ComplianceScore `json:"compliance_scores,omitempty"`
}

// ComplianceScore is the control pass/fail tally of one standard.
type ComplianceScore struct {
	Passed     int     `json:"passed"`
	Failed     int     `json:"failed"`
	Percentage float64 `json:"percentage"`
}

// Clone returns a deep copy of the document.
func (d *RawSignalDocument) Clone() *RawSignalDocument {
	if d == nil {
		return nil
	}
	out := *d
	if d.Policy != nil {
		p := *d.Policy
		p.TopNoncompliantPolicies = cloneSlice(d.Policy.TopNoncompliantPolicies)
		out.Policy = &p
	}
	if d.IAMCounts != nil {
		c := *d.IAMCounts
		out.IAMCounts = &c
	}
	out.OwnerPrincipalsSample = cloneSlice(d.OwnerPrincipalsSample)
	out.ContributorPrincipalsSample = cloneSlice(d.ContributorPrincipalsSample)
	out.PrincipalTypeBreakdown = cloneMap(d.PrincipalTypeBreakdown)
	if d.Defender != nil {
		df := *d.Defender
		df.Categories = cloneMap(d.Defender.Categories)
		out.Defender = &df
	}
	if d.Network != nil {
		n := *d.Network
		out.Network = &n
	}
	if d.Encryption != nil {
		e := *d.Encryption
		out.Encryption = &e
	}
	if d.Compliance != nil {
		c := *d.Compliance
		c.ComplianceScores = cloneMap(d.Compliance.ComplianceScores)
		out.Compliance = &c
	}
	return &out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
