package service

import (
	"fmt"
	"math"

	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/pkg/utils"
)

// ================================================================================
// Policy
// ================================================================================

// PolicyCalculator scores non-compliant policies on a saturating curve,
// boosted when violations concentrate in a few policies.
type PolicyCalculator struct {
	profile models.PolicyProfile
}

// NewPolicyCalculator creates a PolicyCalculator.
func NewPolicyCalculator(profile models.PolicyProfile) PolicyCalculator {
	return PolicyCalculator{profile: profile}
}

// Calculate scores one policy signal.
func (c PolicyCalculator) Calculate(sig models.PolicySignal) models.ComponentResult {
	p := c.profile
	n := utils.ClampNonNegative(sig.UniqueNoncompliantPolicies)
	if n == 0 {
		return models.ComponentResult{Score: 0, Severity: models.SeverityNone, Details: "No policy violations"}
	}

	base := float64(p.Cap) * (1 - math.Exp(-float64(n)/p.SaturationScale))
	multiplier := c.concentrationMultiplier(sig.TopNoncompliantPolicies)
	// Bands compare the untruncated value; only the reported score is floored.
	value := math.Min(float64(p.Cap), base*multiplier)
	score := int(value)

	severity := models.SeverityHigh
	switch {
	case value <= float64(p.LowMax):
		severity = models.SeverityLow
	case value <= float64(p.MediumMax):
		severity = models.SeverityMedium
	}

	return models.ComponentResult{
		Score:    score,
		Severity: severity,
		Details:  fmt.Sprintf("%d unique violations, concentration factor: %.2f", n, multiplier),
	}
}

// concentrationMultiplier returns the boost applied when the first TopN
// entries hold more than the threshold share of all listed records.
func (c PolicyCalculator) concentrationMultiplier(top []models.PolicyViolation) float64 {
	var head, total int
	for i, v := range top {
		records := utils.ClampNonNegative(v.NoncompliantRecords)
		if i < c.profile.ConcentrationTopN {
			head += records
		}
		total += records
	}
	if total == 0 {
		return 1.0
	}
	if float64(head)/float64(total) > c.profile.ConcentrationThreshold {
		return c.profile.ConcentrationMultiplier
	}
	return 1.0
}

// ================================================================================
// IAM
// ================================================================================

// IAMCalculator scores privileged role assignments.
type IAMCalculator struct {
	profile models.IAMProfile
}

// NewIAMCalculator creates an IAMCalculator.
func NewIAMCalculator(profile models.IAMProfile) IAMCalculator {
	return IAMCalculator{profile: profile}
}

// Calculate scores one set of role counts.
func (c IAMCalculator) Calculate(counts models.IAMCounts) models.ComponentResult {
	p := c.profile
	owners := utils.ClampNonNegative(counts.Owners)
	contributors := utils.ClampNonNegative(counts.Contributors)
	readers := utils.ClampNonNegative(counts.Readers)

	var raw float64
	severity := models.SeverityNone

	if owners > 0 {
		raw += c.ownerTerm(owners)
		switch {
		case owners > p.SeveralOwnersMax:
			severity = models.SeverityCritical
		case owners > p.OwnerHighAbove:
			severity = models.SeverityHigh
		default:
			severity = models.SeverityMedium
		}
	}

	if contributors > 0 {
		raw += math.Min(p.ContributorCap, p.ContributorCap*(1-math.Exp(-float64(contributors)/p.ContributorScale)))
		if severity == models.SeverityNone {
			switch {
			case contributors > p.ContributorHighAbove:
				severity = models.SeverityHigh
			case contributors > p.ContributorMedAbove:
				severity = models.SeverityMedium
			default:
				severity = models.SeverityLow
			}
		}
	}

	// Write access held by most principals adds a flat penalty. Severity is unaffected.
	privileged := owners + contributors
	if privileged > 0 && readers > 0 {
		if float64(privileged)/float64(privileged+readers) > p.PrivilegeRatioLimit {
			raw += p.PrivilegeRatioPenalty
		}
	}

	details := fmt.Sprintf("Owners: %d, Contributors: %d, Readers: %d", owners, contributors, readers)
	if owners > p.SeveralOwnersMax {
		details += " [CRITICAL: Excessive Owner accounts]"
	}

	return models.ComponentResult{
		Score:    utils.MinInt(p.Cap, int(raw)),
		Severity: severity,
		Details:  details,
	}
}

func (c IAMCalculator) ownerTerm(owners int) float64 {
	p := c.profile
	switch {
	case owners == 1:
		return p.SingleOwnerScore
	case owners <= p.FewOwnersMax:
		return p.FewOwnersScore
	case owners <= p.SeveralOwnersMax:
		return p.SeveralOwnersScore
	default:
		return p.ExcessiveOwnersScore
	}
}

// ================================================================================
// Defender
// ================================================================================

// DefenderCalculator scores unhealthy security findings by severity.
type DefenderCalculator struct {
	profile models.DefenderProfile
}

// NewDefenderCalculator creates a DefenderCalculator.
func NewDefenderCalculator(profile models.DefenderProfile) DefenderCalculator {
	return DefenderCalculator{profile: profile}
}

// Calculate scores one set of finding counts.
func (c DefenderCalculator) Calculate(sig models.DefenderSignal) models.ComponentResult {
	p := c.profile
	h := utils.ClampNonNegative(sig.High)
	m := utils.ClampNonNegative(sig.Medium)
	l := utils.ClampNonNegative(sig.Low)

	if h == 0 && m == 0 && l == 0 {
		return models.ComponentResult{Score: 0, Severity: models.SeverityNone, Details: "No Defender alerts"}
	}

	// The linear and logarithmic branches do not meet at the boundary:
	// 5 high findings score 100, 6 score 100+20·ln 2.
	var highTerm float64
	if h <= p.HighLinearMax {
		highTerm = float64(h) * p.HighWeight
	} else {
		highTerm = p.HighLogBase + p.HighLogWeight*math.Log(float64(h-p.HighLinearMax+1))
	}

	var mediumTerm float64
	if m <= p.MediumLinearMax {
		mediumTerm = float64(m) * p.MediumWeight
	} else {
		mediumTerm = p.MediumLogBase + p.MediumLogWeight*math.Log(float64(m-p.MediumLinearMax+1))
	}

	lowTerm := math.Min(p.LowCap, float64(l)*p.LowWeight)

	var severity models.Severity
	switch {
	case h >= p.CriticalHighMin:
		severity = models.SeverityCritical
	case h >= p.HighHighMin || m >= p.HighMediumMin:
		severity = models.SeverityHigh
	case h >= p.MediumHighMin || m >= p.MediumMediumMin:
		severity = models.SeverityMedium
	default:
		severity = models.SeverityLow
	}

	return models.ComponentResult{
		Score:    utils.MinInt(p.Cap, int(highTerm+mediumTerm+lowTerm)),
		Severity: severity,
		Details:  fmt.Sprintf("High: %d, Medium: %d, Low: %d", h, m, l),
	}
}

// ================================================================================
// Network
// ================================================================================

// NetworkCalculator scores exposed ports, public IPs and unprotected NICs.
type NetworkCalculator struct {
	profile models.NetworkProfile
}

// NewNetworkCalculator creates a NetworkCalculator.
func NewNetworkCalculator(profile models.NetworkProfile) NetworkCalculator {
	return NetworkCalculator{profile: profile}
}

// Calculate scores one network signal.
func (c NetworkCalculator) Calculate(sig models.NetworkSignal) models.ComponentResult {
	p := c.profile
	ports := utils.ClampNonNegative(sig.OpenHighRiskPorts)
	publicIPs := utils.ClampNonNegative(sig.PublicIPCount)
	missing := utils.ClampNonNegative(sig.MissingNSGCount)

	score := utils.MinInt(p.PortCap, ports*p.PortWeight)
	switch {
	case publicIPs > p.PublicIPHighAbove:
		score += p.PublicIPHighScore
	case publicIPs > p.PublicIPMedAbove:
		score += p.PublicIPMedScore
	}
	score += utils.MinInt(p.MissingNSGCap, missing*p.MissingNSGWeight)

	if score == 0 {
		return models.ComponentResult{Score: 0, Severity: models.SeverityNone, Details: "No network issues detected"}
	}

	final := utils.MinInt(p.Cap, score)
	severity := models.SeverityLow
	switch {
	case final >= p.HighMin:
		severity = models.SeverityHigh
	case final >= p.MediumMin:
		severity = models.SeverityMedium
	}

	return models.ComponentResult{
		Score:    final,
		Severity: severity,
		Details:  fmt.Sprintf("Open risk ports: %d, Public IPs: %d, Missing NSGs: %d", ports, publicIPs, missing),
	}
}

// ================================================================================
// Encryption
// ================================================================================

// EncryptionCalculator scores storage encryption gaps.
type EncryptionCalculator struct {
	profile models.EncryptionProfile
}

// NewEncryptionCalculator creates an EncryptionCalculator.
func NewEncryptionCalculator(profile models.EncryptionProfile) EncryptionCalculator {
	return EncryptionCalculator{profile: profile}
}

// Calculate scores one encryption signal.
func (c EncryptionCalculator) Calculate(sig models.EncryptionSignal) models.ComponentResult {
	p := c.profile
	unencrypted := utils.ClampNonNegative(sig.UnencryptedStorageAccounts)
	weakTLS := utils.ClampNonNegative(sig.WeakTLSConfigs)
	noCMK := utils.ClampNonNegative(sig.NoCustomerManagedKeys)

	score := 0
	if unencrypted > 0 {
		score += p.UnencryptedScore
	}
	if weakTLS > 0 {
		score += p.WeakTLSScore
	}
	if noCMK > p.NoCMKAbove {
		score += p.NoCMKScore
	}

	if score == 0 {
		return models.ComponentResult{Score: 0, Severity: models.SeverityNone, Details: "Encryption controls adequate"}
	}

	final := utils.MinInt(p.Cap, score)
	severity := models.SeverityLow
	switch {
	case final >= p.HighMin:
		severity = models.SeverityHigh
	case final >= p.MediumMin:
		severity = models.SeverityMedium
	}

	return models.ComponentResult{
		Score:    final,
		Severity: severity,
		Details:  fmt.Sprintf("Unencrypted storage: %d, Weak TLS: %d", unencrypted, weakTLS),
	}
}
