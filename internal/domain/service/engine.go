package service

import (
	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
)

// Ensure it satisfies the interface in interfaces.go
var _ ScoringEngine = (*scoringEngine)(nil)

// scoringEngine is stateless apart from its immutable profile and is safe
// for concurrent use.
type scoringEngine struct {
	profile    models.ScoringProfile
	policy     PolicyCalculator
	iam        IAMCalculator
	defender   DefenderCalculator
	network    NetworkCalculator
	encryption EncryptionCalculator
	aggregator Aggregator
	drivers    DriverAnalyzer
}

// NewScoringEngine creates a ScoringEngine from a scoring profile.
// NewScoringEngine 使用评分配置创建评分引擎。
func NewScoringEngine(profile models.ScoringProfile) ScoringEngine {
	return &scoringEngine{
		profile:    profile,
		policy:     NewPolicyCalculator(profile.Policy),
		iam:        NewIAMCalculator(profile.IAM),
		defender:   NewDefenderCalculator(profile.Defender),
		network:    NewNetworkCalculator(profile.Network),
		encryption: NewEncryptionCalculator(profile.Encryption),
		aggregator: NewAggregator(profile.MaxPossibleScore, profile.Levels),
		drivers:    NewDriverAnalyzer(profile.TopDrivers),
	}
}

// NewDefaultScoringEngine creates a ScoringEngine with the production profile.
func NewDefaultScoringEngine() ScoringEngine {
	return NewScoringEngine(models.DefaultScoringProfile())
}

func (e *scoringEngine) Profile() models.ScoringProfile {
	return e.profile
}

// Score implements ScoringEngine.
func (e *scoringEngine) Score(doc *models.RawSignalDocument) (*models.CompositeRiskReport, error) {
	if doc == nil {
		return nil, errors.ErrMissingInput("raw signal document is required")
	}

	sig := resolveSections(doc)
	details := models.ComponentDetails{
		Policy:     e.policy.Calculate(sig.policy),
		IAM:        e.iam.Calculate(sig.iamCounts),
		Defender:   e.defender.Calculate(sig.defender),
		Network:    e.network.Calculate(sig.network),
		Encryption: e.encryption.Calculate(sig.encryption),
	}

	agg := e.aggregator.Aggregate(details)
	distribution, drivers := e.drivers.Analyze(details)

	return &models.CompositeRiskReport{
		SchemaVersion:    constants.ReportSchemaVersion,
		SubscriptionID:   orUnknown(doc.SubscriptionID),
		ResourceGroup:    orUnknown(doc.ResourceGroup),
		RiskScore:        agg.RiskScore,
		RiskLevel:        agg.RiskLevel,
		ComponentScores:  details.Scores(),
		ComponentDetails: details,
		RiskAnalysis: models.RiskAnalysis{
			TotalRawScore:    agg.TotalRaw,
			MaxPossibleScore: agg.MaxPossible,
			NormalizedScore:  agg.RiskScore,
			RiskDistribution: distribution,
			TopRiskDrivers:   drivers,
		},
		RawInputs: echoInputs(doc),
	}, nil
}

// echoInputs copies the document's counts into the report unchanged. The
// report never shares slices or maps with the document.
func echoInputs(doc *models.RawSignalDocument) models.RawInputs {
	c := doc.Clone()

	in := models.RawInputs{
		Policy: models.PolicyInputs{
			TopNoncompliantPolicies: []models.PolicyViolation{},
		},
		IAM: models.IAMInputs{
			Drift:                       resolveDrift(c.IAMDrift),
			OwnerPrincipalsSample:       nonNil(c.OwnerPrincipalsSample),
			ContributorPrincipalsSample: nonNil(c.ContributorPrincipalsSample),
			PrincipalTypeBreakdown:      c.PrincipalTypeBreakdown,
		},
		Network:    c.Network,
		Encryption: c.Encryption,
		Compliance: c.Compliance,
	}
	if c.Policy != nil {
		in.Policy.UniqueNoncompliantPolicies = c.Policy.UniqueNoncompliantPolicies
		in.Policy.TopNoncompliantPolicies = nonNil(c.Policy.TopNoncompliantPolicies)
	}
	if c.IAMCounts != nil {
		in.IAM.Counts = *c.IAMCounts
	}
	if c.Defender != nil {
		in.Defender = models.DefenderInputs{
			High:   c.Defender.High,
			Medium: c.Defender.Medium,
			Low:    c.Defender.Low,
		}
	}
	return in
}

func orUnknown(s string) string {
	if s == "" {
		return constants.UnknownIdentifier
	}
	return s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
