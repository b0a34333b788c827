package models

// ScoringProfile holds every cap, curve constant and band threshold used by
// the calculators. It is passed by value so an engine's profile can not be
// changed after construction.
// ScoringProfile 保存计算器使用的全部上限、曲线常量和分级阈值。
// 以值传递，引擎构造后其配置不可更改。
type ScoringProfile struct {
	Policy     PolicyProfile
	IAM        IAMProfile
	Defender   DefenderProfile
	Network    NetworkProfile
	Encryption EncryptionProfile
	Levels     LevelThresholds

	// MaxPossibleScore is the normalization denominator. It equals the sum
	// of the five caps.
	MaxPossibleScore int

	// TopDrivers is the length limit of top_risk_drivers.
	TopDrivers int
}

// PolicyProfile parameterizes the saturating policy curve.
type PolicyProfile struct {
	Cap                     int
	SaturationScale         float64 // base = Cap·(1 − e^(−n/SaturationScale))
	ConcentrationTopN       int
	ConcentrationThreshold  float64
	ConcentrationMultiplier float64
	LowMax                  int // untruncated score ≤ LowMax ⇒ low
	MediumMax               int // untruncated score ≤ MediumMax ⇒ medium
}

// IAMProfile parameterizes the owner step function and contributor curve.
type IAMProfile struct {
	Cap int

	// Owner step: 1 ⇒ SingleOwner, ≤FewOwnersMax ⇒ FewOwners,
	// ≤SeveralOwnersMax ⇒ SeveralOwners, else ExcessiveOwners.
	SingleOwnerScore     float64
	FewOwnersMax         int
	FewOwnersScore       float64
	SeveralOwnersMax     int
	SeveralOwnersScore   float64
	ExcessiveOwnersScore float64
	OwnerHighAbove       int

	ContributorCap        float64
	ContributorScale      float64
	ContributorHighAbove  int
	ContributorMedAbove   int
	PrivilegeRatioLimit   float64
	PrivilegeRatioPenalty float64
}

// DefenderProfile parameterizes the per-severity finding terms.
type DefenderProfile struct {
	Cap int

	HighWeight      float64
	HighLinearMax   int
	HighLogBase     float64
	HighLogWeight   float64
	MediumWeight    float64
	MediumLinearMax int
	MediumLogBase   float64
	MediumLogWeight float64
	LowWeight       float64
	LowCap          float64

	CriticalHighMin int
	HighHighMin     int
	HighMediumMin   int
	MediumHighMin   int
	MediumMediumMin int
}

// NetworkProfile parameterizes the network exposure terms.
type NetworkProfile struct {
	Cap int

	PortWeight        int
	PortCap           int
	PublicIPHighAbove int
	PublicIPHighScore int
	PublicIPMedAbove  int
	PublicIPMedScore  int
	MissingNSGWeight  int
	MissingNSGCap     int
	HighMin           int
	MediumMin         int
}

// EncryptionProfile parameterizes the encryption flags.
type EncryptionProfile struct {
	Cap int

	UnencryptedScore int
	WeakTLSScore     int
	NoCMKAbove       int
	NoCMKScore       int
	HighMin          int
	MediumMin        int
}

// LevelThresholds are the minimum normalized scores of each risk level.
type LevelThresholds struct {
	CriticalOverrideMin int
	Critical            int
	High                int
	MediumHigh          int
	Medium              int
	LowMedium           int
}

// DefaultScoringProfile returns the production scoring profile.
func DefaultScoringProfile() ScoringProfile {
	return ScoringProfile{
		Policy: PolicyProfile{
			Cap:                     40,
			SaturationScale:         10,
			ConcentrationTopN:       3,
			ConcentrationThreshold:  0.6,
			ConcentrationMultiplier: 1.2,
			LowMax:                  10,
			MediumMax:               25,
		},
		IAM: IAMProfile{
			Cap:                   35,
			SingleOwnerScore:      5,
			FewOwnersMax:          3,
			FewOwnersScore:        15,
			SeveralOwnersMax:      5,
			SeveralOwnersScore:    25,
			ExcessiveOwnersScore:  35,
			OwnerHighAbove:        3,
			ContributorCap:        15,
			ContributorScale:      20,
			ContributorHighAbove:  30,
			ContributorMedAbove:   15,
			PrivilegeRatioLimit:   0.5,
			PrivilegeRatioPenalty: 5,
		},
		Defender: DefenderProfile{
			Cap:             35,
			HighWeight:      20,
			HighLinearMax:   5,
			HighLogBase:     100,
			HighLogWeight:   20,
			MediumWeight:    8,
			MediumLinearMax: 10,
			MediumLogBase:   80,
			MediumLogWeight: 8,
			LowWeight:       2,
			LowCap:          10,
			CriticalHighMin: 5,
			HighHighMin:     2,
			HighMediumMin:   15,
			MediumHighMin:   1,
			MediumMediumMin: 5,
		},
		Network: NetworkProfile{
			Cap:               15,
			PortWeight:        3,
			PortCap:           10,
			PublicIPHighAbove: 5,
			PublicIPHighScore: 3,
			PublicIPMedAbove:  2,
			PublicIPMedScore:  2,
			MissingNSGWeight:  2,
			MissingNSGCap:     5,
			HighMin:           10,
			MediumMin:         5,
		},
		Encryption: EncryptionProfile{
			Cap:              10,
			UnencryptedScore: 5,
			WeakTLSScore:     3,
			NoCMKAbove:       3,
			NoCMKScore:       2,
			HighMin:          7,
			MediumMin:        4,
		},
		Levels: LevelThresholds{
			CriticalOverrideMin: 50,
			Critical:            75,
			High:                60,
			MediumHigh:          40,
			Medium:              25,
			LowMedium:           10,
		},
		MaxPossibleScore: 135,
		TopDrivers:       3,
	}
}
