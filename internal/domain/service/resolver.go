package service

import (
	"github.com/turtacn/riskscore360/internal/domain/models"
)

// resolvedSignals is a document with every optional section present. The
// calculators only ever see resolved values.
type resolvedSignals struct {
	policy     models.PolicySignal
	iamCounts  models.IAMCounts
	defender   models.DefenderSignal
	network    models.NetworkSignal
	encryption models.EncryptionSignal
}

// resolveSections substitutes a zeroed value for every absent section.
func resolveSections(doc *models.RawSignalDocument) resolvedSignals {
	var r resolvedSignals
	if doc.Policy != nil {
		r.policy = *doc.Policy
	}
	if doc.IAMCounts != nil {
		r.iamCounts = *doc.IAMCounts
	}
	if doc.Defender != nil {
		r.defender = *doc.Defender
	}
	if doc.Network != nil {
		r.network = *doc.Network
	}
	if doc.Encryption != nil {
		r.encryption = *doc.Encryption
	}
	return r
}

// resolveDrift normalizes the drift label, defaulting to none.
func resolveDrift(d models.DriftLevel) models.DriftLevel {
	if d == "" {
		return models.DriftNone
	}
	return d
}
