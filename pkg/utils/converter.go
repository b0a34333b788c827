// Package utils provides utility functions for the RiskScore-360 service.
// This file contains numeric and serialization helpers shared by the engine and its adapters.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// ================================================================================
// Numeric Conversion
// ================================================================================

// ClampNonNegative returns v, or 0 when v is negative
func ClampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// MinInt returns the smaller of a and b
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RoundHalfEven rounds x to the given number of decimal places.
// Ties are resolved on the exact binary value of x, the same way decimal
// formatting resolves them, so 12.25 rounds to 12.2 and 0.125 to 0.12.
func RoundHalfEven(x float64, places int) float64 {
	s := strconv.FormatFloat(x, 'f', places, 64)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return x
	}
	return v
}

// ================================================================================
// JSON Conversion
// ================================================================================

// ToJSONPretty converts a value to indented JSON
func ToJSONPretty(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Fingerprint returns the hex SHA-256 of the JSON encoding of v.
// Struct fields encode in declaration order and map keys sorted, so equal
// values produce equal fingerprints.
func Fingerprint(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
