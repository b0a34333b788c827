package models

import (
	"fmt"
	"time"
)

// ScoreResult is a scored report together with its service envelope. The
// envelope fields vary per invocation; Report does not.
// ScoreResult 是评分报告及其服务层封装。封装字段每次调用不同；报告本身不变。
type ScoreResult struct {
	ReportID    string               `json:"report_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Fingerprint string               `json:"fingerprint"`
	Source      string               `json:"source,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
	Report      *CompositeRiskReport `json:"report"`
}

// LoadedSignal is a decoded raw signal document plus the non-fatal problems
// found while decoding it.
type LoadedSignal struct {
	Document *RawSignalDocument
	Warnings []string
	Source   string
}

// SectionWarning formats the warning recorded for a malformed document section.
func SectionWarning(section string, err error) string {
	return fmt.Sprintf("section %q is malformed and was scored as absent: %v", section, err)
}

// WarningSection extracts the section name from a SectionWarning message.
func WarningSection(warning string) string {
	var name string
	if _, err := fmt.Sscanf(warning, "section %q", &name); err != nil {
		return "unknown"
	}
	return name
}
