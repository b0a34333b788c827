// Package signal loads Raw Signal Documents produced by the collector.
package signal

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/pkg/errors"
)

// section decodes one top-level key of the document into doc.
type section func(raw json.RawMessage, doc *models.RawSignalDocument) error

var sections = map[string]section{
	"subscription_id": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.SubscriptionID)
	},
	"resource_group": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.ResourceGroup)
	},
	"policy": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.Policy)
	},
	"iam_drift": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.IAMDrift)
	},
	"iam_counts": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.IAMCounts)
	},
	"owner_principals_sample": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.OwnerPrincipalsSample)
	},
	"contributor_principals_sample": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.ContributorPrincipalsSample)
	},
	"principal_type_breakdown": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.PrincipalTypeBreakdown)
	},
	"defender": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.Defender)
	},
	"network": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.Network)
	},
	"encryption": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.Encryption)
	},
	"compliance": func(raw json.RawMessage, doc *models.RawSignalDocument) error {
		return decodeSection(raw, &doc.Compliance)
	},
}

// decodeSection unmarshals one section into target. Counts the collector wrote
// as JSON floats (5.0, 2.7) are truncated toward zero instead of failing the
// section; every other shape mismatch is returned as is.
func decodeSection[T any](raw json.RawMessage, target *T) error {
	err := json.Unmarshal(raw, target)
	var typeErr *json.UnmarshalTypeError
	if err == nil || !stderrors.As(err, &typeErr) || !strings.HasPrefix(typeErr.Value, "number") {
		return err
	}

	var generic interface{}
	if json.Unmarshal(raw, &generic) != nil {
		return err
	}
	var tolerant T
	dec, derr := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &tolerant})
	if derr != nil || dec.Decode(generic) != nil {
		return err
	}
	*target = tolerant
	return nil
}

// Decode parses a Raw Signal Document. The input may be UTF-8 (with or
// without BOM) or UTF-16 in either byte order.
//
// A section whose value has the wrong shape is dropped and reported in the
// returned warnings; the engine then scores it as absent. Unknown keys are
// ignored. A document that is empty or null fails with missing_input, one that
// is not a JSON object fails with invalid_document.
func Decode(data []byte) (*models.RawSignalDocument, []string, error) {
	text, err := normalizeEncoding(data)
	if err != nil {
		return nil, nil, errors.ErrInvalidDocument("unable to decode document text").WithCause(err)
	}

	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, errors.ErrMissingInput("signal document is empty")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, nil, errors.ErrInvalidDocument("signal document must be a JSON object").WithCause(err)
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		if _, ok := sections[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	doc := &models.RawSignalDocument{}
	var warnings []string
	for _, key := range keys {
		// Decode into a scratch copy so a half-populated section never leaks.
		scratch := *doc
		if err := sections[key](raw[key], &scratch); err != nil {
			warnings = append(warnings, models.SectionWarning(key, err))
			continue
		}
		*doc = scratch
	}
	return doc, warnings, nil
}

// normalizeEncoding converts the document to UTF-8. BOMs are honoured; BOM-less
// UTF-16 is recognised by NUL bytes in the first code unit.
func normalizeEncoding(data []byte) ([]byte, error) {
	fallback := unicode.UTF8.NewDecoder()
	if len(data) >= 2 && !hasBOM(data) {
		switch {
		case data[0] != 0 && data[1] == 0:
			fallback = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		case data[0] == 0 && data[1] != 0:
			fallback = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		}
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	return out, err
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
