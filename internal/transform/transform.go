// Package transform contains the pure field-mapping logic of the migration:
// legacy image kinds to aspect identifiers, derived display fields with
// their fallback chains, and privilege normalization. No I/O happens here.
package transform

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Aspect identifiers in the redesigned schema. Every migrated image must
// reference one of these two rows.
const (
	AspectCardBackground = "card-background"
	AspectSegaPassname   = "sega-passname"
)

// ErrUnknownAspect is returned by DeriveAspectID for kinds that have no
// aspect mapping. Callers skip the row and continue; matched with errors.Is.
var ErrUnknownAspect = errors.New("unknown image kind")

var kindToAspect = map[string]string{
	"BACKGROUND": AspectCardBackground,
	"FRAME":      AspectCardBackground,
	"CHARACTER":  AspectCardBackground,
	"MASK":       AspectCardBackground,
	"LABEL":      AspectCardBackground,
	"PASSNAME":   AspectSegaPassname,
}

// DescriptionFallback is written when neither label, category nor kind can
// produce a description.
const DescriptionFallback = "Legacy image imported via migration-tools"

var titleCaser = cases.Title(language.English)

// DeriveAspectID maps the legacy free-text kind (case-insensitive) to the
// aspect identifier of the new schema.
func DeriveAspectID(kind string) (string, error) {
	aspect, ok := kindToAspect[strings.ToUpper(kind)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAspect, kind)
	}
	return aspect, nil
}

// BuildLabels composes the labels array for tbl_image.labels: lowercased
// kind followed by the lowercased trimmed category. The result is never
// empty; when both parts are blank a single "unclassified" entry is used.
func BuildLabels(kind, category string) []string {
	var labels []string
	if kind != "" {
		labels = append(labels, strings.ToLower(kind))
	}
	if normalized := strings.TrimSpace(category); normalized != "" {
		labels = append(labels, strings.ToLower(normalized))
	}
	if len(labels) == 0 {
		return []string{"unclassified"}
	}
	return labels
}

// BuildName generates the name field for a migrated image. A non-blank
// label wins; otherwise the name is derived from the kind and the uuid.
func BuildName(label, uuid, kind string) string {
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		return trimmed
	}
	fallbackKind := "Image"
	if kind != "" {
		fallbackKind = titleCaser.String(strings.ToLower(kind))
	}
	return fmt.Sprintf("%s-%s", fallbackKind, uuid)
}

// BuildDescription picks the first non-blank of label, category and the
// title-cased kind, falling back to DescriptionFallback.
func BuildDescription(label, category, kind string) string {
	candidates := []string{label, category}
	if kind != "" {
		candidates = append(candidates, titleCaser.String(strings.ToLower(kind)))
	}
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return DescriptionFallback
}

// NormalizePrivileges returns the privilege set assigned to every migrated
// user. Legacy privileges are not carried over; all accounts land as NORMAL.
func NormalizePrivileges() []string {
	return []string{"NORMAL"}
}
