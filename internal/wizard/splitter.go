package wizard

import (
	"regexp"
	"strings"
)

// variantMarker matches one "Варіант N" section header on its own line, with
// or without markdown decoration ("## Варіант 1", "**Варіант 2:**", ...).
var variantMarker = regexp.MustCompile(`(?mi)^[#*\s]*варіант\s*\d+[:.]?[\s*]*$`)

// SplitVariants splits raw model output into the ordered list of post
// variants. Segments are trimmed and empty ones dropped; the order is the
// model's own ordering. When no marker is recognized the whole trimmed text
// is returned as a single unlabelled variant.
func SplitVariants(text string) []string {
	parts := variantMarker.Split(text, -1)

	variants := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			variants = append(variants, part)
		}
	}

	if len(variants) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return variants
}
