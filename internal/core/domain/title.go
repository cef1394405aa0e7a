package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// partSuffix matches the " (часть i/N)" suffix appended to chunked
// titles, capturing i and N.
var partSuffix = regexp.MustCompile(`\s*\(часть\s+(\d+)/(\d+)\)\s*$`)

// documentExtensions are the source-document extensions stripped during
// title normalisation, with and without the leading dot.
var documentExtensions = []string{
	".pdf", ".docx", ".doc", ".xlsx", ".xls", ".pptx", ".ppt",
}

// collapsible matches runs of whitespace, underscores and hyphens.
var collapsible = regexp.MustCompile(`[\s_-]+`)

// TitleFromFileName derives a material title from a source file name:
// the extension is stripped and underscores/hyphens become spaces.
func TitleFromFileName(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	base = collapsible.ReplaceAllString(base, " ")
	return strings.TrimSpace(base)
}

// PartTitle builds the title for chunk i of n. With a single chunk the
// base title is used unchanged.
func PartTitle(base string, i, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s (часть %d/%d)", base, i, n)
}

// NormalizeTitle reduces a material title to its normalised form: the
// part suffix and any known document extension are stripped,
// whitespace/underscores/hyphens collapse to single spaces, and the
// result is trimmed and lower-cased. All chunks of one document share
// the same normalised title; it is the key that ties persisted records
// back to their source file. Matching on it is exact; the
// normalisation is the only fuzziness allowed.
func NormalizeTitle(title string) string {
	t := partSuffix.ReplaceAllString(title, "")
	lower := strings.ToLower(t)
	for _, ext := range documentExtensions {
		if strings.HasSuffix(lower, ext) {
			t = t[:len(t)-len(ext)]
			break
		}
	}
	t = collapsible.ReplaceAllString(t, " ")
	return strings.ToLower(strings.TrimSpace(t))
}

// DedupKey is the grouping key the deduplicator uses: the normalised
// title plus, for chunked records, the part discriminator. Repeated
// copies of the same part collapse into one group while distinct parts
// of one document never share a key, so deduplication cannot delete a
// surviving part.
func DedupKey(title string) string {
	if m := partSuffix.FindStringSubmatch(title); m != nil {
		return NormalizeTitle(title) + "\x00" + m[1] + "/" + m[2]
	}
	return NormalizeTitle(title)
}
