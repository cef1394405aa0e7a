package classify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/trenlab/kontent-cli/internal/core/domain"
)

//go:embed overrides.yaml
var defaultOverrides []byte

// Override pins titles matching Key to a taxonomy path.
type Override struct {
	Key     string `yaml:"key"`
	Station string `yaml:"station"`
	Section string `yaml:"section"`
}

// Path returns the override's target taxonomy path.
func (o Override) Path() domain.TaxonomyPath {
	return domain.TaxonomyPath{Station: o.Station, Section: o.Section}
}

// OverrideTable is the hand-curated placement override table. It is a
// flat keyword dictionary with longest-match-wins resolution, kept
// deliberately simple so it stays auditable.
type OverrideTable struct {
	entries []Override
}

type overrideFile struct {
	Overrides []Override `yaml:"overrides"`
}

// ParseOverrides decodes and validates a YAML override table. Keys are
// normalised the same way dedup keys are, so matching compares like
// with like.
func ParseOverrides(data []byte) (*OverrideTable, error) {
	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}
	entries := make([]Override, 0, len(file.Overrides))
	for i, o := range file.Overrides {
		if o.Key == "" || o.Station == "" || o.Section == "" {
			return nil, fmt.Errorf("%w: override %d needs key, station and section", domain.ErrInvalidInput, i)
		}
		o.Key = domain.NormalizeTitle(o.Key)
		entries = append(entries, o)
	}
	return &OverrideTable{entries: entries}, nil
}

// DefaultOverrides returns the embedded override table.
func DefaultOverrides() *OverrideTable {
	table, err := ParseOverrides(defaultOverrides)
	if err != nil {
		panic(fmt.Sprintf("embedded override table invalid: %v", err))
	}
	return table
}

// OverridesFromFile loads an override table from a YAML file.
func OverridesFromFile(path string) (*OverrideTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides file: %w", err)
	}
	return ParseOverrides(data)
}

// Len returns the number of override entries.
func (t *OverrideTable) Len() int {
	return len(t.entries)
}

// Match finds the override for a normalised title. A key matches when
// it contains the title or the title contains it. Among matches the
// longest key wins; among equal-length keys the first declared wins
// unless they point at different targets, in which case the match is
// ambiguous and the caller must leave the record untouched.
func (t *OverrideTable) Match(normTitle string) (*Override, error) {
	if normTitle == "" {
		return nil, nil
	}

	var matches []*Override
	for i := range t.entries {
		o := &t.entries[i]
		if contains(normTitle, o.Key) {
			matches = append(matches, o)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	best := matches[0]
	for _, o := range matches[1:] {
		if len(o.Key) > len(best.Key) {
			best = o
		}
	}
	// First-declared-wins among equal-length keys, unless they point at
	// different targets.
	for _, o := range matches {
		if o != best && len(o.Key) == len(best.Key) && o.Path() != best.Path() {
			return nil, fmt.Errorf("%w: %q matches %q and %q", domain.ErrAmbiguousOverride, normTitle, best.Key, o.Key)
		}
	}
	return best, nil
}

// contains reports substring containment in either direction.
func contains(title, key string) bool {
	return strings.Contains(title, key) || strings.Contains(key, title)
}
