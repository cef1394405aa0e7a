// Package classify routes source files and titles into the two-level
// taxonomy. The mapping is an ordered, declarative rule table kept as
// data so it can be unit-tested exhaustively and extended without
// touching control flow.
package classify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/trenlab/kontent-cli/internal/core/domain"
)

//go:embed rules.yaml
var defaultRules []byte

// SectionRule refines the section within a station family.
type SectionRule struct {
	Section  string   `yaml:"section"`
	Keywords []string `yaml:"keywords"`
}

// Family groups the rules for one station keyword family.
type Family struct {
	Station  string        `yaml:"station"`
	Keywords []string      `yaml:"keywords"`
	Sections []SectionRule `yaml:"sections"`

	// Default is the section used when no section rule matches.
	Default string `yaml:"default"`
}

// Rules is the full ordered rule table.
type Rules struct {
	Default  domain.TaxonomyPath `yaml:"default"`
	Families []Family            `yaml:"families"`
}

// ParseRules decodes and validates a YAML rule table.
func ParseRules(data []byte) (Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parsing rules: %w", err)
	}
	if rules.Default.Station == "" || rules.Default.Section == "" {
		return Rules{}, fmt.Errorf("%w: rule table needs a default station and section", domain.ErrInvalidInput)
	}
	for i, f := range rules.Families {
		if f.Station == "" || len(f.Keywords) == 0 {
			return Rules{}, fmt.Errorf("%w: family %d needs a station and keywords", domain.ErrInvalidInput, i)
		}
		if f.Default == "" {
			return Rules{}, fmt.Errorf("%w: family %q needs a default section", domain.ErrInvalidInput, f.Station)
		}
	}
	return rules, nil
}

// Classifier maps file names to taxonomy paths. It is a pure function
// over its rule table: no side effects, total over non-empty input.
type Classifier struct {
	rules Rules
}

// NewClassifier creates a classifier from the embedded default rules.
func NewClassifier() *Classifier {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		// The embedded table is validated by tests; a parse failure
		// here is a build defect.
		panic(fmt.Sprintf("embedded rule table invalid: %v", err))
	}
	return &Classifier{rules: rules}
}

// NewClassifierFromFile creates a classifier from a YAML rule file.
func NewClassifierFromFile(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, err
	}
	return &Classifier{rules: rules}, nil
}

// Rules returns the classifier's rule table.
func (c *Classifier) Rules() Rules {
	return c.rules
}

// Classify maps a file name to a taxonomy path. The first matching
// family wins; within a family the first matching section rule wins,
// falling back to the family default. Files matching no family route to
// the catch-all path, so classification never fails.
func (c *Classifier) Classify(fileName string) domain.TaxonomyPath {
	lower := strings.ToLower(fileName)
	folded := foldSeparators(lower)

	for _, family := range c.rules.Families {
		if !matchesAny(lower, folded, family.Keywords) {
			continue
		}
		for _, rule := range family.Sections {
			if matchesAny(lower, folded, rule.Keywords) {
				return domain.TaxonomyPath{Station: family.Station, Section: rule.Section}
			}
		}
		return domain.TaxonomyPath{Station: family.Station, Section: family.Default}
	}
	return c.rules.Default
}

// foldSeparators turns underscores and hyphens into spaces so rules
// match regardless of the file name's separator convention.
func foldSeparators(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ReplaceAll(s, "-", " ")
}

// matchesAny reports whether any keyword occurs in the raw or folded
// form of the name.
func matchesAny(lower, folded string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) || strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
