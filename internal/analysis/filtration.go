package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/openssl-sg-insights/mandos/internal/model"
)

// Rule is one declarative filtration rule. Empty fields are wildcards.
// Predicate and ObjectID are regular expressions matched against the whole
// field.
type Rule struct {
	// Action is "keep" or "drop".
	Action     string   `toml:"action" yaml:"action"`
	DataSource string   `toml:"data_source" yaml:"data_source"`
	Predicate  string   `toml:"predicate" yaml:"predicate"`
	ObjectID   string   `toml:"object_id" yaml:"object_id"`
	MinWeight  *float64 `toml:"min_weight" yaml:"min_weight"`
}

// ruleFile is the on-disk shape of a filtration document.
type ruleFile struct {
	Rules []Rule `toml:"rules" yaml:"rules"`
}

// Filtration applies an ordered rule list to a hit table. Drop rules remove
// matching hits. If any keep rules exist, a hit must additionally match at
// least one of them to survive.
type Filtration struct {
	rules      []Rule
	predicates []*regexp.Regexp
	objects    []*regexp.Regexp
}

// LoadFiltration reads a rule file, choosing the codec by extension
// (.toml, .yaml, or .yml).
func LoadFiltration(path string) (*Filtration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		return ParseTOMLRules(raw)
	case ".yaml", ".yml":
		return ParseYAMLRules(raw)
	default:
		return nil, fmt.Errorf("unsupported rules format %q", ext)
	}
}

// ParseTOMLRules parses a TOML rule document.
func ParseTOMLRules(raw []byte) (*Filtration, error) {
	var doc ruleFile
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse toml rules: %w", err)
	}
	return newFiltration(doc.Rules)
}

// ParseYAMLRules parses a YAML rule document.
func ParseYAMLRules(raw []byte) (*Filtration, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml rules: %w", err)
	}
	return newFiltration(doc.Rules)
}

func newFiltration(rules []Rule) (*Filtration, error) {
	f := &Filtration{
		rules:      rules,
		predicates: make([]*regexp.Regexp, len(rules)),
		objects:    make([]*regexp.Regexp, len(rules)),
	}
	for i, r := range rules {
		switch strings.ToLower(r.Action) {
		case "keep", "drop":
		default:
			return nil, fmt.Errorf("rule %d: unknown action %q", i+1, r.Action)
		}
		var err error
		if r.Predicate != "" {
			f.predicates[i], err = compileWhole(r.Predicate)
			if err != nil {
				return nil, fmt.Errorf("rule %d: predicate: %w", i+1, err)
			}
		}
		if r.ObjectID != "" {
			f.objects[i], err = compileWhole(r.ObjectID)
			if err != nil {
				return nil, fmt.Errorf("rule %d: object_id: %w", i+1, err)
			}
		}
	}
	return f, nil
}

// compileWhole anchors the pattern so rules match whole fields, not substrings.
func compileWhole(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}

// Rules returns the parsed rule list.
func (f *Filtration) Rules() []Rule {
	return f.rules
}

// Apply returns the hits that survive the rule list. The input is not
// mutated.
func (f *Filtration) Apply(hits []model.Hit) []model.Hit {
	hasKeep := false
	for _, r := range f.rules {
		if strings.EqualFold(r.Action, "keep") {
			hasKeep = true
			break
		}
	}

	out := make([]model.Hit, 0, len(hits))
	for _, h := range hits {
		dropped := false
		kept := !hasKeep
		for i, r := range f.rules {
			if !f.matches(i, h) {
				continue
			}
			if strings.EqualFold(r.Action, "drop") {
				dropped = true
				break
			}
			kept = true
		}
		if !dropped && kept {
			out = append(out, h)
		}
	}
	return out
}

func (f *Filtration) matches(i int, h model.Hit) bool {
	r := f.rules[i]
	if r.DataSource != "" && r.DataSource != h.DataSource {
		return false
	}
	if f.predicates[i] != nil && !f.predicates[i].MatchString(h.Predicate) {
		return false
	}
	if f.objects[i] != nil && !f.objects[i].MatchString(h.ObjectID) {
		return false
	}
	if r.MinWeight != nil && h.Weight < *r.MinWeight {
		return false
	}
	return true
}
