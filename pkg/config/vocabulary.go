package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
)

// Vocabulary errors.
var (
	ErrInvalidVocabulary = errors.New("invalid vocabulary file")
	ErrUnknownKind       = errors.New("unknown identifier kind")
)

//go:embed vocabulary.schema.json
var vocabularySchema []byte

// Vocabulary is a project-specific extension of the naming tables.
type Vocabulary struct {
	Terms    map[string]string `yaml:"terms"`
	Methods  map[string]string `yaml:"methods"`
	Prefixes []PrefixEntry     `yaml:"prefixes"`
}

// PrefixEntry is the file form of a naming.PrefixRule.
type PrefixEntry struct {
	Prefix        string   `yaml:"prefix"`
	Kind          string   `yaml:"kind"`
	Suggested     string   `yaml:"suggested"`
	Specific      []string `yaml:"specific"`
	Abbreviations []string `yaml:"abbreviations"`
	Boundary      bool     `yaml:"boundary"`
	Roles         []string `yaml:"roles"`
}

// LoadVocabulary reads and validates a vocabulary file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	vocab, err := ParseVocabulary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return vocab, nil
}

// ParseVocabulary validates YAML data against the vocabulary schema and
// decodes it.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidVocabulary, err)
	}

	if doc == nil {
		doc = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(vocabularySchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidVocabulary, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidVocabulary, strings.Join(msgs, "; "))
	}

	var vocab Vocabulary
	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidVocabulary, err)
	}

	return &vocab, nil
}

// PrefixRules converts the prefix entries in file order.
func (v *Vocabulary) PrefixRules() ([]naming.PrefixRule, error) {
	rules := make([]naming.PrefixRule, 0, len(v.Prefixes))

	for _, p := range v.Prefixes {
		kind, ok := naming.ParseKind(p.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: %q for prefix %q", ErrUnknownKind, p.Kind, p.Prefix)
		}

		roles := make([]naming.Role, 0, len(p.Roles))
		for _, name := range p.Roles {
			// The schema restricts names to known roles.
			role, _ := naming.ParseRole(name)
			roles = append(roles, role)
		}

		rules = append(rules, naming.PrefixRule{
			Prefix:        p.Prefix,
			Kind:          kind,
			Suggested:     p.Suggested,
			Specific:      p.Specific,
			Abbreviations: p.Abbreviations,
			Boundary:      p.Boundary,
			Roles:         roles,
		})
	}

	return rules, nil
}
