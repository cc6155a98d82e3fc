package naming

import (
	"errors"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Sentinel errors for name translation.
var (
	// ErrPrefixOnly is returned when a legacy prefix consumes the whole name.
	// The name is returned unchanged alongside it.
	ErrPrefixOnly = errors.New("identifier consists only of a legacy prefix")
)

// Method role prefixes in priority order.
var methodRolePrefixes = []struct {
	legacy string
	target string
}{
	{legacy: "of_get_", target: "get"},
	{legacy: "of_set_", target: "set"},
	{legacy: "of_is_", target: "is"},
	{legacy: "of_", target: ""},
}

// maxNameLen stops Translate when a self-referential vocabulary keeps
// growing a name.
const maxNameLen = 256

var legacyTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Config holds the immutable tables a Translator is built from.
type Config struct {
	Prefixes []PrefixRule
	Terms    map[string]string
	Methods  map[string]string
}

// DefaultConfig returns the built-in prefix rules, vocabulary and method table.
func DefaultConfig() Config {
	return Config{
		Prefixes: DefaultPrefixRules(),
		Terms:    maps.Clone(DefaultTerms),
		Methods:  maps.Clone(DefaultMethods),
	}
}

// Translator maps legacy identifiers to Java naming conventions. It is
// immutable and safe for concurrent use.
type Translator struct {
	prefixes []PrefixRule
	dict     Dictionary
	methods  map[string]string
}

// NewTranslator builds a Translator from cfg. The tables are copied.
func NewTranslator(cfg Config) *Translator {
	return &Translator{
		prefixes: slices.Clone(cfg.Prefixes),
		dict:     NewDictionary(cfg.Terms),
		methods:  maps.Clone(cfg.Methods),
	}
}

// Dictionary returns the translator's vocabulary.
func (t *Translator) Dictionary() Dictionary {
	return t.dict
}

// Classify reports the prefix rule that recognizes name in role.
// An unrecognized name yields KindUnknown and false.
func (t *Translator) Classify(name string, role Role) (Classification, bool) {
	rule, rest, ok := classify(t.prefixes, name, role)
	if !ok {
		return Classification{Kind: KindUnknown, Remainder: name}, false
	}

	return Classification{
		Kind:      rule.Kind,
		Prefix:    rule.Prefix,
		Suggested: rule.Suggested,
		Remainder: rest,
	}, true
}

// IsLegacy reports whether name follows the legacy convention for role and
// is therefore a rename candidate.
func (t *Translator) IsLegacy(name string, role Role) bool {
	switch role {
	case RoleType:
		if legacyTypePattern.MatchString(name) {
			return true
		}
	case RoleMethod:
		if _, ok := t.methods[name]; ok {
			return true
		}

		return strings.HasPrefix(name, "of_")
	case RoleField, RoleParameter:
	}

	_, _, ok := classify(t.prefixes, name, role)

	return ok
}

// Translate returns the Java-convention form of name in role. The result is
// stable: translating it again returns it unchanged. Empty input is returned
// as is. A name that is nothing but a prefix yields ErrPrefixOnly.
func (t *Translator) Translate(name string, role Role) (string, error) {
	if name == "" {
		return name, nil
	}

	cur := name
	seen := map[string]struct{}{cur: {}}

	for {
		next, err := t.translateOnce(cur, role)
		if err != nil {
			if cur == name {
				return name, err
			}

			return cur, nil
		}

		if _, cycle := seen[next]; cycle || len(next) > maxNameLen {
			return cur, nil
		}

		seen[next] = struct{}{}
		cur = next
	}
}

func (t *Translator) translateOnce(name string, role Role) (string, error) {
	if role == RoleMethod {
		return t.translateMethod(name)
	}

	rule, rest, ok := classify(t.prefixes, name, role)
	if !ok {
		return t.reshape(name, role), nil
	}

	words := splitWords(rest)
	if len(words) == 0 {
		return name, ErrPrefixOnly
	}

	words = rule.compose(words)

	return strings.Join(t.dict.apply(caseFor(role, words), 0), ""), nil
}

func (t *Translator) translateMethod(name string) (string, error) {
	if mapped, ok := t.methods[name]; ok {
		return mapped, nil
	}

	for _, rp := range methodRolePrefixes {
		rest, found := strings.CutPrefix(name, rp.legacy)
		if !found {
			continue
		}

		words := splitWords(rest)
		if len(words) == 0 {
			return name, ErrPrefixOnly
		}

		if rp.target == "" {
			return strings.Join(t.dict.apply(camelWords(words), 0), ""), nil
		}

		composed := append([]string{rp.target}, pascalWords(words)...)

		return strings.Join(t.dict.apply(composed, 1), ""), nil
	}

	return t.reshape(name, RoleMethod), nil
}

// reshape handles names without a recognized prefix. Only underscore
// delimited names change case; everything else keeps its humps.
func (t *Translator) reshape(name string, role Role) string {
	words := splitWords(name)
	if len(words) == 0 {
		return name
	}

	if strings.Contains(name, "_") {
		words = caseFor(role, words)
	}

	return strings.Join(t.dict.apply(words, 0), "")
}

func caseFor(role Role, words []string) []string {
	if role == RoleType {
		return pascalWords(words)
	}

	return camelWords(words)
}
