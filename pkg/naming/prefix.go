package naming

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PrefixRule maps a legacy prefix to the identifier kind it denotes.
type PrefixRule struct {
	// Prefix is the literal leading text, e.g. "gi" or "adc_".
	Prefix string
	// Kind is the role the prefix encodes.
	Kind Kind
	// Suggested is prepended to the stripped remainder unless the remainder
	// already names something more specific. Empty means strip only.
	Suggested string
	// Specific lists terms that suppress the suggested word.
	Specific []string
	// Abbreviations of Suggested that are expanded in place instead of
	// receiving the suggested word in front of them.
	Abbreviations []string
	// Boundary requires the character after a non-underscore prefix to be
	// upper case or an underscore, so "gist" is not read as "gi"+"st".
	Boundary bool
	// Roles restricts the declaration positions the rule applies to.
	Roles []Role
}

var variableRoles = []Role{RoleField, RoleParameter}

// DefaultPrefixRules returns the built-in prefix table in priority order.
// Longer and more specific prefixes come first.
func DefaultPrefixRules() []PrefixRule {
	codeWords := []string{"codigo", "code", "id"}
	valueWords := []string{"valor", "value", "taxa", "rate"}

	return []PrefixRule{
		{Prefix: "gdc", Kind: KindGlobalDecimal, Suggested: "value", Specific: valueWords, Boundary: true, Roles: variableRoles},
		{Prefix: "gi", Kind: KindGlobalInteger, Suggested: "codigo", Specific: codeWords, Abbreviations: []string{"cod", "codi"}, Boundary: true, Roles: variableRoles},
		{Prefix: "gl", Kind: KindGlobalLong, Suggested: "codigo", Specific: codeWords, Abbreviations: []string{"cod", "codi"}, Boundary: true, Roles: variableRoles},
		{Prefix: "gs", Kind: KindGlobalString, Boundary: true, Roles: variableRoles},
		{Prefix: "adc_", Kind: KindArgumentDecimal, Roles: variableRoles},
		{Prefix: "ao_", Kind: KindArgumentObject, Roles: variableRoles},
		{Prefix: "as_", Kind: KindArgumentString, Roles: variableRoles},
		{Prefix: "ab_", Kind: KindArgumentBoolean, Roles: variableRoles},
		{Prefix: "al_", Kind: KindArgumentLong, Roles: variableRoles},
		{Prefix: "ai_", Kind: KindArgumentInteger, Roles: variableRoles},
		{Prefix: "Iuo_", Kind: KindInterfaceOfUserObject, Roles: []Role{RoleType}},
		{Prefix: "In_", Kind: KindInterface, Roles: []Role{RoleType}},
		{Prefix: "uo_", Kind: KindUserObject, Roles: []Role{RoleType}},
		{Prefix: "str_", Kind: KindStructure, Roles: []Role{RoleType}},
		{Prefix: "dfc_", Kind: KindFunctionOnDatasource, Roles: []Role{RoleType}},
		{Prefix: "n_", Kind: KindNonVisualObject, Roles: []Role{RoleType}},
		{Prefix: "s_", Kind: KindStructure, Roles: []Role{RoleType}},
	}
}

// AppliesTo reports whether the rule is active for role.
func (pr PrefixRule) AppliesTo(role Role) bool {
	return len(pr.Roles) == 0 || slices.Contains(pr.Roles, role)
}

// Strip returns the text after the prefix when name carries it.
func (pr PrefixRule) Strip(name string) (string, bool) {
	if pr.Prefix == "" || !strings.HasPrefix(name, pr.Prefix) {
		return "", false
	}

	rest := name[len(pr.Prefix):]
	if pr.Boundary && rest != "" {
		r, _ := utf8.DecodeRuneInString(rest)
		if r != '_' && !unicode.IsUpper(r) {
			return "", false
		}
	}

	return strings.TrimLeft(rest, "_"), true
}

// compose attaches the suggested word to the stripped words of a name.
func (pr PrefixRule) compose(words []string) []string {
	if pr.Suggested == "" || len(words) == 0 {
		return words
	}

	for _, w := range words {
		lw := strings.ToLower(w)
		if lw == pr.Suggested || slices.Contains(pr.Specific, lw) {
			return words
		}
	}

	if slices.Contains(pr.Abbreviations, strings.ToLower(words[0])) {
		out := slices.Clone(words)
		out[0] = pr.Suggested

		return out
	}

	return append([]string{pr.Suggested}, words...)
}

// Classification describes how an identifier was recognized.
type Classification struct {
	Kind      Kind
	Prefix    string
	Suggested string
	Remainder string
}

func classify(rules []PrefixRule, name string, role Role) (PrefixRule, string, bool) {
	for _, rule := range rules {
		if !rule.AppliesTo(role) {
			continue
		}

		if rest, ok := rule.Strip(name); ok {
			return rule, rest, true
		}
	}

	return PrefixRule{}, "", false
}
