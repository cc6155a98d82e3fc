// Package naming classifies legacy PowerBuilder-style identifiers and
// translates them to Java naming conventions.
package naming

// Kind is the role of a legacy identifier as recognized from its prefix.
type Kind int

// Identifier kinds.
const (
	KindUnknown Kind = iota
	KindGlobalInteger
	KindGlobalLong
	KindGlobalString
	KindGlobalDecimal
	KindArgumentObject
	KindArgumentString
	KindArgumentDecimal
	KindArgumentBoolean
	KindArgumentLong
	KindArgumentInteger
	KindUserObject
	KindStructure
	KindNonVisualObject
	KindFunctionOnDatasource
	KindInterface
	KindInterfaceOfUserObject
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindGlobalInteger:         "global-integer",
	KindGlobalLong:            "global-long",
	KindGlobalString:          "global-string",
	KindGlobalDecimal:         "global-decimal",
	KindArgumentObject:        "argument-object",
	KindArgumentString:        "argument-string",
	KindArgumentDecimal:       "argument-decimal",
	KindArgumentBoolean:       "argument-boolean",
	KindArgumentLong:          "argument-long",
	KindArgumentInteger:       "argument-integer",
	KindUserObject:            "user-object",
	KindStructure:             "structure",
	KindNonVisualObject:       "non-visual-object",
	KindFunctionOnDatasource:  "function-on-datasource",
	KindInterface:             "interface",
	KindInterfaceOfUserObject: "interface-of-user-object",
}

// String returns the kebab-case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return kindNames[KindUnknown]
}

// ParseKind maps a kebab-case kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}

	return KindUnknown, false
}

// Structural reports whether the kind names a type rather than a variable.
func (k Kind) Structural() bool {
	return k >= KindUserObject
}

// Role is the declaration position an identifier occupies. It selects the
// casing convention and which prefix rules apply.
type Role int

// Declaration roles.
const (
	RoleType Role = iota
	RoleMethod
	RoleField
	RoleParameter
)

var roleNames = [...]string{"type", "method", "field", "parameter"}

// String returns the lower-case role name.
func (r Role) String() string {
	if int(r) < len(roleNames) && r >= 0 {
		return roleNames[r]
	}

	return "unknown"
}

// ParseRole maps a role name back to its Role.
func ParseRole(name string) (Role, bool) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), true
		}
	}

	return RoleType, false
}
