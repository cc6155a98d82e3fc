// Package rewrite removes legacy helper wrappers from migrated Java code and
// renames legacy identifiers, preserving decimal scale and rounding.
package rewrite

// Category groups rules that run together in one pass.
type Category int

// Categories in execution order.
const (
	CategoryPrecision Category = iota
	CategoryMath
	CategoryBoolean
	CategoryTypeWrapper
	CategoryRenameType
	CategoryRenameMethod
	CategoryRenameField
	CategoryRenameParameter
)

// Categories lists every category in the order ApplyAll runs them.
var Categories = []Category{
	CategoryPrecision,
	CategoryMath,
	CategoryBoolean,
	CategoryTypeWrapper,
	CategoryRenameType,
	CategoryRenameMethod,
	CategoryRenameField,
	CategoryRenameParameter,
}

var categoryNames = [...]string{
	"precision", "math", "boolean", "type-wrapper",
	"rename-type", "rename-method", "rename-field", "rename-parameter",
}

// String returns the category name.
func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}

	return "unknown"
}

// ParseCategory maps a category name back to its value.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}

	return 0, false
}
