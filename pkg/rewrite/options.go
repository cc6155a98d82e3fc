package rewrite

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
)

// Sentinel errors for option validation.
var (
	ErrInvalidScale        = errors.New("default scale must be between 0 and 64")
	ErrInvalidRoundingMode = errors.New("unknown rounding mode")
	ErrInvalidWrapperName  = errors.New("wrapper name is not a valid identifier")
)

// Java imports the produced code depends on.
const (
	importRoundingMode = "java.math.RoundingMode"
	importBigDecimal   = "java.math.BigDecimal"
)

var roundingModes = []string{"UP", "DOWN", "CEILING", "FLOOR", "HALF_UP", "HALF_DOWN", "HALF_EVEN"}

// Wrappers names the legacy helper methods recognized by the catalog.
type Wrappers struct {
	Precision string `mapstructure:"precision" json:"precision" yaml:"precision"`
	Rescale   string `mapstructure:"rescale" json:"rescale" yaml:"rescale"`
	Add       string `mapstructure:"add" json:"add" yaml:"add"`
	Subtract  string `mapstructure:"subtract" json:"subtract" yaml:"subtract"`
	Multiply  string `mapstructure:"multiply" json:"multiply" yaml:"multiply"`
	Divide    string `mapstructure:"divide" json:"divide" yaml:"divide"`
	Truthy    string `mapstructure:"truthy" json:"truthy" yaml:"truthy"`
	Negate    string `mapstructure:"negate" json:"negate" yaml:"negate"`
	Equal     string `mapstructure:"equal" json:"equal" yaml:"equal"`
}

func (w Wrappers) names() []string {
	return []string{w.Precision, w.Rescale, w.Add, w.Subtract, w.Multiply, w.Divide, w.Truthy, w.Negate, w.Equal}
}

// Options configures the rule catalog.
type Options struct {
	// DefaultScale is attached when a precision wrapper gives no scale.
	DefaultScale int
	// RoundingMode is the java.math.RoundingMode constant used for
	// rescaling and division.
	RoundingMode string
	Wrappers     Wrappers
	// HelperReceivers are qualifiers under which wrapper calls are still
	// recognized, e.g. "BigDecimalHelper". Unqualified calls always are.
	HelperReceivers []string
	// IdentityConstants are expressions denoting decimal zero.
	IdentityConstants []string
	// TypeReplacements maps a legacy type name to the qualified name of
	// its standard equivalent.
	TypeReplacements map[string]string
	// Rename enables the identifier renaming categories.
	Rename bool
}

// DefaultOptions returns the built-in catalog configuration.
func DefaultOptions() Options {
	return Options{
		DefaultScale: 2,
		RoundingMode: "HALF_UP",
		Wrappers: Wrappers{
			Precision: "createDecimal",
			Rescale:   "setScale",
			Add:       "plus",
			Subtract:  "minus",
			Multiply:  "multiply",
			Divide:    "divide",
			Truthy:    "isTrue",
			Negate:    "not",
			Equal:     "eq",
		},
		IdentityConstants: []string{"BigDecimal.ZERO", "ZERO", "java.math.BigDecimal.ZERO"},
		TypeReplacements: map[string]string{
			"WebMapAtomicReference": "java.util.concurrent.atomic.AtomicReference",
		},
		Rename: true,
	}
}

// Validate checks the options for values the catalog cannot honor.
func (o Options) Validate() error {
	if o.DefaultScale < 0 || o.DefaultScale > 64 {
		return fmt.Errorf("%w: %d", ErrInvalidScale, o.DefaultScale)
	}

	if !slices.Contains(roundingModes, o.RoundingMode) {
		return fmt.Errorf("%w: %q", ErrInvalidRoundingMode, o.RoundingMode)
	}

	for _, name := range o.Wrappers.names() {
		if !cst.IsIdentifier(name) {
			return fmt.Errorf("%w: %q", ErrInvalidWrapperName, name)
		}
	}

	for legacy, standard := range o.TypeReplacements {
		if !cst.IsIdentifier(legacy) || !cst.IsIdentifier(cst.SimpleName(standard)) {
			return fmt.Errorf("%w: %q -> %q", ErrInvalidWrapperName, legacy, standard)
		}
	}

	return nil
}

func (o Options) clone() Options {
	out := o
	out.HelperReceivers = slices.Clone(o.HelperReceivers)
	out.IdentityConstants = slices.Clone(o.IdentityConstants)
	out.TypeReplacements = maps.Clone(o.TypeReplacements)

	return out
}
