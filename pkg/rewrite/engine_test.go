package rewrite_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

type fixture struct {
	parser *cst.Parser
	engine *rewrite.Engine
}

func newFixture(t *testing.T, opts rewrite.Options) fixture {
	t.Helper()

	parser, err := cst.NewParser()
	require.NoError(t, err)

	engine, err := rewrite.NewEngine(parser, opts, naming.NewTranslator(naming.DefaultConfig()), nil)
	require.NoError(t, err)

	return fixture{parser: parser, engine: engine}
}

func (f fixture) run(t *testing.T, src string) (string, *rewrite.Report) {
	t.Helper()

	tree, err := f.parser.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	rep, err := f.engine.ApplyAll(context.Background(), tree)
	require.NoError(t, err)

	return tree.Render(), rep
}

func method(body string) string {
	return "package p;\n\nimport java.math.BigDecimal;\n\nclass Calc {\n" +
		"    BigDecimal calc(BigDecimal a, BigDecimal b, BigDecimal total, boolean c) {\n" +
		body +
		"        return total;\n    }\n}\n"
}

func TestApplyAll_PrecisionWrapKeepsIdentityConstant(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	src := "package p;\n\nimport java.math.BigDecimal;\n\nclass Calc {\n" +
		"    BigDecimal z = createDecimal(ZERO, 2);\n}\n"

	got, rep := f.run(t, src)

	want := "package p;\n\nimport java.math.BigDecimal;\nimport java.math.RoundingMode;\n\nclass Calc {\n" +
		"    BigDecimal z = ZERO.setScale(2, RoundingMode.HALF_UP);\n}\n"

	assert.Equal(t, want, got)
	assert.Equal(t, 1, rep.TransformationsApplied)
	assert.Equal(t, 1, rep.FilesProcessed)
	assert.Equal(t, 1, rep.ByCategory["precision"])
	assert.True(t, rep.Success)
	assert.Empty(t, rep.Warnings)
}

func TestApplyAll_PrecisionWrapDefaultScale(t *testing.T) {
	t.Parallel()

	opts := rewrite.DefaultOptions()
	opts.DefaultScale = 4
	f := newFixture(t, opts)

	got, rep := f.run(t, method("        total = createDecimal(a);\n"))

	assert.Contains(t, got, "total = a.setScale(4, RoundingMode.HALF_UP);")
	assert.Equal(t, 1, rep.TransformationsApplied)
}

func TestApplyAll_PrecisionWrapLiteral(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	got, _ := f.run(t, method("        total = createDecimal(1.50, 2);\n        a = createDecimal(0, 2);\n"))

	assert.Contains(t, got, `total = new BigDecimal("1.50").setScale(2, RoundingMode.HALF_UP);`)
	assert.Contains(t, got, "a = BigDecimal.ZERO.setScale(2, RoundingMode.HALF_UP);")
}

func TestApplyAll_NestedWrappersComposeInOnePass(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	got, rep := f.run(t, method("        c = isTrue(divide(a, b));\n"))

	assert.Contains(t, got, "c = a.divide(b, RoundingMode.HALF_UP);")
	assert.Contains(t, got, "import java.math.RoundingMode;")
	assert.Equal(t, 2, rep.TransformationsApplied)
	assert.Equal(t, 1, rep.ByCategory["math"])
	assert.Equal(t, 1, rep.ByCategory["boolean"])
}

func TestApplyAll_DivideAlwaysCarriesRoundingMode(t *testing.T) {
	t.Parallel()

	opts := rewrite.DefaultOptions()
	opts.RoundingMode = "HALF_EVEN"
	f := newFixture(t, opts)

	got, _ := f.run(t, method("        total = divide(a, b);\n        setScale(total, divide(total, b));\n"))

	assert.Contains(t, got, "total = a.divide(b, RoundingMode.HALF_EVEN);")
	assert.Contains(t, got, "total = total.divide(b, RoundingMode.HALF_EVEN);")
	assert.NotContains(t, got, "divide(a, b);")
}

func TestApplyAll_ArithmeticOperators(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	got, rep := f.run(t, method(
		"        total = plus(a, b);\n"+
			"        total = minus(a, b);\n"+
			"        total = multiply(1.5, b);\n"))

	assert.Contains(t, got, "total = a.add(b);")
	assert.Contains(t, got, "total = a.subtract(b);")
	assert.Contains(t, got, `total = new BigDecimal("1.5").multiply(b);`)
	assert.Equal(t, 3, rep.ByCategory["math"])
}

func TestApplyAll_RescaleAssignRequiresIdenticalTarget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	got, rep := f.run(t, method("        setScale(total, plus(total, a));\n"))
	assert.Contains(t, got, "        total = total.add(a);\n")
	assert.Equal(t, 1, rep.TransformationsApplied)

	src := method("        setScale(total, plus(b, a));\n")
	got, rep = f.run(t, src)
	assert.Equal(t, src, got)
	assert.Zero(t, rep.TransformationsApplied)
	assert.Zero(t, rep.FilesProcessed)
}

func TestApplyAll_Parenthesization(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	got, _ := f.run(t, method(
		"        c = isTrue(c || b == null) && c;\n"+
			"        c = not(a == b);\n"+
			"        c = not(c);\n"))

	assert.Contains(t, got, "c = (c || b == null) && c;")
	assert.Contains(t, got, "c = !(a == b);")
	assert.Contains(t, got, "c = !c;")
}

func TestApplyAll_EqualityUnwrap(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	got, _ := f.run(t, method("        c = eq(a, b);\n        c = eq(null, b);\n"))

	assert.Contains(t, got, "c = a.equals(b);")
	assert.Contains(t, got, "c = eq(null, b);")
}

func TestApplyAll_SignedLiteralReceivers(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	got, rep := f.run(t, method(
		"        total = createDecimal(-1, 2);\n"+
			"        total = multiply(-0.5, b);\n"+
			"        total = plus(+2, b);\n"+
			"        total = minus(-0, b);\n"))

	assert.Contains(t, got, `total = new BigDecimal("-1").setScale(2, RoundingMode.HALF_UP);`)
	assert.Contains(t, got, `total = new BigDecimal("-0.5").multiply(b);`)
	assert.Contains(t, got, `total = new BigDecimal("2").add(b);`)
	assert.Contains(t, got, "total = BigDecimal.ZERO.subtract(b);")
	assert.Equal(t, 4, rep.TransformationsApplied)
	assert.Empty(t, rep.Warnings)
}

func TestApplyAll_PrimitiveReceiversAreRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	tests := []struct {
		name    string
		body    string
		operand string
	}{
		{"primitive cast", "        total = createDecimal((long) 3);\n", "(long) 3"},
		{"boolean literal", "        total = plus(true, b);\n", "true"},
		{"negated variable", "        total = multiply(-x, b);\n", "-x"},
		{"increment", "        total = divide(i++, b);\n", "i++"},
		{"signed hex literal", "        total = createDecimal(-0x10, 2);\n", "-0x10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := method(tt.body)
			got, rep := f.run(t, src)

			assert.Equal(t, src, got)
			assert.Zero(t, rep.TransformationsApplied)
			require.Len(t, rep.Warnings, 1)
			assert.Contains(t, rep.Warnings[0], tt.operand)
		})
	}
}

func TestApplyAll_EqualitySkipsPrimitiveOperands(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	src := method(
		"        c = eq(true, c);\n" +
			"        c = eq('x', b);\n" +
			"        c = eq(-1, b);\n" +
			"        c = eq((int) a.intValue(), b);\n")
	got, rep := f.run(t, src)

	assert.Equal(t, src, got)
	assert.Zero(t, rep.TransformationsApplied)
	assert.Empty(t, rep.Warnings)
}

func TestApplyAll_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	first, rep := f.run(t, method(
		"        total = createDecimal(plus(a, b), 2);\n"+
			"        setScale(total, minus(total, b));\n"+
			"        c = isTrue(eq(a, b));\n"))
	require.Positive(t, rep.TransformationsApplied)

	second, rep := f.run(t, first)
	assert.Equal(t, first, second)
	assert.Zero(t, rep.TransformationsApplied)
	assert.Empty(t, rep.Warnings)
}

func TestApplyAll_HelperReceivers(t *testing.T) {
	t.Parallel()

	opts := rewrite.DefaultOptions()
	opts.HelperReceivers = []string{"BigDecimalHelper"}
	f := newFixture(t, opts)

	got, _ := f.run(t, method(
		"        total = BigDecimalHelper.plus(a, b);\n"+
			"        total = other.plus(a, b);\n"))

	assert.Contains(t, got, "total = a.add(b);")
	assert.Contains(t, got, "total = other.plus(a, b);")
}

func TestApplyAll_LocallyDeclaredHelperIsKept(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	src := "package p;\n\nclass Calc {\n" +
		"    int plus(int x, int y) {\n        return x + y;\n    }\n\n" +
		"    int twice(int x) {\n        return plus(x, x);\n    }\n}\n"

	got, rep := f.run(t, src)
	assert.Equal(t, src, got)
	assert.Zero(t, rep.TransformationsApplied)
}

func TestApplyAll_UnconstructibleBecomesWarning(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	src := method("        isTrue(c);\n        total = createDecimal(null);\n")
	got, rep := f.run(t, src)

	assert.Equal(t, src, got)
	assert.Zero(t, rep.TransformationsApplied)
	require.Len(t, rep.Warnings, 2)
	assert.Contains(t, rep.Warnings[0], "precision-wrap")
	assert.Contains(t, rep.Warnings[0], "null")
	assert.Contains(t, rep.Warnings[1], "statement expression")
	assert.True(t, rep.Success)
}

func TestApplyAll_TypeWrapper(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	src := "package p;\n\nimport com.legacy.WebMapAtomicReference;\n\nclass Holder {\n" +
		"    WebMapAtomicReference<String> ref = new WebMapAtomicReference<>();\n}\n"

	got, rep := f.run(t, src)

	assert.NotContains(t, got, "WebMapAtomicReference")
	assert.Contains(t, got, "import java.util.concurrent.atomic.AtomicReference;")
	assert.Contains(t, got, "AtomicReference<String> ref = new AtomicReference<>();")
	assert.Equal(t, 2, rep.ByCategory["type-wrapper"])
}

func TestApplyAll_StaticWrapperImportsPruned(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	src := "package p;\n\nimport static com.legacy.Helper.plus;\nimport static com.legacy.Helper.minus;\n\n" +
		"class Calc {\n    Object f(Object a, Object b) {\n        return plus(a, b);\n    }\n}\n"

	got, _ := f.run(t, src)

	assert.NotContains(t, got, "Helper.plus")
	assert.Contains(t, got, "return a.add(b);")
	assert.NotContains(t, got, "Helper.minus")
}

const legacyClass = `package p;

public class s_base {
    protected BigDecimal gdcTotal;

    public s_base(BigDecimal adc_taxa) {
        gdcTotal = adc_taxa;
    }

    public BigDecimal of_get_valor() {
        return this.gdcTotal;
    }

    void of_calc_base(BigDecimal adc_taxa) {
        gdcTotal = of_get_valor().add(adc_taxa);
    }
}
`

func TestApplyAll_RenamesLegacyIdentifiers(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	got, rep := f.run(t, legacyClass)

	want := `package p;

public class Base {
    protected BigDecimal valueTotal;

    public Base(BigDecimal rate) {
        valueTotal = rate;
    }

    public BigDecimal getValue() {
        return this.valueTotal;
    }

    void calculateBase(BigDecimal rate) {
        valueTotal = getValue().add(rate);
    }
}
`

	assert.Equal(t, want, got)
	assert.Equal(t, map[string]string{"s_base": "Base"}, rep.TypeRenames)
	assert.Equal(t, 1, rep.ByCategory["rename-type"])
	assert.Equal(t, 2, rep.ByCategory["rename-method"])
	assert.Equal(t, 1, rep.ByCategory["rename-field"])
	assert.Equal(t, 2, rep.ByCategory["rename-parameter"])
	assert.Equal(t, 6, rep.TransformationsApplied)

	again, rep := f.run(t, got)
	assert.Equal(t, got, again)
	assert.Zero(t, rep.TransformationsApplied)
}

func TestApplyAll_RenameConflictIsSkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	src := "package p;\n\nclass Calc {\n" +
		"    int calc(int adc_taxa, int rate) {\n        return adc_taxa + rate;\n    }\n}\n"

	got, rep := f.run(t, src)

	assert.Equal(t, src, got)
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "adc_taxa")
	assert.Contains(t, rep.Warnings[0], "rate")
}

func TestApplyAll_RenameDisabled(t *testing.T) {
	t.Parallel()

	opts := rewrite.DefaultOptions()
	opts.Rename = false
	f := newFixture(t, opts)

	got, rep := f.run(t, legacyClass)

	assert.Equal(t, legacyClass, got)
	assert.Zero(t, rep.TransformationsApplied)
}

func TestApplyAll_Cancelled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rewrite.DefaultOptions())

	tree, err := f.parser.Parse(context.Background(), []byte(legacyClass))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.engine.ApplyAll(ctx, tree)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewEngine_InvalidOptions(t *testing.T) {
	t.Parallel()

	parser, err := cst.NewParser()
	require.NoError(t, err)

	opts := rewrite.DefaultOptions()
	opts.RoundingMode = "NEAREST"

	_, err = rewrite.NewEngine(parser, opts, nil, nil)
	require.ErrorIs(t, err, rewrite.ErrInvalidRoundingMode)

	opts = rewrite.DefaultOptions()
	opts.Wrappers.Add = "not an identifier"

	_, err = rewrite.NewEngine(parser, opts, nil, nil)
	require.ErrorIs(t, err, rewrite.ErrInvalidWrapperName)
}

func TestDefaultCatalog_RuleOrder(t *testing.T) {
	t.Parallel()

	catalog, err := rewrite.DefaultCatalog(rewrite.DefaultOptions())
	require.NoError(t, err)

	names := make([]string, 0, catalog.Len())
	for _, r := range catalog.Rules(rewrite.CategoryMath) {
		names = append(names, r.Name)
	}

	assert.Equal(t, "rescale-assign,math-add,math-subtract,math-multiply,math-divide", strings.Join(names, ","))
}

func TestCategory_ParseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, cat := range rewrite.Categories {
		got, ok := rewrite.ParseCategory(cat.String())
		require.True(t, ok)
		assert.Equal(t, cat, got)
	}

	_, ok := rewrite.ParseCategory("bogus")
	assert.False(t, ok)
}
