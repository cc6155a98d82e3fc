package cst_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
)

const sampleSource = `package com.example.calc;

import java.math.BigDecimal;

/**
 * Sample.
 */
public class s_base {
    // rate kept at four digits
    protected BigDecimal taxa = createDecimal(BigDecimal.ZERO, 4);

    public BigDecimal of_get_taxa() {
        return   this.taxa ;
    }
}
`

func newParser(t *testing.T) *cst.Parser {
	t.Helper()

	p, err := cst.NewParser()
	require.NoError(t, err)

	return p
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	p := newParser(t)

	tree, err := p.Parse(context.Background(), []byte(sampleSource))
	require.NoError(t, err)
	assert.Equal(t, cst.KindProgram, tree.Root.Kind)
	assert.Equal(t, sampleSource, tree.Render())
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()

	p := newParser(t)

	_, err := p.Parse(context.Background(), []byte("class A { void f( { }"))
	require.ErrorIs(t, err, cst.ErrSyntax)

	var syntaxErr *cst.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)

	tree, err := p.ParseTolerant(context.Background(), []byte("class A { void f( { }"))
	require.ErrorIs(t, err, cst.ErrSyntax)
	require.NotNil(t, tree)
	assert.Equal(t, "class A { void f( { }", tree.Render())
}

func TestParseExpression(t *testing.T) {
	t.Parallel()

	p := newParser(t)
	ctx := context.Background()

	expr, err := p.ParseExpression(ctx, "a .add( b )")
	require.NoError(t, err)
	assert.Equal(t, cst.KindMethodInvocation, expr.Kind)
	assert.Nil(t, expr.Parent())
	assert.Equal(t, "a .add( b )", expr.Text())
	assert.Equal(t, "a.add(b)", expr.Canonical())

	expr, err = p.ParseExpression(ctx, "t = t.divide(b, RoundingMode.HALF_UP)")
	require.NoError(t, err)
	assert.Equal(t, "assignment_expression", expr.Kind)

	for _, bad := range []string{"a +", "a; Object b = c", "a, b", ""} {
		_, err = p.ParseExpression(ctx, bad)
		require.ErrorIs(t, err, cst.ErrInvalidSnippet, bad)
	}
}

func TestCanonical_IgnoresLayoutAndComments(t *testing.T) {
	t.Parallel()

	p := newParser(t)
	ctx := context.Background()

	a, err := p.ParseExpression(ctx, "new BigDecimal( /* x */ 1 )")
	require.NoError(t, err)

	b, err := p.ParseExpression(ctx, "new BigDecimal(1)")
	require.NoError(t, err)

	assert.Equal(t, b.Canonical(), a.Canonical())
	assert.Equal(t, "new BigDecimal(1)", a.Canonical())
}

func TestReplace_KeepsLeadingTrivia(t *testing.T) {
	t.Parallel()

	p := newParser(t)
	ctx := context.Background()

	src := "class A {\n    Object v =   foo(x);\n}\n"

	tree, err := p.Parse(ctx, []byte(src))
	require.NoError(t, err)

	var call *cst.Node

	tree.Root.Walk(func(n *cst.Node) bool {
		if n.Kind == cst.KindMethodInvocation {
			call = n
		}

		return call == nil
	})
	require.NotNil(t, call)

	repl, err := p.ParseExpression(ctx, "x.bar()")
	require.NoError(t, err)

	require.NoError(t, tree.Replace(call, repl))
	assert.Equal(t, "class A {\n    Object v =   x.bar();\n}\n", tree.Render())
	assert.Nil(t, call.Parent())

	require.ErrorIs(t, tree.Replace(call, repl), cst.ErrDetached)
}

func TestEnsureImport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "after last import",
			src:  "package a;\n\nimport java.util.List;\n\nclass A {}\n",
			want: "package a;\n\nimport java.util.List;\nimport java.math.RoundingMode;\n\nclass A {}\n",
		},
		{
			name: "after package",
			src:  "package a;\n\nclass A {}\n",
			want: "package a;\n\nimport java.math.RoundingMode;\n\nclass A {}\n",
		},
		{
			name: "no package",
			src:  "class A {}\n",
			want: "import java.math.RoundingMode;\n\nclass A {}\n",
		},
		{
			name: "wildcard covers",
			src:  "import java.math.*;\nclass A {}\n",
			want: "import java.math.*;\nclass A {}\n",
		},
		{
			name: "already imported",
			src:  "import java.math.RoundingMode;\nclass A {}\n",
			want: "import java.math.RoundingMode;\nclass A {}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newParser(t)

			tree, err := p.Parse(context.Background(), []byte(tt.src))
			require.NoError(t, err)

			changed, err := p.EnsureImport(context.Background(), tree, "java.math.RoundingMode")
			require.NoError(t, err)
			assert.Equal(t, tt.src != tt.want, changed)
			assert.Equal(t, tt.want, tree.Render())
		})
	}
}

func TestRankAndMaxRank(t *testing.T) {
	t.Parallel()

	p := newParser(t)
	ctx := context.Background()

	call, err := p.ParseExpression(ctx, "a.add(b)")
	require.NoError(t, err)
	assert.Equal(t, cst.RankPrimary, cst.Rank(call))

	receiver := call.Children[0]
	assert.Equal(t, cst.RankPrimary, cst.MaxRank(receiver))

	args := call.Child(cst.KindArgumentList)
	require.NotNil(t, args)
	assert.Equal(t, cst.RankLoose, cst.MaxRank(args.Operands()[0]))

	neg, err := p.ParseExpression(ctx, "!a")
	require.NoError(t, err)
	assert.Equal(t, cst.RankUnary, cst.Rank(neg))
	assert.Equal(t, cst.RankUnary, cst.MaxRank(neg.Operands()[0]))

	sum, err := p.ParseExpression(ctx, "a + b")
	require.NoError(t, err)
	assert.Equal(t, cst.RankLoose, cst.Rank(sum))
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()

	assert.True(t, cst.IsIdentifier("codigoSis"))
	assert.True(t, cst.IsIdentifier("$x_1"))
	assert.False(t, cst.IsIdentifier(""))
	assert.False(t, cst.IsIdentifier("class"))
	assert.False(t, cst.IsIdentifier("1abc"))
	assert.False(t, cst.IsIdentifier("a-b"))
}

func TestImportPathAndPackage(t *testing.T) {
	t.Parallel()

	p := newParser(t)

	tree, err := p.Parse(context.Background(), []byte(
		"package x.y;\nimport static a.B.c;\nimport a.b.*;\nclass A {}\n"))
	require.NoError(t, err)

	assert.Equal(t, "x.y", tree.PackageName())

	imports := tree.Imports()
	require.Len(t, imports, 2)
	assert.Equal(t, "static a.B.c", cst.ImportPath(imports[0]))
	assert.Equal(t, "a.b.*", cst.ImportPath(imports[1]))
	assert.True(t, tree.HasImport("a.b.Thing"))
	assert.True(t, tree.HasImport("java.lang.String"))
	assert.False(t, tree.HasImport("java.math.RoundingMode"))
	assert.Equal(t, "RoundingMode", cst.SimpleName("java.math.RoundingMode"))
}

func TestDump(t *testing.T) {
	t.Parallel()

	tree, err := newParser(t).Parse(context.Background(), []byte("class A {}\n"))
	require.NoError(t, err)

	var named bytes.Buffer
	require.NoError(t, cst.Dump(&named, tree.Root, true))

	assert.Contains(t, named.String(), "program [1:1]\n  class_declaration [1:1]\n")
	assert.Contains(t, named.String(), `identifier [1:7] "A"`)
	assert.NotContains(t, named.String(), `"{"`)

	var all bytes.Buffer
	require.NoError(t, cst.Dump(&all, tree.Root, false))

	assert.Contains(t, all.String(), `"{"`)
	assert.Contains(t, all.String(), `class [1:1] "class"`)
}
