package refactor_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelghellereTR/payroll-refactor-tool/internal/refactor"
)

func rels(cs []refactor.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Rel)
	}

	return out
}

func TestDiscovery_Walk(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, rel := range []string{
		"a/A.java",
		"a/notes.txt",
		"b/B.JAVA",
		"target/classes/T.java",
		".git/hooks/H.java",
		"vendor/lib/V.java",
		"generated/G.java",
		"Z.java",
	} {
		writeFile(t, filepath.Join(root, rel), "class X {}\n")
	}

	writeFile(t, filepath.Join(root, ".gitignore"), "generated/\n")

	d := refactor.Discovery{Extensions: []string{".java"}, RespectGitignore: true}

	got, skipped, err := d.Walk(root)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, []string{"Z.java", "a/A.java", "b/B.JAVA"}, rels(got))

	d.RespectGitignore = false

	got, _, err = d.Walk(root)
	require.NoError(t, err)
	assert.Contains(t, rels(got), "generated/G.java")
}

func TestDiscovery_MaxFileSize(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Small.java"), "class S {}\n")
	writeFile(t, filepath.Join(root, "Large.java"), "class L { int a; int b; int c; int d; }\n")

	d := refactor.Discovery{Extensions: []string{".java"}, MaxFileSize: 16}

	got, skipped, err := d.Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Small.java"}, rels(got))
	require.Len(t, skipped, 1)
	assert.Equal(t, "Large.java", skipped[0].Rel)
}

func TestDiscovery_SingleFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "One.java")
	writeFile(t, file, "class One {}\n")
	writeFile(t, filepath.Join(root, "readme.md"), "# x\n")

	d := refactor.Discovery{Extensions: []string{".java"}}

	got, _, err := d.Walk(file)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "One.java", got[0].Rel)

	got, _, err = d.Walk(filepath.Join(root, "readme.md"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscovery_MissingRoot(t *testing.T) {
	t.Parallel()

	_, _, err := refactor.Discovery{Extensions: []string{".java"}}.Walk(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
