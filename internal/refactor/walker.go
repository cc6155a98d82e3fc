package refactor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/src-d/enry/v2"
)

// IgnoredDirs are never descended into.
var IgnoredDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	".gradle":      true,
	".settings":    true,
	"node_modules": true,
	"target":       true,
	"build":        true,
	"out":          true,
}

// Candidate is a file selected for processing.
type Candidate struct {
	// Path is the absolute file path.
	Path string
	// Rel is Path relative to the discovery root, slash separated.
	Rel  string
	Size int64
}

// Skipped is a file excluded during discovery for a reason worth reporting.
type Skipped struct {
	Rel    string
	Reason string
}

// Discovery selects source files under a root.
type Discovery struct {
	Extensions       []string
	RespectGitignore bool
	// MaxFileSize skips larger files when positive.
	MaxFileSize uint64
}

// Walk returns the candidates under root in lexical order. A root that is
// a file yields that file alone when its extension matches.
func (d Discovery) Walk(root string) ([]Candidate, []Skipped, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("stat root: %w", err)
	}

	if !info.IsDir() {
		if !d.matches(info.Name()) {
			return nil, nil, nil
		}

		c, skip := d.candidate(filepath.Dir(root), root, info)
		if skip != nil {
			return nil, []Skipped{*skip}, nil
		}

		return []Candidate{c}, nil, nil
	}

	var gitignore *ignore.GitIgnore
	if d.RespectGitignore {
		gitignore = loadGitignore(root)
	}

	var (
		out     []Candidate
		skipped []Skipped
	)

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if IgnoredDirs[entry.Name()] || enry.IsVendor(rel+"/") ||
				(gitignore != nil && gitignore.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() || !d.matches(entry.Name()) {
			return nil
		}

		if gitignore != nil && gitignore.MatchesPath(rel) {
			return nil
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			return infoErr
		}

		c, skip := d.candidate(root, path, info)
		if skip != nil {
			skipped = append(skipped, *skip)

			return nil
		}

		out = append(out, c)

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return out, skipped, nil
}

func (d Discovery) candidate(root, path string, info fs.FileInfo) (Candidate, *Skipped) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	rel = filepath.ToSlash(rel)

	if d.MaxFileSize > 0 && uint64(info.Size()) > d.MaxFileSize {
		return Candidate{}, &Skipped{Rel: rel, Reason: fmt.Sprintf("larger than %d bytes", d.MaxFileSize)}
	}

	return Candidate{Path: path, Rel: rel, Size: info.Size()}, nil
}

// matches accepts configured extensions unless enry is certain the
// extension belongs to another language.
func (d Discovery) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(d.Extensions, ext) {
		return false
	}

	if lang, safe := enry.GetLanguageByExtension(name); safe && lang != "Java" {
		return false
	}

	return !enry.IsDotFile(name)
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}

	return gi
}
