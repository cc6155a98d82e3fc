package refactor

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

const (
	backupSuffix = ".backup"
	lz4Suffix    = ".lz4"
	filePerm     = 0o644
	dirPerm      = 0o755
)

// Persister writes rewritten sources.
type Persister struct {
	// Root is the discovery root. Output, when set, mirrors its layout.
	Root   string
	Output string
	Backup bool
	// CompressBackup writes backups as lz4 frames.
	CompressBackup bool
}

// Target returns the destination for the file at rel, applying a public
// type rename to the file name when the old base name was renamed.
func (p Persister) Target(rel string, typeRenames map[string]string) string {
	dir, base := path.Split(rel)
	ext := path.Ext(base)

	if renamed, ok := typeRenames[strings.TrimSuffix(base, ext)]; ok {
		base = renamed + ext
	}

	root := p.Root
	if p.Output != "" {
		root = p.Output
	}

	return filepath.Join(root, filepath.FromSlash(dir+base))
}

// Write stores content for the source at src into dst. An existing dst is
// backed up first when enabled. When the write happens in place and dst
// differs from src, src is removed so the rename does not leave a stale copy.
func (p Persister) Write(src, dst string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	backupFrom := dst
	if p.Output == "" {
		backupFrom = src
	}

	if p.Backup {
		if _, err := os.Stat(backupFrom); err == nil {
			if err := p.backup(backupFrom); err != nil {
				return err
			}
		}
	}

	if err := writeAtomic(dst, content); err != nil {
		return err
	}

	if p.Output == "" && filepath.Clean(src) != filepath.Clean(dst) {
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("remove renamed source: %w", err)
		}
	}

	return nil
}

// BackupPath is where the backup of file goes.
func (p Persister) BackupPath(file string) string {
	if p.CompressBackup {
		return file + backupSuffix + lz4Suffix
	}

	return file + backupSuffix
}

func (p Persister) backup(file string) error {
	in, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open for backup: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(p.BackupPath(file), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	var w io.WriteCloser = out
	if p.CompressBackup {
		w = lz4.NewWriter(out)
	}

	_, copyErr := io.Copy(w, in)

	if p.CompressBackup {
		if err := w.Close(); err != nil && copyErr == nil {
			copyErr = err
		}
	}

	closeErr := out.Close()

	if copyErr != nil {
		return fmt.Errorf("write backup: %w", copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close backup: %w", closeErr)
	}

	return nil
}

// RestoreBackup reads a backup written by Persister, decompressing lz4
// frames.
func RestoreBackup(file string) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(file, lz4Suffix) {
		r = lz4.NewReader(f)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	return data, nil
}

func writeAtomic(dst string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	name := tmp.Name()

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()

	if writeErr == nil {
		writeErr = closeErr
	}

	if writeErr == nil {
		writeErr = os.Chmod(name, filePerm)
	}

	if writeErr != nil {
		os.Remove(name)

		return fmt.Errorf("write %s: %w", dst, writeErr)
	}

	if err := os.Rename(name, dst); err != nil {
		os.Remove(name)

		return fmt.Errorf("replace %s: %w", dst, err)
	}

	return nil
}
