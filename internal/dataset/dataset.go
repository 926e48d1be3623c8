// Package dataset reads and writes the static JSON documents the dashboard
// is built from.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// utf8BOM is stripped from documents; encoding/json rejects it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FSSource serves documents from a filesystem, usually os.DirFS(dataDir).
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a source reading from fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// NewDirSource creates a source reading from dir on disk.
func NewDirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir))
}

// ReadDocument returns the contents of the named document, without a
// leading UTF-8 byte order mark.
func (s *FSSource) ReadDocument(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("read document %q: %w", name, fs.ErrInvalid)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}

// Writer stores documents into a directory. Each write goes to a temporary
// file first and is renamed into place, so readers never see a partial file.
type Writer struct {
	dir string
}

// NewWriter creates a writer for dir, creating the directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the target directory.
func (w *Writer) Dir() string { return w.dir }

// WriteDocument replaces the named document with data.
func (w *Writer) WriteDocument(name string, data []byte) error {
	if !fs.ValidPath(name) || filepath.Base(name) != name {
		return fmt.Errorf("write document %q: %w", name, fs.ErrInvalid)
	}

	tmp, err := os.CreateTemp(w.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write document %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(w.dir, name)); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	return nil
}
