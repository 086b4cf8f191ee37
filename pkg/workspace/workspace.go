// Package workspace provides read-only access to the working directory:
// lexically ordered traversal, live file metadata, and content reads. The
// scanner never writes, and every operation tolerates files appearing or
// disappearing between enumeration and use.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SkipFunc decides whether a repo-relative path is excluded from
// traversal. Ignore-rule evaluation lives with the caller; the scanner
// only applies the predicate.
type SkipFunc func(rel string, isDir bool) bool

// Workspace reads the working directory rooted at a repository root.
type Workspace struct {
	root string
}

// New creates a Workspace rooted at the given directory.
func New(root string) *Workspace {
	return &Workspace{root: root}
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) abs(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// DirEntry is one name in a directory listing.
type DirEntry struct {
	Name  string
	IsDir bool
}

// List returns the direct children of a directory, sorted by name. An
// empty rel lists the workspace root.
func (w *Workspace) List(rel string) ([]DirEntry, error) {
	entries, err := os.ReadDir(w.abs(rel))
	if err != nil {
		return nil, fmt.Errorf("workspace list %q: %w", rel, err)
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

// Walk traverses the workspace in lexical order, calling fn for every
// regular file with its repo-relative slash path and live metadata.
// Directories and files for which skip returns true are not descended
// into or reported. Files that vanish mid-walk are silently dropped; the
// next status computation classifies them as deleted.
func (w *Workspace) Walk(skip SkipFunc, fn func(rel string, meta Metadata) error) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if skip != nil && skip(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		return fn(rel, metadataFromFileInfo(info))
	})
	if err != nil {
		return fmt.Errorf("workspace walk: %w", err)
	}
	return nil
}

// Stat returns the live metadata for a file. ok is false when the path no
// longer exists; that is an expected race with concurrent modification,
// not an error.
func (w *Workspace) Stat(rel string) (meta Metadata, ok bool, err error) {
	info, err := os.Stat(w.abs(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, false, nil
		}
		return Metadata{}, false, fmt.Errorf("workspace stat %q: %w", rel, err)
	}
	return metadataFromFileInfo(info), true, nil
}

// Read returns a file's content. A path that no longer exists surfaces as
// an error wrapping fs.ErrNotExist so callers can distinguish the
// vanished-file race from a genuine I/O failure.
func (w *Workspace) Read(rel string) ([]byte, error) {
	data, err := os.ReadFile(w.abs(rel))
	if err != nil {
		return nil, fmt.Errorf("workspace read %q: %w", rel, err)
	}
	return data, nil
}
