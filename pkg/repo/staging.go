package repo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gritvcs/grit/pkg/object"
)

// ErrPathOutsideRepo reports a path that escapes the repository root.
var ErrPathOutsideRepo = errors.New("path is outside the repository")

// Add stages the given paths: each file's content is written to the
// object store as a blob, and the index entry is inserted or replaced
// with the blob hash and the file's current metadata. The updated index
// is persisted under the index lock.
func (r *Repo) Add(paths []string) error {
	ix, err := r.LoadIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	ws := r.Workspace()

	for _, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}

		content, err := ws.Read(rel)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		meta, ok, err := ws.Stat(rel)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		if !ok {
			return fmt.Errorf("add: %q vanished while staging", rel)
		}

		blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
		if err != nil {
			return fmt.Errorf("add: write blob %q: %w", rel, err)
		}

		ix.Upsert(rel, blobHash, meta)
	}

	if err := ix.Persist(); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Remove unstages the given paths. The working-tree files are left
// untouched.
func (r *Repo) Remove(paths []string) error {
	ix, err := r.LoadIndex()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	for _, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			return fmt.Errorf("rm: %w", err)
		}
		if !ix.Remove(rel) {
			return fmt.Errorf("rm: %q is not tracked", rel)
		}
	}

	if err := ix.Persist(); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	return nil
}

// relPath converts a caller-supplied path (absolute or relative to the
// repo root) into a clean repo-relative slash path, rejecting anything
// that escapes the root.
func (r *Repo) relPath(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.RootDir, p)
	}
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("resolve %q: %w", p, ErrPathOutsideRepo)
	}
	return rel, nil
}
