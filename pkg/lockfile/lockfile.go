// Package lockfile implements cross-process mutual exclusion through an
// exclusive-create ".lock" marker next to the protected file. The marker
// doubles as the staging area for new content: the holder writes the
// replacement bytes into it and Commit renames it onto the target, so the
// lock is only released once the new content is fully published and
// readers always see either the old file or the new one.
package lockfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrLocked reports that another process currently holds the lock. Callers
// should surface this as "another operation is in progress" rather than
// retrying silently.
var ErrLocked = errors.New("file is locked by another process")

// Lock holds an acquired lock marker for a target file.
type Lock struct {
	target string
	path   string
	file   *os.File
	done   bool
}

// Acquire creates "<target>.lock" exclusively. It fails fast with ErrLocked
// when the marker already exists; a stale marker from an interrupted
// process must be inspected and removed by the operator, never silently
// overwritten.
func Acquire(target string) (*Lock, error) {
	path := target + ".lock"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("lock %s: mkdir: %w", target, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("lock %s: marker %s exists: %w", target, path, ErrLocked)
		}
		return nil, fmt.Errorf("lock %s: %w", target, err)
	}
	return &Lock{target: target, path: path, file: f}, nil
}

// Path returns the marker file's path.
func (l *Lock) Path() string {
	return l.path
}

// Write appends bytes to the marker file.
func (l *Lock) Write(p []byte) (int, error) {
	if l.done || l.file == nil {
		return 0, fmt.Errorf("lock %s: already released", l.target)
	}
	return l.file.Write(p)
}

// Commit publishes the marker's content by renaming it onto the target,
// releasing the lock in the same step. After the rename the marker belongs
// to whoever acquires the lock next, so no further cleanup happens here.
func (l *Lock) Commit() error {
	if l.done {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		l.Rollback()
		return fmt.Errorf("lock %s: sync: %w", l.target, err)
	}
	if err := l.file.Close(); err != nil {
		l.file = nil
		l.Rollback()
		return fmt.Errorf("lock %s: close: %w", l.target, err)
	}
	l.file = nil
	if err := os.Rename(l.path, l.target); err != nil {
		l.Rollback()
		return fmt.Errorf("lock %s: rename: %w", l.target, err)
	}
	l.done = true
	return nil
}

// Rollback discards the marker and releases the lock. It is a no-op after
// Commit or a previous Rollback, which makes it safe to defer on every
// exit path.
func (l *Lock) Rollback() {
	if l.done {
		return
	}
	l.done = true
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	os.Remove(l.path)
}
