// Package index implements the persistent staging area: a path-sorted set
// of entries mapping tracked files to their staged blob hashes and cached
// filesystem metadata, stored in a single binary file with an integrity
// checksum trailer.
package index

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/gritvcs/grit/pkg/lockfile"
	"github.com/gritvcs/grit/pkg/object"
	"github.com/gritvcs/grit/pkg/workspace"
)

const (
	fileSignature = "DIRC"
	fileVersion   = 2
)

// CorruptError reports that the on-disk index could not be decoded: a bad
// signature, truncated data, or a checksum mismatch. A corrupt index is
// fatal for the current operation; it is never silently rebuilt.
type CorruptError struct {
	Path   string
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("index %s: corrupt: %s", e.Path, e.Reason)
}

func corruptf(path, format string, args ...any) error {
	return &CorruptError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Index is the in-memory staging area. Entries are kept sorted by path
// with no duplicates.
type Index struct {
	path    string
	entries []*Entry
}

// New returns an empty index that will persist to the given file path.
func New(path string) *Index {
	return &Index{path: path}
}

// Load reads and verifies the index file. A missing file is not an error;
// it yields an empty index. Readers need no lock: the file is only ever
// replaced atomically, so they see either the old or the new content.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(path), nil
		}
		return nil, fmt.Errorf("index load: %w", err)
	}

	ix := New(path)
	if err := ix.parse(data); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *Index) parse(data []byte) error {
	if len(data) < 12+sha1.Size {
		return corruptf(ix.path, "file too short (%d bytes)", len(data))
	}

	body, sum := data[:len(data)-sha1.Size], data[len(data)-sha1.Size:]
	want := sha1.Sum(body)
	if !bytes.Equal(want[:], sum) {
		return corruptf(ix.path, "checksum mismatch")
	}

	if string(body[:4]) != fileSignature {
		return corruptf(ix.path, "bad signature %q", body[:4])
	}
	if v := binary.BigEndian.Uint32(body[4:]); v != fileVersion {
		return corruptf(ix.path, "unsupported version %d", v)
	}
	count := binary.BigEndian.Uint32(body[8:])

	rest := body[12:]
	prev := ""
	for i := uint32(0); i < count; i++ {
		entry, n, err := decodeEntry(rest)
		if err != nil {
			return corruptf(ix.path, "entry %d: %v", i, err)
		}
		if entry.Path <= prev && prev != "" {
			return corruptf(ix.path, "entries out of order at %q", entry.Path)
		}
		prev = entry.Path
		ix.entries = append(ix.entries, entry)
		rest = rest[n:]
	}
	// Bytes past the last entry are optional extensions; they are covered
	// by the checksum and ignored here.
	return nil
}

// Path returns the index file's location.
func (ix *Index) Path() string {
	return ix.path
}

// Len returns the number of tracked paths.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Entries returns the tracked entries in path order. The slice is shared;
// callers must not reorder it.
func (ix *Index) Entries() []*Entry {
	return ix.entries
}

// Get looks up the entry for a path.
func (ix *Index) Get(path string) (*Entry, bool) {
	i := ix.search(path)
	if i < len(ix.entries) && ix.entries[i].Path == path {
		return ix.entries[i], true
	}
	return nil, false
}

// Tracked reports whether the path is staged.
func (ix *Index) Tracked(path string) bool {
	_, ok := ix.Get(path)
	return ok
}

// TrackedUnder reports whether any staged path lives under the given
// directory (slash-relative, no trailing slash).
func (ix *Index) TrackedUnder(dir string) bool {
	prefix := dir + "/"
	i := ix.search(prefix)
	return i < len(ix.entries) && len(ix.entries[i].Path) > len(prefix) &&
		ix.entries[i].Path[:len(prefix)] == prefix
}

func (ix *Index) search(path string) int {
	return sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].Path >= path
	})
}

// Upsert inserts or replaces the entry for a path, keeping path order.
// Only the one entry changes; nothing else is rehashed or rewritten.
func (ix *Index) Upsert(path string, h object.Hash, meta workspace.Metadata) {
	entry := newEntry(path, h, meta)
	i := ix.search(path)
	if i < len(ix.entries) && ix.entries[i].Path == path {
		ix.entries[i] = entry
		return
	}
	ix.entries = append(ix.entries, nil)
	copy(ix.entries[i+1:], ix.entries[i:])
	ix.entries[i] = entry
}

// SetMetadata refreshes the cached stat fields for a tracked path without
// touching its staged hash. Used after a rehash proved a touched file's
// content unchanged.
func (ix *Index) SetMetadata(path string, meta workspace.Metadata) bool {
	entry, ok := ix.Get(path)
	if !ok {
		return false
	}
	entry.Meta = meta
	return true
}

// Remove drops the entry for a path, reporting whether it was present.
func (ix *Index) Remove(path string) bool {
	i := ix.search(path)
	if i >= len(ix.entries) || ix.entries[i].Path != path {
		return false
	}
	ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
	return true
}

// Persist writes the full entry set to disk under the index lock: the
// serialized bytes go to the lock marker, which is renamed into place so
// a crash mid-write never exposes a half-written index. Fails with
// lockfile.ErrLocked when another operation holds the index.
func (ix *Index) Persist() error {
	data, err := ix.encode()
	if err != nil {
		return fmt.Errorf("index persist: %w", err)
	}

	lock, err := lockfile.Acquire(ix.path)
	if err != nil {
		return fmt.Errorf("index persist: %w", err)
	}
	defer lock.Rollback()

	if _, err := lock.Write(data); err != nil {
		return fmt.Errorf("index persist: write: %w", err)
	}
	if err := lock.Commit(); err != nil {
		return fmt.Errorf("index persist: %w", err)
	}
	return nil
}

// encode serializes the header, the path-sorted entries, and the SHA-1
// checksum over everything before it.
func (ix *Index) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileSignature)

	var word [4]byte
	binary.BigEndian.PutUint32(word[:], fileVersion)
	buf.Write(word[:])
	binary.BigEndian.PutUint32(word[:], uint32(len(ix.entries)))
	buf.Write(word[:])

	for _, entry := range ix.entries {
		encoded, err := entry.encode()
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}

	sum := sha1.Sum(buf.Bytes())
	buf.Write(sum[:])
	return buf.Bytes(), nil
}
