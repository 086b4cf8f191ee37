package object

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no object with the requested hash exists in
// the store.
var ErrNotFound = errors.New("object not found")

// CorruptError reports that an object's stored bytes could not be decoded:
// a bad compressed stream, a malformed envelope header, or a length that
// disagrees with the header. Corrupt objects are never repaired in place.
type CorruptError struct {
	Hash   Hash
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("object %s: corrupt: %s", e.Hash, e.Reason)
}

func corruptf(h Hash, format string, args ...any) error {
	return &CorruptError{Hash: h, Reason: fmt.Sprintf(format, args...)}
}
