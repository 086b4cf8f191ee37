package index

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gritvcs/grit/pkg/object"
	"github.com/gritvcs/grit/pkg/workspace"
)

// entryFixedLen is the byte length of an entry before its path: ten
// big-endian uint32 metadata fields, the raw 20-byte blob hash, and the
// 16-bit flags word.
const entryFixedLen = 40 + object.RawHashLen + 2

// maxFlagPathLen caps the path length recorded in the flags word.
const maxFlagPathLen = 0xFFF

// Entry is the staged record for one tracked path: the blob identity it
// was staged as, plus the cached filesystem metadata used by the status
// fast path.
type Entry struct {
	Meta  workspace.Metadata
	Hash  object.Hash
	Flags uint16
	Path  string // repo-relative, slash-separated; unique key
}

func newEntry(path string, h object.Hash, meta workspace.Metadata) *Entry {
	flags := len(path)
	if flags > maxFlagPathLen {
		flags = maxFlagPathLen
	}
	return &Entry{Meta: meta, Hash: h, Flags: uint16(flags), Path: path}
}

// encode serializes the entry: fixed fields, path bytes, then NUL padding
// so the total length is a multiple of 8 (always at least one NUL, which
// also terminates the path).
func (e *Entry) encode() ([]byte, error) {
	raw, err := e.Hash.Raw()
	if err != nil {
		return nil, fmt.Errorf("index entry %q: %w", e.Path, err)
	}

	length := entryFixedLen + len(e.Path)
	total := (length/8 + 1) * 8

	var buf bytes.Buffer
	buf.Grow(total)
	for _, v := range []uint32{
		e.Meta.CTime, e.Meta.CTimeNsec,
		e.Meta.MTime, e.Meta.MTimeNsec,
		e.Meta.Dev, e.Meta.Ino, e.Meta.Mode,
		e.Meta.UID, e.Meta.GID, e.Meta.Size,
	} {
		var field [4]byte
		binary.BigEndian.PutUint32(field[:], v)
		buf.Write(field[:])
	}
	buf.Write(raw)

	var flags [2]byte
	binary.BigEndian.PutUint16(flags[:], e.Flags)
	buf.Write(flags[:])

	buf.WriteString(e.Path)
	for i := length; i < total; i++ {
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

// decodeEntry parses one entry from the front of data, returning the
// entry and the number of bytes consumed including padding.
func decodeEntry(data []byte) (*Entry, int, error) {
	if len(data) < entryFixedLen {
		return nil, 0, fmt.Errorf("truncated entry (%d bytes)", len(data))
	}

	u32 := func(off int) uint32 { return binary.BigEndian.Uint32(data[off:]) }
	e := &Entry{
		Meta: workspace.Metadata{
			CTime:     u32(0),
			CTimeNsec: u32(4),
			MTime:     u32(8),
			MTimeNsec: u32(12),
			Dev:       u32(16),
			Ino:       u32(20),
			Mode:      u32(24),
			UID:       u32(28),
			GID:       u32(32),
			Size:      u32(36),
		},
	}
	switch e.Meta.Mode {
	case workspace.ModeRegular, workspace.ModeExecutable:
	default:
		return nil, 0, fmt.Errorf("invalid entry mode %o", e.Meta.Mode)
	}

	h, err := object.HashFromRaw(data[40 : 40+object.RawHashLen])
	if err != nil {
		return nil, 0, err
	}
	e.Hash = h
	e.Flags = binary.BigEndian.Uint16(data[40+object.RawHashLen:])

	nul := bytes.IndexByte(data[entryFixedLen:], 0)
	if nul < 0 {
		return nil, 0, fmt.Errorf("unterminated entry path")
	}
	e.Path = string(data[entryFixedLen : entryFixedLen+nul])
	if e.Path == "" {
		return nil, 0, fmt.Errorf("empty entry path")
	}

	total := ((entryFixedLen+len(e.Path))/8 + 1) * 8
	if total > len(data) {
		return nil, 0, fmt.Errorf("truncated entry padding for %q", e.Path)
	}
	for _, b := range data[entryFixedLen+len(e.Path) : total] {
		if b != 0 {
			return nil, 0, fmt.Errorf("nonzero entry padding for %q", e.Path)
		}
	}
	return e, total, nil
}
