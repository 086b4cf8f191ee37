//go:build !linux

package workspace

import "os"

// metadataFromFileInfo extracts the cached-stat fields from a FileInfo.
// Platforms without Stat_t access fall back to mtime for ctime and leave
// the identity fields zero; the status fast path then relies on size and
// mtime alone.
func metadataFromFileInfo(info os.FileInfo) Metadata {
	m := Metadata{
		MTime:     uint32(info.ModTime().Unix()),
		MTimeNsec: uint32(info.ModTime().Nanosecond()),
		Size:      uint32(info.Size()),
		Mode:      ModeRegular,
	}
	if info.Mode()&0o111 != 0 {
		m.Mode = ModeExecutable
	}
	m.CTime = m.MTime
	m.CTimeNsec = m.MTimeNsec
	return m
}
