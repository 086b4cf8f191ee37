//go:build linux

package workspace

import (
	"os"
	"syscall"
)

// metadataFromFileInfo extracts the cached-stat fields from a FileInfo.
// On Linux the underlying Stat_t supplies ctime and the identity fields;
// values wider than 32 bits are truncated the same way the on-disk index
// format truncates them.
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
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		m.CTime = uint32(st.Ctim.Sec)
		m.CTimeNsec = uint32(st.Ctim.Nsec)
		m.Dev = uint32(st.Dev)
		m.Ino = uint32(st.Ino)
		m.UID = st.Uid
		m.GID = st.Gid
	} else {
		m.CTime = m.MTime
		m.CTimeNsec = m.MTimeNsec
	}
	return m
}
