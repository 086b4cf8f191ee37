package workspace

// File mode values as stored in index metadata, matching the canonical
// tree modes.
const (
	ModeRegular    uint32 = 0o100644
	ModeExecutable uint32 = 0o100755
)

// Metadata is the live filesystem state of a workspace file at scan time:
// timestamps, identity fields, and size. These are the fields the index
// caches so a later status check can detect change without rereading
// content.
type Metadata struct {
	CTime     uint32 // change time, whole seconds
	CTimeNsec uint32 // change time, fractional nanoseconds
	MTime     uint32 // modification time, whole seconds
	MTimeNsec uint32 // modification time, fractional nanoseconds
	Dev       uint32 // device id
	Ino       uint32 // inode number
	Mode      uint32 // ModeRegular or ModeExecutable
	UID       uint32
	GID       uint32
	Size      uint32 // byte size
}

// Executable reports whether the mode carries an execute bit.
func (m Metadata) Executable() bool {
	return m.Mode == ModeExecutable
}
