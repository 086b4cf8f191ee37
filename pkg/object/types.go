package object

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

const (
	// Tree mode constants matching Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object: a direct child file or subtree.
type TreeEntry struct {
	Name string
	Mode string // TreeModeDir, TreeModeFile, or TreeModeExecutable
	Hash Hash   // blob hash for files, tree hash for subtrees
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// TreeObj holds a name-sorted list of tree entries.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// Identity is an author or committer line: who, and when.
type Identity struct {
	Name     string
	Email    string
	Unix     int64  // seconds since epoch
	Timezone string // numeric offset, e.g. "+0000" or "-0700"
}

// CommitObj represents a commit pointing at a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Identity
	Committer Identity
	Signature string // optional detached signature, empty when unsigned
	Message   string
}
