package repo

import (
	"path/filepath"

	"github.com/gritvcs/grit/pkg/index"
	"github.com/gritvcs/grit/pkg/object"
	"github.com/gritvcs/grit/pkg/workspace"
)

// MetaDir is the repository metadata directory name.
const MetaDir = ".grit"

// Repo is an opened repository: resolved paths plus the object store.
// Every operation takes the handle explicitly; there is no process-wide
// repository state.
type Repo struct {
	RootDir string        // working directory root
	GritDir string        // .grit/ directory
	Store   *object.Store // content-addressed object store
}

// IndexPath returns the staging index file's path.
func (r *Repo) IndexPath() string {
	return filepath.Join(r.GritDir, "index")
}

// LoadIndex reads the staging index; a missing file yields an empty index.
func (r *Repo) LoadIndex() (*index.Index, error) {
	return index.Load(r.IndexPath())
}

// Workspace returns a scanner over the working directory.
func (r *Repo) Workspace() *workspace.Workspace {
	return workspace.New(r.RootDir)
}
