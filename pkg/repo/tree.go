package repo

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/gritvcs/grit/pkg/index"
	"github.com/gritvcs/grit/pkg/object"
	"github.com/gritvcs/grit/pkg/workspace"
)

// maxTreeDepth bounds recursion through tree objects. The object graph is
// acyclic by construction, but corrupt input must not be able to recurse
// unboundedly.
const maxTreeDepth = 256

// TreeFileEntry is a single file in a flattened tree.
type TreeFileEntry struct {
	Path string
	Mode string
	Hash object.Hash
}

// BuildTree converts the flat index entries into a hierarchy of tree
// objects, writing each to the store, and returns the root tree hash.
func (r *Repo) BuildTree(ix *index.Index) (object.Hash, error) {
	return r.buildTreeDir(ix, "")
}

// buildTreeDir builds the tree object for one directory prefix, recursing
// into subdirectories first so each parent references its children's
// hashes.
func (r *Repo) buildTreeDir(ix *index.Index, prefix string) (object.Hash, error) {
	files := make(map[string]*index.Entry) // name -> entry
	subdirs := make(map[string]struct{})   // immediate child dir names

	for _, entry := range ix.Entries() {
		rel := entry.Path
		if prefix != "" {
			if !strings.HasPrefix(rel, prefix+"/") {
				continue
			}
			rel = rel[len(prefix)+1:]
		}

		if slash := strings.IndexByte(rel, '/'); slash < 0 {
			files[rel] = entry
		} else {
			subdirs[rel[:slash]] = struct{}{}
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		if _, isFile := files[name]; !isFile {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var entries []object.TreeEntry
	for _, name := range names {
		if entry, isFile := files[name]; isFile {
			entries = append(entries, object.TreeEntry{
				Name: name,
				Mode: treeModeOf(entry.Meta),
				Hash: entry.Hash,
			})
		} else {
			childPrefix := name
			if prefix != "" {
				childPrefix = prefix + "/" + name
			}
			subHash, err := r.buildTreeDir(ix, childPrefix)
			if err != nil {
				return "", fmt.Errorf("build tree %q: %w", childPrefix, err)
			}
			entries = append(entries, object.TreeEntry{
				Name: name,
				Mode: object.TreeModeDir,
				Hash: subHash,
			})
		}
	}

	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree recursively, returning every file with its
// full slash path. Subtrees are read one object at a time.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "", 0)
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string, depth int) ([]TreeFileEntry, error) {
	if depth > maxTreeDepth {
		return nil, fmt.Errorf("flatten tree %s: depth exceeds %d", h, maxTreeDepth)
	}

	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: %w", err)
	}

	var result []TreeFileEntry
	for _, entry := range treeObj.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}

		if entry.IsDir() {
			sub, err := r.flattenTreeRec(entry.Hash, fullPath, depth+1)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		} else {
			result = append(result, TreeFileEntry{
				Path: fullPath,
				Mode: entry.Mode,
				Hash: entry.Hash,
			})
		}
	}
	return result, nil
}

func treeModeOf(meta workspace.Metadata) string {
	if meta.Executable() {
		return object.TreeModeExecutable
	}
	return object.TreeModeFile
}
