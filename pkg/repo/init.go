package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gritvcs/grit/pkg/object"
)

// Init creates a new repository at path: the .grit/ directory with
// objects/, refs/heads/, and a HEAD pointing at the default branch.
// Returns an error if a .grit/ directory already exists.
func Init(path string) (*Repo, error) {
	gritDir := filepath.Join(path, MetaDir)

	if _, err := os.Stat(gritDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gritDir)
	}

	dirs := []string{
		filepath.Join(gritDir, "objects"),
		filepath.Join(gritDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(gritDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	return &Repo{
		RootDir: path,
		GritDir: gritDir,
		Store:   object.NewStore(gritDir),
	}, nil
}

// Open searches upward from path for a .grit/ directory and opens the
// repository. Returns an error if none is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gritDir := filepath.Join(cur, MetaDir)
		info, err := os.Stat(gritDir)
		if err == nil && info.IsDir() {
			return &Repo{
				RootDir: cur,
				GritDir: gritDir,
				Store:   object.NewStore(gritDir),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a grit repository (or any parent up to /)")
		}
		cur = parent
	}
}
