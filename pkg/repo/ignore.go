package repo

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreChecker decides which paths the workspace scan excludes. It
// always excludes the repository metadata directories; additional
// patterns come from a .gritignore file at the repository root.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	dirOnly  bool // pattern ended with "/": matches directories only
	hasSlash bool // pattern contains a slash: match against the full path
}

// NewIgnoreChecker builds the checker for a repository root, reading
// .gritignore when present. Malformed pattern lines are skipped.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	ic := &IgnoreChecker{}

	f, err := os.Open(filepath.Join(repoRoot, ".gritignore"))
	if err != nil {
		return ic
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := ignorePattern{pattern: line}
		if strings.HasSuffix(p.pattern, "/") {
			p.dirOnly = true
			p.pattern = strings.TrimSuffix(p.pattern, "/")
		}
		p.pattern = strings.TrimPrefix(p.pattern, "/")
		p.hasSlash = strings.Contains(p.pattern, "/")
		ic.patterns = append(ic.patterns, p)
	}
	return ic
}

// Skip reports whether the repo-relative path is excluded from scanning.
func (ic *IgnoreChecker) Skip(rel string, isDir bool) bool {
	base := path.Base(rel)
	if base == MetaDir || base == ".git" {
		return true
	}

	for _, p := range ic.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.hasSlash {
			if ok, err := path.Match(p.pattern, rel); err == nil && ok {
				return true
			}
			continue
		}
		if ok, err := path.Match(p.pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
