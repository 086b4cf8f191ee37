package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"time"

	"github.com/gritvcs/grit/pkg/index"
	"github.com/gritvcs/grit/pkg/object"
	"github.com/gritvcs/grit/pkg/workspace"
)

// ChangeKind classifies one path on one comparison axis.
type ChangeKind int

const (
	Unchanged ChangeKind = iota
	Added
	Modified
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// PathStatus carries both classifications for a path. The two axes are
// independent and never merged: a path can be staged-modified and
// modified again in the workspace at the same time.
type PathStatus struct {
	Path  string
	Index ChangeKind // index vs current snapshot
	Work  ChangeKind // workspace vs index
}

// StatRefresh records a tracked file whose timestamp changed but whose
// content did not. The entry's cached metadata is eligible for refresh so
// later status checks keep the fast path.
type StatRefresh struct {
	Path string
	Meta workspace.Metadata
}

// Report is the result of one status computation. It is a transient
// value: it must not be held across a later mutation of the index or
// workspace.
type Report struct {
	Paths     []PathStatus  // path-sorted; tracked paths plus snapshot-only deletions
	Untracked []string      // path-sorted; collapsed directories carry a trailing "/"
	Refreshed []StatRefresh // clean files whose cached stat is stale
}

type headState struct {
	Hash object.Hash
	Mode string
}

const racyCleanWindow = 2 * time.Second

// Status reconciles the working tree, the index, and the current
// snapshot's tree into a Report. The computation reads but never writes:
// stat refreshes are returned in the report for the caller to persist
// via ApplyStatRefresh.
func (r *Repo) Status() (*Report, error) {
	ix, err := r.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	head, err := r.headTreeState()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	ws := r.Workspace()
	ic := NewIgnoreChecker(r.RootDir)

	scan := &workScan{
		ws:      ws,
		ix:      ix,
		ic:      ic,
		tracked: make(map[string]workspace.Metadata),
	}
	if err := scan.dir(""); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	report := &Report{Untracked: scan.untracked}

	for _, entry := range ix.Entries() {
		ps := PathStatus{Path: entry.Path}

		// Index vs snapshot.
		if hs, inHead := head[entry.Path]; !inHead {
			ps.Index = Added
		} else if hs.Hash != entry.Hash || hs.Mode != treeModeOf(entry.Meta) {
			ps.Index = Modified
		}

		// Workspace vs index.
		kind, refresh, err := r.classifyWork(ws, entry, scan.tracked)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		ps.Work = kind
		if refresh != nil {
			report.Refreshed = append(report.Refreshed, *refresh)
		}

		report.Paths = append(report.Paths, ps)
	}

	// Snapshot paths absent from the index.
	for p := range head {
		if !ix.Tracked(p) {
			report.Paths = append(report.Paths, PathStatus{Path: p, Index: Deleted})
		}
	}

	sort.Slice(report.Paths, func(i, j int) bool {
		return report.Paths[i].Path < report.Paths[j].Path
	})
	sort.Strings(report.Untracked)
	return report, nil
}

// classifyWork compares one index entry against the live workspace. The
// metadata fast path avoids reading content; when metadata differs the
// content is rehashed, and only a true content difference counts as
// modified.
func (r *Repo) classifyWork(
	ws *workspace.Workspace,
	entry *index.Entry,
	tracked map[string]workspace.Metadata,
) (ChangeKind, *StatRefresh, error) {
	live, onDisk := tracked[entry.Path]
	if !onDisk {
		return Deleted, nil, nil
	}

	if statMatches(entry.Meta, live) {
		return Unchanged, nil, nil
	}

	content, err := ws.Read(entry.Path)
	if err != nil {
		// Vanished between scan and read: a race with the outside world,
		// classified as deleted rather than surfaced.
		if errors.Is(err, fs.ErrNotExist) {
			return Deleted, nil, nil
		}
		return Unchanged, nil, err
	}

	if object.HashObject(object.TypeBlob, content) != entry.Hash ||
		live.Mode != entry.Meta.Mode {
		return Modified, nil, nil
	}

	// Touched but identical: unchanged, and the stale cached stat may be
	// refreshed so the next status check takes the fast path again.
	return Unchanged, &StatRefresh{Path: entry.Path, Meta: live}, nil
}

// statMatches reports whether cached index metadata still describes the
// live file, in which case content is known unchanged without reading it.
func statMatches(cached, live workspace.Metadata) bool {
	if cached != live {
		return false
	}
	// Coarse (second-level) mtimes can hide same-size edits within one
	// second; fall through to the content check.
	if live.MTimeNsec == 0 {
		return false
	}
	// Racy-clean guard: an mtime too close to now (or in the future) may
	// still be moving.
	mt := time.Unix(int64(live.MTime), int64(live.MTimeNsec))
	now := time.Now()
	if mt.After(now) || now.Sub(mt) < racyCleanWindow {
		return false
	}
	return true
}

// ApplyStatRefresh persists the refreshed stat metadata a status
// computation discovered. Callers typically treat lockfile.ErrLocked from
// here as benign: the report is still valid, the cache just stays cold.
func (r *Repo) ApplyStatRefresh(report *Report) error {
	if len(report.Refreshed) == 0 {
		return nil
	}

	ix, err := r.LoadIndex()
	if err != nil {
		return fmt.Errorf("refresh index stats: %w", err)
	}
	changed := false
	for _, rf := range report.Refreshed {
		if ix.SetMetadata(rf.Path, rf.Meta) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := ix.Persist(); err != nil {
		return fmt.Errorf("refresh index stats: %w", err)
	}
	return nil
}

// headTreeState flattens the current snapshot's tree into path -> state.
// No resolvable HEAD (fresh repository) yields an empty map; a corrupt
// commit or tree object is fatal.
func (r *Repo) headTreeState() (map[string]headState, error) {
	result := make(map[string]headState)

	headHash, err := r.ResolveRef("HEAD")
	if err != nil || headHash == "" {
		// No commits yet.
		return result, nil
	}

	commit, err := r.Store.ReadCommit(headHash)
	if err != nil {
		return nil, err
	}
	files, err := r.FlattenTree(commit.TreeHash)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		result[f.Path] = headState{Hash: f.Hash, Mode: f.Mode}
	}
	return result, nil
}

// workScan walks the working tree collecting live metadata for tracked
// files and untracked paths with whole-directory collapsing: a directory
// holding no tracked file is reported once (with a trailing slash) and
// never descended into, provided something under it is trackable.
type workScan struct {
	ws        *workspace.Workspace
	ix        *index.Index
	ic        *IgnoreChecker
	tracked   map[string]workspace.Metadata
	untracked []string
}

func (s *workScan) dir(dir string) error {
	entries, err := s.ws.List(dir)
	if err != nil {
		// A directory vanishing mid-scan degrades to "nothing under it".
		if dir != "" && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, de := range entries {
		rel := de.Name
		if dir != "" {
			rel = path.Join(dir, de.Name)
		}
		if s.ic.Skip(rel, de.IsDir) {
			continue
		}

		if de.IsDir {
			if s.ix.TrackedUnder(rel) {
				if err := s.dir(rel); err != nil {
					return err
				}
				continue
			}
			trackable, err := s.hasTrackableFile(rel)
			if err != nil {
				return err
			}
			if trackable {
				s.untracked = append(s.untracked, rel+"/")
			}
			continue
		}

		if s.ix.Tracked(rel) {
			meta, ok, err := s.ws.Stat(rel)
			if err != nil {
				return err
			}
			if ok {
				s.tracked[rel] = meta
			}
			// Vanished files stay out of tracked and classify as deleted.
		} else {
			s.untracked = append(s.untracked, rel)
		}
	}
	return nil
}

// hasTrackableFile reports whether any regular file exists anywhere under
// dir. Empty directory chains produce no untracked entry at all.
func (s *workScan) hasTrackableFile(dir string) (bool, error) {
	entries, err := s.ws.List(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	for _, de := range entries {
		rel := path.Join(dir, de.Name)
		if s.ic.Skip(rel, de.IsDir) {
			continue
		}
		if !de.IsDir {
			return true, nil
		}
		ok, err := s.hasTrackableFile(rel)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
