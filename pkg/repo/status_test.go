package repo

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// statusOf returns the PathStatus for a path, failing the test when the
// report does not mention it.
func statusOf(t *testing.T, report *Report, path string) PathStatus {
	t.Helper()
	for _, ps := range report.Paths {
		if ps.Path == path {
			return ps
		}
	}
	t.Fatalf("report has no entry for %q (paths: %+v)", path, report.Paths)
	return PathStatus{}
}

func mustStatus(t *testing.T, r *Repo) *Report {
	t.Helper()
	report, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	return report
}

func mustAdd(t *testing.T, r *Repo, paths ...string) {
	t.Helper()
	if err := r.Add(paths); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func mustCommit(t *testing.T, r *Repo, message string) {
	t.Helper()
	if _, err := r.Commit(message); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestStatusFreshRepoUntracked(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "new.txt", "n")

	report := mustStatus(t, r)
	if len(report.Paths) != 0 {
		t.Errorf("paths: got %+v, want none", report.Paths)
	}
	if !reflect.DeepEqual(report.Untracked, []string{"new.txt"}) {
		t.Errorf("untracked: got %v", report.Untracked)
	}
}

func TestStatusStagedIsAdded(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "new.txt", "n")
	mustAdd(t, r, "new.txt")

	report := mustStatus(t, r)
	ps := statusOf(t, report, "new.txt")
	if ps.Index != Added {
		t.Errorf("index axis: got %v, want added", ps.Index)
	}
	if ps.Work != Unchanged {
		t.Errorf("work axis: got %v, want unchanged", ps.Work)
	}
	if len(report.Untracked) != 0 {
		t.Errorf("untracked: got %v", report.Untracked)
	}
}

func TestStatusCommittedIsClean(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "f.txt", "v1")
	mustAdd(t, r, "f.txt")
	mustCommit(t, r, "add f")

	report := mustStatus(t, r)
	ps := statusOf(t, report, "f.txt")
	if ps.Index != Unchanged || ps.Work != Unchanged {
		t.Errorf("got index=%v work=%v, want both unchanged", ps.Index, ps.Work)
	}
}

func TestStatusWorkspaceModified(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "f.txt", "v1")
	mustAdd(t, r, "f.txt")
	mustCommit(t, r, "add f")

	writeWorkFile(t, r, "f.txt", "v2 changed")

	report := mustStatus(t, r)
	ps := statusOf(t, report, "f.txt")
	if ps.Index != Unchanged {
		t.Errorf("index axis: got %v, want unchanged", ps.Index)
	}
	if ps.Work != Modified {
		t.Errorf("work axis: got %v, want modified", ps.Work)
	}
}

func TestStatusBothAxesAtOnce(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "f.txt", "v1")
	mustAdd(t, r, "f.txt")
	mustCommit(t, r, "v1")

	writeWorkFile(t, r, "f.txt", "v2")
	mustAdd(t, r, "f.txt")
	writeWorkFile(t, r, "f.txt", "v3")

	report := mustStatus(t, r)
	ps := statusOf(t, report, "f.txt")
	if ps.Index != Modified {
		t.Errorf("index axis: got %v, want modified", ps.Index)
	}
	if ps.Work != Modified {
		t.Errorf("work axis: got %v, want modified", ps.Work)
	}
}

func TestStatusWorkspaceDeleted(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "f.txt", "v1")
	mustAdd(t, r, "f.txt")

	if err := os.Remove(filepath.Join(r.RootDir, "f.txt")); err != nil {
		t.Fatal(err)
	}

	report := mustStatus(t, r)
	ps := statusOf(t, report, "f.txt")
	if ps.Work != Deleted {
		t.Errorf("work axis: got %v, want deleted", ps.Work)
	}
}

func TestStatusUnstagedAfterCommitIsIndexDeleted(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "f.txt", "v1")
	mustAdd(t, r, "f.txt")
	mustCommit(t, r, "add f")

	if err := r.Remove([]string{"f.txt"}); err != nil {
		t.Fatal(err)
	}

	report := mustStatus(t, r)
	ps := statusOf(t, report, "f.txt")
	if ps.Index != Deleted {
		t.Errorf("index axis: got %v, want deleted", ps.Index)
	}
}

func TestStatusUntrackedDirectoryCollapsed(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "pkg/a.go", "a")
	writeWorkFile(t, r, "pkg/sub/b.go", "b")
	writeWorkFile(t, r, "top.txt", "t")

	report := mustStatus(t, r)
	want := []string{"pkg/", "top.txt"}
	if !reflect.DeepEqual(report.Untracked, want) {
		t.Errorf("untracked: got %v, want %v", report.Untracked, want)
	}
}

func TestStatusEmptyDirectoryInvisible(t *testing.T) {
	r := newTestRepo(t)
	if err := os.MkdirAll(filepath.Join(r.RootDir, "empty", "chain"), 0o755); err != nil {
		t.Fatal(err)
	}

	report := mustStatus(t, r)
	if len(report.Untracked) != 0 {
		t.Errorf("untracked: got %v, want none", report.Untracked)
	}
}

func TestStatusDescendsDirWithTrackedFile(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "pkg/tracked.go", "t")
	writeWorkFile(t, r, "pkg/new.go", "n")
	mustAdd(t, r, "pkg/tracked.go")

	report := mustStatus(t, r)
	if !reflect.DeepEqual(report.Untracked, []string{"pkg/new.go"}) {
		t.Errorf("untracked: got %v, want [pkg/new.go]", report.Untracked)
	}
}

func TestStatusIsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "a.txt", "a")
	writeWorkFile(t, r, "pkg/b.txt", "b")
	mustAdd(t, r, "a.txt")

	first := mustStatus(t, r)
	second := mustStatus(t, r)
	if !reflect.DeepEqual(first.Paths, second.Paths) {
		t.Errorf("paths changed between runs:\n%+v\n%+v", first.Paths, second.Paths)
	}
	if !reflect.DeepEqual(first.Untracked, second.Untracked) {
		t.Errorf("untracked changed between runs: %v vs %v", first.Untracked, second.Untracked)
	}
}

func TestStatusTouchedFileStaysClean(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "f.txt", "stable content")

	// Age the file so the stat fast path is eligible.
	old := time.Unix(time.Now().Unix()-3600, 123456789)
	full := filepath.Join(r.RootDir, "f.txt")
	if err := os.Chtimes(full, old, old); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, r, "f.txt")

	// Touch without changing content.
	touched := time.Unix(time.Now().Unix()-1800, 987654321)
	if err := os.Chtimes(full, touched, touched); err != nil {
		t.Fatal(err)
	}

	report := mustStatus(t, r)
	ps := statusOf(t, report, "f.txt")
	if ps.Work != Unchanged {
		t.Errorf("work axis: got %v, want unchanged", ps.Work)
	}
	if len(report.Refreshed) != 1 || report.Refreshed[0].Path != "f.txt" {
		t.Fatalf("refreshed: got %+v, want one entry for f.txt", report.Refreshed)
	}
}

func TestApplyStatRefreshRestoresFastPath(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "f.txt", "stable content")

	old := time.Unix(time.Now().Unix()-3600, 123456789)
	full := filepath.Join(r.RootDir, "f.txt")
	if err := os.Chtimes(full, old, old); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, r, "f.txt")

	touched := time.Unix(time.Now().Unix()-1800, 987654321)
	if err := os.Chtimes(full, touched, touched); err != nil {
		t.Fatal(err)
	}

	report := mustStatus(t, r)
	if len(report.Refreshed) == 0 {
		t.Fatal("expected a stat refresh after touching")
	}
	if err := r.ApplyStatRefresh(report); err != nil {
		t.Fatalf("ApplyStatRefresh: %v", err)
	}

	after := mustStatus(t, r)
	if len(after.Refreshed) != 0 {
		t.Errorf("refresh should be persisted, still pending: %+v", after.Refreshed)
	}
	if ps := statusOf(t, after, "f.txt"); ps.Work != Unchanged {
		t.Errorf("work axis: got %v, want unchanged", ps.Work)
	}
}

func TestStatusPathsSorted(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "zebra.txt", "z")
	writeWorkFile(t, r, "apple.txt", "a")
	writeWorkFile(t, r, "mid/way.txt", "m")
	mustAdd(t, r, "zebra.txt", "apple.txt", "mid/way.txt")

	report := mustStatus(t, r)
	var got []string
	for _, ps := range report.Paths {
		got = append(got, ps.Path)
	}
	want := []string{"apple.txt", "mid/way.txt", "zebra.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("path order: got %v, want %v", got, want)
	}
}
