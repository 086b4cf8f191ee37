package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testTime() time.Time {
	return time.Unix(1720000000, 0)
}

// newTestRepo initializes a repository in a temp directory and points the
// commit identity at a fixed test author.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Setenv("GRIT_AUTHOR_NAME", "Test Author")
	t.Setenv("GRIT_AUTHOR_EMAIL", "test@example.com")
	return r
}

// writeWorkFile creates or replaces a file in the repository's working
// directory.
func writeWorkFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	full := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInitLayout(t *testing.T) {
	r := newTestRepo(t)

	for _, rel := range []string{"objects", filepath.Join("refs", "heads")} {
		info, err := os.Stat(filepath.Join(r.GritDir, rel))
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", rel, err)
		}
	}

	head, err := os.ReadFile(filepath.Join(r.GritDir, "HEAD"))
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if string(head) != "ref: refs/heads/main\n" {
		t.Errorf("HEAD content: got %q", head)
	}
}

func TestInitRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if _, err := Init(dir); err == nil {
		t.Error("second Init should fail")
	}
}

func TestOpenFromSubdirectory(t *testing.T) {
	r := newTestRepo(t)
	sub := filepath.Join(r.RootDir, "deep", "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	opened, err := Open(sub)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// RootDir paths may differ by symlink resolution on some systems;
	// compare the resolved forms.
	wantRoot, _ := filepath.EvalSymlinks(r.RootDir)
	gotRoot, _ := filepath.EvalSymlinks(opened.RootDir)
	if gotRoot != wantRoot {
		t.Errorf("RootDir: got %s, want %s", gotRoot, wantRoot)
	}
}

func TestOpenOutsideRepository(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("Open outside any repository should fail")
	}
}

func TestHeadSymbolic(t *testing.T) {
	r := newTestRepo(t)
	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != "refs/heads/main" {
		t.Errorf("Head: got %q", head)
	}
}

func TestResolveRefFreshRepo(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.ResolveRef("HEAD"); err == nil {
		t.Error("HEAD in a fresh repo should not resolve to a hash")
	}
}

func TestConfigRoundtrip(t *testing.T) {
	r := newTestRepo(t)

	cfg := &Config{}
	cfg.User.Name = "Ada"
	cfg.User.Email = "ada@example.com"
	cfg.Signing.Key = "~/.ssh/id_ed25519"
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	back, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if back.User.Name != "Ada" || back.User.Email != "ada@example.com" {
		t.Errorf("user config: got %+v", back.User)
	}
	if back.Signing.Key != "~/.ssh/id_ed25519" {
		t.Errorf("signing config: got %+v", back.Signing)
	}
}

func TestReadConfigMissingIsEmpty(t *testing.T) {
	r := newTestRepo(t)
	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.User.Name != "" || cfg.Signing.Key != "" {
		t.Errorf("missing config should be empty, got %+v", cfg)
	}
}

func TestCommitIdentityEnvOverride(t *testing.T) {
	r := newTestRepo(t)

	cfg := &Config{}
	cfg.User.Name = "Config Name"
	cfg.User.Email = "config@example.com"
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}

	// Env set by newTestRepo wins over the config file.
	id, err := r.CommitIdentity(testTime())
	if err != nil {
		t.Fatalf("CommitIdentity: %v", err)
	}
	if id.Name != "Test Author" || id.Email != "test@example.com" {
		t.Errorf("identity: got %+v", id)
	}
}

func TestCommitIdentityUnconfigured(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("GRIT_AUTHOR_NAME", "")
	t.Setenv("GRIT_AUTHOR_EMAIL", "")

	_, err = r.CommitIdentity(testTime())
	if err == nil || !strings.Contains(err.Error(), "identity not configured") {
		t.Errorf("got %v, want identity-not-configured error", err)
	}
}
