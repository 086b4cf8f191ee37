package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gritvcs/grit/pkg/lockfile"
	"github.com/gritvcs/grit/pkg/object"
)

// ErrRefCASMismatch reports that a ref's current value did not match the
// expected old hash during a compare-and-swap update.
var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// Head reads .grit/HEAD. If the content starts with "ref: ", it returns
// the ref path (e.g. "refs/heads/main"); otherwise the raw content as a
// detached hash string.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GritDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimPrefix(content, "ref: "), nil
	}
	return content, nil
}

// ResolveRef resolves a ref name to an object hash.
//
// Resolution order:
//  1. "HEAD": read HEAD; resolve the target ref when symbolic.
//  2. Names starting with "refs/": read .grit/<name>.
//  3. Otherwise "refs/heads/<name>".
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(head, "refs/") {
			return r.ResolveRef(head)
		}
		return object.Hash(head), nil
	}

	var refPath string
	if strings.HasPrefix(name, "refs/") {
		refPath = filepath.Join(r.GritDir, filepath.FromSlash(name))
	} else {
		refPath = filepath.Join(r.GritDir, "refs", "heads", name)
	}

	data, err := os.ReadFile(refPath)
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return object.Hash(strings.TrimRight(string(data), "\n")), nil
}

// UpdateRef writes a hash to the named ref file under .grit/.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	return r.UpdateRefCAS(name, h)
}

// UpdateRefCAS writes a hash to the named ref file using lockfile + rename
// semantics. If expectedOld is provided, the update only succeeds when the
// current ref hash matches it.
func (r *Repo) UpdateRefCAS(name string, h object.Hash, expectedOld ...object.Hash) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}

	refPath := filepath.Join(r.GritDir, filepath.FromSlash(name))

	lock, err := acquireRefLock(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	defer lock.Rollback()

	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if len(expectedOld) == 1 && oldHash != expectedOld[0] {
		return fmt.Errorf(
			"update ref %q: %w (expected %s, found %s)",
			name, ErrRefCASMismatch, expectedOld[0], oldHash,
		)
	}

	if _, err := lock.Write([]byte(string(h) + "\n")); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lock.Commit(); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	return nil
}

// acquireRefLock retries briefly on contention; ref updates are quick, so
// a bounded wait beats surfacing every transient collision.
func acquireRefLock(refPath string) (*lockfile.Lock, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		lock, err := lockfile.Acquire(refPath)
		if err == nil {
			return lock, nil
		}
		if errors.Is(err, lockfile.ErrLocked) {
			if time.Now().After(deadline) {
				return nil, err
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}
