package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/gritvcs/grit/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an
// encoded signature string to be persisted with the commit.
type CommitSigner func(payload []byte) (string, error)

// Commit creates a new commit from the current index.
//
//  1. Load index (empty index is an error)
//  2. Build the tree hierarchy from the index
//  3. Resolve HEAD for the parent commit, if any
//  4. Assemble the commit with identity from config and the current time
//  5. Write the commit object
//  6. Advance the current branch ref (compare-and-swap on the parent)
func (r *Repo) Commit(message string) (object.Hash, error) {
	return r.CommitWithSigner(message, nil)
}

// CommitWithSigner creates a new commit and signs it when signer is
// provided.
func (r *Repo) CommitWithSigner(message string, signer CommitSigner) (object.Hash, error) {
	ix, err := r.LoadIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if ix.Len() == 0 {
		return "", fmt.Errorf("commit: nothing staged")
	}

	treeHash, err := r.BuildTree(ix)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	// First commit has no parent; a failed HEAD resolution means exactly that.
	var parents []object.Hash
	parentHash, err := r.ResolveRef("HEAD")
	if err == nil && parentHash != "" {
		parents = append(parents, parentHash)
	}

	id, err := r.CommitIdentity(time.Now())
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	commitObj := &object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    id,
		Committer: id,
		Message:   message,
	}
	if signer != nil {
		signature, err := signer(object.CommitSigningPayload(commitObj))
		if err != nil {
			return "", fmt.Errorf("commit: sign: %w", err)
		}
		commitObj.Signature = signature
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: read HEAD: %w", err)
	}

	if strings.HasPrefix(head, "refs/") {
		var updateErr error
		if parentHash == "" {
			updateErr = r.UpdateRefCAS(head, commitHash)
		} else {
			updateErr = r.UpdateRefCAS(head, commitHash, parentHash)
		}
		if updateErr != nil {
			return "", fmt.Errorf("commit: update ref %q: %w", head, updateErr)
		}
	} else {
		// Detached HEAD: CAS against the old hash directly.
		if err := r.UpdateRefCAS("HEAD", commitHash, object.Hash(strings.TrimSpace(head))); err != nil {
			return "", fmt.Errorf("commit: update detached HEAD: %w", err)
		}
	}

	return commitHash, nil
}

// Log walks first-parent history from start, returning up to limit
// commits, newest first.
func (r *Repo) Log(start object.Hash, limit int) ([]*object.CommitObj, error) {
	var commits []*object.CommitObj
	current := start

	for len(commits) < limit && current != "" {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		commits = append(commits, c)
		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}
	return commits, nil
}
