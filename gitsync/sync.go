package gitsync

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/securefoxd/securefox/vaulterrors"
)

// AutoCommit stages every change in the working tree and commits it
// with message, skipping the commit entirely if the resulting tree
// would be identical to HEAD's (no-op save), mirroring the original's
// tree_id equality check.
func (e *Engine) AutoCommit(message string) error {
	wt, err := e.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: worktree: %v", vaulterrors.ErrGit, err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("%w: stage changes: %v", vaulterrors.ErrGit, err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("%w: status: %v", vaulterrors.ErrGit, err)
	}

	if status.IsClean() {
		return nil
	}

	sig := e.getSignature()

	if _, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("%w: commit: %v", vaulterrors.ErrGit, err)
	}

	return nil
}

// ensureBranchName renames the current branch to e.branchName if it
// differs, matching the original's push-time rename.
func (e *Engine) ensureBranchName() error {
	head, err := e.repo.Head()
	if err != nil {
		return nil // no commits yet; nothing to rename
	}

	if !head.Name().IsBranch() {
		return nil
	}

	current := head.Name().Short()
	if current == e.branchName {
		return nil
	}

	targetRef := plumbing.NewHashReference(plumbing.NewBranchReferenceName(e.branchName), head.Hash())
	if err := e.repo.Storer.SetReference(targetRef); err != nil {
		return fmt.Errorf("%w: create branch %q: %v", vaulterrors.ErrGit, e.branchName, err)
	}

	if err := e.repo.Storer.RemoveReference(head.Name()); err != nil {
		return fmt.Errorf("%w: remove branch %q: %v", vaulterrors.ErrGit, current, err)
	}

	symRef := plumbing.NewSymbolicReference(plumbing.HEAD, targetRef.Name())
	if err := e.repo.Storer.SetReference(symRef); err != nil {
		return fmt.Errorf("%w: update HEAD: %v", vaulterrors.ErrGit, err)
	}

	return nil
}

// Push pushes the configured branch to the configured remote,
// creating an initial commit first if the repository has none yet.
func (e *Engine) Push() error {
	if _, err := e.repo.Head(); err != nil {
		if err := e.AutoCommit("Initial commit"); err != nil {
			return err
		}
	}

	if err := e.ensureBranchName(); err != nil {
		return err
	}

	url, ok := e.GetRemote()
	if !ok {
		return fmt.Errorf("%w: no remote %q configured", vaulterrors.ErrGit, e.remoteName)
	}

	auth, err := e.auth(url)
	if err != nil {
		return err
	}

	refspec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", e.branchName, e.branchName))

	err = e.repo.Push(&git.PushOptions{
		RemoteName: e.remoteName,
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       auth,
	})

	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: push: %v", vaulterrors.ErrGit, err)
	}

	return nil
}

// Fetch fetches the configured remote's configured branch.
func (e *Engine) Fetch() error {
	url, ok := e.GetRemote()
	if !ok {
		return nil
	}

	auth, err := e.auth(url)
	if err != nil {
		return err
	}

	refspec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", e.branchName, e.remoteName, e.branchName))

	err = e.repo.Fetch(&git.FetchOptions{
		RemoteName: e.remoteName,
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       auth,
	})

	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}

	if err != nil {
		// A remote branch that doesn't exist yet (nothing has been
		// pushed there) is not a sync failure; there is simply
		// nothing to fetch.
		if _, refErr := e.repo.Reference(e.remoteRef(), true); refErr != nil {
			return nil
		}

		return fmt.Errorf("%w: fetch: %v", vaulterrors.ErrGit, err)
	}

	return nil
}

// remoteRef returns the fully-qualified remote-tracking ref for the
// configured branch.
func (e *Engine) remoteRef() plumbing.ReferenceName {
	return plumbing.NewRemoteReferenceName(e.remoteName, e.branchName)
}

// Pull fetches and, if the remote is ahead, fast-forwards or merges
// local state to match it.
func (e *Engine) Pull() error {
	if err := e.Fetch(); err != nil {
		return err
	}

	remoteRef, err := e.repo.Reference(e.remoteRef(), true)
	if err != nil {
		return nil // nothing fetched, nothing to do
	}

	headRef, err := e.repo.Head()
	if err != nil {
		return e.fastForwardTo(remoteRef.Hash())
	}

	if headRef.Hash() == remoteRef.Hash() {
		return nil
	}

	headCommit, err := e.repo.CommitObject(headRef.Hash())
	if err != nil {
		return fmt.Errorf("%w: load local commit: %v", vaulterrors.ErrGit, err)
	}

	remoteCommit, err := e.repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return fmt.Errorf("%w: load remote commit: %v", vaulterrors.ErrGit, err)
	}

	isAncestor, err := headCommit.IsAncestor(remoteCommit)
	if err != nil {
		return fmt.Errorf("%w: ancestry check: %v", vaulterrors.ErrGit, err)
	}

	if isAncestor {
		return e.fastForwardTo(remoteRef.Hash())
	}

	return e.merge(headCommit, remoteCommit)
}

// fastForwardTo advances HEAD and the working tree to hash without
// creating a merge commit.
func (e *Engine) fastForwardTo(hash plumbing.Hash) error {
	head, err := e.repo.Head()
	if err != nil {
		branchRef := plumbing.NewHashReference(plumbing.NewBranchReferenceName(e.branchName), hash)
		if err := e.repo.Storer.SetReference(branchRef); err != nil {
			return fmt.Errorf("%w: create branch: %v", vaulterrors.ErrGit, err)
		}

		symRef := plumbing.NewSymbolicReference(plumbing.HEAD, branchRef.Name())
		if err := e.repo.Storer.SetReference(symRef); err != nil {
			return fmt.Errorf("%w: set HEAD: %v", vaulterrors.ErrGit, err)
		}
	} else {
		newRef := plumbing.NewHashReference(head.Name(), hash)
		if err := e.repo.Storer.SetReference(newRef); err != nil {
			return fmt.Errorf("%w: fast-forward ref: %v", vaulterrors.ErrGit, err)
		}
	}

	wt, err := e.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: worktree: %v", vaulterrors.ErrGit, err)
	}

	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return fmt.Errorf("%w: checkout: %v", vaulterrors.ErrGit, err)
	}

	return nil
}

// AutoCommitPush commits any pending local changes and, if a remote
// is configured, pushes.
func (e *Engine) AutoCommitPush(message string) error {
	if err := e.AutoCommit(message); err != nil {
		return err
	}

	if _, ok := e.GetRemote(); ok {
		return e.Push()
	}

	return nil
}

// SmartSyncResult reports what SmartSync actually did.
type SmartSyncResult struct {
	Pulled          bool
	Pushed          bool
	AlreadyUpToDate bool
}

// SmartSync implements the state machine of spec.md §4.4: fetch,
// pull if the remote is ahead, commit if the working tree is dirty,
// push if local is ahead afterwards. On a fresh repository with no
// remote configured it is a no-op reporting already-up-to-date, per
// spec.md §8's boundary case.
func (e *Engine) SmartSync() (SmartSyncResult, error) {
	if _, ok := e.GetRemote(); !ok {
		return SmartSyncResult{AlreadyUpToDate: true}, nil
	}

	result := SmartSyncResult{}

	behindBefore, err := e.HasRemoteUpdates()
	if err != nil {
		return result, err
	}

	if behindBefore {
		if err := e.Pull(); err != nil {
			return result, err
		}

		result.Pulled = true
	}

	dirty, err := e.dirty()
	if err != nil {
		return result, err
	}

	if dirty {
		if err := e.AutoCommit("Auto sync"); err != nil {
			return result, err
		}
	}

	ahead, err := e.localAhead()
	if err != nil {
		return result, err
	}

	if dirty || ahead {
		if err := e.Push(); err != nil {
			return result, err
		}

		result.Pushed = true
	}

	result.AlreadyUpToDate = !result.Pulled && !result.Pushed

	return result, nil
}
