package gitsync

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/securefoxd/securefox/vaulterrors"
)

// SyncStatus reports working-tree and ahead/behind state, surfaced by
// httpapi's GET /api/sync/status per SPEC_FULL's supplemented
// features.
type SyncStatus struct {
	Ahead  int
	Behind int
	Dirty  bool
}

// Status computes the current SyncStatus. It fetches first so
// Ahead/Behind reflect the remote's latest state; the fetch updates the
// remote-tracking ref, and nothing else is changed.
func (e *Engine) Status() (SyncStatus, error) {
	_ = e.Fetch()

	ahead, behind, err := e.aheadBehind()
	if err != nil {
		return SyncStatus{}, err
	}

	dirty, err := e.dirty()
	if err != nil {
		return SyncStatus{}, err
	}

	return SyncStatus{Ahead: ahead, Behind: behind, Dirty: dirty}, nil
}

// HasLocalChanges is true if the working tree is dirty or the local
// HEAD is strictly ahead of the tracked remote ref.
func (e *Engine) HasLocalChanges() (bool, error) {
	dirty, err := e.dirty()
	if err != nil {
		return false, err
	}

	if dirty {
		return true, nil
	}

	return e.localAhead()
}

// HasRemoteUpdates fetches and reports whether the tracked remote ref
// is strictly ahead of HEAD.
func (e *Engine) HasRemoteUpdates() (bool, error) {
	if err := e.Fetch(); err != nil {
		return false, err
	}

	_, behind, err := e.aheadBehind()
	if err != nil {
		return false, err
	}

	return behind > 0, nil
}

func (e *Engine) dirty() (bool, error) {
	wt, err := e.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("%w: worktree: %v", vaulterrors.ErrGit, err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("%w: status: %v", vaulterrors.ErrGit, err)
	}

	return !status.IsClean(), nil
}

func (e *Engine) localAhead() (bool, error) {
	ahead, _, err := e.aheadBehind()
	return ahead > 0, err
}

// aheadBehind counts commits reachable from HEAD but not the remote
// ref (ahead) and vice versa (behind), walking back from each tip to
// their common merge base.
func (e *Engine) aheadBehind() (ahead, behind int, err error) {
	headRef, headErr := e.repo.Head()
	remoteRef, remoteErr := e.repo.Reference(e.remoteRef(), true)

	switch {
	case headErr != nil && remoteErr != nil:
		return 0, 0, nil
	case headErr != nil:
		behind, err = e.countCommits(remoteRef.Hash(), nil)
		return 0, behind, err
	case remoteErr != nil:
		ahead, err = e.countCommits(headRef.Hash(), nil)
		return ahead, 0, err
	}

	if headRef.Hash() == remoteRef.Hash() {
		return 0, 0, nil
	}

	headCommit, err := e.repo.CommitObject(headRef.Hash())
	if err != nil {
		return 0, 0, fmt.Errorf("%w: load local commit: %v", vaulterrors.ErrGit, err)
	}

	remoteCommit, err := e.repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return 0, 0, fmt.Errorf("%w: load remote commit: %v", vaulterrors.ErrGit, err)
	}

	bases, err := headCommit.MergeBase(remoteCommit)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: merge base: %v", vaulterrors.ErrGit, err)
	}

	var basePtr *plumbing.Hash

	if len(bases) > 0 {
		h := bases[0].Hash
		basePtr = &h
	}

	ahead, err = e.countCommits(headRef.Hash(), basePtr)
	if err != nil {
		return 0, 0, err
	}

	behind, err = e.countCommits(remoteRef.Hash(), basePtr)
	if err != nil {
		return 0, 0, err
	}

	return ahead, behind, nil
}

// countCommits walks history from hash, stopping at (and not
// counting) stopAt, or walking the whole history if stopAt is nil.
func (e *Engine) countCommits(hash plumbing.Hash, stopAt *plumbing.Hash) (int, error) {
	iter, err := e.repo.Log(&git.LogOptions{From: hash})
	if err != nil {
		return 0, fmt.Errorf("%w: log: %v", vaulterrors.ErrGit, err)
	}
	defer iter.Close()

	count := 0

	for {
		commit, err := iter.Next()
		if err != nil {
			break
		}

		if stopAt != nil && commit.Hash == *stopAt {
			break
		}

		count++
	}

	return count, nil
}
