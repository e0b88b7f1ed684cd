package gitsync

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/securefoxd/securefox/vaulterrors"
)

// ConflictResolver chooses the winning blob for a path that changed
// on both sides of a merge. The default is "prefer theirs" (the
// remote side always wins a true conflict); spec.md §9 calls out a
// Vault-aware resolver (union by item id, keep max revision_date) as
// a conforming refinement that could be substituted here.
type ConflictResolver func(path string, base, ours, theirs *object.File) (*object.File, error)

// PreferTheirs is the default ConflictResolver: it always returns
// theirs, per spec.md §4.4.
func PreferTheirs(_ string, _, _, theirs *object.File) (*object.File, error) {
	return theirs, nil
}

// merge performs a three-way merge between ours and theirs against
// their common ancestor, materialising the result into the working
// tree and creating a two-parent merge commit. Conflicting paths
// (changed on both sides relative to the base) are resolved by
// e.Resolver, defaulting to PreferTheirs.
func (e *Engine) merge(ours, theirs *object.Commit) error {
	resolver := e.Resolver
	if resolver == nil {
		resolver = PreferTheirs
	}

	bases, err := ours.MergeBase(theirs)
	if err != nil {
		return fmt.Errorf("%w: merge base: %v", vaulterrors.ErrGit, err)
	}

	var base *object.Commit
	if len(bases) > 0 {
		base = bases[0]
	}

	oursTree, err := ours.Tree()
	if err != nil {
		return fmt.Errorf("%w: ours tree: %v", vaulterrors.ErrGit, err)
	}

	theirsTree, err := theirs.Tree()
	if err != nil {
		return fmt.Errorf("%w: theirs tree: %v", vaulterrors.ErrGit, err)
	}

	var baseTree *object.Tree
	if base != nil {
		baseTree, err = base.Tree()
		if err != nil {
			return fmt.Errorf("%w: base tree: %v", vaulterrors.ErrGit, err)
		}
	}

	oursChanged := changedPaths(baseTree, oursTree)
	theirsChanged := changedPaths(baseTree, theirsTree)

	wt, err := e.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: worktree: %v", vaulterrors.ErrGit, err)
	}

	// Start from theirs: every path not touched by ours already has
	// the correct (only) value, and every true conflict defaults to
	// theirs by construction.
	if err := materializeTree(wt.Filesystem, theirsTree); err != nil {
		return err
	}

	// Paths theirs deleted are absent from theirsTree, so materialising
	// it leaves them behind; remove them before ours' changes apply.
	for path := range theirsChanged {
		if _, err := theirsTree.File(path); err != nil {
			_ = wt.Filesystem.Remove(path)
		}
	}

	for path := range oursChanged {
		if theirsChanged[path] {
			// Conflict: both sides touched this path. Ask the
			// resolver, defaulting to theirs (already materialised).
			oursFile, _ := oursTree.File(path)
			theirsFile, _ := theirsTree.File(path)

			var baseFile *object.File
			if baseTree != nil {
				baseFile, _ = baseTree.File(path)
			}

			winner, err := resolver(path, baseFile, oursFile, theirsFile)
			if err != nil {
				return fmt.Errorf("%w: resolve conflict at %s: %v", vaulterrors.ErrGit, path, err)
			}

			if winner != nil && winner != theirsFile {
				if err := materializeFile(wt.Filesystem, winner); err != nil {
					return err
				}
			}

			continue
		}

		// Only ours touched this path: ours' value survives the merge.
		oursFile, err := oursTree.File(path)
		if err != nil {
			// ours deleted the path; remove it from the working tree.
			_ = wt.Filesystem.Remove(path)
			continue
		}

		if err := materializeFile(wt.Filesystem, oursFile); err != nil {
			return err
		}
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("%w: stage merge: %v", vaulterrors.ErrGit, err)
	}

	sig := e.getSignature()

	_, err = wt.Commit("Merge remote-tracking branch", &git.CommitOptions{
		Author:    sig,
		Committer: sig,
		Parents:   []plumbing.Hash{ours.Hash, theirs.Hash},
	})
	if err != nil {
		return fmt.Errorf("%w: merge commit: %v", vaulterrors.ErrGit, err)
	}

	return nil
}

// changedPaths returns the set of file paths present in to but absent
// from, or differing in content hash from, from, plus the paths present
// in from but deleted in to. A nil from tree (no common ancestor)
// treats every path in to as changed.
func changedPaths(from, to *object.Tree) map[string]bool {
	changed := make(map[string]bool)

	if to == nil {
		return changed
	}

	_ = to.Files().ForEach(func(f *object.File) error {
		if from == nil {
			changed[f.Name] = true
			return nil
		}

		baseFile, err := from.File(f.Name)
		if err != nil || baseFile.Hash != f.Hash {
			changed[f.Name] = true
		}

		return nil
	})

	if from != nil {
		_ = from.Files().ForEach(func(f *object.File) error {
			if _, err := to.File(f.Name); err != nil {
				changed[f.Name] = true // deleted relative to base
			}

			return nil
		})
	}

	return changed
}

func materializeTree(fs billy.Filesystem, tree *object.Tree) error {
	return tree.Files().ForEach(func(f *object.File) error {
		return materializeFile(fs, f)
	})
}

func materializeFile(fs billy.Filesystem, f *object.File) error {
	if dir := filepath.Dir(f.Name); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir for %s: %v", vaulterrors.ErrGit, f.Name, err)
		}
	}

	dst, err := fs.Create(f.Name)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", vaulterrors.ErrGit, f.Name, err)
	}
	defer dst.Close()

	r, err := f.Reader()
	if err != nil {
		return fmt.Errorf("%w: read blob for %s: %v", vaulterrors.ErrGit, f.Name, err)
	}
	defer r.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("%w: write %s: %v", vaulterrors.ErrGit, f.Name, err)
	}

	return nil
}
