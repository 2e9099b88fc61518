package lint

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// ChangeSet is a set of slash-separated paths relative to the repository
// root. A nil ChangeSet means "everything changed".
type ChangeSet map[string]bool

// Delta finds the markup files touched since the target branch.
type Delta struct {
	RootDir      string
	TargetBranch string
	Verbose      bool
}

// ChangedFiles returns uncommitted paths plus paths committed since the
// merge base with the target branch. It returns nil when the root is not a
// git repository or no baseline can be resolved, which callers treat as a
// full scan.
func (d *Delta) ChangedFiles(ctx context.Context) (ChangeSet, error) {
	repo, err := git.PlainOpen(d.RootDir)
	if err != nil {
		d.logf("delta: %s is not a git repository, linting all files", d.RootDir)
		return nil, nil
	}

	set := ChangeSet{}
	if err := d.addWorktree(repo, set); err != nil {
		d.logf("delta: worktree status failed: %v, linting all files", err)
		return nil, nil
	}

	branch := d.target(repo)
	if err := d.addCommitted(ctx, repo, branch, set); err != nil {
		d.logf("delta: diff against %s failed: %v, linting all files", branch, err)
		return nil, nil
	}

	d.logf("delta: %d changed path(s) against %s", len(set), branch)
	return set, nil
}

func (d *Delta) addWorktree(repo *git.Repository, set ChangeSet) error {
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	status, err := wt.Status()
	if err != nil {
		return err
	}
	for p, s := range status {
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			set[p] = true
		}
	}
	return nil
}

// addCommitted adds paths that differ between HEAD and its merge base with
// branch. When HEAD is the branch tip the last commit is used instead.
func (d *Delta) addCommitted(ctx context.Context, repo *git.Repository, branch string, set ChangeSet) error {
	head, err := repo.Head()
	if err != nil {
		// No commits yet.
		return nil
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("reading HEAD: %w", err)
	}

	base, err := d.baseline(repo, headCommit, branch)
	if err != nil || base == nil {
		return err
	}

	from, err := base.Tree()
	if err != nil {
		return err
	}
	to, err := headCommit.Tree()
	if err != nil {
		return err
	}
	changes, err := object.DiffTreeWithOptions(ctx, from, to, &object.DiffTreeOptions{})
	if err != nil {
		return fmt.Errorf("diffing trees: %w", err)
	}
	for _, c := range changes {
		if name := changedPath(c); name != "" {
			set[name] = true
		}
	}
	return nil
}

func (d *Delta) baseline(repo *git.Repository, head *object.Commit, branch string) (*object.Commit, error) {
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		ref, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
		if err != nil {
			d.logf("delta: branch %s not found, using uncommitted changes only", branch)
			return nil, nil
		}
	}
	tip, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", branch, err)
	}

	if tip.Hash == head.Hash {
		if head.NumParents() == 0 {
			return nil, nil
		}
		return head.Parent(0)
	}

	bases, err := head.MergeBase(tip)
	if err != nil {
		return nil, fmt.Errorf("merge base with %s: %w", branch, err)
	}
	if len(bases) == 0 {
		return tip, nil
	}
	return bases[0], nil
}

// target picks the branch to compare against: WAXLINT_TARGET_BRANCH, the
// configured branch, a CI merge request variable, origin/HEAD, then main.
func (d *Delta) target(repo *git.Repository) string {
	if b := os.Getenv("WAXLINT_TARGET_BRANCH"); b != "" {
		return b
	}
	if d.TargetBranch != "" {
		return d.TargetBranch
	}
	for _, v := range []string{
		"CI_MERGE_REQUEST_TARGET_BRANCH_NAME",
		"GITHUB_BASE_REF",
		"BITBUCKET_PR_DESTINATION_BRANCH",
		"CHANGE_TARGET",
	} {
		if b := os.Getenv(v); b != "" {
			return b
		}
	}
	if ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), false); err == nil {
		if b, ok := strings.CutPrefix(ref.Target().String(), "refs/remotes/origin/"); ok {
			return b
		}
	}
	return "main"
}

func (d *Delta) logf(format string, args ...any) {
	if d.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

func changedPath(c *object.Change) string {
	action, err := c.Action()
	if err != nil {
		return ""
	}
	switch action {
	case merkletrie.Insert, merkletrie.Modify:
		return c.To.Name
	case merkletrie.Delete:
		return c.From.Name
	}
	return ""
}

// FilterByDelta keeps the files in set. A nil set keeps everything.
func FilterByDelta(files []FileInfo, set ChangeSet) []FileInfo {
	if set == nil {
		return files
	}
	out := make([]FileInfo, 0, len(files))
	for _, f := range files {
		if set[normalizeSlashPath(f.Path)] {
			out = append(out, f)
		}
	}
	return out
}
