package git

import (
	"errors"
	"fmt"
	"time"

	git2go "github.com/libgit2/git2go/v31"

	"github.com/raphi011/gitls/internal/pipeline"
	"github.com/raphi011/gitls/internal/vcs"
)

const (
	stagedMask = git2go.StatusIndexNew | git2go.StatusIndexModified |
		git2go.StatusIndexDeleted | git2go.StatusIndexRenamed |
		git2go.StatusIndexTypeChange
	modifiedMask = git2go.StatusWtModified | git2go.StatusWtDeleted |
		git2go.StatusWtTypeChange | git2go.StatusWtRenamed
	untrackedMask = git2go.StatusWtNew
)

// Opener opens repositories with libgit2. The zero value is ready to use.
type Opener struct{}

// Open opens the repository whose working tree is at path.
func (Opener) Open(path string) (pipeline.Repository, error) {
	return Open(path)
}

// Repo is an open repository handle.
type Repo struct {
	repo *git2go.Repository
}

// Open opens the repository at path without searching parent directories.
func Open(path string) (*Repo, error) {
	repo, err := git2go.OpenRepositoryExtended(path, git2go.RepositoryOpenNoSearch, "")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Repo{repo: repo}, nil
}

// Close frees the underlying libgit2 repository.
func (r *Repo) Close() {
	r.repo.Free()
}

// Head reports where HEAD points.
func (r *Repo) Head() vcs.Position {
	if unborn, err := r.repo.IsHeadUnborn(); err == nil && unborn {
		return vcs.Position{Kind: vcs.Unborn}
	}

	detached, err := r.repo.IsHeadDetached()
	if err != nil {
		return vcs.Position{Kind: vcs.Unresolved}
	}

	head, err := r.repo.Head()
	if err != nil {
		return vcs.Position{Kind: vcs.Unresolved}
	}
	defer head.Free()

	commit, _ := peelCommitID(head)
	if detached {
		return vcs.Position{Kind: vcs.Detached, Commit: commit}
	}
	return vcs.Position{Kind: vcs.OnBranch, Branch: head.Shorthand(), Commit: commit}
}

// Status buckets every entry of the index and working tree. Submodules are
// excluded and untracked directories are recursed into.
func (r *Repo) Status() ([]vcs.Change, error) {
	list, err := r.repo.StatusList(&git2go.StatusOptions{
		Show: git2go.StatusShowIndexAndWorkdir,
		Flags: git2go.StatusOptIncludeUntracked |
			git2go.StatusOptRecurseUntrackedDirs |
			git2go.StatusOptExcludeSubmodules,
	})
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	defer list.Free()

	n, err := list.EntryCount()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	changes := make([]vcs.Change, 0, n)
	for i := range n {
		entry, err := list.ByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("status entry %d: %w", i, err)
		}
		if c := classify(entry.Status); c != 0 {
			changes = append(changes, c)
		}
	}
	return changes, nil
}

// classify maps libgit2 status flags onto change buckets. Ignored and
// conflicted flags fall into none.
func classify(s git2go.Status) vcs.Change {
	var c vcs.Change
	if s&stagedMask != 0 {
		c |= vcs.Staged
	}
	if s&modifiedMask != 0 {
		c |= vcs.Modified
	}
	if s&untrackedMask != 0 {
		c |= vcs.Untracked
	}
	return c
}

// LocalBranch resolves a local branch to its commit.
func (r *Repo) LocalBranch(name string) (string, error) {
	branch, err := r.repo.LookupBranch(name, git2go.BranchLocal)
	if git2go.IsErrorCode(err, git2go.ErrorCodeNotFound) || git2go.IsErrorCode(err, git2go.ErrorCodeInvalidSpec) {
		return "", fmt.Errorf("%s: %w", name, vcs.ErrBranchNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("lookup branch %s: %w", name, err)
	}
	defer branch.Free()
	return peelCommitID(branch.Reference)
}

// Checkout writes the tree of commit with the safe strategy: files with
// local modifications are never overwritten and conflicts fail the call.
func (r *Repo) Checkout(commit string) error {
	c, err := r.lookupCommit(commit)
	if err != nil {
		return err
	}
	defer c.Free()

	tree, err := c.Tree()
	if err != nil {
		return fmt.Errorf("tree of %s: %w", commit, err)
	}
	defer tree.Free()

	if err := r.repo.CheckoutTree(tree, &git2go.CheckoutOptions{Strategy: git2go.CheckoutSafe}); err != nil {
		return fmt.Errorf("checkout %s: %w", commit, err)
	}
	return nil
}

// SetHead points HEAD at refs/heads/<branch>.
func (r *Repo) SetHead(branch string) error {
	if err := r.repo.SetHead("refs/heads/" + branch); err != nil {
		return fmt.Errorf("set head %s: %w", branch, err)
	}
	return nil
}

// AdvanceHead moves the branch HEAD points at to commit.
func (r *Repo) AdvanceHead(commit string) error {
	oid, err := git2go.NewOid(commit)
	if err != nil {
		return fmt.Errorf("parse %s: %w", commit, err)
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("read head: %w", err)
	}
	defer head.Free()

	if !head.IsBranch() {
		return errors.New("advance head: HEAD is not on a branch")
	}

	moved, err := head.SetTarget(oid, "gitls: fast-forward")
	if err != nil {
		return fmt.Errorf("advance %s: %w", head.Shorthand(), err)
	}
	moved.Free()
	return nil
}

// Upstream resolves the upstream commit of the current branch.
func (r *Repo) Upstream() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: %v", vcs.ErrNoUpstream, err)
	}
	defer head.Free()

	if !head.IsBranch() {
		return "", vcs.ErrNoUpstream
	}

	upstream, err := head.Branch().Upstream()
	if git2go.IsErrorCode(err, git2go.ErrorCodeNotFound) {
		return "", vcs.ErrNoUpstream
	}
	if err != nil {
		return "", fmt.Errorf("upstream of %s: %w", head.Shorthand(), err)
	}
	defer upstream.Free()
	return peelCommitID(upstream)
}

// AheadBehind counts commits unique to local and to upstream.
func (r *Repo) AheadBehind(local, upstream string) (int, int, error) {
	l, err := git2go.NewOid(local)
	if err != nil {
		return 0, 0, fmt.Errorf("parse %s: %w", local, err)
	}
	u, err := git2go.NewOid(upstream)
	if err != nil {
		return 0, 0, fmt.Errorf("parse %s: %w", upstream, err)
	}
	ahead, behind, err := r.repo.AheadBehind(l, u)
	if err != nil {
		return 0, 0, fmt.Errorf("ahead/behind: %w", err)
	}
	return ahead, behind, nil
}

// MergeAnalysis relates HEAD to upstream.
func (r *Repo) MergeAnalysis(upstream string) (vcs.MergeAnalysis, error) {
	oid, err := git2go.NewOid(upstream)
	if err != nil {
		return vcs.Diverged, fmt.Errorf("parse %s: %w", upstream, err)
	}

	theirs, err := r.repo.LookupAnnotatedCommit(oid)
	if err != nil {
		return vcs.Diverged, fmt.Errorf("annotate %s: %w", upstream, err)
	}
	defer theirs.Free()

	analysis, _, err := r.repo.MergeAnalysis([]*git2go.AnnotatedCommit{theirs})
	if err != nil {
		return vcs.Diverged, fmt.Errorf("merge analysis: %w", err)
	}

	switch {
	case analysis&git2go.MergeAnalysisUpToDate != 0:
		return vcs.UpToDate, nil
	case analysis&git2go.MergeAnalysisFastForward != 0:
		return vcs.FastForward, nil
	default:
		return vcs.Diverged, nil
	}
}

// CommitTime returns the committer time of commit.
func (r *Repo) CommitTime(commit string) (time.Time, error) {
	c, err := r.lookupCommit(commit)
	if err != nil {
		return time.Time{}, err
	}
	defer c.Free()
	return c.Committer().When, nil
}

func (r *Repo) lookupCommit(commit string) (*git2go.Commit, error) {
	oid, err := git2go.NewOid(commit)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", commit, err)
	}
	c, err := r.repo.LookupCommit(oid)
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", commit, err)
	}
	return c, nil
}

// peelCommitID resolves ref to the hex id of the commit it points at.
func peelCommitID(ref *git2go.Reference) (string, error) {
	obj, err := ref.Peel(git2go.ObjectCommit)
	if err != nil {
		return "", fmt.Errorf("peel %s: %w", ref.Name(), err)
	}
	defer obj.Free()
	return obj.Id().String(), nil
}
