// Package vcs defines the backend-neutral vocabulary shared between the
// repository pipeline and the version-control backend that implements it.
//
// Nothing in this package talks to a repository. The concrete libgit2
// implementation lives in [github.com/raphi011/gitls/internal/git]; tests
// substitute in-memory fakes.
package vcs

import "errors"

// Sentinel errors returned by backends. Callers match them with errors.Is.
var (
	ErrBranchNotFound = errors.New("branch not found")
	ErrRemoteNotFound = errors.New("remote not found")
	ErrNoUpstream     = errors.New("no upstream configured")
	ErrAuthExhausted  = errors.New("authentication attempts exhausted")
)

// PositionKind classifies where HEAD currently points.
type PositionKind int

const (
	// Unresolved means HEAD could not be read at all.
	Unresolved PositionKind = iota
	// OnBranch means HEAD is a symbolic ref to a local branch.
	OnBranch
	// Detached means HEAD points directly at a commit.
	Detached
	// Unborn means HEAD names a branch that has no commits yet.
	Unborn
)

// Position describes the current checkout of a repository.
type Position struct {
	Kind PositionKind
	// Branch is the short branch name when Kind is OnBranch.
	Branch string
	// Commit is the full hex object id HEAD resolves to. Empty for Unborn
	// and Unresolved, and for Detached when the commit could not be peeled.
	Commit string
}

// Change is the bucket set a single status entry falls into. An entry that
// is both staged and modified in the working tree carries both bits.
type Change uint8

const (
	Staged Change = 1 << iota
	Modified
	Untracked
)

// Has reports whether c includes every bit of other.
func (c Change) Has(other Change) bool {
	return c&other == other
}

// MergeAnalysis is the relationship between HEAD and its upstream.
type MergeAnalysis int

const (
	// Diverged means both sides have commits the other lacks.
	Diverged MergeAnalysis = iota
	// UpToDate means the upstream is already reachable from HEAD.
	UpToDate
	// FastForward means HEAD is a strict ancestor of the upstream.
	FastForward
)

func (m MergeAnalysis) String() string {
	switch m {
	case UpToDate:
		return "up-to-date"
	case FastForward:
		return "fast-forward"
	default:
		return "diverged"
	}
}
