package pipeline

import (
	"context"
	"time"

	"github.com/raphi011/gitls/internal/vcs"
)

// Origin is the only remote fetch and pull talk to.
const Origin = "origin"

// Opener opens repositories by path. Implementations must be safe for
// concurrent use; the returned Repository is used by one worker only.
type Opener interface {
	Open(path string) (Repository, error)
}

// Repository is the version-control capability the pipeline consumes.
// Commits are passed around as full hex object ids.
type Repository interface {
	// Head reports where HEAD points. It never fails: an unreadable HEAD is
	// reported as vcs.Unresolved.
	Head() vcs.Position
	// Status classifies every changed entry of index and working tree.
	Status() ([]vcs.Change, error)
	// LocalBranch resolves a local branch to its commit, or
	// vcs.ErrBranchNotFound.
	LocalBranch(name string) (string, error)
	// Checkout writes commit's tree into the index and working tree without
	// overwriting local modifications.
	Checkout(commit string) error
	// SetHead points HEAD at the local branch name.
	SetHead(branch string) error
	// AdvanceHead moves the branch HEAD points at to commit.
	AdvanceHead(commit string) error
	// Fetch updates remote-tracking refs of the named remote, or returns
	// vcs.ErrRemoteNotFound. creds answers authentication requests.
	Fetch(ctx context.Context, remote string, creds vcs.CredentialProvider) error
	// Upstream resolves the upstream commit of the current branch, or
	// returns vcs.ErrNoUpstream.
	Upstream() (string, error)
	// AheadBehind counts commits reachable only from local and only from
	// upstream.
	AheadBehind(local, upstream string) (ahead, behind int, err error)
	// MergeAnalysis relates HEAD to the upstream commit.
	MergeAnalysis(upstream string) (vcs.MergeAnalysis, error)
	// CommitTime returns the commit time of commit.
	CommitTime(commit string) (time.Time, error)
	// Close releases the handle.
	Close()
}
