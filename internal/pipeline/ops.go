package pipeline

import (
	"context"
	"errors"

	"github.com/raphi011/gitls/internal/auth"
	"github.com/raphi011/gitls/internal/log"
	"github.com/raphi011/gitls/internal/vcs"
)

// Action is the remote operation requested for every repository.
type Action int

const (
	NoAction Action = iota
	FetchAction
	PullAction
)

func (a Action) String() string {
	switch a {
	case FetchAction:
		return "fetch"
	case PullAction:
		return "pull"
	default:
		return "none"
	}
}

// Request selects the bulk operations. The zero value only inspects.
type Request struct {
	// SwitchTo is the local branch to check out; empty skips the switch.
	SwitchTo string
	Action   Action
}

// switchBranch checks out target if it exists locally and the repository
// has no staged or modified changes.
func switchBranch(repo Repository, rec *Record, target string) SwitchOutcome {
	if rec.Position == vcs.OnBranch && rec.Branch == target {
		return AlreadyOnBranch
	}

	commit, err := repo.LocalBranch(target)
	if errors.Is(err, vcs.ErrBranchNotFound) {
		return BranchNotFound
	}
	if err != nil {
		return SwitchError
	}

	if rec.HasLocalChanges() {
		return SwitchDirty
	}

	if err := repo.Checkout(commit); err != nil {
		return SwitchError
	}
	if err := repo.SetHead(target); err != nil {
		return SwitchError
	}
	return Switched
}

// fetchOrigin fetches origin with a fresh credential policy and the
// configured deadline.
func (p *Pipeline) fetchOrigin(ctx context.Context, repo Repository, path string) error {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	policy := auth.NewPolicy(p.cfg.Auth)
	done := log.FromContext(ctx).Timed(path, "fetch")
	err := repo.Fetch(ctx, Origin, policy)
	done(err)
	return err
}

func (p *Pipeline) fetch(ctx context.Context, repo Repository, path string) FetchOutcome {
	err := p.fetchOrigin(ctx, repo, path)
	switch {
	case err == nil:
		return Fetched
	case errors.Is(err, vcs.ErrRemoteNotFound):
		return FetchNoRemote
	default:
		return FetchError
	}
}

// pull fetches origin and fast-forwards the current branch to its upstream.
// It never merges: diverged histories are reported and left alone.
func (p *Pipeline) pull(ctx context.Context, repo Repository, rec *Record) PullOutcome {
	if rec.HasLocalChanges() {
		return PullDirty
	}

	if err := p.fetchOrigin(ctx, repo, rec.Path); err != nil {
		if errors.Is(err, vcs.ErrRemoteNotFound) {
			return PullNoRemote
		}
		return PullError
	}

	upstream, err := repo.Upstream()
	if errors.Is(err, vcs.ErrNoUpstream) {
		return PullNoRemote
	}
	if err != nil {
		return PullError
	}

	analysis, err := repo.MergeAnalysis(upstream)
	if err != nil {
		return PullError
	}

	switch analysis {
	case vcs.UpToDate:
		return UpToDate
	case vcs.FastForward:
		if err := repo.Checkout(upstream); err != nil {
			return PullError
		}
		if err := repo.AdvanceHead(upstream); err != nil {
			return PullError
		}
		return Pulled
	default:
		return NotFastForward
	}
}
