package pipeline

import (
	"context"

	"github.com/raphi011/gitls/internal/log"
	"github.com/raphi011/gitls/internal/vcs"
)

// abbrevLen is the length of abbreviated commit ids in branch labels.
const abbrevLen = 7

// process runs the per-repository state machine:
//
//	open → branch → status → [switch] → [fetch | pull] → ahead/behind → last commit
//
// A failed open is the only early exit. Failures in later steps are
// recorded as outcomes and the remaining steps run with what is known.
func (p *Pipeline) process(ctx context.Context, path string) Record {
	rec := Record{Path: path}
	l := log.FromContext(ctx).With("path", path)

	if err := ctx.Err(); err != nil {
		p.markAborted(&rec)
		l.Debug("skipped", "error", err)
		return rec
	}

	repo, err := p.opener.Open(path)
	if err != nil {
		l.Warn("could not open repository", "error", err)
		return rec
	}
	defer repo.Close()
	rec.Opened = true

	resolveBranch(repo, &rec)
	computeStatus(ctx, repo, &rec)

	if target := p.cfg.Request.SwitchTo; target != "" {
		outcome := switchBranch(repo, &rec, target)
		rec.Switch = outcome
		l.Debug("switch", "target", target, "outcome", outcome)
		if outcome == Switched {
			resolveBranch(repo, &rec)
			computeStatus(ctx, repo, &rec)
		}
	}

	switch p.cfg.Request.Action {
	case FetchAction:
		rec.Sync = p.fetch(ctx, repo, path)
	case PullAction:
		outcome := p.pull(ctx, repo, &rec)
		rec.Sync = outcome
		if outcome == Pulled {
			resolveBranch(repo, &rec)
			computeStatus(ctx, repo, &rec)
		}
	}
	if rec.Sync != nil {
		l.Debug(p.cfg.Request.Action.String(), "outcome", rec.Sync)
	}

	computeAheadBehind(repo, &rec)
	computeLastCommit(ctx, repo, &rec)
	return rec
}

// markAborted fills the outcomes of a repository that was never started
// because the run was cancelled.
func (p *Pipeline) markAborted(rec *Record) {
	if p.cfg.Request.SwitchTo != "" {
		rec.Switch = SwitchError
	}
	switch p.cfg.Request.Action {
	case FetchAction:
		rec.Sync = FetchError
	case PullAction:
		rec.Sync = PullError
	}
}

func resolveBranch(repo Repository, rec *Record) {
	pos := repo.Head()
	rec.Position = pos.Kind
	rec.Commit = pos.Commit

	switch pos.Kind {
	case vcs.OnBranch:
		rec.Branch = pos.Branch
	case vcs.Detached:
		if len(pos.Commit) >= abbrevLen {
			rec.Branch = "(" + pos.Commit[:abbrevLen] + ")"
		} else {
			rec.Branch = LabelDetached
		}
	case vcs.Unborn:
		rec.Branch = LabelUnborn
	default:
		rec.Branch = LabelUnresolved
	}
}

func computeStatus(ctx context.Context, repo Repository, rec *Record) {
	rec.Staged, rec.Modified, rec.Untracked = 0, 0, 0

	changes, err := repo.Status()
	if err != nil {
		log.FromContext(ctx).Debug("status failed", "path", rec.Path, "error", err)
		return
	}
	for _, c := range changes {
		if c.Has(vcs.Staged) {
			rec.Staged++
		}
		if c.Has(vcs.Modified) {
			rec.Modified++
		}
		if c.Has(vcs.Untracked) {
			rec.Untracked++
		}
	}
}

func computeAheadBehind(repo Repository, rec *Record) {
	rec.Ahead, rec.Behind, rec.HasRemote = 0, 0, false
	if rec.Commit == "" {
		return
	}

	upstream, err := repo.Upstream()
	if err != nil {
		return
	}
	ahead, behind, err := repo.AheadBehind(rec.Commit, upstream)
	if err != nil {
		return
	}
	rec.Ahead, rec.Behind, rec.HasRemote = ahead, behind, true
}

func computeLastCommit(ctx context.Context, repo Repository, rec *Record) {
	if rec.Position == vcs.Unborn || rec.Commit == "" {
		return
	}
	t, err := repo.CommitTime(rec.Commit)
	if err != nil {
		log.FromContext(ctx).Debug("commit lookup failed", "path", rec.Path, "error", err)
		return
	}
	rec.LastCommit = t
}
