package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raphi011/gitls/internal/vcs"
)

// fakeOpener serves in-memory repositories keyed by path.
type fakeOpener struct {
	mu    sync.Mutex
	repos map[string]*fakeRepo
	// delay is applied inside Open, keyed by path.
	delay func(path string) time.Duration
}

func newFakeOpener(repos ...*fakeRepo) *fakeOpener {
	o := &fakeOpener{repos: make(map[string]*fakeRepo)}
	for _, r := range repos {
		o.repos[r.path] = r
	}
	return o
}

func (o *fakeOpener) Open(path string) (Repository, error) {
	if o.delay != nil {
		time.Sleep(o.delay(path))
	}
	o.mu.Lock()
	r, ok := o.repos[path]
	o.mu.Unlock()
	if !ok || r.openErr {
		return nil, fmt.Errorf("open %s: not a repository", path)
	}
	r.opens++
	return r, nil
}

// fakeRepo models a repository with a single-parent commit graph. Commit
// ids are arbitrary strings; parents maps a commit to its parent.
type fakeRepo struct {
	path    string
	openErr bool

	head     string            // current branch; "" means detached
	detached string            // commit when detached
	branches map[string]string // local branch -> commit
	parents  map[string]string
	times    map[string]time.Time
	changes  []vcs.Change

	hasOrigin   bool
	hasUpstream bool
	tracking    string // remote-tracking commit of the current branch
	remoteHead  string // what a fetch will bring in

	fetchErr     error
	rejectAuth   bool
	hang         bool // fetch blocks until ctx is done
	checkoutErr  error
	setHeadErr   error
	authRequests int
	fetches      int
	checkouts    []string
	opens        int
}

func (r *fakeRepo) Head() vcs.Position {
	if r.head == "" {
		if r.detached == "" {
			return vcs.Position{Kind: vcs.Unresolved}
		}
		return vcs.Position{Kind: vcs.Detached, Commit: r.detached}
	}
	commit := r.branches[r.head]
	if commit == "" {
		return vcs.Position{Kind: vcs.Unborn, Branch: r.head}
	}
	return vcs.Position{Kind: vcs.OnBranch, Branch: r.head, Commit: commit}
}

func (r *fakeRepo) Status() ([]vcs.Change, error) {
	return r.changes, nil
}

func (r *fakeRepo) LocalBranch(name string) (string, error) {
	commit, ok := r.branches[name]
	if !ok || commit == "" {
		return "", vcs.ErrBranchNotFound
	}
	return commit, nil
}

func (r *fakeRepo) Checkout(commit string) error {
	if r.checkoutErr != nil {
		return r.checkoutErr
	}
	r.checkouts = append(r.checkouts, commit)
	return nil
}

func (r *fakeRepo) SetHead(branch string) error {
	if r.setHeadErr != nil {
		return r.setHeadErr
	}
	r.head = branch
	return nil
}

func (r *fakeRepo) AdvanceHead(commit string) error {
	if r.head == "" {
		return errors.New("detached")
	}
	r.branches[r.head] = commit
	return nil
}

func (r *fakeRepo) Fetch(ctx context.Context, remote string, creds vcs.CredentialProvider) error {
	if remote != Origin || !r.hasOrigin {
		return vcs.ErrRemoteNotFound
	}
	r.fetches++
	if r.rejectAuth {
		for {
			r.authRequests++
			if _, err := creds.Credential(vcs.CredentialRequest{AllowUsername: true}); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
		}
	}
	if r.hang {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.fetchErr != nil {
		return r.fetchErr
	}
	if r.remoteHead != "" {
		r.tracking = r.remoteHead
	}
	return nil
}

func (r *fakeRepo) Upstream() (string, error) {
	if !r.hasUpstream || r.head == "" || r.tracking == "" {
		return "", vcs.ErrNoUpstream
	}
	return r.tracking, nil
}

func (r *fakeRepo) ancestors(commit string) map[string]bool {
	set := make(map[string]bool)
	for c := commit; c != ""; c = r.parents[c] {
		set[c] = true
	}
	return set
}

func (r *fakeRepo) AheadBehind(local, upstream string) (int, int, error) {
	l, u := r.ancestors(local), r.ancestors(upstream)
	var ahead, behind int
	for c := range l {
		if !u[c] {
			ahead++
		}
	}
	for c := range u {
		if !l[c] {
			behind++
		}
	}
	return ahead, behind, nil
}

func (r *fakeRepo) MergeAnalysis(upstream string) (vcs.MergeAnalysis, error) {
	local := r.Head().Commit
	switch {
	case r.ancestors(local)[upstream]:
		return vcs.UpToDate, nil
	case r.ancestors(upstream)[local]:
		return vcs.FastForward, nil
	default:
		return vcs.Diverged, nil
	}
}

func (r *fakeRepo) CommitTime(commit string) (time.Time, error) {
	t, ok := r.times[commit]
	if !ok {
		return time.Time{}, errors.New("commit not found")
	}
	return t, nil
}

func (r *fakeRepo) Close() {}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// linearRepo builds a repository whose main branch is at c<local> on the
// chain c1 <- c2 <- ... <- c<remote>, tracking origin/main.
func linearRepo(path string, local, remote int) *fakeRepo {
	r := &fakeRepo{
		path:        path,
		head:        "main",
		branches:    map[string]string{},
		parents:     map[string]string{},
		times:       map[string]time.Time{},
		hasOrigin:   true,
		hasUpstream: true,
	}
	for i := 1; i <= max(local, remote); i++ {
		id := commitID(i)
		if i > 1 {
			r.parents[id] = commitID(i - 1)
		}
		r.times[id] = epoch.Add(time.Duration(i) * time.Hour)
	}
	r.branches["main"] = commitID(local)
	r.tracking = commitID(local)
	r.remoteHead = commitID(remote)
	return r
}

func commitID(i int) string {
	return fmt.Sprintf("c%d%038d", i, 0)
}

// addCommit adds a child of parent and returns its id.
func (r *fakeRepo) addCommit(id, parent string) string {
	r.parents[id] = parent
	r.times[id] = epoch.Add(time.Duration(len(r.times)+1) * time.Hour)
	return id
}
