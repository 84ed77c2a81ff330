package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/raphi011/gitls/internal/vcs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDistribute_EachIndexOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		n       int
		workers int
	}{
		{"empty", 0, 4},
		{"single item", 1, 8},
		{"single worker", 50, 1},
		{"more workers than items", 3, 8},
		{"many items", 1000, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			counts := make([]atomic.Int32, tt.n)
			Distribute(tt.n, tt.workers, func(i int) {
				counts[i].Add(1)
			})
			for i := range counts {
				assert.Equal(t, int32(1), counts[i].Load(), "index %d", i)
			}
		})
	}
}

func TestWorkerCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		n         int
		requested int
		max       int
	}{
		{"no items", 0, 0, 1},
		{"one item", 1, 0, 1},
		{"requested wins", 100, 2, 2},
		{"requested capped", 100, 64, MaxWorkers},
		{"capped by items", 3, 8, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := WorkerCount(tt.n, tt.requested)
			assert.GreaterOrEqual(t, w, 1)
			assert.LessOrEqual(t, w, tt.max)
			if tt.requested > 0 {
				assert.Equal(t, tt.max, w)
			}
		})
	}
}

func repoPaths(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("/src/repo-%02d", i)
	}
	return paths
}

// jitter gives every path a stable but unordered delay.
func jitter(path string) time.Duration {
	h := fnv.New32a()
	h.Write([]byte(path))
	return time.Duration(h.Sum32()%5) * time.Millisecond
}

func TestRun_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	paths := repoPaths(40)
	var repos []*fakeRepo
	for _, p := range paths {
		repos = append(repos, linearRepo(p, 2, 2))
	}
	opener := newFakeOpener(repos...)
	opener.delay = jitter

	records := New(opener, Config{Workers: 8}).Run(context.Background(), paths)

	require.Len(t, records, len(paths))
	for i, rec := range records {
		assert.Equal(t, paths[i], rec.Path)
		assert.True(t, rec.Opened)
		assert.Equal(t, "main", rec.Branch)
	}
}

func TestRun_WorkerCountDoesNotChangeResults(t *testing.T) {
	t.Parallel()

	build := func() *fakeOpener {
		var repos []*fakeRepo
		for i, p := range repoPaths(20) {
			r := linearRepo(p, 1+i%3, 3)
			if i%4 == 0 {
				r.changes = []vcs.Change{vcs.Modified, vcs.Untracked}
			}
			if i%5 == 0 {
				r.hasUpstream = false
			}
			repos = append(repos, r)
		}
		o := newFakeOpener(repos...)
		o.delay = jitter
		return o
	}

	paths := append(repoPaths(20), "/src/missing")
	sequential := New(build(), Config{Workers: 1}).Run(context.Background(), paths)
	parallel := New(build(), Config{Workers: 8}).Run(context.Background(), paths)

	assert.Equal(t, sequential, parallel)
}

func TestRun_OpenFailureKeepsOnlyPath(t *testing.T) {
	t.Parallel()

	broken := linearRepo("/src/broken", 1, 1)
	broken.openErr = true
	opener := newFakeOpener(broken, linearRepo("/src/ok", 1, 1))

	records := New(opener, Config{Request: Request{SwitchTo: "main", Action: PullAction}}).
		Run(context.Background(), []string{"/src/broken", "/src/ok"})

	require.Len(t, records, 2)
	assert.Equal(t, Record{Path: "/src/broken"}, records[0])
	assert.True(t, records[1].Opened)
	assert.Equal(t, AlreadyOnBranch, records[1].Switch)
	assert.Equal(t, UpToDate, records[1].Sync)
}

func TestRun_CancelledMarksRequestedOperations(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := linearRepo("/src/a", 1, 2)
	opener := newFakeOpener(r)
	records := New(opener, Config{Request: Request{SwitchTo: "dev", Action: FetchAction}}).
		Run(ctx, []string{"/src/a"})

	require.Len(t, records, 1)
	assert.False(t, records[0].Opened)
	assert.Equal(t, SwitchError, records[0].Switch)
	assert.Equal(t, FetchError, records[0].Sync)
	assert.Zero(t, r.opens)
}

func TestRun_InspectOnly(t *testing.T) {
	t.Parallel()

	r := linearRepo("/src/a", 2, 3)
	r.changes = []vcs.Change{vcs.Staged, vcs.Staged | vcs.Modified, vcs.Untracked}

	records := New(newFakeOpener(r), Config{}).Run(context.Background(), []string{"/src/a"})

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "main", rec.Branch)
	assert.Equal(t, vcs.OnBranch, rec.Position)
	assert.Equal(t, 2, rec.Staged)
	assert.Equal(t, 1, rec.Modified)
	assert.Equal(t, 1, rec.Untracked)
	// tracking equals local until fetched
	assert.True(t, rec.HasRemote)
	assert.Zero(t, rec.Behind)
	assert.Equal(t, epoch.Add(2*time.Hour), rec.LastCommit)
	assert.Nil(t, rec.Switch)
	assert.Nil(t, rec.Sync)
	assert.Zero(t, r.fetches)
}

func TestRun_BranchLabels(t *testing.T) {
	t.Parallel()

	detached := linearRepo("/src/detached", 2, 2)
	detached.head = ""
	detached.detached = commitID(1)

	unborn := linearRepo("/src/unborn", 1, 1)
	unborn.branches = map[string]string{}
	unborn.hasUpstream = false

	unresolved := linearRepo("/src/unresolved", 1, 1)
	unresolved.head = ""

	records := New(newFakeOpener(detached, unborn, unresolved), Config{}).
		Run(context.Background(), []string{"/src/detached", "/src/unborn", "/src/unresolved"})

	require.Len(t, records, 3)

	assert.Equal(t, "(c100000)", records[0].Branch)
	assert.Equal(t, vcs.Detached, records[0].Position)
	assert.False(t, records[0].HasRemote)
	assert.Equal(t, epoch.Add(time.Hour), records[0].LastCommit)

	assert.Equal(t, LabelUnborn, records[1].Branch)
	assert.True(t, records[1].LastCommit.IsZero())
	assert.False(t, records[1].HasRemote)

	assert.Equal(t, LabelUnresolved, records[2].Branch)
	assert.True(t, records[2].LastCommit.IsZero())
}

func TestRun_ReportsProgress(t *testing.T) {
	t.Parallel()

	paths := repoPaths(12)
	var repos []*fakeRepo
	for _, p := range paths {
		repos = append(repos, linearRepo(p, 1, 1))
	}

	var calls, maxDone atomic.Int64
	cfg := Config{Workers: 4, Progress: func(done, total int) {
		calls.Add(1)
		assert.Equal(t, len(paths), total)
		for {
			cur := maxDone.Load()
			if int64(done) <= cur || maxDone.CompareAndSwap(cur, int64(done)) {
				break
			}
		}
	}}
	New(newFakeOpener(repos...), cfg).Run(context.Background(), paths)

	assert.Equal(t, int64(len(paths)), calls.Load())
	assert.Equal(t, int64(len(paths)), maxDone.Load())
}
