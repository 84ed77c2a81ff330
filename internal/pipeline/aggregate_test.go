package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Path: "/a", Opened: true, Sync: Pulled},
		{Path: "/b", Opened: true, Modified: 2, Sync: PullDirty, Switch: SwitchDirty},
		{Path: "/c", Opened: true, Untracked: 1, Behind: 3, HasRemote: true, Sync: NotFastForward},
		{Path: "/d", Opened: true, Behind: 1, HasRemote: true, Sync: Pulled, Switch: Switched},
		{Path: "/e"},
	}
	before := append([]Record(nil), records...)

	s := Aggregate(records)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.Clean)
	assert.Equal(t, 2, s.Dirty)
	assert.Equal(t, 2, s.Behind)
	assert.Equal(t, 1, s.Unusable)
	assert.Equal(t, 2, s.Count(Pulled))
	assert.Equal(t, 1, s.Count(PullDirty))
	assert.Equal(t, 1, s.Count(SwitchDirty))
	assert.Equal(t, 1, s.Count(Switched))
	assert.Zero(t, s.Count(UpToDate))
	assert.Equal(t, before, records)
}

func TestAggregate_OutcomeKindsDoNotCollide(t *testing.T) {
	t.Parallel()

	// Switched, Fetched and Pulled share the underlying value 1.
	s := Aggregate([]Record{
		{Opened: true, Switch: Switched},
		{Opened: true, Sync: Fetched},
	})

	assert.Equal(t, 1, s.Count(Switched))
	assert.Equal(t, 1, s.Count(Fetched))
	assert.Zero(t, s.Count(Pulled))
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	s := Aggregate(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Clean+s.Dirty)
}

func TestOutcomeFailed(t *testing.T) {
	t.Parallel()

	for _, o := range []Outcome{SwitchError, FetchError, PullError} {
		assert.True(t, o.Failed(), o.String())
	}
	for _, o := range []Outcome{Switched, AlreadyOnBranch, SwitchDirty, BranchNotFound, Fetched, FetchNoRemote, Pulled, UpToDate, NotFastForward, PullDirty, PullNoRemote} {
		assert.False(t, o.Failed(), o.String())
	}
}
