package pipeline

import (
	"time"

	"github.com/raphi011/gitls/internal/vcs"
)

// Branch labels for positions that are not a named branch.
const (
	LabelUnborn     = "(unborn)"
	LabelDetached   = "(detached)"
	LabelUnresolved = "(?)"
)

// Record is the inspected state of one repository. Records are created
// zeroed, filled by exactly one worker, and read-only once Run returns.
type Record struct {
	Path string
	// Opened is false when the repository could not be opened; all other
	// state fields are then zero.
	Opened bool

	// Branch is the display label: branch name, "(abc1234)" for a detached
	// HEAD, or one of the Label constants.
	Branch   string
	Position vcs.PositionKind
	Commit   string

	Staged    int
	Modified  int
	Untracked int

	Ahead     int
	Behind    int
	HasRemote bool

	// LastCommit is zero when there are no commits.
	LastCommit time.Time

	// Switch is the branch switch outcome; nil when no switch was requested.
	Switch Outcome
	// Sync is the fetch or pull outcome; nil when neither was requested.
	Sync Outcome
}

// Dirty reports whether any change is present, untracked files included.
func (r *Record) Dirty() bool {
	return r.Staged+r.Modified+r.Untracked > 0
}

// HasLocalChanges reports whether tracked content differs from HEAD. This
// gates switch and pull; untracked files alone never do.
func (r *Record) HasLocalChanges() bool {
	return r.Staged > 0 || r.Modified > 0
}

// Outcome is the result of a requested bulk operation. It is implemented
// only by SwitchOutcome, FetchOutcome and PullOutcome; consumers type-switch
// over those three.
type Outcome interface {
	String() string
	// Failed reports whether the operation hit an error.
	Failed() bool
	outcome()
}

// SwitchOutcome is the result of switching to a branch.
type SwitchOutcome int

const (
	Switched SwitchOutcome = iota + 1
	AlreadyOnBranch
	SwitchDirty
	BranchNotFound
	SwitchError
)

func (SwitchOutcome) outcome() {}

func (o SwitchOutcome) Failed() bool { return o == SwitchError }

func (o SwitchOutcome) String() string {
	switch o {
	case Switched:
		return "switched"
	case AlreadyOnBranch:
		return "already on branch"
	case SwitchDirty:
		return "dirty"
	case BranchNotFound:
		return "branch not found"
	case SwitchError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchOutcome is the result of fetching from origin.
type FetchOutcome int

const (
	Fetched FetchOutcome = iota + 1
	FetchNoRemote
	FetchError
)

func (FetchOutcome) outcome() {}

func (o FetchOutcome) Failed() bool { return o == FetchError }

func (o FetchOutcome) String() string {
	switch o {
	case Fetched:
		return "fetched"
	case FetchNoRemote:
		return "no remote"
	case FetchError:
		return "error"
	default:
		return "unknown"
	}
}

// PullOutcome is the result of a fast-forward-only pull.
type PullOutcome int

const (
	Pulled PullOutcome = iota + 1
	UpToDate
	NotFastForward
	PullDirty
	PullNoRemote
	PullError
)

func (PullOutcome) outcome() {}

func (o PullOutcome) Failed() bool { return o == PullError }

func (o PullOutcome) String() string {
	switch o {
	case Pulled:
		return "pulled"
	case UpToDate:
		return "up to date"
	case NotFastForward:
		return "not fast-forward"
	case PullDirty:
		return "dirty"
	case PullNoRemote:
		return "no remote"
	case PullError:
		return "error"
	default:
		return "unknown"
	}
}
