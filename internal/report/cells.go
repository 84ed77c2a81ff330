package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/gitls/internal/pipeline"
	"github.com/raphi011/gitls/internal/ui/styles"
)

// Column widths in display cells. Longer values are cut and end in "~".
const (
	NameWidth   = 28
	BranchWidth = 30
)

// LabelError is the branch label of a repository that could not be opened.
const LabelError = "(error)"

// truncate shortens s to width display cells.
func truncate(s string, width int) string {
	return ansi.Truncate(s, width, "~")
}

// Name is the repository's directory name.
func Name(r *pipeline.Record) string {
	return filepath.Base(r.Path)
}

func nameCell(r *pipeline.Record) string {
	return styles.PrimaryStyle.Render(truncate(Name(r), NameWidth))
}

// BranchLabel is the branch column text without styling.
func BranchLabel(r *pipeline.Record) string {
	if !r.Opened {
		return LabelError
	}
	return r.Branch
}

func branchCell(r *pipeline.Record) string {
	label := truncate(BranchLabel(r), BranchWidth)
	switch {
	case !r.Opened:
		return styles.ErrorStyle.Render(label)
	case r.Dirty():
		return styles.WarningStyle.Render(label)
	default:
		return styles.SuccessStyle.Render(label)
	}
}

// Sync is the ahead/behind indicator: "?" without upstream, "↑a↓b" when
// diverged, "↑a", "↓b", or "≡" when in sync.
func Sync(r *pipeline.Record) string {
	switch {
	case !r.Opened:
		return ""
	case !r.HasRemote:
		return styles.SymbolNoUpstream
	case r.Ahead > 0 && r.Behind > 0:
		return fmt.Sprintf("%s%d%s%d", styles.SymbolAhead, r.Ahead, styles.SymbolBehind, r.Behind)
	case r.Ahead > 0:
		return fmt.Sprintf("%s%d", styles.SymbolAhead, r.Ahead)
	case r.Behind > 0:
		return fmt.Sprintf("%s%d", styles.SymbolBehind, r.Behind)
	default:
		return styles.SymbolInSync
	}
}

func syncCell(r *pipeline.Record) string {
	s := Sync(r)
	switch {
	case !r.Opened:
		return ""
	case !r.HasRemote || (r.Ahead == 0 && r.Behind == 0):
		return styles.MutedStyle.Render(s)
	case r.Ahead > 0 && r.Behind > 0:
		return styles.WarningStyle.Render(s)
	case r.Ahead > 0:
		return styles.SuccessStyle.Render(s)
	default:
		return styles.ErrorStyle.Render(s)
	}
}

// RelativeTime describes how long before now t was. A zero t means the
// repository has no commits. Times in the future count as "just now".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "no commits"
	}

	diff := int64(now.Sub(t) / time.Second)
	if diff < 0 {
		diff = 0
	}

	const (
		minute = 60
		hour   = 60 * minute
		day    = 24 * hour
		month  = 30 * day
		year   = 365 * day
	)
	switch {
	case diff < minute:
		return "just now"
	case diff < hour:
		return fmt.Sprintf("%d min ago", diff/minute)
	case diff < day:
		return plural(diff/hour, "hour")
	case diff < month:
		return plural(diff/day, "day")
	case diff < year:
		return plural(diff/month, "mo")
	default:
		return fmt.Sprintf("%d yr ago", diff/year)
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func whenCell(r *pipeline.Record, now time.Time) string {
	if !r.Opened {
		return ""
	}
	return styles.MutedStyle.Render(RelativeTime(r.LastCommit, now))
}

// Status is the change indicator: "✓" when clean, otherwise the non-zero
// staged, modified and untracked counts.
func Status(r *pipeline.Record) string {
	return strings.Join(statusParts(r, false), " ")
}

func statusCell(r *pipeline.Record) string {
	return strings.Join(statusParts(r, true), " ")
}

func statusParts(r *pipeline.Record, styled bool) []string {
	if !r.Opened {
		return nil
	}
	paint := func(s string, st lipgloss.Style) string {
		if styled {
			return st.Render(s)
		}
		return s
	}
	if !r.Dirty() {
		return []string{paint(styles.SymbolClean, styles.SuccessStyle)}
	}

	var parts []string
	if r.Staged > 0 {
		parts = append(parts, paint(fmt.Sprintf("%s%d", styles.SymbolStaged, r.Staged), styles.SuccessStyle))
	}
	if r.Modified > 0 {
		parts = append(parts, paint(fmt.Sprintf("%s%d", styles.SymbolModified, r.Modified), styles.ErrorStyle))
	}
	if r.Untracked > 0 {
		parts = append(parts, paint(fmt.Sprintf("%s%d", styles.SymbolUntracked, r.Untracked), styles.WarningStyle))
	}
	return parts
}
