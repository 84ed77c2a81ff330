package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/gitls/internal/pipeline"
	"github.com/raphi011/gitls/internal/ui/styles"
)

// separator is the rule printed under tables and summaries.
var separator = strings.Repeat("─", 84)

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// outcomeLine writes one "  name  result" row of an operation summary.
func outcomeLine(w io.Writer, r *pipeline.Record, result string) {
	fmt.Fprintf(w, "  %s  %s\n", padRight(nameCell(r), NameWidth), result)
}

// changeDetail is the "2 staged, 1 modified" note of a skipped repository.
func changeDetail(r *pipeline.Record) string {
	var parts []string
	if r.Staged > 0 {
		parts = append(parts, fmt.Sprintf("%d staged", r.Staged))
	}
	if r.Modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", r.Modified))
	}
	return strings.Join(parts, ", ")
}

func skipped(r *pipeline.Record) string {
	return styles.ErrorStyle.Render(styles.SymbolModified+" skipped") + "  " + styles.MutedStyle.Render(changeDetail(r))
}

// counts joins "label N" pairs with the separator symbol.
type counts []string

func (c *counts) add(label string, n int, style func(...string) string) {
	*c = append(*c, fmt.Sprintf("%s %s", label, style(fmt.Sprint(n))))
}

func (c *counts) addIf(label string, n int, style func(...string) string) {
	if n > 0 {
		c.add(label, n, style)
	}
}

func (c counts) String() string {
	return strings.Join(c, " "+styles.SymbolSeparator+" ")
}

func footer(w io.Writer, c counts) {
	fmt.Fprintf(w, "\n  %s\n", styles.MutedStyle.Render(separator))
	fmt.Fprintf(w, "  %s\n\n", c)
}

// SwitchSummary writes the per-repository switch results and their counts.
// A repository that failed to switch counts as skipped.
func SwitchSummary(w io.Writer, records []pipeline.Record, branch string) {
	fmt.Fprintf(w, "%s %s\n\n", styles.Bold.Render("Switching to branch:"), styles.WarningStyle.Render(branch))

	var switched, already, skip int
	for i := range records {
		r := &records[i]
		o, ok := r.Switch.(pipeline.SwitchOutcome)
		if !ok {
			continue
		}
		switch o {
		case pipeline.Switched:
			outcomeLine(w, r, styles.SuccessStyle.Render(styles.SymbolClean+" switched"))
			switched++
		case pipeline.AlreadyOnBranch:
			outcomeLine(w, r, styles.MutedStyle.Render(styles.SymbolSeparator+" already on branch"))
			already++
		case pipeline.SwitchDirty:
			outcomeLine(w, r, skipped(r))
			skip++
		case pipeline.BranchNotFound:
			outcomeLine(w, r, styles.MutedStyle.Render(styles.SymbolSeparator+" branch not found"))
		case pipeline.SwitchError:
			reason := "(checkout failed)"
			if !r.Opened {
				reason = "(interrupted)"
			}
			outcomeLine(w, r, styles.ErrorStyle.Render(styles.SymbolModified+" error "+reason))
			skip++
		}
	}

	var c counts
	c.add("switched", switched, styles.SuccessStyle.Render)
	c.add("already", already, styles.MutedStyle.Render)
	if skip > 0 {
		c = append(c, "skipped "+styles.ErrorStyle.Render(fmt.Sprintf("%d dirty", skip)))
	}
	footer(w, c)
}

// FetchSummary writes the per-repository fetch results and their counts.
func FetchSummary(w io.Writer, records []pipeline.Record) {
	fmt.Fprintf(w, "%s %s\n\n", styles.Bold.Render("Fetching from"), styles.WarningStyle.Render(pipeline.Origin))

	var fetched, noRemote, failed int
	for i := range records {
		r := &records[i]
		o, ok := r.Sync.(pipeline.FetchOutcome)
		if !ok {
			continue
		}
		switch o {
		case pipeline.Fetched:
			result := styles.SuccessStyle.Render(styles.SymbolClean + " fetched")
			if r.Behind > 0 {
				result += "  " + styles.MutedStyle.Render(fmt.Sprintf("%s%d", styles.SymbolBehind, r.Behind))
			}
			outcomeLine(w, r, result)
			fetched++
		case pipeline.FetchNoRemote:
			outcomeLine(w, r, styles.MutedStyle.Render(styles.SymbolSeparator+" no remote"))
			noRemote++
		case pipeline.FetchError:
			outcomeLine(w, r, styles.ErrorStyle.Render(styles.SymbolModified+" failed"))
			failed++
		}
	}

	var c counts
	c.add("fetched", fetched, styles.SuccessStyle.Render)
	c.add("no remote", noRemote, styles.MutedStyle.Render)
	c.addIf("failed", failed, styles.ErrorStyle.Render)
	footer(w, c)
}

// PullSummary writes the per-repository pull results and their counts.
func PullSummary(w io.Writer, records []pipeline.Record) {
	fmt.Fprintf(w, "%s %s %s\n\n",
		styles.Bold.Render("Pulling from"),
		styles.WarningStyle.Render(pipeline.Origin),
		styles.MutedStyle.Render("(fast-forward only)"))

	var pulled, upToDate, notFF, dirty, noRemote, failed int
	for i := range records {
		r := &records[i]
		o, ok := r.Sync.(pipeline.PullOutcome)
		if !ok {
			continue
		}
		switch o {
		case pipeline.Pulled:
			outcomeLine(w, r, styles.SuccessStyle.Render(styles.SymbolClean+" pulled"))
			pulled++
		case pipeline.UpToDate:
			outcomeLine(w, r, styles.MutedStyle.Render(styles.SymbolSeparator+" up to date"))
			upToDate++
		case pipeline.NotFastForward:
			outcomeLine(w, r, styles.WarningStyle.Render(styles.SymbolModified+" not fast-forward")+"  "+styles.MutedStyle.Render(Sync(r)))
			notFF++
		case pipeline.PullDirty:
			outcomeLine(w, r, skipped(r))
			dirty++
		case pipeline.PullNoRemote:
			outcomeLine(w, r, styles.MutedStyle.Render(styles.SymbolSeparator+" no remote"))
			noRemote++
		case pipeline.PullError:
			outcomeLine(w, r, styles.ErrorStyle.Render(styles.SymbolModified+" failed"))
			failed++
		}
	}

	var c counts
	c.add("pulled", pulled, styles.SuccessStyle.Render)
	c.add("up to date", upToDate, styles.MutedStyle.Render)
	c.addIf("not fast-forward", notFF, styles.WarningStyle.Render)
	if dirty > 0 {
		c = append(c, "skipped "+styles.ErrorStyle.Render(fmt.Sprintf("%d dirty", dirty)))
	}
	c.addIf("no remote", noRemote, styles.MutedStyle.Render)
	c.addIf("failed", failed, styles.ErrorStyle.Render)
	footer(w, c)
}
