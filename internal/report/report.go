// Package report renders the result of a scan: the operation summaries, the
// status table and the totals line, or a JSON/YAML document with the same
// content.
//
// Text output carries ANSI styling from the styles package. Callers that
// need plain text write through a colorprofile.Writer (see [NewWriter]).
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/colorprofile"

	"github.com/raphi011/gitls/internal/pipeline"
	"github.com/raphi011/gitls/internal/ui/static"
	"github.com/raphi011/gitls/internal/ui/styles"
)

// Options describes the run being reported.
type Options struct {
	// Root is the absolute scan root.
	Root    string
	Request pipeline.Request
	// Now is the reference point of relative commit times.
	Now time.Time
}

// Headers are the status table columns.
var Headers = []string{"NAME", "BRANCH", "SYNC", "WHEN", "STATUS"}

// NewWriter wraps w so styled output is downsampled to what w supports.
// noColor strips all styling.
func NewWriter(w io.Writer, noColor bool) *colorprofile.Writer {
	cw := colorprofile.NewWriter(w, os.Environ())
	if noColor {
		cw.Profile = colorprofile.NoTTY
	}
	return cw
}

// Render writes the text report.
func Render(w io.Writer, records []pipeline.Record, sum pipeline.Summary, opts Options) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", styles.Bold.Render("Scanned:"), opts.Root)

	switch opts.Request.Action {
	case pipeline.FetchAction:
		FetchSummary(&b, records)
	case pipeline.PullAction:
		PullSummary(&b, records)
	}
	if opts.Request.SwitchTo != "" {
		SwitchSummary(&b, records, opts.Request.SwitchTo)
	}

	if len(records) == 0 {
		b.WriteString("  No git repositories found.\n")
	} else {
		b.WriteString(indent(static.RenderTable(Table(records, opts.Now))))
		fmt.Fprintf(&b, "  %s\n", styles.MutedStyle.Render(separator))
		fmt.Fprintf(&b, "  %s\n", totalsLine(sum))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Table builds the status table, one row per record in record order.
func Table(records []pipeline.Record, now time.Time) static.Table {
	rows := make([][]string, len(records))
	for i := range records {
		r := &records[i]
		rows[i] = []string{nameCell(r), branchCell(r), syncCell(r), whenCell(r, now), statusCell(r)}
	}
	return static.Table{Headers: Headers, Rows: rows}
}

// totalsLine is the "N repos · C clean · D dirty · B behind" line. The behind
// count is left out when zero.
func totalsLine(sum pipeline.Summary) string {
	noun := "repos"
	if sum.Total == 1 {
		noun = "repo"
	}
	c := counts{
		styles.Bold.Render(fmt.Sprintf("%d %s", sum.Total, noun)),
		styles.SuccessStyle.Render(fmt.Sprintf("%d clean", sum.Clean)),
		styles.ErrorStyle.Render(fmt.Sprintf("%d dirty", sum.Dirty)),
	}
	if sum.Behind > 0 {
		c = append(c, styles.WarningStyle.Render(fmt.Sprintf("%d behind", sum.Behind)))
	}
	return c.String()
}

func indent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		if l != "\n" {
			b.WriteString("  ")
		}
		b.WriteString(l)
	}
	return b.String()
}
