// Package static provides non-interactive terminal output components.
//
// Everything here renders to a string; callers decide where it goes.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/gitls/internal/ui/styles"
)

// columnGap is the blank space between columns.
const columnGap = 2

// Table is a borderless table whose cells may already carry ANSI styling.
type Table struct {
	Headers []string
	Rows    [][]string
	// RightAlign lists column indexes that are right aligned.
	RightAlign []int
}

// RenderTable creates a formatted table with proper column alignment.
// Column widths are computed by lipgloss/table from the display width of
// each cell, so pre-styled cells line up. No borders are rendered and the
// last column carries no trailing padding.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 {
		return ""
	}

	right := make(map[int]bool, len(t.RightAlign))
	for _, c := range t.RightAlign {
		right[c] = true
	}
	last := len(t.Headers) - 1

	tbl := table.New().
		Headers(t.Headers...).
		Rows(t.Rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle()
			if row == table.HeaderRow {
				s = styles.Bold
			}
			if col != last {
				s = s.PaddingRight(columnGap)
			}
			if right[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	var output strings.Builder
	for _, line := range strings.Split(tbl.String(), "\n") {
		output.WriteString(strings.TrimRight(line, " "))
		output.WriteString("\n")
	}
	return output.String()
}
