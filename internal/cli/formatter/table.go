package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colGap = 2

// RenderTable renders an aligned table with a header separator line. Widths are measured
// on visible characters so styled cells line up.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		writeCell(&b, StyleHeader.Render(h), widths[i]-lipgloss.Width(h), i == cols-1)
	}
	b.WriteString("\n")
	for i, w := range widths {
		writeCell(&b, StyleDim.Render(strings.Repeat("─", w)), 0, i == cols-1)
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			writeCell(&b, cell, widths[i]-lipgloss.Width(cell), i == cols-1)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeCell(b *strings.Builder, cell string, pad int, last bool) {
	b.WriteString(cell)
	if last {
		return
	}
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad+colGap))
}
