package tui

import "github.com/charmbracelet/lipgloss"

// Minimum terminal dimensions for usable rendering.
const (
	MinWidth  = 40
	MinHeight = 10
)

// Layout breakpoints for adaptive rendering.
const (
	// CompactWidth triggers compact mode for the footer and status bar.
	CompactWidth = 60
	// DetailCollapseHeight hides the detail panel on short terminals.
	DetailCollapseHeight = 24
	// detailHeight is the number of content lines the detail panel shows.
	detailHeight = 8
)

// One terminal cell covers this many layout units. The simulation works in
// screen-like units, so a cell is taller than it is wide.
const (
	cellWidth  = 12.0
	cellHeight = 24.0
)

// chrome is the number of rows taken by the status bar and footer.
const chrome = 2

// bodyHeight returns the rows left for the list or graph once the status
// bar, footer and (when shown) detail panel are drawn.
func bodyHeight(height int, showDetail bool) int {
	h := height - chrome
	if showDetail {
		h -= detailHeight + 3
	}
	return max(1, h)
}

// showDetail reports whether the terminal is tall enough for the detail
// panel.
func showDetail(height int) bool {
	return height >= DetailCollapseHeight
}

// toLayout maps a terminal cell to the center of that cell in layout units.
func toLayout(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * cellWidth, (float64(row) + 0.5) * cellHeight
}

// toCell maps layout units to a terminal cell.
func toCell(x, y float64) (col, row int) {
	return int(x / cellWidth), int(y / cellHeight)
}

// maxLineWidth returns the widest rendered line.
func maxLineWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	return w
}
