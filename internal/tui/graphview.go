package tui

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/syllabus/internal/course"
	"github.com/papapumpkin/syllabus/internal/depgraph"
	"github.com/papapumpkin/syllabus/internal/highlight"
)

// maxLabelWidth caps node labels, brackets excluded.
const maxLabelWidth = 16

// GraphView draws the force-directed layout onto a character canvas. Node
// positions come from the App's simulation in layout units and are scaled
// down to cells.
type GraphView struct {
	Width  int
	Height int
	// Cursor indexes the node the keyboard acts on.
	Cursor int
	// Grabbed is the id of the node being dragged, if any.
	Grabbed string
}

// graphNode is one node ready to draw.
type graphNode struct {
	ID    string
	Label string
	X, Y  float64
	Style lipgloss.Style
}

// graphEdge is one resolved edge ready to draw.
type graphEdge struct {
	X1, Y1, X2, Y2 float64
	Style          lipgloss.Style
}

// graphScene is everything the canvas needs, gathered from the App in one
// pass so rendering never touches App state.
type graphScene struct {
	Nodes []graphNode
	Edges []graphEdge
}

// sceneFrom builds the scene from one decorated snapshot of app, so the
// nodes, edges and roles always describe the same graph. It returns an
// empty scene while no layout is running.
func sceneFrom(app *course.App) graphScene {
	return sceneFromDocument(app.Document())
}

func sceneFromDocument(doc *depgraph.Document) graphScene {
	var scene graphScene
	if doc == nil {
		return scene
	}
	pos := make(map[string]depgraph.DocNode, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.X == nil || n.Y == nil {
			continue
		}
		pos[n.ID] = n
	}
	if len(pos) == 0 {
		return scene
	}
	for _, l := range doc.Links {
		if l.Dangling {
			continue
		}
		from, okFrom := pos[l.Source]
		to, okTo := pos[l.Target]
		if !okFrom || !okTo {
			continue
		}
		scene.Edges = append(scene.Edges, graphEdge{
			X1: *from.X, Y1: *from.Y, X2: *to.X, Y2: *to.Y,
			Style: edgeStyle(highlight.EdgeRoleOf(l.Classes)),
		})
	}
	for _, n := range doc.Nodes {
		if _, ok := pos[n.ID]; !ok {
			continue
		}
		style, ok := roleStyle(highlight.RoleOf(n.Classes))
		if !ok {
			style = appearanceStyle(highlight.Appearance{
				Fill:   n.Fill,
				Stroke: n.Stroke,
				Glow:   slices.Contains(n.Classes, highlight.GlowClass),
			})
		}
		scene.Nodes = append(scene.Nodes, graphNode{
			ID:    n.ID,
			Label: truncateLabel(n.Label, n.ID),
			X:     *n.X,
			Y:     *n.Y,
			Style: style,
		})
	}
	return scene
}

func truncateLabel(title, id string) string {
	if title == "" {
		title = id
	}
	if utf8.RuneCountInString(title) > maxLabelWidth {
		title = string([]rune(title)[:maxLabelWidth-1]) + "…"
	}
	return "[" + title + "]"
}

// CursorID returns the id of the node under the keyboard cursor.
func (gv GraphView) CursorID(s graphScene) (string, bool) {
	if gv.Cursor < 0 || gv.Cursor >= len(s.Nodes) {
		return "", false
	}
	return s.Nodes[gv.Cursor].ID, true
}

// MoveCursor steps the cursor by delta, wrapping around n nodes.
func (gv *GraphView) MoveCursor(delta, n int) {
	if n == 0 {
		gv.Cursor = 0
		return
	}
	gv.Cursor = ((gv.Cursor+delta)%n + n) % n
}

// span is where a node's label lands on the canvas.
func (gv GraphView) span(n graphNode) (row, from, to int) {
	col, row := toCell(n.X, n.Y)
	w := utf8.RuneCountInString(n.Label)
	from = col - w/2
	from = max(0, min(from, gv.Width-w))
	row = max(0, min(row, gv.Height-1))
	return row, from, from + w
}

// HitTest returns the node whose label covers the cell.
func (gv GraphView) HitTest(s graphScene, col, row int) (string, bool) {
	// Later nodes draw on top, so search back to front.
	for i := len(s.Nodes) - 1; i >= 0; i-- {
		r, from, to := gv.span(s.Nodes[i])
		if r == row && col >= from && col < to {
			return s.Nodes[i].ID, true
		}
	}
	return "", false
}

type cell struct {
	r     rune
	style int // index into the render palette, -1 for plain
}

// Render draws the scene. Edges go down first so labels sit on top.
func (gv GraphView) Render(s graphScene) string {
	if gv.Width <= 0 || gv.Height <= 0 {
		return ""
	}
	if len(s.Nodes) == 0 {
		return styleDetailDim.Render("  Laying out graph…")
	}

	canvas := make([][]cell, gv.Height)
	for i := range canvas {
		canvas[i] = make([]cell, gv.Width)
		for j := range canvas[i] {
			canvas[i][j] = cell{r: ' ', style: -1}
		}
	}
	var palette []lipgloss.Style
	use := func(st lipgloss.Style) int {
		palette = append(palette, st)
		return len(palette) - 1
	}
	put := func(col, row int, r rune, style int) {
		if row >= 0 && row < gv.Height && col >= 0 && col < gv.Width {
			canvas[row][col] = cell{r: r, style: style}
		}
	}

	for _, e := range s.Edges {
		gv.drawEdge(e, use(e.Style), put)
	}

	cursorID, _ := gv.CursorID(s)
	for _, n := range s.Nodes {
		st := n.Style
		if n.ID == cursorID {
			st = st.Inherit(styleNodeCursor)
		}
		idx := use(st)
		row, from, _ := gv.span(n)
		col := from
		for _, r := range n.Label {
			put(col, row, r, idx)
			col++
		}
	}

	lines := make([]string, gv.Height)
	for i, row := range canvas {
		lines[i] = renderRow(row, palette)
	}
	return strings.Join(lines, "\n")
}

// drawEdge rasterizes an edge with a direction marker three quarters of
// the way along, pointing at the module that needs the prerequisite.
func (gv GraphView) drawEdge(e graphEdge, style int, put func(col, row int, r rune, style int)) {
	c1, r1 := toCell(e.X1, e.Y1)
	c2, r2 := toCell(e.X2, e.Y2)
	dc, dr := c2-c1, r2-r1
	steps := max(abs(dc), abs(dr))
	if steps == 0 {
		return
	}

	glyph := '·'
	switch {
	case dr == 0:
		glyph = '─'
	case dc == 0:
		glyph = '│'
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		col := c1 + int(math.Round(float64(dc)*t))
		row := r1 + int(math.Round(float64(dr)*t))
		put(col, row, glyph, style)
	}

	mark := steps * 3 / 4
	t := float64(mark) / float64(steps)
	put(c1+int(math.Round(float64(dc)*t)), r1+int(math.Round(float64(dr)*t)), arrow(dc, dr), style)
}

func arrow(dc, dr int) rune {
	// Cells are twice as tall as they are wide.
	if abs(dc) >= 2*abs(dr) {
		if dc > 0 {
			return '▸'
		}
		return '◂'
	}
	if dr > 0 {
		return '▾'
	}
	return '▴'
}

func renderRow(row []cell, palette []lipgloss.Style) string {
	var b strings.Builder
	var run []rune
	current := -1
	flush := func() {
		if len(run) == 0 {
			return
		}
		if current < 0 {
			b.WriteString(string(run))
		} else {
			b.WriteString(palette[current].Render(string(run)))
		}
		run = run[:0]
	}
	for _, c := range row {
		if c.style != current {
			flush()
			current = c.style
		}
		run = append(run, c.r)
	}
	flush()
	return strings.TrimRight(b.String(), " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// legend explains the highlight colors.
func legend() string {
	parts := []string{
		styleNodeTarget.Render("target"),
		styleNodePrerequisite.Render("prerequisite"),
		styleNodeDependent.Render("unlocks"),
		styleRowDone.Render("done"),
	}
	return strings.Join(parts, "  ")
}
