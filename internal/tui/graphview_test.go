package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/syllabus/internal/depgraph"
)

func testScene() graphScene {
	return graphScene{
		Nodes: []graphNode{
			{ID: "basics", Label: "[Basics]", X: 6 * cellWidth, Y: 1 * cellHeight},
			{ID: "numpy", Label: "[NumPy]", X: 30 * cellWidth, Y: 1 * cellHeight},
		},
		Edges: []graphEdge{
			{X1: 6 * cellWidth, Y1: 1 * cellHeight, X2: 30 * cellWidth, Y2: 1 * cellHeight, Style: lipgloss.NewStyle()},
		},
	}
}

func TestGraphView_RenderPlacesLabelsOverEdges(t *testing.T) {
	t.Parallel()
	gv := GraphView{Width: 40, Height: 4, Cursor: -1}
	out := gv.Render(testScene())
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	row := lines[1]
	for _, want := range []string{"[Basics]", "[NumPy]", "─", "▸"} {
		if !strings.Contains(row, want) {
			t.Errorf("row %q missing %q", row, want)
		}
	}
	if strings.Index(row, "[Basics]") > strings.Index(row, "▸") {
		t.Errorf("arrow should sit between the nodes: %q", row)
	}
}

func TestGraphView_RenderEmpty(t *testing.T) {
	t.Parallel()
	gv := GraphView{Width: 40, Height: 4}
	if out := gv.Render(graphScene{}); !strings.Contains(out, "Laying out") {
		t.Errorf("empty scene = %q", out)
	}
	if out := (GraphView{}).Render(testScene()); out != "" {
		t.Errorf("zero-size view = %q", out)
	}
}

func TestGraphView_HitTest(t *testing.T) {
	t.Parallel()
	gv := GraphView{Width: 40, Height: 4}
	scene := testScene()

	tests := []struct {
		col, row int
		want     string
		ok       bool
	}{
		{6, 1, "basics", true},
		{2, 1, "basics", true},
		{30, 1, "numpy", true},
		{18, 1, "", false},
		{6, 2, "", false},
	}
	for _, tt := range tests {
		got, ok := gv.HitTest(scene, tt.col, tt.row)
		if got != tt.want || ok != tt.ok {
			t.Errorf("HitTest(%d,%d) = %q,%v; want %q,%v", tt.col, tt.row, got, ok, tt.want, tt.ok)
		}
	}
}

func TestGraphView_LabelsClampToCanvas(t *testing.T) {
	t.Parallel()
	gv := GraphView{Width: 20, Height: 3}
	n := graphNode{ID: "x", Label: "[Edge]", X: 19 * cellWidth, Y: 10 * cellHeight}
	row, from, to := gv.span(n)
	if row != 2 || to != 20 || from != 14 {
		t.Errorf("span = %d,%d,%d; want 2,14,20", row, from, to)
	}
}

func TestGraphView_MoveCursorWraps(t *testing.T) {
	t.Parallel()
	var gv GraphView
	gv.MoveCursor(-1, 3)
	if gv.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", gv.Cursor)
	}
	gv.MoveCursor(2, 3)
	if gv.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", gv.Cursor)
	}
	gv.MoveCursor(1, 0)
	if gv.Cursor != 0 {
		t.Errorf("cursor on empty graph = %d", gv.Cursor)
	}
}

func TestTruncateLabel(t *testing.T) {
	t.Parallel()
	if got := truncateLabel("", "id"); got != "[id]" {
		t.Errorf("empty title = %q", got)
	}
	got := truncateLabel("Introduction to Machine Learning", "ml")
	if n := len([]rune(got)); n != maxLabelWidth+2 || !strings.HasSuffix(got, "…]") {
		t.Errorf("truncated = %q (%d runes)", got, n)
	}
}

func TestArrow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dc, dr int
		want   rune
	}{
		{10, 0, '▸'},
		{-10, 1, '◂'},
		{1, 4, '▾'},
		{0, -3, '▴'},
	}
	for _, tt := range tests {
		if got := arrow(tt.dc, tt.dr); got != tt.want {
			t.Errorf("arrow(%d,%d) = %q, want %q", tt.dc, tt.dr, got, tt.want)
		}
	}
}

func TestSceneFromDocument(t *testing.T) {
	t.Parallel()
	x1, y1, x2, y2 := 10.0, 20.0, 100.0, 20.0
	doc := &depgraph.Document{
		Nodes: []depgraph.DocNode{
			{ID: "basics", Label: "Basics", Fill: "#28a745", Classes: []string{"glow"}, X: &x1, Y: &y1},
			{ID: "numpy", Label: "NumPy", Classes: []string{"selected"}, X: &x2, Y: &y2},
			{ID: "pandas", Label: "Pandas"},
		},
		Links: []depgraph.DocLink{
			{Source: "basics", Target: "numpy", Classes: []string{"prerequisite"}},
			{Source: "numpy", Target: "pandas"},
			{Source: "ghost", Target: "numpy", Dangling: true},
		},
	}

	scene := sceneFromDocument(doc)
	if len(scene.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2 (unplaced node dropped)", len(scene.Nodes))
	}
	if scene.Nodes[1].ID != "numpy" || scene.Nodes[1].X != x2 || scene.Nodes[1].Label != "[NumPy]" {
		t.Errorf("numpy node = %+v", scene.Nodes[1])
	}
	if got, want := scene.Nodes[1].Style.GetForeground(), styleNodeTarget.GetForeground(); got != want {
		t.Errorf("target style foreground = %v, want %v", got, want)
	}
	if !scene.Nodes[0].Style.GetBold() {
		t.Error("glowing node should render bold")
	}
	if len(scene.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(scene.Edges))
	}
	if got, want := scene.Edges[0].Style.GetForeground(), styleEdgePrerequisite.GetForeground(); got != want {
		t.Errorf("edge style foreground = %v, want %v", got, want)
	}
}

func TestSceneFromDocument_NoLayout(t *testing.T) {
	t.Parallel()
	doc := &depgraph.Document{Nodes: []depgraph.DocNode{{ID: "a"}}}
	if s := sceneFromDocument(doc); len(s.Nodes) != 0 || len(s.Edges) != 0 {
		t.Errorf("scene without positions = %+v", s)
	}
	if s := sceneFromDocument(nil); len(s.Nodes) != 0 {
		t.Errorf("nil document scene = %+v", s)
	}
}
