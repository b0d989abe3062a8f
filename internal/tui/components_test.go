package tui

import (
	"strings"
	"testing"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/course"
	"github.com/papapumpkin/syllabus/internal/highlight"
)

func TestFooter_CompactDropsDescriptions(t *testing.T) {
	t.Parallel()
	km := DefaultKeyMap()
	wide := Footer{Width: 200, Bindings: ListFooterBindings(km)}.View()
	if !strings.Contains(wide, "search") || !strings.Contains(wide, "quit") {
		t.Errorf("wide footer missing descriptions: %q", wide)
	}
	narrow := Footer{Width: 40, Bindings: ListFooterBindings(km)}.View()
	if strings.Contains(narrow, "search") {
		t.Errorf("compact footer should omit descriptions: %q", narrow)
	}
}

func TestGraphFooterBindings(t *testing.T) {
	t.Parallel()
	km := DefaultKeyMap()
	helps := func(grabbed bool) string {
		var parts []string
		for _, b := range GraphFooterBindings(km, grabbed) {
			parts = append(parts, b.Help().Desc)
		}
		return strings.Join(parts, ",")
	}
	if got := helps(false); !strings.Contains(got, "list") || !strings.Contains(got, "drag") {
		t.Errorf("graph footer = %s", got)
	}
	if got := helps(true); !strings.Contains(got, "drop") || strings.Contains(got, "select") {
		t.Errorf("grabbed footer = %s", got)
	}
	// The shared key map is untouched.
	if km.Toggle.Help().Desc != "graph" {
		t.Errorf("Toggle help mutated to %q", km.Toggle.Help().Desc)
	}
}

func TestStatusBar_View(t *testing.T) {
	t.Parallel()
	sb := StatusBar{
		Width: 120,
		Mode:  "list",
		Stats: catalog.Stats{Completed: 1, Total: 4, Percent: 25},
	}
	out := sb.View()
	for _, want := range []string{"syllabus", "list", "1/4 completed (25%)", "not logged in"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q: %q", want, out)
		}
	}

	sb.User = "ada"
	sb.Filter = catalog.Filter{Text: "frames", Category: "data"}
	sb.Shown = 2
	out = sb.View()
	if !strings.Contains(out, `search "frames" in data (2)`) || !strings.Contains(out, "ada") {
		t.Errorf("status bar = %q", out)
	}

	sb.Width = 50
	if out := sb.View(); strings.Contains(out, "search") || !strings.Contains(out, "1/4") {
		t.Errorf("compact status bar = %q", out)
	}
}

func TestNotices_PushCapsAndRemove(t *testing.T) {
	t.Parallel()
	var notices []Notice
	for i := range maxNotices + 2 {
		notices = pushNotice(notices, Notice{ID: i + 1, Text: "n"})
	}
	if len(notices) != maxNotices {
		t.Fatalf("len = %d, want %d", len(notices), maxNotices)
	}
	if notices[0].ID != 3 {
		t.Errorf("oldest kept = %d, want 3", notices[0].ID)
	}
	notices = removeNotice(notices, 4)
	for _, n := range notices {
		if n.ID == 4 {
			t.Error("notice 4 not removed")
		}
	}
}

func TestRenderNotices(t *testing.T) {
	t.Parallel()
	if RenderNotices(nil, 80) != "" {
		t.Error("no notices should render nothing")
	}
	out := RenderNotices([]Notice{
		{Level: course.LevelError, Text: "Failed to update progress"},
		{Level: course.LevelInfo, Text: strings.Repeat("x", 100)},
	}, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "Failed to update progress") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "…") {
		t.Errorf("long notice not truncated: %q", lines[1])
	}
}

func TestNewNotice_IDsAreUnique(t *testing.T) {
	t.Parallel()
	a, cmdA := NewNotice(course.LevelInfo, "a")
	b, _ := NewNotice(course.LevelInfo, "b")
	if a.ID == b.ID {
		t.Error("notice IDs collide")
	}
	if cmdA == nil {
		t.Error("expected an expiry command")
	}
}

func TestListView_ClampScrolls(t *testing.T) {
	t.Parallel()
	lv := ListView{Height: 3}
	for range 5 {
		lv.MoveDown(10)
	}
	if lv.Cursor != 5 || lv.Offset != 3 {
		t.Errorf("cursor,offset = %d,%d; want 5,3", lv.Cursor, lv.Offset)
	}
	lv.Cursor = 0
	lv.Clamp(10)
	if lv.Offset != 0 {
		t.Errorf("offset after jump to top = %d", lv.Offset)
	}
	lv.Cursor = 8
	lv.Clamp(2)
	if lv.Cursor != 1 {
		t.Errorf("cursor after shrink = %d", lv.Cursor)
	}
	lv.Clamp(0)
	if lv.Cursor != 0 || lv.Offset != 0 {
		t.Error("empty list should reset the cursor")
	}
}

func TestListView_Rows(t *testing.T) {
	t.Parallel()
	mods := []catalog.Module{
		{ID: "a", Title: "Alpha", Category: "core", Duration: 30, Status: catalog.StatusCompleted},
		{ID: "b", Title: "Beta", Duration: 45},
		{ID: "c", Title: "Gamma", Duration: 45},
	}
	info := func(id string) rowInfo {
		switch id {
		case "b":
			return rowInfo{available: true, card: highlight.CardTarget}
		case "a":
			return rowInfo{card: highlight.CardPrerequisite}
		}
		return rowInfo{}
	}
	lv := ListView{Width: 80, Height: 5, Cursor: 1}
	lines := strings.Split(lv.View(mods, info), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d rows", len(lines))
	}
	checks := []struct {
		line int
		want []string
	}{
		{0, []string{iconDone, "Alpha", "◇ needed", "core · - · 30m"}},
		{1, []string{selectionIndicator, iconAvailable, "Beta", "◆ target"}},
		{2, []string{iconLocked, "Gamma"}},
	}
	for _, c := range checks {
		for _, want := range c.want {
			if !strings.Contains(lines[c.line], want) {
				t.Errorf("row %d %q missing %q", c.line, lines[c.line], want)
			}
		}
	}

	if out := (ListView{}).View(nil, info); !strings.Contains(out, "No modules found") {
		t.Errorf("empty list = %q", out)
	}
}

func TestLoginForm(t *testing.T) {
	t.Parallel()
	f := NewLoginForm()
	if len(f.fields()) != 2 || !f.Email.Focused() {
		t.Fatal("login form should start on the email field")
	}
	if f.Valid() {
		t.Error("empty form should be invalid")
	}
	f.Email.SetValue("ada@example.com")
	f.Password.SetValue("pw")
	if !f.Valid() {
		t.Error("filled login form should be valid")
	}

	f.Register = true
	if len(f.fields()) != 3 || f.Valid() {
		t.Error("register mode needs a name")
	}
	if !strings.Contains(f.View(), "Register") {
		t.Error("register title missing")
	}
}

func TestBridge_QueuesUntilAttached(t *testing.T) {
	t.Parallel()
	b := NewBridge()
	b.Notify(course.LevelSuccess, "Welcome, ada!")
	b.Rebuilt(3)
	if got := b.Pending(); got != 2 {
		t.Errorf("Pending() = %d, want 2", got)
	}
}

func TestBodyHeight(t *testing.T) {
	t.Parallel()
	if got := bodyHeight(30, true); got != 30-chrome-detailHeight-3 {
		t.Errorf("bodyHeight with detail = %d", got)
	}
	if got := bodyHeight(12, false); got != 12-chrome {
		t.Errorf("bodyHeight without detail = %d", got)
	}
	if got := bodyHeight(1, true); got != 1 {
		t.Errorf("bodyHeight floor = %d", got)
	}
	if showDetail(DetailCollapseHeight - 1) {
		t.Error("detail should collapse on short terminals")
	}
}

func TestCellMapping(t *testing.T) {
	t.Parallel()
	x, y := toLayout(3, 2)
	if col, row := toCell(x, y); col != 3 || row != 2 {
		t.Errorf("round trip = %d,%d", col, row)
	}
}
