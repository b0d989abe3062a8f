package highlight

import (
	"slices"
	"testing"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/depgraph"
)

func newController() *Controller {
	cat := catalog.New([]catalog.Module{
		{ID: "basics", Title: "Basics", Category: "core", Level: catalog.LevelBeginner, Status: catalog.StatusCompleted},
		{ID: "numpy", Title: "NumPy", Category: "core", Level: catalog.LevelIntermediate, Prerequisites: []string{"basics"}},
		{ID: "pandas", Title: "Pandas", Level: catalog.LevelAdvanced, Prerequisites: []string{"numpy"}},
		{ID: "xarray", Title: "Xarray", Prerequisites: []string{"numpy", "pandas"}},
		{ID: "viz", Title: "Viz", Prerequisites: []string{"pandas"}},
	})
	return New(cat, depgraph.Build(cat))
}

func TestSelectTarget_Roles(t *testing.T) {
	t.Parallel()
	c := newController()
	if !c.SelectTarget("pandas") {
		t.Fatal("SelectTarget refused a known module")
	}

	roles := map[string]Role{
		"pandas": RoleTarget,
		"numpy":  RolePrerequisite,
		"xarray": RoleDependent,
		"viz":    RoleDependent,
		"basics": RoleNone, // completed, so not on the chain
	}
	for id, want := range roles {
		if got := c.NodeRole(id); got != want {
			t.Errorf("NodeRole(%s) = %v, want %v", id, got, want)
		}
	}

	edges := []EdgeRole{
		{},                   // basics→numpy
		{Prerequisite: true}, // numpy→pandas
		{},                   // numpy→xarray
		{Dependent: true},    // pandas→xarray
		{Dependent: true},    // pandas→viz
	}
	for i, want := range edges {
		if got := c.EdgeRole(i); got != want {
			t.Errorf("EdgeRole(%d) = %+v, want %+v", i, got, want)
		}
	}
	if got := c.EdgeRole(99); got != (EdgeRole{}) {
		t.Errorf("out of range edge = %+v", got)
	}
}

func TestSelectTarget_ResetsPreviousSelection(t *testing.T) {
	t.Parallel()
	c := newController()
	c.SelectTarget("pandas")
	c.SelectTarget("xarray")

	if got := c.NodeRole("viz"); got != RoleNone {
		t.Errorf("viz kept role %v from the previous selection", got)
	}
	if got := c.NodeRole("pandas"); got != RolePrerequisite {
		t.Errorf("pandas role = %v, want prerequisite", got)
	}
	if got := c.EdgeRole(4); got != (EdgeRole{}) {
		t.Errorf("pandas→viz kept %+v", got)
	}
	if got := c.EdgeRole(3); got != (EdgeRole{Prerequisite: true}) {
		t.Errorf("pandas→xarray = %+v", got)
	}
	if !slices.Equal(c.Chain(), []string{"numpy", "pandas"}) {
		t.Errorf("Chain() = %v", c.Chain())
	}
}

func TestSelectTarget_UnknownKeepsState(t *testing.T) {
	t.Parallel()
	c := newController()
	c.SelectTarget("pandas")
	if c.SelectTarget("ghost") {
		t.Error("SelectTarget accepted an unknown id")
	}
	if id, ok := c.Target(); !ok || id != "pandas" {
		t.Errorf("Target() = %q, %v after unknown selection", id, ok)
	}
}

func TestClearHighlights_Idempotent(t *testing.T) {
	t.Parallel()
	c := newController()
	c.SelectTarget("xarray")
	c.ClearHighlights()
	c.ClearHighlights()

	if _, ok := c.Target(); ok {
		t.Error("target survived clear")
	}
	for _, id := range []string{"basics", "numpy", "pandas", "xarray", "viz"} {
		if r := c.NodeRole(id); r != RoleNone {
			t.Errorf("%s role = %v after clear", id, r)
		}
		if cls := c.CardClass(id); cls != "" {
			t.Errorf("%s card class = %q after clear", id, cls)
		}
	}
	for i := range 5 {
		if r := c.EdgeRole(i); r != (EdgeRole{}) {
			t.Errorf("edge %d = %+v after clear", i, r)
		}
	}
}

func TestCardClass(t *testing.T) {
	t.Parallel()
	c := newController()
	c.SelectTarget("pandas")
	tests := map[string]string{
		"pandas": CardTarget,
		"numpy":  CardPrerequisite,
		"xarray": "",
		"basics": "",
	}
	for id, want := range tests {
		if got := c.CardClass(id); got != want {
			t.Errorf("CardClass(%s) = %q, want %q", id, got, want)
		}
	}
}

func TestViewPrerequisites(t *testing.T) {
	t.Parallel()
	c := newController()
	if !c.ViewPrerequisites("xarray") {
		t.Fatal("ViewPrerequisites(xarray) highlighted nothing")
	}
	if c.CardClass("numpy") != CardPrerequisite {
		t.Error("numpy not highlighted")
	}

	// numpy's only prerequisite is completed: nothing to show.
	if c.ViewPrerequisites("numpy") {
		t.Error("ViewPrerequisites(numpy) reported highlights")
	}
	if _, ok := c.Target(); ok {
		t.Error("empty chain did not clear the previous highlight")
	}
}

func TestAppearance(t *testing.T) {
	t.Parallel()
	c := newController()
	tests := map[string]Appearance{
		"basics": {Fill: "#28a745", Stroke: "#1e7e34", Glow: true},
		"numpy":  {Fill: "#ffc107", Stroke: "#495057"},
		"pandas": {Fill: "#e9ecef", Stroke: "#ced4da"},
		"ghost":  {Fill: "#e9ecef", Stroke: "#ced4da"},
	}
	for id, want := range tests {
		if got := c.Appearance(id); got != want {
			t.Errorf("Appearance(%s) = %+v, want %+v", id, got, want)
		}
	}

	c.SelectTarget("pandas")
	if got := c.Appearance("numpy"); got != tests["numpy"] {
		t.Errorf("selection changed base appearance: %+v", got)
	}
}

func TestAppearance_InProgressAndRebind(t *testing.T) {
	t.Parallel()
	c := newController()
	c.SelectTarget("viz")

	cat := catalog.New([]catalog.Module{
		{ID: "solo", Title: "Solo", Status: catalog.StatusInProgress, Prerequisites: []string{"missing"}},
	})
	c.Rebind(cat, depgraph.Build(cat))
	if _, ok := c.Target(); ok {
		t.Error("Rebind kept the selection")
	}
	want := Appearance{Fill: "#007bff", Stroke: "#0056b3"}
	if got := c.Appearance("solo"); got != want {
		t.Errorf("in-progress appearance = %+v, want %+v", got, want)
	}
}

func TestDecorate(t *testing.T) {
	t.Parallel()
	c := newController()
	c.SelectTarget("pandas")
	doc := depgraph.NewDocument(c.graph)
	c.Decorate(doc)

	if got := doc.Nodes[0].Classes; !slices.Equal(got, []string{"glow"}) {
		t.Errorf("basics classes = %v", got)
	}
	if got := doc.Nodes[2].Classes; !slices.Equal(got, []string{"selected"}) {
		t.Errorf("pandas classes = %v", got)
	}
	if doc.Nodes[2].Fill != "#e9ecef" {
		t.Errorf("pandas fill = %q", doc.Nodes[2].Fill)
	}
	if got := doc.Links[1].Classes; !slices.Equal(got, []string{"prerequisite"}) {
		t.Errorf("numpy→pandas classes = %v", got)
	}
	if got := doc.Links[3].Classes; !slices.Equal(got, []string{"dependent"}) {
		t.Errorf("pandas→xarray classes = %v", got)
	}

	c.ClearHighlights()
	c.Decorate(doc)
	if doc.Links[1].Classes != nil {
		t.Errorf("links kept classes after clear: %v", doc.Links[1].Classes)
	}
}

func TestRoleOf_RoundTripsDecorate(t *testing.T) {
	t.Parallel()
	c := newController()
	c.SelectTarget("pandas")
	doc := depgraph.NewDocument(c.graph)
	c.Decorate(doc)

	for _, n := range doc.Nodes {
		if got, want := RoleOf(n.Classes), c.NodeRole(n.ID); got != want {
			t.Errorf("RoleOf(%s) = %v, want %v", n.ID, got, want)
		}
	}
	for i, l := range doc.Links {
		if got, want := EdgeRoleOf(l.Classes), c.EdgeRole(i); got != want {
			t.Errorf("EdgeRoleOf(%s→%s) = %+v, want %+v", l.Source, l.Target, got, want)
		}
	}
	if RoleOf([]string{GlowClass}) != RoleNone {
		t.Error("glow alone should carry no role")
	}
}
