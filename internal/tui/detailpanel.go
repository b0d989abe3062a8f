package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/course"
)

// DetailPanel wraps a viewport for the focused module's details.
type DetailPanel struct {
	viewport   viewport.Model
	title      string
	content    string
	totalLines int
	emptyHint  string
}

// NewDetailPanel creates a detail panel with the given dimensions.
func NewDetailPanel(width, height int) DetailPanel {
	vp := viewport.New(width, height)
	vp.SetContent("")
	return DetailPanel{viewport: vp}
}

// SetSize updates the viewport dimensions.
func (d *DetailPanel) SetSize(width, height int) {
	d.viewport.Width = width
	d.viewport.Height = height
}

// SetContent updates the displayed text and title. Scrolling resets only
// when the content actually changes.
func (d *DetailPanel) SetContent(title, content string) {
	if d.emptyHint == "" && title == d.title && content == d.content {
		return
	}
	d.title = title
	d.content = content
	d.emptyHint = ""
	d.totalLines = strings.Count(content, "\n") + 1
	d.viewport.SetContent(content)
	d.viewport.GotoTop()
}

// SetEmpty sets the detail panel to show an empty-state hint.
func (d *DetailPanel) SetEmpty(hint string) {
	d.title = ""
	d.content = ""
	d.emptyHint = hint
	d.totalLines = 0
	d.viewport.SetContent("")
	d.viewport.GotoTop()
}

// Update handles viewport scroll messages.
func (d *DetailPanel) Update(msg tea.Msg) {
	d.viewport, _ = d.viewport.Update(msg)
}

// View renders the detail panel with a rounded border and scroll indicators.
func (d DetailPanel) View() string {
	if d.emptyHint != "" {
		return styleDetailBorder.Render(styleDetailDim.Render(d.emptyHint))
	}

	var b strings.Builder
	if d.title != "" {
		b.WriteString(styleDetailTitle.Render(d.title))
		b.WriteString("\n")
	}
	b.WriteString(d.viewport.View())
	if below := d.totalLines - d.viewport.YOffset - d.viewport.Height; below > 0 {
		b.WriteString("\n")
		b.WriteString(styleScrollIndicator.Render(fmt.Sprintf("↓ %d more", below)))
	}
	return styleDetailBorder.Render(b.String())
}

// moduleDetail describes one module: where it stands, what it needs and
// what the learner still has to do to reach it.
func moduleDetail(app *course.App, id string) (title, body string, ok bool) {
	m, ok := app.Module(id)
	if !ok {
		return "", "", false
	}

	var b strings.Builder
	label := func(name string) string { return styleDetailLabel.Render(name + ":") }

	fmt.Fprintf(&b, "%s %s · %s · %dm\n", label("module"), orDash(m.Category), orDash(string(m.Level)), m.Duration)
	fmt.Fprintf(&b, "%s %s\n", label("status"), statusText(m, app.IsAvailable(id)))
	if m.Description != "" {
		fmt.Fprintf(&b, "%s\n", m.Description)
	}

	if len(m.Prerequisites) > 0 {
		parts := make([]string, 0, len(m.Prerequisites))
		for _, p := range m.Prerequisites {
			pm, found := app.Module(p)
			switch {
			case !found:
				parts = append(parts, p+" (missing)")
			case pm.Status == catalog.StatusCompleted:
				parts = append(parts, pm.Title+" "+iconDone)
			default:
				parts = append(parts, pm.Title)
			}
		}
		fmt.Fprintf(&b, "%s %s\n", label("requires"), strings.Join(parts, ", "))
	}

	if chain := app.PrerequisiteChain(id); len(chain) > 0 {
		fmt.Fprintf(&b, "%s %s\n", label("outstanding"), strings.Join(chain, " → "))
	}
	if plan := app.StudyPlan(id); len(plan.Steps) > 1 {
		fmt.Fprintf(&b, "%s %d step(s), %dm\n", label("plan"), len(plan.Steps), plan.Minutes)
	}
	if len(m.Keywords) > 0 {
		fmt.Fprintf(&b, "%s %s\n", label("keywords"), strings.Join(m.Keywords, ", "))
	}
	if m.ColabURL != "" {
		fmt.Fprintf(&b, "%s %s\n", label("notebook"), m.ColabURL)
	} else if m.NotebookAvailable {
		fmt.Fprintf(&b, "%s available\n", label("notebook"))
	}
	return m.Title, strings.TrimRight(b.String(), "\n"), true
}

func statusText(m catalog.Module, available bool) string {
	switch {
	case m.Status == catalog.StatusCompleted:
		return styleRowDone.Render("completed")
	case m.Status == catalog.StatusInProgress:
		return styleRowStarted.Render("in progress")
	case available:
		return styleRowAvailable.Render("ready to start")
	}
	return styleRowLocked.Render("locked")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
