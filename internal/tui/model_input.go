package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/course"
)

// handleKey routes key presses to the login form, the search input or the
// active view.
func (m AppModel) handleKey(msg tea.KeyMsg) (AppModel, tea.Cmd) {
	if m.Login != nil {
		action, cmd := m.Login.Update(msg)
		switch action {
		case formCancel:
			m.Login = nil
		case formSubmit:
			return m.track("signing in", m.loginCmd(m.Login))
		}
		return m, cmd
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.mode == modeGraph && m.Graph.Grabbed != "" {
		return m.handleGrabKey(msg)
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Toggle):
		return m.toggleMode()

	case key.Matches(msg, m.Keys.Search):
		m.searching = true
		m.Search.SetValue(m.App.Filter().Text)
		m.Search.CursorEnd()
		return m, m.Search.Focus()

	case key.Matches(msg, m.Keys.Category):
		return m.track("searching", m.searchCmd(m.nextCategory()))

	case key.Matches(msg, m.Keys.Back):
		if _, selected := m.App.Selection(); selected {
			m.App.Interact(course.Hit{Kind: course.HitBackground})
			return m, nil
		}
		if !m.App.Filter().IsZero() {
			return m.track("searching", m.searchCmd(catalog.Filter{}))
		}

	case key.Matches(msg, m.Keys.Login):
		if m.App.User() != nil {
			return m.track("signing out", m.logoutCmd())
		}
		m.Login = NewLoginForm()

	case key.Matches(msg, m.Keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.Keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.Keys.Enter):
		if id, ok := m.focusedID(); ok {
			kind := course.HitCard
			if m.mode == modeGraph {
				kind = course.HitNode
			}
			m.App.Interact(course.Hit{Kind: kind, ModuleID: id})
		}

	case key.Matches(msg, m.Keys.Prereqs):
		if id, ok := m.focusedID(); ok {
			m.App.ViewPrerequisites(id)
		}

	case key.Matches(msg, m.Keys.Start):
		if id, ok := m.focusedID(); ok {
			return m.track("saving", m.progressCmd("start", id, catalog.StatusInProgress))
		}

	case key.Matches(msg, m.Keys.Complete):
		if id, ok := m.focusedID(); ok {
			return m.track("saving", m.progressCmd("complete", id, catalog.StatusCompleted))
		}

	case key.Matches(msg, m.Keys.Grab):
		if m.mode != modeGraph {
			break
		}
		if id, ok := m.focusedID(); ok && m.App.DragStart(id) {
			m.Graph.Grabbed = id
		}

	default:
		m.Detail.Update(msg)
	}
	return m, nil
}

func (m AppModel) handleSearchKey(msg tea.KeyMsg) (AppModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.Search.Blur()
		f := parseQuery(m.Search.Value())
		if f.Category == "" {
			f.Category = m.App.Filter().Category
		}
		return m.track("searching", m.searchCmd(f))
	case "esc":
		m.searching = false
		m.Search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	return m, cmd
}

// handleGrabKey moves the grabbed node one cell per key press.
func (m AppModel) handleGrabKey(msg tea.KeyMsg) (AppModel, tea.Cmd) {
	dx, dy := 0.0, 0.0
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.dropGrabbed()
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Grab), key.Matches(msg, m.Keys.Back), key.Matches(msg, m.Keys.Enter):
		m.dropGrabbed()
		return m, nil
	case key.Matches(msg, m.Keys.Up):
		dy = -cellHeight
	case key.Matches(msg, m.Keys.Down):
		dy = cellHeight
	case key.Matches(msg, m.Keys.Left):
		dx = -cellWidth
	case key.Matches(msg, m.Keys.Right):
		dx = cellWidth
	default:
		return m, nil
	}
	if p, ok := m.App.Positions()[m.Graph.Grabbed]; ok {
		m.App.DragMove(m.Graph.Grabbed, p.X+dx, p.Y+dy)
	}
	return m, nil
}

func (m *AppModel) dropGrabbed() {
	if m.Graph.Grabbed != "" {
		m.App.DragEnd(m.Graph.Grabbed)
	}
	m.Graph.Grabbed = ""
	m.mouseDrag = false
}

// handleMouse selects and drags nodes in the graph view and scrolls the
// list.
func (m AppModel) handleMouse(msg tea.MouseMsg) AppModel {
	if m.Login != nil || m.searching {
		return m
	}
	if m.mode == modeList {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			m.moveCursor(1)
		}
		return m
	}

	// The status bar sits above the canvas.
	col, row := msg.X, msg.Y-1
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || row < 0 || row >= m.Graph.Height {
			return m
		}
		id, ok := m.nodeAt(col, row)
		if !ok {
			m.App.Interact(course.Hit{Kind: course.HitBackground})
			return m
		}
		m.App.Interact(course.Hit{Kind: course.HitNode, ModuleID: id})
		m.setGraphCursor(id)
		if m.App.DragStart(id) {
			m.Graph.Grabbed = id
			m.mouseDrag = true
		}
	case tea.MouseActionMotion:
		if m.mouseDrag && m.Graph.Grabbed != "" {
			x, y := toLayout(col, row)
			m.App.DragMove(m.Graph.Grabbed, x, y)
		}
	case tea.MouseActionRelease:
		if m.mouseDrag {
			m.dropGrabbed()
		}
	}
	return m
}

// nodeAt finds the node under a cell: its label first, then the
// simulation's own hit radius.
func (m AppModel) nodeAt(col, row int) (string, bool) {
	if id, ok := m.Graph.HitTest(sceneFrom(m.App), col, row); ok {
		return id, true
	}
	return m.App.NodeAt(toLayout(col, row))
}
