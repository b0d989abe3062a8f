package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func newBusySpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(colorBlue)
	return s
}

// track counts cmd as one more outstanding background operation and labels
// the status bar with what it is doing. The first outstanding operation
// starts the spinner.
func (m AppModel) track(label string, cmd tea.Cmd) (AppModel, tea.Cmd) {
	if cmd == nil {
		return m, nil
	}
	m.pending++
	m.StatusBar.Busy = label
	if m.pending == 1 {
		return m, tea.Batch(cmd, m.StatusBar.Spinner.Tick)
	}
	return m, cmd
}

// settle retires one outstanding operation. The label clears once none
// remain.
func (m *AppModel) settle() {
	if m.pending > 0 {
		m.pending--
	}
	if m.pending == 0 {
		m.StatusBar.Busy = ""
	}
}

// spin advances the spinner while work is outstanding. Ticks arriving when
// idle are dropped, which ends the tick loop.
func (m *AppModel) spin(msg spinner.TickMsg) tea.Cmd {
	if m.pending == 0 {
		return nil
	}
	var cmd tea.Cmd
	m.StatusBar.Spinner, cmd = m.StatusBar.Spinner.Update(msg)
	return cmd
}
