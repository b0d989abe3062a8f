package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func TestAppModel_BusyWhileSearchOutstanding(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	m, _ = update(m, keyRunes("/"))
	m, _ = update(m, keyRunes("syntax"))
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should start a search")
	}
	if m.pending != 1 {
		t.Fatalf("pending = %d, want 1", m.pending)
	}
	if !strings.Contains(m.StatusBar.View(), "searching") {
		t.Errorf("status bar should show the search in flight:\n%s", m.StatusBar.View())
	}

	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("first operation should batch the spinner tick, got %T", msg)
	}
	tick, ok := batch[1]().(spinner.TickMsg)
	if !ok {
		t.Fatal("second command should tick the spinner")
	}
	m, next := update(m, tick)
	if next == nil {
		t.Error("spinner should keep ticking while work is outstanding")
	}

	m, _ = update(m, batch[0]())
	if m.pending != 0 {
		t.Errorf("pending = %d after completion, want 0", m.pending)
	}
	if strings.Contains(m.StatusBar.View(), "searching") {
		t.Error("busy label should clear once the search reports back")
	}
	if _, next = update(m, tick); next != nil {
		t.Error("idle spinner ticks should be dropped")
	}
}

func TestAppModel_TrackNestsOperations(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)
	noop := func() tea.Msg { return nil }

	m, first := m.track("saving", noop)
	m, second := m.track("signing out", noop)
	if _, ok := first().(tea.BatchMsg); !ok {
		t.Error("first operation should start the spinner")
	}
	if _, ok := second().(tea.BatchMsg); ok {
		t.Error("spinner is already running for the second operation")
	}
	if m.StatusBar.Busy != "signing out" {
		t.Errorf("busy = %q, want the latest label", m.StatusBar.Busy)
	}

	m.settle()
	if m.StatusBar.Busy == "" {
		t.Error("one operation is still outstanding")
	}
	m.settle()
	m.settle()
	if m.pending != 0 || m.StatusBar.Busy != "" {
		t.Errorf("pending = %d busy = %q, want idle", m.pending, m.StatusBar.Busy)
	}

	if _, cmd := m.track("saving", nil); cmd != nil || m.pending != 0 {
		t.Error("a nil command is not tracked")
	}
}
