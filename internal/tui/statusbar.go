package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/ui"
)

// StatusBar renders the persistent top bar: the current view and search on
// the left, progress and the learner on the right.
type StatusBar struct {
	Width  int
	Mode   string
	User   string
	Stats  catalog.Stats
	Filter catalog.Filter
	Shown  int

	// Busy labels the background operation in flight; empty when idle.
	Busy    string
	Spinner spinner.Model
}

// View renders the status bar as a single line. Narrow terminals drop the
// progress bar and then the search summary.
func (s StatusBar) View() string {
	compact := s.Width < CompactWidth

	// The outer styleStatusBar applies Padding(0,1), consuming 2 columns.
	const barPadding = 2
	innerWidth := max(0, s.Width-barPadding)

	left := styleStatusLabel.Render("syllabus") + " " + styleStatusValue.Render(s.Mode)
	if search := s.searchSegment(); search != "" && !compact {
		left += "  " + styleStatusValue.Render(search)
	}
	if s.Busy != "" {
		left += "  " + s.Spinner.View() + " " + styleStatusValue.Render(s.Busy)
	}

	var right []string
	if compact {
		right = append(right, fmt.Sprintf("%d/%d", s.Stats.Completed, s.Stats.Total))
	} else {
		right = append(right, ui.ProgressLine(s.Stats))
	}
	user := s.User
	if user == "" {
		user = "not logged in"
	}
	right = append(right, styleStatusUser.Render(user))
	rightStr := strings.Join(right, "  ")

	gap := innerWidth - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if gap < 1 {
		// Not enough room for both sides; keep the right-hand status.
		return styleStatusBar.Width(s.Width).Render(rightStr)
	}
	return styleStatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + rightStr)
}

func (s StatusBar) searchSegment() string {
	if s.Filter.IsZero() {
		return ""
	}
	var parts []string
	if t := strings.TrimSpace(s.Filter.Text); t != "" {
		parts = append(parts, fmt.Sprintf("%q", t))
	}
	if s.Filter.Category != "" {
		parts = append(parts, "in "+s.Filter.Category)
	}
	return fmt.Sprintf("search %s (%d)", strings.Join(parts, " "), s.Shown)
}
