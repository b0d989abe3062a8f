package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/highlight"
)

// ListView is a scrolling list of the modules the current search shows.
type ListView struct {
	Cursor int
	Offset int
	Width  int
	Height int
}

// Clamp keeps the cursor inside n rows and scrolls it into view.
func (lv *ListView) Clamp(n int) {
	if n == 0 {
		lv.Cursor, lv.Offset = 0, 0
		return
	}
	lv.Cursor = max(0, min(lv.Cursor, n-1))
	rows := max(1, lv.Height)
	if lv.Cursor < lv.Offset {
		lv.Offset = lv.Cursor
	}
	if lv.Cursor >= lv.Offset+rows {
		lv.Offset = lv.Cursor - rows + 1
	}
	lv.Offset = max(0, min(lv.Offset, n-1))
}

// MoveUp moves the cursor up one row.
func (lv *ListView) MoveUp(n int) {
	lv.Cursor--
	lv.Clamp(n)
}

// MoveDown moves the cursor down one row.
func (lv *ListView) MoveDown(n int) {
	lv.Cursor++
	lv.Clamp(n)
}

// Selected returns the module id under the cursor.
func (lv ListView) Selected(mods []catalog.Module) (string, bool) {
	if lv.Cursor < 0 || lv.Cursor >= len(mods) {
		return "", false
	}
	return mods[lv.Cursor].ID, true
}

// rowInfo is what a row needs beyond the module itself.
type rowInfo struct {
	available bool
	card      string
}

// View renders the visible window of mods. info returns availability and
// the card highlight class for a module.
func (lv ListView) View(mods []catalog.Module, info func(id string) rowInfo) string {
	if len(mods) == 0 {
		return styleDetailDim.Render("  No modules found")
	}
	rows := max(1, lv.Height)
	end := min(len(mods), lv.Offset+rows)

	var b strings.Builder
	for i := lv.Offset; i < end; i++ {
		if i > lv.Offset {
			b.WriteString("\n")
		}
		b.WriteString(lv.row(mods[i], info(mods[i].ID), i == lv.Cursor))
	}
	return b.String()
}

func (lv ListView) row(m catalog.Module, ri rowInfo, selected bool) string {
	indicator := "  "
	if selected {
		indicator = styleSelectionIndicator.Render(selectionIndicator) + " "
	}

	icon, iconStyle := iconLocked, styleRowLocked
	switch {
	case m.Status == catalog.StatusCompleted:
		icon, iconStyle = iconDone, styleRowDone
	case m.Status == catalog.StatusInProgress:
		icon, iconStyle = iconStarted, styleRowStarted
	case ri.available:
		icon, iconStyle = iconAvailable, styleRowAvailable
	}

	titleStyle := styleRowNormal
	switch {
	case ri.card == highlight.CardTarget:
		titleStyle = styleCardTarget
	case ri.card == highlight.CardPrerequisite:
		titleStyle = styleCardPrerequisite
	case selected:
		titleStyle = styleRowSelected
	}

	title := titleStyle.Render(m.Title)
	if ri.card != "" {
		title += " " + titleStyle.Render(cardTag(ri.card))
	}
	meta := styleRowMeta.Render(fmt.Sprintf("%s · %s · %dm", orDash(m.Category), orDash(string(m.Level)), m.Duration))

	line := indicator + iconStyle.Render(icon) + " " + title
	if gap := lv.Width - lipgloss.Width(line) - lipgloss.Width(meta) - 1; gap > 0 {
		line += strings.Repeat(" ", gap) + meta
	}
	return line
}

func cardTag(class string) string {
	switch class {
	case highlight.CardTarget:
		return "◆ target"
	case highlight.CardPrerequisite:
		return "◇ needed"
	}
	return ""
}
