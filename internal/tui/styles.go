package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/syllabus/internal/highlight"
)

// Semantic color palette.
var (
	colorPrimary     = lipgloss.Color("#00BFFF") // Cyan, primary accent
	colorAccent      = lipgloss.Color("#FFD700") // Gold, the selected target
	colorSuccess     = lipgloss.Color("#00E676") // Green, completed
	colorDanger      = lipgloss.Color("#FF5252") // Red, errors
	colorMuted       = lipgloss.Color("#636363") // Gray, de-emphasized
	colorMutedLight  = lipgloss.Color("#8C8C8C") // Lighter gray, normal text
	colorWhite       = lipgloss.Color("#EEEEEE") // Off-white, primary text
	colorBrightWhite = lipgloss.Color("#FFFFFF") // Pure white, emphatic text
	colorSurface     = lipgloss.Color("#1E1E2E") // Dark surface, status bar bg
	colorSurfaceDim  = lipgloss.Color("#181825") // Darkest surface, footer bg
	colorBlue        = lipgloss.Color("#5B8DEF") // Blue, in progress
	colorMagenta     = lipgloss.Color("#C678DD") // Magenta, prerequisites
)

// Selection indicator prepended to the cursor row.
const selectionIndicator = "▎"

// Status icons for module states.
const (
	iconDone      = "●"
	iconStarted   = "◐"
	iconAvailable = "○"
	iconLocked    = "🔒"
)

// Status bar styles.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	styleStatusLabel = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleStatusValue = lipgloss.NewStyle().
				Foreground(colorWhite)

	styleStatusUser = lipgloss.NewStyle().
			Foreground(colorAccent)
)

// Module row styles.
var (
	styleRowSelected = lipgloss.NewStyle().
				Foreground(colorBrightWhite).
				Bold(true)

	styleRowNormal = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleRowDone = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleRowStarted = lipgloss.NewStyle().
			Foreground(colorBlue)

	styleRowAvailable = lipgloss.NewStyle().
				Foreground(colorAccent)

	styleRowLocked = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleRowMeta = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleSelectionIndicator = lipgloss.NewStyle().
				Foreground(colorPrimary)
)

// Card highlight styles for the list view.
var (
	styleCardTarget = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleCardPrerequisite = lipgloss.NewStyle().
				Foreground(colorMagenta)
)

// Graph styles.
var (
	styleNodeTarget = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Underline(true)

	styleNodePrerequisite = lipgloss.NewStyle().
				Foreground(colorMagenta).
				Bold(true)

	styleNodeDependent = lipgloss.NewStyle().
				Foreground(colorPrimary)

	styleNodeCursor = lipgloss.NewStyle().
			Reverse(true)

	styleEdge = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleEdgePrerequisite = lipgloss.NewStyle().
				Foreground(colorMagenta)

	styleEdgeDependent = lipgloss.NewStyle().
				Foreground(colorPrimary)
)

// Detail panel styles.
var (
	styleDetailBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted).
				Padding(0, 1)

	styleDetailTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleDetailLabel = lipgloss.NewStyle().
				Foreground(colorMutedLight)

	styleDetailDim = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	styleScrollIndicator = lipgloss.NewStyle().
				Foreground(colorMuted)
)

// Footer styles.
var (
	styleFooter = lipgloss.NewStyle().
			Background(colorSurfaceDim).
			Foreground(colorMutedLight).
			Padding(0, 1)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleFooterDesc = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleFooterSep = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// Notice and overlay styles.
var (
	styleNotice = lipgloss.NewStyle().
			Foreground(colorWhite).
			Padding(0, 1)

	styleNoticeSuccess = styleNotice.Foreground(colorSuccess)

	styleNoticeError = styleNotice.Foreground(colorDanger).Bold(true)

	styleOverlay = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	styleSearchPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)
)

// appearanceStyle renders a node in its resting look: fill as the text
// color, bold when it glows.
func appearanceStyle(a highlight.Appearance) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(a.Fill)).
		Bold(a.Glow)
}

// roleStyle returns the style for a highlighted node, or false when the
// node has no role and keeps its resting look.
func roleStyle(r highlight.Role) (lipgloss.Style, bool) {
	switch r {
	case highlight.RoleTarget:
		return styleNodeTarget, true
	case highlight.RolePrerequisite:
		return styleNodePrerequisite, true
	case highlight.RoleDependent:
		return styleNodeDependent, true
	}
	return lipgloss.Style{}, false
}

// edgeStyle picks the style for an edge. Prerequisite wins over dependent
// when both flags are set.
func edgeStyle(e highlight.EdgeRole) lipgloss.Style {
	switch {
	case e.Prerequisite:
		return styleEdgePrerequisite
	case e.Dependent:
		return styleEdgeDependent
	}
	return styleEdge
}
