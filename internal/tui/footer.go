package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Footer renders context-sensitive keybinding hints.
type Footer struct {
	Width    int
	Bindings []key.Binding
}

// View renders the footer as a single line of keybinding hints. Narrow
// terminals get the keys without descriptions.
func (f Footer) View() string {
	compact := f.Width < CompactWidth

	var parts []string
	for _, b := range f.Bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		part := styleFooterKey.Render(help.Key)
		if !compact {
			part += styleFooterSep.Render(":") + styleFooterDesc.Render(help.Desc)
		}
		parts = append(parts, part)
	}
	sep := styleFooterSep.Render("  ")
	if compact {
		sep = styleFooterSep.Render(" ")
	}
	return styleFooter.Width(f.Width).Render(strings.Join(parts, sep))
}

// ListFooterBindings returns footer bindings for the module list.
func ListFooterBindings(km KeyMap) []key.Binding {
	return []key.Binding{km.Up, km.Down, km.Enter, km.Prereqs, km.Start, km.Complete, km.Search, km.Category, km.Toggle, km.Login, km.Quit}
}

// GraphFooterBindings returns footer bindings for the graph view. While a
// node is grabbed only the movement keys apply.
func GraphFooterBindings(km KeyMap, grabbed bool) []key.Binding {
	toggle := km.Toggle
	toggle.SetHelp("tab", "list")
	if grabbed {
		grab := km.Grab
		grab.SetHelp("d", "drop")
		return []key.Binding{km.Up, km.Down, km.Left, km.Right, grab, km.Quit}
	}
	return []key.Binding{km.Up, km.Down, km.Enter, km.Prereqs, km.Grab, km.Back, toggle, km.Quit}
}

// FormFooterBindings returns footer bindings while an input has focus.
func FormFooterBindings(km KeyMap) []key.Binding {
	submit := km.Enter
	submit.SetHelp("enter", "submit")
	cancel := km.Back
	cancel.SetHelp("esc", "cancel")
	return []key.Binding{submit, cancel}
}
