package catalog

import "strings"

// Filter narrows a module list. Both the API server and the client-side
// fallback use Matches, so the two paths agree on what a match is.
type Filter struct {
	// Text is matched case-insensitively as a substring of the title,
	// description or any keyword. Empty matches everything.
	Text string `json:"q,omitempty"`
	// Category must equal the module's category exactly. Empty matches
	// everything.
	Category string `json:"category,omitempty"`
}

// IsZero reports whether the filter matches every module.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Text) == "" && f.Category == ""
}

// Matches reports whether m passes the filter.
func (f Filter) Matches(m Module) bool {
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Text))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(m.Title), term) ||
		strings.Contains(strings.ToLower(m.Description), term) {
		return true
	}
	for _, k := range m.Keywords {
		if strings.Contains(strings.ToLower(k), term) {
			return true
		}
	}
	return false
}

// Apply returns the modules that match, preserving order.
func (f Filter) Apply(modules []Module) []Module {
	out := make([]Module, 0, len(modules))
	for _, m := range modules {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}
