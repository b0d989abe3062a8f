// Package ui provides human-readable CLI output for syllabus: notices,
// module listings, prerequisite chains, study plans and catalog integrity
// reports. Machine-readable output (JSON, DOT) is written by the commands
// themselves.
package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/papapumpkin/syllabus/internal/ansi"
	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/course"
	"github.com/papapumpkin/syllabus/internal/dag"
	"github.com/papapumpkin/syllabus/internal/prereq"
	"github.com/papapumpkin/syllabus/internal/store"
)

// Printer writes styled output, to stderr unless told otherwise.
type Printer struct {
	w     io.Writer
	color bool
}

// New returns a Printer on stderr with color.
func New() *Printer {
	return &Printer{w: os.Stderr, color: true}
}

// NewWriter returns a Printer on w. Color is off unless requested.
func NewWriter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) style(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansi.Reset
}

// Banner prints the program title box.
func (p *Printer) Banner() {
	fmt.Fprintln(p.w, p.style(ansi.Bold+ansi.Cyan, "  ╔══════════════════════════════╗"))
	fmt.Fprintln(p.w, p.style(ansi.Bold+ansi.Cyan, "  ║")+p.style(ansi.Bold, "   SYLLABUS  ")+p.style(ansi.Dim, "course graph")+p.style(ansi.Bold+ansi.Cyan, "    ║"))
	fmt.Fprintln(p.w, p.style(ansi.Bold+ansi.Cyan, "  ╚══════════════════════════════╝"))
	fmt.Fprintln(p.w)
}

// Error prints msg as an error.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s%s\n", p.style(ansi.Red+ansi.Bold, "error: "), msg)
}

// Warn prints msg as a warning.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, "%s%s\n", p.style(ansi.Yellow+ansi.Bold, "warning: "), msg)
}

// Info prints msg dimmed.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.style(ansi.Dim, msg))
}

// Success prints msg with a check mark.
func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.style(ansi.Green+ansi.Bold, "✓"), msg)
}

// Notify lets a Printer stand in as the App's notifier.
func (p *Printer) Notify(level course.Level, msg string) {
	switch level {
	case course.LevelError:
		p.Error(msg)
	case course.LevelSuccess:
		p.Success(msg)
	default:
		p.Info(msg)
	}
}

// statusGlyph marks a module the way the list view does.
func (p *Printer) statusGlyph(m catalog.Module, available bool) string {
	switch {
	case m.Status == catalog.StatusCompleted:
		return p.style(ansi.Green, "●")
	case m.Status == catalog.StatusInProgress:
		return p.style(ansi.Blue, "◐")
	case available:
		return p.style(ansi.Yellow, "○")
	default:
		return p.style(ansi.Dim, "🔒")
	}
}

// Modules lists modules one per line with status, level and duration.
func (p *Printer) Modules(mods []catalog.Module, available func(id string) bool) {
	if len(mods) == 0 {
		p.Info("No modules found")
		return
	}
	for _, m := range mods {
		avail := available != nil && available(m.ID)
		fmt.Fprintf(p.w, "  %s %-24s %s %s\n",
			p.statusGlyph(m, avail),
			m.ID,
			p.style(ansi.Bold, m.Title),
			p.style(ansi.Dim, fmt.Sprintf("(%s, %s, %dm)", m.Category, m.Level, m.Duration)),
		)
	}
}

// Chain prints what stands between the learner and target.
func (p *Printer) Chain(target catalog.Module, chain []catalog.Module) {
	if len(chain) == 0 {
		p.Success(fmt.Sprintf("%s has no outstanding prerequisites", target.Title))
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.style(ansi.Bold+ansi.Cyan, "prerequisites for"), p.style(ansi.Bold, target.Title))
	for _, m := range chain {
		fmt.Fprintf(p.w, "  %s %-24s %s\n", p.style(ansi.Magenta, "•"), m.ID, m.Title)
	}
}

// Plan prints a study plan in order with a running total.
func (p *Printer) Plan(plan prereq.Plan, lookup func(id string) (catalog.Module, bool)) {
	if len(plan.Steps) == 0 {
		p.Error(fmt.Sprintf("unknown module %q", plan.TargetID))
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.style(ansi.Bold+ansi.Cyan, "study plan:"), plan.TargetID)
	total := 0
	for i, id := range plan.Steps {
		m, _ := lookup(id)
		total += m.Duration
		fmt.Fprintf(p.w, "  %2d. %-24s %-28s %s\n", i+1, id, m.Title, p.style(ansi.Dim, fmt.Sprintf("%4dm  Σ %dm", m.Duration, total)))
	}
	if !plan.Ordered {
		p.Warn("prerequisite loop detected; steps after the loop are in discovery order")
	}
	fmt.Fprintf(p.w, "  %s %s\n", p.style(ansi.Bold, "total:"), formatMinutes(plan.Minutes))
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}

// Issues prints an integrity report.
func (p *Printer) Issues(source string, modules int, issues []catalog.Issue) {
	if len(issues) == 0 {
		fmt.Fprintf(p.w, "%s — %d module(s), no issues\n", p.style(ansi.Green+ansi.Bold, fmt.Sprintf("✓ catalog %q", source)), modules)
		return
	}
	fmt.Fprintf(p.w, "%s — %d issue(s):\n", p.style(ansi.Yellow+ansi.Bold, fmt.Sprintf("⚠ catalog %q", source)), len(issues))
	for _, is := range issues {
		fmt.Fprintf(p.w, "  %s%s\n", p.style(ansi.Yellow, "• "), is.String())
	}
}

// Tracks prints independent study tracks in study order.
func (p *Printer) Tracks(tracks []dag.Track) {
	if len(tracks) == 0 {
		p.Info("No modules")
		return
	}
	fmt.Fprintf(p.w, "%s %d\n", p.style(ansi.Bold, "tracks:"), len(tracks))
	for _, t := range tracks {
		fmt.Fprintf(p.w, "  Track %d: %s\n", t.ID, strings.Join(t.ModuleIDs, " -> "))
	}
}

// Overview prints the progress summary and who it belongs to.
func (p *Printer) Overview(s catalog.Stats, user *store.User) {
	who := "anonymous"
	if user != nil {
		who = fmt.Sprintf("%s <%s>", user.Name, user.Email)
	}
	fmt.Fprintf(p.w, "%s %s\n", p.style(ansi.Bold, "learner:"), who)
	fmt.Fprintf(p.w, "  completed:    %d\n", s.Completed)
	fmt.Fprintf(p.w, "  in progress:  %d\n", s.InProgress)
	fmt.Fprintf(p.w, "  total:        %d\n", s.Total)
	fmt.Fprintf(p.w, "  %s %s\n", progressBar(s.Percent, 20), p.style(ansi.Bold, fmt.Sprintf("%d%%", s.Percent)))
}

// ProgressLine returns the one-line summary the TUI status bar uses.
func ProgressLine(s catalog.Stats) string {
	return fmt.Sprintf("%s %d/%d completed (%d%%), %d in progress", progressBar(s.Percent, 10), s.Completed, s.Total, s.Percent, s.InProgress)
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// Waves prints the study waves of the catalog.
func (p *Printer) Waves(r *WaveRenderer, waves []dag.Wave, requires map[string][]string) {
	r.UseColor = p.color
	out := r.Render(waves, requires)
	if out == "" {
		p.Info("No modules")
		return
	}
	fmt.Fprint(p.w, out)
}

// Marks builds renderer marks for mods.
func Marks(mods []catalog.Module, available func(id string) bool) map[string]Mark {
	out := make(map[string]Mark, len(mods))
	for _, m := range mods {
		out[m.ID] = Mark{
			Title:     m.Title,
			Status:    m.Status,
			Available: available != nil && available(m.ID),
			Minutes:   m.Duration,
		}
	}
	return out
}

// SortedKeys returns the keys of m in order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
