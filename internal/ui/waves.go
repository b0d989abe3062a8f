package ui

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/papapumpkin/syllabus/internal/ansi"
	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/dag"
)

// Mark is what the renderer needs to know about one module.
type Mark struct {
	Title     string
	Status    catalog.Status
	Available bool
	Minutes   int
}

// WaveRenderer draws study waves top to bottom, one row of boxes per wave,
// with connectors from each module to the modules it unlocks in the next
// wave. Large plans switch to one line per module.
type WaveRenderer struct {
	// Width is the available terminal width in columns.
	Width int
	// UseColor enables ANSI styling.
	UseColor bool
	// Marks describes each module by id. Missing ids render as locked.
	Marks map[string]Mark
	// Emphasis is drawn bold, typically the selected target and its chain.
	Emphasis map[string]bool
	// Tracks maps module id to track; modules off the first track get a
	// double border.
	Tracks map[string]int
}

// compactThreshold is the module count above which boxes give way to one
// line per module.
const compactThreshold = 10

// Render draws waves. requires maps a module id to its direct
// prerequisites.
func (r *WaveRenderer) Render(waves []dag.Wave, requires map[string][]string) string {
	total := 0
	for _, w := range waves {
		total += len(w.NodeIDs)
	}
	if total == 0 {
		return ""
	}
	width := r.Width
	if width <= 0 {
		width = 80
	}
	if total > compactThreshold {
		return r.renderLines(waves, requires)
	}
	return r.renderBoxes(waves, requires, width)
}

func (r *WaveRenderer) mark(id string) Mark {
	m, ok := r.Marks[id]
	if !ok {
		return Mark{Title: id, Status: catalog.StatusNotStarted}
	}
	if m.Title == "" {
		m.Title = id
	}
	return m
}

// color picks the style for a module, completed first, then started, then
// free to start, then locked.
func (r *WaveRenderer) color(id string) string {
	m := r.mark(id)
	var c string
	switch {
	case m.Status == catalog.StatusCompleted:
		c = ansi.Green
	case m.Status == catalog.StatusInProgress:
		c = ansi.Blue
	case m.Available:
		c = ansi.Yellow
	default:
		c = ansi.Dim
	}
	if r.Emphasis[id] {
		c = ansi.Bold + c
	}
	return c
}

func (r *WaveRenderer) paint(text, id string) string {
	if !r.UseColor {
		return text
	}
	return r.color(id) + text + ansi.Reset
}

type box struct {
	id     string
	lines  []string
	width  int
	center int
}

// buildBox renders one module:
//
//	┌──────────────┐
//	│ NumPy        │
//	│ 90m  started │
//	└──────────────┘
func (r *WaveRenderer) buildBox(id string) *box {
	m := r.mark(id)
	content := []string{m.Title, r.detail(m)}

	inner := 6
	for _, line := range content {
		if w := utf8.RuneCountInString(line); w > inner {
			inner = w
		}
	}

	edge := [6]rune{'┌', '┐', '└', '┘', '─', '│'}
	if r.Tracks[id] > 0 {
		edge = [6]rune{'╔', '╗', '╚', '╝', '═', '║'}
	}
	horiz := strings.Repeat(string(edge[4]), inner+2)

	lines := []string{r.paint(string(edge[0])+horiz+string(edge[1]), id)}
	for _, c := range content {
		pad := strings.Repeat(" ", inner-utf8.RuneCountInString(c))
		lines = append(lines, r.paint(string(edge[5])+" "+c+pad+" "+string(edge[5]), id))
	}
	lines = append(lines, r.paint(string(edge[2])+horiz+string(edge[3]), id))
	return &box{id: id, lines: lines, width: inner + 4}
}

func (r *WaveRenderer) detail(m Mark) string {
	state := "locked"
	switch {
	case m.Status == catalog.StatusCompleted:
		state = "done"
	case m.Status == catalog.StatusInProgress:
		state = "started"
	case m.Available:
		state = "ready"
	}
	if m.Minutes > 0 {
		return fmt.Sprintf("%dm  %s", m.Minutes, state)
	}
	return state
}

func (r *WaveRenderer) renderBoxes(waves []dag.Wave, requires map[string][]string, width int) string {
	boxes := make(map[string]*box)
	var sb strings.Builder
	for wi, w := range waves {
		row := make([]*box, len(w.NodeIDs))
		for i, id := range w.NodeIDs {
			row[i] = r.buildBox(id)
			boxes[id] = row[i]
		}
		spread(row, width)
		if wi > 0 {
			connect(&sb, w, boxes, requires, width)
		}
		drawRow(&sb, row)
	}
	return sb.String()
}

// spread spaces the boxes of one row evenly across width.
func spread(row []*box, width int) {
	if len(row) == 1 {
		row[0].center = width / 2
		return
	}
	used := 0
	for _, b := range row {
		used += b.width
	}
	gap := 2
	if used < width {
		gap = max(2, (width-used)/(len(row)+1))
	}
	x := gap
	for _, b := range row {
		b.center = x + b.width/2
		x += b.width + gap
	}
}

func drawRow(sb *strings.Builder, row []*box) {
	height := 0
	for _, b := range row {
		height = max(height, len(b.lines))
	}
	for li := 0; li < height; li++ {
		cursor := 0
		for _, b := range row {
			if li >= len(b.lines) {
				continue
			}
			start := max(0, b.center-b.width/2)
			if start > cursor {
				sb.WriteString(strings.Repeat(" ", start-cursor))
				cursor = start
			}
			sb.WriteString(b.lines[li])
			cursor = start + utf8.RuneCountInString(ansi.Strip(b.lines[li]))
		}
		sb.WriteByte('\n')
	}
}

// connect draws two connector lines into row: drops under every
// prerequisite already placed, then a bus joining each prerequisite to the
// modules of row that need it.
func connect(sb *strings.Builder, row dag.Wave, boxes map[string]*box, requires map[string][]string, width int) {
	type span struct{ from, to int }
	var spans []span
	for _, id := range row.NodeIDs {
		for _, p := range requires[id] {
			if from, ok := boxes[p]; ok {
				spans = append(spans, span{from.center, boxes[id].center})
			}
		}
	}
	if len(spans) == 0 {
		return
	}

	blank := func() []rune {
		l := make([]rune, width)
		for i := range l {
			l[i] = ' '
		}
		return l
	}
	set := func(l []rune, col int, c rune) {
		if col >= 0 && col < width {
			l[col] = c
		}
	}

	drops := blank()
	for _, s := range spans {
		set(drops, s.from, '│')
	}
	sb.WriteString(strings.TrimRight(string(drops), " "))
	sb.WriteByte('\n')

	bus := blank()
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].from != spans[j].from {
			return spans[i].from < spans[j].from
		}
		return spans[i].to < spans[j].to
	})
	for _, s := range spans {
		lo, hi := min(s.from, s.to), max(s.from, s.to)
		for col := lo; col <= hi; col++ {
			if col >= 0 && col < width && bus[col] == ' ' {
				bus[col] = '─'
			}
		}
	}
	for _, s := range spans {
		if s.from == s.to {
			set(bus, s.from, '│')
			continue
		}
		set(bus, s.from, '┴')
		set(bus, s.to, '┬')
	}
	sb.WriteString(strings.TrimRight(string(bus), " "))
	sb.WriteByte('\n')
}

// renderLines lists each wave's modules with the modules they unlock.
func (r *WaveRenderer) renderLines(waves []dag.Wave, requires map[string][]string) string {
	unlocks := make(map[string][]string)
	for id, ps := range requires {
		for _, p := range ps {
			unlocks[p] = append(unlocks[p], id)
		}
	}
	for k := range unlocks {
		sort.Strings(unlocks[k])
	}

	var sb strings.Builder
	for wi, w := range waves {
		if wi > 0 {
			sb.WriteByte('\n')
		}
		label := fmt.Sprintf("Wave %d: ", w.Number)
		indent := strings.Repeat(" ", len(label))
		if r.UseColor {
			sb.WriteString(ansi.Dim + label + ansi.Reset)
		} else {
			sb.WriteString(label)
		}
		for ni, id := range w.NodeIDs {
			if ni > 0 {
				sb.WriteString(indent)
			}
			sb.WriteString(r.chip(id))
			if next := unlocks[id]; len(next) > 0 {
				chips := make([]string, len(next))
				for i, n := range next {
					chips[i] = r.chip(n)
				}
				sb.WriteString(" → " + strings.Join(chips, ", "))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// chip renders a module as [title]. Without color, emphasis is a trailing
// star.
func (r *WaveRenderer) chip(id string) string {
	text := "[" + r.mark(id).Title + "]"
	if !r.UseColor {
		if r.Emphasis[id] {
			text += "*"
		}
		return text
	}
	return r.paint(text, id)
}
