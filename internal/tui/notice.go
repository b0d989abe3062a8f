package tui

import (
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/syllabus/internal/course"
)

// Notice is a brief notification displayed above the footer.
type Notice struct {
	ID    int
	Level course.Level
	Text  string
}

// noticeDismissDelay is how long a notice stays visible.
const noticeDismissDelay = 4 * time.Second

// maxNotices caps the stack; older notices are dropped first.
const maxNotices = 3

// nextNoticeID is an atomic counter for notice IDs, safe for concurrent use in tests.
var nextNoticeID atomic.Int32

// NewNotice creates a notice and a tea.Cmd that fires MsgNoticeExpired
// after the dismiss delay.
func NewNotice(level course.Level, text string) (Notice, tea.Cmd) {
	id := int(nextNoticeID.Add(1))
	n := Notice{ID: id, Level: level, Text: text}
	cmd := tea.Tick(noticeDismissDelay, func(time.Time) tea.Msg {
		return MsgNoticeExpired{ID: id}
	})
	return n, cmd
}

// pushNotice appends n, dropping the oldest past maxNotices.
func pushNotice(notices []Notice, n Notice) []Notice {
	notices = append(notices, n)
	if len(notices) > maxNotices {
		notices = notices[len(notices)-maxNotices:]
	}
	return notices
}

// removeNotice filters out the notice with the given ID.
func removeNotice(notices []Notice, id int) []Notice {
	out := make([]Notice, 0, len(notices))
	for _, n := range notices {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

// RenderNotices renders the notice stack, one line each.
func RenderNotices(notices []Notice, width int) string {
	if len(notices) == 0 {
		return ""
	}
	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		text := n.Text
		if maxWidth := width - 4; maxWidth > 1 && len([]rune(text)) > maxWidth {
			text = string([]rune(text)[:maxWidth-1]) + "…"
		}
		style := styleNotice
		switch n.Level {
		case course.LevelSuccess:
			style = styleNoticeSuccess
		case course.LevelError:
			style = styleNoticeError
		}
		lines = append(lines, style.Width(width).Render(text))
	}
	return strings.Join(lines, "\n")
}

// compositeOverlay draws overlay centered on top of bg.
func compositeOverlay(bg, overlay string, width, height int) string {
	bgLines := strings.Split(bg, "\n")
	olLines := strings.Split(overlay, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	topOffset := 0
	if len(olLines) < height {
		topOffset = (height - len(olLines)) / 2
	}
	leftPad := ""
	if w := maxLineWidth(olLines); w < width {
		leftPad = strings.Repeat(" ", (width-w)/2)
	}
	for i, line := range olLines {
		row := topOffset + i
		if row >= 0 && row < len(bgLines) {
			bgLines[row] = leftPad + line
		}
	}
	return strings.Join(bgLines[:height], "\n")
}
