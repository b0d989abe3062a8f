package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/syllabus/internal/course"
)

// DefaultFrameInterval paces the layout animation.
const DefaultFrameInterval = time.Second / 30

// MsgFrame asks the model to advance layout generation Gen by one tick.
type MsgFrame struct {
	Gen uint64
}

// MsgRebuilt reports that the App built a new layout generation.
type MsgRebuilt struct {
	Gen uint64
}

// MsgNotice carries a user-facing notification from the App.
type MsgNotice struct {
	Level course.Level
	Text  string
}

// MsgNoticeExpired removes the notice with the given ID.
type MsgNoticeExpired struct {
	ID int
}

// MsgDone reports that a background App operation finished. The App has
// already notified about failures; Err is kept for the model's own state.
type MsgDone struct {
	Op  string
	Err error
}

// MsgSearchDone reports the outcome of a search.
type MsgSearchDone struct {
	Results  int
	Fallback bool
}

// frameCmd schedules the next frame of generation gen.
func frameCmd(gen uint64, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return MsgFrame{Gen: gen}
	})
}
