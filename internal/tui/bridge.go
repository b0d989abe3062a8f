package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/syllabus/internal/course"
)

// Bridge forwards App callbacks to a running BubbleTea program as typed
// messages. The App is built before the program exists, so anything sent
// before Attach is queued and flushed on attach.
//
// The App calls back from inside Update as well as from background
// commands and the catalog watcher. tea.Program.Send blocks until the event
// loop reads, so every send runs on its own goroutine and never waits.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
	pending []tea.Msg
}

// Verify Bridge satisfies course.Notifier at compile time.
var _ course.Notifier = (*Bridge)(nil)

// NewBridge returns a detached bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach binds the bridge to p and delivers queued messages in order. It
// does not block.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()
	if len(pending) == 0 {
		return
	}
	go func() {
		for _, msg := range pending {
			p.Send(msg)
		}
	}()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	if p == nil {
		b.pending = append(b.pending, msg)
	}
	b.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

// Notify sends MsgNotice.
func (b *Bridge) Notify(level course.Level, text string) {
	b.send(MsgNotice{Level: level, Text: text})
}

// Rebuilt sends MsgRebuilt. It has the shape of course.Options.OnRebuild.
func (b *Bridge) Rebuilt(gen uint64) {
	b.send(MsgRebuilt{Gen: gen})
}

// Pending returns the number of queued messages.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
