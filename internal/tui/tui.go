// Package tui is the interactive terminal front end: a module list with
// search and progress keys, and an animated prerequisite graph driven by
// the App's force layout.
package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/syllabus/internal/course"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// Options configures the TUI.
type Options struct {
	// Bridge, if set, is attached to the program so App notices and
	// rebuilds reach the model.
	Bridge *Bridge
	// FrameInterval paces the graph animation. Zero uses
	// DefaultFrameInterval.
	FrameInterval time.Duration
}

// NewProgram creates a BubbleTea program around app. The program uses the
// alternate screen buffer and cell-motion mouse reporting for dragging
// graph nodes.
func NewProgram(ctx context.Context, app *course.App, o Options, opts ...tea.ProgramOption) *Program {
	model := NewAppModel(ctx, app)
	if o.FrameInterval > 0 {
		model.FrameInterval = o.FrameInterval
	}

	allOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}
	allOpts = append(allOpts, opts...)

	return tea.NewProgram(model, allOpts...)
}

// Run creates and runs a TUI program, blocking until it exits. Notices
// queued on the bridge before the program existed are delivered once the
// event loop starts.
func Run(ctx context.Context, app *course.App, o Options, opts ...tea.ProgramOption) error {
	p := NewProgram(ctx, app, o, opts...)
	if o.Bridge != nil {
		o.Bridge.Attach(p)
	}
	_, err := p.Run()
	app.DeactivateGraph()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// WithOutput returns a program option that directs TUI output to the given writer.
// Useful for testing or redirecting output.
func WithOutput(w io.Writer) tea.ProgramOption {
	return tea.WithOutput(w)
}
