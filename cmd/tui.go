package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/config"
	"github.com/papapumpkin/syllabus/internal/tui"
)

// tuiCmd opens the interactive list and graph views.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the catalog interactively",
	Long: `Opens the module list. Tab switches to the live prerequisite graph, where
nodes can be selected with the mouse or arrow keys and dragged into place.
With the static backend the catalog file is watched and changes are picked
up without a restart.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Bool("no-watch", false, "do not reload the catalog when its file changes")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !isTerminal() {
		return errors.New("syllabus tui requires a TTY (terminal)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge := tui.NewBridge()
	e, err := openEnv(ctx, envOptions{
		notifier:  bridge,
		onRebuild: bridge.Rebuilt,
		logToFile: true,
	})
	if err != nil {
		return err
	}
	defer e.Close()

	noWatch, _ := cmd.Flags().GetBool("no-watch")
	if e.cfg.Watch && !noWatch && e.cfg.Backend == config.BackendStatic {
		stopWatch, err := watchCatalog(ctx, e)
		if err != nil {
			// The TUI is still useful without live reload.
			e.log.Warn("catalog watch disabled", "path", e.cfg.Catalog, "error", err)
		} else {
			defer stopWatch()
		}
	}

	return tui.Run(ctx, e.app, tui.Options{Bridge: bridge, FrameInterval: e.cfg.Layout.FrameInterval})
}

// watchCatalog feeds catalog file changes to the App until ctx ends.
func watchCatalog(ctx context.Context, e *env) (func(), error) {
	w, err := catalog.NewWatcher(e.cfg.Catalog)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		if err := e.app.Watch(ctx, w.Changes); err != nil && !errors.Is(err, context.Canceled) {
			e.log.Warn("catalog watch stopped", "error", err)
		}
	}()
	return func() {
		cancel()
		w.Stop()
	}, nil
}

func isTerminal() bool {
	return isTerminalWriter(os.Stderr)
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// catalogReachable reports whether the configured backend has somewhere to
// read modules from without contacting anything.
func catalogReachable() bool {
	cfg, err := config.Load()
	if err != nil {
		return false
	}
	switch cfg.Backend {
	case config.BackendStatic:
		_, err := os.Stat(cfg.Catalog)
		return err == nil
	case config.BackendSQLite:
		_, err := os.Stat(cfg.Database)
		return err == nil
	default:
		return true
	}
}

func describeBackend(cfg config.Config) string {
	switch cfg.Backend {
	case config.BackendHTTP:
		return fmt.Sprintf("http %s", cfg.APIURL)
	case config.BackendSQLite:
		return fmt.Sprintf("sqlite %s", cfg.Database)
	default:
		return fmt.Sprintf("static %s", cfg.Catalog)
	}
}
