package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/syllabus/internal/telemetry"
)

var eventsCmd = &cobra.Command{
	Use:   "events [file]",
	Short: "View the JSONL telemetry stream",
	Long: `Reads and formats the telemetry file written when telemetry is configured.

Without a file argument, the configured telemetry path is used.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	eventsCmd.Flags().StringSlice("kind", nil, "only show events of these kinds")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	kinds, _ := cmd.Flags().GetStringSlice("kind")

	path := viper.GetString("telemetry")
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("events: no telemetry file configured (set telemetry or pass a file)")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("events: open %s: %w", path, err)
	}
	defer f.Close()

	show := kindFilter(kinds)
	out := cmd.OutOrStdout()

	t := &tail{r: bufio.NewReader(f)}
	if err := t.printLines(out, show); err != nil {
		return fmt.Errorf("events: read %s: %w", path, err)
	}

	if !follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tailFollow(ctx, out, t, path, show)
}

// tail reads a growing file line by line. A line still being written is
// held back until its newline arrives.
type tail struct {
	r       *bufio.Reader
	partial string
}

// printLines prints every complete line available.
func (t *tail) printLines(w io.Writer, show func(string) bool) error {
	for {
		chunk, err := t.r.ReadString('\n')
		if errors.Is(err, io.EOF) {
			t.partial += chunk
			return nil
		}
		if err != nil {
			return err
		}
		line := strings.TrimSpace(t.partial + chunk)
		t.partial = ""
		if line != "" {
			printEvent(w, line, show)
		}
	}
}

// tailFollow watches the file for new data using fsnotify and prints new events.
func tailFollow(ctx context.Context, w io.Writer, t *tail, path string, show func(string) bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("events: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("events: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("events: watch %s: %w", path, err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			if err := t.printLines(w, show); err != nil {
				return fmt.Errorf("events: read %s: %w", path, err)
			}
		}
	}
}

// kindFilter returns a predicate accepting the listed kinds, or every kind
// when none are listed.
func kindFilter(kinds []string) func(string) bool {
	if len(kinds) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[strings.TrimSpace(k)] = true
	}
	return func(kind string) bool { return set[kind] }
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string, show func(string) bool) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}
	if show != nil && !show(evt.Kind) {
		return
	}

	ts := evt.Timestamp.Format(time.TimeOnly)
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", ts))
	parts = append(parts, evt.Kind)

	if evt.UserID != "" {
		parts = append(parts, fmt.Sprintf("user=%s", evt.UserID))
	}
	if evt.ModuleID != "" {
		parts = append(parts, fmt.Sprintf("module=%s", evt.ModuleID))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
