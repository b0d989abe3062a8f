package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/course"
	"github.com/papapumpkin/syllabus/internal/depgraph"
)

// maxSettleTicks bounds --layout. The default cooling schedule settles in
// about 300 steps.
const maxSettleTicks = 1000

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the prerequisite graph as JSON or DOT",
	Long: `Writes the prerequisite graph with its highlight classes and base fill.
--select marks a module as the target and its chain as prerequisites, the way
clicking a card does. --prereqs highlights the chain without the target.

With --layout the force layout is run until it settles and node positions
are included.`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().String("format", "json", "output format: json or dot")
	graphCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	graphCmd.Flags().String("select", "", "module to select as the target")
	graphCmd.Flags().String("prereqs", "", "module whose prerequisites to highlight")
	graphCmd.Flags().Bool("layout", false, "include settled node positions")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "dot" {
		return fmt.Errorf("unknown format %q (want json or dot)", format)
	}

	e, err := openEnv(cmd.Context(), envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if id, _ := cmd.Flags().GetString("select"); id != "" {
		if !e.app.SelectTarget(id) {
			return fmt.Errorf("unknown module %q", id)
		}
	}
	if id, _ := cmd.Flags().GetString("prereqs"); id != "" {
		if !e.app.ViewPrerequisites(id) {
			return fmt.Errorf("unknown module %q", id)
		}
	}
	if withLayout, _ := cmd.Flags().GetBool("layout"); withLayout {
		ticks := settleGraph(e.app, e.cfg.Layout.Width, e.cfg.Layout.Height)
		e.log.Debug("layout settled", "ticks", ticks)
		defer e.app.DeactivateGraph()
	}

	w := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("graph: create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	return writeDocument(w, e.app.Document(), format)
}

// settleGraph builds the layout at the given size and steps it until it
// settles. It returns the number of steps taken.
func settleGraph(app *course.App, width, height float64) int {
	gen := app.ActivateGraph(width, height)
	n := 0
	for n < maxSettleTicks {
		if _, ok := app.Tick(gen); !ok {
			break
		}
		n++
	}
	return n
}

func writeDocument(w io.Writer, doc *depgraph.Document, format string) error {
	if format == "dot" {
		return depgraph.WriteDOT(w, doc)
	}
	return depgraph.WriteJSON(w, doc)
}
