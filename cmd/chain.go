package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/dag"
	"github.com/papapumpkin/syllabus/internal/ui"
)

var chainCmd = &cobra.Command{
	Use:   "chain <module-id>",
	Short: "Show the incomplete prerequisites of a module",
	Long: `Lists every module, direct or transitive, that still has to be completed
before the given module can be started. Completed modules are pruned
together with everything behind them.`,
	Args: cobra.ExactArgs(1),
	RunE: runChain,
}

var planCmd = &cobra.Command{
	Use:   "plan [module-id]",
	Short: "Order a module's prerequisites into a study plan",
	Long: `Prints the outstanding prerequisites of the module in an order that can be
studied top to bottom, followed by the module itself and the total time.

With --waves the whole catalog is drawn as study waves instead; modules that
can be studied in parallel share a wave. A module id given with --waves is
emphasised together with its chain.`,
	Args: cobra.RangeArgs(0, 1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().Bool("waves", false, "draw the catalog as study waves")
	planCmd.Flags().Int("width", 80, "render width for --waves")
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(planCmd)
}

func runChain(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context(), envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	target, ok := e.app.Module(args[0])
	if !ok {
		return fmt.Errorf("unknown module %q", args[0])
	}
	ids := e.app.PrerequisiteChain(target.ID)
	chain := make([]catalog.Module, 0, len(ids))
	for _, id := range ids {
		if m, ok := e.app.Module(id); ok {
			chain = append(chain, m)
		}
	}
	stdoutPrinter(cmd).Chain(target, chain)
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context(), envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	waves, _ := cmd.Flags().GetBool("waves")
	if waves {
		width, _ := cmd.Flags().GetInt("width")
		return printWaves(cmd, e, args, width)
	}
	if len(args) == 0 {
		return fmt.Errorf("plan needs a module id unless --waves is set")
	}
	if _, ok := e.app.Module(args[0]); !ok {
		return fmt.Errorf("unknown module %q", args[0])
	}
	stdoutPrinter(cmd).Plan(e.app.StudyPlan(args[0]), e.app.Module)
	return nil
}

func printWaves(cmd *cobra.Command, e *env, args []string, width int) error {
	mods := e.app.Modules()
	d := catalog.StudyDAG(catalog.New(mods))
	waves, err := d.ComputeWaves()
	if err != nil {
		return fmt.Errorf("computing waves: %w", err)
	}
	requires := make(map[string][]string, d.Len())
	for _, id := range d.Nodes() {
		requires[id] = d.Requires(id)
	}

	r := &ui.WaveRenderer{
		Width:  width,
		Marks:  ui.Marks(mods, e.app.IsAvailable),
		Tracks: trackIndex(d),
	}
	if len(args) == 1 {
		if _, ok := e.app.Module(args[0]); !ok {
			return fmt.Errorf("unknown module %q", args[0])
		}
		r.Emphasis = map[string]bool{args[0]: true}
		for _, id := range e.app.PrerequisiteChain(args[0]) {
			r.Emphasis[id] = true
		}
	}
	stdoutPrinter(cmd).Waves(r, waves, requires)
	return nil
}

// trackIndex maps each module to the position of its track.
func trackIndex(d *dag.DAG) map[string]int {
	tracks, err := d.ComputeTracks()
	if err != nil {
		return nil
	}
	out := make(map[string]int)
	for i, t := range tracks {
		for _, id := range t.ModuleIDs {
			out[id] = i
		}
	}
	return out
}
