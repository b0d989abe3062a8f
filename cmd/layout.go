package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Run the force layout and print node positions",
	Long: `Runs the force-directed layout over the prerequisite graph and prints the
node positions as JSON.

By default the layout is stepped as fast as possible until it settles and
only the final positions are printed. With --live it is stepped on the frame
clock and every frame is printed as one JSON line, which is handy to pipe
into a renderer.`,
	Args: cobra.NoArgs,
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().Bool("live", false, "print one JSON line per frame")
	layoutCmd.Flags().Int("max-ticks", maxSettleTicks, "stop after this many steps")
	layoutCmd.Flags().Float64("width", 0, "viewport width (default layout.width)")
	layoutCmd.Flags().Float64("height", 0, "viewport height (default layout.height)")
	rootCmd.AddCommand(layoutCmd)
}

// frame is one line of --live output.
type frame struct {
	Tick      int                     `json:"tick"`
	Positions map[string]layout.Point `json:"positions"`
}

func runLayout(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context(), envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")
	if width <= 0 {
		width = e.cfg.Layout.Width
	}
	if height <= 0 {
		height = e.cfg.Layout.Height
	}
	maxTicks, _ := cmd.Flags().GetInt("max-ticks")
	live, _ := cmd.Flags().GetBool("live")

	rng := rand.New(rand.NewPCG(e.cfg.Layout.Seed, 0))
	sim := layout.New(e.app.Graph(), layout.DefaultParams(width, height), rng)
	defer sim.Dispose()

	out := cmd.OutOrStdout()
	if !live {
		n, err := layout.Settle(sim, maxTicks)
		if err != nil {
			return err
		}
		e.log.Debug("layout settled", "ticks", n, "state", sim.State().String())
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sim.Positions())
	}
	return streamLayout(cmd.Context(), out, sim, e.cfg.Layout.FrameInterval, maxTicks)
}

// streamLayout steps sim on a ticker and writes each frame as a JSON line
// until it settles, maxTicks frames have run or ctx ends.
func streamLayout(ctx context.Context, w io.Writer, sim *layout.Simulation, every time.Duration, maxTicks int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan time.Time)
	go func() {
		defer close(frames)
		t := time.NewTicker(every)
		defer t.Stop()
		for range maxTicks {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if sim.State() == layout.StateSettled {
					return
				}
				select {
				case frames <- now:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	enc := json.NewEncoder(w)
	var writeErr error
	tick := 0
	runner := layout.NewRunner(sim, func(pos map[string]layout.Point) {
		tick++
		if err := enc.Encode(frame{Tick: tick, Positions: pos}); err != nil && writeErr == nil {
			writeErr = fmt.Errorf("layout: write frame: %w", err)
			cancel()
		}
	})
	err := runner.Run(ctx, frames)
	if writeErr != nil {
		return writeErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
