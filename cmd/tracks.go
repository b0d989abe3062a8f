package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "Split the catalog into independent study tracks",
	Long: `Groups modules that are connected by prerequisites. Modules in different
tracks share nothing, so they can be studied in any interleaving. Edges that
dangle or close a loop are ignored; run validate to see them.`,
	Args: cobra.NoArgs,
	RunE: runTracks,
}

func init() {
	rootCmd.AddCommand(tracksCmd)
}

func runTracks(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context(), envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	stdoutPrinter(cmd).Tracks(catalog.Tracks(catalog.New(e.app.Modules())))
	return nil
}
