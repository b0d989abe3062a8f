package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules with their status",
	Long: `Lists the catalog, optionally narrowed by a search term and category. The
search runs against the configured backend and falls back to filtering the
loaded catalog when the backend cannot answer.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringP("query", "q", "", "match title, description or keywords")
	listCmd.Flags().StringP("category", "c", "", "only modules in this category")
	listCmd.Flags().Bool("available", false, "only modules that can be started now")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context(), envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	q, _ := cmd.Flags().GetString("query")
	category, _ := cmd.Flags().GetString("category")
	onlyAvailable, _ := cmd.Flags().GetBool("available")

	mods := e.app.Modules()
	f := catalog.Filter{Text: q, Category: category}
	if !f.IsZero() {
		var fallback bool
		mods, fallback = e.app.Search(cmd.Context(), f)
		if fallback {
			e.printer.Warn("search backend unavailable, filtered the local catalog")
		}
	}
	if onlyAvailable {
		open := mods[:0:0]
		for _, m := range mods {
			if m.Status != catalog.StatusCompleted && e.app.IsAvailable(m.ID) {
				open = append(open, m)
			}
		}
		mods = open
	}

	stdoutPrinter(cmd).Modules(mods, e.app.IsAvailable)
	return nil
}

// stdoutPrinter returns a Printer for command results, colored when stdout
// is a terminal.
func stdoutPrinter(cmd *cobra.Command) *ui.Printer {
	w := cmd.OutOrStdout()
	return ui.NewWriter(w, isTerminalWriter(w))
}
