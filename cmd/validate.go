package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

var validateCmd = &cobra.Command{
	Use:   "validate [catalog-file]",
	Short: "Check a catalog file for integrity problems",
	Long: `Reads a JSON or TOML catalog and reports duplicate ids, prerequisites
that point nowhere or at the module itself, and prerequisite loops.
The catalog still loads with such problems; validate exits non-zero so
they can be caught before publishing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := viper.GetString("catalog")
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = "course_structure.json"
	}

	mods, err := catalog.ReadFile(path)
	if err != nil {
		return err
	}
	issues := catalog.Validate(mods)
	stdoutPrinter(cmd).Issues(path, len(mods), issues)
	if len(issues) > 0 {
		return fmt.Errorf("catalog %s has %d issue(s)", path, len(issues))
	}
	return nil
}
