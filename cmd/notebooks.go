package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/notebook"
)

var notebooksCmd = &cobra.Command{
	Use:   "notebooks",
	Short: "Write a starter Jupyter notebook for every module",
	Long: `Writes <id>.ipynb for each catalog module into the output directory. A
notebook holds the module title, learning objectives, prerequisites,
duration, level and a starter code cell. Notebooks that already exist are
left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runNotebooks,
}

func init() {
	notebooksCmd.Flags().StringP("out", "o", "notebooks", "directory to write notebooks into")
	notebooksCmd.Flags().Bool("force", false, "overwrite existing notebooks")
	notebooksCmd.Flags().String("course", notebook.DefaultCourse, "course name for the notebook footer")
	rootCmd.AddCommand(notebooksCmd)
}

func runNotebooks(cmd *cobra.Command, _ []string) error {
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")
	course, _ := cmd.Flags().GetString("course")

	e, err := openEnv(cmd.Context(), envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := notebook.WriteAll(out, e.app.Modules(), notebook.Options{Course: course, Force: force})
	p := stdoutPrinter(cmd)
	for _, id := range res.Created {
		p.Success("created " + notebook.Path(out, id))
	}
	for _, id := range res.Skipped {
		p.Info("skipped " + notebook.Path(out, id) + " (already exists)")
	}
	if err != nil {
		return err
	}
	e.log.Info("notebooks written", "dir", out, "created", len(res.Created), "skipped", len(res.Skipped))
	fmt.Fprintf(cmd.OutOrStdout(), "%d created, %d skipped in %s\n", len(res.Created), len(res.Skipped), out)
	return nil
}
