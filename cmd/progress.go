package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show or update the learner's progress",
	Long: `Without a subcommand, prints how many modules are completed and in
progress for the current learner.

The static backend remembers the login between runs. The http and sqlite
backends do not, so pass --email and --password to sign in for one command.`,
	Args: cobra.NoArgs,
	RunE: runProgress,
}

var progressStartCmd = &cobra.Command{
	Use:   "start <module-id>",
	Short: "Mark a not-started module as in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProgress(cmd, args[0], func(e *env, ctx context.Context) error {
			return e.app.StartModule(ctx, args[0])
		})
	},
}

var progressCompleteCmd = &cobra.Command{
	Use:   "complete <module-id>",
	Short: "Mark a module as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProgress(cmd, args[0], func(e *env, ctx context.Context) error {
			return e.app.MarkCompleted(ctx, args[0])
		})
	},
}

var progressSetCmd = &cobra.Command{
	Use:   "set <module-id> <status>",
	Short: "Set a module to not-started, in-progress or completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := catalog.ParseStatus(args[1])
		if err != nil {
			return err
		}
		return updateProgress(cmd, args[0], func(e *env, ctx context.Context) error {
			return e.app.SetStatus(ctx, args[0], status)
		})
	},
}

func init() {
	pf := progressCmd.PersistentFlags()
	pf.String("email", "", "sign in with this email first")
	pf.String("password", "", "password for --email")

	progressCmd.AddCommand(progressStartCmd)
	progressCmd.AddCommand(progressCompleteCmd)
	progressCmd.AddCommand(progressSetCmd)
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, _ []string) error {
	e, err := openSignedIn(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	stdoutPrinter(cmd).Overview(e.app.Overview(), e.app.User())
	return nil
}

func updateProgress(cmd *cobra.Command, id string, apply func(*env, context.Context) error) error {
	e, err := openSignedIn(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	m, ok := e.app.Module(id)
	if !ok {
		return fmt.Errorf("unknown module %q", id)
	}
	if err := apply(e, cmd.Context()); err != nil {
		return err
	}
	m, _ = e.app.Module(id)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.ID, m.Status)
	return nil
}

// openSignedIn opens the environment and signs in when --email is given.
func openSignedIn(cmd *cobra.Command) (*env, error) {
	e, err := openEnv(cmd.Context(), envOptions{})
	if err != nil {
		return nil, err
	}
	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		return e, nil
	}
	password, _ := cmd.Flags().GetString("password")
	if _, err := e.app.Login(cmd.Context(), email, password); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}
