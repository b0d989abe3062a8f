package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/syllabus/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "syllabus",
	Short: "Course catalog and prerequisite graph explorer",
	Long: `Syllabus loads a course catalog, tracks a learner's progress through it and
shows which modules are open, what each one still needs and how they depend
on each other, as a list or as a live force-directed graph.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRootDefault,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .syllabus.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.String("catalog", "", "catalog file, JSON or TOML (default course_structure.json)")
	pf.String("backend", "", "persistence backend: static, http or sqlite")
	pf.String("state-dir", "", "directory for local progress and session files")
	pf.String("api-url", "", "course API base URL for the http backend")
	pf.String("database", "", "SQLite database for the sqlite backend and the server")
	pf.String("telemetry", "", "append JSONL telemetry events to this file")
	pf.String("log-file", "", "write logs to this file")

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("catalog", pf.Lookup("catalog"))
	_ = viper.BindPFlag("backend", pf.Lookup("backend"))
	_ = viper.BindPFlag("state_dir", pf.Lookup("state-dir"))
	_ = viper.BindPFlag("api_url", pf.Lookup("api-url"))
	_ = viper.BindPFlag("database", pf.Lookup("database"))
	_ = viper.BindPFlag("telemetry", pf.Lookup("telemetry"))
	_ = viper.BindPFlag("log_file", pf.Lookup("log-file"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".syllabus")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("SYLLABUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// runRootDefault launches the TUI when the configured catalog or API is
// reachable, and shows help otherwise.
func runRootDefault(cmd *cobra.Command, _ []string) error {
	if !catalogReachable() || !isTerminal() {
		ui.New().Banner()
		return cmd.Help()
	}
	return runTUI(tuiCmd, nil)
}
