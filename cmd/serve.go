package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/syllabus/internal/config"
	"github.com/papapumpkin/syllabus/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the course API over a SQLite database",
	Long: `Serves the module list, accounts and progress over HTTP. The database is
created if missing and seeded with any catalog modules it does not have yet.

Without a configured server.secret a random one is generated, so sessions do
not survive a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().StringSlice("allowed-origin", nil, "CORS origin allowed to send credentials (repeatable)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.allowed_origins", serveCmd.Flags().Lookup("allowed-origin"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// The server always logs; verbose only lowers the level.
	cfg.Verbose = true
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openSeededDB(ctx, cfg.Database, cfg.Catalog, log)
	if err != nil {
		return err
	}
	defer db.Close()

	secret := cfg.Server.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("no server.secret configured, using an ephemeral one")
	}
	srv, err := server.New(db, log, server.Options{
		Secret:         secret,
		SessionTTL:     cfg.Server.SessionTTL,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookie:   cfg.Server.SecureCookie,
	})
	if err != nil {
		return err
	}

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
