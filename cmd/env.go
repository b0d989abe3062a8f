package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/config"
	"github.com/papapumpkin/syllabus/internal/course"
	"github.com/papapumpkin/syllabus/internal/logger"
	"github.com/papapumpkin/syllabus/internal/store"
	"github.com/papapumpkin/syllabus/internal/telemetry"
	"github.com/papapumpkin/syllabus/internal/ui"
)

// env is what a command needs to work with a catalog: the configuration,
// the logger and telemetry stream, the backend and the App on top of them.
type env struct {
	cfg     config.Config
	log     *logger.Logger
	tel     *telemetry.Emitter
	backend store.Backend
	app     *course.App
	printer *ui.Printer

	closers []func()
}

type envOptions struct {
	// notifier receives App notices. Nil prints them to stderr.
	notifier course.Notifier
	// onRebuild is passed through to the App.
	onRebuild func(gen uint64)
	// logToFile sends log output to a file under the state directory when
	// no log_file is configured, so nothing lands on the TUI screen.
	logToFile bool
	// skipLoad leaves the catalog unloaded.
	skipLoad bool
}

// openEnv loads configuration and builds the App. The caller must Close
// the result.
func openEnv(ctx context.Context, o envOptions) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	e := &env{cfg: cfg, printer: ui.New()}

	if e.log, err = newLogger(cfg, o.logToFile); err != nil {
		return nil, err
	}
	e.closers = append(e.closers, e.log.Sync)

	if cfg.Telemetry != "" {
		if e.tel, err = telemetry.NewEmitter(cfg.Telemetry); err != nil {
			e.Close()
			return nil, err
		}
		e.closers = append(e.closers, func() { _ = e.tel.Close() })
	}

	backend, closeBackend, err := newBackend(ctx, cfg, e.log)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.backend = backend
	if closeBackend != nil {
		e.closers = append(e.closers, closeBackend)
	}

	notifier := o.notifier
	if notifier == nil {
		notifier = e.printer
	}
	e.app, err = course.New(course.Options{
		Persistence: backend,
		Session:     backend,
		Logger:      e.log,
		Telemetry:   e.tel,
		Notifier:    notifier,
		Debounce:    cfg.Layout.Debounce,
		Seed:        cfg.Layout.Seed,
		OnRebuild:   o.onRebuild,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, e.app.Close)

	if !o.skipLoad {
		if err := e.app.Load(ctx); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

// Close releases everything openEnv acquired, newest first.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

// newLogger builds the zap logger. CLI commands stay quiet unless verbose
// or a log file is configured.
func newLogger(cfg config.Config, toFile bool) (*logger.Logger, error) {
	path := cfg.LogFile
	if path == "" && toFile {
		path = filepath.Join(cfg.StateDir, "syllabus.log")
	}
	if path == "" && !cfg.Verbose {
		return logger.Nop(), nil
	}
	log, err := logger.NewWithOptions(logger.Options{Mode: cfg.LogMode, Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// newBackend builds the configured persistence backend. The returned
// closer, when not nil, releases it.
func newBackend(ctx context.Context, cfg config.Config, log *logger.Logger) (store.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		c, err := store.NewClient(cfg.APIURL, nil)
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil

	case config.BackendSQLite:
		db, err := openSeededDB(ctx, cfg.Database, cfg.Catalog, log)
		if err != nil {
			return nil, nil, err
		}
		return store.NewSQLiteBackend(db), func() { _ = db.Close() }, nil

	default:
		if err := ensureStateDir(cfg.StateDir); err != nil {
			return nil, nil, err
		}
		s, err := store.NewStatic(cfg.Catalog, cfg.StateDir)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
}

// openSeededDB opens the database and adds any catalog modules it does not
// have yet. A missing or unreadable catalog only logs a warning; the
// database may already hold everything.
func openSeededDB(ctx context.Context, dbPath, catalogPath string, log *logger.Logger) (*store.SQLite, error) {
	db, err := store.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	if catalogPath == "" {
		return db, nil
	}
	mods, err := catalog.ReadFile(catalogPath)
	if err != nil {
		log.Warn("catalog not seeded", "path", catalogPath, "error", err)
		return db, nil
	}
	added, err := db.SeedModules(ctx, mods)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info("catalog seeded", "path", catalogPath, "added", added, "modules", len(mods))
	return db, nil
}

func ensureStateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: state_dir is empty", config.ErrInvalid)
	}
	return nil
}
