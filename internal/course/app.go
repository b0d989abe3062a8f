// Package course holds the application state of a catalog session: the
// loaded modules, the logged-in learner, the current search, the highlight
// selection and the graph layout. All of it lives on one App value that is
// built once with its collaborators and shared by the CLI, the TUI and the
// catalog watcher.
package course

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/depgraph"
	"github.com/papapumpkin/syllabus/internal/highlight"
	"github.com/papapumpkin/syllabus/internal/layout"
	"github.com/papapumpkin/syllabus/internal/logger"
	"github.com/papapumpkin/syllabus/internal/prereq"
	"github.com/papapumpkin/syllabus/internal/store"
	"github.com/papapumpkin/syllabus/internal/telemetry"
)

var (
	// ErrNotLoggedIn is returned by progress operations when nobody is
	// logged in.
	ErrNotLoggedIn = errors.New("course: not logged in")
	// ErrNoBackend is returned by New when a collaborator is missing.
	ErrNoBackend = errors.New("course: persistence and session are required")
)

// Options configures an App.
type Options struct {
	Persistence store.Persistence
	Session     store.Session

	Logger    *logger.Logger
	Telemetry *telemetry.Emitter
	Notifier  Notifier

	// Debounce is the quiet period before a resize rebuilds the layout.
	// Zero uses layout.DefaultDebounce.
	Debounce time.Duration
	// Seed feeds the layout's jitter source. Each rebuild derives its own
	// stream from it.
	Seed uint64
	// OnRebuild, if set, is called with the new generation after a layout
	// is built. It runs without the App lock held.
	OnRebuild func(gen uint64)
}

// App is the state of one learner session. It is safe for concurrent use.
type App struct {
	mu sync.Mutex

	persist store.Persistence
	session store.Session
	log     *logger.Logger
	tel     *telemetry.Emitter
	notify  Notifier

	cat     *catalog.Catalog
	graph   *depgraph.Graph
	hl      *highlight.Controller
	user    *store.User
	filter  catalog.Filter
	visible []catalog.Module

	view viewState
}

// New builds an App. Nothing is fetched until Load.
func New(opts Options) (*App, error) {
	if opts.Persistence == nil || opts.Session == nil {
		return nil, ErrNoBackend
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Debounce == 0 {
		opts.Debounce = layout.DefaultDebounce
	}
	cat := catalog.New(nil)
	g := depgraph.Build(cat)
	return &App{
		persist: opts.Persistence,
		session: opts.Session,
		log:     opts.Logger,
		tel:     opts.Telemetry,
		notify:  opts.Notifier,
		cat:     cat,
		graph:   g,
		hl:      highlight.New(cat, g),
		view: viewState{
			debounce:  layout.NewDebouncer(opts.Debounce),
			seed:      opts.Seed,
			onRebuild: opts.OnRebuild,
		},
	}, nil
}

// Load fetches the catalog and, when someone is logged in, their progress.
// The two requests run concurrently. Progress overwrites module status and
// nothing else. On failure the previous catalog stays in place.
func (a *App) Load(ctx context.Context) error {
	return a.load(ctx, telemetry.KindCatalogLoaded)
}

// Reload replaces the catalog after the source changed. The graph and the
// highlight state are rebuilt; a selection whose module survived is kept.
func (a *App) Reload(ctx context.Context) error {
	return a.load(ctx, telemetry.KindCatalogReloaded)
}

func (a *App) load(ctx context.Context, kind string) error {
	var (
		mods     []catalog.Module
		user     *store.User
		progress map[string]catalog.Status
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mods, err = a.persist.FetchModules(gctx, catalog.Filter{})
		if err != nil {
			return fmt.Errorf("fetch modules: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		u, err := a.session.CurrentUser(gctx)
		if err != nil {
			a.log.Warn("session lookup failed", "error", err)
			return nil
		}
		user = u
		if u == nil {
			return nil
		}
		p, err := a.persist.FetchProgress(gctx)
		if err != nil {
			a.log.Warn("progress fetch failed", "user_id", u.ID, "error", err)
			return nil
		}
		progress = p
		return nil
	})
	if err := g.Wait(); err != nil {
		a.log.Error("catalog load failed", "error", err)
		a.notify.Notify(LevelError, "Failed to load modules")
		return fmt.Errorf("course: %w", err)
	}

	cat := catalog.New(mods)
	merged := cat.MergeProgress(progress)
	graph := depgraph.Build(cat)

	a.mu.Lock()
	target, hadTarget := a.hl.Target()
	a.cat, a.graph, a.user = cat, graph, user
	a.hl.Rebind(cat, graph)
	if hadTarget {
		a.hl.SelectTarget(target)
	}
	a.visible = a.filter.Apply(cat.Modules())
	rebuilt := a.rebuildLocked()
	a.mu.Unlock()

	a.afterRebuild(rebuilt)
	a.log.Info("catalog loaded", "modules", cat.Len(), "progress", merged, "dangling_edges", len(graph.DanglingEdges()))
	_ = a.tel.Emit(telemetry.Event{
		Kind:   kind,
		UserID: userID(user),
		Data:   map[string]int{"modules": cat.Len(), "progress": merged},
	})
	if kind == telemetry.KindCatalogReloaded {
		a.notify.Notify(LevelInfo, "Catalog reloaded")
	}
	return nil
}

// Search asks the persistence layer for modules matching f. When that
// fails the same filter is applied to the loaded catalog instead, and the
// second return value reports the fallback. Results always carry the
// locally known status.
func (a *App) Search(ctx context.Context, f catalog.Filter) ([]catalog.Module, bool) {
	remote, err := a.persist.FetchModules(ctx, f)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.filter = f
	fallback := err != nil
	if fallback {
		a.log.Warn("search failed, filtering locally", "error", err)
		a.visible = f.Apply(a.cat.Modules())
		_ = a.tel.Record(telemetry.KindSearchFallback, "", map[string]string{"q": f.Text, "category": f.Category})
	} else {
		a.visible = make([]catalog.Module, 0, len(remote))
		for _, m := range remote {
			if local, ok := a.cat.Get(m.ID); ok {
				m = local
			}
			a.visible = append(a.visible, m)
		}
		_ = a.tel.Record(telemetry.KindSearch, "", map[string]any{"q": f.Text, "category": f.Category, "results": len(a.visible)})
	}
	return append([]catalog.Module(nil), a.visible...), fallback
}

// Filter returns the last search filter.
func (a *App) Filter() catalog.Filter {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filter
}

// Visible returns the modules shown by the list view.
func (a *App) Visible() []catalog.Module {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]catalog.Module(nil), a.visible...)
}

// Modules returns every loaded module in catalog order.
func (a *App) Modules() []catalog.Module {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cat.Modules()
}

// Module returns one loaded module.
func (a *App) Module(id string) (catalog.Module, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cat.Get(id)
}

// Categories returns the distinct catalog categories.
func (a *App) Categories() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cat.Categories()
}

// IsAvailable reports whether the learner can start the module.
func (a *App) IsAvailable(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return prereq.New(a.cat).IsAvailableID(id)
}

// PrerequisiteChain returns the incomplete modules standing between the
// learner and id.
func (a *App) PrerequisiteChain(id string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return prereq.New(a.cat).PrerequisiteChain(id)
}

// StudyPlan returns the chain for id in study order, ending with id.
func (a *App) StudyPlan(id string) prereq.Plan {
	a.mu.Lock()
	defer a.mu.Unlock()
	return prereq.New(a.cat).StudyPlan(id)
}

// Overview summarizes progress over the loaded catalog.
func (a *App) Overview() catalog.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cat.Stats()
}

// Graph returns the dependency graph of the loaded catalog. The graph is
// replaced, never mutated, so callers may keep it.
func (a *App) Graph() *depgraph.Graph {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.graph
}

// Close stops the graph view and any pending rebuild.
func (a *App) Close() {
	a.DeactivateGraph()
}

func userID(u *store.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
