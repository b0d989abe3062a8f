package course

import (
	"context"
	"fmt"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/store"
	"github.com/papapumpkin/syllabus/internal/telemetry"
)

// StartModule moves a not-started module to in-progress. Modules already
// started or completed are left alone.
func (a *App) StartModule(ctx context.Context, id string) error {
	a.mu.Lock()
	status, known := a.cat.Status(id)
	a.mu.Unlock()
	if !known || status != catalog.StatusNotStarted {
		return nil
	}
	return a.SetStatus(ctx, id, catalog.StatusInProgress)
}

// MarkCompleted records the module as completed.
func (a *App) MarkCompleted(ctx context.Context, id string) error {
	return a.SetStatus(ctx, id, catalog.StatusCompleted)
}

// SetStatus records a new status for the logged-in learner. The local
// module changes only after the persistence layer accepts the update; on
// failure the catalog and the highlight selection are untouched and the
// notifier is told. Unknown module ids are ignored.
func (a *App) SetStatus(ctx context.Context, id string, status catalog.Status) error {
	if !status.Valid() {
		return fmt.Errorf("course: invalid status %q", status)
	}
	a.mu.Lock()
	user := a.user
	before, known := a.cat.Status(id)
	cat := a.cat
	a.mu.Unlock()

	if user == nil {
		a.notify.Notify(LevelError, "Please log in to track progress")
		return ErrNotLoggedIn
	}
	if !known {
		a.log.Debug("progress for unknown module ignored", "module", id)
		return nil
	}

	if err := a.persist.SetProgress(ctx, id, status); err != nil {
		a.log.Error("progress update failed", "user_id", user.ID, "module", id, "status", status, "error", err)
		_ = a.tel.Emit(telemetry.Event{
			Kind:     telemetry.KindProgressFailed,
			UserID:   user.ID,
			ModuleID: id,
			Data:     map[string]string{"status": string(status), "error": err.Error()},
		})
		a.notify.Notify(LevelError, "Failed to update progress")
		return fmt.Errorf("course: set progress %s: %w", id, err)
	}

	a.mu.Lock()
	// A reload while the request was in flight replaced the catalog; its
	// progress came from the store and already includes this update.
	if a.cat == cat {
		a.cat.SetStatus(id, status)
		if target, ok := a.hl.Target(); ok {
			a.hl.SelectTarget(target)
		}
	}
	a.mu.Unlock()

	a.log.Info("progress updated", "user_id", user.ID, "module", id, "from", before, "to", status)
	_ = a.tel.Emit(telemetry.Event{
		Kind:     telemetry.KindProgressUpdated,
		UserID:   user.ID,
		ModuleID: id,
		Data:     map[string]string{"from": string(before), "to": string(status)},
	})
	a.notify.Notify(LevelSuccess, "Progress updated!")
	return nil
}

// User returns the logged-in learner, or nil.
func (a *App) User() *store.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// Login authenticates and then reloads so the learner's progress is merged.
func (a *App) Login(ctx context.Context, email, password string) (*store.User, error) {
	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		a.log.Warn("login failed", "email", email, "error", err)
		a.notify.Notify(LevelError, "Login failed")
		return nil, fmt.Errorf("course: login: %w", err)
	}
	return a.signedIn(ctx, u, telemetry.KindLogin)
}

// Register creates an account, which also logs it in.
func (a *App) Register(ctx context.Context, name, email, password string) (*store.User, error) {
	u, err := a.session.Register(ctx, name, email, password)
	if err != nil {
		a.log.Warn("registration failed", "email", email, "error", err)
		a.notify.Notify(LevelError, "Registration failed")
		return nil, fmt.Errorf("course: register: %w", err)
	}
	return a.signedIn(ctx, u, telemetry.KindLogin)
}

func (a *App) signedIn(ctx context.Context, u *store.User, kind string) (*store.User, error) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
	_ = a.tel.Emit(telemetry.Event{Kind: kind, UserID: u.ID})
	a.notify.Notify(LevelSuccess, "Welcome, "+u.Name+"!")
	if err := a.Load(ctx); err != nil {
		return u, err
	}
	return u, nil
}

// Logout ends the session and reloads the catalog so every status returns
// to what an anonymous visitor sees.
func (a *App) Logout(ctx context.Context) error {
	a.mu.Lock()
	prev := a.user
	a.mu.Unlock()
	if err := a.session.Logout(ctx); err != nil {
		a.log.Warn("logout failed", "error", err)
		a.notify.Notify(LevelError, "Logout failed")
		return fmt.Errorf("course: logout: %w", err)
	}
	a.mu.Lock()
	a.user = nil
	a.cat.ResetProgress()
	a.mu.Unlock()
	_ = a.tel.Emit(telemetry.Event{Kind: telemetry.KindLogout, UserID: userID(prev)})
	a.notify.Notify(LevelInfo, "Logged out")
	return a.Load(ctx)
}
