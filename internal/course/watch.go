package course

import (
	"context"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

// Watch reloads the catalog for every change received on changes until ctx
// is done or the channel closes. A removed file keeps the last catalog.
func (a *App) Watch(ctx context.Context, changes <-chan catalog.Change) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch, ok := <-changes:
			if !ok {
				return nil
			}
			if ch.Removed {
				a.log.Warn("catalog file removed, keeping current catalog", "path", ch.Path)
				continue
			}
			if err := a.Reload(ctx); err != nil {
				a.log.Warn("catalog reload failed", "path", ch.Path, "error", err)
			}
		}
	}
}
