package highlight

import "github.com/papapumpkin/syllabus/internal/catalog"

// Appearance is the resting look of a node, derived from availability and
// status alone.
type Appearance struct {
	Fill   string
	Stroke string
	Glow   bool
}

// GlowFilter is the CSS filter applied to glowing (completed) nodes.
const GlowFilter = "drop-shadow(0px 0px 6px rgba(40, 167, 69, 0.5))"

var (
	lockedLook     = Appearance{Fill: "#e9ecef", Stroke: "#ced4da"}
	completedLook  = Appearance{Fill: "#28a745", Stroke: "#1e7e34", Glow: true}
	inProgressLook = Appearance{Fill: "#007bff", Stroke: "#0056b3"}

	availableStroke = "#495057"
	levelFill       = map[catalog.Level]string{
		catalog.LevelBeginner:     "#6c757d",
		catalog.LevelIntermediate: "#ffc107",
		catalog.LevelAdvanced:     "#dc3545",
	}
)

// Appearance returns the base look of id. Unknown ids look locked.
func (c *Controller) Appearance(id string) Appearance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.appearance(id)
}

func (c *Controller) appearance(id string) Appearance {
	m, ok := c.cat.Get(id)
	if !ok || !c.eval.IsAvailable(m) {
		return lockedLook
	}
	switch m.Status {
	case catalog.StatusCompleted:
		return completedLook
	case catalog.StatusInProgress:
		return inProgressLook
	}
	fill, ok := levelFill[m.Level]
	if !ok {
		fill = levelFill[catalog.LevelBeginner]
	}
	return Appearance{Fill: fill, Stroke: availableStroke}
}
