// Package catalog holds the in-memory collection of course modules, the
// client-side filter used to search it, and loaders for catalog files.
package catalog

import (
	"fmt"
	"strings"
)

// Status is a learner's completion state for a module.
type Status string

// Module completion states.
const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus converts a string to a Status. The empty string maps to
// StatusNotStarted.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case "", StatusNotStarted:
		return StatusNotStarted, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusCompleted
}

// Level is a module's difficulty.
type Level string

// Difficulty levels.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Rank orders levels from easiest (1) to hardest (3). Unknown levels rank 0.
func (l Level) Rank() int {
	switch l {
	case LevelBeginner:
		return 1
	case LevelIntermediate:
		return 2
	case LevelAdvanced:
		return 3
	}
	return 0
}

// CoreCategory is the distinguished category whose modules the graph layout
// anchors to the bottom of the view.
const CoreCategory = "core"

// Module is a unit of course content. Status is the only field mutated after
// the catalog is loaded.
type Module struct {
	ID            string   `json:"id" toml:"id" validate:"required"`
	Title         string   `json:"title" toml:"title" validate:"required"`
	Description   string   `json:"description" toml:"description"`
	Category      string   `json:"category" toml:"category"`
	Level         Level    `json:"level" toml:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Duration      int      `json:"duration" toml:"duration" validate:"gt=0"`
	Prerequisites []string `json:"prerequisites" toml:"prerequisites"`
	Status        Status   `json:"status,omitempty" toml:"status" validate:"omitempty,oneof=not-started in-progress completed"`
	Keywords      []string `json:"keywords" toml:"keywords"`

	NotebookAvailable bool   `json:"notebook_available,omitempty" toml:"notebook_available"`
	ColabURL          string `json:"colab_url,omitempty" toml:"colab_url"`
}

// IsCore reports whether the module belongs to the anchored core category.
func (m Module) IsCore() bool {
	return m.Category == CoreCategory
}

// HasPrerequisite reports whether id is a direct prerequisite of m.
func (m Module) HasPrerequisite(id string) bool {
	for _, p := range m.Prerequisites {
		if p == id {
			return true
		}
	}
	return false
}
