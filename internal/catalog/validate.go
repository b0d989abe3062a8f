package catalog

import (
	"errors"
	"fmt"

	"github.com/papapumpkin/syllabus/internal/dag"
)

// IssueKind classifies a catalog integrity problem.
type IssueKind string

// Integrity problems. None of them prevent loading; they degrade to
// "unavailable" or "chain terminates" at evaluation time.
const (
	IssueDuplicateID   IssueKind = "duplicate-id"
	IssueDanglingRef   IssueKind = "dangling-prerequisite"
	IssueSelfReference IssueKind = "self-reference"
	IssueCycle         IssueKind = "cycle"
)

// Issue is one integrity finding.
type Issue struct {
	Kind     IssueKind
	ModuleID string
	Ref      string // the offending prerequisite id, if any
}

// String describes the issue on one line.
func (i Issue) String() string {
	switch i.Kind {
	case IssueDuplicateID:
		return fmt.Sprintf("%s: module id %q appears more than once", i.Kind, i.ModuleID)
	case IssueDanglingRef:
		return fmt.Sprintf("%s: %q requires unknown module %q", i.Kind, i.ModuleID, i.Ref)
	case IssueSelfReference:
		return fmt.Sprintf("%s: %q lists itself as a prerequisite", i.Kind, i.ModuleID)
	case IssueCycle:
		return fmt.Sprintf("%s: %q → %q closes a prerequisite loop", i.Kind, i.ModuleID, i.Ref)
	}
	return fmt.Sprintf("%s: %s %s", i.Kind, i.ModuleID, i.Ref)
}

// Validate reports every integrity problem in modules, in catalog order.
func Validate(modules []Module) []Issue {
	var issues []Issue
	d := dag.New()
	for _, m := range modules {
		if err := d.AddNode(m.ID, m.Level.Rank()); err != nil {
			issues = append(issues, Issue{Kind: IssueDuplicateID, ModuleID: m.ID})
		}
	}
	for _, m := range New(modules).Modules() {
		for _, p := range m.Prerequisites {
			err := d.AddEdge(m.ID, p)
			switch {
			case err == nil:
			case errors.Is(err, dag.ErrSelfEdge):
				issues = append(issues, Issue{Kind: IssueSelfReference, ModuleID: m.ID, Ref: p})
			case errors.Is(err, dag.ErrNodeNotFound):
				issues = append(issues, Issue{Kind: IssueDanglingRef, ModuleID: m.ID, Ref: p})
			case errors.Is(err, dag.ErrCycle):
				issues = append(issues, Issue{Kind: IssueCycle, ModuleID: m.ID, Ref: p})
			}
		}
	}
	return issues
}

// Tracks partitions the well-formed part of the catalog into independent
// tracks. Edges rejected by Validate are left out.
func Tracks(c *Catalog) []dag.Track {
	d := StudyDAG(c)
	tracks, _ := d.ComputeTracks()
	return tracks
}

// StudyDAG builds a strict DAG over the catalog, silently skipping edges
// that dangle or would close a cycle.
func StudyDAG(c *Catalog) *dag.DAG {
	d := dag.New()
	mods := c.Modules()
	for _, m := range mods {
		_ = d.AddNode(m.ID, m.Level.Rank())
	}
	for _, m := range mods {
		for _, p := range m.Prerequisites {
			_ = d.AddEdge(m.ID, p)
		}
	}
	return d
}
