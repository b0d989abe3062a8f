package depgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Document is the d3-style rendering of a graph: nodes and links with
// optional style tags and positions filled in by the caller.
type Document struct {
	Nodes    []DocNode `json:"nodes"`
	Links    []DocLink `json:"links"`
	Directed bool      `json:"directed"`
}

// DocNode is a node in a Document.
type DocNode struct {
	ID       string   `json:"id"`
	Label    string   `json:"label,omitempty"`
	Group    string   `json:"group,omitempty"`
	Level    string   `json:"level,omitempty"`
	Classes  []string `json:"classes,omitempty"`
	Fill     string   `json:"fill,omitempty"`
	Stroke   string   `json:"stroke,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Dangling bool     `json:"dangling,omitempty"`
}

// DocLink is an edge in a Document.
type DocLink struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Classes  []string `json:"classes,omitempty"`
	Dangling bool     `json:"dangling,omitempty"`
}

// NewDocument converts g into a Document without styling. Links keep the
// graph's edge order so callers can decorate them by edge index.
func NewDocument(g *Graph) *Document {
	doc := &Document{Directed: true}
	for _, n := range g.Nodes {
		doc.Nodes = append(doc.Nodes, DocNode{
			ID:    n.ID,
			Label: n.Title,
			Group: n.Category,
			Level: string(n.Level),
		})
	}
	for _, e := range g.Edges {
		doc.Links = append(doc.Links, DocLink{
			Source:   e.From,
			Target:   e.To,
			Dangling: e.Dangling(),
		})
	}
	return doc
}

// SetPosition records a layout position for the node at index i.
func (d *Document) SetPosition(i int, x, y float64) {
	if i < 0 || i >= len(d.Nodes) {
		return
	}
	d.Nodes[i].X, d.Nodes[i].Y = &x, &y
}

// WriteJSON encodes the document as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("depgraph: encode json: %w", err)
	}
	return nil
}

// WriteDOT renders the document as a Graphviz digraph. Prerequisite ids
// that match no node are drawn as dashed placeholders.
func WriteDOT(w io.Writer, doc *Document) error {
	var b strings.Builder
	b.WriteString("digraph modules {\n")
	b.WriteString("  rankdir=BT;\n")
	b.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#ffffff\"];\n")

	known := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		known[n.ID] = true
		attrs := []string{fmt.Sprintf("label=%q", labelOr(n.Label, n.ID))}
		if n.Fill != "" {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Fill))
		}
		if n.Stroke != "" {
			attrs = append(attrs, fmt.Sprintf("color=%q", n.Stroke))
		}
		if len(n.Classes) > 0 {
			attrs = append(attrs, fmt.Sprintf("class=%q", strings.Join(n.Classes, " ")))
		}
		fmt.Fprintf(&b, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	var missing []string
	seen := make(map[string]bool)
	for _, l := range doc.Links {
		for _, id := range []string{l.Source, l.Target} {
			if !known[id] && !seen[id] {
				seen[id] = true
				missing = append(missing, id)
			}
		}
	}
	sort.Strings(missing)
	for _, id := range missing {
		fmt.Fprintf(&b, "  %q [style=dashed, label=%q];\n", id, id+" (missing)")
	}

	for _, l := range doc.Links {
		attrs := ""
		switch {
		case l.Dangling:
			attrs = " [style=dashed]"
		case len(l.Classes) > 0:
			attrs = fmt.Sprintf(" [class=%q, penwidth=2]", strings.Join(l.Classes, " "))
		}
		fmt.Fprintf(&b, "  %q -> %q%s;\n", l.Source, l.Target, attrs)
	}
	b.WriteString("}\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("depgraph: write dot: %w", err)
	}
	return nil
}

func labelOr(label, id string) string {
	if label == "" {
		return id
	}
	return label
}
