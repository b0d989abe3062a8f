package catalog

import "math"

// Catalog is an ordered, id-indexed collection of modules. It is not safe
// for concurrent use; callers serialize access.
type Catalog struct {
	modules []Module
	index   map[string]int
}

// New builds a catalog from modules, preserving their order. Modules with an
// empty status start as not-started. When two modules share an id the first
// one wins and the later one is dropped.
func New(modules []Module) *Catalog {
	c := &Catalog{
		modules: make([]Module, 0, len(modules)),
		index:   make(map[string]int, len(modules)),
	}
	for _, m := range modules {
		if _, dup := c.index[m.ID]; dup {
			continue
		}
		if m.Status == "" {
			m.Status = StatusNotStarted
		}
		m.Prerequisites = append([]string(nil), m.Prerequisites...)
		m.Keywords = append([]string(nil), m.Keywords...)
		c.index[m.ID] = len(c.modules)
		c.modules = append(c.modules, m)
	}
	return c
}

// Len returns the number of modules.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.modules)
}

// Modules returns a copy of all modules in catalog order.
func (c *Catalog) Modules() []Module {
	if c == nil {
		return nil
	}
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

// IDs returns module ids in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.modules))
	for i, m := range c.modules {
		ids[i] = m.ID
	}
	return ids
}

// Get returns the module with the given id.
func (c *Catalog) Get(id string) (Module, bool) {
	if c == nil {
		return Module{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Module{}, false
	}
	return c.modules[i], true
}

// Has reports whether a module with the given id exists.
func (c *Catalog) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[id]
	return ok
}

// Status returns the status of the module, or StatusNotStarted and false if
// the id is unknown.
func (c *Catalog) Status(id string) (Status, bool) {
	m, ok := c.Get(id)
	if !ok {
		return StatusNotStarted, false
	}
	return m.Status, true
}

// SetStatus overwrites the status of one module. It returns false if the id
// is unknown or the status is invalid.
func (c *Catalog) SetStatus(id string, s Status) bool {
	if c == nil || !s.Valid() {
		return false
	}
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.modules[i].Status = s
	return true
}

// MergeProgress overwrites the status field of every module named in
// progress. Unknown ids and invalid statuses are ignored. It returns the
// number of modules updated.
func (c *Catalog) MergeProgress(progress map[string]Status) int {
	n := 0
	for id, s := range progress {
		if c.SetStatus(id, s) {
			n++
		}
	}
	return n
}

// ResetProgress sets every module back to not-started.
func (c *Catalog) ResetProgress() {
	if c == nil {
		return
	}
	for i := range c.modules {
		c.modules[i].Status = StatusNotStarted
	}
}

// Progress returns the status of every module that has left not-started.
func (c *Catalog) Progress() map[string]Status {
	out := make(map[string]Status)
	if c == nil {
		return out
	}
	for _, m := range c.modules {
		if m.Status != StatusNotStarted {
			out[m.ID] = m.Status
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.modules {
		if m.Category == "" || seen[m.Category] {
			continue
		}
		seen[m.Category] = true
		out = append(out, m.Category)
	}
	return out
}

// Stats summarizes learner progress over the whole catalog.
type Stats struct {
	Completed  int
	InProgress int
	Total      int
	Percent    int // completed share of total, rounded to the nearest integer
}

// Stats computes the progress overview.
func (c *Catalog) Stats() Stats {
	var s Stats
	if c == nil {
		return s
	}
	for _, m := range c.modules {
		switch m.Status {
		case StatusCompleted:
			s.Completed++
		case StatusInProgress:
			s.InProgress++
		}
	}
	s.Total = len(c.modules)
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
