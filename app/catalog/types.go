package catalog

import "slices"

// Catalog is an ordered set of product identifiers (canonical product URLs).
// Items keep the order in which they were first added; adding an identifier
// that is already present is a no-op. Diff output order depends on this.
type Catalog struct {
	items []string
	index map[string]struct{}
}

func New(items ...string) *Catalog {
	c := &Catalog{
		items: make([]string, 0, len(items)),
		index: make(map[string]struct{}, len(items)),
	}
	for _, item := range items {
		c.Add(item)
	}
	return c
}

// Add appends id unless it is already present and reports whether it was added.
func (c *Catalog) Add(id string) bool {
	if c.index == nil {
		c.index = make(map[string]struct{})
	}
	if _, ok := c.index[id]; ok {
		return false
	}
	c.index[id] = struct{}{}
	c.items = append(c.items, id)
	return true
}

func (c *Catalog) Contains(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[id]
	return ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns a copy of the identifiers in insertion order.
func (c *Catalog) Items() []string {
	if c == nil {
		return []string{}
	}
	return slices.Clone(c.items)
}

// Equal reports whether both catalogs hold the same identifiers in the same order.
func (c *Catalog) Equal(other *Catalog) bool {
	return slices.Equal(c.Items(), other.Items())
}
