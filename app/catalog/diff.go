package catalog

// Diff returns the identifiers present in current but not in previous (added)
// and those present in previous but not in current (removed). Added follows
// current's order, removed follows previous's order. Nil catalogs are empty.
func Diff(previous, current *Catalog) (added, removed []string) {
	added = []string{}
	removed = []string{}

	for _, id := range current.Items() {
		if !previous.Contains(id) {
			added = append(added, id)
		}
	}

	for _, id := range previous.Items() {
		if !current.Contains(id) {
			removed = append(removed, id)
		}
	}

	return added, removed
}
