package state

// Item is one selectable row. ID is unique within a level; Label is what
// the filter matches against.
type Item struct {
	ID    string
	Label string
	Dir   bool
}

// CloneItems produces a shallow copy of items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
