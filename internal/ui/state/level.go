// Package state holds the list state behind the file picker: the visible
// rows of one directory, the cursor, the viewport and the filter query.
package state

// Level is the list state for one directory.
type Level struct {
	ID             string
	Title          string
	Items          []Item
	Full           []Item
	Filter         string
	FilterCursor   int
	Cursor         int
	LastCursor     int
	ViewportOffset int
}

// NewLevel constructs a Level showing items.
func NewLevel(id, title string, items []Item) *Level {
	l := &Level{
		ID:         id,
		Title:      title,
		LastCursor: -1,
	}
	l.UpdateItems(items)
	return l
}

// IndexOf returns the visible index of id, or -1.
func (l *Level) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Current returns the item under the cursor.
func (l *Level) Current() (Item, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return Item{}, false
	}
	return l.Items[l.Cursor], true
}

// UpdateItems replaces the full item list and reapplies the filter.
func (l *Level) UpdateItems(items []Item) {
	l.Full = CloneItems(items)
	l.applyFilter()
	if l.ViewportOffset < 0 || l.ViewportOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
	}
}
