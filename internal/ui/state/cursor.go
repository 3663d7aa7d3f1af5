package state

// MoveCursor moves the cursor by delta, clamped to the visible items.
func (l *Level) MoveCursor(delta int) bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	next := l.Cursor + delta
	if next < 0 {
		next = 0
	}
	if next >= len(l.Items) {
		next = len(l.Items) - 1
	}
	l.Cursor = next
	return l.Cursor != old
}

// MoveCursorHome moves the cursor to the first item.
func (l *Level) MoveCursorHome() bool {
	return l.MoveCursor(-len(l.Items) - l.Cursor)
}

// MoveCursorEnd moves the cursor to the last item.
func (l *Level) MoveCursorEnd() bool {
	return l.MoveCursor(len(l.Items))
}

// MoveCursorPage moves the cursor one page up (pages < 0) or down.
func (l *Level) MoveCursorPage(pages, maxVisible int) bool {
	size := maxVisible
	if size <= 0 || size > len(l.Items) {
		size = len(l.Items)
	}
	return l.MoveCursor(pages * size)
}

// EnsureCursorVisible scrolls the viewport so the cursor row is shown.
func (l *Level) EnsureCursorVisible(maxVisible int) {
	n := len(l.Items)
	if n == 0 || maxVisible <= 0 {
		if n == 0 {
			l.Cursor = 0
		}
		l.ViewportOffset = 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, n-1)
	maxOffset := n - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	offset := clamp(l.ViewportOffset, 0, maxOffset)
	if l.Cursor < offset {
		offset = l.Cursor
	}
	if l.Cursor >= offset+maxVisible {
		offset = l.Cursor - maxVisible + 1
	}
	l.ViewportOffset = clamp(offset, 0, maxOffset)
}

// Visible returns the slice of items inside the viewport.
func (l *Level) Visible(maxVisible int) []Item {
	if maxVisible <= 0 || maxVisible >= len(l.Items) {
		return l.Items
	}
	end := l.ViewportOffset + maxVisible
	if end > len(l.Items) {
		end = len(l.Items)
	}
	return l.Items[l.ViewportOffset:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
