// Package history provides the bounded undo stack used by selection sessions.
package history

// DefaultLimit is the undo depth for ordinary images.
const DefaultLimit = 20

// LargeImageLimit is the undo depth for images above LargeImagePixels.
const LargeImageLimit = 10

// LargeImagePixels is the pixel count above which snapshots are kept to LargeImageLimit.
const LargeImagePixels = 2048 * 2048

// LimitFor returns the undo depth for a w x h image.
func LimitFor(w, h int) int {
	if w*h > LargeImagePixels {
		return LargeImageLimit
	}
	return DefaultLimit
}

// Stack is a bounded LIFO of snapshots, newest last. Pushing beyond the limit
// evicts the oldest entry.
type Stack[T any] struct {
	items []T
	limit int
}

// New creates a stack holding at most limit entries. A limit below 1 is treated as 1.
func New[T any](limit int) *Stack[T] {
	limit = max(limit, 1)
	return &Stack[T]{
		items: make([]T, 0, limit),
		limit: limit,
	}
}

// Push adds v as the newest entry.
func (s *Stack[T]) Push(v T) {
	if len(s.items) == s.limit {
		var zero T
		s.items[0] = zero
		s.items = append(s.items[:0], s.items[1:]...)
	}
	s.items = append(s.items, v)
}

// Pop removes and returns the newest entry. The boolean is false when the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return v, true
}

// Peek returns the newest entry without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of entries.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Limit returns the maximum number of entries.
func (s *Stack[T]) Limit() int {
	return s.limit
}

// Clear removes every entry.
func (s *Stack[T]) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}
