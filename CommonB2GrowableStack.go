package box2d

/// A slice backed LIFO stack used for tree traversal and island building.
/// The zero value is ready to use; Reset keeps the backing array.
type B2GrowableStack[T any] struct {
	items []T
}

func NewB2GrowableStack[T any](capacity int) *B2GrowableStack[T] {
	return &B2GrowableStack[T]{
		items: make([]T, 0, capacity),
	}
}

func (s B2GrowableStack[T]) GetCount() int {
	return len(s.items)
}

func (s *B2GrowableStack[T]) Push(value T) {
	s.items = append(s.items, value)
}

// Pop removes the top element. ok is false when the stack is empty.
func (s *B2GrowableStack[T]) Pop() (value T, ok bool) {
	n := len(s.items)
	if n == 0 {
		return value, false
	}

	value = s.items[n-1]
	s.items = s.items[:n-1]
	return value, true
}

func (s *B2GrowableStack[T]) Reset() {
	s.items = s.items[:0]
}
