// Package history is a linear undo/redo store. Committing after an undo
// discards the undone snapshots.
package history

// Store holds snapshots and a cursor at the current one. It is not safe for
// concurrent use; callers that share a Store serialize access.
type Store[T any] struct {
	snapshots []T
	cursor    int
	equal     func(a, b T) bool
}

// New returns a store whose only snapshot is initial. equal decides whether a
// commit changes anything.
func New[T any](initial T, equal func(a, b T) bool) *Store[T] {
	return &Store[T]{snapshots: []T{initial}, equal: equal}
}

// Current returns the snapshot at the cursor.
func (s *Store[T]) Current() T { return s.snapshots[s.cursor] }

// Len is the number of snapshots, including any undone ones.
func (s *Store[T]) Len() int { return len(s.snapshots) }

// Index is the cursor position.
func (s *Store[T]) Index() int { return s.cursor }

func (s *Store[T]) CanUndo() bool { return s.cursor > 0 }

func (s *Store[T]) CanRedo() bool { return s.cursor < len(s.snapshots)-1 }

// Commit makes next the current snapshot and reports whether it did. A value
// equal to the current snapshot is ignored. Otherwise every snapshot after
// the cursor is dropped before next is appended.
func (s *Store[T]) Commit(next T) bool {
	if s.equal(s.Current(), next) {
		return false
	}
	s.snapshots = append(s.snapshots[:s.cursor+1:s.cursor+1], next)
	s.cursor++
	return true
}

// Undo moves the cursor back one snapshot, if possible.
func (s *Store[T]) Undo() bool {
	if !s.CanUndo() {
		return false
	}
	s.cursor--
	return true
}

// Redo moves the cursor forward one snapshot, if possible.
func (s *Store[T]) Redo() bool {
	if !s.CanRedo() {
		return false
	}
	s.cursor++
	return true
}

// Snapshots returns a copy of the snapshot list for persistence.
func (s *Store[T]) Snapshots() []T {
	out := make([]T, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// Restore replaces the whole history. An empty list or an out of range
// cursor leaves the store untouched and returns false.
func (s *Store[T]) Restore(snapshots []T, cursor int) bool {
	if len(snapshots) == 0 || cursor < 0 || cursor >= len(snapshots) {
		return false
	}
	s.snapshots = make([]T, len(snapshots))
	copy(s.snapshots, snapshots)
	s.cursor = cursor
	return true
}
