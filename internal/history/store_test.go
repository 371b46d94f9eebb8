package history

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntStore() *Store[[]int] {
	return New([]int{}, func(a, b []int) bool { return slices.Equal(a, b) })
}

func TestStore_UndoAfterTwoCommits(t *testing.T) {
	s := newIntStore()
	a, b := []int{1}, []int{1, 2}

	s.Commit(a)
	s.Commit(b)
	require.True(t, s.Undo())

	assert.Equal(t, a, s.Current())
	assert.True(t, s.CanUndo())
	assert.True(t, s.CanRedo())
}

func TestStore_CommitDiscardsRedoBranch(t *testing.T) {
	s := newIntStore()
	s.Commit([]int{1})
	s.Commit([]int{1, 2})
	s.Undo()

	c := []int{3}
	s.Commit(c)

	assert.False(t, s.CanRedo())
	assert.False(t, s.Redo())
	assert.Equal(t, c, s.Current())
	assert.Equal(t, 3, s.Len())
}

func TestStore_EqualCommitIsNoop(t *testing.T) {
	s := newIntStore()
	s.Commit([]int{1, 2})

	changed := s.Commit([]int{1, 2})

	assert.False(t, changed)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Index())
}

func TestStore_BoundsAreNoops(t *testing.T) {
	s := newIntStore()

	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, []int{}, s.Current())
}

func TestStore_UndoRedoWalk(t *testing.T) {
	s := newIntStore()
	for i := 1; i <= 3; i++ {
		s.Commit([]int{i})
	}

	s.Undo()
	s.Undo()
	assert.Equal(t, []int{1}, s.Current())
	s.Redo()
	assert.Equal(t, []int{2}, s.Current())
	assert.Equal(t, 4, s.Len())
}

func TestStore_SnapshotsAndRestore(t *testing.T) {
	s := newIntStore()
	s.Commit([]int{1})
	s.Commit([]int{2})
	s.Undo()

	snaps := s.Snapshots()
	snaps[0] = []int{99}
	assert.Equal(t, []int{}, s.Snapshots()[0], "copy returned")

	restored := newIntStore()
	require.True(t, restored.Restore(s.Snapshots(), s.Index()))
	assert.Equal(t, s.Current(), restored.Current())
	assert.True(t, restored.CanRedo())

	assert.False(t, restored.Restore(nil, 0))
	assert.False(t, restored.Restore([][]int{{1}}, 3))
	assert.Equal(t, []int{1}, restored.Current())
}
