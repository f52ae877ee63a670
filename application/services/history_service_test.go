package services

import (
	"sync"
	"testing"

	"journeymap/domain/core/aggregates"
	pkgerrors "journeymap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func snap(title string) aggregates.Snapshot {
	return aggregates.Snapshot{Title: title}
}

func TestHistoryService_UndoRedo(t *testing.T) {
	// Arrange
	h := NewHistoryService(10, zap.NewNop())
	h.Record("j1", snap("v1"))
	h.Record("j1", snap("v2"))

	// Act
	prev, err := h.Undo("j1", snap("v3"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "v2", prev.Title)

	next, err := h.Redo("j1", prev)
	require.NoError(t, err)
	assert.Equal(t, "v3", next.Title)

	undo, redo := h.Depth("j1")
	assert.Equal(t, 2, undo)
	assert.Equal(t, 0, redo)
}

func TestHistoryService_NothingToUndo(t *testing.T) {
	h := NewHistoryService(10, zap.NewNop())

	_, err := h.Undo("missing", snap("now"))
	assert.ErrorIs(t, err, pkgerrors.ErrNothingToUndo)

	_, err = h.Redo("missing", snap("now"))
	assert.ErrorIs(t, err, pkgerrors.ErrNothingToRedo)
}

func TestHistoryService_RecordClearsRedo(t *testing.T) {
	// Arrange
	h := NewHistoryService(10, zap.NewNop())
	h.Record("j1", snap("v1"))
	_, err := h.Undo("j1", snap("v2"))
	require.NoError(t, err)

	// Act
	h.Record("j1", snap("v1b"))

	// Assert
	_, err = h.Redo("j1", snap("v2b"))
	assert.ErrorIs(t, err, pkgerrors.ErrNothingToRedo)
}

func TestHistoryService_Limit(t *testing.T) {
	// Arrange
	h := NewHistoryService(3, zap.NewNop())

	// Act
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		h.Record("j1", snap(title))
	}

	// Assert
	undo, _ := h.Depth("j1")
	assert.Equal(t, 3, undo)

	var got []string
	current := snap("f")
	for {
		prev, err := h.Undo("j1", current)
		if err != nil {
			break
		}
		got = append(got, prev.Title)
		current = prev
	}
	assert.Equal(t, []string{"e", "d", "c"}, got)
}

func TestHistoryService_Forget(t *testing.T) {
	h := NewHistoryService(3, zap.NewNop())
	h.Record("j1", snap("a"))

	h.Forget("j1")

	undo, redo := h.Depth("j1")
	assert.Zero(t, undo)
	assert.Zero(t, redo)
}

func TestHistoryService_ConcurrentRecord(t *testing.T) {
	h := NewHistoryService(1000, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Record("j1", snap("x"))
		}()
	}
	wg.Wait()

	undo, _ := h.Depth("j1")
	assert.Equal(t, 50, undo)
}
