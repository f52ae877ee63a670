package services

import (
	"sync"

	"journeymap/domain/core/aggregates"
	pkgerrors "journeymap/pkg/errors"
	"go.uber.org/zap"
)

// HistoryService keeps undo and redo stacks of journey snapshots. Stacks
// live in process memory and are bounded per journey.
type HistoryService struct {
	mu     sync.Mutex
	stacks map[string]*history
	limit  int
	logger *zap.Logger
}

type history struct {
	past   []aggregates.Snapshot
	future []aggregates.Snapshot
}

// NewHistoryService creates a new history service
func NewHistoryService(limit int, logger *zap.Logger) *HistoryService {
	if limit <= 0 {
		limit = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		stacks: make(map[string]*history),
		limit:  limit,
		logger: logger,
	}
}

// Record pushes the state a journey had before an edit. Any redo entries
// are discarded.
func (s *HistoryService) Record(journeyID string, before aggregates.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.stack(journeyID)
	h.past = push(h.past, before, s.limit)
	h.future = nil
}

// Undo swaps current for the most recent past snapshot
func (s *HistoryService) Undo(journeyID string, current aggregates.Snapshot) (aggregates.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.stacks[journeyID]
	if h == nil || len(h.past) == 0 {
		return aggregates.Snapshot{}, pkgerrors.ErrNothingToUndo
	}

	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = push(h.future, current, s.limit)

	s.logger.Debug("Undo", zap.String("journeyID", journeyID), zap.Int("remaining", len(h.past)))
	return prev, nil
}

// Redo swaps current for the most recently undone snapshot
func (s *HistoryService) Redo(journeyID string, current aggregates.Snapshot) (aggregates.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.stacks[journeyID]
	if h == nil || len(h.future) == 0 {
		return aggregates.Snapshot{}, pkgerrors.ErrNothingToRedo
	}

	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = push(h.past, current, s.limit)

	s.logger.Debug("Redo", zap.String("journeyID", journeyID), zap.Int("remaining", len(h.future)))
	return next, nil
}

// Forget drops all history of a journey
func (s *HistoryService) Forget(journeyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stacks, journeyID)
}

// Depth reports how many undo and redo steps are available
func (s *HistoryService) Depth(journeyID string) (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h := s.stacks[journeyID]; h != nil {
		return len(h.past), len(h.future)
	}
	return 0, 0
}

func (s *HistoryService) stack(journeyID string) *history {
	h, ok := s.stacks[journeyID]
	if !ok {
		h = &history{}
		s.stacks[journeyID] = h
	}
	return h
}

// push appends and drops the oldest entries beyond limit
func push(stack []aggregates.Snapshot, snap aggregates.Snapshot, limit int) []aggregates.Snapshot {
	stack = append(stack, snap)
	if over := len(stack) - limit; over > 0 {
		stack = append(stack[:0:0], stack[over:]...)
	}
	return stack
}
