package picking

import "connect3d/types"

// Highlight is a visual marker owned by the highlight slot.
type Highlight interface {
	Remove()
}

// Scene is the part of the rendering collaborator picking needs: a way to
// place a highlight over a column in the colour of the given player.
type Scene interface {
	AddHighlight(col types.BoardColumn, turn types.Player) Highlight
}

// HighlightSlot owns at most one highlight visual. Acquiring a new column
// releases the previous visual first; acquiring the same column in the same
// colour is a no-op.
type HighlightSlot struct {
	scene  Scene
	col    types.BoardColumn
	turn   types.Player
	handle Highlight
}

// NewHighlightSlot creates an empty slot drawing into scene.
func NewHighlightSlot(scene Scene) *HighlightSlot {
	return &HighlightSlot{scene: scene}
}

// Acquire highlights col in turn's colour.
func (s *HighlightSlot) Acquire(col types.BoardColumn, turn types.Player) {
	if s.handle != nil && s.col == col && s.turn == turn {
		return
	}
	s.Release()
	s.col = col
	s.turn = turn
	s.handle = s.scene.AddHighlight(col, turn)
}

// Release removes the visual, if any.
func (s *HighlightSlot) Release() {
	if s.handle == nil {
		return
	}
	s.handle.Remove()
	s.handle = nil
}

// Column returns the highlighted column.
func (s *HighlightSlot) Column() (types.BoardColumn, bool) {
	return s.col, s.handle != nil
}
