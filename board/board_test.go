package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect3d/geometry"
	"connect3d/types"
)

func col(x, z int) types.BoardColumn { return types.BoardColumn{X: x, Z: z} }

func TestDirectionsCount(t *testing.T) {
	assert.Len(t, directions, 13)
}

func TestDropStacks(t *testing.T) {
	g := New(geometry.DefaultGrid())
	for level := 0; level < 5; level++ {
		pl, err := g.Drop(col(2, 3), types.Player1)
		require.NoError(t, err)
		assert.Equal(t, types.Placement{X: 2, Level: level, Z: 3}, pl)
	}
	_, err := g.Drop(col(2, 3), types.Player2)
	assert.ErrorIs(t, err, ErrColumnFull)
	assert.False(t, g.CanDrop(col(2, 3)))

	_, err = g.Drop(col(4, 0), types.Player1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestWinAlongX(t *testing.T) {
	g := New(geometry.DefaultGrid())
	var last types.Placement
	for x := 0; x < 4; x++ {
		pl, err := g.Drop(col(x, 0), types.Player2)
		require.NoError(t, err)
		last = pl
	}
	assert.True(t, g.WinsAt(last))
	assert.Equal(t, types.OutcomePlayer2Win, g.Evaluate(last))
}

func TestWinVertical(t *testing.T) {
	g := New(geometry.DefaultGrid())
	var last types.Placement
	for i := 0; i < 4; i++ {
		last, _ = g.Drop(col(1, 1), types.Player1)
	}
	assert.Equal(t, types.OutcomePlayer1Win, g.Evaluate(last))
}

func TestWinSpaceDiagonal(t *testing.T) {
	g := New(geometry.DefaultGrid())
	// Build a staircase so that (i, i, i) holds player 1 for i in 0..3.
	for i := 0; i < 4; i++ {
		for filler := 0; filler < i; filler++ {
			_, err := g.Drop(col(i, i), types.Player2)
			require.NoError(t, err)
		}
	}
	var last types.Placement
	for i := 0; i < 4; i++ {
		pl, err := g.Drop(col(i, i), types.Player1)
		require.NoError(t, err)
		require.Equal(t, i, pl.Level)
		last = pl
	}
	assert.True(t, g.WinsAt(last))
	assert.True(t, g.WinsAt(types.Placement{X: 1, Level: 1, Z: 1}))
}

func TestNoWinForThree(t *testing.T) {
	g := New(geometry.DefaultGrid())
	var last types.Placement
	for x := 0; x < 3; x++ {
		last, _ = g.Drop(col(x, 2), types.Player1)
	}
	assert.False(t, g.WinsAt(last))
	assert.Equal(t, types.OutcomeContinue, g.Evaluate(last))
}

func TestDrawWhenFull(t *testing.T) {
	dims := geometry.Grid{Columns: 1, Rows: 1, Depth: 2, Spacing: 1}
	g := New(dims)
	_, err := g.Drop(col(0, 0), types.Player1)
	require.NoError(t, err)
	pl, err := g.Drop(col(0, 0), types.Player2)
	require.NoError(t, err)
	assert.True(t, g.Full())
	assert.Equal(t, types.OutcomeDraw, g.Evaluate(pl))
}

func TestPlaceAndUndo(t *testing.T) {
	g := New(geometry.DefaultGrid())
	pl := types.Placement{X: 3, Level: 0, Z: 1}
	require.NoError(t, g.Place(pl, types.Player2))
	assert.Equal(t, 1, g.Moves())
	assert.Equal(t, 1, g.Height(col(3, 1)))
	g.Undo(pl)
	assert.Equal(t, 0, g.Moves())
	assert.Equal(t, 0, g.Height(col(3, 1)))
	assert.ErrorIs(t, g.Place(types.Placement{X: 9}, types.Player1), ErrOutOfBounds)
	assert.Len(t, g.OpenColumns(), 16)
}
