package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect3d/config"
	"connect3d/geometry"
	"connect3d/types"
)

func newTestScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func newTestBoard(t *testing.T) (*BoardView, tcell.SimulationScreen) {
	t.Helper()
	cfg := config.DefaultConfig
	v := NewBoardView(&cfg)
	s := newTestScreen(t, 80, 12)
	v.draw(s, 0, 0, 80, 12)
	return v, s
}

func restingAt(pl types.Placement) types.Vec3 {
	return geometry.DefaultGrid().PiecePosition(geometry.Rescale(pl))
}

func runeAt(s tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func TestPieceDrawnAtItsLevel(t *testing.T) {
	v, s := newTestBoard(t)
	pl := types.Placement{X: 1, Level: 1, Z: 2}
	v.AddPiece(types.Player1, restingAt(pl))
	v.draw(s, 0, 0, 80, 12)

	cx, cy := v.layout.Cell(pl.X, pl.Level, pl.Z)
	assert.Equal(t, '●', runeAt(s, v.originX+cx, v.originY+cy))

	below, by := v.layout.Cell(pl.X, 0, pl.Z)
	assert.Equal(t, '·', runeAt(s, v.originX+below, v.originY+by))
}

func TestFallingPieceHiddenAboveBoard(t *testing.T) {
	v, _ := newTestBoard(t)
	h := v.AddPiece(types.Player2, restingAt(types.Placement{X: 3, Level: 0, Z: 0}))

	h.SetHeight(10.5)
	assert.Empty(t, v.occupancy())

	h.SetHeight(1.4)
	assert.Equal(t, map[[3]int]types.Player{{3, 1, 0}: types.Player2}, v.occupancy())

	h.SetHeight(0)
	assert.Equal(t, map[[3]int]types.Player{{3, 0, 0}: types.Player2}, v.occupancy())
}

func TestClearPieces(t *testing.T) {
	v, _ := newTestBoard(t)
	v.AddPiece(types.Player1, restingAt(types.Placement{}))
	v.AddPiece(types.Player2, restingAt(types.Placement{Level: 1}))
	require.Len(t, v.occupancy(), 2)
	v.ClearPieces()
	assert.Empty(t, v.occupancy())
}

func TestStaleHighlightRemoveKeepsCurrent(t *testing.T) {
	v, _ := newTestBoard(t)
	first := v.AddHighlight(types.BoardColumn{X: 0, Z: 0}, types.Player1)
	second := v.AddHighlight(types.BoardColumn{X: 2, Z: 2}, types.Player2)

	first.Remove()
	require.NotNil(t, v.highlight)
	assert.Equal(t, types.BoardColumn{X: 2, Z: 2}, v.highlight.col)

	second.Remove()
	assert.Nil(t, v.highlight)
}

func TestHighlightDrawnOnEveryLevel(t *testing.T) {
	v, s := newTestBoard(t)
	v.AddHighlight(types.BoardColumn{X: 2, Z: 1}, types.Player1)
	v.draw(s, 0, 0, 80, 12)
	for level := 0; level < v.layout.Grid.Depth; level++ {
		cx, cy := v.layout.Cell(2, level, 1)
		assert.Equal(t, '▼', runeAt(s, v.originX+cx, v.originY+cy), "level %d", level)
	}
}

func TestContainsTracksDrawnPanels(t *testing.T) {
	v, _ := newTestBoard(t)
	assert.True(t, v.Contains(v.originX, v.originY))
	assert.True(t, v.Contains(v.originX+v.layout.Width()-1, v.originY+v.layout.Height()-1))
	assert.False(t, v.Contains(v.originX-1, v.originY))
	assert.False(t, v.Contains(v.originX, v.originY+v.layout.Height()))
}

func TestMouseRoutesPointerAndClicks(t *testing.T) {
	v, _ := newTestBoard(t)
	var ndc [][2]float64
	var clicks [][2]int
	v.OnPointer(func(x, y float64) { ndc = append(ndc, [2]float64{x, y}) })
	v.OnClick(func(x, y int) { clicks = append(clicks, [2]int{x, y}) })

	x, y := v.originX+3, v.originY+1
	v.mouse(tview.MouseMove, tcell.NewEventMouse(x, y, tcell.ButtonNone, 0))
	v.mouse(tview.MouseLeftClick, tcell.NewEventMouse(x, y, tcell.Button1, 0))

	wantX, wantY := v.layout.ToNDC(3, 1)
	assert.Equal(t, [][2]float64{{wantX, wantY}}, ndc)
	assert.Equal(t, [][2]int{{x, y}}, clicks)
}
