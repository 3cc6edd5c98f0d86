// Package ui renders the game in the terminal with tview.
package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"connect3d/animation"
	"connect3d/config"
	"connect3d/picking"
	"connect3d/types"
)

type pieceHandle struct {
	player types.Player
	col    types.BoardColumn
	height float64
}

func (p *pieceHandle) SetHeight(h float64) { p.height = h }

type highlightHandle struct {
	view *BoardView
	col  types.BoardColumn
	turn types.Player
}

func (h *highlightHandle) Remove() {
	if h.view.highlight == h {
		h.view.highlight = nil
	}
}

// BoardView draws the board and routes pointer input. It is the scene the
// picking controller and the session draw into.
type BoardView struct {
	Box       *tview.Box
	layout    Layout
	cfg       *config.Config
	palette   Palette
	pieces    []*pieceHandle
	highlight *highlightHandle

	originX, originY int
	onPointer        func(ndcX, ndcY float64)
	onClick          func(x, y int)
}

func NewBoardView(c *config.Config) *BoardView {
	v := &BoardView{
		Box:    tview.NewBox(),
		layout: NewLayout(c.Geometry()),
	}
	v.SetConfig(c)
	v.Box.SetDrawFunc(v.draw)
	v.Box.SetMouseCapture(v.mouse)
	return v
}

func (v *BoardView) SetConfig(c *config.Config) {
	v.cfg = c
	v.palette = NewPalette(c.Theme)
}

// Camera returns the camera matching what is drawn.
func (v *BoardView) Camera() picking.Camera {
	return v.layout
}

// OnPointer sets the handler for pointer movement over the board.
func (v *BoardView) OnPointer(f func(ndcX, ndcY float64)) { v.onPointer = f }

// OnClick sets the handler for left clicks at screen positions.
func (v *BoardView) OnClick(f func(x, y int)) { v.onClick = f }

// AddHighlight implements picking.Scene.
func (v *BoardView) AddHighlight(col types.BoardColumn, turn types.Player) picking.Highlight {
	v.highlight = &highlightHandle{view: v, col: col, turn: turn}
	return v.highlight
}

// AddPiece implements session.Scene.
func (v *BoardView) AddPiece(p types.Player, at types.Vec3) animation.Handle {
	col, _ := v.layout.Grid.RenderToColumn(at.X, at.Z)
	h := &pieceHandle{player: p, col: col, height: at.Y}
	v.pieces = append(v.pieces, h)
	return h
}

// ClearPieces implements session.Scene.
func (v *BoardView) ClearPieces() {
	v.pieces = nil
}

// Contains reports whether screen position (x, y) is on the drawn panels.
func (v *BoardView) Contains(x, y int) bool {
	dx, dy := x-v.originX, y-v.originY
	return dx >= 0 && dy >= 0 && dx < v.layout.Width() && dy < v.layout.Height()
}

// NDC converts a screen position to normalised device coordinates of the
// drawn panels.
func (v *BoardView) NDC(x, y int) (float64, float64) {
	return v.layout.ToNDC(x-v.originX, y-v.originY)
}

func (v *BoardView) mouse(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
	x, y := event.Position()
	switch action {
	case tview.MouseMove:
		if v.onPointer != nil {
			v.onPointer(v.NDC(x, y))
		}
	case tview.MouseLeftClick:
		if v.onClick != nil {
			v.onClick(x, y)
		}
	}
	return action, event
}

func (v *BoardView) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	l := v.layout
	// Centre the panels, leaving a row for the level labels.
	v.originX = x + max(0, (width-l.Width())/2)
	v.originY = y + 1 + max(0, (height-l.Height()-2)/2)

	cells := v.occupancy()
	boardStyle := tcell.StyleDefault.Background(v.palette.Board)
	labelStyle := tcell.StyleDefault.Foreground(MenuColors.Hint)

	for level := 0; level < l.Grid.Depth; level++ {
		lx, _ := l.Cell(0, level, 0)
		drawText(screen, v.originX+lx, v.originY-1, "L"+string(rune('1'+level)), labelStyle)
		for z := 0; z < l.Grid.Rows; z++ {
			for bx := 0; bx < l.Grid.Columns; bx++ {
				cx, cy := l.Cell(bx, level, z)
				style := boardStyle.Foreground(v.palette.Line)
				r := v.cfg.Theme.Symbols.Empty

				col := types.BoardColumn{X: bx, Z: z}
				if hl := v.highlight; hl != nil && hl.col == col {
					style = style.Background(v.palette.Highlight).Foreground(v.palette.Player(hl.turn))
					r = v.cfg.Theme.Symbols.Highlight
				}
				if p, ok := cells[[3]int{bx, level, z}]; ok {
					r = v.cfg.Theme.Symbols.Piece
					style = style.Foreground(v.palette.Player(p))
					if v.cfg.Theme.DrawPieceBackground {
						style = style.Background(v.palette.Player(p))
					}
				}
				screen.SetContent(v.originX+cx, v.originY+cy, r, nil, style)
				screen.SetContent(v.originX+cx+1, v.originY+cy, ' ', nil, style)
			}
		}
	}
	return x, y, width, height
}

// occupancy maps each visible piece to the cell it is drawn in. Falling
// pieces above the board are not shown.
func (v *BoardView) occupancy() map[[3]int]types.Player {
	cells := make(map[[3]int]types.Player, len(v.pieces))
	for _, p := range v.pieces {
		level := v.layout.Level(p.height)
		if level < 0 || level >= v.layout.Grid.Depth {
			continue
		}
		cells[[3]int{p.col.X, level, p.col.Z}] = p.player
	}
	return cells
}

// drawText writes a string to the screen at the given position.
func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}
