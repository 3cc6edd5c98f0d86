// Package board keeps a 3D Connect-Four grid with gravity stacking and line
// detection. The client uses it to mirror accepted placements; the local
// development server uses it as its authoritative state.
package board

import (
	"errors"

	"connect3d/geometry"
	"connect3d/types"
)

// WinLength is the number of pieces in a row needed to win.
const WinLength = 4

var (
	ErrOutOfBounds = errors.New("column out of bounds")
	ErrColumnFull  = errors.New("column is full")
)

// directions holds one representative of each of the 13 line directions
// through a cell in three dimensions.
var directions = func() [][3]int {
	var dirs [][3]int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				// Keep only the lexicographically positive half.
				if dx < 0 || (dx == 0 && dy < 0) || (dx == 0 && dy == 0 && dz < 0) {
					continue
				}
				dirs = append(dirs, [3]int{dx, dy, dz})
			}
		}
	}
	return dirs
}()

// Grid is a board indexed as cells[x][z][level]; 0 is empty, otherwise the
// player id occupying the cell.
type Grid struct {
	dims  geometry.Grid
	cells [][][]types.Player
	moves int
}

// New creates an empty grid with the given dimensions.
func New(dims geometry.Grid) *Grid {
	g := &Grid{dims: dims}
	g.Clear()
	return g
}

// Clear empties every cell.
func (g *Grid) Clear() {
	g.cells = make([][][]types.Player, g.dims.Columns)
	for x := range g.cells {
		g.cells[x] = make([][]types.Player, g.dims.Rows)
		for z := range g.cells[x] {
			g.cells[x][z] = make([]types.Player, g.dims.Depth)
		}
	}
	g.moves = 0
}

// Dims returns the grid dimensions.
func (g *Grid) Dims() geometry.Grid {
	return g.dims
}

// Moves returns the number of pieces on the board.
func (g *Grid) Moves() int {
	return g.moves
}

// At returns the occupant of a cell, or 0 when empty or out of bounds.
func (g *Grid) At(x, level, z int) types.Player {
	if !g.inside(x, level, z) {
		return 0
	}
	return g.cells[x][z][level]
}

// Height returns the number of pieces stacked in col.
func (g *Grid) Height(col types.BoardColumn) int {
	if !g.dims.Contains(col) {
		return 0
	}
	stack := g.cells[col.X][col.Z]
	for level, p := range stack {
		if p == 0 {
			return level
		}
	}
	return len(stack)
}

// CanDrop reports whether col is on the board and has room.
func (g *Grid) CanDrop(col types.BoardColumn) bool {
	return g.dims.Contains(col) && g.Height(col) < g.dims.Depth
}

// OpenColumns lists every column that still has room, x-major.
func (g *Grid) OpenColumns() []types.BoardColumn {
	var open []types.BoardColumn
	for _, col := range g.dims.AllColumns() {
		if g.CanDrop(col) {
			open = append(open, col)
		}
	}
	return open
}

// Drop stacks a piece for p into col and returns where it landed.
func (g *Grid) Drop(col types.BoardColumn, p types.Player) (types.Placement, error) {
	if !g.dims.Contains(col) {
		return types.Placement{}, ErrOutOfBounds
	}
	level := g.Height(col)
	if level >= g.dims.Depth {
		return types.Placement{}, ErrColumnFull
	}
	g.cells[col.X][col.Z][level] = p
	g.moves++
	return types.Placement{X: col.X, Level: level, Z: col.Z}, nil
}

// Place records a placement resolved elsewhere, such as by the server.
func (g *Grid) Place(pl types.Placement, p types.Player) error {
	if !g.inside(pl.X, pl.Level, pl.Z) {
		return ErrOutOfBounds
	}
	if g.cells[pl.X][pl.Z][pl.Level] == 0 {
		g.moves++
	}
	g.cells[pl.X][pl.Z][pl.Level] = p
	return nil
}

// Undo clears a cell. It is used by look-ahead search.
func (g *Grid) Undo(pl types.Placement) {
	if !g.inside(pl.X, pl.Level, pl.Z) || g.cells[pl.X][pl.Z][pl.Level] == 0 {
		return
	}
	g.cells[pl.X][pl.Z][pl.Level] = 0
	g.moves--
}

// Full reports whether no empty cell remains.
func (g *Grid) Full() bool {
	return g.moves >= g.dims.Size()
}

// WinsAt reports whether the piece at pl completes a line of WinLength for
// its owner.
func (g *Grid) WinsAt(pl types.Placement) bool {
	p := g.At(pl.X, pl.Level, pl.Z)
	if p == 0 {
		return false
	}
	for _, d := range directions {
		count := 1 + g.run(pl, d, 1, p) + g.run(pl, d, -1, p)
		if count >= WinLength {
			return true
		}
	}
	return false
}

// Evaluate returns the outcome of the move that produced pl.
// A full board takes precedence over a line, matching the server.
func (g *Grid) Evaluate(pl types.Placement) types.MoveOutcome {
	if g.Full() {
		return types.OutcomeDraw
	}
	if g.WinsAt(pl) {
		return types.WinFor(g.At(pl.X, pl.Level, pl.Z))
	}
	return types.OutcomeContinue
}

func (g *Grid) run(pl types.Placement, d [3]int, sign int, p types.Player) int {
	n := 0
	for i := 1; i < WinLength; i++ {
		x := pl.X + sign*i*d[0]
		level := pl.Level + sign*i*d[1]
		z := pl.Z + sign*i*d[2]
		if g.At(x, level, z) != p {
			break
		}
		n++
	}
	return n
}

func (g *Grid) inside(x, level, z int) bool {
	return x >= 0 && x < g.dims.Columns &&
		z >= 0 && z < g.dims.Rows &&
		level >= 0 && level < g.dims.Depth
}
