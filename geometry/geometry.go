// Package geometry maps between discrete board coordinates and render space.
//
// Render space is right-handed with Y up. The board is centred on the origin
// in the XZ plane, and the bottom of every column sits on Y=0.
package geometry

import (
	"math"

	"connect3d/types"
)

// LevelRatio is the fixed board-to-render ratio applied to the vertical
// coordinate returned by the server. It is the only rescale in the client
// and is applied once, right after a move response is decoded.
const LevelRatio = 1.5

// Grid describes the board dimensions and the spacing between columns.
type Grid struct {
	Columns int     // extent along x
	Rows    int     // extent along z
	Depth   int     // pieces per column
	Spacing float64 // render units between column centres
}

// DefaultGrid returns the standard 4x4 board with 5 levels.
func DefaultGrid() Grid {
	return Grid{Columns: 4, Rows: 4, Depth: 5, Spacing: 1.5}
}

// Contains reports whether col lies within the grid bounds.
func (g Grid) Contains(col types.BoardColumn) bool {
	return col.X >= 0 && col.X < g.Columns && col.Z >= 0 && col.Z < g.Rows
}

// Size returns the number of cells in the grid.
func (g Grid) Size() int {
	return g.Columns * g.Rows * g.Depth
}

// AllColumns enumerates every column, x-major.
func (g Grid) AllColumns() []types.BoardColumn {
	cols := make([]types.BoardColumn, 0, g.Columns*g.Rows)
	for x := 0; x < g.Columns; x++ {
		for z := 0; z < g.Rows; z++ {
			cols = append(cols, types.BoardColumn{X: x, Z: z})
		}
	}
	return cols
}

func (g Grid) offsetX() float64 { return float64(g.Columns-1) / 2 }
func (g Grid) offsetZ() float64 { return float64(g.Rows-1) / 2 }

// ColumnToRender returns the render-space x and z of the centre of col.
func (g Grid) ColumnToRender(col types.BoardColumn) (float64, float64) {
	x := (float64(col.X) - g.offsetX()) * g.Spacing
	z := (float64(col.Z) - g.offsetZ()) * g.Spacing
	return x, z
}

// RenderToColumn returns the column whose centre is nearest to (x, z).
// ok is false when that column is outside the grid.
func (g Grid) RenderToColumn(x, z float64) (col types.BoardColumn, ok bool) {
	col = types.BoardColumn{
		X: int(math.Round(x/g.Spacing + g.offsetX())),
		Z: int(math.Round(z/g.Spacing + g.offsetZ())),
	}
	return col, g.Contains(col)
}

// LevelHeight converts a (possibly fractional) stacking level to a render height.
func (g Grid) LevelHeight(level float64) float64 {
	return level * LevelRatio
}

// TopHeight is the render height of the top of every column.
func (g Grid) TopHeight() float64 {
	return g.LevelHeight(float64(g.Depth))
}

// ColumnVolume returns the selector volume of col: an axis-aligned box one
// spacing wide that spans the full drop depth.
func (g Grid) ColumnVolume(col types.BoardColumn) Box {
	x, z := g.ColumnToRender(col)
	h := g.Spacing / 2
	return Box{
		Min: types.Vec3{X: x - h, Y: 0, Z: z - h},
		Max: types.Vec3{X: x + h, Y: g.TopHeight(), Z: z + h},
	}
}

// Rescale converts a server placement into board units with the vertical
// axis scaled to render height. x and z stay in board units.
func Rescale(p types.Placement) types.Vec3 {
	return types.Vec3{X: float64(p.X), Y: float64(p.Level) * LevelRatio, Z: float64(p.Z)}
}

// PiecePosition returns the render position of a rescaled placement.
func (g Grid) PiecePosition(scaled types.Vec3) types.Vec3 {
	x := (scaled.X - g.offsetX()) * g.Spacing
	z := (scaled.Z - g.offsetZ()) * g.Spacing
	return types.Vec3{X: x, Y: scaled.Y, Z: z}
}
