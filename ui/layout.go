package ui

import (
	"math"

	"connect3d/geometry"
	"connect3d/types"
)

// cellWidth is the number of terminal columns per board cell, for a square
// appearance.
const cellWidth = 2

// Layout draws the levels of the board as panels side by side, bottom level
// on the left. Within a panel x runs right and z runs down.
type Layout struct {
	Grid geometry.Grid
	Gap  int // blank terminal columns between panels
}

// NewLayout returns the layout used for grid.
func NewLayout(grid geometry.Grid) Layout {
	return Layout{Grid: grid, Gap: 3}
}

func (l Layout) PanelWidth() int { return l.Grid.Columns * cellWidth }

func (l Layout) stride() int { return l.PanelWidth() + l.Gap }

// Width and Height return the size of all panels in terminal cells.
func (l Layout) Width() int {
	return l.Grid.Depth*l.PanelWidth() + (l.Grid.Depth-1)*l.Gap
}

func (l Layout) Height() int { return l.Grid.Rows }

// Cell returns the offset of the first terminal cell showing (x, level, z).
func (l Layout) Cell(x, level, z int) (int, int) {
	return level*l.stride() + x*cellWidth, z
}

// ToNDC converts an offset inside the layout to normalised device
// coordinates, sampling the centre of the terminal cell.
func (l Layout) ToNDC(dx, dy int) (float64, float64) {
	w, h := float64(l.Width()), float64(l.Height())
	return (float64(dx)+0.5)/w*2 - 1, 1 - (float64(dy)+0.5)/h*2
}

// Ray implements picking.Camera. Every panel looks straight down on the
// board, so the ray through a panel cell falls through the matching column.
// Rays through the gaps point away from the board.
func (l Layout) Ray(ndcX, ndcY float64) geometry.Ray {
	px := (ndcX + 1) / 2 * float64(l.Width())
	py := (1 - ndcY) / 2 * float64(l.Height())

	panel := int(math.Floor(px / float64(l.stride())))
	local := px - float64(panel*l.stride())
	if panel < 0 || panel >= l.Grid.Depth || local >= float64(l.PanelWidth()) || py < 0 || py > float64(l.Height()) {
		return geometry.Ray{
			Origin: types.Vec3{X: math.MaxFloat32, Y: math.MaxFloat32, Z: math.MaxFloat32},
			Dir:    types.Vec3{Y: 1},
		}
	}

	bx := local/cellWidth - 0.5
	bz := py - 0.5
	return geometry.Ray{
		Origin: types.Vec3{
			X: (bx - float64(l.Grid.Columns-1)/2) * l.Grid.Spacing,
			Y: l.Grid.TopHeight() + 1,
			Z: (bz - float64(l.Grid.Rows-1)/2) * l.Grid.Spacing,
		},
		Dir: types.Vec3{Y: -1},
	}
}

// Level returns the board level a render height is shown at.
func (l Layout) Level(height float64) int {
	return int(math.Round(height / geometry.LevelRatio))
}
