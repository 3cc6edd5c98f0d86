// Package picking resolves pointer input to board columns.
package picking

import (
	"math"

	"connect3d/geometry"
	"connect3d/types"
)

// Camera turns normalised device coordinates (both axes in [-1, 1], y up)
// into a world-space ray.
type Camera interface {
	Ray(ndcX, ndcY float64) geometry.Ray
}

// Session is the read-only view of the session picking consults.
type Session interface {
	Snapshot() types.SessionState
}

// ChromeFunc reports whether a screen position belongs to UI chrome such as
// the scoreboard, menus or popups.
type ChromeFunc func(x, y int) bool

type volume struct {
	col types.BoardColumn
	box geometry.Box
}

// Controller tracks the column under the pointer and turns clicks into
// column selections.
type Controller struct {
	grid     geometry.Grid
	camera   Camera
	volumes  []volume
	slot     *HighlightSlot
	session  Session
	isChrome ChromeFunc
	onSelect func(types.BoardColumn)
}

// NewController builds the selector volumes for grid. onSelect receives
// every accepted click.
func NewController(grid geometry.Grid, camera Camera, scene Scene, session Session, isChrome ChromeFunc, onSelect func(types.BoardColumn)) *Controller {
	c := &Controller{
		grid:     grid,
		camera:   camera,
		slot:     NewHighlightSlot(scene),
		session:  session,
		isChrome: isChrome,
		onSelect: onSelect,
	}
	for _, col := range grid.AllColumns() {
		c.volumes = append(c.volumes, volume{col: col, box: grid.ColumnVolume(col)})
	}
	return c
}

// Pick returns the nearest column whose selector volume the ray through
// (ndcX, ndcY) hits.
func (c *Controller) Pick(ndcX, ndcY float64) (types.BoardColumn, bool) {
	ray := c.camera.Ray(ndcX, ndcY)
	best := math.Inf(1)
	var hit types.BoardColumn
	found := false
	for _, v := range c.volumes {
		t, ok := v.box.Intersect(ray)
		if ok && t < best {
			best = t
			hit = v.col
			found = true
		}
	}
	return hit, found
}

// PointerMove recomputes the highlighted column for a pointer at
// (ndcX, ndcY). A miss clears the highlight.
func (c *Controller) PointerMove(ndcX, ndcY float64) {
	col, ok := c.Pick(ndcX, ndcY)
	if !ok {
		c.slot.Release()
		return
	}
	c.slot.Acquire(col, c.session.Snapshot().Turn())
}

// Click handles a click at screen position (x, y). It returns true when a
// move request was emitted.
func (c *Controller) Click(x, y int) bool {
	if c.isChrome != nil && c.isChrome(x, y) {
		return false
	}
	return c.Activate()
}

// Activate emits a move request for the highlighted column when a session
// is running. Otherwise the request is dropped.
func (c *Controller) Activate() bool {
	col, ok := c.slot.Column()
	if !ok || !c.session.Snapshot().InSession {
		return false
	}
	c.onSelect(col)
	return true
}

// MoveCursor shifts the highlight by (dx, dz) for keyboard play, starting
// from the first column when nothing is highlighted.
func (c *Controller) MoveCursor(dx, dz int) {
	col, ok := c.slot.Column()
	if ok {
		next := types.BoardColumn{X: col.X + dx, Z: col.Z + dz}
		if !c.grid.Contains(next) {
			return
		}
		col = next
	}
	c.slot.Acquire(col, c.session.Snapshot().Turn())
}

// Highlighted returns the column under the pointer.
func (c *Controller) Highlighted() (types.BoardColumn, bool) {
	return c.slot.Column()
}

// Recolor redraws the highlight in the colour of the player to move.
func (c *Controller) Recolor() {
	if col, ok := c.slot.Column(); ok {
		c.slot.Acquire(col, c.session.Snapshot().Turn())
	}
}

// Clear removes the highlight.
func (c *Controller) Clear() {
	c.slot.Release()
}
