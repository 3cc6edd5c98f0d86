// Package animation drops newly placed pieces into their resting position.
//
// The animation is purely visual. Game state has already been decided by the
// server when a piece is spawned, so nothing here feeds back into a session.
package animation

// Handle is the render object being moved.
type Handle interface {
	SetHeight(h float64)
}

// Piece is a piece in flight.
type Piece struct {
	handle   Handle
	height   float64
	target   float64
	velocity float64
}

// Height returns the current render height.
func (p *Piece) Height() float64 { return p.height }

// Target returns the resting height.
func (p *Piece) Target() float64 { return p.target }

// Velocity returns the current vertical velocity; negative is downward.
func (p *Piece) Velocity() float64 { return p.velocity }

// Settled reports whether the piece has reached its target.
func (p *Piece) Settled() bool {
	return p.velocity == 0 && p.height == p.target
}

// Animator advances every falling piece once per frame.
type Animator struct {
	gravity float64
	dt      float64
	active  []*Piece
}

// New creates an animator that applies gravity (render units/s²) with a
// fixed step of one frame at frameRate.
func New(gravity float64, frameRate int) *Animator {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Animator{gravity: gravity, dt: 1 / float64(frameRate)}
}

// Spawn starts dropping h from start down to target. A piece that starts
// at or below its target is placed immediately.
func (a *Animator) Spawn(h Handle, start, target float64) *Piece {
	p := &Piece{handle: h, height: start, target: target}
	if start <= target {
		p.height = target
		h.SetHeight(target)
		return p
	}
	h.SetHeight(start)
	a.active = append(a.active, p)
	return p
}

// Tick advances all active pieces by one frame and drops the settled ones
// from the active set. It reports whether any piece moved.
func (a *Animator) Tick() bool {
	if len(a.active) == 0 {
		return false
	}
	remaining := a.active[:0]
	for _, p := range a.active {
		p.velocity -= a.gravity * a.dt
		p.height += p.velocity * a.dt
		if p.height <= p.target {
			p.height = p.target
			p.velocity = 0
		}
		p.handle.SetHeight(p.height)
		if !p.Settled() {
			remaining = append(remaining, p)
		}
	}
	for i := len(remaining); i < len(a.active); i++ {
		a.active[i] = nil
	}
	a.active = remaining
	return true
}

// Active returns the number of pieces still falling.
func (a *Animator) Active() int {
	return len(a.active)
}

// Clear stops every animation, leaving pieces where they are.
func (a *Animator) Clear() {
	for i := range a.active {
		a.active[i] = nil
	}
	a.active = a.active[:0]
}
