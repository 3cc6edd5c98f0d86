package geometry

import (
	"math"

	"connect3d/types"
)

// Ray is a half-line in render space. Dir need not be normalised.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) types.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min types.Vec3
	Max types.Vec3
}

// Intersect returns the smallest non-negative ray parameter at which r
// enters b. A ray starting inside the box hits at t=0.
func (b Box) Intersect(r Ray) (float64, bool) {
	tmin, tmax := 0.0, math.Inf(1)
	axes := [3][4]float64{
		{r.Origin.X, r.Dir.X, b.Min.X, b.Max.X},
		{r.Origin.Y, r.Dir.Y, b.Min.Y, b.Max.Y},
		{r.Origin.Z, r.Dir.Z, b.Min.Z, b.Max.Z},
	}
	for _, a := range axes {
		o, d, lo, hi := a[0], a[1], a[2], a[3]
		if d == 0 {
			// Parallel to this slab: miss unless the origin lies within it.
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
