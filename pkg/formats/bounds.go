package formats

import (
	"github.com/crystalforge/crystal-caves/pkg/math"
)

// Bounds is an axis-aligned bounding volume with a precomputed center and
// bounding-sphere radius (half the box diagonal).
type Bounds struct {
	Min    math.Vec3
	Max    math.Vec3
	Center math.Vec3
	Radius float32
}

// ComputeBounds computes the bounding volume of a vertex list in a single
// pass, seeded from the first vertex. It reports false for an empty list,
// in which case the returned bounds are the zero value.
func ComputeBounds(verts []math.Vec3) (Bounds, bool) {
	if len(verts) == 0 {
		return Bounds{}, false
	}

	b := Bounds{Min: verts[0], Max: verts[0]}
	for _, v := range verts[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}

	b.Center = b.Min.Add(b.Max).Scale(0.5)
	b.Radius = b.Max.Sub(b.Min).Length() / 2
	return b, true
}
