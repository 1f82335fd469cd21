// Package model compiles parsed asset geometry into render-ready triangle
// batches and carries per-instance transform state.
package model

import (
	gomath "math"

	"github.com/crystalforge/crystal-caves/pkg/formats"
	"github.com/crystalforge/crystal-caves/pkg/math"
)

// Vertex is a fully resolved triangle vertex. Normal and UV are only
// meaningful when the corresponding Has flag is set; the renderer must
// tolerate a vertex lacking either attribute.
type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	UV        math.Vec2
	HasNormal bool
	HasUV     bool
}

// Group is a flat triangle list sharing one material: three vertices per
// triangle, in emission order. Material is empty for the single ungrouped
// batch produced from the binary format.
type Group struct {
	Material string
	Vertices []Vertex
}

// TriangleCount returns the number of triangles in the group.
func (g *Group) TriangleCount() int {
	return len(g.Vertices) / 3
}

// TriangleBatch is the render-ready representation of a loaded asset,
// grouped by material and ready for direct submission to a render backend.
type TriangleBatch struct {
	Groups []Group
}

// TriangleCount returns the total number of triangles across all groups.
func (b *TriangleBatch) TriangleCount() int {
	total := 0
	for i := range b.Groups {
		total += b.Groups[i].TriangleCount()
	}
	return total
}

// Model owns one loaded asset: the immutable parse result, its compiled
// batch and bounds, and mutable transform state. Exactly one of OBJ or
// TriMesh is set. Transform state is orthogonal to the geometry and may be
// changed freely after loading.
type Model struct {
	Name    string
	OBJ     *formats.OBJ
	TriMesh *formats.TriMesh
	Batch   *TriangleBatch
	Bounds  formats.Bounds

	Position    math.Vec3
	RotationDeg math.Vec3
	Scale       math.Vec3
}

// NewModel returns a model with identity transform state.
func NewModel(name string) *Model {
	return &Model{
		Name:  name,
		Scale: math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// SetPosition sets the model translation.
func (m *Model) SetPosition(x, y, z float32) {
	m.Position = math.Vec3{X: x, Y: y, Z: z}
}

// SetRotation sets the per-axis rotation in degrees.
func (m *Model) SetRotation(rx, ry, rz float32) {
	m.RotationDeg = math.Vec3{X: rx, Y: ry, Z: rz}
}

// SetScale sets the per-axis scale factors.
func (m *Model) SetScale(sx, sy, sz float32) {
	m.Scale = math.Vec3{X: sx, Y: sy, Z: sz}
}

// SetUniformScale sets the same scale factor on all three axes.
func (m *Model) SetUniformScale(s float32) {
	m.Scale = math.Vec3{X: s, Y: s, Z: s}
}

// ModelMatrix derives the model transform: translate, then rotate around
// X, Y, Z in that order, then scale. This matches the fixed-function order
// the render backend applies.
func (m *Model) ModelMatrix() math.Mat4 {
	return math.Translate(m.Position.X, m.Position.Y, m.Position.Z).
		Mul(math.RotateX(radians(m.RotationDeg.X))).
		Mul(math.RotateY(radians(m.RotationDeg.Y))).
		Mul(math.RotateZ(radians(m.RotationDeg.Z))).
		Mul(math.Scale(m.Scale.X, m.Scale.Y, m.Scale.Z))
}

func radians(deg float32) float32 {
	return deg * gomath.Pi / 180
}
