package model

import (
	"github.com/fogleman/simplify"

	"github.com/crystalforge/crystal-caves/pkg/math"
)

// Decimate returns a position-only copy of the batch reduced to roughly
// factor (in (0, 1]) of its triangle count, using quadric edge collapse.
// Material grouping, normals, and UVs are discarded; the result is meant
// for coarse collision and LOD consumers, not for direct rendering.
func Decimate(batch *TriangleBatch, factor float64) *TriangleBatch {
	var tris []*simplify.Triangle
	for gi := range batch.Groups {
		verts := batch.Groups[gi].Vertices
		for i := 0; i+2 < len(verts); i += 3 {
			tris = append(tris, simplify.NewTriangle(
				simplifyVector(verts[i].Position),
				simplifyVector(verts[i+1].Position),
				simplifyVector(verts[i+2].Position),
			))
		}
	}
	if len(tris) == 0 {
		return &TriangleBatch{Groups: []Group{{}}}
	}

	mesh := simplify.NewMesh(tris)
	reduced := mesh.Simplify(factor)

	group := Group{Vertices: make([]Vertex, 0, len(reduced.Triangles)*3)}
	for _, t := range reduced.Triangles {
		group.Vertices = append(group.Vertices,
			Vertex{Position: fromSimplify(t.V1)},
			Vertex{Position: fromSimplify(t.V2)},
			Vertex{Position: fromSimplify(t.V3)},
		)
	}
	return &TriangleBatch{Groups: []Group{group}}
}

func simplifyVector(v math.Vec3) simplify.Vector {
	return simplify.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func fromSimplify(v simplify.Vector) math.Vec3 {
	return math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
