package model

import (
	"github.com/crystalforge/crystal-caves/pkg/formats"
)

// CompileOBJ flattens a parsed OBJ into a material-grouped triangle batch.
// Faces are grouped by material tag (groups appear in first-use order),
// n-gons are fan-triangulated from vertex 0, and texture-coordinate or
// normal references that are absent or out of range are omitted from the
// output vertex rather than failing the compile. Triangles referencing an
// out-of-range position are dropped.
func CompileOBJ(obj *formats.OBJ) *TriangleBatch {
	batch := &TriangleBatch{}
	groupIdx := make(map[string]int)

	for fi := range obj.Faces {
		face := &obj.Faces[fi]

		gi, ok := groupIdx[face.Material]
		if !ok {
			gi = len(batch.Groups)
			groupIdx[face.Material] = gi
			batch.Groups = append(batch.Groups, Group{Material: face.Material})
		}
		group := &batch.Groups[gi]

		// Triangle fan: (0, i, i+1) for each consecutive pair.
		for i := 1; i+1 < len(face.Refs); i++ {
			tri := [3]formats.FaceVertexRef{face.Refs[0], face.Refs[i], face.Refs[i+1]}
			verts, ok := resolveTriangle(obj, tri)
			if !ok {
				continue
			}
			group.Vertices = append(group.Vertices, verts[0], verts[1], verts[2])
		}
	}

	return batch
}

// resolveTriangle resolves three face refs against the OBJ's attribute
// arrays. It reports false when any position index is out of range.
func resolveTriangle(obj *formats.OBJ, tri [3]formats.FaceVertexRef) ([3]Vertex, bool) {
	var verts [3]Vertex
	for i, ref := range tri {
		if ref.Position < 0 || ref.Position >= len(obj.Vertices) {
			return verts, false
		}
		v := Vertex{Position: obj.Vertices[ref.Position]}

		if ref.Normal.Valid && ref.Normal.Value >= 0 && ref.Normal.Value < len(obj.Normals) {
			v.Normal = obj.Normals[ref.Normal.Value]
			v.HasNormal = true
		}
		if ref.TexCoord.Valid && ref.TexCoord.Value >= 0 && ref.TexCoord.Value < len(obj.TexCoords) {
			v.UV = obj.TexCoords[ref.TexCoord.Value]
			v.HasUV = true
		}
		verts[i] = v
	}
	return verts, true
}

// Compile3DS flattens a parsed 3DS triangle mesh into a single-group batch.
// The format carries no normals, so each triangle gets its flat face normal
// computed from the vertex winding; degenerate triangles are emitted
// without one. Texture coordinates attach per vertex when the index is
// covered by the mapping-coordinate list.
func Compile3DS(tm *formats.TriMesh) *TriangleBatch {
	group := Group{}

	for _, tri := range tm.Triangles {
		if int(tri[0]) >= len(tm.Vertices) ||
			int(tri[1]) >= len(tm.Vertices) ||
			int(tri[2]) >= len(tm.Vertices) {
			continue
		}

		v0 := tm.Vertices[tri[0]]
		v1 := tm.Vertices[tri[1]]
		v2 := tm.Vertices[tri[2]]

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		hasNormal := normal.Length() > 0

		for _, idx := range tri {
			v := Vertex{
				Position:  tm.Vertices[idx],
				Normal:    normal,
				HasNormal: hasNormal,
			}
			if int(idx) < len(tm.TexCoords) {
				v.UV = tm.TexCoords[idx]
				v.HasUV = true
			}
			group.Vertices = append(group.Vertices, v)
		}
	}

	return &TriangleBatch{Groups: []Group{group}}
}
