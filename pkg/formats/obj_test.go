package formats

import (
	gomath "math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/crystalforge/crystal-caves/pkg/math"
)

func parseOBJString(t *testing.T, input string) *OBJ {
	t.Helper()
	obj, err := ParseOBJ(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	return obj
}

func TestParseOBJ_Vertices(t *testing.T) {
	obj := parseOBJString(t, `
v 1.0 2.0 3.0
v -1.5 0.25 10
vn 0 1 0
vt 0.5 0.5
`)

	if len(obj.Vertices) != 2 {
		t.Fatalf("vertex count = %d, want 2", len(obj.Vertices))
	}
	if obj.Vertices[1].X != -1.5 || obj.Vertices[1].Y != 0.25 || obj.Vertices[1].Z != 10 {
		t.Errorf("Vertices[1] = %v", obj.Vertices[1])
	}
	if len(obj.Normals) != 1 {
		t.Errorf("normal count = %d, want 1", len(obj.Normals))
	}
	if len(obj.TexCoords) != 1 {
		t.Errorf("texcoord count = %d, want 1", len(obj.TexCoords))
	}
	if !obj.Loaded {
		t.Error("Loaded = false after successful parse")
	}
}

func TestParseOBJ_FaceRefForms(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  FaceVertexRef
	}{
		{"position only", "2", FaceVertexRef{Position: 1}},
		{"position and texcoord", "2/3", FaceVertexRef{
			Position: 1,
			TexCoord: Index{Value: 2, Valid: true},
		}},
		{"full triple", "2/3/1", FaceVertexRef{
			Position: 1,
			TexCoord: Index{Value: 2, Valid: true},
			Normal:   Index{Value: 0, Valid: true},
		}},
		{"position and normal", "2//1", FaceVertexRef{
			Position: 1,
			Normal:   Index{Value: 0, Valid: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFaceRef(tt.token, 5, 5, 5)
			if err != nil {
				t.Fatalf("parseFaceRef(%q) failed: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("parseFaceRef(%q) = %+v, want %+v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseOBJ_NegativeIndices(t *testing.T) {
	// With 5 parsed vertices, -1 resolves like 5: zero-based index 4.
	obj := parseOBJString(t, `
v 0 0 0
v 1 0 0
v 2 0 0
v 3 0 0
v 4 0 0
f 1 2 -1
f 1 2 5
`)

	if len(obj.Faces) != 2 {
		t.Fatalf("face count = %d, want 2", len(obj.Faces))
	}
	if got := obj.Faces[0].Refs[2].Position; got != 4 {
		t.Errorf("negative ref position = %d, want 4", got)
	}
	if obj.Faces[0].Refs[2].Position != obj.Faces[1].Refs[2].Position {
		t.Error("-1 and 5 resolved to different indices")
	}
}

func TestParseOBJ_IndicesResolveAtParseTime(t *testing.T) {
	// Vertices appended after the face must not change how it resolved.
	obj := parseOBJString(t, `
v 0 0 0
v 1 0 0
v 2 0 0
f 1 2 -1
v 99 99 99
`)

	if len(obj.Faces) != 1 {
		t.Fatalf("face count = %d, want 1", len(obj.Faces))
	}
	if got := obj.Faces[0].Refs[2].Position; got != 2 {
		t.Errorf("ref position = %d, want 2 (count at parse time)", got)
	}
}

func TestParseOBJ_ShortFaceDropped(t *testing.T) {
	obj := parseOBJString(t, `
v 0 0 0
v 1 0 0
v 2 0 0
f 1 2
f 1 2 3
`)

	if len(obj.Faces) != 1 {
		t.Errorf("face count = %d, want 1 (two-ref face dropped)", len(obj.Faces))
	}
}

func TestParseOBJ_MalformedDirectiveSkipped(t *testing.T) {
	obj := parseOBJString(t, `
v 1.0 bogus 3.0
v 1 2 3
v 4 5 6
v 7 8 9
f 1 2 x
f 1 2 3
`)

	if len(obj.Vertices) != 3 {
		t.Errorf("vertex count = %d, want 3", len(obj.Vertices))
	}
	if len(obj.Faces) != 1 {
		t.Errorf("face count = %d, want 1", len(obj.Faces))
	}
	if obj.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", obj.Skipped)
	}
	if !obj.Loaded {
		t.Error("parse should survive malformed directives")
	}
}

func TestParseOBJ_UsemtlTagsFaces(t *testing.T) {
	obj := parseOBJString(t, `
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
usemtl stone wall
f 1 2 3
usemtl lava
f 1 2 3
`)

	if len(obj.Faces) != 3 {
		t.Fatalf("face count = %d, want 3", len(obj.Faces))
	}
	wantMats := []string{"", "stone wall", "lava"}
	for i, want := range wantMats {
		if obj.Faces[i].Material != want {
			t.Errorf("Faces[%d].Material = %q, want %q", i, obj.Faces[i].Material, want)
		}
	}
}

func TestParseOBJ_CommentsAndUnknownDirectivesIgnored(t *testing.T) {
	obj := parseOBJString(t, `
# a comment line
o cube
g group1
s off
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`)

	if len(obj.Vertices) != 3 || len(obj.Faces) != 1 {
		t.Errorf("got %d vertices, %d faces; want 3, 1",
			len(obj.Vertices), len(obj.Faces))
	}
	if obj.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", obj.Skipped)
	}
}

func TestLoadOBJ_MissingFile(t *testing.T) {
	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "nope.obj"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOBJ_MissingMTLIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.obj")
	content := "mtllib missing.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	obj, err := LoadOBJ(path, nil)
	if err != nil {
		t.Fatalf("LoadOBJ failed: %v", err)
	}
	if len(obj.Faces) != 1 {
		t.Errorf("face count = %d, want 1", len(obj.Faces))
	}
	if len(obj.Materials) != 0 {
		t.Errorf("material count = %d, want 0", len(obj.Materials))
	}
}

func TestLoadOBJ_ResolvesMTLRelativeToOBJ(t *testing.T) {
	dir := t.TempDir()
	mtl := "newmtl crystal\nKd 0.2 0.4 0.9\n"
	if err := os.WriteFile(filepath.Join(dir, "caves.mtl"), []byte(mtl), 0644); err != nil {
		t.Fatal(err)
	}
	objSrc := `mtllib caves.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl crystal
f 1 2 3
`
	path := filepath.Join(dir, "caves.obj")
	if err := os.WriteFile(path, []byte(objSrc), 0644); err != nil {
		t.Fatal(err)
	}

	obj, err := LoadOBJ(path, nil)
	if err != nil {
		t.Fatalf("LoadOBJ failed: %v", err)
	}

	mat, ok := obj.Materials["crystal"]
	if !ok {
		t.Fatalf("material %q not resolved; have %v", "crystal", obj.Materials)
	}
	if mat.Diffuse[0] != 0.2 || mat.Diffuse[1] != 0.4 || mat.Diffuse[2] != 0.9 {
		t.Errorf("Diffuse = %v", mat.Diffuse)
	}
	if obj.Faces[0].Material != "crystal" {
		t.Errorf("face material = %q, want crystal", obj.Faces[0].Material)
	}
}

func TestParseOBJ_Bounds(t *testing.T) {
	obj := parseOBJString(t, `
v -1 -2 -3
v 3 2 1
v 1 0 0
f 1 2 3
`)

	b := obj.Bounds
	if b.Min != (math.Vec3{X: -1, Y: -2, Z: -3}) || b.Max != (math.Vec3{X: 3, Y: 2, Z: 1}) {
		t.Errorf("bounds = [%v, %v]", b.Min, b.Max)
	}
	if b.Center != (math.Vec3{X: 1, Y: 0, Z: -1}) {
		t.Errorf("center = %v, want {1 0 -1}", b.Center)
	}
}

func TestParseOBJ_NormalSynthesis(t *testing.T) {
	// A closed cube with no vn directives: every synthesized normal must
	// be unit length, and faces must index normals by position.
	obj := parseOBJString(t, `
v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
f 1 2 3 4
f 5 8 7 6
f 1 5 6 2
f 2 6 7 3
f 3 7 8 4
f 5 1 4 8
`)

	if len(obj.Normals) != len(obj.Vertices) {
		t.Fatalf("normal count = %d, want %d", len(obj.Normals), len(obj.Vertices))
	}
	for i, n := range obj.Normals {
		if gomath.Abs(float64(n.Length())-1) > 1e-4 {
			t.Errorf("Normals[%d] length = %f, want 1", i, n.Length())
		}
	}
	for fi, face := range obj.Faces {
		for ri, ref := range face.Refs {
			if !ref.Normal.Valid || ref.Normal.Value != ref.Position {
				t.Errorf("face %d ref %d normal = %+v, want position index %d",
					fi, ri, ref.Normal, ref.Position)
			}
		}
	}
}

func TestParseOBJ_NormalSynthesisDegenerate(t *testing.T) {
	// All three corners coincide: the face has zero area, so the
	// synthesized normal stays the zero vector.
	obj := parseOBJString(t, `
v 1 1 1
v 1 1 1
v 1 1 1
f 1 2 3
`)

	for i, n := range obj.Normals {
		if n.Length() != 0 {
			t.Errorf("Normals[%d] = %v, want zero vector", i, n)
		}
	}
}

func TestParseOBJ_AuthoredNormalsNotReplaced(t *testing.T) {
	obj := parseOBJString(t, `
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 9
f 1//1 2//1 3//1
`)

	if len(obj.Normals) != 1 {
		t.Fatalf("normal count = %d, want 1", len(obj.Normals))
	}
	// Authored normals are stored verbatim, not renormalized.
	if obj.Normals[0].Z != 9 {
		t.Errorf("Normals[0] = %v, want {0 0 9}", obj.Normals[0])
	}
}

func TestParseOBJ_Idempotence(t *testing.T) {
	src := `
v 0 0 0
v 2 0 0
v 0 2 0
v 0 0 2
f 1 2 3
f 1 3 4
f 1 4 2
f 2 4 3
`
	a := parseOBJString(t, src)
	b := parseOBJString(t, src)

	if !reflect.DeepEqual(a.Vertices, b.Vertices) {
		t.Error("vertex lists differ between parses")
	}
	if !reflect.DeepEqual(a.Normals, b.Normals) {
		t.Error("normal lists differ between parses")
	}
	if !reflect.DeepEqual(a.Faces, b.Faces) {
		t.Error("face lists differ between parses")
	}
	if a.Bounds != b.Bounds {
		t.Error("bounds differ between parses")
	}
}
