package formats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/crystalforge/crystal-caves/pkg/math"
)

// Index is an optional zero-based array index. The zero value means
// "absent"; a face reference without a texture-coordinate or normal part
// carries an invalid Index instead of a sentinel value.
type Index struct {
	Value int
	Valid bool
}

// FaceVertexRef references the position, texture-coordinate, and normal
// arrays of the surrounding OBJ. Position is always present; the other two
// are optional. All indices are zero-based and resolved against the array
// sizes at the moment the face was parsed.
type FaceVertexRef struct {
	Position int
	TexCoord Index
	Normal   Index
}

// Face is an ordered polygon of at least three vertex references, tagged
// with the material that was current when it was declared (may be empty).
type Face struct {
	Refs     []FaceVertexRef
	Material string
}

// OBJ is the parse result of a Wavefront OBJ file together with its
// resolved material library. Geometry is immutable once Loaded is true.
type OBJ struct {
	Name      string
	Vertices  []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2
	Faces     []Face
	Materials map[string]*Material
	Bounds    Bounds

	// Skipped counts directives dropped because of malformed numeric
	// fields. A well-formed file parses with Skipped == 0.
	Skipped int
	Loaded  bool
}

// OBJOptions configures an OBJ parse.
type OBJOptions struct {
	// Dir is the directory mtllib paths resolve against. LoadOBJ fills it
	// in from the file path.
	Dir string
	// Textures is handed to the MTL resolver for map_Kd lines. May be nil.
	Textures TextureLoader
	// Logger receives warnings for skipped directives and missing
	// companion files. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (o *OBJOptions) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// LoadOBJ parses an OBJ file from disk. The file's directory becomes the
// base for mtllib resolution.
func LoadOBJ(path string, opts *OBJOptions) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()

	var o OBJOptions
	if opts != nil {
		o = *opts
	}
	o.Dir = filepath.Dir(path)

	obj, err := ParseOBJ(f, &o)
	if err != nil {
		return nil, err
	}
	obj.Name = path
	return obj, nil
}

// ParseOBJ parses OBJ directives from r. Unrecognized directives (including
// comments) are ignored. Directives with malformed numeric fields are
// skipped with a warning and counted in OBJ.Skipped; the parse continues.
func ParseOBJ(r io.Reader, opts *OBJOptions) (*OBJ, error) {
	log := opts.logger()
	obj := &OBJ{Materials: make(map[string]*Material)}

	currentMaterial := ""
	ds := NewDirectiveScanner(r)
	for ds.Scan() {
		d := ds.Directive()

		switch d.Keyword {
		case "v":
			v, err := parseVec3(d.Fields())
			if err != nil {
				obj.skip(log, ds.Line(), d.Keyword, err)
				continue
			}
			obj.Vertices = append(obj.Vertices, v)

		case "vn":
			n, err := parseVec3(d.Fields())
			if err != nil {
				obj.skip(log, ds.Line(), d.Keyword, err)
				continue
			}
			obj.Normals = append(obj.Normals, n)

		case "vt":
			t, err := parseVec2(d.Fields())
			if err != nil {
				obj.skip(log, ds.Line(), d.Keyword, err)
				continue
			}
			obj.TexCoords = append(obj.TexCoords, t)

		case "f":
			face, err := parseFace(d.Fields(), currentMaterial,
				len(obj.Vertices), len(obj.TexCoords), len(obj.Normals))
			if err != nil {
				obj.skip(log, ds.Line(), d.Keyword, err)
				continue
			}
			if len(face.Refs) < 3 {
				continue
			}
			obj.Faces = append(obj.Faces, face)

		case "mtllib":
			if d.Rest == "" {
				continue
			}
			path := d.Rest
			if opts != nil && opts.Dir != "" {
				path = filepath.Join(opts.Dir, path)
			}
			var mtlOpts *MTLOptions
			if opts != nil {
				mtlOpts = &MTLOptions{Textures: opts.Textures, Logger: opts.Logger}
			}
			mats, err := LoadMTL(path, mtlOpts)
			if err != nil {
				// A missing material library leaves the geometry usable.
				log.Warn("skipping material library",
					zap.String("path", path), zap.Error(err))
				continue
			}
			for name, mat := range mats {
				obj.Materials[name] = mat
			}

		case "usemtl":
			currentMaterial = d.Rest
		}
	}
	if err := ds.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}

	if b, ok := ComputeBounds(obj.Vertices); ok {
		obj.Bounds = b
	}
	if len(obj.Normals) == 0 && len(obj.Faces) > 0 {
		synthesizeNormals(obj)
	}

	obj.Loaded = true
	return obj, nil
}

func (o *OBJ) skip(log *zap.Logger, line int, keyword string, err error) {
	o.Skipped++
	log.Warn("skipping malformed directive",
		zap.Int("line", line),
		zap.String("directive", keyword),
		zap.Error(err))
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	var c [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		c[i] = float32(f)
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

func parseVec2(fields []string) (math.Vec2, error) {
	if len(fields) < 2 {
		return math.Vec2{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}
	u, err := strconv.ParseFloat(fields[0], 32)
	if err != nil {
		return math.Vec2{}, fmt.Errorf("field 1: %w", err)
	}
	v, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return math.Vec2{}, fmt.Errorf("field 2: %w", err)
	}
	return math.Vec2{X: float32(u), Y: float32(v)}, nil
}

// parseFace parses one f directive. Counts are the array sizes at the time
// of parsing; vertex data appended later must not change how this face
// resolves.
func parseFace(tokens []string, material string, vCount, vtCount, vnCount int) (Face, error) {
	face := Face{Material: material}
	for _, tok := range tokens {
		ref, err := parseFaceRef(tok, vCount, vtCount, vnCount)
		if err != nil {
			return Face{}, fmt.Errorf("vertex ref %q: %w", tok, err)
		}
		face.Refs = append(face.Refs, ref)
	}
	return face, nil
}

// parseFaceRef parses one face token: v, v/vt, v/vt/vn, or v//vn.
func parseFaceRef(token string, vCount, vtCount, vnCount int) (FaceVertexRef, error) {
	parts := strings.SplitN(token, "/", 3)

	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return FaceVertexRef{}, err
	}
	ref := FaceVertexRef{Position: resolveIndex(v, vCount)}

	if len(parts) > 1 && parts[1] != "" {
		t, err := strconv.Atoi(parts[1])
		if err != nil {
			return FaceVertexRef{}, err
		}
		ref.TexCoord = Index{Value: resolveIndex(t, vtCount), Valid: true}
	}
	if len(parts) > 2 && parts[2] != "" {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return FaceVertexRef{}, err
		}
		ref.Normal = Index{Value: resolveIndex(n, vnCount), Valid: true}
	}
	return ref, nil
}

// resolveIndex converts a 1-based OBJ index to zero-based. A negative index
// counts back from the current end of the array, so -1 is the most recently
// declared element.
func resolveIndex(i, count int) int {
	if i < 0 {
		return count + i
	}
	return i - 1
}

// synthesizeNormals fills the normal array for meshes that declared none:
// every face's unit normal is accumulated into each referenced vertex, the
// accumulators are normalized, and the faces are rewritten to index normals
// by position. Vertices touched only by degenerate faces keep the zero
// normal.
func synthesizeNormals(o *OBJ) {
	o.Normals = make([]math.Vec3, len(o.Vertices))

	for _, face := range o.Faces {
		i0, i1, i2 := face.Refs[0].Position, face.Refs[1].Position, face.Refs[2].Position
		if !validIndex(i0, len(o.Vertices)) ||
			!validIndex(i1, len(o.Vertices)) ||
			!validIndex(i2, len(o.Vertices)) {
			continue
		}

		edge1 := o.Vertices[i1].Sub(o.Vertices[i0])
		edge2 := o.Vertices[i2].Sub(o.Vertices[i0])
		faceNormal := edge1.Cross(edge2).Normalize()

		for _, ref := range face.Refs {
			if validIndex(ref.Position, len(o.Vertices)) {
				o.Normals[ref.Position] = o.Normals[ref.Position].Add(faceNormal)
			}
		}
	}

	for i := range o.Normals {
		o.Normals[i] = o.Normals[i].Normalize()
	}

	// Normals are now indexed identically to positions.
	for fi := range o.Faces {
		refs := o.Faces[fi].Refs
		for ri := range refs {
			refs[ri].Normal = Index{Value: refs[ri].Position, Valid: true}
		}
	}
}

func validIndex(i, count int) bool {
	return i >= 0 && i < count
}
