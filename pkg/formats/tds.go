package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"os"

	"github.com/crystalforge/crystal-caves/pkg/math"
)

// 3DS format errors.
var (
	ErrInvalid3DSHeader = errors.New("invalid 3DS header: expected main chunk 0x4D4D")
	ErrTruncated3DSData = errors.New("truncated 3DS data")
	ErrMalformed3DSChunk = errors.New("malformed 3DS chunk length")
)

// 3DS chunk tags. The numeric values must match the legacy format for
// interoperability with existing asset files.
const (
	ChunkMain       uint16 = 0x4D4D // top-level container
	ChunkEditor     uint16 = 0x3D3D // 3D editor container
	ChunkObject     uint16 = 0x4000 // named object container
	ChunkTriMesh    uint16 = 0x4100 // triangle mesh container
	ChunkVertexList uint16 = 0x4110 // leaf: vertex positions
	ChunkFaceList   uint16 = 0x4120 // leaf: triangle indices
	ChunkMapCoords  uint16 = 0x4140 // leaf: texture coordinates
)

// chunkHeaderSize is the tag (2 bytes) plus the total length (4 bytes).
const chunkHeaderSize = 6

// TriMesh is the parse result of a 3DS file: a flat vertex list, optional
// texture coordinates, and a triangle index list. The format carries no
// material information. Geometry is immutable once Loaded is true.
type TriMesh struct {
	Objects   []string
	Vertices  []math.Vec3
	TexCoords []math.Vec2
	Triangles [][3]uint16
	Bounds    Bounds
	Loaded    bool
}

// Parse3DSFile parses a 3DS file from disk.
func Parse3DSFile(path string) (*TriMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading 3DS file: %w", err)
	}
	return Parse3DS(data)
}

// Parse3DS parses 3DS data from a byte slice. The first chunk must be the
// main chunk; anything else fails immediately with no partial geometry.
// Unrecognized chunks are skipped by seeking to their declared end, which
// keeps sibling chunks parseable.
func Parse3DS(data []byte) (*TriMesh, error) {
	r := &chunkReader{data: data}

	tag, end, err := r.header(len(data))
	if err != nil {
		return nil, err
	}
	if tag != ChunkMain {
		return nil, ErrInvalid3DSHeader
	}

	tm := &TriMesh{}
	if err := r.parseChunk(tm, tag, end); err != nil {
		return nil, err
	}

	if b, ok := ComputeBounds(tm.Vertices); ok {
		tm.Bounds = b
	}
	tm.Loaded = true
	return tm, nil
}

// chunkReader is a cursor over the raw chunk tree. Every chunk's byte
// extent is computable up front from its length field, so recursion needs
// no lookahead.
type chunkReader struct {
	data []byte
	pos  int
}

// header reads a chunk header and returns the tag and the absolute end
// offset of the chunk. limit is the end of the enclosing chunk.
func (r *chunkReader) header(limit int) (uint16, int, error) {
	if r.pos+chunkHeaderSize > limit {
		return 0, 0, ErrTruncated3DSData
	}
	tag := binary.LittleEndian.Uint16(r.data[r.pos:])
	length := binary.LittleEndian.Uint32(r.data[r.pos+2:])
	start := r.pos
	r.pos += chunkHeaderSize

	if length < chunkHeaderSize {
		return 0, 0, fmt.Errorf("%w: chunk 0x%04X at offset %d", ErrMalformed3DSChunk, tag, start)
	}
	end := start + int(length)
	if end > limit {
		return 0, 0, fmt.Errorf("%w: chunk 0x%04X extends past offset %d", ErrTruncated3DSData, tag, limit)
	}
	return tag, end, nil
}

func (r *chunkReader) parseChunk(tm *TriMesh, tag uint16, end int) error {
	switch tag {
	case ChunkMain, ChunkEditor, ChunkTriMesh:
		return r.parseChildren(tm, end)

	case ChunkObject:
		name, err := r.asciiz(end)
		if err != nil {
			return fmt.Errorf("object chunk: %w", err)
		}
		tm.Objects = append(tm.Objects, name)
		return r.parseChildren(tm, end)

	case ChunkVertexList:
		count, err := r.u16(end)
		if err != nil {
			return fmt.Errorf("vertex list: %w", err)
		}
		for i := 0; i < int(count); i++ {
			x, err := r.f32(end)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", i, err)
			}
			y, err := r.f32(end)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", i, err)
			}
			z, err := r.f32(end)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", i, err)
			}
			tm.Vertices = append(tm.Vertices, math.Vec3{X: x, Y: y, Z: z})
		}

	case ChunkFaceList:
		count, err := r.u16(end)
		if err != nil {
			return fmt.Errorf("face list: %w", err)
		}
		for i := 0; i < int(count); i++ {
			var idx [3]uint16
			for j := 0; j < 3; j++ {
				idx[j], err = r.u16(end)
				if err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
			}
			// The fourth word holds edge-visibility flags; discard it.
			if _, err := r.u16(end); err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			tm.Triangles = append(tm.Triangles, idx)
		}

	case ChunkMapCoords:
		count, err := r.u16(end)
		if err != nil {
			return fmt.Errorf("mapping coords: %w", err)
		}
		for i := 0; i < int(count); i++ {
			u, err := r.f32(end)
			if err != nil {
				return fmt.Errorf("mapping coord %d: %w", i, err)
			}
			v, err := r.f32(end)
			if err != nil {
				return fmt.Errorf("mapping coord %d: %w", i, err)
			}
			tm.TexCoords = append(tm.TexCoords, math.Vec2{X: u, Y: v})
		}
	}

	// Leaf payloads should land exactly on the chunk end; unknown tags are
	// skipped wholesale. Either way the cursor continues at the sibling.
	r.pos = end
	return nil
}

// parseChildren dispatches sub-chunks until the enclosing chunk's end
// offset is reached.
func (r *chunkReader) parseChildren(tm *TriMesh, end int) error {
	for r.pos < end {
		tag, childEnd, err := r.header(end)
		if err != nil {
			return err
		}
		if err := r.parseChunk(tm, tag, childEnd); err != nil {
			return err
		}
	}
	return nil
}

func (r *chunkReader) u16(limit int) (uint16, error) {
	if r.pos+2 > limit {
		return 0, ErrTruncated3DSData
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *chunkReader) f32(limit int) (float32, error) {
	if r.pos+4 > limit {
		return 0, ErrTruncated3DSData
	}
	v := gomath.Float32frombits(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

// asciiz reads a NUL-terminated string, bounded by the chunk end.
func (r *chunkReader) asciiz(limit int) (string, error) {
	start := r.pos
	for r.pos < limit {
		if r.data[r.pos] == 0 {
			s := string(r.data[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	return "", ErrTruncated3DSData
}
