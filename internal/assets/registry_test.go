package assets

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeTempOBJ(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tri.obj")
	content := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTemp3DS(t *testing.T) string {
	t.Helper()
	// Minimal main > editor > object > trimesh > vertex list tree with a
	// single vertex, built by hand.
	chunk := func(tag uint16, payload []byte) []byte {
		buf := make([]byte, 6+len(payload))
		binary.LittleEndian.PutUint16(buf, tag)
		binary.LittleEndian.PutUint32(buf[2:], uint32(6+len(payload)))
		copy(buf[6:], payload)
		return buf
	}
	verts := []byte{1, 0} // count = 1
	var f [4]byte
	for i := 0; i < 3; i++ {
		verts = append(verts, f[:]...) // x, y, z = 0
	}
	trimesh := chunk(0x4100, chunk(0x4110, verts))
	object := chunk(0x4000, append(append([]byte("m"), 0), trimesh...))
	data := chunk(0x4D4D, chunk(0x3D3D, object))

	path := filepath.Join(t.TempDir(), "mesh.3ds")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegistry_LoadOBJ(t *testing.T) {
	r := NewRegistry(nil, nil)

	m, err := r.Load("tri", writeTempOBJ(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.OBJ == nil || m.TriMesh != nil {
		t.Error("OBJ load should set OBJ and leave TriMesh nil")
	}
	if m.Batch == nil || m.Batch.TriangleCount() != 1 {
		t.Errorf("batch = %+v, want 1 triangle", m.Batch)
	}
	if !r.Has("tri") || r.Len() != 1 {
		t.Error("model not retained")
	}

	got, ok := r.Get("tri")
	if !ok || got != m {
		t.Error("Get returned a different model")
	}
}

func TestRegistry_Load3DS(t *testing.T) {
	r := NewRegistry(nil, nil)

	m, err := r.Load("mesh", writeTemp3DS(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.TriMesh == nil || m.OBJ != nil {
		t.Error("3DS load should set TriMesh and leave OBJ nil")
	}
	if len(m.TriMesh.Vertices) != 1 {
		t.Errorf("vertex count = %d, want 1", len(m.TriMesh.Vertices))
	}
	if !r.Has("mesh") {
		t.Error("model not retained")
	}
}

func TestRegistry_ExtensionDispatchCaseInsensitive(t *testing.T) {
	r := NewRegistry(nil, nil)

	src := writeTempOBJ(t)
	upper := filepath.Join(filepath.Dir(src), "TRI.OBJ")
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(upper, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Load("upper", upper); err != nil {
		t.Errorf("Load(.OBJ) failed: %v", err)
	}
}

func TestRegistry_UnsupportedExtension(t *testing.T) {
	r := NewRegistry(nil, nil)

	if _, err := r.Load("bad", "model.fbx"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if r.Len() != 0 {
		t.Error("failed load must retain nothing")
	}
}

func TestRegistry_FailedLoadRetainsNothing(t *testing.T) {
	r := NewRegistry(nil, nil)

	if _, err := r.Load("ghost", filepath.Join(t.TempDir(), "ghost.obj")); err == nil {
		t.Error("expected error for missing file")
	}
	if r.Has("ghost") || r.Len() != 0 {
		t.Error("failed load must retain nothing")
	}
}

func TestRegistry_Unload(t *testing.T) {
	r := NewRegistry(nil, nil)
	if _, err := r.Load("tri", writeTempOBJ(t)); err != nil {
		t.Fatal(err)
	}

	if !r.Unload("tri") {
		t.Error("Unload returned false for a registered model")
	}
	if r.Has("tri") || r.Len() != 0 {
		t.Error("model still present after Unload")
	}
	if r.Unload("tri") {
		t.Error("Unload returned true for an absent model")
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry(nil, nil)
	path := writeTempOBJ(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := r.Load(name, path); err != nil {
			t.Fatal(err)
		}
	}

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("Names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names = %v, want %v", names, want)
			break
		}
	}
}

func TestRegistry_ReloadReplaces(t *testing.T) {
	r := NewRegistry(nil, nil)
	path := writeTempOBJ(t)

	first, err := r.Load("tri", path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Load("tri", path)
	if err != nil {
		t.Fatal(err)
	}

	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1 after reload", r.Len())
	}
	got, _ := r.Get("tri")
	if got != second || got == first {
		t.Error("reload should replace the registered model")
	}
}
