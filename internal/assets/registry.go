// Package assets owns loaded model instances and hands out non-owning
// references to them.
package assets

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/crystalforge/crystal-caves/internal/engine/model"
	"github.com/crystalforge/crystal-caves/internal/engine/texture"
	"github.com/crystalforge/crystal-caves/pkg/formats"
)

// Registry is the sole long-lived owner of loaded models, keyed by name.
// A failed load retains nothing. Loads of the same name must not run
// concurrently; the mutex protects the map, not the load pipeline.
type Registry struct {
	mu       sync.RWMutex
	models   map[string]*model.Model
	textures *texture.Loader
	log      *zap.Logger
}

// NewRegistry returns an empty registry. textures may be nil for headless
// use, in which case map_Kd references only record their path. log may be
// nil.
func NewRegistry(textures *texture.Loader, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		models:   make(map[string]*model.Model),
		textures: textures,
		log:      log,
	}
}

// Load loads the asset at path under the given name, dispatching on the
// file extension (.obj or .3ds).
func (r *Registry) Load(name, path string) (*model.Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return r.LoadOBJ(name, path)
	case ".3ds":
		return r.Load3DS(name, path)
	default:
		return nil, fmt.Errorf("unsupported asset format: %s", path)
	}
}

// LoadOBJ parses an OBJ file with its material library, compiles the
// triangle batch, and retains the model under name.
func (r *Registry) LoadOBJ(name, path string) (*model.Model, error) {
	opts := &formats.OBJOptions{Logger: r.log}
	if r.textures != nil {
		opts.Textures = r.textures
	}

	obj, err := formats.LoadOBJ(path, opts)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", name, err)
	}

	m := model.NewModel(name)
	m.OBJ = obj
	m.Bounds = obj.Bounds
	m.Batch = model.CompileOBJ(obj)

	r.retain(m)
	r.log.Info("model loaded",
		zap.String("name", name),
		zap.String("path", path),
		zap.Int("vertices", len(obj.Vertices)),
		zap.Int("faces", len(obj.Faces)),
		zap.Int("materials", len(obj.Materials)))
	return m, nil
}

// Load3DS parses a 3DS file, compiles the triangle batch, and retains the
// model under name.
func (r *Registry) Load3DS(name, path string) (*model.Model, error) {
	tm, err := formats.Parse3DSFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", name, err)
	}

	m := model.NewModel(name)
	m.TriMesh = tm
	m.Bounds = tm.Bounds
	m.Batch = model.Compile3DS(tm)

	r.retain(m)
	r.log.Info("model loaded",
		zap.String("name", name),
		zap.String("path", path),
		zap.Int("vertices", len(tm.Vertices)),
		zap.Int("triangles", len(tm.Triangles)))
	return m, nil
}

func (r *Registry) retain(m *model.Model) {
	r.mu.Lock()
	r.models[m.Name] = m
	r.mu.Unlock()
}

// Get returns the model registered under name.
func (r *Registry) Get(name string) (*model.Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Has reports whether a model is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.models[name]
	return ok
}

// Unload releases the model registered under name and reports whether it
// existed.
func (r *Registry) Unload(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[name]; !ok {
		return false
	}
	delete(r.models, name)
	return true
}

// Names returns the sorted names of all registered models.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}
