// modelinfo loads 3D assets and prints their geometry, material, and batch
// statistics. Usage:
//
//	modelinfo [flags] model.obj other.3ds ...
//
// Paths are resolved against the working directory first, then against the
// configured model search directories.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/crystalforge/crystal-caves/internal/assets"
	"github.com/crystalforge/crystal-caves/internal/config"
	"github.com/crystalforge/crystal-caves/internal/engine/model"
	"github.com/crystalforge/crystal-caves/internal/engine/texture"
	"github.com/crystalforge/crystal-caves/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: modelinfo [flags] <model.obj|model.3ds> ...")
		os.Exit(2)
	}

	loader := texture.NewLoader(logger.Log, cfg.Assets.TexturePOTResize)
	registry := assets.NewRegistry(loader, logger.Log)

	exitCode := 0
	for _, arg := range paths {
		path, ok := findAsset(arg, cfg.Assets.ModelDirs)
		if !ok {
			logger.Log.Error("asset not found", zap.String("path", arg))
			exitCode = 1
			continue
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m, err := registry.Load(name, path)
		if err != nil {
			logger.Log.Error("load failed", zap.String("path", path), zap.Error(err))
			exitCode = 1
			continue
		}

		printInfo(m, path)
	}

	os.Exit(exitCode)
}

// findAsset resolves an asset path against the working directory, then the
// configured model directories.
func findAsset(path string, dirs []string) (string, bool) {
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	for _, dir := range dirs {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func printInfo(m *model.Model, path string) {
	fmt.Printf("%s (%s)\n", m.Name, path)

	switch {
	case m.OBJ != nil:
		fmt.Printf("  format:    OBJ\n")
		fmt.Printf("  vertices:  %d\n", len(m.OBJ.Vertices))
		fmt.Printf("  normals:   %d\n", len(m.OBJ.Normals))
		fmt.Printf("  texcoords: %d\n", len(m.OBJ.TexCoords))
		fmt.Printf("  faces:     %d\n", len(m.OBJ.Faces))
		fmt.Printf("  materials: %d\n", len(m.OBJ.Materials))
		if m.OBJ.Skipped > 0 {
			fmt.Printf("  skipped:   %d malformed directives\n", m.OBJ.Skipped)
		}
	case m.TriMesh != nil:
		fmt.Printf("  format:    3DS\n")
		fmt.Printf("  objects:   %s\n", strings.Join(m.TriMesh.Objects, ", "))
		fmt.Printf("  vertices:  %d\n", len(m.TriMesh.Vertices))
		fmt.Printf("  texcoords: %d\n", len(m.TriMesh.TexCoords))
		fmt.Printf("  triangles: %d\n", len(m.TriMesh.Triangles))
	}

	b := m.Bounds
	fmt.Printf("  bounds:    min(%.3f %.3f %.3f) max(%.3f %.3f %.3f)\n",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Printf("  center:    (%.3f %.3f %.3f) radius %.3f\n",
		b.Center.X, b.Center.Y, b.Center.Z, b.Radius)

	fmt.Printf("  batch:     %d groups, %d triangles\n",
		len(m.Batch.Groups), m.Batch.TriangleCount())
	for _, g := range m.Batch.Groups {
		name := g.Material
		if name == "" {
			name = "(none)"
		}
		fmt.Printf("    %-20s %d triangles\n", name, g.TriangleCount())
	}
}
