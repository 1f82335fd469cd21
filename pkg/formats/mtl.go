package formats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// Color is an RGBA color quadruple.
type Color [4]float32

// TextureHandle is an opaque renderer-owned texture reference. The texture
// loader collaborator that produced it owns the underlying resource; a nil
// handle means the material has no texture.
type TextureHandle interface{}

// TextureLoader resolves texture file paths to handles. Load returns nil
// when the texture cannot be loaded; implementations log the failure and
// never abort the parse.
type TextureLoader interface {
	Load(path string) TextureHandle
}

// Material is a named MTL material record. Its identity is its name.
type Material struct {
	Name         string
	Ambient      Color
	Diffuse      Color
	Specular     Color
	Emission     Color
	Shininess    float32
	Transparency float32
	TexturePath  string
	Texture      TextureHandle
}

// NewMaterial returns a material with the standard MTL defaults.
func NewMaterial(name string) *Material {
	return &Material{
		Name:         name,
		Ambient:      Color{0.2, 0.2, 0.2, 1},
		Diffuse:      Color{0.8, 0.8, 0.8, 1},
		Specular:     Color{1, 1, 1, 1},
		Emission:     Color{0, 0, 0, 1},
		Shininess:    32,
		Transparency: 1,
	}
}

// MTLOptions configures an MTL parse.
type MTLOptions struct {
	// Dir is the directory map_Kd paths resolve against. LoadMTL fills it
	// in from the file path.
	Dir string
	// Textures loads map_Kd references. May be nil, in which case only the
	// texture path is recorded.
	Textures TextureLoader
	// Logger receives warnings. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (o *MTLOptions) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// LoadMTL parses a material library from disk. The file's directory becomes
// the base for texture path resolution.
func LoadMTL(path string, opts *MTLOptions) (map[string]*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening MTL file: %w", err)
	}
	defer f.Close()

	var o MTLOptions
	if opts != nil {
		o = *opts
	}
	o.Dir = filepath.Dir(path)

	return ParseMTL(f, &o)
}

// ParseMTL parses MTL directives from r into named material records.
// Property lines seen before any newmtl are discarded, since there is no
// material to attach them to.
func ParseMTL(r io.Reader, opts *MTLOptions) (map[string]*Material, error) {
	log := opts.logger()
	materials := make(map[string]*Material)

	var current *Material
	ds := NewDirectiveScanner(r)
	for ds.Scan() {
		d := ds.Directive()

		if d.Keyword == "newmtl" {
			current = NewMaterial(d.Rest)
			materials[current.Name] = current
			continue
		}
		if current == nil {
			continue
		}

		switch d.Keyword {
		case "Ka":
			setRGB(&current.Ambient, d, ds.Line(), log)
		case "Kd":
			setRGB(&current.Diffuse, d, ds.Line(), log)
		case "Ks":
			setRGB(&current.Specular, d, ds.Line(), log)
		case "Ke":
			setRGB(&current.Emission, d, ds.Line(), log)

		case "Ns":
			v, err := parseScalar(d)
			if err != nil {
				warnSkip(log, ds.Line(), d.Keyword, err)
				continue
			}
			// MTL declares shininess on a 0-1000 scale; remap to the
			// renderer's 0-128 range.
			current.Shininess = min(v*128/1000, 128)

		case "d", "Tr":
			v, err := parseScalar(d)
			if err != nil {
				warnSkip(log, ds.Line(), d.Keyword, err)
				continue
			}
			if d.Keyword == "Tr" {
				v = 1 - v
			}
			current.Transparency = v
			current.Ambient[3] = v
			current.Diffuse[3] = v

		case "map_Kd":
			if d.Rest == "" {
				continue
			}
			current.TexturePath = d.Rest
			path := d.Rest
			if opts != nil && opts.Dir != "" {
				path = filepath.Join(opts.Dir, path)
			}
			if opts == nil || opts.Textures == nil {
				continue
			}
			if handle := opts.Textures.Load(path); handle != nil {
				current.Texture = handle
			} else {
				// The material stays usable without its texture.
				log.Warn("texture load failed",
					zap.String("material", current.Name),
					zap.String("path", path))
			}
		}
	}
	if err := ds.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL data: %w", err)
	}

	return materials, nil
}

// setRGB overwrites the RGB channels of c, leaving alpha untouched.
func setRGB(c *Color, d Directive, line int, log *zap.Logger) {
	fields := d.Fields()
	if len(fields) < 3 {
		warnSkip(log, line, d.Keyword, fmt.Errorf("expected 3 fields, got %d", len(fields)))
		return
	}
	var rgb [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			warnSkip(log, line, d.Keyword, fmt.Errorf("field %d: %w", i+1, err))
			return
		}
		rgb[i] = float32(f)
	}
	c[0], c[1], c[2] = rgb[0], rgb[1], rgb[2]
}

func parseScalar(d Directive) (float32, error) {
	fields := d.Fields()
	if len(fields) < 1 {
		return 0, fmt.Errorf("missing value")
	}
	f, err := strconv.ParseFloat(fields[0], 32)
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}

func warnSkip(log *zap.Logger, line int, keyword string, err error) {
	log.Warn("skipping malformed directive",
		zap.Int("line", line),
		zap.String("directive", keyword),
		zap.Error(err))
}
