// Package texture implements the texture loading collaborator: it decodes
// image files into CPU-side RGBA data and hands out opaque handles that the
// render backend can later upload to the GPU.
package texture

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/crystalforge/crystal-caves/pkg/formats"
)

// Texture is a decoded image retained on the CPU side. The GL texture
// object is created lazily by Upload, so headless loads never touch GL.
type Texture struct {
	Path   string
	Image  *image.RGBA
	Width  int
	Height int

	glID     uint32
	uploaded bool
}

// Loader loads textures from disk. It implements formats.TextureLoader:
// failures are logged and yield a nil handle, never an error, so a missing
// texture cannot fail an asset load.
type Loader struct {
	log *zap.Logger

	// resizePOT rescales textures to the next power of two, which legacy
	// fixed-function renderers require.
	resizePOT bool
}

// NewLoader returns a texture loader. log may be nil.
func NewLoader(log *zap.Logger, resizePOT bool) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log, resizePOT: resizePOT}
}

// Load reads and decodes the image at path. It returns nil when the file
// is missing or undecodable.
func (l *Loader) Load(path string) formats.TextureHandle {
	tex := l.LoadTexture(path)
	if tex == nil {
		return nil
	}
	return tex
}

// LoadTexture is the concrete-typed variant of Load.
func (l *Loader) LoadTexture(path string) *Texture {
	data, err := os.ReadFile(path)
	if err != nil {
		l.log.Warn("texture file unreadable", zap.String("path", path), zap.Error(err))
		return nil
	}

	img, err := decode(path, data)
	if err != nil {
		l.log.Warn("texture decode failed", zap.String("path", path), zap.Error(err))
		return nil
	}

	if l.resizePOT {
		img = toPowerOfTwo(img)
	}

	rgba := toRGBA(img)
	return &Texture{
		Path:   path,
		Image:  rgba,
		Width:  rgba.Bounds().Dx(),
		Height: rgba.Bounds().Dy(),
	}
}

// decode picks a decoder by extension: TGA has no magic bytes, so it cannot
// be sniffed by image.Decode.
func decode(path string, data []byte) (image.Image, error) {
	if strings.HasSuffix(strings.ToLower(path), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// toPowerOfTwo rescales the image so both dimensions are powers of two.
func toPowerOfTwo(img image.Image) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	if pw == w && ph == h {
		return img
	}
	return resize.Resize(uint(pw), uint(ph), img, resize.Bilinear)
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
