package texture

import (
	"fmt"
	"image"
	"image/color"
)

// DecodeTGA decodes a TGA image. Uncompressed true-color (type 2) and RLE
// compressed (type 10) files with 24 or 32 bits per pixel are supported,
// which covers the TGA variants found in legacy asset sets.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != 2 && imageType != 10 {
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}

	pixels := data[min(18+idLength, len(data)):]
	bytesPerPixel := bpp / 8
	rle := imageType == 10

	// next returns one BGR(A) pixel at a time, transparently expanding RLE
	// packets for type 10.
	var packetLeft int
	var packetRaw bool
	var repeat []byte
	next := func() ([]byte, error) {
		if rle && packetLeft == 0 {
			if len(pixels) < 1 {
				return nil, fmt.Errorf("TGA pixel data truncated")
			}
			header := pixels[0]
			pixels = pixels[1:]
			packetLeft = int(header&0x7F) + 1
			packetRaw = header&0x80 == 0
			if !packetRaw {
				if len(pixels) < bytesPerPixel {
					return nil, fmt.Errorf("TGA pixel data truncated")
				}
				repeat = pixels[:bytesPerPixel]
				pixels = pixels[bytesPerPixel:]
			}
		}
		if rle {
			packetLeft--
			if !packetRaw {
				return repeat, nil
			}
		}
		if len(pixels) < bytesPerPixel {
			return nil, fmt.Errorf("TGA pixel data truncated")
		}
		px := pixels[:bytesPerPixel]
		pixels = pixels[bytesPerPixel:]
		return px, nil
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	topToBottom := descriptor&0x20 != 0

	for y := 0; y < height; y++ {
		destY := y
		if !topToBottom {
			destY = height - 1 - y
		}
		for x := 0; x < width; x++ {
			px, err := next()
			if err != nil {
				return nil, err
			}
			a := uint8(255)
			if bytesPerPixel == 4 {
				a = px[3]
			}
			img.SetRGBA(x, destY, color.RGBA{R: px[2], G: px[1], B: px[0], A: a})
		}
	}

	return img, nil
}
