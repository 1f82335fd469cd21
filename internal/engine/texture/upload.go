package texture

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Upload creates the GL texture object for t and returns its name. The
// caller must hold a current GL context; repeated calls reuse the object
// created first. The CPU-side image is retained so the texture can be
// re-uploaded after a context loss.
func (t *Texture) Upload() uint32 {
	if t.uploaded {
		return t.glID
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(t.Width), int32(t.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&t.Image.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	t.glID = texID
	t.uploaded = true
	return texID
}

// GLID returns the uploaded texture name, or 0 when Upload has not run.
func (t *Texture) GLID() uint32 {
	return t.glID
}

// Release deletes the GL texture object. The CPU-side image survives, so
// the texture can be uploaded again.
func (t *Texture) Release() {
	if !t.uploaded {
		return
	}
	gl.DeleteTextures(1, &t.glID)
	t.glID = 0
	t.uploaded = false
}
