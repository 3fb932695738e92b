package scene

import (
	"fmt"

	"github.com/lumen3d/lumen/internal/vecmath"
)

// Texture is a 2D RGBA pattern driving material and light parameters.
// Texels live on the component; the mirror carries only the dimensions the
// renderer needs to address the uploaded pixel data.
type Texture struct {
	Meta

	width  int
	height int
	texels []vecmath.Vec4
	source string // originating file path, "" for generated data
}

// TextureStruct is the flat projection of a Texture.
type TextureStruct struct {
	Width  int32
	Height int32
}

func projectTexture(t *Texture, s *TextureStruct) {
	s.Width = int32(t.width)
	s.Height = int32(t.height)
}

func newTextureRegistry(capacity int) *Registry[Texture, *Texture, TextureStruct] {
	return NewRegistry[Texture, *Texture, TextureStruct]("Texture", capacity, projectTexture)
}

// setData validates and installs texel data during construction. Runs inside
// the factory's init step, so a failure rolls the whole create back.
func (t *Texture) setData(width, height int, texels []vecmath.Vec4) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("texture dimensions %dx%d invalid", width, height)
	}
	if len(texels) != width*height {
		return fmt.Errorf("texture data length %d does not match %dx%d", len(texels), width, height)
	}
	t.width = width
	t.height = height
	t.texels = texels
	return nil
}

// Source returns the file the texture was loaded from, or "" for generated
// texel data.
func (t *Texture) Source() string { return t.source }

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Texels returns a copy of the flattened texel data.
func (t *Texture) Texels() []vecmath.Vec4 {
	out := make([]vecmath.Vec4, len(t.texels))
	copy(out, t.texels)
	return out
}

// Texel returns the texel at (x, y), top-left origin.
func (t *Texture) Texel(x, y int) (vecmath.Vec4, error) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return vecmath.Vec4{}, fmt.Errorf("texel (%d,%d) outside %dx%d texture", x, y, t.width, t.height)
	}
	return t.texels[y*t.width+x], nil
}

func (t *Texture) String() string {
	return jsonString(struct {
		Type   string `json:"type"`
		Name   string `json:"name"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}{"Texture", t.Name(), t.width, t.height})
}
