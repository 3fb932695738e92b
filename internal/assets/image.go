package assets

import (
	"fmt"
	"image"
	"os"

	// registered decoders for CreateTextureFromImage
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/lumen3d/lumen/internal/vecmath"
)

// LoadImageRGBA decodes an image file into a row-major flattened slice of
// normalized RGBA texels, top-left origin. Channel values are mapped to
// [0, 1]; no color-space conversion is applied.
func LoadImageRGBA(path string) ([]vecmath.Vec4, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	texels := make([]vecmath.Vec4, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			texels = append(texels, vecmath.Vec4{
				X: float32(r) / 0xffff,
				Y: float32(g) / 0xffff,
				Z: float32(b) / 0xffff,
				W: float32(a) / 0xffff,
			})
		}
	}
	return texels, w, h, nil
}
