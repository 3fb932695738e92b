package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/image/bmp"
)

func TestLoadImageRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	img.Set(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	path := filepath.Join(t.TempDir(), "quad.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	texels, w, h, err := LoadImageRGBA(path)
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
	require.Len(t, texels, 4)

	// Row-major, top-left origin.
	assert.InDelta(t, 1.0, texels[0].X, 0.01)
	assert.InDelta(t, 0.0, texels[0].Y, 0.01)
	assert.InDelta(t, 1.0, texels[1].Y, 0.01)
	assert.InDelta(t, 1.0, texels[2].Z, 0.01)
	assert.InDelta(t, 1.0, texels[3].X, 0.01)
	for _, tx := range texels {
		assert.InDelta(t, 1.0, tx.W, 0.01)
	}
}

func TestLoadImageRGBABMP(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(80 * x), A: 255})
	}
	path := filepath.Join(t.TempDir(), "strip.bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, img))
	require.NoError(t, f.Close())

	texels, w, h, err := LoadImageRGBA(path)
	require.NoError(t, err)
	assert.Equal(t, 3, w)
	assert.Equal(t, 1, h)
	assert.InDelta(t, 160.0/255, texels[2].X, 0.01)
}

func TestLoadImageRGBAErrors(t *testing.T) {
	_, _, _, err := LoadImageRGBA(filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "noise.png")
	require.NoError(t, os.WriteFile(path, []byte{0xde, 0xad, 0xbe, 0xef}, 0o644))
	_, _, _, err = LoadImageRGBA(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, os.ErrNotExist)
}
