package scene_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen3d/lumen/internal/assets"
	"github.com/lumen3d/lumen/internal/scene"
	"github.com/lumen3d/lumen/internal/vecmath"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 128, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func writeTestNVDB(t *testing.T, names ...string) string {
	t.Helper()
	grids := make([]*assets.Grid, 0, len(names))
	for i, name := range names {
		grids = append(grids, &assets.Grid{
			Meta: assets.GridMeta{
				Name:         name,
				Type:         assets.GridTypeFloat,
				VoxelCount:   uint64(100 * (i + 1)),
				NodeCounts:   [4]uint32{8, 4, 2, 1},
				WorldBBoxMin: [3]float64{-1, -1, -1},
				WorldBBoxMax: [3]float64{1, 2, 3},
			},
			Data: []byte{1, 2, 3, 4},
		})
	}
	raw, err := assets.Encode(grids...)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "cloud.nvdb")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestSceneTextureFromImage(t *testing.T) {
	s := scene.NewScene(scene.Capacities{})
	path := writeTestPNG(t, 4, 2)

	tex, err := s.CreateTextureFromImage("checker", path)
	require.NoError(t, err)
	assert.Equal(t, 4, tex.Width())
	assert.Equal(t, 2, tex.Height())
	assert.Equal(t, path, tex.Source())

	texel, err := tex.Texel(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, texel.Z, 0.01)
	assert.InDelta(t, 1.0, texel.W, 0.01)

	s.Textures.UpdateComponents()
	m := s.Textures.FrontStructs()[tex.ID()]
	assert.Equal(t, int32(4), m.Width)
	assert.Equal(t, int32(2), m.Height)
}

func TestSceneTextureFromImageErrors(t *testing.T) {
	s := scene.NewScene(scene.Capacities{})

	_, err := s.CreateTextureFromImage("missing", filepath.Join(t.TempDir(), "nope.png"))
	require.ErrorIs(t, err, scene.ErrFileNotFound)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = s.CreateTextureFromImage("garbage", garbage)
	require.ErrorIs(t, err, scene.ErrUnsupportedFormat)

	// Failed loads never consume a slot.
	assert.Equal(t, 0, s.Textures.LiveCount())
}

func TestSceneVolumeFromFile(t *testing.T) {
	s := scene.NewScene(scene.Capacities{})
	path := writeTestNVDB(t, "density", "temperature")

	v, err := s.CreateVolumeFromFile("cloud", path)
	require.NoError(t, err)

	// The first grid in the file wins.
	assert.Equal(t, "float", v.GridType())
	assert.Equal(t, uint32(8), v.NodeCount(0))
	assert.Equal(t, float32(1), v.Scale())
	assert.Equal(t, path, v.Source())
	assert.Equal(t, "density", v.Grid().Meta.Name)

	min, max := v.WorldAabb()
	assert.Equal(t, vecmath.V3(-1, -1, -1), min)
	assert.Equal(t, vecmath.V3(1, 2, 3), max)
}

func TestSceneVolumeFromFileErrors(t *testing.T) {
	s := scene.NewScene(scene.Capacities{})

	_, err := s.CreateVolumeFromFile("v", "grid.vdb")
	require.ErrorIs(t, err, scene.ErrUnsupportedFormat)

	_, err = s.CreateVolumeFromFile("v", filepath.Join(t.TempDir(), "nope.nvdb"))
	require.ErrorIs(t, err, scene.ErrFileNotFound)

	corrupt := filepath.Join(t.TempDir(), "bad.nvdb")
	require.NoError(t, os.WriteFile(corrupt, []byte("nonsense header bytes"), 0o644))
	_, err = s.CreateVolumeFromFile("v", corrupt)
	require.ErrorIs(t, err, scene.ErrUnsupportedFormat)

	assert.Equal(t, 0, s.Volumes.LiveCount())
}

func TestSceneEntityWiring(t *testing.T) {
	s := scene.NewScene(scene.Capacities{})

	tr, err := s.CreateTransform("tr")
	require.NoError(t, err)
	mat, err := s.CreateMaterial("mat")
	require.NoError(t, err)
	l, err := s.CreateLight("l")
	require.NoError(t, err)

	e, err := s.CreateEntity("e")
	require.NoError(t, err)
	assert.Equal(t, -1, e.TransformID())
	assert.True(t, e.Visible())

	require.NoError(t, e.SetTransform(tr))
	require.NoError(t, e.SetMaterial(mat))
	require.NoError(t, e.SetLight(l))

	s.UpdateComponents()
	m := s.Entities.FrontStructs()[e.ID()]
	assert.Equal(t, int32(tr.ID()), m.TransformID)
	assert.Equal(t, int32(mat.ID()), m.MaterialID)
	assert.Equal(t, int32(l.ID()), m.LightID)
	assert.Equal(t, int32(-1), m.VolumeID)

	// Detach with nil.
	require.NoError(t, e.SetMaterial(nil))
	assert.Equal(t, -1, e.MaterialID())

	require.NoError(t, e.SetVisible(false))
	s.UpdateComponents()
	assert.Zero(t, s.Entities.FrontStructs()[e.ID()].Flags)
}

func TestSceneUpdateComponentsCoversAllKinds(t *testing.T) {
	s := scene.NewScene(scene.Capacities{})

	_, err := s.CreateLight("l")
	require.NoError(t, err)
	_, err = s.CreateMaterial("m")
	require.NoError(t, err)
	_, err = s.CreateTransform("t")
	require.NoError(t, err)
	_, err = s.CreateEntity("e")
	require.NoError(t, err)

	assert.True(t, s.AnyDirty())
	s.UpdateComponents()
	assert.False(t, s.AnyDirty())
	assert.Equal(t, 4, s.LiveCount())
}

func TestSceneClearAll(t *testing.T) {
	s := scene.NewScene(scene.Capacities{})

	_, err := s.CreateLight("l")
	require.NoError(t, err)
	_, err = s.CreateEntity("e")
	require.NoError(t, err)
	s.UpdateComponents()

	s.ClearAll()
	assert.Equal(t, 0, s.LiveCount())
	assert.True(t, s.AnyDirty())
	assert.Nil(t, s.Lights.Get("l"))

	s.UpdateComponents()
	assert.False(t, s.AnyDirty())
}

func TestSceneOnEditFansOut(t *testing.T) {
	s := scene.NewScene(scene.Capacities{})

	var got []scene.Event
	s.OnEdit(func(ev scene.Event) { got = append(got, ev) })

	_, err := s.CreateLight("l")
	require.NoError(t, err)
	_, err = s.CreateMaterial("m")
	require.NoError(t, err)
	s.Lights.Remove("l")

	require.Len(t, got, 3)
	assert.Equal(t, scene.OpCreate, got[0].Op)
	assert.Equal(t, "Light", got[0].Kind)
	assert.Equal(t, "Material", got[1].Kind)
	assert.Equal(t, scene.OpRemove, got[2].Op)
}

func TestSceneIndependentScenes(t *testing.T) {
	a := scene.NewScene(scene.Capacities{Lights: 2})
	b := scene.NewScene(scene.Capacities{Lights: 2})

	_, err := a.CreateLight("sun")
	require.NoError(t, err)

	// Same name in a different scene is fine; registries share no state.
	_, err = b.CreateLight("sun")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Lights.LiveCount())
	assert.Equal(t, 1, b.Lights.LiveCount())
}
