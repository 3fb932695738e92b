package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen3d/lumen/internal/vecmath"
)

func TestTextureFromDataValidation(t *testing.T) {
	s := NewScene(Capacities{})

	_, err := s.CreateTextureFromData("bad-dims", 0, 4, nil)
	require.Error(t, err)
	_, err = s.CreateTextureFromData("bad-len", 2, 2, make([]vecmath.Vec4, 3))
	require.Error(t, err)

	// Both failures rolled the create back.
	assert.Equal(t, 0, s.Textures.LiveCount())
	assert.Nil(t, s.Textures.Get("bad-dims"))
	assert.Nil(t, s.Textures.Get("bad-len"))

	tex, err := s.CreateTextureFromData("ok", 2, 2, make([]vecmath.Vec4, 4))
	require.NoError(t, err)
	assert.Equal(t, 0, tex.ID())
	assert.Empty(t, tex.Source())
}

func TestTextureTexelAccess(t *testing.T) {
	s := NewScene(Capacities{})

	texels := []vecmath.Vec4{
		vecmath.V4(1, 0, 0, 1), vecmath.V4(0, 1, 0, 1),
		vecmath.V4(0, 0, 1, 1), vecmath.V4(1, 1, 1, 1),
	}
	tex, err := s.CreateTextureFromData("quad", 2, 2, texels)
	require.NoError(t, err)

	got, err := tex.Texel(1, 0)
	require.NoError(t, err)
	assert.Equal(t, vecmath.V4(0, 1, 0, 1), got)

	got, err = tex.Texel(0, 1)
	require.NoError(t, err)
	assert.Equal(t, vecmath.V4(0, 0, 1, 1), got)

	_, err = tex.Texel(2, 0)
	require.Error(t, err)
	_, err = tex.Texel(0, -1)
	require.Error(t, err)
}

func TestTextureTexelsReturnsCopy(t *testing.T) {
	s := NewScene(Capacities{})
	tex, err := s.CreateTextureFromData("t", 1, 1, []vecmath.Vec4{vecmath.V4(0.5, 0.5, 0.5, 1)})
	require.NoError(t, err)

	out := tex.Texels()
	out[0] = vecmath.V4(9, 9, 9, 9)

	got, err := tex.Texel(0, 0)
	require.NoError(t, err)
	assert.Equal(t, vecmath.V4(0.5, 0.5, 0.5, 1), got)
}

func TestComponentStringIsJSON(t *testing.T) {
	s := NewScene(Capacities{})
	l, err := s.CreateLight("sun")
	require.NoError(t, err)

	out := l.String()
	assert.Contains(t, out, `"type": "Light"`)
	assert.Contains(t, out, `"name": "sun"`)
}
