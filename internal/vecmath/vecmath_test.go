package vecmath

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func assertVec3InDelta(t *testing.T, want, got Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta)
	assert.InDelta(t, want.Y, got.Y, delta)
	assert.InDelta(t, want.Z, got.Z, delta)
}

func TestVec3Basics(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, 5, 6)

	assert.Equal(t, V3(5, 7, 9), a.Add(b))
	assert.Equal(t, V3(-3, -3, -3), a.Sub(b))
	assert.Equal(t, V3(2, 4, 6), a.Scale(2))
	assert.Equal(t, float32(32), a.Dot(b))
	assert.Equal(t, V3(-3, 6, -3), a.Cross(b))
	assert.Equal(t, float32(5), V3(3, 4, 0).Length())
}

func TestVec3Normalize(t *testing.T) {
	n := V3(0, 3, 4).Normalize()
	assertVec3InDelta(t, V3(0, 0.6, 0.8), n, 1e-6)

	// The zero vector normalizes to itself instead of NaN.
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
}

func TestVec3Clamp01(t *testing.T) {
	assert.Equal(t, V3(1, 0, 0.5), V3(7, -2, 0.5).Clamp01())
}

func TestQuatAxisAngleRotation(t *testing.T) {
	// Quarter turn about Z maps +X to +Y.
	q := QuatFromAxisAngle(V3(0, 0, 1), math32.Pi/2)
	p := Mat4FromQuat(q).TransformPoint(V3(1, 0, 0))
	assertVec3InDelta(t, V3(0, 1, 0), p, 1e-6)
}

func TestQuatMulComposes(t *testing.T) {
	half := QuatFromAxisAngle(V3(0, 0, 1), math32.Pi/4)
	full := half.Mul(half)
	want := QuatFromAxisAngle(V3(0, 0, 1), math32.Pi/2)

	assert.InDelta(t, want.X, full.X, 1e-6)
	assert.InDelta(t, want.Y, full.Y, 1e-6)
	assert.InDelta(t, want.Z, full.Z, 1e-6)
	assert.InDelta(t, want.W, full.W, 1e-6)
}

func TestMat4IdentityIsNeutral(t *testing.T) {
	id := Mat4Identity()
	m := Mat4TRS(V3(1, 2, 3), QuatFromAxisAngle(V3(1, 1, 0).Normalize(), 0.5), V3(2, 1, 1))

	assert.Equal(t, m, id.Mul(m))
	assert.Equal(t, m, m.Mul(id))
	assert.Equal(t, V3(9, -8, 7), id.TransformPoint(V3(9, -8, 7)))
}

func TestMat4TRSOrder(t *testing.T) {
	// TRS scales first, then rotates, then translates.
	m := Mat4TRS(V3(10, 0, 0), QuatFromAxisAngle(V3(0, 0, 1), math32.Pi/2), V3(2, 2, 2))
	p := m.TransformPoint(V3(1, 0, 0))
	assertVec3InDelta(t, V3(10, 2, 0), p, 1e-5)
}

func TestMat4AffineInverse(t *testing.T) {
	m := Mat4TRS(V3(3, -1, 4), QuatFromAxisAngle(V3(0, 1, 0), 1.1), V3(2, 3, 0.5))
	inv := m.AffineInverse()

	p := V3(0.5, -2, 7)
	got := inv.TransformPoint(m.TransformPoint(p))
	assertVec3InDelta(t, p, got, 1e-4)
}

func TestMat4Transpose(t *testing.T) {
	m := Mat4TRS(V3(1, 2, 3), QuatIdentity(), V3(1, 1, 1))
	tt := m.Transpose().Transpose()
	assert.Equal(t, m, tt)
}
