package scene

import "github.com/lumen3d/lumen/internal/vecmath"

// Transform places an entity in world space.
type Transform struct {
	Meta

	position vecmath.Vec3
	rotation vecmath.Quat
	scale    vecmath.Vec3
}

// TransformStruct is the flat projection of a Transform: the composed
// local-to-world matrix and its inverse for the renderer.
type TransformStruct struct {
	LocalToWorld vecmath.Mat4
	WorldToLocal vecmath.Mat4
}

func projectTransform(t *Transform, s *TransformStruct) {
	s.LocalToWorld = t.Matrix()
	s.WorldToLocal = s.LocalToWorld.AffineInverse()
}

// initTransform applies the identity placement.
func initTransform(t *Transform) error {
	t.rotation = vecmath.QuatIdentity()
	t.scale = vecmath.V3(1, 1, 1)
	return nil
}

func newTransformRegistry(capacity int) *Registry[Transform, *Transform, TransformStruct] {
	return NewRegistry[Transform, *Transform, TransformStruct]("Transform", capacity, projectTransform)
}

// SetPosition sets the world-space translation.
func (t *Transform) SetPosition(p vecmath.Vec3) error {
	return t.edit(func() { t.position = p })
}

func (t *Transform) Position() vecmath.Vec3 { return t.position }

// SetRotation sets the orientation. The quaternion is normalized.
func (t *Transform) SetRotation(q vecmath.Quat) error {
	return t.edit(func() { t.rotation = q.Normalize() })
}

func (t *Transform) Rotation() vecmath.Quat { return t.rotation }

// SetScale sets the per-axis scale.
func (t *Transform) SetScale(s vecmath.Vec3) error {
	return t.edit(func() { t.scale = s })
}

func (t *Transform) Scale() vecmath.Vec3 { return t.scale }

// Rotate composes an additional rotation onto the current orientation.
func (t *Transform) Rotate(q vecmath.Quat) error {
	return t.edit(func() { t.rotation = q.Mul(t.rotation).Normalize() })
}

// Matrix returns the composed local-to-world matrix.
func (t *Transform) Matrix() vecmath.Mat4 {
	return vecmath.Mat4TRS(t.position, t.rotation, t.scale)
}

func (t *Transform) String() string {
	return jsonString(struct {
		Type     string     `json:"type"`
		Name     string     `json:"name"`
		Position [3]float32 `json:"position"`
		Rotation [4]float32 `json:"rotation"`
		Scale    [3]float32 `json:"scale"`
	}{
		"Transform", t.Name(),
		[3]float32{t.position.X, t.position.Y, t.position.Z},
		[4]float32{t.rotation.X, t.rotation.Y, t.rotation.Z, t.rotation.W},
		[3]float32{t.scale.X, t.scale.Y, t.scale.Z},
	})
}
