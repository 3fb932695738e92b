package scene

import "github.com/lumen3d/lumen/internal/vecmath"

// Material describes the surface response of an entity: a principled subset
// of base color, roughness, metallic, index of refraction and transmission.
type Material struct {
	Meta

	baseColor        vecmath.Vec3
	roughness        float32
	metallic         float32
	ior              float32
	transmission     float32
	baseColorTexture int // texture ID, -1 = constant base color
}

// MaterialStruct is the flat projection of a Material.
type MaterialStruct struct {
	BaseColorR, BaseColorG, BaseColorB float32
	Roughness                          float32
	Metallic                           float32
	IOR                                float32
	Transmission                       float32
	BaseColorTextureID                 int32
}

func projectMaterial(m *Material, s *MaterialStruct) {
	s.BaseColorR, s.BaseColorG, s.BaseColorB = m.baseColor.X, m.baseColor.Y, m.baseColor.Z
	s.Roughness = m.roughness
	s.Metallic = m.metallic
	s.IOR = m.ior
	s.Transmission = m.transmission
	s.BaseColorTextureID = int32(m.baseColorTexture)
}

// initMaterial applies the neutral gray default surface.
func initMaterial(m *Material) error {
	m.baseColor = vecmath.V3(0.8, 0.8, 0.8)
	m.roughness = 0.5
	m.ior = 1.45
	m.baseColorTexture = -1
	return nil
}

func newMaterialRegistry(capacity int) *Registry[Material, *Material, MaterialStruct] {
	return NewRegistry[Material, *Material, MaterialStruct]("Material", capacity, projectMaterial)
}

// SetBaseColor sets the albedo (components in [0, 1]).
func (m *Material) SetBaseColor(c vecmath.Vec3) error {
	return m.edit(func() { m.baseColor = c.Clamp01() })
}

func (m *Material) BaseColor() vecmath.Vec3 { return m.baseColor }

// SetRoughness sets microfacet roughness in [0, 1].
func (m *Material) SetRoughness(v float32) error {
	return m.edit(func() { m.roughness = clampUnit(v) })
}

func (m *Material) Roughness() float32 { return m.roughness }

// SetMetallic sets the metalness blend in [0, 1].
func (m *Material) SetMetallic(v float32) error {
	return m.edit(func() { m.metallic = clampUnit(v) })
}

func (m *Material) Metallic() float32 { return m.metallic }

// SetIOR sets the index of refraction used for dielectrics.
func (m *Material) SetIOR(v float32) error {
	return m.edit(func() { m.ior = v })
}

func (m *Material) IOR() float32 { return m.ior }

// SetTransmission sets the transmissive blend in [0, 1].
func (m *Material) SetTransmission(v float32) error {
	return m.edit(func() { m.transmission = clampUnit(v) })
}

func (m *Material) Transmission() float32 { return m.transmission }

// SetBaseColorTexture drives the albedo from a texture. Passing nil detaches.
func (m *Material) SetBaseColorTexture(t *Texture) error {
	return m.edit(func() {
		if t == nil || !t.IsInitialized() {
			m.baseColorTexture = -1
			return
		}
		m.baseColorTexture = t.ID()
	})
}

// BaseColorTextureID returns the attached texture's ID, or -1.
func (m *Material) BaseColorTextureID() int { return m.baseColorTexture }

func (m *Material) String() string {
	return jsonString(struct {
		Type         string     `json:"type"`
		Name         string     `json:"name"`
		BaseColor    [3]float32 `json:"baseColor"`
		Roughness    float32    `json:"roughness"`
		Metallic     float32    `json:"metallic"`
		IOR          float32    `json:"ior"`
		Transmission float32    `json:"transmission"`
	}{"Material", m.Name(), [3]float32{m.baseColor.X, m.baseColor.Y, m.baseColor.Z}, m.roughness, m.metallic, m.ior, m.transmission})
}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
