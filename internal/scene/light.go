package scene

import (
	"github.com/chewxy/math32"

	"github.com/lumen3d/lumen/internal/vecmath"
)

// lightFlagSurfaceArea lets the light's surface area scale its intensity.
const lightFlagSurfaceArea = 1 << 0

// Light is an emissive component. Attach it to an entity with a transform to
// illuminate the scene.
type Light struct {
	Meta

	color        vecmath.Vec3
	temperature  float32 // kelvin; 0 when the color was set directly
	intensity    float32
	exposure     float32
	falloff      float32
	surfaceArea  bool
	colorTexture int // texture ID, -1 = constant color
}

// LightStruct is the flat projection of a Light consumed by the renderer.
type LightStruct struct {
	ColorR, ColorG, ColorB float32
	Intensity              float32
	Exposure               float32
	Falloff                float32
	ColorTextureID         int32
	Flags                  uint32
}

func projectLight(l *Light, s *LightStruct) {
	s.ColorR, s.ColorG, s.ColorB = l.color.X, l.color.Y, l.color.Z
	s.Intensity = l.intensity
	s.Exposure = l.exposure
	s.Falloff = l.falloff
	s.ColorTextureID = int32(l.colorTexture)
	s.Flags = 0
	if l.surfaceArea {
		s.Flags |= lightFlagSurfaceArea
	}
}

// initLight puts a fresh light into its documented default state: white,
// unit intensity, quadratic falloff, no texture.
func initLight(l *Light) error {
	l.color = vecmath.V3(1, 1, 1)
	l.intensity = 1
	l.falloff = 2
	l.colorTexture = -1
	return nil
}

func newLightRegistry(capacity int) *Registry[Light, *Light, LightStruct] {
	return NewRegistry[Light, *Light, LightStruct]("Light", capacity, projectLight)
}

// SetColor sets the constant RGB emission color (components in [0, 1]).
func (l *Light) SetColor(c vecmath.Vec3) error {
	return l.edit(func() {
		l.color = c.Clamp01()
		l.temperature = 0
	})
}

// Color returns the constant emission color. Meaningless while a color
// texture is attached.
func (l *Light) Color() vecmath.Vec3 { return l.color }

// SetTemperature derives the emission color from a black-body temperature.
// Typical values range from 1000K (very warm) to 12000K (very cold).
func (l *Light) SetTemperature(kelvin float32) error {
	return l.edit(func() {
		l.temperature = kelvin
		l.color = KelvinToRGB(kelvin)
	})
}

// Temperature returns the kelvin value last set, or 0 if the color was set
// directly.
func (l *Light) Temperature() float32 { return l.temperature }

// SetIntensity sets how powerful the light is in emitting its color.
func (l *Light) SetIntensity(v float32) error {
	return l.edit(func() { l.intensity = v })
}

func (l *Light) Intensity() float32 { return l.intensity }

// SetExposure scales emitted energy by a power of two: +1 doubles it,
// -1 halves it, 0 leaves the intensity unmodified.
func (l *Light) SetExposure(v float32) error {
	return l.edit(func() { l.exposure = v })
}

func (l *Light) Exposure() float32 { return l.exposure }

// SetFalloff sets the distance falloff exponent: 2 is physically correct,
// 1 is a linear falloff, 0 disables distance falloff.
func (l *Light) SetFalloff(v float32) error {
	return l.edit(func() { l.falloff = v })
}

func (l *Light) Falloff() float32 { return l.falloff }

// UseSurfaceArea controls whether the light's surface area affects its
// overall intensity.
func (l *Light) UseSurfaceArea(use bool) error {
	return l.edit(func() { l.surfaceArea = use })
}

// SetColorTexture drives the emission color from an RGB texture, overriding
// the constant color. Passing nil detaches the texture.
func (l *Light) SetColorTexture(t *Texture) error {
	return l.edit(func() {
		if t == nil || !t.IsInitialized() {
			l.colorTexture = -1
			return
		}
		l.colorTexture = t.ID()
	})
}

// ClearColorTexture reverts to the constant emission color.
func (l *Light) ClearColorTexture() error {
	return l.edit(func() { l.colorTexture = -1 })
}

// ColorTextureID returns the attached texture's ID, or -1.
func (l *Light) ColorTextureID() int { return l.colorTexture }

func (l *Light) String() string {
	return jsonString(struct {
		Type        string     `json:"type"`
		Name        string     `json:"name"`
		Color       [3]float32 `json:"color"`
		Temperature float32    `json:"temperature,omitempty"`
		Intensity   float32    `json:"intensity"`
		Exposure    float32    `json:"exposure"`
		Falloff     float32    `json:"falloff"`
	}{"Light", l.Name(), [3]float32{l.color.X, l.color.Y, l.color.Z}, l.temperature, l.intensity, l.exposure, l.falloff})
}

// KelvinToRGB approximates the color of a black body at the given
// temperature, clamped to [1000K, 12000K], as normalized RGB.
func KelvinToRGB(kelvin float32) vecmath.Vec3 {
	k := math32.Min(math32.Max(kelvin, 1000), 12000) / 100

	var r, g, b float32
	if k <= 66 {
		r = 255
		g = 99.4708025861*math32.Log(k) - 161.1195681661
	} else {
		r = 329.698727446 * math32.Pow(k-60, -0.1332047592)
		g = 288.1221695283 * math32.Pow(k-60, -0.0755148492)
	}
	switch {
	case k >= 66:
		b = 255
	case k <= 19:
		b = 0
	default:
		b = 138.5177312231*math32.Log(k-10) - 305.0447927307
	}
	return vecmath.V3(r/255, g/255, b/255).Clamp01()
}
