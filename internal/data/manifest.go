// Package data loads declarative scene manifests: YAML tables of component
// definitions applied to a scene before any script runs, and snapshots of a
// live scene in the same shape for the revision store.
package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lumen3d/lumen/internal/scene"
	"github.com/lumen3d/lumen/internal/vecmath"
)

// Manifest is a declarative scene description. Kinds are applied in
// dependency order: textures, transforms, materials, lights, volumes,
// entities.
type Manifest struct {
	Textures   []TextureDef   `yaml:"textures,omitempty"`
	Transforms []TransformDef `yaml:"transforms,omitempty"`
	Materials  []MaterialDef  `yaml:"materials,omitempty"`
	Lights     []LightDef     `yaml:"lights,omitempty"`
	Volumes    []VolumeDef    `yaml:"volumes,omitempty"`
	Entities   []EntityDef    `yaml:"entities,omitempty"`
}

type TextureDef struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type TransformDef struct {
	Name     string    `yaml:"name"`
	Position []float32 `yaml:"position,omitempty"` // [x,y,z]
	Scale    []float32 `yaml:"scale,omitempty"`    // [x,y,z]
	Rotation []float32 `yaml:"rotation,omitempty"` // quaternion [x,y,z,w]
}

type MaterialDef struct {
	Name             string    `yaml:"name"`
	BaseColor        []float32 `yaml:"base_color,omitempty"` // [r,g,b]
	Roughness        *float32  `yaml:"roughness,omitempty"`
	Metallic         *float32  `yaml:"metallic,omitempty"`
	IOR              *float32  `yaml:"ior,omitempty"`
	Transmission     *float32  `yaml:"transmission,omitempty"`
	BaseColorTexture string    `yaml:"base_color_texture,omitempty"`
}

type LightDef struct {
	Name        string    `yaml:"name"`
	Color       []float32 `yaml:"color,omitempty"`       // [r,g,b]; wins over temperature
	Temperature float32   `yaml:"temperature,omitempty"` // kelvin
	Intensity   *float32  `yaml:"intensity,omitempty"`
	Exposure    float32   `yaml:"exposure,omitempty"`
	Falloff     *float32  `yaml:"falloff,omitempty"`
}

type VolumeDef struct {
	Name  string   `yaml:"name"`
	Path  string   `yaml:"path"`
	Scale *float32 `yaml:"scale,omitempty"`
}

type EntityDef struct {
	Name      string `yaml:"name"`
	Transform string `yaml:"transform,omitempty"`
	Material  string `yaml:"material,omitempty"`
	Light     string `yaml:"light,omitempty"`
	Volume    string `yaml:"volume,omitempty"`
	Visible   *bool  `yaml:"visible,omitempty"`
}

// Load reads a manifest from a YAML file.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Apply creates every component the manifest defines. Relative asset paths
// are resolved against assetsDir. Application stops at the first error.
func (m *Manifest) Apply(s *scene.Scene, assetsDir string) error {
	for _, d := range m.Textures {
		var err error
		if d.Path == "" {
			// snapshot of a generated texture: recreate the slot, data is
			// re-filled by whoever generated it
			_, err = s.CreateTexture(d.Name)
		} else {
			_, err = s.CreateTextureFromImage(d.Name, resolve(assetsDir, d.Path))
		}
		if err != nil {
			return err
		}
	}
	for _, d := range m.Transforms {
		if err := applyTransform(s, d); err != nil {
			return err
		}
	}
	for _, d := range m.Materials {
		if err := applyMaterial(s, d); err != nil {
			return err
		}
	}
	for _, d := range m.Lights {
		if err := applyLight(s, d); err != nil {
			return err
		}
	}
	for _, d := range m.Volumes {
		v, err := s.CreateVolumeFromFile(d.Name, resolve(assetsDir, d.Path))
		if err != nil {
			return err
		}
		if d.Scale != nil {
			if err := v.SetScale(*d.Scale); err != nil {
				return err
			}
		}
	}
	for _, d := range m.Entities {
		if err := applyEntity(s, d); err != nil {
			return err
		}
	}
	return nil
}

func applyTransform(s *scene.Scene, d TransformDef) error {
	t, err := s.CreateTransform(d.Name)
	if err != nil {
		return err
	}
	if v, ok := vec3(d.Position); ok {
		if err := t.SetPosition(v); err != nil {
			return err
		}
	}
	if v, ok := vec3(d.Scale); ok {
		if err := t.SetScale(v); err != nil {
			return err
		}
	}
	if len(d.Rotation) == 4 {
		q := vecmath.Quat{X: d.Rotation[0], Y: d.Rotation[1], Z: d.Rotation[2], W: d.Rotation[3]}
		if err := t.SetRotation(q); err != nil {
			return err
		}
	}
	return nil
}

func applyMaterial(s *scene.Scene, d MaterialDef) error {
	mat, err := s.CreateMaterial(d.Name)
	if err != nil {
		return err
	}
	if v, ok := vec3(d.BaseColor); ok {
		if err := mat.SetBaseColor(v); err != nil {
			return err
		}
	}
	for _, set := range []struct {
		val *float32
		fn  func(float32) error
	}{
		{d.Roughness, mat.SetRoughness},
		{d.Metallic, mat.SetMetallic},
		{d.IOR, mat.SetIOR},
		{d.Transmission, mat.SetTransmission},
	} {
		if set.val != nil {
			if err := set.fn(*set.val); err != nil {
				return err
			}
		}
	}
	if d.BaseColorTexture != "" {
		tex := s.Textures.Get(d.BaseColorTexture)
		if tex == nil {
			return fmt.Errorf("material %q: texture %q not in manifest", d.Name, d.BaseColorTexture)
		}
		if err := mat.SetBaseColorTexture(tex); err != nil {
			return err
		}
	}
	return nil
}

func applyLight(s *scene.Scene, d LightDef) error {
	intensity := float32(1)
	if d.Intensity != nil {
		intensity = *d.Intensity
	}

	var l *scene.Light
	var err error
	if v, ok := vec3(d.Color); ok {
		l, err = s.CreateLightFromRGB(d.Name, v, intensity)
	} else if d.Temperature > 0 {
		l, err = s.CreateLightFromTemperature(d.Name, d.Temperature, intensity)
	} else {
		l, err = s.CreateLight(d.Name)
		if err == nil {
			err = l.SetIntensity(intensity)
		}
	}
	if err != nil {
		return err
	}
	if d.Exposure != 0 {
		if err := l.SetExposure(d.Exposure); err != nil {
			return err
		}
	}
	if d.Falloff != nil {
		if err := l.SetFalloff(*d.Falloff); err != nil {
			return err
		}
	}
	return nil
}

func applyEntity(s *scene.Scene, d EntityDef) error {
	e, err := s.CreateEntity(d.Name)
	if err != nil {
		return err
	}
	if d.Transform != "" {
		t := s.Transforms.Get(d.Transform)
		if t == nil {
			return fmt.Errorf("entity %q: transform %q not in manifest", d.Name, d.Transform)
		}
		if err := e.SetTransform(t); err != nil {
			return err
		}
	}
	if d.Material != "" {
		mat := s.Materials.Get(d.Material)
		if mat == nil {
			return fmt.Errorf("entity %q: material %q not in manifest", d.Name, d.Material)
		}
		if err := e.SetMaterial(mat); err != nil {
			return err
		}
	}
	if d.Light != "" {
		l := s.Lights.Get(d.Light)
		if l == nil {
			return fmt.Errorf("entity %q: light %q not in manifest", d.Name, d.Light)
		}
		if err := e.SetLight(l); err != nil {
			return err
		}
	}
	if d.Volume != "" {
		v := s.Volumes.Get(d.Volume)
		if v == nil {
			return fmt.Errorf("entity %q: volume %q not in manifest", d.Name, d.Volume)
		}
		if err := e.SetVolume(v); err != nil {
			return err
		}
	}
	if d.Visible != nil {
		if err := e.SetVisible(*d.Visible); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot exports the live components of a scene as a manifest, the shape
// the revision store persists. Generated textures (no source file) are
// exported by name only; their texel payloads are not serialized.
func Snapshot(s *scene.Scene) *Manifest {
	m := &Manifest{}

	for _, name := range sortedNames(s.Textures.NameToID()) {
		t := s.Textures.Get(name)
		m.Textures = append(m.Textures, TextureDef{Name: name, Path: t.Source()})
	}
	for _, name := range sortedNames(s.Transforms.NameToID()) {
		t := s.Transforms.Get(name)
		p, sc, q := t.Position(), t.Scale(), t.Rotation()
		m.Transforms = append(m.Transforms, TransformDef{
			Name:     name,
			Position: []float32{p.X, p.Y, p.Z},
			Scale:    []float32{sc.X, sc.Y, sc.Z},
			Rotation: []float32{q.X, q.Y, q.Z, q.W},
		})
	}
	for _, name := range sortedNames(s.Materials.NameToID()) {
		mat := s.Materials.Get(name)
		c := mat.BaseColor()
		def := MaterialDef{
			Name:         name,
			BaseColor:    []float32{c.X, c.Y, c.Z},
			Roughness:    ptr(mat.Roughness()),
			Metallic:     ptr(mat.Metallic()),
			IOR:          ptr(mat.IOR()),
			Transmission: ptr(mat.Transmission()),
		}
		if id := mat.BaseColorTextureID(); id >= 0 {
			if tex := s.Textures.GetByID(id); tex != nil {
				def.BaseColorTexture = tex.Name()
			}
		}
		m.Materials = append(m.Materials, def)
	}
	for _, name := range sortedNames(s.Lights.NameToID()) {
		l := s.Lights.Get(name)
		c := l.Color()
		m.Lights = append(m.Lights, LightDef{
			Name:        name,
			Color:       []float32{c.X, c.Y, c.Z},
			Temperature: l.Temperature(),
			Intensity:   ptr(l.Intensity()),
			Exposure:    l.Exposure(),
			Falloff:     ptr(l.Falloff()),
		})
	}
	for _, name := range sortedNames(s.Volumes.NameToID()) {
		v := s.Volumes.Get(name)
		m.Volumes = append(m.Volumes, VolumeDef{Name: name, Path: v.Source(), Scale: ptr(v.Scale())})
	}
	for _, name := range sortedNames(s.Entities.NameToID()) {
		e := s.Entities.Get(name)
		def := EntityDef{Name: name, Visible: ptr(e.Visible())}
		if t := s.Transforms.GetByID(e.TransformID()); t != nil {
			def.Transform = t.Name()
		}
		if mat := s.Materials.GetByID(e.MaterialID()); mat != nil {
			def.Material = mat.Name()
		}
		if l := s.Lights.GetByID(e.LightID()); l != nil {
			def.Light = l.Name()
		}
		if v := s.Volumes.GetByID(e.VolumeID()); v != nil {
			def.Volume = v.Name()
		}
		m.Entities = append(m.Entities, def)
	}
	return m
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

func vec3(v []float32) (vecmath.Vec3, bool) {
	if len(v) != 3 {
		return vecmath.Vec3{}, false
	}
	return vecmath.V3(v[0], v[1], v[2]), true
}

func ptr[T any](v T) *T { return &v }

func sortedNames(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
