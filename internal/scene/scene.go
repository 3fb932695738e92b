// Package scene implements the component registries of the scene-description
// layer: fixed-capacity, ID-stable pools of named components (lights,
// textures, volumes, materials, transforms, entities) with dirty tracking
// and index-aligned flat struct tables for the rendering backend.
//
// One goroutine (the scripting client) mutates components while another (the
// render sync pass) drains dirty sets and reads the struct tables once per
// frame; every kind's edit mutex linearizes the two.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumen3d/lumen/internal/assets"
	"github.com/lumen3d/lumen/internal/vecmath"
)

// Capacities fixes the pool size of each component kind. Pools are allocated
// once at scene construction and never resize.
type Capacities struct {
	Lights     int
	Textures   int
	Volumes    int
	Materials  int
	Transforms int
	Entities   int
}

// DefaultCapacities mirrors the table sizes the renderer reserves buffers
// for by default.
func DefaultCapacities() Capacities {
	return Capacities{
		Lights:     512,
		Textures:   1024,
		Volumes:    128,
		Materials:  2048,
		Transforms: 4096,
		Entities:   4096,
	}
}

func (c Capacities) withDefaults() Capacities {
	d := DefaultCapacities()
	if c.Lights <= 0 {
		c.Lights = d.Lights
	}
	if c.Textures <= 0 {
		c.Textures = d.Textures
	}
	if c.Volumes <= 0 {
		c.Volumes = d.Volumes
	}
	if c.Materials <= 0 {
		c.Materials = d.Materials
	}
	if c.Transforms <= 0 {
		c.Transforms = d.Transforms
	}
	if c.Entities <= 0 {
		c.Entities = d.Entities
	}
	return c
}

// Scene owns one registry per component kind. Independent scenes share
// nothing; tear-down is letting the Scene go out of scope.
type Scene struct {
	Lights     *Registry[Light, *Light, LightStruct]
	Textures   *Registry[Texture, *Texture, TextureStruct]
	Volumes    *Registry[Volume, *Volume, VolumeStruct]
	Materials  *Registry[Material, *Material, MaterialStruct]
	Transforms *Registry[Transform, *Transform, TransformStruct]
	Entities   *Registry[Entity, *Entity, EntityStruct]
}

// NewScene allocates every kind's pool and mirror. Zero or negative
// capacities fall back to the defaults.
func NewScene(c Capacities) *Scene {
	c = c.withDefaults()
	return &Scene{
		Lights:     newLightRegistry(c.Lights),
		Textures:   newTextureRegistry(c.Textures),
		Volumes:    newVolumeRegistry(c.Volumes),
		Materials:  newMaterialRegistry(c.Materials),
		Transforms: newTransformRegistry(c.Transforms),
		Entities:   newEntityRegistry(c.Entities),
	}
}

// Tables returns every kind's registry in sync order. Entities go last so a
// frame that created an entity together with its parts uploads the parts
// first.
func (s *Scene) Tables() []Table {
	return []Table{s.Textures, s.Transforms, s.Materials, s.Lights, s.Volumes, s.Entities}
}

// AnyDirty reports whether any kind has pending changes. The backend calls
// this once per frame, before UpdateComponents.
func (s *Scene) AnyDirty() bool {
	for _, t := range s.Tables() {
		if t.AnyDirty() {
			return true
		}
	}
	return false
}

// UpdateComponents drains every kind's dirty set into its struct mirror.
func (s *Scene) UpdateComponents() {
	for _, t := range s.Tables() {
		t.UpdateComponents()
	}
}

// ClearAll removes every component of every kind.
func (s *Scene) ClearAll() {
	for _, t := range s.Tables() {
		t.Clear()
	}
}

// LiveCount returns the total number of initialized components.
func (s *Scene) LiveCount() int {
	n := 0
	for _, t := range s.Tables() {
		n += t.LiveCount()
	}
	return n
}

// OnEdit installs one observer on every kind's registry. See Table.OnEdit
// for the calling contract.
func (s *Scene) OnEdit(fn func(Event)) {
	for _, t := range s.Tables() {
		t.OnEdit(fn)
	}
}

// CreateLight constructs a white unit-intensity light with quadratic falloff.
func (s *Scene) CreateLight(name string) (*Light, error) {
	return s.Lights.Create(name, initLight)
}

// CreateLightFromTemperature constructs a light whose color approximates a
// black body at the given temperature.
func (s *Scene) CreateLightFromTemperature(name string, kelvin, intensity float32) (*Light, error) {
	return s.Lights.Create(name, func(l *Light) error {
		if err := initLight(l); err != nil {
			return err
		}
		l.temperature = kelvin
		l.color = KelvinToRGB(kelvin)
		l.intensity = intensity
		return nil
	})
}

// CreateLightFromRGB constructs a light emitting the given color.
func (s *Scene) CreateLightFromRGB(name string, color vecmath.Vec3, intensity float32) (*Light, error) {
	return s.Lights.Create(name, func(l *Light) error {
		if err := initLight(l); err != nil {
			return err
		}
		l.color = color.Clamp01()
		l.intensity = intensity
		return nil
	})
}

// CreateTexture constructs an empty texture to be filled later.
func (s *Scene) CreateTexture(name string) (*Texture, error) {
	return s.Textures.Create(name, nil)
}

// CreateTextureFromData constructs a texture from a row-major flattened
// slice of RGBA texels.
func (s *Scene) CreateTextureFromData(name string, width, height int, texels []vecmath.Vec4) (*Texture, error) {
	return s.Textures.Create(name, func(t *Texture) error {
		return t.setData(width, height, texels)
	})
}

// createTextureLoaded commits decoded texels; source records provenance for
// scene snapshots.
func (s *Scene) createTextureLoaded(name, source string, width, height int, texels []vecmath.Vec4) (*Texture, error) {
	return s.Textures.Create(name, func(t *Texture) error {
		if err := t.setData(width, height, texels); err != nil {
			return err
		}
		t.source = source
		return nil
	})
}

// CreateTextureFromImage constructs a texture from an image file. Supported
// formats: PNG, JPEG, GIF, BMP, TIFF. The file is decoded before the pool's
// mutex is taken, so a slow read never blocks other scene edits.
func (s *Scene) CreateTextureFromImage(name, path string) (*Texture, error) {
	texels, w, h, err := assets.LoadImageRGBA(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("texture %q from %s: %w", name, path, ErrFileNotFound)
		}
		return nil, fmt.Errorf("texture %q from %s: %v: %w", name, path, err, ErrUnsupportedFormat)
	}
	return s.createTextureLoaded(name, path, w, h, texels)
}

// CreateVolumeFromFile constructs a volume from a NanoVDB file. Only the
// .nvdb container format is supported. Like the texture loader, all file
// I/O happens before the pool's mutex is taken.
func (s *Scene) CreateVolumeFromFile(name, path string) (*Volume, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".nvdb" {
		return nil, fmt.Errorf("volume %q from %s: extension %q: %w", name, path, ext, ErrUnsupportedFormat)
	}

	metas, err := assets.ReadGridMetaData(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("volume %q from %s: %w", name, path, ErrFileNotFound)
		}
		return nil, fmt.Errorf("volume %q from %s: %v: %w", name, path, err, ErrUnsupportedFormat)
	}
	if len(metas) == 0 {
		return nil, fmt.Errorf("volume %q from %s: no grids: %w", name, path, ErrUnsupportedFormat)
	}

	grid, err := assets.ReadGrid(path, metas[0].Name)
	if err != nil {
		return nil, fmt.Errorf("volume %q from %s: %v: %w", name, path, err, ErrUnsupportedFormat)
	}

	return s.Volumes.Create(name, func(v *Volume) error {
		v.grid = grid
		v.scale = 1
		v.source = path
		return nil
	})
}

// CreateMaterial constructs a material with the neutral default surface.
func (s *Scene) CreateMaterial(name string) (*Material, error) {
	return s.Materials.Create(name, initMaterial)
}

// CreateTransform constructs an identity transform.
func (s *Scene) CreateTransform(name string) (*Transform, error) {
	return s.Transforms.Create(name, initTransform)
}

// CreateEntity constructs a visible entity with no attached components.
func (s *Scene) CreateEntity(name string) (*Entity, error) {
	return s.Entities.Create(name, initEntity)
}
