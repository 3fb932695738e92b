package scripting

import (
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/lumen3d/lumen/internal/scene"
	"github.com/lumen3d/lumen/internal/vecmath"
)

// Bindings exposes one scene to Lua. Every mutating call goes through the
// registries' factory facade, so script and render goroutines stay properly
// serialized.
type Bindings struct {
	Scene     *scene.Scene
	AssetsDir string // relative asset paths in scripts resolve against this
	Log       *zap.Logger
}

// install registers the scene API modules on the VM.
func (b *Bindings) install(vm *lua.LState) {
	register := func(name string, fns map[string]lua.LGFunction) {
		mod := vm.NewTable()
		vm.SetFuncs(mod, fns)
		vm.SetGlobal(name, mod)
	}

	register("light", map[string]lua.LGFunction{
		"create":           b.lightCreate,
		"from_temperature": b.lightFromTemperature,
		"from_rgb":         b.lightFromRGB,
		"set_color":        b.lightSetColor,
		"set_temperature":  b.lightSetTemperature,
		"set_intensity":    b.lightSetIntensity,
		"set_exposure":     b.lightSetExposure,
		"set_falloff":      b.lightSetFalloff,
		"set_texture":      b.lightSetTexture,
		"remove":           remover(b, func(s *scene.Scene) removerFn { return s.Lights.Remove }),
		"exists":           exister(b, func(s *scene.Scene) existsFn { return func(n string) bool { return s.Lights.Get(n) != nil } }),
	})

	register("texture", map[string]lua.LGFunction{
		"create":     b.textureCreate,
		"from_image": b.textureFromImage,
		"size":       b.textureSize,
		"remove":     remover(b, func(s *scene.Scene) removerFn { return s.Textures.Remove }),
		"exists":     exister(b, func(s *scene.Scene) existsFn { return func(n string) bool { return s.Textures.Get(n) != nil } }),
	})

	register("volume", map[string]lua.LGFunction{
		"from_file": b.volumeFromFile,
		"set_scale": b.volumeSetScale,
		"grid_type": b.volumeGridType,
		"remove":    remover(b, func(s *scene.Scene) removerFn { return s.Volumes.Remove }),
		"exists":    exister(b, func(s *scene.Scene) existsFn { return func(n string) bool { return s.Volumes.Get(n) != nil } }),
	})

	register("material", map[string]lua.LGFunction{
		"create":           b.materialCreate,
		"set_base_color":   b.materialSetBaseColor,
		"set_roughness":    b.materialSetRoughness,
		"set_metallic":     b.materialSetMetallic,
		"set_ior":          b.materialSetIOR,
		"set_transmission": b.materialSetTransmission,
		"set_texture":      b.materialSetTexture,
		"remove":           remover(b, func(s *scene.Scene) removerFn { return s.Materials.Remove }),
		"exists":           exister(b, func(s *scene.Scene) existsFn { return func(n string) bool { return s.Materials.Get(n) != nil } }),
	})

	register("transform", map[string]lua.LGFunction{
		"create":       b.transformCreate,
		"set_position": b.transformSetPosition,
		"set_scale":    b.transformSetScale,
		"rotate":       b.transformRotate,
		"remove":       remover(b, func(s *scene.Scene) removerFn { return s.Transforms.Remove }),
		"exists":       exister(b, func(s *scene.Scene) existsFn { return func(n string) bool { return s.Transforms.Get(n) != nil } }),
	})

	register("entity", map[string]lua.LGFunction{
		"create":        b.entityCreate,
		"set_transform": b.entitySetTransform,
		"set_material":  b.entitySetMaterial,
		"set_light":     b.entitySetLight,
		"set_volume":    b.entitySetVolume,
		"set_visible":   b.entitySetVisible,
		"remove":        remover(b, func(s *scene.Scene) removerFn { return s.Entities.Remove }),
		"exists":        exister(b, func(s *scene.Scene) existsFn { return func(n string) bool { return s.Entities.Get(n) != nil } }),
	})

	register("scene", map[string]lua.LGFunction{
		"any_dirty": b.sceneAnyDirty,
		"stats":     b.sceneStats,
		"clear":     b.sceneClear,
	})
}

type removerFn = func(string)
type existsFn = func(string) bool

func remover(b *Bindings, pick func(*scene.Scene) removerFn) lua.LGFunction {
	return func(L *lua.LState) int {
		pick(b.Scene)(L.CheckString(1))
		return 0
	}
}

func exister(b *Bindings, pick func(*scene.Scene) existsFn) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LBool(pick(b.Scene)(L.CheckString(1))))
		return 1
	}
}

// fail aborts the current Lua call with the Go error's message.
func (b *Bindings) fail(L *lua.LState, err error) int {
	if b.Log != nil {
		b.Log.Debug("script call failed", zap.Error(err))
	}
	L.RaiseError("%s", err.Error())
	return 0
}

func (b *Bindings) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || b.AssetsDir == "" {
		return path
	}
	return filepath.Join(b.AssetsDir, path)
}

// --- light ---

func (b *Bindings) lightCreate(L *lua.LState) int {
	if _, err := b.Scene.CreateLight(L.CheckString(1)); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) lightFromTemperature(L *lua.LState) int {
	name := L.CheckString(1)
	kelvin := float32(L.CheckNumber(2))
	intensity := float32(L.CheckNumber(3))
	if _, err := b.Scene.CreateLightFromTemperature(name, kelvin, intensity); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) lightFromRGB(L *lua.LState) int {
	name := L.CheckString(1)
	color := vecmath.V3(float32(L.CheckNumber(2)), float32(L.CheckNumber(3)), float32(L.CheckNumber(4)))
	intensity := float32(L.CheckNumber(5))
	if _, err := b.Scene.CreateLightFromRGB(name, color, intensity); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) light(L *lua.LState) *scene.Light {
	name := L.CheckString(1)
	l := b.Scene.Lights.Get(name)
	if l == nil {
		L.RaiseError("no light named %q", name)
	}
	return l
}

func (b *Bindings) lightSetColor(L *lua.LState) int {
	l := b.light(L)
	c := vecmath.V3(float32(L.CheckNumber(2)), float32(L.CheckNumber(3)), float32(L.CheckNumber(4)))
	if err := l.SetColor(c); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) lightSetTemperature(L *lua.LState) int {
	if err := b.light(L).SetTemperature(float32(L.CheckNumber(2))); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) lightSetIntensity(L *lua.LState) int {
	if err := b.light(L).SetIntensity(float32(L.CheckNumber(2))); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) lightSetExposure(L *lua.LState) int {
	if err := b.light(L).SetExposure(float32(L.CheckNumber(2))); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) lightSetFalloff(L *lua.LState) int {
	if err := b.light(L).SetFalloff(float32(L.CheckNumber(2))); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) lightSetTexture(L *lua.LState) int {
	l := b.light(L)
	texName := L.CheckString(2)
	tex := b.Scene.Textures.Get(texName)
	if tex == nil {
		L.RaiseError("no texture named %q", texName)
	}
	if err := l.SetColorTexture(tex); err != nil {
		return b.fail(L, err)
	}
	return 0
}

// --- texture ---

func (b *Bindings) textureCreate(L *lua.LState) int {
	if _, err := b.Scene.CreateTexture(L.CheckString(1)); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) textureFromImage(L *lua.LState) int {
	name := L.CheckString(1)
	path := b.resolve(L.CheckString(2))
	if _, err := b.Scene.CreateTextureFromImage(name, path); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) textureSize(L *lua.LState) int {
	name := L.CheckString(1)
	t := b.Scene.Textures.Get(name)
	if t == nil {
		L.RaiseError("no texture named %q", name)
	}
	L.Push(lua.LNumber(t.Width()))
	L.Push(lua.LNumber(t.Height()))
	return 2
}

// --- volume ---

func (b *Bindings) volumeFromFile(L *lua.LState) int {
	name := L.CheckString(1)
	path := b.resolve(L.CheckString(2))
	if _, err := b.Scene.CreateVolumeFromFile(name, path); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) volume(L *lua.LState) *scene.Volume {
	name := L.CheckString(1)
	v := b.Scene.Volumes.Get(name)
	if v == nil {
		L.RaiseError("no volume named %q", name)
	}
	return v
}

func (b *Bindings) volumeSetScale(L *lua.LState) int {
	if err := b.volume(L).SetScale(float32(L.CheckNumber(2))); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) volumeGridType(L *lua.LState) int {
	L.Push(lua.LString(b.volume(L).GridType()))
	return 1
}

// --- material ---

func (b *Bindings) materialCreate(L *lua.LState) int {
	if _, err := b.Scene.CreateMaterial(L.CheckString(1)); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) material(L *lua.LState) *scene.Material {
	name := L.CheckString(1)
	m := b.Scene.Materials.Get(name)
	if m == nil {
		L.RaiseError("no material named %q", name)
	}
	return m
}

func (b *Bindings) materialSetBaseColor(L *lua.LState) int {
	m := b.material(L)
	c := vecmath.V3(float32(L.CheckNumber(2)), float32(L.CheckNumber(3)), float32(L.CheckNumber(4)))
	if err := m.SetBaseColor(c); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) materialSetRoughness(L *lua.LState) int {
	if err := b.material(L).SetRoughness(float32(L.CheckNumber(2))); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) materialSetMetallic(L *lua.LState) int {
	if err := b.material(L).SetMetallic(float32(L.CheckNumber(2))); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) materialSetIOR(L *lua.LState) int {
	if err := b.material(L).SetIOR(float32(L.CheckNumber(2))); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) materialSetTransmission(L *lua.LState) int {
	if err := b.material(L).SetTransmission(float32(L.CheckNumber(2))); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) materialSetTexture(L *lua.LState) int {
	m := b.material(L)
	texName := L.CheckString(2)
	tex := b.Scene.Textures.Get(texName)
	if tex == nil {
		L.RaiseError("no texture named %q", texName)
	}
	if err := m.SetBaseColorTexture(tex); err != nil {
		return b.fail(L, err)
	}
	return 0
}

// --- transform ---

func (b *Bindings) transformCreate(L *lua.LState) int {
	if _, err := b.Scene.CreateTransform(L.CheckString(1)); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) transform(L *lua.LState) *scene.Transform {
	name := L.CheckString(1)
	t := b.Scene.Transforms.Get(name)
	if t == nil {
		L.RaiseError("no transform named %q", name)
	}
	return t
}

func (b *Bindings) transformSetPosition(L *lua.LState) int {
	t := b.transform(L)
	p := vecmath.V3(float32(L.CheckNumber(2)), float32(L.CheckNumber(3)), float32(L.CheckNumber(4)))
	if err := t.SetPosition(p); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) transformSetScale(L *lua.LState) int {
	t := b.transform(L)
	s := vecmath.V3(float32(L.CheckNumber(2)), float32(L.CheckNumber(3)), float32(L.CheckNumber(4)))
	if err := t.SetScale(s); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) transformRotate(L *lua.LState) int {
	t := b.transform(L)
	axis := vecmath.V3(float32(L.CheckNumber(2)), float32(L.CheckNumber(3)), float32(L.CheckNumber(4)))
	angle := float32(L.CheckNumber(5))
	if err := t.Rotate(vecmath.QuatFromAxisAngle(axis, angle)); err != nil {
		return b.fail(L, err)
	}
	return 0
}

// --- entity ---

func (b *Bindings) entityCreate(L *lua.LState) int {
	if _, err := b.Scene.CreateEntity(L.CheckString(1)); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) entity(L *lua.LState) *scene.Entity {
	name := L.CheckString(1)
	e := b.Scene.Entities.Get(name)
	if e == nil {
		L.RaiseError("no entity named %q", name)
	}
	return e
}

func (b *Bindings) entitySetTransform(L *lua.LState) int {
	e := b.entity(L)
	name := L.CheckString(2)
	t := b.Scene.Transforms.Get(name)
	if t == nil {
		L.RaiseError("no transform named %q", name)
	}
	if err := e.SetTransform(t); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) entitySetMaterial(L *lua.LState) int {
	e := b.entity(L)
	name := L.CheckString(2)
	m := b.Scene.Materials.Get(name)
	if m == nil {
		L.RaiseError("no material named %q", name)
	}
	if err := e.SetMaterial(m); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) entitySetLight(L *lua.LState) int {
	e := b.entity(L)
	name := L.CheckString(2)
	l := b.Scene.Lights.Get(name)
	if l == nil {
		L.RaiseError("no light named %q", name)
	}
	if err := e.SetLight(l); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) entitySetVolume(L *lua.LState) int {
	e := b.entity(L)
	name := L.CheckString(2)
	v := b.Scene.Volumes.Get(name)
	if v == nil {
		L.RaiseError("no volume named %q", name)
	}
	if err := e.SetVolume(v); err != nil {
		return b.fail(L, err)
	}
	return 0
}

func (b *Bindings) entitySetVisible(L *lua.LState) int {
	if err := b.entity(L).SetVisible(L.CheckBool(2)); err != nil {
		return b.fail(L, err)
	}
	return 0
}

// --- scene ---

func (b *Bindings) sceneAnyDirty(L *lua.LState) int {
	L.Push(lua.LBool(b.Scene.AnyDirty()))
	return 1
}

// sceneStats returns a table of {kind = {capacity, live}}.
func (b *Bindings) sceneStats(L *lua.LState) int {
	out := L.NewTable()
	for _, t := range b.Scene.Tables() {
		entry := L.NewTable()
		entry.RawSetString("capacity", lua.LNumber(t.Count()))
		entry.RawSetString("live", lua.LNumber(t.LiveCount()))
		out.RawSetString(t.Kind(), entry)
	}
	L.Push(out)
	return 1
}

func (b *Bindings) sceneClear(L *lua.LState) int {
	b.Scene.ClearAll()
	return 0
}
