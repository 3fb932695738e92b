package scene

// entityFlagVisible marks the entity as renderable this frame.
const entityFlagVisible = 1 << 0

// Entity ties components together into one renderable object: a transform
// for placement plus an optional material, light and volume. References are
// stored as slot IDs, which stay valid for the referenced pool's lifetime.
type Entity struct {
	Meta

	transformID int
	materialID  int
	lightID     int
	volumeID    int
	visible     bool
}

// EntityStruct is the flat projection of an Entity: the ID tuple the
// renderer uses to join the other component tables. -1 means unset.
type EntityStruct struct {
	TransformID int32
	MaterialID  int32
	LightID     int32
	VolumeID    int32
	Flags       uint32
}

func projectEntity(e *Entity, s *EntityStruct) {
	s.TransformID = int32(e.transformID)
	s.MaterialID = int32(e.materialID)
	s.LightID = int32(e.lightID)
	s.VolumeID = int32(e.volumeID)
	s.Flags = 0
	if e.visible {
		s.Flags |= entityFlagVisible
	}
}

// initEntity starts with no references, visible.
func initEntity(e *Entity) error {
	e.transformID = -1
	e.materialID = -1
	e.lightID = -1
	e.volumeID = -1
	e.visible = true
	return nil
}

func newEntityRegistry(capacity int) *Registry[Entity, *Entity, EntityStruct] {
	return NewRegistry[Entity, *Entity, EntityStruct]("Entity", capacity, projectEntity)
}

// SetTransform attaches a transform. Passing nil detaches.
func (e *Entity) SetTransform(t *Transform) error {
	return e.edit(func() { e.transformID = refID(t == nil || !t.IsInitialized(), t) })
}

// SetMaterial attaches a material. Passing nil detaches.
func (e *Entity) SetMaterial(m *Material) error {
	return e.edit(func() { e.materialID = refID(m == nil || !m.IsInitialized(), m) })
}

// SetLight attaches a light. Passing nil detaches.
func (e *Entity) SetLight(l *Light) error {
	return e.edit(func() { e.lightID = refID(l == nil || !l.IsInitialized(), l) })
}

// SetVolume attaches a volume. Passing nil detaches.
func (e *Entity) SetVolume(v *Volume) error {
	return e.edit(func() { e.volumeID = refID(v == nil || !v.IsInitialized(), v) })
}

// SetVisible toggles whether the renderer draws the entity.
func (e *Entity) SetVisible(visible bool) error {
	return e.edit(func() { e.visible = visible })
}

func (e *Entity) TransformID() int { return e.transformID }
func (e *Entity) MaterialID() int  { return e.materialID }
func (e *Entity) LightID() int     { return e.lightID }
func (e *Entity) VolumeID() int    { return e.volumeID }
func (e *Entity) Visible() bool    { return e.visible }

type identified interface{ ID() int }

func refID(detach bool, c identified) int {
	if detach {
		return -1
	}
	return c.ID()
}

func (e *Entity) String() string {
	return jsonString(struct {
		Type      string `json:"type"`
		Name      string `json:"name"`
		Transform int    `json:"transform"`
		Material  int    `json:"material"`
		Light     int    `json:"light"`
		Volume    int    `json:"volume"`
		Visible   bool   `json:"visible"`
	}{"Entity", e.Name(), e.transformID, e.materialID, e.lightID, e.volumeID, e.visible})
}
