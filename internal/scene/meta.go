package scene

// Op classifies a registry mutation for change observers.
type Op uint8

const (
	OpCreate Op = iota
	OpEdit
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpEdit:
		return "edit"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event describes one mutation of a component registry. Events are delivered
// to the registry's observer while the edit mutex is held.
type Event struct {
	Op   Op
	Kind string
	Name string
	ID   int
}

// dirtyTable is the hook an embedded Meta uses to reach its kind's shared
// dirty set without knowing the registry's type parameters.
type dirtyTable interface {
	markIndexDirty(id int) error
	editIndex(id int, apply func()) error
}

// Meta carries the registry bookkeeping embedded by every component kind:
// the unique name, the stable slot index, the initialized flag that marks a
// slot live, and the per-component dirty flag. A component's ID equals its
// index in the kind's pool for the pool's entire lifetime.
type Meta struct {
	name        string
	id          int
	initialized bool
	dirty       bool
	table       dirtyTable
}

// Name returns the component's unique name ("" for an empty slot).
func (m *Meta) Name() string { return m.name }

// ID returns the component's stable slot index.
func (m *Meta) ID() int { return m.id }

// IsInitialized reports whether the slot holds a live component. Uninitialized
// slots are placeholders and are never returned by lookups.
func (m *Meta) IsInitialized() bool { return m.initialized }

// IsDirty reports whether the component changed since the last drain.
func (m *Meta) IsDirty() bool { return m.dirty }

// IsClean reports the inverse of IsDirty.
func (m *Meta) IsClean() bool { return !m.dirty }

// MarkClean clears the local dirty flag only. Removing the component from the
// kind's shared dirty set is the exclusive job of UpdateComponents.
func (m *Meta) MarkClean() { m.dirty = false }

// MarkDirty inserts the component into its kind's dirty set and sets the
// local flag. Returns ErrNotAllocated for a handle that is not backed by a
// live pool, which indicates use after teardown.
func (m *Meta) MarkDirty() error {
	if m.table == nil {
		return ErrNotAllocated
	}
	return m.table.markIndexDirty(m.id)
}

// edit runs apply under the kind's edit mutex and marks the component dirty.
// Component setters are built on this.
func (m *Meta) edit(apply func()) error {
	if m.table == nil {
		return ErrNotAllocated
	}
	return m.table.editIndex(m.id, apply)
}

// attach binds the Meta to its pool slot. Called once per slot when the pool
// is allocated and again when a slot is recycled.
func (m *Meta) attach(t dirtyTable, id int) {
	m.table = t
	m.id = id
}

func (m *Meta) meta() *Meta { return m }
