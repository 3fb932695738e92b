package scene

import (
	"fmt"
	"sync"
)

// component constrains a registry's element type to structs that embed Meta.
type component[T any] interface {
	*T
	meta() *Meta
}

// Table is the kind-erased surface of a Registry, used by the Scene facade
// and by the render sync pass, which iterate over every kind uniformly.
type Table interface {
	Kind() string
	Count() int
	LiveCount() int
	AnyDirty() bool
	UpdateComponents()
	EditMutex() *sync.Mutex
	NameToID() map[string]int
	Clear()
	OnEdit(func(Event))
}

// Registry is a fixed-capacity, ID-stable component pool with name lookup,
// dirty tracking and an index-aligned mirror of flat structs for the
// rendering backend. One Registry exists per component kind per Scene; there
// is no process-wide state, so independent scenes are independent registries.
//
// T is the component kind, S its renderer-facing mirror struct. All mutation
// is linearized by the edit mutex; handles returned by Create/Get point into
// the pool and stay valid because the pool never reallocates.
type Registry[T any, PT component[T], S any] struct {
	kind string

	mu     sync.Mutex
	slots  []T
	mirror []S
	names  map[string]int
	dirty  map[int]struct{}

	// project copies the renderer-relevant fields of a component into its
	// mirror entry. Runs under the edit mutex.
	project func(*T, *S)

	// observer, when set, receives every mutation while the edit mutex is
	// held. It must not call back into the registry.
	observer func(Event)
}

// NewRegistry allocates the pool and mirror for one component kind. Every
// slot starts as an uninitialized placeholder; the pool never resizes, so
// slot indices and handle addresses are stable until the registry itself is
// discarded.
func NewRegistry[T any, PT component[T], S any](kind string, capacity int, project func(*T, *S)) *Registry[T, PT, S] {
	if capacity <= 0 {
		panic(fmt.Sprintf("scene: %s registry capacity must be positive, got %d", kind, capacity))
	}
	r := &Registry[T, PT, S]{
		kind:    kind,
		slots:   make([]T, capacity),
		mirror:  make([]S, capacity),
		names:   make(map[string]int, capacity),
		dirty:   make(map[int]struct{}),
		project: project,
	}
	for i := range r.slots {
		PT(&r.slots[i]).meta().attach(r, i)
	}
	return r
}

// Kind returns the component kind name, e.g. "Light".
func (r *Registry[T, PT, S]) Kind() string { return r.kind }

// Count returns the pool capacity. The pool is fully allocated up front, so
// this is constant for the registry's lifetime.
func (r *Registry[T, PT, S]) Count() int { return len(r.slots) }

// LiveCount returns the number of currently initialized components.
func (r *Registry[T, PT, S]) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

// Create allocates the first free slot under name and constructs the
// component in place by running init on it. A failing init rolls the slot
// and the name entry back before the error is returned, so a failed create
// leaves the registry exactly as it was.
func (r *Registry[T, PT, S]) Create(name string, init func(PT) error) (PT, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[name]; exists {
		return nil, fmt.Errorf("create %s %q: %w", r.kind, name, ErrDuplicateName)
	}

	idx := -1
	for i := range r.slots {
		if !PT(&r.slots[i]).meta().initialized {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("create %s %q: %w (capacity %d)", r.kind, name, ErrCapacityExceeded, len(r.slots))
	}

	pt := PT(&r.slots[idx])
	m := pt.meta()
	m.name = name
	m.initialized = true
	r.names[name] = idx

	if init != nil {
		if err := init(pt); err != nil {
			delete(r.names, name)
			r.resetSlot(idx)
			return nil, fmt.Errorf("create %s %q: %w", r.kind, name, err)
		}
	}

	r.markDirtyLocked(idx)
	r.notify(Event{Op: OpCreate, Kind: r.kind, Name: name, ID: idx})
	return pt, nil
}

// Get returns the live component with the given name, or nil. Get never
// constructs; absence is an expected outcome, not an error.
func (r *Registry[T, PT, S]) Get(name string) PT {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.names[name]
	if !ok {
		return nil
	}
	return PT(&r.slots[idx])
}

// GetByID returns the live component at the given slot index, or nil if the
// index is out of range or the slot is empty.
func (r *Registry[T, PT, S]) GetByID(id int) PT {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || id >= len(r.slots) {
		return nil
	}
	pt := PT(&r.slots[id])
	if !pt.meta().initialized {
		return nil
	}
	return pt
}

// Remove resets the named component's slot to an uninitialized placeholder
// and frees its name. Removing a missing name is a no-op. The freed index is
// marked dirty so the next drain propagates the deactivation to the mirror.
func (r *Registry[T, PT, S]) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.names[name]
	if !ok {
		return
	}
	r.removeLocked(name, idx)
}

// RemoveByID removes the component at the given slot index. Like Remove,
// absence is not an error: an out-of-range index or an empty slot is a no-op.
func (r *Registry[T, PT, S]) RemoveByID(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || id >= len(r.slots) {
		return
	}
	m := PT(&r.slots[id]).meta()
	if !m.initialized {
		return
	}
	r.removeLocked(m.name, id)
}

// Clear removes every initialized component. Safe to call when none exist.
func (r *Registry[T, PT, S]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		m := PT(&r.slots[i]).meta()
		if m.initialized {
			r.removeLocked(m.name, i)
		}
	}
}

func (r *Registry[T, PT, S]) removeLocked(name string, idx int) {
	delete(r.names, name)
	r.resetSlot(idx)
	r.dirty[idx] = struct{}{}
	r.notify(Event{Op: OpRemove, Kind: r.kind, Name: name, ID: idx})
}

// resetSlot returns a slot to its zero-value placeholder state while keeping
// its Meta bound to the pool.
func (r *Registry[T, PT, S]) resetSlot(idx int) {
	var zero T
	r.slots[idx] = zero
	PT(&r.slots[idx]).meta().attach(r, idx)
}

// NameToID returns a snapshot copy of the live name table. Mutating the
// returned map does not affect the registry.
func (r *Registry[T, PT, S]) NameToID() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.names))
	for name, id := range r.names {
		out[name] = id
	}
	return out
}

// AnyDirty reports whether any component changed since the last drain.
// The backend calls this once per frame before UpdateComponents.
func (r *Registry[T, PT, S]) AnyDirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dirty) > 0
}

// UpdateComponents drains the dirty set: every dirty slot is re-projected
// into the mirror at the same index, then the set is cleared. The whole
// drain holds the edit mutex, so readers never observe a partially updated
// mirror or a half-cleared set. With nothing dirty this returns immediately.
func (r *Registry[T, PT, S]) UpdateComponents() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.dirty) == 0 {
		return
	}
	for idx := range r.dirty {
		r.project(&r.slots[idx], &r.mirror[idx])
		PT(&r.slots[idx]).meta().dirty = false
	}
	clear(r.dirty)
}

// Front returns the component pool itself. Callers must hold EditMutex while
// reading and must treat entries with IsInitialized() == false as inactive.
func (r *Registry[T, PT, S]) Front() []T { return r.slots }

// FrontStructs returns the mirror table handed to the rendering backend.
// Same access contract as Front. Mirror entries of freed slots keep their
// last projected values; IsInitialized on the pool entry is the sole
// authority for liveness.
func (r *Registry[T, PT, S]) FrontStructs() []S { return r.mirror }

// EditMutex exposes the guard that linearizes all mutation of this kind.
// The rendering backend holds it for the duration of a frame's read of the
// pool and mirror; registry operations acquire it internally, so a caller
// already holding it must not call back into the registry.
func (r *Registry[T, PT, S]) EditMutex() *sync.Mutex { return &r.mu }

// OnEdit installs an observer for registry mutations. The observer runs
// under the edit mutex and must not call back into the registry.
func (r *Registry[T, PT, S]) OnEdit(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = fn
}

func (r *Registry[T, PT, S]) notify(ev Event) {
	if r.observer != nil {
		r.observer(ev)
	}
}

// markIndexDirty implements dirtyTable for component handles.
func (r *Registry[T, PT, S]) markIndexDirty(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.markDirtyLocked(id)
}

// editIndex implements dirtyTable: apply a field mutation and mark dirty,
// all under the edit mutex.
func (r *Registry[T, PT, S]) editIndex(id int, apply func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.markDirtyLocked(id); err != nil {
		return err
	}
	apply()
	r.notify(Event{Op: OpEdit, Kind: r.kind, Name: PT(&r.slots[id]).meta().name, ID: id})
	return nil
}

func (r *Registry[T, PT, S]) markDirtyLocked(id int) error {
	if id < 0 || id >= len(r.slots) {
		return fmt.Errorf("%s id %d: %w", r.kind, id, ErrNotAllocated)
	}
	r.dirty[id] = struct{}{}
	PT(&r.slots[id]).meta().dirty = true
	return nil
}
