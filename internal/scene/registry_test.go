package scene

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLights(t *testing.T, capacity int) *Registry[Light, *Light, LightStruct] {
	t.Helper()
	return newLightRegistry(capacity)
}

func TestRegistryCreateAssignsFirstFreeSlot(t *testing.T) {
	r := newTestLights(t, 4)

	a, err := r.Create("A", initLight)
	require.NoError(t, err)
	b, err := r.Create("B", initLight)
	require.NoError(t, err)
	c, err := r.Create("C", initLight)
	require.NoError(t, err)

	assert.Equal(t, 0, a.ID())
	assert.Equal(t, 1, b.ID())
	assert.Equal(t, 2, c.ID())
	assert.Equal(t, 4, r.Count())
	assert.Equal(t, 3, r.LiveCount())

	// Freed slots are reused before untouched ones.
	r.Remove("B")
	d, err := r.Create("D", initLight)
	require.NoError(t, err)
	assert.Equal(t, 1, d.ID())

	e, err := r.Create("E", initLight)
	require.NoError(t, err)
	assert.Equal(t, 3, e.ID())
}

func TestRegistryDuplicateName(t *testing.T) {
	r := newTestLights(t, 4)

	_, err := r.Create("sun", initLight)
	require.NoError(t, err)

	_, err = r.Create("sun", initLight)
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 1, r.LiveCount())
}

func TestRegistryCapacityExceeded(t *testing.T) {
	r := newTestLights(t, 2)

	_, err := r.Create("a", initLight)
	require.NoError(t, err)
	_, err = r.Create("b", initLight)
	require.NoError(t, err)

	_, err = r.Create("c", initLight)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	// Removing one frees capacity again.
	r.Remove("a")
	_, err = r.Create("c", initLight)
	require.NoError(t, err)
}

func TestRegistryFailedInitRollsBack(t *testing.T) {
	r := newTestLights(t, 2)

	boom := errors.New("boom")
	_, err := r.Create("bad", func(*Light) error { return boom })
	require.ErrorIs(t, err, boom)

	// The failed create left no trace: name free, slot free, nothing dirty
	// beyond what a fresh registry has.
	assert.Nil(t, r.Get("bad"))
	assert.Equal(t, 0, r.LiveCount())

	a, err := r.Create("a", initLight)
	require.NoError(t, err)
	assert.Equal(t, 0, a.ID())
	b, err := r.Create("bad", initLight)
	require.NoError(t, err)
	assert.Equal(t, 1, b.ID())
}

func TestRegistryGetSemantics(t *testing.T) {
	r := newTestLights(t, 4)

	assert.Nil(t, r.Get("missing"))
	assert.Nil(t, r.GetByID(-1))
	assert.Nil(t, r.GetByID(99))
	assert.Nil(t, r.GetByID(0)) // allocated but uninitialized

	a, err := r.Create("a", initLight)
	require.NoError(t, err)

	assert.Same(t, a, r.Get("a"))
	assert.Same(t, a, r.GetByID(a.ID()))

	r.Remove("a")
	assert.Nil(t, r.Get("a"))
	assert.Nil(t, r.GetByID(0))
}

func TestRegistryHandleStaysValidAcrossOtherCreates(t *testing.T) {
	r := newTestLights(t, 8)

	a, err := r.Create("a", initLight)
	require.NoError(t, err)
	require.NoError(t, a.SetIntensity(42))

	for i := 0; i < 7; i++ {
		_, err := r.Create(fmt.Sprintf("filler-%d", i), initLight)
		require.NoError(t, err)
	}

	// The pool never reallocates, so the old handle still points at the
	// same component.
	assert.Same(t, a, r.Get("a"))
	assert.Equal(t, float32(42), a.Intensity())
}

func TestRegistryDirtyLifecycle(t *testing.T) {
	r := newTestLights(t, 4)

	a, err := r.Create("a", initLight)
	require.NoError(t, err)
	assert.True(t, a.IsDirty())
	assert.True(t, r.AnyDirty())

	r.UpdateComponents()
	assert.False(t, a.IsDirty())
	assert.False(t, r.AnyDirty())

	require.NoError(t, a.SetIntensity(5))
	assert.True(t, a.IsDirty())
	assert.True(t, r.AnyDirty())

	r.UpdateComponents()
	assert.False(t, r.AnyDirty())
	assert.Equal(t, float32(5), r.FrontStructs()[a.ID()].Intensity)

	// Draining with nothing dirty is a no-op.
	r.UpdateComponents()
	assert.False(t, r.AnyDirty())
}

func TestRegistryMarkDirtyMarkClean(t *testing.T) {
	r := newTestLights(t, 4)

	a, err := r.Create("a", initLight)
	require.NoError(t, err)
	r.UpdateComponents()
	require.True(t, a.IsClean())

	// An explicit mark enters the shared dirty set, same as a setter.
	require.NoError(t, a.MarkDirty())
	assert.True(t, a.IsDirty())
	assert.False(t, a.IsClean())
	assert.True(t, r.AnyDirty())

	// MarkClean clears only the component's own flag; the shared set still
	// drains the slot on the next pass.
	a.MarkClean()
	assert.True(t, a.IsClean())
	assert.True(t, r.AnyDirty())
	r.UpdateComponents()
	assert.False(t, r.AnyDirty())

	// A handle not backed by a live pool cannot be marked.
	var ghost Light
	assert.ErrorIs(t, ghost.MarkDirty(), ErrNotAllocated)
}

func TestRegistryRemoveMarksSlotDirty(t *testing.T) {
	r := newTestLights(t, 4)

	a, err := r.Create("a", initLight)
	require.NoError(t, err)
	id := a.ID()
	r.UpdateComponents()

	r.Remove("a")
	assert.True(t, r.AnyDirty())

	// The recreated component under a new name reuses the slot and starts
	// dirty again.
	b, err := r.Create("b", initLight)
	require.NoError(t, err)
	assert.Equal(t, id, b.ID())
	assert.True(t, b.IsDirty())

	r.UpdateComponents()
	assert.False(t, r.AnyDirty())
}

func TestRegistryRemoveMissingIsNoop(t *testing.T) {
	r := newTestLights(t, 2)
	r.Remove("ghost")
	assert.False(t, r.AnyDirty())
	assert.Equal(t, 0, r.LiveCount())
}

func TestRegistryRemoveByID(t *testing.T) {
	r := newTestLights(t, 4)

	a, err := r.Create("a", initLight)
	require.NoError(t, err)
	_, err = r.Create("b", initLight)
	require.NoError(t, err)
	r.UpdateComponents()

	r.RemoveByID(a.ID())
	assert.Nil(t, r.Get("a"))
	assert.Nil(t, r.GetByID(0))
	assert.NotNil(t, r.Get("b"))
	assert.Equal(t, 1, r.LiveCount())
	assert.True(t, r.AnyDirty())

	// The freed name and slot are both reusable.
	c, err := r.Create("c", initLight)
	require.NoError(t, err)
	assert.Equal(t, 0, c.ID())

	// Empty slots and out-of-range indices are no-ops.
	r.RemoveByID(3)
	r.RemoveByID(-1)
	r.RemoveByID(99)
	assert.Equal(t, 2, r.LiveCount())
}

func TestRegistryMirrorTracksEdits(t *testing.T) {
	r := newTestLights(t, 4)

	a, err := r.Create("a", initLight)
	require.NoError(t, err)
	require.NoError(t, a.SetIntensity(7))
	require.NoError(t, a.SetFalloff(1))

	// Mirror lags until the drain.
	assert.Equal(t, float32(0), r.FrontStructs()[a.ID()].Intensity)

	r.UpdateComponents()
	s := r.FrontStructs()[a.ID()]
	assert.Equal(t, float32(7), s.Intensity)
	assert.Equal(t, float32(1), s.Falloff)
	assert.Equal(t, int32(-1), s.ColorTextureID)
}

func TestRegistryNameToIDSnapshot(t *testing.T) {
	r := newTestLights(t, 4)

	_, err := r.Create("a", initLight)
	require.NoError(t, err)
	_, err = r.Create("b", initLight)
	require.NoError(t, err)

	ids := r.NameToID()
	assert.Equal(t, map[string]int{"a": 0, "b": 1}, ids)

	// Mutating the snapshot leaves the registry untouched.
	delete(ids, "a")
	assert.NotNil(t, r.Get("a"))
}

func TestRegistryClear(t *testing.T) {
	r := newTestLights(t, 4)

	for _, name := range []string{"a", "b", "c"} {
		_, err := r.Create(name, initLight)
		require.NoError(t, err)
	}
	r.UpdateComponents()

	r.Clear()
	assert.Equal(t, 0, r.LiveCount())
	assert.True(t, r.AnyDirty())

	r.UpdateComponents()
	assert.False(t, r.AnyDirty())

	// Clearing an empty registry is fine.
	r.Clear()
	assert.Equal(t, 0, r.LiveCount())
}

func TestRegistryObserverSeesEveryMutation(t *testing.T) {
	r := newTestLights(t, 4)

	var events []Event
	r.OnEdit(func(ev Event) { events = append(events, ev) })

	a, err := r.Create("a", initLight)
	require.NoError(t, err)
	require.NoError(t, a.SetIntensity(3))
	r.Remove("a")

	require.Len(t, events, 3)
	assert.Equal(t, Event{Op: OpCreate, Kind: "Light", Name: "a", ID: 0}, events[0])
	assert.Equal(t, Event{Op: OpEdit, Kind: "Light", Name: "a", ID: 0}, events[1])
	assert.Equal(t, Event{Op: OpRemove, Kind: "Light", Name: "a", ID: 0}, events[2])
}

func TestRegistryConcurrentCreateAndDrain(t *testing.T) {
	r := newTestLights(t, 256)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 64; i++ {
				name := fmt.Sprintf("light-%d-%d", g, i)
				l, err := r.Create(name, initLight)
				if err != nil {
					continue
				}
				_ = l.SetIntensity(float32(i))
			}
		}(g)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			r.UpdateComponents()
		}
	}()
	wg.Wait()
	<-done

	assert.Equal(t, 256, r.LiveCount())
	r.UpdateComponents()
	assert.False(t, r.AnyDirty())
}
