package render

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseEvents  Phase = iota // 0: dispatch last frame's edit events
	PhaseSync                 // 1: drain dirty sets into the mirrors
	PhaseUpload               // 2: hand mirrors to the backend
	PhasePersist              // 3: journal flush + revision save
	PhaseCleanup              // 4: frame-end bookkeeping
)

// System is the interface every per-frame stage implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Func adapts a plain function into a System.
func Func(phase Phase, fn func(dt time.Duration)) System {
	return funcSystem{phase: phase, fn: fn}
}

type funcSystem struct {
	phase Phase
	fn    func(dt time.Duration)
}

func (f funcSystem) Phase() Phase            { return f.phase }
func (f funcSystem) Update(dt time.Duration) { f.fn(dt) }
