package render

import (
	"time"

	"go.uber.org/zap"

	"github.com/lumen3d/lumen/internal/scene"
)

// Syncer is the frame stage that moves pending edits into the flat mirror
// tables. It checks each registry's dirty flag first so a quiet frame costs
// one mutex round trip per kind and nothing else.
type Syncer struct {
	scene *scene.Scene
	log   *zap.Logger

	frame   uint64
	drained uint64
}

func NewSyncer(s *scene.Scene, log *zap.Logger) *Syncer {
	return &Syncer{scene: s, log: log}
}

func (sy *Syncer) Phase() Phase { return PhaseSync }

func (sy *Syncer) Update(dt time.Duration) {
	sy.frame++
	var kinds []string
	for _, t := range sy.scene.Tables() {
		if !t.AnyDirty() {
			continue
		}
		t.UpdateComponents()
		kinds = append(kinds, t.Kind())
	}
	if len(kinds) == 0 {
		return
	}
	sy.drained++
	sy.log.Debug("mirrors synced",
		zap.Uint64("frame", sy.frame),
		zap.Strings("kinds", kinds),
		zap.Duration("dt", dt))
}

// Frame returns the number of Update calls so far.
func (sy *Syncer) Frame() uint64 { return sy.frame }

// DrainedFrames returns how many frames actually had edits to sync.
func (sy *Syncer) DrainedFrames() uint64 { return sy.drained }

// ReadFrame runs fn with every table's edit mutex held, giving the backend
// a consistent view across all pools and mirrors. fn must not call back
// into any registry.
func (sy *Syncer) ReadFrame(fn func()) {
	tables := sy.scene.Tables()
	for _, t := range tables {
		t.EditMutex().Lock()
	}
	defer func() {
		for i := len(tables) - 1; i >= 0; i-- {
			tables[i].EditMutex().Unlock()
		}
	}()
	fn()
}
