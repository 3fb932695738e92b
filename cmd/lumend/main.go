package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lumen3d/lumen/internal/config"
	"github.com/lumen3d/lumen/internal/data"
	"github.com/lumen3d/lumen/internal/event"
	"github.com/lumen3d/lumen/internal/persist"
	"github.com/lumen3d/lumen/internal/render"
	"github.com/lumen3d/lumen/internal/scene"
	"github.com/lumen3d/lumen/internal/scripting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/lumen.toml"
	if p := os.Getenv("LUMEN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Optionally connect to PostgreSQL and run migrations
	var (
		db      *persist.DB
		revRepo *persist.RevisionRepo
		journal *persist.Journal
	)
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err = persist.NewDB(ctx, cfg.Database, log)
		cancel()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()

		ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
		err = persist.RunMigrations(ctx, db.Pool)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		revRepo = persist.NewRevisionRepo(db)
		journal = persist.NewJournal(db)
		log.Info("database connected")
	}

	// 4. Build the scene and fan edit events out to the bus and journal
	sc := scene.NewScene(scene.Capacities{
		Lights:     cfg.Scene.MaxLights,
		Textures:   cfg.Scene.MaxTextures,
		Volumes:    cfg.Scene.MaxVolumes,
		Materials:  cfg.Scene.MaxMaterials,
		Transforms: cfg.Scene.MaxTransforms,
		Entities:   cfg.Scene.MaxEntities,
	})

	bus := event.NewBus()
	event.Subscribe(bus, func(ev scene.Event) {
		log.Debug("component edit",
			zap.Stringer("op", ev.Op),
			zap.String("kind", ev.Kind),
			zap.String("name", ev.Name),
			zap.Int("id", ev.ID))
	})
	sc.OnEdit(func(ev scene.Event) {
		event.Emit(bus, ev)
		if journal != nil {
			journal.Record(ev)
		}
	})

	// 5. Apply the startup manifest, if any
	if cfg.Assets.ManifestPath != "" {
		m, err := data.Load(cfg.Assets.ManifestPath)
		if err != nil {
			return fmt.Errorf("load manifest: %w", err)
		}
		if err := m.Apply(sc, cfg.Assets.Dir); err != nil {
			return fmt.Errorf("apply manifest: %w", err)
		}
		log.Info("manifest applied",
			zap.String("path", cfg.Assets.ManifestPath),
			zap.Int("components", sc.LiveCount()))
	}

	// 6. Start the scripting engine
	bindings := &scripting.Bindings{Scene: sc, AssetsDir: cfg.Assets.Dir, Log: log}
	engine, err := scripting.NewEngine(bindings, cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()

	// 7. Register frame systems
	runner := render.NewRunner()
	runner.Register(render.Func(render.PhaseEvents, func(time.Duration) {
		bus.SwapBuffers()
		bus.DispatchAll()
	}))
	syncer := render.NewSyncer(sc, log)
	runner.Register(syncer)
	if journal != nil {
		runner.Register(render.Func(render.PhasePersist, func(time.Duration) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := journal.Flush(ctx, syncer.Frame()); err != nil {
				log.Warn("journal flush failed", zap.Error(err))
			}
		}))
	}

	// 8. Kick off the entry script on its own goroutine. The registries
	// serialize script edits against the frame loop.
	if cfg.Scripting.Entry != "" {
		go func() {
			if err := engine.RunFile(cfg.Scripting.Entry); err != nil {
				log.Error("entry script failed",
					zap.String("path", cfg.Scripting.Entry),
					zap.Error(err))
			}
		}()
	}

	// 9. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sync.FrameRate)
	defer ticker.Stop()

	log.Info("frame loop started",
		zap.Duration("frame_rate", cfg.Sync.FrameRate),
		zap.Int("max_frames", cfg.Sync.MaxFrames))

	frames := 0
loop:
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Sync.FrameRate)
			frames++
			if cfg.Sync.MaxFrames > 0 && frames >= cfg.Sync.MaxFrames {
				log.Info("frame budget reached", zap.Int("frames", frames))
				break loop
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			break loop
		}
	}

	// Final persist pass so nothing recorded this frame is lost.
	runner.TickPhase(render.PhaseSync, cfg.Sync.FrameRate)
	runner.TickPhase(render.PhasePersist, cfg.Sync.FrameRate)

	if cfg.Sync.SaveRevision && revRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := revRepo.Save(ctx, "shutdown", syncer.Frame(), data.Snapshot(sc)); err != nil {
			log.Error("save revision failed", zap.Error(err))
		} else {
			log.Info("scene revision saved", zap.Uint64("frame", syncer.Frame()))
		}
	}

	log.Info("stopped",
		zap.Uint64("frames", syncer.Frame()),
		zap.Uint64("synced_frames", syncer.DrainedFrames()),
		zap.Int("live_components", sc.LiveCount()))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
