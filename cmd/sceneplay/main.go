// sceneplay loads a scene document, runs it in Play or Simulate for a number
// of frames, prints body poses and returns to Edit.
//
// Usage:
//
//	go run ./cmd/sceneplay [-config path] [-scene path] [-mode play|simulate] [-frames n] [-store]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/app"
	"github.com/l1jgo/scenegraph/internal/core/event"
	"github.com/l1jgo/scenegraph/internal/persist"
	"github.com/l1jgo/scenegraph/internal/scene"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ───────────────────────────────────────────────

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printPoses(s *scene.Scene, frame int) {
	fmt.Printf("  \033[90mframe %4d\033[0m\n", frame)
	s.Walk(func(e scene.Entity, depth int) {
		if !scene.Has[scene.RigidBodyComponent](s, e) {
			return
		}
		w := s.WorldTransform(e)
		name := s.Name(e)
		if name == "" {
			name = s.ID(e).String()[:8]
		}
		fmt.Printf("    %s%-16s x=%8.3f y=%8.3f rot=%8.2f\n",
			strings.Repeat("  ", depth), name, w.Translation.X(), w.Translation.Y(), w.Rotation.Z())
	})
}

// ── Main logic ────────────────────────────────────────────────────

func run() error {
	var (
		cfgFlag   = flag.String("config", "", "config file (default $SCENEGRAPH_CONFIG or "+app.DefaultConfigPath+")")
		scenePath = flag.String("scene", "", "scene document (overrides [scene].path)")
		mode      = flag.String("mode", "play", "play or simulate")
		frames    = flag.Int("frames", 180, "frames to run; 0 runs until interrupted")
		every     = flag.Int("every", 30, "print poses every n frames")
		realtime  = flag.Bool("realtime", false, "pace frames with a ticker instead of running flat out")
		store     = flag.Bool("store", false, "store the scene document as a revision in PostgreSQL")
	)
	flag.Parse()

	// 1. Config + logger + collaborators
	cfg, err := app.LoadConfig(app.ConfigPath(*cfgFlag))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *scenePath != "" {
		cfg.Scene.Path = *scenePath
	}
	env, err := app.NewEnv(cfg)
	if err != nil {
		return err
	}
	log := env.Log
	defer log.Sync()

	target := scene.Play
	switch strings.ToLower(*mode) {
	case "play":
	case "simulate":
		target = scene.Simulate
	default:
		return fmt.Errorf("unknown mode %q", *mode)
	}

	// 2. Load the scene
	printSection("Scene")
	s, err := env.LoadScene(cfg.Scene.Path)
	if err != nil {
		return err
	}
	printOK(cfg.Scene.Path)
	printStat("Entities", s.Len())
	printStat("Materials", env.Materials.Count())
	printStat("Textures and fonts", env.Assets.Count())
	printStat("Scripts", env.Scripts.Cached())
	fmt.Println()

	event.Subscribe(s.Events(), func(ev event.StateChanged) {
		log.Info("state", zap.String("from", ev.From), zap.String("to", ev.To))
	})
	event.Subscribe(s.Events(), func(ev event.EntityKilled) {
		log.Info("entity killed", zap.String("entity", ev.Name))
	})

	// 3. Run
	printSection(target.String())
	if err := s.SetState(target); err != nil {
		return fmt.Errorf("enter %s: %w", target, err)
	}

	step := cfg.Physics.FixedStep
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	var tick <-chan time.Time
	if *realtime {
		ticker := time.NewTicker(step)
		defer ticker.Stop()
		tick = ticker.C
	}

	start := time.Now()
	frame := 0
loop:
	for *frames == 0 || frame < *frames {
		if tick != nil {
			select {
			case <-tick:
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				break loop
			}
		} else {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				break loop
			default:
			}
		}
		s.Update(step)
		s.Events().Flush()
		frame++
		if *every > 0 && frame%*every == 0 {
			printPoses(s, frame)
		}
	}
	elapsed := time.Since(start)
	fmt.Println()
	printStat("Frames", frame)
	printStat("Live entities", s.Len())
	if frame > 0 {
		fmt.Printf("  average frame %s\n", elapsed/time.Duration(frame))
	}

	if err := s.SetState(scene.Edit); err != nil {
		return fmt.Errorf("return to edit: %w", err)
	}
	s.Events().Flush()
	printOK("restored edit scene")
	fmt.Println()

	if !*store {
		return nil
	}
	return storeRevision(env, s, cfg.Scene.Path)
}

func storeRevision(env *app.Env, s *scene.Scene, name string) error {
	printSection("Database")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, env.Config.Database, env.Log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")

	doc, err := scene.NewSerializer(s).Serialize()
	if err != nil {
		return err
	}
	repo := persist.NewSceneRepo(db)
	rev, err := repo.Save(ctx, name, doc, s.Len())
	if err != nil {
		return err
	}
	printOK("revision " + rev.ID.String())

	revs, err := repo.List(ctx, name, 5)
	if err != nil {
		return fmt.Errorf("list revisions: %w", err)
	}
	for _, r := range revs {
		fmt.Printf("    %s  %s  %3d entities  %s\n",
			r.CreatedAt.Format(time.DateTime), r.ID.String()[:8], r.Entities, r.Checksum[:12])
	}
	return nil
}
