// physics_stress drops a grid of boxes onto a ground plate in Simulate and
// reports frame timings. CPU or memory profiles are written with pkg/profile.
//
// Profiling:
//
//	go build ./cmd/physics_stress
//	./physics_stress -n 40 -profile cpu
//	go tool pprof -http=":8000" ./physics_stress cpu.pprof
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/app"
	"github.com/l1jgo/scenegraph/internal/physics"
	"github.com/l1jgo/scenegraph/internal/scene"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgFlag = flag.String("config", "", "config file")
		n       = flag.Int("n", 20, "boxes per row and column")
		frames  = flag.Int("frames", 600, "frames to simulate")
		mode    = flag.String("profile", "", "cpu or mem; empty disables profiling")
		out     = flag.String("out", ".", "profile output directory")
	)
	flag.Parse()

	cfg, err := app.LoadConfig(app.ConfigPath(*cfgFlag))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	env, err := app.NewEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Log.Sync()

	s := env.NewScene()
	buildGrid(s, *n)
	env.Log.Info("grid built", zap.Int("entities", s.Len()))

	switch *mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*out), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(*out), profile.NoShutdownHook).Stop()
	case "":
	default:
		return fmt.Errorf("unknown profile mode %q", *mode)
	}

	if err := s.SetState(scene.Simulate); err != nil {
		return err
	}
	step := cfg.Physics.FixedStep
	times := make([]time.Duration, 0, *frames)
	start := time.Now()
	for range *frames {
		t0 := time.Now()
		s.Update(step)
		s.Events().Flush()
		times = append(times, time.Since(t0))
	}
	total := time.Since(start)
	if err := s.SetState(scene.Edit); err != nil {
		return err
	}

	slices.Sort(times)
	pct := func(p float64) time.Duration { return times[int(p*float64(len(times)-1))] }
	fmt.Printf("bodies %d  frames %d  total %s\n", *n**n+1, len(times), total.Round(time.Millisecond))
	if len(times) > 0 {
		fmt.Printf("p50 %s  p95 %s  max %s\n", pct(0.50), pct(0.95), times[len(times)-1])
	}
	return nil
}

// buildGrid adds a static ground and n*n dynamic boxes stacked above it.
func buildGrid(s *scene.Scene, n int) {
	ground, _ := s.AddNamedEntity("Ground")
	t, _ := scene.Get[scene.TransformComponent](s, ground)
	t.Scale = mgl64.Vec3{float64(n) * 2, 1, 1}
	scene.Add(s, ground, scene.RigidBodyComponent{Type: physics.Static, GravityScale: 1})
	scene.Add(s, ground, scene.BoxCollider2DComponent{Size: mgl64.Vec2{1, 1}})

	for row := range n {
		for col := range n {
			e := s.AddEntity()
			t, _ := scene.Get[scene.TransformComponent](s, e)
			t.Translation = mgl64.Vec3{float64(col-n/2) * 1.1, 2 + float64(row)*1.1, 0}
			scene.Add(s, e, scene.RigidBodyComponent{Type: physics.Dynamic, GravityScale: 1})
			scene.Add(s, e, scene.BoxCollider2DComponent{Size: mgl64.Vec2{1, 1}})
			scene.Add(s, e, scene.SpriteRendererComponent{Color: mgl64.Vec4{1, 1, 1, 1}, TilingFactor: 1})
		}
	}
}
