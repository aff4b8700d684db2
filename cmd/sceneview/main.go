// sceneview is a minimal raylib viewer for scene documents with a toolbar
// for Play, Simulate, Stop, Undo and Redo.
//
// Keys: Tab selects the next entity, arrows nudge it, C cycles its sprite
// color, Ctrl+S saves the document.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/app"
	"github.com/l1jgo/scenegraph/internal/command"
	"github.com/l1jgo/scenegraph/internal/core/event"
	"github.com/l1jgo/scenegraph/internal/scene"
)

const (
	screenW       = 1280
	screenH       = 720
	pixelsPerUnit = 48
	toolbarH      = 40
	treeW         = 220
)

var (
	colorBg       = rl.NewColor(24, 24, 30, 255)
	colorPanel    = rl.NewColor(34, 34, 44, 255)
	colorSelected = rl.NewColor(255, 200, 60, 255)
	colorCollider = rl.NewColor(80, 220, 120, 255)
	colorText     = rl.NewColor(210, 210, 220, 255)
	colorDisabled = rl.NewColor(90, 90, 100, 255)

	palette = []mgl64.Vec4{
		{1, 1, 1, 1},
		{0.9, 0.3, 0.3, 1},
		{0.3, 0.8, 0.4, 1},
		{0.3, 0.5, 0.95, 1},
		{0.95, 0.8, 0.2, 1},
	}
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type viewer struct {
	env     *app.Env
	s       *scene.Scene
	undo    *command.Stack
	path    string
	status  string
	statusT time.Time
}

func run() error {
	cfgFlag := flag.String("config", "", "config file")
	scenePath := flag.String("scene", "", "scene document (overrides [scene].path)")
	flag.Parse()

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
	defer env.Log.Sync()

	s, err := env.LoadScene(cfg.Scene.Path)
	if err != nil {
		return err
	}
	v := &viewer{env: env, s: s, undo: command.NewStack(cfg.Editor.UndoLimit), path: cfg.Scene.Path}
	event.Subscribe(s.Events(), func(ev event.StateChanged) {
		v.setStatus(ev.From + " -> " + ev.To)
	})

	rl.InitWindow(screenW, screenH, "sceneview - "+cfg.Scene.Path)
	defer rl.CloseWindow()
	rl.SetTargetFPS(120)
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorPanel))

	for !rl.WindowShouldClose() {
		dt := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
		v.handleInput()
		v.s.Update(dt)
		v.s.Events().Flush()

		rl.BeginDrawing()
		rl.ClearBackground(colorBg)
		v.drawScene()
		v.drawTree()
		v.drawToolbar()
		rl.EndDrawing()
	}
	return nil
}

func (v *viewer) setStatus(msg string) {
	v.status = msg
	v.statusT = time.Now()
}

func (v *viewer) setState(st scene.State) {
	if err := v.s.SetState(st); err != nil {
		v.env.Log.Error("state change failed", zap.Error(err))
		v.setStatus(err.Error())
	}
}

func (v *viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeyTab) {
		v.selectNext()
	}
	if (rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyLeftSuper)) && rl.IsKeyPressed(rl.KeyS) {
		v.save()
		return
	}
	if v.s.State() != scene.Edit {
		return
	}
	sel := v.s.Selected()
	if sel == 0 {
		return
	}

	var nudge mgl64.Vec3
	switch {
	case rl.IsKeyPressed(rl.KeyLeft):
		nudge = mgl64.Vec3{-0.25, 0, 0}
	case rl.IsKeyPressed(rl.KeyRight):
		nudge = mgl64.Vec3{0.25, 0, 0}
	case rl.IsKeyPressed(rl.KeyUp):
		nudge = mgl64.Vec3{0, 0.25, 0}
	case rl.IsKeyPressed(rl.KeyDown):
		nudge = mgl64.Vec3{0, -0.25, 0}
	}
	if nudge != (mgl64.Vec3{}) {
		if t, ok := scene.Get[scene.TransformComponent](v.s, sel); ok {
			next := *t
			next.Translation = next.Translation.Add(nudge)
			v.record(v.undo.RecordTransform(v.s, sel, next))
		}
	}
	if rl.IsKeyPressed(rl.KeyC) {
		if sp, ok := scene.Get[scene.SpriteRendererComponent](v.s, sel); ok {
			v.record(v.undo.RecordSpriteColor(v.s, sel, nextColor(sp.Color)))
		}
	}
}

func (v *viewer) record(err error) {
	if err != nil {
		v.env.Log.Warn("edit failed", zap.Error(err))
		v.setStatus(err.Error())
	}
}

func nextColor(c mgl64.Vec4) mgl64.Vec4 {
	for i, p := range palette {
		if p == c {
			return palette[(i+1)%len(palette)]
		}
	}
	return palette[0]
}

func (v *viewer) selectNext() {
	var all []scene.Entity
	v.s.Walk(func(e scene.Entity, _ int) { all = append(all, e) })
	if len(all) == 0 {
		return
	}
	cur := v.s.Selected()
	for i, e := range all {
		if e == cur {
			v.s.Select(all[(i+1)%len(all)])
			return
		}
	}
	v.s.Select(all[0])
}

func (v *viewer) save() {
	if v.s.State() != scene.Edit {
		v.setStatus("stop the scene before saving")
		return
	}
	if err := scene.NewSerializer(v.s).SerializeFile(v.path); err != nil {
		v.env.Log.Error("save failed", zap.Error(err))
		v.setStatus(err.Error())
		return
	}
	v.setStatus("saved " + v.path)
}

// toScreen maps world units (y up) to pixels (y down) around the view centre.
func toScreen(x, y float64) rl.Vector2 {
	cx := float64(treeW) + float64(screenW-treeW)/2
	cy := float64(toolbarH) + float64(screenH-toolbarH)/2
	return rl.NewVector2(float32(cx+x*pixelsPerUnit), float32(cy-y*pixelsPerUnit))
}

func toColor(c mgl64.Vec4) rl.Color {
	clamp := func(f float64) uint8 {
		if f <= 0 {
			return 0
		}
		if f >= 1 {
			return 255
		}
		return uint8(f * 255)
	}
	return rl.NewColor(clamp(c[0]), clamp(c[1]), clamp(c[2]), clamp(c[3]))
}

func (v *viewer) drawScene() {
	s := v.s
	sel := s.Selected()
	s.Walk(func(e scene.Entity, _ int) {
		w := s.WorldTransform(e)
		pos := toScreen(w.Translation.X(), w.Translation.Y())
		width := float32(w.Scale.X() * pixelsPerUnit)
		height := float32(w.Scale.Y() * pixelsPerUnit)
		rot := float32(-w.Rotation.Z())

		if sp, ok := scene.Get[scene.SpriteRendererComponent](s, e); ok {
			rec := rl.Rectangle{X: pos.X, Y: pos.Y, Width: width, Height: height}
			rl.DrawRectanglePro(rec, rl.NewVector2(width/2, height/2), rot, toColor(sp.Color))
		}
		if c, ok := scene.Get[scene.CircleRendererComponent](s, e); ok {
			rl.DrawCircleV(pos, width/2, toColor(c.Color))
		}
		if t, ok := scene.Get[scene.TextRendererComponent](s, e); ok {
			rl.DrawText(t.Text, int32(pos.X), int32(pos.Y), 20, toColor(t.Color))
		}
		if bc, ok := scene.Get[scene.BoxCollider2DComponent](s, e); ok {
			bw := float32(bc.Size.X()*w.Scale.X()) * pixelsPerUnit
			bh := float32(bc.Size.Y()*w.Scale.Y()) * pixelsPerUnit
			rec := rl.Rectangle{X: pos.X - bw/2, Y: pos.Y - bh/2, Width: bw, Height: bh}
			rl.DrawRectangleLinesEx(rec, 1, colorCollider)
		}
		if cc, ok := scene.Get[scene.CircleCollider2DComponent](s, e); ok {
			r := float32(cc.Radius*w.Scale.X()) * pixelsPerUnit
			rl.DrawCircleLines(int32(pos.X), int32(pos.Y), r, colorCollider)
		}
		if e == sel {
			rl.DrawRectangleLinesEx(rl.Rectangle{X: pos.X - width/2 - 3, Y: pos.Y - height/2 - 3, Width: width + 6, Height: height + 6}, 2, colorSelected)
		}
	})
}

func (v *viewer) drawTree() {
	rl.DrawRectangle(0, toolbarH, treeW, screenH-toolbarH, colorPanel)
	y := int32(toolbarH + 8)
	sel := v.s.Selected()
	v.s.Walk(func(e scene.Entity, depth int) {
		name := v.s.Name(e)
		if name == "" {
			name = "(" + v.s.ID(e).String()[:8] + ")"
		}
		c := colorText
		if e == sel {
			c = colorSelected
		}
		rl.DrawText(name, int32(10+depth*14), y, 16, c)
		y += 20
	})
}

func (v *viewer) drawToolbar() {
	rl.DrawRectangle(0, 0, screenW, toolbarH, colorPanel)
	x := float32(8)
	button := func(label string, enabled bool) bool {
		bounds := rl.Rectangle{X: x, Y: 6, Width: 84, Height: toolbarH - 12}
		x += 92
		if !enabled {
			rl.DrawRectangleLinesEx(bounds, 1, colorDisabled)
			rl.DrawText(label, int32(bounds.X)+12, int32(bounds.Y)+7, 15, colorDisabled)
			return false
		}
		return gui.Button(bounds, label)
	}

	st := v.s.State()
	if button("Play", st != scene.Play) {
		v.setState(scene.Play)
	}
	if button("Simulate", st != scene.Simulate) {
		v.setState(scene.Simulate)
	}
	if button("Stop", st != scene.Edit) {
		v.setState(scene.Edit)
	}
	if button("Undo", st == scene.Edit && v.undo.CanUndo()) {
		v.record(v.undo.Undo(v.s))
	}
	if button("Redo", st == scene.Edit && v.undo.CanRedo()) {
		v.record(v.undo.Redo(v.s))
	}

	info := fmt.Sprintf("%s  entities %d", st, v.s.Len())
	rl.DrawText(info, int32(x)+16, 12, 16, colorText)
	if v.status != "" && time.Since(v.statusT) < 3*time.Second {
		rl.DrawText(v.status, screenW-420, 12, 16, colorSelected)
	}
}
