package scene

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/l1jgo/scenegraph/internal/core/event"
	"github.com/l1jgo/scenegraph/internal/physics"
)

func TestPlayThenEditRestoresBitIdentical(t *testing.T) {
	s, _ := newTestScene(t, Resources{})
	box := addBox(t, s, "Box", physics.Dynamic)
	want := TransformComponent{
		Translation: mgl64.Vec3{0.1, 1.0 / 3, -2.7e-5},
		Scale:       mgl64.Vec3{1.5, 0.75, 1},
		Rotation:    mgl64.Vec3{0, 0, 12.3456789},
	}
	*Add(s, box, IdentityTransform()) = want
	ground := addBox(t, s, "Ground", physics.Static)
	tr, _ := Get[TransformComponent](s, ground)
	tr.Translation = mgl64.Vec3{0, -2, 0}
	tr.Scale = mgl64.Vec3{10, 1, 1}

	if err := s.SetState(Play); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 90; i++ {
		s.Update(time.Second / 60)
	}
	moved, _ := Get[TransformComponent](s, box)
	if *moved == want {
		t.Fatal("box did not move during Play")
	}

	if err := s.SetState(Edit); err != nil {
		t.Fatal(err)
	}
	if s.Alive(box) {
		t.Error("pre-play handle still alive after restore")
	}
	if s.PhysicsActive() {
		t.Error("physics world survived return to Edit")
	}
	box, _ = s.FindByName("Box")
	got, _ := Get[TransformComponent](s, box)
	if *got != want {
		t.Errorf("restored transform = %+v, want %+v", *got, want)
	}
	rb, _ := Get[RigidBodyComponent](s, box)
	if s.BodyValid(rb.Body) {
		t.Error("restored component carries a live body")
	}
}

func TestEditExcursionKeepsHierarchyAndIDs(t *testing.T) {
	res := newResources(t)
	s, _ := newTestScene(t, res)
	buildRichScene(t, s)
	before, err := NewSerializer(s).Serialize()
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetState(Simulate); err != nil {
		t.Fatal(err)
	}
	s.Update(time.Second / 10)
	lid, _ := s.FindByName("Lid")
	s.KillEntity(lid)
	mustNamed(t, s, "Spawned")

	if err := s.SetState(Edit); err != nil {
		t.Fatal(err)
	}
	after, err := NewSerializer(s).Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("excursion changed the scene:\n%s\n---\n%s", before, after)
	}
	checkHierarchy(t, s)
}

func TestSelectionSurvivesTransitions(t *testing.T) {
	s, _ := newTestScene(t, Resources{})
	mustNamed(t, s, "Other")
	box := mustNamed(t, s, "Box")
	anon := s.AddEntity()
	anonID := s.ID(anon)

	s.Select(box)
	if err := s.SetState(Play); err != nil {
		t.Fatal(err)
	}
	if s.Name(s.Selected()) != "Box" {
		t.Error("selection lost entering Play")
	}
	if err := s.SetState(Edit); err != nil {
		t.Fatal(err)
	}
	if sel := s.Selected(); sel == box || s.Name(sel) != "Box" {
		t.Errorf("selection not re-resolved: %v", sel)
	}

	anon, _ = s.FindByID(anonID)
	s.Select(anon)
	if err := s.SetState(Simulate); err != nil {
		t.Fatal(err)
	}
	if err := s.SetState(Edit); err != nil {
		t.Fatal(err)
	}
	if s.ID(s.Selected()) != anonID {
		t.Error("anonymous selection not re-resolved by ID")
	}
}

func TestTransitionsGoThroughEdit(t *testing.T) {
	s, _ := newTestScene(t, Resources{})
	var changes []event.StateChanged
	event.Subscribe(s.Events(), func(ev event.StateChanged) { changes = append(changes, ev) })

	if err := s.SetState(Edit); err != nil {
		t.Fatal(err)
	}
	if err := s.SetState(Play); err != nil {
		t.Fatal(err)
	}
	if err := s.SetState(Simulate); err != nil {
		t.Fatal(err)
	}
	if s.State() != Simulate {
		t.Fatalf("state = %s", s.State())
	}
	if err := s.SetState(State(7)); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}

	s.Events().Flush()
	want := []event.StateChanged{
		{From: "Edit", To: "Play"},
		{From: "Play", To: "Edit"},
		{From: "Edit", To: "Simulate"},
	}
	if len(changes) != len(want) {
		t.Fatalf("changes = %+v", changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %+v, want %+v", i, changes[i], want[i])
		}
	}
}

func TestUpdateIsNoopInEdit(t *testing.T) {
	s, _ := newTestScene(t, Resources{})
	box := addBox(t, s, "Box", physics.Dynamic)
	s.Update(time.Second)
	if s.PhysicsActive() {
		t.Error("Update created a physics world in Edit")
	}
	tr, _ := Get[TransformComponent](s, box)
	if *tr != IdentityTransform() {
		t.Error("Update moved an entity in Edit")
	}
}

func TestScriptHooksFollowState(t *testing.T) {
	res := Resources{Scripts: newFakeScripts(), BaseDir: t.TempDir()}
	s, _ := newTestScene(t, res)
	e := mustNamed(t, s, "Scripted")
	prog, _ := res.Scripts.CompileOrLoad(filepath.Join(res.BaseDir, "logic.lua"))
	Add(s, e, ScriptComponent{Path: prog.Path(), Program: prog})
	fp := prog.(*fakeProgram)

	if err := s.SetState(Simulate); err != nil {
		t.Fatal(err)
	}
	s.Update(time.Second / 60)
	if len(fp.instances) != 0 {
		t.Error("scripts instantiated in Simulate")
	}
	if err := s.SetState(Play); err != nil {
		t.Fatal(err)
	}
	if len(fp.instances) != 1 {
		t.Fatalf("instances = %d, want 1", len(fp.instances))
	}
	inst := fp.instances[0]
	s.Update(time.Second / 30)
	s.Update(time.Second / 30)
	if inst.creates != 1 || inst.updates != 2 || !mgl64.FloatEqualThreshold(inst.lastDT, 1.0/30, 1e-6) {
		t.Errorf("hooks = %+v", *inst)
	}
	if err := s.SetState(Edit); err != nil {
		t.Fatal(err)
	}
	if inst.destroys != 1 {
		t.Errorf("destroys = %d, want 1", inst.destroys)
	}
}

func TestKillDuringPlayDestroysScriptAndBody(t *testing.T) {
	res := Resources{Scripts: newFakeScripts(), BaseDir: t.TempDir()}
	s, _ := newTestScene(t, res)
	e := addBox(t, s, "Box", physics.Dynamic)
	prog, _ := res.Scripts.CompileOrLoad(filepath.Join(res.BaseDir, "logic.lua"))
	Add(s, e, ScriptComponent{Path: prog.Path(), Program: prog})

	if err := s.SetState(Play); err != nil {
		t.Fatal(err)
	}
	rb, _ := Get[RigidBodyComponent](s, e)
	h := rb.Body
	s.QueueKill(e)
	s.Update(time.Second / 60)
	if s.Alive(e) || s.BodyValid(h) {
		t.Error("queued kill left the entity or its body")
	}
	if inst := prog.(*fakeProgram).instances[0]; inst.destroys != 1 {
		t.Errorf("destroys = %d, want 1", inst.destroys)
	}
}
