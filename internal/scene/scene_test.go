package scene

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/l1jgo/scenegraph/internal/config"
	"github.com/l1jgo/scenegraph/internal/physics"
)

func TestAddNamedEntityRejectsDuplicates(t *testing.T) {
	s, logs := newTestScene(t, Resources{})
	a := mustNamed(t, s, "Box")
	if _, ok := s.AddNamedEntity("Box"); ok {
		t.Error("duplicate name accepted")
	}
	if _, ok := s.AddNamedEntity(""); ok {
		t.Error("empty name accepted")
	}
	if _, ok := s.AddNamedEntity(anonymousName); ok {
		t.Error("anonymous sentinel accepted as a name")
	}
	if logs.FilterMessage("entity name unavailable").Len() != 3 {
		t.Error("rejections not logged")
	}
	if got, _ := s.FindByName("Box"); got != a {
		t.Error("duplicate overwrote the original")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestNamesAreNormalized(t *testing.T) {
	s, _ := newTestScene(t, Resources{})
	mustNamed(t, s, "caf\u00e9")
	if s.NameAvailable("cafe\u0301") {
		t.Error("decomposed form did not collide with the composed one")
	}
	if _, ok := s.FindByName("cafe\u0301"); !ok {
		t.Error("lookup by decomposed form failed")
	}
}

func TestNewEntityDefaults(t *testing.T) {
	s, _ := newTestScene(t, Resources{})
	e := s.AddEntity()
	if s.Name(e) != "" {
		t.Error("AddEntity produced a named entity")
	}
	tr, ok := Get[TransformComponent](s, e)
	if !ok || *tr != IdentityTransform() {
		t.Errorf("transform = %+v", tr)
	}
	id := s.ID(e)
	if id == uuid.Nil {
		t.Fatal("no ID assigned")
	}
	if got, ok := s.FindByID(id); !ok || got != e {
		t.Error("FindByID failed")
	}
	if roots := s.Roots(); len(roots) != 1 || roots[0] != e {
		t.Errorf("Roots = %v", roots)
	}
}

func TestRename(t *testing.T) {
	s, _ := newTestScene(t, Resources{})
	a := mustNamed(t, s, "A")
	b := mustNamed(t, s, "B")
	c := mustNamed(t, s, "C")
	if err := s.SetChild(a, c, false); err != nil {
		t.Fatal(err)
	}

	if s.Rename(b, "A") {
		t.Error("rename onto an existing name succeeded")
	}
	if s.Name(a) != "A" || s.Name(b) != "B" {
		t.Error("failed rename changed names")
	}

	if !s.Rename(c, "Lid") {
		t.Fatal("rename failed")
	}
	if got := names(s, s.Children(a)); len(got) != 1 || got[0] != "Lid" {
		t.Errorf("children of A = %v", got)
	}
	if _, ok := s.FindByName("C"); ok {
		t.Error("old name still resolves")
	}

	anon := s.AddEntity()
	if !s.Rename(anon, "Named") {
		t.Fatal("naming an anonymous entity failed")
	}
	if got := names(s, s.Roots()); len(got) != 3 || got[2] != "Named" {
		t.Errorf("roots = %v", got)
	}
	if len(s.anonymous) != 0 {
		t.Error("entity still listed as anonymous")
	}
	checkHierarchy(t, s)
}

func TestComponentAccess(t *testing.T) {
	s, _ := newTestScene(t, Resources{})
	e := mustNamed(t, s, "Box")
	if Has[SpriteRendererComponent](s, e) {
		t.Error("new entity has a sprite")
	}
	sp := Add(s, e, defaultSprite())
	sp.TilingFactor = 3
	got, ok := Get[SpriteRendererComponent](s, e)
	if !ok || got.TilingFactor != 3 {
		t.Error("Add did not return the stored component")
	}
	Remove[SpriteRendererComponent](s, e)
	if Has[SpriteRendererComponent](s, e) {
		t.Error("Remove left the component")
	}

	s.KillEntity(e)
	if Add(s, e, defaultSprite()) != nil {
		t.Error("Add on a dead entity returned a component")
	}
	if _, ok := Get[TransformComponent](s, e); ok {
		t.Error("Get on a dead entity succeeded")
	}
}

func TestSelection(t *testing.T) {
	s, _ := newTestScene(t, Resources{})
	e := mustNamed(t, s, "Box")
	s.Select(e)
	if s.Selected() != e {
		t.Fatal("Select failed")
	}
	s.KillEntity(e)
	if s.Selected() != 0 {
		t.Error("selection survived the entity")
	}
}

func TestZeroPhysicsConfigUsesDefaults(t *testing.T) {
	s := New(Resources{}, config.PhysicsConfig{}, nil)
	if s.physCfg.FixedStep != config.Defaults().Physics.FixedStep || s.physCfg.SubSteps < 1 {
		t.Fatalf("physics config = %+v", s.physCfg)
	}
	e := mustNamed(t, s, "Box")
	Add(s, e, RigidBodyComponent{Type: physics.Dynamic, GravityScale: 1})
	s.SetGravity(mgl64.Vec2{0, -9.8})
	s.CreatePhysicsWorld()

	done := make(chan struct{})
	go func() {
		s.UpdatePhysics(time.Second / 30)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("UpdatePhysics did not return with a zero config")
	}
	if pos, _, _ := s.BodyPose(e); pos.Y() >= 0 {
		t.Errorf("body y = %v, want it to fall", pos.Y())
	}
}

func TestVec3NearNextToZero(t *testing.T) {
	if !vec3Near(mgl64.Vec3{1, 1, 0}, mgl64.Vec3{0.9999999999999996, 1, -2.220446049250313e-16}) {
		t.Error("rounding noise around zero rejected")
	}
	if vec3Near(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1e-6, 0}) {
		t.Error("visible offset accepted")
	}
}
