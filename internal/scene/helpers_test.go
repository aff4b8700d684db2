package scene

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/l1jgo/scenegraph/internal/config"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

const eps = 1e-9

func newTestScene(t *testing.T, res Resources) (*Scene, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return New(res, config.Defaults().Physics, zap.New(core)), logs
}

func mustNamed(t *testing.T, s *Scene, name string) Entity {
	t.Helper()
	e, ok := s.AddNamedEntity(name)
	if !ok {
		t.Fatalf("AddNamedEntity(%q) failed", name)
	}
	return e
}

// vec3Near compares component-wise with an absolute tolerance, so values
// next to zero are not held to a relative bound.
func vec3Near(a, b mgl64.Vec3) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= eps {
			return false
		}
	}
	return true
}

// checkHierarchy verifies that every order list matches the parent relation
// and that each named root is listed exactly once.
func checkHierarchy(t *testing.T, s *Scene) {
	t.Helper()
	want := make(map[Entity][]string)
	var named []string
	ecs.Store[TagComponent](s.world.Registry()).Each(func(e ecs.EntityID, tag *TagComponent) {
		if p, ok := Get[ParentComponent](s, e); ok {
			want[p.Parent] = append(want[p.Parent], tag.Name)
		} else if tag.Name != "" {
			named = append(named, tag.Name)
		}
	})

	ecs.Store[EntityOrderComponent](s.world.Registry()).Each(func(e ecs.EntityID, order *EntityOrderComponent) {
		if len(order.Children) == 0 {
			t.Errorf("%s has an empty order component", s.label(e))
		}
		if _, ok := want[e]; !ok {
			t.Errorf("%s has an order component but no children", s.label(e))
		}
	})
	for parent, names := range want {
		order, ok := Get[EntityOrderComponent](s, parent)
		if !ok {
			t.Errorf("%s has children but no order component", s.label(parent))
			continue
		}
		if !sameSet(order.Children, names) {
			t.Errorf("%s order = %v, children = %v", s.label(parent), order.Children, names)
		}
	}
	if !sameSet(s.rootOrder, named) {
		t.Errorf("root order = %v, named roots = %v", s.rootOrder, named)
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func names(s *Scene, list []Entity) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = s.Name(e)
	}
	return out
}

func touch(t *testing.T, dir, rel string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeScripts hands out programs whose instances count hook calls.
type fakeScripts struct {
	programs map[string]*fakeProgram
}

func newFakeScripts() *fakeScripts {
	return &fakeScripts{programs: make(map[string]*fakeProgram)}
}

var errNoScript = errors.New("no such script")

func (f *fakeScripts) CompileOrLoad(path string) (ScriptProgram, error) {
	if filepath.Base(path) == "missing.lua" {
		return nil, errNoScript
	}
	p, ok := f.programs[path]
	if !ok {
		p = &fakeProgram{path: path}
		f.programs[path] = p
	}
	return p, nil
}

type fakeProgram struct {
	path      string
	instances []*fakeInstance
}

func (p *fakeProgram) Path() string { return p.path }

func (p *fakeProgram) Instantiate(s *Scene, e Entity) (ScriptInstance, error) {
	inst := &fakeInstance{}
	p.instances = append(p.instances, inst)
	return inst, nil
}

type fakeInstance struct {
	creates, updates, destroys int
	lastDT                     float64
}

func (i *fakeInstance) Create() error { i.creates++; return nil }

func (i *fakeInstance) Update(dt float64) error {
	i.updates++
	i.lastDT = dt
	return nil
}

func (i *fakeInstance) Destroy() error { i.destroys++; return nil }
