package scene

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/l1jgo/scenegraph/internal/config"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/core/event"
	"github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/physics"
)

// Scene owns an entity store, the explicit hierarchy over it and, while
// simulating, a physics world. It is not safe for concurrent use.
type Scene struct {
	world   *ecs.World
	bus     *event.Bus
	runner  *system.Runner
	log     *zap.Logger
	res     Resources
	physCfg config.PhysicsConfig
	gravity mgl64.Vec2

	names     map[string]Entity
	ids       map[uuid.UUID]Entity
	rootOrder []string // named roots in display order
	anonymous []Entity // anonymous roots in creation order

	phys        *physics.World
	accumulator time.Duration

	state    State
	snapshot *Scene
	selected Entity
}

// New creates an empty scene in the Edit state.
func New(res Resources, cfg config.PhysicsConfig, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scene{
		world:   ecs.NewWorld(),
		bus:     event.NewBus(),
		runner:  system.NewRunner(),
		log:     log,
		res:     res,
		physCfg: withPhysicsDefaults(cfg, log),
		gravity: mgl64.Vec2{cfg.Gravity[0], cfg.Gravity[1]},
		names:   make(map[string]Entity),
		ids:     make(map[uuid.UUID]Entity),
	}
	s.runner.Register(system.Func{P: system.PhaseScripts, Fn: s.updateScripts})
	s.runner.Register(system.Func{P: system.PhasePhysics, Fn: s.UpdatePhysics})
	s.runner.Register(system.Func{P: system.PhaseCleanup, Fn: func(time.Duration) { s.FlushKills() }})
	return s
}

// withPhysicsDefaults replaces stepping settings that cannot drive the
// fixed-step loop with the configured defaults.
func withPhysicsDefaults(cfg config.PhysicsConfig, log *zap.Logger) config.PhysicsConfig {
	def := config.Defaults().Physics
	if cfg.FixedStep <= 0 {
		log.Warn("physics fixed step not positive, using default",
			zap.Duration("fixed_step", cfg.FixedStep), zap.Duration("default", def.FixedStep))
		cfg.FixedStep = def.FixedStep
	}
	if cfg.SubSteps < 1 {
		cfg.SubSteps = def.SubSteps
	}
	if cfg.Iterations < 1 {
		cfg.Iterations = def.Iterations
	}
	if cfg.MaxStepsPerUpdate < 0 {
		cfg.MaxStepsPerUpdate = def.MaxStepsPerUpdate
	}
	return cfg
}

// Events returns the scene's event bus. The host flushes it once per frame.
func (s *Scene) Events() *event.Bus { return s.bus }

// Resources returns the collaborators the scene was created with.
func (s *Scene) Resources() Resources { return s.res }

// Logger returns the scene logger.
func (s *Scene) Logger() *zap.Logger { return s.log }

// Gravity returns the gravity the next physics world is created with.
func (s *Scene) Gravity() mgl64.Vec2 { return s.gravity }

// SetGravity changes gravity for the next physics world.
func (s *Scene) SetGravity(g mgl64.Vec2) { s.gravity = g }

// Len returns the number of live entities.
func (s *Scene) Len() int { return s.world.Pool().Len() }

// AddEntity creates an anonymous root entity with an identity transform.
func (s *Scene) AddEntity() Entity {
	e := s.create("", uuid.New())
	s.anonymous = append(s.anonymous, e)
	return e
}

// AddNamedEntity creates a named root entity. It returns false when the name
// is empty or already taken.
func (s *Scene) AddNamedEntity(name string) (Entity, bool) {
	name = normalizeName(name)
	if !s.NameAvailable(name) {
		s.log.Warn("entity name unavailable", zap.String("name", name))
		return 0, false
	}
	e := s.create(name, uuid.New())
	s.rootOrder = append(s.rootOrder, name)
	return e, true
}

func (s *Scene) create(name string, id uuid.UUID) Entity {
	e := s.world.CreateEntity()
	Add(s, e, IDComponent{ID: id})
	Add(s, e, TagComponent{Name: name})
	Add(s, e, IdentityTransform())
	s.ids[id] = e
	if name != "" {
		s.names[name] = e
	}
	event.Emit(s.bus, event.EntityCreated{Entity: e, Name: name})
	return e
}

func normalizeName(name string) string {
	return norm.NFC.String(name)
}

// NameAvailable reports whether name could be given to a new entity.
func (s *Scene) NameAvailable(name string) bool {
	name = normalizeName(name)
	if name == "" || name == anonymousName {
		return false
	}
	_, taken := s.names[name]
	return !taken
}

// FindByName returns the entity with the given name.
func (s *Scene) FindByName(name string) (Entity, bool) {
	e, ok := s.names[normalizeName(name)]
	return e, ok
}

// FindByID returns the entity with the given stable ID.
func (s *Scene) FindByID(id uuid.UUID) (Entity, bool) {
	e, ok := s.ids[id]
	return e, ok
}

// Alive reports whether e refers to a live entity of this scene.
func (s *Scene) Alive(e Entity) bool { return s.world.Alive(e) }

// Name returns the entity's name, empty for anonymous or dead entities.
func (s *Scene) Name(e Entity) string {
	if tag, ok := Get[TagComponent](s, e); ok {
		return tag.Name
	}
	return ""
}

// ID returns the entity's stable ID.
func (s *Scene) ID(e Entity) uuid.UUID {
	if id, ok := Get[IDComponent](s, e); ok {
		return id.ID
	}
	return uuid.Nil
}

// Rename gives e a new unique name, rewriting it in whichever order list
// holds it. It never overwrites another entity's name.
func (s *Scene) Rename(e Entity, name string) bool {
	tag, ok := Get[TagComponent](s, e)
	if !ok {
		return false
	}
	name = normalizeName(name)
	if name == tag.Name {
		return true
	}
	if !s.NameAvailable(name) {
		s.log.Warn("rename rejected", zap.String("entity", s.label(e)), zap.String("name", name))
		return false
	}

	old := tag.Name
	tag.Name = name
	s.names[name] = e
	if old == "" {
		s.anonymous = removeEntity(s.anonymous, e)
		s.rootOrder = append(s.rootOrder, name)
		return true
	}
	delete(s.names, old)
	if p, ok := Get[ParentComponent](s, e); ok {
		if order, ok := Get[EntityOrderComponent](s, p.Parent); ok {
			replaceName(order.Children, old, name)
		}
	} else {
		replaceName(s.rootOrder, old, name)
	}
	return true
}

// label names an entity for log output.
func (s *Scene) label(e Entity) string {
	if name := s.Name(e); name != "" {
		return name
	}
	if id := s.ID(e); id != uuid.Nil {
		return id.String()
	}
	return "<dead>"
}

// Get returns a pointer to e's component of type T. The pointer stays valid
// until the component is removed or the entity is destroyed.
func Get[T any](s *Scene, e Entity) (*T, bool) {
	if !s.world.Alive(e) {
		return nil, false
	}
	return ecs.Store[T](s.world.Registry()).Get(e)
}

// Has reports whether e has a component of type T.
func Has[T any](s *Scene, e Entity) bool {
	_, ok := Get[T](s, e)
	return ok
}

// Add stores c as e's component of type T, replacing any previous one.
// It returns nil when e is not alive. Hierarchy components are managed by
// the scene and should not be added directly.
func Add[T any](s *Scene, e Entity, c T) *T {
	if !s.world.Alive(e) {
		return nil
	}
	p := &c
	ecs.Store[T](s.world.Registry()).Set(e, p)
	return p
}

// Remove deletes e's component of type T, if any.
func Remove[T any](s *Scene, e Entity) {
	if !s.world.Alive(e) {
		return
	}
	ecs.Store[T](s.world.Registry()).Remove(e)
}

// Select marks e as the editor selection. Zero clears it.
func (s *Scene) Select(e Entity) {
	if e != 0 && !s.Alive(e) {
		return
	}
	s.selected = e
}

// Selected returns the selected entity, or zero.
func (s *Scene) Selected() Entity {
	if !s.Alive(s.selected) {
		return 0
	}
	return s.selected
}

func removeEntity(list []Entity, e Entity) []Entity {
	for i, x := range list {
		if x == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func removeName(list []string, name string) []string {
	for i, x := range list {
		if x == name {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func replaceName(list []string, old, name string) {
	for i, x := range list {
		if x == old {
			list[i] = name
			return
		}
	}
}
