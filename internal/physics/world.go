package physics

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

var worldSerial atomic.Uint64

// Settings tunes the solver.
type Settings struct {
	SubSteps   int // space steps per World.Step; values below 1 mean 1
	Iterations int // solver iterations per space step; 0 keeps the engine default
}

type slot struct {
	body          *cp.Body
	shapes        []*cp.Shape
	gen           uint32
	live          bool
	fixedRotation bool
	bullet        bool
	fastRotation  bool
}

// World wraps a cp space and hands out generational body handles.
// It is not safe for concurrent use.
type World struct {
	serial   uint64
	space    *cp.Space
	subSteps int
	slots    []slot
	free     []uint32
	bodies   int
}

// NewWorld creates a space with the given gravity.
func NewWorld(gravity mgl64.Vec2, s Settings) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: gravity.X(), Y: gravity.Y()})
	if s.Iterations > 0 {
		space.Iterations = uint(s.Iterations)
	}
	sub := s.SubSteps
	if sub < 1 {
		sub = 1
	}
	return &World{
		serial:   worldSerial.Add(1),
		space:    space,
		subSteps: sub,
		slots:    make([]slot, 1, 64), // slot 0 unused so zero handles never resolve
	}
}

// Gravity returns the space gravity.
func (w *World) Gravity() mgl64.Vec2 {
	g := w.space.Gravity()
	return mgl64.Vec2{g.X, g.Y}
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int { return w.bodies }

// CreateBody adds a body with no shapes.
func (w *World) CreateBody(def BodyDef) BodyHandle {
	var body *cp.Body
	switch def.Type {
	case Dynamic:
		body = cp.NewBody(1, cp.MomentForBox(1, 1, 1))
		gs, lin, ang := def.GravityScale, def.LinearDamping, def.AngularDamping
		body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
			cp.BodyUpdateVelocity(b, gravity.Mult(gs), damping, dt)
			if lin > 0 {
				b.SetVelocityVector(b.Velocity().Mult(1 / (1 + dt*lin)))
			}
			if ang > 0 {
				b.SetAngularVelocity(b.AngularVelocity() * (1 / (1 + dt*ang)))
			}
		})
	case Kinematic:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewStaticBody()
	}
	body.SetPosition(cp.Vector{X: def.Position.X(), Y: def.Position.Y()})
	body.SetAngle(def.Angle)
	w.space.AddBody(body)

	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.slots))
		w.slots = append(w.slots, slot{})
	}
	s := &w.slots[idx]
	s.body = body
	s.shapes = s.shapes[:0]
	s.live = true
	s.fixedRotation = def.FixedRotation
	s.bullet = def.Bullet
	s.fastRotation = def.FastRotation
	w.bodies++
	return BodyHandle{world: w.serial, slot: idx, gen: s.gen}
}

func (w *World) lookup(h BodyHandle) (*slot, bool) {
	if w == nil || h.world != w.serial || h.slot == 0 || int(h.slot) >= len(w.slots) {
		return nil, false
	}
	s := &w.slots[h.slot]
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return s, true
}

// Valid reports whether h refers to a live body in this world.
func (w *World) Valid(h BodyHandle) bool {
	_, ok := w.lookup(h)
	return ok
}

// AddBox attaches a box of the given half extents centred at offset in body space.
func (w *World) AddBox(h BodyHandle, offset, halfExtents mgl64.Vec2, def ShapeDef) error {
	s, ok := w.lookup(h)
	if !ok {
		return fmt.Errorf("add box: %w", ErrInvalidHandle)
	}
	bb := cp.NewBBForExtents(cp.Vector{X: offset.X(), Y: offset.Y()}, math.Abs(halfExtents.X()), math.Abs(halfExtents.Y()))
	w.attach(s, cp.NewBox2(s.body, bb, 0), def)
	return nil
}

// AddCircle attaches a circle centred at offset in body space.
func (w *World) AddCircle(h BodyHandle, offset mgl64.Vec2, radius float64, def ShapeDef) error {
	s, ok := w.lookup(h)
	if !ok {
		return fmt.Errorf("add circle: %w", ErrInvalidHandle)
	}
	w.attach(s, cp.NewCircle(s.body, math.Abs(radius), cp.Vector{X: offset.X(), Y: offset.Y()}), def)
	return nil
}

func (w *World) attach(s *slot, shape *cp.Shape, def ShapeDef) {
	shape.SetFriction(def.Friction)
	shape.SetElasticity(def.Restitution)
	shape.SetSensor(def.Sensor)
	w.space.AddShape(shape)
	s.shapes = append(s.shapes, shape)

	if s.body.GetType() != cp.BODY_DYNAMIC {
		return
	}
	if def.UpdateBodyMass {
		density := def.Density
		if density <= 0 {
			density = 1
		}
		shape.SetDensity(density)
	}
	if s.fixedRotation {
		s.body.SetMoment(math.Inf(1))
	}
}

// Pose returns the body origin and angle in radians.
func (w *World) Pose(h BodyHandle) (mgl64.Vec2, float64, bool) {
	s, ok := w.lookup(h)
	if !ok {
		return mgl64.Vec2{}, 0, false
	}
	p := s.body.Position()
	return mgl64.Vec2{p.X, p.Y}, s.body.Angle(), true
}

// SetPose teleports a body.
func (w *World) SetPose(h BodyHandle, pos mgl64.Vec2, angle float64) bool {
	s, ok := w.lookup(h)
	if !ok {
		return false
	}
	s.body.SetPosition(cp.Vector{X: pos.X(), Y: pos.Y()})
	s.body.SetAngle(angle)
	if s.body.GetType() == cp.BODY_STATIC {
		// static shapes live in their own index, which is only rebuilt on insert
		for _, shape := range s.shapes {
			w.space.RemoveShape(shape)
			w.space.AddShape(shape)
		}
	}
	return true
}

// Velocity returns the linear velocity of a body.
func (w *World) Velocity(h BodyHandle) (mgl64.Vec2, bool) {
	s, ok := w.lookup(h)
	if !ok {
		return mgl64.Vec2{}, false
	}
	v := s.body.Velocity()
	return mgl64.Vec2{v.X, v.Y}, true
}

// Mass returns the mass of a body.
func (w *World) Mass(h BodyHandle) (float64, bool) {
	s, ok := w.lookup(h)
	if !ok {
		return 0, false
	}
	return s.body.Mass(), true
}

// DestroyBody removes a body and its shapes. Stale handles are ignored.
func (w *World) DestroyBody(h BodyHandle) {
	s, ok := w.lookup(h)
	if !ok {
		return
	}
	for _, shape := range s.shapes {
		w.space.RemoveShape(shape)
	}
	w.space.RemoveBody(s.body)
	s.body = nil
	s.shapes = s.shapes[:0]
	s.live = false
	s.gen++
	w.free = append(w.free, h.slot)
	w.bodies--
}

// Step advances the simulation by dt seconds, split into equal sub-steps.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	sub := dt / float64(w.subSteps)
	for i := 0; i < w.subSteps; i++ {
		w.space.Step(sub)
	}
}

// Destroy releases every body. Handles issued by this world stay invalid
// forever, since later worlds carry a different serial.
func (w *World) Destroy() {
	for i := 1; i < len(w.slots); i++ {
		s := &w.slots[i]
		if !s.live {
			continue
		}
		w.DestroyBody(BodyHandle{world: w.serial, slot: uint32(i), gen: s.gen})
	}
	w.serial = 0
}
