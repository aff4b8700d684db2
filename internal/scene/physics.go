package scene

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/data"
	"github.com/l1jgo/scenegraph/internal/physics"
)

// CreatePhysicsWorld creates the physics world if needed and binds a body to
// every rigid body whose handle is not valid. Calling it again while the
// world is active adds no duplicate bodies.
func (s *Scene) CreatePhysicsWorld() {
	if s.phys == nil {
		s.phys = physics.NewWorld(s.gravity, physics.Settings{
			SubSteps:   s.physCfg.SubSteps,
			Iterations: s.physCfg.Iterations,
		})
		s.accumulator = 0
	}
	bound := 0
	s.Walk(func(e Entity, _ int) {
		rb, ok := Get[RigidBodyComponent](s, e)
		if !ok || s.phys.Valid(rb.Body) {
			return
		}
		s.bindBody(e, rb)
		bound++
	})
	s.log.Debug("physics world ready", zap.Int("bound", bound), zap.Int("bodies", s.phys.BodyCount()))
}

func (s *Scene) bindBody(e Entity, rb *RigidBodyComponent) {
	world := s.WorldTransform(e)
	pos := mgl64.Vec2{world.Translation.X(), world.Translation.Y()}
	angle := mgl64.DegToRad(world.Rotation.Z())

	h := s.phys.CreateBody(physics.BodyDef{
		Type:           rb.Type,
		Position:       pos,
		Angle:          angle,
		FixedRotation:  rb.FixedRotation,
		Bullet:         rb.Bullet,
		FastRotation:   rb.FastRotation,
		GravityScale:   rb.GravityScale,
		LinearDamping:  rb.LinearDamping,
		AngularDamping: rb.AngularDamping,
	})

	if bc, ok := Get[BoxCollider2DComponent](s, e); ok {
		half := mgl64.Vec2{bc.Size.X() * world.Scale.X() / 2, bc.Size.Y() * world.Scale.Y() / 2}
		if err := s.phys.AddBox(h, bc.Offset, half, s.shapeDef(e, bc.Material)); err != nil {
			s.log.Error("attach box collider", zap.String("entity", s.label(e)), zap.Error(err))
		}
	}
	if cc, ok := Get[CircleCollider2DComponent](s, e); ok {
		radius := cc.Radius * world.Scale.X()
		if err := s.phys.AddCircle(h, cc.Offset, radius, s.shapeDef(e, cc.Material)); err != nil {
			s.log.Error("attach circle collider", zap.String("entity", s.label(e)), zap.Error(err))
		}
	}

	rb.Body = h
	rb.PrevPosition = pos
	rb.PrevAngle = angle
}

func (s *Scene) shapeDef(e Entity, name string) physics.ShapeDef {
	m := data.DefaultMaterial()
	if name != "" {
		var found bool
		if s.res.Materials != nil {
			var mm data.Material
			if mm, found = s.res.Materials.Material(name); found {
				m = mm
			}
		}
		if !found {
			s.log.Warn("unknown material, using default",
				zap.String("entity", s.label(e)), zap.String("material", name))
		}
	}
	return physics.ShapeDef{
		Density:        m.Density,
		Friction:       m.Friction,
		Restitution:    m.Restitution,
		Sensor:         m.Sensor,
		UpdateBodyMass: m.UpdateBodyMass,
	}
}

// UpdatePhysics advances the simulation in fixed steps and writes the
// interpolated body poses back into the entity transforms.
func (s *Scene) UpdatePhysics(dt time.Duration) {
	if s.phys == nil {
		return
	}
	step := s.physCfg.FixedStep
	s.accumulator += dt

	steps := 0
	for s.accumulator >= step {
		if limit := s.physCfg.MaxStepsPerUpdate; limit > 0 && steps == limit {
			dropped := s.accumulator - s.accumulator%step
			s.accumulator %= step
			s.log.Warn("physics falling behind, dropping steps",
				zap.Int("ran", steps), zap.Duration("dropped", dropped))
			break
		}
		s.recordPrevious()
		s.phys.Step(step.Seconds())
		s.accumulator -= step
		steps++
	}

	// With no remainder the stepped pose is shown as is and becomes the
	// blend source for the next step.
	if steps > 0 && s.accumulator == 0 {
		s.recordPrevious()
	}
	alpha := float64(s.accumulator) / float64(step)
	s.writeBack(alpha)
}

func (s *Scene) recordPrevious() {
	s.eachBody(func(e Entity, rb *RigidBodyComponent) {
		if pos, angle, ok := s.phys.Pose(rb.Body); ok {
			rb.PrevPosition = pos
			rb.PrevAngle = angle
		}
	})
}

func (s *Scene) writeBack(alpha float64) {
	s.eachBody(func(e Entity, rb *RigidBodyComponent) {
		pos, angle, ok := s.phys.Pose(rb.Body)
		if !ok {
			s.log.Error("stale physics body, skipping", zap.String("entity", s.label(e)))
			return
		}
		t, ok := Get[TransformComponent](s, e)
		if !ok {
			return
		}
		p := rb.PrevPosition.Add(pos.Sub(rb.PrevPosition).Mul(alpha))
		a := rb.PrevAngle + (angle-rb.PrevAngle)*alpha

		world := s.WorldTransform(e)
		world.Translation[0] = p.X()
		world.Translation[1] = p.Y()
		world.Rotation[2] = mgl64.RadToDeg(a)
		*t = s.LocalFromWorld(e, world)
	})
}

// eachBody visits rigid bodies parents first, so children are written back
// against their parent's updated pose.
func (s *Scene) eachBody(fn func(Entity, *RigidBodyComponent)) {
	s.Walk(func(e Entity, _ int) {
		if rb, ok := Get[RigidBodyComponent](s, e); ok {
			fn(e, rb)
		}
	})
}

// SyncBody teleports e's body to its current world transform and resets the
// interpolation sample. It is a no-op without a valid body.
func (s *Scene) SyncBody(e Entity) {
	rb, ok := Get[RigidBodyComponent](s, e)
	if !ok || !s.phys.Valid(rb.Body) {
		return
	}
	world := s.WorldTransform(e)
	pos := mgl64.Vec2{world.Translation.X(), world.Translation.Y()}
	angle := mgl64.DegToRad(world.Rotation.Z())
	s.phys.SetPose(rb.Body, pos, angle)
	rb.PrevPosition = pos
	rb.PrevAngle = angle
}

// BodyPose returns the raw, uninterpolated pose of e's body.
func (s *Scene) BodyPose(e Entity) (mgl64.Vec2, float64, bool) {
	rb, ok := Get[RigidBodyComponent](s, e)
	if !ok {
		return mgl64.Vec2{}, 0, false
	}
	return s.phys.Pose(rb.Body)
}

// DestroyPhysicsWorld drops the physics world. Handles held by components go
// stale and are rebound by the next CreatePhysicsWorld.
func (s *Scene) DestroyPhysicsWorld() {
	if s.phys == nil {
		return
	}
	s.phys.Destroy()
	s.phys = nil
	s.accumulator = 0
}

// PhysicsActive reports whether a physics world exists.
func (s *Scene) PhysicsActive() bool { return s.phys != nil }

// BodyValid reports whether h refers to a live body in the current world.
func (s *Scene) BodyValid(h physics.BodyHandle) bool { return s.phys.Valid(h) }
