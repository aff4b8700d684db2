package command

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/l1jgo/scenegraph/internal/physics"
	"github.com/l1jgo/scenegraph/internal/scene"
)

// Kind tags which payload of a Command is meaningful.
type Kind uint8

const (
	KindTransform Kind = iota + 1
	KindSpriteColor
	KindRigidBody
)

func (k Kind) String() string {
	switch k {
	case KindTransform:
		return "Transform"
	case KindSpriteColor:
		return "SpriteColor"
	case KindRigidBody:
		return "RigidBody"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

var (
	ErrNoTarget         = errors.New("command target not found")
	ErrMissingComponent = errors.New("command target lacks the component")
)

// RigidBodySettings is the authored part of a RigidBodyComponent.
type RigidBodySettings struct {
	Type           physics.BodyType
	FixedRotation  bool
	Bullet         bool
	FastRotation   bool
	GravityScale   float64
	LinearDamping  float64
	AngularDamping float64
}

// SettingsOf extracts the authored settings of a rigid body.
func SettingsOf(rb scene.RigidBodyComponent) RigidBodySettings {
	return RigidBodySettings{
		Type:           rb.Type,
		FixedRotation:  rb.FixedRotation,
		Bullet:         rb.Bullet,
		FastRotation:   rb.FastRotation,
		GravityScale:   rb.GravityScale,
		LinearDamping:  rb.LinearDamping,
		AngularDamping: rb.AngularDamping,
	}
}

func (b RigidBodySettings) applyTo(rb *scene.RigidBodyComponent) {
	rb.Type = b.Type
	rb.FixedRotation = b.FixedRotation
	rb.Bullet = b.Bullet
	rb.FastRotation = b.FastRotation
	rb.GravityScale = b.GravityScale
	rb.LinearDamping = b.LinearDamping
	rb.AngularDamping = b.AngularDamping
}

// Command records the full value of one component of one entity. The target
// is remembered by handle, name and ID; the handle goes stale whenever the
// scene is rebuilt, so the name (or ID for anonymous entities) is the
// fallback.
type Command struct {
	Kind   Kind
	Target scene.Entity
	Name   string
	ID     uuid.UUID

	Transform scene.TransformComponent
	Color     mgl64.Vec4
	Body      RigidBodySettings
}

func target(s *scene.Scene, e scene.Entity) Command {
	return Command{Target: e, Name: s.Name(e), ID: s.ID(e)}
}

// Transform records a full transform value for e.
func Transform(s *scene.Scene, e scene.Entity, t scene.TransformComponent) Command {
	c := target(s, e)
	c.Kind = KindTransform
	c.Transform = t
	return c
}

// SpriteColor records a sprite color for e.
func SpriteColor(s *scene.Scene, e scene.Entity, color mgl64.Vec4) Command {
	c := target(s, e)
	c.Kind = KindSpriteColor
	c.Color = color
	return c
}

// RigidBody records rigid body settings for e.
func RigidBody(s *scene.Scene, e scene.Entity, b RigidBodySettings) Command {
	c := target(s, e)
	c.Kind = KindRigidBody
	c.Body = b
	return c
}

// resolve finds the entity a command refers to in the current scene.
func (c Command) resolve(s *scene.Scene) (scene.Entity, bool) {
	if s.Alive(c.Target) && s.ID(c.Target) == c.ID {
		return c.Target, true
	}
	if c.Name != "" {
		if e, ok := s.FindByName(c.Name); ok {
			return e, true
		}
	}
	if c.ID != uuid.Nil {
		return s.FindByID(c.ID)
	}
	return 0, false
}

// Apply writes the recorded value into the scene.
func (c Command) Apply(s *scene.Scene) error {
	e, ok := c.resolve(s)
	if !ok {
		return fmt.Errorf("apply %s to %q: %w", c.Kind, c.Name, ErrNoTarget)
	}
	switch c.Kind {
	case KindTransform:
		t, ok := scene.Get[scene.TransformComponent](s, e)
		if !ok {
			t = scene.Add(s, e, scene.IdentityTransform())
		}
		*t = c.Transform
		s.SyncBody(e)
	case KindSpriteColor:
		sp, ok := scene.Get[scene.SpriteRendererComponent](s, e)
		if !ok {
			return fmt.Errorf("apply %s to %q: %w", c.Kind, c.Name, ErrMissingComponent)
		}
		sp.Color = c.Color
	case KindRigidBody:
		rb, ok := scene.Get[scene.RigidBodyComponent](s, e)
		if !ok {
			return fmt.Errorf("apply %s to %q: %w", c.Kind, c.Name, ErrMissingComponent)
		}
		c.Body.applyTo(rb)
	default:
		return fmt.Errorf("apply command: unknown kind %s", c.Kind)
	}
	return nil
}

// sameTarget reports whether both commands address the same entity value slot.
func (c Command) sameTarget(o Command) bool {
	return c.Kind == o.Kind && c.Name == o.Name && c.ID == o.ID
}

func (c Command) samePayload(o Command) bool {
	switch c.Kind {
	case KindTransform:
		return c.Transform == o.Transform
	case KindSpriteColor:
		return c.Color == o.Color
	case KindRigidBody:
		return c.Body == o.Body
	}
	return false
}
