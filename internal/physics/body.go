package physics

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType selects how the engine moves a body.
type BodyType uint8

const (
	Static BodyType = iota
	Kinematic
	Dynamic
)

var bodyTypeNames = [...]string{"Static", "Kinematic", "Dynamic"}

func (t BodyType) String() string {
	if int(t) < len(bodyTypeNames) {
		return bodyTypeNames[t]
	}
	return fmt.Sprintf("BodyType(%d)", t)
}

// ParseBodyType accepts the symbolic names written by String, case-insensitively.
func ParseBodyType(s string) (BodyType, error) {
	for i, name := range bodyTypeNames {
		if strings.EqualFold(s, name) {
			return BodyType(i), nil
		}
	}
	return Static, fmt.Errorf("unknown body type %q", s)
}

func (t BodyType) MarshalText() ([]byte, error) {
	if int(t) >= len(bodyTypeNames) {
		return nil, fmt.Errorf("marshal body type: invalid value %d", t)
	}
	return []byte(t.String()), nil
}

func (t *BodyType) UnmarshalText(b []byte) error {
	v, err := ParseBodyType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// BodyHandle refers to a body owned by a World. The zero handle is never
// valid, and every handle goes stale once its world is destroyed.
type BodyHandle struct {
	world uint64
	slot  uint32
	gen   uint32
}

// IsZero reports whether the handle was never bound.
func (h BodyHandle) IsZero() bool { return h == BodyHandle{} }

// BodyDef describes a body to create. Angle is in radians.
type BodyDef struct {
	Type           BodyType
	Position       mgl64.Vec2
	Angle          float64
	FixedRotation  bool
	Bullet         bool
	FastRotation   bool
	GravityScale   float64
	LinearDamping  float64
	AngularDamping float64
}

// ShapeDef carries the surface properties applied to a new shape. When
// UpdateBodyMass is false the shape contributes no mass to its body.
type ShapeDef struct {
	Density        float64
	Friction       float64
	Restitution    float64
	Sensor         bool
	UpdateBodyMass bool
}
