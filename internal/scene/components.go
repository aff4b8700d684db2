package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/l1jgo/scenegraph/internal/assets"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/physics"
)

// Entity is a generational handle into a Scene. The zero value is no entity.
type Entity = ecs.EntityID

// IDComponent is the stable identity of an entity across save/load.
type IDComponent struct {
	ID uuid.UUID
}

// TagComponent holds the unique display name. Empty means anonymous.
type TagComponent struct {
	Name string
}

// ParentComponent links a child to its parent.
type ParentComponent struct {
	Parent Entity
}

// EntityOrderComponent lists a parent's children by name in display order.
// It exists only while the entity has at least one child.
type EntityOrderComponent struct {
	Children []string
}

// TransformComponent is the local transform relative to the parent.
// Rotation is Euler angles in degrees.
type TransformComponent struct {
	Translation mgl64.Vec3 `yaml:"Translation,flow"`
	Scale       mgl64.Vec3 `yaml:"Scale,flow"`
	Rotation    mgl64.Vec3 `yaml:"Rotation,flow"`
}

// IdentityTransform is a transform at the origin with unit scale.
func IdentityTransform() TransformComponent {
	return TransformComponent{Scale: mgl64.Vec3{1, 1, 1}}
}

type SpriteRendererComponent struct {
	Color        mgl64.Vec4
	Texture      assets.ID
	TilingFactor float64
}

type CircleRendererComponent struct {
	Color     mgl64.Vec4 `yaml:"Color,flow"`
	Thickness float64    `yaml:"Thickness"`
	Fade      float64    `yaml:"Fade"`
}

type TextRendererComponent struct {
	Text        string
	Color       mgl64.Vec4
	Font        assets.ID
	Kerning     float64
	LineSpacing float64
}

// RigidBodyComponent configures the physics body of an entity. Body and the
// Prev fields are runtime state owned by the physics bridge; PrevAngle is in
// radians.
type RigidBodyComponent struct {
	Type           physics.BodyType `yaml:"Type"`
	FixedRotation  bool             `yaml:"FixedRotation"`
	Bullet         bool             `yaml:"Bullet"`
	FastRotation   bool             `yaml:"FastRotation"`
	GravityScale   float64          `yaml:"GravityScale"`
	LinearDamping  float64          `yaml:"LinearDamping"`
	AngularDamping float64          `yaml:"AngularDamping"`

	Body         physics.BodyHandle `yaml:"-"`
	PrevPosition mgl64.Vec2         `yaml:"-"`
	PrevAngle    float64            `yaml:"-"`
}

// BoxCollider2DComponent is a box of full Size, scaled by the transform.
type BoxCollider2DComponent struct {
	Offset   mgl64.Vec2 `yaml:"Offset,flow"`
	Size     mgl64.Vec2 `yaml:"Size,flow"`
	Material string     `yaml:"Material,omitempty"`
}

type CircleCollider2DComponent struct {
	Offset   mgl64.Vec2 `yaml:"Offset,flow"`
	Radius   float64    `yaml:"Radius"`
	Material string     `yaml:"Material,omitempty"`
}

// ScriptComponent binds a compiled script program to an entity. Instance is
// non-nil only while the scene is in Play.
type ScriptComponent struct {
	Path     string
	Program  ScriptProgram
	Instance ScriptInstance
}

func defaultSprite() SpriteRendererComponent {
	return SpriteRendererComponent{Color: mgl64.Vec4{1, 1, 1, 1}, TilingFactor: 1}
}

func defaultCircle() CircleRendererComponent {
	return CircleRendererComponent{Color: mgl64.Vec4{1, 1, 1, 1}, Thickness: 1, Fade: 0.005}
}

func defaultText() TextRendererComponent {
	return TextRendererComponent{Color: mgl64.Vec4{1, 1, 1, 1}}
}

func defaultRigidBody() RigidBodyComponent {
	return RigidBodyComponent{Type: physics.Static, GravityScale: 1}
}

func defaultBoxCollider() BoxCollider2DComponent {
	return BoxCollider2DComponent{Size: mgl64.Vec2{1, 1}}
}

func defaultCircleCollider() CircleCollider2DComponent {
	return CircleCollider2DComponent{Radius: 0.5}
}
