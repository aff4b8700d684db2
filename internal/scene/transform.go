package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// rotation builds the matrix for Euler angles in degrees, applied X then Y then Z.
func rotation(deg mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Rotate3DX(mgl64.DegToRad(deg.X())).
		Mul3(mgl64.Rotate3DY(mgl64.DegToRad(deg.Y()))).
		Mul3(mgl64.Rotate3DZ(mgl64.DegToRad(deg.Z())))
}

func mulVec3(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// compose places local under a parent with the given world transform.
func compose(parent, local TransformComponent) TransformComponent {
	offset := rotation(parent.Rotation).Mul3x1(mulVec3(local.Translation, parent.Scale))
	return TransformComponent{
		Translation: parent.Translation.Add(offset),
		Rotation:    parent.Rotation.Add(local.Rotation),
		Scale:       mulVec3(parent.Scale, local.Scale),
	}
}

// decompose is the inverse of compose. Axes where the parent scale is zero
// keep the value from prev; ok is false when that happened.
func decompose(parent, world, prev TransformComponent) (TransformComponent, bool) {
	d := rotation(parent.Rotation).Transpose().Mul3x1(world.Translation.Sub(parent.Translation))
	out := TransformComponent{Rotation: world.Rotation.Sub(parent.Rotation)}
	ok := true
	for i := 0; i < 3; i++ {
		if parent.Scale[i] == 0 {
			out.Translation[i] = prev.Translation[i]
			out.Scale[i] = prev.Scale[i]
			ok = false
			continue
		}
		out.Translation[i] = d[i] / parent.Scale[i]
		out.Scale[i] = world.Scale[i] / parent.Scale[i]
	}
	return out, ok
}

// WorldTransform composes e's local transform with those of its ancestors.
func (s *Scene) WorldTransform(e Entity) TransformComponent {
	local := IdentityTransform()
	if t, ok := Get[TransformComponent](s, e); ok {
		local = *t
	}
	parent, ok := s.Parent(e)
	if !ok {
		return local
	}
	return compose(s.WorldTransform(parent), local)
}

// LocalFromWorld returns the local transform that places e at world under its
// current parent.
func (s *Scene) LocalFromWorld(e Entity, world TransformComponent) TransformComponent {
	prev := IdentityTransform()
	if t, ok := Get[TransformComponent](s, e); ok {
		prev = *t
	}
	parent, ok := s.Parent(e)
	if !ok {
		return world
	}
	return s.localUnder(parent, world, prev)
}

func (s *Scene) localUnder(parent Entity, world, prev TransformComponent) TransformComponent {
	local, ok := decompose(s.WorldTransform(parent), world, prev)
	if !ok {
		s.log.Warn("parent scale has a zero axis; keeping previous local values",
			zap.String("parent", s.label(parent)))
	}
	return local
}
