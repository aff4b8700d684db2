package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/core/event"
)

// SetChild makes child a child of parent, appending it to the parent's order.
// With adjust set, child's local transform is recomputed so its world pose
// does not change.
func (s *Scene) SetChild(parent, child Entity, adjust bool) error {
	if !s.Alive(parent) || !s.Alive(child) {
		return fmt.Errorf("set child: %w", ErrNoEntity)
	}
	if parent == child {
		return fmt.Errorf("set child: %w", ErrSelfParent)
	}
	childName, parentName := s.Name(child), s.Name(parent)
	if childName == "" || parentName == "" {
		return fmt.Errorf("set child: %w", ErrAnonymous)
	}
	for p := parent; p != 0; p, _ = s.Parent(p) {
		if p == child {
			return fmt.Errorf("set child %s under %s: %w", childName, parentName, ErrCycle)
		}
	}
	if cur, ok := s.Parent(child); ok && cur == parent {
		return nil
	}

	world := s.WorldTransform(child)
	if _, ok := s.Parent(child); ok {
		s.detach(child)
	} else {
		s.rootOrder = removeName(s.rootOrder, childName)
	}

	Add(s, child, ParentComponent{Parent: parent})
	if order, ok := Get[EntityOrderComponent](s, parent); ok {
		order.Children = append(order.Children, childName)
	} else {
		Add(s, parent, EntityOrderComponent{Children: []string{childName}})
	}

	if adjust {
		if t, ok := Get[TransformComponent](s, child); ok {
			*t = s.localUnder(parent, world, *t)
		}
	}
	event.Emit(s.bus, event.HierarchyChanged{Child: child, Parent: parent})
	return nil
}

// RemoveChild detaches child from its parent and makes it a root again.
// With adjust set, the parent's world transform is baked into child's local
// transform. Detaching a root is a no-op.
func (s *Scene) RemoveChild(child Entity, adjust bool) error {
	if !s.Alive(child) {
		return fmt.Errorf("remove child: %w", ErrNoEntity)
	}
	if _, ok := s.Parent(child); !ok {
		return nil
	}
	world := s.WorldTransform(child)
	s.detach(child)
	s.rootOrder = append(s.rootOrder, s.Name(child))
	if adjust {
		if t, ok := Get[TransformComponent](s, child); ok {
			*t = world
		}
	}
	event.Emit(s.bus, event.HierarchyChanged{Child: child})
	return nil
}

// detach unlinks child from its parent without touching the root list.
func (s *Scene) detach(child Entity) {
	p, ok := Get[ParentComponent](s, child)
	if !ok {
		return
	}
	parent := p.Parent
	Remove[ParentComponent](s, child)
	order, ok := Get[EntityOrderComponent](s, parent)
	if !ok {
		return
	}
	order.Children = removeName(order.Children, s.Name(child))
	if len(order.Children) == 0 {
		Remove[EntityOrderComponent](s, parent)
	}
}

// Parent returns e's parent.
func (s *Scene) Parent(e Entity) (Entity, bool) {
	p, ok := Get[ParentComponent](s, e)
	if !ok || !s.Alive(p.Parent) {
		return 0, false
	}
	return p.Parent, true
}

// Children returns e's children in display order.
func (s *Scene) Children(e Entity) []Entity {
	order, ok := Get[EntityOrderComponent](s, e)
	if !ok {
		return nil
	}
	out := make([]Entity, 0, len(order.Children))
	for _, name := range order.Children {
		if c, ok := s.names[name]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Roots returns the named roots in display order followed by anonymous
// entities in creation order.
func (s *Scene) Roots() []Entity {
	out := make([]Entity, 0, len(s.rootOrder)+len(s.anonymous))
	for _, name := range s.rootOrder {
		if e, ok := s.names[name]; ok {
			out = append(out, e)
		}
	}
	return append(out, s.anonymous...)
}

// Walk visits every entity depth-first in display order, parents before
// their children.
func (s *Scene) Walk(fn func(e Entity, depth int)) {
	var visit func(e Entity, depth int)
	visit = func(e Entity, depth int) {
		fn(e, depth)
		for _, c := range s.Children(e) {
			visit(c, depth+1)
		}
	}
	for _, e := range s.Roots() {
		visit(e, 0)
	}
}

// KillEntity destroys e and all of its descendants, children first.
func (s *Scene) KillEntity(e Entity) {
	if !s.Alive(e) {
		return
	}
	for _, c := range s.Children(e) {
		s.KillEntity(c)
	}

	name := s.Name(e)
	if _, ok := s.Parent(e); ok {
		s.detach(e)
	} else if name != "" {
		s.rootOrder = removeName(s.rootOrder, name)
	} else {
		s.anonymous = removeEntity(s.anonymous, e)
	}

	if rb, ok := Get[RigidBodyComponent](s, e); ok && s.phys.Valid(rb.Body) {
		s.phys.DestroyBody(rb.Body)
	}
	if sc, ok := Get[ScriptComponent](s, e); ok && sc.Instance != nil {
		inst := sc.Instance
		sc.Instance = nil
		if err := inst.Destroy(); err != nil {
			s.log.Error("script destroy failed", zap.String("entity", s.label(e)), zap.Error(err))
		}
	}

	if name != "" {
		delete(s.names, name)
	}
	delete(s.ids, s.ID(e))
	if s.selected == e {
		s.selected = 0
	}
	s.world.DestroyEntity(e)
	event.Emit(s.bus, event.EntityKilled{Entity: e, Name: name})
}

// QueueKill schedules e for destruction at the end of the current update.
func (s *Scene) QueueKill(e Entity) {
	if s.Alive(e) {
		s.world.MarkForDestruction(e)
	}
}

// FlushKills destroys every queued entity.
func (s *Scene) FlushKills() {
	for _, e := range s.world.DrainDestroyQueue() {
		s.KillEntity(e)
	}
}
