package event

import "github.com/l1jgo/scenegraph/internal/core/ecs"

// Scene notifications. Handles inside events may already be stale by the time
// they are dispatched; consumers re-resolve by name when they need the entity.

type EntityCreated struct {
	Entity ecs.EntityID
	Name   string
}

type EntityKilled struct {
	Entity ecs.EntityID
	Name   string
}

// HierarchyChanged fires on SetChild/RemoveChild/Rename. Parent is zero when
// the child became a root.
type HierarchyChanged struct {
	Child  ecs.EntityID
	Parent ecs.EntityID
}

type StateChanged struct {
	From string
	To   string
}
