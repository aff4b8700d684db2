package ecs

import "reflect"

// Registry tracks all component stores and supports bulk cleanup on entity destroy.
type Registry struct {
	stores []Removable
	byType map[reflect.Type]Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 16),
		byType: make(map[reflect.Type]Removable, 16),
	}
}

// Register adds a component store to the registry.
func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}

// Store returns the registry's store for component type T, creating and
// registering it on first use.
func Store[T any](r *Registry) *PtrComponentStore[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := r.byType[t]; ok {
		return s.(*PtrComponentStore[T])
	}
	s := NewPtrComponentStore[T]()
	r.byType[t] = s
	r.Register(s)
	return s
}
