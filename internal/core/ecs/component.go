package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// PtrComponentStore is a typed sparse set of component pointers. Rows are
// packed densely; Each visits them in insertion order, except that removing
// a row moves the last row into its slot. Pointers stay valid until the
// row is removed.
type PtrComponentStore[T any] struct {
	index map[EntityID]int
	ids   []EntityID
	rows  []*T
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		index: make(map[EntityID]int, 64),
		ids:   make([]EntityID, 0, 64),
		rows:  make([]*T, 0, 64),
	}
}

// Set stores c for id, replacing any existing row in place.
func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.rows[i] = c
		return
	}
	s.index[id] = len(s.rows)
	s.ids = append(s.ids, id)
	s.rows = append(s.rows, c)
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.rows[i], true
}

func (s *PtrComponentStore[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.rows) - 1
	if i != last {
		s.ids[i] = s.ids[last]
		s.rows[i] = s.rows[last]
		s.index[s.ids[i]] = i
	}
	s.rows[last] = nil
	s.ids = s.ids[:last]
	s.rows = s.rows[:last]
	delete(s.index, id)
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int { return len(s.rows) }

// Each calls fn for every row. fn must not add or remove rows.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for i, c := range s.rows {
		fn(s.ids[i], c)
	}
}
