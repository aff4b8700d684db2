package ecs

import "testing"

type pos struct{ X, Y float64 }
type tag struct{ Name string }

func TestPoolReusesIndexWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	if a.Index() != 1 || a.Generation() != 0 {
		t.Fatalf("first entity = (%d,%d), want (1,0)", a.Index(), a.Generation())
	}
	p.Destroy(a)
	if p.Alive(a) {
		t.Fatal("destroyed entity still alive")
	}
	b := p.Create()
	if b.Index() != a.Index() || b.Generation() != 1 {
		t.Fatalf("reused entity = (%d,%d), want (%d,1)", b.Index(), b.Generation(), a.Index())
	}
	if p.Alive(a) || !p.Alive(b) {
		t.Fatal("stale handle must not alias the new entity")
	}
	if p.Alive(0) {
		t.Fatal("zero id reported alive")
	}
	p.Destroy(a) // stale, no-op
	if p.Len() != 1 {
		t.Fatalf("Len = %d, want 1", p.Len())
	}
}

func TestDestroyEntityClearsStores(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	Store[pos](w.Registry()).Set(e, &pos{1, 2})
	Store[tag](w.Registry()).Set(e, &tag{"a"})

	if Store[pos](w.Registry()) != Store[pos](w.Registry()) {
		t.Fatal("Store returned a different store for the same type")
	}
	w.DestroyEntity(e)
	if Store[pos](w.Registry()).Has(e) || Store[tag](w.Registry()).Has(e) {
		t.Fatal("components survived DestroyEntity")
	}
}

func TestDestroyQueueDedupes(t *testing.T) {
	w := NewWorld()
	a, b := w.CreateEntity(), w.CreateEntity()
	w.MarkForDestruction(a)
	w.MarkForDestruction(b)
	w.MarkForDestruction(a)

	got := w.DrainDestroyQueue()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("drained %v, want [%v %v]", got, a, b)
	}
	if w.DrainDestroyQueue() != nil {
		t.Fatal("queue not empty after drain")
	}
}

func TestClearInvalidatesHandles(t *testing.T) {
	w := NewWorld()
	var ids []EntityID
	for range 3 {
		e := w.CreateEntity()
		Store[pos](w.Registry()).Set(e, &pos{})
		ids = append(ids, e)
	}
	w.MarkForDestruction(ids[0])
	w.Clear()

	if w.Pool().Len() != 0 || Store[pos](w.Registry()).Len() != 0 {
		t.Fatalf("Clear left %d entities and %d components", w.Pool().Len(), Store[pos](w.Registry()).Len())
	}
	for _, id := range ids {
		if w.Alive(id) {
			t.Errorf("%v alive after Clear", id)
		}
	}
	if w.DrainDestroyQueue() != nil {
		t.Fatal("Clear kept queued entities")
	}
}

func TestStoreRemoveKeepsRowsPacked(t *testing.T) {
	s := NewPtrComponentStore[tag]()
	a, b, c := NewEntityID(1, 0), NewEntityID(2, 0), NewEntityID(3, 0)
	s.Set(a, &tag{"a"})
	s.Set(b, &tag{"b"})
	s.Set(c, &tag{"c"})
	keep, _ := s.Get(c)

	s.Remove(a)
	s.Remove(a)
	if s.Len() != 2 || s.Has(a) {
		t.Fatalf("Len = %d, Has(a) = %v", s.Len(), s.Has(a))
	}
	if got, _ := s.Get(c); got != keep {
		t.Fatal("moved row changed pointer")
	}

	s.Set(b, &tag{"b2"})
	var seen []string
	s.Each(func(_ EntityID, v *tag) { seen = append(seen, v.Name) })
	if len(seen) != 2 || seen[0] != "c" || seen[1] != "b2" {
		t.Fatalf("Each visited %v, want [c b2]", seen)
	}
}
