package ecs

// World is the top-level ECS container. It owns the entity pool, the component
// registry, and a deferred destruction queue drained by the owner at the end
// of each update.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 16),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// DestroyEntity clears the entity from every registered store and retires
// its handle.
func (w *World) DestroyEntity(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	w.registry.RemoveAll(id)
	w.pool.Destroy(id)
}

// MarkForDestruction queues an entity for end-of-update cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	for _, q := range w.destroyQueue {
		if q == id {
			return
		}
	}
	w.destroyQueue = append(w.destroyQueue, id)
}

// DrainDestroyQueue returns the queued entities and empties the queue. The
// caller destroys them, since it may need to unlink them first.
func (w *World) DrainDestroyQueue() []EntityID {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	out := make([]EntityID, len(w.destroyQueue))
	copy(out, w.destroyQueue)
	w.destroyQueue = w.destroyQueue[:0]
	return out
}

// Clear destroys every live entity. Generations advance, so handles taken
// before the call are stale afterwards.
func (w *World) Clear() {
	var ids []EntityID
	w.pool.Each(func(id EntityID) { ids = append(ids, id) })
	for _, id := range ids {
		w.DestroyEntity(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}
