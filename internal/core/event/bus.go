package event

import "reflect"

// Bus is a double-buffered event bus. Events emitted between two Flush calls
// are delivered together, in emission order, by the second call. Handlers
// that emit while being dispatched queue for the following Flush.
//
// The bus belongs to one scene and is used from the update goroutine only.
type Bus struct {
	front    []any
	back     []any
	handlers map[reflect.Type][]reflect.Value
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]any, 0, 32),
		back:     make([]any, 0, 32),
		handlers: make(map[reflect.Type][]reflect.Value),
	}
}

// Emit queues an event for the next Flush.
func Emit[T any](b *Bus, event T) {
	b.back = append(b.back, event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], reflect.ValueOf(fn))
}

// SwapBuffers moves queued events to the front buffer and empties the queue.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers the front buffer to the subscribed handlers.
func (b *Bus) DispatchAll() {
	for i, ev := range b.front {
		for _, h := range b.handlers[reflect.TypeOf(ev)] {
			h.Call([]reflect.Value{reflect.ValueOf(ev)})
		}
		b.front[i] = nil
	}
	b.front = b.front[:0]
}

// Flush swaps the buffers and dispatches what was emitted since the last call.
func (b *Bus) Flush() {
	b.SwapBuffers()
	b.DispatchAll()
}

// Pending reports how many events are waiting for the next Flush.
func (b *Bus) Pending() int { return len(b.back) }
