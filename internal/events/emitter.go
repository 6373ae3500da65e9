package events

import "sync"

// Handler receives emitted events.
type Handler func(Event)

// Emitter fans events out to subscribed handlers.
type Emitter struct {
	mu     sync.Mutex
	subs   map[int64]Handler
	order  []int64
	nextID int64
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		subs: make(map[int64]Handler),
	}
}

// Subscribe registers a handler for all events and returns an
// unsubscribe function. Unsubscribing twice is a no-op.
func (e *Emitter) Subscribe(h Handler) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = h
	e.order = append(e.order, id)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Emit delivers ev to every subscribed handler in subscription order.
// Handlers run synchronously on the calling goroutine.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	handlers := make([]Handler, 0, len(e.subs))
	for _, id := range e.order {
		if h, ok := e.subs[id]; ok {
			handlers = append(handlers, h)
		}
	}
	e.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
