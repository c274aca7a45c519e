package input

import "sync"

// Handler reacts to a single event.
type Handler func(Event)

type registration struct {
	id      uint64
	handler Handler
}

// Listeners routes events to handlers registered per event type.
// Handlers run in registration order on the goroutine calling Dispatch.
type Listeners struct {
	mu     sync.Mutex
	nextID uint64
	byType map[EventType][]registration
}

// NewListeners creates an empty registry.
func NewListeners() *Listeners {
	return &Listeners{byType: make(map[EventType][]registration)}
}

// On registers h for events of type t and returns a function that removes it.
// The returned function is safe to call more than once.
func (l *Listeners) On(t EventType, h Handler) (remove func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.byType[t] = append(l.byType[t], registration{id: id, handler: h})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.off(t, id) })
	}
}

func (l *Listeners) off(t EventType, id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	regs := l.byType[t]
	for i, r := range regs {
		if r.id == id {
			// copy so an in-flight Dispatch keeps its snapshot intact
			next := make([]registration, 0, len(regs)-1)
			next = append(next, regs[:i]...)
			next = append(next, regs[i+1:]...)
			if len(next) == 0 {
				delete(l.byType, t)
			} else {
				l.byType[t] = next
			}
			return
		}
	}
}

// Dispatch delivers each event to the handlers registered for its type.
func (l *Listeners) Dispatch(events ...Event) {
	for _, ev := range events {
		l.mu.Lock()
		regs := l.byType[ev.Type]
		l.mu.Unlock()

		for _, r := range regs {
			r.handler(ev)
		}
	}
}

// Count returns the number of handlers registered for t.
func (l *Listeners) Count(t EventType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byType[t])
}
