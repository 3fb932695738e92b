// Package event provides a double-buffered typed event bus. Events emitted
// during frame N are delivered after frame N's swap, so consumers never
// observe a frame's edits half-way through.
package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Emit appends to the back buffer;
// SwapBuffers rotates back to front; DispatchAll delivers the front buffer.
type Bus struct {
	mu       sync.Mutex
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

// Emit queues an event into the back buffer. Safe to call from any
// goroutine; the scripting client and the sync loop share one bus.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	b.back[t] = append(b.back[t], event)
	b.mu.Unlock()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers rotates back to front and clears the new back buffer.
// Called once per frame before DispatchAll.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers,
// in emission order per type.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	front := b.front
	handlers := b.handlers
	b.mu.Unlock()

	for t, events := range front {
		for _, ev := range events {
			for _, h := range handlers[t] {
				callHandler(h, ev)
			}
		}
	}
}

// callHandler invokes a typed handler with an event of the matching type.
// Safe because Subscribe and Emit key both maps by the same reflect.Type.
func callHandler(h any, ev any) {
	reflect.ValueOf(h).Call([]reflect.Value{reflect.ValueOf(ev)})
}
