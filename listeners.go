package givehub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Notification is one inbound push message. Data holds the whole decoded
// message, including its "type" field.
type Notification struct {
	Type string
	Data map[string]any
	Raw  json.RawMessage
}

// Decode unmarshals the raw message into v.
func (n Notification) Decode(v any) error {
	return json.Unmarshal(n.Raw, v)
}

type HandlerFunc func(ctx context.Context, n Notification) error

// Listener is a registration handle for a notification handler. Listeners are
// compared by identity: registering the same *Listener twice for an event
// type has no additional effect.
type Listener struct {
	fn HandlerFunc
}

func NewListener(fn HandlerFunc) *Listener {
	return &Listener{fn: fn}
}

func (l *Listener) invoke(ctx context.Context, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	if l.fn == nil {
		return nil
	}

	return l.fn(ctx, n)
}

// listenerRegistry maps event types to their listeners.
type listenerRegistry struct {
	mu        sync.RWMutex
	listeners map[string]map[*Listener]struct{}
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{listeners: make(map[string]map[*Listener]struct{})}
}

func (r *listenerRegistry) add(eventType string, l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.listeners[eventType]
	if set == nil {
		set = make(map[*Listener]struct{})
		r.listeners[eventType] = set
	}

	set[l] = struct{}{}
}

func (r *listenerRegistry) remove(eventType string, l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.listeners[eventType]
	if set == nil {
		return
	}

	delete(set, l)

	if len(set) == 0 {
		delete(r.listeners, eventType)
	}
}

// lookup returns a copy so handlers may call On/Off while being dispatched.
func (r *listenerRegistry) lookup(eventType string) []*Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.listeners[eventType]
	if len(set) == 0 {
		return nil
	}

	out := make([]*Listener, 0, len(set))
	for l := range set {
		out = append(out, l)
	}

	return out
}
