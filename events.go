// events.go — the event queue.
//
// Emission never runs handlers inline. Every emit appends to a strict FIFO
// queue; a single draining flag guarantees one dispatch loop at a time, so
// events emitted while a handler runs are processed after every event that
// was already queued. Delivery order for one event: external listeners
// registered for the exact name, then wildcard listeners, then script
// handlers whose name matches, each group in registration order.
package starlang

import "github.com/google/uuid"

// Listener is an external (Go-side) event subscriber.
type Listener func(event string, data Value)

// Wildcard subscribes a listener to every event.
const Wildcard = "*"

type listenerEntry struct {
	id string
	fn Listener
}

// handler is a script-side `on` registration.
type handler struct {
	event string
	guard Expr
	body  *BlockStmt
	env   *Env
	file  string
}

type queuedEvent struct {
	name string
	data Value
}

// On subscribes fn to an event name (or Wildcard) and returns its
// unsubscribe function. Unsubscribing twice is harmless.
func (in *Interp) On(event string, fn Listener) func() {
	entry := listenerEntry{id: uuid.NewString(), fn: fn}
	in.listeners[event] = append(in.listeners[event], entry)
	return func() {
		entries := in.listeners[event]
		for i := range entries {
			if entries[i].id == entry.id {
				in.listeners[event] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Emit enqueues an event from Go and drains the queue. When called from
// inside a listener the event is only queued; the outer drain loop picks
// it up in FIFO order.
func (in *Interp) Emit(event string, data Value) (err error) {
	defer in.capture(&err)
	in.enqueue(event, data)
	in.drain()
	return nil
}

func (in *Interp) enqueue(name string, data Value) {
	in.queue = append(in.queue, queuedEvent{name: name, data: data})
}

func (in *Interp) drain() {
	if in.draining {
		return
	}
	in.draining = true
	defer func() { in.draining = false }()
	for len(in.queue) > 0 {
		ev := in.queue[0]
		in.queue = in.queue[1:]
		in.dispatch(ev)
	}
}

func (in *Interp) dispatch(ev queuedEvent) {
	for _, l := range snapshotListeners(in.listeners[ev.name]) {
		l.fn(ev.name, ev.data)
	}
	for _, l := range snapshotListeners(in.listeners[Wildcard]) {
		l.fn(ev.name, ev.data)
	}
	for _, h := range append([]*handler(nil), in.handlers...) {
		if h.event != ev.name {
			continue
		}
		in.runHandler(h, ev.data)
	}
}

// snapshotListeners copies an entry slice so a listener unsubscribing (or
// subscribing) mid-dispatch cannot perturb the current pass.
func snapshotListeners(entries []listenerEntry) []listenerEntry {
	return append([]listenerEntry(nil), entries...)
}

// runHandler executes one script handler with `event` bound to the data.
// The guard sees the same scope; a falsy guard skips the body. A return
// inside a handler body just ends the handler.
func (in *Interp) runHandler(h *handler, data Value) {
	prevFile := in.file
	in.file = h.file
	defer func() { in.file = prevFile }()

	scope := NewEnv(h.env)
	scope.Define("event", data)
	if h.guard != nil && !in.eval(h.guard, scope).Truthy() {
		return
	}
	in.execBlock(h.body, scope)
}

// registerHandler installs an `on` statement. The event name expression is
// evaluated once, at registration.
func (in *Interp) registerHandler(s *OnStmt, env *Env) {
	name := in.evalEventName(s.Event, env)
	in.handlers = append(in.handlers, &handler{
		event: name,
		guard: s.Guard,
		body:  s.Body,
		env:   env,
		file:  in.file,
	})
}

func (in *Interp) evalEventName(e Expr, env *Env) string {
	v := in.eval(e, env)
	if v.Tag != VTStr {
		in.fail(e.Position(), "event name must be a string, got %s", v.TypeName())
	}
	return v.Str()
}
