// Package input tracks the held state of the four movement commands and routes
// press/release events from a frontend to the live session.
package input

import (
	"sync"
	"sync/atomic"
)

// Command is one of the directional controls.
type Command int

const (
	Forward Command = iota
	Backward
	TurnLeft
	TurnRight
	numCommands
)

func (c Command) String() string {
	switch c {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case TurnLeft:
		return "turn-left"
	case TurnRight:
		return "turn-right"
	}
	return "unknown"
}

// Keys is a point-in-time copy of the held commands.
type Keys struct {
	Forward   bool
	Backward  bool
	TurnLeft  bool
	TurnRight bool
}

// Any reports whether at least one command is held.
func (k Keys) Any() bool {
	return k.Forward || k.Backward || k.TurnLeft || k.TurnRight
}

// State holds one flag per command. Event handlers write it and the simulation
// tick reads it; atomics give each read a happens-before edge to the last write.
type State struct {
	held [numCommands]atomic.Bool
}

// Set records a press (down) or release of c. Unknown commands are ignored.
func (s *State) Set(c Command, down bool) {
	if c < 0 || c >= numCommands {
		return
	}
	s.held[c].Store(down)
}

// Snapshot returns the held commands as of now.
func (s *State) Snapshot() Keys {
	return Keys{
		Forward:   s.held[Forward].Load(),
		Backward:  s.held[Backward].Load(),
		TurnLeft:  s.held[TurnLeft].Load(),
		TurnRight: s.held[TurnRight].Load(),
	}
}

// Reset releases every command.
func (s *State) Reset() {
	for i := range s.held {
		s.held[i].Store(false)
	}
}

// Handler receives command events.
type Handler func(c Command, down bool)

// Dispatcher fans frontend key events out to attached handlers.
type Dispatcher struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[int]Handler)}
}

// Attach registers h and returns a function that removes it. Once detach has
// returned, h is not called again. Calling detach more than once is harmless.
func (d *Dispatcher) Attach(h Handler) (detach func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.handlers[id] = h
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.handlers, id)
			d.mu.Unlock()
		})
	}
}

// Dispatch delivers an event to every attached handler. Handlers run with the
// dispatcher locked and must not call Attach or detach.
func (d *Dispatcher) Dispatch(c Command, down bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.handlers {
		h(c, down)
	}
}

// Attached returns the number of registered handlers.
func (d *Dispatcher) Attached() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}
