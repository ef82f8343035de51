// Package trace records what the engine did: per-invocation scheduling
// events and channel operations. Recording is a pure observer that never
// alters engine semantics, and is entirely optional; a runtime without a
// recorder pays nothing.
package trace

import (
	"sync"

	"github.com/skeinflow/skein/engine"
	"github.com/skeinflow/skein/ir"
)

// EventKind discriminates trace events.
type EventKind int

const (
	// EventInvocation: the scheduler invoked a proc and observed a result.
	EventInvocation EventKind = iota
	// EventChannelOp: a proc performed (not replayed) a channel operation.
	EventChannelOp
)

// Event is one observation of engine execution.
type Event struct {
	Kind EventKind `cbor:"kind"`
	Tick int       `cbor:"tick"`
	Proc ir.ProcID `cbor:"proc"`

	// Invocation fields
	Pass     int    `cbor:"pass,omitempty"`
	Status   string `cbor:"status,omitempty"`
	Ops      int    `cbor:"ops,omitempty"`

	// Channel-op fields
	Channel ir.ChannelID `cbor:"channel,omitempty"`
	Send    bool         `cbor:"send,omitempty"`
}

// Log is a complete recording of one run.
type Log struct {
	Network string  `cbor:"network"`
	Events  []Event `cbor:"events"`
}

// Memory accumulates events in memory. It implements engine.Observer and is
// safe for use with a runtime whose queues are fed from other goroutines.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// NewMemory returns an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Invocation implements engine.Observer.
func (m *Memory) Invocation(tick, pass int, proc ir.ProcID, status engine.Status, ops int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{
		Kind:   EventInvocation,
		Tick:   tick,
		Pass:   pass,
		Proc:   proc,
		Status: status.String(),
		Ops:    ops,
	})
}

// ChannelOp implements engine.Observer.
func (m *Memory) ChannelOp(tick int, proc ir.ProcID, ch ir.ChannelID, send bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{
		Kind:    EventChannelOp,
		Tick:    tick,
		Proc:    proc,
		Channel: ch,
		Send:    send,
	})
}

// Events returns a copy of everything recorded so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Log packages the recording under a network name.
func (m *Memory) Log(network string) Log {
	return Log{Network: network, Events: m.Events()}
}

// Reset discards everything recorded so far.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

var _ engine.Observer = (*Memory)(nil)
