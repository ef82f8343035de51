package engine

import (
	"fmt"

	"github.com/skeinflow/skein/ir"
)

// Status is what a proc body returns from one invocation.
type Status int

const (
	// Complete: the body ran its full tick, including any conditionally
	// skipped channel operations.
	Complete Status = iota
	// Blocked: the body attempted a FIFO receive on an empty queue and
	// suspended; it will be re-invoked once the scheduler sees progress.
	Blocked
)

func (s Status) String() string {
	if s == Blocked {
		return "blocked"
	}
	return "complete"
}

// TickFn is a compiled tick entry point: one bounded quantum of a proc's
// execution. The engine treats it as opaque. A body reads and writes
// channels and its persistent state only through the Tick it is handed, and
// must be deterministic given that state and the values it has received;
// a compiled straight-line tick body satisfies that by construction.
//
// A body that gets (nil, false) from Recv must return Blocked immediately.
// Returning Blocked without a failed receive in the same invocation panics.
type TickFn func(t *Tick) Status

type opKind int

const (
	opRecv opKind = iota
	opSend
)

func (k opKind) String() string {
	if k == opSend {
		return "send"
	}
	return "recv"
}

// opRecord is one completed channel operation, journaled in program order.
// Receives keep the bytes they produced so replay can serve them again.
type opRecord struct {
	kind opKind
	ch   ir.ChannelID
	data []byte
}

// continuation captures how far into its tick a proc has gotten, so a
// blocked receive can resume later without repeating performed side effects.
//
// The mechanism is journal replay: on resume the body re-executes from the
// top, but every channel operation it already performed is served from the
// journal (receives replay their recorded bytes, sends are suppressed), so
// externally each operation happens exactly once, in program order. The
// journal also carries the tick's transient in-flight values (everything the
// body computed so far is a function of state plus replayed receives).
type continuation struct {
	journal   []opRecord
	cursor    int
	blocked   bool
	blockedOn ir.ChannelID
}

func newContinuation() *continuation {
	return &continuation{blockedOn: -1}
}

// Tick is the per-invocation view handed to a proc body: its channel
// operations, routed through the continuation's journal, and its persistent
// state buffer.
type Tick struct {
	proc  *ir.Proc
	cont  *continuation
	mgr   *QueueManager
	state []byte

	newOps int // operations journaled by this invocation
	hooks  invokeHooks
}

// invokeHooks lets the runtime observe channel operations without the
// continuation layer depending on the tracing package.
type invokeHooks struct {
	channelOp func(proc ir.ProcID, ch ir.ChannelID, kind opKind)
}

// State returns the proc's persistent state buffer. The buffer is owned by
// the proc and survives across ticks; the body mutates it in place.
func (t *Tick) State() []byte { return t.state }

// Recv dequeues the next packed element from a channel. On an empty FIFO it
// returns (nil, false) and records the blocked channel; the body must then
// return Blocked without performing further operations.
//
// The returned bytes are owned by the continuation until the tick completes;
// the body must not modify them.
func (t *Tick) Recv(ch ir.ChannelID) ([]byte, bool) {
	if rec, ok := t.replay(opRecv, ch); ok {
		return rec.data, true
	}
	q := t.mgr.Queue(ch)
	buf := make([]byte, q.Stride())
	if !q.DequeueRaw(buf) {
		t.cont.blocked = true
		t.cont.blockedOn = ch
		return nil, false
	}
	t.record(opRecord{kind: opRecv, ch: ch, data: buf})
	return buf, true
}

// Send enqueues one packed element on a channel. Sends already performed
// before a suspension are suppressed on replay, preserving exactly-once
// semantics.
func (t *Tick) Send(ch ir.ChannelID, elem []byte) {
	if _, ok := t.replay(opSend, ch); ok {
		return
	}
	t.mgr.Queue(ch).EnqueueRaw(elem)
	t.record(opRecord{kind: opSend, ch: ch})
}

// RecvValue is Recv decoded through the codec.
func (t *Tick) RecvValue(ch ir.ChannelID) (ir.Value, bool) {
	buf, ok := t.Recv(ch)
	if !ok {
		return ir.Value{}, false
	}
	return Unpack(buf, t.mgr.Queue(ch).Channel().Type), true
}

// SendValue is Send encoded through the codec. It returns a type-mismatch
// error without journaling anything when v does not conform to the channel
// type.
func (t *Tick) SendValue(ch ir.ChannelID, v ir.Value) error {
	if _, ok := t.replay(opSend, ch); ok {
		return nil
	}
	q := t.mgr.Queue(ch)
	buf := make([]byte, q.Stride())
	if _, err := PackInto(v, q.Channel().Type, buf); err != nil {
		return err
	}
	q.EnqueueRaw(buf)
	t.record(opRecord{kind: opSend, ch: ch})
	return nil
}

// replay serves the operation at the cursor from the journal when one is
// recorded there. A recorded operation that disagrees with what the body is
// attempting means the body is not deterministic, which is a programming
// error.
func (t *Tick) replay(kind opKind, ch ir.ChannelID) (opRecord, bool) {
	if t.cont.cursor >= len(t.cont.journal) {
		return opRecord{}, false
	}
	rec := t.cont.journal[t.cont.cursor]
	if rec.kind != kind || rec.ch != ch {
		panic(fmt.Sprintf("engine: proc %q diverged from its journal at op %d (recorded %v on channel %d, attempted %v on channel %d)",
			t.proc.Name, t.cont.cursor, rec.kind, rec.ch, kind, ch))
	}
	t.cont.cursor++
	return rec, true
}

func (t *Tick) record(rec opRecord) {
	t.cont.journal = append(t.cont.journal, rec)
	t.cont.cursor++
	t.newOps++
	if t.hooks.channelOp != nil {
		t.hooks.channelOp(t.proc.ID, rec.ch, rec.kind)
	}
}
