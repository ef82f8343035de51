package engine

import (
	"fmt"

	"github.com/skeinflow/skein/ir"
)

// procContext binds one proc to its compiled entry point, its current
// continuation, and its persistent state buffer.
type procContext struct {
	proc  *ir.Proc
	body  TickFn
	cont  *continuation
	state []byte
}

func newProcContext(proc *ir.Proc, body TickFn) *procContext {
	p := &procContext{proc: proc, body: body}
	p.reset()
	return p
}

// reset discards the continuation and reinitializes the state buffer to the
// proc's declared initial contents (or zeros).
func (p *procContext) reset() {
	p.cont = newContinuation()
	p.state = make([]byte, p.proc.StateSize)
	copy(p.state, p.proc.InitialState)
}

// QueueVariant selects the queue implementation for a whole runtime.
type QueueVariant int

const (
	// LockedQueues guards every queue with mutual exclusion so external
	// goroutines can feed input channels and drain output channels while
	// the tick loop runs. This is the default.
	LockedQueues QueueVariant = iota
	// UnlockedQueues omits locking; all channel access must come from the
	// scheduler's single thread of control.
	UnlockedQueues
)

// Observer receives scheduler events. Implementations must not mutate
// engine state; the trace package provides one.
type Observer interface {
	// Invocation is called after each proc invocation with the global tick
	// number, the pass within it, the resulting status, and the number of
	// channel operations the invocation performed.
	Invocation(tick, pass int, proc ir.ProcID, status Status, ops int)

	// ChannelOp is called for each performed (not replayed) channel
	// operation. send is false for receives.
	ChannelOp(tick int, proc ir.ProcID, ch ir.ChannelID, send bool)
}

// Options configures a Runtime.
type Options struct {
	// Queues selects the queue variant; the zero value is LockedQueues.
	Queues QueueVariant

	// Observer, when non-nil, is notified of scheduler events.
	Observer Observer
}

// Runtime drives a process network to quiescence one global tick at a time:
// a single-threaded cooperative round robin over all procs, in declaration
// order, until every proc completes its tick or a full pass makes no
// progress. Suspension is an engine-level continuation, never a blocked
// operating thread.
type Runtime struct {
	network *ir.Network
	mgr     *QueueManager
	procs   []*procContext
	obs     Observer
	tick    int
}

// New constructs a runtime for the network, binding each proc by name to
// its compiled entry point. Every proc must have a binding; a missing or
// superfluous binding fails construction.
func New(network *ir.Network, bodies map[string]TickFn, opts *Options) (*Runtime, error) {
	var o Options
	if opts != nil {
		o = *opts
	}

	rt := &Runtime{network: network, obs: o.Observer}
	if o.Queues == UnlockedQueues {
		rt.mgr = NewQueueManager(network)
	} else {
		rt.mgr = NewLockedQueueManager(network)
	}

	for _, proc := range network.Procs() {
		body, ok := bodies[proc.Name]
		if !ok {
			return nil, fmt.Errorf("engine: no body bound for proc %q", proc.Name)
		}
		rt.procs = append(rt.procs, newProcContext(proc, body))
	}
	for name := range bodies {
		if network.ProcByName(name) == nil {
			return nil, fmt.Errorf("engine: body bound for unknown proc %q", name)
		}
	}
	return rt, nil
}

// Network returns the network this runtime executes.
func (rt *Runtime) Network() *ir.Network { return rt.network }

// Queues returns the runtime's queue manager, the owner of all channel
// queues.
func (rt *Runtime) Queues() *QueueManager { return rt.mgr }

// TickReport is the outcome of one global tick. A stalled tick, meaning
// procs left blocked after a pass with zero progress, is data, not an error: a
// permanently blocked proc is a valid, detectable end state, and the caller
// decides whether repeated stalls constitute deadlock.
type TickReport struct {
	// Passes is the number of full round-robin passes the tick ran.
	Passes int

	// Completed lists procs that finished their tick, in declaration order.
	Completed []ir.ProcID

	// BlockedOn maps each proc left blocked to the channel it is waiting
	// on. Empty when the tick completed fully.
	BlockedOn map[ir.ProcID]ir.ChannelID
}

// AllComplete reports whether every proc finished its tick.
func (r TickReport) AllComplete() bool { return len(r.BlockedOn) == 0 }

// Stalled reports whether the tick ended with at least one proc blocked.
func (r TickReport) Stalled() bool { return len(r.BlockedOn) > 0 }

// Tick runs one global tick: repeated round-robin passes over all procs not
// yet complete, stopping when every proc completes or a pass makes no
// progress. Progress is any performed channel operation or tick completion.
// Visitation order does not affect the final state (at most one reader and
// writer per channel per tick plus progress-driven convergence make the
// result order-independent), so declaration order is used.
func (rt *Runtime) Tick() TickReport {
	rt.tick++
	report := TickReport{BlockedOn: make(map[ir.ProcID]ir.ChannelID)}

	done := make([]bool, len(rt.procs))
	remaining := len(rt.procs)

	progress := true
	for progress && remaining > 0 {
		progress = false
		report.Passes++
		for i, p := range rt.procs {
			if done[i] {
				continue
			}
			status, ops := rt.invoke(report.Passes, p)
			if ops > 0 || status == Complete {
				progress = true
			}
			if status == Complete {
				done[i] = true
				remaining--
			}
		}
	}

	for i, p := range rt.procs {
		if done[i] {
			report.Completed = append(report.Completed, p.proc.ID)
		} else {
			report.BlockedOn[p.proc.ID] = p.cont.blockedOn
		}
	}
	return report
}

// invoke runs one proc invocation against its current continuation. On
// completion the continuation is destroyed and freshly allocated so the next
// tick starts from the top with an empty journal.
func (rt *Runtime) invoke(pass int, p *procContext) (Status, int) {
	t := &Tick{proc: p.proc, cont: p.cont, mgr: rt.mgr, state: p.state}
	if rt.obs != nil {
		t.hooks.channelOp = func(proc ir.ProcID, ch ir.ChannelID, kind opKind) {
			rt.obs.ChannelOp(rt.tick, proc, ch, kind == opSend)
		}
	}

	p.cont.cursor = 0
	p.cont.blocked = false
	p.cont.blockedOn = -1

	status := p.body(t)
	if status == Blocked && !p.cont.blocked {
		// Same contract violation class as journal divergence: the body is
		// not behaving like a compiled tick body.
		panic(fmt.Sprintf("engine: proc %q returned blocked without a blocked receive", p.proc.Name))
	}
	if status == Complete {
		p.cont = newContinuation()
	}
	if rt.obs != nil {
		rt.obs.Invocation(rt.tick, pass, p.proc.ID, status, t.newOps)
	}
	return status, t.newOps
}

// ResetState discards all continuations and state buffers and re-seeds
// every channel, returning the network to its initial configuration without
// rebinding compiled entry points.
func (rt *Runtime) ResetState() {
	for _, p := range rt.procs {
		p.reset()
	}
	rt.mgr.Reset()
	rt.tick = 0
}

// ProcState returns a copy of a proc's persistent state buffer. The live
// buffer stays exclusively owned by the proc.
func (rt *Runtime) ProcState(id ir.ProcID) []byte {
	if int(id) < 0 || int(id) >= len(rt.procs) {
		panic(fmt.Sprintf("engine: unknown proc id %d", id))
	}
	return append([]byte(nil), rt.procs[id].state...)
}

// ---------------------------------------------------------------------------
// Channel boundaries
// ---------------------------------------------------------------------------

// EnqueueValue encodes and writes a value onto a channel; the structured
// boundary for test harnesses and embedding hosts.
func (rt *Runtime) EnqueueValue(ch ir.ChannelID, v ir.Value) error {
	return rt.mgr.Queue(ch).Enqueue(v)
}

// DequeueValue reads and decodes the next value from a channel.
func (rt *Runtime) DequeueValue(ch ir.ChannelID) (ir.Value, bool) {
	return rt.mgr.Queue(ch).Dequeue()
}

// EnqueueRaw writes an already-packed element onto a channel; the zero-copy
// boundary for callers operating in the packed byte representation.
func (rt *Runtime) EnqueueRaw(ch ir.ChannelID, elem []byte) {
	rt.mgr.Queue(ch).EnqueueRaw(elem)
}

// DequeueRaw reads the next packed element from a channel into out, which
// must hold at least the channel's stride.
func (rt *Runtime) DequeueRaw(ch ir.ChannelID, out []byte) bool {
	return rt.mgr.Queue(ch).DequeueRaw(out)
}
