package engine

import (
	"sync"

	"github.com/skeinflow/skein/ir"
)

// Queue is one channel's storage, with a typed boundary (Enqueue/Dequeue,
// for embedding hosts and test harnesses) and a raw boundary
// (EnqueueRaw/DequeueRaw, for proc bodies that already hold packed bytes).
// Raw and typed operations interleave correctly on the same storage.
//
// Queues never block: Dequeue on an empty FIFO reports no data and the
// caller polls or is scheduled externally. Two implementations exist, an
// unlocked one for the scheduler's single thread of control and a
// mutex-guarded one for queues shared with external goroutines, selected
// when the QueueManager is built.
type Queue interface {
	// Channel returns the channel this queue stores.
	Channel() *ir.Channel

	// Enqueue packs the value and writes it, or returns a type-mismatch
	// error (wrapping ErrTypeMismatch) leaving the queue untouched.
	Enqueue(v ir.Value) error

	// Dequeue reads and decodes the next element. For FIFO channels that is
	// the oldest unread write, consumed; for SingleValue channels the most
	// recent write, not consumed. ok is false when no data is present.
	Dequeue() (v ir.Value, ok bool)

	// EnqueueRaw writes one already-packed element.
	EnqueueRaw(elem []byte)

	// DequeueRaw reads one packed element into out (at least Stride bytes),
	// with the same discipline semantics as Dequeue.
	DequeueRaw(out []byte) bool

	// Len returns the number of stored elements (0 or 1 for SingleValue).
	Len() int

	// Stride returns the aligned per-element byte stride.
	Stride() int

	// reset discards contents and re-enqueues the channel's seed values,
	// in declaration order.
	reset()
}

// ---------------------------------------------------------------------------
// Unlocked queue
// ---------------------------------------------------------------------------

// unlockedQueue assumes a single logical thread of control and omits
// locking. FIFO channels are backed by a ByteStore; SingleValue channels by
// a single slot with register semantics.
type unlockedQueue struct {
	ch     *ir.Channel
	stride int

	store *ByteStore // FIFO only
	slot  []byte     // SingleValue only
	full  bool       // SingleValue: slot holds a value
}

func newUnlockedQueue(ch *ir.Channel) *unlockedQueue {
	q := &unlockedQueue{ch: ch}
	if ch.Kind == ir.SingleValue {
		q.stride = alignUp(ch.Type.PackedSize(), MaxAlign)
		if q.stride == 0 {
			q.stride = MaxAlign
		}
		q.slot = make([]byte, q.stride)
	} else {
		q.store = NewByteStore(ch.Type.PackedSize())
		q.stride = q.store.Stride()
	}
	q.seed()
	return q
}

func (q *unlockedQueue) Channel() *ir.Channel { return q.ch }
func (q *unlockedQueue) Stride() int          { return q.stride }

func (q *unlockedQueue) Len() int {
	if q.slot != nil {
		if q.full {
			return 1
		}
		return 0
	}
	return q.store.Len()
}

func (q *unlockedQueue) Enqueue(v ir.Value) error {
	scratch := make([]byte, q.stride)
	if _, err := PackInto(v, q.ch.Type, scratch); err != nil {
		return err
	}
	q.EnqueueRaw(scratch)
	return nil
}

func (q *unlockedQueue) Dequeue() (ir.Value, bool) {
	scratch := make([]byte, q.stride)
	if !q.DequeueRaw(scratch) {
		return ir.Value{}, false
	}
	return Unpack(scratch, q.ch.Type), true
}

func (q *unlockedQueue) EnqueueRaw(elem []byte) {
	if q.slot != nil {
		n := copy(q.slot, elem[:min(len(elem), q.stride)])
		for i := n; i < q.stride; i++ {
			q.slot[i] = 0
		}
		q.full = true
		return
	}
	q.store.Write(elem)
}

func (q *unlockedQueue) DequeueRaw(out []byte) bool {
	if q.slot != nil {
		if !q.full {
			return false
		}
		copy(out, q.slot)
		return true
	}
	return q.store.Read(out)
}

func (q *unlockedQueue) reset() {
	if q.slot != nil {
		q.full = false
	} else {
		q.store = NewByteStore(q.ch.Type.PackedSize())
	}
	q.seed()
}

func (q *unlockedQueue) seed() {
	for _, v := range q.ch.Seed {
		// Seeds were validated at network build time; a mismatch here is a
		// broken invariant, not a recoverable condition.
		if err := q.Enqueue(v); err != nil {
			panic(err)
		}
	}
}

// ---------------------------------------------------------------------------
// Locked queue
// ---------------------------------------------------------------------------

// lockedQueue guards an unlocked queue with mutual exclusion so external
// producer and consumer goroutines can share it with the scheduler.
// Concurrent operations observe a total order consistent with some
// interleaving of calls; there is still no blocking wait for data.
type lockedQueue struct {
	mu sync.Mutex
	q  *unlockedQueue
}

func newLockedQueue(ch *ir.Channel) *lockedQueue {
	return &lockedQueue{q: newUnlockedQueue(ch)}
}

func (l *lockedQueue) Channel() *ir.Channel { return l.q.Channel() }
func (l *lockedQueue) Stride() int          { return l.q.Stride() }

func (l *lockedQueue) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.q.Len()
}

func (l *lockedQueue) Enqueue(v ir.Value) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.q.Enqueue(v)
}

func (l *lockedQueue) Dequeue() (ir.Value, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.q.Dequeue()
}

func (l *lockedQueue) EnqueueRaw(elem []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.q.EnqueueRaw(elem)
}

func (l *lockedQueue) DequeueRaw(out []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.q.DequeueRaw(out)
}

func (l *lockedQueue) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.q.reset()
}
