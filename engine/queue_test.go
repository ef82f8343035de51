package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/skeinflow/skein/ir"
)

func fifoChannel(t *testing.T, typ ir.Type, seed ...ir.Value) *ir.Channel {
	t.Helper()
	b := ir.NewNetworkBuilder("test")
	id := b.AddChannel("ch", typ, ir.FIFO, seed...)
	n, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return n.Channel(id)
}

func singleChannel(t *testing.T, typ ir.Type, seed ...ir.Value) *ir.Channel {
	t.Helper()
	b := ir.NewNetworkBuilder("test")
	id := b.AddChannel("ch", typ, ir.SingleValue, seed...)
	n, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return n.Channel(id)
}

func TestQueueFIFOOrder(t *testing.T) {
	q := newUnlockedQueue(fifoChannel(t, ir.Bits(32)))
	const n = 50
	for i := 0; i < n; i++ {
		if err := q.Enqueue(ir.BitsValue(32, uint64(i))); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < n; i++ {
		v, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Dequeue %d = false, want true", i)
		}
		if v.Uint64() != uint64(i) {
			t.Errorf("Dequeue %d = %d, want %d", i, v.Uint64(), i)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue on drained queue = true, want false")
	}
}

func TestQueueTypeMismatch(t *testing.T) {
	q := newUnlockedQueue(fifoChannel(t, ir.Bits(32)))
	err := q.Enqueue(ir.BitsValue(16, 7))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Enqueue error = %v, want ErrTypeMismatch", err)
	}
	// A failed enqueue leaves the queue untouched.
	if q.Len() != 0 {
		t.Errorf("Len after failed Enqueue = %d, want 0", q.Len())
	}
}

func TestQueueSingleValueOverwrite(t *testing.T) {
	q := newUnlockedQueue(singleChannel(t, ir.Bits(8)))
	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue on never-written register = true, want false")
	}
	if err := q.Enqueue(ir.BitsValue(8, 1)); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(ir.BitsValue(8, 2)); err != nil {
		t.Fatal(err)
	}
	v, ok := q.Dequeue()
	if !ok || v.Uint64() != 2 {
		t.Fatalf("Dequeue = %v, %v, want 2, true", v, ok)
	}
	// Register reads don't consume: the latest write stays visible.
	v, ok = q.Dequeue()
	if !ok || v.Uint64() != 2 {
		t.Errorf("second Dequeue = %v, %v, want 2, true", v, ok)
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1", q.Len())
	}
}

func TestQueueRawTypedInterleave(t *testing.T) {
	q := newUnlockedQueue(fifoChannel(t, ir.Bits(32)))

	if err := q.Enqueue(ir.BitsValue(32, 10)); err != nil {
		t.Fatal(err)
	}
	raw := make([]byte, q.Stride())
	raw[0] = 20
	q.EnqueueRaw(raw)
	if err := q.Enqueue(ir.BitsValue(32, 30)); err != nil {
		t.Fatal(err)
	}

	v, ok := q.Dequeue()
	if !ok || v.Uint64() != 10 {
		t.Fatalf("Dequeue 1 = %v, want 10", v)
	}
	out := make([]byte, q.Stride())
	if !q.DequeueRaw(out) || out[0] != 20 {
		t.Fatalf("DequeueRaw = %v, %d, want true, 20", ok, out[0])
	}
	v, ok = q.Dequeue()
	if !ok || v.Uint64() != 30 {
		t.Fatalf("Dequeue 3 = %v, want 30", v)
	}
}

func TestQueueSeedAndReset(t *testing.T) {
	ch := fifoChannel(t, ir.Bits(8), ir.BitsValue(8, 4), ir.BitsValue(8, 5))
	q := newUnlockedQueue(ch)
	if q.Len() != 2 {
		t.Fatalf("Len after construction = %d, want 2", q.Len())
	}
	if v, _ := q.Dequeue(); v.Uint64() != 4 {
		t.Errorf("first seed = %d, want 4", v.Uint64())
	}
	if err := q.Enqueue(ir.BitsValue(8, 9)); err != nil {
		t.Fatal(err)
	}

	q.reset()
	if q.Len() != 2 {
		t.Fatalf("Len after reset = %d, want 2", q.Len())
	}
	if v, _ := q.Dequeue(); v.Uint64() != 4 {
		t.Errorf("first seed after reset = %d, want 4", v.Uint64())
	}
	if v, _ := q.Dequeue(); v.Uint64() != 5 {
		t.Errorf("second seed after reset = %d, want 5", v.Uint64())
	}
}

func TestLockedQueueConcurrentEnqueue(t *testing.T) {
	q := newLockedQueue(fifoChannel(t, ir.Bits(32)))

	const producers = 8
	const perProducer = 100
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Enqueue(ir.BitsValue(32, uint64(p*perProducer+i))); err != nil {
					t.Error(err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for {
		v, ok := q.Dequeue()
		if !ok {
			break
		}
		if seen[v.Uint64()] {
			t.Fatalf("value %d dequeued twice", v.Uint64())
		}
		seen[v.Uint64()] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("dequeued %d distinct values, want %d", len(seen), producers*perProducer)
	}
}
