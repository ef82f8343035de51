package engine

import (
	"bytes"
	"testing"
)

func elem(stride int, b byte) []byte {
	e := make([]byte, stride)
	e[0] = b
	e[stride-1] = b
	return e
}

func TestByteStoreEmptyRead(t *testing.T) {
	s := NewByteStore(4)
	out := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	saved := append([]byte(nil), out...)
	if s.Read(out) {
		t.Fatal("Read on empty store = true, want false")
	}
	if !bytes.Equal(out, saved) {
		t.Error("Read on empty store modified the output buffer")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestByteStoreStrideAlignment(t *testing.T) {
	tests := []struct {
		packed int
		stride int
	}{
		{1, 16},
		{4, 16},
		{16, 16},
		{17, 32},
		{0, 16}, // empty tuples still occupy a slot
	}
	for _, tt := range tests {
		s := NewByteStore(tt.packed)
		if s.Stride() != tt.stride {
			t.Errorf("NewByteStore(%d).Stride() = %d, want %d", tt.packed, s.Stride(), tt.stride)
		}
	}
}

func TestByteStoreFIFOOrder(t *testing.T) {
	s := NewByteStore(4)
	for i := 0; i < 5; i++ {
		s.Write(elem(s.Stride(), byte(i+1)))
	}
	if s.Len() != 5 {
		t.Fatalf("Len = %d, want 5", s.Len())
	}
	out := make([]byte, s.Stride())
	for i := 0; i < 5; i++ {
		if !s.Read(out) {
			t.Fatalf("Read %d = false, want true", i)
		}
		if out[0] != byte(i+1) || out[s.Stride()-1] != byte(i+1) {
			t.Errorf("Read %d = %d, want %d", i, out[0], i+1)
		}
	}
	if s.Read(out) {
		t.Error("Read after draining = true, want false")
	}
}

func TestByteStoreGrowthPreservesOrder(t *testing.T) {
	// Enqueue far more elements than the initial capacity without any
	// interleaved dequeues, exercising the relocate-on-resize path.
	s := NewByteStore(4)
	const n = 100
	for i := 0; i < n; i++ {
		s.Write(elem(s.Stride(), byte(i)))
	}
	if s.Len() != n {
		t.Fatalf("Len = %d, want %d", s.Len(), n)
	}
	out := make([]byte, s.Stride())
	for i := 0; i < n; i++ {
		if !s.Read(out) {
			t.Fatalf("Read %d = false, want true", i)
		}
		if out[0] != byte(i) {
			t.Fatalf("Read %d = %d, want %d", i, out[0], i)
		}
	}
}

func TestByteStoreGrowthWithWrappedReadIndex(t *testing.T) {
	// Advance the read cursor first so growth happens while the unread
	// region wraps around the end of the buffer.
	s := NewByteStore(8)
	perBuf := initStoreSize / s.Stride()

	for i := 0; i < perBuf; i++ {
		s.Write(elem(s.Stride(), byte(i)))
	}
	out := make([]byte, s.Stride())
	for i := 0; i < 3; i++ {
		if !s.Read(out) || out[0] != byte(i) {
			t.Fatalf("prefix Read %d failed", i)
		}
	}

	// Refill past the wrap point, then force growth.
	next := perBuf
	for i := 0; i < perBuf; i++ {
		s.Write(elem(s.Stride(), byte(next)))
		next++
	}

	for i := 3; i < next; i++ {
		if !s.Read(out) {
			t.Fatalf("Read %d = false, want true", i)
		}
		if out[0] != byte(i) {
			t.Fatalf("Read %d = %d, want %d", i, out[0], i)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Len after drain = %d, want 0", s.Len())
	}
}

func TestByteStoreInterleaved(t *testing.T) {
	s := NewByteStore(2)
	out := make([]byte, s.Stride())
	next, expect := 0, 0
	for round := 0; round < 200; round++ {
		s.Write(elem(s.Stride(), byte(next)))
		next++
		s.Write(elem(s.Stride(), byte(next)))
		next++
		if !s.Read(out) {
			t.Fatalf("round %d: Read = false", round)
		}
		if out[0] != byte(expect) {
			t.Fatalf("round %d: Read = %d, want %d", round, out[0], expect)
		}
		expect++
	}
	if s.Len() != next-expect {
		t.Errorf("Len = %d, want %d", s.Len(), next-expect)
	}
}
