package engine

// MaxAlign is the platform's maximum natural alignment. Element strides are
// rounded up to it so proc bodies can dereference packed elements in place
// without unaligned access.
const MaxAlign = 16

// initStoreSize is the smallest buffer a ByteStore allocates.
const initStoreSize = 128

// ByteStore is a fixed-stride circular buffer of opaque elements, the
// storage primitive behind one FIFO channel. Capacity is always a power of
// two; the usable byte count is trimmed to a whole number of elements so no
// element ever spans the wrap point.
//
// Invariants: used <= usable, and write == (read + used) mod usable.
type ByteStore struct {
	buf    []byte
	stride int // element stride: packed size rounded up to MaxAlign
	usable int // floor(len(buf)/stride)*stride
	read   int
	write  int
	used   int
}

// NewByteStore returns a store for elements of the given packed byte size.
// The stride is the packed size rounded up to MaxAlign; zero-size elements
// (empty tuples) still occupy one aligned slot so counting works.
func NewByteStore(packedSize int) *ByteStore {
	stride := alignUp(packedSize, MaxAlign)
	if stride == 0 {
		stride = MaxAlign
	}
	size := initStoreSize
	for size < stride {
		size <<= 1
	}
	s := &ByteStore{buf: make([]byte, size), stride: stride}
	s.usable = len(s.buf) / s.stride * s.stride
	return s
}

// Stride returns the aligned per-element stride in bytes.
func (s *ByteStore) Stride() int { return s.stride }

// Len returns the number of whole elements currently stored.
func (s *ByteStore) Len() int { return s.used / s.stride }

// Write copies one element (stride bytes) into the next free slot, growing
// the store first if it is full. It never fails.
func (s *ByteStore) Write(elem []byte) {
	if s.used == s.usable {
		s.grow()
	}
	n := copy(s.buf[s.write:s.write+s.stride], elem)
	// Short input is allowed; the tail of the slot is zeroed so stale bytes
	// from a previous occupant never leak into a read.
	for i := s.write + n; i < s.write+s.stride; i++ {
		s.buf[i] = 0
	}
	s.write += s.stride
	if s.write == s.usable {
		s.write = 0
	}
	s.used += s.stride
}

// Read copies the oldest element into out and consumes it. It returns false
// without touching out when the store is empty.
func (s *ByteStore) Read(out []byte) bool {
	if s.used == 0 {
		return false
	}
	copy(out, s.buf[s.read:s.read+s.stride])
	s.read += s.stride
	if s.read == s.usable {
		s.read = 0
	}
	s.used -= s.stride
	return true
}

// grow doubles capacity and relocates the unread region to the front of the
// new buffer, preserving FIFO order exactly.
func (s *ByteStore) grow() {
	next := make([]byte, len(s.buf)*2)
	n := 0
	if s.read+s.used <= s.usable {
		n = copy(next, s.buf[s.read:s.read+s.used])
	} else {
		n = copy(next, s.buf[s.read:s.usable])
		n += copy(next[n:], s.buf[:s.write])
	}
	s.buf = next
	s.usable = len(s.buf) / s.stride * s.stride
	s.read = 0
	s.write = n
	if s.write == s.usable {
		s.write = 0
	}
}

// alignUp rounds n up to the next multiple of align (a power of two).
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
