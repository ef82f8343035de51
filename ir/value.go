package ir

import (
	"bytes"
	"fmt"
	"strings"
)

// ValueKind discriminates the three value shapes.
type ValueKind int

const (
	KindBits ValueKind = iota
	KindTuple
	KindArray
)

// Value is an immutable tagged value: bits of a given width, a tuple, or an
// array. Bits payloads are held in canonical form (ceil(width/8)
// little-endian bytes with unused high bits zero) so equality and packing
// are byte-exact.
type Value struct {
	kind  ValueKind
	width int     // bits only
	raw   []byte  // bits only, canonical little-endian
	elems []Value // tuple and array
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// BitsValue returns a bits value of the given width holding v. Bits of v
// beyond the width are discarded.
func BitsValue(width int, v uint64) Value {
	raw := make([]byte, (width+7)/8)
	for i := range raw {
		raw[i] = byte(v)
		v >>= 8
	}
	maskHigh(raw, width)
	return Value{kind: KindBits, width: width, raw: raw}
}

// BitsValueSigned returns a bits value of the given width holding the
// two's-complement encoding of v truncated to width bits.
func BitsValueSigned(width int, v int64) Value {
	return BitsValue(width, uint64(v))
}

// BitsFromBytes returns a bits value of the given width from little-endian
// bytes. Extra bytes and bits beyond the width are discarded; missing high
// bytes read as zero.
func BitsFromBytes(width int, b []byte) Value {
	raw := make([]byte, (width+7)/8)
	copy(raw, b)
	maskHigh(raw, width)
	return Value{kind: KindBits, width: width, raw: raw}
}

// TupleValue returns a tuple over the given elements.
func TupleValue(elems ...Value) Value {
	return Value{kind: KindTuple, elems: append([]Value(nil), elems...)}
}

// ArrayValue returns an array over the given elements. All elements must
// share one shape; that is enforced when the value meets a type via
// ConformsTo, not at construction.
func ArrayValue(elems ...Value) Value {
	return Value{kind: KindArray, elems: append([]Value(nil), elems...)}
}

// maskHigh zeroes the bits of the final byte beyond width.
func maskHigh(raw []byte, width int) {
	if rem := width % 8; rem != 0 && len(raw) > 0 {
		raw[len(raw)-1] &= byte(1<<rem) - 1
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Kind returns the value's shape discriminator.
func (v Value) Kind() ValueKind { return v.kind }

// Width returns the bit width of a bits value, 0 otherwise.
func (v Value) Width() int { return v.width }

// Bytes returns the canonical little-endian payload of a bits value.
// The returned slice must not be modified.
func (v Value) Bytes() []byte { return v.raw }

// Uint64 returns a bits value zero-extended to 64 bits. Widths beyond 64
// are truncated to the low 64 bits.
func (v Value) Uint64() uint64 {
	var u uint64
	n := len(v.raw)
	if n > 8 {
		n = 8
	}
	for i := n - 1; i >= 0; i-- {
		u = u<<8 | uint64(v.raw[i])
	}
	return u
}

// Int64 returns a bits value sign-extended from its width to 64 bits.
func (v Value) Int64() int64 {
	u := v.Uint64()
	if v.width > 0 && v.width < 64 && u&(1<<(v.width-1)) != 0 {
		u |= ^uint64(0) << v.width
	}
	return int64(u)
}

// Elements returns the elements of a tuple or array value.
// The returned slice must not be modified.
func (v Value) Elements() []Value { return v.elems }

// ---------------------------------------------------------------------------
// Predicates
// ---------------------------------------------------------------------------

// Equal reports structural equality. Bits compare by width and canonical
// payload; signedness lives on types, not values.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBits:
		return v.width == o.width && bytes.Equal(v.raw, o.raw)
	default:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	}
}

// ConformsTo reports whether the value's shape matches the type descriptor.
func (v Value) ConformsTo(t Type) bool {
	switch tt := t.(type) {
	case *BitsType:
		return v.kind == KindBits && v.width == tt.Width
	case *TupleType:
		if v.kind != KindTuple || len(v.elems) != len(tt.Fields) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].ConformsTo(tt.Fields[i]) {
				return false
			}
		}
		return true
	case *ArrayType:
		if v.kind != KindArray || len(v.elems) != tt.Count {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].ConformsTo(tt.Elem) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case KindBits:
		return fmt.Sprintf("%d:u%d", v.Uint64(), v.width)
	case KindTuple:
		return "(" + joinValues(v.elems) + ")"
	default:
		return "[" + joinValues(v.elems) + "]"
	}
}

func joinValues(vs []Value) string {
	parts := make([]string, len(vs))
	for i, e := range vs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
