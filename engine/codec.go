package engine

import (
	"github.com/skeinflow/skein/ir"
)

// The codec converts between ir.Value and the flat packed byte form proc
// bodies operate on. Packing is the concatenation of field packings in
// declared order; bits of width w occupy ceil(w/8) little-endian bytes with
// unused high bits zero. The codec never validates buffer length on the hot
// path; callers size buffers from the type's packed size (stride buffers
// always qualify).

// PackInto writes the packed form of v into buf, which must hold at least
// t.PackedSize() bytes. It returns the number of bytes written, or
// ErrTypeMismatch (wrapped) when v does not conform to t; buf is unmodified
// on mismatch of the outermost shape but may be partially written when a
// nested element mismatches, so callers treat any error as poisoning buf.
func PackInto(v ir.Value, t ir.Type, buf []byte) (int, error) {
	if !v.ConformsTo(t) {
		return 0, typeMismatch(v, t)
	}
	return packValue(v, buf), nil
}

// packValue assumes conformance was checked and packs recursively.
func packValue(v ir.Value, buf []byte) int {
	switch v.Kind() {
	case ir.KindBits:
		return copy(buf, v.Bytes())
	default:
		n := 0
		for _, e := range v.Elements() {
			n += packValue(e, buf[n:])
		}
		return n
	}
}

// Unpack reconstructs a value of type t from its packed form. It is the
// lossless inverse of PackInto: Unpack(Pack(v, t), t) equals v for every v
// conforming to t. buf must hold at least t.PackedSize() bytes; that
// contract is not runtime-checked.
func Unpack(buf []byte, t ir.Type) ir.Value {
	v, _ := unpackValue(buf, t)
	return v
}

func unpackValue(buf []byte, t ir.Type) (ir.Value, int) {
	switch tt := t.(type) {
	case *ir.BitsType:
		n := tt.PackedSize()
		return ir.BitsFromBytes(tt.Width, buf[:n]), n
	case *ir.TupleType:
		elems := make([]ir.Value, len(tt.Fields))
		n := 0
		for i, f := range tt.Fields {
			var used int
			elems[i], used = unpackValue(buf[n:], f)
			n += used
		}
		return ir.TupleValue(elems...), n
	case *ir.ArrayType:
		elems := make([]ir.Value, tt.Count)
		n := 0
		for i := 0; i < tt.Count; i++ {
			var used int
			elems[i], used = unpackValue(buf[n:], tt.Elem)
			n += used
		}
		return ir.ArrayValue(elems...), n
	}
	panic("engine: unknown type descriptor")
}
