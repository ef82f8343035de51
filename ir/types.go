// Package ir defines the data model a process network is built from:
// packed-layout type descriptors, tagged values, channel and proc
// descriptors, and the immutable Network the engine executes.
package ir

import (
	"fmt"
	"strings"
)

// Type describes the shape and packed layout of values carried on a channel.
//
// The packed layout is the flat byte form proc bodies operate on directly:
// bits of width w occupy ceil(w/8) little-endian bytes, tuples and arrays
// are the concatenation of their element packings in declared order with no
// padding between fields. Alignment padding exists only at the whole-element
// boundary and is applied by the channel storage, not the type.
type Type interface {
	// PackedSize returns the flat packed byte size of one value.
	PackedSize() int

	String() string

	isType()
}

// BitsType is an integer of arbitrary bit width. Signed controls how
// Unpack sign-extends when reconstructing a value; the packed bytes are
// identical either way.
type BitsType struct {
	Width  int
	Signed bool
}

// TupleType is an ordered, heterogeneous aggregate.
type TupleType struct {
	Fields []Type
}

// ArrayType is a fixed-length homogeneous aggregate.
type ArrayType struct {
	Elem  Type
	Count int
}

func (t *BitsType) isType()  {}
func (t *TupleType) isType() {}
func (t *ArrayType) isType() {}

// PackedSize returns ceil(Width/8).
func (t *BitsType) PackedSize() int {
	return (t.Width + 7) / 8
}

func (t *TupleType) PackedSize() int {
	n := 0
	for _, f := range t.Fields {
		n += f.PackedSize()
	}
	return n
}

func (t *ArrayType) PackedSize() int {
	return t.Elem.PackedSize() * t.Count
}

func (t *BitsType) String() string {
	if t.Signed {
		return fmt.Sprintf("s%d", t.Width)
	}
	return fmt.Sprintf("u%d", t.Width)
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("%s[%d]", t.Elem, t.Count)
}

// Bits returns an unsigned bits type of the given width.
func Bits(width int) *BitsType {
	return &BitsType{Width: width}
}

// SignedBits returns a signed bits type of the given width.
func SignedBits(width int) *BitsType {
	return &BitsType{Width: width, Signed: true}
}

// Tuple returns a tuple type over the given field types.
func Tuple(fields ...Type) *TupleType {
	return &TupleType{Fields: fields}
}

// Array returns an array type of count elements of elem.
func Array(elem Type, count int) *ArrayType {
	return &ArrayType{Elem: elem, Count: count}
}

// TypesEqual reports whether two type descriptors describe the same shape.
// Signedness participates: u8 and s8 are distinct types.
func TypesEqual(a, b Type) bool {
	switch at := a.(type) {
	case *BitsType:
		bt, ok := b.(*BitsType)
		return ok && at.Width == bt.Width && at.Signed == bt.Signed
	case *TupleType:
		bt, ok := b.(*TupleType)
		if !ok || len(at.Fields) != len(bt.Fields) {
			return false
		}
		for i := range at.Fields {
			if !TypesEqual(at.Fields[i], bt.Fields[i]) {
				return false
			}
		}
		return true
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		return ok && at.Count == bt.Count && TypesEqual(at.Elem, bt.Elem)
	}
	return false
}
