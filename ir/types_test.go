package ir

import "testing"

func TestPackedSize(t *testing.T) {
	tests := []struct {
		typ  Type
		size int
	}{
		{Bits(1), 1},
		{Bits(8), 1},
		{Bits(9), 2},
		{Bits(13), 2},
		{Bits(64), 8},
		{Bits(65), 9},
		{Tuple(), 0},
		{Tuple(Bits(8), Bits(16)), 3},
		{Tuple(Bits(13), Bits(3)), 3},
		{Array(Bits(32), 4), 16},
		{Array(Tuple(Bits(8), Bits(8)), 3), 6},
	}
	for _, tt := range tests {
		if got := tt.typ.PackedSize(); got != tt.size {
			t.Errorf("%s.PackedSize() = %d, want %d", tt.typ, got, tt.size)
		}
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Bits(13), "u13"},
		{SignedBits(8), "s8"},
		{Tuple(Bits(8), SignedBits(16)), "(u8, s16)"},
		{Array(Bits(32), 4), "u32[4]"},
		{Array(Tuple(Bits(8)), 2), "(u8)[2]"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTypesEqual(t *testing.T) {
	tests := []struct {
		a, b Type
		want bool
	}{
		{Bits(8), Bits(8), true},
		{Bits(8), Bits(9), false},
		{Bits(8), SignedBits(8), false},
		{Tuple(Bits(8)), Tuple(Bits(8)), true},
		{Tuple(Bits(8)), Tuple(Bits(8), Bits(8)), false},
		{Tuple(Bits(8)), Array(Bits(8), 1), false},
		{Array(Bits(8), 2), Array(Bits(8), 2), true},
		{Array(Bits(8), 2), Array(Bits(8), 3), false},
	}
	for _, tt := range tests {
		if got := TypesEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("TypesEqual(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
