package types_test

import (
	"math/big"
	"testing"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

func TestLayoutPrimitives(t *testing.T) {
	cases := []struct {
		t    types.Type
		size uint32
	}{
		{types.I1, 1},
		{types.I8, 1},
		{types.I16, 2},
		{types.I32, 4},
		{types.I64, 8},
		{types.Felt, 8},
		{types.I128, 16},
		{types.U256, 32},
	}

	for _, c := range cases {
		got := types.SizeOf(c.t)
		if got.Size != c.size {
			t.Errorf("%s: expected size %d, got %d", c.t, c.size, got.Size)
		}
	}
}

func TestLayoutStruct(t *testing.T) {
	s := types.Struct(types.I8, types.I32, types.I64)
	l := types.SizeOf(s)
	// i8 at 0, pad to 4, i32 at 4..8, i64 at 8..16 -> size 16, align 8.
	if l.Size != 16 || l.Align != 8 {
		t.Fatalf("unexpected struct layout: %+v", l)
	}

	if off := types.FieldOffset(s, 1); off != 4 {
		t.Fatalf("expected i32 field at offset 4, got %d", off)
	}

	if off := types.FieldOffset(s, 2); off != 8 {
		t.Fatalf("expected i64 field at offset 8, got %d", off)
	}
}

func TestWordsOf(t *testing.T) {
	if n := types.WordsOf(types.Felt); n != 1 {
		t.Fatalf("expected 1 word for felt, got %d", n)
	}

	if n := types.WordsOf(types.I128); n != 1 {
		t.Fatalf("expected 1 word for i128 (16 bytes), got %d", n)
	}

	if n := types.WordsOf(types.U256); n != 2 {
		t.Fatalf("expected 2 words for u256 (32 bytes), got %d", n)
	}
}

func TestFeltArithmetic(t *testing.T) {
	a := types.NewFelt(types.FeltModulus - 1)
	b := types.NewFelt(2)

	sum := a.Add(b)
	if sum.Uint64() != 1 {
		t.Fatalf("expected wraparound sum of 1, got %d", sum.Uint64())
	}

	prod := types.NewFelt(3).Mul(types.NewFelt(5))
	if prod.Uint64() != 15 {
		t.Fatalf("expected 15, got %d", prod.Uint64())
	}

	inv := types.NewFelt(7).Inverse()
	one := types.NewFelt(7).Mul(inv)

	if !one.IsOne() {
		t.Fatalf("expected 7 * 7^-1 == 1, got %d", one.Uint64())
	}

	if !types.FeltZero.Inverse().IsZero() {
		t.Fatalf("expected inverse of zero to be zero")
	}
}

func TestU256Limbs(t *testing.T) {
	val := new(big.Int).SetUint64(0x1122334455667788)
	u := types.NewU256(val)
	limbs := u.Limbs32()

	if limbs[0] != 0x55667788 || limbs[1] != 0x11223344 {
		t.Fatalf("unexpected limb order: %#x", limbs)
	}

	if got := u.BigInt(); got.Cmp(val) != 0 {
		t.Fatalf("roundtrip mismatch: got %s, want %s", got, val)
	}
}
