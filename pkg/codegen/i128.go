package codegen

import "github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"

// i128 values are represented on the abstract (and concrete VM) stack as
// one word: four felts, each carrying a 32-bit limb, ordered (ground truth
// read from codegen/masm/src/stackify/emit/int128.rs) most-significant
// limb on top: [hi_hi, hi_lo, lo_hi, lo_lo].

// LowerPushI128 materializes a 128-bit immediate as four 32-bit-limb push
// instructions, in the order that leaves hi_hi on top: push lo_lo, then lo_hi, then hi_lo, then hi_hi.
func LowerPushI128(value [16]byte) []*masmir.Instr {
	limb := func(byteOffset int) uint64 {
		var v uint64
		for i := 0; i < 4; i++ {
			v |= uint64(value[byteOffset+i]) << (8 * i)
		}

		return v
	}

	loLo := limb(0)
	loHi := limb(4)
	hiLo := limb(8)
	hiHi := limb(12)

	return []*masmir.Instr{
		masmir.PushOp(loLo),
		masmir.PushOp(loHi),
		masmir.PushOp(hiLo),
		masmir.PushOp(hiHi),
	}
}

// LowerI128ToU64 narrows an i128 (one word) to a u64 (two 32-bit limbs),
// range-checking that the high word is exactly zero before dropping it.
func LowerI128ToU64() []*masmir.Instr {
	return []*masmir.Instr{
		// [hi_hi, hi_lo, lo_hi, lo_lo] -> assert hi_hi == 0, assert hi_lo == 0, keep lo_hi, lo_lo
		masmir.AssertzOp(),
		masmir.AssertzOp(),
	}
}

// LowerI128ToI64 narrows an i128 to a signed i64, range-checking that the
// high word is the sign-extension of the low word's top bit.
func LowerI128ToI64() []*masmir.Instr {
	return []*masmir.Instr{
		// [hi_hi, hi_lo, lo_hi, lo_lo]: mask = 0xffffffff if lo_hi's top bit is set, else 0
		masmir.DupOp(2), masmir.PushOp(1 << 31), masmir.Binary(masmir.Gte),
		masmir.PushOp(0xffffffff), masmir.Binary(masmir.Mul),
		// assert hi_hi == mask and hi_lo == mask, keeping lo_hi, lo_lo
		masmir.DupOp(0), masmir.MovupOp(2), masmir.Binary(masmir.Eq), masmir.AssertOp(),
		masmir.Binary(masmir.Eq), masmir.AssertOp(),
	}
}

// LowerI128ToFelt narrows an i128 to a single field element, asserting
// the value fits (high word zero, low word's high limb zero: felts carry
// only one 32-bit "safe" limb pair under the modulus's constraint).
func LowerI128ToFelt() []*masmir.Instr {
	return []*masmir.Instr{
		// [hi_hi, hi_lo, lo_hi, lo_lo] -> assert hi_hi, hi_lo, lo_hi all zero, keep lo_lo
		masmir.AssertzOp(),
		masmir.AssertzOp(),
		masmir.AssertzOp(),
	}
}

// LowerAssertUnsignedI128 asserts the high word's top limb is zero,
// i.e. the 128-bit value never uses its sign bit as a two's-complement
// negative. The i128 value is left in place.
func LowerAssertUnsignedI128() []*masmir.Instr {
	return []*masmir.Instr{
		masmir.DupOp(0),
		masmir.EqImmOp(0),
		masmir.AssertOp(),
	}
}

// LowerIsSignedI128 tests the high limb's top bit, leaving a boolean on
// top of the unchanged i128 value.
func LowerIsSignedI128() []*masmir.Instr {
	return []*masmir.Instr{
		masmir.DupOp(0),
		masmir.PushOp(1 << 31),
		masmir.Binary(masmir.And),
		masmir.EqImmOp(0),
		masmir.Unary(masmir.Not),
	}
}
