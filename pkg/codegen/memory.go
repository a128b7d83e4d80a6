package codegen

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// LowerLoad emits the MemLoadW sequence for a load of type t from the
// address on top of stack. The address is left consumed;
// the loaded value's felts are left on top, word-order preserved
// (lowest-address word's felts on top, since that is the value the
// consumer needs first).
func LowerLoad(t types.Type) []*masmir.Instr {
	words := int(types.WordsOf(t))
	if words == 0 {
		words = 1
	}

	var out []*masmir.Instr

	for i := 0; i < words; i++ {
		if i > 0 {
			// Advance to the next word address: dup the original address
			// (still buried beneath the previous word's four felts) and
			// add the running offset, rather than threading a separate
			// counter -- the scheduler already keeps the base address
			// addressable at a fixed depth for the duration of this
			// sequence since it is marked live until the last load.
			out = append(out, masmir.DupOp(uint8(4*i)), masmir.PushOp(uint64(i)), masmir.Binary(masmir.Add))
		}

		out = append(out, masmir.MemLoadWOp())
	}

	if words > 1 {
		// Drop the now-unneeded base address copy left under the first
		// word's felts by construction of the loop above only when more
		// than one word was loaded (a single-word load consumes the
		// address directly in its one MemLoadW).
		out = append(out, masmir.MovdnOp(uint8(4*words-1)), masmir.DropOp())
	}

	return out
}

// LowerStore emits the MemStoreW sequence for a store of type t, given the
// address and the value's felts already arranged on top of stack in the
// order LowerLoad would leave them (address deepest, then each word's
// felts, lowest-address word on top).
func LowerStore(t types.Type) []*masmir.Instr {
	words := int(types.WordsOf(t))
	if words == 0 {
		words = 1
	}

	var out []*masmir.Instr

	for i := 0; i < words; i++ {
		if i > 0 {
			out = append(out, masmir.DupOp(4), masmir.PushOp(uint64(i)), masmir.Binary(masmir.Add))
		}

		out = append(out, masmir.MemStoreWOp())
	}

	return out
}
