package types

import "math/big"

// U256Bytes wraps a 256-bit unsigned integer value, represented as its
// little-endian byte encoding so codegen can slice it into four 64-bit (or
// eight 32-bit) limbs without re-deriving the byte order each time.
type U256Bytes [32]byte

// NewU256 reduces val modulo 2^256 and encodes it little-endian.
func NewU256(val *big.Int) U256Bytes {
	var out U256Bytes

	b := new(big.Int).Mod(val, u256Mod)
	be := b.Bytes()
	// big.Int.Bytes is big-endian with no leading zero padding; reverse it
	// into a fixed 32-byte little-endian array.
	for i := 0; i < len(be); i++ {
		out[len(be)-1-i] = be[i]
	}

	return out
}

// BigInt reconstructs the big.Int value of u.
func (u U256Bytes) BigInt() *big.Int {
	be := make([]byte, 32)
	for i := 0; i < 32; i++ {
		be[31-i] = u[i]
	}

	return new(big.Int).SetBytes(be)
}

// Limbs32 splits u into eight 32-bit limbs, least-significant first -- the
// order the push_iN lowering family in pkg/codegen pushes limbs in.
func (u U256Bytes) Limbs32() [8]uint32 {
	var limbs [8]uint32

	for i := 0; i < 8; i++ {
		limbs[i] = uint32(u[i*4]) | uint32(u[i*4+1])<<8 | uint32(u[i*4+2])<<16 | uint32(u[i*4+3])<<24
	}

	return limbs
}

var u256Mod = new(big.Int).Lsh(big.NewInt(1), 256)
