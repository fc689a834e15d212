// Package crypto provides the hashing and signing primitives used to
// derive account addresses and authenticate ledger requests.
package crypto

import (
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// TaggedHash hashes parts under a domain-separation tag. Each part is
// length-prefixed so ("ab","c") and ("a","bc") never collide.
func TaggedHash(tag string, parts ...[]byte) types.Hash {
	h := blake3.NewDeriveKey(tag)
	var lenBuf [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := 0; i < 8; i++ {
			lenBuf[i] = byte(n >> (8 * i))
		}
		h.Write(lenBuf[:])
		h.Write(p)
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// AddressFromPubKey derives an address from a compressed public key.
// Address = BLAKE3(compressed_pubkey)[:20].
func AddressFromPubKey(pubKey []byte) types.Address {
	h := Hash(pubKey)
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}
