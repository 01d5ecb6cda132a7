package utils

import (
	"encoding/hex"
	"hash"
	"sync"

	"golang.org/x/crypto/sha3"
)

// keccakPool is a package-level pool of reusable Keccak-256 hash instances.
var keccakPool = sync.Pool{
	New: func() any {
		return sha3.NewLegacyKeccak256()
	},
}

// Keccak256 computes the Keccak-256 digest of the concatenation of parts
// using a hasher pulled from the pool.
//
// Example usage:
//
//	sum := utils.Keccak256([]byte("vault"), []byte(address))
func Keccak256(parts ...[]byte) []byte {
	h := keccakPool.Get().(hash.Hash)
	defer keccakPool.Put(h)

	h.Reset()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// Keccak256Hex returns the 0x-prefixed hex form of Keccak256(parts...).
func Keccak256Hex(parts ...[]byte) string {
	return "0x" + hex.EncodeToString(Keccak256(parts...))
}
