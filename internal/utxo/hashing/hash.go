// Package hashing wraps the digests and the base58 address codec used across transactions and headers.
package hashing

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Sha256 returns a single SHA-256 digest.
func Sha256(b []byte) []byte {
	return chainhash.HashB(b)
}

// Hash256 returns SHA-256 applied twice.
func Hash256(b []byte) []byte {
	return chainhash.DoubleHashB(b)
}

// Hash160 returns RIPEMD-160 of SHA-256.
func Hash160(b []byte) []byte {
	return btcutil.Hash160(b)
}

// Reverse returns a reversed copy of b.
func Reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

// Reverse32 flips a 32-byte hash between wire and display order.
func Reverse32(h [32]byte) [32]byte {
	var out [32]byte
	for i := range h {
		out[31-i] = h[i]
	}
	return out
}
