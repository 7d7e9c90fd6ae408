// Package tophash provides the SHA-256 hash utility surface used to
// fingerprint a CSR snapshot's topology. Grounded on the teacher's
// internal/serialization/checksum.go, generalized from a single buffer
// checksum to the three-buffer concatenation the topology hash needs.
package tophash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum computes the SHA-256 digest of a single buffer.
func Sum(buf []byte) [32]byte {
	return sha256.Sum256(buf)
}

// SumConcat computes a single SHA-256 digest over the concatenation of
// three buffers, without allocating an intermediate joined slice. Used for
// the CSR topology hash: row_ptr, col_idx, and weights raw bytes, in that
// order. Any change to any of the three — including a weight delta as
// small as +0.0001 — produces a divergent digest via SHA-256's avalanche
// property.
func SumConcat(a, b, c []byte) [32]byte {
	h := sha256.New()
	h.Write(a)
	h.Write(b)
	h.Write(c)
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Hex renders a digest as an uppercase hex string.
func Hex(sum [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
