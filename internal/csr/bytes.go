package csr

import (
	"encoding/binary"
	"math"

	"github.com/forge-ml/forge/internal/tensor"
)

// int32sToBytes renders a slice of int32 as little-endian bytes, the
// layout the persist package also uses for row_ptr and col_idx.
func int32sToBytes(v []int32) []byte {
	out := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(x))
	}
	return out
}

// weightsToBytes renders a weights slice as little-endian IEEE-754
// binary32, regardless of T's native width: the persisted and hashed
// representation of a CSR snapshot is fixed at 32-bit per the spec, even
// when the in-memory Snapshot was compiled with float64 for precision.
func weightsToBytes[T tensor.Numeric](v []T) []byte {
	out := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(x)))
	}
	return out
}
