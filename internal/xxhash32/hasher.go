// Package xxhash32 wraps the xxHash32 algorithm (seed 0, as the LZ4 frame
// format requires everywhere it computes a checksum) behind the narrow
// interface the frame and pipeline packages need: an incremental hasher
// with peek-without-finalizing digest semantics, and a one-shot checksum
// function for header and block checksums.
//
// The algorithm itself is not implemented here — github.com/pierrec/xxHash
// is the library historically paired with github.com/pierrec/lz4 for LZ4
// frame checksums, and is used as-is.
package xxhash32

import (
	"hash"

	"github.com/pierrec/xxHash/xxHash32"
)

// Seed is the seed used for every checksum in the LZ4 frame format.
const Seed uint32 = 0

// Hasher is an incremental xxHash32 accumulator. Hasher's Sum32 delegates
// to the underlying hash.Hash32's Sum32 and, like it, may be called any
// number of times without affecting subsequent Update calls — it is a
// peek, not a finalization.
// The zero value is not usable; construct with New.
type Hasher struct {
	h hash.Hash32
}

// New returns a Hasher seeded per the frame format's fixed seed.
func New() *Hasher {
	return &Hasher{h: xxHash32.New(Seed)}
}

// Update folds p into the running hash, in order.
func (h *Hasher) Update(p []byte) {
	_, _ = h.h.Write(p)
}

// Sum32 returns the digest of every byte folded in so far. Calling it
// again after further Update calls returns the updated digest; calling
// it without any intervening Update returns the same value.
func (h *Hasher) Sum32() uint32 {
	return h.h.Sum32()
}

// Reset discards all accumulated state, restoring the hasher as if newly
// constructed with New. Present so a Hasher can be pooled and reused
// across frames without reallocating.
func (h *Hasher) Reset() {
	h.h.Reset()
}

// Checksum computes the one-shot xxHash32 digest of p, seeded per the
// frame format's fixed seed. Used for header and block checksums, where
// the whole buffer is known up front and an incremental accumulator
// would be pure overhead.
func Checksum(p []byte) uint32 {
	return xxHash32.Checksum(p, Seed)
}
