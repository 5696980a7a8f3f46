// Package consensus implements RillCoin's consensus-critical data model:
// primitives, wire encoding, validation, the decay engine, and the
// difficulty/reward schedule. Every function here is a pure function over
// its arguments (or a read-only lookup interface) — no package-level mutable
// state.
package consensus

import (
	"bytes"
	"crypto/sha256"
	"sort"

	"lukechampine.com/blake3"
)

// Hash256 is a 32-byte digest, ordered lexicographically (big-endian byte
// comparison of its contents).
type Hash256 [32]byte

// ZeroHash is the all-zero Hash256, used as the empty-Merkle-tree root and
// the coinbase's null previous-txid.
var ZeroHash = Hash256{}

// Less reports whether h sorts before other under lexicographic byte order.
func (h Hash256) Less(other Hash256) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// Bytes returns a fresh copy of the digest's bytes.
func (h Hash256) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, h[:])
	return out
}

func (h Hash256) String() string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range h {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}

// Blake3 hashes a single buffer with BLAKE3-256.
func Blake3(data []byte) Hash256 {
	return Hash256(blake3.Sum256(data))
}

// Blake3Concat hashes the concatenation of parts with BLAKE3-256 without
// allocating an intermediate buffer for small part counts.
func Blake3Concat(parts ...[]byte) Hash256 {
	h := blake3.New(32, nil)
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out Hash256
	copy(out[:], h.Sum(nil))
	return out
}

// Sha256 is plain single-round SHA-256 (not double-hashed), used exclusively
// for the block header hash per §3.3 — every other digest in the system is
// BLAKE3.
func Sha256(data []byte) Hash256 {
	return Hash256(sha256.Sum256(data))
}

// SortedDedupedHashes returns a new slice containing the distinct hashes in
// ids, sorted ascending. Used by the decay engine's cluster-merge rule
// (§4.3) to make multi-input cluster ids independent of input order.
func SortedDedupedHashes(ids []Hash256) []Hash256 {
	seen := make(map[Hash256]struct{}, len(ids))
	out := make([]Hash256, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
