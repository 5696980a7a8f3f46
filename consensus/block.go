package consensus

// BlockHeader is the fixed six-field header described in §3.3. Its hash is
// plain SHA-256 (not BLAKE3) over a deterministic manual byte layout — the
// one place in the system that deliberately does not use BLAKE3, so mining
// hardware can use off-the-shelf SHA-256 circuits.
type BlockHeader struct {
	Version           uint32
	PrevHash          Hash256
	MerkleRoot        Hash256
	Timestamp         uint64
	DifficultyTarget  uint64
	Nonce             uint64
}

// HeaderBytes serializes the six header fields in declared order,
// little-endian, with no length prefixes (a fixed 92-byte layout).
func HeaderBytes(h BlockHeader) []byte {
	w := newWriter(4 + 32 + 32 + 8 + 8 + 8)
	w.putU32(h.Version)
	w.putRaw(h.PrevHash[:])
	w.putRaw(h.MerkleRoot[:])
	w.putU64(h.Timestamp)
	w.putU64(h.DifficultyTarget)
	w.putU64(h.Nonce)
	return w.bytes()
}

// HeaderHash is the block identifier: SHA-256 of HeaderBytes.
func HeaderHash(h BlockHeader) Hash256 {
	return Sha256(HeaderBytes(h))
}

// Block is a nonempty ordered sequence of transactions under a header; the
// first transaction must be coinbase (§3.3, enforced by StructuralCheckBlock).
type Block struct {
	Header       BlockHeader
	Transactions []Transaction
}

// EncodeBlock serializes a block: header bytes, then a u64 LE transaction
// count, then each transaction's full (witnessed) encoding.
func EncodeBlock(b *Block) []byte {
	w := newWriter(92 + 8)
	w.putRaw(HeaderBytes(b.Header))
	w.putSeqLen(len(b.Transactions))
	for i := range b.Transactions {
		w.putRaw(EncodeTx(&b.Transactions[i]))
	}
	return w.bytes()
}
