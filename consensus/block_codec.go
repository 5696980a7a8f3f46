package consensus

// DecodeHeader parses a fixed 92-byte header.
func DecodeHeader(b []byte) (BlockHeader, error) {
	r := newReader(b)
	var h BlockHeader

	version, err := r.getU32()
	if err != nil {
		return h, blockErr(ErrBadPrevHash, "header.version: "+err.Error())
	}
	h.Version = version

	prev, err := r.getHash256()
	if err != nil {
		return h, blockErr(ErrBadPrevHash, "header.prev_hash: "+err.Error())
	}
	h.PrevHash = prev

	root, err := r.getHash256()
	if err != nil {
		return h, blockErr(ErrBadMerkleRoot, "header.merkle_root: "+err.Error())
	}
	h.MerkleRoot = root

	ts, err := r.getU64()
	if err != nil {
		return h, blockErr(ErrTimestampNotAfterParent, "header.timestamp: "+err.Error())
	}
	h.Timestamp = ts

	target, err := r.getU64()
	if err != nil {
		return h, blockErr(ErrInvalidDifficulty, "header.difficulty_target: "+err.Error())
	}
	h.DifficultyTarget = target

	nonce, err := r.getU64()
	if err != nil {
		return h, blockErr(ErrBadPow, "header.nonce: "+err.Error())
	}
	h.Nonce = nonce

	if !r.atEnd() {
		return h, blockErr(ErrBadPrevHash, "trailing bytes after header")
	}
	return h, nil
}

// DecodeBlock parses a block previously produced by EncodeBlock.
func DecodeBlock(b []byte) (*Block, error) {
	if len(b) < 92 {
		return nil, blockErr(ErrEmptyBlock, "truncated block: shorter than header")
	}
	header, err := DecodeHeader(b[:92])
	if err != nil {
		return nil, err
	}

	r := newReader(b[92:])
	n, err := r.getSeqLen(maxSeqLen)
	if err != nil {
		return nil, blockErr(ErrEmptyBlock, "transactions len: "+err.Error())
	}
	blk := &Block{Header: header, Transactions: make([]Transaction, 0, n)}
	for i := uint64(0); i < n; i++ {
		// Each transaction is self-delimiting via its own internal length
		// prefixes, so we decode in-place by tracking how many bytes DecodeTx
		// consumed; DecodeTx itself requires the slice to end exactly at the
		// transaction boundary, so we locate that boundary by probing lengths
		// through a dedicated streaming reader instead of slicing blindly.
		tx, consumed, err := decodeTxPrefix(r.b[r.pos:])
		if err != nil {
			return nil, blockErr(ErrEmptyBlock, "transaction: "+err.Error())
		}
		blk.Transactions = append(blk.Transactions, *tx)
		r.pos += consumed
	}
	if !r.atEnd() {
		return nil, blockErr(ErrEmptyBlock, "trailing bytes after transactions")
	}
	return blk, nil
}
