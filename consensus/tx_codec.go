package consensus

// Bincode-compatible serialization for Transaction (§4.7). Encoding is
// fixed-endianness (little-endian) and non-self-describing: two conformant
// implementations must produce byte-identical output for equal logical
// values.
//
// Layout:
//   version       u32
//   inputs        u64 len, then each: prev.txid [32]byte, prev.index u32,
//                 signature [64]byte, pubkey [32]byte
//   outputs       u64 len, then each: value u64, pubkey_hash [32]byte,
//                 cluster_id [32]byte
//   lock_time     u64

const maxSeqLen = 1 << 24 // generous structural bound; MAX_TX_SIZE enforces the real cap

// EncodeTx serializes tx including signatures and pubkeys (the wire form
// relayed between peers and stored on disk).
func EncodeTx(tx *Transaction) []byte {
	return encodeTx(tx, false)
}

// EncodeTxWitnessStripped serializes tx with every input's signature and
// pubkey zeroed — the preimage whose BLAKE3 hash is the txid (§3.2).
func EncodeTxWitnessStripped(tx *Transaction) []byte {
	return encodeTx(tx, true)
}

func encodeTx(tx *Transaction, stripWitness bool) []byte {
	w := newWriter(4 + 8 + len(tx.Inputs)*132 + 8 + len(tx.Outputs)*72 + 8)
	w.putU32(tx.Version)

	w.putSeqLen(len(tx.Inputs))
	for _, in := range tx.Inputs {
		w.putRaw(in.Prev.TxID[:])
		w.putU32(in.Prev.Index)
		if stripWitness {
			var zeroSig [64]byte
			var zeroPub [32]byte
			w.putRaw(zeroSig[:])
			w.putRaw(zeroPub[:])
		} else {
			w.putRaw(in.Signature[:])
			w.putRaw(in.Pubkey[:])
		}
	}

	w.putSeqLen(len(tx.Outputs))
	for _, out := range tx.Outputs {
		w.putU64(out.Value)
		w.putRaw(out.PubkeyHash[:])
		w.putRaw(out.ClusterID[:])
	}

	w.putU64(tx.LockTime)
	return w.bytes()
}

// DecodeTx parses a Transaction from its bincode encoding. It does not by
// itself enforce MAX_TX_SIZE or any structural invariant beyond what is
// needed to parse safely — see StructuralCheckTx for those.
func DecodeTx(b []byte) (*Transaction, error) {
	r := newReader(b)
	tx, err := decodeTxFromReader(r)
	if err != nil {
		return nil, err
	}
	if !r.atEnd() {
		return nil, txErr(ErrTooLarge, "trailing bytes after transaction")
	}
	return tx, nil
}

// decodeTxPrefix decodes a single transaction from the start of b without
// requiring b to be consumed exactly, returning the number of bytes read.
// Block decoding uses this since transactions are concatenated back-to-back
// with no outer length prefix per transaction.
func decodeTxPrefix(b []byte) (*Transaction, int, error) {
	r := newReader(b)
	tx, err := decodeTxFromReader(r)
	if err != nil {
		return nil, 0, err
	}
	return tx, r.pos, nil
}

func decodeTxFromReader(r *reader) (*Transaction, error) {
	tx := &Transaction{}

	version, err := r.getU32()
	if err != nil {
		return nil, txErr(ErrTooLarge, "version: "+err.Error())
	}
	tx.Version = version

	nIn, err := r.getSeqLen(maxSeqLen)
	if err != nil {
		return nil, txErr(ErrTooLarge, "inputs len: "+err.Error())
	}
	tx.Inputs = make([]TxInput, 0, nIn)
	for i := uint64(0); i < nIn; i++ {
		var in TxInput
		txid, err := r.getHash256()
		if err != nil {
			return nil, txErr(ErrTooLarge, "input.prev.txid: "+err.Error())
		}
		index, err := r.getU32()
		if err != nil {
			return nil, txErr(ErrTooLarge, "input.prev.index: "+err.Error())
		}
		in.Prev = OutPoint{TxID: txid, Index: index}
		sig, err := r.takeExact(64)
		if err != nil {
			return nil, txErr(ErrTooLarge, "input.signature: "+err.Error())
		}
		copy(in.Signature[:], sig)
		pub, err := r.takeExact(32)
		if err != nil {
			return nil, txErr(ErrTooLarge, "input.pubkey: "+err.Error())
		}
		copy(in.Pubkey[:], pub)
		tx.Inputs = append(tx.Inputs, in)
	}

	nOut, err := r.getSeqLen(maxSeqLen)
	if err != nil {
		return nil, txErr(ErrTooLarge, "outputs len: "+err.Error())
	}
	tx.Outputs = make([]TxOutput, 0, nOut)
	for i := uint64(0); i < nOut; i++ {
		var out TxOutput
		value, err := r.getU64()
		if err != nil {
			return nil, txErr(ErrTooLarge, "output.value: "+err.Error())
		}
		out.Value = value
		pkh, err := r.getHash256()
		if err != nil {
			return nil, txErr(ErrTooLarge, "output.pubkey_hash: "+err.Error())
		}
		out.PubkeyHash = pkh
		cid, err := r.getHash256()
		if err != nil {
			return nil, txErr(ErrTooLarge, "output.cluster_id: "+err.Error())
		}
		out.ClusterID = cid
		tx.Outputs = append(tx.Outputs, out)
	}

	lockTime, err := r.getU64()
	if err != nil {
		return nil, txErr(ErrTooLarge, "lock_time: "+err.Error())
	}
	tx.LockTime = lockTime

	return tx, nil
}

// TxID computes the transaction identifier: BLAKE3 of the witness-stripped
// serialization (§3.2). Mutating any input's signature or pubkey leaves the
// txid unchanged; mutating any output or lock_time changes it.
func TxID(tx *Transaction) Hash256 {
	return Blake3(EncodeTxWitnessStripped(tx))
}
