package consensus

// UtxoLookup resolves an OutPoint to the UtxoEntry it created, if still
// unspent. Validation never touches storage directly — it takes this narrow
// read interface instead (§9), so it stays trivially testable with an
// in-memory map.
type UtxoLookup func(op OutPoint) (entry UtxoEntry, ok bool)

// UtxoEntry is the chain store's record of a single unspent output (§3.4).
type UtxoEntry struct {
	Value      uint64
	PubkeyHash Hash256
	ClusterID  Hash256
	Height     uint64
	IsCoinbase bool
}

// StructuralCheckTx validates tx in isolation, with no reference to chain
// state (§4.1 structural transaction checks).
func StructuralCheckTx(tx *Transaction) error {
	if len(tx.Inputs) == 0 {
		return txErr(ErrEmptyInputs, "")
	}
	if len(tx.Outputs) == 0 {
		return txErr(ErrEmptyOutputs, "")
	}
	for _, out := range tx.Outputs {
		if out.Value == 0 {
			return txErr(ErrZeroValueOutput, "")
		}
	}
	if _, err := tx.TotalOutputValue(); err != nil {
		return err
	}
	if len(EncodeTx(tx)) > MaxTxSize {
		return txErr(ErrTooLarge, "serialized transaction exceeds MAX_TX_SIZE")
	}

	if tx.IsCoinbase() {
		if len(tx.Inputs) != 1 {
			return txErr(ErrCoinbaseInputsInvalid, "coinbase must have exactly one input")
		}
		in := tx.Inputs[0]
		if len(in.Signature[:]) > MaxCoinbaseData || len(in.Pubkey[:]) > MaxCoinbaseData {
			return txErr(ErrCoinbaseInputsInvalid, "coinbase distinguishing data exceeds MAX_COINBASE_DATA")
		}
		return nil
	}

	seen := make(map[OutPoint]struct{}, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if in.Prev.IsNull() {
			return txErr(ErrNonCoinbaseNullOutpoint, "")
		}
		if _, dup := seen[in.Prev]; dup {
			return txErr(ErrDuplicateInput, "")
		}
		seen[in.Prev] = struct{}{}
		if len(in.Signature) != 64 {
			return txErr(ErrBadSignatureLength, "")
		}
		if len(in.Pubkey) != 32 {
			return txErr(ErrBadPubkeyLength, "")
		}
	}
	return nil
}

// ContextualTxResult is the accepted-case outcome of ContextualCheckTx.
type ContextualTxResult struct {
	TotalInput  uint64
	TotalOutput uint64
	Fee         uint64
}

// ContextualCheckTx validates tx against chain state at currentHeight: UTXO
// existence and maturity, signatures, and the value balance (§4.1 contextual
// transaction checks). Callers performing intra-block validation pass a
// lookup that reflects only UTXOs existing before the enclosing block.
func ContextualCheckTx(tx *Transaction, lookup UtxoLookup, currentHeight uint64) (ContextualTxResult, error) {
	var totalInput uint64

	for i, in := range tx.Inputs {
		utxo, ok := lookup(in.Prev)
		if !ok {
			return ContextualTxResult{}, txErr(ErrUtxoNotFound, "")
		}
		if utxo.IsCoinbase && currentHeight-utxo.Height < CoinbaseMaturity {
			return ContextualTxResult{}, txErr(ErrImmatureCoinbase, "")
		}

		if !VerifyInputSignature(tx, uint32(i), in.Pubkey, in.Signature) {
			return ContextualTxResult{}, txErr(ErrInvalidSignature, "")
		}
		if PubkeyHash(in.Pubkey) != utxo.PubkeyHash {
			return ContextualTxResult{}, txErr(ErrPubkeyHashMismatch, "")
		}

		var err error
		totalInput, err = AddU64(totalInput, utxo.Value)
		if err != nil {
			return ContextualTxResult{}, err
		}
	}

	totalOutput, err := tx.TotalOutputValue()
	if err != nil {
		return ContextualTxResult{}, err
	}
	if totalInput < totalOutput {
		return ContextualTxResult{}, txErr(ErrInsufficientFunds, "")
	}

	return ContextualTxResult{
		TotalInput:  totalInput,
		TotalOutput: totalOutput,
		Fee:         totalInput - totalOutput,
	}, nil
}

// InputClusterIDs resolves the distinct cluster ids of the UTXOs tx's inputs
// consume, via lookup. Used to compute the cluster id the transaction's own
// outputs inherit (§4.3). Callers must only invoke this for non-coinbase
// transactions that have already passed contextual validation.
func InputClusterIDs(tx *Transaction, lookup UtxoLookup) ([]Hash256, error) {
	ids := make([]Hash256, 0, len(tx.Inputs))
	for _, in := range tx.Inputs {
		utxo, ok := lookup(in.Prev)
		if !ok {
			return nil, txErr(ErrUtxoNotFound, "")
		}
		ids = append(ids, utxo.ClusterID)
	}
	return ids, nil
}
