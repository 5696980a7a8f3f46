package consensus

// TxInput spends a prior output, authorized by a single-signature predicate
// (§3.2). There is no script language: signature + pubkey is the entire
// authorization surface.
type TxInput struct {
	Prev      OutPoint
	Signature [64]byte
	Pubkey    [32]byte
}

// TxOutput creates a new spendable value, tagged with the cluster id its
// value is aggregated under for decay purposes (§3.2, §4.3).
type TxOutput struct {
	Value       uint64
	PubkeyHash  Hash256
	ClusterID   Hash256
}

// Transaction is RillCoin's only transaction shape (§3.2).
type Transaction struct {
	Version  uint32
	Inputs   []TxInput
	Outputs  []TxOutput
	LockTime uint64
}

// IsCoinbase reports whether tx has the single-input, null-outpoint shape
// that marks a coinbase transaction. This is a shape check only; callers
// doing structural validation must additionally reject >1 inputs before
// trusting it (see StructuralCheckTx).
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].Prev.IsNull()
}

// TotalOutputValue sums tx's output values, checked for overflow.
func (tx *Transaction) TotalOutputValue() (uint64, error) {
	var total uint64
	for _, out := range tx.Outputs {
		var err error
		total, err = AddU64(total, out.Value)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
