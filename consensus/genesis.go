package consensus

// GenesisPremine is the dev-fund premine minted by the genesis block: 5% of
// MAX_SUPPLY (§6 Genesis).
var GenesisPremine = MaxSupplyRills * DevFundPremineN / DevFundPremineD

// GenesisBlock constructs the single fixed genesis block for params. Its
// coinbase output's ClusterID field is a wire-level placeholder (ZeroHash):
// the authoritative cluster id a coinbase output belongs to is always
// BLAKE3(txid), derived fresh by the chain store when the UTXO is created
// (§4.3), never trusted from the field an untrusted sender could otherwise
// forge. Genesis is asserted as prelude, never run through StructuralCheckBlock
// or ContextualCheckBlock (§6).
func GenesisBlock(params ChainParams) *Block {
	coinbase := Transaction{
		Version: 1,
		Inputs:  []TxInput{{Prev: NullOutPoint}},
		Outputs: []TxOutput{{
			Value:      GenesisPremine,
			PubkeyHash: GenesisDevFundHash,
			ClusterID:  ZeroHash,
		}},
		LockTime: 0,
	}
	txs := []Transaction{coinbase}
	header := BlockHeader{
		Version:          1,
		PrevHash:         ZeroHash,
		MerkleRoot:       MerkleRoot(txs),
		Timestamp:        params.GenesisTimestamp,
		DifficultyTarget: MaxTarget,
		Nonce:            0,
	}
	return &Block{Header: header, Transactions: txs}
}
