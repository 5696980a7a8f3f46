package consensus

import "encoding/binary"

// CheckProofOfWork implements §4.1's PoW rule: the first 8 bytes of the
// header's SHA-256 hash, read as little-endian u64, must not exceed the
// header's difficulty target.
func CheckProofOfWork(header BlockHeader) bool {
	h := HeaderHash(header)
	value := binary.LittleEndian.Uint64(h[:8])
	return value <= header.DifficultyTarget
}

// StructuralCheckBlock validates block in isolation, with no reference to
// chain state (§4.1 structural block checks).
func StructuralCheckBlock(block *Block) error {
	if len(block.Transactions) == 0 {
		return blockErr(ErrEmptyBlock, "")
	}
	if !block.Transactions[0].IsCoinbase() {
		return blockErr(ErrFirstTxNotCoinbase, "")
	}
	for i := 1; i < len(block.Transactions); i++ {
		if block.Transactions[i].IsCoinbase() {
			return blockErr(ErrMultipleCoinbase, "")
		}
	}

	seen := make(map[Hash256]struct{}, len(block.Transactions))
	for i := range block.Transactions {
		id := TxID(&block.Transactions[i])
		if _, dup := seen[id]; dup {
			return blockErr(ErrDuplicateTxid, "")
		}
		seen[id] = struct{}{}
	}

	if MerkleRoot(block.Transactions) != block.Header.MerkleRoot {
		return blockErr(ErrBadMerkleRoot, "")
	}

	if len(EncodeBlock(block)) > MaxBlockSize {
		return blockErr(ErrBlockTooLarge, "")
	}

	if !CheckProofOfWork(block.Header) {
		return blockErr(ErrBadPow, "")
	}

	for i := range block.Transactions {
		if err := StructuralCheckTx(&block.Transactions[i]); err != nil {
			return blockTxErr(ErrInvalidTransaction, err.(*TransactionError))
		}
	}
	return nil
}

// BlockContext carries the chain-state facts needed to validate a block
// contextually (§4.1 contextual block checks): everything the validator
// needs beyond the block's own bytes and the UTXO lookup.
type BlockContext struct {
	Height             uint64
	PrevHash           Hash256
	PrevTimestamp      uint64
	ExpectedDifficulty uint64
	CurrentTime        uint64
	BlockSubsidy       uint64
	DecayPoolRelease   uint64
}

// ContextualBlockResult is the accepted-case outcome of ContextualCheckBlock.
type ContextualBlockResult struct {
	Fees          uint64
	CoinbaseValue uint64
}

// ContextualCheckBlock validates block against ctx and a UTXO lookup that
// reflects chain state immediately before this block (§4.1 contextual block
// checks). Every non-coinbase transaction is checked as if no other
// transaction in this block had already run — intra-block spends are
// disallowed, and a separate pass below catches double-spends across the
// block's own transactions.
func ContextualCheckBlock(block *Block, ctx BlockContext, lookup UtxoLookup) (ContextualBlockResult, error) {
	if block.Header.PrevHash != ctx.PrevHash {
		return ContextualBlockResult{}, blockErr(ErrBadPrevHash, "")
	}
	if block.Header.DifficultyTarget != ctx.ExpectedDifficulty {
		return ContextualBlockResult{}, blockErr(ErrInvalidDifficulty, "")
	}
	if block.Header.Timestamp <= ctx.PrevTimestamp {
		return ContextualBlockResult{}, blockErr(ErrTimestampNotAfterParent, "")
	}
	if block.Header.Timestamp > ctx.CurrentTime+2*BlockTimeSecs {
		return ContextualBlockResult{}, blockErr(ErrTimestampTooFarInFuture, "")
	}

	spent := make(map[OutPoint]struct{})
	var fees uint64
	for i := 1; i < len(block.Transactions); i++ {
		tx := &block.Transactions[i]
		for _, in := range tx.Inputs {
			if _, dup := spent[in.Prev]; dup {
				return ContextualBlockResult{}, blockErr(ErrDoubleSpend, "")
			}
			spent[in.Prev] = struct{}{}
		}

		result, err := ContextualCheckTx(tx, lookup, ctx.Height)
		if err != nil {
			return ContextualBlockResult{}, blockTxErr(ErrInvalidTransaction, err.(*TransactionError))
		}
		var addErr error
		fees, addErr = AddU64(fees, result.Fee)
		if addErr != nil {
			return ContextualBlockResult{}, addErr
		}
	}

	coinbaseValue, err := block.Transactions[0].TotalOutputValue()
	if err != nil {
		return ContextualBlockResult{}, err
	}
	maxPermitted, err := SumU64(ctx.BlockSubsidy, fees, ctx.DecayPoolRelease)
	if err != nil {
		return ContextualBlockResult{}, err
	}
	if coinbaseValue > maxPermitted {
		return ContextualBlockResult{}, blockErr(ErrCoinbaseOverpays, "")
	}

	return ContextualBlockResult{Fees: fees, CoinbaseValue: coinbaseValue}, nil
}
