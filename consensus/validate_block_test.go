package consensus

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildValidBlock(t *testing.T, prevHash Hash256, txs []Transaction, target uint64, timestamp uint64) *Block {
	t.Helper()
	hdr := BlockHeader{
		Version:          1,
		PrevHash:         prevHash,
		MerkleRoot:       MerkleRoot(txs),
		Timestamp:        timestamp,
		DifficultyTarget: target,
	}
	// MaxTarget as target means any nonce satisfies PoW; no search needed.
	return &Block{Header: hdr, Transactions: txs}
}

func TestStructuralCheckBlockAcceptsMinimalCoinbaseOnlyBlock(t *testing.T) {
	txs := []Transaction{coinbaseTx(1, 5_000_000_000)}
	blk := buildValidBlock(t, ZeroHash, txs, MaxTarget, 100)
	require.NoError(t, StructuralCheckBlock(blk))
}

func TestStructuralCheckBlockRejectsEmpty(t *testing.T) {
	blk := &Block{Header: BlockHeader{DifficultyTarget: MaxTarget}}
	err := StructuralCheckBlock(blk)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrEmptyBlock, be.Code)
}

func TestStructuralCheckBlockRejectsFirstTxNotCoinbase(t *testing.T) {
	txs := []Transaction{*sampleTx()}
	blk := buildValidBlock(t, ZeroHash, txs, MaxTarget, 100)
	err := StructuralCheckBlock(blk)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrFirstTxNotCoinbase, be.Code)
}

func TestStructuralCheckBlockRejectsMultipleCoinbase(t *testing.T) {
	txs := []Transaction{coinbaseTx(1, 1000), coinbaseTx(2, 1000)}
	blk := buildValidBlock(t, ZeroHash, txs, MaxTarget, 100)
	err := StructuralCheckBlock(blk)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrMultipleCoinbase, be.Code)
}

func TestStructuralCheckBlockRejectsBadMerkleRoot(t *testing.T) {
	txs := []Transaction{coinbaseTx(1, 1000)}
	blk := buildValidBlock(t, ZeroHash, txs, MaxTarget, 100)
	blk.Header.MerkleRoot = Hash256{0xff}
	err := StructuralCheckBlock(blk)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrBadMerkleRoot, be.Code)
}

func TestStructuralCheckBlockRejectsBadPow(t *testing.T) {
	txs := []Transaction{coinbaseTx(1, 1000)}
	blk := buildValidBlock(t, ZeroHash, txs, 0, 100) // target 0: virtually impossible to satisfy
	err := StructuralCheckBlock(blk)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrBadPow, be.Code)
}

func TestContextualCheckBlockHappyPath(t *testing.T) {
	txs := []Transaction{coinbaseTx(1, 5_000_000_000)}
	blk := buildValidBlock(t, Hash256{0x01}, txs, MaxTarget, 200)

	ctx := BlockContext{
		Height:             1,
		PrevHash:           Hash256{0x01},
		PrevTimestamp:      100,
		ExpectedDifficulty: MaxTarget,
		CurrentTime:        200,
		BlockSubsidy:       5_000_000_000,
	}
	lookup := func(op OutPoint) (UtxoEntry, bool) { return UtxoEntry{}, false }

	result, err := ContextualCheckBlock(blk, ctx, lookup)
	require.NoError(t, err)
	require.Equal(t, uint64(0), result.Fees)
	require.Equal(t, uint64(5_000_000_000), result.CoinbaseValue)
}

func TestContextualCheckBlockRejectsBadPrevHash(t *testing.T) {
	txs := []Transaction{coinbaseTx(1, 1000)}
	blk := buildValidBlock(t, Hash256{0x01}, txs, MaxTarget, 200)
	ctx := BlockContext{PrevHash: Hash256{0x02}, PrevTimestamp: 100, ExpectedDifficulty: MaxTarget, CurrentTime: 200}
	_, err := ContextualCheckBlock(blk, ctx, nil)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrBadPrevHash, be.Code)
}

func TestContextualCheckBlockRejectsTimestampNotAfterParent(t *testing.T) {
	txs := []Transaction{coinbaseTx(1, 1000)}
	blk := buildValidBlock(t, Hash256{0x01}, txs, MaxTarget, 100)
	ctx := BlockContext{PrevHash: Hash256{0x01}, PrevTimestamp: 100, ExpectedDifficulty: MaxTarget, CurrentTime: 200}
	_, err := ContextualCheckBlock(blk, ctx, nil)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrTimestampNotAfterParent, be.Code)
}

func TestContextualCheckBlockRejectsFutureTimestamp(t *testing.T) {
	txs := []Transaction{coinbaseTx(1, 1000)}
	blk := buildValidBlock(t, Hash256{0x01}, txs, MaxTarget, 100_000)
	ctx := BlockContext{PrevHash: Hash256{0x01}, PrevTimestamp: 100, ExpectedDifficulty: MaxTarget, CurrentTime: 200}
	_, err := ContextualCheckBlock(blk, ctx, nil)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrTimestampTooFarInFuture, be.Code)
}

func TestContextualCheckBlockRejectsCoinbaseOverpay(t *testing.T) {
	txs := []Transaction{coinbaseTx(1, 10_000)}
	blk := buildValidBlock(t, Hash256{0x01}, txs, MaxTarget, 200)
	ctx := BlockContext{PrevHash: Hash256{0x01}, PrevTimestamp: 100, ExpectedDifficulty: MaxTarget, CurrentTime: 200, BlockSubsidy: 9_999}
	_, err := ContextualCheckBlock(blk, ctx, nil)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrCoinbaseOverpays, be.Code)
}

func TestContextualCheckBlockDetectsDoubleSpendAcrossTxs(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	prev := OutPoint{TxID: Hash256{0x01}, Index: 0}

	tx1 := signedSpendTx(t, prev, pub, priv, 100)
	tx2 := signedSpendTx(t, prev, pub, priv, 200) // same prev outpoint

	txs := []Transaction{coinbaseTx(1, 1000), *tx1, *tx2}
	blk := buildValidBlock(t, Hash256{0x01}, txs, MaxTarget, 200)

	utxo := UtxoEntry{Value: 1000, PubkeyHash: PubkeyHash(tx1.Inputs[0].Pubkey)}
	lookup := func(op OutPoint) (UtxoEntry, bool) {
		if op == prev {
			return utxo, true
		}
		return UtxoEntry{}, false
	}

	ctx := BlockContext{PrevHash: Hash256{0x01}, PrevTimestamp: 100, ExpectedDifficulty: MaxTarget, CurrentTime: 200, BlockSubsidy: 1000}
	_, err = ContextualCheckBlock(blk, ctx, lookup)
	var be *BlockError
	require.ErrorAs(t, err, &be)
	require.Equal(t, ErrDoubleSpend, be.Code)
}

func TestCheckProofOfWorkAcceptsMaxTarget(t *testing.T) {
	h := BlockHeader{DifficultyTarget: MaxTarget}
	require.True(t, CheckProofOfWork(h))
}

func TestCheckProofOfWorkRejectsImpossibleTarget(t *testing.T) {
	h := BlockHeader{DifficultyTarget: 0}
	require.False(t, CheckProofOfWork(h))
}
