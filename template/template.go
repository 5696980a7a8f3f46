// Package template assembles a candidate block at the chain store's tip+1
// from the mempool's best-paying transactions, ready for a miner external
// to this core to search for a valid proof of work (§4.6).
package template

import (
	"fmt"

	"rillcoin.dev/node/consensus"
	"rillcoin.dev/node/mempool"
	"rillcoin.dev/node/store"
)

// Result is a built candidate block together with the accounting that went
// into its coinbase value.
type Result struct {
	Block       *consensus.Block
	Fees        uint64
	PoolRelease uint64
}

// Build constructs a candidate block extending s's current tip, paying the
// coinbase to minerPubkeyHash (§4.6 steps 1-4). currentTime seeds the
// header timestamp; if the wall clock has not advanced past the parent's
// timestamp, the candidate is bumped to parent+1 so it always validates
// against ContextualCheckBlock's strictly-after-parent rule.
//
// Build does not itself run PoW search or mutate s or pool: it only reads
// their current state. Callers connect the eventually-mined block through
// the normal ConnectBlock path, which re-derives and re-checks everything
// here from chain state rather than trusting the template.
func Build(s *store.Store, pool *mempool.Pool, minerPubkeyHash consensus.Hash256, currentTime uint64) (*Result, error) {
	if !s.HasTip() {
		return nil, fmt.Errorf("template: store has no tip (InitGenesis first)")
	}
	height := s.TipHeight() + 1

	coinbase := consensus.Transaction{
		Version:  1,
		Inputs:   []consensus.TxInput{{Prev: consensus.NullOutPoint}},
		Outputs:  []consensus.TxOutput{{Value: 0, PubkeyHash: minerPubkeyHash, ClusterID: consensus.ZeroHash}},
		LockTime: height,
	}
	coinbaseSize := uint64(len(consensus.EncodeTx(&coinbase)))
	if coinbaseSize >= consensus.MaxBlockSize {
		return nil, fmt.Errorf("template: coinbase alone exceeds MAX_BLOCK_SIZE")
	}

	selected := pool.SelectTransactions(consensus.MaxBlockSize - coinbaseSize)
	var fees uint64
	for _, e := range selected {
		var err error
		fees, err = consensus.AddU64(fees, e.Fee)
		if err != nil {
			return nil, err
		}
	}

	poolRelease := consensus.ScheduledPoolRelease(s.DecayPool())
	coinbaseValue, err := consensus.SumU64(consensus.BlockSubsidy(height), fees, poolRelease)
	if err != nil {
		return nil, err
	}
	coinbase.Outputs[0].Value = coinbaseValue

	txs := make([]consensus.Transaction, 0, len(selected)+1)
	txs = append(txs, coinbase)
	for _, e := range selected {
		txs = append(txs, *e.Tx)
	}

	parentHash := s.TipHash()
	parentHeader, ok, err := s.GetHeader(parentHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("template: tip header missing")
	}

	timestamp := currentTime
	if timestamp <= parentHeader.Timestamp {
		timestamp = parentHeader.Timestamp + 1
	}
	difficulty := consensus.NextDifficultyTarget(height, parentHeader.DifficultyTarget, s.TimestampAt)

	block := &consensus.Block{
		Header: consensus.BlockHeader{
			Version:          1,
			PrevHash:         parentHash,
			MerkleRoot:       consensus.MerkleRoot(txs),
			Timestamp:        timestamp,
			DifficultyTarget: difficulty,
		},
		Transactions: txs,
	}
	return &Result{Block: block, Fees: fees, PoolRelease: poolRelease}, nil
}
