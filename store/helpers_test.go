package store

import (
	"path/filepath"
	"testing"

	"rillcoin.dev/node/consensus"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.db")
	s, err := Open(path, consensus.DevnetParams())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func coinbaseBlock(prevHash consensus.Hash256, height uint64, timestamp uint64, payTo consensus.Hash256, value uint64) *consensus.Block {
	txs := []consensus.Transaction{{
		Version:  1,
		Inputs:   []consensus.TxInput{{Prev: consensus.NullOutPoint}},
		Outputs:  []consensus.TxOutput{{Value: value, PubkeyHash: payTo, ClusterID: consensus.ZeroHash}},
		LockTime: height,
	}}
	return &consensus.Block{
		Header: consensus.BlockHeader{
			Version:          1,
			PrevHash:         prevHash,
			MerkleRoot:       consensus.MerkleRoot(txs),
			Timestamp:        timestamp,
			DifficultyTarget: consensus.MaxTarget,
		},
		Transactions: txs,
	}
}

// mineBlocks connects n trivial coinbase-only blocks on top of s's current
// tip, each exactly BlockTimeSecs after the last, keeping the difficulty
// target pinned at MaxTarget (actual/expected ratio stays 1).
func mineBlocks(t *testing.T, s *Store, n int, payTo consensus.Hash256) {
	t.Helper()
	for i := 0; i < n; i++ {
		header, ok, err := s.GetHeader(s.TipHash())
		if err != nil || !ok {
			t.Fatalf("GetHeader(tip): ok=%v err=%v", ok, err)
		}
		height := s.TipHeight() + 1
		blk := coinbaseBlock(s.TipHash(), height, header.Timestamp+consensus.BlockTimeSecs, payTo, consensus.BlockSubsidy(height))
		if _, err := s.ConnectBlock(blk, blk.Header.Timestamp); err != nil {
			t.Fatalf("ConnectBlock(height=%d): %v", height, err)
		}
	}
}
