package store

import (
	"testing"

	"rillcoin.dev/node/consensus"
)

// buildBranch mines n coinbase-only blocks on top of tip (without mutating
// s) and returns them in connect order, for feeding into Reorganize.
func buildBranch(prevHash consensus.Hash256, startHeight uint64, startTimestamp uint64, n int, payTo consensus.Hash256) []consensus.Block {
	blocks := make([]consensus.Block, 0, n)
	ts := startTimestamp
	ph := prevHash
	for i := 0; i < n; i++ {
		height := startHeight + uint64(i)
		ts += consensus.BlockTimeSecs
		blk := coinbaseBlock(ph, height, ts, payTo, consensus.BlockSubsidy(height))
		blocks = append(blocks, *blk)
		ph = consensus.HeaderHash(blk.Header)
	}
	return blocks
}

func TestReorganizeSwitchesToLongerBranch(t *testing.T) {
	s := openTestStore(t)
	if err := s.InitGenesis(); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}
	minerA := newKeypair(t)
	minerB := newKeypair(t)

	forkHash := s.TipHash()
	forkHeader, _, _ := s.GetHeader(forkHash)

	mineBlocks(t, s, 2, minerA.hash)
	staleTip := s.TipHash()

	branchB := buildBranch(forkHash, 1, forkHeader.Timestamp, 3, minerB.hash)

	res, err := Reorganize(s, branchB, branchB[len(branchB)-1].Header.Timestamp+1)
	if err != nil {
		t.Fatalf("Reorganize: %v", err)
	}
	if res.Disconnected != 2 {
		t.Fatalf("disconnected = %d, want 2", res.Disconnected)
	}
	if len(res.Connected) != 3 {
		t.Fatalf("connected = %d, want 3", len(res.Connected))
	}
	wantTip := consensus.HeaderHash(branchB[len(branchB)-1].Header)
	if s.TipHash() != wantTip || s.TipHeight() != 3 {
		t.Fatalf("tip after reorg = (%v, %d), want (%v, 3)", s.TipHash(), s.TipHeight(), wantTip)
	}
	if s.TipHash() == staleTip {
		t.Fatalf("tip unchanged after reorg")
	}

	// Every coinbase UTXO of the new branch must be present after the reorg.
	for i := range branchB {
		txid := consensus.TxID(&branchB[i].Transactions[0])
		if _, ok, err := s.GetUTXO(consensus.OutPoint{TxID: txid, Index: 0}); err != nil || !ok {
			t.Fatalf("branchB coinbase %d missing after reorg: ok=%v err=%v", i, ok, err)
		}
	}
}

func TestReorganizeMatchesDirectConstruction(t *testing.T) {
	sReorg := openTestStore(t)
	if err := sReorg.InitGenesis(); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}
	sDirect := openTestStore(t)
	if err := sDirect.InitGenesis(); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}

	minerA := newKeypair(t)
	minerB := newKeypair(t)

	forkHash := sReorg.TipHash()
	forkHeader, _, _ := sReorg.GetHeader(forkHash)

	mineBlocks(t, sReorg, 2, minerA.hash)
	branchB := buildBranch(forkHash, 1, forkHeader.Timestamp, 4, minerB.hash)
	if _, err := Reorganize(sReorg, branchB, branchB[len(branchB)-1].Header.Timestamp+1); err != nil {
		t.Fatalf("Reorganize: %v", err)
	}

	for i := range branchB {
		blk := branchB[i]
		if _, err := sDirect.ConnectBlock(&blk, blk.Header.Timestamp); err != nil {
			t.Fatalf("direct ConnectBlock(%d): %v", i, err)
		}
	}

	if sReorg.TipHash() != sDirect.TipHash() || sReorg.TipHeight() != sDirect.TipHeight() {
		t.Fatalf("tips differ: reorg=(%v,%d) direct=(%v,%d)", sReorg.TipHash(), sReorg.TipHeight(), sDirect.TipHash(), sDirect.TipHeight())
	}
	if sReorg.CirculatingSupply() != sDirect.CirculatingSupply() {
		t.Fatalf("circulating supply differs: reorg=%d direct=%d", sReorg.CirculatingSupply(), sDirect.CirculatingSupply())
	}
	if sReorg.DecayPool() != sDirect.DecayPool() {
		t.Fatalf("decay pool differs: reorg=%d direct=%d", sReorg.DecayPool(), sDirect.DecayPool())
	}

	for i := range branchB {
		txid := consensus.TxID(&branchB[i].Transactions[0])
		op := consensus.OutPoint{TxID: txid, Index: 0}
		eReorg, okReorg, errReorg := sReorg.GetUTXO(op)
		eDirect, okDirect, errDirect := sDirect.GetUTXO(op)
		if errReorg != nil || errDirect != nil || okReorg != okDirect {
			t.Fatalf("utxo lookup mismatch at %d: reorg(ok=%v err=%v) direct(ok=%v err=%v)", i, okReorg, errReorg, okDirect, errDirect)
		}
		if okReorg && eReorg != eDirect {
			t.Fatalf("utxo entry mismatch at %d: reorg=%+v direct=%+v", i, eReorg, eDirect)
		}
	}
}
