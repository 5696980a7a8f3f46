package store

import (
	"fmt"

	"rillcoin.dev/node/consensus"
)

// ReorgResult summarizes a completed reorganization: how many blocks were
// unwound from the old branch and the per-block results of connecting the
// new one.
type ReorgResult struct {
	Disconnected int
	Connected    []ConnectResult
	NewTip       consensus.Hash256
	NewHeight    uint64
}

// Reorganize switches the active chain to newBlocks, a sequence of blocks
// extending some ancestor already present in this store, ordered from
// lowest height to highest (SUPPLEMENTED FEATURES #2; spec.md §4.5 only
// specifies single-block connect_block/disconnect_tip — a real store needs
// this multi-block driver on top, grounded on the teacher's ReorgToTip:
// find the fork point, then disconnect the old tip down to it, then
// connect the new branch one block at a time).
//
// Reorganize does not itself roll back on a mid-sequence connect failure:
// per §4.5's failure model each individual connect/disconnect is atomic,
// but a multi-block reorg is a serialized sequence of those atomic steps,
// not one larger transaction. A caller that needs all-or-nothing semantics
// across the whole reorg should snapshot the prior tip hash and re-drive a
// reorg back to it on failure.
func Reorganize(s *Store, newBlocks []consensus.Block, currentTime uint64) (ReorgResult, error) {
	if len(newBlocks) == 0 {
		return ReorgResult{}, fmt.Errorf("store: reorg: empty block sequence")
	}
	if !s.hasTip {
		return ReorgResult{}, chainErr(ErrEmptyChain, "reorg: store has no tip")
	}

	ancestorHash := newBlocks[0].Header.PrevHash
	if _, ok, err := s.GetIndex(ancestorHash); err != nil {
		return ReorgResult{}, err
	} else if !ok {
		return ReorgResult{}, chainErr(ErrBlockNotFound, "reorg: fork ancestor not indexed")
	}

	var disconnected int
	for s.tipHash != ancestorHash {
		if s.tipHeight == 0 {
			return ReorgResult{}, chainErr(ErrBlockNotFound, "reorg: fork ancestor not on this branch")
		}
		if _, err := s.DisconnectTip(); err != nil {
			return ReorgResult{}, err
		}
		disconnected++
	}

	results := make([]ConnectResult, 0, len(newBlocks))
	for i := range newBlocks {
		res, err := s.ConnectBlock(&newBlocks[i], currentTime)
		if err != nil {
			return ReorgResult{Disconnected: disconnected, Connected: results, NewTip: s.tipHash, NewHeight: s.tipHeight}, err
		}
		results = append(results, res)
	}

	return ReorgResult{Disconnected: disconnected, Connected: results, NewTip: s.tipHash, NewHeight: s.tipHeight}, nil
}
