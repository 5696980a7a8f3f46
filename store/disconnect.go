package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"rillcoin.dev/node/consensus"
)

// DisconnectResult is the accepted-case outcome of DisconnectTip (§4.5
// disconnect_tip).
type DisconnectResult struct {
	Hash   consensus.Hash256
	Height uint64
}

// DisconnectTip reverses the connect of the current tip block, restoring
// the store to exactly the state it held immediately before that block was
// connected (§4.5 disconnect_tip). Block bodies, headers, and the height
// index are left intact for history queries and reorg; only the undo
// record, UTXO set, cluster index, and process-global meta are reverted.
func (s *Store) DisconnectTip() (DisconnectResult, error) {
	if !s.hasTip {
		return DisconnectResult{}, chainErr(ErrEmptyChain, "disconnect: store has no tip")
	}
	if s.tipHeight == 0 {
		return DisconnectResult{}, chainErr(ErrEmptyChain, "disconnect: cannot disconnect genesis")
	}

	tipHash := s.tipHash
	tipHeight := s.tipHeight

	var result DisconnectResult
	var newSupply, newPool uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		undoBucket := tx.Bucket(bucketUndo)
		undoBytes := undoBucket.Get(heightKey(tipHeight))
		if undoBytes == nil {
			return chainErr(ErrUndoDataMissing, fmt.Sprintf("disconnect: no undo record at height %d", tipHeight))
		}
		undo, err := decodeUndo(undoBytes)
		if err != nil {
			return err
		}

		block, err := decodeBlockFromBucket(tx, tipHash)
		if err != nil {
			return err
		}

		utxoBucket := tx.Bucket(bucketUtxos)
		addrBucket := tx.Bucket(bucketAddressIndex)
		clusterUtxoBucket := tx.Bucket(bucketClusterUtxos)
		clusterBalBucket := tx.Bucket(bucketClusters)

		decayPool := s.decayPool + undo.PoolReleaseOut - undo.PoolDeltaIn

		for _, d := range undo.ClusterDeltas {
			if _, err := addClusterBalance(clusterBalBucket, d.ClusterID, -d.Delta); err != nil {
				return err
			}
		}

		// Restore decayed UTXOs before deleting this block's own new outputs:
		// a merge output created and decayed within the same block appears in
		// both undo.DecayedUTXOs and block.Transactions' outputs, and the
		// deletion loop below must win for any outpoint this block created,
		// regardless of which bucket that outpoint also shows up in.
		for _, d := range undo.DecayedUTXOs {
			if err := utxoBucket.Put(encodeOutPoint(d.OutPoint), encodeUtxoEntry(d.Entry)); err != nil {
				return err
			}
		}

		for i := range block.Transactions {
			txp := &block.Transactions[i]
			txid := consensus.TxID(txp)
			for outIdx := range txp.Outputs {
				out := &txp.Outputs[outIdx]
				op := consensus.OutPoint{TxID: txid, Index: uint32(outIdx)} // #nosec G115
				v := utxoBucket.Get(encodeOutPoint(op))
				if v == nil {
					continue
				}
				entry, err := decodeUtxoEntry(v)
				if err != nil {
					return err
				}
				if err := utxoBucket.Delete(encodeOutPoint(op)); err != nil {
					return err
				}
				if err := removeOutPointIndex(addrBucket, out.PubkeyHash[:], op); err != nil {
					return err
				}
				if err := removeOutPointIndex(clusterUtxoBucket, entry.ClusterID[:], op); err != nil {
					return err
				}
			}
		}

		for _, sp := range undo.Spent {
			if err := utxoBucket.Put(encodeOutPoint(sp.OutPoint), encodeUtxoEntry(sp.Entry)); err != nil {
				return err
			}
			if err := appendOutPointIndex(addrBucket, sp.Entry.PubkeyHash[:], sp.OutPoint); err != nil {
				return err
			}
			if err := appendOutPointIndex(clusterUtxoBucket, sp.Entry.ClusterID[:], sp.OutPoint); err != nil {
				return err
			}
		}

		clusterHighBucket := tx.Bucket(bucketClustersHigh)
		touched := make(map[consensus.Hash256]struct{}, len(undo.ClusterDeltas)+len(undo.DecayedUTXOs))
		for _, d := range undo.ClusterDeltas {
			touched[d.ClusterID] = struct{}{}
		}
		for _, sp := range undo.DecayedUTXOs {
			touched[sp.Entry.ClusterID] = struct{}{}
		}
		for _, sp := range undo.Spent {
			touched[sp.Entry.ClusterID] = struct{}{}
		}
		var netDelta int64
		for _, d := range undo.ClusterDeltas {
			netDelta += d.Delta
		}
		prevSupply := uint64(int64(s.circulatingSupply) - netDelta)
		for id := range touched {
			balance := decodeU64(clusterBalBucket.Get(id[:]))
			if balance == 0 {
				if err := clusterHighBucket.Delete(id[:]); err != nil {
					return err
				}
				continue
			}
			if err := setAboveThreshold(clusterHighBucket, id, balance, prevSupply); err != nil {
				return err
			}
		}

		if err := undoBucket.Delete(heightKey(tipHeight)); err != nil {
			return err
		}

		parentHash := block.Header.PrevHash
		if err := putMeta(tx, tipHeight-1, parentHash, prevSupply, decayPool); err != nil {
			return err
		}

		result = DisconnectResult{Hash: parentHash, Height: tipHeight - 1}
		newSupply, newPool = prevSupply, decayPool
		return nil
	})
	if err != nil {
		return DisconnectResult{}, err
	}
	s.setMemTip(result.Height, result.Hash, newSupply, newPool)
	return result, nil
}

func decodeBlockFromBucket(tx *bolt.Tx, hash consensus.Hash256) (*consensus.Block, error) {
	v := tx.Bucket(bucketBlocks).Get(hash[:])
	if v == nil {
		return nil, chainErr(ErrBlockNotFound, "disconnect: tip block body missing")
	}
	return consensus.DecodeBlock(v)
}
