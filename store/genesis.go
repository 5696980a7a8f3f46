package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"rillcoin.dev/node/consensus"
)

// InitGenesis builds and persists the fixed genesis block for s's network,
// initializing the tip, circulating supply, and an empty decay pool. It
// fails if a tip already exists, so callers can't accidentally stomp a
// populated chain (§6 Genesis, boundary scenario 1).
func (s *Store) InitGenesis() error {
	if s.hasTip {
		return chainErr(ErrDuplicateBlock, "genesis: store already has a tip")
	}

	block := consensus.GenesisBlock(s.params)
	header := block.Header
	hash := consensus.HeaderHash(header)
	coinbase := block.Transactions[0]
	txid := consensus.TxID(&coinbase)
	clusterID := consensus.CoinbaseClusterID(txid)
	out := coinbase.Outputs[0]

	work, err := WorkFromTarget(header.DifficultyTarget)
	if err != nil {
		return fmt.Errorf("store: genesis: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		blockBytes := consensus.EncodeBlock(block)
		if err := tx.Bucket(bucketBlocks).Put(hash[:], blockBytes); err != nil {
			return err
		}
		if err := tx.Bucket(bucketHeaders).Put(hash[:], consensus.HeaderBytes(header)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketHeightIndex).Put(heightKey(0), hash[:]); err != nil {
			return err
		}

		entry := BlockIndexEntry{Height: 0, PrevHash: consensus.ZeroHash, CumulativeWork: work, Status: BlockStatusValid}
		encEntry, err := encodeIndexEntry(entry)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketBlockIndex).Put(hash[:], encEntry); err != nil {
			return err
		}

		entryOut := consensus.OutPoint{TxID: txid, Index: 0}
		utxoEntry := consensus.UtxoEntry{
			Value:      out.Value,
			PubkeyHash: out.PubkeyHash,
			ClusterID:  clusterID,
			Height:     0,
			IsCoinbase: true,
		}
		if err := tx.Bucket(bucketUtxos).Put(encodeOutPoint(entryOut), encodeUtxoEntry(utxoEntry)); err != nil {
			return err
		}

		if err := tx.Bucket(bucketClusters).Put(clusterID[:], encodeU64(out.Value)); err != nil {
			return err
		}
		// The dev-fund premine is, by construction, the entire initial
		// supply — any nonzero threshold fraction is trivially exceeded.
		// It is deliberately left out of clusters_above at genesis time:
		// boundary scenario 2 (§8) asserts decay_pool stays zero through
		// the first mined block, which only holds if the untouched premine
		// cluster is decay-exempt until it is first spent. The moment any
		// transaction spends from it, it becomes a touched cluster in the
		// connect that spends it and is evaluated normally from then on.

		if err := appendOutPointIndex(tx.Bucket(bucketAddressIndex), out.PubkeyHash[:], entryOut); err != nil {
			return err
		}
		if err := appendOutPointIndex(tx.Bucket(bucketClusterUtxos), clusterID[:], entryOut); err != nil {
			return err
		}

		// An empty undo record: genesis is never disconnected in practice,
		// but DisconnectTip's invariants hold more simply if every connected
		// height has one.
		if err := tx.Bucket(bucketUndo).Put(heightKey(0), encodeUndo(BlockUndo{})); err != nil {
			return err
		}

		return putMeta(tx, 0, hash, out.Value, 0)
	})
	if err != nil {
		return err
	}

	s.setMemTip(0, hash, out.Value, 0)
	Log.Infof("store: genesis initialized, hash=%s supply=%d", hash, out.Value)
	return nil
}

func decodeOutPointListOrEmpty(b []byte) ([]consensus.OutPoint, error) {
	if b == nil {
		return nil, nil
	}
	return decodeOutPointList(b)
}
