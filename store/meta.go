package store

import (
	bolt "go.etcd.io/bbolt"

	"rillcoin.dev/node/consensus"
)

// Keys within the meta bucket holding the chain's process-global scalar
// state (§6 "Process state").
var (
	metaKeyTipHeight         = []byte("tip_height")
	metaKeyTipHash           = []byte("tip_hash")
	metaKeyCirculatingSupply = []byte("circulating_supply")
	metaKeyDecayPool         = []byte("decay_pool")
)

// loadMeta populates the in-memory tip/supply/pool fields from the meta
// bucket. An empty bucket (fresh store, genesis not yet initialized) leaves
// hasTip false and the scalar fields zeroed.
func (s *Store) loadMeta() error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		hashBytes := b.Get(metaKeyTipHash)
		if hashBytes == nil {
			return nil
		}
		var hash consensus.Hash256
		copy(hash[:], hashBytes)
		s.tipHash = hash
		s.tipHeight = decodeU64(b.Get(metaKeyTipHeight))
		s.circulatingSupply = decodeU64(b.Get(metaKeyCirculatingSupply))
		s.decayPool = decodeU64(b.Get(metaKeyDecayPool))
		s.hasTip = true
		return nil
	})
}

// putMeta writes the given tip/supply/pool values into the meta bucket
// within an already-open write transaction. It does not touch the in-memory
// fields: callers (InitGenesis, ConnectBlock, DisconnectTip) invoke this as
// the last step of their write transaction and call setMemTip once the
// transaction has committed.
func putMeta(tx *bolt.Tx, height uint64, hash consensus.Hash256, circulating, decayPool uint64) error {
	b := tx.Bucket(bucketMeta)
	if err := b.Put(metaKeyTipHeight, encodeU64(height)); err != nil {
		return err
	}
	if err := b.Put(metaKeyTipHash, hash[:]); err != nil {
		return err
	}
	if err := b.Put(metaKeyCirculatingSupply, encodeU64(circulating)); err != nil {
		return err
	}
	return b.Put(metaKeyDecayPool, encodeU64(decayPool))
}

func (s *Store) setMemTip(height uint64, hash consensus.Hash256, circulating, decayPool uint64) {
	s.tipHeight = height
	s.tipHash = hash
	s.circulatingSupply = circulating
	s.decayPool = decayPool
	s.hasTip = true
}
