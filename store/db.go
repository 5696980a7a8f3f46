package store

import (
	"fmt"
	"math/big"
	"time"

	"github.com/decred/slog"
	bolt "go.etcd.io/bbolt"

	"rillcoin.dev/node/consensus"
)

// Log is the store subsystem's leveled logger, set by the embedding program
// (mirrors the teacher's per-subsystem slog.Backend wiring). Defaults to
// disabled output so library consumers get silence unless they opt in.
var Log = slog.Disabled

// The eight named columns of the persistence layout (§4.5, §6).
var (
	bucketBlocks       = []byte("blocks")
	bucketHeaders      = []byte("headers")
	bucketUtxos        = []byte("utxos")
	bucketHeightIndex  = []byte("height_index")
	bucketUndo         = []byte("undo")
	bucketClusters     = []byte("clusters")
	bucketAddressIndex = []byte("address_index")
	bucketMeta         = []byte("meta")
	bucketBlockIndex   = []byte("block_index")      // SUPPLEMENTED: explicit index with cumulative work
	bucketClustersHigh = []byte("clusters_above")   // SUPPLEMENTED: above-threshold set (§9 open question)
	bucketClusterUtxos = []byte("cluster_outpoints") // SUPPLEMENTED: cluster -> member OutPoints, needed to apply per-block decay across a cluster's spread
)

var allBuckets = [][]byte{
	bucketBlocks, bucketHeaders, bucketUtxos, bucketHeightIndex, bucketUndo,
	bucketClusters, bucketAddressIndex, bucketMeta, bucketBlockIndex, bucketClustersHigh,
	bucketClusterUtxos,
}

// BlockStatus classifies a block's position in the index (SUPPLEMENTED
// FEATURES #1), grounded on the teacher's node/store/db.go BlockStatus enum.
type BlockStatus byte

const (
	BlockStatusUnknown BlockStatus = 0
	BlockStatusValid   BlockStatus = 1
	BlockStatusInvalid BlockStatus = 2
)

// BlockIndexEntry records a block's position and accumulated work, enough to
// find fork points and compare competing branches without re-walking full
// block bodies (SUPPLEMENTED FEATURES #1).
type BlockIndexEntry struct {
	Height         uint64
	PrevHash       consensus.Hash256
	CumulativeWork *big.Int
	Status         BlockStatus
}

// Store wraps a bbolt database implementing the chain state engine's
// persistence layout. It is not safe for concurrent mutation: callers must
// serialize writers at the node layer (§5).
type Store struct {
	db   *bolt.DB
	path string

	params consensus.ChainParams

	tipHeight        uint64
	tipHash          consensus.Hash256
	circulatingSupply uint64
	decayPool        uint64
	hasTip           bool
}

// Open opens (creating if absent) a bbolt-backed store at path and ensures
// all named columns exist. It does not initialize genesis; call InitGenesis
// on a freshly created store before using it.
func Open(path string, params consensus.ChainParams) (*Store, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}
	s := &Store{db: bdb, path: path, params: params}

	if err := bdb.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("store: create bucket %s: %w", b, err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	if err := s.loadMeta(); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	Log.Infof("store: opened %s (tip height %d, hasTip=%v)", path, s.tipHeight, s.hasTip)
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// TipHeight, TipHash, CirculatingSupply and DecayPool report the store's
// process-global mutable state (§6 "Process state"), valid only once a
// genesis or later block has been connected.
func (s *Store) TipHeight() uint64            { return s.tipHeight }
func (s *Store) TipHash() consensus.Hash256   { return s.tipHash }
func (s *Store) HasTip() bool                 { return s.hasTip }
func (s *Store) CirculatingSupply() uint64    { return s.circulatingSupply }
func (s *Store) DecayPool() uint64            { return s.decayPool }
func (s *Store) Params() consensus.ChainParams { return s.params }

// GetBlock returns the full block for hash.
func (s *Store) GetBlock(hash consensus.Hash256) (*consensus.Block, bool, error) {
	var out *consensus.Block
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlocks).Get(hash[:])
		if v == nil {
			return nil
		}
		blk, err := consensus.DecodeBlock(v)
		if err != nil {
			return err
		}
		out = blk
		return nil
	})
	if err != nil || out == nil {
		return nil, false, err
	}
	return out, true, nil
}

// GetHeader returns the header for hash.
func (s *Store) GetHeader(hash consensus.Hash256) (consensus.BlockHeader, bool, error) {
	var out consensus.BlockHeader
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeaders).Get(hash[:])
		if v == nil {
			return nil
		}
		h, err := consensus.DecodeHeader(v)
		if err != nil {
			return err
		}
		out = h
		found = true
		return nil
	})
	return out, found, err
}

// HashAtHeight resolves a height to the block hash stored for it.
func (s *Store) HashAtHeight(height uint64) (consensus.Hash256, bool, error) {
	var out consensus.Hash256
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeightIndex).Get(heightKey(height))
		if v == nil {
			return nil
		}
		copy(out[:], v)
		found = true
		return nil
	})
	return out, found, err
}

// TimestampAt resolves a height to its header's timestamp, implementing
// consensus.TimestampLookup for difficulty recomputation.
func (s *Store) TimestampAt(height uint64) (uint64, bool) {
	hash, ok, err := s.HashAtHeight(height)
	if err != nil || !ok {
		return 0, false
	}
	h, ok, err := s.GetHeader(hash)
	if err != nil || !ok {
		return 0, false
	}
	return h.Timestamp, true
}

// GetIndex returns the block index entry for hash.
func (s *Store) GetIndex(hash consensus.Hash256) (*BlockIndexEntry, bool, error) {
	var out *BlockIndexEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlockIndex).Get(hash[:])
		if v == nil {
			return nil
		}
		e, err := decodeIndexEntry(v)
		if err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil || out == nil {
		return nil, false, err
	}
	return out, true, nil
}

// GetUTXO resolves an outpoint, implementing consensus.UtxoLookup.
func (s *Store) GetUTXO(op consensus.OutPoint) (consensus.UtxoEntry, bool, error) {
	var out consensus.UtxoEntry
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketUtxos).Get(encodeOutPoint(op))
		if v == nil {
			return nil
		}
		e, err := decodeUtxoEntry(v)
		if err != nil {
			return err
		}
		out = e
		found = true
		return nil
	})
	return out, found, err
}

// Lookup adapts GetUTXO to consensus.UtxoLookup, swallowing store errors as
// "not found" — callers that care about the distinction should call GetUTXO
// directly.
func (s *Store) Lookup() consensus.UtxoLookup {
	return func(op consensus.OutPoint) (consensus.UtxoEntry, bool) {
		e, ok, err := s.GetUTXO(op)
		if err != nil {
			return consensus.UtxoEntry{}, false
		}
		return e, ok
	}
}

// ClusterBalance returns the current aggregate balance of clusterID.
func (s *Store) ClusterBalance(clusterID consensus.Hash256) (uint64, error) {
	var out uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketClusters).Get(clusterID[:])
		if v == nil {
			return nil
		}
		out = decodeU64(v)
		return nil
	})
	return out, err
}

// AboveThresholdClusters returns every cluster id currently recorded in the
// above-threshold set (SUPPLEMENTED FEATURES #5), bounding the per-block
// decay scan to clusters that can possibly owe decay.
func (s *Store) AboveThresholdClusters() ([]consensus.Hash256, error) {
	var out []consensus.Hash256
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketClustersHigh).ForEach(func(k, _ []byte) error {
			var id consensus.Hash256
			copy(id[:], k)
			out = append(out, id)
			return nil
		})
	})
	return out, err
}

// AddressOutPoints returns the outpoints indexed for pubkeyHash (SUPPLEMENTED
// FEATURES #4).
func (s *Store) AddressOutPoints(pubkeyHash consensus.Hash256) ([]consensus.OutPoint, error) {
	var out []consensus.OutPoint
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketAddressIndex).Get(pubkeyHash[:])
		if v == nil {
			return nil
		}
		ops, err := decodeOutPointList(v)
		if err != nil {
			return err
		}
		out = ops
		return nil
	})
	return out, err
}

// ClusterOutPoints returns the outpoints currently recorded as members of
// clusterID, used to spread a block's decay debit across every unspent UTXO
// the cluster holds (§4.5 step 3).
func (s *Store) ClusterOutPoints(clusterID consensus.Hash256) ([]consensus.OutPoint, error) {
	var out []consensus.OutPoint
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketClusterUtxos).Get(clusterID[:])
		if v == nil {
			return nil
		}
		ops, err := decodeOutPointList(v)
		if err != nil {
			return err
		}
		out = ops
		return nil
	})
	return out, err
}

func heightKey(height uint64) []byte {
	b := make([]byte, 8)
	putU64BE(b, height)
	return b
}

func putU64BE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v)
		v >>= 8
	}
}
