package store

import (
	bolt "go.etcd.io/bbolt"

	"rillcoin.dev/node/consensus"
)

// addClusterBalance applies delta to clusterID's aggregate balance within
// bucket, returning the resulting balance. A result that would go negative
// indicates a bug in the caller's bookkeeping, not a reachable user error.
func addClusterBalance(bucket *bolt.Bucket, clusterID consensus.Hash256, delta int64) (uint64, error) {
	current := int64(decodeU64(bucket.Get(clusterID[:])))
	next := current + delta
	if next < 0 {
		return 0, chainErr(ErrUndoDataMissing, "cluster balance would go negative")
	}
	if next == 0 {
		if err := bucket.Delete(clusterID[:]); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err := bucket.Put(clusterID[:], encodeU64(uint64(next))); err != nil {
		return 0, err
	}
	return uint64(next), nil
}

// setAboveThreshold updates the clusters_above membership set for clusterID
// given its current balance and the circulating supply it is measured
// against (§4.3, SUPPLEMENTED FEATURES #5).
func setAboveThreshold(bucket *bolt.Bucket, clusterID consensus.Hash256, balance, circulatingSupply uint64) error {
	above := consensus.Concentration(balance, circulatingSupply) > consensus.DecayCThresholdPPB
	if above {
		return bucket.Put(clusterID[:], []byte{1})
	}
	existing := bucket.Get(clusterID[:])
	if existing == nil {
		return nil
	}
	return bucket.Delete(clusterID[:])
}
