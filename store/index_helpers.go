package store

import (
	bolt "go.etcd.io/bbolt"

	"rillcoin.dev/node/consensus"
)

// appendOutPointIndex adds op to the OutPoint-list value stored at key in
// bucket (address_index or cluster_outpoints), creating the entry if absent.
func appendOutPointIndex(bucket *bolt.Bucket, key []byte, op consensus.OutPoint) error {
	existing, err := decodeOutPointListOrEmpty(bucket.Get(key))
	if err != nil {
		return err
	}
	existing = append(existing, op)
	return bucket.Put(key, encodeOutPointList(existing))
}

// removeOutPointIndex removes op from the OutPoint-list value stored at key
// in bucket, deleting the key entirely once its list is empty.
func removeOutPointIndex(bucket *bolt.Bucket, key []byte, op consensus.OutPoint) error {
	existing, err := decodeOutPointListOrEmpty(bucket.Get(key))
	if err != nil {
		return err
	}
	filtered := existing[:0]
	for _, o := range existing {
		if o != op {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return bucket.Delete(key)
	}
	return bucket.Put(key, encodeOutPointList(filtered))
}
