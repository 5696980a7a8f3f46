package consensus

import "math"

// OutPoint identifies a transaction output: the transaction that created it
// and its index within that transaction's outputs (§3.1).
type OutPoint struct {
	TxID  Hash256
	Index uint32
}

// NullIndex is the coinbase-marker index: 2^32 - 1.
const NullIndex = uint32(math.MaxUint32)

// NullOutPoint is the only permitted input outpoint of a coinbase
// transaction.
var NullOutPoint = OutPoint{TxID: ZeroHash, Index: NullIndex}

// IsNull reports whether op is the coinbase marker.
func (op OutPoint) IsNull() bool {
	return op.TxID == ZeroHash && op.Index == NullIndex
}
