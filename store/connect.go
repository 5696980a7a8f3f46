package store

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	bolt "go.etcd.io/bbolt"

	"rillcoin.dev/node/consensus"
)

// ConnectResult is the accepted-case outcome of ConnectBlock (§4.5).
type ConnectResult struct {
	UTXOsCreated uint64
	UTXOsSpent   uint64
	PoolRelease  uint64
	Fees         uint64
}

// ConnectBlock validates block against the store's current tip and, if
// accepted, atomically advances the chain by one block (§4.5
// connect_block). currentTime is the wall-clock time used for the future-
// timestamp bound; everything else needed for contextual validation
// (expected difficulty, previous timestamp, subsidy, pool release) is
// derived from the store's own state rather than trusted from the caller.
//
// The decay pool release computed and debited here is sized against
// decay_pool as observed at the parent tip, before this block's own decay
// deposits are credited — resolving Open Question 2 the way the governing
// specification pins it down explicitly.
func (s *Store) ConnectBlock(block *consensus.Block, currentTime uint64) (ConnectResult, error) {
	if !s.hasTip {
		return ConnectResult{}, chainErr(ErrEmptyChain, "connect: call InitGenesis first")
	}

	parentHash := s.tipHash
	parentHeader, ok, err := s.GetHeader(parentHash)
	if err != nil {
		return ConnectResult{}, err
	}
	if !ok {
		return ConnectResult{}, chainErr(ErrBlockNotFound, "connect: tip header missing")
	}

	height := s.tipHeight + 1
	hash := consensus.HeaderHash(block.Header)
	if idx, ok, err := s.GetIndex(hash); err != nil {
		return ConnectResult{}, err
	} else if ok && idx != nil {
		return ConnectResult{}, chainErr(ErrDuplicateBlock, "connect: block already indexed")
	}

	expectedDifficulty := consensus.NextDifficultyTarget(height, parentHeader.DifficultyTarget, s.TimestampAt)
	blockSubsidy := consensus.BlockSubsidy(height)
	poolReleaseCandidate := consensus.ScheduledPoolRelease(s.decayPool)

	ctx := consensus.BlockContext{
		Height:             height,
		PrevHash:           parentHash,
		PrevTimestamp:      parentHeader.Timestamp,
		ExpectedDifficulty: expectedDifficulty,
		CurrentTime:        currentTime,
		BlockSubsidy:       blockSubsidy,
		DecayPoolRelease:   poolReleaseCandidate,
	}

	var result ConnectResult
	var memSupply, memPool uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		utxoBucket := tx.Bucket(bucketUtxos)
		addrBucket := tx.Bucket(bucketAddressIndex)
		clusterUtxoBucket := tx.Bucket(bucketClusterUtxos)
		clusterBalBucket := tx.Bucket(bucketClusters)
		clusterHighBucket := tx.Bucket(bucketClustersHigh)

		txLookup := func(op consensus.OutPoint) (consensus.UtxoEntry, bool) {
			v := utxoBucket.Get(encodeOutPoint(op))
			if v == nil {
				return consensus.UtxoEntry{}, false
			}
			e, err := decodeUtxoEntry(v)
			if err != nil {
				return consensus.UtxoEntry{}, false
			}
			return e, true
		}

		checkResult, err := consensus.ContextualCheckBlock(block, ctx, txLookup)
		if err != nil {
			return err
		}

		undo := BlockUndo{}
		clusterDelta := map[consensus.Hash256]int64{}
		var utxosCreated, utxosSpent uint64

		touchClusters := func(id consensus.Hash256, delta int64) error {
			clusterDelta[id] += delta
			_, err := addClusterBalance(clusterBalBucket, id, delta)
			return err
		}

		for i := range block.Transactions {
			txp := &block.Transactions[i]
			txid := consensus.TxID(txp)

			var clusterID consensus.Hash256
			if txp.IsCoinbase() {
				clusterID = consensus.CoinbaseClusterID(txid)
			} else {
				inputClusterIDs := make([]consensus.Hash256, 0, len(txp.Inputs))
				for _, in := range txp.Inputs {
					entryBytes := utxoBucket.Get(encodeOutPoint(in.Prev))
					if entryBytes == nil {
						return fmt.Errorf("store: connect: missing utxo for spent input %v", in.Prev)
					}
					entry, err := decodeUtxoEntry(entryBytes)
					if err != nil {
						return err
					}
					inputClusterIDs = append(inputClusterIDs, entry.ClusterID)
					undo.Spent = append(undo.Spent, SpentUTXO{OutPoint: in.Prev, Entry: entry})
					utxosSpent++

					if err := utxoBucket.Delete(encodeOutPoint(in.Prev)); err != nil {
						return err
					}
					if err := removeOutPointIndex(addrBucket, entry.PubkeyHash[:], in.Prev); err != nil {
						return err
					}
					if err := removeOutPointIndex(clusterUtxoBucket, entry.ClusterID[:], in.Prev); err != nil {
						return err
					}
					if err := touchClusters(entry.ClusterID, -int64(entry.Value)); err != nil {
						return err
					}
				}
				clusterID = consensus.OutputClusterID(inputClusterIDs, txid)
			}

			for outIdx := range txp.Outputs {
				out := &txp.Outputs[outIdx]
				op := consensus.OutPoint{TxID: txid, Index: uint32(outIdx)} // #nosec G115 -- bounded by MaxTxSize
				newEntry := consensus.UtxoEntry{
					Value:      out.Value,
					PubkeyHash: out.PubkeyHash,
					ClusterID:  clusterID,
					Height:     height,
					IsCoinbase: txp.IsCoinbase(),
				}
				if err := utxoBucket.Put(encodeOutPoint(op), encodeUtxoEntry(newEntry)); err != nil {
					return err
				}
				utxosCreated++
				if err := appendOutPointIndex(addrBucket, out.PubkeyHash[:], op); err != nil {
					return err
				}
				if err := appendOutPointIndex(clusterUtxoBucket, clusterID[:], op); err != nil {
					return err
				}
				if err := touchClusters(clusterID, int64(out.Value)); err != nil {
					return err
				}
			}
		}

		supplyDelta := int64(0)
		for _, d := range clusterDelta {
			supplyDelta += d
		}
		supplyAfterCreate := uint64(int64(s.circulatingSupply) + supplyDelta)

		candidates := make(map[consensus.Hash256]struct{}, len(clusterDelta))
		for id := range clusterDelta {
			candidates[id] = struct{}{}
		}
		if err := clusterHighBucket.ForEach(func(k, _ []byte) error {
			var id consensus.Hash256
			copy(id[:], k)
			candidates[id] = struct{}{}
			return nil
		}); err != nil {
			return err
		}

		var decayPoolCredit uint64
		for clusterID := range candidates {
			balance := decodeU64(clusterBalBucket.Get(clusterID[:]))
			if balance == 0 {
				if err := clusterHighBucket.Delete(clusterID[:]); err != nil {
					return err
				}
				continue
			}
			concentration := consensus.Concentration(balance, supplyAfterCreate)
			rate := consensus.SigmoidRate(concentration)
			if rate == 0 {
				if err := setAboveThreshold(clusterHighBucket, clusterID, balance, supplyAfterCreate); err != nil {
					return err
				}
				continue
			}
			decayRemoved := consensus.SingleBlockDecay(balance, rate)
			if decayRemoved == 0 {
				continue
			}

			members, err := decodeOutPointListOrEmpty(clusterUtxoBucket.Get(clusterID[:]))
			if err != nil {
				return err
			}
			removedTotal, err := applyClusterDecay(utxoBucket, members, decayRemoved, balance, &undo)
			if err != nil {
				return err
			}
			if removedTotal == 0 {
				continue
			}
			if _, err := addClusterBalance(clusterBalBucket, clusterID, -int64(removedTotal)); err != nil {
				return err
			}
			clusterDelta[clusterID] -= int64(removedTotal)
			decayPoolCredit += removedTotal

			newBalance := balance - removedTotal
			if err := setAboveThreshold(clusterHighBucket, clusterID, newBalance, supplyAfterCreate); err != nil {
				return err
			}
		}

		for id, d := range clusterDelta {
			if d == 0 {
				continue
			}
			undo.ClusterDeltas = append(undo.ClusterDeltas, ClusterDelta{ClusterID: id, Delta: d})
		}
		sort.Slice(undo.ClusterDeltas, func(i, j int) bool {
			return bytes.Compare(undo.ClusterDeltas[i].ClusterID[:], undo.ClusterDeltas[j].ClusterID[:]) < 0
		})

		// The release is sized against decay_pool as observed at the parent
		// tip (poolReleaseCandidate, already passed to ContextualCheckBlock
		// via ctx.DecayPoolRelease), not against the pool after this block's
		// own decay deposits — resolving the open question the same way in
		// both the validation pass and the mutation pass.
		poolRelease := poolReleaseCandidate
		decayPool := s.decayPool - poolRelease + decayPoolCredit

		maxPermitted, err := consensus.SumU64(blockSubsidy, checkResult.Fees, poolRelease)
		if err != nil {
			return err
		}
		if checkResult.CoinbaseValue > maxPermitted {
			return fmt.Errorf("store: connect: coinbase overpays after decay accounting")
		}

		newSupply := supplyAfterCreate - decayPoolCredit
		undo.PoolDeltaIn = decayPoolCredit
		undo.PoolReleaseOut = poolRelease

		work, err := WorkFromTarget(block.Header.DifficultyTarget)
		if err != nil {
			return err
		}
		parentIdxBytes := tx.Bucket(bucketBlockIndex).Get(parentHash[:])
		if parentIdxBytes == nil {
			return chainErr(ErrBlockNotFound, "connect: parent index missing")
		}
		parentIdx, err := decodeIndexEntry(parentIdxBytes)
		if err != nil {
			return err
		}
		cumulative := new(big.Int).Add(parentIdx.CumulativeWork, work)

		if err := tx.Bucket(bucketBlocks).Put(hash[:], consensus.EncodeBlock(block)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketHeaders).Put(hash[:], consensus.HeaderBytes(block.Header)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketHeightIndex).Put(heightKey(height), hash[:]); err != nil {
			return err
		}
		encIdx, err := encodeIndexEntry(BlockIndexEntry{
			Height: height, PrevHash: parentHash, CumulativeWork: cumulative, Status: BlockStatusValid,
		})
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketBlockIndex).Put(hash[:], encIdx); err != nil {
			return err
		}
		if err := tx.Bucket(bucketUndo).Put(heightKey(height), encodeUndo(undo)); err != nil {
			return err
		}
		if err := putMeta(tx, height, hash, newSupply, decayPool); err != nil {
			return err
		}

		result = ConnectResult{UTXOsCreated: utxosCreated, UTXOsSpent: utxosSpent, PoolRelease: poolRelease, Fees: checkResult.Fees}
		memSupply, memPool = newSupply, decayPool
		return nil
	})
	if err != nil {
		return ConnectResult{}, err
	}
	s.setMemTip(height, hash, memSupply, memPool)
	return result, nil
}

// applyClusterDecay deducts decayRemoved from members proportionally to
// their current value, crediting the integer-division remainder to the
// largest-value UTXOs first, tie-broken by OutPoint lex order (§9 open
// question). It mutates utxoBucket directly and appends each changed
// member's pre-decay entry to undo.DecayedUTXOs.
func applyClusterDecay(utxoBucket *bolt.Bucket, members []consensus.OutPoint, decayRemoved, clusterBalance uint64, undo *BlockUndo) (uint64, error) {
	type decayTarget struct {
		op    consensus.OutPoint
		entry consensus.UtxoEntry
		share uint64
	}
	targets := make([]decayTarget, 0, len(members))
	for _, op := range members {
		v := utxoBucket.Get(encodeOutPoint(op))
		if v == nil {
			continue
		}
		entry, err := decodeUtxoEntry(v)
		if err != nil {
			return 0, err
		}
		share := new(big.Int).SetUint64(entry.Value)
		share.Mul(share, new(big.Int).SetUint64(decayRemoved))
		share.Quo(share, new(big.Int).SetUint64(clusterBalance))
		targets = append(targets, decayTarget{op: op, entry: entry, share: share.Uint64()})
	}

	var distributed uint64
	for _, t := range targets {
		distributed += t.share
	}
	remainder := decayRemoved - distributed

	sort.Slice(targets, func(i, j int) bool {
		if targets[i].entry.Value != targets[j].entry.Value {
			return targets[i].entry.Value > targets[j].entry.Value
		}
		return bytes.Compare(encodeOutPoint(targets[i].op), encodeOutPoint(targets[j].op)) < 0
	})
	for i := range targets {
		if remainder == 0 {
			break
		}
		targets[i].share++
		remainder--
	}

	var removedTotal uint64
	for _, t := range targets {
		if t.share == 0 {
			continue
		}
		undo.DecayedUTXOs = append(undo.DecayedUTXOs, SpentUTXO{OutPoint: t.op, Entry: t.entry})
		newEntry := t.entry
		newEntry.Value -= t.share
		if err := utxoBucket.Put(encodeOutPoint(t.op), encodeUtxoEntry(newEntry)); err != nil {
			return 0, err
		}
		removedTotal += t.share
	}
	return removedTotal, nil
}
