package consensus

import "math/big"

// TimestampLookup resolves a block height to its header timestamp. Implemented
// by the chain store; kept as a narrow interface so difficulty recomputation
// stays a pure function over whatever the caller can supply (§9 "trait-like
// polymorphism").
type TimestampLookup func(height uint64) (timestamp uint64, ok bool)

// NextDifficultyTarget computes the target for the block at height, given the
// immediately preceding block's target and a lookup over prior timestamps
// (§4.2). Heights 0 and 1 have insufficient history and always return
// MaxTarget. Heights 2..DIFFICULTY_WINDOW use a window that grows with the
// chain rather than waiting for a full DIFFICULTY_WINDOW of history.
func NextDifficultyTarget(height uint64, parentTarget uint64, lookup TimestampLookup) uint64 {
	if height <= 1 {
		return MaxTarget
	}
	tip := height - 1

	earliest := uint64(0)
	if tip > DifficultyWindow {
		earliest = tip - DifficultyWindow
	}
	intervals := tip - earliest
	if intervals == 0 {
		return MaxTarget
	}

	tipTime, ok := lookup(tip)
	if !ok {
		return MaxTarget
	}
	earliestTime, ok := lookup(earliest)
	if !ok {
		return MaxTarget
	}

	var actualTime uint64
	if tipTime > earliestTime {
		actualTime = tipTime - earliestTime
	} else {
		actualTime = 1 // degenerate/adversarial timestamps: treat as fastest possible
	}
	expectedTime := intervals * BlockTimeSecs

	parent := new(big.Int).SetUint64(parentTarget)
	actual := new(big.Int).SetUint64(actualTime)
	expected := new(big.Int).SetUint64(expectedTime)

	next := new(big.Int).Mul(parent, actual)
	next.Quo(next, expected)

	lowStep := new(big.Int).Quo(parent, big.NewInt(int64(MaxAdjustmentFactor)))
	highStep := new(big.Int).Mul(parent, big.NewInt(int64(MaxAdjustmentFactor)))
	if next.Cmp(lowStep) < 0 {
		next.Set(lowStep)
	} else if next.Cmp(highStep) > 0 {
		next.Set(highStep)
	}

	minAbs := new(big.Int).SetUint64(MinTarget)
	maxAbs := new(big.Int).SetUint64(MaxTarget)
	if next.Cmp(minAbs) < 0 {
		next.Set(minAbs)
	} else if next.Cmp(maxAbs) > 0 {
		next.Set(maxAbs)
	}

	return next.Uint64()
}
