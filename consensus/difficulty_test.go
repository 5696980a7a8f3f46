package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDifficultyEarlyHeightsReturnMaxTarget(t *testing.T) {
	lookup := func(h uint64) (uint64, bool) { return h * BlockTimeSecs, true }
	require.Equal(t, MaxTarget, NextDifficultyTarget(0, 12345, lookup))
	require.Equal(t, MaxTarget, NextDifficultyTarget(1, 12345, lookup))
}

func TestDifficultyStableAtExpectedPace(t *testing.T) {
	// Timestamps advance exactly BlockTimeSecs per height: actual == expected.
	lookup := func(h uint64) (uint64, bool) { return h * BlockTimeSecs, true }
	parent := uint64(1_000_000)
	next := NextDifficultyTarget(10, parent, lookup)
	require.Equal(t, parent, next)
}

func TestDifficultyClampedToMaxAdjustmentFactor(t *testing.T) {
	// Blocks arrived far slower than expected: target should rise by at most 4x.
	lookup := func(h uint64) (uint64, bool) {
		return h * BlockTimeSecs * 100, true // 100x slower than expected pace
	}
	parent := uint64(1_000_000)
	next := NextDifficultyTarget(10, parent, lookup)
	require.Equal(t, parent*MaxAdjustmentFactor, next)
}

func TestDifficultyClampedToMinAdjustmentFactor(t *testing.T) {
	// Blocks arrived far faster than expected: target should fall to at most 1/4.
	lookup := func(h uint64) (uint64, bool) {
		if h == 0 {
			return 0, true
		}
		return 1, true // nearly instantaneous compared to expected pace
	}
	parent := uint64(1_000_000)
	next := NextDifficultyTarget(10, parent, lookup)
	require.Equal(t, parent/MaxAdjustmentFactor, next)
}

func TestDifficultyAbsoluteClamp(t *testing.T) {
	lookup := func(h uint64) (uint64, bool) { return h * BlockTimeSecs * 1000, true }
	next := NextDifficultyTarget(10, MaxTarget, lookup)
	require.LessOrEqual(t, next, MaxTarget)
}
