package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockSubsidyHalving(t *testing.T) {
	require.Equal(t, InitialRewardRills, BlockSubsidy(0))
	require.Equal(t, InitialRewardRills, BlockSubsidy(HalvingInterval-1))
	require.Equal(t, InitialRewardRills/2, BlockSubsidy(HalvingInterval))
	require.Equal(t, InitialRewardRills/4, BlockSubsidy(2*HalvingInterval))
}

func TestBlockSubsidyZeroAfterEpoch64(t *testing.T) {
	require.Equal(t, uint64(0), BlockSubsidy(64*HalvingInterval))
	require.Equal(t, uint64(0), BlockSubsidy(100*HalvingInterval))
}

func TestCumulativeSubsidyMatchesIteration(t *testing.T) {
	var want uint64
	const upTo = 500_000
	for h := uint64(0); h <= upTo; h++ {
		want += BlockSubsidy(h)
	}
	require.Equal(t, want, CumulativeSubsidy(upTo))
}

func TestCumulativeSubsidySingleHeight(t *testing.T) {
	require.Equal(t, InitialRewardRills, CumulativeSubsidy(0))
}

func TestScheduledPoolRelease(t *testing.T) {
	require.Equal(t, uint64(0), ScheduledPoolRelease(0))
	require.Equal(t, uint64(100), ScheduledPoolRelease(10_000))
}
