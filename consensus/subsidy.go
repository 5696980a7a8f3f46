package consensus

// BlockSubsidy returns the coinbase reward at height (§4.2): the initial
// reward halved once per HALVING_INTERVAL, floored to 0 once the shift would
// overflow (epoch 64 and beyond pay nothing, matching a 64-bit right shift
// that has shifted every bit out).
func BlockSubsidy(height uint64) uint64 {
	epoch := height / HalvingInterval
	if epoch >= 64 {
		return 0
	}
	return InitialRewardRills >> epoch
}

// CumulativeSubsidy returns the total subsidy minted by all blocks at
// heights [0, throughHeight], computed in O(epochs) by summing closed-form
// per-epoch contributions rather than iterating every height.
func CumulativeSubsidy(throughHeight uint64) uint64 {
	var total uint64
	blocksCounted := uint64(0)
	remaining := throughHeight + 1 // number of heights 0..throughHeight inclusive
	for epoch := uint64(0); blocksCounted < remaining; epoch++ {
		reward := BlockSubsidy(epoch * HalvingInterval)
		if reward == 0 {
			// Every subsequent epoch also pays 0; nothing more to add.
			blocksInEpoch := remaining - blocksCounted
			blocksCounted += blocksInEpoch
			break
		}
		blocksInEpoch := HalvingInterval
		if blocksCounted+blocksInEpoch > remaining {
			blocksInEpoch = remaining - blocksCounted
		}
		total += reward * blocksInEpoch
		blocksCounted += blocksInEpoch
	}
	return total
}

// ScheduledPoolRelease is the amount of the decay pool a new block at the
// tip holding decayPool is permitted to route to its coinbase (§4.3): a
// fixed fraction, DECAY_POOL_RELEASE_BPS basis points, of the pool as
// observed before this block's own decay deposits.
func ScheduledPoolRelease(decayPool uint64) uint64 {
	return decayPool * DecayPoolReleaseBPS / 10_000
}
