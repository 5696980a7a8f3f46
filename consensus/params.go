package consensus

// Consensus constants (§6). All monetary values are in rills; 1 RILL = COIN
// rills.
const (
	COIN uint64 = 100_000_000 // 10^8 rills per RILL

	MaxSupplyRills  uint64 = 21_000_000 * COIN
	DevFundPremineN uint64 = 5  // premine = DevFundPremineN% of MaxSupplyRills
	DevFundPremineD uint64 = 100

	InitialRewardRills uint64 = 50 * COIN
	HalvingInterval    uint64 = 210_000

	BlockTimeSecs      uint64 = 60
	MaxFutureBlockTime uint64 = 2 * BlockTimeSecs // 120s drift bound (§3.7)

	DifficultyWindow     uint64 = 60 // 60 intervals, 61 timestamps
	MaxAdjustmentFactor  uint64 = 4

	MinTarget uint64 = 1
	MaxTarget uint64 = 1<<64 - 1 // u64::MAX

	CoinbaseMaturity uint64 = 100

	MaxBlockSize      = 1 << 20 // 1 MiB
	MaxTxSize         = MaxBlockSize
	MaxCoinbaseData   = 100 // bytes

	MinTxFeeRills uint64 = 1_000

	// Fixed-point precisions for the decay engine (§4.3).
	DecayPrecision         uint64 = 10_000_000_000 // 10^10
	ConcentrationPrecision uint64 = 1_000_000_000  // 10^9 (parts-per-billion)
	DecayCThresholdPPB     uint64 = 1_000_000       // 0.1% of supply, in PPB
	DecayPoolReleaseBPS    uint64 = 100              // 1% of pool released per block

	// DecayRMaxPPB and DecayK saturate the sigmoid rate curve well above
	// threshold: a cluster at roughly 10x the threshold concentration sees
	// close to the maximum per-block decay rate.
	DecayRMaxPPB uint64 = 50_000_000 // 0.5% max per-block decay rate (out of DecayPrecision)
	DecayK       uint64 = 4_000      // scales (C - threshold) in PPB into sigmoid table units

	SigmoidPrecision uint64 = 1_000_000_000 // 10^9
	TableStep        uint64 = 500_000_000   // 0.5 in SigmoidPrecision units, per LUT entry
)

// MinTxFeeRate is defined equal to MinTxFeeRills. The mempool does not use
// this constant — it compares total fee against MinTxFeeRills at admission
// (§4.4 step 3) and uses fee RATE (fee*1000/size, milli-rills per byte) only
// for ordering and eviction.
const MinTxFeeRate = MinTxFeeRills

// SigmoidLUT is a 17-entry table at x = 0.0, 0.5, ..., 8.0 giving
// sigma(x) = 1/(1+e^-x) in units of SigmoidPrecision (§4.3). Values are
// exact integer roundings of the real sigmoid at each sample point.
var SigmoidLUT = [17]uint64{
	500000000, // x=0.0
	622459331, // x=0.5
	731058579, // x=1.0
	817574476, // x=1.5
	880797078, // x=2.0
	924141820, // x=2.5
	952574127, // x=3.0
	970687769, // x=3.5
	982013790, // x=4.0
	989013057, // x=4.5
	993307149, // x=5.0
	995929862, // x=5.5
	997527377, // x=6.0
	998498818, // x=6.5
	999088949, // x=7.0
	999447221, // x=7.5
	999664650, // x=8.0
}
