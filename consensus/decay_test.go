package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSigmoidRateSubThresholdIsZero(t *testing.T) {
	require.Equal(t, uint64(0), SigmoidRate(0))
	require.Equal(t, uint64(0), SigmoidRate(DecayCThresholdPPB))
}

func TestSigmoidRateMonotonicAboveThreshold(t *testing.T) {
	prev := uint64(0)
	for _, c := range []uint64{DecayCThresholdPPB + 1, DecayCThresholdPPB * 2, DecayCThresholdPPB * 5, DecayCThresholdPPB * 50} {
		r := SigmoidRate(c)
		require.GreaterOrEqual(t, r, prev)
		prev = r
	}
}

func TestSigmoidRateSaturates(t *testing.T) {
	near := SigmoidRate(DecayCThresholdPPB + 100_000)
	far := SigmoidRate(DecayCThresholdPPB + 1_000_000_000)
	require.InDelta(t, float64(DecayRMaxPPB), float64(far), float64(DecayRMaxPPB)*0.01)
	require.Less(t, near, far)
}

func TestCompoundRetentionIdentityAtZeroExponent(t *testing.T) {
	require.Equal(t, DecayPrecision, CompoundRetention(DecayPrecision-1000, 0))
}

func TestCompoundRetentionZeroBaseWithPositiveExponent(t *testing.T) {
	require.Equal(t, uint64(0), CompoundRetention(0, 5))
}

func TestCompoundDecayLessThanOrEqualLinear(t *testing.T) {
	nominal := uint64(1_000_000_000)
	rate := SigmoidRate(DecayCThresholdPPB * 3)
	retention := RetentionPerBlock(rate)

	single := SingleBlockDecay(nominal, rate)
	for _, n := range []uint64{1, 2, 5, 10, 50} {
		compoundRetention := CompoundRetention(retention, n)
		_, compoundDecay := ApplyRetention(nominal, compoundRetention)
		require.LessOrEqual(t, compoundDecay, single*n, "n=%d", n)
	}
}

func TestCompoundRetentionOneStepMatchesSingleBlockDecay(t *testing.T) {
	nominal := uint64(500_000_000)
	rate := SigmoidRate(DecayCThresholdPPB * 10)
	retention := RetentionPerBlock(rate)

	effective1, decay1 := ApplyRetention(nominal, CompoundRetention(retention, 1))
	decay2 := SingleBlockDecay(nominal, rate)
	require.Equal(t, decay2, decay1)
	require.Equal(t, nominal-decay1, effective1)
}

func TestSubThresholdNeutrality(t *testing.T) {
	rate := SigmoidRate(DecayCThresholdPPB)
	require.Equal(t, uint64(0), rate)
	effective, decayRemoved := ApplyRetention(1_000_000, RetentionPerBlock(rate))
	require.Equal(t, uint64(0), decayRemoved)
	require.Equal(t, uint64(1_000_000), effective)
}

func TestMergeClusterIDOrderIndependent(t *testing.T) {
	a := Hash256{0x01}
	b := Hash256{0x02}
	c := Hash256{0x03}
	txid := Hash256{0x09}

	id1 := MergeClusterID([]Hash256{a, b, c}, txid)
	id2 := MergeClusterID([]Hash256{c, a, b}, txid)
	require.Equal(t, id1, id2)
}

func TestOutputClusterIDSingleInputInherits(t *testing.T) {
	a := Hash256{0x07}
	id := OutputClusterID([]Hash256{a, a}, Hash256{0x09})
	require.Equal(t, a, id)
}

func TestCoinbaseClusterIDIsFreshPerTxid(t *testing.T) {
	id1 := CoinbaseClusterID(Hash256{0x01})
	id2 := CoinbaseClusterID(Hash256{0x02})
	require.NotEqual(t, id1, id2)
}

func TestConcentrationComputation(t *testing.T) {
	c := Concentration(2_000_000, 1_000_000_000)
	require.Equal(t, uint64(2_000_000), c) // 2e6/1e9 * 1e9 = 2e6 ppb (0.2%)
}
