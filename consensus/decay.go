package consensus

import "math/big"

// SigmoidRate computes the per-block decay rate for a cluster at the given
// concentration (§4.3), expressed as a numerator over DecayPrecision — the
// same denominator used everywhere else decay fractions are consumed. Below
// the threshold the rate is exactly zero; above it, Decay_K scales the
// excess concentration into the lookup table's domain and the table is
// linearly interpolated, saturating past x = 8.
func SigmoidRate(concentrationPPB uint64) uint64 {
	if concentrationPPB <= DecayCThresholdPPB {
		return 0
	}
	delta := concentrationPPB - DecayCThresholdPPB
	xScaled := DecayK * delta

	maxIndex := uint64(len(SigmoidLUT) - 1)
	index := xScaled / TableStep
	if index >= maxIndex {
		return DecayRMaxPPB * SigmoidLUT[maxIndex] / SigmoidPrecision
	}

	frac := xScaled % TableStep
	lo := SigmoidLUT[index]
	hi := SigmoidLUT[index+1]
	interpolated := lo + (hi-lo)*frac/TableStep
	return DecayRMaxPPB * interpolated / SigmoidPrecision
}

// Concentration returns a cluster's share of circulating supply, in PPB
// (§4.3 glossary). Supply of 0 is treated as maximal concentration so a
// degenerate pre-genesis call never silently reports zero.
func Concentration(clusterBalance, circulatingSupply uint64) uint64 {
	if circulatingSupply == 0 {
		return ConcentrationPrecision
	}
	num := new(big.Int).SetUint64(clusterBalance)
	num.Mul(num, new(big.Int).SetUint64(ConcentrationPrecision))
	num.Quo(num, new(big.Int).SetUint64(circulatingSupply))
	if !num.IsUint64() {
		return ConcentrationPrecision
	}
	return num.Uint64()
}

func mulDivDecayPrecision(a, b uint64) uint64 {
	x := new(big.Int).SetUint64(a)
	x.Mul(x, new(big.Int).SetUint64(b))
	x.Quo(x, new(big.Int).SetUint64(DecayPrecision))
	return x.Uint64()
}

// SingleBlockDecay returns the value removed from a balance of nominal over
// one block at rate (a DecayPrecision-denominated fraction from SigmoidRate).
func SingleBlockDecay(nominal uint64, rate uint64) uint64 {
	return mulDivDecayPrecision(nominal, rate)
}

// RetentionPerBlock is the single-block retained fraction, DecayPrecision -
// rate.
func RetentionPerBlock(rate uint64) uint64 {
	return DecayPrecision - rate
}

// CompoundRetention computes (retentionPerBlock / DecayPrecision)^n as a
// DecayPrecision-denominated numerator, via fixed-point binary
// exponentiation in big.Int intermediates (§4.3): square-and-multiply,
// dividing by DecayPrecision after every multiply so the accumulator never
// escapes its fixed-point representation. A zero base with n > 0 yields 0;
// n == 0 yields DecayPrecision (the multiplicative identity).
func CompoundRetention(retentionPerBlock uint64, n uint64) uint64 {
	if n == 0 {
		return DecayPrecision
	}
	if retentionPerBlock == 0 {
		return 0
	}

	precision := new(big.Int).SetUint64(DecayPrecision)
	base := new(big.Int).SetUint64(retentionPerBlock)
	result := new(big.Int).Set(precision) // identity

	exp := n
	for exp > 0 {
		if exp&1 == 1 {
			result.Mul(result, base)
			result.Quo(result, precision)
		}
		exp >>= 1
		if exp > 0 {
			base.Mul(base, base)
			base.Quo(base, precision)
		}
	}
	return result.Uint64()
}

// ApplyRetention returns the value remaining after retentionTotal (a
// DecayPrecision-denominated fraction, e.g. from CompoundRetention) is
// applied to nominal, along with the amount removed.
func ApplyRetention(nominal uint64, retentionTotal uint64) (effective uint64, decayRemoved uint64) {
	effective = mulDivDecayPrecision(nominal, retentionTotal)
	decayRemoved = nominal - effective
	return effective, decayRemoved
}

// CoinbaseClusterID derives the fresh cluster id a coinbase transaction's
// outputs are tagged with (§4.3): BLAKE3(txid).
func CoinbaseClusterID(txid Hash256) Hash256 {
	return Blake3(txid[:])
}

// MergeClusterID derives the cluster id for a transaction whose inputs span
// more than one distinct cluster: BLAKE3(sorted-deduped concat of the input
// cluster ids, then txid). The sort makes the id independent of input order.
func MergeClusterID(inputClusterIDs []Hash256, txid Hash256) Hash256 {
	sorted := SortedDedupedHashes(inputClusterIDs)
	parts := make([][]byte, 0, len(sorted)+1)
	for i := range sorted {
		parts = append(parts, sorted[i][:])
	}
	parts = append(parts, txid[:])
	return Blake3Concat(parts...)
}

// OutputClusterID determines the cluster id a non-coinbase transaction's
// outputs inherit, given the distinct cluster ids of the UTXOs its inputs
// consumed (§4.3).
func OutputClusterID(inputClusterIDs []Hash256, txid Hash256) Hash256 {
	deduped := SortedDedupedHashes(inputClusterIDs)
	if len(deduped) == 1 {
		return deduped[0]
	}
	return MergeClusterID(deduped, txid)
}
