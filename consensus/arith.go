package consensus

import "math/bits"

// AddU64 returns a+b, or a ValueOverflow TransactionError if the sum would
// wrap. Consensus paths never let a silent wraparound stand in for an
// overflow check (§3.7).
func AddU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, &TransactionError{Code: ErrValueOverflow}
	}
	return sum, nil
}

// SumU64 sums vs, checking for overflow at every step.
func SumU64(vs ...uint64) (uint64, error) {
	var total uint64
	for _, v := range vs {
		var err error
		total, err = AddU64(total, v)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
