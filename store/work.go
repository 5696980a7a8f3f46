package store

import (
	"fmt"
	"math/big"
)

var twoTo64 = new(big.Int).Lsh(big.NewInt(1), 64)

// WorkFromTarget returns floor(2^64 / target), the chainwork a single block
// at the given 64-bit difficulty target contributes (grounded on the
// teacher's 256-bit WorkFromTarget, scaled down to RillCoin's 64-bit target
// space per §3.3/§3.6).
func WorkFromTarget(target uint64) (*big.Int, error) {
	if target == 0 {
		return nil, fmt.Errorf("work: target must be > 0")
	}
	t := new(big.Int).SetUint64(target)
	return new(big.Int).Quo(twoTo64, t), nil
}
