package staking

import (
	"github.com/holiman/uint256"
)

// ComputeWeight returns floor(amount*shares/totalShares). The product is taken
// in 256 bits so it cannot overflow; ok is false when totalShares is zero or the
// quotient does not fit in 64 bits.
func ComputeWeight(amount, shares, totalShares uint64) (weight uint64, ok bool) {
	if totalShares == 0 {
		return 0, false
	}
	product := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(shares))
	quotient := product.Div(product, uint256.NewInt(totalShares))
	if !quotient.IsUint64() {
		return 0, false
	}
	return quotient.Uint64(), true
}
