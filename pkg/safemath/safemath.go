// Package safemath provides overflow-aware unsigned 64-bit arithmetic.
//
// The Checked* functions are for balances: they either return the exact
// result or fail. The Saturating* functions clamp and are only meant for
// meters and floors where clamping is the intended semantics.
package safemath

import (
	"math"

	ethmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// CheckedAddU64 returns a+b, or ErrArithmeticOverflow.
func CheckedAddU64(a, b uint64) (uint64, error) {
	sum, overflow := ethmath.SafeAdd(a, b)
	if overflow {
		return 0, programerr.ErrArithmeticOverflow
	}
	return sum, nil
}

// CheckedSubU64 returns a-b, or ErrArithmeticUnderflow if b > a.
func CheckedSubU64(a, b uint64) (uint64, error) {
	diff, underflow := ethmath.SafeSub(a, b)
	if underflow {
		return 0, programerr.ErrArithmeticUnderflow
	}
	return diff, nil
}

// CheckedMulU64 returns a*b, or ErrArithmeticOverflow.
func CheckedMulU64(a, b uint64) (uint64, error) {
	product, overflow := ethmath.SafeMul(a, b)
	if overflow {
		return 0, programerr.ErrArithmeticOverflow
	}
	return product, nil
}

func SaturatingAddU64(a, b uint64) uint64 {
	sum, overflow := ethmath.SafeAdd(a, b)
	if overflow {
		return math.MaxUint64
	}
	return sum
}

func SaturatingSubU64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func SaturatingMulU64(a, b uint64) uint64 {
	product, overflow := ethmath.SafeMul(a, b)
	if overflow {
		return math.MaxUint64
	}
	return product
}
