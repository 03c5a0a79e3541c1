package checks

import "github.com/QuarksBlueFoot/jiminy/pkg/rent"

// RentExemptMin is the minimum balance for an account with dataLen bytes of
// data to be rent exempt under default rent parameters: (128 + dataLen) *
// 6960, saturating.
func RentExemptMin(dataLen int) uint64 {
	return rent.Default.MinimumBalance(uint64(dataLen))
}
