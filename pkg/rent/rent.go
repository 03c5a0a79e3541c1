package rent

import (
	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
	"github.com/QuarksBlueFoot/jiminy/pkg/safemath"
)

const (
	// AccountStorageOverhead is the per-account metadata size charged in
	// addition to the data length.
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2
)

type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
}

var Default = Rent{
	LamportsPerByteYear: DefaultLamportsPerByteYear,
	ExemptionThreshold:  DefaultExemptionThreshold,
}

// MinimumBalance is the rent-exempt floor for dataLen bytes of data. It
// saturates instead of overflowing.
func (r Rent) MinimumBalance(dataLen uint64) uint64 {
	size := safemath.SaturatingAddU64(AccountStorageOverhead, dataLen)
	perByte := safemath.SaturatingMulU64(r.LamportsPerByteYear, r.ExemptionThreshold)
	return safemath.SaturatingMulU64(size, perByte)
}

func (r Rent) IsExempt(lamports uint64, dataLen uint64) bool {
	return lamports >= r.MinimumBalance(dataLen)
}

const (
	RentStateUninitialized = iota
	RentStateRentPaying
	RentStateRentExempt
)

type RentPayingInfo struct {
	Lamports uint64
	DataSize uint64
}

type RentStateInfo struct {
	RentState      uint64
	RentPayingInfo RentPayingInfo
}

func NewRentStateInfo(acct *accounts.Account, rent Rent) RentStateInfo {
	if acct.Lamports == 0 {
		return RentStateInfo{RentState: RentStateUninitialized}
	} else if rent.IsExempt(acct.Lamports, uint64(len(acct.Data))) {
		return RentStateInfo{RentState: RentStateRentExempt}
	} else {
		return RentStateInfo{RentState: RentStateRentPaying, RentPayingInfo: RentPayingInfo{Lamports: acct.Lamports, DataSize: uint64(len(acct.Data))}}
	}
}

// CheckRentStateTransition rejects a writable account ending a transaction
// rent-paying, unless it already was rent-paying with the same size and
// has not gained lamports.
func CheckRentStateTransition(pre, post RentStateInfo) error {
	switch post.RentState {
	case RentStateUninitialized, RentStateRentExempt:
		return nil
	}

	if pre.RentState == RentStateRentPaying &&
		post.RentPayingInfo.DataSize == pre.RentPayingInfo.DataSize &&
		post.RentPayingInfo.Lamports <= pre.RentPayingInfo.Lamports {
		return nil
	}
	return programerr.ErrInsufficientFundsForRent
}
