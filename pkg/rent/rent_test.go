package rent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

func TestMinimumBalance(t *testing.T) {
	assert.Equal(t, uint64(128*6960), Default.MinimumBalance(0))
	assert.Equal(t, uint64((128+48)*6960), Default.MinimumBalance(48))
	assert.Equal(t, uint64(math.MaxUint64), Default.MinimumBalance(math.MaxUint64))
	assert.True(t, Default.IsExempt(1224960, 48))
	assert.False(t, Default.IsExempt(1224959, 48))
}

func TestNewRentStateInfo(t *testing.T) {
	assert.Equal(t, uint64(RentStateUninitialized), NewRentStateInfo(&accounts.Account{Data: make([]byte, 10)}, Default).RentState)
	assert.Equal(t, uint64(RentStateRentExempt), NewRentStateInfo(&accounts.Account{Lamports: 890880}, Default).RentState)

	info := NewRentStateInfo(&accounts.Account{Lamports: 5, Data: make([]byte, 3)}, Default)
	assert.Equal(t, uint64(RentStateRentPaying), info.RentState)
	assert.Equal(t, RentPayingInfo{Lamports: 5, DataSize: 3}, info.RentPayingInfo)
}

func TestCheckRentStateTransition(t *testing.T) {
	uninit := RentStateInfo{RentState: RentStateUninitialized}
	exempt := RentStateInfo{RentState: RentStateRentExempt}
	paying := func(lamports, size uint64) RentStateInfo {
		return RentStateInfo{RentState: RentStateRentPaying, RentPayingInfo: RentPayingInfo{lamports, size}}
	}

	assert.NoError(t, CheckRentStateTransition(exempt, uninit))
	assert.NoError(t, CheckRentStateTransition(uninit, exempt))
	assert.NoError(t, CheckRentStateTransition(paying(10, 4), paying(9, 4)))

	assert.ErrorIs(t, CheckRentStateTransition(uninit, paying(1, 0)), programerr.ErrInsufficientFundsForRent)
	assert.ErrorIs(t, CheckRentStateTransition(exempt, paying(1, 0)), programerr.ErrInsufficientFundsForRent)
	assert.ErrorIs(t, CheckRentStateTransition(paying(10, 4), paying(11, 4)), programerr.ErrInsufficientFundsForRent)
	assert.ErrorIs(t, CheckRentStateTransition(paying(10, 4), paying(10, 5)), programerr.ErrInsufficientFundsForRent)
}
