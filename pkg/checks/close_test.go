package checks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

func TestSafeClose(t *testing.T) {
	tests := []struct {
		name       string
		sourceLam  uint64
		destLam    uint64
		sourceData int
	}{
		{"funded record", 1224960, 5000, 48},
		{"empty source", 0, 7, 0},
		{"destination at zero", 42, 0, 88},
		{"fills destination exactly", 1, math.MaxUint64 - 1, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newView(tt.sourceLam, record(1, 1, max(tt.sourceData, 8))[:tt.sourceData], false, true)
			dst := newView(tt.destLam, nil, false, true)

			require.NoError(t, SafeClose(src, dst))
			assert.Zero(t, src.Lamports())
			assert.Zero(t, src.DataLen())
			assert.Equal(t, tt.destLam+tt.sourceLam, dst.Lamports())
			assert.NoError(t, CheckClosed(src))
			assert.Equal(t, Closed, StateOf(src))
		})
	}
}

func TestSafeClose_OverflowLeavesBothUntouched(t *testing.T) {
	data := record(1, 1, 48)
	src := newView(2, data, false, true)
	dst := newView(math.MaxUint64-1, nil, false, true)

	err := SafeClose(src, dst)
	assert.ErrorIs(t, err, programerr.ErrArithmeticOverflow)
	assert.Equal(t, programerr.KindArithmetic, programerr.KindOf(err))
	assert.Equal(t, uint64(2), src.Lamports())
	assert.Equal(t, 48, src.DataLen())
	assert.Equal(t, uint64(math.MaxUint64-1), dst.Lamports())
	assert.ErrorIs(t, CheckClosed(src), programerr.ErrAccountNotClosed)
}

func TestSafeClose_Refusals(t *testing.T) {
	src := newView(10, record(1, 1, 48), false, true)
	assert.ErrorIs(t, SafeClose(src, src), programerr.ErrAccountsAlias)

	ro := newView(10, record(1, 1, 48), false, false)
	dst := newView(0, nil, false, true)
	assert.ErrorIs(t, SafeClose(ro, dst), programerr.ErrAccountNotWritable)
	roDst := newView(3, nil, false, false)
	assert.ErrorIs(t, SafeClose(src, roDst), programerr.ErrAccountNotWritable)
	assert.Equal(t, uint64(10), src.Lamports())
	assert.Equal(t, 48, src.DataLen())
	assert.Equal(t, uint64(3), roDst.Lamports())
	assert.Equal(t, uint64(10), ro.Lamports())
	assert.Zero(t, dst.Lamports())

	r, err := src.TryBorrow()
	require.NoError(t, err)
	assert.ErrorIs(t, SafeClose(src, dst), programerr.ErrAccountBorrowFailed)
	assert.Equal(t, uint64(10), src.Lamports())
	assert.Zero(t, dst.Lamports())
	r.Release()
	assert.NoError(t, SafeClose(src, dst))
}
