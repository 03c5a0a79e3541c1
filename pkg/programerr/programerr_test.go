package programerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("instruction 2: %w", ErrPdaMismatch)
	assert.Equal(t, KindIdentity, KindOf(err))
	assert.True(t, errors.Is(err, ErrPdaMismatch))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestCode(t *testing.T) {
	assert.Equal(t, uint32(0), Code(nil))
	assert.Equal(t, uint32(1), Code(errors.New("plain")))
	assert.Equal(t, uint32(CodeMissingRequiredSignature), Code(ErrMissingRequiredSignature))
	assert.Equal(t, uint32(CodeInvalidSeeds), Code(fmt.Errorf("wrapped: %w", ErrPdaMismatch)))
}

func TestKinds_OneKindPerSentinel(t *testing.T) {
	cases := map[*Error]Kind{
		ErrAccountDataTooSmall:       KindBufferTooSmall,
		ErrDiscriminatorMismatch:     KindFormat,
		ErrVersionTooOld:             KindFormat,
		ErrMalformedReserved:         KindFormat,
		ErrMalformedBool:             KindFormat,
		ErrMissingRequiredSignature:  KindAuthorization,
		ErrAccountNotWritable:        KindAuthorization,
		ErrIncorrectProgramId:        KindAuthorization,
		ErrPdaMismatch:               KindIdentity,
		ErrAccountsAlias:             KindIdentity,
		ErrAddressMismatch:           KindIdentity,
		ErrAccountAlreadyInitialized: KindLifecycle,
		ErrAccountNotClosed:          KindLifecycle,
		ErrArithmeticOverflow:        KindArithmetic,
		ErrArithmeticUnderflow:       KindArithmetic,
		ErrAccountBorrowFailed:       KindResourceContention,
	}
	for e, kind := range cases {
		assert.Equal(t, kind, e.Kind, e.Name())
	}
}

func TestCodes_Unique(t *testing.T) {
	seen := make(map[uint32]string)
	for name, e := range registry {
		if prev, ok := seen[e.Code]; ok {
			t.Errorf("code %d shared by %s and %s", e.Code, prev, name)
		}
		seen[e.Code] = name
	}
}

func TestCustom(t *testing.T) {
	errFoo := Custom(KindLifecycle, CodeCustomBase+900, "ErrTestFoo")
	got, ok := ByName("ErrTestFoo")
	require.True(t, ok)
	assert.Same(t, errFoo, got)
	assert.Equal(t, "ErrTestFoo", errFoo.Error())

	assert.Panics(t, func() { Custom(KindLifecycle, 5, "ErrTestLow") })
	assert.Panics(t, func() { Custom(KindLifecycle, CodeCustomBase+901, "ErrTestFoo") })
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "identity", KindIdentity.String())
	assert.Equal(t, "kind(200)", Kind(200).String())
}
