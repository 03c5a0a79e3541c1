package checks

import (
	"bytes"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/cu"
	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
	"github.com/QuarksBlueFoot/jiminy/pkg/pda"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

var programID = solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x42}, 32))

func newView(lamports uint64, data []byte, signer, writable bool) *accounts.View {
	return accounts.NewView(&accounts.Account{
		Key:      solana.NewWallet().PublicKey(),
		Lamports: lamports,
		Data:     data,
		Owner:    programID,
	}, signer, writable)
}

func record(disc, version uint8, size int) []byte {
	data := make([]byte, size)
	if err := layout.WriteHeader(data, disc, version, 0); err != nil {
		panic(err)
	}
	return data
}

func TestCheckSignerWritable(t *testing.T) {
	assert.NoError(t, CheckSigner(newView(0, nil, true, false)))
	assert.ErrorIs(t, CheckSigner(newView(0, nil, false, true)), programerr.ErrMissingRequiredSignature)
	assert.NoError(t, CheckWritable(newView(0, nil, false, true)))

	err := CheckWritable(newView(0, nil, true, false))
	assert.ErrorIs(t, err, programerr.ErrAccountNotWritable)
	assert.Equal(t, programerr.KindAuthorization, programerr.KindOf(err))
}

func TestCheckOwner(t *testing.T) {
	v := newView(0, nil, false, false)
	assert.NoError(t, CheckOwner(v, programID))
	assert.ErrorIs(t, CheckOwner(v, solana.TokenProgramID), programerr.ErrIncorrectProgramId)
}

func TestCheckLifecycle(t *testing.T) {
	prefunded := newView(890880, nil, false, true)
	assert.NoError(t, CheckUninitialized(prefunded))
	assert.ErrorIs(t, CheckClosed(prefunded), programerr.ErrAccountNotClosed)
	assert.ErrorIs(t, CheckNotFunded(prefunded), programerr.ErrAccountAlreadyInitialized)
	assert.Equal(t, Uninitialized, StateOf(prefunded))

	populated := newView(0, []byte{1}, false, true)
	err := CheckUninitialized(populated)
	assert.ErrorIs(t, err, programerr.ErrAccountAlreadyInitialized)
	assert.Equal(t, programerr.KindLifecycle, programerr.KindOf(err))
	assert.ErrorIs(t, CheckClosed(populated), programerr.ErrAccountNotClosed)
	assert.Equal(t, Initialized, StateOf(populated))

	closed := newView(0, nil, false, false)
	assert.NoError(t, CheckClosed(closed))
	assert.NoError(t, CheckUninitialized(closed))
	assert.NoError(t, CheckNotFunded(closed))
	assert.Equal(t, Closed, StateOf(closed))
	assert.Equal(t, "closed", Closed.String())
}

func TestCheckLamports(t *testing.T) {
	v := newView(100, make([]byte, 10), false, false)
	assert.NoError(t, CheckLamportsGTE(v, 100))
	assert.ErrorIs(t, CheckLamportsGTE(v, 101), programerr.ErrInsufficientFunds)
	assert.ErrorIs(t, CheckRentExempt(v), programerr.ErrInsufficientFunds)

	exempt := newView(RentExemptMin(10), make([]byte, 10), false, false)
	assert.NoError(t, CheckRentExempt(exempt))
	assert.Equal(t, uint64((128+10)*6960), RentExemptMin(10))
	assert.Equal(t, uint64(math.MaxUint64), RentExemptMin(math.MaxInt))
}

func TestCheckSizeAndDiscriminator(t *testing.T) {
	v := newView(0, record(1, 1, 48), false, false)
	assert.NoError(t, CheckSize(v, 48))
	assert.ErrorIs(t, CheckSize(v, 49), programerr.ErrAccountDataTooSmall)
	assert.NoError(t, CheckDiscriminator(v, 1))
	assert.ErrorIs(t, CheckDiscriminator(v, 2), programerr.ErrDiscriminatorMismatch)
	assert.ErrorIs(t, CheckDiscriminator(newView(0, nil, false, false), 1), programerr.ErrAccountDataTooSmall)
}

func TestCheckDiscriminator_Contention(t *testing.T) {
	v := newView(0, record(1, 1, 48), false, true)
	w, err := v.TryBorrowMut()
	require.NoError(t, err)
	assert.ErrorIs(t, CheckDiscriminator(v, 1), programerr.ErrAccountBorrowFailed)
	w.Release()
	assert.NoError(t, CheckDiscriminator(v, 1))
	assert.False(t, v.Borrowed(), "checks release their borrows")
}

// Owner is checked before size, size before discriminator.
func TestCheckAccount_Order(t *testing.T) {
	foreign := accounts.NewView(&accounts.Account{Owner: solana.TokenProgramID, Data: []byte{9}}, false, false)
	assert.ErrorIs(t, CheckAccount(foreign, programID, 1, 48), programerr.ErrIncorrectProgramId)

	short := newView(0, []byte{9}, false, false)
	assert.ErrorIs(t, CheckAccount(short, programID, 1, 48), programerr.ErrAccountDataTooSmall)

	wrong := newView(0, record(9, 1, 48), false, false)
	assert.ErrorIs(t, CheckAccount(wrong, programID, 1, 48), programerr.ErrDiscriminatorMismatch)

	ok := newView(0, record(1, 1, 48), false, false)
	assert.NoError(t, CheckAccount(ok, programID, 1, 48))
}

func TestCheckVersioned(t *testing.T) {
	v := newView(0, record(1, 2, 48), false, false)
	assert.NoError(t, CheckVersioned(v, programID, 1, 2, 48))
	assert.ErrorIs(t, CheckVersioned(v, programID, 1, 3, 48), programerr.ErrVersionTooOld)

	bad := record(1, 2, 48)
	bad[3] = 1
	assert.ErrorIs(t, CheckVersioned(newView(0, bad, false, false), programID, 1, 1, 48), programerr.ErrMalformedReserved)
}

func TestCheckAddresses(t *testing.T) {
	a := newView(0, nil, false, false)
	b := newView(0, nil, false, false)
	assert.NoError(t, CheckAccountsNotEqual(a, b))

	err := CheckAccountsNotEqual(a, a)
	assert.ErrorIs(t, err, programerr.ErrAccountsAlias)
	assert.Equal(t, programerr.KindIdentity, programerr.KindOf(err))

	assert.NoError(t, CheckHasOne(a.Address(), a))
	assert.ErrorIs(t, CheckHasOne(a.Address(), b), programerr.ErrAddressMismatch)
	assert.NoError(t, CheckAddress(b, b.Address()))
	assert.ErrorIs(t, CheckKeysEq(a.Address(), b.Address()), programerr.ErrAddressMismatch)
}

// Distinct views over accounts with the same address are still aliases.
func TestCheckAccountsNotEqual_SameAddressDistinctViews(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	a := accounts.NewView(&accounts.Account{Key: key}, false, true)
	b := accounts.NewView(&accounts.Account{Key: key}, true, false)
	assert.False(t, a.SameAccount(b))
	assert.ErrorIs(t, CheckAccountsNotEqual(a, b), programerr.ErrAccountsAlias)
}

func TestCheckPrograms(t *testing.T) {
	sys := accounts.NewView(&accounts.Account{Key: SystemProgram, Executable: true}, false, false)
	assert.NoError(t, CheckSystemProgram(sys))
	assert.NoError(t, CheckProgram(sys, SystemProgram))
	assert.NoError(t, CheckExecutable(sys))

	data := newView(0, nil, false, false)
	assert.ErrorIs(t, CheckSystemProgram(data), programerr.ErrIncorrectProgramId)
	assert.ErrorIs(t, CheckExecutable(data), programerr.ErrAccountNotExecutable)

	notExec := accounts.NewView(&accounts.Account{Key: TokenProgram}, false, false)
	assert.ErrorIs(t, CheckProgram(notExec, TokenProgram), programerr.ErrIncorrectProgramId)
}

func TestCheckPDA(t *testing.T) {
	seeds := [][]byte{[]byte("vault"), []byte("alice")}
	addr, bump, err := pda.FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	v := accounts.NewView(&accounts.Account{Key: addr}, false, true)
	got, err := CheckPDA(v, seeds, programID, nil)
	require.NoError(t, err)
	assert.Equal(t, bump, got)
	assert.NoError(t, CheckPDAWithBump(v, seeds, bump, programID))
	assert.NoError(t, CheckDerivedAddress(v, addr))

	other := newView(0, nil, false, false)
	_, err = CheckPDA(other, seeds, programID, nil)
	assert.ErrorIs(t, err, programerr.ErrPdaMismatch)
	assert.ErrorIs(t, CheckPDAWithBump(other, seeds, bump, programID), programerr.ErrPdaMismatch)
	assert.ErrorIs(t, CheckDerivedAddress(other, addr), programerr.ErrPdaMismatch)

	// no other bump matches the canonical address
	for b := 0; b < 256; b++ {
		if uint8(b) == bump {
			continue
		}
		assert.ErrorIs(t, CheckPDAWithBump(v, seeds, uint8(b), programID), programerr.ErrPdaMismatch, "bump %d", b)
	}

	for i := 0; i < 3; i++ {
		again, err := CheckPDA(v, seeds, programID, nil)
		require.NoError(t, err)
		assert.Equal(t, bump, again)
	}

	meter := cu.NewComputeMeter(10)
	_, err = CheckPDA(v, seeds, programID, &meter)
	assert.ErrorIs(t, err, cu.ErrComputeExceeded)
}

func TestAccountList(t *testing.T) {
	payer := newView(10, nil, true, true)
	state := newView(0, record(1, 1, 48), false, true)
	sys := accounts.NewView(&accounts.Account{Key: SystemProgram, Executable: true}, false, false)

	list := NewAccountList([]*accounts.View{payer, state, sys})
	assert.Equal(t, 3, list.Remaining())

	got, err := list.NextWritableSigner()
	require.NoError(t, err)
	assert.Same(t, payer, got)

	got, err = list.NextWritableAccount(programID, 1, 48)
	require.NoError(t, err)
	assert.Same(t, state, got)

	got, err = list.NextSystemProgram()
	require.NoError(t, err)
	assert.Same(t, sys, got)

	_, err = list.Next()
	assert.ErrorIs(t, err, programerr.ErrNotEnoughAccountKeys)
	assert.Zero(t, list.Remaining())
}

func TestAccountList_Failures(t *testing.T) {
	ro := newView(0, record(1, 1, 48), false, false)
	list := NewAccountList([]*accounts.View{ro, ro, ro, ro, ro, ro})

	_, err := list.NextSigner()
	assert.ErrorIs(t, err, programerr.ErrMissingRequiredSignature)
	_, err = list.NextWritable()
	assert.ErrorIs(t, err, programerr.ErrAccountNotWritable)
	_, err = list.NextWithAddress(SysvarClock)
	assert.ErrorIs(t, err, programerr.ErrIncorrectProgramId)
	_, err = list.NextExecutable()
	assert.ErrorIs(t, err, programerr.ErrAccountNotExecutable)
	got, err := list.NextAccount(programID, 1, 48)
	require.NoError(t, err)
	assert.Same(t, ro, got)
	_, err = list.NextWritableAccount(programID, 1, 48)
	assert.ErrorIs(t, err, programerr.ErrAccountNotWritable)
}
