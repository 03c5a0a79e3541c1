package token

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

func tokenAccount(t *testing.T, mint, owner solana.PublicKey, amount uint64, delegate *solana.PublicKey) []byte {
	data := make([]byte, TokenAccountLen)
	w := layout.NewWriter(data)
	require.NoError(t, w.WriteAddress(mint))
	require.NoError(t, w.WriteAddress(owner))
	require.NoError(t, w.WriteU64(amount))
	if delegate != nil {
		require.NoError(t, w.WriteU32(1))
		require.NoError(t, w.WriteAddress(*delegate))
	} else {
		require.NoError(t, w.Skip(4+32))
	}
	require.NoError(t, w.WriteU8(uint8(AccountStateInitialized)))
	return data
}

func TestTokenAccountReaders(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	delegate := solana.NewWallet().PublicKey()

	acct := accounts.NewView(&accounts.Account{
		Owner: solana.TokenProgramID,
		Data:  tokenAccount(t, mint, owner, 5_000_000, &delegate),
	}, false, false)

	got, err := Mint(acct)
	require.NoError(t, err)
	assert.Equal(t, mint, got)

	got, err = Owner(acct)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	amount, err := Amount(acct)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), amount)

	d, ok, err := Delegate(acct)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, delegate, d)

	state, err := State(acct)
	require.NoError(t, err)
	assert.Equal(t, AccountStateInitialized, state)

	assert.NoError(t, CheckTokenAccount(acct, mint, owner))
	assert.ErrorIs(t, CheckTokenAccount(acct, owner, owner), programerr.ErrAddressMismatch)
	assert.False(t, acct.Borrowed())
}

func TestTokenAccount_NoDelegate(t *testing.T) {
	acct := accounts.NewView(&accounts.Account{
		Owner: solana.Token2022ProgramID,
		Data:  tokenAccount(t, solana.PublicKey{1}, solana.PublicKey{2}, 0, nil),
	}, false, false)
	_, ok, err := Delegate(acct)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, CheckTokenAccount(acct, solana.PublicKey{1}, solana.PublicKey{2}))
}

func TestTokenAccount_TooSmall(t *testing.T) {
	acct := accounts.NewView(&accounts.Account{Data: make([]byte, TokenAccountLen-1)}, false, false)
	_, err := Amount(acct)
	assert.ErrorIs(t, err, programerr.ErrAccountDataTooSmall)
	_, _, err = Delegate(acct)
	assert.ErrorIs(t, err, programerr.ErrAccountDataTooSmall)

	foreign := accounts.NewView(&accounts.Account{Owner: solana.SystemProgramID, Data: make([]byte, TokenAccountLen)}, false, false)
	assert.ErrorIs(t, CheckTokenAccount(foreign, solana.PublicKey{}, solana.PublicKey{}), programerr.ErrIncorrectProgramId)
}

func TestCheckTokenProgram(t *testing.T) {
	for _, id := range []solana.PublicKey{solana.TokenProgramID, solana.Token2022ProgramID} {
		assert.NoError(t, CheckTokenProgram(accounts.NewView(&accounts.Account{Key: id}, false, false)))
	}
	err := CheckTokenProgram(accounts.NewView(&accounts.Account{Key: solana.SystemProgramID}, false, false))
	assert.ErrorIs(t, err, programerr.ErrIncorrectProgramId)
}
