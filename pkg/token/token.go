// Package token reads fields of SPL token accounts in place.
package token

import (
	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/checks"
	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// TokenAccountLen is the size of an SPL token account. Token-2022 accounts
// with extensions are longer and share the same prefix.
const TokenAccountLen = 165

const (
	offsetMint        = 0
	offsetOwner       = 32
	offsetAmount      = 64
	offsetDelegateTag = 72
	offsetDelegate    = 76
	offsetState       = 108
)

type AccountState uint8

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// withData borrows the account data, requires a full token account and
// positions a reader at offset.
func withData(acct *accounts.View, offset int, fn func(r *layout.Reader) error) error {
	data, err := acct.TryBorrow()
	if err != nil {
		return err
	}
	defer data.Release()

	if len(data.Bytes()) < TokenAccountLen {
		return programerr.ErrAccountDataTooSmall
	}
	r := layout.NewReader(data.Bytes())
	if err = r.Skip(offset); err != nil {
		return err
	}
	return fn(&r)
}

func Mint(acct *accounts.View) (mint solana.PublicKey, err error) {
	err = withData(acct, offsetMint, func(r *layout.Reader) (err error) {
		mint, err = r.ReadAddress()
		return
	})
	return
}

func Owner(acct *accounts.View) (owner solana.PublicKey, err error) {
	err = withData(acct, offsetOwner, func(r *layout.Reader) (err error) {
		owner, err = r.ReadAddress()
		return
	})
	return
}

func Amount(acct *accounts.View) (amount uint64, err error) {
	err = withData(acct, offsetAmount, func(r *layout.Reader) (err error) {
		amount, err = r.ReadU64()
		return
	})
	return
}

// Delegate returns the delegate and true, or false when none is set.
func Delegate(acct *accounts.View) (delegate solana.PublicKey, ok bool, err error) {
	err = withData(acct, offsetDelegateTag, func(r *layout.Reader) error {
		tag, err := r.ReadU32()
		if err != nil {
			return err
		}
		if tag == 0 {
			return nil
		}
		ok = true
		delegate, err = r.ReadAddress()
		return err
	})
	return
}

func State(acct *accounts.View) (state AccountState, err error) {
	err = withData(acct, offsetState, func(r *layout.Reader) error {
		b, err := r.ReadU8()
		state = AccountState(b)
		return err
	})
	return
}

// CheckTokenProgram accepts the token and token-2022 programs.
func CheckTokenProgram(acct *accounts.View) error {
	if acct.Address() != checks.TokenProgram && acct.Address() != checks.Token2022Program {
		return programerr.ErrIncorrectProgramId
	}
	return nil
}

// CheckTokenAccount requires an account owned by a token program, holding
// the given mint and owned by the given wallet.
func CheckTokenAccount(acct *accounts.View, mint, owner solana.PublicKey) error {
	if acct.Owner() != checks.TokenProgram && acct.Owner() != checks.Token2022Program {
		return programerr.ErrIncorrectProgramId
	}
	m, err := Mint(acct)
	if err != nil {
		return err
	}
	if err = checks.CheckKeysEq(m, mint); err != nil {
		return err
	}
	o, err := Owner(acct)
	if err != nil {
		return err
	}
	return checks.CheckKeysEq(o, owner)
}
