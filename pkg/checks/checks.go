// Package checks is the account validation suite: independent predicates
// over an account view, each returning one sentinel error on violation,
// plus the closure protocol and an account-list iterator that composes
// them.
//
// Checks never mutate the account and never retry. Composite checks run
// their parts in a fixed order and report the first failure.
package checks

import (
	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

func CheckSigner(acct *accounts.View) error {
	if !acct.IsSigner() {
		return programerr.ErrMissingRequiredSignature
	}
	return nil
}

func CheckWritable(acct *accounts.View) error {
	if !acct.IsWritable() {
		return programerr.ErrAccountNotWritable
	}
	return nil
}

func CheckOwner(acct *accounts.View, programID solana.PublicKey) error {
	if acct.Owner() != programID {
		return programerr.ErrIncorrectProgramId
	}
	return nil
}

func CheckExecutable(acct *accounts.View) error {
	if !acct.Executable() {
		return programerr.ErrAccountNotExecutable
	}
	return nil
}

// CheckUninitialized requires an empty data region. Lamports are not
// considered, so a rent pre-funded account passes.
func CheckUninitialized(acct *accounts.View) error {
	if acct.DataLen() != 0 {
		return programerr.ErrAccountAlreadyInitialized
	}
	return nil
}

// CheckNotFunded requires zero lamports, for accounts that must not exist
// yet at all.
func CheckNotFunded(acct *accounts.View) error {
	if acct.Lamports() != 0 {
		return programerr.ErrAccountAlreadyInitialized
	}
	return nil
}

// CheckClosed requires zero lamports and an empty data region. A later
// instruction uses it to confirm that an earlier SafeClose took effect.
func CheckClosed(acct *accounts.View) error {
	if acct.Lamports() != 0 || acct.DataLen() != 0 {
		return programerr.ErrAccountNotClosed
	}
	return nil
}

func CheckLamportsGTE(acct *accounts.View, min uint64) error {
	if acct.Lamports() < min {
		return programerr.ErrInsufficientFunds
	}
	return nil
}

func CheckRentExempt(acct *accounts.View) error {
	return CheckLamportsGTE(acct, RentExemptMin(acct.DataLen()))
}

func CheckSize(acct *accounts.View, minLen int) error {
	if acct.DataLen() < minLen {
		return programerr.ErrAccountDataTooSmall
	}
	return nil
}

// CheckDiscriminator compares the first data byte. An empty account fails
// with ErrAccountDataTooSmall.
func CheckDiscriminator(acct *accounts.View, discriminator uint8) error {
	data, err := acct.TryBorrow()
	if err != nil {
		return err
	}
	defer data.Release()

	b := data.Bytes()
	if len(b) < 1 {
		return programerr.ErrAccountDataTooSmall
	}
	if b[0] != discriminator {
		return programerr.ErrDiscriminatorMismatch
	}
	return nil
}

// CheckAccount runs owner, size and discriminator checks in that order.
func CheckAccount(acct *accounts.View, programID solana.PublicKey, discriminator uint8, minLen int) error {
	if err := CheckOwner(acct, programID); err != nil {
		return err
	}
	if err := CheckSize(acct, minLen); err != nil {
		return err
	}
	return CheckDiscriminator(acct, discriminator)
}

// CheckVersioned is CheckAccount followed by the full header check, so the
// version floor and the reserved byte are enforced as well.
func CheckVersioned(acct *accounts.View, programID solana.PublicKey, discriminator, minVersion uint8, minLen int) error {
	if err := CheckAccount(acct, programID, discriminator, minLen); err != nil {
		return err
	}
	data, err := acct.TryBorrow()
	if err != nil {
		return err
	}
	defer data.Release()
	_, err = layout.CheckHeader(data.Bytes(), discriminator, minVersion)
	return err
}

func CheckKeysEq(a, b solana.PublicKey) error {
	if a != b {
		return programerr.ErrAddressMismatch
	}
	return nil
}

// CheckAccountsNotEqual rejects two views of the same address. Comparison is
// by address value, so duplicated account metas are caught as well.
func CheckAccountsNotEqual(a, b *accounts.View) error {
	if a.Address() == b.Address() {
		return programerr.ErrAccountsAlias
	}
	return nil
}

// CheckHasOne verifies that an address stored in a record matches the
// account supplied for it.
func CheckHasOne(stored solana.PublicKey, acct *accounts.View) error {
	return CheckKeysEq(stored, acct.Address())
}

func CheckAddress(acct *accounts.View, expected solana.PublicKey) error {
	return CheckKeysEq(acct.Address(), expected)
}

func CheckSystemProgram(acct *accounts.View) error {
	if acct.Address() != SystemProgram {
		return programerr.ErrIncorrectProgramId
	}
	return nil
}

// CheckProgram requires the account to be the given program and executable.
func CheckProgram(acct *accounts.View, programID solana.PublicKey) error {
	if acct.Address() != programID || !acct.Executable() {
		return programerr.ErrIncorrectProgramId
	}
	return nil
}
