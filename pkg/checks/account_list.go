package checks

import (
	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// AccountList hands out an instruction's accounts in order, running the
// requested checks on each. Running out of accounts fails with
// ErrNotEnoughAccountKeys.
type AccountList struct {
	accts []*accounts.View
	pos   int
}

func NewAccountList(accts []*accounts.View) *AccountList {
	return &AccountList{accts: accts}
}

func (l *AccountList) Remaining() int {
	return len(l.accts) - l.pos
}

func (l *AccountList) Next() (*accounts.View, error) {
	if l.pos >= len(l.accts) {
		return nil, programerr.ErrNotEnoughAccountKeys
	}
	acct := l.accts[l.pos]
	l.pos++
	return acct, nil
}

// nextChecked consumes the next account and runs checks on it in order.
// The account is consumed even if a check fails.
func (l *AccountList) nextChecked(checks ...func(*accounts.View) error) (*accounts.View, error) {
	acct, err := l.Next()
	if err != nil {
		return nil, err
	}
	for _, check := range checks {
		if err = check(acct); err != nil {
			return nil, err
		}
	}
	return acct, nil
}

func (l *AccountList) NextSigner() (*accounts.View, error) {
	return l.nextChecked(CheckSigner)
}

func (l *AccountList) NextWritable() (*accounts.View, error) {
	return l.nextChecked(CheckWritable)
}

func (l *AccountList) NextWritableSigner() (*accounts.View, error) {
	return l.nextChecked(CheckSigner, CheckWritable)
}

func (l *AccountList) NextSystemProgram() (*accounts.View, error) {
	return l.nextChecked(CheckSystemProgram)
}

// NextWithAddress is for well-known programs and sysvars passed as
// accounts.
func (l *AccountList) NextWithAddress(expected solana.PublicKey) (*accounts.View, error) {
	return l.nextChecked(func(acct *accounts.View) error {
		if acct.Address() != expected {
			return programerr.ErrIncorrectProgramId
		}
		return nil
	})
}

// NextAccount runs CheckAccount on the next account.
func (l *AccountList) NextAccount(programID solana.PublicKey, discriminator uint8, minLen int) (*accounts.View, error) {
	return l.nextChecked(func(acct *accounts.View) error {
		return CheckAccount(acct, programID, discriminator, minLen)
	})
}

func (l *AccountList) NextWritableAccount(programID solana.PublicKey, discriminator uint8, minLen int) (*accounts.View, error) {
	return l.nextChecked(CheckWritable, func(acct *accounts.View) error {
		return CheckAccount(acct, programID, discriminator, minLen)
	})
}

func (l *AccountList) NextExecutable() (*accounts.View, error) {
	return l.nextChecked(CheckExecutable)
}
