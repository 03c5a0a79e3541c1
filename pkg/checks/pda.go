package checks

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/cu"
	"github.com/QuarksBlueFoot/jiminy/pkg/pda"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// CheckPDA searches for the canonical bump of seeds under programID and
// requires the account address to match. It returns the bump so callers can
// store it and use CheckPDAWithBump afterwards. The search costs up to 256
// derivations; meter may be nil.
func CheckPDA(acct *accounts.View, seeds [][]byte, programID solana.PublicKey, meter *cu.ComputeMeter) (uint8, error) {
	addr, bump, err := pda.FindProgramAddressMetered(seeds, programID, meter)
	if errors.Is(err, cu.ErrComputeExceeded) {
		return 0, err
	}
	if err != nil || addr != acct.Address() {
		return 0, programerr.ErrPdaMismatch
	}
	return bump, nil
}

// CheckPDAWithBump performs a single derivation with a known bump.
func CheckPDAWithBump(acct *accounts.View, seeds [][]byte, bump uint8, programID solana.PublicKey) error {
	addr, err := pda.DeriveWithBump(seeds, bump, programID)
	if err != nil || addr != acct.Address() {
		return programerr.ErrPdaMismatch
	}
	return nil
}

// CheckDerivedAddress compares the account address with an already derived
// address.
func CheckDerivedAddress(acct *accounts.View, expected solana.PublicKey) error {
	if acct.Address() != expected {
		return programerr.ErrPdaMismatch
	}
	return nil
}
