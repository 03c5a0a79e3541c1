package checks

import (
	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/safemath"
)

// SafeClose moves all lamports of source to destination and empties the
// source data region, leaving source closed. Nothing is mutated unless every
// step is known to succeed: the checked add, both writable bits, and the
// absence of outstanding borrows on source.
//
// Closing an account into itself is rejected as aliasing.
func SafeClose(source, destination *accounts.View) error {
	if err := CheckAccountsNotEqual(source, destination); err != nil {
		return err
	}
	if err := CheckWritable(source); err != nil {
		return err
	}
	if err := CheckWritable(destination); err != nil {
		return err
	}

	lamports := source.Lamports()
	newDest, err := safemath.CheckedAddU64(destination.Lamports(), lamports)
	if err != nil {
		return err
	}

	if err = source.Truncate(); err != nil {
		return err
	}
	if err = destination.SetLamports(newDest); err != nil {
		return err
	}
	return source.SetLamports(0)
}
