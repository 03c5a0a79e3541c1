package checks

import (
	"fmt"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
)

// LifecycleState is the lifecycle of a managed account as observed from its
// lamports and data length.
type LifecycleState uint8

const (
	// Uninitialized: empty data, lamports may be pre-funded.
	Uninitialized LifecycleState = iota
	// Initialized: header written and payload populated.
	Initialized
	// Closed: zero lamports and empty data. Indistinguishable from a
	// never-funded account.
	Closed
)

func (s LifecycleState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("LifecycleState(%d)", uint8(s))
	}
}

func StateOf(acct *accounts.View) LifecycleState {
	switch {
	case acct.DataLen() != 0:
		return Initialized
	case acct.Lamports() == 0:
		return Closed
	default:
		return Uninitialized
	}
}
