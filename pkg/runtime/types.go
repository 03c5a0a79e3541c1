// Package runtime executes transactions of instructions against an account
// store. It supplies the account views, ordering and all-or-nothing commit
// that the checks and layout packages assume of their environment.
package runtime

import (
	"github.com/gagliardetto/solana-go"
)

type AccountMeta struct {
	Pubkey     solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

func NewAccountMeta(pubkey solana.PublicKey, isWritable, isSigner bool) AccountMeta {
	return AccountMeta{Pubkey: pubkey, IsSigner: isSigner, IsWritable: isWritable}
}

type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// Transaction is an ordered list of instructions that commits as a unit.
type Transaction struct {
	Instructions []Instruction
}

// Program is an on-chain program implemented in Go.
type Program interface {
	Execute(ctx *InvokeContext) error
}

type ProgramFunc func(ctx *InvokeContext) error

func (f ProgramFunc) Execute(ctx *InvokeContext) error {
	return f(ctx)
}

// Result describes one executed transaction.
type Result struct {
	Err               error
	FailedInstruction int
	ComputeUnitsUsed  uint64
	Logs              []string
}

func (r *Result) Success() bool {
	return r.Err == nil
}
