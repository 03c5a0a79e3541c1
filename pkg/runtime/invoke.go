package runtime

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
	"k8s.io/klog/v2"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/cu"
	"github.com/QuarksBlueFoot/jiminy/pkg/features"
	"github.com/QuarksBlueFoot/jiminy/pkg/pda"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
	"github.com/QuarksBlueFoot/jiminy/pkg/rent"
	"github.com/QuarksBlueFoot/jiminy/pkg/safemath"
)

// MaxInvokeDepth bounds the instruction stack, top-level instruction
// included.
const MaxInvokeDepth = 5

type txContext struct {
	exec  *Executor
	ws    *workingSet
	meter *cu.ComputeMeter
	stack []solana.PublicKey
	logs  []string
}

// InvokeContext is what a program sees while it executes one instruction.
type InvokeContext struct {
	ProgramID solana.PublicKey
	Accounts  []*accounts.View
	Data      []byte

	tx  *txContext
	pre []preAccount
}

func (ctx *InvokeContext) Clock() Clock {
	return ctx.tx.exec.clock
}

func (ctx *InvokeContext) Rent() rent.Rent {
	return ctx.tx.exec.rent
}

// Meter is the compute meter shared by every instruction of the
// transaction.
func (ctx *InvokeContext) Meter() *cu.ComputeMeter {
	return ctx.tx.meter
}

func (ctx *InvokeContext) Consume(units uint64) error {
	return ctx.tx.meter.Consume(units)
}

// StackHeight is 1 for a top-level instruction.
func (ctx *InvokeContext) StackHeight() int {
	return len(ctx.tx.stack)
}

func (ctx *InvokeContext) Log(format string, args ...any) {
	msg := fmt.Sprintf("Program %s: %s", ctx.tx.exec.ProgramName(ctx.ProgramID), fmt.Sprintf(format, args...))
	ctx.tx.logs = append(ctx.tx.logs, msg)
	klog.V(2).Info(msg)
}

// Invoke runs ix as a cross-program invocation. Accounts keep the
// privileges they have in the caller; none can be raised.
func (ctx *InvokeContext) Invoke(ix Instruction) error {
	return ctx.InvokeSigned(ix)
}

// InvokeSigned is Invoke where each entry of signerSeeds derives, under the
// calling program, an address that signs the callee instruction.
func (ctx *InvokeContext) InvokeSigned(ix Instruction, signerSeeds ...[][]byte) error {
	var signers []solana.PublicKey
	for _, seeds := range signerSeeds {
		if err := ctx.Consume(cu.CUCreateProgramAddressUnits); err != nil {
			return err
		}
		addr, err := pda.CreateProgramAddress(seeds, ctx.ProgramID)
		if err != nil {
			return fmt.Errorf("%w: %s", programerr.ErrPdaMismatch, err)
		}
		signers = append(signers, addr)
	}
	// the caller answers for its own changes before the callee sees them
	if err := verifyAccounts(ctx.ProgramID, ctx.pre); err != nil {
		return err
	}
	if err := ctx.tx.processInstruction(&ix, ctx, signers); err != nil {
		return err
	}
	refreshSnapshot(ctx.pre)
	return nil
}

// CreateAccount funds newAcct from payer, allocates space bytes and assigns
// it to owner through the system program. signerSeeds are needed when
// newAcct is a program-derived address.
func (ctx *InvokeContext) CreateAccount(payer, newAcct *accounts.View, lamports, space uint64, owner solana.PublicKey, signerSeeds ...[][]byte) error {
	if err := ctx.Consume(cu.CUCreateAccountUnits); err != nil {
		return err
	}
	ix := NewCreateAccountInstruction(payer.Address(), newAcct.Address(), lamports, space, owner)
	return ctx.InvokeSigned(*ix, signerSeeds...)
}

// Transfer moves lamports between two system-owned accounts.
func (ctx *InvokeContext) Transfer(from, to *accounts.View, lamports uint64, signerSeeds ...[][]byte) error {
	ix := NewTransferInstruction(from.Address(), to.Address(), lamports)
	return ctx.InvokeSigned(*ix, signerSeeds...)
}

// processInstruction resolves the accounts of ix, runs its program and
// verifies what the program changed. caller is nil for top-level
// instructions.
func (tx *txContext) processInstruction(ix *Instruction, caller *InvokeContext, pdaSigners []solana.PublicKey) error {
	if len(tx.stack) >= MaxInvokeDepth {
		return programerr.ErrCallDepth
	}
	// a program may call itself directly, but not reenter from further up
	if slices.Contains(tx.stack, ix.ProgramID) && tx.stack[len(tx.stack)-1] != ix.ProgramID {
		klog.Errorf("reentrancy into program %s", ix.ProgramID)
		return programerr.ErrReentrancyNotAllowed
	}

	prog, ok := tx.exec.programs[ix.ProgramID]
	if !ok {
		return programerr.ErrUnsupportedProgramId
	}

	if caller == nil {
		if !tx.ws.accts[ix.ProgramID].acct.Executable {
			return programerr.ErrAccountNotExecutable
		}
	} else if tx.exec.features.HasFeature(features.CpiProgramAccountRequired) {
		programAcct := findView(caller.Accounts, ix.ProgramID)
		if programAcct == nil {
			klog.Errorf("unknown program %s", ix.ProgramID)
			return programerr.ErrMissingAccount
		}
		if !programAcct.Executable() {
			klog.Errorf("account %s is not executable", ix.ProgramID)
			return programerr.ErrAccountNotExecutable
		}
	}

	views := make([]*accounts.View, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		wa, ok := tx.ws.accts[meta.Pubkey]
		if caller != nil {
			callerView := findView(caller.Accounts, meta.Pubkey)
			if callerView == nil {
				klog.Errorf("instruction references unknown account %s", meta.Pubkey)
				return programerr.ErrMissingAccount
			}
			// read-only in the caller cannot become writable in the callee
			if meta.IsWritable && !callerView.IsWritable() {
				return programerr.ErrPrivilegeEscalation
			}
			// a callee signer is a caller signer or signed for by the caller
			if meta.IsSigner && !callerView.IsSigner() && !slices.Contains(pdaSigners, meta.Pubkey) {
				return programerr.ErrPrivilegeEscalation
			}
		} else if !ok {
			return programerr.ErrMissingAccount
		}
		views[i] = accounts.NewView(wa.acct, meta.IsSigner, meta.IsWritable)
	}

	if err := tx.meter.Consume(cu.CUInstructionBaseCost); err != nil {
		return err
	}

	tx.stack = append(tx.stack, ix.ProgramID)
	defer func() { tx.stack = tx.stack[:len(tx.stack)-1] }()

	ctx := &InvokeContext{
		ProgramID: ix.ProgramID,
		Accounts:  views,
		Data:      ix.Data,
		tx:        tx,
		pre:       snapshotAccounts(views),
	}
	if err := prog.prog.Execute(ctx); err != nil {
		return err
	}
	return verifyAccounts(ix.ProgramID, ctx.pre)
}

func findView(views []*accounts.View, key solana.PublicKey) *accounts.View {
	var found *accounts.View
	for _, v := range views {
		if v.Address() != key {
			continue
		}
		if found == nil {
			found = v
		}
		// duplicated metas grant the union of their privileges
		if v.IsWritable() && !found.IsWritable() || v.IsSigner() && !found.IsSigner() {
			found = accounts.NewView(v.Account(), found.IsSigner() || v.IsSigner(), found.IsWritable() || v.IsWritable())
		}
	}
	return found
}

type preAccount struct {
	view     *accounts.View
	owner    solana.PublicKey
	lamports uint64
	data     []byte
}

func snapshotAccounts(views []*accounts.View) []preAccount {
	var pre []preAccount
	for _, v := range views {
		dup := false
		for _, p := range pre {
			if p.view.SameAccount(v) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		pre = append(pre, preAccount{
			view:     v,
			owner:    v.Owner(),
			lamports: v.Lamports(),
			data:     bytes.Clone(v.Account().Data),
		})
	}
	return pre
}

func refreshSnapshot(pre []preAccount) {
	for i := range pre {
		acct := pre[i].view.Account()
		pre[i].owner = acct.Owner
		pre[i].lamports = acct.Lamports
		pre[i].data = bytes.Clone(acct.Data)
	}
}

// verifyAccounts enforces account ownership over what programID changed:
// only the owner may debit lamports or modify data, the owner may only be
// reassigned by the current owner while the data is zeroed, and lamports
// are neither created nor destroyed.
func verifyAccounts(programID solana.PublicKey, pre []preAccount) error {
	var preSum, postSum uint64
	for _, p := range pre {
		acct := p.view.Account()
		var err error
		if preSum, err = safemath.CheckedAddU64(preSum, p.lamports); err != nil {
			return err
		}
		if postSum, err = safemath.CheckedAddU64(postSum, acct.Lamports); err != nil {
			return err
		}

		if acct.Owner != p.owner {
			if p.owner != programID || !isZeroed(acct.Data) {
				klog.Errorf("program %s reassigned %s it does not own", programID, acct.Key)
				return programerr.ErrModifiedProgramId
			}
		}
		if acct.Lamports < p.lamports && p.owner != programID {
			klog.Errorf("program %s debited %s it does not own", programID, acct.Key)
			return programerr.ErrExternalLamportSpend
		}
		if !bytes.Equal(acct.Data, p.data) && p.owner != programID {
			klog.Errorf("program %s modified data of %s it does not own", programID, acct.Key)
			return programerr.ErrExternalDataModified
		}
	}
	if preSum != postSum {
		return programerr.ErrUnbalancedInstruction
	}
	return nil
}

func isZeroed(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
