package vault

import (
	bin "github.com/gagliardetto/binary"

	"github.com/QuarksBlueFoot/jiminy/pkg/checks"
	"github.com/QuarksBlueFoot/jiminy/pkg/cu"
	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
	"github.com/QuarksBlueFoot/jiminy/pkg/runtime"
	"github.com/QuarksBlueFoot/jiminy/pkg/safemath"
)

// Program is the vault program, ready to register with an executor.
var Program = runtime.ProgramFunc(Process)

func Process(ctx *runtime.InvokeContext) error {
	decoder := bin.NewBinDecoder(ctx.Data)
	tag, err := decoder.ReadUint8()
	if err != nil {
		return programerr.ErrInvalidInstructionData
	}

	switch tag {
	case InstrTypeInitVault:
		var instr InstrInitVault
		if err = instr.UnmarshalWithDecoder(decoder); err != nil {
			return programerr.ErrInvalidInstructionData
		}
		return processInitVault(ctx, instr)

	case InstrTypeDeposit:
		var instr InstrDeposit
		if err = instr.UnmarshalWithDecoder(decoder); err != nil {
			return programerr.ErrInvalidInstructionData
		}
		return processDeposit(ctx, instr)

	case InstrTypeWithdraw:
		var instr InstrWithdraw
		if err = instr.UnmarshalWithDecoder(decoder); err != nil {
			return programerr.ErrInvalidInstructionData
		}
		return processWithdraw(ctx, instr)

	case InstrTypeCloseVault:
		return processCloseVault(ctx)
	}

	return programerr.ErrInvalidInstructionData
}

// accounts: payer [signer, writable], vault [signer, writable], system program
func processInitVault(ctx *runtime.InvokeContext, instr InstrInitVault) error {
	accs := checks.NewAccountList(ctx.Accounts)
	payer, err := accs.NextWritableSigner()
	if err != nil {
		return err
	}
	vault, err := accs.NextWritable()
	if err != nil {
		return err
	}
	if _, err = accs.NextSystemProgram(); err != nil {
		return err
	}
	if err = checks.CheckUninitialized(vault); err != nil {
		return err
	}

	lamports := ctx.Rent().MinimumBalance(AccountLen)
	if err = ctx.CreateAccount(payer, vault, lamports, AccountLen, ctx.ProgramID); err != nil {
		return err
	}

	data, err := vault.TryBorrowMut()
	if err != nil {
		return err
	}
	defer data.Release()
	layout.ZeroInit(data.Bytes())
	if err = (State{Authority: instr.Authority}).Encode(data.Bytes()); err != nil {
		return err
	}
	ctx.Log("initialized vault %s", vault.Address())
	return nil
}

// accounts: depositor [signer, writable], vault [writable], system program
func processDeposit(ctx *runtime.InvokeContext, instr InstrDeposit) error {
	accs := checks.NewAccountList(ctx.Accounts)
	depositor, err := accs.NextWritableSigner()
	if err != nil {
		return err
	}
	vault, err := accs.NextWritableAccount(ctx.ProgramID, Discriminator, AccountLen)
	if err != nil {
		return err
	}
	if _, err = accs.NextSystemProgram(); err != nil {
		return err
	}
	if instr.Amount == 0 {
		return programerr.ErrInvalidArgument
	}

	state, err := load(vault)
	if err != nil {
		return err
	}
	if state.Balance, err = safemath.CheckedAddU64(state.Balance, instr.Amount); err != nil {
		return err
	}

	if err = ctx.Transfer(depositor, vault, instr.Amount); err != nil {
		return err
	}
	if err = store(vault, state); err != nil {
		return err
	}
	ctx.Log("deposit %d, balance %d", instr.Amount, state.Balance)
	return nil
}

// accounts: authority [signer], vault [writable], recipient [writable]
func processWithdraw(ctx *runtime.InvokeContext, instr InstrWithdraw) error {
	accs := checks.NewAccountList(ctx.Accounts)
	authority, err := accs.NextSigner()
	if err != nil {
		return err
	}
	vault, err := accs.NextWritableAccount(ctx.ProgramID, Discriminator, AccountLen)
	if err != nil {
		return err
	}
	recipient, err := accs.NextWritable()
	if err != nil {
		return err
	}
	if err = checks.CheckAccountsNotEqual(vault, recipient); err != nil {
		return err
	}
	if instr.Amount == 0 {
		return programerr.ErrInvalidArgument
	}

	state, err := load(vault)
	if err != nil {
		return err
	}
	if err = checks.CheckHasOne(state.Authority, authority); err != nil {
		return err
	}
	// the stored balance bounds the withdrawal, not the account's lamports
	if state.Balance, err = safemath.CheckedSubU64(state.Balance, instr.Amount); err != nil {
		return err
	}
	if err = checks.CheckLamportsGTE(vault, instr.Amount); err != nil {
		return err
	}

	newVault, err := safemath.CheckedSubU64(vault.Lamports(), instr.Amount)
	if err != nil {
		return err
	}
	newRecipient, err := safemath.CheckedAddU64(recipient.Lamports(), instr.Amount)
	if err != nil {
		return err
	}
	if err = store(vault, state); err != nil {
		return err
	}
	if err = vault.SetLamports(newVault); err != nil {
		return err
	}
	if err = recipient.SetLamports(newRecipient); err != nil {
		return err
	}
	ctx.Log("withdraw %d, balance %d", instr.Amount, state.Balance)
	return nil
}

// accounts: authority [signer], vault [writable], destination [writable]
func processCloseVault(ctx *runtime.InvokeContext) error {
	accs := checks.NewAccountList(ctx.Accounts)
	authority, err := accs.NextSigner()
	if err != nil {
		return err
	}
	vault, err := accs.NextWritableAccount(ctx.ProgramID, Discriminator, AccountLen)
	if err != nil {
		return err
	}
	destination, err := accs.NextWritable()
	if err != nil {
		return err
	}
	if err = checks.CheckAccountsNotEqual(vault, destination); err != nil {
		return err
	}

	state, err := load(vault)
	if err != nil {
		return err
	}
	if err = checks.CheckHasOne(state.Authority, authority); err != nil {
		return err
	}
	if err = ctx.Consume(cu.CUCloseAccountUnits); err != nil {
		return err
	}
	return checks.SafeClose(vault, destination)
}
