package escrow

import (
	bin "github.com/gagliardetto/binary"

	"github.com/QuarksBlueFoot/jiminy/pkg/checks"
	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
	"github.com/QuarksBlueFoot/jiminy/pkg/runtime"
	"github.com/QuarksBlueFoot/jiminy/pkg/safemath"
)

var Program = runtime.ProgramFunc(Process)

func Process(ctx *runtime.InvokeContext) error {
	decoder := bin.NewBinDecoder(ctx.Data)
	tag, err := decoder.ReadUint8()
	if err != nil {
		return programerr.ErrInvalidInstructionData
	}

	switch tag {
	case InstrTypeCreateEscrow:
		var instr InstrCreateEscrow
		if err = instr.UnmarshalWithDecoder(decoder); err != nil {
			return programerr.ErrInvalidInstructionData
		}
		return processCreate(ctx, instr)
	case InstrTypeAcceptEscrow:
		return processAccept(ctx)
	case InstrTypeCancelEscrow:
		return processCancel(ctx)
	}
	return programerr.ErrInvalidInstructionData
}

// accounts: creator [signer, writable], escrow [signer, writable], system program
func processCreate(ctx *runtime.InvokeContext, instr InstrCreateEscrow) error {
	accs := checks.NewAccountList(ctx.Accounts)
	creator, err := accs.NextWritableSigner()
	if err != nil {
		return err
	}
	escrow, err := accs.NextWritable()
	if err != nil {
		return err
	}
	if _, err = accs.NextSystemProgram(); err != nil {
		return err
	}
	if err = checks.CheckUninitialized(escrow); err != nil {
		return err
	}
	if instr.Amount == 0 || instr.TimeoutTs < 0 {
		return programerr.ErrInvalidArgument
	}

	lamports, err := safemath.CheckedAddU64(ctx.Rent().MinimumBalance(AccountLen), instr.Amount)
	if err != nil {
		return err
	}
	if err = ctx.CreateAccount(creator, escrow, lamports, AccountLen, ctx.ProgramID); err != nil {
		return err
	}

	data, err := escrow.TryBorrowMut()
	if err != nil {
		return err
	}
	defer data.Release()
	layout.ZeroInit(data.Bytes())
	e := Escrow{
		State:     StateOpen,
		Amount:    instr.Amount,
		Creator:   creator.Address(),
		Recipient: instr.Recipient,
		TimeoutTs: instr.TimeoutTs,
	}
	return e.Encode(data.Bytes())
}

// accounts: recipient [signer], escrow [writable], destination [writable]
func processAccept(ctx *runtime.InvokeContext) error {
	accs := checks.NewAccountList(ctx.Accounts)
	recipient, err := accs.NextSigner()
	if err != nil {
		return err
	}
	escrow, err := accs.NextWritableAccount(ctx.ProgramID, Discriminator, AccountLen)
	if err != nil {
		return err
	}
	destination, err := accs.NextWritable()
	if err != nil {
		return err
	}
	if err = checks.CheckAccountsNotEqual(escrow, destination); err != nil {
		return err
	}

	e, err := load(escrow)
	if err != nil {
		return err
	}
	if e.State != StateOpen {
		return ErrEscrowAccepted
	}
	if err = checks.CheckHasOne(e.Recipient, recipient); err != nil {
		return err
	}
	if e.Expired(ctx.Clock().UnixTimestamp) {
		return ErrEscrowExpired
	}

	newEscrow, err := safemath.CheckedSubU64(escrow.Lamports(), e.Amount)
	if err != nil {
		return err
	}
	newDest, err := safemath.CheckedAddU64(destination.Lamports(), e.Amount)
	if err != nil {
		return err
	}
	if err = setState(escrow, StateAccepted); err != nil {
		return err
	}
	if err = escrow.SetLamports(newEscrow); err != nil {
		return err
	}
	if err = destination.SetLamports(newDest); err != nil {
		return err
	}
	ctx.Log("escrow %s accepted, %d lamports paid", escrow.Address(), e.Amount)
	return nil
}

// accounts: creator [signer], escrow [writable], destination [writable],
// optionally a linked account that must be closed
func processCancel(ctx *runtime.InvokeContext) error {
	accs := checks.NewAccountList(ctx.Accounts)
	creator, err := accs.NextSigner()
	if err != nil {
		return err
	}
	escrow, err := accs.NextWritableAccount(ctx.ProgramID, Discriminator, AccountLen)
	if err != nil {
		return err
	}
	destination, err := accs.NextWritable()
	if err != nil {
		return err
	}
	if err = checks.CheckAccountsNotEqual(escrow, destination); err != nil {
		return err
	}

	e, err := load(escrow)
	if err != nil {
		return err
	}
	if e.State != StateOpen {
		return ErrEscrowAccepted
	}
	if err = checks.CheckHasOne(e.Creator, creator); err != nil {
		return err
	}

	switch {
	case accs.Remaining() > 0:
		linked, err := accs.Next()
		if err != nil {
			return err
		}
		if err = checks.CheckClosed(linked); err != nil {
			return err
		}
	case e.HasTimeout() && !e.Expired(ctx.Clock().UnixTimestamp):
		return ErrEscrowNotExpired
	}

	if err = checks.SafeClose(escrow, destination); err != nil {
		return err
	}
	ctx.Log("escrow %s cancelled", escrow.Address())
	return nil
}
