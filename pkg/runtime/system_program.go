package runtime

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"k8s.io/klog/v2"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
	"github.com/QuarksBlueFoot/jiminy/pkg/safemath"
)

const SystemProgMaxPermittedDataLen = 10 * 1024 * 1024

const CUSystemProgramDefaultComputeUnits = 150

const (
	SystemProgramInstrTypeCreateAccount = iota
	SystemProgramInstrTypeAssign
	SystemProgramInstrTypeTransfer
)

// SystemProgramInstrTypeAllocate keeps the native system program's
// numbering; the seed and nonce variants in between are not supported.
const SystemProgramInstrTypeAllocate = 8

// Instruction payloads. MarshalWithEncoder writes the leading u32 tag;
// UnmarshalWithDecoder expects the dispatcher to have consumed it.
type SystemInstrCreateAccount struct {
	Lamports uint64
	Space    uint64
	Owner    solana.PublicKey
}

type SystemInstrAssign struct {
	Owner solana.PublicKey
}

type SystemInstrTransfer struct {
	Lamports uint64
}

type SystemInstrAllocate struct {
	Space uint64
}

func (instr *SystemInstrCreateAccount) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	instr.Space, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(instr.Owner[:], pk)
	return nil
}

func (instr *SystemInstrCreateAccount) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint32(SystemProgramInstrTypeCreateAccount, bin.LE)
	if err != nil {
		return err
	}

	err = encoder.WriteUint64(instr.Lamports, bin.LE)
	if err != nil {
		return err
	}

	err = encoder.WriteUint64(instr.Space, bin.LE)
	if err != nil {
		return err
	}

	return encoder.WriteBytes(instr.Owner[:], false)
}

func (instr *SystemInstrAssign) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(instr.Owner[:], pk)
	return nil
}

func (instr *SystemInstrAssign) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint32(SystemProgramInstrTypeAssign, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteBytes(instr.Owner[:], false)
}

func (instr *SystemInstrTransfer) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *SystemInstrTransfer) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint32(SystemProgramInstrTypeTransfer, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(instr.Lamports, bin.LE)
}

func (instr *SystemInstrAllocate) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.Space, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *SystemInstrAllocate) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint32(SystemProgramInstrTypeAllocate, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(instr.Space, bin.LE)
}

type systemInstr interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
}

func newSystemInstruction(instr systemInstr, accountMetas ...AccountMeta) *Instruction {
	buf := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buf)

	err := instr.MarshalWithEncoder(encoder)
	if err != nil {
		panic("shouldn't fail")
	}

	return &Instruction{ProgramID: solana.SystemProgramID, Accounts: accountMetas, Data: buf.Bytes()}
}

func NewCreateAccountInstruction(from, to solana.PublicKey, lamports, space uint64, owner solana.PublicKey) *Instruction {
	return newSystemInstruction(&SystemInstrCreateAccount{Lamports: lamports, Space: space, Owner: owner},
		AccountMeta{Pubkey: from, IsSigner: true, IsWritable: true},
		AccountMeta{Pubkey: to, IsSigner: true, IsWritable: true})
}

func NewTransferInstruction(from, to solana.PublicKey, lamports uint64) *Instruction {
	return newSystemInstruction(&SystemInstrTransfer{Lamports: lamports},
		AccountMeta{Pubkey: from, IsSigner: true, IsWritable: true},
		AccountMeta{Pubkey: to, IsSigner: false, IsWritable: true})
}

func NewAssignInstruction(pubkey, owner solana.PublicKey) *Instruction {
	return newSystemInstruction(&SystemInstrAssign{Owner: owner},
		AccountMeta{Pubkey: pubkey, IsSigner: true, IsWritable: true})
}

func NewAllocateInstruction(pubkey solana.PublicKey, space uint64) *Instruction {
	return newSystemInstruction(&SystemInstrAllocate{Space: space},
		AccountMeta{Pubkey: pubkey, IsSigner: true, IsWritable: true})
}

// SystemProgramExecute is the native system program, reduced to account
// creation, assignment, allocation and transfers.
func SystemProgramExecute(ctx *InvokeContext) error {
	err := ctx.Consume(CUSystemProgramDefaultComputeUnits)
	if err != nil {
		return err
	}

	decoder := bin.NewBinDecoder(ctx.Data)

	instructionType, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return programerr.ErrInvalidInstructionData
	}

	switch instructionType {
	case SystemProgramInstrTypeCreateAccount:
		var createAccount SystemInstrCreateAccount
		if err = createAccount.UnmarshalWithDecoder(decoder); err != nil {
			return programerr.ErrInvalidInstructionData
		}
		if len(ctx.Accounts) < 2 {
			return programerr.ErrNotEnoughAccountKeys
		}
		return systemProgramCreateAccount(ctx.Accounts[0], ctx.Accounts[1], createAccount.Lamports, createAccount.Space, createAccount.Owner)

	case SystemProgramInstrTypeAssign:
		var assign SystemInstrAssign
		if err = assign.UnmarshalWithDecoder(decoder); err != nil {
			return programerr.ErrInvalidInstructionData
		}
		if len(ctx.Accounts) < 1 {
			return programerr.ErrNotEnoughAccountKeys
		}
		return systemProgramAssign(ctx.Accounts[0], assign.Owner)

	case SystemProgramInstrTypeTransfer:
		var transfer SystemInstrTransfer
		if err = transfer.UnmarshalWithDecoder(decoder); err != nil {
			return programerr.ErrInvalidInstructionData
		}
		if len(ctx.Accounts) < 2 {
			return programerr.ErrNotEnoughAccountKeys
		}
		return systemProgramTransfer(ctx.Accounts[0], ctx.Accounts[1], transfer.Lamports)

	case SystemProgramInstrTypeAllocate:
		var allocate SystemInstrAllocate
		if err = allocate.UnmarshalWithDecoder(decoder); err != nil {
			return programerr.ErrInvalidInstructionData
		}
		if len(ctx.Accounts) < 1 {
			return programerr.ErrNotEnoughAccountKeys
		}
		return systemProgramAllocate(ctx.Accounts[0], allocate.Space)
	}

	return programerr.ErrInvalidInstructionData
}

func systemProgramCreateAccount(from, to *accounts.View, lamports, space uint64, owner solana.PublicKey) error {
	if to.Lamports() > 0 {
		klog.Errorf("CreateAccount: account %s already in use (non-zero lamports)", to.Address())
		return programerr.ErrAccountAlreadyInUse
	}

	if err := systemProgramAllocate(to, space); err != nil {
		return err
	}
	if err := systemProgramAssign(to, owner); err != nil {
		return err
	}
	return systemProgramTransfer(from, to, lamports)
}

func systemProgramAllocate(acct *accounts.View, space uint64) error {
	if !acct.IsSigner() {
		klog.Errorf("Allocate: 'to' account %s must sign", acct.Address())
		return programerr.ErrMissingRequiredSignature
	}

	if acct.DataLen() != 0 || acct.Owner() != solana.SystemProgramID {
		klog.Errorf("Allocate: account %s already in use", acct.Address())
		return programerr.ErrAccountAlreadyInUse
	}

	if space > SystemProgMaxPermittedDataLen {
		klog.Errorf("Allocate: requested %d, max allowed %d", space, SystemProgMaxPermittedDataLen)
		return programerr.ErrInvalidArgument
	}

	return acct.Resize(int(space))
}

func systemProgramAssign(acct *accounts.View, owner solana.PublicKey) error {
	if acct.Owner() == owner {
		return nil
	}

	if !acct.IsSigner() {
		klog.Errorf("Assign: account %s must sign", acct.Address())
		return programerr.ErrMissingRequiredSignature
	}

	return acct.Assign(owner)
}

func systemProgramTransfer(from, to *accounts.View, lamports uint64) error {
	if !from.IsSigner() {
		return programerr.ErrMissingRequiredSignature
	}

	if from.DataLen() != 0 {
		klog.Errorf("Transfer: 'from' must not carry data")
		return programerr.ErrInvalidArgument
	}

	if lamports > from.Lamports() {
		klog.Errorf("Transfer: insufficient lamports %d, need %d", from.Lamports(), lamports)
		return programerr.ErrInsufficientFunds
	}

	newTo, err := safemath.CheckedAddU64(to.Lamports(), lamports)
	if err != nil {
		return err
	}
	if err = from.SetLamports(from.Lamports() - lamports); err != nil {
		return err
	}
	if from.SameAccount(to) {
		newTo = from.Lamports() + lamports
	}
	return to.SetLamports(newTo)
}
