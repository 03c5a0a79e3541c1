package vault

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/runtime"
)

const (
	InstrTypeInitVault = iota
	InstrTypeDeposit
	InstrTypeWithdraw
	InstrTypeCloseVault
)

// Instruction payloads follow a one-byte tag. MarshalWithEncoder writes the
// tag; UnmarshalWithDecoder expects it consumed.
type InstrInitVault struct {
	Authority solana.PublicKey
}

type InstrDeposit struct {
	Amount uint64
}

type InstrWithdraw struct {
	Amount uint64
}

type InstrCloseVault struct{}

func (instr *InstrInitVault) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(instr.Authority[:], pk)
	return nil
}

func (instr *InstrInitVault) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(InstrTypeInitVault); err != nil {
		return err
	}
	return encoder.WriteBytes(instr.Authority[:], false)
}

func (instr *InstrDeposit) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.Amount, err = decoder.ReadUint64(bin.LE)
	return
}

func (instr *InstrDeposit) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(InstrTypeDeposit); err != nil {
		return err
	}
	return encoder.WriteUint64(instr.Amount, bin.LE)
}

func (instr *InstrWithdraw) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.Amount, err = decoder.ReadUint64(bin.LE)
	return
}

func (instr *InstrWithdraw) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(InstrTypeWithdraw); err != nil {
		return err
	}
	return encoder.WriteUint64(instr.Amount, bin.LE)
}

func (instr *InstrCloseVault) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint8(InstrTypeCloseVault)
}

type marshaler interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
}

func newInstruction(instr marshaler, accountMetas ...runtime.AccountMeta) *runtime.Instruction {
	buf := new(bytes.Buffer)
	if err := instr.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		panic("shouldn't fail")
	}
	return &runtime.Instruction{ProgramID: ProgramID, Accounts: accountMetas, Data: buf.Bytes()}
}

// NewInitVaultInstruction creates vault, funded by payer. The vault address
// signs for its own creation.
func NewInitVaultInstruction(payer, vault, authority solana.PublicKey) *runtime.Instruction {
	return newInstruction(&InstrInitVault{Authority: authority},
		runtime.NewAccountMeta(payer, true, true),
		runtime.NewAccountMeta(vault, true, true),
		runtime.NewAccountMeta(solana.SystemProgramID, false, false))
}

func NewDepositInstruction(depositor, vault solana.PublicKey, amount uint64) *runtime.Instruction {
	return newInstruction(&InstrDeposit{Amount: amount},
		runtime.NewAccountMeta(depositor, true, true),
		runtime.NewAccountMeta(vault, true, false),
		runtime.NewAccountMeta(solana.SystemProgramID, false, false))
}

func NewWithdrawInstruction(authority, vault, recipient solana.PublicKey, amount uint64) *runtime.Instruction {
	return newInstruction(&InstrWithdraw{Amount: amount},
		runtime.NewAccountMeta(authority, false, true),
		runtime.NewAccountMeta(vault, true, false),
		runtime.NewAccountMeta(recipient, true, false))
}

func NewCloseVaultInstruction(authority, vault, destination solana.PublicKey) *runtime.Instruction {
	return newInstruction(&InstrCloseVault{},
		runtime.NewAccountMeta(authority, false, true),
		runtime.NewAccountMeta(vault, true, false),
		runtime.NewAccountMeta(destination, true, false))
}
