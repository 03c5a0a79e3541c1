package escrow

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/runtime"
)

const (
	InstrTypeCreateEscrow = iota
	InstrTypeAcceptEscrow
	InstrTypeCancelEscrow
)

// InstrCreateEscrow follows the one-byte tag. A zero TimeoutTs never
// expires.
type InstrCreateEscrow struct {
	Amount    uint64
	Recipient solana.PublicKey
	TimeoutTs int64
}

func (instr *InstrCreateEscrow) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	instr.Amount, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(instr.Recipient[:], pk)

	instr.TimeoutTs, err = decoder.ReadInt64(bin.LE)
	return err
}

func (instr *InstrCreateEscrow) MarshalWithEncoder(encoder *bin.Encoder) error {
	var err error

	if err = encoder.WriteUint8(InstrTypeCreateEscrow); err != nil {
		return err
	}
	if err = encoder.WriteUint64(instr.Amount, bin.LE); err != nil {
		return err
	}
	if err = encoder.WriteBytes(instr.Recipient[:], false); err != nil {
		return err
	}
	return encoder.WriteInt64(instr.TimeoutTs, bin.LE)
}

func newInstruction(data []byte, accountMetas ...runtime.AccountMeta) *runtime.Instruction {
	return &runtime.Instruction{ProgramID: ProgramID, Accounts: accountMetas, Data: data}
}

// NewCreateEscrowInstruction locks amount lamports from creator in escrow,
// which signs for its own creation.
func NewCreateEscrowInstruction(creator, escrow, recipient solana.PublicKey, amount uint64, timeoutTs int64) *runtime.Instruction {
	buf := new(bytes.Buffer)
	instr := InstrCreateEscrow{Amount: amount, Recipient: recipient, TimeoutTs: timeoutTs}
	if err := instr.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		panic("shouldn't fail")
	}
	return newInstruction(buf.Bytes(),
		runtime.NewAccountMeta(creator, true, true),
		runtime.NewAccountMeta(escrow, true, true),
		runtime.NewAccountMeta(solana.SystemProgramID, false, false))
}

// NewAcceptEscrowInstruction pays the escrowed amount to destination, which
// may be the recipient itself.
func NewAcceptEscrowInstruction(recipient, escrow, destination solana.PublicKey) *runtime.Instruction {
	metas := []runtime.AccountMeta{
		runtime.NewAccountMeta(recipient, destination == recipient, true),
		runtime.NewAccountMeta(escrow, true, false),
		runtime.NewAccountMeta(destination, true, false),
	}
	return newInstruction([]byte{InstrTypeAcceptEscrow}, metas...)
}

// NewCancelEscrowInstruction closes escrow into destination. linked, when
// given, must be a closed account.
func NewCancelEscrowInstruction(creator, escrow, destination solana.PublicKey, linked ...solana.PublicKey) *runtime.Instruction {
	metas := []runtime.AccountMeta{
		runtime.NewAccountMeta(creator, destination == creator, true),
		runtime.NewAccountMeta(escrow, true, false),
		runtime.NewAccountMeta(destination, true, false),
	}
	for _, l := range linked {
		metas = append(metas, runtime.NewAccountMeta(l, false, false))
	}
	return newInstruction([]byte{InstrTypeCancelEscrow}, metas...)
}
