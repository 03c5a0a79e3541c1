// Package escrow locks lamports for a recipient until they accept, or until
// the creator cancels after a timeout or once a linked account is closed.
package escrow

import (
	"github.com/gagliardetto/solana-go"
	"github.com/minio/sha256-simd"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

var ProgramID = solana.PublicKey(sha256.Sum256([]byte("jiminy:escrow")))

const (
	Discriminator = 2
	Version       = 1

	//	[0..8]   header, flags bit 0 = accepted
	//	[8..16]  amount     u64
	//	[16..48] creator    address
	//	[48..80] recipient  address
	//	[80..88] timeout_ts i64, 0 = no timeout
	AccountLen = 88

	AmountOffset    = 0
	CreatorOffset   = 8
	RecipientOffset = 40
	TimeoutOffset   = 72
)

const FlagAccepted = layout.Bit0

var (
	ErrEscrowAccepted   = programerr.Custom(programerr.KindLifecycle, programerr.CodeCustomBase+100, "ErrEscrowAccepted")
	ErrEscrowExpired    = programerr.Custom(programerr.KindLifecycle, programerr.CodeCustomBase+101, "ErrEscrowExpired")
	ErrEscrowNotExpired = programerr.Custom(programerr.KindLifecycle, programerr.CodeCustomBase+102, "ErrEscrowNotExpired")
)

var Schemas = []layout.Schema{
	{
		Name:          "escrow",
		Discriminator: Discriminator,
		Version:       1,
		Size:          AccountLen,
		Fields: []layout.Field{
			{Name: "amount", Offset: AmountOffset, Size: layout.SizeU64},
			{Name: "creator", Offset: CreatorOffset, Size: layout.SizeAddress},
			{Name: "recipient", Offset: RecipientOffset, Size: layout.SizeAddress},
			{Name: "timeout_ts", Offset: TimeoutOffset, Size: layout.SizeI64},
		},
	},
}

// State is where an escrow is in its life. It is persisted as header flags.
type State uint8

const (
	StateOpen State = iota
	StateAccepted
)

var stateFlags = [...]struct {
	state State
	flags layout.Flags
}{
	{StateOpen, 0},
	{StateAccepted, layout.Flags(0).Set(FlagAccepted)},
}

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateAccepted:
		return "accepted"
	}
	return "invalid"
}

// Flags returns the header flags byte that persists s.
func (s State) Flags() layout.Flags {
	for _, e := range stateFlags {
		if e.state == s {
			return e.flags
		}
	}
	panic("escrow: unknown state")
}

// StateFromFlags maps a header flags byte back to a State. Flag patterns
// that no state produces are rejected.
func StateFromFlags(f layout.Flags) (State, error) {
	for _, e := range stateFlags {
		if e.flags == f {
			return e.state, nil
		}
	}
	return 0, programerr.ErrInvalidAccountData
}

type Escrow struct {
	State     State
	Amount    uint64
	Creator   solana.PublicKey
	Recipient solana.PublicKey
	TimeoutTs int64
}

// HasTimeout reports whether the escrow expires at all.
func (e Escrow) HasTimeout() bool {
	return e.TimeoutTs != 0
}

// Expired reports whether the timeout has been reached at unix time now.
func (e Escrow) Expired(now int64) bool {
	return e.HasTimeout() && now >= e.TimeoutTs
}

func Decode(data []byte) (Escrow, error) {
	hdr, err := layout.CheckHeader(data, Discriminator, Version)
	if err != nil {
		return Escrow{}, err
	}
	var e Escrow
	if e.State, err = StateFromFlags(hdr.Flags); err != nil {
		return Escrow{}, err
	}

	payload, err := layout.HeaderPayload(data)
	if err != nil {
		return Escrow{}, err
	}
	r := layout.NewReader(payload)
	if e.Amount, err = r.ReadU64(); err != nil {
		return Escrow{}, err
	}
	if e.Creator, err = r.ReadAddress(); err != nil {
		return Escrow{}, err
	}
	if e.Recipient, err = r.ReadAddress(); err != nil {
		return Escrow{}, err
	}
	if e.TimeoutTs, err = r.ReadI64(); err != nil {
		return Escrow{}, err
	}
	return e, nil
}

// Encode writes the header, including the state flags, and the payload.
func (e Escrow) Encode(data []byte) error {
	if err := layout.WriteHeader(data, Discriminator, Version, 0); err != nil {
		return err
	}
	if err := layout.WriteHeaderFlags(data, e.State.Flags()); err != nil {
		return err
	}
	payload, err := layout.HeaderPayloadMut(data)
	if err != nil {
		return err
	}
	w := layout.NewWriter(payload)
	if err = w.WriteU64(e.Amount); err != nil {
		return err
	}
	if err = w.WriteAddress(e.Creator); err != nil {
		return err
	}
	if err = w.WriteAddress(e.Recipient); err != nil {
		return err
	}
	return w.WriteI64(e.TimeoutTs)
}

func load(acct *accounts.View) (Escrow, error) {
	data, err := acct.TryBorrow()
	if err != nil {
		return Escrow{}, err
	}
	defer data.Release()
	return Decode(data.Bytes())
}

// setState rewrites only the flags byte.
func setState(acct *accounts.View, s State) error {
	data, err := acct.TryBorrowMut()
	if err != nil {
		return err
	}
	defer data.Release()
	return layout.WriteHeaderFlags(data.Bytes(), s.Flags())
}
