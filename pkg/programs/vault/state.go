// Package vault is a lamport vault laid out with the versioned header: an
// authority deposits lamports, withdraws them and finally closes the vault.
package vault

import (
	"github.com/gagliardetto/solana-go"
	"github.com/minio/sha256-simd"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
)

var ProgramID = solana.PublicKey(sha256.Sum256([]byte("jiminy:vault")))

const (
	Discriminator = 1
	Version       = 1

	//	[0..8]   header
	//	[8..16]  balance   u64
	//	[16..48] authority address
	AccountLen = 48

	BalanceOffset   = 0
	AuthorityOffset = 8
)

// Schemas lists every layout version of the vault record.
var Schemas = []layout.Schema{
	{
		Name:          "vault",
		Discriminator: Discriminator,
		Version:       1,
		Size:          AccountLen,
		Fields: []layout.Field{
			{Name: "balance", Offset: BalanceOffset, Size: layout.SizeU64},
			{Name: "authority", Offset: AuthorityOffset, Size: layout.SizeAddress},
		},
	},
}

type State struct {
	Balance   uint64
	Authority solana.PublicKey
}

// Decode checks the header of data and reads the vault payload.
func Decode(data []byte) (State, error) {
	if _, err := layout.CheckHeader(data, Discriminator, Version); err != nil {
		return State{}, err
	}
	payload, err := layout.HeaderPayload(data)
	if err != nil {
		return State{}, err
	}

	var s State
	r := layout.NewReader(payload)
	if s.Balance, err = r.ReadU64(); err != nil {
		return State{}, err
	}
	if s.Authority, err = r.ReadAddress(); err != nil {
		return State{}, err
	}
	return s, nil
}

// Encode writes a fresh header and the payload into data.
func (s State) Encode(data []byte) error {
	if err := layout.WriteHeader(data, Discriminator, Version, 0); err != nil {
		return err
	}
	return s.encodePayload(data)
}

func (s State) encodePayload(data []byte) error {
	payload, err := layout.HeaderPayloadMut(data)
	if err != nil {
		return err
	}
	w := layout.NewWriter(payload)
	if err = w.WriteU64(s.Balance); err != nil {
		return err
	}
	return w.WriteAddress(s.Authority)
}

func load(acct *accounts.View) (State, error) {
	data, err := acct.TryBorrow()
	if err != nil {
		return State{}, err
	}
	defer data.Release()
	return Decode(data.Bytes())
}

// store rewrites the payload, leaving the header as it is.
func store(acct *accounts.View, s State) error {
	data, err := acct.TryBorrowMut()
	if err != nil {
		return err
	}
	defer data.Release()
	return s.encodePayload(data.Bytes())
}
