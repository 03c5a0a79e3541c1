package accounts

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/tidwall/btree"
)

// MemAccounts is an in-memory account store ordered by key.
type MemAccounts struct {
	tree *btree.BTreeG[*Account]
}

func byKey(a, b *Account) bool {
	return bytes.Compare(a.Key[:], b.Key[:]) < 0
}

func NewMemAccounts() MemAccounts {
	return MemAccounts{tree: btree.NewBTreeG[*Account](byKey)}
}

// GetAccount returns the stored account, or nil if key is unknown.
func (m MemAccounts) GetAccount(key solana.PublicKey) (*Account, error) {
	acct, ok := m.tree.Get(&Account{Key: key})
	if !ok {
		return nil, nil
	}
	return acct, nil
}

func (m MemAccounts) SetAccount(key solana.PublicKey, acc *Account) error {
	acc.Key = key
	m.tree.Set(acc)
	return nil
}

func (m MemAccounts) DeleteAccount(key solana.PublicKey) {
	m.tree.Delete(&Account{Key: key})
}

func (m MemAccounts) Len() int {
	return m.tree.Len()
}

// Ascend calls fn for every account in key order until fn returns false.
func (m MemAccounts) Ascend(fn func(acct *Account) bool) {
	m.tree.Scan(fn)
}

// MarshalWithEncoder writes the account count followed by every account in
// key order.
func (m MemAccounts) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint64(uint64(m.tree.Len()), bin.LE); err != nil {
		return err
	}
	var err error
	m.tree.Scan(func(acct *Account) bool {
		err = acct.MarshalWithEncoder(encoder)
		return err == nil
	})
	return err
}

func (m MemAccounts) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	n, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		acct := new(Account)
		if err = acct.UnmarshalWithDecoder(decoder); err != nil {
			return err
		}
		m.tree.Set(acct)
	}
	return nil
}
