package accounts

import (
	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// borrowState tracks outstanding data borrows of one account. It lives on
// the Account, so every View of the same account shares it.
type borrowState struct {
	readers int
	writer  bool
}

// View is an account as handed to a program for one instruction: the
// shared account plus the signer and writable bits of the referencing
// account meta.
type View struct {
	acct     *Account
	signer   bool
	writable bool
}

func NewView(acct *Account, isSigner, isWritable bool) *View {
	return &View{acct: acct, signer: isSigner, writable: isWritable}
}

func (v *View) Address() solana.PublicKey {
	return v.acct.Key
}

func (v *View) Owner() solana.PublicKey {
	return v.acct.Owner
}

// Assign changes the owner. Only the runtime's account creation path calls
// it.
func (v *View) Assign(owner solana.PublicKey) error {
	if !v.writable {
		return programerr.ErrAccountNotWritable
	}
	v.acct.Owner = owner
	return nil
}

func (v *View) Lamports() uint64 {
	return v.acct.Lamports
}

func (v *View) SetLamports(lamports uint64) error {
	if !v.writable {
		return programerr.ErrAccountNotWritable
	}
	v.acct.Lamports = lamports
	return nil
}

func (v *View) IsSigner() bool {
	return v.signer
}

func (v *View) IsWritable() bool {
	return v.writable
}

func (v *View) Executable() bool {
	return v.acct.Executable
}

func (v *View) DataLen() int {
	return len(v.acct.Data)
}

// SameAccount reports whether both views refer to the same underlying
// account, which is the case for duplicated account metas.
func (v *View) SameAccount(other *View) bool {
	return v.acct == other.acct
}

// DataRef is a borrow of an account's data. Release it when done; a
// released ref must not be used again.
type DataRef struct {
	acct     *Account
	mut      bool
	released bool
}

func (r *DataRef) Bytes() []byte {
	if r.released {
		return nil
	}
	return r.acct.Data
}

func (r *DataRef) Release() {
	if r.released {
		return
	}
	r.released = true
	if r.mut {
		r.acct.borrow.writer = false
	} else {
		r.acct.borrow.readers--
	}
}

// TryBorrow takes a shared borrow of the data. It fails with
// ErrAccountBorrowFailed while an exclusive borrow is outstanding.
func (v *View) TryBorrow() (*DataRef, error) {
	if v.acct.borrow.writer {
		return nil, programerr.ErrAccountBorrowFailed
	}
	v.acct.borrow.readers++
	return &DataRef{acct: v.acct}, nil
}

// TryBorrowMut takes an exclusive borrow of the data. It fails with
// ErrAccountBorrowFailed while any other borrow is outstanding, and with
// ErrAccountNotWritable through a read-only view.
func (v *View) TryBorrowMut() (*DataRef, error) {
	if !v.writable {
		return nil, programerr.ErrAccountNotWritable
	}
	if v.acct.borrow.writer || v.acct.borrow.readers > 0 {
		return nil, programerr.ErrAccountBorrowFailed
	}
	v.acct.borrow.writer = true
	return &DataRef{acct: v.acct, mut: true}, nil
}

// Resize sets the data length. Dropped bytes are zeroed and growth is
// zero-filled. It needs the same
// exclusivity as TryBorrowMut.
func (v *View) Resize(n int) error {
	if !v.writable {
		return programerr.ErrAccountNotWritable
	}
	if v.acct.borrow.writer || v.acct.borrow.readers > 0 {
		return programerr.ErrAccountBorrowFailed
	}
	if n <= cap(v.acct.Data) {
		old := len(v.acct.Data)
		if n < old {
			clear(v.acct.Data[n:old])
		}
		v.acct.Data = v.acct.Data[:n]
		if n > old {
			clear(v.acct.Data[old:])
		}
		return nil
	}
	data := make([]byte, n)
	copy(data, v.acct.Data)
	v.acct.Data = data
	return nil
}

// Truncate empties the data region.
func (v *View) Truncate() error {
	return v.Resize(0)
}

// Borrowed reports whether any data borrow of the account is outstanding.
func (v *View) Borrowed() bool {
	return v.acct.borrow.writer || v.acct.borrow.readers > 0
}

// Account returns the underlying account. The runtime uses it to snapshot
// and verify what a program changed; programs go through the view.
func (v *View) Account() *Account {
	return v.acct
}
