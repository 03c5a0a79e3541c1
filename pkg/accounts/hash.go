package accounts

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Hash is the blake3 hash of every persisted field of acct. Borrow state is
// not part of it.
func Hash(acct *Account) []byte {
	hasher := blake3.New()

	var lamportBytes [8]byte
	binary.LittleEndian.PutUint64(lamportBytes[:], acct.Lamports)
	_, _ = hasher.Write(lamportBytes[:])

	var rentEpochBytes [8]byte
	binary.LittleEndian.PutUint64(rentEpochBytes[:], acct.RentEpoch)
	_, _ = hasher.Write(rentEpochBytes[:])

	_, _ = hasher.Write(acct.Data)

	if acct.Executable {
		_, _ = hasher.Write([]byte{1})
	} else {
		_, _ = hasher.Write([]byte{0})
	}

	_, _ = hasher.Write(acct.Owner[:])
	_, _ = hasher.Write(acct.Key[:])

	return hasher.Sum(nil)
}

// StateHash folds the hashes of all stored accounts, in key order, into one
// digest. Two stores hash equal exactly when they hold the same accounts.
func (m MemAccounts) StateHash() []byte {
	hasher := blake3.New()
	m.tree.Scan(func(acct *Account) bool {
		_, _ = hasher.Write(Hash(acct))
		return true
	})
	return hasher.Sum(nil)
}
