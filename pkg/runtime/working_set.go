package runtime

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/rent"
)

type workingAccount struct {
	acct     *accounts.Account
	writable bool
	preRent  rent.RentStateInfo
}

// workingSet holds one copy of every account a transaction references.
// Duplicate references share the copy, so they also share borrow state.
type workingSet struct {
	keys  []solana.PublicKey
	accts map[solana.PublicKey]*workingAccount
}

func (e *Executor) loadWorkingSet(tx *Transaction) (*workingSet, error) {
	ws := &workingSet{accts: make(map[solana.PublicKey]*workingAccount)}

	add := func(key solana.PublicKey, writable bool) error {
		if wa, ok := ws.accts[key]; ok {
			wa.writable = wa.writable || writable
			return nil
		}
		stored, err := e.accts.GetAccount(key)
		if err != nil {
			return fmt.Errorf("loading account %s: %w", key, err)
		}
		var acct *accounts.Account
		switch {
		case stored != nil:
			acct = stored.Clone()
		case e.isProgram(key):
			acct = &accounts.Account{Key: key, Owner: NativeLoaderAddr, Executable: true, Lamports: 1}
		default:
			acct = &accounts.Account{Key: key, Owner: solana.SystemProgramID}
		}
		ws.keys = append(ws.keys, key)
		ws.accts[key] = &workingAccount{
			acct:     acct,
			writable: writable,
			preRent:  rent.NewRentStateInfo(acct, e.rent),
		}
		return nil
	}

	for _, ix := range tx.Instructions {
		if err := add(ix.ProgramID, false); err != nil {
			return nil, err
		}
		for _, meta := range ix.Accounts {
			if err := add(meta.Pubkey, meta.IsWritable); err != nil {
				return nil, err
			}
		}
	}
	return ws, nil
}

func (e *Executor) isProgram(key solana.PublicKey) bool {
	_, ok := e.programs[key]
	return ok
}

// verifyRentStates rejects writable accounts that end the transaction
// rent-paying when they were not before.
func (ws *workingSet) verifyRentStates(r rent.Rent) error {
	for _, key := range ws.keys {
		wa := ws.accts[key]
		if !wa.writable {
			continue
		}
		post := rent.NewRentStateInfo(wa.acct, r)
		if err := rent.CheckRentStateTransition(wa.preRent, post); err != nil {
			return fmt.Errorf("account %s: %w", key, err)
		}
	}
	return nil
}

// commit writes back every account that was writable in the transaction.
// An account left with zero lamports is stored as a fresh system account,
// so it can be created again.
func (ws *workingSet) commit(store accounts.Accounts) error {
	for _, key := range ws.keys {
		wa := ws.accts[key]
		if !wa.writable {
			continue
		}
		acct := wa.acct.Clone()
		if acct.Lamports == 0 {
			acct = &accounts.Account{Key: key, Owner: solana.SystemProgramID}
		}
		if err := store.SetAccount(key, acct); err != nil {
			return fmt.Errorf("committing account %s: %w", key, err)
		}
	}
	return nil
}
