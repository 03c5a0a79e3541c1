package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
	"k8s.io/klog/v2"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/checks"
	"github.com/QuarksBlueFoot/jiminy/pkg/cu"
	"github.com/QuarksBlueFoot/jiminy/pkg/features"
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
	"github.com/QuarksBlueFoot/jiminy/pkg/programs/escrow"
	"github.com/QuarksBlueFoot/jiminy/pkg/programs/vault"
	"github.com/QuarksBlueFoot/jiminy/pkg/runtime"
)

// errors outside the programerr registry that fixtures may name
var extraErrors = map[string]error{
	"ErrComputeExceeded": cu.ErrComputeExceeded,
}

type TxReport struct {
	Name          string
	Err           error
	ExpectedError string
	ComputeUnits  uint64
	Logs          []string
	// Failures lists every expectation the transaction did not meet.
	Failures []string
}

func (r *TxReport) Passed() bool {
	return len(r.Failures) == 0
}

type Report struct {
	Scenario            string
	Txs                 []TxReport
	StateHash           []byte
	AverageComputeUnits float64
}

func (r *Report) Passed() bool {
	for i := range r.Txs {
		if !r.Txs[i].Passed() {
			return false
		}
	}
	return true
}

// Failures returns every failed expectation, prefixed with its
// transaction.
func (r *Report) Failures() []string {
	var out []string
	for _, tx := range r.Txs {
		for _, f := range tx.Failures {
			out = append(out, fmt.Sprintf("%s: %s", tx.Name, f))
		}
	}
	return out
}

// NewExecutor returns an executor over store with the vault and escrow
// programs registered.
func NewExecutor(store accounts.Accounts, opts ...runtime.Option) *runtime.Executor {
	exec := runtime.NewExecutor(store, opts...)
	exec.Register("vault", vault.ProgramID, vault.Program)
	exec.Register("escrow", escrow.ProgramID, escrow.Program)
	return exec
}

// Run executes the scenario on a fresh store. A malformed scenario returns
// an error; unmet expectations are recorded in the report.
func Run(s *Scenario, opts ...runtime.Option) (*Report, error) {
	kr, err := newKeyring(s.Keys)
	if err != nil {
		return nil, err
	}

	store := accounts.NewMemAccounts()
	for _, spec := range s.Accounts {
		acct, err := kr.account(spec)
		if err != nil {
			return nil, err
		}
		if err = store.SetAccount(acct.Key, acct); err != nil {
			return nil, err
		}
	}

	opts = slices.Clone(opts)
	for _, name := range s.DisabledFeatures {
		f, ok := features.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		opts = append(opts, runtime.WithoutFeature(f))
	}

	exec := NewExecutor(store, opts...)
	if err = exec.SetClock(s.Clock); err != nil {
		return nil, err
	}

	report := &Report{Scenario: s.Name}
	for i, txSpec := range s.Transactions {
		name := txSpec.Name
		if name == "" {
			name = fmt.Sprintf("tx %d", i)
		}

		if txSpec.UnixTimestamp != nil {
			clock := exec.Clock()
			clock.UnixTimestamp = *txSpec.UnixTimestamp
			if err = exec.SetClock(clock); err != nil {
				return nil, err
			}
		}

		tx := &runtime.Transaction{}
		for j, ixSpec := range txSpec.Instructions {
			ix, err := kr.instruction(ixSpec)
			if err != nil {
				return nil, fmt.Errorf("transaction %q, instruction %d: %w", name, j, err)
			}
			tx.Instructions = append(tx.Instructions, *ix)
		}

		res, err := exec.Execute(tx)
		txReport := TxReport{Name: name, Err: err, ExpectedError: txSpec.Expect.Error}
		if res != nil {
			txReport.ComputeUnits = res.ComputeUnitsUsed
			txReport.Logs = res.Logs
		}
		if f := matchError(txSpec.Expect.Error, err); f != "" {
			txReport.Failures = append(txReport.Failures, f)
		}
		for _, exp := range txSpec.Expect.Accounts {
			failures, err := kr.checkAccount(store, exp)
			if err != nil {
				return nil, fmt.Errorf("transaction %q: %w", name, err)
			}
			txReport.Failures = append(txReport.Failures, failures...)
		}

		klog.V(1).Infof("scenario %s: %s: err=%v, %d CU, %d failures", s.Name, name, err, txReport.ComputeUnits, len(txReport.Failures))
		report.Txs = append(report.Txs, txReport)
	}

	report.StateHash = store.StateHash()
	report.AverageComputeUnits = exec.AverageComputeUnits()
	return report, nil
}

func (kr keyring) account(spec AccountSpec) (*accounts.Account, error) {
	key, err := kr.resolve(spec.Key)
	if err != nil {
		return nil, err
	}
	owner := solana.SystemProgramID
	if spec.Owner != "" {
		if owner, err = kr.resolve(spec.Owner); err != nil {
			return nil, fmt.Errorf("account %s: owner: %w", spec.Key, err)
		}
	}
	return &accounts.Account{
		Key:        key,
		Lamports:   spec.Lamports,
		Data:       bytes.Clone(spec.Data),
		Owner:      owner,
		Executable: spec.Executable,
	}, nil
}

// matchError returns a failure description, or "" when got is what want
// names.
func matchError(want string, got error) string {
	if want == "" {
		if got != nil {
			return fmt.Sprintf("unexpected error: %v", got)
		}
		return ""
	}
	if got == nil {
		return fmt.Sprintf("expected %s, transaction succeeded", want)
	}

	var target error
	if e, ok := programerr.ByName(want); ok {
		target = e
	} else if e, ok := extraErrors[want]; ok {
		target = e
	} else {
		return fmt.Sprintf("expected unknown error name %s, got %v", want, got)
	}
	if !errors.Is(got, target) {
		return fmt.Sprintf("expected %s, got %v", want, got)
	}
	return ""
}

func (kr keyring) checkAccount(store accounts.Accounts, exp AccountExpect) ([]string, error) {
	key, err := kr.resolve(exp.Key)
	if err != nil {
		return nil, err
	}
	acct, err := store.GetAccount(key)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		acct = &accounts.Account{Key: key, Owner: solana.SystemProgramID}
	}

	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf("account %s: ", exp.Key)+fmt.Sprintf(format, args...))
	}

	if exp.Lamports != nil && acct.Lamports != *exp.Lamports {
		fail("lamports %d, want %d", acct.Lamports, *exp.Lamports)
	}
	if exp.DataLen != nil && len(acct.Data) != *exp.DataLen {
		fail("data length %d, want %d", len(acct.Data), *exp.DataLen)
	}
	if exp.Owner != "" {
		owner, err := kr.resolve(exp.Owner)
		if err != nil {
			return nil, err
		}
		if acct.Owner != owner {
			fail("owner %s, want %s", kr.name(acct.Owner), exp.Owner)
		}
	}
	if exp.Data != nil && !bytes.Equal(acct.Data, *exp.Data) {
		fail("data %x, want %x", acct.Data, []byte(*exp.Data))
	}
	if exp.State != "" {
		if state := checks.StateOf(accounts.NewView(acct, false, false)).String(); state != exp.State {
			fail("state %s, want %s", state, exp.State)
		}
	}
	if exp.Vault != nil {
		failures = append(failures, kr.checkVault(exp, acct.Data)...)
	}
	if exp.Escrow != nil {
		failures = append(failures, kr.checkEscrow(exp, acct.Data)...)
	}
	return failures, nil
}

func (kr keyring) checkVault(exp AccountExpect, data []byte) []string {
	s, err := vault.Decode(data)
	if err != nil {
		return []string{fmt.Sprintf("account %s: not a vault: %v", exp.Key, err)}
	}
	var failures []string
	if exp.Vault.Balance != nil && s.Balance != *exp.Vault.Balance {
		failures = append(failures, fmt.Sprintf("account %s: vault balance %d, want %d", exp.Key, s.Balance, *exp.Vault.Balance))
	}
	if exp.Vault.Authority != "" {
		if want, err := kr.resolve(exp.Vault.Authority); err != nil || s.Authority != want {
			failures = append(failures, fmt.Sprintf("account %s: vault authority %s, want %s", exp.Key, kr.name(s.Authority), exp.Vault.Authority))
		}
	}
	return failures
}

func (kr keyring) checkEscrow(exp AccountExpect, data []byte) []string {
	e, err := escrow.Decode(data)
	if err != nil {
		return []string{fmt.Sprintf("account %s: not an escrow: %v", exp.Key, err)}
	}
	var failures []string
	if exp.Escrow.State != "" && e.State.String() != exp.Escrow.State {
		failures = append(failures, fmt.Sprintf("account %s: escrow state %s, want %s", exp.Key, e.State, exp.Escrow.State))
	}
	if exp.Escrow.Amount != nil && e.Amount != *exp.Escrow.Amount {
		failures = append(failures, fmt.Sprintf("account %s: escrow amount %d, want %d", exp.Key, e.Amount, *exp.Escrow.Amount))
	}
	if exp.Escrow.Recipient != "" {
		if want, err := kr.resolve(exp.Escrow.Recipient); err != nil || e.Recipient != want {
			failures = append(failures, fmt.Sprintf("account %s: escrow recipient %s, want %s", exp.Key, kr.name(e.Recipient), exp.Escrow.Recipient))
		}
	}
	return failures
}
