package runtime

import (
	"fmt"

	"github.com/VividCortex/ewma"
	"github.com/gagliardetto/solana-go"
	"k8s.io/klog/v2"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
	"github.com/QuarksBlueFoot/jiminy/pkg/cu"
	"github.com/QuarksBlueFoot/jiminy/pkg/features"
	"github.com/QuarksBlueFoot/jiminy/pkg/rent"
)

var NativeLoaderAddr = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")

type registeredProgram struct {
	name string
	prog Program
}

// Executor runs transactions against an account store. Each transaction
// works on private copies of the accounts it references; the copies are
// written back only when every instruction succeeded.
type Executor struct {
	accts         accounts.Accounts
	programs      map[solana.PublicKey]registeredProgram
	clock         Clock
	rent          rent.Rent
	computeBudget uint64
	noCULimit     bool
	metrics       *Metrics
	features      *features.Features
	cuAverage     ewma.MovingAverage
}

type Option func(e *Executor)

func WithComputeBudget(units uint64) Option {
	return func(e *Executor) { e.computeBudget = units }
}

// WithoutComputeLimit lets transactions run past their budget.
func WithoutComputeLimit() Option {
	return func(e *Executor) { e.noCULimit = true }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func WithRent(r rent.Rent) Option {
	return func(e *Executor) { e.rent = r }
}

// WithoutFeature deactivates a feature gate, restoring the behavior from
// before the change it guards.
func WithoutFeature(f features.Feature) Option {
	return func(e *Executor) { e.features.WithoutFeature(f) }
}

// NewExecutor returns an executor over accts with the system program
// registered.
func NewExecutor(accts accounts.Accounts, opts ...Option) *Executor {
	e := &Executor{
		accts:         accts,
		programs:      make(map[solana.PublicKey]registeredProgram),
		rent:          rent.Default,
		computeBudget: cu.CUDefaultBudget,
		features:      features.Default(),
		cuAverage:     ewma.NewMovingAverage(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Register("system", solana.SystemProgramID, ProgramFunc(SystemProgramExecute))
	return e
}

// Register makes prog invocable at programID. name labels metrics and logs.
func (e *Executor) Register(name string, programID solana.PublicKey, prog Program) {
	e.programs[programID] = registeredProgram{name: name, prog: prog}
}

// ProgramName returns the registered name of programID, or its address.
func (e *Executor) ProgramName(programID solana.PublicKey) string {
	if p, ok := e.programs[programID]; ok {
		return p.name
	}
	return programID.String()
}

// SetClock sets the clock seen by subsequent transactions and stores it in
// the clock sysvar account.
func (e *Executor) SetClock(c Clock) error {
	e.clock = c
	return e.accts.SetAccount(solana.SysVarClockPubkey, clockAccount(c))
}

func (e *Executor) Clock() Clock {
	return e.clock
}

// AverageComputeUnits is the moving average of compute units consumed per
// transaction.
func (e *Executor) AverageComputeUnits() float64 {
	return e.cuAverage.Value()
}

// Execute runs the instructions of tx in order. Every instruction observes
// the effects of the ones before it. The first failure aborts the
// transaction and nothing is written to the store.
func (e *Executor) Execute(tx *Transaction) (*Result, error) {
	meter := cu.NewComputeMeter(e.computeBudget)
	if e.noCULimit {
		meter.Disable()
	}

	ws, err := e.loadWorkingSet(tx)
	if err != nil {
		return nil, err
	}

	txCtx := &txContext{exec: e, ws: ws, meter: &meter}
	res := &Result{FailedInstruction: -1}

	for i := range tx.Instructions {
		ix := &tx.Instructions[i]
		err = txCtx.processInstruction(ix, nil, nil)
		e.metrics.observeInstruction(e.ProgramName(ix.ProgramID), err)
		if err != nil {
			klog.V(2).Infof("instruction %d (%s) failed: %s", i, e.ProgramName(ix.ProgramID), err)
			res.Err = fmt.Errorf("instruction %d: %w", i, err)
			res.FailedInstruction = i
			break
		}
	}

	if res.Err == nil && e.features.HasFeature(features.RentStateTransitions) {
		res.Err = ws.verifyRentStates(e.rent)
	}

	res.ComputeUnitsUsed = meter.Used()
	res.Logs = txCtx.logs
	e.metrics.observeTransaction(res.ComputeUnitsUsed)
	e.cuAverage.Add(float64(res.ComputeUnitsUsed))

	if res.Err != nil {
		return res, res.Err
	}

	if err = ws.commit(e.accts); err != nil {
		return res, err
	}
	klog.V(2).Infof("transaction committed, %d instructions, %d CU", len(tx.Instructions), res.ComputeUnitsUsed)
	return res, nil
}
