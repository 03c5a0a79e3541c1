package cu

import (
	"errors"

	"github.com/QuarksBlueFoot/jiminy/pkg/safemath"
	"k8s.io/klog/v2"
)

var ErrComputeExceeded = errors.New("Compute exceeded")

// Costs charged by the executor and the address derivation helpers.
const (
	CUDefaultBudget             = 200000
	CUInstructionBaseCost       = 150
	CUCheckCost                 = 10
	CUCreateProgramAddressUnits = 1500
	CUCreateAccountUnits        = 150
	CUCloseAccountUnits         = 100
)

type ComputeMeter struct {
	computeMeter    uint64
	startingBalance uint64
	exceeded        bool
	disable         bool
}

func NewComputeMeter(budget uint64) ComputeMeter {
	return ComputeMeter{computeMeter: budget, startingBalance: budget}
}

func NewComputeMeterDefault() ComputeMeter {
	return NewComputeMeter(CUDefaultBudget)
}

// Consume deducts cost. Once the budget is exhausted the meter stays at zero
// and every further call fails, unless the meter is disabled.
func (cm *ComputeMeter) Consume(cost uint64) error {
	if cm == nil {
		return nil
	}
	cm.exceeded = cm.computeMeter < cost
	cm.computeMeter = safemath.SaturatingSubU64(cm.computeMeter, cost)

	if cm.exceeded {
		if cm.disable {
			klog.V(3).Infof("CU limit exceeded in Consume, but skipping")
		} else {
			return ErrComputeExceeded
		}
	}

	return nil
}

func (cm *ComputeMeter) Used() uint64 {
	return cm.startingBalance - cm.computeMeter
}

func (cm *ComputeMeter) Exceeded() bool {
	return cm.exceeded
}

func (cm *ComputeMeter) Remaining() uint64 {
	return cm.computeMeter
}

// Disable turns budget overruns into a logged no-op. Used by the CLI when
// replaying scenarios with --no-cu-limit.
func (cm *ComputeMeter) Disable() {
	cm.disable = true
}
