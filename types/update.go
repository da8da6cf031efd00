package types

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// GovernanceUpdate is one delayed multi-call batch recorded by the
// timelock. The four slices are parallel: element i describes one
// sub-call (target, selector, native value, payload) executed in order
// at finalization.
type GovernanceUpdate struct {
	MaturesAt time.Time
	Selectors []Selector
	Targets   []common.Address
	Values    []sdkmath.Int
	Payloads  [][]byte
	Executed  bool
}

// Validate checks the parallel-slice invariant: equal, non-zero lengths
// and non-negative values.
func (u *GovernanceUpdate) Validate() error {
	n := len(u.Selectors)
	if n == 0 {
		return fmt.Errorf("governance update has no calls")
	}
	if len(u.Targets) != n || len(u.Values) != n || len(u.Payloads) != n {
		return fmt.Errorf(
			"mismatched call sequences: %d selectors, %d targets, %d values, %d payloads",
			n, len(u.Targets), len(u.Values), len(u.Payloads),
		)
	}
	for i, v := range u.Values {
		if v.IsNil() || v.IsNegative() {
			return fmt.Errorf("call %d has an invalid native value", i)
		}
	}

	return nil
}

// Calls returns the number of sub-calls in the batch.
func (u *GovernanceUpdate) Calls() int {
	return len(u.Selectors)
}

// GovernanceTransfer is the single pending transfer-of-control slot.
// A zero InitiatedAt means no transfer is pending.
type GovernanceTransfer struct {
	ProposedGovernance common.Address
	InitiatedAt        time.Time
}

// Pending reports whether a transfer is waiting for its delay to elapse.
func (t *GovernanceTransfer) Pending() bool {
	return !t.InitiatedAt.IsZero()
}
