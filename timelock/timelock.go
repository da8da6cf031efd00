package timelock

import (
	"context"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bridgelabs-io/riskguard/ledger"
	libmath "github.com/bridgelabs-io/riskguard/lib/math"
	"github.com/bridgelabs-io/riskguard/types"
)

// Timelock orchestrates delayed transfer-of-control and delayed
// multi-call parameter updates against the protected bridge ledger.
//
// A pending transfer or update has no stored "matured" flag; maturity
// is a time comparison against the recorded timestamp at read time.
// One mutex guards all state so a begin, a finalize and any reader
// always observe a consistent log.
type Timelock struct {
	mu sync.Mutex

	governance common.Address
	transfer   types.GovernanceTransfer
	updates    []*types.GovernanceUpdate

	delays *DelayTable
	exec   ledger.Caller
	logger *zap.Logger

	timeSource func() time.Time
}

// Option configures a Timelock at construction.
type Option func(*Timelock)

// WithTimeSource overrides the clock, used by tests to drive maturity.
func WithTimeSource(now func() time.Time) Option {
	return func(tl *Timelock) {
		tl.timeSource = now
	}
}

// WithRestoredTransfer seeds the pending transfer slot from persisted
// state.
func WithRestoredTransfer(t types.GovernanceTransfer) Option {
	return func(tl *Timelock) {
		tl.transfer = t
	}
}

// WithRestoredUpdates seeds the update log from persisted state, in
// append order.
func WithRestoredUpdates(updates []*types.GovernanceUpdate) Option {
	return func(tl *Timelock) {
		tl.updates = updates
	}
}

// New creates a timelock governed by the given address, consulting the
// delay table and executing finalized updates through exec.
func New(governance common.Address, delays *DelayTable, exec ledger.Caller, logger *zap.Logger, opts ...Option) *Timelock {
	tl := &Timelock{
		governance: governance,
		delays:     delays,
		exec:       exec,
		logger:     logger,
		timeSource: time.Now,
	}
	for _, opt := range opts {
		opt(tl)
	}

	return tl
}

// Governance returns the current governance address.
func (tl *Timelock) Governance() common.Address {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	return tl.governance
}

// Delay returns the waiting period configured for the parameter.
func (tl *Timelock) Delay(p types.ParameterID) (time.Duration, bool) {
	return tl.delays.Delay(p)
}

// GovernanceTransferInitiatedAt returns when the pending transfer was
// begun, or the zero time when none is pending.
func (tl *Timelock) GovernanceTransferInitiatedAt() time.Time {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	return tl.transfer.InitiatedAt
}

// GovernanceTransfer returns a copy of the pending transfer slot.
func (tl *Timelock) GovernanceTransfer() types.GovernanceTransfer {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	return tl.transfer
}

// BeginGovernanceTransfer records a proposed transfer of the governance
// role. While a transfer is already pending the call is an idempotent
// no-op so that operator tooling may safely re-submit it.
func (tl *Timelock) BeginGovernanceTransfer(caller, newGovernance common.Address) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if caller != tl.governance {
		return ErrUnauthorized.Wrapf("caller %s", caller.Hex())
	}
	if newGovernance == (common.Address{}) {
		return ErrZeroAddress
	}
	if tl.transfer.Pending() {
		tl.logger.Info("governance transfer already pending, ignoring",
			zap.String("proposed", tl.transfer.ProposedGovernance.Hex()),
			zap.Time("initiated_at", tl.transfer.InitiatedAt))

		return nil
	}

	tl.transfer = types.GovernanceTransfer{
		ProposedGovernance: newGovernance,
		InitiatedAt:        tl.timeSource(),
	}
	tl.logger.Info("governance transfer begun",
		zap.String("proposed", newGovernance.Hex()),
		zap.Time("initiated_at", tl.transfer.InitiatedAt))

	return nil
}

// FinalizeGovernanceTransfer switches the governance pointer to the
// proposed address once the transfer delay has elapsed. Anyone may
// finalize; the waiting period is the only gate.
func (tl *Timelock) FinalizeGovernanceTransfer() error {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if !tl.transfer.Pending() {
		return ErrNothingPending
	}

	delay, ok := tl.delays.Delay(types.ParamGovernanceTransfer)
	if !ok {
		return ErrUnknownParameter.Wrapf("parameter %s", types.ParamGovernanceTransfer)
	}
	maturesAt := tl.transfer.InitiatedAt.Add(delay)
	if now := tl.timeSource(); now.Before(maturesAt) {
		return ErrNotMature.Wrapf("matures at %s, now %s", maturesAt.UTC(), now.UTC())
	}

	previous := tl.governance
	tl.governance = tl.transfer.ProposedGovernance
	tl.transfer = types.GovernanceTransfer{}

	tl.logger.Info("governance transferred",
		zap.String("previous", previous.Hex()),
		zap.String("current", tl.governance.Hex()))

	return nil
}

// BeginGovernanceUpdate appends a delayed multi-call batch to the update
// log. The batch matures after the slowest of the touched parameters:
// the longest delay among all selectors governs the whole batch. At
// most one update may await finalization at a time.
//
// The index of the appended update and a copy of it are returned so the
// caller can persist the log entry.
func (tl *Timelock) BeginGovernanceUpdate(
	caller common.Address,
	selectors []types.Selector,
	targets []common.Address,
	values []sdkmath.Int,
	payloads [][]byte,
) (int, types.GovernanceUpdate, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if caller != tl.governance {
		return 0, types.GovernanceUpdate{}, ErrUnauthorized.Wrapf("caller %s", caller.Hex())
	}
	if _, pending := tl.pendingUpdateLocked(); pending {
		return 0, types.GovernanceUpdate{}, ErrUpdatePending
	}

	update := &types.GovernanceUpdate{
		Selectors: selectors,
		Targets:   targets,
		Values:    values,
		Payloads:  payloads,
	}
	if err := update.Validate(); err != nil {
		return 0, types.GovernanceUpdate{}, ErrInvalidUpdate.Wrap(err.Error())
	}

	delays := make([]time.Duration, 0, len(selectors))
	for _, sel := range selectors {
		d, ok := tl.delays.DelayForSelector(sel)
		if !ok {
			return 0, types.GovernanceUpdate{}, ErrUnknownParameter.Wrapf("selector %s", sel)
		}
		delays = append(delays, d)
	}
	update.MaturesAt = tl.timeSource().Add(libmath.MaxDuration(delays...))

	tl.updates = append(tl.updates, update)
	index := len(tl.updates) - 1

	tl.logger.Info("governance update begun",
		zap.Int("index", index),
		zap.Int("calls", update.Calls()),
		zap.Time("matures_at", update.MaturesAt))

	return index, copyUpdate(update), nil
}

// FinalizeGovernanceUpdate executes the most recently begun, not yet
// executed update against the ledger, all calls in order. Any sub-call
// failure aborts the whole batch and leaves the update pending so it
// can be retried once the underlying issue is fixed. A given update is
// executed successfully at most once.
//
// The index of the executed update is returned for persistence.
func (tl *Timelock) FinalizeGovernanceUpdate(ctx context.Context) (int, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	index, pending := tl.pendingUpdateLocked()
	if !pending {
		return 0, ErrNothingToFinalize
	}
	update := tl.updates[index]

	if now := tl.timeSource(); now.Before(update.MaturesAt) {
		return 0, ErrNotMature.Wrapf("matures at %s, now %s", update.MaturesAt.UTC(), now.UTC())
	}

	for i := 0; i < update.Calls(); i++ {
		if err := tl.exec.Call(ctx, update.Targets[i], update.Selectors[i], update.Values[i], update.Payloads[i]); err != nil {
			return 0, ErrExecutionFailed.Wrapf("call %d to %s: %s", i, update.Targets[i].Hex(), err)
		}
	}

	update.Executed = true

	tl.logger.Info("governance update executed",
		zap.Int("index", index),
		zap.Int("calls", update.Calls()))

	return index, nil
}

// GovernanceUpdatesCount returns the length of the append-only update
// log, executed entries included.
func (tl *Timelock) GovernanceUpdatesCount() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	return len(tl.updates)
}

// GovernanceUpdateAt returns a copy of the update at the given index.
func (tl *Timelock) GovernanceUpdateAt(index int) (types.GovernanceUpdate, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if index < 0 || index >= len(tl.updates) {
		return types.GovernanceUpdate{}, ErrUpdateNotFound.Wrapf("index %d, count %d", index, len(tl.updates))
	}

	return copyUpdate(tl.updates[index]), nil
}

// PendingUpdate returns a copy of the update awaiting finalization, if
// any.
func (tl *Timelock) PendingUpdate() (types.GovernanceUpdate, bool) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	index, pending := tl.pendingUpdateLocked()
	if !pending {
		return types.GovernanceUpdate{}, false
	}

	return copyUpdate(tl.updates[index]), true
}

// pendingUpdateLocked finds the most recent unexecuted update. Only the
// last log entry can be pending since begin rejects concurrent batches.
func (tl *Timelock) pendingUpdateLocked() (int, bool) {
	if len(tl.updates) == 0 {
		return 0, false
	}
	last := len(tl.updates) - 1
	if tl.updates[last].Executed {
		return 0, false
	}

	return last, true
}

func copyUpdate(u *types.GovernanceUpdate) types.GovernanceUpdate {
	out := types.GovernanceUpdate{
		MaturesAt: u.MaturesAt,
		Selectors: append([]types.Selector(nil), u.Selectors...),
		Targets:   append([]common.Address(nil), u.Targets...),
		Values:    append([]sdkmath.Int(nil), u.Values...),
		Executed:  u.Executed,
	}
	out.Payloads = make([][]byte, len(u.Payloads))
	for i, p := range u.Payloads {
		out.Payloads[i] = append([]byte(nil), p...)
	}

	return out
}
