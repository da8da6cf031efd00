package timelock

import (
	"time"

	"github.com/bridgelabs-io/riskguard/types"
)

// DelayEntry binds one governable parameter to the selector of its
// ledger setter and the waiting period a change to it must serve.
type DelayEntry struct {
	Param    types.ParameterID
	Selector types.Selector
	Delay    time.Duration
}

// DelayTable maps parameters to their governance delays. It is
// populated once at construction and never mutated afterwards, so
// lookups need no locking. Changing a delay means restarting the
// daemon with new configuration.
type DelayTable struct {
	delays     map[types.ParameterID]time.Duration
	bySelector map[types.Selector]types.ParameterID
}

// NewDelayTable builds the table from the given entries. Duplicate
// parameter or selector bindings are rejected. A zero delay is legal
// (test networks run without waiting periods).
func NewDelayTable(entries []DelayEntry) (*DelayTable, error) {
	t := &DelayTable{
		delays:     make(map[types.ParameterID]time.Duration, len(entries)),
		bySelector: make(map[types.Selector]types.ParameterID, len(entries)),
	}
	for _, e := range entries {
		if _, ok := t.delays[e.Param]; ok {
			return nil, ErrDuplicateEntry.Wrapf("parameter %s bound twice", e.Param)
		}
		if _, ok := t.bySelector[e.Selector]; ok {
			return nil, ErrDuplicateEntry.Wrapf("selector %s bound twice", e.Selector)
		}
		t.delays[e.Param] = e.Delay
		t.bySelector[e.Selector] = e.Param
	}

	return t, nil
}

// Delay returns the waiting period for the given parameter.
func (t *DelayTable) Delay(p types.ParameterID) (time.Duration, bool) {
	d, ok := t.delays[p]

	return d, ok
}

// ParameterFor resolves the parameter a selector is bound to.
func (t *DelayTable) ParameterFor(sel types.Selector) (types.ParameterID, bool) {
	p, ok := t.bySelector[sel]

	return p, ok
}

// DelayForSelector is the lookup used when a governance update batch is
// begun: every touched selector must resolve to a known parameter.
func (t *DelayTable) DelayForSelector(sel types.Selector) (time.Duration, bool) {
	p, ok := t.bySelector[sel]
	if !ok {
		return 0, false
	}
	d, ok := t.delays[p]

	return d, ok
}
