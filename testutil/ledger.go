package testutil

import (
	"context"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bridgelabs-io/riskguard/ledger"
	"github.com/bridgelabs-io/riskguard/types"
)

var _ ledger.Client = (*FakeLedger)(nil)

// RecordedCall is one call the fake ledger received.
type RecordedCall struct {
	Target   common.Address
	Selector types.Selector
	Value    sdkmath.Int
	Payload  []byte
}

// FakeLedger is an in-memory ledger.Client that records every call and
// can be primed to fail.
type FakeLedger struct {
	mu sync.Mutex

	calls   []RecordedCall
	failErr error
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{}
}

// FailWith makes every subsequent call return err; nil restores
// success.
func (l *FakeLedger) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failErr = err
}

// Calls returns the calls received so far, in order.
func (l *FakeLedger) Calls() []RecordedCall {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]RecordedCall(nil), l.calls...)
}

func (l *FakeLedger) Call(_ context.Context, target common.Address, selector types.Selector, value sdkmath.Int, payload []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failErr != nil {
		return l.failErr
	}

	l.calls = append(l.calls, RecordedCall{
		Target:   target,
		Selector: selector,
		Value:    value,
		Payload:  append([]byte(nil), payload...),
	})

	return nil
}

func (l *FakeLedger) Start(_ context.Context) error { return nil }

func (l *FakeLedger) Stop() error { return nil }
