package ledger

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bridgelabs-io/riskguard/types"
)

// Caller submits calls to the protected bridge ledger (the Bridge, Bank
// and Vault contracts). Finalized governance updates reach the ledger
// exclusively through this interface.
//
// A returned error means the call did not take effect; the caller must
// treat the whole enclosing operation as failed. Implementations must
// not retry a call that has already been submitted.
type Caller interface {
	// Call invokes target with selector-prefixed payload and the given
	// native value attached.
	Call(ctx context.Context, target common.Address, selector types.Selector, value sdkmath.Int, payload []byte) error
}

// Client is a Caller with a connection lifecycle.
type Client interface {
	Caller

	Start(ctx context.Context) error
	Stop() error
}
