package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// GuardState is a point-in-time snapshot of the mint guard's counters
// and configuration. The guard emits it after every committed mutation
// so the daemon can persist it and restore across restarts.
type GuardState struct {
	Owner      common.Address
	Controller common.Address

	Bridge common.Address
	Bank   common.Address
	Vault  common.Address

	TotalMinted   sdkmath.Int
	GlobalMintCap sdkmath.Int

	MintRateLimit       sdkmath.Int
	MintRateLimitWindow uint32
	WindowStart         time.Time
	WindowAmount        sdkmath.Int

	MintingPaused bool
}

// NewGuardState returns a zero-counter state owned by the given owner.
// A zero controller means the authorize path is not yet enabled.
func NewGuardState(owner, controller common.Address) GuardState {
	return GuardState{
		Owner:         owner,
		Controller:    controller,
		TotalMinted:   sdkmath.ZeroInt(),
		GlobalMintCap: sdkmath.ZeroInt(),
		MintRateLimit: sdkmath.ZeroInt(),
		WindowAmount:  sdkmath.ZeroInt(),
	}
}
