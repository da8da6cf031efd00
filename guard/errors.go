package guard

import (
	sdkerrors "cosmossdk.io/errors"
)

const codespace = "mintguard"

var (
	// ErrUnauthorized the caller does not hold the role the entry point requires
	ErrUnauthorized = sdkerrors.Register(codespace, 2, "caller lacks the required role")

	// ErrZeroAddress an address argument that must be set is the zero address
	ErrZeroAddress = sdkerrors.Register(codespace, 3, "address is the zero address")

	// ErrControllerAlreadySet a non-zero controller must be cleared before it can be replaced
	ErrControllerAlreadySet = sdkerrors.Register(codespace, 4, "controller is already set; clear it first")

	// ErrZeroWindow a non-zero rate limit was paired with a zero-second window
	ErrZeroWindow = sdkerrors.Register(codespace, 5, "rate limit window must be positive when a limit is set")

	// ErrInvalidAmount a nil or negative amount was supplied
	ErrInvalidAmount = sdkerrors.Register(codespace, 6, "amount must be a non-negative integer")

	// ErrMintingPaused the circuit breaker is engaged
	ErrMintingPaused = sdkerrors.Register(codespace, 7, "minting is paused")

	// ErrRateLimitExceeded the mint would push the current window over the rate limit
	ErrRateLimitExceeded = sdkerrors.Register(codespace, 8, "mint rate limit exceeded for the current window")

	// ErrGlobalCapExceeded the mint would push cumulative supply over the global cap
	ErrGlobalCapExceeded = sdkerrors.Register(codespace, 9, "global mint cap exceeded")
)
