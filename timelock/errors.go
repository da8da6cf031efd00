package timelock

import (
	sdkerrors "cosmossdk.io/errors"
)

const codespace = "timelock"

var (
	// ErrUnauthorized the caller is not the current governance
	ErrUnauthorized = sdkerrors.Register(codespace, 2, "caller is not governance")

	// ErrZeroAddress the proposed governance is the zero address
	ErrZeroAddress = sdkerrors.Register(codespace, 3, "proposed governance is the zero address")

	// ErrNotMature finalization attempted before the required delay elapsed
	ErrNotMature = sdkerrors.Register(codespace, 4, "governance delay has not elapsed")

	// ErrNothingPending no governance transfer is pending finalization
	ErrNothingPending = sdkerrors.Register(codespace, 5, "no governance transfer pending")

	// ErrNothingToFinalize no governance update is pending finalization
	ErrNothingToFinalize = sdkerrors.Register(codespace, 6, "no governance update pending")

	// ErrUpdatePending a begun update is still awaiting finalization
	ErrUpdatePending = sdkerrors.Register(codespace, 7, "a governance update is already pending")

	// ErrInvalidUpdate the update failed parallel-sequence validation
	ErrInvalidUpdate = sdkerrors.Register(codespace, 8, "invalid governance update")

	// ErrUnknownParameter a selector is not bound in the delay table
	ErrUnknownParameter = sdkerrors.Register(codespace, 9, "selector is not bound to a governable parameter")

	// ErrUpdateNotFound the requested update index is out of range
	ErrUpdateNotFound = sdkerrors.Register(codespace, 10, "governance update not found")

	// ErrExecutionFailed a finalize sub-call failed; the update stays pending
	ErrExecutionFailed = sdkerrors.Register(codespace, 11, "governance update execution failed")

	// ErrDuplicateEntry the delay table was built with a duplicate binding
	ErrDuplicateEntry = sdkerrors.Register(codespace, 12, "duplicate delay table entry")
)
