package store

import "errors"

var (
	// ErrCorruptedDB the on-disk representation is missing its buckets
	ErrCorruptedDB = errors.New("risk guard db is corrupted")

	// ErrGuardStateNotFound no guard snapshot has been persisted yet
	ErrGuardStateNotFound = errors.New("guard state not found")

	// ErrGovernanceNotFound no governance pointer has been persisted yet
	ErrGovernanceNotFound = errors.New("governance address not found")

	// ErrUpdateNotFound no governance update is stored at the given index
	ErrUpdateNotFound = errors.New("governance update not found")

	// ErrDuplicateUpdate an update is already stored at the given index
	ErrDuplicateUpdate = errors.New("governance update for given index already exists")
)
