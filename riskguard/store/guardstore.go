package store

import (
	"fmt"

	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/lightningnetwork/lnd/kvdb"

	"github.com/bridgelabs-io/riskguard/types"
)

var (
	// single-record bucket holding the latest guard snapshot
	guardStateBucketName = []byte("guardState")
	guardStateKey        = []byte("state")
)

// GuardStore persists the mint guard's counters and configuration so
// the daemon restores them across restarts.
type GuardStore struct {
	db kvdb.Backend
}

// NewGuardStore returns a new store backed by db.
func NewGuardStore(db kvdb.Backend) (*GuardStore, error) {
	s := &GuardStore{db}
	if err := s.initBuckets(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *GuardStore) initBuckets() error {
	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		_, err := tx.CreateTopLevelBucket(guardStateBucketName)
		if err != nil {
			return fmt.Errorf("failed to create guard state bucket: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("failed to initialize guard store buckets: %w", err)
	}

	return nil
}

// SaveState overwrites the persisted snapshot with st.
func (s *GuardStore) SaveState(st types.GuardState) error {
	raw, err := marshalGuardState(st)
	if err != nil {
		return fmt.Errorf("failed to encode guard state: %w", err)
	}

	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(guardStateBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}

		return putState(bucket, raw)
	}); err != nil {
		return fmt.Errorf("failed to save guard state: %w", err)
	}

	return nil
}

func putState(bucket walletdb.ReadWriteBucket, raw []byte) error {
	return bucket.Put(guardStateKey, raw)
}

// GetState loads the latest persisted snapshot.
func (s *GuardStore) GetState() (types.GuardState, error) {
	var st types.GuardState

	err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(guardStateBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}
		raw := bucket.Get(guardStateKey)
		if raw == nil {
			return ErrGuardStateNotFound
		}

		var err error
		st, err = unmarshalGuardState(raw)

		return err
	}, func() {})
	if err != nil {
		return types.GuardState{}, err
	}

	return st, nil
}
