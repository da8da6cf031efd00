package store

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lightningnetwork/lnd/kvdb"

	"github.com/bridgelabs-io/riskguard/types"
)

var (
	// mapping big-endian index -> storedUpdate
	governanceUpdatesBucketName = []byte("governanceUpdates")
	// single-record bucket: governance pointer and pending transfer slot
	governanceMetaBucketName = []byte("governanceMeta")

	governanceKey = []byte("governance")
	transferKey   = []byte("transfer")
)

// GovernanceStore persists the timelock's governance pointer, its
// pending transfer slot and the append-only update log. Index keys are
// big-endian so bucket iteration yields updates in append order.
type GovernanceStore struct {
	db kvdb.Backend
}

// NewGovernanceStore returns a new store backed by db.
func NewGovernanceStore(db kvdb.Backend) (*GovernanceStore, error) {
	s := &GovernanceStore{db}
	if err := s.initBuckets(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *GovernanceStore) initBuckets() error {
	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		if _, err := tx.CreateTopLevelBucket(governanceUpdatesBucketName); err != nil {
			return fmt.Errorf("failed to create governance updates bucket: %w", err)
		}
		if _, err := tx.CreateTopLevelBucket(governanceMetaBucketName); err != nil {
			return fmt.Errorf("failed to create governance meta bucket: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("failed to initialize governance store buckets: %w", err)
	}

	return nil
}

// SaveGovernance persists the current governance pointer.
func (s *GovernanceStore) SaveGovernance(governance common.Address) error {
	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(governanceMetaBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}

		return bucket.Put(governanceKey, governance.Bytes())
	}); err != nil {
		return fmt.Errorf("failed to save governance address: %w", err)
	}

	return nil
}

// GetGovernance loads the persisted governance pointer.
func (s *GovernanceStore) GetGovernance() (common.Address, error) {
	var governance common.Address

	err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(governanceMetaBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}
		raw := bucket.Get(governanceKey)
		if raw == nil {
			return ErrGovernanceNotFound
		}
		governance = common.BytesToAddress(raw)

		return nil
	}, func() {})
	if err != nil {
		return common.Address{}, err
	}

	return governance, nil
}

// SaveTransfer persists the pending transfer slot; saving a zero-value
// transfer clears it.
func (s *GovernanceStore) SaveTransfer(t types.GovernanceTransfer) error {
	raw, err := marshalTransfer(t)
	if err != nil {
		return fmt.Errorf("failed to encode governance transfer: %w", err)
	}

	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(governanceMetaBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}

		return bucket.Put(transferKey, raw)
	}); err != nil {
		return fmt.Errorf("failed to save governance transfer: %w", err)
	}

	return nil
}

// GetTransfer loads the pending transfer slot. An empty slot is not an
// error; it comes back as the zero value.
func (s *GovernanceStore) GetTransfer() (types.GovernanceTransfer, error) {
	var transfer types.GovernanceTransfer

	err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(governanceMetaBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}
		raw := bucket.Get(transferKey)
		if raw == nil {
			return nil
		}

		var err error
		transfer, err = unmarshalTransfer(raw)

		return err
	}, func() {})
	if err != nil {
		return types.GovernanceTransfer{}, err
	}

	return transfer, nil
}

// PutUpdate stores the update at the given log index. Appending twice
// to the same index is rejected; marking an update executed goes
// through MarkUpdateExecuted instead.
func (s *GovernanceStore) PutUpdate(index uint64, u types.GovernanceUpdate) error {
	raw, err := marshalUpdate(u)
	if err != nil {
		return fmt.Errorf("failed to encode governance update: %w", err)
	}

	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(governanceUpdatesBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}
		key := updateKey(index)
		if bucket.Get(key) != nil {
			return ErrDuplicateUpdate
		}

		return bucket.Put(key, raw)
	}); err != nil {
		return fmt.Errorf("failed to store governance update %d: %w", index, err)
	}

	return nil
}

// MarkUpdateExecuted rewrites the stored update at index with its
// executed flag set.
func (s *GovernanceStore) MarkUpdateExecuted(index uint64) error {
	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(governanceUpdatesBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}

		return markExecuted(bucket, index)
	}); err != nil {
		return fmt.Errorf("failed to mark governance update %d executed: %w", index, err)
	}

	return nil
}

func markExecuted(bucket walletdb.ReadWriteBucket, index uint64) error {
	key := updateKey(index)
	raw := bucket.Get(key)
	if raw == nil {
		return ErrUpdateNotFound
	}

	update, err := unmarshalUpdate(raw)
	if err != nil {
		return err
	}
	update.Executed = true

	rewritten, err := marshalUpdate(update)
	if err != nil {
		return err
	}

	return bucket.Put(key, rewritten)
}

// GetUpdate loads the update stored at index.
func (s *GovernanceStore) GetUpdate(index uint64) (types.GovernanceUpdate, error) {
	var update types.GovernanceUpdate

	err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(governanceUpdatesBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}
		raw := bucket.Get(updateKey(index))
		if raw == nil {
			return ErrUpdateNotFound
		}

		var err error
		update, err = unmarshalUpdate(raw)

		return err
	}, func() {})
	if err != nil {
		return types.GovernanceUpdate{}, err
	}

	return update, nil
}

// ListUpdates returns the whole log in append order.
func (s *GovernanceStore) ListUpdates() ([]*types.GovernanceUpdate, error) {
	var updates []*types.GovernanceUpdate

	err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(governanceUpdatesBucketName)
		if bucket == nil {
			return ErrCorruptedDB
		}

		return bucket.ForEach(func(_, raw []byte) error {
			update, err := unmarshalUpdate(raw)
			if err != nil {
				return err
			}
			updates = append(updates, &update)

			return nil
		})
	}, func() {
		updates = nil
	})
	if err != nil {
		return nil, err
	}

	return updates, nil
}

func updateKey(index uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)

	return key
}
