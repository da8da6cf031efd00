package store_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bridgelabs-io/riskguard/riskguard/config"
	"github.com/bridgelabs-io/riskguard/riskguard/store"
	"github.com/bridgelabs-io/riskguard/testutil"
	"github.com/bridgelabs-io/riskguard/types"
)

// FuzzGuardStateStore tests saving and loading the guard snapshot.
func FuzzGuardStateStore(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 3)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))

		cfg := config.DefaultDBConfigWithHomePath(t.TempDir())
		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		defer func() {
			require.NoError(t, db.Close())
		}()

		gs, err := store.NewGuardStore(db)
		require.NoError(t, err)

		// Nothing persisted yet.
		_, err = gs.GetState()
		require.ErrorIs(t, err, store.ErrGuardStateNotFound)

		st := types.NewGuardState(testutil.GenRandomAddress(r), testutil.GenRandomAddress(r))
		st.Bridge = testutil.GenRandomAddress(r)
		st.Bank = testutil.GenRandomAddress(r)
		st.Vault = testutil.GenRandomAddress(r)
		st.TotalMinted = testutil.GenRandomAmount(r)
		st.GlobalMintCap = testutil.GenRandomAmount(r)
		st.MintRateLimit = testutil.GenRandomAmount(r)
		st.MintRateLimitWindow = uint32(r.Int31n(86400) + 1)
		st.WindowStart = time.Unix(r.Int63n(2_000_000_000)+1, 0).UTC()
		st.WindowAmount = testutil.GenRandomAmount(r)
		st.MintingPaused = r.Intn(2) == 0

		require.NoError(t, gs.SaveState(st))
		loaded, err := gs.GetState()
		require.NoError(t, err)
		require.Equal(t, st, loaded)

		// The snapshot is a single overwritten record.
		st.TotalMinted = testutil.GenRandomAmount(r)
		st.MintingPaused = !st.MintingPaused
		require.NoError(t, gs.SaveState(st))
		loaded, err = gs.GetState()
		require.NoError(t, err)
		require.Equal(t, st, loaded)
	})
}

// FuzzGovernanceStore tests the governance pointer, the transfer slot
// and the update log.
func FuzzGovernanceStore(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 3)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))

		cfg := config.DefaultDBConfigWithHomePath(t.TempDir())
		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		defer func() {
			require.NoError(t, db.Close())
		}()

		gs, err := store.NewGovernanceStore(db)
		require.NoError(t, err)

		_, err = gs.GetGovernance()
		require.ErrorIs(t, err, store.ErrGovernanceNotFound)

		governance := testutil.GenRandomAddress(r)
		require.NoError(t, gs.SaveGovernance(governance))
		loaded, err := gs.GetGovernance()
		require.NoError(t, err)
		require.Equal(t, governance, loaded)

		// An empty transfer slot reads back as the zero value.
		transfer, err := gs.GetTransfer()
		require.NoError(t, err)
		require.False(t, transfer.Pending())

		pending := types.GovernanceTransfer{
			ProposedGovernance: testutil.GenRandomAddress(r),
			InitiatedAt:        time.Unix(r.Int63n(2_000_000_000)+1, 0).UTC(),
		}
		require.NoError(t, gs.SaveTransfer(pending))
		transfer, err = gs.GetTransfer()
		require.NoError(t, err)
		require.Equal(t, pending, transfer)

		// Clearing the slot persists it back to the zero value.
		require.NoError(t, gs.SaveTransfer(types.GovernanceTransfer{}))
		transfer, err = gs.GetTransfer()
		require.NoError(t, err)
		require.False(t, transfer.Pending())
	})
}

// FuzzGovernanceUpdateLog tests the append-only update log.
func FuzzGovernanceUpdateLog(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 3)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))

		cfg := config.DefaultDBConfigWithHomePath(t.TempDir())
		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		defer func() {
			require.NoError(t, db.Close())
		}()

		gs, err := store.NewGovernanceStore(db)
		require.NoError(t, err)

		n := r.Intn(8) + 1
		want := make([]types.GovernanceUpdate, n)
		for i := 0; i < n; i++ {
			selectors, targets, values, payloads := testutil.GenRandomGovernanceUpdateCalls(r, r.Intn(4)+1)
			want[i] = types.GovernanceUpdate{
				MaturesAt: time.Unix(r.Int63n(2_000_000_000)+1, 0).UTC(),
				Selectors: selectors,
				Targets:   targets,
				Values:    values,
				Payloads:  payloads,
			}
			require.NoError(t, gs.PutUpdate(uint64(i), want[i]))
		}

		// The index is append-only: overwriting an occupied slot fails.
		require.ErrorIs(t, gs.PutUpdate(0, want[0]), store.ErrDuplicateUpdate)

		for i := 0; i < n; i++ {
			loaded, err := gs.GetUpdate(uint64(i))
			require.NoError(t, err)
			require.Equal(t, want[i], loaded)
		}
		_, err = gs.GetUpdate(uint64(n))
		require.ErrorIs(t, err, store.ErrUpdateNotFound)

		// Executed flags are the only mutation the log allows.
		executedIdx := uint64(r.Intn(n))
		require.NoError(t, gs.MarkUpdateExecuted(executedIdx))
		require.ErrorIs(t, gs.MarkUpdateExecuted(uint64(n)), store.ErrUpdateNotFound)

		listed, err := gs.ListUpdates()
		require.NoError(t, err)
		require.Len(t, listed, n)
		for i, u := range listed {
			expected := want[i]
			expected.Executed = uint64(i) == executedIdx
			require.Equal(t, expected, *u)
		}
	})
}
