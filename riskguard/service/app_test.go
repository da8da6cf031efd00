package service_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lightningnetwork/lnd/kvdb"
	"github.com/stretchr/testify/require"

	"github.com/bridgelabs-io/riskguard/guard"
	"github.com/bridgelabs-io/riskguard/riskguard/config"
	"github.com/bridgelabs-io/riskguard/riskguard/service"
	"github.com/bridgelabs-io/riskguard/testutil"
	"github.com/bridgelabs-io/riskguard/timelock"
	"github.com/bridgelabs-io/riskguard/types"
)

type appFixture struct {
	cfg    *config.Config
	db     kvdb.Backend
	ledger *testutil.FakeLedger
	app    *service.RiskGuardApp

	owner      common.Address
	controller common.Address
	governance common.Address
}

// newAppFixture builds an app on a fresh database with zero governance
// delays so finalization matures immediately.
func newAppFixture(t *testing.T, r *rand.Rand) *appFixture {
	fx := &appFixture{
		ledger:     testutil.NewFakeLedger(),
		owner:      testutil.GenRandomAddress(r),
		controller: testutil.GenRandomAddress(r),
		governance: testutil.GenRandomAddress(r),
	}

	cfg := config.DefaultConfigWithHome(t.TempDir())
	cfg.OwnerAddress = fx.owner.Hex()
	cfg.ControllerAddress = fx.controller.Hex()
	cfg.GovernanceAddress = fx.governance.Hex()
	cfg.InitialGlobalMintCap = 1000
	cfg.InitialMintRateLimit = 100
	cfg.InitialMintRateLimitWindow = 3600
	cfg.Delays = &config.DelayConfig{}
	fx.cfg = &cfg

	db, err := cfg.DatabaseConfig.GetDBBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	fx.db = db

	app, err := service.NewRiskGuardApp(&cfg, fx.ledger, db, testutil.GetTestLogger(t))
	require.NoError(t, err)
	fx.app = app

	return fx
}

// reopen builds a second app over the same database, the way the daemon
// does after a restart.
func (fx *appFixture) reopen(t *testing.T) *service.RiskGuardApp {
	app, err := service.NewRiskGuardApp(fx.cfg, fx.ledger, fx.db, testutil.GetTestLogger(t))
	require.NoError(t, err)

	return app
}

func TestAppSeedsFromConfig(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(70))
	fx := newAppFixture(t, r)

	require.Equal(t, fx.owner, fx.app.Guard().Owner())
	require.Equal(t, fx.controller, fx.app.Guard().Controller())
	require.Equal(t, sdkmath.NewInt(1000), fx.app.Guard().GlobalMintCap())
	require.Equal(t, sdkmath.NewInt(100), fx.app.Guard().MintRateLimit())
	require.Equal(t, uint32(3600), fx.app.Guard().MintRateLimitWindow())
	require.Equal(t, fx.governance, fx.app.Timelock().Governance())
}

func TestAppGuardStateSurvivesRestart(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(71))
	fx := newAppFixture(t, r)

	require.NoError(t, fx.app.Authorize(fx.controller, sdkmath.NewInt(60)))
	require.NoError(t, fx.app.PauseMinting(fx.controller))

	restarted := fx.reopen(t)
	require.Equal(t, sdkmath.NewInt(60), restarted.Guard().TotalMinted())
	require.Equal(t, sdkmath.NewInt(60), restarted.Guard().MintRateWindowAmount())
	require.True(t, restarted.Guard().MintingPaused())

	// The restored window still counts the pre-restart mint.
	require.NoError(t, restarted.UnpauseMinting(fx.owner))
	err := restarted.Authorize(fx.controller, sdkmath.NewInt(50))
	require.ErrorIs(t, err, guard.ErrRateLimitExceeded)
	require.NoError(t, restarted.Authorize(fx.controller, sdkmath.NewInt(40)))
}

func TestAppDeniedMintNotPersisted(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(72))
	fx := newAppFixture(t, r)

	err := fx.app.Authorize(fx.controller, sdkmath.NewInt(101))
	require.ErrorIs(t, err, guard.ErrRateLimitExceeded)

	restarted := fx.reopen(t)
	require.Equal(t, sdkmath.ZeroInt(), restarted.Guard().TotalMinted())
}

func TestAppGovernanceTransferSurvivesRestart(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(73))
	fx := newAppFixture(t, r)
	proposed := testutil.GenRandomAddress(r)

	// Pending slot persists across a restart.
	fx.cfg.Delays.GovernanceTransferDelay = time.Hour
	require.NoError(t, fx.app.BeginGovernanceTransfer(fx.governance, proposed))
	restarted := fx.reopen(t)
	require.True(t, restarted.Timelock().GovernanceTransfer().Pending())
	require.ErrorIs(t, restarted.FinalizeGovernanceTransfer(), timelock.ErrNotMature)

	// With a zero delay the restored transfer finalizes, and both the
	// pointer switch and the cleared slot survive the next restart.
	fx.cfg.Delays.GovernanceTransferDelay = 0
	restarted = fx.reopen(t)
	require.NoError(t, restarted.FinalizeGovernanceTransfer())
	require.Equal(t, proposed, restarted.Timelock().Governance())

	final := fx.reopen(t)
	require.Equal(t, proposed, final.Timelock().Governance())
	require.False(t, final.Timelock().GovernanceTransfer().Pending())
}

func TestAppGovernanceUpdateRoundTrip(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(74))
	fx := newAppFixture(t, r)
	ctx := context.Background()

	capSel := types.SelectorFromSignature("setGlobalMintCap(uint256)")
	target := testutil.GenRandomAddress(r)
	index, err := fx.app.BeginGovernanceUpdate(
		fx.governance,
		[]types.Selector{capSel},
		[]common.Address{target},
		[]sdkmath.Int{sdkmath.ZeroInt()},
		[][]byte{testutil.GenRandomByteArray(r, 32)},
	)
	require.NoError(t, err)
	require.Zero(t, index)

	// The pending entry is restored after a restart and still blocks a
	// second batch.
	restarted := fx.reopen(t)
	_, pending := restarted.Timelock().PendingUpdate()
	require.True(t, pending)
	_, err = restarted.BeginGovernanceUpdate(
		fx.governance,
		[]types.Selector{capSel},
		[]common.Address{target},
		[]sdkmath.Int{sdkmath.ZeroInt()},
		[][]byte{nil},
	)
	require.ErrorIs(t, err, timelock.ErrUpdatePending)

	executed, err := restarted.FinalizeGovernanceUpdate(ctx)
	require.NoError(t, err)
	require.Equal(t, index, executed)
	require.Len(t, fx.ledger.Calls(), 1)
	require.Equal(t, capSel, fx.ledger.Calls()[0].Selector)

	// The executed flag persists: after another restart nothing is
	// pending and the log still holds the entry.
	final := fx.reopen(t)
	_, pending = final.Timelock().PendingUpdate()
	require.False(t, pending)
	require.Equal(t, 1, final.Timelock().GovernanceUpdatesCount())
	update, err := final.Timelock().GovernanceUpdateAt(0)
	require.NoError(t, err)
	require.True(t, update.Executed)
}

func TestAppStartStop(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(75))
	fx := newAppFixture(t, r)
	ctx := context.Background()

	require.NoError(t, fx.app.Start(ctx))
	// Start and Stop are idempotent.
	require.NoError(t, fx.app.Start(ctx))
	require.NoError(t, fx.app.Stop())
	require.NoError(t, fx.app.Stop())
}
