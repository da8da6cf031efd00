package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lightningnetwork/lnd/kvdb"
	"go.uber.org/zap"

	"github.com/bridgelabs-io/riskguard/guard"
	"github.com/bridgelabs-io/riskguard/ledger"
	"github.com/bridgelabs-io/riskguard/metrics"
	"github.com/bridgelabs-io/riskguard/riskguard/config"
	"github.com/bridgelabs-io/riskguard/riskguard/store"
	"github.com/bridgelabs-io/riskguard/timelock"
	"github.com/bridgelabs-io/riskguard/types"
)

// RiskGuardApp wires the mint guard and the governance timelock to
// their persistence, the ledger client and the metrics recorder. Every
// mutating operation flows through here so the in-memory engines and
// the database stay in step.
//
// Persistence runs after the in-memory commit. A failed write is
// returned as an error, which errs on the safe side for minting: the
// in-memory counters already account for the amount, so a retry can
// only be denied, never double-allowed.
type RiskGuardApp struct {
	startOnce sync.Once
	stopOnce  sync.Once

	cfg    *config.Config
	logger *zap.Logger

	guard    *guard.Guard
	timelock *timelock.Timelock

	guardStore *store.GuardStore
	govStore   *store.GovernanceStore

	ledgerClient ledger.Client

	metrics *metrics.GuardMetrics
}

// NewRiskGuardAppFromConfig creates the app from configuration, seeding
// the database on first start and restoring persisted state otherwise.
func NewRiskGuardAppFromConfig(
	cfg *config.Config,
	db kvdb.Backend,
	logger *zap.Logger,
) (*RiskGuardApp, error) {
	submitter, err := cfg.LedgerConfig.Submitter()
	if err != nil {
		return nil, err
	}
	ledgerClient := ledger.NewEvmClient(
		cfg.LedgerConfig.RPCEndpoint,
		submitter,
		cfg.LedgerConfig.Timeout,
		logger,
	)

	return NewRiskGuardApp(cfg, ledgerClient, db, logger)
}

// NewRiskGuardApp creates the app with the given ledger client.
func NewRiskGuardApp(
	cfg *config.Config,
	ledgerClient ledger.Client,
	db kvdb.Backend,
	logger *zap.Logger,
) (*RiskGuardApp, error) {
	guardStore, err := store.NewGuardStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create guard store: %w", err)
	}
	govStore, err := store.NewGovernanceStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create governance store: %w", err)
	}

	g, err := loadOrSeedGuard(cfg, guardStore, logger)
	if err != nil {
		return nil, err
	}

	tl, err := loadOrSeedTimelock(cfg, govStore, ledgerClient, logger)
	if err != nil {
		return nil, err
	}

	return &RiskGuardApp{
		cfg:          cfg,
		logger:       logger,
		guard:        g,
		timelock:     tl,
		guardStore:   guardStore,
		govStore:     govStore,
		ledgerClient: ledgerClient,
		metrics:      metrics.NewGuardMetrics(),
	}, nil
}

func loadOrSeedGuard(cfg *config.Config, guardStore *store.GuardStore, logger *zap.Logger) (*guard.Guard, error) {
	st, err := guardStore.GetState()
	switch {
	case err == nil:
		logger.Info("restored guard state",
			zap.String("total_minted", st.TotalMinted.String()),
			zap.Bool("minting_paused", st.MintingPaused))

		return guard.New(st.Owner, st.Controller, logger, guard.WithState(st)), nil
	case errors.Is(err, store.ErrGuardStateNotFound):
		owner, err := cfg.Owner()
		if err != nil {
			return nil, err
		}
		controller, err := cfg.Controller()
		if err != nil {
			return nil, err
		}

		seed := types.NewGuardState(owner, controller)
		seed.GlobalMintCap = sdkmath.NewIntFromUint64(cfg.InitialGlobalMintCap)
		seed.MintRateLimit = sdkmath.NewIntFromUint64(cfg.InitialMintRateLimit)
		seed.MintRateLimitWindow = cfg.InitialMintRateLimitWindow

		if err := guardStore.SaveState(seed); err != nil {
			return nil, fmt.Errorf("failed to seed guard state: %w", err)
		}
		logger.Info("seeded guard state from config",
			zap.String("owner", owner.Hex()),
			zap.String("global_mint_cap", seed.GlobalMintCap.String()),
			zap.String("mint_rate_limit", seed.MintRateLimit.String()))

		return guard.New(owner, controller, logger, guard.WithState(seed)), nil
	default:
		return nil, fmt.Errorf("failed to load guard state: %w", err)
	}
}

func loadOrSeedTimelock(
	cfg *config.Config,
	govStore *store.GovernanceStore,
	exec ledger.Caller,
	logger *zap.Logger,
) (*timelock.Timelock, error) {
	delayTable, err := timelock.NewDelayTable(cfg.Delays.Entries())
	if err != nil {
		return nil, fmt.Errorf("failed to build delay table: %w", err)
	}

	governance, err := govStore.GetGovernance()
	if errors.Is(err, store.ErrGovernanceNotFound) {
		governance, err = cfg.Governance()
		if err != nil {
			return nil, err
		}
		if err := govStore.SaveGovernance(governance); err != nil {
			return nil, fmt.Errorf("failed to seed governance address: %w", err)
		}
		logger.Info("seeded governance from config", zap.String("governance", governance.Hex()))
	} else if err != nil {
		return nil, fmt.Errorf("failed to load governance address: %w", err)
	}

	transfer, err := govStore.GetTransfer()
	if err != nil {
		return nil, fmt.Errorf("failed to load governance transfer: %w", err)
	}
	updates, err := govStore.ListUpdates()
	if err != nil {
		return nil, fmt.Errorf("failed to load governance updates: %w", err)
	}

	return timelock.New(governance, delayTable, exec, logger,
		timelock.WithRestoredTransfer(transfer),
		timelock.WithRestoredUpdates(updates),
	), nil
}

// Start brings up the ledger client.
func (app *RiskGuardApp) Start(ctx context.Context) error {
	var startErr error
	app.startOnce.Do(func() {
		app.logger.Info("starting risk guard app")
		startErr = app.ledgerClient.Start(ctx)
	})

	return startErr
}

// Stop tears down the ledger client.
func (app *RiskGuardApp) Stop() error {
	var stopErr error
	app.stopOnce.Do(func() {
		app.logger.Info("stopping risk guard app")
		stopErr = app.ledgerClient.Stop()
	})

	return stopErr
}

// Guard exposes the mint guard's read side.
func (app *RiskGuardApp) Guard() *guard.Guard {
	return app.guard
}

// Timelock exposes the governance timelock's read side.
func (app *RiskGuardApp) Timelock() *timelock.Timelock {
	return app.timelock
}

// Authorize routes a mint request through the guard, records the
// decision and persists the counters on success.
func (app *RiskGuardApp) Authorize(caller common.Address, amount sdkmath.Int) error {
	if err := app.guard.Authorize(caller, amount); err != nil {
		app.metrics.RecordMintDenied(denyReason(err))

		return err
	}

	st := app.guard.State()
	app.metrics.RecordMintAuthorized(st.TotalMinted, st.WindowAmount)

	return app.guardStore.SaveState(st)
}

// RecordBurn decrements the supply counter and persists it.
func (app *RiskGuardApp) RecordBurn(caller common.Address, amount sdkmath.Int) error {
	if err := app.guard.RecordBurn(caller, amount); err != nil {
		return err
	}

	st := app.guard.State()
	app.metrics.RecordBurn(st.TotalMinted)

	return app.guardStore.SaveState(st)
}

// ConfigureExecutionTargets applies and persists the gated addresses.
func (app *RiskGuardApp) ConfigureExecutionTargets(caller, bridge, bank, vault common.Address) error {
	if err := app.guard.ConfigureExecutionTargets(caller, bridge, bank, vault); err != nil {
		return err
	}

	return app.guardStore.SaveState(app.guard.State())
}

// SetGlobalMintCap applies and persists the new cap.
func (app *RiskGuardApp) SetGlobalMintCap(caller common.Address, cap sdkmath.Int) error {
	if err := app.guard.SetGlobalMintCap(caller, cap); err != nil {
		return err
	}

	return app.guardStore.SaveState(app.guard.State())
}

// SetMintRateLimit applies and persists the new limit and window.
func (app *RiskGuardApp) SetMintRateLimit(caller common.Address, limit sdkmath.Int, windowSeconds uint32) error {
	if err := app.guard.SetMintRateLimit(caller, limit, windowSeconds); err != nil {
		return err
	}

	return app.guardStore.SaveState(app.guard.State())
}

// SetController applies and persists the new controller.
func (app *RiskGuardApp) SetController(caller, controller common.Address) error {
	if err := app.guard.SetController(caller, controller); err != nil {
		return err
	}

	return app.guardStore.SaveState(app.guard.State())
}

// PauseMinting engages the circuit breaker and persists the state.
func (app *RiskGuardApp) PauseMinting(caller common.Address) error {
	if err := app.guard.PauseMinting(caller); err != nil {
		return err
	}

	app.metrics.RecordMintingPaused(true)

	return app.guardStore.SaveState(app.guard.State())
}

// UnpauseMinting releases the circuit breaker and persists the state.
func (app *RiskGuardApp) UnpauseMinting(caller common.Address) error {
	if err := app.guard.UnpauseMinting(caller); err != nil {
		return err
	}

	app.metrics.RecordMintingPaused(false)

	return app.guardStore.SaveState(app.guard.State())
}

// BeginGovernanceTransfer records the proposed transfer and persists
// the pending slot.
func (app *RiskGuardApp) BeginGovernanceTransfer(caller, newGovernance common.Address) error {
	if err := app.timelock.BeginGovernanceTransfer(caller, newGovernance); err != nil {
		return err
	}

	return app.govStore.SaveTransfer(app.timelock.GovernanceTransfer())
}

// FinalizeGovernanceTransfer switches governance and persists both the
// new pointer and the cleared slot.
func (app *RiskGuardApp) FinalizeGovernanceTransfer() error {
	if err := app.timelock.FinalizeGovernanceTransfer(); err != nil {
		return err
	}

	if err := app.govStore.SaveGovernance(app.timelock.Governance()); err != nil {
		return err
	}

	return app.govStore.SaveTransfer(types.GovernanceTransfer{})
}

// BeginGovernanceUpdate appends the batch to the log and persists it.
func (app *RiskGuardApp) BeginGovernanceUpdate(
	caller common.Address,
	selectors []types.Selector,
	targets []common.Address,
	values []sdkmath.Int,
	payloads [][]byte,
) (int, error) {
	index, update, err := app.timelock.BeginGovernanceUpdate(caller, selectors, targets, values, payloads)
	if err != nil {
		return 0, err
	}

	if err := app.govStore.PutUpdate(uint64(index), update); err != nil {
		return 0, err
	}
	app.metrics.RecordUpdateBegun()

	return index, nil
}

// FinalizeGovernanceUpdate executes the pending batch and persists its
// executed flag.
func (app *RiskGuardApp) FinalizeGovernanceUpdate(ctx context.Context) (int, error) {
	index, err := app.timelock.FinalizeGovernanceUpdate(ctx)
	if err != nil {
		return 0, err
	}

	if err := app.govStore.MarkUpdateExecuted(uint64(index)); err != nil {
		return 0, err
	}
	app.metrics.RecordUpdateExecuted()

	return index, nil
}

// denyReason maps a guard denial to a metrics label.
func denyReason(err error) string {
	switch {
	case errors.Is(err, guard.ErrMintingPaused):
		return "paused"
	case errors.Is(err, guard.ErrRateLimitExceeded):
		return "rate_limit"
	case errors.Is(err, guard.ErrGlobalCapExceeded):
		return "global_cap"
	case errors.Is(err, guard.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, guard.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "other"
	}
}
