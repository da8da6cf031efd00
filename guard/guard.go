package guard

import (
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bridgelabs-io/riskguard/types"
)

// Guard enforces the global mint cap and the rolling rate-limit window
// on every mint routed through the bridge, independent of any
// governance delay. It is the daemon's single source of truth for the
// supply counters.
//
// One mutex guards the whole check-then-commit sequence of Authorize:
// no caller can observe a state where two requests both passed the
// checks but together exceed a limit.
type Guard struct {
	mu sync.Mutex

	reg registry

	totalMinted   sdkmath.Int
	globalMintCap sdkmath.Int

	mintRateLimit sdkmath.Int
	windowSeconds uint32
	windowStart   time.Time
	windowAmount  sdkmath.Int

	paused bool

	logger     *zap.Logger
	timeSource func() time.Time
}

// Option configures a Guard at construction.
type Option func(*Guard)

// WithTimeSource overrides the clock, used by tests to drive the
// rate-limit window.
func WithTimeSource(now func() time.Time) Option {
	return func(g *Guard) {
		g.timeSource = now
	}
}

// WithState restores the full guard state from a persisted snapshot,
// owner and controller included.
func WithState(st types.GuardState) Option {
	return func(g *Guard) {
		g.applyState(st)
	}
}

// New creates a guard owned by owner. A zero controller leaves the
// authorize path disabled until SetController is called.
func New(owner, controller common.Address, logger *zap.Logger, opts ...Option) *Guard {
	g := &Guard{
		logger:     logger,
		timeSource: time.Now,
	}
	g.applyState(types.NewGuardState(owner, controller))
	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *Guard) applyState(st types.GuardState) {
	g.reg = registry{
		owner:      st.Owner,
		controller: st.Controller,
		bridge:     st.Bridge,
		bank:       st.Bank,
		vault:      st.Vault,
	}
	g.totalMinted = st.TotalMinted
	g.globalMintCap = st.GlobalMintCap
	g.mintRateLimit = st.MintRateLimit
	g.windowSeconds = st.MintRateLimitWindow
	g.windowStart = st.WindowStart
	g.windowAmount = st.WindowAmount
	g.paused = st.MintingPaused
}

// ConfigureExecutionTargets records the protected ledger components the
// guard is entitled to gate. Owner-only; the ledger must not trust
// Authorize before this has been called.
func (g *Guard) ConfigureExecutionTargets(caller, bridge, bank, vault common.Address) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.reg.require(caller, types.RoleOwner); err != nil {
		return err
	}
	zero := common.Address{}
	if bridge == zero || bank == zero || vault == zero {
		return ErrZeroAddress.Wrap("bridge, bank and vault must all be set")
	}

	g.reg.bridge = bridge
	g.reg.bank = bank
	g.reg.vault = vault

	g.logger.Info("execution targets configured",
		zap.String("bridge", bridge.Hex()),
		zap.String("bank", bank.Hex()),
		zap.String("vault", vault.Hex()))

	return nil
}

// SetGlobalMintCap sets the cumulative supply cap. Owner-only; a zero
// cap disables cap enforcement.
func (g *Guard) SetGlobalMintCap(caller common.Address, cap sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.reg.require(caller, types.RoleOwner); err != nil {
		return err
	}
	if cap.IsNil() || cap.IsNegative() {
		return ErrInvalidAmount.Wrap("global mint cap")
	}

	g.globalMintCap = cap
	g.logger.Info("global mint cap set", zap.String("cap", cap.String()))

	return nil
}

// SetMintRateLimit sets the per-window issuance limit. Owner-only; a
// zero limit disables rate limiting (cap-only mode), and a non-zero
// limit requires a positive window.
func (g *Guard) SetMintRateLimit(caller common.Address, limit sdkmath.Int, windowSeconds uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.reg.require(caller, types.RoleOwner); err != nil {
		return err
	}
	if limit.IsNil() || limit.IsNegative() {
		return ErrInvalidAmount.Wrap("mint rate limit")
	}
	if limit.IsPositive() && windowSeconds == 0 {
		return ErrZeroWindow
	}

	g.mintRateLimit = limit
	g.windowSeconds = windowSeconds
	g.logger.Info("mint rate limit set",
		zap.String("limit", limit.String()),
		zap.Uint32("window_seconds", windowSeconds))

	return nil
}

// SetController appoints the address permitted to call Authorize.
// Owner-only. A non-zero controller cannot be overwritten directly; it
// must be cleared to the zero address first, so a controller change is
// always a deliberate two-step operation.
func (g *Guard) SetController(caller, controller common.Address) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.reg.require(caller, types.RoleOwner); err != nil {
		return err
	}
	zero := common.Address{}
	if g.reg.controller != zero && controller != zero {
		return ErrControllerAlreadySet.Wrapf("current controller %s", g.reg.controller.Hex())
	}

	g.reg.controller = controller
	if controller == zero {
		g.logger.Info("controller cleared")
	} else {
		g.logger.Info("controller set", zap.String("controller", controller.Hex()))
	}

	return nil
}

// PauseMinting engages the circuit breaker. Controller or owner; takes
// effect immediately, independent of any governance delay.
func (g *Guard) PauseMinting(caller common.Address) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.reg.require(caller, types.RoleOwner, types.RoleController); err != nil {
		return err
	}

	g.paused = true
	g.logger.Warn("minting paused", zap.String("caller", caller.Hex()))

	return nil
}

// UnpauseMinting releases the circuit breaker. Controller or owner.
func (g *Guard) UnpauseMinting(caller common.Address) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.reg.require(caller, types.RoleOwner, types.RoleController); err != nil {
		return err
	}

	g.paused = false
	g.logger.Warn("minting unpaused", zap.String("caller", caller.Hex()))

	return nil
}

// Authorize decides whether a mint of the given amount may proceed and,
// if so, accounts for it. Controller-only, deny-by-error: a nil return
// is the only green light, so the ledger can never proceed on a false
// "allowed" path by mistake.
//
// The window is a fixed resetting one: once windowSeconds have elapsed
// since windowStart the next call starts a fresh window. Checks and
// commit run under one lock acquisition.
func (g *Guard) Authorize(caller common.Address, amount sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.reg.require(caller, types.RoleController); err != nil {
		return err
	}
	if g.paused {
		return ErrMintingPaused
	}
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount.Wrap("mint amount")
	}

	now := g.timeSource()
	windowStart := g.windowStart
	windowAmount := g.windowAmount
	if g.windowSeconds > 0 && now.Sub(windowStart) >= time.Duration(g.windowSeconds)*time.Second {
		windowStart = now
		windowAmount = sdkmath.ZeroInt()
	}

	newWindowAmount := windowAmount.Add(amount)
	if g.mintRateLimit.IsPositive() && newWindowAmount.GT(g.mintRateLimit) {
		return ErrRateLimitExceeded.Wrapf(
			"window amount %s + %s exceeds limit %s",
			windowAmount, amount, g.mintRateLimit,
		)
	}

	newTotalMinted := g.totalMinted.Add(amount)
	if g.globalMintCap.IsPositive() && newTotalMinted.GT(g.globalMintCap) {
		return ErrGlobalCapExceeded.Wrapf(
			"total minted %s + %s exceeds cap %s",
			g.totalMinted, amount, g.globalMintCap,
		)
	}

	g.windowStart = windowStart
	g.windowAmount = newWindowAmount
	g.totalMinted = newTotalMinted

	g.logger.Debug("mint authorized",
		zap.String("amount", amount.String()),
		zap.String("window_amount", g.windowAmount.String()),
		zap.String("total_minted", g.totalMinted.String()))

	return nil
}

// RecordBurn decrements cumulative supply when previously minted tokens
// are burned or redeemed. Controller or owner; saturates at zero and
// never underflows.
func (g *Guard) RecordBurn(caller common.Address, amount sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.reg.require(caller, types.RoleOwner, types.RoleController); err != nil {
		return err
	}
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount.Wrap("burn amount")
	}

	if amount.GTE(g.totalMinted) {
		g.totalMinted = sdkmath.ZeroInt()
	} else {
		g.totalMinted = g.totalMinted.Sub(amount)
	}

	g.logger.Debug("burn recorded",
		zap.String("amount", amount.String()),
		zap.String("total_minted", g.totalMinted.String()))

	return nil
}

// Owner returns the administrative owner.
func (g *Guard) Owner() common.Address {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.reg.owner
}

// Controller returns the controller, or the zero address when unset.
func (g *Guard) Controller() common.Address {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.reg.controller
}

// ExecutionTargets returns the gated bridge, bank and vault addresses.
func (g *Guard) ExecutionTargets() (bridge, bank, vault common.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.reg.bridge, g.reg.bank, g.reg.vault
}

// TotalMinted returns the cumulative minted amount.
func (g *Guard) TotalMinted() sdkmath.Int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.totalMinted
}

// GlobalMintCap returns the supply cap; zero means disabled.
func (g *Guard) GlobalMintCap() sdkmath.Int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.globalMintCap
}

// MintRateLimit returns the per-window limit; zero means disabled.
func (g *Guard) MintRateLimit() sdkmath.Int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.mintRateLimit
}

// MintRateLimitWindow returns the window length in seconds.
func (g *Guard) MintRateLimitWindow() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.windowSeconds
}

// MintRateWindowAmount returns the amount accounted in the current
// window.
func (g *Guard) MintRateWindowAmount() sdkmath.Int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.windowAmount
}

// MintingPaused reports whether the circuit breaker is engaged.
func (g *Guard) MintingPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.paused
}

// State returns a snapshot of the full guard state for persistence.
func (g *Guard) State() types.GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return types.GuardState{
		Owner:               g.reg.owner,
		Controller:          g.reg.controller,
		Bridge:              g.reg.bridge,
		Bank:                g.reg.bank,
		Vault:               g.reg.vault,
		TotalMinted:         g.totalMinted,
		GlobalMintCap:       g.globalMintCap,
		MintRateLimit:       g.mintRateLimit,
		MintRateLimitWindow: g.windowSeconds,
		WindowStart:         g.windowStart,
		WindowAmount:        g.windowAmount,
		MintingPaused:       g.paused,
	}
}
