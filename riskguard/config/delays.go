package config

import (
	"fmt"
	"time"

	"github.com/bridgelabs-io/riskguard/timelock"
	"github.com/bridgelabs-io/riskguard/types"
)

// Canonical signatures of the governed setters on the protected ledger.
// The delay table binds each parameter to the selector derived from its
// signature, so a governance update batch resolves delays per call.
const (
	sigTransferGovernance        = "transferGovernance(address)"
	sigSetGlobalMintCap          = "setGlobalMintCap(uint256)"
	sigSetMintRateLimit          = "setMintRateLimit(uint256,uint32)"
	sigSetController             = "setController(address)"
	sigConfigureExecutionTargets = "configureExecutionTargets(address,address,address)"
)

// defaultGovernanceDelay is the production waiting period. Test
// networks override it per parameter in the config file.
const defaultGovernanceDelay = 48 * time.Hour

// DelayConfig carries the per-parameter governance delays.
type DelayConfig struct {
	GovernanceTransferDelay time.Duration `long:"governancetransferdelay" description:"The waiting period before a governance transfer may be finalized"`
	GlobalMintCapDelay      time.Duration `long:"globalmintcapdelay" description:"The waiting period before a global mint cap change may be finalized"`
	MintRateLimitDelay      time.Duration `long:"mintratelimitdelay" description:"The waiting period before a mint rate limit change may be finalized"`
	ControllerDelay         time.Duration `long:"controllerdelay" description:"The waiting period before a controller change may be finalized"`
	ExecutionTargetsDelay   time.Duration `long:"executiontargetsdelay" description:"The waiting period before an execution targets change may be finalized"`
}

// DefaultDelayConfig returns the production delays for every parameter.
func DefaultDelayConfig() DelayConfig {
	return DelayConfig{
		GovernanceTransferDelay: defaultGovernanceDelay,
		GlobalMintCapDelay:      defaultGovernanceDelay,
		MintRateLimitDelay:      defaultGovernanceDelay,
		ControllerDelay:         defaultGovernanceDelay,
		ExecutionTargetsDelay:   defaultGovernanceDelay,
	}
}

// Entries builds the delay table entries from the configured durations.
func (cfg *DelayConfig) Entries() []timelock.DelayEntry {
	return []timelock.DelayEntry{
		{
			Param:    types.ParamGovernanceTransfer,
			Selector: types.SelectorFromSignature(sigTransferGovernance),
			Delay:    cfg.GovernanceTransferDelay,
		},
		{
			Param:    types.ParamGlobalMintCap,
			Selector: types.SelectorFromSignature(sigSetGlobalMintCap),
			Delay:    cfg.GlobalMintCapDelay,
		},
		{
			Param:    types.ParamMintRateLimit,
			Selector: types.SelectorFromSignature(sigSetMintRateLimit),
			Delay:    cfg.MintRateLimitDelay,
		},
		{
			Param:    types.ParamController,
			Selector: types.SelectorFromSignature(sigSetController),
			Delay:    cfg.ControllerDelay,
		},
		{
			Param:    types.ParamExecutionTargets,
			Selector: types.SelectorFromSignature(sigConfigureExecutionTargets),
			Delay:    cfg.ExecutionTargetsDelay,
		},
	}
}

// Validate checks the delay config for illegal values. Zero delays are
// legal for test networks; negative ones never are.
func (cfg *DelayConfig) Validate() error {
	delays := map[string]time.Duration{
		"governancetransferdelay": cfg.GovernanceTransferDelay,
		"globalmintcapdelay":      cfg.GlobalMintCapDelay,
		"mintratelimitdelay":      cfg.MintRateLimitDelay,
		"controllerdelay":         cfg.ControllerDelay,
		"executiontargetsdelay":   cfg.ExecutionTargetsDelay,
	}
	for name, d := range delays {
		if d < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}

	return nil
}
