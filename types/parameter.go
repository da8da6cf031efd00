package types

// ParameterID identifies a governable bridge parameter. Every parameter
// carries its own governance delay; the delay table binds each ID to the
// selector of the ledger setter that changes it.
type ParameterID uint8

// ParseParameterID resolves a parameter from its string form.
func ParseParameterID(s string) (ParameterID, bool) {
	for _, p := range []ParameterID{
		ParamGovernanceTransfer,
		ParamGlobalMintCap,
		ParamMintRateLimit,
		ParamController,
		ParamExecutionTargets,
	} {
		if p.String() == s {
			return p, true
		}
	}

	return ParamUnknown, false
}

const (
	ParamUnknown ParameterID = iota
	// ParamGovernanceTransfer guards the transfer of the governance role
	// itself.
	ParamGovernanceTransfer
	// ParamGlobalMintCap guards changes to the global mint cap.
	ParamGlobalMintCap
	// ParamMintRateLimit guards changes to the rate limit and its window.
	ParamMintRateLimit
	// ParamController guards changes to the guard's controller address.
	ParamController
	// ParamExecutionTargets guards changes to the gated bridge/bank/vault
	// addresses.
	ParamExecutionTargets
)

func (p ParameterID) String() string {
	switch p {
	case ParamGovernanceTransfer:
		return "governance_transfer"
	case ParamGlobalMintCap:
		return "global_mint_cap"
	case ParamMintRateLimit:
		return "mint_rate_limit"
	case ParamController:
		return "controller"
	case ParamExecutionTargets:
		return "execution_targets"
	default:
		return "unknown"
	}
}
