package store

import (
	"encoding/json"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bridgelabs-io/riskguard/types"
)

// Stored records are JSON-encoded. Amounts serialize as decimal strings
// (sdkmath.Int's text form), addresses and selectors as 0x-hex, and
// timestamps as unix seconds so restored clock comparisons stay exact.

type storedGuardState struct {
	Owner      common.Address `json:"owner"`
	Controller common.Address `json:"controller"`

	Bridge common.Address `json:"bridge"`
	Bank   common.Address `json:"bank"`
	Vault  common.Address `json:"vault"`

	TotalMinted   sdkmath.Int `json:"total_minted"`
	GlobalMintCap sdkmath.Int `json:"global_mint_cap"`

	MintRateLimit       sdkmath.Int `json:"mint_rate_limit"`
	MintRateLimitWindow uint32      `json:"mint_rate_limit_window"`
	WindowStart         int64       `json:"window_start"`
	WindowAmount        sdkmath.Int `json:"window_amount"`

	MintingPaused bool `json:"minting_paused"`
}

func marshalGuardState(st types.GuardState) ([]byte, error) {
	rec := storedGuardState{
		Owner:               st.Owner,
		Controller:          st.Controller,
		Bridge:              st.Bridge,
		Bank:                st.Bank,
		Vault:               st.Vault,
		TotalMinted:         st.TotalMinted,
		GlobalMintCap:       st.GlobalMintCap,
		MintRateLimit:       st.MintRateLimit,
		MintRateLimitWindow: st.MintRateLimitWindow,
		WindowStart:         unixOrZero(st.WindowStart),
		WindowAmount:        st.WindowAmount,
		MintingPaused:       st.MintingPaused,
	}

	return json.Marshal(rec)
}

func unmarshalGuardState(raw []byte) (types.GuardState, error) {
	var rec storedGuardState
	if err := json.Unmarshal(raw, &rec); err != nil {
		return types.GuardState{}, fmt.Errorf("invalid guard state record: %w", err)
	}

	return types.GuardState{
		Owner:               rec.Owner,
		Controller:          rec.Controller,
		Bridge:              rec.Bridge,
		Bank:                rec.Bank,
		Vault:               rec.Vault,
		TotalMinted:         rec.TotalMinted,
		GlobalMintCap:       rec.GlobalMintCap,
		MintRateLimit:       rec.MintRateLimit,
		MintRateLimitWindow: rec.MintRateLimitWindow,
		WindowStart:         timeOrZero(rec.WindowStart),
		WindowAmount:        rec.WindowAmount,
		MintingPaused:       rec.MintingPaused,
	}, nil
}

type storedUpdate struct {
	MaturesAt int64            `json:"matures_at"`
	Selectors []types.Selector `json:"selectors"`
	Targets   []common.Address `json:"targets"`
	Values    []sdkmath.Int    `json:"values"`
	Payloads  [][]byte         `json:"payloads"`
	Executed  bool             `json:"executed"`
}

func marshalUpdate(u types.GovernanceUpdate) ([]byte, error) {
	rec := storedUpdate{
		MaturesAt: unixOrZero(u.MaturesAt),
		Selectors: u.Selectors,
		Targets:   u.Targets,
		Values:    u.Values,
		Payloads:  u.Payloads,
		Executed:  u.Executed,
	}

	return json.Marshal(rec)
}

func unmarshalUpdate(raw []byte) (types.GovernanceUpdate, error) {
	var rec storedUpdate
	if err := json.Unmarshal(raw, &rec); err != nil {
		return types.GovernanceUpdate{}, fmt.Errorf("invalid governance update record: %w", err)
	}

	return types.GovernanceUpdate{
		MaturesAt: timeOrZero(rec.MaturesAt),
		Selectors: rec.Selectors,
		Targets:   rec.Targets,
		Values:    rec.Values,
		Payloads:  rec.Payloads,
		Executed:  rec.Executed,
	}, nil
}

type storedTransfer struct {
	ProposedGovernance common.Address `json:"proposed_governance"`
	InitiatedAt        int64          `json:"initiated_at"`
}

func marshalTransfer(t types.GovernanceTransfer) ([]byte, error) {
	rec := storedTransfer{
		ProposedGovernance: t.ProposedGovernance,
		InitiatedAt:        unixOrZero(t.InitiatedAt),
	}

	return json.Marshal(rec)
}

func unmarshalTransfer(raw []byte) (types.GovernanceTransfer, error) {
	var rec storedTransfer
	if err := json.Unmarshal(raw, &rec); err != nil {
		return types.GovernanceTransfer{}, fmt.Errorf("invalid governance transfer record: %w", err)
	}

	return types.GovernanceTransfer{
		ProposedGovernance: rec.ProposedGovernance,
		InitiatedAt:        timeOrZero(rec.InitiatedAt),
	}, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.Unix()
}

func timeOrZero(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}

	return time.Unix(unix, 0).UTC()
}
