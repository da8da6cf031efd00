package service

import (
	"fmt"
	"net/http"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/rpc/v2"
	"go.uber.org/atomic"

	"github.com/bridgelabs-io/riskguard/types"
	"github.com/bridgelabs-io/riskguard/version"
)

// rpcServer exposes the risk-control operations as a JSON-RPC 2.0
// service under the "riskguard" namespace. It is an operator/admin
// plane: callers identify themselves by address and the engines resolve
// that address to a role.
type rpcServer struct {
	started  atomic.Bool
	shutdown atomic.Bool

	app *RiskGuardApp

	handler http.Handler
}

func newRPCServer(app *RiskGuardApp) (*rpcServer, error) {
	gorillaServer := rpc.NewServer()
	codec := newJSONCodec()
	gorillaServer.RegisterCodec(codec, "application/json")
	gorillaServer.RegisterCodec(codec, "application/json;charset=UTF-8")
	if err := gorillaServer.RegisterService(&RiskGuardService{app: app}, "riskguard"); err != nil {
		return nil, fmt.Errorf("failed to register riskguard service: %w", err)
	}

	return &rpcServer{
		app:     app,
		handler: gorillaServer,
	}, nil
}

// Start signals that the RPC server starts accepting requests.
func (r *rpcServer) Start() error {
	if !r.started.CompareAndSwap(false, true) {
		return nil
	}

	return nil
}

// Stop signals that the RPC server should reject further requests.
func (r *rpcServer) Stop() error {
	if !r.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	return nil
}

func (r *rpcServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !r.started.Load() || r.shutdown.Load() {
		http.Error(w, "rpc server is not serving", http.StatusServiceUnavailable)

		return
	}
	r.handler.ServeHTTP(w, req)
}

// RiskGuardService carries the JSON-RPC method set.
type RiskGuardService struct {
	app *RiskGuardApp
}

type VersionReply struct {
	Version string `json:"version"`
}

// Version returns the daemon's build version.
func (s *RiskGuardService) Version(_ *http.Request, _ *struct{}, reply *VersionReply) error {
	reply.Version = version.RPC()

	return nil
}

type GovernanceDelaysArgs struct {
	Parameter string `json:"parameter"`
}

type GovernanceDelaysReply struct {
	Seconds uint64 `json:"seconds"`
}

// GovernanceDelays returns the configured delay of a parameter in
// seconds.
func (s *RiskGuardService) GovernanceDelays(_ *http.Request, args *GovernanceDelaysArgs, reply *GovernanceDelaysReply) error {
	param, ok := types.ParseParameterID(args.Parameter)
	if !ok {
		return fmt.Errorf("unknown parameter: %s", args.Parameter)
	}
	delay, ok := s.app.Timelock().Delay(param)
	if !ok {
		return fmt.Errorf("no delay configured for parameter: %s", args.Parameter)
	}
	reply.Seconds = uint64(delay.Seconds())

	return nil
}

type TransferChangeInitiatedReply struct {
	// Timestamp is unix seconds; zero means no transfer pending.
	Timestamp int64 `json:"timestamp"`
}

// BridgeGovernanceTransferChangeInitiated returns when the pending
// governance transfer was begun.
func (s *RiskGuardService) BridgeGovernanceTransferChangeInitiated(_ *http.Request, _ *struct{}, reply *TransferChangeInitiatedReply) error {
	initiatedAt := s.app.Timelock().GovernanceTransferInitiatedAt()
	if !initiatedAt.IsZero() {
		reply.Timestamp = initiatedAt.Unix()
	}

	return nil
}

type BeginTransferArgs struct {
	Caller        string `json:"caller"`
	NewGovernance string `json:"newGovernance"`
}

// BeginBridgeGovernanceTransfer begins the delayed transfer of the
// governance role.
func (s *RiskGuardService) BeginBridgeGovernanceTransfer(_ *http.Request, args *BeginTransferArgs, _ *struct{}) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}
	newGovernance, err := parseRPCAddress("newGovernance", args.NewGovernance)
	if err != nil {
		return err
	}

	return s.app.BeginGovernanceTransfer(caller, newGovernance)
}

type FinalizeTransferReply struct {
	Governance string `json:"governance"`
}

// FinalizeBridgeGovernanceTransfer finalizes a matured governance
// transfer.
func (s *RiskGuardService) FinalizeBridgeGovernanceTransfer(_ *http.Request, _ *struct{}, reply *FinalizeTransferReply) error {
	if err := s.app.FinalizeGovernanceTransfer(); err != nil {
		return err
	}
	reply.Governance = s.app.Timelock().Governance().Hex()

	return nil
}

type BeginGovernanceUpdateArgs struct {
	Caller    string   `json:"caller"`
	Selectors []string `json:"selectors"`
	Targets   []string `json:"targets"`
	Values    []string `json:"values"`
	Calldatas []string `json:"calldatas"`
}

type BeginGovernanceUpdateReply struct {
	Index int `json:"index"`
}

// BeginGovernanceUpdate begins a delayed multi-call parameter update.
func (s *RiskGuardService) BeginGovernanceUpdate(_ *http.Request, args *BeginGovernanceUpdateArgs, reply *BeginGovernanceUpdateReply) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	selectors := make([]types.Selector, len(args.Selectors))
	for i, raw := range args.Selectors {
		sel, err := types.ParseSelector(raw)
		if err != nil {
			return err
		}
		selectors[i] = sel
	}

	targets := make([]common.Address, len(args.Targets))
	for i, raw := range args.Targets {
		addr, err := parseRPCAddress("target", raw)
		if err != nil {
			return err
		}
		targets[i] = addr
	}

	values := make([]sdkmath.Int, len(args.Values))
	for i, raw := range args.Values {
		v, err := parseRPCAmount("value", raw)
		if err != nil {
			return err
		}
		values[i] = v
	}

	payloads := make([][]byte, len(args.Calldatas))
	for i, raw := range args.Calldatas {
		payload, err := parseRPCCalldata(raw)
		if err != nil {
			return err
		}
		payloads[i] = payload
	}

	index, err := s.app.BeginGovernanceUpdate(caller, selectors, targets, values, payloads)
	if err != nil {
		return err
	}
	reply.Index = index

	return nil
}

type FinalizeGovernanceUpdateReply struct {
	Index int `json:"index"`
}

// FinalizeGovernanceUpdate executes the matured pending update.
func (s *RiskGuardService) FinalizeGovernanceUpdate(r *http.Request, _ *struct{}, reply *FinalizeGovernanceUpdateReply) error {
	index, err := s.app.FinalizeGovernanceUpdate(r.Context())
	if err != nil {
		return err
	}
	reply.Index = index

	return nil
}

type GovernanceUpdatesCountReply struct {
	Count int `json:"count"`
}

// GovernanceUpdatesCount returns the length of the update log.
func (s *RiskGuardService) GovernanceUpdatesCount(_ *http.Request, _ *struct{}, reply *GovernanceUpdatesCountReply) error {
	reply.Count = s.app.Timelock().GovernanceUpdatesCount()

	return nil
}

type GovernanceUpdatesArgs struct {
	Index int `json:"index"`
}

type GovernanceUpdatesReply struct {
	// Timelock is the maturity timestamp in unix seconds.
	Timelock  int64    `json:"timelock"`
	Selectors []string `json:"selectors"`
	Targets   []string `json:"targets"`
	Values    []string `json:"values"`
	Calldatas []string `json:"calldatas"`
	Executed  bool     `json:"executed"`
}

// GovernanceUpdates returns the update stored at the given log index.
func (s *RiskGuardService) GovernanceUpdates(_ *http.Request, args *GovernanceUpdatesArgs, reply *GovernanceUpdatesReply) error {
	update, err := s.app.Timelock().GovernanceUpdateAt(args.Index)
	if err != nil {
		return err
	}

	reply.Timelock = update.MaturesAt.Unix()
	reply.Executed = update.Executed
	reply.Selectors = make([]string, update.Calls())
	reply.Targets = make([]string, update.Calls())
	reply.Values = make([]string, update.Calls())
	reply.Calldatas = make([]string, update.Calls())
	for i := 0; i < update.Calls(); i++ {
		reply.Selectors[i] = update.Selectors[i].Hex()
		reply.Targets[i] = update.Targets[i].Hex()
		reply.Values[i] = update.Values[i].String()
		reply.Calldatas[i] = hexutil.Encode(update.Payloads[i])
	}

	return nil
}

type AddressReply struct {
	Address string `json:"address"`
}

// Owner returns the guard's administrative owner.
func (s *RiskGuardService) Owner(_ *http.Request, _ *struct{}, reply *AddressReply) error {
	reply.Address = s.app.Guard().Owner().Hex()

	return nil
}

// Controller returns the guard's controller.
func (s *RiskGuardService) Controller(_ *http.Request, _ *struct{}, reply *AddressReply) error {
	reply.Address = s.app.Guard().Controller().Hex()

	return nil
}

type AmountReply struct {
	Amount string `json:"amount"`
}

// TotalMinted returns the cumulative minted amount.
func (s *RiskGuardService) TotalMinted(_ *http.Request, _ *struct{}, reply *AmountReply) error {
	reply.Amount = s.app.Guard().TotalMinted().String()

	return nil
}

// GlobalMintCap returns the supply cap.
func (s *RiskGuardService) GlobalMintCap(_ *http.Request, _ *struct{}, reply *AmountReply) error {
	reply.Amount = s.app.Guard().GlobalMintCap().String()

	return nil
}

// MintRateLimit returns the per-window limit.
func (s *RiskGuardService) MintRateLimit(_ *http.Request, _ *struct{}, reply *AmountReply) error {
	reply.Amount = s.app.Guard().MintRateLimit().String()

	return nil
}

type WindowReply struct {
	Seconds uint32 `json:"seconds"`
}

// MintRateLimitWindow returns the window length in seconds.
func (s *RiskGuardService) MintRateLimitWindow(_ *http.Request, _ *struct{}, reply *WindowReply) error {
	reply.Seconds = s.app.Guard().MintRateLimitWindow()

	return nil
}

// MintRateWindowAmount returns the amount accounted in the current
// window.
func (s *RiskGuardService) MintRateWindowAmount(_ *http.Request, _ *struct{}, reply *AmountReply) error {
	reply.Amount = s.app.Guard().MintRateWindowAmount().String()

	return nil
}

type MintingPausedReply struct {
	Paused bool `json:"paused"`
}

// MintingPaused reports the circuit-breaker state.
func (s *RiskGuardService) MintingPaused(_ *http.Request, _ *struct{}, reply *MintingPausedReply) error {
	reply.Paused = s.app.Guard().MintingPaused()

	return nil
}

type ConfigureExecutionTargetsArgs struct {
	Caller string `json:"caller"`
	Bridge string `json:"bridge"`
	Bank   string `json:"bank"`
	Vault  string `json:"vault"`
}

// ConfigureExecutionTargets records the gated ledger components.
func (s *RiskGuardService) ConfigureExecutionTargets(_ *http.Request, args *ConfigureExecutionTargetsArgs, _ *struct{}) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}
	bridge, err := parseRPCAddress("bridge", args.Bridge)
	if err != nil {
		return err
	}
	bank, err := parseRPCAddress("bank", args.Bank)
	if err != nil {
		return err
	}
	vault, err := parseRPCAddress("vault", args.Vault)
	if err != nil {
		return err
	}

	return s.app.ConfigureExecutionTargets(caller, bridge, bank, vault)
}

type SetGlobalMintCapArgs struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

// SetGlobalMintCap sets the supply cap.
func (s *RiskGuardService) SetGlobalMintCap(_ *http.Request, args *SetGlobalMintCapArgs, _ *struct{}) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}
	amount, err := parseRPCAmount("amount", args.Amount)
	if err != nil {
		return err
	}

	return s.app.SetGlobalMintCap(caller, amount)
}

type SetMintRateLimitArgs struct {
	Caller        string `json:"caller"`
	Limit         string `json:"limit"`
	WindowSeconds uint32 `json:"windowSeconds"`
}

// SetMintRateLimit sets the per-window limit.
func (s *RiskGuardService) SetMintRateLimit(_ *http.Request, args *SetMintRateLimitArgs, _ *struct{}) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}
	limit, err := parseRPCAmount("limit", args.Limit)
	if err != nil {
		return err
	}

	return s.app.SetMintRateLimit(caller, limit, args.WindowSeconds)
}

type SetControllerArgs struct {
	Caller     string `json:"caller"`
	Controller string `json:"controller"`
}

// SetController appoints or clears the controller. An empty controller
// string clears it.
func (s *RiskGuardService) SetController(_ *http.Request, args *SetControllerArgs, _ *struct{}) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	var controller common.Address
	if args.Controller != "" {
		controller, err = parseRPCAddress("controller", args.Controller)
		if err != nil {
			return err
		}
	}

	return s.app.SetController(caller, controller)
}

type CallerArgs struct {
	Caller string `json:"caller"`
}

// PauseMinting engages the circuit breaker.
func (s *RiskGuardService) PauseMinting(_ *http.Request, args *CallerArgs, _ *struct{}) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	return s.app.PauseMinting(caller)
}

// UnpauseMinting releases the circuit breaker.
func (s *RiskGuardService) UnpauseMinting(_ *http.Request, args *CallerArgs, _ *struct{}) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	return s.app.UnpauseMinting(caller)
}

type AuthorizeArgs struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type AuthorizeReply struct {
	Allowed bool `json:"allowed"`
}

// Authorize decides a mint request. Denials come back as errors, never
// as allowed=false, so a confused client cannot mistake a denial for a
// green light.
func (s *RiskGuardService) Authorize(_ *http.Request, args *AuthorizeArgs, reply *AuthorizeReply) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}
	amount, err := parseRPCAmount("amount", args.Amount)
	if err != nil {
		return err
	}

	if err := s.app.Authorize(caller, amount); err != nil {
		return err
	}
	reply.Allowed = true

	return nil
}

type RecordBurnArgs struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

// RecordBurn decrements the supply counter after a burn or redemption.
func (s *RiskGuardService) RecordBurn(_ *http.Request, args *RecordBurnArgs, _ *struct{}) error {
	caller, err := parseRPCAddress("caller", args.Caller)
	if err != nil {
		return err
	}
	amount, err := parseRPCAmount("amount", args.Amount)
	if err != nil {
		return err
	}

	return s.app.RecordBurn(caller, amount)
}

func parseRPCAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s is not a valid hex address: %q", name, value)
	}

	return common.HexToAddress(value), nil
}

func parseRPCAmount(name, value string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(value)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("%s is not a valid integer amount: %q", name, value)
	}

	return amount, nil
}

func parseRPCCalldata(value string) ([]byte, error) {
	if value == "" || value == "0x" {
		return []byte{}, nil
	}
	payload, err := hexutil.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("invalid calldata %q: %w", value, err)
	}

	return payload, nil
}
