package service

import (
	"bytes"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/stretchr/testify/require"

	"github.com/bridgelabs-io/riskguard/riskguard/config"
	"github.com/bridgelabs-io/riskguard/testutil"
	"github.com/bridgelabs-io/riskguard/types"
)

type rpcFixture struct {
	srv *httptest.Server

	owner      common.Address
	controller common.Address
	governance common.Address
}

func newRPCFixture(t *testing.T, r *rand.Rand) *rpcFixture {
	fx := &rpcFixture{
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

	db, err := cfg.DatabaseConfig.GetDBBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	app, err := NewRiskGuardApp(&cfg, testutil.NewFakeLedger(), db, testutil.GetTestLogger(t))
	require.NoError(t, err)

	rpcSrv, err := newRPCServer(app)
	require.NoError(t, err)
	require.NoError(t, rpcSrv.Start())
	t.Cleanup(func() {
		require.NoError(t, rpcSrv.Stop())
	})

	fx.srv = httptest.NewServer(rpcSrv)
	t.Cleanup(fx.srv.Close)

	return fx
}

// call issues a JSON-RPC 2.0 request and decodes the reply into out.
func (fx *rpcFixture) call(t *testing.T, method string, args, out any) error {
	body, err := json2.EncodeClientRequest(method, args)
	require.NoError(t, err)

	resp, err := http.Post(fx.srv.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	return json2.DecodeClientResponse(resp.Body, out)
}

func TestRPCMethodNameCasing(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(80))
	fx := newRPCFixture(t, r)

	// The published method names are lowercase; the codec uppercases
	// the first letter to hit the exported Go method.
	var lower VersionReply
	require.NoError(t, fx.call(t, "riskguard.version", &struct{}{}, &lower))
	require.NotEmpty(t, lower.Version)

	var upper VersionReply
	require.NoError(t, fx.call(t, "riskguard.Version", &struct{}{}, &upper))
	require.Equal(t, lower.Version, upper.Version)

	err := fx.call(t, "riskguard.noSuchMethod", &struct{}{}, &struct{}{})
	require.Error(t, err)
}

func TestRPCAuthorizeAndQueries(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(81))
	fx := newRPCFixture(t, r)

	var allowed AuthorizeReply
	require.NoError(t, fx.call(t, "riskguard.authorize",
		&AuthorizeArgs{Caller: fx.controller.Hex(), Amount: "60"}, &allowed))
	require.True(t, allowed.Allowed)

	// Denials come back as JSON-RPC errors, never as allowed=false.
	var denied AuthorizeReply
	err := fx.call(t, "riskguard.authorize",
		&AuthorizeArgs{Caller: fx.controller.Hex(), Amount: "50"}, &denied)
	require.Error(t, err)
	require.False(t, denied.Allowed)

	err = fx.call(t, "riskguard.authorize",
		&AuthorizeArgs{Caller: fx.owner.Hex(), Amount: "1"}, &AuthorizeReply{})
	require.Error(t, err)

	var total AmountReply
	require.NoError(t, fx.call(t, "riskguard.totalMinted", &struct{}{}, &total))
	require.Equal(t, "60", total.Amount)

	var window WindowReply
	require.NoError(t, fx.call(t, "riskguard.mintRateLimitWindow", &struct{}{}, &window))
	require.Equal(t, uint32(3600), window.Seconds)

	require.NoError(t, fx.call(t, "riskguard.recordBurn",
		&RecordBurnArgs{Caller: fx.controller.Hex(), Amount: "100"}, &struct{}{}))
	require.NoError(t, fx.call(t, "riskguard.totalMinted", &struct{}{}, &total))
	require.Equal(t, "0", total.Amount)
}

func TestRPCPauseAndSetters(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(82))
	fx := newRPCFixture(t, r)

	require.NoError(t, fx.call(t, "riskguard.pauseMinting",
		&CallerArgs{Caller: fx.controller.Hex()}, &struct{}{}))

	var paused MintingPausedReply
	require.NoError(t, fx.call(t, "riskguard.mintingPaused", &struct{}{}, &paused))
	require.True(t, paused.Paused)

	err := fx.call(t, "riskguard.authorize",
		&AuthorizeArgs{Caller: fx.controller.Hex(), Amount: "1"}, &AuthorizeReply{})
	require.Error(t, err)

	require.NoError(t, fx.call(t, "riskguard.unpauseMinting",
		&CallerArgs{Caller: fx.owner.Hex()}, &struct{}{}))

	require.NoError(t, fx.call(t, "riskguard.setGlobalMintCap",
		&SetGlobalMintCapArgs{Caller: fx.owner.Hex(), Amount: "5000"}, &struct{}{}))
	var cap AmountReply
	require.NoError(t, fx.call(t, "riskguard.globalMintCap", &struct{}{}, &cap))
	require.Equal(t, "5000", cap.Amount)

	// Clearing then setting the controller over RPC.
	next := testutil.GenRandomAddress(r)
	err = fx.call(t, "riskguard.setController",
		&SetControllerArgs{Caller: fx.owner.Hex(), Controller: next.Hex()}, &struct{}{})
	require.Error(t, err)
	require.NoError(t, fx.call(t, "riskguard.setController",
		&SetControllerArgs{Caller: fx.owner.Hex(), Controller: ""}, &struct{}{}))
	require.NoError(t, fx.call(t, "riskguard.setController",
		&SetControllerArgs{Caller: fx.owner.Hex(), Controller: next.Hex()}, &struct{}{}))

	var controller AddressReply
	require.NoError(t, fx.call(t, "riskguard.controller", &struct{}{}, &controller))
	require.Equal(t, next.Hex(), controller.Address)
}

func TestRPCGovernanceFlow(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(83))
	fx := newRPCFixture(t, r)
	proposed := testutil.GenRandomAddress(r)

	var initiated TransferChangeInitiatedReply
	require.NoError(t, fx.call(t, "riskguard.bridgeGovernanceTransferChangeInitiated", &struct{}{}, &initiated))
	require.Zero(t, initiated.Timestamp)

	require.NoError(t, fx.call(t, "riskguard.beginBridgeGovernanceTransfer",
		&BeginTransferArgs{Caller: fx.governance.Hex(), NewGovernance: proposed.Hex()}, &struct{}{}))
	require.NoError(t, fx.call(t, "riskguard.bridgeGovernanceTransferChangeInitiated", &struct{}{}, &initiated))
	require.NotZero(t, initiated.Timestamp)

	var finalized FinalizeTransferReply
	require.NoError(t, fx.call(t, "riskguard.finalizeBridgeGovernanceTransfer", &struct{}{}, &finalized))
	require.Equal(t, proposed.Hex(), finalized.Governance)

	// The new governance begins a single-call update which finalizes
	// immediately under zero delays.
	capSel := types.SelectorFromSignature("setGlobalMintCap(uint256)")
	var begun BeginGovernanceUpdateReply
	require.NoError(t, fx.call(t, "riskguard.beginGovernanceUpdate",
		&BeginGovernanceUpdateArgs{
			Caller:    proposed.Hex(),
			Selectors: []string{capSel.Hex()},
			Targets:   []string{testutil.GenRandomAddress(r).Hex()},
			Values:    []string{"0"},
			Calldatas: []string{"0x" + testutil.GenRandomHexStr(r, 32)},
		}, &begun))
	require.Zero(t, begun.Index)

	var count GovernanceUpdatesCountReply
	require.NoError(t, fx.call(t, "riskguard.governanceUpdatesCount", &struct{}{}, &count))
	require.Equal(t, 1, count.Count)

	var finalizedUpdate FinalizeGovernanceUpdateReply
	require.NoError(t, fx.call(t, "riskguard.finalizeGovernanceUpdate", &struct{}{}, &finalizedUpdate))
	require.Zero(t, finalizedUpdate.Index)

	var stored GovernanceUpdatesReply
	require.NoError(t, fx.call(t, "riskguard.governanceUpdates",
		&GovernanceUpdatesArgs{Index: 0}, &stored))
	require.True(t, stored.Executed)
	require.Equal(t, []string{capSel.Hex()}, stored.Selectors)

	var delay GovernanceDelaysReply
	require.NoError(t, fx.call(t, "riskguard.governanceDelays",
		&GovernanceDelaysArgs{Parameter: types.ParamGlobalMintCap.String()}, &delay))
	require.Zero(t, delay.Seconds)
}

func TestRPCServerLifecycleGate(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(84))

	cfg := config.DefaultConfigWithHome(t.TempDir())
	cfg.OwnerAddress = testutil.GenRandomAddress(r).Hex()
	cfg.GovernanceAddress = testutil.GenRandomAddress(r).Hex()
	cfg.Delays = &config.DelayConfig{}

	db, err := cfg.DatabaseConfig.GetDBBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	app, err := NewRiskGuardApp(&cfg, testutil.NewFakeLedger(), db, testutil.GetTestLogger(t))
	require.NoError(t, err)
	rpcSrv, err := newRPCServer(app)
	require.NoError(t, err)

	srv := httptest.NewServer(rpcSrv)
	t.Cleanup(srv.Close)

	// Requests before Start and after Stop are refused.
	body, err := json2.EncodeClientRequest("riskguard.version", &struct{}{})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	require.NoError(t, rpcSrv.Start())
	resp, err = http.Post(srv.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, rpcSrv.Stop())
	resp, err = http.Post(srv.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
