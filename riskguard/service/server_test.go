package service_test

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/stretchr/testify/require"

	"github.com/bridgelabs-io/riskguard/riskguard/config"
	"github.com/bridgelabs-io/riskguard/riskguard/service"
	"github.com/bridgelabs-io/riskguard/testutil"
)

func TestServerRunUntilShutdown(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(90))

	cfg := config.DefaultConfigWithHome(t.TempDir())
	cfg.OwnerAddress = testutil.GenRandomAddress(r).Hex()
	cfg.GovernanceAddress = testutil.GenRandomAddress(r).Hex()
	cfg.Delays = &config.DelayConfig{}
	cfg.RPCListener = fmt.Sprintf("127.0.0.1:%d", testutil.AllocateUniquePort(t))
	cfg.Metrics.Port = testutil.AllocateUniquePort(t)

	db, err := cfg.DatabaseConfig.GetDBBackend()
	require.NoError(t, err)

	app, err := service.NewRiskGuardApp(&cfg, testutil.NewFakeLedger(), db, testutil.GetTestLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server := service.NewRiskGuardServer(&cfg, testutil.GetTestLogger(t), app, db)

	done := make(chan error, 1)
	go func() {
		done <- server.RunUntilShutdown(ctx)
	}()

	// The RPC endpoint comes up and answers a version request.
	url := "http://" + cfg.RPCListener
	body, err := json2.EncodeClientRequest("riskguard.version", &struct{}{})
	require.NoError(t, err)

	var reply service.VersionReply
	require.Eventually(t, func() bool {
		resp, err := http.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return json2.DecodeClientResponse(resp.Body, &reply) == nil
	}, 10*time.Second, 100*time.Millisecond)
	require.NotEmpty(t, reply.Version)

	// The metrics endpoint is live.
	metricsAddr, err := cfg.Metrics.Address()
	require.NoError(t, err)
	resp, err := http.Get("http://" + metricsAddr + "/metrics")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
