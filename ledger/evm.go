package ledger

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/bridgelabs-io/riskguard/types"
)

const (
	dialAttempts      = 5
	dialRetryInterval = 500 * time.Millisecond
)

var _ Client = (*EvmClient)(nil)

// EvmClient submits governance sub-calls to the bridge contracts over an
// EVM JSON-RPC endpoint. The sending account must be unlocked on the
// node (operator deployments run against a local signer).
type EvmClient struct {
	endpoint string
	from     common.Address
	timeout  time.Duration
	logger   *zap.Logger

	client *rpc.Client
}

// NewEvmClient returns an unconnected client; Start dials the endpoint.
func NewEvmClient(endpoint string, from common.Address, timeout time.Duration, logger *zap.Logger) *EvmClient {
	return &EvmClient{
		endpoint: endpoint,
		from:     from,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start dials the JSON-RPC endpoint. Only connection establishment is
// retried; submitted calls never are.
func (c *EvmClient) Start(ctx context.Context) error {
	if c.client != nil {
		return nil
	}

	return retry.Do(
		func() error {
			client, err := rpc.DialContext(ctx, c.endpoint)
			if err != nil {
				return fmt.Errorf("failed to dial %s: %w", c.endpoint, err)
			}
			c.client = client

			return nil
		},
		retry.Context(ctx),
		retry.Attempts(dialAttempts),
		retry.Delay(dialRetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Error("retrying ledger endpoint dial",
				zap.Uint("attempt", n+1),
				zap.String("endpoint", c.endpoint),
				zap.Error(err))
		}),
	)
}

func (c *EvmClient) Stop() error {
	if c.client == nil {
		return nil
	}
	c.client.Close()
	c.client = nil

	return nil
}

// Call submits one transaction carrying selector||payload as calldata.
// The error of a submitted transaction is final from the timelock's
// point of view; finalization aborts on the first failed sub-call.
func (c *EvmClient) Call(ctx context.Context, target common.Address, selector types.Selector, value sdkmath.Int, payload []byte) error {
	if c.client == nil {
		return fmt.Errorf("ledger client is not started")
	}

	data := make([]byte, 0, types.SelectorLen+len(payload))
	data = append(data, selector[:]...)
	data = append(data, payload...)

	arg := map[string]interface{}{
		"from": c.from,
		"to":   target,
		"data": hexutil.Bytes(data),
	}
	if !value.IsZero() {
		arg["value"] = hexutil.EncodeBig(value.BigInt())
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var txHash common.Hash
	if err := c.client.CallContext(callCtx, &txHash, "eth_sendTransaction", arg); err != nil {
		return fmt.Errorf("failed to submit call to %s: %w", target.Hex(), err)
	}

	c.logger.Debug("submitted ledger call",
		zap.String("target", target.Hex()),
		zap.String("selector", selector.Hex()),
		zap.String("tx_hash", txHash.Hex()))

	return nil
}
