package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	defaultLedgerRPCEndpoint = "http://127.0.0.1:8545"
	defaultLedgerTimeout     = 30 * time.Second
)

// LedgerConfig describes how the daemon reaches the protected bridge
// ledger (the EVM node hosting the Bridge, Bank and Vault contracts).
type LedgerConfig struct {
	// RPCEndpoint is the EVM JSON-RPC endpoint of the ledger node.
	RPCEndpoint string `long:"rpcendpoint" description:"The EVM JSON-RPC endpoint of the protected ledger node"`

	// SubmitterAddress is the unlocked account governance sub-calls are
	// sent from.
	SubmitterAddress string `long:"submitteraddress" description:"The unlocked account that finalized governance calls are submitted from"`

	// Timeout bounds every submitted call.
	Timeout time.Duration `long:"timeout" description:"The timeout of a call submitted to the ledger"`
}

// DefaultLedgerConfig returns the ledger config pointed at a local
// development node.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		RPCEndpoint: defaultLedgerRPCEndpoint,
		Timeout:     defaultLedgerTimeout,
	}
}

// Submitter parses the configured submitter account.
func (cfg *LedgerConfig) Submitter() (common.Address, error) {
	return parseAddress("submitteraddress", cfg.SubmitterAddress)
}

// Validate checks the ledger config for illegal values.
func (cfg *LedgerConfig) Validate() error {
	if cfg.RPCEndpoint == "" {
		return fmt.Errorf("ledger rpc endpoint cannot be empty")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("ledger timeout must be positive")
	}
	if _, err := cfg.Submitter(); err != nil {
		return err
	}

	return nil
}
