package config

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap/zapcore"

	"github.com/bridgelabs-io/riskguard/metrics"
	"github.com/bridgelabs-io/riskguard/util"
)

// Constants for config default values
const (
	defaultLogLevel       = zapcore.InfoLevel
	defaultLogDirname     = "logs"
	defaultLogFilename    = "rgd.log"
	defaultConfigFileName = "rgd.conf"
	defaultDataDirname    = "data"
	DefaultRPCPort        = 12771
)

var (
	//   C:\Users\<username>\AppData\Local\Rgd on Windows
	//   ~/.rgd on Linux
	//   ~/Library/Application Support/Rgd on MacOS
	DefaultRgdDir = btcutil.AppDataDir("rgd", false)

	DefaultRPCListener = "127.0.0.1:" + strconv.Itoa(DefaultRPCPort)
)

// Config is the main config for the rgd cli command
type Config struct {
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal"`

	// OwnerAddress is the administrative owner of the mint guard.
	OwnerAddress string `long:"owneraddress" description:"The administrative owner of the mint guard"`
	// ControllerAddress is the initial controller; empty leaves the
	// authorize path disabled until set through the owner.
	ControllerAddress string `long:"controlleraddress" description:"The initial controller permitted to call the authorize path; may be empty"`
	// GovernanceAddress is the initial governance of the timelock.
	GovernanceAddress string `long:"governanceaddress" description:"The initial governance of the timelock"`

	// InitialGlobalMintCap seeds the supply cap on first start; zero
	// disables cap enforcement.
	InitialGlobalMintCap uint64 `long:"initialglobalmintcap" description:"The initial global mint cap; zero disables cap enforcement"`
	// InitialMintRateLimit seeds the per-window limit on first start;
	// zero disables rate limiting.
	InitialMintRateLimit uint64 `long:"initialmintratelimit" description:"The initial mint rate limit per window; zero disables rate limiting"`
	// InitialMintRateLimitWindow is the window length in seconds.
	InitialMintRateLimitWindow uint32 `long:"initialmintratelimitwindow" description:"The initial mint rate limit window in seconds"`

	RPCListener string `long:"rpclistener" description:"the listener for RPC connections, e.g., 127.0.0.1:1234"`

	Delays *DelayConfig `group:"delays" namespace:"delays"`

	LedgerConfig *LedgerConfig `group:"ledger" namespace:"ledger"`

	DatabaseConfig *DBConfig `group:"dbconfig" namespace:"dbconfig"`

	Metrics *metrics.Config `group:"metrics" namespace:"metrics"`
}

// DefaultConfigWithHome returns the default config rooted at the given
// home directory.
func DefaultConfigWithHome(homePath string) Config {
	delaysCfg := DefaultDelayConfig()
	ledgerCfg := DefaultLedgerConfig()
	dbCfg := DefaultDBConfigWithHomePath(homePath)
	cfg := Config{
		LogLevel:       defaultLogLevel.String(),
		RPCListener:    DefaultRPCListener,
		Delays:         &delaysCfg,
		LedgerConfig:   &ledgerCfg,
		DatabaseConfig: &dbCfg,
		Metrics:        metrics.DefaultGuardMetricsConfig(),
	}

	return cfg
}

func DefaultConfig() Config {
	return DefaultConfigWithHome(DefaultRgdDir)
}

func CfgFile(homePath string) string {
	return filepath.Join(homePath, defaultConfigFileName)
}

func LogDir(homePath string) string {
	return filepath.Join(homePath, defaultLogDirname)
}

func LogFile(homePath string) string {
	return filepath.Join(LogDir(homePath), defaultLogFilename)
}

func DataDir(homePath string) string {
	return filepath.Join(homePath, defaultDataDirname)
}

// LoadConfig initializes and parses the config using a config file.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Load configuration file overwriting defaults with any specified options
//  3. Make sure everything we just loaded makes sense
func LoadConfig(homePath string) (*Config, error) {
	// The home directory is required to have a configuration file with a
	// specific name under it.
	cfgFile := CfgFile(homePath)
	if !util.FileExists(cfgFile) {
		return nil, fmt.Errorf("specified config file does "+
			"not exist in %s", cfgFile)
	}

	var cfg Config
	fileParser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(fileParser).ParseFile(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Owner parses the configured owner address.
func (cfg *Config) Owner() (common.Address, error) {
	return parseAddress("owneraddress", cfg.OwnerAddress)
}

// Controller parses the configured controller address; an empty string
// resolves to the zero address, meaning no controller yet.
func (cfg *Config) Controller() (common.Address, error) {
	if cfg.ControllerAddress == "" {
		return common.Address{}, nil
	}

	return parseAddress("controlleraddress", cfg.ControllerAddress)
}

// Governance parses the configured governance address.
func (cfg *Config) Governance() (common.Address, error) {
	return parseAddress("governanceaddress", cfg.GovernanceAddress)
}

// Validate checks the given configuration to be sane. This makes sure
// no illegal values or combination of values are set.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	owner, err := cfg.Owner()
	if err != nil {
		return err
	}
	if owner == (common.Address{}) {
		return fmt.Errorf("owneraddress cannot be the zero address")
	}

	if _, err := cfg.Controller(); err != nil {
		return err
	}

	governance, err := cfg.Governance()
	if err != nil {
		return err
	}
	if governance == (common.Address{}) {
		return fmt.Errorf("governanceaddress cannot be the zero address")
	}

	if cfg.InitialMintRateLimit > 0 && cfg.InitialMintRateLimitWindow == 0 {
		return fmt.Errorf("initialmintratelimitwindow must be positive when initialmintratelimit is set")
	}

	if cfg.RPCListener == "" {
		return fmt.Errorf("rpclistener cannot be empty")
	}

	if cfg.Delays == nil {
		return fmt.Errorf("delays config cannot be empty")
	}
	if err := cfg.Delays.Validate(); err != nil {
		return fmt.Errorf("delays configuration validation failed: %w", err)
	}

	if cfg.LedgerConfig == nil {
		return fmt.Errorf("ledger config cannot be empty")
	}
	if err := cfg.LedgerConfig.Validate(); err != nil {
		return fmt.Errorf("ledger configuration validation failed: %w", err)
	}

	if cfg.DatabaseConfig == nil {
		return fmt.Errorf("dbconfig cannot be empty")
	}
	if err := cfg.DatabaseConfig.Validate(); err != nil {
		return fmt.Errorf("db configuration validation failed: %w", err)
	}

	if cfg.Metrics == nil {
		return fmt.Errorf("metrics config cannot be empty")
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics configuration validation failed: %w", err)
	}

	return nil
}

func parseAddress(name, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, fmt.Errorf("%s cannot be empty", name)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s is not a valid hex address: %s", name, value)
	}

	return common.HexToAddress(value), nil
}
