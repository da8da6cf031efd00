package daemon

import (
	"fmt"
	"net"
	"path/filepath"

	"github.com/juju/fslock"
	"github.com/spf13/cobra"

	"github.com/bridgelabs-io/riskguard/log"
	rgdcfg "github.com/bridgelabs-io/riskguard/riskguard/config"
	"github.com/bridgelabs-io/riskguard/riskguard/service"
)

const lockFileName = "rgd.lock"

// CommandStart returns the start command of the rgd daemon.
func CommandStart(binaryName string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the risk guard daemon.",
		Long:    `Start the risk guard daemon and run it until shutdown.`,
		Example: fmt.Sprintf(`%s start --home /home/user/.rgd`, binaryName),
		Args:    cobra.NoArgs,
		RunE:    runStartCmd,
	}
	cmd.Flags().String(RPCListenerFlag, "", "The address that the RPC server listens to")

	return cmd
}

func runStartCmd(cmd *cobra.Command, _ []string) error {
	homePath, err := getHomePath(cmd)
	if err != nil {
		return err
	}

	cfg, err := rgdcfg.LoadConfig(homePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rpcListener, err := cmd.Flags().GetString(RPCListenerFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", RPCListenerFlag, err)
	}
	if rpcListener != "" {
		if _, err := net.ResolveTCPAddr("tcp", rpcListener); err != nil {
			return fmt.Errorf("invalid RPC listener address %s: %w", rpcListener, err)
		}
		cfg.RPCListener = rpcListener
	}

	logger, err := log.NewRootLoggerWithFile(rgdcfg.LogFile(homePath), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to load the logger: %w", err)
	}

	// Refuse to run two daemons against the same home directory.
	lock := fslock.New(filepath.Join(homePath, lockFileName))
	if err := lock.TryLock(); err != nil {
		return fmt.Errorf("failed to acquire home directory lock %s: %w", homePath, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	dbBackend, err := cfg.DatabaseConfig.GetDBBackend()
	if err != nil {
		return fmt.Errorf("failed to create db backend: %w", err)
	}

	app, err := service.NewRiskGuardAppFromConfig(cfg, dbBackend, logger)
	if err != nil {
		return fmt.Errorf("failed to create risk guard app: %w", err)
	}

	server := service.NewRiskGuardServer(cfg, logger, app, dbBackend)

	return server.RunUntilShutdown(cmd.Context())
}
