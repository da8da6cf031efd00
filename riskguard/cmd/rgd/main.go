package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bridgelabs-io/riskguard/riskguard/cmd/rgd/daemon"
	rgdcfg "github.com/bridgelabs-io/riskguard/riskguard/config"
	"github.com/bridgelabs-io/riskguard/version"
)

const BinaryName = "rgd"

// NewRootCmd creates a new root command for rgd. It is called once in
// the main function.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           BinaryName,
		Short:         fmt.Sprintf("%s - Risk Guard Daemon.", BinaryName),
		Long:          fmt.Sprintf(`%s hosts the timelocked governance engine and the mint/burn guard of the bridge.`, BinaryName),
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String(daemon.HomeFlag, rgdcfg.DefaultRgdDir, "The application home directory")

	return rootCmd
}

func main() {
	cmd := NewRootCmd()

	cmd.AddCommand(
		daemon.CommandInit(BinaryName),
		daemon.CommandStart(BinaryName),
		version.CommandVersion(BinaryName),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "There was an error while executing %s CLI: %s\n", BinaryName, err.Error())
		os.Exit(1)
	}
}
