package daemon

import (
	"fmt"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/spf13/cobra"

	rgdcfg "github.com/bridgelabs-io/riskguard/riskguard/config"
	"github.com/bridgelabs-io/riskguard/util"
)

// CommandInit returns the init command of the rgd daemon that creates
// the home directory.
func CommandInit(binaryName string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Initialize a risk guard home directory.",
		Long:    `Creates a new risk guard home directory with default config`,
		Example: fmt.Sprintf(`%s init --home /home/user/.rgd --force`, binaryName),
		Args:    cobra.NoArgs,
		RunE:    runInitCmd,
	}
	cmd.Flags().Bool(ForceFlag, false, "Override existing configuration")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	homePath, err := getHomePath(cmd)
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool(ForceFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", ForceFlag, err)
	}

	if util.FileExists(rgdcfg.CfgFile(homePath)) && !force {
		return fmt.Errorf("config already exists under %s, use --force to override", homePath)
	}

	if err := util.MakeDirectory(homePath); err != nil {
		return err
	}
	// Create log directory
	logDir := rgdcfg.LogDir(homePath)
	if err := util.MakeDirectory(logDir); err != nil {
		return err
	}

	defaultConfig := rgdcfg.DefaultConfigWithHome(homePath)
	fileParser := flags.NewParser(&defaultConfig, flags.Default)

	return flags.NewIniParser(fileParser).WriteFile(rgdcfg.CfgFile(homePath), flags.IniIncludeComments|flags.IniIncludeDefaults)
}

func getHomePath(cmd *cobra.Command) (string, error) {
	rawHomePath, err := cmd.Flags().GetString(HomeFlag)
	if err != nil {
		return "", fmt.Errorf("failed to read flag %s: %w", HomeFlag, err)
	}

	homePath, err := filepath.Abs(rawHomePath)
	if err != nil {
		return "", fmt.Errorf("failed to get home path: %w", err)
	}

	return util.CleanAndExpandPath(homePath), nil
}
