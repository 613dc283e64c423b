package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/sheetsync/config"
	"github.com/grovetools/sheetsync/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists the locations sheetsync reads from and writes to.
type PathsOutput struct {
	ConfigDir    string `json:"config_dir"`
	GlobalConfig string `json:"global_config"`
	StateDir     string `json:"state_dir"`
	LogDir       string `json:"log_dir"`
	CacheDir     string `json:"cache_dir"`
	RuntimeDir   string `json:"runtime_dir"`
	Socket       string `json:"socket"`
}

func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the XDG paths used by sheetsync",
		Long: `Print the paths sheetsync uses, as JSON.

SHEETSYNC_HOME moves all of them under one portable root. Otherwise the
XDG_CONFIG_HOME, XDG_STATE_HOME, XDG_CACHE_HOME and XDG_RUNTIME_DIR
variables are honoured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:    paths.ConfigDir(),
				GlobalConfig: config.GlobalConfigPath(),
				StateDir:     paths.StateDir(),
				LogDir:       paths.LogDir(),
				CacheDir:     paths.CacheDir(),
				RuntimeDir:   paths.RuntimeDir(),
				Socket:       paths.SocketPath(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}
}
