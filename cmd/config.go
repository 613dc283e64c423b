package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/grovetools/sheetsync/cli"
	"github.com/grovetools/sheetsync/config"
	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/logging"
	"github.com/grovetools/sheetsync/pkg/input"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate sheetsync configuration",
	}
	cmd.AddCommand(newConfigSchemaCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for sheetsync.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to generate schema")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check configuration files and keybinding overrides",
		Long: `Loads the configuration the other commands would use and checks it against
the schema, the backend settings rules, and the editor keymap. Overrides
naming an unknown action or an unparseable key are reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			if cfg.Keybindings != nil {
				km := input.DefaultKeymap()
				if rejected := input.ApplyOverrides(&km, cfg.Keybindings.Editor); len(rejected) > 0 {
					return errors.New(errors.ErrCodeConfigValidation,
						fmt.Sprintf("unusable keybinding overrides: keybindings.editor.%s",
							strings.Join(rejected, ", keybindings.editor."))).
						WithDetail("keys", rejected)
				}
			}

			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			pretty.Success("Configuration is valid")
			if source := configSource(cmd); source != "" {
				pretty.Path("Source", source)
			} else {
				pretty.Warn("No sheetsync.yml found; defaults apply")
			}
			pretty.Field("Transport", cfg.Backend.Transport)
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration with defaults applied",
		Long: `Shows the configuration after merging the global file, the project file and
any sheetsync.override.yml, with defaults filled in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.SetDefaults()

			if source := configSource(cmd); source != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# Source: %s\n", source)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal config")
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// configSource names the file the configuration came from, if any.
func configSource(cmd *cobra.Command) string {
	if path := cli.GetOptions(cmd).ConfigFile; path != "" {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	if path, err := config.FindConfigFile(cwd); err == nil {
		return path
	}
	return ""
}
