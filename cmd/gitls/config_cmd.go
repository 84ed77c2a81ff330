package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitls/internal/config"
	"github.com/raphi011/gitls/internal/log"
	"github.com/raphi011/gitls/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage gitls configuration.

Global config: ~/.config/gitls/config.toml (or $GITLS_CONFIG)
Local config:  .gitls.toml (in the scanned directory)`,
		Example: `  gitls config init        # Create default global config
  gitls config show        # Show effective config
  gitls config show ~/src  # Include ~/src/.gitls.toml`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  gitls config init     # Create global config
  gitls config init -f  # Overwrite existing config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(force)
			if err != nil {
				if !force {
					return fmt.Errorf("%w (use -f to overwrite)", err)
				}
				return err
			}
			output.FromContext(cmd.Context()).Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show [directory]",
		Short: "Show effective configuration",
		Args:  cobra.MaximumNArgs(1),
		Long: `Show effective configuration: the config file with environment
overrides applied, merged with the .gitls.toml of the directory that would
be scanned.`,
		Example: `  gitls config show
  gitls config show ~/src --json`,
		ValidArgsFunction: completeDirectory,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			root, err := resolveRoot(args, cfg.DefaultDir)
			if err != nil {
				return err
			}
			local, err := config.LoadLocal(root)
			if err != nil {
				l.Printf("Warning: failed to load local config: %v (using global config)\n", err)
			}
			effCfg := config.MergeLocal(*cfg, local)

			if jsonOutput {
				enc := json.NewEncoder(out.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(effCfg)
			}

			path, err := config.Path()
			if err != nil {
				path = "(unavailable)"
			}
			out.Printf("# Global config: %s\n", path)
			if local != nil {
				out.Printf("# Local config:  %s\n", filepath.Join(root, config.LocalConfigFileName))
			} else {
				out.Printf("# Local config:  (none)\n")
			}
			out.Println()
			return effCfg.Encode(out.Writer())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
