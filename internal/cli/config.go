package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kannan/stk-executor/internal/config"
	"github.com/kannan/stk-executor/internal/styles"
)

func newConfigCommand(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Commands for managing " + config.DefaultConfigFile,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new configuration file",
		Long: `Create a new executor-config.json with the default settings.

Examples:
  stk-executor config init
  stk-executor config init --output ~/executor-config.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DefaultConfig().Write(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration file created: %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", config.DefaultConfigFile, "output file path")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration file.

Examples:
  stk-executor config validate
  stk-executor config validate -c /path/to/executor-config.json`,
		// Load already rejects invalid files; skip it so every problem is listed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.cfgFile)
			if err != nil {
				return err
			}

			result := cfg.Validate()
			out := cmd.OutOrStdout()
			if result.Valid {
				fmt.Fprintln(out, styles.Success("Configuration is VALID"))
			} else {
				fmt.Fprintln(out, styles.Error("Configuration is INVALID"))
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, result.String())

			if !result.Valid {
				return fmt.Errorf("configuration validation failed")
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the loaded configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			out := cmd.OutOrStdout()
			line := func(label string, value any) {
				fmt.Fprintln(out, "  "+styles.Field(fmt.Sprintf("%-16s", label), fmt.Sprint(value)))
			}

			fmt.Fprintln(out, styles.TitleStyle.Render("Configuration"))
			fmt.Fprintln(out, styles.Separator(60))
			line("Tool", cfg.Tool.Binary)
			line("Tool timeout", cfg.ToolTimeout())
			line("Dev timeout", cfg.DevTimeout())
			line("Server port", cfg.Server.Port)
			line("Fallback port", fallbackLabel(cfg))
			line("Examples", cfg.ExamplesDir)
			line("Backup dir", cfg.GetBackupDir())
			line("Backup format", cfg.Backup.Format)
			line("Log level", cfg.Logging.Level)
			fmt.Fprintln(out, styles.Separator(60))
			return nil
		},
	}

	configCmd.AddCommand(initCmd, validateCmd, showCmd)
	return configCmd
}

func fallbackLabel(cfg *config.Config) string {
	if cfg.Server.FallbackPort == 0 {
		return fmt.Sprintf("%d (port + 1)", cfg.Server.Port+1)
	}
	return fmt.Sprint(cfg.Server.FallbackPort)
}
