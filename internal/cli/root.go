// Package cli provides the command-line entry points for stk-executor.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kannan/stk-executor/internal/app"
	"github.com/kannan/stk-executor/internal/config"
	"github.com/kannan/stk-executor/internal/interactive"
	"github.com/kannan/stk-executor/internal/logger"
	"github.com/kannan/stk-executor/internal/platform"
)

// options holds the persistent flags shared by every command.
type options struct {
	cfgFile  string
	platform string
	verbose  bool
	cfg      *config.Config
}

// NewRootCommand builds the command tree. Running it without a subcommand
// opens the interactive menu.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "stk-executor",
		Short: app.Name + " - run, serve and compile .stk files from a menu",
		Long: app.Name + ` is an interactive menu around the stk tool.

It lets you:
  • Run a .stk file
  • Start the development web server
  • Compile to JavaScript or Python
  • Analyze and translate code
  • Share and back up projects on Termux

Start it without arguments to open the menu.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// version and config init work without a loaded configuration
			if cmd.Name() == "version" || cmd.Name() == "init" || cmd.Name() == "help" {
				return nil
			}
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./"+config.DefaultConfigFile+")")
	root.PersistentFlags().StringVar(&opts.platform, "platform", "auto", "platform variant: auto, generic or termux")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newVersionCommand())
	root.AddCommand(newConfigCommand(opts))

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// load reads and validates the configuration, then initializes the logger.
func (o *options) load() error {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.MustValidate(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if o.verbose {
		level = "debug"
	}
	logCfg := logger.Config{
		Path:    cfg.Logging.Path,
		Level:   level,
		Console: true,
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	o.cfg = cfg
	return nil
}

func runShell(cmd *cobra.Command, opts *options) error {
	variant, err := platform.ParseVariant(opts.platform)
	if err != nil {
		return err
	}
	if variant == platform.Termux && !platform.IsTermux() {
		logger.Warn("termux variant forced outside Termux; termux-api commands may be missing")
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	shell := interactive.New(interactive.Options{
		Config:     opts.cfg,
		Platform:   platform.New(variant, opts.cfg.GetBackupDir()),
		Dir:        dir,
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
		Interrupts: interrupts,
	})
	return shell.Run(context.Background())
}

func newVersionCommand() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information about " + app.Name,
		Run: func(cmd *cobra.Command, args []string) {
			if detailed {
				fmt.Fprintln(cmd.OutOrStdout(), app.GetVersionInfo())
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", app.Name, app.Version)
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show build details")
	return cmd
}
