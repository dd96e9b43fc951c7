package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/wxdata/cmd/wxdata/cmd/files"
	"github.com/agentstation/wxdata/cmd/wxdata/cmd/inspect"
	"github.com/agentstation/wxdata/cmd/wxdata/cmd/products"
	"github.com/agentstation/wxdata/cmd/wxdata/cmd/scan"
	"github.com/agentstation/wxdata/internal/cmd/output"
	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
)

// Execute runs the wxdata CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "wxdata",
		Short:   "Satellite data file index",
		Version: a.version,
		Long: `Wxdata indexes directory trees of satellite and climate data files.

Each file is classified by product from its name, its time coverage is read
from the file itself and the result is stored as a catalog. The catalog
answers which files of a product cover a time window, and opens them with
their metadata.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is "+constants.DefaultConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, wide, json, yaml")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&a.config.Catalog, "catalog", a.config.Catalog, "catalog file to read and write")

	rootCmd.SetVersionTemplate("wxdata {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		file := mustGetString(cmd, "config")
		loaded, err := loadConfig(file)
		if err != nil {
			return err
		}
		a.config.mergeFile(loaded, cmd.Flags())
	}
	a.config.Catalog = expandHome(a.config.Catalog)

	format, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return errors.NewValidationError("format", a.config.Format, err.Error())
	}
	a.config.Format = string(format)

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(scan.NewCommand(a))
	rootCmd.AddCommand(files.NewCommand(a))
	rootCmd.AddCommand(inspect.NewCommand(a))
	rootCmd.AddCommand(products.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(a.NewVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
