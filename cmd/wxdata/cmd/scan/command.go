// Package scan provides the index command, which scans a data tree and
// stores the resulting catalog.
package scan

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/wxdata"
	"github.com/agentstation/wxdata/internal/cmd/output"
	"github.com/agentstation/wxdata/internal/cmd/progress"
	"github.com/agentstation/wxdata/internal/cmd/table"
	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/save"
)

// AppContext defines the interface that the index command needs from the app.
type AppContext interface {
	ClientWithOptions(...wxdata.Option) (wxdata.Client, error)
	CatalogPath() string
	Logger() *zerolog.Logger
	OutputFormat() string
}

// Flags holds the index command flags.
type Flags struct {
	Out         string
	Workers     int
	StoreFormat string
	Ignore      []string
	NoProgress  bool
	Failures    bool
}

// NewCommand creates the index command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "index <root>",
		GroupID: "core",
		Aliases: []string{"scan", "generate"},
		Short:   "Scan a data tree and store its catalog",
		Long: `Index walks a directory tree, classifies every file against the known
products, reads the time coverage of each classified file and stores the
catalog. Zipped and gzipped granules are extracted to a scratch area while
they are read.

Files that cannot be read are skipped and reported. Patterns in a .wxignore
file at the root, and --ignore patterns, exclude paths with gitignore syntax.

The catalog is written next to the data by default, with paths relative to
the catalog file, so the tree and catalog can be moved together.`,
		Example: `  wxdata index /data/cloudsat                     # Write /data/cloudsat/wxdata.index.yaml
  wxdata index /data --out /data/catalog.db       # Store as SQLite
  wxdata index /data --workers 8 --ignore tmp/    # Parallel scan, skip tmp/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.Out, "out", "",
		"Catalog file to write (default: --catalog, else <root>/"+constants.DefaultCatalogFile+")")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0,
		"Number of files read at once (default: configured workers)")
	cmd.Flags().StringVar(&flags.StoreFormat, "store-format", "",
		"Catalog format: yaml, json, sqlite (default: from the file extension)")
	cmd.Flags().StringSliceVar(&flags.Ignore, "ignore", nil,
		"Gitignore-style pattern to skip (repeatable)")
	cmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false,
		"Do not draw a progress bar")
	cmd.Flags().BoolVar(&flags.Failures, "failures", false,
		"List the files that could not be read")

	return cmd
}

func run(cmd *cobra.Command, app AppContext, root string, flags *Flags) error {
	format, err := save.ParseFormat(flags.StoreFormat)
	if err != nil {
		return err
	}
	if flags.Workers < 0 || flags.Workers > constants.MaxWorkers {
		return errors.NewValidationError("workers", flags.Workers, "must be between 1 and 64")
	}

	opts := []wxdata.Option{wxdata.WithIgnore(flags.Ignore...)}
	if flags.Workers > 0 {
		opts = append(opts, wxdata.WithWorkers(flags.Workers))
	}
	if !flags.NoProgress {
		opts = append(opts, wxdata.WithProgress(progress.New(cmd.ErrOrStderr(), "indexing")))
	}

	client, err := app.ClientWithOptions(opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	stats, err := client.Generate(cmd.Context(), root)
	if err != nil {
		return err
	}

	out := catalogPath(flags.Out, app.CatalogPath(), stats.Root)
	if err := client.Store(cmd.Context(), out, save.WithFormat(format)); err != nil {
		return err
	}
	app.Logger().Info().Str("catalog", out).Int("files", stats.Indexed).Msg("Catalog written")

	w := cmd.OutOrStdout()
	f := output.Format(app.OutputFormat())
	if err := output.Write(w, f, table.StatsToTableData(stats), stats); err != nil {
		return err
	}
	if f.IsTable() {
		if err := output.Write(w, f, table.SummaryToTableData(client.Index().Summary()), nil); err != nil {
			return err
		}
		if flags.Failures && len(stats.Failures) > 0 {
			return output.Write(w, f, table.FailuresToTableData(stats.Failures, stats.Root), nil)
		}
	}
	return nil
}

// catalogPath picks the --out flag, then the configured catalog, then the
// default file name under root.
func catalogPath(out, configured, root string) string {
	switch {
	case out != "":
		return out
	case configured != "":
		return configured
	default:
		return filepath.Join(root, constants.DefaultCatalogFile)
	}
}
