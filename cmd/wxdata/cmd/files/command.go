// Package files provides the files command, which lists the catalogued
// files of a product.
package files

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/wxdata"
	"github.com/agentstation/wxdata/internal/cmd/output"
	"github.com/agentstation/wxdata/internal/cmd/table"
	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/products"
)

// AppContext defines the interface that the files command needs from the app.
type AppContext interface {
	Client() (wxdata.Client, error)
	CatalogPath() string
	Logger() *zerolog.Logger
	OutputFormat() string
}

// Entry is one listed file with its position in the product.
type Entry struct {
	Position  int       `json:"position" yaml:"position"`
	Path      string    `json:"path" yaml:"path"`
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`
}

// timeLayouts are the accepted --start and --end layouts, all UTC.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	constants.TimeFormatHuman,
	"2006-01-02T15:04",
	"2006-01-02",
	constants.TimeFormatGranule,
}

// NewCommand creates the files command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var start, end string
	var limit int

	cmd := &cobra.Command{
		Use:     "files <product>",
		GroupID: "core",
		Aliases: []string{"list"},
		Short:   "List catalogued files of a product",
		Long: `Files lists the catalogued files of a product in scan order, with the
position used by "wxdata inspect".

--start and --end select the files whose coverage intersects [start, end).
Either bound may be left out. Times are UTC.`,
		Example: `  wxdata files CloudSat_2b_GeoProf
  wxdata files DardarCloud --start 2008-02-01 --end 2008-02-02
  wxdata files CloudSat_1b_CPR --start "2008-02-01 10:00:00" -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []index.QueryOption
			if start != "" {
				t, err := ParseTime(start)
				if err != nil {
					return err
				}
				opts = append(opts, index.Since(t))
			}
			if end != "" {
				t, err := ParseTime(end)
				if err != nil {
					return err
				}
				opts = append(opts, index.Until(t))
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			entries, err := List(client.Index(), products.ID(args[0]), opts...)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			f := output.Format(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), f, toTable(entries, app.CatalogPath(), f == output.FormatWide), entries)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Only files ending at or after this time")
	cmd.Flags().StringVar(&end, "end", "", "Only files starting before this time")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of files to list (0 for all)")

	return cmd
}

// List returns the files of a product matching opts with their positions.
func List(idx *index.Index, id products.ID, opts ...index.QueryOption) ([]Entry, error) {
	all, err := idx.Files(id)
	if err != nil {
		return nil, err
	}
	matched, err := idx.Files(id, opts...)
	if err != nil {
		return nil, err
	}

	// matched is a subsequence of all
	entries := make([]Entry, 0, len(matched))
	j := 0
	for i, rec := range all {
		if j == len(matched) {
			break
		}
		if rec == matched[j] {
			entries = append(entries, Entry{Position: i, Path: rec.Path, StartTime: rec.StartTime, EndTime: rec.EndTime})
			j++
		}
	}
	return entries, nil
}

// ParseTime parses a UTC time in one of the accepted layouts.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError("time", s, "expected RFC 3339, YYYY-MM-DD[ hh:mm:ss] or YYYYMMDDhhmmss")
}

func toTable(entries []Entry, catalog string, wide bool) table.Data {
	records := make([]index.Record, len(entries))
	positions := make([]int, len(entries))
	for i, e := range entries {
		records[i] = index.Record{Path: e.Path, StartTime: e.StartTime, EndTime: e.EndTime}
		positions[i] = e.Position
	}
	base := ""
	if catalog != "" {
		base = filepath.Dir(catalog)
	}
	return table.RecordsToTableData(records, positions, base, wide)
}
