// Package inspect provides the inspect command, which opens one catalogued
// file and shows its metadata.
package inspect

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/wxdata"
	"github.com/agentstation/wxdata/internal/cmd/output"
	"github.com/agentstation/wxdata/internal/cmd/table"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/products"
)

// AppContext defines the interface that the inspect command needs from the app.
type AppContext interface {
	Client() (wxdata.Client, error)
	Logger() *zerolog.Logger
	OutputFormat() string
}

// Details is the metadata read from an opened file.
type Details struct {
	Product    products.ID    `json:"product" yaml:"product"`
	Position   int            `json:"position" yaml:"position"`
	Path       string         `json:"path" yaml:"path"`
	StartTime  time.Time      `json:"start_time" yaml:"start_time"`
	EndTime    time.Time      `json:"end_time" yaml:"end_time"`
	Attributes []string       `json:"attributes" yaml:"attributes"`
	Values     map[string]any `json:"values,omitempty" yaml:"values,omitempty"`
}

// NewCommand creates the inspect command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var attrs []string

	cmd := &cobra.Command{
		Use:     "inspect <product> <position>",
		GroupID: "core",
		Aliases: []string{"open", "show"},
		Short:   "Open a catalogued file and show its metadata",
		Long: `Inspect opens the file at the given position of a product with the
product's reader. It shows the time coverage read from the file and the names
of its attributes; --attr prints attribute values. Archived files are
extracted to the scratch area and removed afterwards.`,
		Example: `  wxdata inspect CloudSat_2b_GeoProf 0
  wxdata inspect CloudSat_2b_GeoProf 0 --attr granule_number --attr start_time`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.NewValidationError("position", args[1], "must be an integer")
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			details, err := Open(client, products.ID(args[0]), position, attrs)
			if err != nil {
				return err
			}

			f := output.Format(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), f, toTable(details), details)
		},
	}

	cmd.Flags().StringSliceVar(&attrs, "attr", nil, "Attribute to print (repeatable)")

	return cmd
}

// Open reads the metadata of the file at position and the requested
// attribute values.
func Open(client wxdata.Client, id products.ID, position int, attrs []string) (*Details, error) {
	idx := client.Index()
	rec, err := idx.Record(id, position)
	if err != nil {
		return nil, err
	}

	r, err := idx.Open(id, position)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	d := &Details{Product: id, Position: position, Path: rec.Path, Attributes: r.Attributes()}
	if d.StartTime, err = r.StartTime(); err != nil {
		return nil, errors.NewExtractionError(string(id), rec.Path, err)
	}
	if d.EndTime, err = r.EndTime(); err != nil {
		return nil, errors.NewExtractionError(string(id), rec.Path, err)
	}

	if len(attrs) > 0 {
		d.Values = make(map[string]any, len(attrs))
		for _, name := range attrs {
			v, err := r.Get(name)
			if err != nil {
				return nil, err
			}
			d.Values[name] = v
		}
	}
	return d, nil
}

func toTable(d *Details) table.Data {
	rows := [][]string{
		{"Product", string(d.Product)},
		{"Position", strconv.Itoa(d.Position)},
		{"Path", d.Path},
		{"Start", table.FormatTime(d.StartTime)},
		{"End", table.FormatTime(d.EndTime)},
		{"Attributes", strconv.Itoa(len(d.Attributes))},
	}
	for _, name := range d.Attributes {
		rows = append(rows, []string{"", name})
	}
	names := make([]string, 0, len(d.Values))
	for name := range d.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, []string{name, fmt.Sprintf("%v", d.Values[name])})
	}
	return table.Data{Headers: []string{"Property", "Value"}, Rows: rows}
}
