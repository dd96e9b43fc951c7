// Package products provides the products command.
package products

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/wxdata"
	"github.com/agentstation/wxdata/internal/cmd/output"
	"github.com/agentstation/wxdata/internal/cmd/table"
	"github.com/agentstation/wxdata/pkg/products"
)

// AppContext defines the interface that the products command needs from the app.
type AppContext interface {
	Client() (wxdata.Client, error)
	Logger() *zerolog.Logger
	OutputFormat() string
}

// Info describes one registered product.
type Info struct {
	ID      products.ID `json:"id" yaml:"id"`
	Pattern string      `json:"pattern" yaml:"pattern"`
	Files   int         `json:"files" yaml:"files"`
}

// NewCommand creates the products command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "products",
		GroupID: "core",
		Aliases: []string{"product", "ls"},
		Short:   "List known products and catalogued file counts",
		Long: `Products lists every product the index can classify, in matching
order. When a catalog is configured with --catalog the number of catalogued
files of each product is shown as well.`,
		Example: `  wxdata products
  wxdata products --catalog /data/wxdata.index.yaml -o wide`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			idx := client.Index()
			descriptors := idx.Registry().List()

			var counts map[products.ID]int
			if idx.Len() > 0 {
				counts = make(map[products.ID]int, len(descriptors))
				for _, d := range descriptors {
					counts[d.ID] = idx.Count(d)
				}
			}

			infos := make([]Info, 0, len(descriptors))
			for _, d := range descriptors {
				infos = append(infos, Info{ID: d.ID, Pattern: d.Pattern.String(), Files: idx.Count(d)})
			}

			f := output.Format(app.OutputFormat())
			data := table.ProductsToTableData(descriptors, counts, f == output.FormatWide)
			return output.Write(cmd.OutOrStdout(), f, data, infos)
		},
	}
}
